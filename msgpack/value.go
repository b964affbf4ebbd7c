/*
 * value.go, part of gomol.
 *
 * Copyright 2026 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package msgpack

import (
	"math"

	"github.com/Velocidex/ordereddict"
	"github.com/rmera/gomol/molerr"
)

//Map returns v as an ordered dictionary.
func Map(v interface{}) (*ordereddict.Dict, bool) {
	m, ok := v.(*ordereddict.Dict)
	return m, ok && m != nil
}

//Int converts a decoded number to int64. Floats are accepted only if
//they are integral.
func Int(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return int64(x), true
	}
	return 0, false
}

//Float converts a decoded number to float64.
func Float(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

//Str converts a decoded string or byte buffer to a string.
func Str(v interface{}) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	}
	return "", false
}

//Get returns the value stored at key in m, or nil.
func Get(m *ordereddict.Dict, key string) interface{} {
	if m == nil {
		return nil
	}
	v, _ := m.Get(key)
	return v
}

//Lookup helpers below return an InvalidInput error naming the key when the
//value is absent or has the wrong type.

//GetInt returns the integer stored at key.
func GetInt(m *ordereddict.Dict, key string) (int64, error) {
	i, ok := Int(Get(m, key))
	if !ok {
		return 0, molerr.New(molerr.InvalidInput, "key %q: expected integer, got %T", key, Get(m, key))
	}
	return i, nil
}

//GetFloat returns the number stored at key as a float64.
func GetFloat(m *ordereddict.Dict, key string) (float64, error) {
	f, ok := Float(Get(m, key))
	if !ok {
		return 0, molerr.New(molerr.InvalidInput, "key %q: expected number, got %T", key, Get(m, key))
	}
	return f, nil
}

//GetString returns the string stored at key.
func GetString(m *ordereddict.Dict, key string) (string, error) {
	s, ok := Str(Get(m, key))
	if !ok {
		return "", molerr.New(molerr.InvalidInput, "key %q: expected string, got %T", key, Get(m, key))
	}
	return s, nil
}

//GetArray returns the array stored at key. A missing key gives a nil slice
//and no error when optional is true.
func GetArray(m *ordereddict.Dict, key string, optional bool) ([]interface{}, error) {
	v := Get(m, key)
	if v == nil && optional {
		return nil, nil
	}
	a, ok := v.([]interface{})
	if !ok {
		return nil, molerr.New(molerr.InvalidInput, "key %q: expected array, got %T", key, v)
	}
	return a, nil
}

//GetMap returns the map stored at key.
func GetMap(m *ordereddict.Dict, key string) (*ordereddict.Dict, error) {
	d, ok := Map(Get(m, key))
	if !ok {
		return nil, molerr.New(molerr.InvalidInput, "key %q: expected map, got %T", key, Get(m, key))
	}
	return d, nil
}

//Ints converts an array of decoded numbers to int64s.
func Ints(a []interface{}) ([]int64, error) {
	out := make([]int64, len(a))
	for i, v := range a {
		n, ok := Int(v)
		if !ok {
			return nil, molerr.New(molerr.InvalidInput, "element %d: expected integer, got %T", i, v)
		}
		out[i] = n
	}
	return out, nil
}

//Strings converts an array of decoded strings.
func Strings(a []interface{}) ([]string, error) {
	out := make([]string, len(a))
	for i, v := range a {
		s, ok := Str(v)
		if !ok {
			return nil, molerr.New(molerr.InvalidInput, "element %d: expected string, got %T", i, v)
		}
		out[i] = s
	}
	return out, nil
}

//Floats converts an array of decoded numbers to float64s.
func Floats(a []interface{}) ([]float64, error) {
	out := make([]float64, len(a))
	for i, v := range a {
		f, ok := Float(v)
		if !ok {
			return nil, molerr.New(molerr.InvalidInput, "element %d: expected number, got %T", i, v)
		}
		out[i] = f
	}
	return out, nil
}

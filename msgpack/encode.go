/*
 * encode.go, part of gomol.
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
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Velocidex/ordereddict"
	"github.com/rmera/gomol/molerr"
)

//Encoder accumulates MessagePack output in memory.
type Encoder struct {
	buf []byte
}

//Bytes returns the encoded data.
func (e *Encoder) Bytes() []byte { return e.buf }

//Marshal encodes v. See Encoder.Encode for the supported types.
func Marshal(v interface{}) ([]byte, error) {
	e := new(Encoder)
	if err := e.Encode(v); err != nil {
		return nil, molerr.Decorate(err, "msgpack.Marshal")
	}
	return e.buf, nil
}

//Encode appends v, using the smallest representation for each value.
//Supported are nil, bool, all Go integer and float types, string, []byte,
//[]interface{}, []string, []int64, []float64, map[string]interface{}
//(keys written in no particular order, use *ordereddict.Dict when order
//matters) and *ordereddict.Dict.
func (e *Encoder) Encode(v interface{}) error {
	switch x := v.(type) {
	case nil:
		e.buf = append(e.buf, 0xc0)
	case bool:
		if x {
			e.buf = append(e.buf, 0xc3)
		} else {
			e.buf = append(e.buf, 0xc2)
		}
	case int:
		e.Int(int64(x))
	case int8:
		e.Int(int64(x))
	case int16:
		e.Int(int64(x))
	case int32:
		e.Int(int64(x))
	case int64:
		e.Int(x)
	case uint:
		e.Uint(uint64(x))
	case uint8:
		e.Uint(uint64(x))
	case uint16:
		e.Uint(uint64(x))
	case uint32:
		e.Uint(uint64(x))
	case uint64:
		e.Uint(x)
	case float32:
		e.buf = append(e.buf, 0xca)
		e.buf = binary.BigEndian.AppendUint32(e.buf, math.Float32bits(x))
	case float64:
		e.Float(x)
	case string:
		e.String(x)
	case []byte:
		e.Bin(x)
	case []string:
		e.ArrayHeader(len(x))
		for _, s := range x {
			e.String(s)
		}
	case []int64:
		e.ArrayHeader(len(x))
		for _, i := range x {
			e.Int(i)
		}
	case []float64:
		e.ArrayHeader(len(x))
		for _, f := range x {
			e.Float(f)
		}
	case []interface{}:
		e.ArrayHeader(len(x))
		for _, el := range x {
			if err := e.Encode(el); err != nil {
				return err
			}
		}
	case map[string]interface{}:
		e.MapHeader(len(x))
		for k, el := range x {
			e.String(k)
			if err := e.Encode(el); err != nil {
				return err
			}
		}
	case *ordereddict.Dict:
		keys := x.Keys()
		e.MapHeader(len(keys))
		for _, k := range keys {
			el, _ := x.Get(k)
			e.String(k)
			if err := e.Encode(el); err != nil {
				return err
			}
		}
	default:
		return molerr.New(molerr.UnsupportedFeature, "cannot encode value of type %s", fmt.Sprintf("%T", v))
	}
	return nil
}

//Int appends a signed integer.
func (e *Encoder) Int(i int64) {
	switch {
	case i >= 0:
		e.Uint(uint64(i))
	case i >= -32:
		e.buf = append(e.buf, byte(int8(i)))
	case i >= math.MinInt8:
		e.buf = append(e.buf, 0xd0, byte(int8(i)))
	case i >= math.MinInt16:
		e.buf = append(e.buf, 0xd1)
		e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(int16(i)))
	case i >= math.MinInt32:
		e.buf = append(e.buf, 0xd2)
		e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(int32(i)))
	default:
		e.buf = append(e.buf, 0xd3)
		e.buf = binary.BigEndian.AppendUint64(e.buf, uint64(i))
	}
}

//Uint appends an unsigned integer.
func (e *Encoder) Uint(u uint64) {
	switch {
	case u <= 0x7f:
		e.buf = append(e.buf, byte(u))
	case u <= math.MaxUint8:
		e.buf = append(e.buf, 0xcc, byte(u))
	case u <= math.MaxUint16:
		e.buf = append(e.buf, 0xcd)
		e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(u))
	case u <= math.MaxUint32:
		e.buf = append(e.buf, 0xce)
		e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(u))
	default:
		e.buf = append(e.buf, 0xcf)
		e.buf = binary.BigEndian.AppendUint64(e.buf, u)
	}
}

//Float appends a float64. Integral values are not narrowed.
func (e *Encoder) Float(f float64) {
	e.buf = append(e.buf, 0xcb)
	e.buf = binary.BigEndian.AppendUint64(e.buf, math.Float64bits(f))
}

//String appends a UTF-8 string.
func (e *Encoder) String(s string) {
	n := len(s)
	switch {
	case n <= 31:
		e.buf = append(e.buf, 0xa0|byte(n))
	case n <= math.MaxUint8:
		e.buf = append(e.buf, 0xd9, byte(n))
	case n <= math.MaxUint16:
		e.buf = append(e.buf, 0xda)
		e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(n))
	default:
		e.buf = append(e.buf, 0xdb)
		e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(n))
	}
	e.buf = append(e.buf, s...)
}

//Bin appends a byte buffer.
func (e *Encoder) Bin(b []byte) {
	n := len(b)
	switch {
	case n <= math.MaxUint8:
		e.buf = append(e.buf, 0xc4, byte(n))
	case n <= math.MaxUint16:
		e.buf = append(e.buf, 0xc5)
		e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(n))
	default:
		e.buf = append(e.buf, 0xc6)
		e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(n))
	}
	e.buf = append(e.buf, b...)
}

//ArrayHeader appends the header of an array of n elements.
func (e *Encoder) ArrayHeader(n int) {
	switch {
	case n <= 15:
		e.buf = append(e.buf, 0x90|byte(n))
	case n <= math.MaxUint16:
		e.buf = append(e.buf, 0xdc)
		e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(n))
	default:
		e.buf = append(e.buf, 0xdd)
		e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(n))
	}
}

//MapHeader appends the header of a map of n entries.
func (e *Encoder) MapHeader(n int) {
	switch {
	case n <= 15:
		e.buf = append(e.buf, 0x80|byte(n))
	case n <= math.MaxUint16:
		e.buf = append(e.buf, 0xde)
		e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(n))
	default:
		e.buf = append(e.buf, 0xdf)
		e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(n))
	}
}

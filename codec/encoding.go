/*
 * encoding.go, part of gomol.
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

//Package codec implements the column codecs of the binary structure
//formats: the seven composable BinaryCIF encodings, and the MMTF binary
//field codecs.
//
//A BinaryCIF column is stored as a buffer plus the chain of encodings that
//produced it, listed in the order they were applied. Decoding walks the
//chain backwards.
package codec

import (
	"github.com/Velocidex/ordereddict"
	"github.com/rmera/gomol/molerr"
	"github.com/rmera/gomol/msgpack"
)

//Kind names a BinaryCIF encoding.
type Kind string

const (
	ByteArray            Kind = "ByteArray"
	FixedPoint           Kind = "FixedPoint"
	IntervalQuantization Kind = "IntervalQuantization"
	RunLength            Kind = "RunLength"
	Delta                Kind = "Delta"
	IntegerPacking       Kind = "IntegerPacking"
	StringArray          Kind = "StringArray"
)

var kindIDs = map[Kind]int{
	ByteArray:            1,
	FixedPoint:           2,
	IntervalQuantization: 3,
	RunLength:            4,
	Delta:                5,
	IntegerPacking:       6,
	StringArray:          7,
}

//ID returns the numeric identifier of the encoding kind (1 to 7), or 0
//for unknown kinds.
func (k Kind) ID() int { return kindIDs[k] }

//DataType is the element type code used by ByteArray and in srcType fields.
type DataType int

const (
	Int8    DataType = 1
	Int16   DataType = 2
	Int32   DataType = 3
	Uint8   DataType = 4
	Uint16  DataType = 5
	Uint32  DataType = 6
	Float32 DataType = 32
	Float64 DataType = 33
)

//Size returns the size in bytes of one element, or 0 for unknown types.
func (t DataType) Size() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Float64:
		return 8
	}
	return 0
}

//IsFloat is true for the floating point types.
func (t DataType) IsFloat() bool { return t == Float32 || t == Float64 }

//Encoding describes one step of a codec chain. Only the fields that belong
//to Kind are meaningful.
type Encoding struct {
	Kind Kind

	Type DataType //ByteArray

	Factor  float64  //FixedPoint
	SrcType DataType //FixedPoint, IntervalQuantization, RunLength, Delta

	Min, Max float64 //IntervalQuantization
	NumSteps int

	SrcSize int   //RunLength, IntegerPacking
	Origin  int64 //Delta

	ByteCount  int //IntegerPacking
	IsUnsigned bool

	//StringArray
	StringData     string
	Offsets        interface{} //encoded offsets, []byte or a legacy integer array
	DataEncoding   []Encoding
	OffsetEncoding []Encoding
}

//ToMap returns the encoding as the map stored in binary files.
func (e Encoding) ToMap() *ordereddict.Dict {
	m := ordereddict.NewDict().Set("kind", string(e.Kind))
	switch e.Kind {
	case ByteArray:
		m.Set("type", int64(e.Type))
	case FixedPoint:
		m.Set("factor", e.Factor).Set("srcType", int64(e.SrcType))
	case IntervalQuantization:
		m.Set("min", e.Min).Set("max", e.Max).Set("numSteps", int64(e.NumSteps)).Set("srcType", int64(e.SrcType))
	case RunLength:
		m.Set("srcType", int64(e.SrcType)).Set("srcSize", int64(e.SrcSize))
	case Delta:
		m.Set("origin", e.Origin).Set("srcType", int64(e.SrcType))
	case IntegerPacking:
		m.Set("byteCount", int64(e.ByteCount)).Set("isUnsigned", e.IsUnsigned).Set("srcSize", int64(e.SrcSize))
	case StringArray:
		m.Set("dataEncoding", chainToList(e.DataEncoding)).
			Set("stringData", e.StringData).
			Set("offsetEncoding", chainToList(e.OffsetEncoding)).
			Set("offsets", e.Offsets)
	}
	return m
}

func chainToList(chain []Encoding) []interface{} {
	out := make([]interface{}, len(chain))
	for i, e := range chain {
		out[i] = e.ToMap()
	}
	return out
}

//ChainToList converts a chain into the list-of-maps form stored in files.
func ChainToList(chain []Encoding) []interface{} { return chainToList(chain) }

//FromMap reads an encoding from its decoded map form.
func FromMap(m *ordereddict.Dict) (Encoding, error) {
	var e Encoding
	k, err := msgpack.GetString(m, "kind")
	if err != nil {
		return e, err
	}
	e.Kind = Kind(k)
	optInt := func(key string) int64 {
		i, _ := msgpack.Int(msgpack.Get(m, key))
		return i
	}
	switch e.Kind {
	case ByteArray:
		t, err := msgpack.GetInt(m, "type")
		if err != nil {
			return e, err
		}
		e.Type = DataType(t)
		if e.Type.Size() == 0 {
			return e, molerr.New(molerr.UnsupportedFeature, "ByteArray type %d", t)
		}
	case FixedPoint:
		if e.Factor, err = msgpack.GetFloat(m, "factor"); err != nil {
			return e, err
		}
		if e.Factor == 0 {
			return e, molerr.New(molerr.InvalidInput, "FixedPoint factor is zero")
		}
		e.SrcType = DataType(optInt("srcType"))
	case IntervalQuantization:
		if e.Min, err = msgpack.GetFloat(m, "min"); err != nil {
			return e, err
		}
		if e.Max, err = msgpack.GetFloat(m, "max"); err != nil {
			return e, err
		}
		n, err := msgpack.GetInt(m, "numSteps")
		if err != nil {
			return e, err
		}
		if n < 2 {
			return e, molerr.New(molerr.InvalidInput, "IntervalQuantization needs at least 2 steps, got %d", n)
		}
		e.NumSteps = int(n)
		e.SrcType = DataType(optInt("srcType"))
	case RunLength:
		e.SrcType = DataType(optInt("srcType"))
		e.SrcSize = -1
		if v := msgpack.Get(m, "srcSize"); v != nil {
			n, ok := msgpack.Int(v)
			if !ok || n < 0 {
				return e, molerr.New(molerr.InvalidInput, "bad RunLength srcSize %v", v)
			}
			e.SrcSize = int(n)
		}
	case Delta:
		o, ok := msgpack.Float(msgpack.Get(m, "origin"))
		if !ok {
			return e, molerr.New(molerr.InvalidInput, "Delta without origin")
		}
		e.Origin = int64(o)
		e.SrcType = DataType(optInt("srcType"))
	case IntegerPacking:
		bc, err := msgpack.GetInt(m, "byteCount")
		if err != nil {
			return e, err
		}
		if bc != 1 && bc != 2 && bc != 4 {
			return e, molerr.New(molerr.UnsupportedFeature, "IntegerPacking byteCount %d", bc)
		}
		e.ByteCount = int(bc)
		u, _ := msgpack.Get(m, "isUnsigned").(bool)
		e.IsUnsigned = u
		e.SrcSize = -1
		if v := msgpack.Get(m, "srcSize"); v != nil {
			if n, ok := msgpack.Int(v); ok && n >= 0 {
				e.SrcSize = int(n)
			}
		}
	case StringArray:
		if e.StringData, err = msgpack.GetString(m, "stringData"); err != nil {
			return e, err
		}
		e.Offsets = msgpack.Get(m, "offsets")
		if e.DataEncoding, err = chainFromKey(m, "dataEncoding"); err != nil {
			return e, err
		}
		if e.OffsetEncoding, err = chainFromKey(m, "offsetEncoding"); err != nil {
			return e, err
		}
	default:
		return e, molerr.New(molerr.UnsupportedFeature, "encoding kind %q", k)
	}
	return e, nil
}

func chainFromKey(m *ordereddict.Dict, key string) ([]Encoding, error) {
	list, err := msgpack.GetArray(m, key, true)
	if err != nil {
		return nil, err
	}
	return ChainFromList(list)
}

//ChainFromList reads a chain from its list-of-maps form.
func ChainFromList(list []interface{}) ([]Encoding, error) {
	chain := make([]Encoding, 0, len(list))
	for i, v := range list {
		m, ok := msgpack.Map(v)
		if !ok {
			return nil, molerr.New(molerr.InvalidInput, "encoding %d is a %T, not a map", i, v)
		}
		e, err := FromMap(m)
		if err != nil {
			return nil, molerr.Decorate(err, "ChainFromList")
		}
		chain = append(chain, e)
	}
	return chain, nil
}

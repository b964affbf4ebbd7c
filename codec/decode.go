/*
 * decode.go, part of gomol.
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

package codec

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/rmera/gomol/molerr"
	"github.com/rmera/gomol/msgpack"
)

//maxElements bounds the length of any expanded column.
const maxElements = 1 << 28

//Column is a decoded column. Exactly one of Ints, Floats and Strings is
//used, Null marks the absent entries of a string column.
type Column struct {
	Ints     []int64
	Floats   []float64
	Strings  []string
	Null     []bool
	Decimals int  //decimal places a float column was quantized to, -1 if unknown.
	Single   bool //floats came from single precision values.
}

//Len returns the number of elements.
func (c *Column) Len() int {
	switch {
	case c.Strings != nil:
		return len(c.Strings)
	case c.Floats != nil:
		return len(c.Floats)
	}
	return len(c.Ints)
}

//IsNull is true if element i is absent.
func (c *Column) IsNull(i int) bool {
	return c.Null != nil && c.Null[i]
}

//Text returns element i as a string. Floats are rounded to Decimals places
//when known and printed in their shortest form.
func (c *Column) Text(i int) string {
	switch {
	case c.Strings != nil:
		return c.Strings[i]
	case c.Floats != nil:
		f := c.Floats[i]
		if c.Decimals >= 0 {
			p := math.Pow(10, float64(c.Decimals))
			f = math.Round(f*p) / p
		} else if c.Single {
			return strconv.FormatFloat(f, 'f', -1, 32)
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatInt(c.Ints[i], 10)
}

//Data converts the raw data field of an encoded column, as decoded by the
//msgpack package, into the value the last encoding of a chain consumes.
//Binary buffers are kept, arrays become []int64 or []float64.
func Data(raw interface{}) (interface{}, error) {
	switch x := raw.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	case []interface{}:
		ints, err := msgpack.Ints(x)
		if err == nil {
			return ints, nil
		}
		floats, err := msgpack.Floats(x)
		if err == nil {
			return floats, nil
		}
		strs, err := msgpack.Strings(x)
		if err == nil {
			return strs, nil
		}
		return nil, molerr.New(molerr.InvalidInput, "column data array of mixed types")
	case nil:
		return []int64{}, nil
	}
	return nil, molerr.New(molerr.InvalidInput, "column data of type %T", raw)
}

//Decode undoes chain on data. data is usually a []byte, see Data.
func Decode(data interface{}, chain []Encoding) (*Column, error) {
	cur := data
	decimals := -1
	var err error
	for i := len(chain) - 1; i >= 0; i-- {
		e := chain[i]
		switch e.Kind {
		case ByteArray:
			cur, err = decodeByteArray(cur, e)
		case FixedPoint:
			cur, err = decodeFixedPoint(cur, e)
			decimals = int(math.Round(math.Log10(math.Abs(e.Factor))))
			if decimals < 0 {
				decimals = 0
			}
		case IntervalQuantization:
			cur, err = decodeIntervalQuantization(cur, e)
			step := (e.Max - e.Min) / float64(e.NumSteps-1)
			decimals = 0
			if step > 0 {
				decimals = int(math.Ceil(-math.Log10(step))) + 1
			}
			if decimals < 0 {
				decimals = 0
			}
		case RunLength:
			cur, err = decodeRunLength(cur, e)
		case Delta:
			cur, err = decodeDelta(cur, e)
		case IntegerPacking:
			cur, err = decodeIntegerPacking(cur, e)
		case StringArray:
			cur, err = decodeStringArray(cur, e)
		default:
			err = molerr.New(molerr.UnsupportedFeature, "encoding kind %q", e.Kind)
		}
		if err != nil {
			return nil, molerr.Decorate(err, "codec.Decode: "+string(e.Kind))
		}
	}
	col := &Column{Decimals: decimals}
	switch x := cur.(type) {
	case []int64:
		col.Ints = x
	case []float64:
		col.Floats = x
		if len(chain) > 0 && chain[0].Kind == ByteArray && chain[0].Type == Float32 {
			col.Single = true
		}
	case *Column:
		col = x
	case []string:
		col.Strings = x
	case []byte:
		//an empty chain over a byte buffer: treat as uint8 values
		col.Ints = make([]int64, len(x))
		for i, b := range x {
			col.Ints[i] = int64(b)
		}
	default:
		return nil, molerr.New(molerr.InvalidInput, "chain produced %T", cur)
	}
	return col, nil
}

func mismatch(e Encoding, format string, a ...interface{}) error {
	err := molerr.New(molerr.InvalidInput, format, a...)
	err.Sub = molerr.CodecMismatch
	return err
}

func decodeByteArray(in interface{}, e Encoding) (interface{}, error) {
	b, ok := in.([]byte)
	if !ok {
		return nil, mismatch(e, "ByteArray needs a byte buffer, got %T", in)
	}
	size := e.Type.Size()
	if size == 0 {
		return nil, molerr.New(molerr.UnsupportedFeature, "ByteArray type %d", e.Type)
	}
	if len(b)%size != 0 {
		return nil, mismatch(e, "%d bytes is not a multiple of the element size %d", len(b), size)
	}
	n := len(b) / size
	le := binary.LittleEndian
	if e.Type.IsFloat() {
		out := make([]float64, n)
		for i := range out {
			if e.Type == Float32 {
				out[i] = float64(math.Float32frombits(le.Uint32(b[i*4:])))
			} else {
				out[i] = math.Float64frombits(le.Uint64(b[i*8:]))
			}
		}
		return out, nil
	}
	out := make([]int64, n)
	for i := range out {
		switch e.Type {
		case Int8:
			out[i] = int64(int8(b[i]))
		case Uint8:
			out[i] = int64(b[i])
		case Int16:
			out[i] = int64(int16(le.Uint16(b[i*2:])))
		case Uint16:
			out[i] = int64(le.Uint16(b[i*2:]))
		case Int32:
			out[i] = int64(int32(le.Uint32(b[i*4:])))
		case Uint32:
			out[i] = int64(le.Uint32(b[i*4:]))
		}
	}
	return out, nil
}

func decodeFixedPoint(in interface{}, e Encoding) (interface{}, error) {
	ints, ok := in.([]int64)
	if !ok {
		return nil, mismatch(e, "FixedPoint needs integers, got %T", in)
	}
	out := make([]float64, len(ints))
	for i, v := range ints {
		out[i] = float64(v) / e.Factor
	}
	return out, nil
}

func decodeIntervalQuantization(in interface{}, e Encoding) (interface{}, error) {
	ints, ok := in.([]int64)
	if !ok {
		return nil, mismatch(e, "IntervalQuantization needs integers, got %T", in)
	}
	delta := (e.Max - e.Min) / float64(e.NumSteps-1)
	out := make([]float64, len(ints))
	for i, v := range ints {
		out[i] = e.Min + delta*float64(v)
	}
	return out, nil
}

func decodeRunLength(in interface{}, e Encoding) (interface{}, error) {
	ints, ok := in.([]int64)
	if !ok {
		return nil, mismatch(e, "RunLength needs integers, got %T", in)
	}
	if len(ints)%2 != 0 {
		return nil, mismatch(e, "RunLength needs value/count pairs, got %d integers", len(ints))
	}
	total := int64(0)
	for i := 1; i < len(ints); i += 2 {
		if ints[i] < 0 {
			return nil, mismatch(e, "negative run count %d", ints[i])
		}
		total += ints[i]
		if total > maxElements {
			return nil, molerr.New(molerr.InvalidInput, "run-length column expands past %d elements", maxElements)
		}
	}
	if e.SrcSize >= 0 && int64(e.SrcSize) != total {
		return nil, mismatch(e, "runs expand to %d elements, srcSize is %d", total, e.SrcSize)
	}
	out := make([]int64, 0, total)
	for i := 0; i < len(ints); i += 2 {
		for c := int64(0); c < ints[i+1]; c++ {
			out = append(out, ints[i])
		}
	}
	return out, nil
}

func decodeDelta(in interface{}, e Encoding) (interface{}, error) {
	ints, ok := in.([]int64)
	if !ok {
		return nil, mismatch(e, "Delta needs integers, got %T", in)
	}
	out := make([]int64, len(ints))
	if len(ints) == 0 {
		return out, nil
	}
	out[0] = e.Origin + ints[0]
	for i := 1; i < len(ints); i++ {
		out[i] = out[i-1] + ints[i]
	}
	return out, nil
}

func packLimits(byteCount int, unsigned bool) (upper, lower int64) {
	bits := uint(8 * byteCount)
	if unsigned {
		return int64(1)<<bits - 1, 0
	}
	return int64(1)<<(bits-1) - 1, -(int64(1) << (bits - 1))
}

func decodeIntegerPacking(in interface{}, e Encoding) (interface{}, error) {
	ints, ok := in.([]int64)
	if !ok {
		return nil, mismatch(e, "IntegerPacking needs integers, got %T", in)
	}
	upper, lower := packLimits(e.ByteCount, e.IsUnsigned)
	capacity := len(ints)
	if e.SrcSize >= 0 && e.SrcSize <= len(ints) {
		capacity = e.SrcSize
	}
	out := make([]int64, 0, capacity)
	for i := 0; i < len(ints); {
		value := int64(0)
		t := ints[i]
		if t > upper || t < lower {
			return nil, mismatch(e, "value %d does not fit %d packed bytes", t, e.ByteCount)
		}
		for t == upper || (!e.IsUnsigned && t == lower) {
			value += t
			i++
			if i == len(ints) {
				return nil, molerr.New(molerr.InvalidInput, "packed stream ends on a continuation value")
			}
			t = ints[i]
			if t > upper || t < lower {
				return nil, mismatch(e, "value %d does not fit %d packed bytes", t, e.ByteCount)
			}
		}
		out = append(out, value+t)
		i++
	}
	if e.SrcSize >= 0 && e.SrcSize != len(out) {
		return nil, mismatch(e, "unpacked %d elements, srcSize is %d", len(out), e.SrcSize)
	}
	return out, nil
}

func decodeStringArray(in interface{}, e Encoding) (interface{}, error) {
	idxCol, err := Decode(in, e.DataEncoding)
	if err != nil {
		return nil, molerr.Decorate(err, "indices")
	}
	offData, err := Data(e.Offsets)
	if err != nil {
		return nil, molerr.Decorate(err, "offsets")
	}
	offCol, err := Decode(offData, e.OffsetEncoding)
	if err != nil {
		return nil, molerr.Decorate(err, "offsets")
	}
	if idxCol.Ints == nil && idxCol.Len() > 0 {
		return nil, mismatch(e, "string indices are not integers")
	}
	if offCol.Ints == nil && offCol.Len() > 0 {
		return nil, mismatch(e, "string offsets are not integers")
	}
	offsets := offCol.Ints
	if len(offsets) == 0 {
		offsets = []int64{0}
	}
	if offsets[len(offsets)-1] != int64(len(e.StringData)) {
		return nil, mismatch(e, "last offset %d does not match the %d bytes of string data", offsets[len(offsets)-1], len(e.StringData))
	}
	unique := make([]string, len(offsets)-1)
	for i := range unique {
		s, t := offsets[i], offsets[i+1]
		if s < 0 || t < s {
			return nil, mismatch(e, "offsets %d and %d out of order", s, t)
		}
		unique[i] = e.StringData[s:t]
	}
	col := &Column{Strings: make([]string, len(idxCol.Ints)), Decimals: -1}
	for i, n := range idxCol.Ints {
		switch {
		case n < 0:
			if col.Null == nil {
				col.Null = make([]bool, len(idxCol.Ints))
			}
			col.Null[i] = true
		case n >= int64(len(unique)):
			return nil, mismatch(e, "string index %d out of %d", n, len(unique))
		default:
			col.Strings[i] = unique[n]
		}
	}
	return col, nil
}

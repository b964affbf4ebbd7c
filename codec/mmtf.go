/*
 * mmtf.go, part of gomol.
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

	"github.com/rmera/gomol/molerr"
)

//MMTF binary fields start with a 12 byte big-endian header: codec, length
//of the decoded array, and a codec parameter.
const mmtfHeader = 12

//DecodeMMTF decodes one MMTF binary field.
func DecodeMMTF(b []byte) (*Column, error) {
	if len(b) < mmtfHeader {
		return nil, molerr.AtOffset(molerr.InvalidInput, molerr.Truncated, int64(len(b)), "MMTF field shorter than its header")
	}
	be := binary.BigEndian
	codec := int32(be.Uint32(b))
	length := int(int32(be.Uint32(b[4:])))
	param := int32(be.Uint32(b[8:]))
	body := b[mmtfHeader:]
	if length < 0 || length > maxElements {
		return nil, molerr.New(molerr.InvalidInput, "MMTF field length %d", length)
	}
	col := &Column{Decimals: -1}
	var err error
	switch codec {
	case 1:
		if len(body) != 4*length {
			return nil, mmtfShort(codec, len(body), 4*length)
		}
		col.Floats = make([]float64, length)
		for i := range col.Floats {
			col.Floats[i] = float64(math.Float32frombits(be.Uint32(body[4*i:])))
		}
		col.Single = true
	case 2:
		if len(body) != length {
			return nil, mmtfShort(codec, len(body), length)
		}
		col.Ints = make([]int64, length)
		for i, c := range body {
			col.Ints[i] = int64(int8(c))
		}
	case 3:
		if len(body) != 2*length {
			return nil, mmtfShort(codec, len(body), 2*length)
		}
		col.Ints = beInt16s(body)
	case 4:
		if len(body) != 4*length {
			return nil, mmtfShort(codec, len(body), 4*length)
		}
		col.Ints = beInt32s(body)
	case 5:
		width := int(param)
		if width <= 0 || len(body) != width*length {
			return nil, mmtfShort(codec, len(body), width*length)
		}
		col.Strings = make([]string, length)
		for i := range col.Strings {
			chunk := body[i*width : (i+1)*width]
			n := 0
			for n < width && chunk[n] != 0 {
				n++
			}
			col.Strings[i] = string(chunk[:n])
		}
	case 6, 7, 8, 9:
		if len(body)%4 != 0 {
			return nil, mmtfShort(codec, len(body), len(body)/4*4+4)
		}
		var ints interface{}
		ints, err = decodeRunLength(beInt32s(body), Encoding{Kind: RunLength, SrcSize: length})
		if err != nil {
			break
		}
		vals := ints.([]int64)
		switch codec {
		case 6:
			col.Strings = make([]string, len(vals))
			for i, c := range vals {
				if c != 0 {
					col.Strings[i] = string(rune(c))
				}
			}
		case 7:
			col.Ints = vals
		case 8:
			d, _ := decodeDelta(vals, Encoding{Kind: Delta})
			col.Ints = d.([]int64)
		case 9:
			col.Floats, col.Decimals, err = divide(vals, param)
		}
	case 10:
		if len(body)%2 != 0 {
			return nil, mmtfShort(codec, len(body), len(body)+1)
		}
		var ints interface{}
		ints, err = decodeIntegerPacking(beInt16s(body), Encoding{Kind: IntegerPacking, ByteCount: 2, SrcSize: length})
		if err != nil {
			break
		}
		d, _ := decodeDelta(ints, Encoding{Kind: Delta})
		col.Floats, col.Decimals, err = divide(d.([]int64), param)
	default:
		err = molerr.New(molerr.UnsupportedFeature, "MMTF codec %d", codec)
	}
	if err != nil {
		return nil, molerr.Decorate(err, "codec.DecodeMMTF")
	}
	return col, nil
}

func mmtfShort(codec int32, got, want int) error {
	err := molerr.New(molerr.InvalidInput, "MMTF codec %d: %d bytes of data, expected %d", codec, got, want)
	err.Sub = molerr.CodecMismatch
	return err
}

func divide(v []int64, param int32) ([]float64, int, error) {
	if param == 0 {
		return nil, 0, molerr.New(molerr.Arithmetic, "MMTF divisor is zero")
	}
	out := make([]float64, len(v))
	for i, n := range v {
		out[i] = float64(n) / float64(param)
	}
	dec := int(math.Ceil(math.Log10(math.Abs(float64(param)))))
	if dec < 0 {
		dec = 0
	}
	return out, dec, nil
}

func beInt16s(b []byte) []int64 {
	out := make([]int64, len(b)/2)
	for i := range out {
		out[i] = int64(int16(binary.BigEndian.Uint16(b[2*i:])))
	}
	return out
}

func beInt32s(b []byte) []int64 {
	out := make([]int64, len(b)/4)
	for i := range out {
		out[i] = int64(int32(binary.BigEndian.Uint32(b[4*i:])))
	}
	return out
}

//EncodeMMTF encodes values with the given MMTF codec and parameter.
//Codecs 1, 9 and 10 take []float64, 5 and 6 take []string, the rest
//take []int64.
func EncodeMMTF(codec, param int32, values interface{}) ([]byte, error) {
	var n int
	var body []byte
	be := binary.BigEndian
	switch codec {
	case 1, 9, 10:
		f, ok := values.([]float64)
		if !ok {
			return nil, molerr.New(molerr.InvalidInput, "MMTF codec %d needs floats, got %T", codec, values)
		}
		n = len(f)
		if codec == 1 {
			for _, x := range f {
				body = be.AppendUint32(body, math.Float32bits(float32(x)))
			}
			break
		}
		if param == 0 {
			return nil, molerr.New(molerr.Arithmetic, "MMTF divisor is zero")
		}
		ints, _, err := EncodeFixedPoint(f, float64(param))
		if err != nil {
			return nil, molerr.Decorate(err, "codec.EncodeMMTF")
		}
		if codec == 9 {
			rl, _ := EncodeRunLength(ints)
			body = appendBE32(body, rl)
			break
		}
		d, e := EncodeDelta(ints)
		if len(d) > 0 {
			d[0] = e.Origin
		}
		for _, i := range packInts(d, 2, false) {
			body = be.AppendUint16(body, uint16(int16(i)))
		}
	case 5, 6:
		s, ok := values.([]string)
		if !ok {
			return nil, molerr.New(molerr.InvalidInput, "MMTF codec %d needs strings, got %T", codec, values)
		}
		n = len(s)
		if codec == 5 {
			if param <= 0 {
				return nil, molerr.New(molerr.InvalidInput, "MMTF string width %d", param)
			}
			for _, x := range s {
				if len(x) > int(param) {
					return nil, molerr.New(molerr.InvalidInput, "%q does not fit %d characters", x, param)
				}
				chunk := make([]byte, param)
				copy(chunk, x)
				body = append(body, chunk...)
			}
			break
		}
		chars := make([]int64, len(s))
		for i, x := range s {
			if x != "" {
				chars[i] = int64([]rune(x)[0])
			}
		}
		rl, _ := EncodeRunLength(chars)
		body = appendBE32(body, rl)
	case 2, 3, 4, 7, 8:
		ints, ok := values.([]int64)
		if !ok {
			return nil, molerr.New(molerr.InvalidInput, "MMTF codec %d needs integers, got %T", codec, values)
		}
		n = len(ints)
		switch codec {
		case 2:
			for _, i := range ints {
				if i < math.MinInt8 || i > math.MaxInt8 {
					return nil, molerr.New(molerr.InvalidInput, "%d does not fit 8 bits", i)
				}
				body = append(body, byte(int8(i)))
			}
		case 3:
			for _, i := range ints {
				if i < math.MinInt16 || i > math.MaxInt16 {
					return nil, molerr.New(molerr.InvalidInput, "%d does not fit 16 bits", i)
				}
				body = be.AppendUint16(body, uint16(int16(i)))
			}
		case 4:
			body = appendBE32(body, ints)
		case 7:
			rl, _ := EncodeRunLength(ints)
			body = appendBE32(body, rl)
		case 8:
			d, e := EncodeDelta(ints)
			if len(d) > 0 {
				d[0] = e.Origin
			}
			rl, _ := EncodeRunLength(d)
			body = appendBE32(body, rl)
		}
	default:
		return nil, molerr.New(molerr.UnsupportedFeature, "MMTF codec %d", codec)
	}
	out := make([]byte, 0, mmtfHeader+len(body))
	out = be.AppendUint32(out, uint32(codec))
	out = be.AppendUint32(out, uint32(n))
	out = be.AppendUint32(out, uint32(param))
	return append(out, body...), nil
}

func appendBE32(b []byte, v []int64) []byte {
	for _, i := range v {
		b = binary.BigEndian.AppendUint32(b, uint32(int32(i)))
	}
	return b
}

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

//Package msgpack reads and writes the MessagePack subset used by the binary
//structure formats. Maps are decoded into ordered dictionaries so the
//order of categories and columns in a file is kept.
package msgpack

import (
	"encoding/binary"
	"math"

	"github.com/Velocidex/ordereddict"
	"github.com/rmera/gomol/molerr"
)

//maxDepth bounds the nesting of arrays and maps.
const maxDepth = 256

//Decoder reads MessagePack values from a byte slice.
type Decoder struct {
	buf   []byte
	pos   int
	depth int
}

//NewDecoder returns a decoder reading from b.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

//Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int { return d.pos }

//Decode decodes the single value in b. Trailing bytes are an error.
//The returned value is one of nil, bool, int64, uint64 (only for values
//over math.MaxInt64), float64, string, []byte, []interface{} and
//*ordereddict.Dict.
func Decode(b []byte) (interface{}, error) {
	d := NewDecoder(b)
	v, err := d.Value()
	if err != nil {
		return nil, molerr.Decorate(err, "msgpack.Decode")
	}
	if d.pos != len(b) {
		return nil, molerr.AtOffset(molerr.InvalidInput, "", int64(d.pos), "%d trailing bytes after root value", len(b)-d.pos)
	}
	return v, nil
}

func (d *Decoder) need(n int) ([]byte, error) {
	if n < 0 || len(d.buf)-d.pos < n {
		return nil, molerr.AtOffset(molerr.InvalidInput, molerr.Truncated, int64(d.pos), "need %d bytes, %d left", n, len(d.buf)-d.pos)
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) uint(size int) (uint64, error) {
	b, err := d.need(size)
	if err != nil {
		return 0, err
	}
	switch size {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(b)), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(b)), nil
	default:
		return binary.BigEndian.Uint64(b), nil
	}
}

//Value decodes the next value.
func (d *Decoder) Value() (interface{}, error) {
	start := d.pos
	tb, err := d.need(1)
	if err != nil {
		return nil, err
	}
	t := tb[0]
	switch {
	case t <= 0x7f:
		return int64(t), nil
	case t >= 0xe0:
		return int64(int8(t)), nil
	case t&0xf0 == 0x80:
		return d.mapBody(int(t & 0x0f))
	case t&0xf0 == 0x90:
		return d.arrayBody(int(t & 0x0f))
	case t&0xe0 == 0xa0:
		return d.str(int(t & 0x1f))
	}
	switch t {
	case 0xc0:
		return nil, nil
	case 0xc2:
		return false, nil
	case 0xc3:
		return true, nil
	case 0xc4, 0xc5, 0xc6:
		n, err := d.uint(1 << (t - 0xc4))
		if err != nil {
			return nil, err
		}
		b, err := d.need(int(n))
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	case 0xca:
		u, err := d.uint(4)
		if err != nil {
			return nil, err
		}
		return float64(math.Float32frombits(uint32(u))), nil
	case 0xcb:
		u, err := d.uint(8)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(u), nil
	case 0xcc, 0xcd, 0xce, 0xcf:
		u, err := d.uint(1 << (t - 0xcc))
		if err != nil {
			return nil, err
		}
		if u > math.MaxInt64 {
			return u, nil
		}
		return int64(u), nil
	case 0xd0:
		u, err := d.uint(1)
		return int64(int8(u)), err
	case 0xd1:
		u, err := d.uint(2)
		return int64(int16(u)), err
	case 0xd2:
		u, err := d.uint(4)
		return int64(int32(u)), err
	case 0xd3:
		u, err := d.uint(8)
		return int64(u), err
	case 0xd9, 0xda, 0xdb:
		n, err := d.uint(1 << (t - 0xd9))
		if err != nil {
			return nil, err
		}
		return d.str(int(n))
	case 0xdc, 0xdd:
		n, err := d.uint(2 << (t - 0xdc))
		if err != nil {
			return nil, err
		}
		return d.arrayBody(int(n))
	case 0xde, 0xdf:
		n, err := d.uint(2 << (t - 0xde))
		if err != nil {
			return nil, err
		}
		return d.mapBody(int(n))
	}
	//0xc1 (never used), ext types and anything else.
	return nil, molerr.AtOffset(molerr.InvalidInput, molerr.BadTag, int64(start), "unsupported type tag 0x%02x", t)
}

func (d *Decoder) str(n int) (string, error) {
	b, err := d.need(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *Decoder) arrayBody(n int) ([]interface{}, error) {
	//every element takes at least one byte
	if n > len(d.buf)-d.pos {
		return nil, molerr.AtOffset(molerr.InvalidInput, molerr.Truncated, int64(d.pos), "array of %d elements in %d bytes", n, len(d.buf)-d.pos)
	}
	if d.depth++; d.depth > maxDepth {
		return nil, molerr.AtOffset(molerr.InvalidInput, "", int64(d.pos), "nesting deeper than %d", maxDepth)
	}
	defer func() { d.depth-- }()
	out := make([]interface{}, n)
	for i := range out {
		v, err := d.Value()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (d *Decoder) mapBody(n int) (*ordereddict.Dict, error) {
	if 2*n > len(d.buf)-d.pos {
		return nil, molerr.AtOffset(molerr.InvalidInput, molerr.Truncated, int64(d.pos), "map of %d entries in %d bytes", n, len(d.buf)-d.pos)
	}
	if d.depth++; d.depth > maxDepth {
		return nil, molerr.AtOffset(molerr.InvalidInput, "", int64(d.pos), "nesting deeper than %d", maxDepth)
	}
	defer func() { d.depth-- }()
	m := ordereddict.NewDict()
	for i := 0; i < n; i++ {
		kpos := d.pos
		k, err := d.Value()
		if err != nil {
			return nil, err
		}
		var key string
		switch kk := k.(type) {
		case string:
			key = kk
		case []byte:
			key = string(kk)
		default:
			return nil, molerr.AtOffset(molerr.InvalidInput, molerr.BadTag, int64(kpos), "map key of type %T", k)
		}
		v, err := d.Value()
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	return m, nil
}

/*
 * msgpack_test.go, part of gomol.
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
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/Velocidex/ordereddict"
	"github.com/rmera/gomol/molerr"
)

func TestRoundTrip(Te *testing.T) {
	inner := ordereddict.NewDict().
		Set("zeta", int64(-1)).
		Set("alpha", "x").
		Set("mid", []interface{}{int64(1), 2.5, nil, true})
	root := ordereddict.NewDict().
		Set("version", "0.3.0").
		Set("big", int64(1)<<40).
		Set("neg", int64(-70000)).
		Set("raw", []byte{1, 2, 3}).
		Set("inner", inner)
	b, err := Marshal(root)
	if err != nil {
		Te.Fatal(err)
	}
	v, err := Decode(b)
	if err != nil {
		Te.Fatal(err)
	}
	m, ok := Map(v)
	if !ok {
		Te.Fatalf("root decoded as %T", v)
	}
	keys := m.Keys()
	want := []string{"version", "big", "neg", "raw", "inner"}
	if len(keys) != len(want) {
		Te.Fatalf("keys %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			Te.Errorf("key %d is %s, want %s", i, keys[i], want[i])
		}
	}
	if i, _ := GetInt(m, "big"); i != 1<<40 {
		Te.Errorf("big decoded as %d", i)
	}
	if i, _ := GetInt(m, "neg"); i != -70000 {
		Te.Errorf("neg decoded as %d", i)
	}
	if raw, _ := Get(m, "raw").([]byte); !bytes.Equal(raw, []byte{1, 2, 3}) {
		Te.Errorf("raw decoded as %v", raw)
	}
	in, err := GetMap(m, "inner")
	if err != nil {
		Te.Fatal(err)
	}
	if in.Keys()[0] != "zeta" {
		Te.Errorf("inner order lost: %v", in.Keys())
	}
	mid, _ := GetArray(in, "mid", false)
	if len(mid) != 4 || mid[2] != nil || mid[3] != true {
		Te.Errorf("mid decoded as %v", mid)
	}
	if f, _ := Float(mid[1]); f != 2.5 {
		Te.Errorf("float decoded as %v", f)
	}
}

func TestSmallestForms(Te *testing.T) {
	cases := []struct {
		v    interface{}
		want []byte
	}{
		{int64(5), []byte{0x05}},
		{int64(-3), []byte{0xfd}},
		{int64(200), []byte{0xcc, 0xc8}},
		{int64(-100), []byte{0xd0, 0x9c}},
		{"ab", []byte{0xa2, 'a', 'b'}},
		{nil, []byte{0xc0}},
		{[]interface{}{}, []byte{0x90}},
	}
	for _, c := range cases {
		b, err := Marshal(c.v)
		if err != nil {
			Te.Fatal(err)
		}
		if !bytes.Equal(b, c.want) {
			Te.Errorf("%v encoded as %x, want %x", c.v, b, c.want)
		}
	}
	b, _ := Marshal(uint64(math.MaxUint64))
	v, err := Decode(b)
	if err != nil || v.(uint64) != math.MaxUint64 {
		Te.Errorf("max uint64 decoded as %v (%v)", v, err)
	}
}

func TestTruncated(Te *testing.T) {
	b, _ := Marshal(ordereddict.NewDict().Set("name", "atom_site"))
	_, err := Decode(b[:len(b)-2])
	if !errors.Is(err, molerr.ErrTruncated) {
		Te.Fatalf("expected truncated error, got %v", err)
	}
	var e *molerr.Error
	errors.As(err, &e)
	if e.Offset != 7 {
		Te.Errorf("truncation reported at %d", e.Offset)
	}
	//an array header promising more elements than there are bytes
	_, err = Decode([]byte{0xdd, 0xff, 0xff, 0xff, 0xff, 0x01})
	if !errors.Is(err, molerr.ErrTruncated) {
		Te.Errorf("expected truncated error for huge array, got %v", err)
	}
}

func TestBadTag(Te *testing.T) {
	_, err := Decode([]byte{0x92, 0x01, 0xc1})
	if !errors.Is(err, molerr.ErrBadTag) {
		Te.Fatalf("expected bad tag error, got %v", err)
	}
	var e *molerr.Error
	errors.As(err, &e)
	if e.Offset != 2 {
		Te.Errorf("bad tag reported at %d", e.Offset)
	}
	//ext types are not part of the subset
	if _, err := Decode([]byte{0xd4, 0x01, 0x02}); !errors.Is(err, molerr.ErrBadTag) {
		Te.Errorf("expected bad tag for fixext, got %v", err)
	}
	//maps must have string keys
	if _, err := Decode([]byte{0x81, 0x01, 0x02}); !errors.Is(err, molerr.ErrBadTag) {
		Te.Errorf("expected bad tag for integer key, got %v", err)
	}
}

func TestTrailing(Te *testing.T) {
	if _, err := Decode([]byte{0x01, 0x02}); !errors.Is(err, molerr.ErrInvalidInput) {
		Te.Errorf("expected invalid input for trailing bytes, got %v", err)
	}
}

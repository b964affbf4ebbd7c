/*
 * codec_test.go, part of gomol.
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
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/rmera/gomol/molerr"
	"github.com/rmera/gomol/msgpack"
)

func equalInts(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDeltaRunLengthPacking(Te *testing.T) {
	v := []int64{0, 0, 0, 1, 1, 2, 2, 2, 2, 2, 3, 3, 3, 4, 5, 6}
	plan := []Encoding{{Kind: Delta}, {Kind: RunLength}, {Kind: IntegerPacking}, {Kind: ByteArray}}
	b, chain, err := EncodeChain(v, plan)
	if err != nil {
		Te.Fatal(err)
	}
	if len(chain) != 4 {
		Te.Fatalf("chain has %d steps", len(chain))
	}
	col, err := Decode(b, chain)
	if err != nil {
		Te.Fatal(err)
	}
	if !equalInts(col.Ints, v) {
		Te.Errorf("decoded %v, want %v", col.Ints, v)
	}
}

//The chain must survive its trip through the map form stored in files.
func TestChainThroughMsgpack(Te *testing.T) {
	v := []int64{10, 11, 12, 300, 301, -7, -7, -7, 70000}
	b, chain, err := EncodeInts(v)
	if err != nil {
		Te.Fatal(err)
	}
	raw, err := msgpack.Marshal(ChainToList(chain))
	if err != nil {
		Te.Fatal(err)
	}
	back, err := msgpack.Decode(raw)
	if err != nil {
		Te.Fatal(err)
	}
	chain2, err := ChainFromList(back.([]interface{}))
	if err != nil {
		Te.Fatal(err)
	}
	col, err := Decode(b, chain2)
	if err != nil {
		Te.Fatal(err)
	}
	if !equalInts(col.Ints, v) {
		Te.Errorf("decoded %v, want %v", col.Ints, v)
	}
}

func TestIntChains(Te *testing.T) {
	inputs := [][]int64{
		{},
		{5},
		{1, 2, 3, 4, 5, 6, 7, 8, 9},
		{127, 128, 255, 256, -128, -129, 32767, -32768, 1 << 20},
		{7, 7, 7, 7, 7, 7, 7, 7},
		{math.MaxInt32, math.MinInt32, 0},
	}
	for _, v := range inputs {
		for _, plan := range intPlans {
			b, chain, err := EncodeChain(v, plan)
			if err != nil {
				Te.Fatalf("%v with %v: %v", v, plan, err)
			}
			col, err := Decode(b, chain)
			if err != nil {
				Te.Fatalf("%v with %v: %v", v, plan, err)
			}
			if !equalInts(col.Ints, v) {
				Te.Errorf("%v with %d steps decoded as %v", v, len(plan), col.Ints)
			}
		}
	}
}

//Values spread over the whole 32-bit range must not be packed into
//long runs of limit values.
func TestWideInts(Te *testing.T) {
	r := rand.New(rand.NewSource(42))
	v := make([]int64, 200)
	for i := range v {
		v[i] = int64(r.Int31()) - int64(r.Int31())
	}
	b, chain, err := EncodeInts(v)
	if err != nil {
		Te.Fatal(err)
	}
	if len(b) > 4*len(v) {
		Te.Errorf("%d values took %d bytes", len(v), len(b))
	}
	for _, e := range chain {
		if e.Kind == IntegerPacking {
			Te.Errorf("wide values were packed: %v", chain)
		}
	}
	col, err := Decode(b, chain)
	if err != nil {
		Te.Fatal(err)
	}
	if !equalInts(col.Ints, v) {
		Te.Errorf("wide values did not survive the round trip")
	}
	if in, packs := packingInput(v, intPlans[1]); !packs || packingPays(in) {
		Te.Errorf("packing the deltas of wide values should not pay")
	}
	if packingPays(v) {
		Te.Errorf("packing wide values should not pay")
	}
	if !packingPays([]int64{1, 2, 300, -5}) {
		Te.Errorf("packing small values should pay")
	}
}

func TestFloatChains(Te *testing.T) {
	v := []float64{4.534, 53.864, 43.326, -0.001, 0, 1234.5}
	b, chain, err := EncodeFloats(v, 3)
	if err != nil {
		Te.Fatal(err)
	}
	col, err := Decode(b, chain)
	if err != nil {
		Te.Fatal(err)
	}
	if col.Decimals != 3 {
		Te.Errorf("decimals %d", col.Decimals)
	}
	for i := range v {
		if math.Abs(col.Floats[i]-v[i]) > 0.0005 {
			Te.Errorf("element %d decoded as %f, want %f", i, col.Floats[i], v[i])
		}
	}
	if col.Text(0) != "4.534" {
		Te.Errorf("text %q", col.Text(0))
	}
	//too large for fixed point: stored as plain doubles.
	big := []float64{1e12, -3.5}
	b, chain, err = EncodeFloats(big, 3)
	if err != nil {
		Te.Fatal(err)
	}
	if len(chain) != 1 || chain[0].Type != Float64 {
		Te.Errorf("expected a single Float64 ByteArray, got %v", chain)
	}
	col, _ = Decode(b, chain)
	if col.Floats[0] != 1e12 || col.Floats[1] != -3.5 {
		Te.Errorf("decoded %v", col.Floats)
	}
	//interval quantization stays within one step.
	q := []float64{0, 0.25, 0.5, 0.99, 1}
	b, chain, err = EncodeChain(q, []Encoding{{Kind: IntervalQuantization, Min: 0, Max: 1, NumSteps: 101}, {Kind: IntegerPacking}, {Kind: ByteArray}})
	if err != nil {
		Te.Fatal(err)
	}
	col, err = Decode(b, chain)
	if err != nil {
		Te.Fatal(err)
	}
	for i := range q {
		if math.Abs(col.Floats[i]-q[i]) > 0.01 {
			Te.Errorf("quantized %f decoded as %f", q[i], col.Floats[i])
		}
	}
}

func TestStringArray(Te *testing.T) {
	v := []string{"ALA", "GLY", "ALA", "", "HOH", "GLY"}
	null := []bool{false, false, false, true, false, false}
	b, chain, err := EncodeStrings(v, null)
	if err != nil {
		Te.Fatal(err)
	}
	if chain[0].StringData != "ALAGLYHOH" {
		Te.Errorf("string data %q", chain[0].StringData)
	}
	//offsets are stored as a buffer, which Data passes through
	col, err := Decode(b, chain)
	if err != nil {
		Te.Fatal(err)
	}
	for i := range v {
		if col.IsNull(i) != null[i] {
			Te.Errorf("null flag %d is %v", i, col.IsNull(i))
		}
		if !null[i] && col.Strings[i] != v[i] {
			Te.Errorf("string %d decoded as %q", i, col.Strings[i])
		}
	}
}

func TestLegacyIntegerArray(Te *testing.T) {
	//some writers end a chain in a plain integer array
	data, err := Data([]interface{}{int64(3), int64(2), int64(9), int64(1)})
	if err != nil {
		Te.Fatal(err)
	}
	col, err := Decode(data, []Encoding{{Kind: RunLength, SrcSize: 3}})
	if err != nil {
		Te.Fatal(err)
	}
	if !equalInts(col.Ints, []int64{3, 3, 9}) {
		Te.Errorf("decoded %v", col.Ints)
	}
}

func TestMismatch(Te *testing.T) {
	//three bytes cannot hold int16 values
	_, err := Decode([]byte{1, 2, 3}, []Encoding{{Kind: ByteArray, Type: Int16}})
	if !errors.Is(err, molerr.ErrCodecMismatch) {
		Te.Errorf("expected codec mismatch, got %v", err)
	}
	//srcSize disagrees with the runs
	_, err = Decode([]int64{1, 4}, []Encoding{{Kind: RunLength, SrcSize: 3}})
	if !errors.Is(err, molerr.ErrCodecMismatch) {
		Te.Errorf("expected codec mismatch, got %v", err)
	}
	//FixedPoint fed with bytes
	_, err = Decode([]byte{1}, []Encoding{{Kind: FixedPoint, Factor: 10}})
	if !errors.Is(err, molerr.ErrCodecMismatch) {
		Te.Errorf("expected codec mismatch, got %v", err)
	}
	_, err = Decode([]byte{1}, []Encoding{{Kind: "Zigzag"}})
	if !errors.Is(err, molerr.ErrUnsupported) {
		Te.Errorf("expected unsupported, got %v", err)
	}
}

func TestMMTF(Te *testing.T) {
	ints := []int64{1, 1, 1, 5, 6, 6, -2}
	for _, c := range []int32{2, 3, 4, 7, 8} {
		b, err := EncodeMMTF(c, 0, ints)
		if err != nil {
			Te.Fatal(err)
		}
		col, err := DecodeMMTF(b)
		if err != nil {
			Te.Fatal(err)
		}
		if !equalInts(col.Ints, ints) {
			Te.Errorf("codec %d decoded %v", c, col.Ints)
		}
	}
	coords := []float64{4.534, 53.864, 43.326, 43.327, -12.001, 100}
	for _, c := range []int32{9, 10} {
		b, err := EncodeMMTF(c, 1000, coords)
		if err != nil {
			Te.Fatal(err)
		}
		col, err := DecodeMMTF(b)
		if err != nil {
			Te.Fatal(err)
		}
		for i := range coords {
			if math.Abs(col.Floats[i]-coords[i]) > 1e-9 {
				Te.Errorf("codec %d element %d: %f", c, i, col.Floats[i])
			}
		}
		if col.Text(0) != "4.534" {
			Te.Errorf("codec %d text %q", c, col.Text(0))
		}
	}
	strs := []string{"A", "BB", "", "CCCC"}
	b, err := EncodeMMTF(5, 4, strs)
	if err != nil {
		Te.Fatal(err)
	}
	col, _ := DecodeMMTF(b)
	for i := range strs {
		if col.Strings[i] != strs[i] {
			Te.Errorf("codec 5 string %d: %q", i, col.Strings[i])
		}
	}
	chars := []string{"", "", "A", "A", "B"}
	b, _ = EncodeMMTF(6, 0, chars)
	col, _ = DecodeMMTF(b)
	for i := range chars {
		if col.Strings[i] != chars[i] {
			Te.Errorf("codec 6 char %d: %q", i, col.Strings[i])
		}
	}
	if _, err := DecodeMMTF([]byte{0, 0, 0, 99, 0, 0, 0, 0, 0, 0, 0, 0}); !errors.Is(err, molerr.ErrUnsupported) {
		Te.Errorf("expected unsupported codec, got %v", err)
	}
	if _, err := DecodeMMTF([]byte{0, 0, 0}); !errors.Is(err, molerr.ErrTruncated) {
		Te.Errorf("expected truncated header, got %v", err)
	}
}

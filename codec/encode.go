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

package codec

import (
	"encoding/binary"
	"math"

	"github.com/rmera/gomol/molerr"
)

//EncodeChain applies plan to values, in order, and returns the final buffer
//together with the chain as it must be stored. Only Kind needs to be set
//in the plan steps, except for FixedPoint (Factor) and IntervalQuantization
//(Min, Max, NumSteps); every other parameter is computed from the data.
//values can be a []int64, a []float64, or a []string (StringArray only).
//The last step must produce bytes, so plans end in ByteArray or StringArray.
func EncodeChain(values interface{}, plan []Encoding) ([]byte, []Encoding, error) {
	cur := values
	chain := make([]Encoding, 0, len(plan))
	var err error
	for _, step := range plan {
		var e Encoding
		switch step.Kind {
		case ByteArray:
			cur, e, err = encodeByteArray(cur)
		case FixedPoint:
			f, ok := cur.([]float64)
			if !ok {
				return nil, nil, molerr.New(molerr.InvalidInput, "FixedPoint needs floats, got %T", cur)
			}
			cur, e, err = EncodeFixedPoint(f, step.Factor)
		case IntervalQuantization:
			f, ok := cur.([]float64)
			if !ok {
				return nil, nil, molerr.New(molerr.InvalidInput, "IntervalQuantization needs floats, got %T", cur)
			}
			cur, e, err = EncodeIntervalQuantization(f, step.Min, step.Max, step.NumSteps)
		case RunLength, Delta, IntegerPacking:
			ints, ok := cur.([]int64)
			if !ok {
				return nil, nil, molerr.New(molerr.InvalidInput, "%s needs integers, got %T", step.Kind, cur)
			}
			switch step.Kind {
			case RunLength:
				cur, e = EncodeRunLength(ints)
			case Delta:
				cur, e = EncodeDelta(ints)
			default:
				cur, e = EncodeIntegerPacking(ints, step.ByteCount)
			}
		case StringArray:
			s, ok := cur.([]string)
			if !ok {
				return nil, nil, molerr.New(molerr.InvalidInput, "StringArray needs strings, got %T", cur)
			}
			cur, e, err = EncodeStringArray(s, nil)
		default:
			err = molerr.New(molerr.UnsupportedFeature, "encoding kind %q", step.Kind)
		}
		if err != nil {
			return nil, nil, molerr.Decorate(err, "codec.EncodeChain")
		}
		chain = append(chain, e)
	}
	b, ok := cur.([]byte)
	if !ok {
		return nil, nil, molerr.New(molerr.InvalidInput, "codec.EncodeChain: plan ends with %T, not bytes", cur)
	}
	return b, chain, nil
}

func encodeByteArray(v interface{}) ([]byte, Encoding, error) {
	switch x := v.(type) {
	case []int64:
		return EncodeIntBytes(x)
	case []float64:
		b := make([]byte, 0, 8*len(x))
		for _, f := range x {
			b = binary.LittleEndian.AppendUint64(b, math.Float64bits(f))
		}
		return b, Encoding{Kind: ByteArray, Type: Float64}, nil
	}
	return nil, Encoding{}, molerr.New(molerr.InvalidInput, "ByteArray cannot store %T", v)
}

//EncodeIntBytes stores integers in the smallest little-endian type that
//holds all of them.
func EncodeIntBytes(v []int64) ([]byte, Encoding, error) {
	lo, hi := int64(0), int64(0)
	for _, i := range v {
		if i < lo {
			lo = i
		}
		if i > hi {
			hi = i
		}
	}
	var t DataType
	switch {
	case lo >= 0 && hi <= math.MaxUint8:
		t = Uint8
	case lo >= math.MinInt8 && hi <= math.MaxInt8:
		t = Int8
	case lo >= 0 && hi <= math.MaxUint16:
		t = Uint16
	case lo >= math.MinInt16 && hi <= math.MaxInt16:
		t = Int16
	case lo >= 0 && hi <= math.MaxUint32:
		t = Uint32
	case lo >= math.MinInt32 && hi <= math.MaxInt32:
		t = Int32
	default:
		return nil, Encoding{}, molerr.New(molerr.UnsupportedFeature, "integers outside the 32-bit range [%d, %d]", lo, hi)
	}
	b := make([]byte, 0, t.Size()*len(v))
	le := binary.LittleEndian
	for _, i := range v {
		switch t.Size() {
		case 1:
			b = append(b, byte(i))
		case 2:
			b = le.AppendUint16(b, uint16(i))
		default:
			b = le.AppendUint32(b, uint32(i))
		}
	}
	return b, Encoding{Kind: ByteArray, Type: t}, nil
}

//EncodeFixedPoint multiplies by factor and rounds to integers.
func EncodeFixedPoint(v []float64, factor float64) ([]int64, Encoding, error) {
	if factor == 0 {
		return nil, Encoding{}, molerr.New(molerr.InvalidInput, "FixedPoint factor is zero")
	}
	out := make([]int64, len(v))
	for i, f := range v {
		s := math.Round(f * factor)
		if math.IsNaN(s) || s > math.MaxInt32 || s < math.MinInt32 {
			return nil, Encoding{}, molerr.New(molerr.Arithmetic, "%g does not fit a 32-bit fixed point with factor %g", f, factor)
		}
		out[i] = int64(s)
	}
	return out, Encoding{Kind: FixedPoint, Factor: factor, SrcType: Float64}, nil
}

//EncodeIntervalQuantization maps each value to the nearest of steps evenly
//spaced points between min and max. Values outside are clamped.
func EncodeIntervalQuantization(v []float64, min, max float64, steps int) ([]int64, Encoding, error) {
	if steps < 2 || !(max > min) {
		return nil, Encoding{}, molerr.New(molerr.InvalidInput, "bad interval [%g, %g] with %d steps", min, max, steps)
	}
	delta := (max - min) / float64(steps-1)
	out := make([]int64, len(v))
	for i, f := range v {
		switch {
		case f <= min:
			out[i] = 0
		case f >= max:
			out[i] = int64(steps - 1)
		default:
			out[i] = int64(math.Round((f - min) / delta))
		}
	}
	return out, Encoding{Kind: IntervalQuantization, Min: min, Max: max, NumSteps: steps, SrcType: Float64}, nil
}

//EncodeRunLength turns v into value/count pairs.
func EncodeRunLength(v []int64) ([]int64, Encoding) {
	e := Encoding{Kind: RunLength, SrcType: Int32, SrcSize: len(v)}
	if len(v) == 0 {
		return []int64{}, e
	}
	out := make([]int64, 0, 8)
	val, count := v[0], int64(1)
	for _, i := range v[1:] {
		if i == val {
			count++
			continue
		}
		out = append(out, val, count)
		val, count = i, 1
	}
	out = append(out, val, count)
	return out, e
}

//EncodeDelta stores the first value as the origin and every element as
//the difference to the previous one. The first element is always 0.
func EncodeDelta(v []int64) ([]int64, Encoding) {
	e := Encoding{Kind: Delta, SrcType: Int32}
	out := make([]int64, len(v))
	if len(v) == 0 {
		return out, e
	}
	e.Origin = v[0]
	for i := 1; i < len(v); i++ {
		out[i] = v[i] - v[i-1]
	}
	return out, e
}

//EncodeIntegerPacking splits values that don't fit byteCount bytes into
//sums of limit values. A byteCount of 0 chooses the smaller of 1 and 2.
func EncodeIntegerPacking(v []int64, byteCount int) ([]int64, Encoding) {
	unsigned := true
	for _, i := range v {
		if i < 0 {
			unsigned = false
			break
		}
	}
	if byteCount == 0 {
		byteCount = 1
		if packedLen(v, 2, unsigned)*2 < packedLen(v, 1, unsigned) {
			byteCount = 2
		}
	}
	return packInts(v, byteCount, unsigned), Encoding{Kind: IntegerPacking, ByteCount: byteCount, IsUnsigned: unsigned, SrcSize: len(v)}
}

func packInts(v []int64, byteCount int, unsigned bool) []int64 {
	upper, lower := packLimits(byteCount, unsigned)
	out := make([]int64, 0, packedLen(v, byteCount, unsigned))
	for _, i := range v {
		if i >= 0 {
			for i >= upper {
				out = append(out, upper)
				i -= upper
			}
		} else {
			for i <= lower {
				out = append(out, lower)
				i -= lower
			}
		}
		out = append(out, i)
	}
	return out
}

func packedLen(v []int64, byteCount int, unsigned bool) int {
	upper, lower := packLimits(byteCount, unsigned)
	n := 0
	for _, i := range v {
		if i >= 0 {
			n += int(i/upper) + 1
		} else {
			n += int(i/lower) + 1
		}
	}
	return n
}

//EncodeStringArray stores the distinct strings once, in order of first
//appearance, and the column as indices into them. null marks absent
//entries, stored as index -1; it can be nil.
func EncodeStringArray(v []string, null []bool) ([]byte, Encoding, error) {
	index := make(map[string]int64)
	offsets := []int64{0}
	indices := make([]int64, len(v))
	var data []byte
	for i, s := range v {
		if null != nil && null[i] {
			indices[i] = -1
			continue
		}
		n, ok := index[s]
		if !ok {
			n = int64(len(offsets) - 1)
			index[s] = n
			data = append(data, s...)
			offsets = append(offsets, int64(len(data)))
		}
		indices[i] = n
	}
	idxBytes, idxChain, err := EncodeInts(indices)
	if err != nil {
		return nil, Encoding{}, err
	}
	offBytes, offChain, err := EncodeInts(offsets)
	if err != nil {
		return nil, Encoding{}, err
	}
	e := Encoding{
		Kind:           StringArray,
		StringData:     string(data),
		Offsets:        offBytes,
		DataEncoding:   idxChain,
		OffsetEncoding: offChain,
	}
	return idxBytes, e, nil
}

//intPlans are tried in order, and a plan must be strictly smaller than
//the ones before it to be chosen.
var intPlans = [][]Encoding{
	{{Kind: IntegerPacking}, {Kind: ByteArray}},
	{{Kind: Delta}, {Kind: IntegerPacking}, {Kind: ByteArray}},
	{{Kind: RunLength}, {Kind: IntegerPacking}, {Kind: ByteArray}},
	{{Kind: Delta}, {Kind: RunLength}, {Kind: IntegerPacking}, {Kind: ByteArray}},
	{{Kind: ByteArray}},
	{{Kind: Delta}, {Kind: ByteArray}},
}

//packingInput runs the Delta and RunLength steps of plan that come before
//IntegerPacking, and returns what the packing would receive. ok is false
//if plan does no packing.
func packingInput(v []int64, plan []Encoding) (in []int64, ok bool) {
	in = v
	for _, step := range plan {
		switch step.Kind {
		case Delta:
			in, _ = EncodeDelta(in)
		case RunLength:
			in, _ = EncodeRunLength(in)
		case IntegerPacking:
			return in, true
		}
	}
	return in, false
}

//packingPays tells whether packing v into 1 or 2 bytes takes no more room
//than storing it as 32-bit integers.
func packingPays(v []int64) bool {
	unsigned := true
	for _, i := range v {
		if i < 0 {
			unsigned = false
			break
		}
	}
	limit := 4 * len(v)
	return packedLen(v, 1, unsigned) <= limit || 2*packedLen(v, 2, unsigned) <= limit
}

//EncodeInts tries the usual integer chains and keeps the smallest output.
//Chains that pack values wide enough to blow up in size are not tried.
func EncodeInts(v []int64) ([]byte, []Encoding, error) {
	var best []byte
	var bestChain []Encoding
	var lastErr error
	for _, plan := range intPlans {
		if in, packs := packingInput(v, plan); packs && !packingPays(in) {
			continue
		}
		b, chain, err := EncodeChain(v, plan)
		if err != nil {
			lastErr = err
			continue
		}
		if bestChain == nil || len(b) < len(best) {
			best, bestChain = b, chain
		}
	}
	if bestChain == nil {
		return nil, nil, molerr.Decorate(lastErr, "codec.EncodeInts")
	}
	return best, bestChain, nil
}

//EncodeFloats stores v as fixed point numbers with the given number of
//decimal places, then as integers. When the scaled values don't fit 32
//bits the plain 64-bit floats are stored instead.
func EncodeFloats(v []float64, decimals int) ([]byte, []Encoding, error) {
	factor := math.Pow(10, float64(decimals))
	fixed, fe, err := EncodeFixedPoint(v, factor)
	if err != nil {
		b, e, err := encodeByteArray(v)
		if err != nil {
			return nil, nil, err
		}
		return b, []Encoding{e}, nil
	}
	b, chain, err := EncodeInts(fixed)
	if err != nil {
		return nil, nil, err
	}
	return b, append([]Encoding{fe}, chain...), nil
}

//EncodeStrings stores a string column.
func EncodeStrings(v []string, null []bool) ([]byte, []Encoding, error) {
	b, e, err := EncodeStringArray(v, null)
	if err != nil {
		return nil, nil, err
	}
	return b, []Encoding{e}, nil
}

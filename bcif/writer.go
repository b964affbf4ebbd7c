/*
 * writer.go, part of gomol.
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

package bcif

import (
	"strconv"
	"strings"

	"github.com/Velocidex/ordereddict"
	"github.com/rmera/gomol/codec"
	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/molerr"
	"github.com/rmera/gomol/msgpack"
)

//Encoder and Version are written in the header of every file.
const (
	Encoder = "gomol"
	Version = "0.3.0"
)

//Options control how columns are compressed.
type Options struct {
	//Precision is the largest number of decimal places a column can have
	//and still be stored as fixed point numbers. Columns with more decimals
	//are stored as text, so no digit is ever lost.
	Precision int
}

//DefaultOptions returns the options used by Write.
func DefaultOptions() *Options {
	return &Options{Precision: 3}
}

//Write encodes a DataDict as BinaryCIF with the default options.
func Write(d *dict.DataDict) ([]byte, error) {
	return WriteWith(d, DefaultOptions())
}

//WriteWith encodes a DataDict as BinaryCIF. Every column is stored as
//integers, fixed point numbers or strings, whichever represents all its
//values exactly. The sentinels go to the column mask.
func WriteWith(d *dict.DataDict, o *Options) ([]byte, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if err := dict.Validate(d); err != nil {
		return nil, molerr.Decorate(err, "bcif.Write")
	}
	cats := make([]interface{}, 0, d.Len())
	for _, c := range d.Categories() {
		if c.Len() == 0 {
			continue
		}
		cols := make([]interface{}, 0, len(c.Fields))
		for _, f := range c.Fields {
			col, err := encodeColumn(f, c.Stored(f), o)
			if err != nil {
				return nil, molerr.Decorate(err, "bcif.Write: "+c.Name+"."+f)
			}
			cols = append(cols, col)
		}
		cats = append(cats, ordereddict.NewDict().
			Set("name", "_"+c.Name).
			Set("columns", cols).
			Set("rowCount", int64(c.Len())))
	}
	header := d.Name
	if id := d.Get("entry", 0, "id"); !dict.IsSentinel(id) {
		header = id
	}
	block := ordereddict.NewDict().Set("header", header).Set("categories", cats)
	root := ordereddict.NewDict().
		Set("version", Version).
		Set("encoder", Encoder).
		Set("dataBlocks", []interface{}{block})
	b, err := msgpack.Marshal(root)
	if err != nil {
		return nil, molerr.Decorate(err, "bcif.Write")
	}
	return b, nil
}

//kind of values a column can be stored as.
const (
	intColumn = iota
	floatColumn
	stringColumn
)

//classify returns how the non-sentinel values can be stored, and, for
//floats, the number of decimal places they share.
func classify(values []string, precision int) (int, int) {
	ints, floats := true, true
	decimals := -1
	seen := false
	for _, v := range values {
		if dict.IsSentinel(v) {
			continue
		}
		seen = true
		if ints {
			i, err := strconv.ParseInt(v, 10, 64)
			ints = err == nil && strconv.FormatInt(i, 10) == v
		}
		if floats {
			n, ok := fixedDecimals(v)
			floats = ok && n <= precision && (decimals < 0 || n == decimals)
			decimals = n
		}
		if !ints && !floats {
			break
		}
	}
	switch {
	case !seen:
		return stringColumn, -1
	case ints:
		return intColumn, -1
	case floats:
		return floatColumn, decimals
	}
	return stringColumn, -1
}

//fixedDecimals returns the number of decimal places of v if v is a plain
//decimal number that formats back to itself.
func fixedDecimals(v string) (int, bool) {
	dot := strings.IndexByte(v, '.')
	if dot < 0 || !dict.IsNumber(v) || strings.ContainsAny(v, "eE+") {
		return 0, false
	}
	n := len(v) - dot - 1
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || dict.FormatFixed(f, n) != v {
		return 0, false
	}
	return n, true
}

func encodeColumn(name string, values []string, o *Options) (*ordereddict.Dict, error) {
	mask := make([]int64, len(values))
	masked := false
	for i, v := range values {
		switch v {
		case dict.NotApplicable:
			mask[i], masked = notApplicable, true
		case dict.Unknown, "":
			mask[i], masked = unknown, true
		default:
			mask[i] = present
		}
	}
	var data []byte
	var chain []codec.Encoding
	var err error
	kind, decimals := classify(values, o.Precision)
	values = append([]string(nil), values...)
	for i, v := range values {
		values[i] = dict.Text(v)
	}
	switch kind {
	case intColumn:
		ints := make([]int64, len(values))
		for i, v := range values {
			if mask[i] == present {
				ints[i], _ = strconv.ParseInt(v, 10, 64)
			}
		}
		data, chain, err = codec.EncodeInts(ints)
	case floatColumn:
		floats := make([]float64, len(values))
		for i, v := range values {
			if mask[i] == present {
				floats[i], _ = strconv.ParseFloat(v, 64)
			}
		}
		data, chain, err = codec.EncodeFloats(floats, decimals)
		if err == nil && (len(chain) == 0 || chain[0].Kind != codec.FixedPoint) {
			//too large for fixed point, keep the text
			kind = stringColumn
		}
	}
	if kind == stringColumn {
		null := make([]bool, len(values))
		for i := range values {
			null[i] = mask[i] != present
		}
		data, chain, err = codec.EncodeStrings(values, null)
	}
	if err != nil {
		return nil, err
	}
	col := ordereddict.NewDict().Set("name", name).
		Set("data", ordereddict.NewDict().Set("data", data).Set("encoding", codec.ChainToList(chain)))
	if !masked {
		col.Set("mask", nil)
		return col, nil
	}
	mdata, mchain, err := codec.EncodeInts(mask)
	if err != nil {
		return nil, molerr.Decorate(err, "mask")
	}
	col.Set("mask", ordereddict.NewDict().Set("data", mdata).Set("encoding", codec.ChainToList(mchain)))
	return col, nil
}

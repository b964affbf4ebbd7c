/*
 * reader.go, part of gomol.
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

//Package bcif reads and writes BinaryCIF: the categories of a CIF data
//block stored column by column, each column compressed with a chain of
//codecs and the whole file framed as MessagePack.
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

//Mask values. A masked entry holds no data; the mask says which sentinel
//stands in for it.
const (
	present       = 0
	notApplicable = 1
	unknown       = 2
)

//Read decodes the first data block of a BinaryCIF file into a DataDict.
//Numbers are written in canonical decimal form, with as many decimal places
//as the fixed point or quantization codec kept.
func Read(b []byte) (*dict.DataDict, error) {
	d, err := read(b)
	if err != nil {
		return nil, molerr.Decorate(err, "bcif.Read")
	}
	dict.Canonicalize(d)
	return d, nil
}

func read(b []byte) (*dict.DataDict, error) {
	v, err := msgpack.Decode(b)
	if err != nil {
		return nil, err
	}
	root, ok := msgpack.Map(v)
	if !ok {
		return nil, molerr.New(molerr.InvalidInput, "top level value is a %T, not a map", v)
	}
	blocks, err := msgpack.GetArray(root, "dataBlocks", false)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, molerr.New(molerr.InvalidInput, "no data blocks")
	}
	block, ok := msgpack.Map(blocks[0])
	if !ok {
		return nil, molerr.New(molerr.InvalidInput, "data block is a %T, not a map", blocks[0])
	}
	name, _ := msgpack.Str(msgpack.Get(block, "header"))
	d := dict.New(name)
	cats, err := msgpack.GetArray(block, "categories", false)
	if err != nil {
		return nil, err
	}
	for i, raw := range cats {
		m, ok := msgpack.Map(raw)
		if !ok {
			return nil, molerr.New(molerr.InvalidInput, "category %d is a %T, not a map", i, raw)
		}
		c, err := readCategory(m)
		if err != nil {
			return nil, err
		}
		if c.Len() > 0 {
			d.Put(c)
		}
	}
	return d, nil
}

func readCategory(m *ordereddict.Dict) (*dict.Category, error) {
	name, err := msgpack.GetString(m, "name")
	if err != nil {
		return nil, err
	}
	name = strings.TrimPrefix(name, "_")
	if !dict.ValidName(name) {
		return nil, molerr.New(molerr.InvalidInput, "bad category name %q", name)
	}
	rows, err := msgpack.GetInt(m, "rowCount")
	if err != nil {
		return nil, molerr.Decorate(err, name)
	}
	cols, err := msgpack.GetArray(m, "columns", false)
	if err != nil {
		return nil, molerr.Decorate(err, name)
	}
	c := dict.NewCategory(name)
	values := make([][]string, 0, len(cols))
	for _, raw := range cols {
		cm, ok := msgpack.Map(raw)
		if !ok {
			return nil, molerr.InEntry(molerr.InvalidInput, name, -1, "", "column is a %T, not a map", raw)
		}
		field, vals, err := readColumn(cm)
		if err != nil {
			return nil, molerr.Decorate(err, name+"."+field)
		}
		if int64(len(vals)) != rows {
			return nil, molerr.InEntry(molerr.SchemaViolation, name, -1, field, "%d values for %d rows", len(vals), rows)
		}
		if c.HasField(field) {
			return nil, molerr.InEntry(molerr.SchemaViolation, name, -1, field, "repeated field")
		}
		c.AddField(field, dict.Unknown)
		values = append(values, vals)
	}
	for i := 0; i < int(rows); i++ {
		row := make([]string, len(values))
		for j := range values {
			row[j] = values[j][i]
		}
		if err := c.AddRow(row...); err != nil {
			return nil, err
		}
	}
	return c, nil
}

//readColumn returns the name and the values of a column, masks applied.
func readColumn(m *ordereddict.Dict) (string, []string, error) {
	field, err := msgpack.GetString(m, "name")
	if err != nil {
		return "", nil, err
	}
	if !dict.ValidName(field) {
		return field, nil, molerr.New(molerr.InvalidInput, "bad field name %q", field)
	}
	dm, err := msgpack.GetMap(m, "data")
	if err != nil {
		return field, nil, err
	}
	col, err := decodeData(dm)
	if err != nil {
		return field, nil, err
	}
	var mask *codec.Column
	if mm, ok := msgpack.Map(msgpack.Get(m, "mask")); ok {
		if mask, err = decodeData(mm); err != nil {
			return field, nil, molerr.Decorate(err, "mask")
		}
		if mask.Ints == nil && mask.Len() > 0 {
			return field, nil, molerr.New(molerr.InvalidInput, "mask is not an integer column")
		}
		if mask.Len() != col.Len() {
			return field, nil, molerr.New(molerr.InvalidInput, "mask has %d entries for %d values", mask.Len(), col.Len())
		}
	}
	ret := make([]string, col.Len())
	for i := range ret {
		if mask != nil {
			switch mask.Ints[i] {
			case notApplicable:
				ret[i] = dict.NotApplicable
				continue
			case unknown:
				ret[i] = dict.Unknown
				continue
			}
		}
		if col.IsNull(i) {
			ret[i] = dict.Unknown
			continue
		}
		ret[i] = text(col, i)
	}
	return field, ret, nil
}

func decodeData(m *ordereddict.Dict) (*codec.Column, error) {
	enc, err := msgpack.GetArray(m, "encoding", true)
	if err != nil {
		return nil, err
	}
	chain, err := codec.ChainFromList(enc)
	if err != nil {
		return nil, err
	}
	data, err := codec.Data(msgpack.Get(m, "data"))
	if err != nil {
		return nil, err
	}
	return codec.Decode(data, chain)
}

//text renders element i of a decoded column the way it would appear in a
//CIF file.
func text(c *codec.Column, i int) string {
	switch {
	case c.Strings != nil:
		return dict.Literal(c.Strings[i])
	case c.Floats != nil:
		f := c.Floats[i]
		if c.Decimals >= 0 {
			return dict.FormatFixed(f, c.Decimals)
		}
		if c.Single {
			s := strconv.FormatFloat(f, 'f', -1, 32)
			if !strings.ContainsRune(s, '.') {
				s += ".0"
			}
			return s
		}
		return dict.FormatFloat(f, -1)
	}
	return strconv.FormatInt(c.Ints[i], 10)
}

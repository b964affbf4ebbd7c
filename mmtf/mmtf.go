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

//Package mmtf reads and writes the Macromolecular Transmission Format: a
//MessagePack map of per-atom, per-group and per-chain arrays, most of them
//packed with the MMTF binary codecs. Both directions go through a
//DataDict, like every other format.
package mmtf

import (
	"strconv"

	"github.com/Velocidex/ordereddict"
	"github.com/rmera/gomol/codec"
	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/molerr"
	"github.com/rmera/gomol/msgpack"
)

//Version and Producer are written to every file.
const (
	Version  = "1.0.0"
	Producer = "gomol"
)

//groupType is an entry of groupList: everything the atoms of a residue
//share with all the other residues of the same type.
type groupType struct {
	Name      string
	AtomNames []string
	Elements  []string
	Charges   []int64
	Bonds     []int64
	Orders    []int64
	Code      string
	ChemType  string
}

type entity struct {
	Chains      []int64
	Description string
	Type        string
	Sequence    string
}

type transform struct {
	Chains []int64
	Matrix []float64 //4x4, column major
}

type assembly struct {
	Name       string
	Transforms []transform
}

//structure holds the decoded fields of a file. Numeric per-atom fields
//stay as columns so the precision they were stored with is known.
type structure struct {
	ID, Title, Date    string
	Methods            []string
	Resolution         interface{}
	RFree, RWork       interface{}
	Cell               []float64
	SpaceGroup         string
	Groups             []groupType
	X, Y, Z            *codec.Column
	B, Occupancy       *codec.Column
	AtomIDs            []int64
	AltLocs            []string
	Bonds, BondOrders  []int64
	GroupIDs           []int64
	GroupTypes         []int64
	SecStruct          []int64
	InsCodes           []string
	SeqIndex           []int64
	ChainIDs           []string
	ChainNames         []string
	GroupsPerChain     []int64
	ChainsPerModel     []int64
	Entities           []entity
	Assemblies         []assembly
	NCS                [][]float64
}

//column decodes a field that can be a binary MMTF field or a plain array.
//A missing field gives nil.
func column(m *ordereddict.Dict, key string) (*codec.Column, error) {
	switch v := msgpack.Get(m, key).(type) {
	case nil:
		return nil, nil
	case []byte:
		c, err := codec.DecodeMMTF(v)
		if err != nil {
			return nil, molerr.Decorate(err, key)
		}
		return c, nil
	case string:
		//some writers store binary fields as strings
		if len(v) >= 12 && v[0] == 0 {
			c, err := codec.DecodeMMTF([]byte(v))
			if err != nil {
				return nil, molerr.Decorate(err, key)
			}
			return c, nil
		}
	case []interface{}:
		if ints, err := msgpack.Ints(v); err == nil {
			return &codec.Column{Ints: ints, Decimals: -1}, nil
		}
		if f, err := msgpack.Floats(v); err == nil {
			return &codec.Column{Floats: f, Decimals: -1}, nil
		}
		if s, err := msgpack.Strings(v); err == nil {
			return &codec.Column{Strings: s, Decimals: -1}, nil
		}
	}
	return nil, molerr.New(molerr.InvalidInput, "field %s can't be read from a %T", key, msgpack.Get(m, key))
}

func ints(m *ordereddict.Dict, key string) ([]int64, error) {
	c, err := column(m, key)
	if err != nil || c == nil {
		return nil, err
	}
	if c.Ints == nil && c.Len() > 0 {
		return nil, molerr.New(molerr.InvalidInput, "field %s is not an integer array", key)
	}
	if c.Ints == nil {
		return []int64{}, nil
	}
	return c.Ints, nil
}

func strs(m *ordereddict.Dict, key string) ([]string, error) {
	c, err := column(m, key)
	if err != nil || c == nil {
		return nil, err
	}
	if c.Strings == nil && c.Len() > 0 {
		return nil, molerr.New(molerr.InvalidInput, "field %s is not a string array", key)
	}
	if c.Strings == nil {
		return []string{}, nil
	}
	return c.Strings, nil
}

func reals(m *ordereddict.Dict, key string) (*codec.Column, error) {
	c, err := column(m, key)
	if err != nil || c == nil {
		return nil, err
	}
	if c.Strings != nil {
		return nil, molerr.New(molerr.InvalidInput, "field %s is not a numeric array", key)
	}
	return c, nil
}

//value returns element i of a numeric column.
func value(c *codec.Column, i int) float64 {
	if c.Floats != nil {
		return c.Floats[i]
	}
	return float64(c.Ints[i])
}

//text formats element i of a numeric column with the decimals the codec
//kept, or as short as possible if those are unknown.
func text(c *codec.Column, i int) string {
	f := value(c, i)
	if c.Decimals >= 0 {
		return dict.FormatFloat(f, c.Decimals)
	}
	return formatReal(f)
}

//formatReal prints f in its shortest form. Values that are exactly a
//single precision number are printed as such, so a float32 1.9 reads
//"1.9", not "1.8999999761581421".
func formatReal(f float64) string {
	if float64(float32(f)) == f {
		s := strconv.FormatFloat(f, 'f', -1, 32)
		for _, c := range s {
			if c == '.' {
				return s
			}
		}
		return s + ".0"
	}
	return dict.FormatFloat(f, -1)
}

//decode reads the MessagePack map of a file into a structure.
func decode(b []byte) (*structure, error) {
	v, err := msgpack.Decode(b)
	if err != nil {
		return nil, err
	}
	m, ok := msgpack.Map(v)
	if !ok {
		return nil, molerr.New(molerr.InvalidInput, "top level value is a %T, not a map", v)
	}
	s := new(structure)
	s.ID, _ = msgpack.Str(msgpack.Get(m, "structureId"))
	s.Title, _ = msgpack.Str(msgpack.Get(m, "title"))
	s.Date, _ = msgpack.Str(msgpack.Get(m, "depositionDate"))
	s.SpaceGroup, _ = msgpack.Str(msgpack.Get(m, "spaceGroup"))
	s.Resolution = msgpack.Get(m, "resolution")
	s.RFree = msgpack.Get(m, "rFree")
	s.RWork = msgpack.Get(m, "rWork")
	if a, err := msgpack.GetArray(m, "experimentalMethods", true); err != nil {
		return nil, err
	} else if s.Methods, err = msgpack.Strings(a); err != nil {
		return nil, molerr.Decorate(err, "experimentalMethods")
	}
	if a, err := msgpack.GetArray(m, "unitCell", true); err != nil {
		return nil, err
	} else if a != nil {
		if s.Cell, err = msgpack.Floats(a); err != nil || len(s.Cell) != 6 {
			return nil, molerr.New(molerr.InvalidInput, "unitCell should hold 6 numbers")
		}
	}
	for _, f := range []struct {
		key string
		dst *[]int64
	}{
		{"atomIdList", &s.AtomIDs}, {"bondAtomList", &s.Bonds}, {"bondOrderList", &s.BondOrders},
		{"groupIdList", &s.GroupIDs}, {"groupTypeList", &s.GroupTypes}, {"secStructList", &s.SecStruct},
		{"sequenceIndexList", &s.SeqIndex}, {"groupsPerChain", &s.GroupsPerChain},
		{"chainsPerModel", &s.ChainsPerModel},
	} {
		if *f.dst, err = ints(m, f.key); err != nil {
			return nil, err
		}
	}
	for _, f := range []struct {
		key string
		dst *[]string
	}{
		{"altLocList", &s.AltLocs}, {"insCodeList", &s.InsCodes}, {"chainIdList", &s.ChainIDs},
		{"chainNameList", &s.ChainNames},
	} {
		if *f.dst, err = strs(m, f.key); err != nil {
			return nil, err
		}
	}
	for _, f := range []struct {
		key string
		dst **codec.Column
	}{
		{"xCoordList", &s.X}, {"yCoordList", &s.Y}, {"zCoordList", &s.Z},
		{"bFactorList", &s.B}, {"occupancyList", &s.Occupancy},
	} {
		if *f.dst, err = reals(m, f.key); err != nil {
			return nil, err
		}
	}
	if s.X == nil || s.Y == nil || s.Z == nil {
		return nil, molerr.New(molerr.InvalidInput, "coordinates missing")
	}
	if s.Groups, err = groupList(m); err != nil {
		return nil, err
	}
	if s.Entities, err = entityList(m); err != nil {
		return nil, err
	}
	if s.Assemblies, err = assemblyList(m); err != nil {
		return nil, err
	}
	if s.NCS, err = matrices(m, "ncsOperatorList"); err != nil {
		return nil, err
	}
	return s, nil
}

//maps returns the array of maps stored at key.
func maps(m *ordereddict.Dict, key string) ([]*ordereddict.Dict, error) {
	a, err := msgpack.GetArray(m, key, true)
	if err != nil {
		return nil, err
	}
	ret := make([]*ordereddict.Dict, len(a))
	for i, v := range a {
		var ok bool
		if ret[i], ok = msgpack.Map(v); !ok {
			return nil, molerr.New(molerr.InvalidInput, "%s entry %d is a %T, not a map", key, i, v)
		}
	}
	return ret, nil
}

//plainInts reads an optional array of integers that is never packed with
//a binary codec. A missing key gives nil.
func plainInts(m *ordereddict.Dict, key string) ([]int64, error) {
	a, err := msgpack.GetArray(m, key, true)
	if err != nil || a == nil {
		return nil, err
	}
	return msgpack.Ints(a)
}

func plainStrings(m *ordereddict.Dict, key string) ([]string, error) {
	a, err := msgpack.GetArray(m, key, true)
	if err != nil || a == nil {
		return nil, err
	}
	return msgpack.Strings(a)
}

func groupList(m *ordereddict.Dict) ([]groupType, error) {
	gs, err := maps(m, "groupList")
	if err != nil {
		return nil, err
	}
	ret := make([]groupType, len(gs))
	for i, g := range gs {
		t := &ret[i]
		if t.Name, err = msgpack.GetString(g, "groupName"); err != nil {
			return nil, molerr.Decorate(err, "groupList")
		}
		if t.AtomNames, err = plainStrings(g, "atomNameList"); err != nil {
			return nil, molerr.Decorate(err, "groupList")
		}
		if t.Elements, err = plainStrings(g, "elementList"); err != nil {
			return nil, molerr.Decorate(err, "groupList")
		}
		if t.Charges, err = plainInts(g, "formalChargeList"); err != nil {
			return nil, molerr.Decorate(err, "groupList")
		}
		if t.Bonds, err = plainInts(g, "bondAtomList"); err != nil {
			return nil, molerr.Decorate(err, "groupList")
		}
		if t.Orders, err = plainInts(g, "bondOrderList"); err != nil {
			return nil, molerr.Decorate(err, "groupList")
		}
		t.Code, _ = msgpack.Str(msgpack.Get(g, "singleLetterCode"))
		t.ChemType, _ = msgpack.Str(msgpack.Get(g, "chemCompType"))
		n := len(t.AtomNames)
		if len(t.Elements) != n || (t.Charges != nil && len(t.Charges) != n) {
			return nil, molerr.New(molerr.InvalidInput, "group %s: %d atom names, %d elements and %d charges",
				t.Name, n, len(t.Elements), len(t.Charges))
		}
	}
	return ret, nil
}

func entityList(m *ordereddict.Dict) ([]entity, error) {
	es, err := maps(m, "entityList")
	if err != nil {
		return nil, err
	}
	ret := make([]entity, len(es))
	for i, e := range es {
		if ret[i].Chains, err = plainInts(e, "chainIndexList"); err != nil {
			return nil, molerr.Decorate(err, "entityList")
		}
		ret[i].Description, _ = msgpack.Str(msgpack.Get(e, "description"))
		ret[i].Type, _ = msgpack.Str(msgpack.Get(e, "type"))
		ret[i].Sequence, _ = msgpack.Str(msgpack.Get(e, "sequence"))
	}
	return ret, nil
}

func assemblyList(m *ordereddict.Dict) ([]assembly, error) {
	as, err := maps(m, "bioAssemblyList")
	if err != nil {
		return nil, err
	}
	ret := make([]assembly, len(as))
	for i, a := range as {
		ret[i].Name, _ = msgpack.Str(msgpack.Get(a, "name"))
		if ret[i].Name == "" {
			ret[i].Name = strconv.Itoa(i + 1)
		}
		ts, err := maps(a, "transformList")
		if err != nil {
			return nil, molerr.Decorate(err, "bioAssemblyList")
		}
		for _, t := range ts {
			var tr transform
			if tr.Chains, err = plainInts(t, "chainIndexList"); err != nil {
				return nil, molerr.Decorate(err, "bioAssemblyList")
			}
			mat, err := msgpack.GetArray(t, "matrix", false)
			if err != nil {
				return nil, molerr.Decorate(err, "bioAssemblyList")
			}
			if tr.Matrix, err = msgpack.Floats(mat); err != nil || len(tr.Matrix) != 16 {
				return nil, molerr.New(molerr.InvalidInput, "assembly %s: transformation matrices need 16 numbers", ret[i].Name)
			}
			ret[i].Transforms = append(ret[i].Transforms, tr)
		}
	}
	return ret, nil
}

func matrices(m *ordereddict.Dict, key string) ([][]float64, error) {
	a, err := msgpack.GetArray(m, key, true)
	if err != nil {
		return nil, err
	}
	ret := make([][]float64, len(a))
	for i, v := range a {
		l, ok := v.([]interface{})
		if !ok {
			return nil, molerr.New(molerr.InvalidInput, "%s entry %d is a %T", key, i, v)
		}
		if ret[i], err = msgpack.Floats(l); err != nil || len(ret[i]) != 16 {
			return nil, molerr.New(molerr.InvalidInput, "%s entry %d should hold 16 numbers", key, i)
		}
	}
	return ret, nil
}

//operator converts a column-major 4x4 matrix.
func operator(m []float64) dict.Operator {
	var o dict.Operator
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			o[i*4+j] = m[j*4+i]
		}
	}
	return o
}

//matrix is the inverse of operator.
func matrix(o dict.Operator) []float64 {
	m := make([]float64, 16)
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			m[j*4+i] = o[i*4+j]
		}
	}
	m[15] = 1
	return m
}

//Secondary structure classes.
const (
	coil = iota
	helix
	strand
)

//secondary maps the DSSP codes of secStructList: pi, alpha and 3-10
//helices are helices, bends and extended residues are strands.
func secondary(code int64) int {
	switch code {
	case 0, 2, 4:
		return helix
	case 1, 3:
		return strand
	}
	return coil
}

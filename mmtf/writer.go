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

package mmtf

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/Velocidex/ordereddict"
	"github.com/rmera/gomol/codec"
	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/molerr"
	"github.com/rmera/gomol/msgpack"
	"github.com/rmera/gomol/residue"
)

//site is one row of atom_site, parsed.
type site struct {
	row                 int
	model               int
	asym, chain, entity string
	comp, ins, alt      string
	name, element       string
	authSeq, labelSeq   int64
	seqKnown            bool
	charge, id          int64
	x, y, z             float64
	b, occ              float64
	hasB                bool
}

type wgroup struct {
	key   string
	comp  string
	atoms []*site
	typ   int
	ss    int64
}

type wchain struct {
	asym, name, entity string
	groups             []*wgroup
}

type wmodel struct {
	number int
	chains []*wchain
}

type writer struct {
	d      *dict.DataDict
	models []*wmodel
	sites  []*site //in output order
	types  []groupType
}

//Write encodes a DataDict as MMTF. Atoms are written grouped by model,
//chain (label_asym_id) and residue, in order of first appearance.
//Coordinates keep 3 decimals, B-factors and occupancies 2.
func Write(d *dict.DataDict) ([]byte, error) {
	if err := dict.Validate(d); err != nil {
		return nil, molerr.Decorate(err, "mmtf.Write")
	}
	w := &writer{d: d}
	if err := w.layout(); err != nil {
		return nil, molerr.Decorate(err, "mmtf.Write")
	}
	m, err := w.fields()
	if err != nil {
		return nil, molerr.Decorate(err, "mmtf.Write")
	}
	b, err := msgpack.Marshal(m)
	if err != nil {
		return nil, molerr.Decorate(err, "mmtf.Write")
	}
	slog.Debug("mmtf written", "id", d.Name, "atoms", len(w.sites), "bytes", len(b))
	return b, nil
}

func (w *writer) float(row int, field string, required bool) (float64, bool, error) {
	v, ok, err := w.d.Float("atom_site", row, field)
	if err != nil {
		return 0, false, err
	}
	if !ok && required {
		return 0, false, molerr.InEntry(molerr.InvalidInput, "atom_site", row, field, "value is missing")
	}
	return v, ok, nil
}

func (w *writer) integer(row int, field string) (int64, bool, error) {
	v, ok, err := w.d.Int("atom_site", row, field)
	return int64(v), ok, err
}

//parse reads one atom_site row.
func (w *writer) parse(row int) (*site, error) {
	get := func(f string) string { return w.d.Get("atom_site", row, f) }
	s := &site{row: row, model: 1}
	var err error
	if m, ok, err := w.integer(row, "pdbx_PDB_model_num"); err != nil {
		return nil, err
	} else if ok {
		s.model = int(m)
	}
	s.asym = get("label_asym_id")
	s.chain = get("auth_asym_id")
	if dict.IsSentinel(s.chain) {
		s.chain = s.asym
	}
	if dict.IsSentinel(s.asym) {
		s.asym = s.chain
	}
	s.entity = get("label_entity_id")
	s.comp = get("label_comp_id")
	if dict.IsSentinel(s.comp) {
		s.comp = get("auth_comp_id")
	}
	s.name = get("label_atom_id")
	if dict.IsSentinel(s.name) {
		s.name = get("auth_atom_id")
	}
	s.element = residue.Title(get("type_symbol"))
	if dict.IsSentinel(s.element) {
		s.element = ""
	}
	s.ins, s.alt = get("pdbx_PDB_ins_code"), get("label_alt_id")
	if s.labelSeq, s.seqKnown, err = w.integer(row, "label_seq_id"); err != nil {
		return nil, err
	}
	auth, ok, err := w.integer(row, "auth_seq_id")
	if err != nil {
		return nil, err
	}
	if !ok {
		auth = s.labelSeq
	}
	s.authSeq = auth
	if s.charge, _, err = w.integer(row, "pdbx_formal_charge"); err != nil {
		return nil, err
	}
	if s.id, ok, err = w.integer(row, "id"); err != nil {
		return nil, err
	} else if !ok {
		s.id = int64(row + 1)
	}
	if s.x, _, err = w.float(row, "Cartn_x", true); err != nil {
		return nil, err
	}
	if s.y, _, err = w.float(row, "Cartn_y", true); err != nil {
		return nil, err
	}
	if s.z, _, err = w.float(row, "Cartn_z", true); err != nil {
		return nil, err
	}
	if s.b, s.hasB, err = w.float(row, "B_iso_or_equiv", false); err != nil {
		return nil, err
	}
	if occ, ok, err := w.float(row, "occupancy", false); err != nil {
		return nil, err
	} else if ok {
		s.occ = occ
	} else {
		s.occ = 1
	}
	return s, nil
}

//layout groups the atoms into models, chains and residues, and the
//residues into group types.
func (w *writer) layout() error {
	at := w.d.Category("atom_site")
	if at == nil {
		return molerr.New(molerr.InvalidInput, "no atom_site category")
	}
	models := make(map[int]*wmodel)
	chains := make(map[string]*wchain)
	groups := make(map[string]*wgroup)
	for i := range at.Rows {
		s, err := w.parse(i)
		if err != nil {
			return err
		}
		m, ok := models[s.model]
		if !ok {
			m = &wmodel{number: s.model}
			models[s.model] = m
			w.models = append(w.models, m)
		}
		ck := strconv.Itoa(s.model) + "\x00" + s.asym
		c, ok := chains[ck]
		if !ok {
			c = &wchain{asym: s.asym, name: s.chain, entity: s.entity}
			chains[ck] = c
			m.chains = append(m.chains, c)
		}
		gk := strings.Join([]string{ck, strconv.FormatInt(s.authSeq, 10), s.ins, s.comp}, "\x00")
		g, ok := groups[gk]
		if !ok {
			g = &wgroup{key: gk, comp: s.comp, ss: -1}
			groups[gk] = g
			c.groups = append(c.groups, g)
		}
		g.atoms = append(g.atoms, s)
	}
	types := make(map[string]int)
	chemTypes := make(map[string]string)
	if cc := w.d.Category("chem_comp"); cc != nil {
		for i := range cc.Rows {
			chemTypes[cc.Value(i, "id")] = cc.Value(i, "type")
		}
	}
	for _, m := range w.models {
		for _, c := range m.chains {
			for _, g := range c.groups {
				t := groupType{Name: g.comp, Code: string(residue.Code(g.comp)), Bonds: []int64{}, Orders: []int64{}}
				if t.Code == "X" && residue.KindOf(g.comp) != residue.Peptide {
					t.Code = "?"
				}
				t.ChemType = chemTypes[g.comp]
				if dict.IsSentinel(t.ChemType) {
					t.ChemType = chemType(g.comp)
				}
				for _, a := range g.atoms {
					t.AtomNames = append(t.AtomNames, a.name)
					t.Elements = append(t.Elements, a.element)
					t.Charges = append(t.Charges, a.charge)
					w.sites = append(w.sites, a)
				}
				k := t.key()
				n, ok := types[k]
				if !ok {
					n = len(w.types)
					types[k] = n
					w.types = append(w.types, t)
				}
				g.typ = n
			}
		}
	}
	return nil
}

func (t *groupType) key() string {
	charges := make([]string, len(t.Charges))
	for i, c := range t.Charges {
		charges[i] = strconv.FormatInt(c, 10)
	}
	return strings.Join([]string{t.Name, t.ChemType, strings.Join(t.AtomNames, " "),
		strings.Join(t.Elements, " "), strings.Join(charges, " ")}, "\x00")
}

func chemType(comp string) string {
	switch residue.KindOf(comp) {
	case residue.Peptide:
		if comp == "GLY" {
			return "peptide linking"
		}
		return "L-peptide linking"
	case residue.DNA:
		return "DNA linking"
	case residue.RNA:
		return "RNA linking"
	}
	return "non-polymer"
}

//resKey locates a residue of the first model by label asym id, author
//number and insertion code.
func resKey(asym, seq, ins string) string {
	if dict.IsSentinel(ins) {
		ins = ""
	}
	return asym + "\x00" + seq + "\x00" + ins
}

//markSecondary sets the DSSP code of the residues of the first model
//covered by struct_conf helices and struct_sheet_range strands.
func (w *writer) markSecondary() {
	if len(w.models) == 0 {
		return
	}
	index := make(map[string][]*wgroup)
	for _, c := range w.models[0].chains {
		for _, g := range c.groups {
			a := g.atoms[0]
			k := resKey(c.asym, strconv.FormatInt(a.authSeq, 10), a.ins)
			index[k] = append(index[k], g)
		}
	}
	mark := func(cat string, code int64) {
		c := w.d.Category(cat)
		if c == nil {
			return
		}
		for i := range c.Rows {
			if cat == "struct_conf" && !strings.HasPrefix(c.Value(i, "conf_type_id"), "HELX") {
				continue
			}
			asym := c.Value(i, "beg_label_asym_id")
			var chain *wchain
			for _, ch := range w.models[0].chains {
				if ch.asym == asym {
					chain = ch
				}
			}
			if chain == nil {
				continue
			}
			beg := index[resKey(asym, c.Value(i, "beg_auth_seq_id"), c.Value(i, "pdbx_beg_PDB_ins_code"))]
			end := index[resKey(c.Value(i, "end_label_asym_id"), c.Value(i, "end_auth_seq_id"), c.Value(i, "pdbx_end_PDB_ins_code"))]
			if len(beg) == 0 || len(end) == 0 {
				continue
			}
			on := false
			for _, g := range chain.groups {
				if g == beg[0] {
					on = true
				}
				if on {
					g.ss = code
				}
				if g == end[0] {
					break
				}
			}
		}
	}
	mark("struct_conf", 2)
	mark("struct_sheet_range", 3)
}

//bonds returns the atom pairs of struct_conn that are in the first model,
//as indices into the written atoms.
func (w *writer) bonds() []int64 {
	c := w.d.Category("struct_conn")
	if c == nil || len(w.models) == 0 {
		return []int64{}
	}
	first := w.models[0].number
	index := make(map[string]int)
	for i, s := range w.sites {
		if s.model != first {
			break
		}
		alt := s.alt
		if dict.IsSentinel(alt) {
			alt = ""
		}
		k := strings.Join([]string{s.asym, s.comp, strconv.FormatInt(s.authSeq, 10), s.name, alt}, "\x00")
		if _, ok := index[k]; !ok {
			index[k] = i
		}
	}
	find := func(row int, p string) (int, bool) {
		alt := c.Value(row, "pdbx_"+p+"_label_alt_id")
		if dict.IsSentinel(alt) {
			alt = ""
		}
		k := strings.Join([]string{c.Value(row, p+"_label_asym_id"), c.Value(row, p+"_label_comp_id"),
			c.Value(row, p+"_auth_seq_id"), c.Value(row, p+"_label_atom_id"), alt}, "\x00")
		i, ok := index[k]
		return i, ok
	}
	ret := []int64{}
	for i := range c.Rows {
		if c.Value(i, "conn_type_id") == "hydrog" {
			continue
		}
		a, ok1 := find(i, "ptnr1")
		b, ok2 := find(i, "ptnr2")
		if !ok1 || !ok2 || a == b {
			continue
		}
		ret = append(ret, int64(a), int64(b))
	}
	return ret
}

//entities builds entityList, with chain indices counted over all models.
func (w *writer) entities() []interface{} {
	type ent struct {
		id     string
		chains []int64
	}
	var list []*ent
	byID := make(map[string]*ent)
	if e := w.d.Category("entity"); e != nil {
		for i := range e.Rows {
			x := &ent{id: e.Value(i, "id"), chains: []int64{}}
			byID[x.id] = x
			list = append(list, x)
		}
	}
	n := int64(0)
	for _, m := range w.models {
		for _, c := range m.chains {
			x, ok := byID[c.entity]
			if !ok {
				x = &ent{id: c.entity, chains: []int64{}}
				byID[c.entity] = x
				list = append(list, x)
			}
			x.chains = append(x.chains, n)
			n++
		}
	}
	seqs := make(map[string]string)
	if p := w.d.Category("entity_poly"); p != nil {
		for i := range p.Rows {
			s := strings.Join(strings.Fields(p.Value(i, "pdbx_seq_one_letter_code")), "")
			if !dict.IsSentinel(s) {
				seqs[p.Value(i, "entity_id")] = s
			}
		}
	}
	ret := make([]interface{}, 0, len(list))
	for _, x := range list {
		typ := w.d.Get("entity", rowOf(w.d.Category("entity"), "id", x.id), "type")
		if dict.IsSentinel(typ) {
			typ = ""
		}
		desc := w.d.Get("entity", rowOf(w.d.Category("entity"), "id", x.id), "pdbx_description")
		if dict.IsSentinel(desc) {
			desc = ""
		}
		ret = append(ret, ordereddict.NewDict().
			Set("chainIndexList", x.chains).
			Set("description", desc).
			Set("type", typ).
			Set("sequence", seqs[x.id]))
	}
	return ret
}

//rowOf returns the first row of c where field is v, or -1.
func rowOf(c *dict.Category, field, v string) int {
	if c == nil {
		return -1
	}
	for i := range c.Rows {
		if c.Value(i, field) == v {
			return i
		}
	}
	return -1
}

//assemblies builds bioAssemblyList: one transformation per operator
//combination of every pdbx_struct_assembly_gen row, applied to the chains
//of the first model that row lists.
func (w *writer) assemblies() ([]interface{}, error) {
	gen := w.d.Category("pdbx_struct_assembly_gen")
	if gen == nil || len(w.models) == 0 {
		return nil, nil
	}
	ops, err := w.d.Operators()
	if err != nil {
		return nil, err
	}
	chainIndex := make(map[string]int64)
	for i, c := range w.models[0].chains {
		chainIndex[c.asym] = int64(i)
	}
	var names []string
	byName := make(map[string][]interface{})
	for i := range gen.Rows {
		name := gen.Value(i, "assembly_id")
		if _, ok := byName[name]; !ok {
			names = append(names, name)
			byName[name] = []interface{}{}
		}
		chains := []int64{}
		for _, a := range strings.Split(gen.Value(i, "asym_id_list"), ",") {
			if c, ok := chainIndex[strings.TrimSpace(a)]; ok {
				chains = append(chains, c)
			}
		}
		tuples, err := dict.ExpandOperators(gen.Value(i, "oper_expression"))
		if err != nil {
			return nil, molerr.Decorate(err, "assembly "+name)
		}
		for _, t := range tuples {
			op, err := dict.Compose(ops, t)
			if err != nil {
				return nil, molerr.Decorate(err, "assembly "+name)
			}
			byName[name] = append(byName[name], ordereddict.NewDict().
				Set("chainIndexList", chains).
				Set("matrix", matrix(op)))
		}
	}
	ret := make([]interface{}, len(names))
	for i, n := range names {
		ret[i] = ordereddict.NewDict().Set("transformList", byName[n]).Set("name", n)
	}
	return ret, nil
}

func (w *writer) ncs() ([]interface{}, error) {
	c := w.d.Category("struct_ncs_oper")
	if c == nil {
		return nil, nil
	}
	ret := make([]interface{}, 0, c.Len())
	for i := range c.Rows {
		var op dict.Operator
		for j, f := range dict.OperFields {
			v, ok, err := w.d.Float("struct_ncs_oper", i, f)
			if err != nil {
				return nil, err
			}
			if !ok {
				v = dict.Identity[j]
			}
			op[j] = v
		}
		ret = append(ret, matrix(op))
	}
	return ret, nil
}

//header adds the entry-level fields that are present in d.
func (w *writer) header(m *ordereddict.Dict) error {
	d := w.d
	str := func(key, cat, field string) {
		if v := d.Get(cat, 0, field); !dict.IsSentinel(v) {
			m.Set(key, v)
		}
	}
	num := func(key, cat, field string) error {
		v, ok, err := d.Float(cat, 0, field)
		if err != nil {
			return err
		}
		if ok {
			m.Set(key, v)
		}
		return nil
	}
	id := d.Get("entry", 0, "id")
	if dict.IsSentinel(id) {
		id = d.Name
	}
	if id != "" {
		m.Set("structureId", id)
	}
	str("title", "struct", "title")
	str("depositionDate", "pdbx_database_status", "recvd_initial_deposition_date")
	if e := d.Category("exptl"); e != nil {
		var methods []string
		for _, v := range e.Column("method") {
			if !dict.IsSentinel(v) {
				methods = append(methods, v)
			}
		}
		m.Set("experimentalMethods", methods)
	}
	if d.Has("refine") {
		if err := num("resolution", "refine", "ls_d_res_high"); err != nil {
			return err
		}
		if err := num("rFree", "refine", "ls_R_factor_R_free"); err != nil {
			return err
		}
		if err := num("rWork", "refine", "ls_R_factor_R_work"); err != nil {
			return err
		}
	} else if err := num("resolution", "reflns", "d_resolution_high"); err != nil {
		return err
	}
	if d.Has("cell") {
		cell := make([]float64, 6)
		for i, f := range []string{"length_a", "length_b", "length_c", "angle_alpha", "angle_beta", "angle_gamma"} {
			v, ok, err := d.Float("cell", 0, f)
			if err != nil {
				return err
			}
			if !ok {
				cell = nil
				break
			}
			cell[i] = v
		}
		if cell != nil {
			m.Set("unitCell", cell)
		}
	}
	str("spaceGroup", "symmetry", "space_group_name_H-M")
	return nil
}

func (w *writer) fields() (*ordereddict.Dict, error) {
	w.markSecondary()
	n := len(w.sites)
	xs, ys, zs := make([]float64, n), make([]float64, n), make([]float64, n)
	bs, occs := make([]float64, n), make([]float64, n)
	ids := make([]int64, n)
	alts := make([]string, n)
	hasB := false
	for i, s := range w.sites {
		xs[i], ys[i], zs[i] = s.x, s.y, s.z
		bs[i], occs[i], ids[i] = s.b, s.occ, s.id
		hasB = hasB || s.hasB
		if !dict.IsSentinel(s.alt) {
			alts[i] = s.alt
		}
	}
	var groupIDs, groupTypes, seqIndex, ss, perChain, perModel []int64
	var ins, chainIDs, chainNames []string
	for _, m := range w.models {
		perModel = append(perModel, int64(len(m.chains)))
		for _, c := range m.chains {
			chainIDs = append(chainIDs, c.asym)
			chainNames = append(chainNames, c.name)
			perChain = append(perChain, int64(len(c.groups)))
			for _, g := range c.groups {
				a := g.atoms[0]
				groupIDs = append(groupIDs, a.authSeq)
				groupTypes = append(groupTypes, int64(g.typ))
				if a.seqKnown {
					seqIndex = append(seqIndex, a.labelSeq-1)
				} else {
					seqIndex = append(seqIndex, -1)
				}
				ss = append(ss, g.ss)
				code := ""
				if !dict.IsSentinel(a.ins) {
					code = a.ins
				}
				ins = append(ins, code)
			}
		}
	}
	m := ordereddict.NewDict().Set("mmtfVersion", Version).Set("mmtfProducer", Producer)
	if err := w.header(m); err != nil {
		return nil, err
	}
	var groupList []interface{}
	for _, t := range w.types {
		groupList = append(groupList, ordereddict.NewDict().
			Set("groupName", t.Name).
			Set("atomNameList", t.AtomNames).
			Set("elementList", t.Elements).
			Set("formalChargeList", t.Charges).
			Set("bondAtomList", t.Bonds).
			Set("bondOrderList", t.Orders).
			Set("singleLetterCode", t.Code).
			Set("chemCompType", t.ChemType))
	}
	entities := w.entities()
	assemblies, err := w.assemblies()
	if err != nil {
		return nil, err
	}
	ncs, err := w.ncs()
	if err != nil {
		return nil, err
	}
	bonds := w.bonds()
	orders := make([]int64, len(bonds)/2)
	for i := range orders {
		orders[i] = 1
	}
	nGroups := len(groupIDs)
	m.Set("numBonds", int64(len(orders))).
		Set("numAtoms", int64(n)).
		Set("numGroups", int64(nGroups)).
		Set("numChains", int64(len(chainIDs))).
		Set("numModels", int64(len(w.models)))
	packed := []struct {
		key          string
		codec, param int32
		values       interface{}
		skip         bool
	}{
		{"xCoordList", 10, 1000, xs, false},
		{"yCoordList", 10, 1000, ys, false},
		{"zCoordList", 10, 1000, zs, false},
		{"bFactorList", 10, 100, bs, !hasB},
		{"atomIdList", 8, 0, ids, false},
		{"altLocList", 6, 0, alts, false},
		{"occupancyList", 9, 100, occs, false},
		{"groupIdList", 8, 0, groupIDs, false},
		{"groupTypeList", 4, 0, groupTypes, false},
		{"secStructList", 2, 0, ss, false},
		{"insCodeList", 6, 0, ins, false},
		{"sequenceIndexList", 8, 0, seqIndex, false},
		{"chainIdList", 5, 4, chainIDs, false},
		{"chainNameList", 5, 4, chainNames, false},
		{"bondAtomList", 4, 0, bonds, len(bonds) == 0},
		{"bondOrderList", 2, 0, orders, len(bonds) == 0},
	}
	for _, p := range packed {
		if p.skip {
			continue
		}
		b, err := codec.EncodeMMTF(p.codec, p.param, p.values)
		if err != nil {
			return nil, molerr.Decorate(err, p.key)
		}
		m.Set(p.key, b)
	}
	m.Set("groupList", groupList).
		Set("groupsPerChain", perChain).
		Set("chainsPerModel", perModel).
		Set("entityList", entities)
	if assemblies != nil {
		m.Set("bioAssemblyList", assemblies)
	}
	if ncs != nil {
		m.Set("ncsOperatorList", ncs)
	}
	return m, nil
}

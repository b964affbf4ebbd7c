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

package mmtf

import (
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rmera/gomol/codec"
	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/molerr"
	"github.com/rmera/gomol/residue"
)

var readOrder = []string{
	"entry", "struct", "pdbx_database_status", "exptl", "entity", "entity_poly",
	"pdbx_entity_nonpoly", "chem_comp", "struct_asym", "struct_conf", "struct_sheet_range",
	"struct_conn", "cell", "symmetry", "struct_ncs_oper", "reflns", "refine",
	"pdbx_struct_assembly", "pdbx_struct_assembly_gen", "pdbx_struct_oper_list",
	"atom_type", "atom_site",
}

//Read decodes an MMTF file into a DataDict. Bonds inside a residue, and
//the peptide and phosphodiester bonds between consecutive residues, are
//left out: the model builder recreates them from its templates.
func Read(b []byte) (*dict.DataDict, error) {
	s, err := decode(b)
	if err != nil {
		return nil, molerr.Decorate(err, "mmtf.Read")
	}
	d, err := normalize(s)
	if err != nil {
		return nil, molerr.Decorate(err, "mmtf.Read")
	}
	return d, nil
}

//group is one residue of the file, in file order.
type group struct {
	model, chain int
	typ          *groupType
	first        int //index of its first atom
	index        int
}

type reader struct {
	s        *structure
	d        *dict.DataDict
	groups   []group
	atomOf   []int //atom to group
	entityOf []int //chain to entity, -1 if none
	firstLen int   //chains in the first model
}

func (r *reader) cat(name string) *dict.Category { return r.d.Ensure(name) }

func normalize(s *structure) (*dict.DataDict, error) {
	r := &reader{s: s, d: dict.New(s.ID)}
	for _, c := range readOrder {
		r.d.Ensure(c)
	}
	if err := r.layout(); err != nil {
		return nil, err
	}
	r.header()
	r.entities()
	r.atoms()
	r.secondary()
	r.connections()
	r.assemblies()
	r.crystal()
	r.d.Prune()
	dict.Canonicalize(r.d)
	slog.Debug("mmtf fields normalized", "id", s.ID, "atoms", len(r.atomOf), "groups", len(r.groups))
	return r.d, nil
}

//layout walks models, chains and groups, checking that the per-atom,
//per-group and per-chain arrays agree in length.
func (r *reader) layout() error {
	s := r.s
	chain, g, atom := 0, 0, 0
	for m, nc := range s.ChainsPerModel {
		for i := 0; i < int(nc); i++ {
			if chain >= len(s.GroupsPerChain) {
				return molerr.New(molerr.InvalidInput, "chainsPerModel counts more chains than groupsPerChain")
			}
			for j := 0; j < int(s.GroupsPerChain[chain]); j++ {
				if g >= len(s.GroupTypes) {
					return molerr.New(molerr.InvalidInput, "groupsPerChain counts more groups than groupTypeList")
				}
				t := s.GroupTypes[g]
				if t < 0 || int(t) >= len(s.Groups) {
					return molerr.New(molerr.InvalidInput, "group type %d out of %d", t, len(s.Groups))
				}
				r.groups = append(r.groups, group{model: m, chain: chain, typ: &s.Groups[t], first: atom, index: g})
				for range s.Groups[t].AtomNames {
					r.atomOf = append(r.atomOf, g)
				}
				atom += len(s.Groups[t].AtomNames)
				g++
			}
			chain++
		}
		if m == 0 {
			r.firstLen = chain
		}
	}
	switch {
	case chain != len(s.ChainIDs) || chain != len(s.GroupsPerChain):
		return molerr.New(molerr.InvalidInput, "%d chains in the models, %d chain ids, %d group counts", chain, len(s.ChainIDs), len(s.GroupsPerChain))
	case s.ChainNames != nil && len(s.ChainNames) != chain:
		return molerr.New(molerr.InvalidInput, "%d chain names for %d chains", len(s.ChainNames), chain)
	case g != len(s.GroupIDs) || g != len(s.GroupTypes):
		return molerr.New(molerr.InvalidInput, "%d groups in the chains, %d group ids, %d group types", g, len(s.GroupIDs), len(s.GroupTypes))
	}
	for _, l := range []int{len(s.InsCodes), len(s.SeqIndex), len(s.SecStruct)} {
		if l != 0 && l != g {
			return molerr.New(molerr.InvalidInput, "per-group list of %d entries for %d groups", l, g)
		}
	}
	for _, l := range []int{s.X.Len(), s.Y.Len(), s.Z.Len()} {
		if l != atom {
			return molerr.New(molerr.InvalidInput, "%d coordinates for %d atoms", l, atom)
		}
	}
	for _, l := range []int{len(s.AtomIDs), len(s.AltLocs)} {
		if l != 0 && l != atom {
			return molerr.New(molerr.InvalidInput, "per-atom list of %d entries for %d atoms", l, atom)
		}
	}
	for _, c := range []*codec.Column{s.B, s.Occupancy} {
		if c != nil && c.Len() != 0 && c.Len() != atom {
			return molerr.New(molerr.InvalidInput, "per-atom list of %d entries for %d atoms", c.Len(), atom)
		}
	}
	if len(s.Bonds)%2 != 0 {
		return molerr.New(molerr.InvalidInput, "bondAtomList has an odd length")
	}
	r.entityOf = make([]int, chain)
	for i := range r.entityOf {
		r.entityOf[i] = -1
	}
	for i, e := range s.Entities {
		for _, c := range e.Chains {
			if c < 0 || int(c) >= chain {
				return molerr.New(molerr.InvalidInput, "entity %d refers to chain %d of %d", i+1, c, chain)
			}
			r.entityOf[c] = i
		}
	}
	return nil
}

func (r *reader) header() {
	s := r.s
	id := orUnknown(s.ID)
	r.cat("entry").Append("id", id)
	if s.Title != "" {
		r.cat("struct").Append("entry_id", id, "title", s.Title)
	}
	if s.Date != "" {
		r.cat("pdbx_database_status").Append("entry_id", id, "recvd_initial_deposition_date", s.Date)
	}
	for _, m := range s.Methods {
		r.cat("exptl").Append("entry_id", id, "method", m)
	}
	res, work, free := number(s.Resolution), number(s.RWork), number(s.RFree)
	if res != "" || work != "" || free != "" {
		method := "?"
		if len(s.Methods) > 0 {
			method = s.Methods[0]
		}
		r.cat("refine").Append("entry_id", id, "pdbx_refine_id", method, "ls_d_res_high", res,
			"ls_R_factor_R_work", work, "ls_R_factor_R_free", free)
	}
	if res != "" {
		r.cat("reflns").Append("entry_id", id, "d_resolution_high", res, "pdbx_ordinal", "1")
	}
}

//number formats an optional scalar, "" if it's absent.
func number(v interface{}) string {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return formatReal(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	}
	return ""
}

func orUnknown(s string) string {
	if s == "" {
		return dict.Unknown
	}
	return s
}

func orDot(s string) string {
	if s == "" {
		return dict.NotApplicable
	}
	return s
}

//chainName returns the author name of a chain.
func (r *reader) chainName(c int) string {
	if r.s.ChainNames == nil {
		return r.s.ChainIDs[c]
	}
	return r.s.ChainNames[c]
}

func (r *reader) entityID(c int) string {
	if r.entityOf[c] < 0 {
		return dict.Unknown
	}
	return strconv.Itoa(r.entityOf[c] + 1)
}

func (r *reader) polymer(c int) bool {
	e := r.entityOf[c]
	return e >= 0 && r.s.Entities[e].Type == "polymer"
}

//chainGroups returns the groups of chain c.
func (r *reader) chainGroups(c int) []group {
	var ret []group
	for _, g := range r.groups {
		if g.chain == c {
			ret = append(ret, g)
		} else if g.chain > c {
			break
		}
	}
	return ret
}

func (r *reader) entities() {
	s := r.s
	for i, e := range s.Entities {
		id := strconv.Itoa(i + 1)
		var strands []string
		count := 0
		for _, c := range e.Chains {
			if int(c) < r.firstLen {
				count++
				strands = append(strands, r.chainName(int(c)))
			}
		}
		typ := e.Type
		if typ == "" {
			typ = "?"
		}
		r.cat("entity").Append("id", id, "type", typ, "src_method", "?", "pdbx_description", e.Description,
			"pdbx_number_of_molecules", strconv.Itoa(count))
		var names []string
		if len(e.Chains) > 0 {
			for _, g := range r.chainGroups(int(e.Chains[0])) {
				names = append(names, g.typ.Name)
			}
		}
		if typ != "polymer" {
			comp := "?"
			if len(names) > 0 {
				comp = names[0]
			}
			r.cat("pdbx_entity_nonpoly").Append("entity_id", id, "name", e.Description, "comp_id", comp)
			continue
		}
		nstd := "no"
		for _, n := range names {
			if residue.Parent(n) != "" {
				nstd = "yes"
			}
		}
		seq := e.Sequence
		if seq == "" {
			seq = residue.Sequence(names)
		}
		r.cat("entity_poly").Append("entity_id", id, "type", residue.PolymerKind(names).String(),
			"nstd_linkage", "no", "nstd_monomer", nstd, "pdbx_seq_one_letter_code", seq,
			"pdbx_strand_id", strings.Join(dedup(strands), ","))
	}
	for c := 0; c < r.firstLen; c++ {
		r.cat("struct_asym").Append("id", s.ChainIDs[c], "pdbx_blank_PDB_chainid_flag", "N",
			"pdbx_modified", "N", "entity_id", r.entityID(c))
	}
	types := make(map[string]string)
	for _, g := range s.Groups {
		if _, ok := types[g.Name]; !ok || types[g.Name] == "" {
			types[g.Name] = g.ChemType
		}
	}
	ids := make([]string, 0, len(types))
	for id := range types {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		r.cat("chem_comp").Append("id", id, "type", types[id], "mon_nstd_flag", residue.StandardFlag(id))
	}
}

func dedup(s []string) []string {
	seen := make(map[string]bool, len(s))
	ret := s[:0:0]
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			ret = append(ret, v)
		}
	}
	return ret
}

//hetero is true for residues that PDB files write as HETATM.
func (r *reader) hetero(g group) bool {
	if !r.polymer(g.chain) {
		return true
	}
	return residue.KindOf(g.typ.Name) == residue.Other || residue.Parent(g.typ.Name) != ""
}

//labelSeq returns label_seq_id for a group.
func (r *reader) labelSeq(g group) string {
	if !r.polymer(g.chain) || r.s.SeqIndex == nil || r.s.SeqIndex[g.index] < 0 {
		return dict.NotApplicable
	}
	return strconv.FormatInt(r.s.SeqIndex[g.index]+1, 10)
}

func (r *reader) insCode(g group) string {
	if r.s.InsCodes == nil {
		return dict.Unknown
	}
	return orUnknown(r.s.InsCodes[g.index])
}

func (r *reader) atoms() {
	s := r.s
	sites := r.cat("atom_site")
	symbols := make(map[string]bool)
	for _, g := range r.groups {
		t := g.typ
		rec := "ATOM"
		if r.hetero(g) {
			rec = "HETATM"
		}
		asym, chain := s.ChainIDs[g.chain], r.chainName(g.chain)
		ent, seq, ins := r.entityID(g.chain), r.labelSeq(g), r.insCode(g)
		auth := strconv.FormatInt(s.GroupIDs[g.index], 10)
		model := strconv.Itoa(g.model + 1)
		for k, name := range t.AtomNames {
			a := g.first + k
			id := strconv.Itoa(a + 1)
			if s.AtomIDs != nil {
				id = strconv.FormatInt(s.AtomIDs[a], 10)
			}
			alt := "."
			if s.AltLocs != nil {
				alt = orDot(s.AltLocs[a])
			}
			occ, b := "1.0", "?"
			if s.Occupancy != nil && s.Occupancy.Len() > 0 {
				occ = text(s.Occupancy, a)
			}
			if s.B != nil && s.B.Len() > 0 {
				b = text(s.B, a)
			}
			charge := "0"
			if t.Charges != nil {
				charge = strconv.FormatInt(t.Charges[k], 10)
			}
			element := strings.ToUpper(t.Elements[k])
			symbols[element] = true
			sites.Append("group_PDB", rec, "id", id, "type_symbol", element, "label_atom_id", name,
				"label_alt_id", alt, "label_comp_id", t.Name, "label_asym_id", asym, "label_entity_id", ent,
				"label_seq_id", seq, "pdbx_PDB_ins_code", ins,
				"Cartn_x", text(s.X, a), "Cartn_y", text(s.Y, a), "Cartn_z", text(s.Z, a),
				"occupancy", occ, "B_iso_or_equiv", b, "pdbx_formal_charge", charge,
				"auth_seq_id", auth, "auth_comp_id", t.Name, "auth_asym_id", chain, "auth_atom_id", name,
				"pdbx_PDB_model_num", model)
		}
	}
	list := make([]string, 0, len(symbols))
	for e := range symbols {
		list = append(list, e)
	}
	sort.Strings(list)
	for _, e := range list {
		r.cat("atom_type").Append("symbol", e)
	}
}

//residueFields returns the fields that locate a group in struct_conf and
//struct_sheet_range, with the given prefix ("beg" or "end").
func (r *reader) residueFields(prefix string, g group) []string {
	asym, name := r.s.ChainIDs[g.chain], g.typ.Name
	ins := r.insCode(g)
	auth := strconv.FormatInt(r.s.GroupIDs[g.index], 10)
	return []string{
		prefix + "_label_comp_id", name, prefix + "_label_asym_id", asym,
		prefix + "_label_seq_id", r.labelSeq(g), "pdbx_" + prefix + "_PDB_ins_code", ins,
		prefix + "_auth_comp_id", name, prefix + "_auth_asym_id", r.chainName(g.chain),
		prefix + "_auth_seq_id", auth,
	}
}

//secondary turns the runs of helix and strand codes of the first model
//into struct_conf and struct_sheet_range rows.
func (r *reader) secondary() {
	if r.s.SecStruct == nil {
		return
	}
	helices := 0
	strands := make(map[string]int)
	var run []group
	class := coil
	flush := func() {
		if len(run) == 0 || class == coil {
			run = nil
			return
		}
		beg, end := run[0], run[len(run)-1]
		kv := append(r.residueFields("beg", beg), r.residueFields("end", end)...)
		if class == helix {
			helices++
			n := strconv.Itoa(helices)
			kv = append([]string{"conf_type_id", "HELX_P", "id", "HELX_P" + n, "pdbx_PDB_helix_id", n}, kv...)
			kv = append(kv, "pdbx_PDB_helix_class", "1", "pdbx_PDB_helix_length", strconv.Itoa(len(run)))
			r.cat("struct_conf").Append(kv...)
		} else {
			sheet := r.s.ChainIDs[beg.chain]
			strands[sheet]++
			kv = append([]string{"sheet_id", sheet, "id", strconv.Itoa(strands[sheet])}, kv...)
			r.cat("struct_sheet_range").Append(kv...)
		}
		run = nil
	}
	for _, g := range r.groups {
		if g.model > 0 {
			break
		}
		c := secondary(r.s.SecStruct[g.index])
		if c != class || (len(run) > 0 && run[0].chain != g.chain) {
			flush()
			class = c
		}
		run = append(run, g)
	}
	flush()
}

//backbone is true for the bonds that join consecutive residues of a
//polymer.
func backbone(a, b string) bool {
	return (a == "C" && b == "N") || (a == "N" && b == "C") || (a == "O3'" && b == "P") || (a == "P" && b == "O3'")
}

//connections writes the bonds of bondAtomList between residues of the
//first model.
func (r *reader) connections() {
	s := r.s
	counts := make(map[string]int)
	seen := make(map[[2]int]bool)
	for i := 0; i+1 < len(s.Bonds); i += 2 {
		a, b := int(s.Bonds[i]), int(s.Bonds[i+1])
		if a < 0 || b < 0 || a >= len(r.atomOf) || b >= len(r.atomOf) || a == b {
			continue
		}
		ga, gb := r.groups[r.atomOf[a]], r.groups[r.atomOf[b]]
		if ga.model > 0 || gb.model > 0 || ga.index == gb.index {
			continue
		}
		na, nb := ga.typ.AtomNames[a-ga.first], gb.typ.AtomNames[b-gb.first]
		if ga.chain == gb.chain && (gb.index-ga.index == 1 || ga.index-gb.index == 1) && backbone(na, nb) {
			continue
		}
		if a > b {
			a, b, ga, gb, na, nb = b, a, gb, ga, nb, na
		}
		if seen[[2]int{a, b}] {
			continue
		}
		seen[[2]int{a, b}] = true
		ea, eb := ga.typ.Elements[a-ga.first], gb.typ.Elements[b-gb.first]
		typ := "covale"
		switch {
		case na == "SG" && nb == "SG":
			typ = "disulf"
		case residue.IsMetal(ea) || residue.IsMetal(eb):
			typ = "metalc"
		}
		counts[typ]++
		alt := func(x int) string {
			if s.AltLocs == nil {
				return dict.Unknown
			}
			return orUnknown(s.AltLocs[x])
		}
		r.cat("struct_conn").Append("id", typ+strconv.Itoa(counts[typ]), "conn_type_id", typ,
			"ptnr1_label_asym_id", s.ChainIDs[ga.chain], "ptnr1_label_comp_id", ga.typ.Name,
			"ptnr1_label_seq_id", r.labelSeq(ga), "ptnr1_label_atom_id", na,
			"pdbx_ptnr1_label_alt_id", alt(a), "pdbx_ptnr1_PDB_ins_code", r.insCode(ga), "ptnr1_symmetry", "1_555",
			"ptnr2_label_asym_id", s.ChainIDs[gb.chain], "ptnr2_label_comp_id", gb.typ.Name,
			"ptnr2_label_seq_id", r.labelSeq(gb), "ptnr2_label_atom_id", nb,
			"pdbx_ptnr2_label_alt_id", alt(b), "pdbx_ptnr2_PDB_ins_code", r.insCode(gb),
			"ptnr1_auth_asym_id", r.chainName(ga.chain), "ptnr1_auth_seq_id", strconv.FormatInt(s.GroupIDs[ga.index], 10),
			"ptnr2_auth_asym_id", r.chainName(gb.chain), "ptnr2_auth_seq_id", strconv.FormatInt(s.GroupIDs[gb.index], 10),
			"ptnr2_symmetry", "1_555", "pdbx_dist_value", dict.Unknown)
	}
}

func operKey(o dict.Operator) string {
	parts := make([]string, len(o))
	for i, v := range o {
		parts[i] = dict.FormatFixed(v, 10)
	}
	return strings.Join(parts, " ")
}

//assemblies turns bioAssemblyList into pdbx_struct_assembly,
//pdbx_struct_assembly_gen and pdbx_struct_oper_list. Operators are shared
//among assemblies, and consecutive transformations of the same chains
//make a single pdbx_struct_assembly_gen row.
func (r *reader) assemblies() {
	ids := make(map[string]string)
	for _, a := range r.s.Assemblies {
		r.cat("pdbx_struct_assembly").Append("id", a.Name)
		var chains string
		var opers []string
		emit := func() {
			if len(opers) > 0 {
				r.cat("pdbx_struct_assembly_gen").Append("assembly_id", a.Name,
					"oper_expression", strings.Join(opers, ","), "asym_id_list", chains)
			}
			opers = nil
		}
		for _, t := range a.Transforms {
			var asyms []string
			for _, c := range t.Chains {
				if c >= 0 && int(c) < len(r.s.ChainIDs) {
					asyms = append(asyms, r.s.ChainIDs[c])
				}
			}
			list := strings.Join(asyms, ",")
			if list != chains {
				emit()
				chains = list
			}
			op := operator(t.Matrix)
			key := operKey(op)
			id, ok := ids[key]
			if !ok {
				id = strconv.Itoa(len(ids) + 1)
				ids[key] = id
				typ := "?"
				if op == dict.Identity {
					typ = "identity operation"
				}
				row := r.cat("pdbx_struct_oper_list").Append("id", id, "type", typ)
				for i, f := range dict.OperFields {
					row.Set(f, dict.FormatFixed(op[i], 10))
				}
			}
			opers = append(opers, id)
		}
		emit()
	}
}

func (r *reader) crystal() {
	s := r.s
	id := orUnknown(s.ID)
	if len(s.Cell) == 6 {
		r.cat("cell").Append("entry_id", id, "length_a", formatReal(s.Cell[0]), "length_b", formatReal(s.Cell[1]),
			"length_c", formatReal(s.Cell[2]), "angle_alpha", formatReal(s.Cell[3]),
			"angle_beta", formatReal(s.Cell[4]), "angle_gamma", formatReal(s.Cell[5]))
	}
	if s.SpaceGroup != "" {
		r.cat("symmetry").Append("entry_id", id, "space_group_name_H-M", s.SpaceGroup)
	}
	for i, m := range s.NCS {
		op := operator(m)
		row := r.cat("struct_ncs_oper").Append("id", strconv.Itoa(i+1), "code", "?")
		for j, f := range dict.OperFields {
			row.Set(f, formatReal(op[j]))
		}
	}
}

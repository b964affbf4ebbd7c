/*
 * atoms.go, part of gomol.
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

package pdb

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/molerr"
	"github.com/rmera/gomol/residue"
)

//atomRecord is a decoded ATOM or HETATM line.
type atomRecord struct {
	line    Line
	het     bool
	serial  string
	name    string
	alt     string
	resName string
	chain   string
	seq     int
	icode   string
	x, y, z string
	occ     string
	b       string
	element string
	charge  string
}

func (a *atomRecord) key() resKey { return resKey{a.chain, a.seq, a.icode} }

func decodeAtom(l Line) (atomRecord, error) {
	a := atomRecord{line: l, het: strings.TrimSpace(l.Raw(1, 6)) == "HETATM"}
	if _, ok, err := l.Int(7, 11); err != nil {
		return a, err
	} else if !ok {
		return a, molerr.AtOffset(molerr.InvalidInput, "", l.Offset+6, "atom record without a serial number")
	}
	a.serial = l.Col(7, 11)
	a.name = l.Col(13, 16)
	a.alt = l.Col(17, 17)
	a.resName = l.Col(18, 20)
	a.chain = l.Col(22, 22)
	seq, _, err := l.Int(23, 26)
	if err != nil {
		return a, err
	}
	a.seq = seq
	a.icode = l.Col(27, 27)
	for i, cols := range [][2]int{{31, 38}, {39, 46}, {47, 54}} {
		if l.Col(cols[0], cols[1]) == "" {
			return a, molerr.AtOffset(molerr.InvalidInput, "", l.Offset+int64(cols[0]-1), "atom %s has no coordinates", a.serial)
		}
		v, err := l.Number(cols[0], cols[1])
		if err != nil {
			return a, err
		}
		switch i {
		case 0:
			a.x = v
		case 1:
			a.y = v
		case 2:
			a.z = v
		}
	}
	if a.occ, err = l.Number(55, 60); err != nil {
		return a, err
	}
	if a.b, err = l.Number(61, 66); err != nil {
		return a, err
	}
	a.element = strings.ToUpper(l.Col(77, 78))
	if a.element == "" {
		a.element = strings.ToUpper(residue.ElementFromName(l.Raw(13, 16)))
	}
	a.charge = decodeCharge(l.Col(79, 80))
	return a, nil
}

//decodeCharge turns the PDB charge notation ("2+", "1-") into an integer
//string. Blank or unreadable charges are unknown.
func decodeCharge(s string) string {
	if s == "" {
		return dict.Unknown
	}
	sign := byte(0)
	switch {
	case s[len(s)-1] == '+' || s[len(s)-1] == '-':
		sign, s = s[len(s)-1], s[:len(s)-1]
	case s[0] == '+' || s[0] == '-':
		sign, s = s[0], s[1:]
	}
	if s == "" {
		s = "1"
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return dict.Unknown
	}
	if sign == '-' {
		n = -n
	}
	return strconv.Itoa(n)
}

type resKey struct {
	chain string
	seq   int
	icode string
}

//molecule is a polymer chain, a non-polymer residue or the waters of a
//chain, which get one label asym id each.
type molecule struct {
	asym     string
	kind     residue.Kind
	polymer  bool
	chain    string
	residues []resKey
	names    []string
	labelSeq map[resKey]int
	ent      *entity
}

type modelMols struct {
	list  []*molecule
	byRes map[resKey]*molecule
}

//locate returns the label asym id and label seq id of a residue of the
//first model, or unknown values.
func (m *modelMols) locate(chain string, seq int, icode string) (string, string) {
	if m == nil {
		return dict.Unknown, dict.Unknown
	}
	k := resKey{chain, seq, icode}
	mol, ok := m.byRes[k]
	if !ok {
		return dict.Unknown, dict.Unknown
	}
	if !mol.polymer {
		return mol.asym, dict.NotApplicable
	}
	return mol.asym, strconv.Itoa(mol.labelSeq[k])
}

type entity struct {
	id      string
	kind    residue.Kind
	polymer bool
	seq     []string
	comp    string
	count   int
	strands []string
}

type entities struct {
	byKey map[string]*entity
	list  []*entity
}

func (e *entities) get(key string, mk func() *entity) *entity {
	if ent, ok := e.byKey[key]; ok {
		return ent
	}
	ent := mk()
	ent.id = strconv.Itoa(len(e.list) + 1)
	e.byKey[key] = ent
	e.list = append(e.list, ent)
	return ent
}

//AsymID returns the n-th (0-based) label asym id: A to Z, then AA, BA and
//so on.
func AsymID(n int) string {
	width, span := 1, 26
	for n >= span {
		n -= span
		width++
		span *= 26
	}
	b := make([]byte, width)
	for i := range b {
		b[i] = byte('A' + n%26)
		n /= 26
	}
	return string(b)
}

var atomFields = []string{"group_PDB", "id", "type_symbol", "label_atom_id", "label_alt_id",
	"label_comp_id", "label_asym_id", "label_entity_id", "label_seq_id", "pdbx_PDB_ins_code",
	"Cartn_x", "Cartn_y", "Cartn_z", "occupancy", "B_iso_or_equiv", "pdbx_formal_charge",
	"auth_seq_id", "auth_comp_id", "auth_asym_id", "auth_atom_id", "pdbx_PDB_model_num"}

var anisoFields = []string{"id", "type_symbol", "pdbx_label_atom_id", "pdbx_label_alt_id",
	"pdbx_label_comp_id", "pdbx_label_asym_id", "pdbx_label_seq_id", "pdbx_PDB_ins_code",
	"U[1][1]", "U[2][2]", "U[3][3]", "U[1][2]", "U[1][3]", "U[2][3]", "pdbx_auth_seq_id",
	"pdbx_auth_comp_id", "pdbx_auth_asym_id", "pdbx_auth_atom_id"}

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

//atoms decodes the coordinate records of every model.
func (r *reader) atoms() error {
	r.ents = &entities{byKey: make(map[string]*entity)}
	sites := dict.NewCategory("atom_site", atomFields...)
	aniso := dict.NewCategory("atom_site_anisotrop", anisoFields...)
	r.d.Put(sites)
	r.d.Put(aniso)
	symbols := make(map[string]bool)
	for mi, m := range r.recs.Models {
		var atoms []atomRecord
		terAt := make(map[string]int)
		anisou := make(map[string]Line)
		for _, l := range m.Lines {
			switch strings.TrimSpace(l.Raw(1, 6)) {
			case "ATOM", "HETATM":
				a, err := decodeAtom(l)
				if err != nil {
					return err
				}
				atoms = append(atoms, a)
			case "TER":
				chain := l.Col(22, 22)
				if chain == "" && len(atoms) > 0 {
					chain = atoms[len(atoms)-1].chain
				}
				if _, ok := terAt[chain]; !ok {
					terAt[chain] = len(atoms)
				}
			case "ANISOU":
				anisou[l.Col(7, 11)] = l
			}
		}
		mols := r.assign(atoms, terAt)
		if mi == 0 {
			r.first = mols
			r.serials = make(map[string]atomRecord, len(atoms))
			r.named = make(map[string]atomRecord, len(atoms))
			for _, a := range atoms {
				r.serials[a.serial] = a
				r.named[atomKey(a.chain, a.seq, a.icode, a.name)] = a
			}
			for _, mol := range mols.list {
				mol.ent.count++
				if mol.polymer {
					mol.ent.strands = appendNew(mol.ent.strands, mol.chain)
				}
			}
		}
		model := strconv.Itoa(m.Number)
		for _, a := range atoms {
			mol := mols.byRes[a.key()]
			group := "ATOM"
			if a.het {
				group = "HETATM"
			}
			labelSeq := dict.NotApplicable
			if mol.polymer {
				labelSeq = strconv.Itoa(mol.labelSeq[a.key()])
			}
			symbols[a.element] = true
			err := sites.AddRow(group, a.serial, orUnknown(a.element), a.name, orDot(a.alt), a.resName,
				mol.asym, mol.ent.id, labelSeq, orUnknown(a.icode), a.x, a.y, a.z, a.occ, a.b, a.charge,
				strconv.Itoa(a.seq), a.resName, orUnknown(a.chain), a.name, model)
			if err != nil {
				return err
			}
			if mi > 0 {
				continue
			}
			l, ok := anisou[a.serial]
			if !ok {
				continue
			}
			u := make([]string, 6)
			for n := range u {
				v, ok, err := l.Int(29+7*n, 35+7*n)
				if err != nil {
					return err
				}
				u[n] = dict.Unknown
				if ok {
					u[n] = dict.FormatFixed(float64(v)/10000, 4)
				}
			}
			err = aniso.AddRow(a.serial, orUnknown(a.element), a.name, orDot(a.alt), a.resName, mol.asym,
				labelSeq, orUnknown(a.icode), u[0], u[1], u[2], u[3], u[4], u[5], strconv.Itoa(a.seq),
				a.resName, orUnknown(a.chain), a.name)
			if err != nil {
				return err
			}
		}
	}
	r.entityCategories()
	var syms []string
	for s := range symbols {
		if s != "" {
			syms = append(syms, s)
		}
	}
	sort.Strings(syms)
	for _, s := range syms {
		r.cat("atom_type").Append("symbol", s)
	}
	return nil
}

func appendNew(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

//polymeric tells whether atom i belongs to a polymer chain. ATOM records
//always do, except for waters. HETATM records do when they come before
//the TER of a chain that has ATOM records or, without a TER, when they
//are known monomers.
func (r *reader) polymeric(atoms []atomRecord, i int, hasAtom map[string]bool, terAt map[string]int) bool {
	a := atoms[i]
	if residue.IsWater(a.resName) {
		return false
	}
	if !a.het {
		return true
	}
	if !hasAtom[a.chain] {
		return false
	}
	if ter, ok := terAt[a.chain]; ok {
		return i < ter
	}
	return r.modres[a.chain+" "+a.resName] || residue.KindOf(a.resName) != residue.Other
}

//assign groups the atoms of a model into molecules and gives each its
//label asym id and entity.
func (r *reader) assign(atoms []atomRecord, terAt map[string]int) *modelMols {
	hasAtom := make(map[string]bool)
	for _, a := range atoms {
		if !a.het {
			hasAtom[a.chain] = true
		}
	}
	mm := &modelMols{byRes: make(map[resKey]*molecule)}
	polymers := make(map[string]*molecule)
	waters := make(map[string]*molecule)
	ligands := make(map[resKey]*molecule)
	for i, a := range atoms {
		k := a.key()
		if _, ok := mm.byRes[k]; ok {
			continue
		}
		var mol *molecule
		switch {
		case r.polymeric(atoms, i, hasAtom, terAt):
			mol = polymers[a.chain]
			if mol == nil {
				mol = &molecule{polymer: true, chain: a.chain}
				polymers[a.chain] = mol
			}
		case residue.IsWater(a.resName):
			mol = waters[a.chain]
			if mol == nil {
				mol = &molecule{kind: residue.Water, chain: a.chain}
				waters[a.chain] = mol
			}
		default:
			mol = &molecule{kind: residue.Other, chain: a.chain}
			ligands[k] = mol
		}
		if mol.asym == "" {
			mol.asym = AsymID(len(mm.list))
			mm.list = append(mm.list, mol)
		}
		mol.residues = append(mol.residues, k)
		mol.names = append(mol.names, a.resName)
		mm.byRes[k] = mol
	}
	for _, mol := range mm.list {
		switch {
		case mol.polymer:
			seq := r.seqres[mol.chain]
			if len(seq) == 0 {
				seq = mol.names
			}
			mol.kind = residue.PolymerKind(seq)
			mol.labelSeq = align(mol.residues, mol.names, seq)
			mol.ent = r.ents.get("polymer "+strings.Join(seq, " "), func() *entity {
				return &entity{kind: mol.kind, polymer: true, seq: seq}
			})
		case mol.kind == residue.Water:
			mol.ent = r.ents.get("water", func() *entity {
				return &entity{kind: residue.Water, comp: mol.names[0]}
			})
		default:
			mol.ent = r.ents.get("ligand "+mol.names[0], func() *entity {
				return &entity{kind: residue.Other, comp: mol.names[0]}
			})
		}
	}
	return mm
}

//align numbers the observed residues of a chain by their position in the
//full sequence. Residues are matched in order; one that can't be matched
//takes the next free number.
func align(keys []resKey, observed, seq []string) map[resKey]int {
	ret := make(map[resKey]int, len(keys))
	p := 0
	for i, k := range keys {
		j := p
		for j < len(seq) && seq[j] != observed[i] {
			j++
		}
		if j == len(seq) {
			j = p
		}
		ret[k] = j + 1
		p = j + 1
	}
	return ret
}

//entityCategories writes entity, entity_poly, entity_poly_seq,
//pdbx_entity_nonpoly and struct_asym.
func (r *reader) entityCategories() {
	for _, e := range r.ents.list {
		var typ, desc string
		switch {
		case e.polymer:
			typ = "polymer"
			if len(e.strands) > 0 {
				desc = r.molFor(e.strands[0])["MOLECULE"]
			}
		case e.kind == residue.Water:
			typ, desc = "water", "water"
		default:
			typ, desc = "non-polymer", r.hetnam[e.comp]
		}
		r.cat("entity").Append("id", e.id, "type", typ, "src_method", "?", "pdbx_description", desc,
			"pdbx_number_of_molecules", strconv.Itoa(e.count))
		if !e.polymer {
			r.cat("pdbx_entity_nonpoly").Append("entity_id", e.id, "name", desc, "comp_id", e.comp)
			continue
		}
		nstd := "no"
		for _, n := range e.seq {
			if residue.Parent(n) != "" {
				nstd = "yes"
			}
		}
		r.cat("entity_poly").Append("entity_id", e.id, "type", e.kind.String(), "nstd_linkage", "no",
			"nstd_monomer", nstd, "pdbx_seq_one_letter_code", residue.Sequence(e.seq),
			"pdbx_strand_id", strings.Join(e.strands, ","))
		for i, n := range e.seq {
			r.cat("entity_poly_seq").Append("entity_id", e.id, "num", strconv.Itoa(i+1), "mon_id", n, "hetero", "n")
		}
	}
	if r.first == nil {
		return
	}
	for _, mol := range r.first.list {
		blank := "N"
		if mol.chain == "" {
			blank = "Y"
		}
		r.cat("struct_asym").Append("id", mol.asym, "pdbx_blank_PDB_chainid_flag", blank,
			"pdbx_modified", "N", "entity_id", mol.ent.id)
	}
}

/*
 * serialize.go, part of gomol.
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

package mol

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/molerr"
	"github.com/rmera/gomol/residue"
)

//Serialize returns a DataDict with the given name describing the models.
//Entities, bonds, secondary structure and assemblies are taken from the
//first model. Bonds that Build creates on its own (those within standard
//residues and between consecutive ones) are not written.
func Serialize(name string, models ...*Model) (*dict.DataDict, error) {
	if len(models) == 0 {
		return nil, molerr.New(molerr.InvalidInput, "Serialize: no models")
	}
	s := &serializer{d: dict.New(name), entity: make(map[*Molecule]string)}
	s.d.Ensure("entry").Append("id", name)
	s.entities(models[0])
	if err := s.atoms(models); err != nil {
		return nil, molerr.Decorate(err, "Serialize")
	}
	s.connections(models[0])
	s.secondary(models[0])
	for _, m := range models {
		s.missing(m)
	}
	s.assemblies(models[0])
	s.d.Prune()
	dict.Canonicalize(s.d)
	return s.d, nil
}

type serializer struct {
	d      *dict.DataDict
	entity map[*Molecule]string
	seqID  map[*Residue]string
}

func chainOf(R *Residue) string {
	if i := strings.LastIndexByte(R.ID, '.'); i >= 0 {
		return R.ID[:i]
	}
	if R.molecule != nil {
		return R.molecule.ID
	}
	return R.ID
}

func insCode(c byte) string {
	if c == 0 {
		return dict.Unknown
	}
	return string(c)
}

//entities writes entity, entity_poly and struct_asym. Molecules without an
//entity ID get one shared with the molecules of the same kind and sequence (or name).
func (s *serializer) entities(M *Model) {
	ids := make(map[string]string)
	used := make(map[string]bool)
	for _, m := range M.molecules {
		if m.EntityID != "" {
			used[m.EntityID] = true
		}
	}
	next := 1
	var order []*Molecule
	seen := make(map[string]bool)
	for _, m := range M.molecules {
		id := m.EntityID
		key := m.Kind.String() + "|" + m.Name
		if m.Kind == Polymer || m.Kind == Branched {
			key = m.Kind.String() + "|" + m.PresentSequence()
		}
		if id == "" {
			if id = ids[key]; id == "" {
				for used[strconv.Itoa(next)] {
					next++
				}
				id = strconv.Itoa(next)
				used[id] = true
			}
		}
		ids[key] = id
		if !seen[id] {
			seen[id] = true
			order = append(order, m)
		}
		s.entity[m] = id
	}
	ent := s.d.Ensure("entity")
	poly := s.d.Ensure("entity_poly")
	for _, m := range order {
		id := s.entity[m]
		desc := m.EntityName
		if desc == "" && m.Kind == Water {
			desc = "water"
		}
		count := 0
		var strands []string
		for _, o := range M.molecules {
			if s.entity[o] == id {
				count++
				strands = append(strands, o.ID)
			}
		}
		ent.Append("id", id, "type", m.Kind.String(), "pdbx_description", desc,
			"pdbx_number_of_molecules", strconv.Itoa(count))
		if m.Kind != Polymer {
			continue
		}
		names := make([]string, 0, len(m.residues))
		for _, r := range m.residues {
			names = append(names, r.Name)
		}
		seq := m.Sequence
		if seq == "" {
			seq = m.PresentSequence()
		}
		poly.Append("entity_id", id, "type", residue.PolymerKind(names).String(),
			"pdbx_seq_one_letter_code", seq, "pdbx_strand_id", strings.Join(strands, ","))
	}
	asym := s.d.Ensure("struct_asym")
	seenAsym := make(map[string]bool)
	for _, m := range M.molecules {
		if seenAsym[m.InternalID] {
			continue
		}
		seenAsym[m.InternalID] = true
		asym.Append("id", m.InternalID, "entity_id", s.entity[m])
	}
}

func formatCharge(c float64) string {
	if c == math.Trunc(c) {
		return dict.FormatInt(int64(c))
	}
	return dict.FormatFloat(c, -1)
}

func (s *serializer) atoms(models []*Model) error {
	sites := s.d.Ensure("atom_site")
	aniso := s.d.Ensure("atom_site_anisotrop")
	types := make(map[string]bool)
	s.seqID = make(map[*Residue]string)
	for n, M := range models {
		num := strconv.Itoa(M.Number)
		for _, m := range M.molecules {
			entity := s.entity[m]
			if entity == "" {
				entity = dict.Unknown
			}
			for k, r := range m.residues {
				seq := dict.NotApplicable
				if m.Kind == Polymer {
					seq = strconv.Itoa(k + 1)
				}
				s.seqID[r] = seq
				chain := chainOf(r)
				for _, a := range r.atoms {
					if !a.finite() {
						return molerr.New(molerr.Arithmetic, "atom %d of residue %s has non-finite values", a.ID, r.ID)
					}
					types[a.Element] = true
					group := "ATOM"
					if a.Hetatm {
						group = "HETATM"
					}
					alt := dict.NotApplicable
					if a.AltLoc != 0 {
						alt = string(a.AltLoc)
					}
					id := strconv.Itoa(int(a.ID))
					sites.Append("group_PDB", group, "id", id, "type_symbol", a.Element,
						"label_atom_id", a.Name, "label_alt_id", alt, "label_comp_id", r.Name,
						"label_asym_id", m.InternalID, "label_entity_id", entity, "label_seq_id", seq,
						"pdbx_PDB_ins_code", insCode(r.Insert),
						"Cartn_x", dict.FormatFloat(a.X, -1), "Cartn_y", dict.FormatFloat(a.Y, -1),
						"Cartn_z", dict.FormatFloat(a.Z, -1), "occupancy", dict.FormatFloat(a.Occupancy, -1),
						"B_iso_or_equiv", dict.FormatFloat(a.BValue, -1), "pdbx_formal_charge", formatCharge(a.Charge),
						"auth_seq_id", strconv.Itoa(int(r.Number)), "auth_comp_id", r.Name, "auth_asym_id", chain,
						"auth_atom_id", a.Name, "pdbx_PDB_model_num", num)
					if n > 0 || a.Anisotropy == ([6]float64{}) {
						continue
					}
					u := a.Anisotropy
					aniso.Append("id", id, "type_symbol", a.Element, "pdbx_label_atom_id", a.Name,
						"pdbx_label_alt_id", alt, "pdbx_label_comp_id", r.Name, "pdbx_label_asym_id", m.InternalID,
						"pdbx_label_seq_id", seq, "pdbx_PDB_ins_code", insCode(r.Insert),
						"U[1][1]", dict.FormatFloat(u[0], -1), "U[2][2]", dict.FormatFloat(u[1], -1),
						"U[3][3]", dict.FormatFloat(u[2], -1), "U[1][2]", dict.FormatFloat(u[3], -1),
						"U[1][3]", dict.FormatFloat(u[4], -1), "U[2][3]", dict.FormatFloat(u[5], -1),
						"pdbx_auth_seq_id", strconv.Itoa(int(r.Number)), "pdbx_auth_comp_id", r.Name,
						"pdbx_auth_asym_id", chain, "pdbx_auth_atom_id", a.Name)
				}
			}
		}
	}
	at := s.d.Ensure("atom_type")
	symbols := make([]string, 0, len(types))
	for t := range types {
		symbols = append(symbols, t)
	}
	sort.Strings(symbols)
	for _, t := range symbols {
		at.Append("symbol", t)
	}
	return nil
}

//connections writes the bonds of M that Build would not make again into struct_conn.
func (s *serializer) connections(M *Model) {
	conn := s.d.Ensure("struct_conn")
	counts := make(map[string]int)
	done := make(map[*Bond]bool)
	for _, a := range M.Atoms() {
		for _, b := range a.Bonds {
			if done[b] || b.synthesized() || b.At1.Model() != M || b.At2.Model() != M {
				continue
			}
			done[b] = true
			kind := b.Kind
			if kind == "" {
				kind = Covalent
			}
			counts[kind]++
			row := conn.Append("id", kind+strconv.Itoa(counts[kind]), "conn_type_id", kind)
			for i, p := range []*Atom{b.At1, b.At2} {
				pre := "ptnr" + strconv.Itoa(i+1)
				r := p.residue
				alt := dict.Unknown
				if p.AltLoc != 0 {
					alt = string(p.AltLoc)
				}
				row.Set(pre+"_label_asym_id", r.molecule.InternalID)
				row.Set(pre+"_label_comp_id", r.Name)
				row.Set(pre+"_label_seq_id", s.seqID[r])
				row.Set(pre+"_label_atom_id", p.Name)
				row.Set("pdbx_"+pre+"_label_alt_id", alt)
				row.Set("pdbx_"+pre+"_PDB_ins_code", insCode(r.Insert))
				row.Set(pre+"_symmetry", "1_555")
				row.Set(pre+"_auth_asym_id", chainOf(r))
				row.Set(pre+"_auth_seq_id", strconv.Itoa(int(r.Number)))
			}
			row.Set("pdbx_dist_value", dict.FormatFloat(b.At1.DistanceTo(b.At2.Location()), 3))
		}
	}
}

//secondary writes the helices and strands of the polymers of M.
func (s *serializer) secondary(M *Model) {
	conf := s.d.Ensure("struct_conf")
	sheets := s.d.Ensure("struct_sheet_range")
	nh := 0
	for _, m := range M.Polymers() {
		ends := func(row dict.Row, ids []string) bool {
			beg, end := m.ResidueByID(ids[0]), m.ResidueByID(ids[len(ids)-1])
			if beg == nil || end == nil {
				return false
			}
			for _, e := range []struct {
				p string
				r *Residue
			}{{"beg", beg}, {"end", end}} {
				row.Set(e.p+"_label_comp_id", e.r.Name)
				row.Set(e.p+"_label_asym_id", m.InternalID)
				row.Set(e.p+"_label_seq_id", s.seqID[e.r])
				row.Set("pdbx_"+e.p+"_PDB_ins_code", insCode(e.r.Insert))
				row.Set(e.p+"_auth_comp_id", e.r.Name)
				row.Set(e.p+"_auth_asym_id", chainOf(e.r))
				row.Set(e.p+"_auth_seq_id", strconv.Itoa(int(e.r.Number)))
			}
			return true
		}
		for _, h := range m.Helices {
			if len(h) == 0 {
				continue
			}
			nh++
			row := conf.Append("conf_type_id", "HELX_P", "id", "HELX_P"+strconv.Itoa(nh),
				"pdbx_PDB_helix_id", strconv.Itoa(nh), "pdbx_PDB_helix_length", strconv.Itoa(len(h)))
			ends(row, h)
		}
		for i, st := range m.Strands {
			if len(st) == 0 {
				continue
			}
			row := sheets.Append("sheet_id", m.InternalID, "id", strconv.Itoa(i+1))
			ends(row, st)
		}
	}
}

func (s *serializer) missing(M *Model) {
	num := strconv.Itoa(M.Number)
	res := s.d.Ensure("pdbx_unobs_or_zero_occ_residues")
	for _, r := range M.Missing.Residues {
		res.Append("id", strconv.Itoa(res.Len()+1), "PDB_model_num", num, "polymer_flag", "Y",
			"occupancy_flag", "1", "auth_asym_id", r.Chain, "auth_comp_id", r.Name,
			"auth_seq_id", strconv.Itoa(int(r.Number)), "PDB_ins_code", insCode(r.Insert))
	}
	ats := s.d.Ensure("pdbx_unobs_or_zero_occ_atoms")
	for _, a := range M.Missing.Atoms {
		ats.Append("id", strconv.Itoa(ats.Len()+1), "PDB_model_num", num, "polymer_flag", "Y",
			"occupancy_flag", "1", "auth_asym_id", a.Chain, "auth_comp_id", a.ResidueName,
			"auth_seq_id", strconv.Itoa(int(a.Number)), "PDB_ins_code", insCode(a.Insert),
			"auth_atom_id", a.Name)
	}
}

func (s *serializer) assemblies(M *Model) {
	asm := s.d.Ensure("pdbx_struct_assembly")
	gen := s.d.Ensure("pdbx_struct_assembly_gen")
	prop := s.d.Ensure("pdbx_struct_assembly_prop")
	for _, a := range M.Assemblies {
		row := asm.Append("id", a.ID, "details", a.Details, "method_details", a.Software,
			"oligomeric_details", a.Method)
		if a.OligomericCount > 0 {
			row.Set("oligomeric_count", strconv.Itoa(a.OligomericCount))
		}
		for _, g := range a.Gens {
			gen.Append("assembly_id", a.ID, "oper_expression", g.Expression, "asym_id_list", strings.Join(g.Chains, ","))
		}
		for _, t := range []string{BuriedSurfaceArea, DeltaEnergy, SurfaceArea} {
			if v, ok := a.Metrics[t]; ok {
				prop.Append("biol_id", a.ID, "type", t, "value", dict.FormatFloat(v, -1))
			}
		}
	}
	ids := make([]string, 0, len(M.Operators))
	for id := range M.Operators {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, erra := strconv.Atoi(ids[i])
		b, errb := strconv.Atoi(ids[j])
		if erra == nil && errb == nil {
			return a < b
		}
		return ids[i] < ids[j]
	})
	ops := s.d.Ensure("pdbx_struct_oper_list")
	for _, id := range ids {
		op := M.Operators[id]
		typ := dict.Unknown
		if op == dict.Identity {
			typ = "identity operation"
		}
		row := ops.Append("id", id, "type", typ)
		for i, f := range dict.OperFields {
			row.Set(f, dict.FormatFixed(op[i], 10))
		}
	}
}

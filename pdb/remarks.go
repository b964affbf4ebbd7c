/*
 * remarks.go, part of gomol.
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
	"regexp"
	"strconv"
	"strings"

	"github.com/rmera/gomol/dict"
)

//biomolecule is one BIOMOLECULE block of REMARK 350.
type biomolecule struct {
	id       string
	software string
	author   string
	softOlig string
	buried   string
	surface  string
	energy   string
	groups   []*biomtGroup
	curGroup *biomtGroup
}

//biomtGroup is a set of chains and the transformations applied to them.
type biomtGroup struct {
	chains     []string
	transforms [][12]string //3 rows of matrix and vector
	rows       int
}

var (
	reSoftware = regexp.MustCompile(`SOFTWARE USED: (.+)`)
	reBuried   = regexp.MustCompile(`TOTAL BURIED SURFACE AREA: (\S+)`)
	reSurface  = regexp.MustCompile(`SURFACE AREA OF THE COMPLEX: (\S+)`)
	reEnergy   = regexp.MustCompile(`CHANGE IN SOLVENT FREE ENERGY: (\S+)`)
	reAuthor   = regexp.MustCompile(`AUTHOR DETERMINED BIOLOGICAL UNIT: (.+)`)
	reSoftOlig = regexp.MustCompile(`SOFTWARE DETERMINED QUATERNARY STRUCTURE: (.+)`)
)

func splitChains(s string) []string {
	var ret []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			ret = append(ret, c)
		}
	}
	return ret
}

//parseBiomolecules reads the blocks of REMARK 350.
func parseBiomolecules(lines []string) []*biomolecule {
	var ret []*biomolecule
	var cur *biomolecule
	for _, t := range lines {
		t = strings.TrimSpace(t)
		switch {
		case strings.HasPrefix(t, "BIOMOLECULE:"):
			cur = &biomolecule{id: strings.TrimSpace(strings.TrimPrefix(t, "BIOMOLECULE:"))}
			ret = append(ret, cur)
			continue
		case cur == nil:
			continue
		}
		if m := reSoftware.FindStringSubmatch(t); m != nil {
			cur.software = strings.TrimSpace(m[1])
		} else if m := reBuried.FindStringSubmatch(t); m != nil {
			cur.buried = m[1]
		} else if m := reSurface.FindStringSubmatch(t); m != nil {
			cur.surface = m[1]
		} else if m := reEnergy.FindStringSubmatch(t); m != nil {
			cur.energy = m[1]
		} else if m := reAuthor.FindStringSubmatch(t); m != nil {
			cur.author = strings.TrimSpace(m[1])
		} else if m := reSoftOlig.FindStringSubmatch(t); m != nil {
			cur.softOlig = strings.TrimSpace(m[1])
		}
		switch {
		case strings.HasPrefix(t, "APPLY THE FOLLOWING TO CHAINS:"):
			cur.curGroup = &biomtGroup{chains: splitChains(strings.TrimPrefix(t, "APPLY THE FOLLOWING TO CHAINS:"))}
			cur.groups = append(cur.groups, cur.curGroup)
		case strings.HasPrefix(t, "AND CHAINS:") && cur.curGroup != nil:
			cur.curGroup.chains = append(cur.curGroup.chains, splitChains(strings.TrimPrefix(t, "AND CHAINS:"))...)
		case strings.HasPrefix(t, "BIOMT") && cur.curGroup != nil:
			f := strings.Fields(t)
			if len(f) < 6 {
				continue
			}
			g := cur.curGroup
			if g.rows%3 == 0 {
				g.transforms = append(g.transforms, [12]string{})
			}
			row := g.rows % 3
			tr := &g.transforms[len(g.transforms)-1]
			copy(tr[row*4:row*4+4], f[2:6])
			g.rows++
		}
	}
	return ret
}

//operKey builds the identity of a transformation from its numeric values.
func operKey(tr [12]string) string {
	parts := make([]string, len(tr))
	for i, v := range tr {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			parts[i] = v
			continue
		}
		parts[i] = dict.FormatFloat(f, 6)
	}
	return strings.Join(parts, " ")
}

func isIdentity(tr [12]string) bool {
	for i, v := range tr {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return false
		}
		want := 0.0
		if i%4 == i/4 {
			want = 1
		}
		if f != want {
			return false
		}
	}
	return true
}

//assemblies turns REMARK 350 into the pdbx_struct_assembly categories.
//Identical transformations of different biomolecules share an operator.
func (r *reader) assemblies() error {
	opers := make(map[string]string)
	for _, bm := range parseBiomolecules(r.recs.RemarkText(350)) {
		details := "author_defined_assembly"
		switch {
		case bm.author != "" && bm.softOlig != "":
			details = "author_and_software_defined_assembly"
		case bm.author == "" && bm.softOlig != "":
			details = "software_defined_assembly"
		}
		olig := bm.author
		if olig == "" {
			olig = bm.softOlig
		}
		r.cat("pdbx_struct_assembly").Append("id", bm.id, "details", details, "method_details", bm.software,
			"oligomeric_details", strings.ToLower(olig))
		for _, p := range [][2]string{{"ABSA (A^2)", bm.buried}, {"MORE", bm.energy}, {"SSA (A^2)", bm.surface}} {
			if p[1] != "" {
				r.cat("pdbx_struct_assembly_prop").Append("biol_id", bm.id, "type", p[0], "value", p[1])
			}
		}
		for _, g := range bm.groups {
			var ids []string
			for _, tr := range g.transforms {
				k := operKey(tr)
				id, ok := opers[k]
				if !ok {
					id = strconv.Itoa(len(opers) + 1)
					opers[k] = id
					typ := "?"
					if isIdentity(tr) {
						typ = "identity operation"
					}
					row := r.cat("pdbx_struct_oper_list").Append("id", id, "type", typ)
					for i, f := range dict.OperFields {
						row.Set(f, tr[i])
					}
				}
				ids = append(ids, id)
			}
			r.cat("pdbx_struct_assembly_gen").Append("assembly_id", bm.id,
				"oper_expression", strings.Join(ids, ","), "asym_id_list", strings.Join(r.asymsOf(g.chains), ","))
		}
	}
	return nil
}

//asymsOf returns the label asym ids of the first model that belong to the
//given author chains, in asym order.
func (r *reader) asymsOf(chains []string) []string {
	if r.first == nil {
		return nil
	}
	want := make(map[string]bool, len(chains))
	for _, c := range chains {
		want[c] = true
	}
	var ret []string
	for _, mol := range r.first.list {
		if want[mol.chain] {
			ret = append(ret, mol.asym)
		}
	}
	return ret
}

//missingRecord is a line of REMARK 465, 470 or 480.
type missingRecord struct {
	model, res, chain, seq, icode string
	atoms                         []string
}

//parseMissing reads the table of a missing-residue or missing-atom
//remark, which starts after its column header.
func parseMissing(lines []Line, withAtoms bool) []missingRecord {
	var ret []missingRecord
	started := false
	for _, l := range lines {
		if !started {
			started = strings.Contains(l.Raw(12, 80), "RES C")
			continue
		}
		m := missingRecord{model: l.Col(12, 14), res: l.Col(16, 18), chain: l.Col(20, 20)}
		if withAtoms {
			m.seq, m.icode = l.Col(21, 24), l.Col(25, 25)
			m.atoms = strings.Fields(l.Raw(26, 80))
		} else {
			m.seq, m.icode = l.Col(22, 26), l.Col(27, 27)
		}
		if m.res == "" || m.seq == "" {
			continue
		}
		if _, err := strconv.Atoi(m.seq); err != nil {
			continue
		}
		if m.model == "" {
			m.model = "1"
		}
		ret = append(ret, m)
	}
	return ret
}

//missing reads REMARK 465 (unobserved residues), 470 (missing atoms) and
//480 (zero occupancy atoms).
func (r *reader) missing() error {
	for i, m := range parseMissing(r.recs.Remark(465), false) {
		asym := dict.Unknown
		if mol := r.polymerOf(m.chain); mol != nil {
			asym = mol.asym
		}
		r.cat("pdbx_unobs_or_zero_occ_residues").Append("id", strconv.Itoa(i+1), "PDB_model_num", m.model,
			"polymer_flag", "Y", "occupancy_flag", "1", "auth_asym_id", m.chain, "auth_comp_id", m.res,
			"auth_seq_id", m.seq, "PDB_ins_code", m.icode, "label_asym_id", asym, "label_comp_id", m.res)
	}
	n := 0
	for _, rem := range []struct {
		num  int
		flag string
	}{{470, "1"}, {480, "0"}} {
		for _, m := range parseMissing(r.recs.Remark(rem.num), true) {
			seq, _ := strconv.Atoi(m.seq)
			asym, labelSeq := r.first.locate(m.chain, seq, m.icode)
			polymer := "N"
			if labelSeq != dict.NotApplicable && labelSeq != dict.Unknown {
				polymer = "Y"
			}
			for _, a := range m.atoms {
				n++
				r.cat("pdbx_unobs_or_zero_occ_atoms").Append("id", strconv.Itoa(n), "PDB_model_num", m.model,
					"polymer_flag", polymer, "occupancy_flag", rem.flag, "auth_asym_id", m.chain, "auth_comp_id", m.res,
					"auth_seq_id", m.seq, "PDB_ins_code", m.icode, "auth_atom_id", a, "label_asym_id", asym,
					"label_comp_id", m.res, "label_seq_id", labelSeq, "label_atom_id", a)
			}
		}
	}
	return nil
}

func (r *reader) polymerOf(chain string) *molecule {
	if r.first == nil {
		return nil
	}
	for _, mol := range r.first.list {
		if mol.polymer && mol.chain == chain {
			return mol
		}
	}
	return nil
}

var reSiteResidue = regexp.MustCompile(`RESIDUE (\S+) (\S)? *(-?\d+)(\S?)`)

//sites reads the site descriptions of REMARK 800 and the SITE records.
func (r *reader) sites() error {
	rows := make(map[string]dict.Row)
	var cur dict.Row
	have := false
	for _, t := range r.recs.RemarkText(800) {
		k, v, ok := strings.Cut(t, ":")
		if !ok {
			if have && strings.TrimSpace(t) != "" {
				cur.Set("details", cur.Get("details")+" "+strings.TrimSpace(t))
			}
			continue
		}
		v = strings.TrimSpace(v)
		switch strings.TrimSpace(k) {
		case "SITE_IDENTIFIER":
			cur = r.cat("struct_site").Append("id", v)
			rows[v] = cur
			have = true
		case "EVIDENCE_CODE":
			if have {
				cur.Set("pdbx_evidence_code", v)
			}
		case "SITE_DESCRIPTION":
			if have {
				cur.Set("details", v)
			}
		}
	}
	for _, row := range rows {
		if m := reSiteResidue.FindStringSubmatch(row.Get("details")); m != nil {
			row.Set("pdbx_auth_comp_id", m[1])
			row.Set("pdbx_auth_asym_id", m[2])
			row.Set("pdbx_auth_seq_id", m[3])
			row.Set("pdbx_auth_ins_code", m[4])
		}
	}
	gen := 0
	for _, l := range r.recs.Get("SITE") {
		site := l.Col(12, 14)
		row, ok := rows[site]
		if !ok {
			row = r.cat("struct_site").Append("id", site)
			rows[site] = row
		}
		row.Set("pdbx_num_residues", l.Col(16, 17))
		for _, c := range []residueCols{
			{{19, 21}, {23, 23}, {24, 27}, {28, 28}},
			{{30, 32}, {34, 34}, {35, 38}, {39, 39}},
			{{41, 43}, {45, 45}, {46, 49}, {50, 50}},
			{{52, 54}, {56, 56}, {57, 60}, {61, 61}},
		} {
			name, chain, seq, icode, err := c.read(l)
			if err != nil {
				return err
			}
			if name == "" {
				continue
			}
			gen++
			asym, labelSeq := r.first.locate(chain, seq, icode)
			r.cat("struct_site_gen").Append("id", strconv.Itoa(gen), "site_id", site, "pdbx_num_res", l.Col(16, 17),
				"label_comp_id", name, "label_asym_id", asym, "label_seq_id", labelSeq, "pdbx_auth_ins_code", icode,
				"auth_comp_id", name, "auth_asym_id", chain, "auth_seq_id", strconv.Itoa(seq), "label_atom_id", ".",
				"label_alt_id", "?", "symmetry", "1_555")
		}
	}
	return nil
}

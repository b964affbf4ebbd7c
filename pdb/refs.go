/*
 * refs.go, part of gomol.
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
	"sort"
	"strconv"
	"strings"

	"github.com/rmera/gomol/residue"
)

//references reads SOURCE, MODRES, DBREF and SEQADV.
func (r *reader) references() error {
	for _, m := range Tokens(r.recs.Text("SOURCE", 11)) {
		sci, host := m["ORGANISM_SCIENTIFIC"], m["EXPRESSION_SYSTEM"]
		if sci == "" && host == "" {
			continue
		}
		ent := m["MOL_ID"]
		if c := r.compndChain(m["MOL_ID"]); c != "" {
			if mol := r.polymerOf(c); mol != nil {
				ent = mol.ent.id
			}
		}
		r.cat("entity_src_gen").Append("entity_id", ent, "pdbx_src_id", "1",
			"pdbx_gene_src_scientific_name", sci, "pdbx_gene_src_ncbi_taxonomy_id", m["ORGANISM_TAXID"],
			"pdbx_host_org_scientific_name", host, "pdbx_host_org_ncbi_taxonomy_id", m["EXPRESSION_SYSTEM_TAXID"])
	}
	for i, l := range r.recs.Get("MODRES") {
		seq, _, err := l.Int(19, 22)
		if err != nil {
			return err
		}
		chain, icode := l.Col(17, 17), l.Col(23, 23)
		asym, labelSeq := r.first.locate(chain, seq, icode)
		r.cat("pdbx_struct_mod_residue").Append("id", strconv.Itoa(i+1), "PDB_model_num", "1",
			"auth_asym_id", chain, "auth_seq_id", strconv.Itoa(seq), "PDB_ins_code", icode,
			"auth_comp_id", l.Col(13, 15), "label_asym_id", asym, "label_comp_id", l.Col(13, 15),
			"label_seq_id", labelSeq, "parent_comp_id", l.Col(25, 27), "details", l.Col(30, 70))
	}
	aligns := make(map[string]string)
	for i, l := range r.recs.Get("DBREF") {
		n := strconv.Itoa(i + 1)
		chain := l.Col(13, 13)
		aligns[chain] = n
		ent := "?"
		if mol := r.polymerOf(chain); mol != nil {
			ent = mol.ent.id
		}
		r.cat("struct_ref").Append("id", n, "db_name", l.Col(27, 32), "db_code", l.Col(43, 54),
			"pdbx_db_accession", l.Col(34, 41), "entity_id", ent, "pdbx_align_begin", l.Col(56, 60))
		beg, _, err := l.Int(15, 18)
		if err != nil {
			return err
		}
		end, _, err := l.Int(21, 24)
		if err != nil {
			return err
		}
		_, begSeq := r.first.locate(chain, beg, l.Col(19, 19))
		_, endSeq := r.first.locate(chain, end, l.Col(25, 25))
		r.cat("struct_ref_seq").Append("align_id", n, "ref_id", n, "pdbx_PDB_id_code", l.Col(8, 11),
			"pdbx_strand_id", chain, "seq_align_beg", begSeq, "pdbx_seq_align_beg_ins_code", l.Col(19, 19),
			"seq_align_end", endSeq, "pdbx_seq_align_end_ins_code", l.Col(25, 25),
			"pdbx_db_accession", l.Col(34, 41), "db_align_beg", l.Col(56, 60), "db_align_end", l.Col(63, 67),
			"pdbx_auth_seq_align_beg", strconv.Itoa(beg), "pdbx_auth_seq_align_end", strconv.Itoa(end))
	}
	for i, l := range r.recs.Get("SEQADV") {
		chain := l.Col(17, 17)
		seq, ok, err := l.Int(19, 22)
		if err != nil {
			return err
		}
		labelSeq, auth := "?", "?"
		if ok {
			_, labelSeq = r.first.locate(chain, seq, l.Col(23, 23))
			auth = strconv.Itoa(seq)
		}
		r.cat("struct_ref_seq_dif").Append("align_id", aligns[chain], "pdbx_pdb_id_code", l.Col(8, 11),
			"mon_id", l.Col(13, 15), "pdbx_pdb_strand_id", chain, "seq_num", labelSeq,
			"pdbx_pdb_ins_code", l.Col(23, 23), "pdbx_seq_db_name", l.Col(25, 28),
			"pdbx_seq_db_accession_code", l.Col(30, 38), "db_mon_id", l.Col(40, 42),
			"pdbx_seq_db_seq_num", l.Col(44, 48), "details", strings.ToLower(l.Col(50, 70)),
			"pdbx_auth_seq_num", auth, "pdbx_ordinal", strconv.Itoa(i+1))
	}
	return nil
}

//compndChain returns the first chain of a COMPND molecule.
func (r *reader) compndChain(molID string) string {
	for _, m := range r.compnd {
		if m["MOL_ID"] == molID {
			if cs := splitChains(m["CHAIN"]); len(cs) > 0 {
				return cs[0]
			}
		}
	}
	return ""
}

var reFormula = regexp.MustCompile(`^\*?\s*\d*\s*\((.*)\)\s*$`)

//components writes a chem_comp row for every residue name in the first
//model, named after HETNAM, with synonyms from HETSYN and the formula from
//FORMUL.
func (r *reader) components() error {
	if r.first == nil {
		return nil
	}
	_, synonyms := r.recs.Keyed("HETSYN", 12, 14, 16, 70)
	_, formulas := r.recs.Keyed("FORMUL", 13, 15, 19, 70)
	names := make(map[string]bool)
	for _, mol := range r.first.list {
		for _, n := range mol.names {
			names[n] = true
		}
	}
	ids := make([]string, 0, len(names))
	for n := range names {
		ids = append(ids, n)
	}
	sort.Strings(ids)
	for _, id := range ids {
		typ, std := "non-polymer", residue.StandardFlag(id)
		switch residue.KindOf(id) {
		case residue.Peptide:
			typ = "L-peptide linking"
			if id == "GLY" {
				typ = "peptide linking"
			}
		case residue.DNA:
			typ = "DNA linking"
		case residue.RNA:
			typ = "RNA linking"
		}
		name := r.hetnam[id]
		if residue.IsWater(id) && name == "" {
			name = "WATER"
		}
		formula := strings.TrimSpace(formulas[id])
		if m := reFormula.FindStringSubmatch(formula); m != nil {
			formula = m[1]
		}
		r.cat("chem_comp").Append("id", id, "type", typ, "mon_nstd_flag", std, "name", name,
			"pdbx_synonyms", synonyms[id], "formula", formula)
	}
	return nil
}

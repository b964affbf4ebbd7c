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

package pdb

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/molerr"
)

//The order categories are emitted in. Categories that end up empty are
//dropped.
var readOrder = []string{
	"entry", "struct", "struct_keywords", "pdbx_database_status", "audit_author", "exptl",
	"entity", "entity_poly", "entity_poly_seq", "entity_src_gen", "struct_ref", "struct_ref_seq",
	"struct_ref_seq_dif", "pdbx_struct_mod_residue", "chem_comp", "pdbx_entity_nonpoly",
	"struct_asym", "struct_conf", "struct_sheet", "struct_sheet_order", "struct_sheet_range",
	"struct_conn", "struct_site", "struct_site_gen", "cell", "symmetry", "atom_sites",
	"database_PDB_matrix", "struct_ncs_oper", "reflns", "refine",
	"pdbx_unobs_or_zero_occ_residues", "pdbx_unobs_or_zero_occ_atoms", "pdbx_struct_assembly",
	"pdbx_struct_assembly_gen", "pdbx_struct_assembly_prop", "pdbx_struct_oper_list",
	"atom_type", "atom_site", "atom_site_anisotrop",
}

//Read parses a PDB file into a DataDict. The first model decides the
//label asym ids and entities; every model goes to atom_site.
func Read(b []byte) (*dict.DataDict, error) {
	recs, err := Split(b)
	if err != nil {
		return nil, molerr.Decorate(err, "pdb.Read")
	}
	d, err := Normalize(recs)
	if err != nil {
		return nil, molerr.Decorate(err, "pdb.Read")
	}
	return d, nil
}

//reader holds the state shared by the steps of Normalize.
type reader struct {
	recs   *Records
	d      *dict.DataDict
	id     string
	method string
	compnd []map[string]string
	seqres map[string][]string
	modres map[string]bool //chain+resname
	hetnam map[string]string
	first  *modelMols
	ents   *entities
	//atoms of the first model by serial number and by atomKey
	serials map[string]atomRecord
	named   map[string]atomRecord
}

//Normalize turns grouped records into a DataDict.
func Normalize(recs *Records) (*dict.DataDict, error) {
	r := &reader{recs: recs, seqres: make(map[string][]string), modres: make(map[string]bool)}
	r.d = dict.New("")
	for _, name := range readOrder {
		r.d.Ensure(name)
	}
	steps := []func() error{
		r.header,
		r.sequences,
		r.atoms,
		r.secondary,
		r.connections,
		r.crystal,
		r.refinement,
		r.assemblies,
		r.missing,
		r.sites,
		r.references,
		r.components,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	r.d.Prune()
	dict.Canonicalize(r.d)
	slog.Debug("pdb records normalized", "id", r.id, "categories", r.d.Len(), "models", len(recs.Models))
	return r.d, nil
}

func (r *reader) cat(name string) *dict.Category { return r.d.Ensure(name) }

func (r *reader) header() error {
	id := dict.Unknown
	if h := r.recs.Get("HEADER"); len(h) > 0 {
		l := h[0]
		if code := l.Col(63, 66); code != "" {
			id = code
			r.d.Name = code
		}
		date := dict.Unknown
		if raw := l.Col(51, 59); raw != "" {
			t, err := dict.ParseDate(raw)
			if err != nil {
				return molerr.AtOffset(molerr.InvalidInput, "", l.Offset+50, "bad deposition date %q", raw)
			}
			date = dict.FormatDate(t)
		}
		r.cat("pdbx_database_status").Append("entry_id", id, "recvd_initial_deposition_date", date)
		r.cat("struct_keywords").Append("entry_id", id, "pdbx_keywords", l.Col(11, 50), "text", r.recs.Text("KEYWDS", 11))
	} else if kw := r.recs.Text("KEYWDS", 11); kw != "" {
		r.cat("struct_keywords").Append("entry_id", id, "text", kw)
	}
	r.id = id
	r.cat("entry").Append("id", id)
	r.compnd = Tokens(r.recs.Text("COMPND", 11))
	var descriptors []string
	for _, m := range r.compnd {
		if m["MOLECULE"] != "" {
			descriptors = append(descriptors, m["MOLECULE"])
		}
	}
	title := r.recs.Text("TITLE", 11)
	if title != "" || len(descriptors) > 0 {
		r.cat("struct").Append("entry_id", id, "title", title, "pdbx_descriptor", strings.Join(descriptors, ", "))
	}
	for i, a := range strings.Split(r.recs.Text("AUTHOR", 11), ",") {
		if a = strings.TrimSpace(a); a != "" {
			r.cat("audit_author").Append("name", a, "pdbx_ordinal", strconv.Itoa(i+1))
		}
	}
	r.method = r.recs.Text("EXPDTA", 11)
	for _, m := range strings.Split(r.method, ";") {
		if m = strings.TrimSpace(m); m != "" {
			r.cat("exptl").Append("entry_id", id, "method", m)
		}
	}
	return nil
}

//sequences reads SEQRES and MODRES, which the atom step needs to tell
//polymer residues apart.
func (r *reader) sequences() error {
	for _, l := range r.recs.Get("SEQRES") {
		chain := l.Col(12, 12)
		r.seqres[chain] = append(r.seqres[chain], strings.Fields(l.Raw(20, 70))...)
	}
	for _, l := range r.recs.Get("MODRES") {
		r.modres[l.Col(17, 17)+" "+l.Col(13, 15)] = true
	}
	_, r.hetnam = r.recs.Keyed("HETNAM", 12, 14, 16, 70)
	return nil
}

//molFor returns the COMPND entry whose CHAIN list has the given chain.
func (r *reader) molFor(chain string) map[string]string {
	for _, m := range r.compnd {
		for _, c := range strings.Split(m["CHAIN"], ",") {
			if strings.TrimSpace(c) == chain {
				return m
			}
		}
	}
	return nil
}

func (r *reader) crystal() error {
	if c := r.recs.Get("CRYST1"); len(c) > 0 {
		l := c[0]
		vals := make([]string, 0, 6)
		for _, cols := range [][2]int{{7, 15}, {16, 24}, {25, 33}, {34, 40}, {41, 47}, {48, 54}} {
			v, err := l.Number(cols[0], cols[1])
			if err != nil {
				return err
			}
			vals = append(vals, v)
		}
		z, err := l.Number(67, 70)
		if err != nil {
			return err
		}
		r.cat("cell").Append("entry_id", r.id, "length_a", vals[0], "length_b", vals[1], "length_c", vals[2],
			"angle_alpha", vals[3], "angle_beta", vals[4], "angle_gamma", vals[5], "Z_pdb", z)
		r.cat("symmetry").Append("entry_id", r.id, "space_group_name_H-M", l.Col(56, 66))
	}
	if err := r.matrixRecords("ORIGX", "database_PDB_matrix", "origx", "origx_vector"); err != nil {
		return err
	}
	if err := r.matrixRecords("SCALE", "atom_sites", "fract_transf_matrix", "fract_transf_vector"); err != nil {
		return err
	}
	return r.ncs()
}

//matrixRecords reads the three lines of an ORIGX or SCALE transformation
//into a single-row category.
func (r *reader) matrixRecords(rec, cat, mfield, vfield string) error {
	var row dict.Row
	started := false
	for n := 1; n <= 3; n++ {
		lines := r.recs.Get(rec + strconv.Itoa(n))
		if len(lines) == 0 {
			continue
		}
		if !started {
			row = r.cat(cat).Append("entry_id", r.id)
			started = true
		}
		l := lines[0]
		for j, cols := range [][2]int{{11, 20}, {21, 30}, {31, 40}} {
			v, err := l.Number(cols[0], cols[1])
			if err != nil {
				return err
			}
			row.Set(mfield+"["+strconv.Itoa(n)+"]["+strconv.Itoa(j+1)+"]", v)
		}
		v, err := l.Number(46, 55)
		if err != nil {
			return err
		}
		row.Set(vfield+"["+strconv.Itoa(n)+"]", v)
	}
	return nil
}

func (r *reader) ncs() error {
	rows := make(map[string]dict.Row)
	for n := 1; n <= 3; n++ {
		for _, l := range r.recs.Get("MTRIX" + strconv.Itoa(n)) {
			serial := l.Col(8, 10)
			row, ok := rows[serial]
			if !ok {
				code := "generate"
				if l.Char(60) == '1' {
					code = "given"
				}
				row = r.cat("struct_ncs_oper").Append("id", serial, "code", code)
				rows[serial] = row
			}
			for j, cols := range [][2]int{{11, 20}, {21, 30}, {31, 40}} {
				v, err := l.Number(cols[0], cols[1])
				if err != nil {
					return err
				}
				row.Set("matrix["+strconv.Itoa(n)+"]["+strconv.Itoa(j+1)+"]", v)
			}
			v, err := l.Number(46, 55)
			if err != nil {
				return err
			}
			row.Set("vector["+strconv.Itoa(n)+"]", v)
		}
	}
	return nil
}

var (
	rWork = regexp.MustCompile(`R VALUE[ ]{2,}\(WORKING SET\) : (.+)`)
	rFree = regexp.MustCompile(`FREE R VALUE[ ]{2,}: (.+)`)
)

//refinement reads the resolution (REMARK 2) and R factors (REMARK 3).
func (r *reader) refinement() error {
	res := ""
	for _, t := range r.recs.RemarkText(2) {
		f := strings.Fields(t)
		if len(f) > 1 && strings.HasPrefix(f[0], "RESOLUTION") && dict.IsNumber(f[1]) {
			res = f[1]
			break
		}
	}
	work, free := "", ""
	for _, t := range r.recs.RemarkText(3) {
		if m := rFree.FindStringSubmatch(t); m != nil {
			free = strings.TrimSpace(m[1])
		} else if m := rWork.FindStringSubmatch(t); m != nil {
			work = strings.TrimSpace(m[1])
		}
	}
	if !dict.IsNumber(work) {
		work = ""
	}
	if !dict.IsNumber(free) {
		free = ""
	}
	if res == "" && work == "" && free == "" {
		return nil
	}
	method := r.method
	if method == "" {
		method = dict.Unknown
	}
	r.cat("refine").Append("entry_id", r.id, "pdbx_refine_id", method, "ls_d_res_high", res,
		"ls_R_factor_R_work", work, "ls_R_factor_R_free", free)
	if res != "" {
		r.cat("reflns").Append("entry_id", r.id, "d_resolution_high", res, "pdbx_ordinal", "1")
	}
	return nil
}

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

package pdb

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/molerr"
	"github.com/rmera/gomol/residue"
)

//writer accumulates 80-column lines.
type writer struct {
	b     bytes.Buffer
	d     *dict.DataDict
	index map[string]indexedAtom
}

//indexedAtom is an atom of the first model, found by connectivity records.
type indexedAtom struct {
	serial  int
	element string
}

func (w *writer) line(s string) {
	if len(s) > 80 {
		s = s[:80]
	}
	w.b.WriteString(s)
	w.b.WriteString(strings.Repeat(" ", 80-len(s)))
	w.b.WriteByte('\n')
}

func (w *writer) linef(format string, a ...interface{}) { w.line(fmt.Sprintf(format, a...)) }

//get returns a value of d, or "" for sentinels.
func (w *writer) get(cat string, row int, field string) string {
	v, _ := w.d.Optional(cat, row, field)
	return v
}

//Write returns d in the PDB format. Values that don't fit their columns
//are truncated.
func Write(d *dict.DataDict) ([]byte, error) {
	if err := dict.Validate(d); err != nil {
		return nil, molerr.Decorate(err, "pdb.Write")
	}
	w := &writer{d: d}
	steps := []func() error{
		w.header,
		w.remarks,
		w.seqres,
		w.hets,
		w.secondary,
		w.links,
		w.crystal,
		w.coordinates,
		w.conect,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, molerr.Decorate(err, "pdb.Write")
		}
	}
	w.line("END")
	return w.b.Bytes(), nil
}

//wrap splits text in chunks of at most width characters, at spaces when
//possible.
func wrap(text string, width int) []string {
	var ret []string
	for len(text) > width {
		cut := strings.LastIndexByte(text[:width+1], ' ')
		if cut <= 0 {
			cut = width
		}
		ret = append(ret, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		ret = append(ret, text)
	}
	return ret
}

//continued writes a record whose text spans several lines.
func (w *writer) continued(name, text string) {
	for i, chunk := range wrap(text, 69) {
		if i == 0 {
			w.linef("%-6s    %s", name, chunk)
			continue
		}
		w.linef("%-6s  %2d %s", name, i+1, chunk)
	}
}

func (w *writer) header() error {
	id := w.get("entry", 0, "id")
	class := w.get("struct_keywords", 0, "pdbx_keywords")
	date := ""
	if t, ok, err := w.d.Date("pdbx_database_status", 0, "recvd_initial_deposition_date"); err == nil && ok {
		date = strings.ToUpper(t.Format("02-Jan-06"))
	}
	if id != "" || class != "" || date != "" {
		w.linef("HEADER    %-40.40s%-9s   %-4.4s", class, date, id)
	}
	w.continued("TITLE", w.get("struct", 0, "title"))
	w.molecules()
	w.continued("KEYWDS", w.get("struct_keywords", 0, "text"))
	var methods, authors []string
	if c := w.d.Category("exptl"); c != nil {
		for i := range c.Rows {
			if m := w.get("exptl", i, "method"); m != "" {
				methods = append(methods, m)
			}
		}
	}
	w.continued("EXPDTA", strings.Join(methods, "; "))
	if c := w.d.Category("audit_author"); c != nil {
		for i := range c.Rows {
			if a := w.get("audit_author", i, "name"); a != "" {
				authors = append(authors, a)
			}
		}
	}
	w.continued("AUTHOR", strings.Join(authors, ","))
	return nil
}

//tokens joins "KEY: value;" pairs, skipping empty values.
func tokens(kv ...string) string {
	var parts []string
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			parts = append(parts, kv[i]+": "+kv[i+1]+";")
		}
	}
	return strings.Join(parts, " ")
}

//molecules writes COMPND and SOURCE from the polymer entities. MOL_IDs
//count the polymer entities in order.
func (w *writer) molecules() {
	ents := w.d.Category("entity")
	if ents == nil {
		return
	}
	strands := make(map[string]string)
	if p := w.d.Category("entity_poly"); p != nil {
		for i := range p.Rows {
			strands[p.Value(i, "entity_id")] = strings.ReplaceAll(w.get(p.Name, i, "pdbx_strand_id"), ",", ", ")
		}
	}
	molIDs := make(map[string]string)
	var compnd []string
	for i := range ents.Rows {
		if ents.Value(i, "type") != "polymer" {
			continue
		}
		id := strconv.Itoa(len(molIDs) + 1)
		molIDs[ents.Value(i, "id")] = id
		compnd = append(compnd, tokens("MOL_ID", id, "MOLECULE", w.get(ents.Name, i, "pdbx_description"),
			"CHAIN", strands[ents.Value(i, "id")]))
	}
	w.continued("COMPND", strings.Join(compnd, " "))
	var source []string
	if src := w.d.Category("entity_src_gen"); src != nil {
		for i := range src.Rows {
			id, ok := molIDs[src.Value(i, "entity_id")]
			if !ok {
				continue
			}
			g := func(f string) string { return w.get(src.Name, i, f) }
			source = append(source, tokens("MOL_ID", id, "ORGANISM_SCIENTIFIC", g("pdbx_gene_src_scientific_name"),
				"ORGANISM_TAXID", g("pdbx_gene_src_ncbi_taxonomy_id"), "EXPRESSION_SYSTEM", g("pdbx_host_org_scientific_name"),
				"EXPRESSION_SYSTEM_TAXID", g("pdbx_host_org_ncbi_taxonomy_id")))
		}
	}
	w.continued("SOURCE", strings.Join(source, " "))
}

//keyed writes a record such as HETNAM whose text is continued per
//component.
func (w *writer) keyed(name, id, text string, width int) {
	for i, chunk := range wrap(text, width) {
		if i == 0 {
			w.linef("%-6s     %3s %s", name, id, chunk)
			continue
		}
		w.linef("%-6s  %2d %3s %s", name, i+1, id, chunk)
	}
}

//hets writes HETNAM, HETSYN and FORMUL for the non-polymer components.
func (w *writer) hets() error {
	cc := w.d.Category("chem_comp")
	if cc == nil {
		return nil
	}
	var ids []int
	for i := range cc.Rows {
		if cc.Value(i, "type") == "non-polymer" {
			ids = append(ids, i)
		}
	}
	for _, i := range ids {
		if name := w.get(cc.Name, i, "name"); name != "" && !residue.IsWater(cc.Value(i, "id")) {
			w.keyed("HETNAM", cc.Value(i, "id"), name, 55)
		}
	}
	for _, i := range ids {
		if syn := w.get(cc.Name, i, "pdbx_synonyms"); syn != "" {
			w.keyed("HETSYN", cc.Value(i, "id"), syn, 55)
		}
	}
	for n, i := range ids {
		if f := w.get(cc.Name, i, "formula"); f != "" {
			w.linef("FORMUL  %2d  %3s    %s", n+1, cc.Value(i, "id"), f)
		}
	}
	return nil
}

func (w *writer) remarks() error {
	if res, ok, err := w.d.Float("refine", 0, "ls_d_res_high"); err == nil && ok {
		w.line("REMARK   2")
		w.linef("REMARK   2 RESOLUTION. %.2f ANGSTROMS.", res)
	}
	work, free := w.get("refine", 0, "ls_R_factor_R_work"), w.get("refine", 0, "ls_R_factor_R_free")
	if work != "" || free != "" {
		w.line("REMARK   3")
		w.line("REMARK   3 REFINEMENT.")
		if work != "" {
			w.linef("REMARK   3   R VALUE            (WORKING SET) : %s", work)
		}
		if free != "" {
			w.linef("REMARK   3   FREE R VALUE                     : %s", free)
		}
	}
	if err := w.biomolecules(); err != nil {
		return err
	}
	w.unobserved()
	return nil
}

//authChains maps label asym ids to author chain ids, from atom_site.
func (w *writer) authChains() map[string]string {
	ret := make(map[string]string)
	c := w.d.Category("atom_site")
	if c == nil {
		return ret
	}
	la, aa := c.FieldIndex("label_asym_id"), c.FieldIndex("auth_asym_id")
	if la < 0 || aa < 0 {
		return ret
	}
	for _, r := range c.Rows {
		if _, ok := ret[r[la]]; !ok {
			ret[r[la]] = r[aa]
		}
	}
	return ret
}

func (w *writer) biomolecules() error {
	asm := w.d.Category("pdbx_struct_assembly")
	if asm == nil {
		return nil
	}
	ops, err := w.d.Operators()
	if err != nil {
		return err
	}
	chains := w.authChains()
	gen := w.d.Category("pdbx_struct_assembly_gen")
	props := w.d.Category("pdbx_struct_assembly_prop")
	w.line("REMARK 350")
	w.line("REMARK 350 COORDINATES FOR A COMPLETE MULTIMER REPRESENTING THE KNOWN")
	w.line("REMARK 350 BIOLOGICALLY SIGNIFICANT OLIGOMERIZATION STATE OF THE")
	w.line("REMARK 350 MOLECULE CAN BE GENERATED BY APPLYING BIOMT TRANSFORMATIONS")
	w.line("REMARK 350 GIVEN BELOW.  BOTH NON-CRYSTALLOGRAPHIC AND")
	w.line("REMARK 350 CRYSTALLOGRAPHIC OPERATIONS ARE GIVEN.")
	for i := range asm.Rows {
		id := asm.Value(i, "id")
		w.line("REMARK 350")
		w.linef("REMARK 350 BIOMOLECULE: %s", id)
		details := w.get("pdbx_struct_assembly", i, "details")
		olig := strings.ToUpper(w.get("pdbx_struct_assembly", i, "oligomeric_details"))
		if olig != "" {
			if strings.HasPrefix(details, "author") {
				w.linef("REMARK 350 AUTHOR DETERMINED BIOLOGICAL UNIT: %s", olig)
			}
			if strings.Contains(details, "software") {
				w.linef("REMARK 350 SOFTWARE DETERMINED QUATERNARY STRUCTURE: %s", olig)
			}
		}
		if sw := w.get("pdbx_struct_assembly", i, "method_details"); sw != "" {
			w.linef("REMARK 350 SOFTWARE USED: %s", sw)
		}
		if props != nil {
			for j := range props.Rows {
				if props.Value(j, "biol_id") != id {
					continue
				}
				v := props.Value(j, "value")
				switch props.Value(j, "type") {
				case "ABSA (A^2)":
					w.linef("REMARK 350 TOTAL BURIED SURFACE AREA: %s ANGSTROM**2", v)
				case "SSA (A^2)":
					w.linef("REMARK 350 SURFACE AREA OF THE COMPLEX: %s ANGSTROM**2", v)
				case "MORE":
					w.linef("REMARK 350 CHANGE IN SOLVENT FREE ENERGY: %s KCAL/MOL", v)
				}
			}
		}
		if gen == nil {
			continue
		}
		for j := range gen.Rows {
			if gen.Value(j, "assembly_id") != id {
				continue
			}
			var cs []string
			for _, a := range strings.Split(gen.Value(j, "asym_id_list"), ",") {
				if c, ok := chains[strings.TrimSpace(a)]; ok && !dict.IsSentinel(c) {
					cs = appendNew(cs, c)
				}
			}
			w.applyTo(cs)
			tuples, err := dict.ExpandOperators(gen.Value(j, "oper_expression"))
			if err != nil {
				return err
			}
			for n, t := range tuples {
				op, err := dict.Compose(ops, t)
				if err != nil {
					return err
				}
				for row := 0; row < 3; row++ {
					w.linef("REMARK 350   BIOMT%d %3d%10.6f%10.6f%10.6f%15.5f", row+1, n+1,
						op[row*4], op[row*4+1], op[row*4+2], op[row*4+3])
				}
			}
		}
	}
	return nil
}

//applyTo writes the chain list of a BIOMT group, continuing it on AND
//CHAINS lines when it is long.
func (w *writer) applyTo(chains []string) {
	lines := wrap(strings.Join(chains, ", "), 38)
	if len(lines) == 0 {
		lines = []string{""}
	}
	for i, l := range lines {
		if i < len(lines)-1 {
			l = strings.TrimSuffix(l, ",") + ","
		}
		if i == 0 {
			w.linef("REMARK 350 APPLY THE FOLLOWING TO CHAINS: %s", l)
			continue
		}
		w.linef("REMARK 350                    AND CHAINS: %s", l)
	}
}

func (w *writer) unobserved() {
	c := w.d.Category("pdbx_unobs_or_zero_occ_residues")
	if c == nil {
		return
	}
	w.line("REMARK 465")
	w.line("REMARK 465 MISSING RESIDUES")
	w.line("REMARK 465 THE FOLLOWING RESIDUES WERE NOT LOCATED IN THE")
	w.line("REMARK 465 EXPERIMENT. (M=MODEL NUMBER; RES=RESIDUE NAME; C=CHAIN")
	w.line("REMARK 465 IDENTIFIER; SSSEQ=SEQUENCE NUMBER; I=INSERTION CODE.)")
	w.line("REMARK 465")
	w.line("REMARK 465   M RES C SSSEQI")
	for i := range c.Rows {
		model := w.get(c.Name, i, "PDB_model_num")
		if model == "1" {
			model = ""
		}
		w.linef("REMARK 465 %3s %3s %1s %5s%1s", model, w.get(c.Name, i, "auth_comp_id"),
			w.get(c.Name, i, "auth_asym_id"), w.get(c.Name, i, "auth_seq_id"), w.get(c.Name, i, "PDB_ins_code"))
	}
}

func (w *writer) crystal() error {
	if !w.d.Has("cell") {
		return nil
	}
	vals := make([]float64, 6)
	for i, f := range []string{"length_a", "length_b", "length_c", "angle_alpha", "angle_beta", "angle_gamma"} {
		v, ok, err := w.d.Float("cell", 0, f)
		if err != nil {
			return err
		}
		if !ok {
			v = 0
			if i > 2 {
				v = 90
			}
		}
		vals[i] = v
	}
	z := w.get("cell", 0, "Z_pdb")
	w.linef("CRYST1%9.3f%9.3f%9.3f%7.2f%7.2f%7.2f %-11.11s%4s", vals[0], vals[1], vals[2], vals[3], vals[4], vals[5],
		w.get("symmetry", 0, "space_group_name_H-M"), z)
	return nil
}

func (w *writer) seqres() error {
	seqs := w.d.Category("entity_poly_seq")
	polys := w.d.Category("entity_poly")
	if seqs == nil || polys == nil {
		return nil
	}
	byEntity := make(map[string][]string)
	for i := range seqs.Rows {
		e := seqs.Value(i, "entity_id")
		byEntity[e] = append(byEntity[e], seqs.Value(i, "mon_id"))
	}
	for i := range polys.Rows {
		names := byEntity[polys.Value(i, "entity_id")]
		for _, chain := range strings.Split(w.get(polys.Name, i, "pdbx_strand_id"), ",") {
			chain = strings.TrimSpace(chain)
			for n := 0; n*13 < len(names); n++ {
				end := (n + 1) * 13
				if end > len(names) {
					end = len(names)
				}
				res := make([]string, 0, 13)
				for _, r := range names[n*13 : end] {
					res = append(res, fmt.Sprintf("%3s", r))
				}
				w.linef("SEQRES %3d %1s %4d  %s", n+1, chain, len(names), strings.Join(res, " "))
			}
		}
	}
	return nil
}

//serial returns the trailing number of an id such as HELX_P12, or n.
func serial(id string, n int) int {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if v, err := strconv.Atoi(id[i:]); err == nil {
		return v
	}
	return n
}

func (w *writer) secondary() error {
	if c := w.d.Category("struct_conf"); c != nil {
		for i := range c.Rows {
			g := func(f string) string { return w.get(c.Name, i, f) }
			if !strings.HasPrefix(c.Value(i, "conf_type_id"), "HELX") {
				continue
			}
			hid := g("pdbx_PDB_helix_id")
			if hid == "" {
				hid = strconv.Itoa(i + 1)
			}
			w.linef("HELIX  %3d %3.3s %3s %1s %4s%1s %3s %1s %4s%1s%2s%-30.30s %5s",
				serial(g("id"), i+1), hid,
				g("beg_auth_comp_id"), g("beg_auth_asym_id"), g("beg_auth_seq_id"), g("pdbx_beg_PDB_ins_code"),
				g("end_auth_comp_id"), g("end_auth_asym_id"), g("end_auth_seq_id"), g("pdbx_end_PDB_ins_code"),
				g("pdbx_PDB_helix_class"), g("details"), g("pdbx_PDB_helix_length"))
		}
	}
	c := w.d.Category("struct_sheet_range")
	if c == nil {
		return nil
	}
	strands := make(map[string]int)
	for i := range c.Rows {
		strands[c.Value(i, "sheet_id")]++
	}
	senses := make(map[string]string)
	if o := w.d.Category("struct_sheet_order"); o != nil {
		for i := range o.Rows {
			s := "1"
			if o.Value(i, "sense") == "anti-parallel" {
				s = "-1"
			}
			senses[o.Value(i, "sheet_id")+" "+o.Value(i, "range_id_2")] = s
		}
	}
	for i := range c.Rows {
		g := func(f string) string { return w.get(c.Name, i, f) }
		sheet := c.Value(i, "sheet_id")
		sense := senses[sheet+" "+c.Value(i, "id")]
		if sense == "" {
			sense = "0"
		}
		w.linef("SHEET  %3s %3.3s%2d %3s %1s%4s%1s %3s %1s%4s%1s%2s",
			g("id"), sheet, strands[sheet],
			g("beg_auth_comp_id"), g("beg_auth_asym_id"), g("beg_auth_seq_id"), g("pdbx_beg_PDB_ins_code"),
			g("end_auth_comp_id"), g("end_auth_asym_id"), g("end_auth_seq_id"), g("pdbx_end_PDB_ins_code"), sense)
	}
	return nil
}

//atomName places an atom name in its 4 columns: names of one-letter
//elements start in the second column.
func atomName(name, element string) string {
	if len(name) >= 4 || len(element) == 2 {
		return fmt.Sprintf("%-4.4s", name)
	}
	return fmt.Sprintf(" %-3s", name)
}

func encodeCharge(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil || n == 0 {
		return ""
	}
	if n < 0 {
		return strconv.Itoa(-n) + "-"
	}
	return strconv.Itoa(n) + "+"
}

func number(s string, format string) string {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return strings.Repeat(" ", len(fmt.Sprintf(format, 0.0)))
	}
	return fmt.Sprintf(format, f)
}

//polymerEntities returns the ids of polymer entities.
func (w *writer) polymerEntities() map[string]bool {
	ret := make(map[string]bool)
	if c := w.d.Category("entity"); c != nil {
		for i := range c.Rows {
			if c.Value(i, "type") == "polymer" {
				ret[c.Value(i, "id")] = true
			}
		}
	}
	return ret
}

func (w *writer) coordinates() error {
	c := w.d.Category("atom_site")
	if c == nil {
		return nil
	}
	var models []string
	rowsOf := make(map[string][]int)
	for i := range c.Rows {
		m := c.Value(i, "pdbx_PDB_model_num")
		if _, ok := rowsOf[m]; !ok {
			models = append(models, m)
		}
		rowsOf[m] = append(rowsOf[m], i)
	}
	aniso := make(map[string]int)
	if a := w.d.Category("atom_site_anisotrop"); a != nil {
		for i := range a.Rows {
			aniso[a.Value(i, "id")] = i
		}
	}
	polymers := w.polymerEntities()
	for mi, m := range models {
		if len(models) > 1 {
			n, err := strconv.Atoi(m)
			if err != nil {
				n = mi + 1
			}
			w.linef("MODEL     %4d", n)
		}
		prev := -1
		prevPolymer := false
		for _, i := range rowsOf[m] {
			g := func(f string) string { return w.get("atom_site", i, f) }
			polymer := polymers[g("label_entity_id")] || (len(polymers) == 0 && g("label_seq_id") != "")
			if prev >= 0 && prevPolymer && (!polymer || g("label_asym_id") != w.get("atom_site", prev, "label_asym_id")) {
				w.ter(prev)
			}
			prev, prevPolymer = i, polymer
			w.atom(i)
			if a, ok := aniso[g("id")]; ok && mi == 0 {
				w.anisou(i, a)
			}
		}
		if prev >= 0 && prevPolymer {
			w.ter(prev)
		}
		if len(models) > 1 {
			w.line("ENDMDL")
		}
	}
	return nil
}

//atomCols formats columns 7 to 27 of an atom record.
func (w *writer) atomCols(i int) string {
	g := func(f string) string { return w.get("atom_site", i, f) }
	name := g("auth_atom_id")
	if name == "" {
		name = g("label_atom_id")
	}
	res := g("auth_comp_id")
	if res == "" {
		res = g("label_comp_id")
	}
	seq := g("auth_seq_id")
	if seq == "" {
		seq = g("label_seq_id")
	}
	id := g("id")
	if len(id) > 5 {
		id = id[len(id)-5:]
	}
	return fmt.Sprintf("%5s %s%1s%3s %1.1s%4s%1s", id, atomName(name, g("type_symbol")), g("label_alt_id"),
		res, g("auth_asym_id"), seq, g("pdbx_PDB_ins_code"))
}

func (w *writer) atom(i int) {
	g := func(f string) string { return w.get("atom_site", i, f) }
	rec := g("group_PDB")
	if rec == "" {
		rec = "ATOM"
	}
	w.linef("%-6s%s   %s%s%s%s%s          %2s%2s", rec, w.atomCols(i),
		number(g("Cartn_x"), "%8.3f"), number(g("Cartn_y"), "%8.3f"), number(g("Cartn_z"), "%8.3f"),
		number(g("occupancy"), "%6.2f"), number(g("B_iso_or_equiv"), "%6.2f"),
		strings.ToUpper(g("type_symbol")), encodeCharge(g("pdbx_formal_charge")))
}

func (w *writer) anisou(i, a int) {
	g := func(f string) string { return w.get("atom_site", i, f) }
	u := make([]string, 6)
	for n, f := range []string{"U[1][1]", "U[2][2]", "U[3][3]", "U[1][2]", "U[1][3]", "U[2][3]"} {
		v, err := strconv.ParseFloat(w.get("atom_site_anisotrop", a, f), 64)
		if err != nil {
			u[n] = strings.Repeat(" ", 7)
			continue
		}
		u[n] = fmt.Sprintf("%7d", int(math.Round(v*10000)))
	}
	w.linef("ANISOU%s %s      %2s%2s", w.atomCols(i), strings.Join(u, ""),
		strings.ToUpper(g("type_symbol")), encodeCharge(g("pdbx_formal_charge")))
}

func (w *writer) ter(i int) {
	g := func(f string) string { return w.get("atom_site", i, f) }
	id := ""
	if n, err := strconv.Atoi(g("id")); err == nil {
		id = strconv.Itoa((n + 1) % 100000)
	}
	res := g("auth_comp_id")
	if res == "" {
		res = g("label_comp_id")
	}
	w.linef("TER   %5s      %3s %1.1s%4s%1s", id, res, g("auth_asym_id"), g("auth_seq_id"), g("pdbx_PDB_ins_code"))
}

func connKey(chain, seq, icode, atom string) string {
	return chain + " " + seq + icode + " " + atom
}

//atomIndex finds the atoms of the first model by chain, residue number,
//insertion code and name.
func (w *writer) atomIndex() map[string]indexedAtom {
	if w.index != nil {
		return w.index
	}
	w.index = make(map[string]indexedAtom)
	c := w.d.Category("atom_site")
	if c == nil || c.Len() == 0 {
		return w.index
	}
	first := c.Value(0, "pdbx_PDB_model_num")
	for i := range c.Rows {
		if c.Value(i, "pdbx_PDB_model_num") != first {
			break
		}
		n, err := strconv.Atoi(c.Value(i, "id"))
		if err != nil {
			continue
		}
		g := func(f string) string { return w.get("atom_site", i, f) }
		k := connKey(g("auth_asym_id"), g("auth_seq_id"), g("pdbx_PDB_ins_code"), g("auth_atom_id"))
		if _, ok := w.index[k]; !ok {
			w.index[k] = indexedAtom{serial: n, element: g("type_symbol")}
		}
	}
	return w.index
}

//partners returns the atom keys of the two partners of a struct_conn row.
func (w *writer) partners(i int) (string, string) {
	g := func(f string) string { return w.get("struct_conn", i, f) }
	return connKey(g("ptnr1_auth_asym_id"), g("ptnr1_auth_seq_id"), g("pdbx_ptnr1_PDB_ins_code"), g("ptnr1_label_atom_id")),
		connKey(g("ptnr2_auth_asym_id"), g("ptnr2_auth_seq_id"), g("pdbx_ptnr2_PDB_ins_code"), g("ptnr2_label_atom_id"))
}

//links writes SSBOND records for disulfide bridges and LINK records for
//the other connections.
func (w *writer) links() error {
	conn := w.d.Category("struct_conn")
	if conn == nil {
		return nil
	}
	index := w.atomIndex()
	ss := 0
	for i := range conn.Rows {
		g := func(f string) string { return w.get("struct_conn", i, f) }
		if g("conn_type_id") != "disulf" {
			continue
		}
		ss++
		w.linef("SSBOND %3d %3s %1.1s %4s%1s   %3s %1.1s %4s%1s%23s%6s %6s %5s", ss,
			g("ptnr1_label_comp_id"), g("ptnr1_auth_asym_id"), g("ptnr1_auth_seq_id"), g("pdbx_ptnr1_PDB_ins_code"),
			g("ptnr2_label_comp_id"), g("ptnr2_auth_asym_id"), g("ptnr2_auth_seq_id"), g("pdbx_ptnr2_PDB_ins_code"),
			"", pdbSymmetry(g("ptnr1_symmetry")), pdbSymmetry(g("ptnr2_symmetry")), g("pdbx_dist_value"))
	}
	for i := range conn.Rows {
		g := func(f string) string { return w.get("struct_conn", i, f) }
		typ := g("conn_type_id")
		if typ == "disulf" || typ == "hydrog" {
			continue
		}
		a, b := w.partners(i)
		w.linef("LINK        %s%1.1s%3s %1.1s%4s%1s%15s%s%1.1s%3s %1.1s%4s%1s  %6s %6s %5s",
			atomName(g("ptnr1_label_atom_id"), index[a].element), g("pdbx_ptnr1_label_alt_id"), g("ptnr1_label_comp_id"),
			g("ptnr1_auth_asym_id"), g("ptnr1_auth_seq_id"), g("pdbx_ptnr1_PDB_ins_code"), "",
			atomName(g("ptnr2_label_atom_id"), index[b].element), g("pdbx_ptnr2_label_alt_id"), g("ptnr2_label_comp_id"),
			g("ptnr2_auth_asym_id"), g("ptnr2_auth_seq_id"), g("pdbx_ptnr2_PDB_ins_code"),
			pdbSymmetry(g("ptnr1_symmetry")), pdbSymmetry(g("ptnr2_symmetry")), g("pdbx_dist_value"))
	}
	return nil
}

//conect writes a CONECT record for every atom in struct_conn, using the
//atoms of the first model.
func (w *writer) conect() error {
	conn := w.d.Category("struct_conn")
	if conn == nil {
		return nil
	}
	index := w.atomIndex()
	bonds := make(map[int][]int)
	for i := range conn.Rows {
		ka, kb := w.partners(i)
		a, b := index[ka].serial, index[kb].serial
		if a == 0 || b == 0 || a == b {
			continue
		}
		bonds[a] = append(bonds[a], b)
		bonds[b] = append(bonds[b], a)
	}
	atoms := make([]int, 0, len(bonds))
	for a := range bonds {
		atoms = append(atoms, a)
	}
	sort.Ints(atoms)
	for _, a := range atoms {
		partners := bonds[a]
		sort.Ints(partners)
		for len(partners) > 0 {
			n := len(partners)
			if n > 4 {
				n = 4
			}
			var b strings.Builder
			fmt.Fprintf(&b, "CONECT%5d", a)
			for _, p := range partners[:n] {
				fmt.Fprintf(&b, "%5d", p)
			}
			w.line(b.String())
			partners = partners[n:]
		}
	}
	return nil
}

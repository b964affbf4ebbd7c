/*
 * pdb_test.go, part of gomol.
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
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/molerr"
)

func readSmall(Te *testing.T) *dict.DataDict {
	b, err := os.ReadFile("testdata/small.pdb")
	if err != nil {
		Te.Fatal(err)
	}
	d, err := Read(b)
	if err != nil {
		Te.Fatal(err)
	}
	return d
}

func TestSplit(Te *testing.T) {
	in := "TITLE     FIRST PART\r\nTITLE    2 SECOND   PART\r\nREMARK   2 RESOLUTION. 2.0\nMODEL        1\nATOM      1  N   GLY A   1       0.000   0.000   0.000\nENDMDL\nMODEL        2\nATOM      1  N   GLY A   1       1.000   0.000   0.000\nENDMDL\n"
	r, err := Split([]byte(in))
	if err != nil {
		Te.Fatal(err)
	}
	if t := r.Text("TITLE", 11); t != "FIRST PART SECOND   PART" {
		Te.Errorf("title %q", t)
	}
	if len(r.Remark(2)) != 1 {
		Te.Errorf("remark 2 has %d lines", len(r.Remark(2)))
	}
	if len(r.Models) != 2 || r.Models[1].Number != 2 || len(r.Models[1].Lines) != 1 {
		Te.Fatalf("models not split: %+v", r.Models)
	}
	if len(r.Models[0].Lines[0].Text) != 80 {
		Te.Errorf("line not padded")
	}
	if _, err := Split([]byte("TITLE     caf\xc3\xa9\n")); !errors.Is(err, molerr.ErrInvalidInput) {
		Te.Errorf("non-ASCII input gave %v", err)
	}
}

func TestResidueCols(Te *testing.T) {
	l := Line{Text: "HELIX    1   1 VAL A    1A LYS A   12B 1                                    12"}
	for _, c := range []struct {
		cols        residueCols
		name, chain string
		seq         int
		icode       string
	}{{helixBeg, "VAL", "A", 1, "A"}, {helixEnd, "LYS", "A", 12, "B"}} {
		name, chain, seq, icode, err := c.cols.read(l)
		if err != nil || name != c.name || chain != c.chain || seq != c.seq || icode != c.icode {
			Te.Errorf("read %s %s %d %q %v", name, chain, seq, icode, err)
		}
	}
	bad := Line{Text: "HELIX    1   1 VAL A    xA LYS A   12B 1"}
	if _, _, _, _, err := helixBeg.read(bad); !errors.Is(err, molerr.ErrInvalidInput) {
		Te.Errorf("bad residue number gave %v", err)
	}
}

func TestAsymID(Te *testing.T) {
	cases := map[int]string{0: "A", 25: "Z", 26: "AA", 27: "BA", 51: "ZA", 52: "AB", 701: "ZZ", 702: "AAA"}
	for n, want := range cases {
		if got := AsymID(n); got != want {
			Te.Errorf("AsymID(%d) = %s, want %s", n, got, want)
		}
	}
}

func TestRead(Te *testing.T) {
	d := readSmall(Te)
	if d.Name != "1ABC" {
		Te.Errorf("name %q", d.Name)
	}
	single := [][3]string{
		{"struct", "title", "A SMALL TEST STRUCTURE WITH TWO LINES"},
		{"struct", "pdbx_descriptor", "TEST PROTEIN"},
		{"struct_keywords", "pdbx_keywords", "HYDROLASE"},
		{"struct_keywords", "text", "TEST, HYDROLASE"},
		{"pdbx_database_status", "recvd_initial_deposition_date", "2002-05-06"},
		{"exptl", "method", "X-RAY DIFFRACTION"},
		{"refine", "ls_d_res_high", "1.90"},
		{"refine", "ls_R_factor_R_work", "0.193"},
		{"refine", "ls_R_factor_R_free", "0.229"},
		{"cell", "length_a", "57.570"},
		{"cell", "angle_gamma", "120.00"},
		{"cell", "Z_pdb", "12"},
		{"symmetry", "space_group_name_H-M", "P 31 2 1"},
		{"entity_src_gen", "pdbx_gene_src_scientific_name", "HOMO SAPIENS"},
		{"entity_src_gen", "pdbx_host_org_scientific_name", "ESCHERICHIA COLI"},
		{"struct_conn", "conn_type_id", "metalc"},
		{"pdbx_unobs_or_zero_occ_residues", "auth_comp_id", "MET"},
	}
	for _, c := range single {
		if v := d.Get(c[0], 0, c[1]); v != c[2] {
			Te.Errorf("%s.%s is %q, want %q", c[0], c[1], v, c[2])
		}
	}
	if d.Get("audit_author", 1, "name") != "B.JONES" {
		Te.Errorf("authors %v", d.Category("audit_author").Rows)
	}
	at := d.Category("atom_site")
	if at.Len() != 9 {
		Te.Fatalf("%d atoms", at.Len())
	}
	asyms := strings.Join(at.Column("label_asym_id"), "")
	if asyms != "AAAABBCDE" {
		Te.Errorf("label asym ids %s", asyms)
	}
	if s := strings.Join(at.Column("label_seq_id"), " "); s != "2 2 3 3 2 3 . . ." {
		Te.Errorf("label seq ids %s", s)
	}
	if s := strings.Join(at.Column("label_entity_id"), ""); s != "111111233" {
		Te.Errorf("entities %s", s)
	}
	if at.Value(6, "pdbx_formal_charge") != "2" || at.Value(6, "type_symbol") != "ZN" {
		Te.Errorf("zinc %v", at.Rows[6])
	}
	if at.Value(5, "occupancy") != "0.50" || at.Value(0, "label_alt_id") != "." || at.Value(0, "pdbx_PDB_ins_code") != "?" {
		Te.Errorf("atom fields %v %v", at.Rows[0], at.Rows[5])
	}
	ent := d.Category("entity")
	if ent.Len() != 3 || ent.Value(0, "pdbx_description") != "TEST PROTEIN" || ent.Value(1, "pdbx_description") != "ZINC ION" ||
		ent.Value(2, "type") != "water" || ent.Value(0, "pdbx_number_of_molecules") != "2" {
		Te.Errorf("entities %v", ent.Rows)
	}
	if v := d.Get("entity_poly", 0, "pdbx_seq_one_letter_code"); v != "MVK" {
		Te.Errorf("sequence %q", v)
	}
	if v := d.Get("entity_poly", 0, "pdbx_strand_id"); v != "A,B" {
		Te.Errorf("strands %q", v)
	}
	if v := d.Get("atom_site_anisotrop", 0, "U[1][1]"); v != "0.2406" {
		Te.Errorf("anisotropy %q", v)
	}
	if v := d.Get("atom_site_anisotrop", 0, "U[2][3]"); v != "-0.0328" {
		Te.Errorf("anisotropy %q", v)
	}
	if v := d.Get("struct_conf", 0, "beg_label_seq_id"); v != "2" {
		Te.Errorf("helix start %q", v)
	}
	if d.Category("struct_sheet_range").Len() != 2 || d.Get("struct_sheet_order", 0, "sense") != "anti-parallel" {
		Te.Errorf("sheet not read")
	}
	gen := d.Category("pdbx_struct_assembly_gen")
	if gen.Len() != 2 || gen.Value(0, "asym_id_list") != "A,B,C,D,E" || gen.Value(1, "oper_expression") != "1,2" ||
		gen.Value(1, "asym_id_list") != "A,C,D" {
		Te.Errorf("assembly gen %v", gen.Rows)
	}
	if n := d.Category("pdbx_struct_oper_list").Len(); n != 2 {
		Te.Errorf("%d operators, identity should be shared", n)
	}
	if v := d.Get("pdbx_struct_assembly", 1, "details"); v != "software_defined_assembly" {
		Te.Errorf("assembly details %q", v)
	}
	if v := d.Get("pdbx_struct_assembly_prop", 0, "value"); v != "3720" {
		Te.Errorf("buried area %q", v)
	}
	cc := d.Category("chem_comp")
	if strings.Join(cc.Column("id"), " ") != "HOH LYS VAL ZN" || cc.Value(3, "formula") != "ZN 2+" || cc.Value(0, "formula") != "H2 O" {
		Te.Errorf("chem_comp %v", cc.Rows)
	}
}

//A PDB file written from a DataDict reads back to the same content, and
//writing that again gives the same bytes.
func TestWriteRoundTrip(Te *testing.T) {
	d := readSmall(Te)
	out, err := Write(d)
	if err != nil {
		Te.Fatal(err)
	}
	for i, l := range strings.Split(strings.TrimSuffix(string(out), "\n"), "\n") {
		if len(l) != 80 {
			Te.Fatalf("line %d has %d columns: %q", i+1, len(l), l)
		}
	}
	d2, err := Read(out)
	if err != nil {
		Te.Fatalf("%v\n%s", err, out)
	}
	if err := dict.Equivalent(d, d2, 1e-6); err != nil {
		Te.Errorf("%v\n%s", err, out)
	}
	out2, err := Write(d2)
	if err != nil {
		Te.Fatal(err)
	}
	if !bytes.Equal(out, out2) {
		Te.Errorf("second write differs:\n%s\n%s", out, out2)
	}
}

func TestWriteColumns(Te *testing.T) {
	d := readSmall(Te)
	out, err := Write(d)
	if err != nil {
		Te.Fatal(err)
	}
	want := []string{
		"HEADER    HYDROLASE                               06-MAY-02   1ABC",
		"ATOM      1  N   VAL A   1       3.696  33.898  63.219  1.00 21.50           N",
		"ANISOU    1  N   VAL A   1     2406   1892   1614    198    519   -328       N",
		"HETATM    9 ZN    ZN A 101       2.000  34.000  64.000  1.00 30.00          ZN2+",
		"TER       5      LYS A   2",
		"CRYST1   57.570   57.570  146.520  90.00  90.00 120.00 P 31 2 1     12",
		"SEQRES   1 B    3  MET VAL LYS",
		"CONECT    1    9",
	}
	lines := make(map[string]bool)
	for _, l := range strings.Split(string(out), "\n") {
		lines[strings.TrimRight(l, " ")] = true
	}
	for _, w := range want {
		if !lines[w] {
			Te.Errorf("missing line %q in\n%s", w, out)
		}
	}
}

func TestBadNumbers(Te *testing.T) {
	in := "ATOM      1  N   GLY A   1       0.000   x.000   0.000  1.00  0.00           N\n"
	_, err := Read([]byte(in))
	var e *molerr.Error
	if !errors.As(err, &e) || e.Kind != molerr.InvalidInput || e.Offset != 38 {
		Te.Errorf("bad coordinate reported as %v", err)
	}
}

func TestLinkSymmetry(Te *testing.T) {
	for in, want := range map[string]string{"": "1_555", "1555": "1_555", "6655": "6_655", "12555": "12_555", "1_555": "1_555", "X": "X"} {
		if got := cifSymmetry(in); got != want {
			Te.Errorf("symmetry %q read as %q, want %q", in, got, want)
		}
	}
	d := readSmall(Te)
	if s1, s2 := d.Get("struct_conn", 0, "ptnr1_symmetry"), d.Get("struct_conn", 0, "ptnr2_symmetry"); s1 != "1_555" || s2 != "1_555" {
		Te.Errorf("link symmetry %q %q", s1, s2)
	}
	d.Category("struct_conn").Row(0).Set("ptnr2_symmetry", "6_655")
	out, err := Write(d)
	if err != nil {
		Te.Fatal(err)
	}
	if !strings.Contains(string(out), "  1555   6655  2.10") {
		Te.Errorf("symmetry not written back:\n%s", out)
	}
	d2, err := Read(out)
	if err != nil {
		Te.Fatal(err)
	}
	if s := d2.Get("struct_conn", 0, "ptnr2_symmetry"); s != "6_655" {
		Te.Errorf("symmetry read back as %q", s)
	}
}

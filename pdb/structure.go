/*
 * structure.go, part of gomol.
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
	"strconv"
	"strings"

	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/residue"
)

//residueCols are the first and last columns of the residue name, chain,
//number and insertion code in a record, in that order.
type residueCols [4][2]int

const (
	colName = iota
	colChain
	colSeq
	colIcode
)

func (c residueCols) col(l Line, i int) string { return l.Col(c[i][0], c[i][1]) }

func (c residueCols) read(l Line) (name, chain string, seq int, icode string, err error) {
	seq, _, err = l.Int(c[colSeq][0], c[colSeq][1])
	return c.col(l, colName), c.col(l, colChain), seq, c.col(l, colIcode), err
}

var (
	helixBeg = residueCols{{16, 18}, {20, 20}, {22, 25}, {26, 26}}
	helixEnd = residueCols{{28, 30}, {32, 32}, {34, 37}, {38, 38}}
	sheetBeg = residueCols{{18, 20}, {22, 22}, {23, 26}, {27, 27}}
	sheetEnd = residueCols{{29, 31}, {33, 33}, {34, 37}, {38, 38}}
)

//secondary reads HELIX and SHEET records.
func (r *reader) secondary() error {
	for _, l := range r.recs.Get("HELIX") {
		bn, bc, bs, bi, err := helixBeg.read(l)
		if err != nil {
			return err
		}
		en, ec, es, ei, err := helixEnd.read(l)
		if err != nil {
			return err
		}
		ba, bl := r.first.locate(bc, bs, bi)
		ea, el := r.first.locate(ec, es, ei)
		r.cat("struct_conf").Append("conf_type_id", "HELX_P", "id", "HELX_P"+l.Col(8, 10),
			"pdbx_PDB_helix_id", l.Col(12, 14),
			"beg_label_comp_id", bn, "beg_label_asym_id", ba, "beg_label_seq_id", bl, "pdbx_beg_PDB_ins_code", bi,
			"end_label_comp_id", en, "end_label_asym_id", ea, "end_label_seq_id", el, "pdbx_end_PDB_ins_code", ei,
			"beg_auth_comp_id", bn, "beg_auth_asym_id", bc, "beg_auth_seq_id", strconv.Itoa(bs),
			"end_auth_comp_id", en, "end_auth_asym_id", ec, "end_auth_seq_id", strconv.Itoa(es),
			"pdbx_PDB_helix_class", l.Col(39, 40), "details", l.Col(41, 70), "pdbx_PDB_helix_length", l.Col(72, 76))
	}
	sheets := make(map[string]dict.Row)
	for _, l := range r.recs.Get("SHEET") {
		bn, bc, bs, bi, err := sheetBeg.read(l)
		if err != nil {
			return err
		}
		en, ec, es, ei, err := sheetEnd.read(l)
		if err != nil {
			return err
		}
		sheet, strand := l.Col(12, 14), l.Col(8, 10)
		if _, ok := sheets[sheet]; !ok {
			sheets[sheet] = r.cat("struct_sheet").Append("id", sheet, "number_strands", l.Col(15, 16))
		}
		ba, bl := r.first.locate(bc, bs, bi)
		ea, el := r.first.locate(ec, es, ei)
		r.cat("struct_sheet_range").Append("sheet_id", sheet, "id", strand,
			"beg_label_comp_id", bn, "beg_label_asym_id", ba, "beg_label_seq_id", bl, "pdbx_beg_PDB_ins_code", bi,
			"end_label_comp_id", en, "end_label_asym_id", ea, "end_label_seq_id", el, "pdbx_end_PDB_ins_code", ei,
			"beg_auth_comp_id", bn, "beg_auth_asym_id", bc, "beg_auth_seq_id", strconv.Itoa(bs),
			"end_auth_comp_id", en, "end_auth_asym_id", ec, "end_auth_seq_id", strconv.Itoa(es))
		sense := ""
		switch l.Col(39, 40) {
		case "1":
			sense = "parallel"
		case "-1":
			sense = "anti-parallel"
		}
		if n, err := strconv.Atoi(strand); err == nil && n > 1 && sense != "" {
			r.cat("struct_sheet_order").Append("sheet_id", sheet, "range_id_1", strconv.Itoa(n-1),
				"range_id_2", strand, "sense", sense)
		}
	}
	return nil
}

//cifSymmetry turns a symmetry operator as written in LINK and SSBOND records,
//such as "1555", into the mmCIF form "1_555". A blank one is the identity.
func cifSymmetry(sym string) string {
	if sym == "" {
		return "1_555"
	}
	n := len(sym)
	if n < 4 || strings.Contains(sym, "_") {
		return sym
	}
	for i := 0; i < n; i++ {
		if sym[i] < '0' || sym[i] > '9' {
			return sym
		}
	}
	return sym[:n-3] + "_" + sym[n-3:]
}

//pdbSymmetry is the inverse of cifSymmetry.
func pdbSymmetry(sym string) string {
	if dict.IsSentinel(sym) {
		return ""
	}
	return strings.Replace(sym, "_", "", 1)
}

//partner is one end of a bond between residues.
type partner struct {
	atom, alt, res, chain string
	seq                   int
	icode, sym            string
}

//connections reads SSBOND, LINK and the CONECT records that join
//different residues into struct_conn.
func (r *reader) connections() error {
	counts := make(map[string]int)
	seen := make(map[[2]string]bool)
	add := func(typ string, a, b partner, dist string) {
		counts[typ]++
		aa, as := r.first.locate(a.chain, a.seq, a.icode)
		ba, bs := r.first.locate(b.chain, b.seq, b.icode)
		a.sym, b.sym = cifSymmetry(a.sym), cifSymmetry(b.sym)
		r.cat("struct_conn").Append("id", typ+strconv.Itoa(counts[typ]), "conn_type_id", typ,
			"ptnr1_label_asym_id", aa, "ptnr1_label_comp_id", a.res, "ptnr1_label_seq_id", as,
			"ptnr1_label_atom_id", a.atom, "pdbx_ptnr1_label_alt_id", a.alt, "pdbx_ptnr1_PDB_ins_code", a.icode,
			"ptnr1_symmetry", a.sym,
			"ptnr2_label_asym_id", ba, "ptnr2_label_comp_id", b.res, "ptnr2_label_seq_id", bs,
			"ptnr2_label_atom_id", b.atom, "pdbx_ptnr2_label_alt_id", b.alt, "pdbx_ptnr2_PDB_ins_code", b.icode,
			"ptnr1_auth_asym_id", a.chain, "ptnr1_auth_seq_id", strconv.Itoa(a.seq),
			"ptnr2_auth_asym_id", b.chain, "ptnr2_auth_seq_id", strconv.Itoa(b.seq),
			"ptnr2_symmetry", b.sym, "pdbx_dist_value", dist)
		ka := atomKey(a.chain, a.seq, a.icode, a.atom)
		kb := atomKey(b.chain, b.seq, b.icode, b.atom)
		seen[[2]string{ka, kb}] = true
		seen[[2]string{kb, ka}] = true
	}
	for _, l := range r.recs.Get("SSBOND") {
		a := partner{atom: "SG", res: l.Col(12, 14), chain: l.Col(16, 16), icode: l.Col(22, 22), sym: l.Col(60, 65)}
		b := partner{atom: "SG", res: l.Col(26, 28), chain: l.Col(30, 30), icode: l.Col(36, 36), sym: l.Col(67, 72)}
		var err error
		if a.seq, _, err = l.Int(18, 21); err != nil {
			return err
		}
		if b.seq, _, err = l.Int(32, 35); err != nil {
			return err
		}
		add("disulf", a, b, l.Col(74, 78))
	}
	for _, l := range r.recs.Get("LINK") {
		a := partner{atom: l.Col(13, 16), alt: l.Col(17, 17), res: l.Col(18, 20), chain: l.Col(22, 22), icode: l.Col(27, 27), sym: l.Col(60, 65)}
		b := partner{atom: l.Col(43, 46), alt: l.Col(47, 47), res: l.Col(48, 50), chain: l.Col(52, 52), icode: l.Col(57, 57), sym: l.Col(67, 72)}
		var err error
		if a.seq, _, err = l.Int(23, 26); err != nil {
			return err
		}
		if b.seq, _, err = l.Int(53, 56); err != nil {
			return err
		}
		typ := "covale"
		if r.metal(a) || r.metal(b) {
			typ = "metalc"
		}
		add(typ, a, b, l.Col(74, 78))
	}
	bySerial := r.serials
	for _, l := range r.recs.Get("CONECT") {
		from, ok := bySerial[l.Col(7, 11)]
		if !ok {
			continue
		}
		for _, cols := range [][2]int{{12, 16}, {17, 21}, {22, 26}, {27, 31}} {
			to, ok := bySerial[l.Col(cols[0], cols[1])]
			if !ok || to.key() == from.key() {
				continue
			}
			a := partner{atom: from.name, alt: from.alt, res: from.resName, chain: from.chain, seq: from.seq, icode: from.icode}
			b := partner{atom: to.name, alt: to.alt, res: to.resName, chain: to.chain, seq: to.seq, icode: to.icode}
			if seen[[2]string{atomKey(a.chain, a.seq, a.icode, a.atom), atomKey(b.chain, b.seq, b.icode, b.atom)}] {
				continue
			}
			typ := "covale"
			if residue.IsMetal(from.element) || residue.IsMetal(to.element) {
				typ = "metalc"
			}
			add(typ, a, b, "")
		}
	}
	return nil
}

func atomKey(chain string, seq int, icode, name string) string {
	return chain + " " + strconv.Itoa(seq) + icode + " " + name
}

//metal tells whether a bond partner is a metal atom, judging by the atom
//in the first model, or by its name when the atom isn't there.
func (r *reader) metal(p partner) bool {
	if a, ok := r.named[atomKey(p.chain, p.seq, p.icode, p.atom)]; ok {
		return residue.IsMetal(a.element)
	}
	return p.atom == p.res && residue.IsMetal(p.atom)
}

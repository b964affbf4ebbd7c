/*
 * cif_test.go, part of gomol.
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

package cif

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/molerr"
)

const small = `data_1ABC
#
_entry.id   1ABC
#
_struct.entry_id  1ABC
_struct.title     'A structure with a title, it's long'
#
loop_
_atom_site.group_PDB
_atom_site.id
_atom_site.type_symbol
_atom_site.label_atom_id
_atom_site.label_alt_id
_atom_site.label_comp_id
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
ATOM   1 N N   . VAL 3.696 33.898 63.219
ATOM   2 C CA  . VAL 3.198 33.218 61.983 # a comment
HETATM 3 O "O1'" ? HOH
-39.239 51.357 40.064
#
_exptl.entry_id 1ABC
_exptl.method
;X-RAY
DIFFRACTION
;
_exptl.details '''triple 'quoted' "text"'''
`

func TestLexer(Te *testing.T) {
	lx := NewLexer([]byte("data_x _a.b 'it's ok' \"q\" ;no\n;text\nfield\n; loop_ # c\n?"))
	want := []Token{
		{Kind: Data, Text: "x"},
		{Kind: Tag, Text: "a.b"},
		{Kind: Value, Text: "it's ok", Quoted: true},
		{Kind: Value, Text: "q", Quoted: true},
		{Kind: Value, Text: ";no"},
		{Kind: Value, Text: "text\nfield", Quoted: true},
		{Kind: Loop, Text: "loop_"},
		{Kind: Value, Text: "?"},
		{Kind: EOF},
	}
	for i, w := range want {
		tok, err := lx.Next()
		if err != nil {
			Te.Fatal(err)
		}
		if tok.Kind != w.Kind || tok.Text != w.Text || tok.Quoted != w.Quoted {
			Te.Errorf("token %d is %+v, want %+v", i, tok, w)
		}
	}
}

func TestRead(Te *testing.T) {
	d, err := Read([]byte(small))
	if err != nil {
		Te.Fatal(err)
	}
	if d.Name != "1ABC" {
		Te.Errorf("block name %q", d.Name)
	}
	names := d.Names()
	want := []string{"entry", "struct", "atom_site", "exptl"}
	for i := range want {
		if names[i] != want[i] {
			Te.Fatalf("categories %v", names)
		}
	}
	if v := d.Get("struct", 0, "title"); v != "A structure with a title, it's long" {
		Te.Errorf("title %q", v)
	}
	at := d.Category("atom_site")
	if at.Len() != 3 {
		Te.Fatalf("%d atoms", at.Len())
	}
	if at.Value(2, "label_atom_id") != "O1'" || at.Value(2, "Cartn_x") != "-39.239" {
		Te.Errorf("row 2 %v", at.Rows[2])
	}
	//fields missing in the file are added in catalog order
	if at.Fields[0] != "group_PDB" || at.Value(0, "auth_seq_id") != "?" {
		Te.Errorf("atom_site not canonical: %v", at.Fields)
	}
	if v := d.Get("exptl", 0, "method"); v != "X-RAY\nDIFFRACTION" {
		Te.Errorf("text field %q", v)
	}
	if v := d.Get("exptl", 0, "details"); v != `triple 'quoted' "text"` {
		Te.Errorf("triple quoted %q", v)
	}
}

//Writing what was read and reading it back gives the same DataDict, and
//writing that again gives the same bytes.
func TestRoundTrip(Te *testing.T) {
	d, err := Read([]byte(small))
	if err != nil {
		Te.Fatal(err)
	}
	out, err := Write(d)
	if err != nil {
		Te.Fatal(err)
	}
	d2, err := Read(out)
	if err != nil {
		Te.Fatalf("%v\n%s", err, out)
	}
	if dict.Digest(d) != dict.Digest(d2) {
		Te.Errorf("round trip changed the content:\n%s", out)
	}
	out2, _ := Write(d2)
	if !bytes.Equal(out, out2) {
		Te.Errorf("second write differs:\n%s\n%s", out, out2)
	}
}

const quotedSentinels = `data_Q
_a.x '?'
_a.y ?
_a.z "."
_a.w .
loop_
_b.v
'?'
?
.
'.'
`

//Only bare ? and . are sentinels. Quoted, they are text and stay quoted
//when written.
func TestQuotedSentinels(Te *testing.T) {
	d, err := Read([]byte(quotedSentinels))
	if err != nil {
		Te.Fatal(err)
	}
	for _, c := range []struct {
		field, text string
		ok          bool
	}{{"x", "?", true}, {"y", "", false}, {"z", ".", true}, {"w", "", false}} {
		if v, ok := d.Optional("a", 0, c.field); v != c.text || ok != c.ok {
			Te.Errorf("_a.%s read as %q %t", c.field, v, ok)
		}
	}
	if v := d.Get("a", 0, "x"); v != "?" {
		Te.Errorf("quoted ? has text %q", v)
	}
	lits := 0
	for _, v := range d.Category("b").Stored("v") {
		if dict.IsLiteral(v) {
			lits++
		}
	}
	if lits != 2 {
		Te.Errorf("%d literal values in the loop", lits)
	}
	out, err := Write(d)
	if err != nil {
		Te.Fatal(err)
	}
	for _, want := range []string{"_a.x '?'\n", "_a.y ?\n", "_a.z '.'\n", "_a.w .\n"} {
		if !bytes.Contains(out, []byte(want)) {
			Te.Errorf("%q not in\n%s", want, out)
		}
	}
	d2, err := Read(out)
	if err != nil {
		Te.Fatal(err)
	}
	if dict.Digest(d) != dict.Digest(d2) {
		Te.Errorf("literal values changed in the round trip:\n%s", out)
	}
	if _, ok := d2.Optional("b", 3, "v"); !ok {
		Te.Errorf("quoted . lost in the round trip")
	}
}

func TestQuote(Te *testing.T) {
	cases := map[string]string{
		"CA":            "CA",
		"O1'":           "O1'",
		"two words":     "'two words'",
		"rock 'n' roll": "\"rock 'n' roll\"",
		"_under":        "'_under'",
		"data_block":    "'data_block'",
		"?":             "?",
		"a\nb":          ";a\nb\n;",
		"x' y\" z":      ";x' y\" z\n;",
	}
	for in, want := range cases {
		if got := Quote(in); got != want {
			Te.Errorf("Quote(%q) = %q, want %q", in, got, want)
		}
	}
	if got := Quote(dict.Literal("?")); got != "'?'" {
		Te.Errorf("literal ? quoted as %q", got)
	}
}

func TestErrors(Te *testing.T) {
	_, err := Read([]byte("data_x\n_a.b 'open\n"))
	var e *molerr.Error
	if !errors.As(err, &e) || e.Kind != molerr.InvalidInput || e.Offset != 12 {
		Te.Errorf("unbalanced quote reported as %v", err)
	}
	_, err = Read([]byte("data_x\nloop_\n_a.b\n_a.c\n1 2 3\n"))
	if !errors.Is(err, molerr.ErrSchemaViolation) {
		Te.Errorf("ragged loop reported as %v", err)
	}
	_, err = Read([]byte("data_x\n_a.b\n;never closed\n"))
	if !errors.Is(err, molerr.ErrInvalidInput) {
		Te.Errorf("open text field reported as %v", err)
	}
	_, err = Read([]byte("data_x\nsave_frame\n_a.b 1\nsave_\n"))
	if !errors.Is(err, molerr.ErrUnsupported) {
		Te.Errorf("save frame reported as %v", err)
	}
	//only the first block is read
	d, err := Read([]byte("data_one\n_a.b 1\ndata_two\n_c.d 2\n"))
	if err != nil || d.Len() != 1 || d.Name != "one" {
		Te.Errorf("second block not ignored: %v %v", d, err)
	}
	bad := dict.New("x")
	bad.Ensure("a", "b")
	if _, err := Write(bad); !errors.Is(err, molerr.ErrSchemaViolation) {
		Te.Errorf("empty category written: %v", err)
	}
}

/*
 * dict_test.go, part of gomol.
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

package dict

import (
	"errors"
	"testing"

	"github.com/rmera/gomol/molerr"
)

func sample() *DataDict {
	d := New("1ABC")
	e := d.Ensure("entry", "id")
	e.Append("id", "1ABC")
	at := d.Ensure("atom_site")
	at.Append("id", "1", "Cartn_x", "1.50", "type_symbol", "N", "group_PDB", "ATOM")
	at.Append("id", "2", "Cartn_x", "-0.25", "type_symbol", "C", "group_PDB", "ATOM", "my_extra", "x")
	return d
}

func TestAppendRectangular(Te *testing.T) {
	d := sample()
	at := d.Category("atom_site")
	if len(at.Fields) != 5 {
		Te.Fatalf("fields %v", at.Fields)
	}
	for i, r := range at.Rows {
		if len(r) != len(at.Fields) {
			Te.Errorf("row %d has %d values", i, len(r))
		}
	}
	if at.Value(0, "my_extra") != "?" {
		Te.Errorf("added field not filled: %q", at.Value(0, "my_extra"))
	}
	at.Row(1).Set("type_symbol", "")
	if at.Value(1, "type_symbol") != "?" {
		Te.Errorf("empty value stored as %q", at.Value(1, "type_symbol"))
	}
	if err := at.AddRow("1", "2"); !errors.Is(err, molerr.ErrSchemaViolation) {
		Te.Errorf("expected schema violation, got %v", err)
	}
}

func TestCanonicalize(Te *testing.T) {
	d := sample()
	Canonicalize(d)
	at := d.Category("atom_site")
	s, _ := Schema("atom_site")
	for i, f := range s.Fields {
		if at.Fields[i] != f {
			Te.Fatalf("field %d is %s, want %s", i, at.Fields[i], f)
		}
	}
	if at.Fields[len(s.Fields)] != "my_extra" {
		Te.Errorf("extra field not kept last: %v", at.Fields)
	}
	if at.Value(1, "Cartn_x") != "-0.25" || at.Value(0, "label_alt_id") != "?" {
		Te.Errorf("values moved wrongly: %v", at.Rows[0])
	}
	if err := Validate(d); err != nil {
		Te.Error(err)
	}
	if len(Known()) != 46 {
		Te.Errorf("%d known categories", len(Known()))
	}
}

func TestValidate(Te *testing.T) {
	d := sample()
	d.Category("atom_site").Rows[1] = d.Category("atom_site").Rows[1][:2]
	err := Validate(d)
	var e *molerr.Error
	if !errors.As(err, &e) || e.Kind != molerr.SchemaViolation || e.Category != "atom_site" || e.Row != 1 {
		Te.Errorf("unexpected error %v", err)
	}
	d = sample()
	d.Ensure("empty_cat", "a")
	if err := Validate(d); !errors.Is(err, molerr.ErrSchemaViolation) {
		Te.Errorf("empty category passed: %v", err)
	}
	d = sample()
	d.Ensure("bad name", "a").Append("a", "1")
	if err := Validate(d); !errors.Is(err, molerr.ErrSchemaViolation) {
		Te.Errorf("bad name passed: %v", err)
	}
	d = New("x")
	d.Ensure("symmetry").Append("space_group_name_H-M", "P 1 21 1")
	if err := Validate(d); err != nil {
		Te.Errorf("dash in field name rejected: %v", err)
	}
}

func TestAccessors(Te *testing.T) {
	d := sample()
	d.Ensure("pdbx_database_status").Append("recvd_initial_deposition_date", "06-MAY-02")
	i, ok, err := d.Int("atom_site", 1, "id")
	if err != nil || !ok || i != 2 {
		Te.Errorf("Int gave %d %v %v", i, ok, err)
	}
	f, ok, err := d.Float("atom_site", 0, "Cartn_x")
	if err != nil || !ok || f != 1.5 {
		Te.Errorf("Float gave %f %v %v", f, ok, err)
	}
	_, ok, err = d.Float("atom_site", 0, "my_extra")
	if ok || err != nil {
		Te.Errorf("sentinel decoded: %v %v", ok, err)
	}
	_, _, err = d.Int("atom_site", 0, "type_symbol")
	var e *molerr.Error
	if !errors.As(err, &e) || e.Field != "type_symbol" || e.Row != 0 {
		Te.Errorf("bad integer error %v", err)
	}
	t, ok, err := d.Date("pdbx_database_status", 0, "recvd_initial_deposition_date")
	if err != nil || !ok || FormatDate(t) != "2002-05-06" {
		Te.Errorf("date decoded as %v %v %v", t, ok, err)
	}
	if v, ok := d.Optional("nothing", 0, "x"); ok || v != "" {
		Te.Errorf("absent value %q %v", v, ok)
	}
}

func TestFormatFloat(Te *testing.T) {
	cases := []struct {
		f    float64
		dec  int
		want string
	}{
		{90, -1, "90.0"},
		{1.9, -1, "1.9"},
		{4.5340000001, 3, "4.534"},
		{-0.0001, 3, "0.0"},
		{0.193, -1, "0.193"},
	}
	for _, c := range cases {
		if s := FormatFloat(c.f, c.dec); s != c.want {
			Te.Errorf("FormatFloat(%v, %d) = %s, want %s", c.f, c.dec, s, c.want)
		}
	}
	if s := FormatFixed(1, 10); s != "1.0000000000" {
		Te.Errorf("FormatFixed gave %s", s)
	}
	d := sample()
	CoerceNumbers(d)
	if v := d.Get("atom_site", 0, "Cartn_x"); v != "1.5" {
		Te.Errorf("coerced to %s", v)
	}
	if v := d.Get("entry", 0, "id"); v != "1ABC" {
		Te.Errorf("non-number changed to %s", v)
	}
}

func TestDigestAndEquivalent(Te *testing.T) {
	a, b := sample(), sample()
	if Digest(a) != Digest(b) {
		Te.Error("equal dicts have different digests")
	}
	b.Category("atom_site").Row(0).Set("Cartn_x", "1.5")
	if Digest(a) == Digest(b) {
		Te.Error("different dicts have equal digests")
	}
	if err := Equivalent(a, b, 1e-6); err != nil {
		Te.Errorf("1.50 and 1.5 not equivalent: %v", err)
	}
	b.Category("atom_site").Row(1).Set("my_extra", ".")
	a.Category("atom_site").Row(1).Set("my_extra", "?")
	if err := Equivalent(a, b, 1e-6); err != nil {
		Te.Errorf("sentinels not equivalent: %v", err)
	}
	b.Category("atom_site").Row(1).Set("type_symbol", "O")
	err := Equivalent(a, b, 1e-6)
	var e *molerr.Error
	if !errors.As(err, &e) || e.Row != 1 || e.Field != "type_symbol" {
		Te.Errorf("difference reported as %v", err)
	}
}

func TestLiteral(Te *testing.T) {
	d := New("LIT")
	c := d.Ensure("struct", "title")
	c.Append("title", Literal("?"))
	v := c.Stored("title")[0]
	if !IsLiteral(v) || IsSentinel(v) || Text(v) != "?" {
		Te.Errorf("stored literal %q", v)
	}
	if t, ok := d.Optional("struct", 0, "title"); !ok || t != "?" {
		Te.Errorf("literal read as %q %t", t, ok)
	}
	if c.Value(0, "title") != "?" || c.Row(0).Map()["title"] != "?" {
		Te.Errorf("literal text is not ?")
	}
	if Literal("CA") != "CA" || Literal("") != Unknown || IsLiteral("?") {
		Te.Errorf("Literal changed a plain value")
	}
}

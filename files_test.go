/*
 * files_test.go, part of gomol.
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
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/rmera/gomol/dict"
)

func byID(ats []*Atom) []*Atom {
	ret := append([]*Atom(nil), ats...)
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret
}

//sameAtoms compares the atoms of two models up to tol in the coordinates.
func sameAtoms(Te *testing.T, f Format, a, b *Model, tol float64) {
	Te.Helper()
	x, y := byID(a.Atoms()), byID(b.Atoms())
	if len(x) != len(y) {
		Te.Fatalf("%s: %d atoms, want %d", f, len(y), len(x))
	}
	for i := range x {
		p, q := x[i], y[i]
		if p.ID != q.ID || p.Name != q.Name || p.Element != q.Element || p.Residue().ID != q.Residue().ID {
			Te.Errorf("%s: atom %v became %v", f, p, q)
		}
		if !near(p.X, q.X, tol) || !near(p.Y, q.Y, tol) || !near(p.Z, q.Z, tol) {
			Te.Errorf("%s: atom %d moved from %v to %v", f, p.ID, p.Location(), q.Location())
		}
	}
	if ids(a.Residues()) != ids(b.Residues()) {
		Te.Errorf("%s: residues %s, want %s", f, ids(b.Residues()), ids(a.Residues()))
	}
}

func bondSet(M *Model) string {
	var s []string
	for _, p := range M.PairwiseAtoms() {
		if b := p[0].BondedTo(p[1]); b != nil {
			s = append(s, fmt.Sprintf("%d-%d", p[0].ID, p[1].ID))
		}
	}
	sort.Strings(s)
	return strings.Join(s, " ")
}

func kinds(M *Model) string {
	var s []string
	for _, m := range M.Molecules() {
		s = append(s, m.ID+":"+m.Kind.String())
	}
	return strings.Join(s, " ")
}

func TestSaveAndLoad(Te *testing.T) {
	M := loadSmall(Te)
	for _, f := range []Format{FormatCIF, FormatPDB, FormatBCIF, FormatMMTF} {
		out, err := Save("1ABC", []*Model{M}, DefaultWriteOptions(f))
		if err != nil {
			Te.Fatalf("%s: %v", f, err)
		}
		ms, err := Load(out, DefaultParseOptions(f), nil)
		if err != nil {
			Te.Fatalf("%s: %v", f, err)
		}
		if len(ms) != 1 {
			Te.Fatalf("%s: %d models", f, len(ms))
		}
		N := ms[0]
		sameAtoms(Te, f, M, N, 1e-3)
		if f != FormatCIF {
			continue
		}
		if !M.EquivalentTo(N) {
			Te.Errorf("cif: models not equivalent")
		}
		if kinds(M) != kinds(N) {
			Te.Errorf("cif: molecules %s, want %s", kinds(N), kinds(M))
		}
		if bondSet(M) != bondSet(N) {
			Te.Errorf("cif: bonds %s, want %s", bondSet(N), bondSet(M))
		}
		a, b := M.Polymers()[0], N.Polymers()[0]
		if fmt.Sprint(a.Helices, a.Strands) != fmt.Sprint(b.Helices, b.Strands) || a.Sequence != b.Sequence {
			Te.Errorf("cif: chain A %v %v %s", b.Helices, b.Strands, b.Sequence)
		}
		if fmt.Sprint(M.Missing) != fmt.Sprint(N.Missing) {
			Te.Errorf("cif: missing %v, want %v", N.Missing, M.Missing)
		}
		if len(N.Assemblies) != len(M.Assemblies) {
			Te.Errorf("cif: %d assemblies", len(N.Assemblies))
		}
	}
}

func TestFormats(Te *testing.T) {
	for name, want := range map[string]Format{"cif": FormatCIF, "mmCIF": FormatCIF, "PDB": FormatPDB,
		"bcif": FormatBCIF, "binarycif": FormatBCIF, "mmtf": FormatMMTF} {
		if f, err := ParseFormat(name); err != nil || f != want {
			Te.Errorf("%s gave %v %v", name, f, err)
		}
	}
	if _, err := ParseFormat("xyz"); !errors.Is(err, ErrUnsupported) {
		Te.Errorf("xyz gave %v", err)
	}
	if _, err := Parse([]byte("data_x\n"), nil); !errors.Is(err, ErrInvalidInput) {
		Te.Errorf("no options gave %v", err)
	}
	if _, err := Write(dict.New("x"), nil); !errors.Is(err, ErrInvalidInput) {
		Te.Errorf("no write options gave %v", err)
	}
	if _, err := Parse([]byte("data_x\n"), &ParseOptions{}); !errors.Is(err, ErrUnsupported) {
		Te.Errorf("no format gave %v", err)
	}
}

func TestCompressed(Te *testing.T) {
	raw, err := os.ReadFile("pdb/testdata/small.pdb")
	if err != nil {
		Te.Fatal(err)
	}
	popts := DefaultParseOptions(FormatPDB)
	d, err := Parse(raw, popts)
	if err != nil {
		Te.Fatal(err)
	}
	want := dict.Digest(d)
	mapped, err := ReadFile("pdb/testdata/small.pdb", popts)
	if err != nil {
		Te.Fatal(err)
	}
	if dict.Digest(mapped) != want {
		Te.Errorf("mapped file parsed differently")
	}
	plain, err := Write(d, DefaultWriteOptions(FormatCIF))
	if err != nil {
		Te.Fatal(err)
	}
	copts := DefaultParseOptions(FormatCIF)
	ref, err := Parse(plain, copts)
	if err != nil {
		Te.Fatal(err)
	}
	for _, c := range []string{"gzip", "zstd", "lz4"} {
		wopts := DefaultWriteOptions(FormatCIF)
		wopts.Compress = c
		z, err := Write(d, wopts)
		if err != nil {
			Te.Fatalf("%s: %v", c, err)
		}
		if bytes.Equal(z, plain) {
			Te.Errorf("%s: output not compressed", c)
		}
		got, err := Parse(z, copts)
		if err != nil {
			Te.Fatalf("%s: %v", c, err)
		}
		if dict.Digest(got) != dict.Digest(ref) {
			Te.Errorf("%s: content changed", c)
		}
		got, err = Read(io.NopCloser(bytes.NewReader(z)), copts)
		if err != nil {
			Te.Fatalf("%s: %v", c, err)
		}
		if dict.Digest(got) != dict.Digest(ref) {
			Te.Errorf("%s: content changed when streamed", c)
		}
	}
	wopts := DefaultWriteOptions(FormatCIF)
	wopts.Compress = "rar"
	if _, err := Write(d, wopts); err == nil {
		Te.Errorf("unknown compression accepted")
	}
}

func TestConfig(Te *testing.T) {
	c, err := LoadConfig(strings.NewReader(""))
	if err != nil {
		Te.Fatal(err)
	}
	if c.Parse.Format != FormatCIF || !c.Parse.Decompress || c.Write.Format != FormatCIF || c.Write.FixedPointPrecision != 3 {
		Te.Errorf("defaults %+v %+v", c.Parse, c.Write)
	}
	if !c.Build.SynthesizeBonds || !c.Build.Anisotropy || c.Build.AltLoc != "A" {
		Te.Errorf("build defaults %+v", c.Build)
	}
	conf := `
[parse]
format = "pdb"
decompress = false

[build]
synthesize_bonds = false
alt_loc = "B"

[write]
format = "bcif"
precision = 4
compress = "zstd"
`
	c, err = LoadConfig(strings.NewReader(conf))
	if err != nil {
		Te.Fatal(err)
	}
	if c.Parse.Format != FormatPDB || c.Parse.Decompress {
		Te.Errorf("parse %+v", c.Parse)
	}
	if c.Build.SynthesizeBonds || !c.Build.Anisotropy || c.Build.AltLoc != "B" {
		Te.Errorf("build %+v", c.Build)
	}
	if c.Write.Format != FormatBCIF || c.Write.FixedPointPrecision != 4 || c.Write.Compress != "zstd" {
		Te.Errorf("write %+v", c.Write)
	}
	bad := map[string]error{
		"[write]\nprecision = 20\n": ErrInvalidInput,
		"[parse]\nformat = \"xyz\"\n": ErrUnsupported,
		"[parse\n":                  ErrInvalidInput,
	}
	for s, want := range bad {
		if _, err := LoadConfig(strings.NewReader(s)); !errors.Is(err, want) {
			Te.Errorf("%q gave %v", s, err)
		}
	}
}

//altDict returns a residue with an atom in two alternative locations.
func altDict() *dict.DataDict {
	d := dict.New("ALT")
	c := d.Ensure("atom_site")
	add := func(id, name, alt, occ, x string) {
		c.Append("group_PDB", "ATOM", "id", id, "type_symbol", name[:1], "label_atom_id", name,
			"label_alt_id", alt, "label_comp_id", "ALA", "label_asym_id", "A", "label_seq_id", "1",
			"auth_seq_id", "1", "auth_asym_id", "A", "Cartn_x", x, "Cartn_y", "0", "Cartn_z", "0",
			"occupancy", occ, "B_iso_or_equiv", "10", "pdbx_PDB_model_num", "1")
	}
	add("1", "N", ".", "1.0", "0")
	add("2", "CA", "A", "0.6", "1.5")
	add("3", "CA", "B", "0.4", "1.6")
	return d
}

func TestAltLoc(Te *testing.T) {
	for _, c := range []struct{ alt, want string }{{"A", "1.5"}, {"B", "1.6"}, {"C", "1.5"}, {"", "1.5"}} {
		opts := DefaultBuildOptions()
		opts.AltLoc = c.alt
		ms, err := Build(altDict(), opts)
		if err != nil {
			Te.Fatal(err)
		}
		ats := ms[0].Atoms()
		if len(ats) != 2 {
			Te.Fatalf("altloc %q: %d atoms", c.alt, len(ats))
		}
		if ca := ms[0].Atom(NewQuery().Equals("name", "CA")); fmt.Sprint(ca.X) != c.want {
			Te.Errorf("altloc %q kept CA at %v", c.alt, ca.X)
		}
	}
	d := altDict()
	at := d.Category("atom_site")
	for i := range at.Rows {
		at.Row(i).Set("occupancy", "1.0")
	}
	ms, err := Build(d, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if n := len(ms[0].Atoms()); n != 3 {
		Te.Errorf("full occupancy alternatives: %d atoms", n)
	}
}

func TestBuildEdges(Te *testing.T) {
	ms, err := Build(dict.New("EMPTY"), nil)
	if err != nil || ms != nil {
		Te.Errorf("empty dict gave %v %v", ms, err)
	}
	d := altDict()
	d.Category("atom_site").Row(1).Set("Cartn_y", "NaN")
	if _, err := Build(d, nil); !errors.Is(err, ErrInvalidInput) {
		Te.Errorf("NaN coordinate gave %v", err)
	}
	d = altDict()
	d.Category("atom_site").Row(2).Set("id", "2")
	d.Category("atom_site").Row(2).Set("occupancy", "1.0")
	if _, err := Build(d, &BuildOptions{}); !errors.Is(err, ErrInvariantViolation) {
		Te.Errorf("repeated atom gave %v", err)
	}
	M := loadSmall(Te)
	M.Atoms()[0].X = math.Inf(1)
	if _, err := Serialize("1ABC", M); !errors.Is(err, ErrArithmetic) {
		Te.Errorf("infinite coordinate gave %v", err)
	}
	if _, err := Serialize("1ABC"); !errors.Is(err, ErrInvalidInput) {
		Te.Errorf("no models gave %v", err)
	}
}

//The same content written as text and as binary CIF reads back the same.
func TestCrossFormat(Te *testing.T) {
	b, err := os.ReadFile("pdb/testdata/small.pdb")
	if err != nil {
		Te.Fatal(err)
	}
	d, err := Parse(b, DefaultParseOptions(FormatPDB))
	if err != nil {
		Te.Fatal(err)
	}
	var got []*dict.DataDict
	for _, f := range []Format{FormatCIF, FormatBCIF} {
		out, err := Write(d, DefaultWriteOptions(f))
		if err != nil {
			Te.Fatalf("%s: %v", f, err)
		}
		d2, err := Parse(out, DefaultParseOptions(f))
		if err != nil {
			Te.Fatalf("%s: %v", f, err)
		}
		got = append(got, d2)
	}
	if err := dict.Equivalent(got[0], got[1], 1e-3); err != nil {
		Te.Error(err)
	}
	if fmt.Sprint(got[0].Names()) != fmt.Sprint(got[1].Names()) {
		Te.Errorf("categories %v and %v", got[0].Names(), got[1].Names())
	}
}

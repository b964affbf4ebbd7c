/*
 * model_test.go, part of gomol.
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
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"testing"
)

func loadSmall(Te *testing.T) *Model {
	Te.Helper()
	b, err := os.ReadFile("pdb/testdata/small.pdb")
	if err != nil {
		Te.Fatal(err)
	}
	ms, err := Load(b, DefaultParseOptions(FormatPDB), nil)
	if err != nil {
		Te.Fatal(err)
	}
	if len(ms) != 1 {
		Te.Fatalf("%d models", len(ms))
	}
	return ms[0]
}

func ids(rs []*Residue) string {
	s := make([]string, len(rs))
	for i, r := range rs {
		s[i] = r.ID
	}
	return strings.Join(s, " ")
}

func TestBuild(Te *testing.T) {
	M := loadSmall(Te)
	if n := len(M.Molecules()); n != 5 {
		Te.Errorf("%d molecules", n)
	}
	if p, l, w := len(M.Polymers()), len(M.NonPolymers()), len(M.Waters()); p != 2 || l != 1 || w != 2 {
		Te.Errorf("%d polymers, %d ligands, %d waters", p, l, w)
	}
	if s := ids(M.Residues()); s != "A.1 A.2 B.1 B.2" {
		Te.Errorf("residues %s", s)
	}
	if n := len(M.Atoms()); n != 9 {
		Te.Errorf("%d atoms", n)
	}
	A := M.Molecule(NewQuery().Equals("id", "A"))
	if A == nil || A.Kind != Polymer || A.InternalID != "A" || A.Sequence != "MVK" || A.EntityName != "TEST PROTEIN" {
		Te.Fatalf("chain A %+v", A)
	}
	if A.PresentSequence() != "VK" {
		Te.Errorf("present sequence %s", A.PresentSequence())
	}
	v, k := A.ResidueByID("A.1"), A.ResidueByID("A.2")
	if v.Next() != k || k.Previous() != v || v.Previous() != nil || k.Next() != nil {
		Te.Errorf("chain A links")
	}
	zn := M.NonPolymers()[0]
	if zn.ID != "A.101" || zn.InternalID != "C" || zn.Name != "ZN" || zn.EntityName != "ZINC ION" {
		Te.Errorf("zinc %+v", zn)
	}
	if w := M.Waters(); w[0].ID != "A.201" || w[1].ID != "B.202" || w[1].InternalID != "E" {
		Te.Errorf("waters %v %v", w[0], w[1])
	}
	n := M.AtomByID(1)
	if n.Anisotropy != [6]float64{0.2406, 0.1892, 0.1614, 0.0198, 0.0519, -0.0328} {
		Te.Errorf("anisotropy %v", n.Anisotropy)
	}
	if a := M.AtomByID(7); a.Occupancy != 0.5 || a.BValue != 19.76 {
		Te.Errorf("atom 7 %+v", a)
	}
	z := M.AtomByID(9)
	if z.Charge != 2 || !z.Hetatm || z.Element != "ZN" || z.Molecule() != zn || z.Model() != M {
		Te.Errorf("zinc atom %+v", z)
	}
	if b := n.BondedTo(z); b == nil || b.Kind != MetalCoord {
		Te.Errorf("zinc bond %v", b)
	}
	if b := n.BondedTo(M.AtomByID(2)); b == nil || b.Kind != Template {
		Te.Errorf("N-CA bond %v", b)
	}
	if len(M.AtomByID(6).Bonds) != 0 {
		Te.Errorf("lone N bonded %v", M.AtomByID(6).Bonds)
	}
	if fmt.Sprint(A.Helices) != "[[A.1 A.2]]" || fmt.Sprint(A.Strands) != "[[A.1 A.2]]" {
		Te.Errorf("chain A helices %v strands %v", A.Helices, A.Strands)
	}
	if B := M.Polymers()[1]; fmt.Sprint(B.Strands) != "[[B.1 B.2]]" || len(B.Helices) != 0 {
		Te.Errorf("chain B helices %v strands %v", B.Helices, B.Strands)
	}
	if m := M.Missing.Residues; len(m) != 1 || m[0] != (MissingResidue{Chain: "A", Name: "MET", Number: 0}) {
		Te.Errorf("missing residues %v", m)
	}
	if len(M.Assemblies) != 2 || M.Assemblies[0].Software != "PISA" || M.Assemblies[0].Metrics[BuriedSurfaceArea] != 3720 {
		Te.Errorf("assemblies %+v", M.Assemblies)
	}
}

//Every atom is in its molecule and every molecule in its model, and bonds are
//seen from both atoms.
func TestContainment(Te *testing.T) {
	M := loadSmall(Te)
	for _, a := range M.Atoms() {
		m := a.Molecule()
		found := false
		for _, o := range m.Atoms() {
			found = found || o == a
		}
		if !found {
			Te.Errorf("%v not in %v", a, m)
		}
		found = false
		for _, o := range a.Model().Molecules() {
			found = found || o == m
		}
		if !found {
			Te.Errorf("%v not in its model", m)
		}
		for _, b := range a.Bonds {
			o := b.Cross(a)
			if o == a || o.BondedTo(a) != b {
				Te.Errorf("bond %v-%v", a, o)
			}
		}
	}
	if err := CheckBonds(M); err != nil {
		Te.Error(err)
	}
}

func TestAtomsByID(Te *testing.T) {
	M := loadSmall(Te)
	zn := M.AtomByID(9)
	if zn == nil || zn.Element != "ZN" || len(M.AtomsByID(9)) != 1 {
		Te.Fatalf("atom 9 is %v", zn)
	}
	M.Remove(zn.Molecule())
	if a := M.AtomByID(9); a != nil {
		Te.Errorf("removed atom still found: %v", a)
	}
	if a := M.AtomByID(7); a == nil || a.Residue().ID != "B.2" {
		Te.Errorf("atom 7 is %v", a)
	}
}

func TestEdit(Te *testing.T) {
	M := loadSmall(Te)
	A := M.Polymers()[0]
	v := A.ResidueByID("A.1")
	if err := v.SetNext(v); !errors.Is(err, ErrInvariantViolation) {
		Te.Errorf("self link gave %v", err)
	}
	if err := v.SetNext(M.ResidueByID("B.2")); !errors.Is(err, ErrInvariantViolation) {
		Te.Errorf("link across molecules gave %v", err)
	}
	k := A.ResidueByID("A.2")
	if err := k.SetNext(v); !errors.Is(err, ErrInvariantViolation) {
		Te.Errorf("cycle gave %v", err)
	}
	if err := k.SetPrevious(nil); err != nil || v.Next() != nil {
		Te.Errorf("unlink %v", err)
	}
	if err := v.SetNext(k); err != nil || k.Previous() != v {
		Te.Errorf("relink %v", err)
	}
	dup, _ := NewResidue("B.1", "GLY", NewAtom("C", 0, 0, 0, 50, "CA"))
	if err := A.Add(dup); !errors.Is(err, ErrInvariantViolation) {
		Te.Errorf("repeated residue ID gave %v", err)
	}
	if err := v.Add(NewAtom("C", 0, 0, 0, 3, "CB")); !errors.Is(err, ErrInvariantViolation) {
		Te.Errorf("repeated atom ID gave %v", err)
	}
	gly, _ := NewResidue("A.3", "GLY", NewAtom("C", 0, 0, 0, 50, "CA"))
	if err := A.Add(gly); err != nil {
		Te.Fatal(err)
	}
	if k.Next() != gly || gly.Model() != M || len(M.Residues()) != 5 {
		Te.Errorf("added residue not linked")
	}
	A.Remove(k)
	if v.Next() != nil || gly.Previous() != nil || k.Molecule() != nil || M.ResidueByID("A.2") != nil {
		Te.Errorf("removed residue still linked")
	}
	M.Dehydrate()
	if len(M.Waters()) != 0 || len(M.Molecules()) != 3 {
		Te.Errorf("%d molecules after dehydrating", len(M.Molecules()))
	}
	C := M.Copy()
	if !C.EquivalentTo(M) || C.Polymers()[1].ResidueByID("B.1").Next() == nil {
		Te.Errorf("copy differs")
	}
	if C.AtomByID(1) == M.AtomByID(1) || len(C.AtomByID(1).Bonds) != 0 {
		Te.Errorf("copy shares atoms or bonds")
	}
}

func TestAssembly(Te *testing.T) {
	M := loadSmall(Te)
	if _, err := M.Assembly("9"); !errors.Is(err, ErrInvalidInput) {
		Te.Errorf("unknown assembly gave %v", err)
	}
	one, err := M.Assembly("1")
	if err != nil {
		Te.Fatal(err)
	}
	if !one.EquivalentTo(M) || one.FromAssembly != "1" {
		Te.Errorf("identity assembly differs")
	}
	two, err := M.Assembly("2")
	if err != nil {
		Te.Fatal(err)
	}
	if p, l, w := len(two.Polymers()), len(two.NonPolymers()), len(two.Waters()); p != 2 || l != 2 || w != 2 {
		Te.Errorf("%d polymers, %d ligands, %d waters", p, l, w)
	}
	var internal []string
	for _, m := range two.Molecules() {
		internal = append(internal, m.InternalID)
	}
	sort.Strings(internal)
	if s := strings.Join(internal, " "); s != "A-1 A-2 C-1 C-2 D-1 D-2" {
		Te.Errorf("internal IDs %s", s)
	}
	p := two.Polymers()
	if p[0].ID != "A" || p[1].ID != "A" || ids(p[1].Residues()) != "A.1 A.2" {
		Te.Errorf("copied chains %v %v", p[0], p[1])
	}
	a, b := p[0].AtomByID(1), p[1].AtomByID(1)
	if a.X != 3.696 || a.Y != 33.898 || !near(b.X, 6.304, 1e-9) || !near(b.Y, -33.898, 1e-9) || b.Z != 63.219 {
		Te.Errorf("copied atoms at %v and %v", a.Location(), b.Location())
	}
	if len(a.Bonds) != 0 || a == M.AtomByID(1) {
		Te.Errorf("copy shares atoms or bonds")
	}
	if p[1].ResidueByID("A.1").Next() != p[1].ResidueByID("A.2") {
		Te.Errorf("copied chain not linked")
	}
	var warnings []string
	opts := DefaultWriteOptions(FormatCIF)
	opts.Warn = func(s string) { warnings = append(warnings, s) }
	if _, err := Save("1ABC", []*Model{M}, opts); err != nil || len(warnings) != 0 {
		Te.Errorf("saving the asymmetric unit: %v %v", err, warnings)
	}
	out, err := Save("1ABC", []*Model{two}, opts)
	if err != nil {
		Te.Fatal(err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "assembly 2") {
		Te.Errorf("warnings %v", warnings)
	}
	d, err := Parse(out, DefaultParseOptions(FormatCIF))
	if err != nil {
		Te.Fatal(err)
	}
	if n := d.Category("atom_site").Len(); n != 12 {
		Te.Errorf("%d atoms in the saved assembly", n)
	}
	if v := d.Get("atom_site", 4, "label_asym_id"); v != "C-1" {
		Te.Errorf("label asym ID %q", v)
	}
	//both copies of chain A have the same residue IDs.
	if _, err := Build(d, nil); !errors.Is(err, ErrInvariantViolation) {
		Te.Errorf("building the saved assembly gave %v", err)
	}
}

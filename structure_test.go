/*
 * structure_test.go, part of gomol.
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
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

//alanine returns a five-atom alanine residue, with the atoms bonded N-CA-C=O and CA-CB.
func alanine(Te *testing.T) (*Residue, []*Atom) {
	ats := []*Atom{
		NewAtom("N", 0, 0, 0, 1, "N"),
		NewAtom("C", 1.5, 0, 0, 2, "CA"),
		NewAtom("C", 1.5, 1.5, 0, 3, "CB"),
		NewAtom("C", 3, 0, 0, 4, "C"),
		NewAtom("O", 3, -1.5, 0, 5, "O"),
	}
	ats[0].Charge = 0.5
	for i, b := range []float64{0.5, 0.4, 0.3, 0.2, 0.1} {
		ats[i].BValue = b
	}
	ats[2].Anisotropy = [6]float64{1, 1, 1, 1, 1, 1}
	for _, p := range [][2]int{{0, 1}, {1, 2}, {1, 3}, {3, 4}} {
		if _, err := ats[p[0]].Bond(ats[p[1]], Covalent); err != nil {
			Te.Fatal(err)
		}
	}
	r, err := NewResidue("A.5", "ALA", ats...)
	if err != nil {
		Te.Fatal(err)
	}
	return r, ats
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestAlanine(Te *testing.T) {
	r, ats := alanine(Te)
	if r.Number != 5 || r.Insert != 0 || r.Code() != 'A' || r.FullName() != "alanine" {
		Te.Errorf("residue %v: %d %q %c %s", r, r.Number, r.Insert, r.Code(), r.FullName())
	}
	if m := r.Mass(); !near(m, 66, 0.05) {
		Te.Errorf("mass %v", m)
	}
	if c := r.Charge(); c != 0.5 {
		Te.Errorf("charge %v", c)
	}
	f := r.Formula()
	if len(f) != 3 || f["C"] != 3 || f["O"] != 1 || f["N"] != 1 {
		Te.Errorf("formula %v", f)
	}
	com, err := r.CenterOfMass()
	if err != nil {
		Te.Fatal(err)
	}
	if !near(com.X, 1.818, 0.001) || !near(com.Y, -0.091, 0.001) || com.Z != 0 {
		Te.Errorf("center of mass %v", com)
	}
	rg, err := r.RadiusOfGyration()
	if err != nil {
		Te.Fatal(err)
	}
	if !near(rg, 1.473, 0.001) {
		Te.Errorf("radius of gyration %v", rg)
	}
	if n := len(r.PairwiseAtoms()); n != 10 {
		Te.Errorf("%d pairs", n)
	}
	if n := len(r.NearbyAtoms(10)); n != 0 {
		Te.Errorf("%d atoms near a residue with no model", n)
	}
	grid := r.Grid(3, 0)
	want := []r3.Vec{{X: 0, Y: -3, Z: 0}, {X: 0, Y: 0, Z: 0}, {X: 0, Y: 3, Z: 0},
		{X: 3, Y: -3, Z: 0}, {X: 3, Y: 0, Z: 0}, {X: 3, Y: 3, Z: 0}}
	if len(grid) != len(want) {
		Te.Fatalf("grid %v", grid)
	}
	for i := range want {
		if grid[i] != want[i] {
			Te.Errorf("grid point %d is %v, want %v", i, grid[i], want[i])
		}
	}
	in := r.AtomsInSphere(r3.Vec{X: 1.5}, 1.5)
	if len(in) != 4 || in[0] != ats[0] || in[3] != ats[3] {
		Te.Errorf("atoms in sphere %v", in)
	}
	if in = r.AtomsInSphere(r3.Vec{X: 1.5}, 1.5, Element("C")); len(in) != 3 {
		Te.Errorf("carbons in sphere %v", in)
	}
}

func TestMoves(Te *testing.T) {
	r, ats := alanine(Te)
	ca := ats[1]
	check := func(step string, x, y, z float64) {
		Te.Helper()
		if ca.X != x || ca.Y != y || ca.Z != z {
			Te.Errorf("%s: CA at %v", step, ca.Location())
		}
	}
	r.Translate(r3.Vec{Z: 1})
	check("translate", 1.5, 0, 1)
	r.Translate(r3.Vec{Z: -1})
	check("translate back", 1.5, 0, 0)
	flip := r3.NewMat([]float64{-1, 0, 0, 0, 1, 0, 0, 0, -1})
	r.Transform(flip)
	check("transform", -1.5, 0, 0)
	r.Transform(flip)
	check("transform back", 1.5, 0, 0)
	if err := r.Rotate(math.Pi/2, r3.Vec{Y: 1}); err != nil {
		Te.Fatal(err)
	}
	check("rotate", 0, 0, -1.5)
	if err := r.Rotate(math.Pi*1.5, r3.Vec{Y: 1}); err != nil {
		Te.Fatal(err)
	}
	check("rotate back", 1.5, 0, 0)
	if err := r.Rotate(1, r3.Vec{}); !errors.Is(err, ErrArithmetic) {
		Te.Errorf("zero axis gave %v", err)
	}
	ca.MoveTo(r3.Vec{X: 10, Y: 10, Z: 10})
	check("move", 10, 10, 10)
	ca.MoveTo(r3.Vec{X: 1.5})
	if err := RotateAbout(r, r3.Vec{X: 1.5}, r3.Vec{X: 1.5, Y: 1}, math.Pi); err != nil {
		Te.Fatal(err)
	}
	check("rotate about CA", 1.5, 0, 0)
	if n := ats[0].Location(); n != (r3.Vec{X: 3}) {
		Te.Errorf("N after rotation about CA %v", n)
	}
}

//Moving a structure there and back leaves it where it was.
func TestTranslateBack(Te *testing.T) {
	r, ats := alanine(Te)
	orig := make([]r3.Vec, len(ats))
	for i, a := range ats {
		orig[i] = a.Location()
	}
	for _, v := range []r3.Vec{{X: 0.1, Y: 0.2, Z: 0.3}, {X: -1234.567, Y: 1e-7, Z: 33.3}} {
		r.Translate(v)
		r.Translate(r3.Scale(-1, v))
		for i, a := range ats {
			if d := a.DistanceTo(orig[i]); d > 1e-9 {
				Te.Errorf("atom %d off by %v after translating by %v", a.ID, d, v)
			}
		}
	}
}

func TestCopyAndPairing(Te *testing.T) {
	r, ats := alanine(Te)
	c := r.Copy()
	if c.ID != "A.5" || c.Name != "ALA" || c.Len() != 5 {
		Te.Errorf("copy %v", c)
	}
	if !r.EquivalentTo(c) {
		Te.Errorf("copy is not equivalent")
	}
	pairs, err := r.PairingWith(c)
	if err != nil {
		Te.Fatal(err)
	}
	for _, p := range pairs {
		if p.A.ID != p.B.ID || p.A == p.B {
			Te.Errorf("pair %v %v", p.A, p.B)
		}
	}
	for _, a := range c.Atoms() {
		for _, o := range ats {
			if a == o {
				Te.Errorf("atom %v shared by the copy", a)
			}
		}
	}
	//atoms with repeated IDs are still paired, by name.
	c.AtomByID(4).ID = 2
	pairs, err = r.PairingWith(c)
	if err != nil {
		Te.Fatal(err)
	}
	for _, p := range pairs {
		if p.A.Name != p.B.Name {
			Te.Errorf("%v paired with %v", p.A, p.B)
		}
	}
	short, _ := NewResidue("A.6", "GLY", NewAtom("N", 0, 0, 0, 1, "N"))
	if _, err := r.PairingWith(short); !errors.Is(err, ErrInvalidInput) {
		Te.Errorf("different sizes gave %v", err)
	}
	if r.EquivalentTo(short) {
		Te.Errorf("different sizes are equivalent")
	}
}

func TestSuperimpose(Te *testing.T) {
	r, ats := alanine(Te)
	orig := make([]r3.Vec, len(ats))
	for i, a := range ats {
		orig[i] = a.Location()
	}
	if err := r.SuperimposeOnto(r); err != nil {
		Te.Fatal(err)
	}
	for i, a := range ats {
		if a.DistanceTo(orig[i]) > 1e-9 {
			Te.Errorf("atom %d moved to %v", a.ID, a.Location())
		}
	}
	if rmsd, err := r.RMSDWith(r, false); err != nil || rmsd != 0 {
		Te.Errorf("self RMSD %v %v", rmsd, err)
	}
	c := r.Copy()
	if err := c.Rotate(1.1, r3.Vec{X: 1, Y: 2, Z: -0.5}); err != nil {
		Te.Fatal(err)
	}
	c.Translate(r3.Vec{X: 5, Y: -3, Z: 12})
	before, err := c.RMSDWith(r, false)
	if err != nil {
		Te.Fatal(err)
	}
	if before < 1 {
		Te.Errorf("RMSD before superposition %v", before)
	}
	moved := c.Atom(Name("CA")).Location()
	after, err := c.RMSDWith(r, true)
	if err != nil {
		Te.Fatal(err)
	}
	if after > 1e-6 {
		Te.Errorf("RMSD after superposition %v", after)
	}
	if c.Atom(Name("CA")).Location() != moved {
		Te.Errorf("RMSDWith moved the structure")
	}
	if err := c.SuperimposeOnto(r); err != nil {
		Te.Fatal(err)
	}
	for i, a := range c.Atoms() {
		if a.DistanceTo(orig[i]) > 1e-6 {
			Te.Errorf("superimposed atom %d at %v, want %v", a.ID, a.Location(), orig[i])
		}
	}
}

func TestAtomGeometry(Te *testing.T) {
	_, ats := alanine(Te)
	if a := Rad2Deg(ats[1].Angle(ats[0], ats[3])); !near(a, 180, 1e-9) {
		Te.Errorf("N-CA-C angle %v", a)
	}
	if a := Rad2Deg(ats[1].Angle(ats[0], ats[2])); !near(a, 90, 1e-9) {
		Te.Errorf("N-CA-CB angle %v", a)
	}
	d := NewAtom("C", 3, 0, 1, 6, "CX")
	if di := Rad2Deg(Dihedral(ats[2], ats[1], ats[3], d)); !near(math.Abs(di), 90, 1e-9) {
		Te.Errorf("dihedral %v", di)
	}
	if !near(Deg2Rad(180), math.Pi, 1e-15) {
		Te.Errorf("Deg2Rad")
	}
	if ats[1].IsMetal() || !NewAtom("ZN", 0, 0, 0, 1, "ZN").IsMetal() {
		Te.Errorf("IsMetal")
	}
	if m := ats[4].Mass(); !near(m, 16, 0.05) {
		Te.Errorf("oxygen mass %v", m)
	}
	if len(ats[1].Bonded()) != 3 || ats[4].BondedTo(ats[3]) == nil || ats[4].BondedTo(ats[0]) != nil {
		Te.Errorf("bonds of CA %v", ats[1].Bonded())
	}
	if _, err := ats[0].Bond(ats[0], Covalent); !errors.Is(err, ErrInvariantViolation) {
		Te.Errorf("self bond gave %v", err)
	}
	cp := ats[1].Copy()
	if len(cp.Bonds) != 0 || cp.Residue() != nil || !cp.EquivalentTo(ats[1]) {
		Te.Errorf("atom copy %v", cp)
	}
	ats[1].Unbond(ats[0])
	if ats[0].BondedTo(ats[1]) != nil || len(ats[1].Bonds) != 2 {
		Te.Errorf("unbond left %v", ats[1].Bonds)
	}
}

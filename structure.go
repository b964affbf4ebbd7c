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

package mol

import (
	"fmt"
	"math"
	"sort"

	"github.com/zeebo/blake3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/gomol/molerr"
	v3 "github.com/rmera/gomol/v3"
)

//structure provides the Structure methods to the types that embed it,
//through the package-level functions. self is the embedding value.
type structure struct {
	self Atomer
}

func (s structure) Atom(q ...*Query) *Atom {
	return firstAtom(s.self, q)
}
func (s structure) Mass() float64                      { return Mass(s.self) }
func (s structure) Charge() float64                    { return Charge(s.self) }
func (s structure) Formula() map[string]int            { return Formula(s.self) }
func (s structure) CenterOfMass() (r3.Vec, error)      { return CenterOfMass(s.self) }
func (s structure) RadiusOfGyration() (float64, error) { return RadiusOfGyration(s.self) }
func (s structure) Translate(v r3.Vec, trim ...int)    { Translate(s.self, v, trim...) }
func (s structure) Transform(R *r3.Mat, trim ...int)   { Transform(s.self, R, trim...) }
func (s structure) Trim(places int)                    { Trim(s.self, places) }
func (s structure) EquivalentTo(other Atomer) bool     { return EquivalentTo(s.self, other) }
func (s structure) SuperimposeOnto(other Atomer) error { return SuperimposeOnto(s.self, other) }
func (s structure) Grid(size, margin float64) []r3.Vec { return Grid(s.self, size, margin) }

func (s structure) Rotate(angle float64, axis r3.Vec, trim ...int) error {
	return Rotate(s.self, angle, axis, trim...)
}

func (s structure) PairingWith(other Atomer) ([]Pair, error) {
	return PairingWith(s.self, other)
}

func (s structure) RMSDWith(other Atomer, superimpose bool) (float64, error) {
	return RMSDWith(s.self, other, superimpose)
}

func (s structure) AtomsInSphere(p r3.Vec, radius float64, q ...*Query) []*Atom {
	return AtomsInSphere(s.self, p, radius, q...)
}

func (s structure) NearbyAtoms(cutoff float64, q ...*Query) []*Atom {
	return NearbyAtoms(s.self, cutoff, q...)
}

func (s structure) NearbyStructures(cutoff float64, opts NearbyOptions, q ...*Query) []Structure {
	return nearbyStructures(s.self, cutoff, opts, q)
}

func (s structure) PairwiseAtoms(q ...*Query) [][2]*Atom {
	return PairwiseAtoms(s.self, q...)
}

func firstAtom(s Atomer, q []*Query) *Atom {
	ats := s.Atoms(q...)
	if len(ats) == 0 {
		return nil
	}
	return ats[0]
}

//Mass returns the sum of the masses of the atoms of s.
func Mass(s Atomer) float64 {
	return trimCoord(floats.Sum(masses(s.Atoms())), DefaultTrim)
}

//Charge returns the sum of the charges of the atoms of s.
func Charge(s Atomer) float64 {
	var c float64
	for _, a := range s.Atoms() {
		c += a.Charge
	}
	return trimCoord(c, DefaultTrim)
}

//Formula returns the number of atoms of each element in s.
func Formula(s Atomer) map[string]int {
	ret := make(map[string]int)
	for _, a := range s.Atoms() {
		ret[a.Element]++
	}
	return ret
}

func coords(ats []*Atom) *v3.Matrix {
	M := v3.Zeros(len(ats))
	for i, a := range ats {
		M.SetVec(i, a.Location())
	}
	return M
}

func masses(ats []*Atom) []float64 {
	ret := make([]float64, len(ats))
	for i, a := range ats {
		ret[i] = a.Mass()
	}
	return ret
}

//CenterOfMass returns the average of the coordinates of the atoms of s,
//weighted by their masses. It fails if s has no atoms or no mass.
func CenterOfMass(s Atomer) (r3.Vec, error) {
	ats := s.Atoms()
	if len(ats) == 0 {
		return r3.Vec{}, molerr.New(molerr.Arithmetic, "CenterOfMass: no atoms")
	}
	c, err := v3.WeightedCentroid(coords(ats), masses(ats))
	if err != nil {
		return c, molerr.Decorate(err, "CenterOfMass")
	}
	return c, nil
}

//RadiusOfGyration returns the root mean square distance of the atoms
//of s to its center of mass.
func RadiusOfGyration(s Atomer) (float64, error) {
	com, err := CenterOfMass(s)
	if err != nil {
		return 0, molerr.Decorate(err, "RadiusOfGyration")
	}
	ats := s.Atoms()
	var sq float64
	for _, a := range ats {
		d := a.DistanceTo(com)
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(ats))), nil
}

//touched invalidates the spatial indexes of the models the atoms belong to.
func touched(ats []*Atom) {
	var last *Model
	for _, a := range ats {
		if m := a.Model(); m != nil && m != last {
			m.invalidate()
			last = m
		}
	}
}

//Translate moves every atom of s by v.
func Translate(s Atomer, v r3.Vec, trim ...int) {
	places := trimArg(trim)
	ats := s.Atoms()
	for _, a := range ats {
		a.X += v.X
		a.Y += v.Y
		a.Z += v.Z
		a.trim(places)
	}
	touched(ats)
}

//Transform applies the matrix R to the coordinates of every atom of s.
func Transform(s Atomer, R *r3.Mat, trim ...int) {
	places := trimArg(trim)
	ats := s.Atoms()
	for _, a := range ats {
		p := R.MulVec(a.Location())
		a.X, a.Y, a.Z = p.X, p.Y, p.Z
		a.trim(places)
	}
	touched(ats)
}

//Rotate rotates s by angle radians, counterclockwise around axis, which
//passes through the origin.
func Rotate(s Atomer, angle float64, axis r3.Vec, trim ...int) error {
	R, err := v3.AxisAngle(angle, axis)
	if err != nil {
		return molerr.Decorate(err, "Rotate")
	}
	Transform(s, R, trim...)
	return nil
}

//Trim rounds the coordinates of the atoms of s to the given number of decimal places.
func Trim(s Atomer, places int) {
	ats := s.Atoms()
	for _, a := range ats {
		a.trim(places)
	}
	touched(ats)
}

//Pair is two atoms that correspond to each other in two structures.
type Pair struct {
	A, B *Atom
}

//PairingWith finds the equivalent in b of every atom of a. Both structures
//must have the same number of atoms. Atoms with an ID found exactly once in
//each structure are paired first. The rest are paired in order of element, name,
//number of bonds, ID and, last, a hash of all the atom's data, so the pairing is
//the same every time two structures are compared.
func PairingWith(a, b Atomer) ([]Pair, error) {
	A, B := a.Atoms(), b.Atoms()
	if len(A) != len(B) {
		return nil, molerr.New(molerr.InvalidInput, "PairingWith: %d atoms against %d", len(A), len(B))
	}
	ida, idb := idCount(A), idCount(B)
	used := make(map[*Atom]bool, len(B))
	pairs := make([]Pair, 0, len(A))
	for _, at := range A {
		if ida[at.ID] != 1 || idb[at.ID] != 1 {
			continue
		}
		for _, o := range B {
			if o.ID == at.ID {
				pairs = append(pairs, Pair{at, o})
				used[at], used[o] = true, true
				break
			}
		}
	}
	var restA, restB []*Atom
	for _, at := range A {
		if !used[at] {
			restA = append(restA, at)
		}
	}
	for _, at := range B {
		if !used[at] {
			restB = append(restB, at)
		}
	}
	sortForPairing(restA)
	sortForPairing(restB)
	for i := range restA {
		pairs = append(pairs, Pair{restA[i], restB[i]})
	}
	return pairs, nil
}

func idCount(ats []*Atom) map[int32]int {
	ret := make(map[int32]int, len(ats))
	for _, a := range ats {
		ret[a.ID]++
	}
	return ret
}

//fingerprint is a hash of everything an atom carries, except its bonds and parents.
func fingerprint(a *Atom) [32]byte {
	s := fmt.Sprintf("%s|%s|%d|%g|%g|%g|%g|%g|%v|%d|%g|%t", a.Element, a.Name, a.ID,
		a.X, a.Y, a.Z, a.Charge, a.BValue, a.Anisotropy, a.AltLoc, a.Occupancy, a.Hetatm)
	if r := a.Residue(); r != nil {
		s += "|" + r.ID + "|" + r.Name
	}
	return blake3.Sum256([]byte(s))
}

func sortForPairing(ats []*Atom) {
	fp := make(map[*Atom][32]byte, len(ats))
	for _, a := range ats {
		fp[a] = fingerprint(a)
	}
	sort.SliceStable(ats, func(i, j int) bool {
		a, b := ats[i], ats[j]
		if a.Element != b.Element {
			return a.Element < b.Element
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if len(a.Bonds) != len(b.Bonds) {
			return len(a.Bonds) < len(b.Bonds)
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		fa, fb := fp[a], fp[b]
		for k := range fa {
			if fa[k] != fb[k] {
				return fa[k] < fb[k]
			}
		}
		return false
	})
}

//SuperimposeOnto moves a so that its center of mass matches that of b, and rotates it
//so the RMSD between a and b is the smallest possible. b doesn't move.
func SuperimposeOnto(a, b Atomer) error {
	pairs, err := PairingWith(a, b)
	if err != nil {
		return molerr.Decorate(err, "SuperimposeOnto")
	}
	A := make([]*Atom, len(pairs))
	B := make([]*Atom, len(pairs))
	for i, p := range pairs {
		A[i], B[i] = p.A, p.B
	}
	R, ca, cb, err := v3.RotatorTranslatorToSuper(coords(A), coords(B), masses(A), masses(B))
	if err != nil {
		return molerr.Decorate(err, "SuperimposeOnto")
	}
	for _, at := range A {
		p := r3.Add(R.MulVec(r3.Sub(at.Location(), ca)), cb)
		at.X, at.Y, at.Z = p.X, p.Y, p.Z
		at.trim(DefaultTrim)
	}
	touched(A)
	return nil
}

//RMSDWith returns the root mean square deviation between the paired atoms of
//a and b. If superimpose is true, it is computed after superimposing a onto b,
//but a is left where it was.
func RMSDWith(a, b Atomer, superimpose bool) (float64, error) {
	if superimpose {
		ats := a.Atoms()
		saved := make([]r3.Vec, len(ats))
		for i, at := range ats {
			saved[i] = at.Location()
		}
		defer func() {
			for i, at := range ats {
				at.X, at.Y, at.Z = saved[i].X, saved[i].Y, saved[i].Z
			}
			touched(ats)
		}()
		if err := SuperimposeOnto(a, b); err != nil {
			return 0, molerr.Decorate(err, "RMSDWith")
		}
	}
	pairs, err := PairingWith(a, b)
	if err != nil {
		return 0, molerr.Decorate(err, "RMSDWith")
	}
	if len(pairs) == 0 {
		return 0, molerr.New(molerr.InvalidInput, "RMSDWith: no atoms")
	}
	var sq float64
	for _, p := range pairs {
		d := p.A.DistanceTo(p.B.Location())
		sq += d * d
	}
	return trimCoord(math.Sqrt(sq/float64(len(pairs))), DefaultTrim), nil
}

//EquivalentTo returns true if a and b have the same number of atoms, and
//each atom of a is equivalent to its pair in b.
func EquivalentTo(a, b Atomer) bool {
	pairs, err := PairingWith(a, b)
	if err != nil {
		return false
	}
	for _, p := range pairs {
		if !p.A.EquivalentTo(p.B) {
			return false
		}
	}
	return true
}

//AtomsInSphere returns the atoms of s within radius of p, that match the queries.
func AtomsInSphere(s Atomer, p r3.Vec, radius float64, q ...*Query) []*Atom {
	if m, ok := s.(*Model); ok {
		return m.AtomsInSphere(p, radius, q...)
	}
	var ret []*Atom
	for _, a := range s.Atoms(q...) {
		if a.DistanceTo(p) <= radius {
			ret = append(ret, a)
		}
	}
	return ret
}

//NearbyAtoms returns the atoms of the model of s within cutoff of any atom of s,
//excluding the atoms of s.
func NearbyAtoms(s Atomer, cutoff float64, q ...*Query) []*Atom {
	own := s.Atoms()
	mine := make(map[*Atom]bool, len(own))
	for _, a := range own {
		mine[a] = true
	}
	seen := make(map[*Atom]bool)
	var ret []*Atom
	for _, a := range own {
		for _, n := range a.NearbyAtoms(cutoff, q...) {
			if mine[n] || seen[n] {
				continue
			}
			seen[n] = true
			ret = append(ret, n)
		}
	}
	return ret
}

//owner returns the structure NearbyStructures reports for a: its molecule for
//non-polymers, its residue otherwise.
func owner(a *Atom) Structure {
	r := a.Residue()
	if r == nil {
		return nil
	}
	if m := r.molecule; m != nil && m.Kind == NonPolymer {
		return m
	}
	return r
}

func nearbyStructures(s Atomer, cutoff float64, opts NearbyOptions, q []*Query) []Structure {
	exclude := make(map[Structure]bool)
	if st, ok := s.(Structure); ok {
		exclude[st] = true
	}
	for _, a := range s.Atoms() {
		if o := owner(a); o != nil {
			exclude[o] = true
		}
	}
	var ret []Structure
	for _, a := range NearbyAtoms(s, cutoff, q...) {
		o := owner(a)
		if o == nil || exclude[o] {
			continue
		}
		exclude[o] = true
		kind := Polymer
		switch v := o.(type) {
		case *Molecule:
			kind = v.Kind
		case *Residue:
			if v.molecule != nil {
				kind = v.molecule.Kind
			}
		}
		switch {
		case kind == Water && !opts.Waters,
			kind == NonPolymer && !opts.Ligands,
			(kind == Polymer || kind == Branched) && !opts.Residues:
			continue
		}
		ret = append(ret, o)
	}
	return ret
}

//PairwiseAtoms returns every pair of different atoms of s that match the queries,
//without repetitions.
func PairwiseAtoms(s Atomer, q ...*Query) [][2]*Atom {
	ats := s.Atoms(q...)
	if len(ats) < 2 {
		return nil
	}
	ret := make([][2]*Atom, 0, len(ats)*(len(ats)-1)/2)
	for i := 0; i < len(ats)-1; i++ {
		for j := i + 1; j < len(ats); j++ {
			ret = append(ret, [2]*Atom{ats[i], ats[j]})
		}
	}
	return ret
}

//Grid returns the points of a box-shaped grid, of the given spacing, around s
//extended by margin in every direction. The origin is always one of the points
//of the grid, even if it falls outside the box.
func Grid(s Atomer, size, margin float64) []r3.Vec {
	ats := s.Atoms()
	if len(ats) == 0 || size <= 0 {
		return nil
	}
	var dims [3][]float64
	for d := 0; d < 3; d++ {
		min, max := math.Inf(1), math.Inf(-1)
		for _, a := range ats {
			v := [3]float64{a.X, a.Y, a.Z}[d]
			min, max = math.Min(min, v), math.Max(max, v)
		}
		min, max = min-margin, max+margin
		lo, hi := 0, 0
		for float64(lo)*size > min {
			lo--
		}
		for float64(hi)*size < max {
			hi++
		}
		for i := lo; i <= hi; i++ {
			dims[d] = append(dims[d], trimCoord(float64(i)*size, DefaultTrim))
		}
	}
	ret := make([]r3.Vec, 0, len(dims[0])*len(dims[1])*len(dims[2]))
	for _, x := range dims[0] {
		for _, y := range dims[1] {
			for _, z := range dims[2] {
				ret = append(ret, r3.Vec{X: x, Y: y, Z: z})
			}
		}
	}
	return ret
}

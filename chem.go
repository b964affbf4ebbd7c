/*
 * chem.go, part of gomol.
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

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/gomol/residue"
)

/**Note: the accessors here panic on nil atoms instead of returning errors. If something goes wrong
 * at this level, the program is way-most likely wrong and should crash.**/

//Atom is a point particle with a location, an element, a charge etc.
//Coordinates can be read directly, but should be changed through MoveTo or the
//geometric functions, so the spatial index of the model is kept up to date.
type Atom struct {
	ID         int32
	Element    string
	Name       string
	X, Y, Z    float64
	Charge     float64
	BValue     float64
	Anisotropy [6]float64 //U11, U22, U33, U12, U13, U23
	AltLoc     byte       //0 means none.
	Occupancy  float64
	Hetatm     bool
	Bonds      []*Bond
	residue    *Residue
}

//NewAtom returns an atom with full occupancy and no charge, not part of any structure.
func NewAtom(element string, x, y, z float64, id int32, name string) *Atom {
	return &Atom{ID: id, Element: element, Name: name, X: x, Y: y, Z: z, Occupancy: 1}
}

//String returns a short description of the atom.
func (A *Atom) String() string {
	return fmt.Sprintf("<Atom %d (%s)>", A.ID, A.Name)
}

//Residue returns the residue the atom belongs to, or nil.
func (A *Atom) Residue() *Residue {
	return A.residue
}

//Molecule returns the molecule the atom belongs to, or nil.
func (A *Atom) Molecule() *Molecule {
	if A.residue == nil {
		return nil
	}
	return A.residue.molecule
}

//Model returns the model the atom belongs to, or nil.
func (A *Atom) Model() *Model {
	m := A.Molecule()
	if m == nil {
		return nil
	}
	return m.model
}

//Atoms returns a slice with only A, if A matches all the queries. It allows
//the geometric functions to work on a single atom.
func (A *Atom) Atoms(q ...*Query) []*Atom {
	if !matchAll(A, q) {
		return nil
	}
	return []*Atom{A}
}

//Location returns the coordinates of the atom.
func (A *Atom) Location() r3.Vec {
	return r3.Vec{X: A.X, Y: A.Y, Z: A.Z}
}

//MoveTo sets the coordinates of the atom to p.
func (A *Atom) MoveTo(p r3.Vec) {
	A.X, A.Y, A.Z = p.X, p.Y, p.Z
	if m := A.Model(); m != nil {
		m.invalidate()
	}
}

//DistanceTo returns the distance between the atom and the point p.
//For the distance to other atom B, use A.DistanceTo(B.Location())
func (A *Atom) DistanceTo(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(A.Location(), p))
}

//Angle returns the angle, in radians, between the vectors from A to B and from A to C.
func (A *Atom) Angle(B, C *Atom) float64 {
	v1 := r3.Sub(B.Location(), A.Location())
	v2 := r3.Sub(C.Location(), A.Location())
	cos := r3.Cos(v1, v2)
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}

//Mass returns the standard atomic weight of the element of the atom,
//or 0 if the element is not known. The lookup is case-insensitive.
func (A *Atom) Mass() float64 {
	return symbolMass[residue.Title(A.Element)]
}

//IsMetal returns true if the element of the atom is a metal.
func (A *Atom) IsMetal() bool {
	return residue.IsMetal(A.Element)
}

//Bonded returns the atoms bonded to A.
func (A *Atom) Bonded() []*Atom {
	ret := make([]*Atom, 0, len(A.Bonds))
	for _, b := range A.Bonds {
		ret = append(ret, b.Cross(A))
	}
	return ret
}

//BondedTo returns the bond between A and B, or nil if there is none.
func (A *Atom) BondedTo(B *Atom) *Bond {
	for _, b := range A.Bonds {
		if b.At1 == B || b.At2 == B {
			return b
		}
	}
	return nil
}

//NearbyAtoms returns the atoms of A's model that are within cutoff of A, A excluded.
//An atom outside a model has no neighbours.
func (A *Atom) NearbyAtoms(cutoff float64, q ...*Query) []*Atom {
	m := A.Model()
	if m == nil {
		return nil
	}
	ats := m.AtomsInSphere(A.Location(), cutoff, q...)
	ret := ats[:0]
	for _, v := range ats {
		if v != A {
			ret = append(ret, v)
		}
	}
	return ret
}

//NearbyStructures returns the residues, non-polymers and waters with atoms within cutoff
//of A, excluding A's own structure.
func (A *Atom) NearbyStructures(cutoff float64, opts NearbyOptions, q ...*Query) []Structure {
	return nearbyStructures(A, cutoff, opts, q)
}

//EquivalentTo returns true if B has the same location and properties as A. Bonds
//and parents are not compared.
func (A *Atom) EquivalentTo(B *Atom) bool {
	return A.Element == B.Element && A.Name == B.Name && A.ID == B.ID &&
		A.X == B.X && A.Y == B.Y && A.Z == B.Z &&
		A.Charge == B.Charge && A.BValue == B.BValue && A.Anisotropy == B.Anisotropy
}

//Copy returns a copy of the atom, with no bonds and not part of any structure.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	N := *A
	N.Bonds = nil
	N.residue = nil
	return &N
}

//trim rounds the coordinates of the atom to places decimal places.
func (A *Atom) trim(places int) {
	A.X, A.Y, A.Z = trimCoord(A.X, places), trimCoord(A.Y, places), trimCoord(A.Z, places)
}

//finite checks that the numbers of the atom can be written out.
func (A *Atom) finite() bool {
	for _, v := range []float64{A.X, A.Y, A.Z, A.BValue, A.Occupancy, A.Charge} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

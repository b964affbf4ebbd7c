/*
 * bonds.go, part of gomol.
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
	"github.com/rmera/gomol/molerr"
	"github.com/rmera/gomol/residue"
)

//constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
	linkmax  = 2.0 //longest peptide or phosphodiester link we accept.
)

//Kinds of bonds. The first three are the struct_conn types that create bonds.
const (
	Covalent   = "covale"
	Disulfide  = "disulf"
	MetalCoord = "metalc"
	Template   = "template" //intra-residue bond from the monomer tables.
	Link       = "link"     //peptide or phosphodiester bond between consecutive residues.
)

//Bond is an edge between two atoms. Bonds are symmetric: the same *Bond is
//in the Bonds slice of both atoms.
type Bond struct {
	At1   *Atom
	At2   *Atom
	Dist  float64
	Order float64 //Order 0 means undetermined
	Kind  string
}

//Cross returns the atom bonded to origin through B.
func (B *Bond) Cross(origin *Atom) *Atom {
	if origin == B.At1 {
		return B.At2
	}
	if origin == B.At2 {
		return B.At1
	}
	panic("Trying to cross a bond: The origin atom given is not present in the bond!") //a programming error, so a panic is warranted.
}

//synthesized is true for bonds the builder creates again from the atoms alone.
func (B *Bond) synthesized() bool {
	return B.Kind == Template || B.Kind == Link
}

//Bond creates a bond of the given kind between A and B, and returns it. If the atoms
//are already bonded, the existing bond is returned. An atom can't be bonded to itself.
func (A *Atom) Bond(B *Atom, kind string) (*Bond, error) {
	if A == B {
		return nil, molerr.New(molerr.InvariantViolation, "Atom.Bond: atom %d bonded to itself", A.ID)
	}
	if b := A.BondedTo(B); b != nil {
		return b, nil
	}
	b := &Bond{At1: A, At2: B, Dist: A.DistanceTo(B.Location()), Kind: kind}
	A.Bonds = append(A.Bonds, b)
	B.Bonds = append(B.Bonds, b)
	return b, nil
}

//Unbond removes the bond between A and B, from both atoms. It does nothing
//if there is no such bond.
func (A *Atom) Unbond(B *Atom) {
	b := A.BondedTo(B)
	if b == nil {
		return
	}
	A.Bonds = takefromslice(A.Bonds, b)
	B.Bonds = takefromslice(B.Bonds, b)
}

//UnbondAll removes every bond of A.
func (A *Atom) UnbondAll() {
	for _, o := range A.Bonded() {
		A.Unbond(o)
	}
}

//return a new *Bond slice with the bond b removed
func takefromslice(bonds []*Bond, b *Bond) []*Bond {
	newb := make([]*Bond, 0, len(bonds))
	for _, v := range bonds {
		if v != b {
			newb = append(newb, v)
		}
	}
	return newb
}

//closeEnough applies the distance criterion of DOI:10.1186/1758-2946-3-33.
//Elements without a known radius are always close enough.
func closeEnough(A, B *Atom) bool {
	cov1, ok1 := symbolCovrad[residue.Title(A.Element)]
	cov2, ok2 := symbolCovrad[residue.Title(B.Element)]
	if !ok1 || !ok2 {
		return true
	}
	d := A.DistanceTo(B.Location())
	return d < cov1+cov2+bondtol && d > tooclose
}

//CheckBonds returns an InvariantViolation error if a bond in s is not
//present in both of its atoms or joins an atom to itself.
func CheckBonds(s Atomer) error {
	for _, a := range s.Atoms() {
		for _, b := range a.Bonds {
			if b.At1 == b.At2 {
				return molerr.New(molerr.InvariantViolation, "CheckBonds: atom %d bonded to itself", a.ID)
			}
			if b.At1 != a && b.At2 != a {
				return molerr.New(molerr.InvariantViolation, "CheckBonds: atom %d holds a bond it is not part of", a.ID)
			}
			o := b.Cross(a)
			if o.BondedTo(a) != b {
				return molerr.New(molerr.InvariantViolation, "CheckBonds: bond %d-%d only present in atom %d", a.ID, o.ID, a.ID)
			}
		}
	}
	return nil
}

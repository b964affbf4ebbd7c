/*
 * interfaces.go, part of gomol.
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
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/gomol/molerr"
)

// Atomer is the basic interface for anything made of atoms. An Atom
// is an Atomer of one atom.
type Atomer interface {

	//Atoms returns the atoms matching all the queries given.
	//The order is that of the structure's residues.
	Atoms(q ...*Query) []*Atom
}

// Structure is implemented by Model, Molecule and Residue. All the methods
// except Atoms and AtomByID are provided by the package-level functions of the
// same name.
type Structure interface {
	Atomer

	//AtomByID returns one of the atoms with the given ID, or nil.
	AtomByID(id int32) *Atom

	Atom(q ...*Query) *Atom
	Mass() float64
	Charge() float64
	Formula() map[string]int
	CenterOfMass() (r3.Vec, error)
	RadiusOfGyration() (float64, error)
	Translate(v r3.Vec, trim ...int)
	Transform(R *r3.Mat, trim ...int)
	Rotate(angle float64, axis r3.Vec, trim ...int) error
	Trim(places int)
	PairingWith(other Atomer) ([]Pair, error)
	RMSDWith(other Atomer, superimpose bool) (float64, error)
	SuperimposeOnto(other Atomer) error
	AtomsInSphere(p r3.Vec, radius float64, q ...*Query) []*Atom
	NearbyAtoms(cutoff float64, q ...*Query) []*Atom
	NearbyStructures(cutoff float64, opts NearbyOptions, q ...*Query) []Structure
	EquivalentTo(other Atomer) bool
	PairwiseAtoms(q ...*Query) [][2]*Atom
	Grid(size, margin float64) []r3.Vec
}

//NearbyOptions selects the kinds of structure NearbyStructures returns.
type NearbyOptions struct {
	Residues bool
	Ligands  bool
	Waters   bool
}

//DefaultNearbyOptions returns residues and ligands, but not waters.
func DefaultNearbyOptions() NearbyOptions {
	return NearbyOptions{Residues: true, Ligands: true}
}

//CopyOptions allows to rewrite the ids of the copied objects. nil functions
//keep the original ids.
type CopyOptions struct {
	AtomID    func(int32) int32
	ResidueID func(string) string
}

func copyOptions(opts []CopyOptions) CopyOptions {
	if len(opts) == 0 {
		return CopyOptions{}
	}
	return opts[0]
}

//Error sentinels, re-exported so callers of this package don't need to import molerr.
var (
	ErrInvalidInput       = molerr.ErrInvalidInput
	ErrSchemaViolation    = molerr.ErrSchemaViolation
	ErrInvariantViolation = molerr.ErrInvariantViolation
	ErrUnsupported        = molerr.ErrUnsupported
	ErrArithmetic         = molerr.ErrArithmetic
)

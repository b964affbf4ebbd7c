/*
 * residue.go, part of gomol.
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
	"strconv"
	"strings"

	"github.com/rmera/gomol/molerr"
	"github.com/rmera/gomol/residue"
)

//Residue is a monomer of a polymer, or the single group of atoms of a
//non-polymer or a water molecule.
type Residue struct {
	ID          string //chain and number, as "A.13" or "A.13B"
	Name        string
	Number      int32
	Insert      byte //insertion code, 0 if none
	Description string
	atoms       []*Atom
	next        *Residue
	previous    *Residue
	molecule    *Molecule
	structure
}

//NewResidue returns a residue with the given ID, name and atoms. The number and
//insertion code are taken from the ID when it has the "chain.number" form.
func NewResidue(id, name string, atoms ...*Atom) (*Residue, error) {
	R := &Residue{ID: id, Name: name}
	R.structure = structure{R}
	R.Number, R.Insert = splitResidueID(id)
	for _, a := range atoms {
		if err := R.Add(a); err != nil {
			return nil, molerr.Decorate(err, "NewResidue")
		}
	}
	return R, nil
}

//splitResidueID takes the number and insertion code from ids as "A.13B".
func splitResidueID(id string) (int32, byte) {
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		id = id[i+1:]
	}
	var ins byte
	if l := len(id); l > 1 && (id[l-1] < '0' || id[l-1] > '9') {
		ins = id[l-1]
		id = id[:l-1]
	}
	n, err := strconv.ParseInt(id, 10, 32)
	if err != nil {
		return 0, 0
	}
	return int32(n), ins
}

//ResidueID builds the ID of a residue from its chain, number and insertion code.
func ResidueID(chain string, number int32, insert byte) string {
	id := fmt.Sprintf("%s.%d", chain, number)
	if insert != 0 {
		id += string(insert)
	}
	return id
}

func (R *Residue) String() string {
	return fmt.Sprintf("<Residue %s (%s)>", R.Name, R.ID)
}

//Atoms returns the atoms of the residue that match all the queries.
func (R *Residue) Atoms(q ...*Query) []*Atom {
	ret := make([]*Atom, 0, len(R.atoms))
	for _, a := range R.atoms {
		if matchAll(a, q) {
			ret = append(ret, a)
		}
	}
	return ret
}

//AtomByID returns the atom with the given ID, or nil.
func (R *Residue) AtomByID(id int32) *Atom {
	for _, a := range R.atoms {
		if a.ID == id {
			return a
		}
	}
	return nil
}

//Len returns the number of atoms in the residue.
func (R *Residue) Len() int {
	return len(R.atoms)
}

//Molecule returns the molecule the residue belongs to, or nil.
func (R *Residue) Molecule() *Molecule {
	return R.molecule
}

//Model returns the model the residue belongs to, or nil.
func (R *Residue) Model() *Model {
	if R.molecule == nil {
		return nil
	}
	return R.molecule.model
}

//Add puts the atom A in the residue, taking it from any residue it was
//in before. Atom IDs must be unique within a molecule.
func (R *Residue) Add(A *Atom) error {
	if A.residue == R {
		return nil
	}
	if R.AtomByID(A.ID) != nil {
		return molerr.New(molerr.InvariantViolation, "residue %s already has an atom with ID %d", R.ID, A.ID)
	}
	if o := R.moleculeAtom(A.ID); o != nil && o != A {
		return molerr.New(molerr.InvariantViolation, "molecule %s already has an atom with ID %d", R.molecule.ID, A.ID)
	}
	if A.residue != nil {
		A.residue.Remove(A)
	}
	A.residue = R
	R.atoms = append(R.atoms, A)
	if m := R.Model(); m != nil {
		m.invalidate()
	}
	return nil
}

func (R *Residue) moleculeAtom(id int32) *Atom {
	if R.molecule == nil {
		return nil
	}
	return R.molecule.AtomByID(id)
}

//Remove takes A out of the residue. Nothing happens if A is not in it.
func (R *Residue) Remove(A *Atom) {
	if A.residue != R {
		return
	}
	for i, v := range R.atoms {
		if v == A {
			R.atoms = append(R.atoms[:i], R.atoms[i+1:]...)
			break
		}
	}
	A.residue = nil
	if m := R.Model(); m != nil {
		m.invalidate()
	}
}

//Next returns the residue after R in its polymer, or nil.
func (R *Residue) Next() *Residue {
	return R.next
}

//Previous returns the residue before R in its polymer, or nil.
func (R *Residue) Previous() *Residue {
	return R.previous
}

//SetNext makes N the residue after R, and R the residue before N. Any
//previous links of R and N in that direction are broken. N can be nil, which
//just unlinks R from its next residue. The two residues must be in the same
//molecule (or both in none), and the link can't close a cycle.
func (R *Residue) SetNext(N *Residue) error {
	if N == R {
		return molerr.New(molerr.InvariantViolation, "residue %s can't follow itself", R.ID)
	}
	if N != nil {
		if N.molecule != R.molecule {
			return molerr.New(molerr.InvariantViolation, "residues %s and %s are in different molecules", R.ID, N.ID)
		}
		for c := N; c != nil; c = c.next {
			if c == R {
				return molerr.New(molerr.InvariantViolation, "linking %s to %s makes a cycle", R.ID, N.ID)
			}
		}
	}
	if R.next != nil {
		R.next.previous = nil
	}
	if N != nil {
		if N.previous != nil {
			N.previous.next = nil
		}
		N.previous = R
	}
	R.next = N
	return nil
}

//SetPrevious makes P the residue before R. See SetNext.
func (R *Residue) SetPrevious(P *Residue) error {
	if P == nil {
		if R.previous != nil {
			R.previous.next = nil
			R.previous = nil
		}
		return nil
	}
	if P == R {
		return molerr.New(molerr.InvariantViolation, "residue %s can't precede itself", R.ID)
	}
	return P.SetNext(R)
}

//unlink breaks both links of the residue.
func (R *Residue) unlink() {
	if R.next != nil {
		R.next.previous = nil
		R.next = nil
	}
	if R.previous != nil {
		R.previous.next = nil
		R.previous = nil
	}
}

//Code returns the one-letter code of the residue, 'X' if it is not known.
func (R *Residue) Code() byte {
	return residue.Code(R.Name)
}

//FullName returns the description of the residue if it has one, the common
//name of its type, if known, or its name otherwise.
func (R *Residue) FullName() string {
	if R.Description != "" {
		return R.Description
	}
	if n, ok := fullNames[R.Name]; ok {
		return n
	}
	return R.Name
}

//Copy returns a copy of the residue, not linked to others or in any molecule.
//Its atoms are copies of the originals without bonds. The options can
//change the IDs of the residue and its atoms.
func (R *Residue) Copy(opts ...CopyOptions) *Residue {
	o := copyOptions(opts)
	id := R.ID
	if o.ResidueID != nil {
		id = o.ResidueID(id)
	}
	N := &Residue{ID: id, Name: R.Name, Number: R.Number, Insert: R.Insert, Description: R.Description}
	N.structure = structure{N}
	N.atoms = make([]*Atom, 0, len(R.atoms))
	for _, a := range R.atoms {
		c := a.Copy()
		if o.AtomID != nil {
			c.ID = o.AtomID(c.ID)
		}
		c.residue = N
		N.atoms = append(N.atoms, c)
	}
	return N
}

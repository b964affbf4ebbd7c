/*
 * molecule.go, part of gomol.
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
	"strings"

	"github.com/rmera/gomol/molerr"
)

//MolKind is the kind of a molecule, as given by the entity it belongs to.
type MolKind int

const (
	Polymer MolKind = iota
	Branched
	NonPolymer
	Water
)

//String returns the name of the kind as used in the entity category.
func (k MolKind) String() string {
	switch k {
	case Polymer:
		return "polymer"
	case Branched:
		return "branched"
	case NonPolymer:
		return "non-polymer"
	case Water:
		return "water"
	}
	return "?"
}

//ParseMolKind returns the kind for an entity type. Unknown types are non-polymers.
func ParseMolKind(s string) MolKind {
	switch strings.ToLower(s) {
	case "polymer":
		return Polymer
	case "branched":
		return Branched
	case "water":
		return Water
	}
	return NonPolymer
}

//Molecule is a chain of a polymer or branched polymer, a ligand or the set of
//waters of a chain. Polymer residues are kept in order. A non-polymer has a
//single residue.
type Molecule struct {
	ID         string //the author's chain id
	InternalID string //the label asym id
	Name       string
	EntityID   string
	EntityName string
	Sequence   string //declared one-letter sequence, for polymers
	Kind       MolKind
	Helices    [][]string //residue ids
	Strands    [][]string
	residues   []*Residue
	model      *Model
	structure
}

//NewMolecule returns a molecule of the given kind and ID, with the given residues.
//Polymer residues that are not linked yet get linked in the order given.
func NewMolecule(kind MolKind, id string, residues ...*Residue) (*Molecule, error) {
	M := &Molecule{ID: id, InternalID: id, Kind: kind}
	M.structure = structure{M}
	for _, r := range residues {
		if err := M.Add(r); err != nil {
			return nil, molerr.Decorate(err, "NewMolecule")
		}
	}
	return M, nil
}

func (M *Molecule) String() string {
	return fmt.Sprintf("<%s %s (%d residues)>", M.Kind, M.ID, len(M.residues))
}

//Model returns the model the molecule belongs to, or nil.
func (M *Molecule) Model() *Model {
	return M.model
}

//Residues returns the residues of the molecule that match all the queries,
//in order.
func (M *Molecule) Residues(q ...*Query) []*Residue {
	ret := make([]*Residue, 0, len(M.residues))
	for _, r := range M.residues {
		if matchAll(r, q) {
			ret = append(ret, r)
		}
	}
	return ret
}

//Residue returns the first residue matching the queries, or nil.
func (M *Molecule) Residue(q ...*Query) *Residue {
	for _, r := range M.residues {
		if matchAll(r, q) {
			return r
		}
	}
	return nil
}

//ResidueByID returns the residue with the given ID, or nil.
func (M *Molecule) ResidueByID(id string) *Residue {
	for _, r := range M.residues {
		if r.ID == id {
			return r
		}
	}
	return nil
}

//Atoms returns the atoms of the molecule that match all the queries.
func (M *Molecule) Atoms(q ...*Query) []*Atom {
	var ret []*Atom
	for _, r := range M.residues {
		for _, a := range r.atoms {
			if matchAll(a, q) {
				ret = append(ret, a)
			}
		}
	}
	return ret
}

//AtomByID returns the atom with the given ID, or nil.
func (M *Molecule) AtomByID(id int32) *Atom {
	for _, r := range M.residues {
		if a := r.AtomByID(id); a != nil {
			return a
		}
	}
	return nil
}

//Add appends the residue R to the molecule, taking it from the molecule it
//was in before. The residue ID must be unique in the model, and the IDs of
//its atoms unique in the molecule. In a polymer, R is linked after the last
//residue, unless one of them is already linked.
func (M *Molecule) Add(R *Residue) error {
	if R.molecule == M {
		return nil
	}
	if M.ResidueByID(R.ID) != nil || (M.model != nil && M.model.ResidueByID(R.ID) != nil) {
		return molerr.New(molerr.InvariantViolation, "there is already a residue %s", R.ID)
	}
	for _, a := range R.atoms {
		if M.AtomByID(a.ID) != nil {
			return molerr.New(molerr.InvariantViolation, "molecule %s already has an atom with ID %d", M.ID, a.ID)
		}
	}
	if R.molecule != nil {
		R.molecule.Remove(R)
	}
	var last *Residue
	if l := len(M.residues); l > 0 {
		last = M.residues[l-1]
	}
	R.molecule = M
	M.residues = append(M.residues, R)
	if (M.Kind == Polymer || M.Kind == Branched) && last != nil && last.next == nil && R.previous == nil {
		//can't fail, as last is the end of its chain.
		last.SetNext(R)
	}
	if M.model != nil {
		M.model.invalidate()
	}
	return nil
}

//Remove takes R out of the molecule, breaking its links to other residues.
func (M *Molecule) Remove(R *Residue) {
	if R.molecule != M {
		return
	}
	for i, v := range M.residues {
		if v == R {
			M.residues = append(M.residues[:i], M.residues[i+1:]...)
			break
		}
	}
	R.unlink()
	R.molecule = nil
	if M.model != nil {
		M.model.invalidate()
	}
}

//PresentSequence returns the one-letter codes of the residues actually in the molecule.
func (M *Molecule) PresentSequence() string {
	b := make([]byte, 0, len(M.residues))
	for _, r := range M.residues {
		b = append(b, r.Code())
	}
	return string(b)
}

//Copy returns a deep copy of the molecule, not in any model. Atoms lose their bonds.
func (M *Molecule) Copy(opts ...CopyOptions) *Molecule {
	o := copyOptions(opts)
	N := &Molecule{ID: M.ID, InternalID: M.InternalID, Name: M.Name, EntityID: M.EntityID,
		EntityName: M.EntityName, Sequence: M.Sequence, Kind: M.Kind}
	N.structure = structure{N}
	copied := make(map[*Residue]*Residue, len(M.residues))
	for _, r := range M.residues {
		c := r.Copy(o)
		c.molecule = N
		copied[r] = c
		N.residues = append(N.residues, c)
	}
	for _, r := range M.residues {
		if r.next != nil && copied[r.next] != nil {
			copied[r].next = copied[r.next]
			copied[r.next].previous = copied[r]
		}
	}
	rid := func(ids [][]string) [][]string {
		ret := make([][]string, 0, len(ids))
		for _, l := range ids {
			n := make([]string, len(l))
			for i, id := range l {
				if o.ResidueID != nil {
					id = o.ResidueID(id)
				}
				n[i] = id
			}
			ret = append(ret, n)
		}
		return ret
	}
	N.Helices = rid(M.Helices)
	N.Strands = rid(M.Strands)
	return N
}

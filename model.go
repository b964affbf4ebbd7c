/*
 * model.go, part of gomol.
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
	"sync"

	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/molerr"
)

//MissingResidue is a residue of a polymer that was not modeled.
type MissingResidue struct {
	Chain  string
	Name   string
	Number int32
	Insert byte
}

//MissingAtom is an atom of a modeled residue that was not modeled.
type MissingAtom struct {
	Chain       string
	ResidueName string
	Number      int32
	Insert      byte
	Name        string
}

//Missing holds what the file says is part of the structure but has no coordinates.
type Missing struct {
	Residues []MissingResidue
	Atoms    []MissingAtom
}

//Model is one set of coordinates for the molecules of a structure.
type Model struct {
	Number       int
	Missing      Missing
	Assemblies   []*Assembly
	Operators    map[string]dict.Operator
	FromAssembly string //the assembly the model was generated from, if any
	molecules    []*Molecule
	mu           sync.Mutex
	gen          uint64
	index        *grid
	byID         map[int32][]*Atom
	byIDGen      uint64
	structure
}

//NewModel returns a model with number 1 and the given molecules.
func NewModel(mols ...*Molecule) (*Model, error) {
	M := &Model{Number: 1}
	M.structure = structure{M}
	for _, m := range mols {
		if err := M.Add(m); err != nil {
			return nil, molerr.Decorate(err, "NewModel")
		}
	}
	return M, nil
}

func (M *Model) String() string {
	return fmt.Sprintf("<Model %d (%d molecules)>", M.Number, len(M.molecules))
}

//Add puts the molecule m in the model, taking it from the model it was
//in before. Residue IDs must stay unique in the model.
func (M *Model) Add(m *Molecule) error {
	if m.model == M {
		return nil
	}
	for _, r := range m.residues {
		if M.ResidueByID(r.ID) != nil {
			return molerr.New(molerr.InvariantViolation, "model %d already has a residue %s", M.Number, r.ID)
		}
	}
	if m.model != nil {
		m.model.Remove(m)
	}
	m.model = M
	M.molecules = append(M.molecules, m)
	M.invalidate()
	return nil
}

//Remove takes m out of the model.
func (M *Model) Remove(m *Molecule) {
	if m.model != M {
		return
	}
	for i, v := range M.molecules {
		if v == m {
			M.molecules = append(M.molecules[:i], M.molecules[i+1:]...)
			break
		}
	}
	m.model = nil
	M.invalidate()
}

func (M *Model) ofKind(kinds []MolKind, q []*Query) []*Molecule {
	var ret []*Molecule
	for _, m := range M.molecules {
		ok := len(kinds) == 0
		for _, k := range kinds {
			ok = ok || m.Kind == k
		}
		if ok && matchAll(m, q) {
			ret = append(ret, m)
		}
	}
	return ret
}

//Molecules returns the molecules of the model matching all the queries.
func (M *Model) Molecules(q ...*Query) []*Molecule {
	return M.ofKind(nil, q)
}

//Molecule returns the first molecule matching all the queries, or nil.
func (M *Model) Molecule(q ...*Query) *Molecule {
	if ms := M.ofKind(nil, q); len(ms) > 0 {
		return ms[0]
	}
	return nil
}

//Polymers returns the polymer chains of the model.
func (M *Model) Polymers(q ...*Query) []*Molecule {
	return M.ofKind([]MolKind{Polymer}, q)
}

//Branched returns the branched polymers (mostly carbohydrates) of the model.
func (M *Model) Branched(q ...*Query) []*Molecule {
	return M.ofKind([]MolKind{Branched}, q)
}

//NonPolymers returns the ligands of the model.
func (M *Model) NonPolymers(q ...*Query) []*Molecule {
	return M.ofKind([]MolKind{NonPolymer}, q)
}

//Waters returns the water molecules of the model.
func (M *Model) Waters(q ...*Query) []*Molecule {
	return M.ofKind([]MolKind{Water}, q)
}

//Residues returns the residues of the polymers and branched polymers in
//the model that match all the queries.
func (M *Model) Residues(q ...*Query) []*Residue {
	var ret []*Residue
	for _, m := range M.ofKind([]MolKind{Polymer, Branched}, nil) {
		ret = append(ret, m.Residues(q...)...)
	}
	return ret
}

//ResidueByID returns the residue, of any molecule, with the given ID, or nil.
func (M *Model) ResidueByID(id string) *Residue {
	for _, m := range M.molecules {
		if r := m.ResidueByID(id); r != nil {
			return r
		}
	}
	return nil
}

//Atoms returns the atoms of the model matching all the queries.
func (M *Model) Atoms(q ...*Query) []*Atom {
	var ret []*Atom
	for _, m := range M.molecules {
		ret = append(ret, m.Atoms(q...)...)
	}
	return ret
}

//AtomByID returns the first atom with the given ID, or nil. IDs are unique
//only within each molecule.
func (M *Model) AtomByID(id int32) *Atom {
	if ats := M.AtomsByID(id); len(ats) > 0 {
		return ats[0]
	}
	return nil
}

//AtomsByID returns the atoms with the given ID, in molecule order. The
//lookup table is rebuilt after any change to the model.
func (M *Model) AtomsByID(id int32) []*Atom {
	M.mu.Lock()
	defer M.mu.Unlock()
	if M.byID == nil || M.byIDGen != M.gen {
		M.byID = make(map[int32][]*Atom)
		for _, a := range M.Atoms() {
			M.byID[a.ID] = append(M.byID[a.ID], a)
		}
		M.byIDGen = M.gen
	}
	return M.byID[id]
}

//Dehydrate removes all the water molecules from the model.
func (M *Model) Dehydrate() {
	for _, w := range M.Waters() {
		M.Remove(w)
	}
}

//Copy returns a deep copy of the model. Atoms lose their bonds. Assemblies and
//operators are shared with the original, as they are read-only.
func (M *Model) Copy(opts ...CopyOptions) *Model {
	N := &Model{Number: M.Number, FromAssembly: M.FromAssembly, Assemblies: M.Assemblies, Operators: M.Operators}
	N.structure = structure{N}
	N.Missing.Residues = append([]MissingResidue(nil), M.Missing.Residues...)
	N.Missing.Atoms = append([]MissingAtom(nil), M.Missing.Atoms...)
	for _, m := range M.molecules {
		c := m.Copy(opts...)
		c.model = N
		N.molecules = append(N.molecules, c)
	}
	return N
}

/*
 * assembly.go, part of gomol.
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

	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/molerr"
)

//Assembly metrics, as keys of Assembly.Metrics
const (
	DeltaEnergy       = "MORE"
	SurfaceArea       = "SSA (A^2)"
	BuriedSurfaceArea = "ABSA (A^2)"
)

//AssemblyGen is one step in the generation of an assembly: the operators in
//Expression applied to the molecules with the internal IDs in Chains.
type AssemblyGen struct {
	Expression string
	Chains     []string
}

//Assembly is a biological assembly: a complex built by copying molecules of
//the asymmetric unit and moving the copies.
type Assembly struct {
	ID              string
	Details         string
	Method          string
	OligomericCount int
	Software        string
	Metrics         map[string]float64
	Gens            []AssemblyGen
}

//Assembly returns a new model with the assembly with the given ID. Every
//molecule named in each generation step is copied once per operator
//tuple of the step, and the copy moved by the operator. Copies get the
//internal ID of the original followed by "-" and the number of the copy, but
//keep the residue IDs of the original, so in an assembly residue IDs are
//unique only within each molecule. Copied atoms have no bonds.
func (M *Model) Assembly(id string) (*Model, error) {
	var asm *Assembly
	for _, a := range M.Assemblies {
		if a.ID == id {
			asm = a
			break
		}
	}
	if asm == nil {
		return nil, molerr.New(molerr.InvalidInput, "Assembly: no assembly with ID %s", id)
	}
	N := &Model{Number: M.Number, FromAssembly: id, Assemblies: M.Assemblies, Operators: M.Operators}
	N.structure = structure{N}
	copies := make(map[string]int)
	for _, g := range asm.Gens {
		tuples, err := dict.ExpandOperators(g.Expression)
		if err != nil {
			return nil, molerr.Decorate(err, "Assembly")
		}
		want := make(map[string]bool, len(g.Chains))
		for _, c := range g.Chains {
			want[c] = true
		}
		for _, t := range tuples {
			op, err := dict.Compose(M.Operators, t)
			if err != nil {
				return nil, molerr.Decorate(err, "Assembly")
			}
			for _, m := range M.molecules {
				if !want[m.InternalID] {
					continue
				}
				c := m.Copy()
				copies[m.InternalID]++
				c.InternalID = fmt.Sprintf("%s-%d", m.InternalID, copies[m.InternalID])
				for _, a := range c.Atoms() {
					p := op.Apply(a.Location())
					a.X, a.Y, a.Z = p.X, p.Y, p.Z
					a.trim(DefaultTrim)
				}
				c.model = N
				N.molecules = append(N.molecules, c)
			}
		}
	}
	return N, nil
}

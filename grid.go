/*
 * grid.go, part of gomol.
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
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

//below this number of atoms, sphere queries just go through every atom.
const linearMax = 64

type cellKey [3]int

//grid is a uniform spatial index. Once built it is never modified, so
//any number of goroutines can query it.
type grid struct {
	size  float64
	gen   uint64
	cells map[cellKey][]*Atom
}

func keyFor(p r3.Vec, size float64) cellKey {
	return cellKey{int(math.Floor(p.X / size)), int(math.Floor(p.Y / size)), int(math.Floor(p.Z / size))}
}

func newGrid(ats []*Atom, size float64, gen uint64) *grid {
	g := &grid{size: size, gen: gen, cells: make(map[cellKey][]*Atom)}
	for _, a := range ats {
		k := keyFor(a.Location(), size)
		g.cells[k] = append(g.cells[k], a)
	}
	return g
}

//around returns the atoms in the cells that may contain points within r of p.
//When r is not larger than the cell size, that is the 27 cells around p.
func (g *grid) around(p r3.Vec, r float64) []*Atom {
	n := int(math.Ceil(r / g.size))
	if n < 1 {
		n = 1
	}
	c := keyFor(p, g.size)
	var ret []*Atom
	for i := c[0] - n; i <= c[0]+n; i++ {
		for j := c[1] - n; j <= c[1]+n; j++ {
			for k := c[2] - n; k <= c[2]+n; k++ {
				ret = append(ret, g.cells[cellKey{i, j, k}]...)
			}
		}
	}
	return ret
}

//usable tells whether the grid is fine for queries of radius r.
func (g *grid) usable(r float64, gen uint64) bool {
	return g != nil && g.gen == gen && r <= 2*g.size && r >= g.size/4
}

//invalidate drops the spatial index. Any change of coordinates in the model,
//or of its atoms, must call it.
func (M *Model) invalidate() {
	M.mu.Lock()
	M.gen++
	M.index = nil
	M.mu.Unlock()
}

//BuildIndex builds the spatial index of the model, with the given cell size.
//Sphere queries build the index when needed, but they can run concurrently
//only after it exists, so concurrent callers should build it first, with
//a cell size not smaller than half the largest radius they will use.
func (M *Model) BuildIndex(cellsize float64) {
	if cellsize <= 0 {
		cellsize = 1
	}
	M.mu.Lock()
	defer M.mu.Unlock()
	M.index = newGrid(M.Atoms(), cellsize, M.gen)
}

func (M *Model) indexFor(r float64) *grid {
	M.mu.Lock()
	defer M.mu.Unlock()
	if M.index.usable(r, M.gen) {
		return M.index
	}
	if M.index != nil && M.index.gen == M.gen && r < M.index.size/4 {
		return M.index //a big grid is still correct, only slower.
	}
	size := r
	if size <= 0 {
		size = 1
	}
	M.index = newGrid(M.Atoms(), size, M.gen)
	return M.index
}

//AtomsInSphere returns the atoms of the model, matching the queries, within radius of p.
func (M *Model) AtomsInSphere(p r3.Vec, radius float64, q ...*Query) []*Atom {
	var cand []*Atom
	if all := M.Atoms(); len(all) < linearMax {
		cand = all
	} else {
		cand = M.indexFor(radius).around(p, radius)
	}
	var ret []*Atom
	for _, a := range cand {
		if a.DistanceTo(p) <= radius && matchAll(a, q) {
			ret = append(ret, a)
		}
	}
	return ret
}

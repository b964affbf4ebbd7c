/*
 * graph.go, part of gomol.
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

//Package chemgraph offers a gonum graph view of the bonds of a gomol structure,
//so the gonum graph algorithms can be used on it.
package chemgraph

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	mol "github.com/rmera/gomol"
	"github.com/rmera/gomol/molerr"
)

//Graph is an undirected, weighted graph with one node per atom of a structure and
//one edge per bond between two of those atoms. Node IDs are the positions of the
//atoms in the structure, since atom IDs need not be unique (i.e. in assemblies).
//The graph is a snapshot: later changes to the bonds are not reflected.
type Graph struct {
	*simple.WeightedUndirectedGraph
	atoms []*mol.Atom
	ids   map[*mol.Atom]int64
}

//Distance is the default weight function, the bond length.
func Distance(b *mol.Bond) float64 {
	return b.Dist
}

//Unit gives every bond the weight 1, so path weights count bonds.
func Unit(b *mol.Bond) float64 {
	return 1
}

//New returns the bond graph of the atoms in s. Bonds to atoms outside s are
//ignored. If weight is nil, Distance is used.
func New(s mol.Atomer, weight func(*mol.Bond) float64) *Graph {
	if weight == nil {
		weight = Distance
	}
	ats := s.Atoms()
	G := &Graph{
		WeightedUndirectedGraph: simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		atoms:                   ats,
		ids:                     make(map[*mol.Atom]int64, len(ats)),
	}
	for i, a := range ats {
		G.ids[a] = int64(i)
		G.AddNode(simple.Node(i))
	}
	for i, a := range ats {
		for _, b := range a.Bonds {
			j, ok := G.ids[b.Cross(a)]
			if !ok || j <= int64(i) {
				continue //each bond once
			}
			G.SetWeightedEdge(G.NewWeightedEdge(simple.Node(i), simple.Node(j), weight(b)))
		}
	}
	return G
}

//Atom returns the atom for the node id, or nil.
func (G *Graph) Atom(id int64) *mol.Atom {
	if id < 0 || id >= int64(len(G.atoms)) {
		return nil
	}
	return G.atoms[id]
}

//NodeOf returns the node id of the atom A, and false if A is not in the graph.
func (G *Graph) NodeOf(A *mol.Atom) (int64, bool) {
	id, ok := G.ids[A]
	return id, ok
}

//toAtoms translates nodes to atoms, in the order of the structure.
func (G *Graph) toAtoms(nodes []graph.Node, sorted bool) []*mol.Atom {
	if sorted {
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	}
	ret := make([]*mol.Atom, 0, len(nodes))
	for _, n := range nodes {
		ret = append(ret, G.atoms[n.ID()])
	}
	return ret
}

//Components returns the sets of atoms connected by bonds. Each set keeps the
//order of the structure, and the sets are sorted by their first atom.
func (G *Graph) Components() [][]*mol.Atom {
	cc := topo.ConnectedComponents(G)
	ret := make([][]*mol.Atom, 0, len(cc))
	for _, c := range cc {
		ret = append(ret, G.toAtoms(c, true))
	}
	sort.Slice(ret, func(i, j int) bool { return G.ids[ret[i][0]] < G.ids[ret[j][0]] })
	return ret
}

//ShortestPath returns the atoms in the lightest bond path from A to B, both included,
//and the total weight of the path. It returns an InvalidInput error if an atom is
//not in the graph, and a nil path with an infinite weight if B can't be reached from A.
func (G *Graph) ShortestPath(A, B *mol.Atom) ([]*mol.Atom, float64, error) {
	from, ok1 := G.ids[A]
	to, ok2 := G.ids[B]
	if !ok1 || !ok2 {
		return nil, 0, molerr.New(molerr.InvalidInput, "chemgraph.ShortestPath: atom not in the graph")
	}
	p := path.DijkstraFrom(G.Node(from), G)
	nodes, w := p.To(to)
	if nodes == nil {
		return nil, w, nil
	}
	return G.toAtoms(nodes, false), w, nil
}

//Rings returns a cycle basis of the graph, each ring as its atoms in ring order.
//For a molecule without fused ring systems, that is just the set of its rings.
func (G *Graph) Rings() [][]*mol.Atom {
	cycles := topo.UndirectedCyclesIn(G)
	ret := make([][]*mol.Atom, 0, len(cycles))
	for _, c := range cycles {
		if len(c) > 1 && c[0].ID() == c[len(c)-1].ID() {
			c = c[:len(c)-1]
		}
		ret = append(ret, G.toAtoms(c, false))
	}
	return ret
}

/*
 * graph_test.go, part of gomol.
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

package chemgraph

import (
	"errors"
	"math"
	"testing"

	mol "github.com/rmera/gomol"
)

//phenol returns a residue with a phenol ring and an unbonded oxygen.
func phenol(Te *testing.T) (*mol.Residue, []*mol.Atom) {
	ats := make([]*mol.Atom, 0, 8)
	for i := 0; i < 6; i++ {
		a := float64(i) * math.Pi / 3
		ats = append(ats, mol.NewAtom("C", 1.39*math.Cos(a), 1.39*math.Sin(a), 0, int32(i+1), "C"+string(rune('1'+i))))
	}
	ats = append(ats, mol.NewAtom("O", 2.75, 0, 0, 7, "OH"))
	ats = append(ats, mol.NewAtom("O", 8, 8, 8, 8, "OW"))
	bond := func(a, b *mol.Atom) {
		if _, err := a.Bond(b, mol.Covalent); err != nil {
			Te.Fatal(err)
		}
	}
	for i := 0; i < 6; i++ {
		bond(ats[i], ats[(i+1)%6])
	}
	bond(ats[0], ats[6])
	r, err := mol.NewResidue("A.1", "PHN", ats...)
	if err != nil {
		Te.Fatal(err)
	}
	return r, ats
}

func TestComponents(Te *testing.T) {
	r, ats := phenol(Te)
	G := New(r, nil)
	if G.Nodes().Len() != 8 {
		Te.Errorf("%d nodes", G.Nodes().Len())
	}
	cc := G.Components()
	if len(cc) != 2 || len(cc[0]) != 7 || len(cc[1]) != 1 || cc[1][0] != ats[7] {
		Te.Fatalf("components %v", cc)
	}
	for i, a := range cc[0] {
		if a != ats[i] {
			Te.Errorf("component order: %v at %d", a, i)
		}
	}
}

func TestShortestPath(Te *testing.T) {
	r, ats := phenol(Te)
	G := New(r, Unit)
	p, w, err := G.ShortestPath(ats[6], ats[3])
	if err != nil {
		Te.Fatal(err)
	}
	if w != 4 || len(p) != 5 || p[0] != ats[6] || p[4] != ats[3] {
		Te.Errorf("path %v weight %v", p, w)
	}
	p, w, err = G.ShortestPath(ats[0], ats[7])
	if err != nil || p != nil || !math.IsInf(w, 1) {
		Te.Errorf("unreachable atom gave %v %v %v", p, w, err)
	}
	stray := mol.NewAtom("N", 0, 0, 0, 99, "N")
	if _, _, err := G.ShortestPath(ats[0], stray); !errors.Is(err, mol.ErrInvalidInput) {
		Te.Errorf("atom outside the graph gave %v", err)
	}
	G = New(r, nil)
	_, w, _ = G.ShortestPath(ats[0], ats[1])
	if math.Abs(w-1.39) > 1e-9 {
		Te.Errorf("bond length weight %v", w)
	}
}

func TestRings(Te *testing.T) {
	r, ats := phenol(Te)
	rings := New(r, nil).Rings()
	if len(rings) != 1 || len(rings[0]) != 6 {
		Te.Fatalf("rings %v", rings)
	}
	in := map[*mol.Atom]bool{}
	for _, a := range rings[0] {
		in[a] = true
	}
	for _, a := range ats[:6] {
		if !in[a] {
			Te.Errorf("%v not in the ring", a)
		}
	}
	if id, ok := New(r, nil).NodeOf(ats[6]); !ok || id != 6 {
		Te.Errorf("node of OH: %d %v", id, ok)
	}
}

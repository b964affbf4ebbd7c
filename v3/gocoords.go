/*
 * gocoords.go, part of gomol.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package v3

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

const appzero float64 = 0.000000000001 //used to correct floating point
//errors. Everything equal or less than this is considered zero.

//SwapVecs exchanges the vectors i and j of F.
func (F *Matrix) SwapVecs(i, j int) {
	if i >= F.NVecs() || j >= F.NVecs() {
		panic(ErrShape)
	}
	vi, vj := F.Vec(i), F.Vec(j)
	F.SetVec(i, vj)
	F.SetVec(j, vi)
}

//AddVec adds the point vec to each vector of A, putting the result on the receiver.
//F and A can be the same Matrix.
func (F *Matrix) AddVec(A *Matrix, vec r3.Vec) {
	ar := A.NVecs()
	if ar != F.NVecs() {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		F.SetVec(i, r3.Add(A.Vec(i), vec))
	}
}

//SubVec subtracts the point vec to each vector of A, putting the result on the receiver.
func (F *Matrix) SubVec(A *Matrix, vec r3.Vec) {
	F.AddVec(A, r3.Scale(-1, vec))
}

//SomeVecs puts in the receiver all the ith vectors of A, where i are the
//numbers in clist. The vectors are in the same order as in clist.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	ar := A.NVecs()
	if F.NVecs() != len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		if val >= ar {
			panic(ErrNotEnoughElements)
		}
		F.SetVec(key, A.Vec(val))
	}
}

//SetVecs sets the vectors with index n = each value on clist, in the receiver, to the
//nth vector of A.
func (F *Matrix) SetVecs(A *Matrix, clist []int) {
	if A.NVecs() < len(clist) {
		panic(ErrShape)
	}
	fr := F.NVecs()
	for key, val := range clist {
		if val >= fr {
			panic(ErrNotEnoughElements)
		}
		F.SetVec(val, A.Vec(key))
	}
}

//Vecs returns the vectors of F as points.
func (F *Matrix) Vecs() []r3.Vec {
	r := F.NVecs()
	ret := make([]r3.Vec, r)
	for i := range ret {
		ret[i] = F.Vec(i)
	}
	return ret
}

//String returns a neat string representation of a Matrix
func (F *Matrix) String() string {
	r := F.NVecs()
	v := make([]string, 0, r+2)
	v = append(v, "\n[")
	for i := 0; i < r; i++ {
		p := F.Vec(i)
		sep := " "
		if i == 0 {
			sep = ""
		}
		v = append(v, fmt.Sprintf("%s%6.2f %6.2f %6.2f\n", sep, p.X, p.Y, p.Z))
	}
	v[len(v)-1] = strings.TrimSuffix(v[len(v)-1], "\n")
	v = append(v, " ]")
	return strings.Join(v, "")
}

//Round rounds x to the given number of decimal places, half away from zero.
//It returns x unchanged for places < 0 and for non-finite values. Negative
//zeros are turned into zeros.
func Round(x float64, places int) float64 {
	if places < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	pow := math.Pow(10, float64(places))
	r := math.Round(x*pow) / pow
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return x //x*pow overflowed, there is nothing to round
	}
	if r == 0 {
		return 0
	}
	return r
}

//RoundVec rounds every coordinate of p.
func RoundVec(p r3.Vec, places int) r3.Vec {
	return r3.Vec{X: Round(p.X, places), Y: Round(p.Y, places), Z: Round(p.Z, places)}
}

//Round rounds every element of F in place.
func (F *Matrix) Round(places int) {
	r := F.NVecs()
	for i := 0; i < r; i++ {
		F.SetVec(i, RoundVec(F.Vec(i), places))
	}
}

//KronekerDelta is a naive implementation of the kroneker delta function.
func KronekerDelta(a, b, epsilon float64) float64 {
	if epsilon < 0 {
		epsilon = appzero
	}
	if math.Abs(a-b) <= epsilon {
		return 1
	}
	return 0
}

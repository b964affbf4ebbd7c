/*
 * v3_test.go, part of gomol.
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

package v3

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/gomol/molerr"
)

func near(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

func alanine() *Matrix {
	A, err := NewMatrix([]float64{0, 0, 0, 1.5, 0, 0, 1.5, 1.5, 0, 3, 0, 0, 3, -1.5, 0})
	if err != nil {
		panic(err)
	}
	return A
}

func TestNewMatrix(Te *testing.T) {
	if _, err := NewMatrix([]float64{1, 2}); !errors.Is(err, molerr.ErrInvalidInput) {
		Te.Errorf("2 numbers gave %v", err)
	}
	A := alanine()
	if A.NVecs() != 5 {
		Te.Errorf("%d vecs", A.NVecs())
	}
	v := A.VecView(2)
	v.Set(0, 0, 7)
	if A.At(2, 0) != 7 {
		Te.Errorf("view does not share data")
	}
	A.SwapVecs(0, 2)
	if A.Vec(0) != (r3.Vec{X: 7, Y: 1.5}) || A.Vec(2) != (r3.Vec{}) {
		Te.Errorf("swap %v", A)
	}
}

func TestSomeVecs(Te *testing.T) {
	A := alanine()
	B := Zeros(2)
	B.SomeVecs(A, []int{4, 1})
	if B.Vec(0) != (r3.Vec{X: 3, Y: -1.5}) || B.Vec(1) != (r3.Vec{X: 1.5}) {
		Te.Errorf("SomeVecs gave %v", B)
	}
	B.SetVec(0, r3.Vec{X: 1, Y: 1, Z: 1})
	A.SetVecs(B, []int{4, 1})
	if A.Vec(4) != (r3.Vec{X: 1, Y: 1, Z: 1}) {
		Te.Errorf("SetVecs gave %v", A)
	}
	A.AddVec(A, r3.Vec{Z: 2})
	A.SubVec(A, r3.Vec{Z: 1})
	if A.At(0, 2) != 1 || A.At(3, 2) != 1 {
		Te.Errorf("AddVec/SubVec gave %v", A)
	}
}

func TestRound(Te *testing.T) {
	cases := []struct {
		in     float64
		places int
		want   float64
	}{
		{1.23456, 2, 1.23},
		{-0.0000001, 3, 0},
		{2.5, 0, 3},
		{-2.5, 0, -3},
		{1e300, 12, 1e300},
	}
	for _, c := range cases {
		if got := Round(c.in, c.places); got != c.want {
			Te.Errorf("Round(%g, %d) = %g, want %g", c.in, c.places, got, c.want)
		}
	}
	if r := Round(-0.0000001, 3); math.Signbit(r) {
		Te.Errorf("negative zero")
	}
	if !math.IsNaN(Round(math.NaN(), 2)) {
		Te.Errorf("NaN not kept")
	}
}

func TestCentroid(Te *testing.T) {
	A := alanine()
	if c := Centroid(A); !near(c, r3.Vec{X: 1.8, Y: 0}, 1e-12) {
		Te.Errorf("centroid %v", c)
	}
	w := []float64{14.007, 12.011, 12.011, 12.011, 15.999}
	c, err := WeightedCentroid(A, w)
	if err != nil {
		Te.Fatal(err)
	}
	if !near(c, r3.Vec{X: 1.818, Y: -0.091}, 1e-3) {
		Te.Errorf("center of mass %v", c)
	}
	if _, err := WeightedCentroid(A, make([]float64, 5)); !errors.Is(err, molerr.ErrArithmetic) {
		Te.Errorf("zero weights gave %v", err)
	}
}

func TestAxisAngle(Te *testing.T) {
	R, err := AxisAngle(math.Pi/2, r3.Vec{Y: 3})
	if err != nil {
		Te.Fatal(err)
	}
	if p := R.MulVec(r3.Vec{X: 1.5}); !near(p, r3.Vec{Z: -1.5}, 1e-12) {
		Te.Errorf("rotated point %v", p)
	}
	if _, err := AxisAngle(1, r3.Vec{}); !errors.Is(err, molerr.ErrArithmetic) {
		Te.Errorf("zero axis gave %v", err)
	}
}

func TestKabsch(Te *testing.T) {
	A := alanine()
	R, err := AxisAngle(0.7, r3.Vec{X: 1, Y: 2, Z: -1})
	if err != nil {
		Te.Fatal(err)
	}
	B := Zeros(A.NVecs())
	B.Transform(A, R, r3.Vec{X: 4, Y: -3, Z: 10})
	rmsd, err := RMSD(A, B)
	if err != nil {
		Te.Fatal(err)
	}
	if rmsd < 1 {
		Te.Errorf("structures too close before superposition: %g", rmsd)
	}
	s, err := Super(A, B, nil, nil)
	if err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < s.NVecs(); i++ {
		if !near(s.Vec(i), B.Vec(i), 1e-9) {
			Te.Errorf("vec %d is %v, want %v", i, s.Vec(i), B.Vec(i))
		}
	}
	//a mirror image can't be superimposed by a proper rotation.
	M := Zeros(A.NVecs())
	M.Copy(A)
	M.SetVec(2, r3.Vec{X: 1.5, Y: 1.5, Z: 1})
	N := Zeros(M.NVecs())
	N.Copy(M)
	for i := 0; i < N.NVecs(); i++ {
		N.Set(i, 2, -N.At(i, 2))
	}
	Rm, _, _, err := RotatorTranslatorToSuper(M, N, nil, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if d := Rm.Det(); math.Abs(d-1) > 1e-9 {
		Te.Errorf("rotation determinant %g", d)
	}
	if _, err := RMSD(A, Zeros(2)); !errors.Is(err, molerr.ErrInvalidInput) {
		Te.Errorf("mismatched sets gave %v", err)
	}
}

func TestSuperRMSD(Te *testing.T) {
	A := alanine()
	B := Zeros(A.NVecs())
	B.Copy(A)
	B.SetVec(4, r3.Add(B.Vec(4), r3.Vec{Z: 1}))
	r, err := SuperRMSD(A, A, nil, nil)
	if err != nil || r > 1e-9 {
		Te.Errorf("self RMSD %g, %v", r, err)
	}
	plain, _ := RMSD(A, B)
	if math.Abs(plain-math.Sqrt(1.0/5)) > 1e-12 {
		Te.Errorf("plain RMSD %g", plain)
	}
	r, err = SuperRMSD(A, B, nil, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if r > plain+1e-12 {
		Te.Errorf("superposition made things worse: %g > %g", r, plain)
	}
}

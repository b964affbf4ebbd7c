/*
 * geometry.go, part of gomol.
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
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/gomol/molerr"
)

//Centroid returns the geometric center of the vectors in F.
func Centroid(F *Matrix) r3.Vec {
	var c r3.Vec
	n := F.NVecs()
	if n == 0 {
		return c
	}
	for i := 0; i < n; i++ {
		c = r3.Add(c, F.Vec(i))
	}
	return r3.Scale(1/float64(n), c)
}

//WeightedCentroid returns the center of the vectors in F weighted by w, for
//instance, the center of mass if w are the masses. A nil w gives the geometric
//center. It returns an error if the weights add up to zero.
func WeightedCentroid(F *Matrix, w []float64) (r3.Vec, error) {
	if w == nil {
		return Centroid(F), nil
	}
	n := F.NVecs()
	if len(w) != n {
		return r3.Vec{}, molerr.New(molerr.InvalidInput, "%d weights for %d vectors", len(w), n)
	}
	var c r3.Vec
	var total float64
	for i := 0; i < n; i++ {
		c = r3.Add(c, r3.Scale(w[i], F.Vec(i)))
		total += w[i]
	}
	if total == 0 {
		return r3.Vec{}, molerr.New(molerr.Arithmetic, "weights add up to zero")
	}
	return r3.Scale(1/total, c), nil
}

//AxisAngle returns the matrix for a counterclockwise rotation of angle radians
//around axis, which doesn't need to be normalized.
func AxisAngle(angle float64, axis r3.Vec) (*r3.Mat, error) {
	if r3.Norm(axis) <= appzero {
		return nil, molerr.New(molerr.Arithmetic, "rotation axis has zero length")
	}
	return r3.NewRotation(angle, r3.Unit(axis)).Mat(), nil
}

//Transform puts in the receiver the vectors of A rotated by R and then
//translated by t. F and A can be the same Matrix.
func (F *Matrix) Transform(A *Matrix, R *r3.Mat, t r3.Vec) {
	n := A.NVecs()
	if F.NVecs() != n {
		panic(ErrShape)
	}
	for i := 0; i < n; i++ {
		F.SetVec(i, r3.Add(R.MulVec(A.Vec(i)), t))
	}
}

//Kabsch returns the rotation that, applied to the vectors of test, minimizes their
//RMSD to those of templa. Both sets must be already centered on the origin.
//Reflections are never returned.
func Kabsch(test, templa *Matrix) (*r3.Mat, error) {
	n := test.NVecs()
	if n != templa.NVecs() {
		return nil, molerr.New(molerr.InvalidInput, "%d vectors in test but %d in template", n, templa.NVecs())
	}
	if n == 0 {
		return nil, molerr.New(molerr.InvalidInput, "no vectors to superimpose")
	}
	H := mat.NewDense(3, 3, nil)
	H.Mul(test.Dense.T(), templa.Dense)
	var svd mat.SVD
	if ok := svd.Factorize(H, mat.SVDFull); !ok {
		return nil, molerr.New(molerr.Arithmetic, "singular value decomposition failed")
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	VU := mat.NewDense(3, 3, nil)
	VU.Mul(&V, U.T())
	d := 1.0
	if det(VU) < 0 {
		d = -1
	}
	D := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, d})
	R := r3.NewMat(nil)
	VD := mat.NewDense(3, 3, nil)
	VD.Mul(&V, D)
	R.Mul(VD, U.T())
	return R, nil
}

//RotatorTranslatorToSuper returns the rotation R, and the centers of test and templa
//(weighted with wtest and wtempla, which can be nil) such that R*(p-ctest)+ctempla
//superimposes every vector p of test onto templa.
func RotatorTranslatorToSuper(test, templa *Matrix, wtest, wtempla []float64) (R *r3.Mat, ctest, ctempla r3.Vec, err error) {
	ctest, err = WeightedCentroid(test, wtest)
	if err != nil {
		return nil, ctest, ctempla, molerr.Decorate(err, "RotatorTranslatorToSuper")
	}
	ctempla, err = WeightedCentroid(templa, wtempla)
	if err != nil {
		return nil, ctest, ctempla, molerr.Decorate(err, "RotatorTranslatorToSuper")
	}
	ctr := Zeros(test.NVecs())
	ctr.SubVec(test, ctest)
	ctm := Zeros(templa.NVecs())
	ctm.SubVec(templa, ctempla)
	R, err = Kabsch(ctr, ctm)
	if err != nil {
		return nil, ctest, ctempla, molerr.Decorate(err, "RotatorTranslatorToSuper")
	}
	return R, ctest, ctempla, nil
}

//Super returns a copy of test superimposed onto templa.
func Super(test, templa *Matrix, wtest, wtempla []float64) (*Matrix, error) {
	R, ctest, ctempla, err := RotatorTranslatorToSuper(test, templa, wtest, wtempla)
	if err != nil {
		return nil, molerr.Decorate(err, "Super")
	}
	ret := Zeros(test.NVecs())
	ret.SubVec(test, ctest)
	ret.Transform(ret, R, ctempla)
	return ret, nil
}

//RMSD returns the root mean square deviation between the vectors of test and templa,
//which are not moved.
func RMSD(test, templa *Matrix) (float64, error) {
	n := test.NVecs()
	if n != templa.NVecs() {
		return 0, molerr.New(molerr.InvalidInput, "%d vectors in test but %d in template", n, templa.NVecs())
	}
	if n == 0 {
		return 0, molerr.New(molerr.InvalidInput, "no vectors to compare")
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += r3.Norm2(r3.Sub(test.Vec(i), templa.Vec(i)))
	}
	return math.Sqrt(sum / float64(n)), nil
}

//SuperRMSD returns the RMSD between test and templa after superimposing them.
func SuperRMSD(test, templa *Matrix, wtest, wtempla []float64) (float64, error) {
	s, err := Super(test, templa, wtest, wtempla)
	if err != nil {
		return 0, molerr.Decorate(err, "SuperRMSD")
	}
	return RMSD(s, templa)
}

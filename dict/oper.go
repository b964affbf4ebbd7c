/*
 * oper.go, part of gomol.
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

package dict

import (
	"regexp"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/gomol/molerr"
)

//Operator is a rigid transformation as stored in pdbx_struct_oper_list:
//a 3x4 matrix in row-major order, the last column being the translation.
type Operator [12]float64

//Identity is the operator that changes nothing.
var Identity = Operator{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0}

//OperFields are the fields of pdbx_struct_oper_list that hold an Operator,
//in the same order.
var OperFields = []string{"matrix[1][1]", "matrix[1][2]", "matrix[1][3]", "vector[1]",
	"matrix[2][1]", "matrix[2][2]", "matrix[2][3]", "vector[2]",
	"matrix[3][1]", "matrix[3][2]", "matrix[3][3]", "vector[3]"}

//Homogeneous returns o as a 4x4 matrix acting on homogeneous coordinates.
func (o Operator) Homogeneous() *mat.Dense {
	H := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			H.Set(i, j, o[i*4+j])
		}
	}
	H.Set(3, 3, 1)
	return H
}

//operatorFrom takes the first three rows of a homogeneous matrix.
func operatorFrom(H mat.Matrix) Operator {
	var o Operator
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			o[i*4+j] = H.At(i, j)
		}
	}
	return o
}

//Rotation returns the 3x3 part of o.
func (o Operator) Rotation() *r3.Mat {
	return r3.NewMat([]float64{o[0], o[1], o[2], o[4], o[5], o[6], o[8], o[9], o[10]})
}

//Translation returns the last column of o.
func (o Operator) Translation() r3.Vec {
	return r3.Vec{X: o[3], Y: o[7], Z: o[11]}
}

//Then returns the operator that applies o first and then p.
func (o Operator) Then(p Operator) Operator {
	var H mat.Dense
	H.Mul(p.Homogeneous(), o.Homogeneous())
	return operatorFrom(&H)
}

//Apply transforms a point.
func (o Operator) Apply(v r3.Vec) r3.Vec {
	return r3.Add(o.Rotation().MulVec(v), o.Translation())
}

//Operators reads pdbx_struct_oper_list, by id.
func (d *DataDict) Operators() (map[string]Operator, error) {
	c := d.Category("pdbx_struct_oper_list")
	if c == nil {
		return map[string]Operator{}, nil
	}
	ret := make(map[string]Operator, c.Len())
	for i := range c.Rows {
		var op Operator
		for j, f := range OperFields {
			v, ok, err := d.Float("pdbx_struct_oper_list", i, f)
			if err != nil {
				return nil, err
			}
			if !ok {
				v = Identity[j]
			}
			op[j] = v
		}
		ret[c.Value(i, "id")] = op
	}
	return ret, nil
}

var reGroup = regexp.MustCompile(`\(([^()]*)\)`)

//ExpandOperators parses an oper_expression of pdbx_struct_assembly_gen
//and returns the tuples of operator ids it stands for. "1,2,5-7" gives
//one operator per tuple. "(1-3)(4,5)" is the Cartesian product of the
//groups; in each tuple the rightmost operator is applied first. Anything
//else is an UnsupportedFeature error.
func ExpandOperators(expr string) ([][]string, error) {
	expr = strings.TrimSpace(expr)
	var groups []string
	if strings.Contains(expr, "(") {
		for _, m := range reGroup.FindAllStringSubmatch(expr, -1) {
			groups = append(groups, m[1])
		}
		if reGroup.ReplaceAllString(expr, "") != "" {
			return nil, molerr.New(molerr.UnsupportedFeature, "operator expression %q", expr)
		}
	} else {
		groups = []string{expr}
	}
	ret := [][]string{nil}
	for _, g := range groups {
		ids, err := expandGroup(g)
		if err != nil {
			return nil, molerr.New(molerr.UnsupportedFeature, "operator expression %q: %s", expr, err.Error())
		}
		next := make([][]string, 0, len(ret)*len(ids))
		for _, prefix := range ret {
			for _, id := range ids {
				t := append(append([]string(nil), prefix...), id)
				next = append(next, t)
			}
		}
		ret = next
	}
	return ret, nil
}

func expandGroup(g string) ([]string, error) {
	var ret []string
	for _, item := range strings.Split(g, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, molerr.New(molerr.InvalidInput, "empty operator")
		}
		a, b, isRange := strings.Cut(item, "-")
		if !isRange {
			ret = append(ret, item)
			continue
		}
		from, err1 := strconv.Atoi(a)
		to, err2 := strconv.Atoi(b)
		if err1 != nil || err2 != nil || to < from {
			return nil, molerr.New(molerr.InvalidInput, "bad operator range %q", item)
		}
		for i := from; i <= to; i++ {
			ret = append(ret, strconv.Itoa(i))
		}
	}
	return ret, nil
}

//Compose returns the operator for a tuple from ExpandOperators.
func Compose(ops map[string]Operator, tuple []string) (Operator, error) {
	ret := Identity
	for i := len(tuple) - 1; i >= 0; i-- {
		op, ok := ops[tuple[i]]
		if !ok {
			return ret, molerr.New(molerr.InvariantViolation, "operator %s is not in pdbx_struct_oper_list", tuple[i])
		}
		ret = ret.Then(op)
	}
	return ret, nil
}

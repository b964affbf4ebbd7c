/*
 * geometric.go, part of gomol.
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

package mol

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/gomol/molerr"
	v3 "github.com/rmera/gomol/v3"
)

//DefaultTrim is the number of decimal places coordinates are rounded to
//after every geometric operation, unless something else is requested.
const DefaultTrim = 12

//trimCoord is the only place where coordinates get rounded. A negative
//number of places leaves x untouched.
func trimCoord(x float64, places int) float64 {
	if places < 0 {
		return x
	}
	return v3.Round(x, places)
}

func trimArg(trim []int) int {
	if len(trim) == 0 {
		return DefaultTrim
	}
	return trim[0]
}

//Deg2Rad converts degrees to radians.
func Deg2Rad(f float64) float64 {
	return f * math.Pi / 180
}

//Rad2Deg converts radians to degrees.
func Rad2Deg(f float64) float64 {
	return f * 180 / math.Pi
}

//Dihedral returns the dihedral angle, in radians, between the planes ABC and BCD.
func Dihedral(a, b, c, d *Atom) float64 {
	b1 := r3.Sub(b.Location(), a.Location())
	b2 := r3.Sub(c.Location(), b.Location())
	b3 := r3.Sub(d.Location(), c.Location())
	n1 := r3.Cross(b1, b2)
	n2 := r3.Cross(b2, b3)
	x := r3.Dot(n1, n2)
	y := r3.Dot(r3.Cross(n1, n2), r3.Unit(b2))
	return math.Atan2(y, x)
}

//RotateAbout rotates s by angle radians around the axis that goes through the points
//p1 and p2. Looking from p2 towards p1, the rotation is counterclockwise.
func RotateAbout(s Atomer, p1, p2 r3.Vec, angle float64, trim ...int) error {
	R, err := v3.AxisAngle(angle, r3.Sub(p2, p1))
	if err != nil {
		return molerr.Decorate(err, "RotateAbout")
	}
	Translate(s, r3.Scale(-1, p1), -1)
	Transform(s, R, -1)
	Translate(s, p1, trim...)
	return nil
}

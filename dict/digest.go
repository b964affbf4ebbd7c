/*
 * digest.go, part of gomol.
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
	"math"
	"strconv"

	"github.com/zeebo/blake3"

	"github.com/rmera/gomol/molerr"
)

//Digest returns a BLAKE3 hash of the content of d: category names, field
//names and values, in order. Two DataDicts with the same digest are equal
//value by value. The block name is not included.
func Digest(d *DataDict) [32]byte {
	h := blake3.New()
	sep := []byte{0}
	for _, c := range d.Categories() {
		h.Write([]byte(c.Name))
		h.Write(sep)
		for _, f := range c.Fields {
			h.Write([]byte(f))
			h.Write(sep)
		}
		for _, r := range c.Rows {
			h.Write([]byte{1})
			for _, v := range r {
				h.Write([]byte(v))
				h.Write(sep)
			}
		}
		h.Write([]byte{2})
	}
	var ret [32]byte
	copy(ret[:], h.Sum(nil))
	return ret
}

//SameValue compares two stored values. Sentinels are all equivalent, as
//the formats differ in which one they can represent. Numbers are equal if
//they differ by at most tol.
func SameValue(a, b string, tol float64) bool {
	if a == b {
		return true
	}
	if IsSentinel(a) || IsSentinel(b) {
		return IsSentinel(a) && IsSentinel(b)
	}
	if !IsNumber(a) || !IsNumber(b) {
		return false
	}
	fa, _ := strconv.ParseFloat(a, 64)
	fb, _ := strconv.ParseFloat(b, 64)
	return math.Abs(fa-fb) <= tol
}

//Equivalent compares the categories present in both a and b. Rows are
//compared in order, and within a row every field either side has; a
//field one side lacks counts as "?". The first difference is returned as
//an InvariantViolation error that names its category, row and field.
func Equivalent(a, b *DataDict, tol float64) error {
	for _, ca := range a.Categories() {
		cb := b.Category(ca.Name)
		if cb == nil {
			continue
		}
		if len(ca.Rows) != len(cb.Rows) {
			return molerr.InEntry(molerr.InvariantViolation, ca.Name, -1, "", "%d rows against %d", len(ca.Rows), len(cb.Rows))
		}
		fields := append([]string(nil), ca.Fields...)
		for _, f := range cb.Fields {
			if !ca.HasField(f) {
				fields = append(fields, f)
			}
		}
		for i := range ca.Rows {
			for _, f := range fields {
				va, vb := ca.Value(i, f), cb.Value(i, f)
				if !SameValue(va, vb, tol) {
					return molerr.InEntry(molerr.InvariantViolation, ca.Name, i, f, "%q against %q", va, vb)
				}
			}
		}
	}
	return nil
}

/*
 * query.go, part of gomol.
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
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/rmera/gomol/molerr"
)

//Op is a comparison operator for numeric query filters.
type Op int

const (
	Eq Op = iota
	Ne
	Gt
	Ge
	Lt
	Le
)

type filterKind int

const (
	equals filterKind = iota
	matches
	compares
	relates
)

type filter struct {
	kind  filterKind
	field string
	value string
	op    Op
	num   float64
	sub   *Query

	once sync.Once
	re   *regexp.Regexp
	err  error
}

func (f *filter) regexp() (*regexp.Regexp, error) {
	f.once.Do(func() {
		f.re, f.err = regexp.Compile("^(?:" + f.value + ")$")
		if f.err != nil {
			f.err = molerr.Wrap(molerr.InvalidInput, f.err, "bad pattern for %s", f.field)
		}
	})
	return f.re, f.err
}

//Query selects atoms, residues and molecules by their attributes. A Query
//is built by chaining filters, and matches when all of them match:
//
//	NewQuery().Equals("name", "CA").Relational("residue", NewQuery().Equals("name", "ALA"))
//
//Fields are the lower-case attribute names: id, name, element, mass, charge,
//bvalue, occupancy, x, y, z, alt_loc, hetatm, is_metal for atoms; id, name, number,
//insert, code, full_name and mass for residues; id, internal_id, name,
//entity_id, entity_name, sequence, kind and mass for molecules.
//Relational paths are residue, molecule (or chain) and model, and can be
//joined with dots. Regular expressions are compiled once per Query and must match
//the whole value.
type Query struct {
	filters []*filter
}

//NewQuery returns an empty Query, which matches everything.
func NewQuery() *Query {
	return &Query{}
}

//Equals adds a filter requiring field to be value. Numbers are compared
//by value, so "12" matches 12.0.
func (q *Query) Equals(field, value string) *Query {
	q.filters = append(q.filters, &filter{kind: equals, field: field, value: value})
	return q
}

//Regex adds a filter requiring field to match pattern.
func (q *Query) Regex(field, pattern string) *Query {
	q.filters = append(q.filters, &filter{kind: matches, field: field, value: pattern})
	return q
}

//Compare adds a filter requiring the numeric field to be in relation op with v.
//Non-numeric values never match.
func (q *Query) Compare(field string, op Op, v float64) *Query {
	q.filters = append(q.filters, &filter{kind: compares, field: field, op: op, num: v})
	return q
}

//Relational adds a filter requiring the object reached through path
//(e.g. "residue") to match sub.
func (q *Query) Relational(path string, sub *Query) *Query {
	q.filters = append(q.filters, &filter{kind: relates, field: path, sub: sub})
	return q
}

//Err returns the first error in the regular expressions of the Query, or
//in those of its relational filters. A Query with a bad expression matches nothing.
func (q *Query) Err() error {
	for _, f := range q.filters {
		switch f.kind {
		case matches:
			if _, err := f.regexp(); err != nil {
				return err
			}
		case relates:
			if f.sub != nil {
				if err := f.sub.Err(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

//Name is a shortcut for NewQuery().Equals("name", name)
func Name(name string) *Query {
	return NewQuery().Equals("name", name)
}

//Element is a shortcut for NewQuery().Equals("element", element)
func Element(element string) *Query {
	return NewQuery().Equals("element", element)
}

//InResidue selects the atoms of residues with the given name.
func InResidue(name string) *Query {
	return NewQuery().Relational("residue", Name(name))
}

//queryable is anything a Query can select.
type queryable interface {
	attr(field string) (string, bool)
	related(path string) queryable
}

func (q *Query) match(obj queryable) bool {
	for _, f := range q.filters {
		if !f.match(obj) {
			return false
		}
	}
	return true
}

func (f *filter) match(obj queryable) bool {
	if f.kind == relates {
		for _, step := range strings.Split(f.field, ".") {
			obj = obj.related(step)
			if obj == nil {
				return false
			}
		}
		return f.sub == nil || f.sub.match(obj)
	}
	v, ok := obj.attr(f.field)
	if !ok {
		return false
	}
	switch f.kind {
	case equals:
		if v == f.value {
			return true
		}
		a, err1 := strconv.ParseFloat(v, 64)
		b, err2 := strconv.ParseFloat(f.value, 64)
		return err1 == nil && err2 == nil && a == b
	case matches:
		re, err := f.regexp()
		return err == nil && re.MatchString(v)
	case compares:
		a, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return false
		}
		return compare(a, f.op, f.num)
	}
	return false
}

func compare(a float64, op Op, b float64) bool {
	switch op {
	case Eq:
		return a == b
	case Ne:
		return a != b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	case Lt:
		return a < b
	case Le:
		return a <= b
	}
	return false
}

//matchAll returns true if obj matches every query. nil queries are ignored.
func matchAll(obj queryable, q []*Query) bool {
	for _, v := range q {
		if v != nil && !v.match(obj) {
			return false
		}
	}
	return true
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (A *Atom) attr(field string) (string, bool) {
	switch field {
	case "id":
		return strconv.Itoa(int(A.ID)), true
	case "name":
		return A.Name, true
	case "element":
		return A.Element, true
	case "mass":
		return ftoa(A.Mass()), true
	case "charge":
		return ftoa(A.Charge), true
	case "bvalue":
		return ftoa(A.BValue), true
	case "occupancy":
		return ftoa(A.Occupancy), true
	case "x":
		return ftoa(A.X), true
	case "y":
		return ftoa(A.Y), true
	case "z":
		return ftoa(A.Z), true
	case "alt_loc":
		if A.AltLoc == 0 {
			return "", true
		}
		return string(A.AltLoc), true
	case "hetatm":
		return strconv.FormatBool(A.Hetatm), true
	case "is_metal":
		return strconv.FormatBool(A.IsMetal()), true
	}
	return "", false
}

func (A *Atom) related(path string) queryable {
	switch path {
	case "residue":
		if r := A.Residue(); r != nil {
			return r
		}
	case "molecule", "chain":
		if m := A.Molecule(); m != nil {
			return m
		}
	case "model":
		if m := A.Model(); m != nil {
			return m
		}
	}
	return nil
}

func (R *Residue) attr(field string) (string, bool) {
	switch field {
	case "id":
		return R.ID, true
	case "name":
		return R.Name, true
	case "number":
		return strconv.Itoa(int(R.Number)), true
	case "insert":
		if R.Insert == 0 {
			return "", true
		}
		return string(R.Insert), true
	case "code":
		return string(R.Code()), true
	case "full_name":
		return R.FullName(), true
	case "mass":
		return ftoa(R.Mass()), true
	}
	return "", false
}

func (R *Residue) related(path string) queryable {
	switch path {
	case "molecule", "chain":
		if R.molecule != nil {
			return R.molecule
		}
	case "model":
		if m := R.Model(); m != nil {
			return m
		}
	}
	return nil
}

func (M *Molecule) attr(field string) (string, bool) {
	switch field {
	case "id":
		return M.ID, true
	case "internal_id":
		return M.InternalID, true
	case "name":
		return M.Name, true
	case "entity_id":
		return M.EntityID, true
	case "entity_name":
		return M.EntityName, true
	case "sequence":
		return M.Sequence, true
	case "kind":
		return M.Kind.String(), true
	case "mass":
		return ftoa(M.Mass()), true
	}
	return "", false
}

func (M *Molecule) related(path string) queryable {
	if path == "model" && M.model != nil {
		return M.model
	}
	return nil
}

func (M *Model) attr(field string) (string, bool) {
	if field == "number" {
		return strconv.Itoa(M.Number), true
	}
	return "", false
}

func (M *Model) related(string) queryable {
	return nil
}

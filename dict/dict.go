/*
 * dict.go, part of gomol.
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

//Package dict contains the DataDict, the format-neutral table form every
//reader produces and every writer consumes.
//
//A DataDict is an ordered set of categories. A category is a rectangular
//table of strings: a list of field names and rows holding one value per
//field. All values are strings, so numbers survive a round trip exactly as
//they were read. The values "?" (unknown) and "." (not applicable) are
//the only sentinels; the empty string is never stored. A "?" or "." that
//was quoted in a file is text, and is stored with Literal.
package dict

import (
	"regexp"

	"github.com/rmera/gomol/molerr"
)

//Unknown and NotApplicable are the two sentinel values.
const (
	Unknown       = "?"
	NotApplicable = "."
)

//Field and category names. The dash appears in a few real field names,
//such as symmetry.space_group_name_H-M.
var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\[\]\-]*$`)

//ValidName is true if s can be used as a category or field name.
func ValidName(s string) bool { return nameRe.MatchString(s) }

//DataDict is an ordered map from category names to categories.
type DataDict struct {
	Name  string //The name of the data block, usually the PDB code.
	cats  []*Category
	index map[string]int
}

//New returns an empty DataDict with the given block name.
func New(name string) *DataDict {
	return &DataDict{Name: name, index: make(map[string]int)}
}

//Len returns the number of categories.
func (d *DataDict) Len() int { return len(d.cats) }

//Categories returns the categories in order. The slice is shared.
func (d *DataDict) Categories() []*Category { return d.cats }

//Names returns the category names in order.
func (d *DataDict) Names() []string {
	ret := make([]string, len(d.cats))
	for i, c := range d.cats {
		ret[i] = c.Name
	}
	return ret
}

//Category returns the category with the given name, or nil.
func (d *DataDict) Category(name string) *Category {
	i, ok := d.index[name]
	if !ok {
		return nil
	}
	return d.cats[i]
}

//Has is true if the category exists and has at least one row.
func (d *DataDict) Has(name string) bool {
	c := d.Category(name)
	return c != nil && len(c.Rows) > 0
}

//Put adds c at the end of d, or replaces the category with the same
//name in place.
func (d *DataDict) Put(c *Category) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[c.Name]; ok {
		d.cats[i] = c
		return
	}
	d.index[c.Name] = len(d.cats)
	d.cats = append(d.cats, c)
}

//Ensure returns the category with the given name, creating an empty one
//with the given fields if it doesn't exist.
func (d *DataDict) Ensure(name string, fields ...string) *Category {
	if c := d.Category(name); c != nil {
		return c
	}
	c := NewCategory(name, fields...)
	d.Put(c)
	return c
}

//Remove deletes a category. It does nothing if the category doesn't exist.
func (d *DataDict) Remove(name string) {
	i, ok := d.index[name]
	if !ok {
		return
	}
	d.cats = append(d.cats[:i], d.cats[i+1:]...)
	delete(d.index, name)
	for j := i; j < len(d.cats); j++ {
		d.index[d.cats[j].Name] = j
	}
}

//Prune removes the categories without rows.
func (d *DataDict) Prune() {
	for i := 0; i < len(d.cats); {
		if len(d.cats[i].Rows) == 0 {
			d.Remove(d.cats[i].Name)
			continue
		}
		i++
	}
}

//Copy returns a deep copy of d.
func (d *DataDict) Copy() *DataDict {
	ret := New(d.Name)
	for _, c := range d.cats {
		ret.Put(c.Copy())
	}
	return ret
}

//Category is a rectangular table. Every row has exactly one value per
//field, in the order of Fields.
type Category struct {
	Name   string
	Fields []string
	Rows   [][]string
	fidx   map[string]int
}

//NewCategory returns an empty category with the given fields.
func NewCategory(name string, fields ...string) *Category {
	c := &Category{Name: name, Fields: append([]string(nil), fields...)}
	c.reindex()
	return c
}

func (c *Category) reindex() {
	c.fidx = make(map[string]int, len(c.Fields))
	for i, f := range c.Fields {
		c.fidx[f] = i
	}
}

//Len returns the number of rows.
func (c *Category) Len() int { return len(c.Rows) }

//FieldIndex returns the column of field f, or -1.
func (c *Category) FieldIndex(f string) int {
	if c.fidx == nil || len(c.fidx) != len(c.Fields) {
		c.reindex()
	}
	i, ok := c.fidx[f]
	if !ok {
		return -1
	}
	return i
}

//HasField is true if f is one of the fields of c.
func (c *Category) HasField(f string) bool { return c.FieldIndex(f) >= 0 }

//AddField appends a field, setting it to fill in every existing row.
//Nothing is done if the field exists.
func (c *Category) AddField(f, fill string) {
	if c.HasField(f) {
		return
	}
	c.Fields = append(c.Fields, f)
	c.fidx[f] = len(c.Fields) - 1
	for i := range c.Rows {
		c.Rows[i] = append(c.Rows[i], fill)
	}
}

//AddRow appends a row with the given values, which must match the fields
//in number. Values are normalized.
func (c *Category) AddRow(values ...string) error {
	if len(values) != len(c.Fields) {
		return molerr.InEntry(molerr.SchemaViolation, c.Name, len(c.Rows), "", "row has %d values for %d fields", len(values), len(c.Fields))
	}
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = Normalize(v)
	}
	c.Rows = append(c.Rows, row)
	return nil
}

//Append adds a row given as field, value pairs. Fields that don't exist
//yet are added, set to "?" in the previous rows; fields not mentioned are
//set to "?" in the new row.
func (c *Category) Append(kv ...string) Row {
	row := make([]string, len(c.Fields))
	for i := range row {
		row[i] = Unknown
	}
	c.Rows = append(c.Rows, row)
	r := Row{c: c, i: len(c.Rows) - 1}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], kv[i+1])
	}
	return r
}

//Row returns a view of row i.
func (c *Category) Row(i int) Row { return Row{c: c, i: i} }

//Value returns the value of field f in row i, "?" if the field doesn't
//exist.
func (c *Category) Value(i int, f string) string {
	return Text(c.stored(i, f))
}

func (c *Category) stored(i int, f string) string {
	j := c.FieldIndex(f)
	if j < 0 {
		return Unknown
	}
	return c.Rows[i][j]
}

//Column returns a copy of the values of field f, or nil if the field
//doesn't exist.
func (c *Category) Column(f string) []string {
	ret := c.Stored(f)
	for i, v := range ret {
		ret[i] = Text(v)
	}
	return ret
}

//Stored is like Column, but quoted "?" and "." keep the mark that
//tells them from the sentinels. See Literal.
func (c *Category) Stored(f string) []string {
	j := c.FieldIndex(f)
	if j < 0 {
		return nil
	}
	ret := make([]string, len(c.Rows))
	for i, r := range c.Rows {
		ret[i] = r[j]
	}
	return ret
}

//Copy returns a deep copy of c.
func (c *Category) Copy() *Category {
	ret := NewCategory(c.Name, c.Fields...)
	ret.Rows = make([][]string, len(c.Rows))
	for i, r := range c.Rows {
		ret.Rows[i] = append([]string(nil), r...)
	}
	return ret
}

//Row is a view over one row of a category.
type Row struct {
	c *Category
	i int
}

//Index returns the position of the row in its category.
func (r Row) Index() int { return r.i }

//Get returns the value of field f, or "?" if the field doesn't exist.
func (r Row) Get(f string) string { return r.c.Value(r.i, f) }

//Set stores the normalized value v in field f, adding the field to the
//category if needed.
func (r Row) Set(f, v string) {
	j := r.c.FieldIndex(f)
	if j < 0 {
		r.c.AddField(f, Unknown)
		j = len(r.c.Fields) - 1
	}
	r.c.Rows[r.i][j] = Normalize(v)
}

//Map returns the row as a map from field to value.
func (r Row) Map() map[string]string {
	ret := make(map[string]string, len(r.c.Fields))
	for j, f := range r.c.Fields {
		ret[f] = Text(r.c.Rows[r.i][j])
	}
	return ret
}

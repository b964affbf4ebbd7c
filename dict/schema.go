/*
 * schema.go, part of gomol.
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
	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/rmera/gomol/molerr"
)

//go:embed schema.yaml
var schemaYAML []byte

//CategorySchema fixes the order of the fields of a known category.
type CategorySchema struct {
	Name   string   `yaml:"name"`
	Fields []string `yaml:"fields"`
}

var catalog map[string]*CategorySchema
var catalogOrder []string

func init() {
	var list []*CategorySchema
	if err := yaml.Unmarshal(schemaYAML, &list); err != nil {
		panic("dict: embedded schema: " + err.Error())
	}
	catalog = make(map[string]*CategorySchema, len(list))
	for _, s := range list {
		catalog[s.Name] = s
		catalogOrder = append(catalogOrder, s.Name)
	}
}

//Schema returns the schema of a known category.
func Schema(category string) (*CategorySchema, bool) {
	s, ok := catalog[category]
	return s, ok
}

//Known returns the names of the known categories, in catalog order.
func Known() []string { return append([]string(nil), catalogOrder...) }

//Validate checks the structural invariants of d: valid names, no empty
//category, no repeated field, one value per field in every row, and no
//empty value. The first problem found is returned as a SchemaViolation
//carrying its category, row and field.
func Validate(d *DataDict) error {
	seen := make(map[string]bool, d.Len())
	for _, c := range d.Categories() {
		if !ValidName(c.Name) {
			return molerr.InEntry(molerr.SchemaViolation, c.Name, -1, "", "invalid category name")
		}
		if seen[c.Name] {
			return molerr.InEntry(molerr.SchemaViolation, c.Name, -1, "", "repeated category")
		}
		seen[c.Name] = true
		if len(c.Rows) == 0 {
			return molerr.InEntry(molerr.SchemaViolation, c.Name, -1, "", "category has no rows")
		}
		fields := make(map[string]bool, len(c.Fields))
		for _, f := range c.Fields {
			if !ValidName(f) {
				return molerr.InEntry(molerr.SchemaViolation, c.Name, -1, f, "invalid field name")
			}
			if fields[f] {
				return molerr.InEntry(molerr.SchemaViolation, c.Name, -1, f, "repeated field")
			}
			fields[f] = true
		}
		for i, r := range c.Rows {
			if len(r) != len(c.Fields) {
				return molerr.InEntry(molerr.SchemaViolation, c.Name, i, "", "row has %d values for %d fields", len(r), len(c.Fields))
			}
			for j, v := range r {
				if v == "" {
					return molerr.InEntry(molerr.SchemaViolation, c.Name, i, c.Fields[j], "empty value")
				}
			}
		}
	}
	return nil
}

//Canonicalize puts the fields of every known category in catalog order,
//adding the missing catalog fields as "?". Fields the catalog doesn't
//list are kept after the catalog fields, in their original order. Empty
//values become "?". Unknown categories are only cleaned of empty values.
func Canonicalize(d *DataDict) {
	for _, c := range d.Categories() {
		for _, r := range c.Rows {
			for j, v := range r {
				if v == "" {
					r[j] = Unknown
				}
			}
		}
		s, ok := catalog[c.Name]
		if !ok {
			continue
		}
		canonical(c, s)
	}
}

func canonical(c *Category, s *CategorySchema) {
	order := make([]int, 0, len(s.Fields)+len(c.Fields))
	fields := make([]string, 0, cap(order))
	inSchema := make(map[string]bool, len(s.Fields))
	same := len(c.Fields) >= len(s.Fields)
	for k, f := range s.Fields {
		inSchema[f] = true
		order = append(order, c.FieldIndex(f))
		fields = append(fields, f)
		if same && c.Fields[k] != f {
			same = false
		}
	}
	if same {
		return
	}
	for j, f := range c.Fields {
		if !inSchema[f] {
			order = append(order, j)
			fields = append(fields, f)
		}
	}
	for i, r := range c.Rows {
		nr := make([]string, len(order))
		for k, j := range order {
			if j < 0 {
				nr[k] = Unknown
			} else {
				nr[k] = r[j]
			}
		}
		c.Rows[i] = nr
	}
	c.Fields = fields
	c.reindex()
}

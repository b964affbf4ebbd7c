/*
 * templates.go, part of gomol.
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
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

type monomer struct {
	Backbone string   `yaml:"backbone"`
	Bonds    []string `yaml:"bonds"`
}

type templateFile struct {
	Backbones map[string][]string `yaml:"backbones"`
	Residues  map[string]monomer  `yaml:"residues"`
}

//templates maps residue names to the pairs of atom names bonded in them.
var templates map[string][][2]string

func init() {
	var f templateFile
	if err := yaml.Unmarshal(templatesYAML, &f); err != nil {
		panic("gomol: embedded monomer templates: " + err.Error())
	}
	templates = make(map[string][][2]string, len(f.Residues))
	for name, m := range f.Residues {
		all := append(append([]string(nil), f.Backbones[m.Backbone]...), m.Bonds...)
		pairs := make([][2]string, 0, len(all))
		for _, b := range all {
			p := strings.Fields(b)
			if len(p) != 2 {
				panic("gomol: bad bond in monomer template " + name + ": " + b)
			}
			pairs = append(pairs, [2]string{p[0], p[1]})
		}
		templates[name] = pairs
	}
}

//templateBonds returns the pairs of names of the atoms bonded in a standard
//residue, and false if the residue is not a standard one.
func templateBonds(name string) ([][2]string, bool) {
	t, ok := templates[strings.ToUpper(name)]
	return t, ok
}

//SynthesizeBonds bonds the atoms of R as in the template of its residue type.
//Pairs with missing atoms, or atoms too far apart to be bonded, are skipped. It returns false, and does nothing,
//if the residue type has no template.
func (R *Residue) SynthesizeBonds() bool {
	pairs, ok := templateBonds(R.Name)
	if !ok {
		return false
	}
	byName := make(map[string]*Atom, len(R.atoms))
	for _, a := range R.atoms {
		if _, dup := byName[a.Name]; !dup {
			byName[a.Name] = a
		}
	}
	for _, p := range pairs {
		a, b := byName[p[0]], byName[p[1]]
		if a == nil || b == nil || !closeEnough(a, b) {
			continue
		}
		//can't fail, a and b are different atoms.
		a.Bond(b, Template)
	}
	return true
}

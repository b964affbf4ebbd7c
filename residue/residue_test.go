/*
 * residue_test.go, part of gomol.
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

package residue

import "testing"

func TestCodes(Te *testing.T) {
	for name, want := range map[string]byte{"ALA": 'A', "SEC": 'U', "MSE": 'M', "DA": 'A', "U": 'U', "HOH": 'X', "ZN": 'X'} {
		if c := Code(name); c != want {
			Te.Errorf("%s has code %c, want %c", name, c, want)
		}
	}
	if s := Sequence([]string{"MET", "MSE", "LYS", "UNK"}); s != "M(MSE)K(UNK)" {
		Te.Errorf("sequence %s", s)
	}
	if Parent("SEP") != "SER" || Parent("ALA") != "" {
		Te.Errorf("parents")
	}
}

func TestKinds(Te *testing.T) {
	cases := map[string]Kind{"GLY": Peptide, "PTR": Peptide, "DT": DNA, "G": RNA, "WAT": Water, "HEM": Other}
	for name, want := range cases {
		if k := KindOf(name); k != want {
			Te.Errorf("%s is %s, want %s", name, k, want)
		}
	}
	if k := PolymerKind([]string{"DA", "DC", "HOH", "DG", "ALA"}); k != DNA {
		Te.Errorf("polymer kind %s", k)
	}
	if k := PolymerKind([]string{"HOH", "ZN"}); k != Other {
		Te.Errorf("no monomers gave %s", k)
	}
	if Peptide.String() != "polypeptide(L)" || !IsWater("DOD") || IsWater("DA") {
		Te.Errorf("names")
	}
	flags := map[string]string{"GLY": "y", "MSE": "n", "DT": "y", "G": "y", "HOH": ".", "ZN": "."}
	for name, want := range flags {
		if f := StandardFlag(name); f != want {
			Te.Errorf("%s has flag %q, want %q", name, f, want)
		}
	}
}

func TestElements(Te *testing.T) {
	cases := map[string]string{
		" CA ": "C",
		"CA  ": "Ca",
		"ZN":   "Zn",
		" N":   "N",
		"1HB ": "H",
		"HG21": "H",
		"CL1 ": "Cl",
		" OXT": "O",
		"":     "",
	}
	for raw, want := range cases {
		if e := ElementFromName(raw); e != want {
			Te.Errorf("%q gave %q, want %q", raw, e, want)
		}
	}
	if !IsMetal("FE") || !IsMetal("zn") || IsMetal("C") || Title("MG") != "Mg" {
		Te.Errorf("metals")
	}
}

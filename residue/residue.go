/*
 * residue.go, part of gomol.
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

//Package residue holds tables about residue and element names shared by the
//file readers and the structure builder.
package residue

import "strings"

//Kind classifies a residue name.
type Kind int

const (
	Other Kind = iota
	Peptide
	DNA
	RNA
	Water
)

//String returns the entity_poly type a polymer of this kind has, or "other".
func (k Kind) String() string {
	switch k {
	case Peptide:
		return "polypeptide(L)"
	case DNA:
		return "polydeoxyribonucleotide"
	case RNA:
		return "polyribonucleotide"
	case Water:
		return "water"
	}
	return "other"
}

var threeToOne = map[string]byte{
	"SER": 'S',
	"THR": 'T',
	"ASN": 'N',
	"GLN": 'Q',
	"SEC": 'U', //selenocysteine
	"PYL": 'O',
	"CYS": 'C',
	"GLY": 'G',
	"PRO": 'P',
	"ALA": 'A',
	"VAL": 'V',
	"ILE": 'I',
	"LEU": 'L',
	"MET": 'M',
	"PHE": 'F',
	"TYR": 'Y',
	"TRP": 'W',
	"ARG": 'R',
	"HIS": 'H',
	"LYS": 'K',
	"ASP": 'D',
	"GLU": 'E',
}

var nucleotides = map[string]struct {
	code byte
	kind Kind
}{
	"DA": {'A', DNA},
	"DC": {'C', DNA},
	"DG": {'G', DNA},
	"DT": {'T', DNA},
	"DI": {'I', DNA},
	"A":  {'A', RNA},
	"C":  {'C', RNA},
	"G":  {'G', RNA},
	"U":  {'U', RNA},
	"I":  {'I', RNA},
}

//Modified residues usually found inside polypeptide chains, with the
//standard residue they derive from.
var parents = map[string]string{
	"MSE": "MET",
	"SEP": "SER",
	"TPO": "THR",
	"PTR": "TYR",
	"HYP": "PRO",
	"MLY": "LYS",
	"CSO": "CYS",
	"CME": "CYS",
	"KCX": "LYS",
	"LLP": "LYS",
	"PCA": "GLU",
}

var waters = map[string]bool{"HOH": true, "WAT": true, "DOD": true, "H2O": true}

//KindOf tells what kind of monomer a residue name is.
func KindOf(name string) Kind {
	switch {
	case waters[name]:
		return Water
	case threeToOne[name] != 0:
		return Peptide
	case parents[name] != "":
		return Peptide
	}
	if n, ok := nucleotides[name]; ok {
		return n.kind
	}
	return Other
}

//IsWater returns true for the usual names of water residues.
func IsWater(name string) bool { return waters[name] }

//Code returns the one-letter code of a residue, 'X' for unknown ones.
func Code(name string) byte {
	if c, ok := threeToOne[name]; ok {
		return c
	}
	if p, ok := parents[name]; ok {
		return threeToOne[p]
	}
	if n, ok := nucleotides[name]; ok {
		return n.code
	}
	return 'X'
}

//Parent returns the standard residue a modified one derives from, or "".
func Parent(name string) string { return parents[name] }

//StandardFlag returns the chem_comp.mon_nstd_flag of a residue: "y" for
//the standard amino acids and nucleotides, "n" for modified amino acids
//and "." for everything else.
func StandardFlag(name string) string {
	switch KindOf(name) {
	case Peptide:
		if parents[name] != "" {
			return "n"
		}
		return "y"
	case DNA, RNA:
		return "y"
	}
	return "."
}

//Sequence returns the one-letter sequence of a list of residue names.
//Residues without a one-letter code are written in parentheses, like
//the PDB does.
func Sequence(names []string) string {
	var b strings.Builder
	for _, n := range names {
		c := Code(n)
		if c == 'X' || parents[n] != "" {
			b.WriteString("(" + n + ")")
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

//PolymerKind returns the kind most of the residues in names belong to, or
//Other if none of them are monomers.
func PolymerKind(names []string) Kind {
	count := make(map[Kind]int)
	for _, n := range names {
		count[KindOf(n)]++
	}
	best, max := Other, 0
	for _, k := range []Kind{Peptide, DNA, RNA} {
		if count[k] > max {
			best, max = k, count[k]
		}
	}
	return best
}

var metals = map[string]bool{
	"Li": true, "Na": true, "K": true, "Rb": true, "Cs": true,
	"Be": true, "Mg": true, "Ca": true, "Sr": true, "Ba": true,
	"Al": true, "Ga": true, "In": true, "Tl": true, "Sn": true, "Pb": true, "Bi": true,
	"Sc": true, "Ti": true, "V": true, "Cr": true, "Mn": true, "Fe": true, "Co": true,
	"Ni": true, "Cu": true, "Zn": true, "Y": true, "Zr": true, "Mo": true, "Ru": true,
	"Rh": true, "Pd": true, "Ag": true, "Cd": true, "W": true, "Re": true, "Os": true,
	"Ir": true, "Pt": true, "Au": true, "Hg": true, "La": true, "Gd": true, "Eu": true,
	"Yb": true, "Lu": true, "Sm": true, "Tb": true, "U": true,
}

//IsMetal returns true if symbol (in any case) is a metal element.
func IsMetal(symbol string) bool { return metals[Title(symbol)] }

//Title returns an element symbol with the usual capitalization: "FE" and
//"fe" give "Fe".
func Title(symbol string) string {
	if symbol == "" {
		return ""
	}
	return strings.ToUpper(symbol[:1]) + strings.ToLower(symbol[1:])
}

//ElementFromName guesses the element of an atom from its name, as written
//in the 4 name columns of a PDB atom record. Names of two-letter elements
//start in the first column; the others in the second.
func ElementFromName(raw string) string {
	if len(raw) < 4 {
		raw += strings.Repeat(" ", 4-len(raw))
	}
	if raw[0] != ' ' && !isDigit(raw[0]) {
		if raw[0] == 'H' && len(strings.TrimSpace(raw)) == 4 {
			return "H"
		}
		two := Title(strings.TrimSpace(raw[:2]))
		if len(two) == 2 && metals[two] || two == "Cl" || two == "Br" || two == "Se" {
			return two
		}
		if raw[0] == 'H' {
			return "H"
		}
		return Title(raw[:1])
	}
	name := strings.TrimLeft(raw, " 0123456789")
	if name == "" {
		return ""
	}
	return Title(name[:1])
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

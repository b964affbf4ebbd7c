/*
 * assembly_test.go, part of gomol.
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
	"errors"
	"testing"
)

//A zinc ion in chain A, moved by translations and a turn around z.
const operCIF = `data_OPER
#
loop_
_atom_site.group_PDB
_atom_site.id
_atom_site.type_symbol
_atom_site.label_atom_id
_atom_site.label_alt_id
_atom_site.label_comp_id
_atom_site.label_asym_id
_atom_site.label_entity_id
_atom_site.label_seq_id
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
_atom_site.occupancy
_atom_site.B_iso_or_equiv
_atom_site.auth_seq_id
_atom_site.auth_asym_id
_atom_site.pdbx_PDB_model_num
HETATM 1 ZN ZN . ZN A 1 . 1.000 0.000 0.000 1.00 10.00 101 A 1
#
loop_
_pdbx_struct_oper_list.id
_pdbx_struct_oper_list.type
_pdbx_struct_oper_list.matrix[1][1]
_pdbx_struct_oper_list.matrix[1][2]
_pdbx_struct_oper_list.matrix[1][3]
_pdbx_struct_oper_list.vector[1]
_pdbx_struct_oper_list.matrix[2][1]
_pdbx_struct_oper_list.matrix[2][2]
_pdbx_struct_oper_list.matrix[2][3]
_pdbx_struct_oper_list.vector[2]
_pdbx_struct_oper_list.matrix[3][1]
_pdbx_struct_oper_list.matrix[3][2]
_pdbx_struct_oper_list.matrix[3][3]
_pdbx_struct_oper_list.vector[3]
1 'translate' 1 0 0 10 0 1 0 0 0 0 1 0
2 'translate' 1 0 0 20 0 1 0 0 0 0 1 0
3 'rotate'    0 -1 0 0 1 0 0 0 0 0 1 0
#
loop_
_pdbx_struct_assembly.id
_pdbx_struct_assembly.details
_pdbx_struct_assembly.oligomeric_count
1 'two copies' 2
2 'unreadable' 2
#
loop_
_pdbx_struct_assembly_gen.assembly_id
_pdbx_struct_assembly_gen.oper_expression
_pdbx_struct_assembly_gen.asym_id_list
1 '(1-2)(3)'  A
2 '(1-2)x(3)' A
#
`

func TestAssemblyProduct(Te *testing.T) {
	ms, err := Load([]byte(operCIF), DefaultParseOptions(FormatCIF), nil)
	if err != nil {
		Te.Fatal(err)
	}
	M := ms[0]
	if len(M.Operators) != 3 || len(M.Assemblies) != 2 {
		Te.Fatalf("%d operators, %d assemblies", len(M.Operators), len(M.Assemblies))
	}
	A, err := M.Assembly("1")
	if err != nil {
		Te.Fatal(err)
	}
	if n := len(A.Molecules()); n != 2 {
		Te.Fatalf("%d copies", n)
	}
	//each copy is turned first, then moved along x.
	want := map[string][2]float64{"A-1": {10, 1}, "A-2": {20, 1}}
	for _, m := range A.Molecules() {
		w, ok := want[m.InternalID]
		if !ok {
			Te.Errorf("unexpected copy %s", m.InternalID)
			continue
		}
		a := m.Atoms()[0]
		if !near(a.X, w[0], 1e-9) || !near(a.Y, w[1], 1e-9) || !near(a.Z, 0, 1e-9) {
			Te.Errorf("%s: zinc at %v, want %v", m.InternalID, a.Location(), w)
		}
	}
	if M.AtomByID(1).X != 1 {
		Te.Errorf("the asymmetric unit moved")
	}
	if _, err := M.Assembly("2"); !errors.Is(err, ErrUnsupported) {
		Te.Errorf("unreadable operator expression gave %v", err)
	}
}

//A zinc bound to two cysteines, one of them in a neighbouring cell.
const linkPDB = `LINK         SG  CYS A   1                ZN    ZN A 101     1555   1555  2.31
LINK         SG  CYS B   1                ZN    ZN A 101     1555   6655  2.40
ATOM      1  N   CYS A   1       0.000   0.000   0.000  1.00 20.00           N  
ATOM      2  CA  CYS A   1       1.458   0.000   0.000  1.00 20.00           C  
ATOM      3  CB  CYS A   1       2.000   1.420   0.000  1.00 20.00           C  
ATOM      4  SG  CYS A   1       3.800   1.500   0.000  1.00 20.00           S  
ATOM      5  N   CYS B   1      10.000   0.000   0.000  1.00 20.00           N  
ATOM      6  CA  CYS B   1      11.458   0.000   0.000  1.00 20.00           C  
ATOM      7  CB  CYS B   1      12.000   1.420   0.000  1.00 20.00           C  
ATOM      8  SG  CYS B   1      13.800   1.500   0.000  1.00 20.00           S  
HETATM    9 ZN    ZN A 101       4.500   3.700   0.000  1.00 20.00          ZN  
END
`

func TestLinkBonds(Te *testing.T) {
	ms, err := Load([]byte(linkPDB), DefaultParseOptions(FormatPDB), nil)
	if err != nil {
		Te.Fatal(err)
	}
	M := ms[0]
	zn, sg, far := M.AtomByID(9), M.AtomByID(4), M.AtomByID(8)
	if zn == nil || sg == nil || far == nil {
		Te.Fatalf("atoms missing")
	}
	if b := sg.BondedTo(zn); b == nil || b.Kind != MetalCoord {
		Te.Errorf("SG-ZN bond %v", b)
	}
	if b := far.BondedTo(zn); b != nil {
		Te.Errorf("bond to a symmetry copy %v", b)
	}
	if len(zn.Bonds) != 1 {
		Te.Errorf("zinc has %d bonds", len(zn.Bonds))
	}
	if b := sg.BondedTo(M.AtomByID(3)); b == nil || b.Kind != Template {
		Te.Errorf("CB-SG bond %v", b)
	}
}

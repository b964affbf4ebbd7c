/*
 * builder.go, part of gomol.
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
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/molerr"
	"github.com/rmera/gomol/residue"
)

//BuildOptions controls how models are built from a DataDict.
type BuildOptions struct {
	SynthesizeBonds bool   //create the bonds within standard residues and between consecutive ones
	Anisotropy      bool   //read atom_site_anisotrop
	AltLoc          string //the alternative location to keep, if present
	Logger          *slog.Logger
}

//DefaultBuildOptions returns the options used when none are given.
func DefaultBuildOptions() *BuildOptions {
	return &BuildOptions{SynthesizeBonds: true, Anisotropy: true, AltLoc: "A"}
}

func (o *BuildOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

//Build turns the atom_site category of d, and the categories that describe
//its contents, into models. Atoms are grouped into models by
//pdbx_PDB_model_num, into molecules by label_asym_id, and into residues by
//author number, name and insertion code. Polymers and branched polymers
//have one molecule per label asym ID. Each non-polymer or water residue is
//a molecule of its own. A DataDict without atoms gives no models.
func Build(d *dict.DataDict, opts *BuildOptions) ([]*Model, error) {
	if opts == nil {
		opts = DefaultBuildOptions()
	}
	sites := d.Category("atom_site")
	if sites == nil || sites.Len() == 0 {
		return nil, nil
	}
	b := &builder{d: d, opts: opts, log: opts.logger()}
	b.entities()
	if err := b.assemblies(); err != nil {
		return nil, molerr.Decorate(err, "Build")
	}
	var order []int
	rows := make(map[int][]int)
	for i := range sites.Rows {
		n, ok, err := d.Int("atom_site", i, "pdbx_PDB_model_num")
		if err != nil {
			return nil, molerr.Decorate(err, "Build")
		}
		if !ok {
			n = 1
		}
		if _, seen := rows[n]; !seen {
			order = append(order, n)
		}
		rows[n] = append(rows[n], i)
	}
	var aniso map[int32][6]float64
	if opts.Anisotropy {
		var err error
		if aniso, err = b.anisotropy(); err != nil {
			return nil, molerr.Decorate(err, "Build")
		}
	}
	models := make([]*Model, 0, len(order))
	for i, n := range order {
		var an map[int32][6]float64
		if i == 0 {
			an = aniso
		}
		m, err := b.model(n, rows[n], an)
		if err != nil {
			return nil, molerr.Decorate(err, "Build")
		}
		models = append(models, m)
	}
	return models, nil
}

type entityInfo struct {
	kind     MolKind
	name     string
	sequence string
}

type builder struct {
	d          *dict.DataDict
	opts       *BuildOptions
	log        *slog.Logger
	ents       map[string]*entityInfo
	asymEntity map[string]string
	compNames  map[string]string
	asms       []*Assembly
	opers      map[string]dict.Operator
}

//entities reads the entity, entity_poly, struct_asym and chem_comp categories.
func (b *builder) entities() {
	d := b.d
	b.ents = make(map[string]*entityInfo)
	if c := d.Category("entity"); c != nil {
		for i := range c.Rows {
			e := &entityInfo{kind: ParseMolKind(c.Value(i, "type"))}
			e.name, _ = d.Optional("entity", i, "pdbx_description")
			b.ents[c.Value(i, "id")] = e
		}
	}
	monomers := make(map[string][]string)
	if c := d.Category("entity_poly_seq"); c != nil {
		for i := range c.Rows {
			id := c.Value(i, "entity_id")
			monomers[id] = append(monomers[id], c.Value(i, "mon_id"))
		}
	}
	if c := d.Category("entity_poly"); c != nil {
		for i := range c.Rows {
			e, ok := b.ents[c.Value(i, "entity_id")]
			if !ok {
				continue
			}
			if m := monomers[c.Value(i, "entity_id")]; len(m) > 0 {
				e.sequence = residue.Sequence(m)
				continue
			}
			seq, ok := d.Optional("entity_poly", i, "pdbx_seq_one_letter_code_can")
			if !ok {
				seq, _ = d.Optional("entity_poly", i, "pdbx_seq_one_letter_code")
			}
			e.sequence = oneLetter(seq)
		}
	}
	b.asymEntity = make(map[string]string)
	if c := d.Category("struct_asym"); c != nil {
		for i := range c.Rows {
			b.asymEntity[c.Value(i, "id")] = c.Value(i, "entity_id")
		}
	}
	b.compNames = make(map[string]string)
	if c := d.Category("chem_comp"); c != nil {
		for i := range c.Rows {
			if n, ok := d.Optional("chem_comp", i, "name"); ok {
				b.compNames[c.Value(i, "id")] = n
			}
		}
	}
}

//oneLetter cleans a pdbx_seq_one_letter_code, where non-standard monomers
//are given in parentheses.
func oneLetter(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '(':
			end := strings.IndexByte(s[i:], ')')
			if end < 0 {
				return sb.String()
			}
			sb.WriteByte(residue.Code(s[i+1 : i+end]))
			i += end
		case c == ' ' || c == '\n' || c == '\r' || c == '\t':
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func (b *builder) assemblies() error {
	d := b.d
	var err error
	if b.opers, err = d.Operators(); err != nil {
		return err
	}
	c := d.Category("pdbx_struct_assembly")
	if c == nil {
		return nil
	}
	for i := range c.Rows {
		a := &Assembly{ID: c.Value(i, "id"), Metrics: make(map[string]float64)}
		a.Details, _ = d.Optional("pdbx_struct_assembly", i, "details")
		a.Method, _ = d.Optional("pdbx_struct_assembly", i, "oligomeric_details")
		a.Software, _ = d.Optional("pdbx_struct_assembly", i, "method_details")
		if a.OligomericCount, _, err = d.Int("pdbx_struct_assembly", i, "oligomeric_count"); err != nil {
			return err
		}
		if g := d.Category("pdbx_struct_assembly_gen"); g != nil {
			for j := range g.Rows {
				if g.Value(j, "assembly_id") != a.ID {
					continue
				}
				var chains []string
				for _, s := range strings.Split(g.Value(j, "asym_id_list"), ",") {
					if s = strings.TrimSpace(s); s != "" {
						chains = append(chains, s)
					}
				}
				a.Gens = append(a.Gens, AssemblyGen{Expression: g.Value(j, "oper_expression"), Chains: chains})
			}
		}
		if p := d.Category("pdbx_struct_assembly_prop"); p != nil {
			for j := range p.Rows {
				if p.Value(j, "biol_id") != a.ID {
					continue
				}
				v, ok, err := d.Float("pdbx_struct_assembly_prop", j, "value")
				if err != nil {
					return err
				}
				if ok {
					a.Metrics[p.Value(j, "type")] = v
				}
			}
		}
		b.asms = append(b.asms, a)
	}
	return nil
}

//anisotropy reads atom_site_anisotrop by atom id, in the order of Atom.Anisotropy.
func (b *builder) anisotropy() (map[int32][6]float64, error) {
	c := b.d.Category("atom_site_anisotrop")
	if c == nil {
		return nil, nil
	}
	fields := []string{"U[1][1]", "U[2][2]", "U[3][3]", "U[1][2]", "U[1][3]", "U[2][3]"}
	ret := make(map[int32][6]float64, c.Len())
	for i := range c.Rows {
		id, ok, err := b.d.Int("atom_site_anisotrop", i, "id")
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		var u [6]float64
		for j, f := range fields {
			if u[j], _, err = b.d.Float("atom_site_anisotrop", i, f); err != nil {
				return nil, err
			}
		}
		ret[int32(id)] = u
	}
	return ret, nil
}

//resKey identifies a residue while building.
type resKey struct {
	seq, comp, ins string
}

type resBuild struct {
	key   resKey
	chain string
	rows  []int
}

type molBuild struct {
	asym   string
	entity string
	res    []*resBuild
	byKey  map[resKey]*resBuild
}

//val returns the first of the fields that is not a sentinel in row i of atom_site.
func (b *builder) val(i int, fields ...string) string {
	for _, f := range fields {
		if v, ok := b.d.Optional("atom_site", i, f); ok {
			return v
		}
	}
	return ""
}

func (b *builder) model(num int, rows []int, aniso map[int32][6]float64) (*Model, error) {
	M := &Model{Number: num, Assemblies: b.asms, Operators: b.opers}
	M.structure = structure{M}
	var order []*molBuild
	mols := make(map[string]*molBuild)
	for _, i := range rows {
		asym := b.val(i, "label_asym_id", "auth_asym_id")
		mb, ok := mols[asym]
		if !ok {
			mb = &molBuild{asym: asym, entity: b.val(i, "label_entity_id"), byKey: make(map[resKey]*resBuild)}
			if mb.entity == "" {
				mb.entity = b.asymEntity[asym]
			}
			mols[asym] = mb
			order = append(order, mb)
		}
		k := resKey{seq: b.val(i, "auth_seq_id", "label_seq_id"), comp: b.val(i, "auth_comp_id", "label_comp_id"), ins: b.val(i, "pdbx_PDB_ins_code")}
		rb, ok := mb.byKey[k]
		if !ok {
			rb = &resBuild{key: k, chain: b.val(i, "auth_asym_id", "label_asym_id")}
			mb.byKey[k] = rb
			mb.res = append(mb.res, rb)
		}
		rb.rows = append(rb.rows, i)
	}
	resIDs := make(map[string]bool)
	for _, mb := range order {
		kind := b.kindOf(mb)
		var e entityInfo
		if p := b.ents[mb.entity]; p != nil {
			e = *p
		}
		var cur *Molecule
		for _, rb := range mb.res {
			R, err := b.residue(rb, aniso)
			if err != nil {
				return nil, err
			}
			if resIDs[R.ID] {
				return nil, molerr.New(molerr.InvariantViolation, "model %d: residue %s appears twice", num, R.ID)
			}
			resIDs[R.ID] = true
			if kind == Polymer || kind == Branched {
				if cur == nil {
					cur = &Molecule{ID: rb.chain, InternalID: mb.asym, EntityID: mb.entity, EntityName: e.name,
						Name: e.name, Sequence: e.sequence, Kind: kind, model: M}
					cur.structure = structure{cur}
					M.molecules = append(M.molecules, cur)
				}
				if l := len(cur.residues); l > 0 {
					prev := cur.residues[l-1]
					prev.next, R.previous = R, prev
				}
			} else {
				cur = &Molecule{ID: R.ID, InternalID: mb.asym, EntityID: mb.entity, EntityName: e.name,
					Name: R.Name, Kind: kind, model: M}
				cur.structure = structure{cur}
				M.molecules = append(M.molecules, cur)
				if n, ok := b.compNames[R.Name]; ok && kind == NonPolymer {
					R.Description = n
				}
			}
			if err := uniqueAtoms(cur, R); err != nil {
				return nil, err
			}
			R.molecule = cur
			cur.residues = append(cur.residues, R)
		}
	}
	if b.opts.SynthesizeBonds {
		b.synthesize(M)
	}
	if err := b.connections(M); err != nil {
		return nil, err
	}
	b.secondary(M)
	if err := b.missing(M); err != nil {
		return nil, err
	}
	return M, nil
}

//uniqueAtoms checks that no atom of R has the ID of an atom already in m.
func uniqueAtoms(m *Molecule, R *Residue) error {
	for _, a := range R.atoms {
		if m.AtomByID(a.ID) != nil {
			return molerr.New(molerr.InvariantViolation, "molecule %s has two atoms with ID %d", m.InternalID, a.ID)
		}
	}
	return nil
}

//kindOf returns the kind of a molecule from its entity, or guesses it from its
//residues if there is no entity information.
func (b *builder) kindOf(mb *molBuild) MolKind {
	if e, ok := b.ents[mb.entity]; ok {
		return e.kind
	}
	water := true
	for _, r := range mb.res {
		water = water && residue.IsWater(r.key.comp)
	}
	switch {
	case water:
		return Water
	case len(mb.res) > 1 && b.val(mb.res[0].rows[0], "label_seq_id") != "":
		return Polymer
	}
	return NonPolymer
}

//altLoc returns the alternative location to keep among the rows of a residue, or
//0 to keep them all. Alternatives are only chosen among when some atom
//has partial occupancy. The requested location is kept if present, otherwise
//the alphabetically first one.
func (b *builder) altLoc(rows []int) (byte, error) {
	partial := false
	var alts []string
	for _, i := range rows {
		occ, ok, err := b.d.Float("atom_site", i, "occupancy")
		if err != nil {
			return 0, err
		}
		if ok && occ < 1 {
			partial = true
		}
		if a := b.val(i, "label_alt_id"); a != "" {
			alts = append(alts, a)
		}
	}
	if !partial || len(alts) == 0 {
		return 0, nil
	}
	sort.Strings(alts)
	for _, a := range alts {
		if a == b.opts.AltLoc {
			return a[0], nil
		}
	}
	return alts[0][0], nil
}

func (b *builder) residue(rb *resBuild, aniso map[int32][6]float64) (*Residue, error) {
	alt, err := b.altLoc(rb.rows)
	if err != nil {
		return nil, err
	}
	var ins byte
	if rb.key.ins != "" {
		ins = rb.key.ins[0]
	}
	num, _ := strconv.Atoi(rb.key.seq)
	R := &Residue{ID: ResidueID(rb.chain, int32(num), ins), Name: rb.key.comp, Number: int32(num), Insert: ins}
	R.structure = structure{R}
	for _, i := range rb.rows {
		a, err := b.atom(i, aniso)
		if err != nil {
			return nil, err
		}
		if alt != 0 && a.Occupancy != 1 && a.AltLoc != 0 && a.AltLoc != alt {
			continue
		}
		if R.AtomByID(a.ID) != nil {
			return nil, molerr.InEntry(molerr.InvariantViolation, "atom_site", i, "id", "atom ID %d repeated in residue %s", a.ID, R.ID)
		}
		a.residue = R
		R.atoms = append(R.atoms, a)
	}
	return R, nil
}

func (b *builder) atom(i int, aniso map[int32][6]float64) (*Atom, error) {
	d := b.d
	id, _, err := d.Int("atom_site", i, "id")
	if err != nil {
		return nil, err
	}
	a := &Atom{ID: int32(id), Occupancy: 1}
	a.Name = b.val(i, "label_atom_id", "auth_atom_id")
	a.Element = b.val(i, "type_symbol")
	if a.Element == "" {
		raw := a.Name
		//monomer atoms have one-letter elements, which PDB files write from the second column
		if residue.KindOf(b.val(i, "label_comp_id", "auth_comp_id")) != residue.Other && len(raw) < 4 {
			raw = " " + raw
		}
		a.Element = residue.ElementFromName(raw)
	}
	floats := []struct {
		field string
		dst   *float64
	}{{"Cartn_x", &a.X}, {"Cartn_y", &a.Y}, {"Cartn_z", &a.Z}, {"B_iso_or_equiv", &a.BValue},
		{"occupancy", &a.Occupancy}, {"pdbx_formal_charge", &a.Charge}}
	for _, f := range floats {
		v, ok, err := d.Float("atom_site", i, f.field)
		if err != nil {
			return nil, err
		}
		if ok {
			*f.dst = v
		}
	}
	if alt := b.val(i, "label_alt_id"); alt != "" {
		a.AltLoc = alt[0]
	}
	a.Hetatm = d.Get("atom_site", i, "group_PDB") == "HETATM"
	if u, ok := aniso[a.ID]; ok {
		a.Anisotropy = u
	}
	return a, nil
}

//synthesize creates the bonds within standard residues, and the peptide or
//phosphodiester bonds between consecutive residues of a polymer.
func (b *builder) synthesize(M *Model) {
	for _, m := range M.molecules {
		for _, r := range m.residues {
			if !r.SynthesizeBonds() && m.Kind != Water {
				b.log.Debug("no bond template", "residue", r.Name, "id", r.ID)
			}
			if m.Kind != Polymer || r.next == nil {
				continue
			}
			for _, p := range [][2]string{{"C", "N"}, {"O3'", "P"}} {
				x, y := r.Atom(Name(p[0])), r.next.Atom(Name(p[1]))
				if x != nil && y != nil && x.DistanceTo(y.Location()) <= linkmax {
					x.Bond(y, Link)
				}
			}
		}
	}
}

//connKind returns the kind of bond for a struct_conn type, and false for
//connections that are not bonds, such as hydrogen bonds.
func connKind(t string) (string, bool) {
	switch t = strings.ToLower(t); {
	case strings.HasPrefix(t, "covale"):
		return Covalent, true
	case t == "disulf":
		return Disulfide, true
	case t == "metalc":
		return MetalCoord, true
	}
	return "", false
}

type atomKey struct {
	chain, seq, ins, name string
}

//connections creates the bonds listed in struct_conn. Connections to
//atoms not in the model, or to symmetry copies, are skipped.
func (b *builder) connections(M *Model) error {
	c := b.d.Category("struct_conn")
	if c == nil {
		return nil
	}
	byAuth := make(map[atomKey]*Atom)
	byLabel := make(map[atomKey]*Atom)
	for _, m := range M.molecules {
		for _, r := range m.residues {
			seq := strconv.Itoa(int(r.Number))
			ins := ""
			if r.Insert != 0 {
				ins = string(r.Insert)
			}
			chain := r.ID[:strings.LastIndexByte(r.ID, '.')]
			for _, a := range r.atoms {
				k := atomKey{chain, seq, ins, a.Name}
				if _, ok := byAuth[k]; !ok {
					byAuth[k] = a
				}
				l := atomKey{m.InternalID, r.Name, "", a.Name}
				if _, ok := byLabel[l]; !ok && m.Kind != Polymer {
					byLabel[l] = a
				}
			}
		}
	}
	find := func(i int, p string) *Atom {
		g := func(fields ...string) string {
			for _, f := range fields {
				if v, ok := b.d.Optional("struct_conn", i, f); ok {
					return v
				}
			}
			return ""
		}
		name := g(p+"_label_atom_id", p+"_auth_atom_id")
		k := atomKey{g(p+"_auth_asym_id"), g(p+"_auth_seq_id"), g("pdbx_"+p+"_PDB_ins_code"), name}
		if a := byAuth[k]; a != nil {
			return a
		}
		return byLabel[atomKey{g(p+"_label_asym_id"), g(p+"_label_comp_id", p+"_auth_comp_id"), "", name}]
	}
	for i := range c.Rows {
		kind, ok := connKind(c.Value(i, "conn_type_id"))
		if !ok {
			continue
		}
		if s1, s2 := c.Value(i, "ptnr1_symmetry"), c.Value(i, "ptnr2_symmetry"); !sameCell(s1) || !sameCell(s2) {
			continue
		}
		a1, a2 := find(i, "ptnr1"), find(i, "ptnr2")
		if a1 == nil || a2 == nil || a1 == a2 {
			b.log.Debug("struct_conn partner not found", "row", i, "id", c.Value(i, "id"))
			continue
		}
		bond, _ := a1.Bond(a2, kind)
		bond.Kind = kind
	}
	return nil
}

func sameCell(sym string) bool {
	return dict.IsSentinel(sym) || sym == "1_555"
}

//residueRange returns the IDs of the residues of polymer m from the one with
//ID first to the one with ID last.
func residueRange(m *Molecule, first, last string) []string {
	var ret []string
	in := false
	for _, r := range m.residues {
		if r.ID == first {
			in = true
		}
		if in {
			ret = append(ret, r.ID)
		}
		if r.ID == last && in {
			return ret
		}
	}
	return nil
}

//secondary reads helices from struct_conf and strands from struct_sheet_range.
func (b *builder) secondary(M *Model) {
	d := b.d
	ends := func(cat string, i int) (string, string, string) {
		id := func(p string) string {
			n, _ := strconv.Atoi(d.Get(cat, i, p+"_auth_seq_id"))
			var ins byte
			if v, ok := d.Optional(cat, i, "pdbx_"+p+"_PDB_ins_code"); ok {
				ins = v[0]
			}
			return ResidueID(d.Get(cat, i, p+"_auth_asym_id"), int32(n), ins)
		}
		return d.Get(cat, i, "beg_auth_asym_id"), id("beg"), id("end")
	}
	for _, cat := range []string{"struct_conf", "struct_sheet_range"} {
		c := d.Category(cat)
		if c == nil {
			continue
		}
		for i := range c.Rows {
			if cat == "struct_conf" && !strings.HasPrefix(strings.ToUpper(c.Value(i, "conf_type_id")), "HELX") {
				continue
			}
			chain, first, last := ends(cat, i)
			for _, m := range M.Polymers(NewQuery().Equals("id", chain)) {
				ids := residueRange(m, first, last)
				if len(ids) == 0 {
					continue
				}
				if cat == "struct_conf" {
					m.Helices = append(m.Helices, ids)
				} else {
					m.Strands = append(m.Strands, ids)
				}
			}
		}
	}
}

//missing reads the unobserved residues and atoms of the model.
func (b *builder) missing(M *Model) error {
	d := b.d
	inModel := func(cat string, i int) (bool, error) {
		n, ok, err := d.Int(cat, i, "PDB_model_num")
		return !ok || n == M.Number, err
	}
	ins := func(cat string, i int) byte {
		if v, ok := d.Optional(cat, i, "PDB_ins_code"); ok {
			return v[0]
		}
		return 0
	}
	if c := d.Category("pdbx_unobs_or_zero_occ_residues"); c != nil {
		for i := range c.Rows {
			ok, err := inModel(c.Name, i)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			n, _, err := d.Int(c.Name, i, "auth_seq_id")
			if err != nil {
				return err
			}
			M.Missing.Residues = append(M.Missing.Residues, MissingResidue{Chain: c.Value(i, "auth_asym_id"),
				Name: c.Value(i, "auth_comp_id"), Number: int32(n), Insert: ins(c.Name, i)})
		}
	}
	if c := d.Category("pdbx_unobs_or_zero_occ_atoms"); c != nil {
		for i := range c.Rows {
			ok, err := inModel(c.Name, i)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			n, _, err := d.Int(c.Name, i, "auth_seq_id")
			if err != nil {
				return err
			}
			M.Missing.Atoms = append(M.Missing.Atoms, MissingAtom{Chain: c.Value(i, "auth_asym_id"),
				ResidueName: c.Value(i, "auth_comp_id"), Number: int32(n), Insert: ins(c.Name, i),
				Name: c.Value(i, "auth_atom_id")})
		}
	}
	return nil
}

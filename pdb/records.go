/*
 * records.go, part of gomol.
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

//Package pdb reads and writes the fixed-column PDB text format.
//
//Reading happens in two steps. Split groups the lines of a file by record
//name, REMARK number and model. Read then decodes the records into the
//categories of a DataDict.
package pdb

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/rmera/gomol/molerr"
)

//Line is one line of a PDB file, right-padded to 80 columns.
type Line struct {
	Text   string
	Offset int64 //byte offset of the line in the file.
}

//Col returns columns a to b of the line (1-based, inclusive), trimmed.
func (l Line) Col(a, b int) string {
	return strings.TrimSpace(l.Raw(a, b))
}

//Raw returns columns a to b of the line without trimming.
func (l Line) Raw(a, b int) string {
	if b > len(l.Text) {
		b = len(l.Text)
	}
	if a-1 >= b {
		return ""
	}
	return l.Text[a-1 : b]
}

//Char returns column a, or a space.
func (l Line) Char(a int) byte {
	if a-1 >= len(l.Text) {
		return ' '
	}
	return l.Text[a-1]
}

//Int decodes columns a to b as an integer. ok is false when the field is
//blank. A field that is not blank and not an integer is an InvalidInput
//error located at the field.
func (l Line) Int(a, b int) (int, bool, error) {
	s := l.Col(a, b)
	if s == "" {
		return 0, false, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, molerr.AtOffset(molerr.InvalidInput, "", l.Offset+int64(a-1), "%q in columns %d-%d is not an integer", s, a, b)
	}
	return i, true, nil
}

//Float decodes columns a to b as a number.
func (l Line) Float(a, b int) (float64, bool, error) {
	s := l.Col(a, b)
	if s == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, molerr.AtOffset(molerr.InvalidInput, "", l.Offset+int64(a-1), "%q in columns %d-%d is not a number", s, a, b)
	}
	return f, true, nil
}

//Number returns columns a to b, trimmed, after checking that they hold a
//number. Blank fields give "?".
func (l Line) Number(a, b int) (string, error) {
	s := l.Col(a, b)
	if s == "" {
		return "?", nil
	}
	if _, _, err := l.Float(a, b); err != nil {
		return "", err
	}
	return s, nil
}

//Model holds the coordinate records of one model: ATOM, HETATM, ANISOU
//and TER lines, in file order.
type Model struct {
	Number int
	Lines  []Line
}

//Records is a PDB file with its lines grouped.
type Records struct {
	byName  map[string][]Line
	remarks map[int][]Line
	Models  []*Model
}

var coordRecords = map[string]bool{"ATOM": true, "HETATM": true, "ANISOU": true, "TER": true}

//Split groups the lines of a PDB file. LF and CRLF line ends are both
//accepted; blank lines are skipped.
func Split(b []byte) (*Records, error) {
	r := &Records{byName: make(map[string][]Line), remarks: make(map[int][]Line)}
	var cur *Model
	offset := int64(0)
	for len(b) > 0 {
		n := bytes.IndexByte(b, '\n')
		var raw []byte
		if n < 0 {
			raw, b = b, nil
		} else {
			raw, b = b[:n], b[n+1:]
		}
		lineOffset := offset
		offset += int64(len(raw)) + 1
		raw = bytes.TrimRight(raw, "\r")
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		for _, c := range raw {
			if c > 127 {
				return nil, molerr.AtOffset(molerr.InvalidInput, "", lineOffset, "non-ASCII byte in PDB line")
			}
		}
		text := string(raw)
		if len(text) < 80 {
			text += strings.Repeat(" ", 80-len(text))
		}
		l := Line{Text: text, Offset: lineOffset}
		name := strings.TrimSpace(l.Raw(1, 6))
		switch {
		case name == "REMARK":
			num, ok, err := l.Int(8, 10)
			if err != nil || !ok {
				//unnumbered remarks are kept under 0
				num = 0
			}
			r.remarks[num] = append(r.remarks[num], l)
		case name == "MODEL":
			num, ok, err := l.Int(11, 14)
			if err != nil {
				return nil, molerr.Decorate(err, "pdb.Split")
			}
			if !ok {
				num = len(r.Models) + 1
			}
			cur = &Model{Number: num}
			r.Models = append(r.Models, cur)
		case name == "ENDMDL":
			cur = nil
		case coordRecords[name]:
			if cur == nil {
				if len(r.Models) == 0 || len(r.byName["ENDMDL"]) > 0 {
					cur = &Model{Number: len(r.Models) + 1}
					r.Models = append(r.Models, cur)
				} else {
					cur = r.Models[len(r.Models)-1]
				}
			}
			cur.Lines = append(cur.Lines, l)
		default:
			r.byName[name] = append(r.byName[name], l)
		}
		if name == "ENDMDL" {
			r.byName["ENDMDL"] = append(r.byName["ENDMDL"], l)
		}
	}
	return r, nil
}

//Get returns the lines of a record, in order.
func (r *Records) Get(name string) []Line { return r.byName[name] }

//Remark returns the lines of a REMARK number.
func (r *Records) Remark(num int) []Line { return r.remarks[num] }

//RemarkText returns the text of a REMARK (columns 12 to 80) line by line,
//right-trimmed, skipping the empty first line most remarks start with.
func (r *Records) RemarkText(num int) []string {
	var ret []string
	for _, l := range r.remarks[num] {
		t := strings.TrimRight(l.Raw(12, 80), " ")
		if t == "" && len(ret) == 0 {
			continue
		}
		ret = append(ret, t)
	}
	return ret
}

//Text joins the text of a record that continues over several lines.
//Each fragment is columns from to 80, trimmed, and the fragments are
//joined by single spaces.
func (r *Records) Text(name string, from int) string {
	return joinText(r.byName[name], from, 80)
}

func joinText(lines []Line, from, to int) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if t := l.Col(from, to); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

//Keyed groups the lines of a record such as HETNAM or FORMUL by the key
//in columns a to b, merging continuations. Keys come out in order of
//first appearance.
func (r *Records) Keyed(name string, a, b, from, to int) ([]string, map[string]string) {
	var keys []string
	groups := make(map[string][]Line)
	for _, l := range r.byName[name] {
		k := l.Col(a, b)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], l)
	}
	ret := make(map[string]string, len(keys))
	for _, k := range keys {
		ret[k] = joinText(groups[k], from, to)
	}
	return keys, ret
}

//Tokens splits the text of records such as COMPND or SOURCE into its
//"TOKEN: value;" pairs, grouped by MOL_ID.
func Tokens(text string) []map[string]string {
	var ret []map[string]string
	cur := map[string]string{}
	for _, part := range strings.Split(text, ";") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "MOL_ID" {
			if len(cur) > 0 {
				ret = append(ret, cur)
			}
			cur = map[string]string{}
		}
		cur[k] = v
	}
	if len(cur) > 0 {
		ret = append(ret, cur)
	}
	return ret
}

/*
 * reader.go, part of gomol.
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

package cif

import (
	"strings"

	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/molerr"
)

//Read parses the first data block of a CIF file into a DataDict, with the
//fields of known categories in canonical order. Any lexical or structural
//problem fails the whole read.
func Read(b []byte) (*dict.DataDict, error) {
	d, err := read(b)
	if err != nil {
		return nil, molerr.Decorate(err, "cif.Read")
	}
	dict.Canonicalize(d)
	return d, nil
}

func splitTag(t Token) (string, string, error) {
	i := strings.IndexByte(t.Text, '.')
	if i <= 0 || i == len(t.Text)-1 {
		return "", "", molerr.AtOffset(molerr.InvalidInput, "", t.Offset, "tag _%s is not of the form _category.field", t.Text)
	}
	return t.Text[:i], t.Text[i+1:], nil
}

func read(b []byte) (*dict.DataDict, error) {
	lx := NewLexer(b)
	d := dict.New("")
	seenData := false
	looped := make(map[string]bool)
	tok, err := lx.Next()
	for err == nil {
		switch tok.Kind {
		case EOF:
			return d, nil
		case Data:
			if seenData {
				//only the first block is read
				return d, nil
			}
			seenData = true
			d.Name = tok.Text
			tok, err = lx.Next()
		case Save, Global, Stop:
			return nil, molerr.AtOffset(molerr.UnsupportedFeature, "", tok.Offset, "save frames and global blocks are not supported")
		case Value:
			return nil, molerr.AtOffset(molerr.InvalidInput, "", tok.Offset, "value %q without a tag", tok.Text)
		case Tag:
			tok, err = readItem(lx, d, tok, looped)
		case Loop:
			tok, err = readLoop(lx, d, tok, looped)
		}
	}
	return nil, err
}

//readItem reads a tag-value pair, which becomes a field of a single-row
//category. It returns the token after the value.
func readItem(lx *Lexer, d *dict.DataDict, tag Token, looped map[string]bool) (Token, error) {
	cat, field, err := splitTag(tag)
	if err != nil {
		return Token{}, err
	}
	val, err := lx.Next()
	if err != nil {
		return Token{}, err
	}
	if val.Kind != Value {
		return Token{}, molerr.AtOffset(molerr.InvalidInput, "", tag.Offset, "tag _%s without a value", tag.Text)
	}
	if looped[cat] {
		e := molerr.AtOffset(molerr.SchemaViolation, "", tag.Offset, "_%s appears both in a loop and as an item", cat)
		e.Category = cat
		return Token{}, e
	}
	c := d.Category(cat)
	if c == nil {
		c = dict.NewCategory(cat)
		c.Rows = [][]string{{}}
		d.Put(c)
	}
	if c.HasField(field) {
		return Token{}, molerr.AtOffset(molerr.InvalidInput, "", tag.Offset, "repeated tag _%s", tag.Text)
	}
	c.AddField(field, stored(val))
	return lx.Next()
}

//stored returns the form in which a value token goes in a DataDict.
//Only unquoted values can be sentinels.
func stored(tok Token) string {
	if tok.Quoted {
		return dict.Literal(tok.Text)
	}
	return dict.Normalize(tok.Text)
}

//readLoop reads a loop_ header and its values, and returns the first
//token after the loop.
func readLoop(lx *Lexer, d *dict.DataDict, loop Token, looped map[string]bool) (Token, error) {
	var fields []string
	cat := ""
	tok, err := lx.Next()
	for ; err == nil && tok.Kind == Tag; tok, err = lx.Next() {
		c, f, err := splitTag(tok)
		if err != nil {
			return Token{}, err
		}
		if cat == "" {
			cat = c
		} else if c != cat {
			return Token{}, molerr.AtOffset(molerr.InvalidInput, "", tok.Offset, "loop mixes _%s and _%s", cat, c)
		}
		fields = append(fields, f)
	}
	if err != nil {
		return Token{}, err
	}
	if len(fields) == 0 {
		return Token{}, molerr.AtOffset(molerr.InvalidInput, "", loop.Offset, "loop_ without tags")
	}
	if d.Category(cat) != nil {
		e := molerr.AtOffset(molerr.SchemaViolation, "", loop.Offset, "category _%s defined twice", cat)
		e.Category = cat
		return Token{}, e
	}
	c := dict.NewCategory(cat, fields...)
	var row []string
	for ; err == nil && tok.Kind == Value; tok, err = lx.Next() {
		if row == nil {
			row = make([]string, 0, len(fields))
		}
		row = append(row, stored(tok))
		if len(row) == len(fields) {
			c.Rows = append(c.Rows, row)
			row = nil
		}
	}
	if err != nil {
		return Token{}, err
	}
	if row != nil {
		e := molerr.AtOffset(molerr.SchemaViolation, "", tok.Offset, "loop of _%s is not rectangular: %d values left over for %d fields", cat, len(row), len(fields))
		e.Category = cat
		e.Row = len(c.Rows)
		return Token{}, e
	}
	looped[cat] = true
	if len(c.Rows) > 0 {
		d.Put(c)
	}
	return tok, nil
}

/*
 * lexer.go, part of gomol.
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

//Package cif reads and writes the text tabular structure format (mmCIF).
//
//The reader turns the first data block of a file into a DataDict. The
//writer produces the same layout the PDB distributes: one "#" line
//between categories, single-row categories as aligned key-value pairs,
//and loops for everything else.
package cif

import (
	"bytes"
	"strings"

	"github.com/rmera/gomol/molerr"
)

//TokenKind tells what a token is.
type TokenKind int

const (
	EOF TokenKind = iota
	Data
	Loop
	Save
	Global
	Stop
	Tag
	Value
)

//Token is one lexical element. For Data, Text is the block name; for Tag,
//the name without the leading underscore. Quoted is set for values that
//were quoted or were text fields, which can't be sentinels.
type Token struct {
	Kind   TokenKind
	Text   string
	Quoted bool
	Offset int64
}

//Lexer splits CIF text into tokens.
type Lexer struct {
	b   []byte
	pos int
}

//NewLexer returns a lexer over b.
func NewLexer(b []byte) *Lexer { return &Lexer{b: b} }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (l *Lexer) atLineStart(i int) bool {
	return i == 0 || l.b[i-1] == '\n'
}

//Next returns the next token, a token of kind EOF at the end of the input.
func (l *Lexer) Next() (Token, error) {
	for l.pos < len(l.b) {
		c := l.b[l.pos]
		if isSpace(c) {
			l.pos++
			continue
		}
		if c == '#' {
			for l.pos < len(l.b) && l.b[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		break
	}
	start := l.pos
	if start >= len(l.b) {
		return Token{Kind: EOF, Offset: int64(start)}, nil
	}
	c := l.b[start]
	switch {
	case c == ';' && l.atLineStart(start):
		return l.textField()
	case c == '\'' || c == '"':
		if start+2 < len(l.b) && l.b[start+1] == c && l.b[start+2] == c {
			return l.tripleQuoted(c)
		}
		return l.quoted(c)
	}
	for l.pos < len(l.b) && !isSpace(l.b[l.pos]) {
		l.pos++
	}
	word := string(l.b[start:l.pos])
	tok := Token{Kind: Value, Text: word, Offset: int64(start)}
	lower := strings.ToLower(word)
	switch {
	case word[0] == '_':
		tok.Kind = Tag
		tok.Text = word[1:]
	case lower == "loop_":
		tok.Kind = Loop
	case strings.HasPrefix(lower, "data_"):
		tok.Kind = Data
		tok.Text = word[5:]
	case strings.HasPrefix(lower, "save_"):
		tok.Kind = Save
		tok.Text = word[5:]
	case lower == "global_":
		tok.Kind = Global
	case lower == "stop_":
		tok.Kind = Stop
	}
	return tok, nil
}

//A quote closes a value only when followed by whitespace or the end of
//the input, so it's'fine is a single value.
func (l *Lexer) quoted(q byte) (Token, error) {
	start := l.pos
	for i := start + 1; i < len(l.b); i++ {
		switch l.b[i] {
		case '\n':
			return Token{}, molerr.AtOffset(molerr.InvalidInput, "", int64(start), "unbalanced quote")
		case q:
			if i+1 == len(l.b) || isSpace(l.b[i+1]) {
				l.pos = i + 1
				return Token{Kind: Value, Text: string(l.b[start+1 : i]), Quoted: true, Offset: int64(start)}, nil
			}
		}
	}
	return Token{}, molerr.AtOffset(molerr.InvalidInput, "", int64(start), "unbalanced quote")
}

func (l *Lexer) tripleQuoted(q byte) (Token, error) {
	start := l.pos
	end := bytes.Index(l.b[start+3:], []byte{q, q, q})
	if end < 0 {
		return Token{}, molerr.AtOffset(molerr.InvalidInput, "", int64(start), "unterminated triple-quoted string")
	}
	text := string(l.b[start+3 : start+3+end])
	l.pos = start + 3 + end + 3
	return Token{Kind: Value, Text: text, Quoted: true, Offset: int64(start)}, nil
}

//A text field runs from a ';' at the start of a line to the next line
//that starts with ';'. The newline before the closing ';' is not part of
//the value.
func (l *Lexer) textField() (Token, error) {
	start := l.pos
	end := bytes.Index(l.b[start+1:], []byte("\n;"))
	if end < 0 {
		return Token{}, molerr.AtOffset(molerr.InvalidInput, "", int64(start), "unterminated text field")
	}
	text := l.b[start+1 : start+1+end]
	text = bytes.TrimSuffix(text, []byte{'\r'})
	l.pos = start + 1 + end + 2
	return Token{Kind: Value, Text: strings.ReplaceAll(string(text), "\r\n", "\n"), Quoted: true, Offset: int64(start)}, nil
}

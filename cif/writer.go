/*
 * writer.go, part of gomol.
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
	"bytes"
	"strings"

	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/molerr"
)

//Write returns d as CIF text. d is validated first; categories are written
//in order.
func Write(d *dict.DataDict) ([]byte, error) {
	if err := dict.Validate(d); err != nil {
		return nil, molerr.Decorate(err, "cif.Write")
	}
	var b bytes.Buffer
	name := d.Name
	if name == "" {
		name = "unnamed"
	}
	b.WriteString("data_" + name + "\n#\n")
	for _, c := range d.Categories() {
		if len(c.Rows) == 1 {
			writeItems(&b, c)
		} else {
			writeLoop(&b, c)
		}
		b.WriteString("#\n")
	}
	return b.Bytes(), nil
}

func writeItems(b *bytes.Buffer, c *dict.Category) {
	width := 0
	for _, f := range c.Fields {
		if n := len(c.Name) + len(f) + 2; n > width {
			width = n
		}
	}
	for j, f := range c.Fields {
		tag := "_" + c.Name + "." + f
		v := Quote(c.Rows[0][j])
		b.WriteString(tag)
		if strings.HasPrefix(v, ";") {
			b.WriteString("\n" + v + "\n")
			continue
		}
		b.WriteString(strings.Repeat(" ", width-len(tag)+1))
		b.WriteString(v + "\n")
	}
}

func writeLoop(b *bytes.Buffer, c *dict.Category) {
	b.WriteString("loop_\n")
	for _, f := range c.Fields {
		b.WriteString("_" + c.Name + "." + f + "\n")
	}
	quoted := make([][]string, len(c.Rows))
	widths := make([]int, len(c.Fields))
	for i, r := range c.Rows {
		quoted[i] = make([]string, len(r))
		for j, v := range r {
			q := Quote(v)
			quoted[i][j] = q
			if !strings.HasPrefix(q, ";") && len(q) > widths[j] {
				widths[j] = len(q)
			}
		}
	}
	for _, r := range quoted {
		line := 0
		for j, q := range r {
			if strings.HasPrefix(q, ";") {
				if line > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(q + "\n")
				line = 0
				continue
			}
			if line > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(q)
			line += len(q) + 1
			if j < len(r)-1 {
				b.WriteString(strings.Repeat(" ", widths[j]-len(q)))
			}
		}
		if line > 0 {
			//trailing padding is not wanted
			trimTrailing(b)
			b.WriteByte('\n')
		}
	}
}

func trimTrailing(b *bytes.Buffer) {
	s := b.Bytes()
	n := len(s)
	for n > 0 && s[n-1] == ' ' {
		n--
	}
	b.Truncate(n)
}

//Quote returns v in the form it must be written in: bare when possible,
//in single or double quotes when it contains blanks or could be taken for
//something else, and as a ';' text field when it spans lines or no quote
//character can close it.
func Quote(v string) string {
	if v == "" {
		return dict.Unknown
	}
	if dict.IsLiteral(v) {
		return "'" + dict.Text(v) + "'"
	}
	if strings.ContainsAny(v, "\n\r") {
		return textField(v)
	}
	if !needsQuotes(v) {
		return v
	}
	if !strings.Contains(v, "' ") && !strings.Contains(v, "'\t") && !strings.HasSuffix(v, "'") {
		return "'" + v + "'"
	}
	if !strings.Contains(v, "\" ") && !strings.Contains(v, "\"\t") && !strings.HasSuffix(v, "\"") {
		return "\"" + v + "\""
	}
	return textField(v)
}

func textField(v string) string {
	return ";" + v + "\n;"
}

func needsQuotes(v string) bool {
	if v == dict.Unknown || v == dict.NotApplicable {
		return false
	}
	if strings.ContainsAny(v, " \t") {
		return true
	}
	switch v[0] {
	case '_', '#', '$', '\'', '"', ';', '[', ']':
		return true
	}
	lower := strings.ToLower(v)
	if lower == "loop_" || lower == "global_" || lower == "stop_" ||
		strings.HasPrefix(lower, "data_") || strings.HasPrefix(lower, "save_") {
		return true
	}
	return false
}

/*
 * access.go, part of gomol.
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
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rmera/gomol/molerr"
)

//IsSentinel is true for "?", "." and the empty string.
func IsSentinel(v string) bool {
	return v == Unknown || v == NotApplicable || v == ""
}

//Normalize returns the stored form of v: the empty string becomes "?".
func Normalize(v string) string {
	if v == "" {
		return Unknown
	}
	return v
}

//literal marks a stored "?" or "." that is text and not a sentinel.
const literal = "\x00"

//Literal returns the stored form of a value that was quoted in a file.
//Quoted "?" and "." are plain text, and are stored so that IsSentinel is
//false for them.
func Literal(v string) string {
	if v == Unknown || v == NotApplicable {
		return literal + v
	}
	return Normalize(v)
}

//IsLiteral is true for a stored value made by Literal from "?" or ".".
func IsLiteral(v string) bool { return strings.HasPrefix(v, literal) }

//Text returns the text of a stored value.
func Text(v string) string { return strings.TrimPrefix(v, literal) }

//FormatFloat returns the canonical decimal form of f. When decimals is
//non-negative f is first rounded to that many places. The shortest
//representation is used, always with a decimal point ("90.0", not "90").
func FormatFloat(f float64, decimals int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Unknown
	}
	if decimals >= 0 {
		p := math.Pow(10, float64(decimals))
		f = math.Round(f*p) / p
	}
	if f == 0 {
		f = 0 //no negative zero
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

//FormatFixed formats f with exactly decimals places.
func FormatFixed(f float64, decimals int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Unknown
	}
	s := strconv.FormatFloat(f, 'f', decimals, 64)
	if strings.TrimLeft(s, "-0.") == "" {
		s = strings.TrimPrefix(s, "-")
	}
	return s
}

//FormatInt formats an integer.
func FormatInt(i int64) string { return strconv.FormatInt(i, 10) }

//IsNumber is true if v is a decimal number as written in structure files.
func IsNumber(v string) bool {
	if v == "" || IsSentinel(v) {
		return false
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil && !strings.ContainsAny(v, "xXnNiI_")
}

//CoerceNumbers rewrites every non-integer number of d in canonical
//decimal form ("1.50" becomes "1.5"). Integers and other values are kept.
func CoerceNumbers(d *DataDict) {
	for _, c := range d.Categories() {
		for _, r := range c.Rows {
			for j, v := range r {
				if !strings.ContainsAny(v, ".eE") || !IsNumber(v) {
					continue
				}
				f, _ := strconv.ParseFloat(v, 64)
				r[j] = FormatFloat(f, -1)
			}
		}
	}
}

func (d *DataDict) lookup(category string, row int, field string) string {
	c := d.Category(category)
	if c == nil || row < 0 || row >= len(c.Rows) {
		return Unknown
	}
	return c.stored(row, field)
}

//Optional returns the value at category, row, field and true, or "" and
//false if the value is a sentinel or doesn't exist.
func (d *DataDict) Optional(category string, row int, field string) (string, bool) {
	v := d.lookup(category, row, field)
	if IsSentinel(v) {
		return "", false
	}
	return Text(v), true
}

//Get returns the value at category, row, field, "?" if it doesn't exist.
func (d *DataDict) Get(category string, row int, field string) string {
	return Text(d.lookup(category, row, field))
}

//Int decodes the value at category, row, field as an integer. The bool is
//false for sentinels and absent values. A value that is not an integer
//gives an InvalidInput error.
func (d *DataDict) Int(category string, row int, field string) (int, bool, error) {
	v, ok := d.Optional(category, row, field)
	if !ok {
		return 0, false, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, molerr.InEntry(molerr.InvalidInput, category, row, field, "%q is not an integer", v)
	}
	return i, true, nil
}

//Float decodes the value at category, row, field as a number.
func (d *DataDict) Float(category string, row int, field string) (float64, bool, error) {
	v, ok := d.Optional(category, row, field)
	if !ok {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, molerr.InEntry(molerr.InvalidInput, category, row, field, "%q is not a finite number", v)
	}
	return f, true, nil
}

//Date decodes the value at category, row, field as a date, written
//either as 2006-01-02 or in the PDB header form 02-Jan-06.
func (d *DataDict) Date(category string, row int, field string) (time.Time, bool, error) {
	v, ok := d.Optional(category, row, field)
	if !ok {
		return time.Time{}, false, nil
	}
	t, err := ParseDate(v)
	if err != nil {
		return time.Time{}, false, molerr.InEntry(molerr.InvalidInput, category, row, field, "%q is not a date", v)
	}
	return t, true, nil
}

//ParseDate reads a date in either of the forms used by structure files.
//Two digit years from 69 on are taken as 19xx, the rest as 20xx.
func ParseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err == nil {
		return t, nil
	}
	t, err2 := time.Parse("02-Jan-06", strings.Title(strings.ToLower(v)))
	if err2 != nil {
		return time.Time{}, err
	}
	return t, nil
}

//FormatDate writes t in the 2006-01-02 form.
func FormatDate(t time.Time) string { return t.Format("2006-01-02") }

/*
 * molerr_test.go, part of gomol.
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

package molerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorIs(Te *testing.T) {
	err := AtOffset(InvalidInput, Truncated, 12, "need %d bytes", 4)
	if !errors.Is(err, ErrInvalidInput) {
		Te.Error("truncated error should match ErrInvalidInput")
	}
	if !errors.Is(err, ErrTruncated) {
		Te.Error("truncated error should match ErrTruncated")
	}
	if errors.Is(err, ErrBadTag) {
		Te.Error("truncated error should not match ErrBadTag")
	}
	if errors.Is(err, ErrSchemaViolation) {
		Te.Error("truncated error should not match ErrSchemaViolation")
	}
	wrapped := fmt.Errorf("outer: %w", err)
	if !errors.Is(wrapped, ErrTruncated) {
		Te.Error("wrapped error lost its kind")
	}
	if KindOf(wrapped) != InvalidInput {
		Te.Errorf("KindOf returned %v", KindOf(wrapped))
	}
}

func TestDecorate(Te *testing.T) {
	err := InEntry(SchemaViolation, "atom_site", 3, "Cartn_x", "empty value")
	Decorate(err, "Validate")
	Decorate(err, "Write")
	msg := err.Error()
	if !strings.HasPrefix(msg, "Write: Validate: schema violation") {
		Te.Errorf("unexpected message %q", msg)
	}
	if !strings.Contains(msg, "_atom_site row 3 field Cartn_x") {
		Te.Errorf("position missing from %q", msg)
	}
	if d := err.Decorate(""); len(d) != 2 {
		Te.Errorf("expected 2 decorations, got %v", d)
	}
	plain := Decorate(errors.New("boom"), "Parse")
	if plain.Error() != "Parse: boom" {
		Te.Errorf("unexpected plain decoration %q", plain.Error())
	}
}

func TestShift(Te *testing.T) {
	err := AtOffset(InvalidInput, BadTag, 2, "tag 0xc1")
	Shift(err, 10)
	if err.Offset != 12 {
		Te.Errorf("offset should be 12, got %d", err.Offset)
	}
	e2 := New(Arithmetic, "singular")
	Shift(e2, 10)
	if e2.Offset != -1 {
		Te.Errorf("offset-less error got an offset: %d", e2.Offset)
	}
}

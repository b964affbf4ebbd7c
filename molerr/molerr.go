/*
 * molerr.go, part of gomol.
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

//Package molerr contains the error type shared by all gomol packages.
//Errors carry a Kind, and, when it applies, the byte offset in the input
//at which a parser failed, or the category/row/field triple of a DataDict
//entry that failed validation.
package molerr

import (
	"errors"
	"fmt"
	"strings"
)

//Kind classifies an error.
type Kind int

const (
	Unknown Kind = iota
	InvalidInput
	SchemaViolation
	InvariantViolation
	UnsupportedFeature
	Arithmetic
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case SchemaViolation:
		return "schema violation"
	case InvariantViolation:
		return "invariant violation"
	case UnsupportedFeature:
		return "unsupported feature"
	case Arithmetic:
		return "arithmetic error"
	}
	return "unknown error"
}

//Sub-kinds used by the binary decoders.
const (
	Truncated     = "truncated"
	BadTag        = "bad tag"
	CodecMismatch = "codec mismatch"
)

//Error is the error type returned by every package in gomol.
//Decorate allows to add the names of the functions the error
//traverses on its way up, without wrapping it.
type Error struct {
	Kind     Kind
	Sub      string //one of the sub-kinds, or empty.
	Offset   int64  //byte offset in the input, -1 if it doesn't apply.
	Category string
	Row      int //-1 if it doesn't apply.
	Field    string
	message  string
	deco     []string
	cause    error
}

//Error returns the message, prefixed by the decorations (outermost first).
func (err *Error) Error() string {
	var b strings.Builder
	for i := len(err.deco) - 1; i >= 0; i-- {
		b.WriteString(err.deco[i])
		b.WriteString(": ")
	}
	b.WriteString(err.Kind.String())
	if err.Sub != "" {
		b.WriteString(" (" + err.Sub + ")")
	}
	if err.Offset >= 0 {
		fmt.Fprintf(&b, " at byte %d", err.Offset)
	}
	if err.Category != "" {
		b.WriteString(" in _" + err.Category)
		if err.Row >= 0 {
			fmt.Fprintf(&b, " row %d", err.Row)
		}
		if err.Field != "" {
			b.WriteString(" field " + err.Field)
		}
	}
	if err.message != "" {
		b.WriteString(": " + err.message)
	}
	if err.cause != nil {
		b.WriteString(": " + err.cause.Error())
	}
	return b.String()
}

//Decorate adds dec to the decoration slice of the error and returns the
//resulting slice. An empty dec just returns the current slice.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Message returns the bare message, without kind or decorations.
func (err *Error) Message() string { return err.message }

func (err *Error) Unwrap() error { return err.cause }

//Is matches sentinel errors by kind and, if the sentinel has one, by sub-kind.
func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.message != "" || t.Category != "" {
		return false
	}
	if t.Kind != err.Kind {
		return false
	}
	return t.Sub == "" || t.Sub == err.Sub
}

//Sentinels for errors.Is.
var (
	ErrInvalidInput       = &Error{Kind: InvalidInput, Offset: -1, Row: -1}
	ErrSchemaViolation    = &Error{Kind: SchemaViolation, Offset: -1, Row: -1}
	ErrInvariantViolation = &Error{Kind: InvariantViolation, Offset: -1, Row: -1}
	ErrUnsupported        = &Error{Kind: UnsupportedFeature, Offset: -1, Row: -1}
	ErrArithmetic         = &Error{Kind: Arithmetic, Offset: -1, Row: -1}
	ErrTruncated          = &Error{Kind: InvalidInput, Sub: Truncated, Offset: -1, Row: -1}
	ErrBadTag             = &Error{Kind: InvalidInput, Sub: BadTag, Offset: -1, Row: -1}
	ErrCodecMismatch      = &Error{Kind: InvalidInput, Sub: CodecMismatch, Offset: -1, Row: -1}
)

//New returns an error of the given kind with no position information.
func New(kind Kind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Offset: -1, Row: -1, message: fmt.Sprintf(format, a...)}
}

//AtOffset returns an error located at a byte offset of the input.
func AtOffset(kind Kind, sub string, offset int64, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Sub: sub, Offset: offset, Row: -1, message: fmt.Sprintf(format, a...)}
}

//InEntry returns an error located at a category/row/field of a DataDict.
//row can be -1 and field empty when the whole category is at fault.
func InEntry(kind Kind, category string, row int, field string, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Offset: -1, Category: category, Row: row, Field: field, message: fmt.Sprintf(format, a...)}
}

//Wrap returns an error of the given kind caused by err.
func Wrap(kind Kind, err error, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Offset: -1, Row: -1, message: fmt.Sprintf(format, a...), cause: err}
}

//Decorate adds caller to err if err is an *Error, and returns err.
//Other errors are wrapped with fmt.Errorf.
func Decorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
		return err
	}
	return fmt.Errorf("%s: %w", caller, err)
}

//KindOf returns the Kind of err, or Unknown if err is not a gomol error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

//Shift adds delta to the offset of err, if err carries one. It is used by
//decoders that work on a slice of a larger buffer.
func Shift(err error, delta int64) error {
	var e *Error
	if errors.As(err, &e) && e.Offset >= 0 {
		e.Offset += delta
	}
	return err
}

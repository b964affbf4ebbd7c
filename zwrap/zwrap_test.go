/*
 * zwrap_test.go, part of gomol.
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

package zwrap

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rmera/gomol/molerr"
)

var plain = []byte(strings.Repeat("ATOM      1  N   ALA A   1      11.104   6.134  -6.504  1.00  0.00           N\n", 20))

type closeCounter struct {
	io.Reader
	closed int
}

func (c *closeCounter) Close() error { c.closed++; return nil }

func TestRoundTrip(Te *testing.T) {
	for _, k := range []Kind{None, Gzip, Zstd, LZ4} {
		z, err := Compress(plain, k)
		if err != nil {
			Te.Fatalf("%s: %v", k, err)
		}
		if Sniff(z) != k {
			Te.Errorf("%s data sniffed as %s", k, Sniff(z))
		}
		if k != None && len(z) >= len(plain) {
			Te.Errorf("%s didn't compress: %d bytes", k, len(z))
		}
		back, err := Decompress(z)
		if err != nil {
			Te.Fatalf("%s: %v", k, err)
		}
		if !bytes.Equal(back, plain) {
			Te.Errorf("%s round trip changed the data", k)
		}
	}
}

//WrapMaybe should not fail, since it guesses if the stream is compressed.
func TestWrapMaybe(Te *testing.T) {
	for _, k := range []Kind{None, Gzip, Zstd, LZ4} {
		z, err := Compress(plain, k)
		if err != nil {
			Te.Fatal(err)
		}
		src := &closeCounter{Reader: bytes.NewReader(z)}
		r, err := WrapMaybe(src)
		if err != nil {
			Te.Fatalf("%s: %v", k, err)
		}
		if r.Kind != k {
			Te.Errorf("wrapped as %s, want %s", r.Kind, k)
		}
		got, err := io.ReadAll(r)
		if err != nil {
			Te.Error(err)
		}
		if !bytes.Equal(got, plain) {
			Te.Errorf("%s: wrong content", k)
		}
		if err := r.Close(); err != nil {
			Te.Error(err)
		}
		if src.closed != 1 {
			Te.Errorf("%s: underlying reader closed %d times", k, src.closed)
		}
	}
}

func TestCorrupted(Te *testing.T) {
	z, err := Compress(plain, Gzip)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := Decompress(z[:len(z)/2]); !errors.Is(err, molerr.ErrInvalidInput) {
		Te.Errorf("truncated gzip gave %v", err)
	}
	src := &closeCounter{Reader: bytes.NewReader([]byte{0x1f, 0x8b, 0, 0})}
	if _, err := WrapMaybe(src); err == nil {
		Te.Errorf("bad gzip header accepted")
	}
	if src.closed != 1 {
		Te.Errorf("reader left open on error")
	}
	if _, err := ParseKind("bzip2"); !errors.Is(err, molerr.ErrUnsupported) {
		Te.Errorf("bzip2 gave %v", err)
	}
	if k, _ := ParseKind("zstd"); k != Zstd {
		Te.Errorf("zstd parsed as %s", k)
	}
}

func TestEmpty(Te *testing.T) {
	src := &closeCounter{Reader: bytes.NewReader(nil)}
	r, err := WrapMaybe(src)
	if err != nil {
		Te.Fatal(err)
	}
	b, _ := io.ReadAll(r)
	if len(b) != 0 || r.Kind != None {
		Te.Errorf("empty stream gave %d bytes of %s", len(b), r.Kind)
	}
	r.Close()
}

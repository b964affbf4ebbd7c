/*
 * zwrap.go, part of gomol.
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

//Package zwrap detects compressed structure files and wraps them so
//reading gives the plain content. gzip, zstd and lz4 frames are
//recognized by their magic numbers. On Close, the decompressor is closed,
//followed by the underlying reader.
package zwrap

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/rmera/gomol/molerr"
)

//Kind is a compression format.
type Kind int

const (
	None Kind = iota
	Gzip
	Zstd
	LZ4
)

var magics = []struct {
	kind  Kind
	magic []byte
}{
	{Gzip, []byte{0x1f, 0x8b}},
	{Zstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{LZ4, []byte{0x04, 0x22, 0x4d, 0x18}},
}

//String returns the name of the format, as accepted by ParseKind.
func (k Kind) String() string {
	switch k {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	}
	return ""
}

//ParseKind returns the Kind for a name. The empty string and "none" are None.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "", "none":
		return None, nil
	case "gzip", "gz":
		return Gzip, nil
	case "zstd", "zst":
		return Zstd, nil
	case "lz4":
		return LZ4, nil
	}
	return None, molerr.New(molerr.UnsupportedFeature, "unknown compression %q", name)
}

//Sniff returns the compression format of data from its first bytes.
func Sniff(data []byte) Kind {
	for _, m := range magics {
		if bytes.HasPrefix(data, m.magic) {
			return m.kind
		}
	}
	return None
}

//Reader reads the decompressed content of a stream.
type Reader struct {
	Kind Kind
	fp   io.ReadCloser
	zrdr io.Reader
	done func() error //closes the decompressor, nil if there is none.
}

//Read makes sure we read from the decompressed stream and
//not the underlying one.
func (r *Reader) Read(p []byte) (int, error) {
	return r.zrdr.Read(p)
}

//Close closes the decompressor, then the underlying ReadCloser.
func (r *Reader) Close() error {
	var errs []error
	if r.done != nil {
		errs = append(errs, r.done())
	}
	if r.fp != nil {
		errs = append(errs, r.fp.Close())
	}
	return errors.Join(errs...)
}

//WrapMaybe decides if the stream fp is compressed, and wraps it if needed.
//A plain stream is returned unchanged, buffered. The returned Reader
//owns fp.
func WrapMaybe(fp io.ReadCloser) (*Reader, error) {
	br := bufio.NewReader(fp)
	head, err := br.Peek(4)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		fp.Close()
		return nil, molerr.Wrap(molerr.InvalidInput, err, "zwrap.WrapMaybe")
	}
	r, err := wrap(br, Sniff(head))
	if err != nil {
		fp.Close()
		return nil, molerr.Decorate(err, "zwrap.WrapMaybe")
	}
	r.fp = fp
	return r, nil
}

func wrap(src io.Reader, k Kind) (*Reader, error) {
	r := &Reader{Kind: k, zrdr: src}
	switch k {
	case Gzip:
		z, err := gzip.NewReader(src)
		if err != nil {
			return nil, molerr.Wrap(molerr.InvalidInput, err, "bad gzip stream")
		}
		r.zrdr, r.done = z, z.Close
	case Zstd:
		z, err := zstd.NewReader(src)
		if err != nil {
			return nil, molerr.Wrap(molerr.InvalidInput, err, "bad zstd stream")
		}
		r.zrdr = z
		r.done = func() error { z.Close(); return nil }
	case LZ4:
		r.zrdr = lz4.NewReader(src)
	}
	return r, nil
}

//Decompress returns the plain content of data, which is returned as-is
//if it is not compressed.
func Decompress(data []byte) ([]byte, error) {
	k := Sniff(data)
	if k == None {
		return data, nil
	}
	r, err := wrap(bytes.NewReader(data), k)
	if err != nil {
		return nil, molerr.Decorate(err, "zwrap.Decompress")
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, molerr.Wrap(molerr.InvalidInput, err, "zwrap.Decompress: corrupted %s data", k)
	}
	return out, nil
}

//Compress returns data compressed in the format k. None returns data unchanged.
func Compress(data []byte, k Kind) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser
	switch k {
	case None:
		return data, nil
	case Gzip:
		w = gzip.NewWriter(&buf)
	case Zstd:
		z, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, molerr.Wrap(molerr.Unknown, err, "zwrap.Compress")
		}
		w = z
	case LZ4:
		w = lz4.NewWriter(&buf)
	default:
		return nil, molerr.New(molerr.UnsupportedFeature, "zwrap.Compress: compression %d", int(k))
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, molerr.Wrap(molerr.Unknown, err, "zwrap.Compress")
	}
	if err := w.Close(); err != nil {
		return nil, molerr.Wrap(molerr.Unknown, err, "zwrap.Compress")
	}
	return buf.Bytes(), nil
}

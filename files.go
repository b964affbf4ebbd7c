/*
 * files.go, part of gomol.
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
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"

	"github.com/rmera/gomol/bcif"
	"github.com/rmera/gomol/cif"
	"github.com/rmera/gomol/dict"
	"github.com/rmera/gomol/mmtf"
	"github.com/rmera/gomol/molerr"
	"github.com/rmera/gomol/pdb"
	"github.com/rmera/gomol/zwrap"
)

//Format is a structure file format. The caller always says which one to
//use, nothing is guessed from file names.
type Format int

const (
	FormatCIF Format = iota + 1
	FormatPDB
	FormatBCIF
	FormatMMTF
)

func (f Format) String() string {
	switch f {
	case FormatCIF:
		return "cif"
	case FormatPDB:
		return "pdb"
	case FormatBCIF:
		return "bcif"
	case FormatMMTF:
		return "mmtf"
	}
	return "unknown"
}

//ParseFormat returns the format with the given name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "cif", "mmcif":
		return FormatCIF, nil
	case "pdb":
		return FormatPDB, nil
	case "bcif", "binarycif":
		return FormatBCIF, nil
	case "mmtf":
		return FormatMMTF, nil
	}
	return 0, molerr.New(molerr.UnsupportedFeature, "unknown format %q", name)
}

//ParseOptions controls how files are read.
type ParseOptions struct {
	Format        Format
	Decompress    bool //accept gzip, zstd or lz4 compressed input
	CoerceNumbers bool //rewrite numbers in canonical decimal form
	Logger        *slog.Logger
}

//DefaultParseOptions returns options to read files in format f, compressed or not.
func DefaultParseOptions(f Format) *ParseOptions {
	return &ParseOptions{Format: f, Decompress: true}
}

//WriteOptions controls how files are written.
type WriteOptions struct {
	Format              Format
	FixedPointPrecision int8   //decimal places stored as fixed point in binary formats
	Compress            string //"", "gzip", "zstd" or "lz4"
	Warn                func(string)
	Logger              *slog.Logger
}

//DefaultWriteOptions returns options to write uncompressed files in format f.
func DefaultWriteOptions(f Format) *WriteOptions {
	return &WriteOptions{Format: f, FixedPointPrecision: 3}
}

func logOr(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

//Parse reads data in the format given in opts and returns its content as a DataDict.
//Nothing is returned if the data is not well formed.
func Parse(data []byte, opts *ParseOptions) (*dict.DataDict, error) {
	if opts == nil {
		return nil, molerr.New(molerr.InvalidInput, "Parse: a format is needed")
	}
	var err error
	if opts.Decompress {
		if data, err = zwrap.Decompress(data); err != nil {
			return nil, molerr.Decorate(err, "Parse")
		}
	}
	var d *dict.DataDict
	switch opts.Format {
	case FormatCIF:
		d, err = cif.Read(data)
	case FormatPDB:
		d, err = pdb.Read(data)
	case FormatBCIF:
		d, err = bcif.Read(data)
	case FormatMMTF:
		d, err = mmtf.Read(data)
	default:
		return nil, molerr.New(molerr.UnsupportedFeature, "Parse: unknown format %d", opts.Format)
	}
	if err != nil {
		return nil, molerr.Decorate(err, "Parse")
	}
	if opts.CoerceNumbers {
		dict.CoerceNumbers(d)
	}
	logOr(opts.Logger).Debug("parsed", "format", opts.Format.String(), "name", d.Name, "categories", d.Len())
	return d, nil
}

//Read parses everything in r, which is closed afterwards.
func Read(r io.ReadCloser, opts *ParseOptions) (*dict.DataDict, error) {
	if opts == nil {
		r.Close()
		return nil, molerr.New(molerr.InvalidInput, "Read: a format is needed")
	}
	var src io.ReadCloser = r
	if opts.Decompress {
		z, err := zwrap.WrapMaybe(r)
		if err != nil {
			return nil, molerr.Decorate(err, "Read")
		}
		src = z
	}
	data, err := io.ReadAll(src)
	cerr := src.Close()
	if err != nil {
		return nil, molerr.Wrap(molerr.InvalidInput, err, "Read")
	}
	if cerr != nil {
		return nil, molerr.Wrap(molerr.InvalidInput, cerr, "Read")
	}
	o := *opts
	o.Decompress = false
	return Parse(data, &o)
}

//ReadFile maps the file at path into memory and parses it. The format must
//still be given in opts.
func ReadFile(path string, opts *ParseOptions) (*dict.DataDict, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, molerr.Wrap(molerr.InvalidInput, err, "ReadFile")
	}
	defer fp.Close()
	st, err := fp.Stat()
	if err != nil {
		return nil, molerr.Wrap(molerr.InvalidInput, err, "ReadFile")
	}
	if st.Size() == 0 {
		return Parse(nil, opts)
	}
	mm, err := mmap.Map(fp, mmap.RDONLY, 0)
	if err != nil {
		return nil, molerr.Wrap(molerr.InvalidInput, err, "ReadFile")
	}
	defer mm.Unmap()
	return Parse(mm, opts)
}

//Write encodes d in the format given in opts, compressing the result if requested.
func Write(d *dict.DataDict, opts *WriteOptions) ([]byte, error) {
	if opts == nil {
		return nil, molerr.New(molerr.InvalidInput, "Write: a format is needed")
	}
	ck, err := zwrap.ParseKind(opts.Compress)
	if err != nil {
		return nil, molerr.Decorate(err, "Write")
	}
	var out []byte
	switch opts.Format {
	case FormatCIF:
		out, err = cif.Write(d)
	case FormatPDB:
		out, err = pdb.Write(d)
	case FormatBCIF:
		out, err = bcif.WriteWith(d, &bcif.Options{Precision: int(opts.FixedPointPrecision)})
	case FormatMMTF:
		out, err = mmtf.Write(d)
	default:
		return nil, molerr.New(molerr.UnsupportedFeature, "Write: unknown format %d", opts.Format)
	}
	if err != nil {
		return nil, molerr.Decorate(err, "Write")
	}
	if out, err = zwrap.Compress(out, ck); err != nil {
		return nil, molerr.Decorate(err, "Write")
	}
	return out, nil
}

//Load parses data and builds its models.
func Load(data []byte, popts *ParseOptions, bopts *BuildOptions) ([]*Model, error) {
	d, err := Parse(data, popts)
	if err != nil {
		return nil, molerr.Decorate(err, "Load")
	}
	ms, err := Build(d, bopts)
	if err != nil {
		return nil, molerr.Decorate(err, "Load")
	}
	return ms, nil
}

//Save serializes the models under the given name and writes them. Models
//generated from an assembly are written, but with a warning, sent to the
//Warn function of opts, if any, and to the logger, as programs reading the file
//may not expect the repeated chains.
func Save(name string, models []*Model, opts *WriteOptions) ([]byte, error) {
	if opts == nil {
		return nil, molerr.New(molerr.InvalidInput, "Save: a format is needed")
	}
	for _, m := range models {
		if m.FromAssembly == "" {
			continue
		}
		msg := "model " + m.String() + " was generated from assembly " + m.FromAssembly +
			", its copied chains may not be represented faithfully"
		if opts.Warn != nil {
			opts.Warn(msg)
		}
		logOr(opts.Logger).Warn(msg, "assembly", m.FromAssembly, "format", opts.Format.String())
		break
	}
	d, err := Serialize(name, models...)
	if err != nil {
		return nil, molerr.Decorate(err, "Save")
	}
	out, err := Write(d, opts)
	if err != nil {
		return nil, molerr.Decorate(err, "Save")
	}
	return out, nil
}

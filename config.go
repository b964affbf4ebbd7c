/*
 * config.go, part of gomol.
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

	"github.com/pelletier/go-toml"

	"github.com/rmera/gomol/molerr"
)

//Config collects the options for reading, building and writing, as read from a
//TOML file such as:
//
//	[parse]
//	format = "cif"
//	decompress = true
//
//	[build]
//	synthesize_bonds = true
//	anisotropy = false
//	alt_loc = "B"
//
//	[write]
//	format = "bcif"
//	precision = 3
//	compress = "zstd"
//
//Missing keys keep the default values.
type Config struct {
	Parse *ParseOptions
	Build *BuildOptions
	Write *WriteOptions
}

type configFile struct {
	Parse struct {
		Format        string `toml:"format"`
		Decompress    *bool  `toml:"decompress"`
		CoerceNumbers bool   `toml:"coerce_numbers"`
	} `toml:"parse"`
	Build struct {
		SynthesizeBonds *bool   `toml:"synthesize_bonds"`
		Anisotropy      *bool   `toml:"anisotropy"`
		AltLoc          *string `toml:"alt_loc"`
	} `toml:"build"`
	Write struct {
		Format    string `toml:"format"`
		Precision *int64 `toml:"precision"`
		Compress  string `toml:"compress"`
	} `toml:"write"`
}

//LoadConfig reads a TOML configuration from r. Formats default to CIF.
func LoadConfig(r io.Reader) (*Config, error) {
	var f configFile
	if err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, molerr.Wrap(molerr.InvalidInput, err, "LoadConfig")
	}
	format := func(name string) (Format, error) {
		if name == "" {
			return FormatCIF, nil
		}
		return ParseFormat(name)
	}
	pf, err := format(f.Parse.Format)
	if err != nil {
		return nil, molerr.Decorate(err, "LoadConfig")
	}
	wf, err := format(f.Write.Format)
	if err != nil {
		return nil, molerr.Decorate(err, "LoadConfig")
	}
	c := &Config{Parse: DefaultParseOptions(pf), Build: DefaultBuildOptions(), Write: DefaultWriteOptions(wf)}
	if f.Parse.Decompress != nil {
		c.Parse.Decompress = *f.Parse.Decompress
	}
	c.Parse.CoerceNumbers = f.Parse.CoerceNumbers
	if f.Build.SynthesizeBonds != nil {
		c.Build.SynthesizeBonds = *f.Build.SynthesizeBonds
	}
	if f.Build.Anisotropy != nil {
		c.Build.Anisotropy = *f.Build.Anisotropy
	}
	if f.Build.AltLoc != nil {
		c.Build.AltLoc = *f.Build.AltLoc
	}
	if p := f.Write.Precision; p != nil {
		if *p < 0 || *p > 15 {
			return nil, molerr.New(molerr.InvalidInput, "LoadConfig: precision %d out of range", *p)
		}
		c.Write.FixedPointPrecision = int8(*p)
	}
	c.Write.Compress = f.Write.Compress
	return c, nil
}

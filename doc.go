/*
 * doc.go, part of gomol.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*Package mol is the main package of the gomol library. It provides the models, molecules,
residues and atoms of macromolecular structures, reads and writes them in the
mmCIF, PDB, BinaryCIF and MMTF formats, and offers geometric operations on them.


	**gomol Capabilities**


    Reads and writes mmCIF, PDB, BinaryCIF and MMTF files, optionally compressed
	with gzip, zstd or lz4. Every format goes through the same intermediate
	representation, a DataDict (see the dict package), so a file read in one
	format can be written in any other.

    Builds models, with polymers, branched polymers, ligands and waters, from a
	DataDict, and serializes them back. Bonds are taken from the file and, for
	standard residues, from built-in templates.

    Selects atoms, residues and molecules with queries on their attributes,
	including regular expressions, numeric comparisons and the attributes of
	the containing structures.

    Finds atoms in a sphere, or near other structures, through a spatial index.

    Translates, rotates and transforms structures, superimposes them with the
	Kabsch algorithm and calculates RMSDs. Coordinates are rounded to 12 decimal
	places after every operation, to keep floating point noise out.

    Generates biological assemblies.

    Reads options from TOML configuration files.


The library is single-threaded. Sphere queries on a model can run concurrently once its
spatial index is built (see Model.BuildIndex). Nothing else in a model can be used
from several goroutines at the same time.

*/
package mol

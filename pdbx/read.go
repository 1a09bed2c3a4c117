// Package pdbx reads the coordinates of PDBx/mmCIF files into the same Entry
// type used for PDB files.
//
// Only the atom_site category is interpreted. Author chain identifiers and
// sequence numbers are preferred over label identifiers when both are
// present, so that chains are named the same way as in the PDB format.
package pdbx

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/BurntSushi/cif"

	"github.com/pranavathiyani/predict3Di/pdb"
)

var sf = fmt.Sprintf

// Read reads a PDBx/mmCIF file with exactly one data block, as the files
// distributed by the PDB are. The conventions of
// pdb.Read apply: only the first model is kept, alternate locations are
// resolved by occupancy and HETATM residues without an alpha-carbon are
// dropped.
//
// A *pdb.ParseError is returned if the input is empty, is not a valid CIF
// file or has more than one data block. A valid file without an atom_site category results in an entry
// without chains.
func Read(r io.Reader) (*pdb.Entry, error) {
	bs, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(bs)) == 0 {
		return nil, pdb.NewParseError(0, "", "empty input")
	}

	cf, err := cif.Read(bytes.NewReader(bs))
	if err != nil {
		return nil, pdb.NewParseError(0, "", "invalid mmCIF: %s", err)
	}
	if len(cf.Blocks) != 1 {
		return nil, pdb.NewParseError(0, "",
			"expected one mmCIF data block but got %d", len(cf.Blocks))
	}
	var block *cif.DataBlock
	for _, b := range cf.Blocks {
		block = b
	}
	return ReadDataBlock(block)
}

// ReadDataBlock converts a single PDBx/mmCIF data block to an entry.
func ReadDataBlock(b *cif.DataBlock) (*pdb.Entry, error) {
	build := pdb.NewBuilder()
	build.SetIdCode(value(b, "entry.id").String())

	models, err := readAtomSites(build, b)
	if err != nil {
		return nil, err
	}
	return build.Finish(models), nil
}

func readAtomSites(build *pdb.Builder, b *cif.DataBlock) (int, error) {
	if !hasTag(b, "atom_site.cartn_x") {
		return 0, nil
	}
	loop := asLoop(b, "atom_site.cartn_x", "atom_site.cartn_y",
		"atom_site.cartn_z", "atom_site.group_pdb", "atom_site.label_atom_id",
		"atom_site.label_comp_id", "atom_site.label_asym_id",
		"atom_site.auth_asym_id", "atom_site.label_seq_id",
		"atom_site.auth_seq_id", "atom_site.pdbx_pdb_ins_code",
		"atom_site.label_alt_id", "atom_site.occupancy",
		"atom_site.pdbx_pdb_model_num")

	xs, err := floats(loop[0], "Cartn_x")
	if err != nil {
		return 0, err
	}
	ys, err := floats(loop[1], "Cartn_y")
	if err != nil {
		return 0, err
	}
	zs, err := floats(loop[2], "Cartn_z")
	if err != nil {
		return 0, err
	}
	groups, atoms, comps := strs(loop[3]), strs(loop[4]), strs(loop[5])
	chains := firstOf(strs(loop[7]), strs(loop[6]))
	seqids := firstOf(strs(loop[9]), strs(loop[8]))
	icodes, alts := strs(loop[10]), strs(loop[11])
	occs := strs(loop[12])
	modelids := strs(loop[13])
	if atoms == nil || comps == nil || chains == nil || seqids == nil {
		return 0, pdb.NewParseError(0, "atom_site",
			"missing atom, residue, chain or sequence identifiers")
	}

	n := len(xs)
	if len(ys) != n || len(zs) != n || len(atoms) != n || len(comps) != n ||
		len(chains) != n || len(seqids) != n {
		return 0, pdb.NewParseError(0, "atom_site",
			"atom_site columns have different lengths")
	}

	models, firstModel := 0, ""
	seenModels := make(map[string]bool, 1)
	for i := 0; i < n; i++ {
		if modelids != nil {
			mid := modelids[i]
			if !seenModels[mid] {
				seenModels[mid] = true
				models++
				if len(firstModel) == 0 {
					firstModel = mid
				}
			}
			if mid != firstModel {
				continue
			}
		}

		seqNum, err := strconv.Atoi(seqids[i])
		if err != nil {
			// Non-polymer label_seq_id values are '.', and those residues
			// are distinguished by chain alone.
			if !missing(seqids[i]) {
				return 0, pdb.NewParseError(0, "atom_site",
					"invalid sequence number '%s' for atom %d", seqids[i], i+1)
			}
			seqNum = 0
		}
		atom := pdb.Atom{
			Name:      atoms[i],
			AltLoc:    ' ',
			Occupancy: 1.0,
		}
		atom.X, atom.Y, atom.Z = xs[i], ys[i], zs[i]
		if alts != nil && !missing(alts[i]) {
			atom.AltLoc = alts[i][0]
		}
		if occs != nil {
			if occ, err := strconv.ParseFloat(occs[i], 64); err == nil {
				atom.Occupancy = occ
			}
		}
		icode := byte(' ')
		if icodes != nil && !missing(icodes[i]) {
			icode = icodes[i][0]
		}
		chain := chains[i]
		if missing(chain) {
			chain = "_"
		}
		het := groups != nil && groups[i] == "HETATM"
		build.AddAtom(chain, comps[i], seqNum, icode, het, atom)
	}
	if modelids == nil && n > 0 {
		models = 1
	}
	return models, nil
}

// missing reports whether a CIF value is one of the special values for
// inapplicable ('.') or unknown ('?') data.
func missing(s string) bool {
	return len(s) == 0 || s == "." || s == "?"
}

// firstOf returns the first column with at least one value that isn't
// missing, or the first column that exists at all.
func firstOf(cols ...[]string) []string {
	var exists []string
	for _, col := range cols {
		if col == nil {
			continue
		}
		if !allMissing(col) {
			return col
		}
		if exists == nil {
			exists = col
		}
	}
	return exists
}

func allMissing(col []string) bool {
	for _, s := range col {
		if !missing(s) {
			return false
		}
	}
	return true
}

// strs returns the column as strings regardless of the type the CIF reader
// inferred for it. A nil slice is returned if the column doesn't exist.
func strs(col cif.ValueLoop) []string {
	if col == nil {
		return nil
	}
	if ss := col.Strings(); ss != nil {
		return ss
	}
	if is := col.Ints(); is != nil {
		ss := make([]string, len(is))
		for i, v := range is {
			ss[i] = strconv.Itoa(v)
		}
		return ss
	}
	if fs := col.Floats(); fs != nil {
		ss := make([]string, len(fs))
		for i, v := range fs {
			ss[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		return ss
	}
	return nil
}

// floats returns the column as floating point numbers. Integer columns are
// converted. A string column is parsed and an error is returned if any value
// isn't a number.
func floats(col cif.ValueLoop, name string) ([]float64, error) {
	if col == nil {
		return nil, pdb.NewParseError(0, "atom_site", "missing %s", name)
	}
	if fs := col.Floats(); fs != nil {
		return finite(fs, name)
	}
	if is := col.Ints(); is != nil {
		fs := make([]float64, len(is))
		for i, v := range is {
			fs[i] = float64(v)
		}
		return fs, nil
	}
	ss := col.Strings()
	fs := make([]float64, len(ss))
	for i, s := range ss {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, pdb.NewParseError(0, "atom_site",
				"invalid %s value '%s' for atom %d", name, s, i+1)
		}
		fs[i] = f
	}
	return finite(fs, name)
}

// finite returns an error for the first NaN or infinite value in fs.
func finite(fs []float64, name string) ([]float64, error) {
	for i, f := range fs {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, pdb.NewParseError(0, "atom_site",
				"invalid %s value '%v' for atom %d", name, f, i+1)
		}
	}
	return fs, nil
}

func hasTag(b *cif.DataBlock, key string) bool {
	if _, ok := b.Items[key]; ok {
		return true
	}
	_, ok := b.Loops[key]
	return ok
}

// value returns the data value tagged by "key". If it does not exist, then
// an empty string is returned (wrapped in a cif.Value).
func value(b *cif.DataBlock, key string) cif.Value {
	if v, ok := b.Items[key]; ok {
		return v
	}
	return cif.AsValue("")
}

// asLoop retrieves the columns of the loop containing the data tag "key",
// in the order "key" followed by "others". Columns that don't exist are nil.
//
// If "key" is not in a loop, the tags are looked up as single data items and
// a one row loop is built from them. (A PDBx file with only one atom has no
// atom_site loop.)
func asLoop(b *cif.DataBlock, key string, others ...string) []cif.ValueLoop {
	tags := append([]string{key}, others...)
	vloop := make([]cif.ValueLoop, len(tags))
	if loop, ok := b.Loops[key]; ok {
		for i, tag := range tags {
			if _, ok := loop.Columns[tag]; ok {
				vloop[i] = loop.Get(tag)
			}
		}
		return vloop
	}
	for i, tag := range tags {
		v, ok := b.Items[tag]
		if !ok {
			continue
		}
		switch raw := v.Raw().(type) {
		case string:
			vloop[i] = cif.AsValues([]string{raw})
		case int:
			vloop[i] = cif.AsValues([]int{raw})
		case float64:
			vloop[i] = cif.AsValues([]float64{raw})
		default:
			panic(sf("Unknown value type %T for %s.", raw, tag))
		}
	}
	return vloop
}

// Package source turns raw structure files, whether uploaded, read from disk
// or downloaded from a structure database, into parsed entries.
//
// Data is always handled in memory. Gzip compression is detected from the
// data itself and the format (PDB or PDBx/mmCIF) is sniffed from the content,
// so callers never need to know what kind of file they have.
package source

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path"
	"strings"

	"github.com/pranavathiyani/predict3Di/pdb"
	"github.com/pranavathiyani/predict3Di/pdbx"
)

// Format is a structure file format.
type Format int

const (
	PDB Format = iota
	MMCIF
)

func (f Format) String() string {
	if f == MMCIF {
		return "mmCIF"
	}
	return "PDB"
}

var gzipMagic = []byte{0x1f, 0x8b}

// Decode parses a structure file held in memory. name is only used to label
// the entry when the file has no id code of its own (extensions are
// stripped), and to break ties when the content doesn't reveal its format.
//
// Any failure to interpret the data is reported as a *pdb.ParseError.
func Decode(name string, data []byte) (*pdb.Entry, error) {
	data, err := gunzip(data)
	if err != nil {
		return nil, err
	}

	var entry *pdb.Entry
	switch Sniff(name, data) {
	case MMCIF:
		entry, err = pdbx.Read(bytes.NewReader(data))
	default:
		entry, err = pdb.Read(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	if len(entry.IdCode) == 0 && len(name) > 0 {
		entry.IdCode = pdb.Label(name)
	}
	return entry, nil
}

// ReadFile reads and decodes a structure file from disk.
func ReadFile(fpath string) (*pdb.Entry, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}
	entry, err := Decode(path.Base(fpath), data)
	if err != nil {
		return nil, err
	}
	entry.Path = fpath
	return entry, nil
}

// Sniff guesses the format of (uncompressed) structure data. mmCIF files
// start with a data block header. If the data has no lines to go on, the
// extension of name decides.
func Sniff(name string, data []byte) Format {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if bytes.HasPrefix(line, []byte("data_")) {
			return MMCIF
		}
		return PDB
	}
	ext := path.Ext(strings.TrimSuffix(strings.ToLower(name), ".gz"))
	if ext == ".cif" || ext == ".mmcif" {
		return MMCIF
	}
	return PDB
}

func gunzip(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, gzipMagic) {
		return data, nil
	}
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, pdb.NewParseError(0, "", "invalid gzip data: %s", err)
	}
	defer gz.Close()

	plain, err := io.ReadAll(gz)
	if err != nil {
		return nil, pdb.NewParseError(0, "", "invalid gzip data: %s", err)
	}
	return plain, nil
}

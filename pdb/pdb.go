package pdb

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"math"
	"os"
	"path"
	"strconv"
	"strings"
)

// minCoordColumns is the last column of the z coordinate in ATOM and HETATM
// records. Anything shorter is a truncated record.
const minCoordColumns = 54

var errNotFinite = errors.New("not a finite number")

// records is the set of record names we recognize as belonging to a PDB
// file. Only a few are used, but seeing any of them tells us the input is
// at least trying to be a PDB file.
var records = map[string]bool{
	"HEADER": true, "OBSLTE": true, "TITLE": true, "SPLIT": true,
	"CAVEAT": true, "COMPND": true, "SOURCE": true, "KEYWDS": true,
	"EXPDTA": true, "NUMMDL": true, "MDLTYP": true, "AUTHOR": true,
	"REVDAT": true, "SPRSDE": true, "JRNL": true, "REMARK": true,
	"DBREF": true, "DBREF1": true, "DBREF2": true, "SEQADV": true,
	"SEQRES": true, "MODRES": true, "HET": true, "HETNAM": true,
	"HETSYN": true, "FORMUL": true, "HELIX": true, "SHEET": true,
	"SSBOND": true, "LINK": true, "CISPEP": true, "SITE": true,
	"CRYST1": true, "ORIGX1": true, "ORIGX2": true, "ORIGX3": true,
	"SCALE1": true, "SCALE2": true, "SCALE3": true, "MTRIX1": true,
	"MTRIX2": true, "MTRIX3": true, "MODEL": true, "ATOM": true,
	"ANISOU": true, "TER": true, "HETATM": true, "ENDMDL": true,
	"CONECT": true, "MASTER": true, "END": true,
}

type pdbParser struct {
	build   *Builder
	line    []byte
	lineNum int

	// models counts MODEL records. skip is set once we're past the first
	// model, at which point coordinate records are ignored.
	models int
	skip   bool

	recognized bool

	// The first non-blank line, for error reporting.
	firstLine   int
	firstRecord string
}

// ReadFile reads a PDB file from disk. If the file name ends with ".gz",
// gzip decompression will be used.
//
// If the file has no HEADER id code, the base name of the file (without
// extensions) is used instead.
func ReadFile(fileName string) (*Entry, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if path.Ext(fileName) == ".gz" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	entry, err := Read(reader)
	if err != nil {
		return nil, err
	}
	entry.Path = fileName
	if len(entry.IdCode) == 0 {
		entry.IdCode = Label(fileName)
	}
	return entry, nil
}

// Read parses PDB formatted text. Only the first model is kept.
//
// Alternate locations of an atom are resolved by keeping the alternative with
// the highest occupancy (ties keep the first one seen). Residues in ATOM
// records are always kept, even when their names aren't standard amino acids.
// Residues in HETATM records are kept only if they have an alpha-carbon.
//
// A *ParseError is returned if the input is empty, contains no PDB records
// or has a truncated or malformed ATOM/HETATM record. A file that is valid
// but has no coordinates results in an entry without chains.
func Read(r io.Reader) (*Entry, error) {
	p := &pdbParser{build: NewBuilder()}

	// Now traverse each line, and process it according to the record name.
	// It is imperative that we preserve the order of ATOM records as we
	// read them, since that is the residue order of each chain.
	breader := bufio.NewReaderSize(r, 1000)
	sawBytes := false
	for {
		line, err := readLine(breader)
		if err == io.EOF && len(line) == 0 {
			break
		} else if err != nil && err != io.EOF {
			return nil, err
		}
		p.lineNum++
		if !sawBytes && len(bytes.TrimSpace(line)) > 0 {
			sawBytes = true
			p.firstLine = p.lineNum
			p.line = line
			p.firstRecord = p.cols(1, 6)
		}
		p.line = line
		if err := p.parseLine(); err != nil {
			return nil, err
		}
	}

	if !sawBytes {
		return nil, &ParseError{Reason: "empty input"}
	}
	if !p.recognized {
		return nil, &ParseError{Line: p.firstLine, Record: p.firstRecord,
			Reason: "no PDB records found"}
	}
	return p.build.Finish(p.models), nil
}

// readLine reads a full line, even if it's longer than the buffer.
// Trailing carriage returns are removed.
func readLine(r *bufio.Reader) ([]byte, error) {
	line, isPrefix, err := r.ReadLine()
	if err != nil {
		return nil, err
	}
	if isPrefix {
		line = append([]byte(nil), line...)
		for isPrefix {
			var more []byte
			more, isPrefix, err = r.ReadLine()
			if err == io.EOF {
				break
			} else if err != nil {
				return nil, err
			}
			line = append(line, more...)
		}
	}
	return bytes.TrimRight(line, "\r"), nil
}

func (p *pdbParser) parseLine() error {
	name := p.cols(1, 6)
	if !records[name] {
		return nil
	}
	p.recognized = true

	switch name {
	case "HEADER":
		p.build.SetIdCode(p.cols(63, 66))
	case "MODEL":
		p.models++
		if p.models > 1 {
			p.skip = true
		}
	case "ENDMDL":
		p.skip = true
	case "ATOM", "HETATM":
		if p.skip {
			return nil
		}
		return p.parseAtom(name == "HETATM")
	}
	return nil
}

func (p *pdbParser) parseAtom(het bool) error {
	record := "ATOM"
	if het {
		record = "HETATM"
	}
	if len(p.line) < minCoordColumns {
		return p.errorf(record, "truncated record (%d columns, need at "+
			"least %d)", len(p.line), minCoordColumns)
	}

	seqNum, err := strconv.Atoi(p.cols(23, 26))
	if err != nil {
		return p.errorf(record, "invalid residue sequence number '%s'",
			p.cols(23, 26))
	}

	atom := Atom{
		Name:      p.cols(13, 16),
		AltLoc:    p.at(17),
		Occupancy: 1.0,
	}
	if len(atom.Name) == 0 {
		return p.errorf(record, "missing atom name")
	}
	if atom.X, err = p.atof(31, 38); err != nil {
		return p.errorf(record, "invalid x coordinate '%s'", p.cols(31, 38))
	}
	if atom.Y, err = p.atof(39, 46); err != nil {
		return p.errorf(record, "invalid y coordinate '%s'", p.cols(39, 46))
	}
	if atom.Z, err = p.atof(47, 54); err != nil {
		return p.errorf(record, "invalid z coordinate '%s'", p.cols(47, 54))
	}

	// Occupancy is optional. If it's missing or garbled, the default is used.
	if occ, err := p.atof(55, 60); err == nil {
		atom.Occupancy = occ
	}

	p.build.AddAtom(
		chainIdent(p.at(22)), p.cols(18, 20), seqNum, p.at(27), het, atom)
	return nil
}

func (p *pdbParser) errorf(record, format string, v ...interface{}) error {
	return newParseError(p.lineNum, record, format, v...)
}

// atof parses a number in the column range given. NaN and infinities are
// rejected.
func (p *pdbParser) atof(start, end int) (float64, error) {
	f, err := strconv.ParseFloat(p.cols(start, end), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}

// cols returns the trimmed text in the inclusive and 1-indexed column range
// given. Ranges that fall outside the line result in an empty string.
func (p *pdbParser) cols(start, end int) string {
	rs, re := start-1, end
	if rs >= len(p.line) || rs < 0 {
		return ""
	}
	if re > len(p.line) {
		re = len(p.line)
	}
	if re < rs {
		return ""
	}
	return string(bytes.TrimSpace(p.line[rs:re]))
}

// at returns the byte at the 1-indexed column given, or a space if the line
// is too short.
func (p *pdbParser) at(column int) byte {
	i := column - 1
	if i < 0 || i >= len(p.line) {
		return ' '
	}
	return p.line[i]
}

// chainIdent translates a chain identifier from a PDB file. A blank
// identifier becomes '_'.
func chainIdent(b byte) string {
	if b == ' ' || b == 0 {
		return "_"
	}
	return string(b)
}

// Label returns a name suitable as an id code from a file name: the base
// name without any extensions. PDB style "pdb1abc.ent" names become "1abc".
func Label(fileName string) string {
	name := path.Base(fileName)
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	if len(name) == 7 && strings.HasPrefix(name, "pdb") {
		name = name[3:]
	}
	return name
}

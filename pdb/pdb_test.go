package pdb

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/TuftsBCB/structure"

	"github.com/pranavathiyani/predict3Di/pdb/pdbtest"
)

func readString(t *testing.T, s string) *Entry {
	e, err := Read(strings.NewReader(s))
	if err != nil {
		t.Fatalf("Could not read PDB text: %s", err)
	}
	return e
}

func atomLine(
	record string,
	serial int,
	name string,
	alt byte,
	resName, chain string,
	seqNum int,
	x, y, z, occ float64,
) string {
	xyz := structure.Coords{X: x, Y: y, Z: z}
	return pdbtest.AtomRecord(
		record, serial, name, alt, resName, chain, seqNum, xyz, occ) + "\n"
}

func TestReadBackbone(t *testing.T) {
	a := pdbtest.Backbone("A", 12, -57, -47)
	b := pdbtest.Backbone("B", 5, -120, 130)
	e := readString(t, pdbtest.PDB("1ABC", a, b))

	if e.IdCode != "1ABC" {
		t.Fatalf("Expected id code '1ABC' but got '%s'.", e.IdCode)
	}
	if e.Models != 1 {
		t.Fatalf("Expected 1 model but got %d.", e.Models)
	}
	if len(e.Chains) != 2 {
		t.Fatalf("Expected 2 chains but got %d.", len(e.Chains))
	}
	if e.Chains[0].Ident != "A" || e.Chains[1].Ident != "B" {
		t.Fatalf("Chains out of order: %s, %s",
			e.Chains[0].Ident, e.Chains[1].Ident)
	}
	if e.Chains[0].Len() != 12 || e.Chains[1].Len() != 5 {
		t.Fatalf("Expected 12 and 5 residues but got %d and %d.",
			e.Chains[0].Len(), e.Chains[1].Len())
	}
	for i, r := range e.Chains[0].Residues {
		if r.SequenceNum != i+1 {
			t.Fatalf("Residue %d has sequence number %d.", i, r.SequenceNum)
		}
		if !r.HasBackbone() {
			t.Fatalf("Residue %d is missing backbone atoms: %v", i, r.Atoms)
		}
	}
	if got := string(e.Chains[1].Sequence()); got != "AAAAA" {
		t.Fatalf("Expected sequence 'AAAAA' but got '%s'.", got)
	}

	// Coordinates only survive to three decimal places, but the first CA
	// is at (1.458, 0, 0) exactly.
	ca, _ := e.Chains[0].Residues[0].Atom("CA")
	want := a.Residues[0].Atoms[1].Coords
	if ca.X != want.X || ca.Y != want.Y || ca.Z != want.Z {
		t.Fatalf("Expected CA at %v but got %v.", want, ca)
	}
}

func TestReadAltLoc(t *testing.T) {
	text := "HEADER    TEST\n" +
		atomLine("ATOM", 1, "N", ' ', "SER", "A", 1, 0, 0, 0, 1) +
		atomLine("ATOM", 2, "CA", 'A', "SER", "A", 1, 1, 0, 0, 0.4) +
		atomLine("ATOM", 3, "CA", 'B', "SER", "A", 1, 2, 0, 0, 0.6) +
		atomLine("ATOM", 4, "C", 'A', "SER", "A", 1, 3, 0, 0, 0.5) +
		atomLine("ATOM", 5, "C", 'B', "SER", "A", 1, 4, 0, 0, 0.5) +
		"END\n"
	e := readString(t, text)
	r := e.OneChain().Residues[0]
	if len(r.Atoms) != 3 {
		t.Fatalf("Expected 3 atoms but got %d.", len(r.Atoms))
	}
	if ca, _ := r.Atom("CA"); ca.X != 2 {
		t.Fatalf("Expected the higher occupancy CA (x=2) but got x=%f.", ca.X)
	}
	if c, _ := r.Atom("C"); c.X != 3 {
		t.Fatalf("Expected the first of two equal occupancy C atoms (x=3) "+
			"but got x=%f.", c.X)
	}
}

func TestReadHetatm(t *testing.T) {
	text := atomLine("ATOM", 1, "CA", ' ', "GLY", "A", 1, 0, 0, 0, 1) +
		atomLine("HETATM", 2, "CA", ' ', "MSE", "A", 2, 3.8, 0, 0, 1) +
		atomLine("HETATM", 3, "O", ' ', "HOH", "A", 3, 9, 9, 9, 1) +
		atomLine("HETATM", 4, "C1", ' ', "NAG", "A", 4, 8, 8, 8, 1) +
		atomLine("HETATM", 5, "ZN", ' ', "ZN", "Z", 5, 7, 7, 7, 1)
	e := readString(t, text)
	if len(e.Chains) != 1 {
		t.Fatalf("Expected the ligand-only chain to be dropped, but got "+
			"%d chains.", len(e.Chains))
	}
	rs := e.Chains[0].Residues
	if len(rs) != 2 {
		t.Fatalf("Expected 2 residues but got %d.", len(rs))
	}
	if rs[1].Name != "MSE" || !rs[1].Het || rs[1].Letter != 'X' {
		t.Fatalf("Unexpected modified residue: %#v", rs[1])
	}
}

func TestReadBlankChain(t *testing.T) {
	e := readString(t,
		atomLine("ATOM", 1, "CA", ' ', "GLY", " ", 1, 0, 0, 0, 1))
	if e.OneChain().Ident != "_" {
		t.Fatalf("Expected a blank chain to be '_' but got '%s'.",
			e.OneChain().Ident)
	}
}

func TestReadFirstModel(t *testing.T) {
	text := "MODEL        1\n" +
		atomLine("ATOM", 1, "CA", ' ', "GLY", "A", 1, 0, 0, 0, 1) +
		"ENDMDL\nMODEL        2\n" +
		atomLine("ATOM", 1, "CA", ' ', "GLY", "A", 1, 5, 5, 5, 1) +
		atomLine("ATOM", 2, "CA", ' ', "GLY", "A", 2, 6, 6, 6, 1) +
		"ENDMDL\nEND\n"
	e := readString(t, text)
	if e.Models != 2 {
		t.Fatalf("Expected 2 models but got %d.", e.Models)
	}
	c := e.OneChain()
	if c.Len() != 1 {
		t.Fatalf("Expected 1 residue from the first model but got %d.",
			c.Len())
	}
	if ca, _ := c.Residues[0].Atom("CA"); ca.X != 0 {
		t.Fatalf("Expected coordinates from the first model, got %v.", ca)
	}
}

func TestReadInsertionCodes(t *testing.T) {
	line := atomLine("ATOM", 2, "CA", ' ', "GLY", "A", 52, 3.8, 0, 0, 1)
	line = line[:26] + "A" + line[27:]
	text := atomLine("ATOM", 1, "CA", ' ', "GLY", "A", 52, 0, 0, 0, 1) + line
	c := readString(t, text).OneChain()
	if c.Len() != 2 {
		t.Fatalf("Expected 2 residues but got %d.", c.Len())
	}
	if c.Residues[1].InsertionCode != 'A' {
		t.Fatalf("Expected insertion code 'A' but got '%c'.",
			c.Residues[1].InsertionCode)
	}
}

func TestReadNoCoordinates(t *testing.T) {
	e := readString(t, "HEADER    EMPTY\nREMARK   1 NOTHING HERE\nEND\n")
	if len(e.Chains) != 0 {
		t.Fatalf("Expected no chains but got %d.", len(e.Chains))
	}
	if e.Models != 0 {
		t.Fatalf("Expected no models but got %d.", e.Models)
	}
}

func TestReadErrors(t *testing.T) {
	good := atomLine("ATOM", 1, "CA", ' ', "GLY", "A", 1, 0, 0, 0, 1)
	tests := []struct {
		name   string
		text   string
		line   int
		reason string
	}{
		{"empty", "", 0, "empty input"},
		{"whitespace", "  \n\n\t\n", 0, "empty input"},
		{"garbage", "hello\nworld\n", 1, "no PDB records"},
		{"truncated", good + good[:40] + "\n", 2, "truncated"},
		{"bad x", strings.Replace(good, "   0.000", "   abcde", 1), 1,
			"invalid x"},
		{"bad seqnum", good[:22] + "  x " + good[26:], 1,
			"invalid residue sequence"},
		{"nan x", strings.Replace(good, "   0.000", "     nan", 1), 1,
			"invalid x"},
		{"inf z", good[:46] + "    +Inf" + good[54:], 1, "invalid z"},
	}
	for _, test := range tests {
		_, err := Read(strings.NewReader(test.text))
		if err == nil {
			t.Fatalf("%s: expected an error but got none.", test.name)
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("%s: expected a *ParseError but got %T.", test.name, err)
		}
		if perr.Line != test.line {
			t.Fatalf("%s: expected error on line %d but got %d.",
				test.name, test.line, perr.Line)
		}
		if !strings.Contains(perr.Reason, test.reason) {
			t.Fatalf("%s: expected reason to contain '%s' but got '%s'.",
				test.name, test.reason, perr.Reason)
		}
	}
}

func TestReadLongLineError(t *testing.T) {
	// A line filling the read buffer exactly, followed by a read failure.
	boom := errors.New("disk on fire")
	r := io.MultiReader(strings.NewReader(strings.Repeat("A", 1000)),
		iotest.ErrReader(boom))
	if _, err := Read(r); !errors.Is(err, boom) {
		t.Fatalf("Expected the read error but got %v.", err)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct{ in, out string }{
		{"/tmp/pdb1ctf.ent.gz", "1ctf"},
		{"1ctf.pdb", "1ctf"},
		{"structures/model_07.pdb", "model_07"},
		{"noext", "noext"},
	}
	for _, test := range tests {
		if got := Label(test.in); got != test.out {
			t.Fatalf("Label(%q) = %q, expected %q.", test.in, got, test.out)
		}
	}
}

func TestReadFile(t *testing.T) {
	text := pdbtest.PDB("", pdbtest.Backbone("C", 5, -57, -47))
	fpath := filepath.Join(t.TempDir(), "pdb1xyz.ent.gz")
	f, err := os.Create(fpath)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	gz.Write([]byte(text))
	gz.Close()
	f.Close()

	e, err := ReadFile(fpath)
	if err != nil {
		t.Fatal(err)
	}
	if e.IdCode != "1xyz" || e.Path != fpath {
		t.Fatalf("Expected entry 1xyz from %s but got '%s' from %s.",
			fpath, e.IdCode, e.Path)
	}
	if c := e.Chain("C"); c == nil || c.Len() != 5 {
		t.Fatalf("Unexpected entry:\n%s", e)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.pdb")); err == nil {
		t.Fatal("Expected an error reading a missing file.")
	}
}

func ExampleRead() {
	text := pdbtest.PDB("2XYZ", pdbtest.Backbone("A", 4, -57, -47))
	entry, err := Read(strings.NewReader(text))
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, chain := range entry.Chains {
		fmt.Println(chain.IdString(), chain.Len())
	}
	// Output:
	// 2xyzA 4
}

func ExampleParseError() {
	_, err := Read(strings.NewReader("ATOM      1  CA  GLY A   1      1.000\n"))
	fmt.Println(err)
	// Output:
	// line 1 (ATOM): truncated record (37 columns, need at least 54)
}

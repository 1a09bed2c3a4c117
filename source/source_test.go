package source

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pranavathiyani/predict3Di/pdb"
	"github.com/pranavathiyani/predict3Di/pdb/pdbtest"
)

func gzipped(t *testing.T, s string) []byte {
	buf := new(bytes.Buffer)
	gz := gzip.NewWriter(buf)
	if _, err := gz.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	chain := pdbtest.Backbone("A", 7, -57, -47)
	pdbText := pdbtest.PDB("1ABC", chain)
	cifText := pdbtest.CIF("1ABC", chain)
	tests := []struct {
		name string
		data []byte
	}{
		{"1abc.pdb", []byte(pdbText)},
		{"1abc.pdb.gz", gzipped(t, pdbText)},
		{"1abc.cif", []byte(cifText)},
		{"1abc.cif.gz", gzipped(t, cifText)},
		{"upload", gzipped(t, cifText)},
		{"", []byte(pdbText)},
	}
	for _, test := range tests {
		e, err := Decode(test.name, test.data)
		if err != nil {
			t.Fatalf("%s: %s", test.name, err)
		}
		if e.IdCode != "1ABC" {
			t.Fatalf("%s: expected id code 1ABC but got '%s'.",
				test.name, e.IdCode)
		}
		if len(e.Chains) != 1 || e.Chains[0].Len() != 7 {
			t.Fatalf("%s: unexpected entry:\n%s", test.name, e)
		}
	}
}

func TestDecodeLabel(t *testing.T) {
	text := pdbtest.PDB("", pdbtest.Backbone("A", 3, -57, -47))
	text = text[strings.IndexByte(text, '\n')+1:] // no HEADER
	e, err := Decode("my_model.pdb", []byte(text))
	if err != nil {
		t.Fatal(err)
	}
	if e.IdCode != "my_model" {
		t.Fatalf("Expected the entry to be labeled 'my_model' but got '%s'.",
			e.IdCode)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty.pdb", nil},
		{"broken.gz", []byte{0x1f, 0x8b, 0x00, 0x01}},
		{"truncated.pdb", []byte("ATOM      1  CA  GLY A   1      1.000\n")},
		{"text.txt", []byte("this is not a structure\n")},
	}
	for _, test := range tests {
		_, err := Decode(test.name, test.data)
		var perr *pdb.ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("%s: expected a *pdb.ParseError but got %v.",
				test.name, err)
		}
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Format
	}{
		{"x.pdb", "HEADER    X\n", PDB},
		{"x.pdb", "# comment\n\ndata_1ABC\n", MMCIF},
		{"x.cif", "", MMCIF},
		{"x.cif.gz", "  \n", MMCIF},
		{"x", "", PDB},
	}
	for _, test := range tests {
		if got := Sniff(test.name, []byte(test.data)); got != test.want {
			t.Fatalf("Sniff(%q, %q) = %s, expected %s.",
				test.name, test.data, got, test.want)
		}
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	fpath := filepath.Join(dir, "pdb2xyz.ent.gz")
	text := pdbtest.PDB("2XYZ", pdbtest.Backbone("B", 4, -120, 130))
	if err := os.WriteFile(fpath, gzipped(t, text), 0644); err != nil {
		t.Fatal(err)
	}
	e, err := ReadFile(fpath)
	if err != nil {
		t.Fatal(err)
	}
	if e.Path != fpath || e.Chain("B") == nil {
		t.Fatalf("Unexpected entry from %s:\n%s", e.Path, e)
	}
}

func TestNormalizeID(t *testing.T) {
	good := map[string]string{"1ABC": "1abc", " 4hhb ": "4hhb", "9xyz": "9xyz"}
	for in, want := range good {
		got, err := NormalizeID(in)
		if err != nil || got != want {
			t.Fatalf("NormalizeID(%q) = %q, %v; expected %q.",
				in, got, err, want)
		}
	}
	for _, in := range []string{"", "abc", "abcd", "0abc", "1ab", "1abcd",
		"1a-c", "../x"} {
		if _, err := NormalizeID(in); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("NormalizeID(%q): expected ErrInvalidID but got %v.",
				in, err)
		}
	}
}

// mirrorServer serves a gzipped mmCIF file for 1abc at /cif/1abc.cif.gz and
// fails everything else. It records every path requested.
func mirrorServer(t *testing.T, requested *[]string) *httptest.Server {
	cif := gzipped(t, pdbtest.CIF("1ABC", pdbtest.Backbone("A", 5, -57, -47)))
	return httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			*requested = append(*requested, r.URL.Path)
			switch r.URL.Path {
			case "/cif/1abc.cif.gz":
				w.Write(cif)
			case "/broken/1abc.pdb":
				http.Error(w, "oops", http.StatusInternalServerError)
			default:
				http.NotFound(w, r)
			}
		}))
}

func TestFetchFallback(t *testing.T) {
	var requested []string
	srv := mirrorServer(t, &requested)
	defer srv.Close()

	f := &Fetcher{
		Client: srv.Client(),
		Mirrors: []string{
			srv.URL + "/broken/%s.pdb",
			srv.URL + "/pdb/%s.pdb",
			srv.URL + "/cif/%s.cif.gz",
			srv.URL + "/never/%s.cif",
		},
	}
	entry, dl, err := f.FetchEntry(context.Background(), "1ABC")
	if err != nil {
		t.Fatal(err)
	}
	if dl.Name != "1abc.cif.gz" || dl.ID != "1abc" {
		t.Fatalf("Unexpected download %s (%s).", dl.Name, dl.ID)
	}
	if entry.OneChain().Len() != 5 {
		t.Fatalf("Unexpected entry:\n%s", entry)
	}
	want := []string{"/broken/1abc.pdb", "/pdb/1abc.pdb", "/cif/1abc.cif.gz"}
	if strings.Join(requested, ",") != strings.Join(want, ",") {
		t.Fatalf("Expected requests %v but got %v.", want, requested)
	}
}

func TestFetchErrors(t *testing.T) {
	var requested []string
	srv := mirrorServer(t, &requested)
	defer srv.Close()

	f := &Fetcher{
		Client:  srv.Client(),
		Mirrors: []string{srv.URL + "/pdb/%s.pdb", srv.URL + "/x/%s.cif"},
	}
	_, err := f.Fetch(context.Background(), "2xyz")
	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("Expected a *FetchError but got %v.", err)
	}
	if ferr.ID != "2xyz" || len(ferr.Attempts) != 2 {
		t.Fatalf("Unexpected fetch error: %s", ferr)
	}

	requested = nil
	if _, err := f.Fetch(context.Background(), "nope"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("Expected ErrInvalidID but got %v.", err)
	}
	if len(requested) != 0 {
		t.Fatalf("An invalid id should not be requested: %v", requested)
	}
}

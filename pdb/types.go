package pdb

import (
	"fmt"
	"strings"

	"github.com/TuftsBCB/seq"
	"github.com/TuftsBCB/structure"
)

// Entry represents a parsed structure file. Only the first model of a
// multi-model file is represented.
type Entry struct {
	// Path is the file the entry was read from, if any.
	Path string

	// IdCode is taken from the HEADER record (or the mmCIF entry id). When
	// the file has none, loaders fall back to a label supplied by the caller.
	IdCode string

	// Models is the number of models found in the file. Coordinates are
	// only kept for the first.
	Models int

	Chains []*Chain
}

// Chain is a single polymer chain. Residues are in file order.
type Chain struct {
	Entry    *Entry
	Ident    string
	Residues []*Residue
}

// Residue is a single residue with whatever atoms the file provided for it.
type Residue struct {
	// Name is the three letter residue name, e.g., "ALA" or "MSE".
	Name string

	// Letter is the best effort one letter label. It is 'X' when the
	// residue name is not a standard amino acid.
	Letter seq.Residue

	SequenceNum   int
	InsertionCode byte
	Het           bool
	Atoms         []Atom
}

// Atom is a single atom coordinate. When a file lists alternate locations
// for an atom, only one survives (see Read).
type Atom struct {
	Name      string
	AltLoc    byte
	Occupancy float64
	structure.Coords
}

// Chain returns the chain with the given identifier or nil if it does not
// exist.
func (e *Entry) Chain(ident string) *Chain {
	for _, chain := range e.Chains {
		if chain.Ident == ident {
			return chain
		}
	}
	return nil
}

// OneChain returns a single chain in the PDB file. If there is more than one
// chain, OneChain will panic. This is convenient when you expect a PDB file to
// have only a single chain, but don't know the name.
func (e *Entry) OneChain() *Chain {
	if len(e.Chains) != 1 {
		panic(fmt.Sprintf("OneChain can only be called on PDB entries with "+
			"ONE chain. But the '%s' PDB entry has %d chains.",
			e.IdCode, len(e.Chains)))
	}
	return e.Chains[0]
}

// IdString returns the lower cased id code.
func (e *Entry) IdString() string {
	return strings.ToLower(e.IdCode)
}

// String returns a list of all chains and their residue type labels.
func (e *Entry) String() string {
	lines := make([]string, 0, len(e.Chains))
	for _, chain := range e.Chains {
		lines = append(lines, chain.String())
	}
	return strings.Join(lines, "\n")
}

// Len returns the number of residues in the chain.
func (c *Chain) Len() int {
	return len(c.Residues)
}

// IdString returns the id code of the chain's entry followed by the chain
// identifier, e.g., "1ctfA".
func (c *Chain) IdString() string {
	return fmt.Sprintf("%s%s", c.Entry.IdString(), c.Ident)
}

// Sequence returns the one letter residue labels of the chain.
func (c *Chain) Sequence() []seq.Residue {
	rs := make([]seq.Residue, len(c.Residues))
	for i, r := range c.Residues {
		rs[i] = r.Letter
	}
	return rs
}

// String returns a FASTA-like formatted string of this chain.
func (c *Chain) String() string {
	return fmt.Sprintf("> Chain %s :: length %d\n%s",
		c.Ident, len(c.Residues), string(c.Sequence()))
}

// Atom returns the coordinates of the atom with the given name.
func (r *Residue) Atom(name string) (structure.Coords, bool) {
	for _, atom := range r.Atoms {
		if atom.Name == name {
			return atom.Coords, true
		}
	}
	return structure.Coords{}, false
}

// HasBackbone returns true when the residue has N, CA and C atoms.
func (r *Residue) HasBackbone() bool {
	_, n := r.Atom("N")
	_, ca := r.Atom("CA")
	_, c := r.Atom("C")
	return n && ca && c
}

// addAtom adds an atom to the residue. If an atom with the same name is
// already present (an alternate location), the one with the higher occupancy
// is kept. Ties keep the atom seen first.
func (r *Residue) addAtom(atom Atom) {
	for i := range r.Atoms {
		if r.Atoms[i].Name == atom.Name {
			if atom.Occupancy > r.Atoms[i].Occupancy {
				r.Atoms[i] = atom
			}
			return
		}
	}
	r.Atoms = append(r.Atoms, atom)
}

// keep reports whether a residue should be part of its chain. HETATM
// residues are only kept when they have an alpha-carbon, which admits
// modified amino acids but not waters or ligands.
func (r *Residue) keep() bool {
	if !r.Het {
		return true
	}
	if r.Name == "HOH" || r.Name == "WAT" {
		return false
	}
	_, ok := r.Atom("CA")
	return ok
}

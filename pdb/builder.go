package pdb

type residueKey struct {
	seqNum int
	icode  byte
}

// Builder assembles an Entry one atom at a time. It is what the PDB and
// mmCIF readers have in common: chains and residues are created in the order
// they are first seen, and alternate locations are resolved as atoms arrive.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	entry    *Entry
	residues map[string]map[residueKey]*Residue
}

// NewBuilder returns a builder for an empty entry.
func NewBuilder() *Builder {
	return &Builder{
		entry:    &Entry{Chains: make([]*Chain, 0, 2)},
		residues: make(map[string]map[residueKey]*Residue, 2),
	}
}

// SetIdCode sets the id code of the entry, unless one has already been set.
func (b *Builder) SetIdCode(id string) {
	if len(b.entry.IdCode) == 0 {
		b.entry.IdCode = id
	}
}

// AddAtom adds an atom to the residue identified by chain, sequence number
// and insertion code, creating the chain and residue if needed.
func (b *Builder) AddAtom(
	chainIdent, resName string,
	seqNum int,
	icode byte,
	het bool,
	atom Atom,
) {
	key := residueKey{seqNum, icode}
	chain := b.chain(chainIdent)
	r, ok := b.residues[chainIdent][key]
	if !ok {
		r = &Residue{
			Name:          resName,
			Letter:        Letter(resName),
			SequenceNum:   seqNum,
			InsertionCode: icode,
			Het:           het,
			Atoms:         make([]Atom, 0, 8),
		}
		chain.Residues = append(chain.Residues, r)
		b.residues[chainIdent][key] = r
	}
	r.addAtom(atom)
}

// Finish drops residues that shouldn't be part of a chain (waters, ligands),
// then any chains left without residues, and returns the entry.
//
// models is the number of models seen in the file. If it's zero and there
// are coordinates, the entry is said to have one model.
func (b *Builder) Finish(models int) *Entry {
	e := b.entry
	kept := e.Chains[:0]
	for _, chain := range e.Chains {
		residues := chain.Residues[:0]
		for _, r := range chain.Residues {
			if r.keep() {
				residues = append(residues, r)
			}
		}
		chain.Residues = residues
		if len(chain.Residues) > 0 {
			kept = append(kept, chain)
		}
	}
	e.Chains = kept

	e.Models = models
	if e.Models == 0 && len(e.Chains) > 0 {
		e.Models = 1
	}
	return e
}

func (b *Builder) chain(ident string) *Chain {
	if chain := b.entry.Chain(ident); chain != nil {
		return chain
	}
	chain := &Chain{
		Entry:    b.entry,
		Ident:    ident,
		Residues: make([]*Residue, 0, 100),
	}
	b.entry.Chains = append(b.entry.Chains, chain)
	b.residues[ident] = make(map[residueKey]*Residue, 100)
	return chain
}

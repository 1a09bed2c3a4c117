// Package threedi assigns a structural alphabet state to every residue of a
// protein chain and renders the states of each chain as a string.
//
// Encoding is a pure function of a chain and a codebook. Residues without the
// backbone atoms needed to describe their geometry are given the Fallback
// symbol instead of a state, and never cause a chain to fail.
package threedi

import (
	"runtime"
	"sync"

	"github.com/TuftsBCB/seq"

	"github.com/pranavathiyani/predict3Di/codebook"
	"github.com/pranavathiyani/predict3Di/geom"
	"github.com/pranavathiyani/predict3Di/pdb"
)

// Fallback is the symbol of a residue that could not be assigned a state.
const Fallback seq.Residue = codebook.Reserved

// NoState is the state of a residue that could not be assigned a state.
const NoState = -1

// Chain is the encoding of a single chain.
type Chain struct {
	// ID is the chain identifier.
	ID string

	// States has one codebook state per residue, in residue order. Residues
	// without one have NoState.
	States []int

	// Sequence is States rendered with the symbols of the codebook.
	Sequence string

	// Degraded lists the (0-indexed) residues that were given the fallback
	// symbol.
	Degraded []int

	// Partial is the number of residues assigned a state from incomplete
	// features (termini, gaps or short chains).
	Partial int
}

// Len returns the number of residues in the chain.
func (c Chain) Len() int {
	return len(c.States)
}

// Seq returns the chain's structural alphabet string as a sequence with the
// name given, e.g., for writing FASTA files.
func (c Chain) Seq(name string) seq.Sequence {
	return seq.Sequence{
		Name:     name,
		Residues: []seq.Residue(c.Sequence),
	}
}

// Alphabet returns every symbol that can appear in a sequence encoded with
// the codebook given: one per state followed by Fallback.
func Alphabet(cb *codebook.Codebook) string {
	return cb.Symbols() + string(rune(Fallback))
}

// Encoder encodes chains against a single codebook. The codebook is only
// ever read, so one Encoder (and one codebook) may be shared by any number
// of goroutines.
type Encoder struct {
	cb      *codebook.Codebook
	extract *geom.Extractor
	workers int
}

// NewEncoder returns an encoder using the codebook given. workers bounds the
// number of chains encoded at the same time by EncodeEntry. If it's less
// than 1, GOMAXPROCS is used.
func NewEncoder(cb *codebook.Codebook, workers int) *Encoder {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Encoder{
		cb:      cb,
		extract: geom.NewExtractor(cb.K()),
		workers: workers,
	}
}

// Codebook returns the codebook of the encoder.
func (e *Encoder) Codebook() *codebook.Codebook {
	return e.cb
}

// State returns the codebook state of a descriptor, or NoState for an
// invalid descriptor. The codebook is not consulted for invalid descriptors.
func (e *Encoder) State(d geom.Descriptor) int {
	if d.Flag == geom.Invalid {
		return NoState
	}
	return e.cb.Nearest(d.Values)
}

// EncodeChain assigns a state to every residue of the chain.
func (e *Encoder) EncodeChain(chain *pdb.Chain) Chain {
	ds := e.extract.Chain(chain)
	enc := Chain{
		ID:     chain.Ident,
		States: make([]int, len(ds)),
	}
	for i, d := range ds {
		enc.States[i] = e.State(d)
		switch {
		case enc.States[i] == NoState:
			enc.Degraded = append(enc.Degraded, i)
		case d.Flag == geom.Partial:
			enc.Partial++
		}
	}
	enc.Sequence = BuildSequence(e.cb, enc.States)
	return enc
}

// EncodeEntry encodes every chain of the entry. Chains are encoded
// independently and in parallel, but the result is in the same order as
// entry.Chains. An entry without chains results in an empty slice.
func (e *Encoder) EncodeEntry(entry *pdb.Entry) []Chain {
	encoded := make([]Chain, len(entry.Chains))
	if len(entry.Chains) == 0 {
		return encoded
	}

	workers := e.workers
	if workers > len(entry.Chains) {
		workers = len(entry.Chains)
	}
	jobs := make(chan int, len(entry.Chains))
	wg := new(sync.WaitGroup)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ci := range jobs {
				encoded[ci] = e.EncodeChain(entry.Chains[ci])
			}
		}()
	}
	for ci := range entry.Chains {
		jobs <- ci
	}
	close(jobs)
	wg.Wait()
	return encoded
}

// BuildSequence renders states as a string using the symbols of the codebook
// given, with Fallback for NoState (or any state the codebook doesn't have).
func BuildSequence(cb *codebook.Codebook, states []int) string {
	bs := make([]byte, len(states))
	for i, state := range states {
		if state < 0 || state >= cb.Size() {
			bs[i] = byte(Fallback)
		} else {
			bs[i] = cb.Symbol(state)
		}
	}
	return string(bs)
}

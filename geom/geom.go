// Package geom computes per residue geometric descriptors of a protein chain:
// backbone torsions plus the spatial relationship between a residue and its
// nearest neighbors. Descriptors are what structural alphabet states are
// assigned from.
package geom

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pranavathiyani/predict3Di/pdb"
)

// Sentinel is the value of every feature that could not be computed. It lies
// outside the range of every real feature (sines, cosines and dot products
// of unit vectors are in [-1, 1] and distances are non-negative).
const Sentinel = -2.0

// DefaultNeighbors is the number of nearest neighbors described for each
// residue by default.
const DefaultNeighbors = 16

// MaxPeptideBond is the longest C-N distance (in Angstroms) that is still
// considered a peptide bond. Torsions across a longer gap are not computed.
const MaxPeptideBond = 2.0

// Flag tags how complete a descriptor is.
type Flag int

const (
	// Valid descriptors have every feature.
	Valid Flag = iota

	// Partial descriptors have at least one feature set to Sentinel, either
	// because a torsion crosses a chain break or because the chain has fewer
	// than k other residues.
	Partial

	// Invalid descriptors have no features at all. The residue is missing
	// at least one of N, CA or C.
	Invalid
)

func (f Flag) String() string {
	switch f {
	case Valid:
		return "valid"
	case Partial:
		return "partial"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

// Descriptor is the feature vector of a single residue.
//
// The layout of Values is sin(phi), cos(phi), sin(psi), cos(psi), followed
// by three features for each of the k nearest neighbors in order of
// distance: the CA-CA distance, the dot product of the two local frame z
// axes, and the dot product of the residue's CB direction with the unit
// vector pointing at the neighbor's CA.
type Descriptor struct {
	Values []float64
	Flag   Flag
}

// Len returns the length of a descriptor describing k neighbors.
func Len(k int) int {
	return 4 + 3*k
}

// Extractor computes descriptors for every residue of a chain. An Extractor
// holds no state besides its configuration and is safe for concurrent use.
type Extractor struct {
	k int
}

// NewExtractor returns an extractor describing k neighbors per residue.
// It panics if k is negative.
func NewExtractor(k int) *Extractor {
	if k < 0 {
		panic("geom: negative neighbor count")
	}
	return &Extractor{k}
}

// K returns the number of neighbors described per residue.
func (x *Extractor) K() int {
	return x.k
}

// residue caches the vectors needed for a single residue.
type residue struct {
	ok           bool
	n, ca, c, cb r3.Vec
	z            r3.Vec
	cbDir        r3.Vec
}

// Chain returns one descriptor per residue of the chain, in residue order.
// Only residues of the chain given are ever considered as neighbors.
func (x *Extractor) Chain(chain *pdb.Chain) []Descriptor {
	rs := make([]residue, len(chain.Residues))
	for i, r := range chain.Residues {
		rs[i] = prepare(r)
	}

	ds := make([]Descriptor, len(rs))
	for i := range rs {
		ds[i] = x.describe(rs, i)
	}
	return ds
}

func prepare(r *pdb.Residue) residue {
	n, okn := r.Atom("N")
	ca, okca := r.Atom("CA")
	c, okc := r.Atom("C")
	if !okn || !okca || !okc {
		return residue{}
	}
	res := residue{ok: true, n: vec(n), ca: vec(ca), c: vec(c)}
	if cb, ok := r.Atom("CB"); ok {
		res.cb = vec(cb)
	} else {
		res.cb = VirtualCB(res.n, res.ca, res.c)
	}
	_, _, res.z = Frame(res.n, res.ca, res.c)
	res.cbDir = unit(r3.Sub(res.cb, res.ca))
	return res
}

func (x *Extractor) describe(rs []residue, i int) Descriptor {
	d := Descriptor{Values: make([]float64, Len(x.k)), Flag: Valid}
	if !rs[i].ok {
		for j := range d.Values {
			d.Values[j] = Sentinel
		}
		d.Flag = Invalid
		return d
	}
	me := rs[i]
	vals := d.Values

	if phi, ok := torsionPhi(rs, i); ok {
		vals[0], vals[1] = math.Sin(phi), math.Cos(phi)
	} else {
		vals[0], vals[1] = Sentinel, Sentinel
		d.Flag = Partial
	}
	if psi, ok := torsionPsi(rs, i); ok {
		vals[2], vals[3] = math.Sin(psi), math.Cos(psi)
	} else {
		vals[2], vals[3] = Sentinel, Sentinel
		d.Flag = Partial
	}

	nbs := neighbors(rs, i, x.k)
	for m := 0; m < x.k; m++ {
		off := 4 + 3*m
		if m >= len(nbs) {
			vals[off], vals[off+1], vals[off+2] = Sentinel, Sentinel, Sentinel
			d.Flag = Partial
			continue
		}
		other := rs[nbs[m].index]
		toOther := r3.Sub(other.ca, me.ca)
		vals[off] = nbs[m].dist
		vals[off+1] = r3.Dot(me.z, other.z)
		vals[off+2] = r3.Dot(me.cbDir, unit(toOther))
	}
	return d
}

func torsionPhi(rs []residue, i int) (float64, bool) {
	if i == 0 || !rs[i-1].ok || !bonded(rs[i-1], rs[i]) {
		return 0, false
	}
	return Dihedral(rs[i-1].c, rs[i].n, rs[i].ca, rs[i].c), true
}

func torsionPsi(rs []residue, i int) (float64, bool) {
	if i+1 >= len(rs) || !rs[i+1].ok || !bonded(rs[i], rs[i+1]) {
		return 0, false
	}
	return Dihedral(rs[i].n, rs[i].ca, rs[i].c, rs[i+1].n), true
}

// bonded reports whether the C atom of a and the N atom of b are close
// enough to form a peptide bond.
func bonded(a, b residue) bool {
	return r3.Norm(r3.Sub(b.n, a.c)) <= MaxPeptideBond
}

type neighbor struct {
	index int
	dist  float64
}

// neighbors returns at most k residues closest to residue i by CA-CA
// distance. Equal distances are ordered by residue index.
func neighbors(rs []residue, i, k int) []neighbor {
	all := make([]neighbor, 0, len(rs))
	for j := range rs {
		if j == i || !rs[j].ok {
			continue
		}
		all = append(all, neighbor{j, r3.Norm(r3.Sub(rs[j].ca, rs[i].ca))})
	}
	sort.Slice(all, func(a, b int) bool {
		if all[a].dist == all[b].dist {
			return all[a].index < all[b].index
		}
		return all[a].dist < all[b].dist
	})
	if len(all) > k {
		all = all[:k]
	}
	return all
}

package codebook

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pranavathiyani/predict3Di/geom"
)

// Reserved is the symbol no codebook state may use. It marks residues that
// could not be assigned a state.
const Reserved = 'X'

var (
	// ErrEmpty is returned when a codebook would have no states.
	ErrEmpty = errors.New("codebook has no states")

	// ErrDimension is returned when a centroid or descriptor does not have
	// the number of features implied by the codebook's neighbor count.
	ErrDimension = errors.New("wrong number of features")

	// ErrSymbols is returned when the symbols of a codebook are not one
	// distinct printable character per state.
	ErrSymbols = errors.New("invalid state symbols")
)

// Weights scale each kind of feature in the distance between a descriptor
// and a centroid.
type Weights struct {
	Angle       float64
	Distance    float64
	Orientation float64
	Side        float64
}

// DefaultWeights are the weights of the built in codebook. Distances are in
// Angstroms while every other feature is in [-1, 1], so they are scaled down.
func DefaultWeights() Weights {
	return Weights{
		Angle:       1.0,
		Distance:    0.02,
		Orientation: 0.1,
		Side:        0.1,
	}
}

// Codebook is a fixed set of centroids over geometric descriptors, each
// labeled with a one character symbol. A Codebook is immutable once
// constructed and is safe for concurrent use.
type Codebook struct {
	name      string
	k         int
	weights   Weights
	symbols   string
	centroids [][]float64

	// scale is the weight of each feature, expanded from weights.
	scale []float64
}

// New constructs a codebook from centroids describing k neighbors each.
// symbols must have exactly one character per centroid. The centroids are
// copied.
func New(
	name string,
	k int,
	weights Weights,
	symbols string,
	centroids [][]float64,
) (*Codebook, error) {
	if len(centroids) == 0 {
		return nil, ErrEmpty
	}
	if k < 0 {
		return nil, fmt.Errorf("%w: negative neighbor count %d",
			ErrDimension, k)
	}
	if len(symbols) != len(centroids) {
		return nil, fmt.Errorf("%w: %d symbols for %d states",
			ErrSymbols, len(symbols), len(centroids))
	}
	for i := 0; i < len(symbols); i++ {
		s := symbols[i]
		if s < '!' || s > '~' || s == Reserved {
			return nil, fmt.Errorf("%w: symbol %q for state %d",
				ErrSymbols, s, i)
		}
		if strings.IndexByte(symbols[:i], s) >= 0 {
			return nil, fmt.Errorf("%w: symbol %q is used more than once",
				ErrSymbols, s)
		}
	}

	dim := geom.Len(k)
	cb := &Codebook{
		name:      name,
		k:         k,
		weights:   weights,
		symbols:   symbols,
		centroids: make([][]float64, len(centroids)),
		scale:     expand(weights, k),
	}
	for i, c := range centroids {
		if len(c) != dim {
			return nil, fmt.Errorf("%w: centroid %d has %d features, "+
				"expected %d", ErrDimension, i, len(c), dim)
		}
		for j, v := range c {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("centroid %d has non-finite feature "+
					"%d", i, j)
			}
		}
		cb.centroids[i] = append([]float64(nil), c...)
	}
	return cb, nil
}

// expand returns the weight of every feature in a descriptor of k neighbors.
func expand(w Weights, k int) []float64 {
	scale := make([]float64, geom.Len(k))
	for j := 0; j < 4; j++ {
		scale[j] = w.Angle
	}
	for m := 0; m < k; m++ {
		off := 4 + 3*m
		scale[off] = w.Distance
		scale[off+1] = w.Orientation
		scale[off+2] = w.Side
	}
	return scale
}

// Name returns the name the codebook was created with.
func (cb *Codebook) Name() string {
	return cb.name
}

// Size returns the number of states.
func (cb *Codebook) Size() int {
	return len(cb.centroids)
}

// K returns the number of neighbors described by each centroid.
func (cb *Codebook) K() int {
	return cb.k
}

// Dim returns the number of features in each centroid.
func (cb *Codebook) Dim() int {
	return geom.Len(cb.k)
}

// Weights returns the feature weights of the codebook.
func (cb *Codebook) Weights() Weights {
	return cb.weights
}

// Symbols returns the symbols of every state in state order.
func (cb *Codebook) Symbols() string {
	return cb.symbols
}

// Symbol returns the symbol of the given state. It panics if the state does
// not exist.
func (cb *Codebook) Symbol(state int) byte {
	cb.mustExist(state)
	return cb.symbols[state]
}

// Centroid returns a copy of the centroid of the given state.
func (cb *Codebook) Centroid(state int) []float64 {
	cb.mustExist(state)
	return append([]float64(nil), cb.centroids[state]...)
}

// Nearest returns the state whose centroid is closest to the features given.
// Features equal to geom.Sentinel are left out of the distance. When two
// states are equally close, the lower state wins.
//
// Nearest panics if the number of features is not Dim.
func (cb *Codebook) Nearest(values []float64) int {
	if len(values) != cb.Dim() {
		panic(fmt.Sprintf("Nearest can only be called with %d features, but "+
			"%d were given.", cb.Dim(), len(values)))
	}
	best, bestDist := -1, 0.0
	for i := range cb.centroids {
		d := cb.sqdist(values, i)
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Distance returns the weighted Euclidean distance between the features
// given and the centroid of a state. Sentinel features are ignored.
func (cb *Codebook) Distance(values []float64, state int) float64 {
	cb.mustExist(state)
	return math.Sqrt(cb.sqdist(values, state))
}

func (cb *Codebook) sqdist(values []float64, state int) float64 {
	c := cb.centroids[state]
	sum := 0.0
	for j, v := range values {
		if v == geom.Sentinel {
			continue
		}
		d := v - c[j]
		sum += cb.scale[j] * d * d
	}
	return sum
}

func (cb *Codebook) mustExist(state int) {
	if state < 0 || state >= len(cb.centroids) {
		panic(fmt.Sprintf("State %d does not exist in codebook '%s'.",
			state, cb))
	}
}

// String returns the name of the codebook, its number of states and the
// number of neighbors described.
func (cb *Codebook) String() string {
	return fmt.Sprintf("%s (%d, %d)", cb.name, len(cb.centroids), cb.k)
}

// codebookGob is the on disk form of a codebook.
type codebookGob struct {
	Name      string
	K         int
	Weights   Weights
	Symbols   string
	Centroids [][]float64
}

// Save writes the codebook to the writer provided. It can be read back
// with Open.
func (cb *Codebook) Save(w io.Writer) error {
	enc := gob.NewEncoder(w)
	return enc.Encode(codebookGob{
		Name:      cb.name,
		K:         cb.k,
		Weights:   cb.weights,
		Symbols:   cb.symbols,
		Centroids: cb.centroids,
	})
}

// Open loads a codebook written by Save. The codebook is validated as if it
// were constructed with New.
func Open(r io.Reader) (*Codebook, error) {
	var raw codebookGob

	dec := gob.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("could not decode codebook: %w", err)
	}
	return New(raw.Name, raw.K, raw.Weights, raw.Symbols, raw.Centroids)
}

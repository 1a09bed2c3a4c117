package codebook

import (
	"math"

	"github.com/pranavathiyani/predict3Di/geom"
)

// Alphabet is the symbols of the built in codebook, one per state.
const Alphabet = "ACDEFGHIKLMNPQRSTVWY"

// DefaultName is the name of the built in codebook.
const DefaultName = "default"

// prototype describes a state of the built in codebook: a backbone region
// and how densely packed the neighborhood of the residue is.
type prototype struct {
	phi, psi float64 // degrees

	// rate is how quickly neighbor distances grow past the two sequence
	// neighbors. Buried residues have close neighbors.
	rate float64

	// orient is the typical dot product of neighboring frame z axes and
	// side is the typical alignment of CB with the neighbor direction.
	orient, side float64
}

// prototypes are ordered so that state i has symbol Alphabet[i]. Each
// backbone region comes as a buried state followed by an exposed one.
var prototypes = []prototype{
	// alpha helix
	{-63, -41, 0.45, 0.60, 0.35},
	{-63, -41, 0.75, 0.55, -0.20},
	// bridge
	{-90, -5, 0.45, 0.30, 0.30},
	{-90, -5, 0.72, 0.25, -0.25},
	// beta strand
	{-120, 130, 0.45, -0.30, 0.40},
	{-120, 130, 0.70, -0.35, -0.15},
	// extended strand
	{-150, 155, 0.45, -0.50, 0.35},
	{-150, 155, 0.72, -0.55, -0.20},
	// polyproline II
	{-70, 145, 0.45, 0.10, 0.25},
	{-70, 145, 0.75, 0.05, -0.30},
	// left handed helix
	{60, 40, 0.45, 0.45, 0.20},
	{60, 40, 0.72, 0.40, -0.25},
	// glycine extended
	{80, 175, 0.45, -0.10, 0.15},
	{80, 175, 0.75, -0.15, -0.30},
	// gamma turn
	{-80, 75, 0.45, 0.20, 0.30},
	{-80, 75, 0.72, 0.15, -0.20},
	// zeta
	{-140, 75, 0.45, -0.20, 0.30},
	{-140, 75, 0.70, -0.25, -0.20},
	// rare left handed region
	{60, -120, 0.45, 0.00, 0.20},
	{60, -120, 0.72, -0.05, -0.25},
}

// Default returns the built in codebook, describing geom.DefaultNeighbors
// neighbors per residue with DefaultWeights. A new codebook is built on
// every call.
func Default() *Codebook {
	k := geom.DefaultNeighbors
	centroids := make([][]float64, len(prototypes))
	for i, p := range prototypes {
		centroids[i] = p.centroid(k)
	}
	cb, err := New(DefaultName, k, DefaultWeights(), Alphabet, centroids)
	if err != nil {
		panic("BUG: invalid built in codebook: " + err.Error())
	}
	return cb
}

// centroid expands a prototype into a full descriptor of k neighbors.
func (p prototype) centroid(k int) []float64 {
	c := make([]float64, geom.Len(k))
	phi, psi := p.phi*math.Pi/180, p.psi*math.Pi/180
	c[0], c[1] = math.Sin(phi), math.Cos(phi)
	c[2], c[3] = math.Sin(psi), math.Cos(psi)
	for m := 0; m < k; m++ {
		off := 4 + 3*m
		c[off] = 3.8
		if m >= 2 {
			c[off] += p.rate * float64(m-1)
		}
		c[off+1] = p.orient
		c[off+2] = p.side
	}
	return c
}

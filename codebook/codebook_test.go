package codebook

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/pranavathiyani/predict3Di/geom"
)

func constant(v float64, n int) []float64 {
	c := make([]float64, n)
	for i := range c {
		c[i] = v
	}
	return c
}

func TestDefault(t *testing.T) {
	cb := Default()
	if cb.Size() != 20 {
		t.Fatalf("Expected 20 states but got %d.", cb.Size())
	}
	if cb.Dim() != geom.Len(geom.DefaultNeighbors) {
		t.Fatalf("Expected %d features but got %d.",
			geom.Len(geom.DefaultNeighbors), cb.Dim())
	}
	if cb.Symbols() != Alphabet {
		t.Fatalf("Expected symbols %s but got %s.", Alphabet, cb.Symbols())
	}
	for i := 0; i < cb.Size(); i++ {
		if got := cb.Nearest(cb.Centroid(i)); got != i {
			t.Fatalf("The centroid of state %d is nearest to state %d.",
				i, got)
		}
	}
}

func TestDefaultIsolated(t *testing.T) {
	a, b := Default(), Default()
	if a == b {
		t.Fatalf("Default returned the same codebook twice.")
	}
	c := a.Centroid(0)
	c[0] = 100
	if a.Centroid(0)[0] == 100 {
		t.Fatalf("Centroid returned a reference to internal state.")
	}
}

func TestNearestTies(t *testing.T) {
	c := constant(0.5, geom.Len(1))
	cb, err := New("ties", 1, DefaultWeights(), "AB", [][]float64{c, c})
	if err != nil {
		t.Fatal(err)
	}
	if got := cb.Nearest(constant(0, geom.Len(1))); got != 0 {
		t.Fatalf("Expected a tie to go to state 0 but got %d.", got)
	}
}

func TestNearestSentinel(t *testing.T) {
	// State 0 matches the torsions, state 1 matches the neighbor features.
	s0 := []float64{1, 0, 1, 0, 10, -1, -1}
	s1 := []float64{0, 1, 0, 1, 3.8, 1, 1}
	cb, err := New("sentinel", 1, DefaultWeights(), "AB",
		[][]float64{s0, s1})
	if err != nil {
		t.Fatal(err)
	}

	full := []float64{0.9, 0.1, 0.9, 0.1, 3.8, 1, 1}
	if got := cb.Nearest(full); got != 0 {
		t.Fatalf("Expected state 0 for matching torsions but got %d.", got)
	}
	noTorsions := []float64{
		geom.Sentinel, geom.Sentinel, geom.Sentinel, geom.Sentinel,
		3.8, 1, 1,
	}
	if got := cb.Nearest(noTorsions); got != 1 {
		t.Fatalf("Expected state 1 without torsions but got %d.", got)
	}
	if d := cb.Distance(noTorsions, 1); d != 0 {
		t.Fatalf("Expected a distance of 0 but got %f.", d)
	}
}

func TestNewErrors(t *testing.T) {
	c := constant(0, geom.Len(2))
	tests := []struct {
		name      string
		k         int
		symbols   string
		centroids [][]float64
		err       error
	}{
		{"empty", 2, "", nil, ErrEmpty},
		{"too few symbols", 2, "A", [][]float64{c, c}, ErrSymbols},
		{"duplicate symbols", 2, "AA", [][]float64{c, c}, ErrSymbols},
		{"reserved symbol", 2, "AX", [][]float64{c, c}, ErrSymbols},
		{"blank symbol", 2, "A ", [][]float64{c, c}, ErrSymbols},
		{"wrong length", 3, "AB", [][]float64{c, c}, ErrDimension},
		{"negative k", -1, "AB", [][]float64{c, c}, ErrDimension},
	}
	for _, test := range tests {
		_, err := New(test.name, test.k, DefaultWeights(), test.symbols,
			test.centroids)
		if !errors.Is(err, test.err) {
			t.Fatalf("%s: expected error '%v' but got '%v'.",
				test.name, test.err, err)
		}
	}

	bad := constant(0, geom.Len(0))
	bad[1] = math.NaN()
	if _, err := New("nan", 0, DefaultWeights(), "A", [][]float64{bad}); err == nil {
		t.Fatalf("Expected an error for a NaN feature.")
	}
}

func TestSaveOpen(t *testing.T) {
	cb := Default()
	buf := new(bytes.Buffer)
	if err := cb.Save(buf); err != nil {
		t.Fatal(err)
	}
	loaded, err := Open(buf)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.String() != cb.String() || loaded.Symbols() != cb.Symbols() {
		t.Fatalf("Expected %s but got %s.", cb, loaded)
	}
	if loaded.Weights() != cb.Weights() {
		t.Fatalf("Weights differ: %v != %v", loaded.Weights(), cb.Weights())
	}
	for i := 0; i < cb.Size(); i++ {
		a, b := cb.Centroid(i), loaded.Centroid(i)
		for j := range a {
			if a[j] != b[j] {
				t.Fatalf("State %d, feature %d: %f != %f", i, j, a[j], b[j])
			}
		}
	}

	if _, err := Open(bytes.NewReader([]byte("not a codebook"))); err == nil {
		t.Fatalf("Expected an error opening garbage.")
	}
}

func TestTrain(t *testing.T) {
	seed, err := New("seed", 0, DefaultWeights(), "AB", [][]float64{
		constant(0, 4), constant(1, 4),
	})
	if err != nil {
		t.Fatal(err)
	}
	ds := []geom.Descriptor{
		{Values: constant(0.1, 4), Flag: geom.Valid},
		{Values: constant(0.2, 4), Flag: geom.Valid},
		{Values: constant(0.3, 4), Flag: geom.Valid},
		{Values: constant(0.7, 4), Flag: geom.Valid},
		{Values: constant(0.9, 4), Flag: geom.Valid},
		{Values: constant(0.5, 4), Flag: geom.Partial},
	}
	cb, stats, err := Train(seed, ds, TrainOptions{Name: "trained"})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Used != 5 {
		t.Fatalf("Expected 5 descriptors to be used but got %d.", stats.Used)
	}
	if !stats.Converged {
		t.Fatalf("Expected training to converge in %d rounds.",
			stats.Iterations)
	}
	if stats.Counts[0] != 3 || stats.Counts[1] != 2 {
		t.Fatalf("Expected counts [3 2] but got %v.", stats.Counts)
	}
	if cb.Name() != "trained" || cb.Symbols() != "AB" {
		t.Fatalf("Unexpected trained codebook %s (%s).", cb, cb.Symbols())
	}
	if c := cb.Centroid(0); math.Abs(c[0]-0.2) > 1e-12 {
		t.Fatalf("Expected centroid 0 at 0.2 but got %f.", c[0])
	}
	if c := cb.Centroid(1); math.Abs(c[0]-0.8) > 1e-12 {
		t.Fatalf("Expected centroid 1 at 0.8 but got %f.", c[0])
	}
	if c := seed.Centroid(1); c[0] != 1 {
		t.Fatalf("Training modified the seed codebook.")
	}

	_, _, err = Train(seed, ds[5:], TrainOptions{})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("Expected ErrNoData but got %v.", err)
	}
}

func ExampleCodebook_Nearest() {
	cb := Default()
	helix := cb.Centroid(0)
	fmt.Printf("%c\n", cb.Symbol(cb.Nearest(helix)))
	// Output:
	// A
}

package codebook

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/pranavathiyani/predict3Di/geom"
)

// ErrNoData is returned by Train when there are no complete descriptors to
// learn from.
var ErrNoData = errors.New("no complete descriptors to train on")

// TrainOptions controls codebook refinement.
type TrainOptions struct {
	// Name of the resulting codebook. When empty, the seed's name is used.
	Name string

	// MaxIter bounds the number of refinement rounds. Zero means 50.
	MaxIter int
}

// TrainStats summarizes a training run.
type TrainStats struct {
	// Used is the number of descriptors trained on. Descriptors that are
	// not geom.Valid are skipped.
	Used int

	// Iterations is the number of rounds run. Converged is true if the last
	// round changed no assignment.
	Iterations int
	Converged  bool

	// Counts is the number of descriptors assigned to each state in the
	// final round.
	Counts []int
}

// Train refines the centroids of a seed codebook against descriptors with
// Lloyd's algorithm: every descriptor is assigned to its nearest centroid
// and then every centroid moves to the mean of its descriptors. A state
// that attracts no descriptors keeps its centroid. Symbols, weights and the
// neighbor count are inherited from the seed.
//
// Training is deterministic for a given seed and descriptor order.
func Train(
	seed *Codebook,
	descriptors []geom.Descriptor,
	opts TrainOptions,
) (*Codebook, TrainStats, error) {
	var stats TrainStats
	if opts.MaxIter <= 0 {
		opts.MaxIter = 50
	}
	if len(opts.Name) == 0 {
		opts.Name = seed.name
	}

	data := make([][]float64, 0, len(descriptors))
	for i, d := range descriptors {
		if d.Flag != geom.Valid {
			continue
		}
		if len(d.Values) != seed.Dim() {
			return nil, stats, fmt.Errorf("%w: descriptor %d has %d "+
				"features, expected %d", ErrDimension, i, len(d.Values),
				seed.Dim())
		}
		data = append(data, d.Values)
	}
	stats.Used = len(data)
	if len(data) == 0 {
		return nil, stats, ErrNoData
	}

	centroids := make([][]float64, seed.Size())
	for i := range centroids {
		centroids[i] = seed.Centroid(i)
	}
	work := &Codebook{k: seed.k, scale: seed.scale, centroids: centroids}

	assign := make([]int, len(data))
	for i := range assign {
		assign[i] = -1
	}
	sums := make([][]float64, len(centroids))
	for i := range sums {
		sums[i] = make([]float64, seed.Dim())
	}
	counts := make([]int, len(centroids))

	for stats.Iterations < opts.MaxIter {
		stats.Iterations++

		changed := 0
		for i, values := range data {
			state := work.Nearest(values)
			if state != assign[i] {
				assign[i] = state
				changed++
			}
		}
		if changed == 0 {
			stats.Converged = true
			break
		}

		for i := range sums {
			floats.Scale(0, sums[i])
			counts[i] = 0
		}
		for i, values := range data {
			floats.Add(sums[assign[i]], values)
			counts[assign[i]]++
		}
		for i := range centroids {
			if counts[i] == 0 {
				continue
			}
			floats.ScaleTo(centroids[i], 1/float64(counts[i]), sums[i])
		}
	}

	stats.Counts = make([]int, len(centroids))
	for _, state := range assign {
		stats.Counts[state]++
	}
	cb, err := New(opts.Name, seed.k, seed.weights, seed.symbols, centroids)
	if err != nil {
		return nil, stats, err
	}
	return cb, stats, nil
}

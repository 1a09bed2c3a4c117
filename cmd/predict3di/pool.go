package main

import (
	"sync"

	"github.com/pranavathiyani/predict3Di/pdb"
	"github.com/pranavathiyani/predict3Di/source"
	"github.com/pranavathiyani/predict3Di/threedi"
)

// pool reads and encodes structure files with a fixed number of workers.
type pool struct {
	wg      *sync.WaitGroup
	jobs    chan job
	results chan result
}

type job struct {
	index int
	path  string
}

type result struct {
	index int
	rec   record
	err   error
}

func newEncodeWorkers(enc *threedi.Encoder, numWorkers int) pool {
	jobs := make(chan job, numWorkers*2)
	results := make(chan result, numWorkers*2)
	wg := &sync.WaitGroup{}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- encodeFile(enc, j)
			}
		}()
	}
	return pool{wg, jobs, results}
}

func encodeFile(enc *threedi.Encoder, j job) result {
	entry, err := source.ReadFile(j.path)
	if err != nil {
		return result{index: j.index, err: err}
	}
	return result{index: j.index, rec: encodeEntry(enc, entry)}
}

func encodeEntry(enc *threedi.Encoder, entry *pdb.Entry) record {
	return record{
		ID:     entry.IdCode,
		Path:   entry.Path,
		Chains: enc.EncodeEntry(entry),
	}
}

func (p pool) done() {
	close(p.jobs)
	p.wg.Wait() // wait for workers to finish sending results
	close(p.results)
}

func (p pool) enqueue(index int, path string) {
	p.jobs <- job{index, path}
}

package util

import (
	"github.com/pranavathiyani/predict3Di/codebook"
	"github.com/pranavathiyani/predict3Di/config"
)

// Codebook returns the codebook named by the settings, or the built in one.
func Codebook(conf config.Config) *codebook.Codebook {
	cb, err := conf.LoadCodebook()
	Assert(err, "Could not open codebook")
	return cb
}

// CodebookWrite saves a codebook to the path given.
func CodebookWrite(path string, cb *codebook.Codebook) {
	w := CreateFile(path)
	Assert(cb.Save(w), "Could not write codebook '%s'", path)
	Assert(w.Close(), "Could not write codebook '%s'", path)
}

package util

import (
	"log"
)

var (
	// FlagVerbose turns on progress reporting and per residue warnings.
	// It is set from the "verbose" setting by the root command.
	FlagVerbose = false
)

func init() {
	log.SetFlags(0)
}

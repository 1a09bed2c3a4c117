package pdb

import (
	"github.com/TuftsBCB/seq"
)

// AminoThreeToOne is a map from three letter amino acids to their
// corresponding single letter representation.
var AminoThreeToOne = map[string]seq.Residue{
	"ALA": 'A', "ARG": 'R', "ASN": 'N', "ASP": 'D', "CYS": 'C',
	"GLU": 'E', "GLN": 'Q', "GLY": 'G', "HIS": 'H', "ILE": 'I',
	"LEU": 'L', "LYS": 'K', "MET": 'M', "PHE": 'F', "PRO": 'P',
	"SER": 'S', "THR": 'T', "TRP": 'W', "TYR": 'Y', "VAL": 'V',
	"SEC": 'U', "PYL": 'O',
	"UNK": 'X', "ASX": 'X', "GLX": 'X',
}

// AminoOneToThree is the reverse of AminoThreeToOne. It is created in
// this packages 'init' function.
var AminoOneToThree = map[seq.Residue]string{}

func init() {
	// Create a reverse map of AminoThreeToOne.
	for k, v := range AminoThreeToOne {
		if v != 'X' {
			AminoOneToThree[v] = k
		}
	}
}

// Letter returns the one letter label for a three letter residue name.
// Anything that isn't a known amino acid is 'X'.
func Letter(threeAbbrev string) seq.Residue {
	if v, ok := AminoThreeToOne[threeAbbrev]; ok {
		return v
	}
	return 'X'
}

/*
Package codebook provides the fixed reference table a structural alphabet is
assigned from: a list of centroids over geom descriptors, each labeled with a
one character symbol.

Assigning a state to a residue is a nearest centroid search under a weighted
Euclidean distance. Features that could not be computed (geom.Sentinel) do not
contribute, which lets residues at chain ends or next to gaps still be
assigned a state.

A built in codebook is available with Default. Codebooks can be refined
against real structures with Train, and stored with Save and Open (the
format is encoding/gob).
*/
package codebook

/*
Package pdb reads protein structures from PDB formatted text into an Entry of
chains, residues and atom coordinates.

Only what is needed to compute structural alphabet sequences is kept: the
first model, one coordinate per atom name (alternate locations are resolved by
occupancy), and residues from ATOM records plus modified amino acids from
HETATM records. Anything that cannot be interpreted as a PDB file results in a
*ParseError.

The Entry type defined here is shared by the mmCIF reader in package pdbx.
*/
package pdb

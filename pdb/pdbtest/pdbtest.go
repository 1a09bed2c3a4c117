// Package pdbtest builds ideal protein backbones and formats them as PDB or
// mmCIF text for tests.
package pdbtest

import (
	"bytes"
	"fmt"
	"math"

	"github.com/TuftsBCB/structure"
)

// Ideal backbone geometry (Engh & Huber).
const (
	bondNCa = 1.458
	bondCaC = 1.525
	bondCN  = 1.329
	bondCO  = 1.231

	angleNCaC = 111.2
	angleCaCN = 116.2
	angleCNCa = 121.7
	angleCaCO = 120.5
)

// Atom is a named coordinate.
type Atom struct {
	Name string
	structure.Coords
}

// Residue is a residue with its atoms in file order.
type Residue struct {
	Name  string
	Atoms []Atom
}

// Chain is a list of residues with a chain identifier.
type Chain struct {
	Ident    string
	Residues []Residue
}

// Drop removes the named atom from the residue at index i.
func (c Chain) Drop(i int, name string) {
	atoms := c.Residues[i].Atoms[:0]
	for _, atom := range c.Residues[i].Atoms {
		if atom.Name != name {
			atoms = append(atoms, atom)
		}
	}
	c.Residues[i].Atoms = atoms
}

// Translate moves every atom of the chain.
func (c Chain) Translate(dx, dy, dz float64) {
	for i := range c.Residues {
		for j := range c.Residues[i].Atoms {
			c.Residues[i].Atoms[j].X += dx
			c.Residues[i].Atoms[j].Y += dy
			c.Residues[i].Atoms[j].Z += dz
		}
	}
}

// Backbone builds n alanine residues with the given phi and psi torsions (in
// degrees) and trans peptide bonds. Each residue has N, CA, C and O atoms.
func Backbone(ident string, n int, phi, psi float64) Chain {
	phis, psis := make([]float64, n), make([]float64, n)
	for i := range phis {
		phis[i], psis[i] = phi, psi
	}
	return BackboneTorsions(ident, phis, psis)
}

// BackboneTorsions is like Backbone, but with per residue torsions. The
// first phi and the last psi only matter for where the O atom goes.
func BackboneTorsions(ident string, phis, psis []float64) Chain {
	chain := Chain{Ident: ident, Residues: make([]Residue, len(phis))}
	if len(phis) == 0 {
		return chain
	}

	n := [3]float64{0, 0, 0}
	ca := [3]float64{bondNCa, 0, 0}
	t := rad(angleNCaC)
	c := [3]float64{
		ca[0] - bondCaC*math.Cos(t),
		bondCaC * math.Sin(t),
		0,
	}
	for i := range phis {
		if i > 0 {
			prevN, prevCA, prevC := n, ca, c
			n = place(prevN, prevCA, prevC, bondCN, angleCaCN, psis[i-1])
			ca = place(prevCA, prevC, n, bondNCa, angleCNCa, 180)
			c = place(prevC, n, ca, bondCaC, angleNCaC, phis[i])
		}
		o := place(n, ca, c, bondCO, angleCaCO, psis[i]+180)
		chain.Residues[i] = Residue{
			Name: "ALA",
			Atoms: []Atom{
				{"N", coords(n)}, {"CA", coords(ca)},
				{"C", coords(c)}, {"O", coords(o)},
			},
		}
	}
	return chain
}

// place puts a new atom d bonded to c, with the given bond length, bond
// angle b-c-d and torsion a-b-c-d (degrees). This is the NeRF construction.
func place(a, b, c [3]float64, bond, angle, torsion float64) [3]float64 {
	theta, chi := rad(angle), rad(torsion)
	bc := unit(sub(c, b))
	nv := unit(cross(sub(b, a), bc))
	m := cross(nv, bc)
	d2 := [3]float64{
		-bond * math.Cos(theta),
		bond * math.Sin(theta) * math.Cos(chi),
		bond * math.Sin(theta) * math.Sin(chi),
	}
	var d [3]float64
	for k := 0; k < 3; k++ {
		d[k] = c[k] + d2[0]*bc[k] + d2[1]*m[k] + d2[2]*nv[k]
	}
	return d
}

// PDB formats the chains as the ATOM records of a PDB file with a HEADER
// record carrying the id code given.
func PDB(idCode string, chains ...Chain) string {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "%-10s%-40s%-9s   %-4s\n",
		"HEADER", "STRUCTURAL ALPHABET TEST", "01-JAN-00", idCode)
	serial := 1
	for _, chain := range chains {
		for i, r := range chain.Residues {
			for _, atom := range r.Atoms {
				buf.WriteString(AtomRecord("ATOM", serial, atom.Name, ' ',
					r.Name, chain.Ident, i+1, atom.Coords, 1.0))
				buf.WriteByte('\n')
				serial++
			}
		}
		fmt.Fprintf(buf, "TER   %5d\n", serial)
		serial++
	}
	buf.WriteString("END\n")
	return buf.String()
}

// AtomRecord formats a single ATOM or HETATM record.
func AtomRecord(
	record string,
	serial int,
	name string,
	altLoc byte,
	resName, chain string,
	seqNum int,
	xyz structure.Coords,
	occupancy float64,
) string {
	if len(name) < 4 {
		name = " " + name
	}
	return fmt.Sprintf("%-6s%5d %-4s%c%3s %s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f",
		record, serial, name, altLoc, resName, chain[:1], seqNum,
		xyz.X, xyz.Y, xyz.Z, occupancy, 20.0)
}

// CIF formats the chains as a minimal PDBx/mmCIF file.
func CIF(idCode string, chains ...Chain) string {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "data_%s\n#\n_entry.id %s\n#\nloop_\n", idCode, idCode)
	for _, tag := range []string{
		"group_PDB", "id", "type_symbol", "label_atom_id", "label_alt_id",
		"label_comp_id", "label_asym_id", "label_entity_id", "label_seq_id",
		"pdbx_PDB_ins_code", "Cartn_x", "Cartn_y", "Cartn_z", "occupancy",
		"B_iso_or_equiv", "auth_seq_id", "auth_asym_id",
		"pdbx_PDB_model_num",
	} {
		fmt.Fprintf(buf, "_atom_site.%s\n", tag)
	}
	serial := 1
	for _, chain := range chains {
		for i, r := range chain.Residues {
			for _, atom := range r.Atoms {
				fmt.Fprintf(buf, "ATOM %d %c %s . %s %s 1 %d ? "+
					"%.3f %.3f %.3f 1.00 20.00 %d %s 1\n",
					serial, atom.Name[0], atom.Name, r.Name, chain.Ident,
					i+1, atom.X, atom.Y, atom.Z, i+1, chain.Ident)
				serial++
			}
		}
	}
	buf.WriteString("#\n")
	return buf.String()
}

func coords(v [3]float64) structure.Coords {
	return structure.Coords{X: v[0], Y: v[1], Z: v[2]}
}

func rad(deg float64) float64 {
	return deg * math.Pi / 180
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func unit(a [3]float64) [3]float64 {
	n := math.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2])
	return [3]float64{a[0] / n, a[1] / n, a[2] / n}
}

package geom

import (
	"math"

	"github.com/TuftsBCB/structure"
	"gonum.org/v1/gonum/spatial/r3"
)

// Dihedral returns the torsion angle (in radians) defined by four points,
// using the right hand rule. The result is in the range (-pi, pi].
func Dihedral(p0, p1, p2, p3 r3.Vec) float64 {
	b1 := r3.Sub(p1, p0)
	b2 := r3.Sub(p2, p1)
	b3 := r3.Sub(p3, p2)

	n1, n2 := r3.Cross(b1, b2), r3.Cross(b2, b3)
	y := r3.Norm(b2) * r3.Dot(b1, n2)
	x := r3.Dot(n1, n2)
	angle := math.Atan2(y, x)
	if angle <= -math.Pi {
		angle = math.Pi
	}
	return angle
}

// Frame returns the orthonormal local frame of a residue: x points from CA
// to C, z is perpendicular to the N-CA-C plane and y completes a right
// handed system.
func Frame(n, ca, c r3.Vec) (x, y, z r3.Vec) {
	x = unit(r3.Sub(c, ca))
	z = unit(r3.Cross(x, r3.Sub(n, ca)))
	y = r3.Cross(z, x)
	return
}

// VirtualCB places a beta-carbon using ideal geometry from the backbone
// atoms of a residue.
func VirtualCB(n, ca, c r3.Vec) r3.Vec {
	b := r3.Sub(ca, n)
	cc := r3.Sub(c, ca)
	a := r3.Cross(b, cc)
	cb := r3.Add(r3.Scale(-0.58273431, a), r3.Scale(0.56802827, b))
	cb = r3.Add(cb, r3.Scale(-0.54067466, cc))
	return r3.Add(cb, ca)
}

func vec(c structure.Coords) r3.Vec {
	return r3.Vec{X: c.X, Y: c.Y, Z: c.Z}
}

// unit returns v scaled to length 1. The zero vector is returned unchanged.
func unit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return v
	}
	return r3.Scale(1/n, v)
}

package sdf

import (
	"math"

	"github.com/soypat/railkit/internal/bvh"
	"github.com/soypat/railkit/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// cylinder is a cylinder with its axis along Y (exact distance field).
type cylinder struct {
	height float64 // half height
	radius float64
	bb     r3.Box
}

// Cylinder returns an SDF3 for a cylinder centered on the origin with its
// axis along +Y.
func Cylinder(height, radius float64) SDF3 {
	if radius <= 0 {
		panic("radius <= 0")
	}
	if height <= 0 {
		panic("height <= 0")
	}
	d := r3.Vec{X: radius, Y: height / 2, Z: radius}
	return &cylinder{
		height: height / 2,
		radius: radius,
		bb:     r3.Box{Min: r3.Scale(-1, d), Max: d},
	}
}

// Evaluate returns the minimum distance to a cylinder.
func (s *cylinder) Evaluate(p r3.Vec) float64 {
	return sdfBox2d(r2.Vec{X: math.Hypot(p.X, p.Z), Y: p.Y}, r2.Vec{X: s.radius, Y: s.height})
}

func (s *cylinder) Bounds() r3.Box {
	return s.bb
}

func sdfBox2d(p, s r2.Vec) float64 {
	p = r2.Vec{X: math.Abs(p.X), Y: math.Abs(p.Y)}
	d := r2.Sub(p, s)
	k := s.Y - s.X
	if d.X > 0 && d.Y > 0 {
		return r2.Norm(d)
	}
	if p.Y-p.X > k {
		return d.Y
	}
	return d.X
}

// signRay is the direction of the inside test rays. It is skewed so rays
// rarely run along the edges of axis aligned geometry.
var signRay = r3.Unit(r3.Vec{X: 0.5377, Y: 0.3112, Z: 0.7831})

// mesh3 is the signed distance to a closed triangle mesh.
type mesh3 struct {
	tree *bvh.Tree
	bb   r3.Box
}

// Mesh returns an SDF3 for the solid bounded by a closed triangle mesh.
// The distance is the distance to the nearest triangle. Its sign comes
// from the parity of surface crossings along a fixed ray, so it does not
// depend on triangle winding.
func Mesh(tris []d3.Triangle) SDF3 {
	tree := bvh.New(tris)
	return &mesh3{tree: tree, bb: r3.Box(tree.Bounds())}
}

// Evaluate returns the signed distance to the mesh surface.
func (s *mesh3) Evaluate(p r3.Vec) float64 {
	idx, _, dist2 := s.tree.Nearest(p)
	if idx < 0 {
		return math.MaxFloat64
	}
	d := math.Sqrt(dist2)
	if !d3.Box(s.bb).Contains(p) {
		return d
	}
	if s.tree.Crossings(p, signRay, 1e-9)%2 == 1 {
		return -d
	}
	return d
}

func (s *mesh3) Bounds() r3.Box {
	return s.bb
}

package carve

import (
	"math"

	"github.com/soypat/railkit/curve"
	"github.com/soypat/railkit/internal/d3"
	"github.com/soypat/railkit/solid"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Hole is a cylindrical cutter. Its axis is the +Y axis carried by
// Orientation and its center sits at Position.
type Hole struct {
	Position    r3.Vec
	Orientation r3.Rotation
	Diameter    float64
	// T is the path parameter the hole was placed at.
	T float64
}

// Transform returns the rigid transform that places a Y aligned cutter
// centered on the origin at the hole.
func (h Hole) Transform() d3.Transform {
	return d3.ComposeTransform(h.Position, d3.Elem(1), h.Orientation)
}

// Axis returns the direction of the hole axis.
func (h Hole) Axis() r3.Vec {
	return h.Transform().Direction(r3.Vec{Y: 1})
}

// Layout sets how many holes are drilled and how.
type Layout struct {
	Count    int
	Diameter float64
	// Offset moves curved path holes along the profile normal, toward the
	// rail floor.
	Offset float64
}

func (l Layout) empty() bool { return l.Count <= 0 || l.Diameter <= 0 }

// t returns the path parameter of the i'th of the layout's holes.
func (l Layout) t(i int) float64 { return (float64(i) + 0.5) / float64(l.Count) }

var identity = r3.Rotation{Real: 1}

// Straight places holes along a straight part of the given length that is
// centered on z=0. Holes run along +Y through x=0, y=0.
func Straight(length float64, l Layout) []Hole {
	if l.empty() {
		return nil
	}
	step := length / float64(l.Count)
	holes := make([]Hole, l.Count)
	for i := range holes {
		holes[i] = Hole{
			Position:    r3.Vec{Z: -length/2 + step*(float64(i)+0.5)},
			Orientation: identity,
			Diameter:    l.Diameter,
			T:           l.t(i),
		}
	}
	return holes
}

// Curved places holes evenly by arc length along path in the path's own
// space. A vertical turn keeps the floor normal along x so every hole
// shares a quarter turn about Z. A horizontal turn tilts each hole into
// the plane of the turn, perpendicular to the local tangent.
func Curved(path curve.Path, axis curve.Axis, l Layout) []Hole {
	if l.empty() {
		return nil
	}
	up := r3.Vec{Y: 1}
	holes := make([]Hole, l.Count)
	for i := range holes {
		t := l.t(i)
		h := Hole{Position: path.PointAt(t), Diameter: l.Diameter, T: t}
		switch axis {
		case curve.Vertical:
			h.Orientation = r3.NewRotation(-math.Pi/2, r3.Vec{Z: 1})
			h.Position.X -= l.Offset
		default:
			normal := r3.Unit(r3.Cross(path.TangentAt(t), up))
			h.Orientation = fromTo(up, normal)
			h.Position = r3.Add(h.Position, r3.Scale(l.Offset, normal))
		}
		holes[i] = h
	}
	return holes
}

// fromTo returns the shortest rotation taking unit vector from onto unit
// vector to.
func fromTo(from, to r3.Vec) r3.Rotation {
	c := r3.Cross(from, to)
	q := quat.Number{Real: 1 + r3.Dot(from, to), Imag: c.X, Jmag: c.Y, Kmag: c.Z}
	if q.Real < 1e-9 {
		// Opposite vectors: half turn about any perpendicular axis.
		p := d3.Perpendicular(from)
		q = quat.Number{Imag: p.X, Jmag: p.Y, Kmag: p.Z}
	}
	return r3.Rotation(quat.Scale(1/quat.Abs(q), q))
}

// Cutters returns preview meshes of the holes' cutters.
func Cutters(holes []Hole, height float64) []*solid.Mesh {
	cutters := make([]*solid.Mesh, len(holes))
	for i, h := range holes {
		m := solid.Cylinder(h.Diameter/2, height, solid.CutterSegments)
		m.Apply(h.Transform())
		cutters[i] = m
	}
	return cutters
}

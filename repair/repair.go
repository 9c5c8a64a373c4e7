// Package repair fixes the triangle winding of stitched meshes so every
// face points out of the solid.
package repair

import (
	"github.com/soypat/railkit/internal/bvh"
	"github.com/soypat/railkit/solid"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// Offset is how far above a face its parity ray starts.
	Offset = 1e-3
	// HitTolerance merges crossings this close along a parity ray.
	HitTolerance = 1e-6
)

// Stats reports what Repair did.
type Stats struct {
	Triangles  int // triangles examined.
	Flipped    int // triangles whose winding was reversed.
	Degenerate int // zero area triangles skipped.
}

// Repair orients every triangle of m outward by parity ray casting: a ray
// leaving a face along its normal that crosses the surface an odd number
// of times started inside the solid, so the face points inward and is
// flipped. Vertex normals are recomputed. Repairing a repaired mesh flips
// nothing.
func Repair(m *solid.Mesh) Stats {
	stats := Stats{Triangles: len(m.Triangles)}
	if len(m.Triangles) == 0 {
		return stats
	}
	tree := bvh.New(m.TriangleSoup())
	flip := make([]bool, len(m.Triangles))
	for i := range m.Triangles {
		tri := m.Triangle(i)
		n := tri.Normal()
		if n == (r3.Vec{}) {
			stats.Degenerate++
			continue
		}
		origin := r3.Add(tri.Centroid(), r3.Scale(Offset, n))
		if tree.Crossings(origin, n, HitTolerance)%2 == 1 {
			flip[i] = true
		}
	}
	// Flip after probing so every ray sees the original surface.
	for i, f := range flip {
		if f {
			t := &m.Triangles[i]
			t[1], t[2] = t[2], t[1]
			stats.Flipped++
		}
	}
	m.ComputeNormals()
	return stats
}

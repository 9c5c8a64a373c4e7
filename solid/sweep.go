package solid

import (
	"errors"
	"math"

	"github.com/soypat/railkit/curve"
	"github.com/soypat/railkit/internal/d2"
	"github.com/soypat/railkit/internal/d3"
	"github.com/soypat/railkit/profile"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultSteps is the number of sweep steps along curved paths.
const DefaultSteps = 200

// Frame orients a profile at the start of a path heading +Z: profile x
// runs along Binormal and profile y along Normal. The frame is carried
// along the path by parallel transport.
type Frame struct {
	Normal, Binormal r3.Vec
}

var (
	// PathFrame lays profile y along +X and profile x along +Y, the
	// orientation angled parts are swept in.
	PathFrame = Frame{Normal: r3.Vec{X: 1}, Binormal: r3.Vec{Y: 1}}
	// PlanFrame keeps profile coordinates as world X and Y, the
	// orientation of straight extrusions.
	PlanFrame = Frame{Normal: r3.Vec{Y: 1}, Binormal: r3.Vec{X: 1}}
)

// Sweep sweeps a closed profile along the whole path in PathFrame.
func Sweep(p profile.Profile, path curve.Path, steps int) (*Mesh, error) {
	return SweepRange(p, path, PathFrame, 0, 1, steps)
}

// Extrude sweeps a closed profile from z=0 to z=length in PlanFrame.
func Extrude(p profile.Profile, length float64) (*Mesh, error) {
	return SweepRange(p, curve.Straight(length), PlanFrame, 0, 1, 1)
}

// SweepRange sweeps a closed profile over the part of path between arc
// length fractions from and to. The frame is transported from the start
// of the path so separately swept ranges line up.
func SweepRange(p profile.Profile, path curve.Path, f Frame, from, to float64, steps int) (*Mesh, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	poly := p.Polyline(profile.DefaultDivisions)
	return sweepStages(path, f, []stage{{loops: []d2.Set{poly}, from: from, to: to, steps: steps}})
}

// stage is a stretch of a sweep between arc length fractions from and to.
// Its cross section is one or more disjoint closed loops.
type stage struct {
	loops    []d2.Set
	from, to float64
	steps    int
}

type ring struct{ pt, n, b r3.Vec }

// sweepStages sweeps consecutive stages along path as one closed surface.
// Rings on stage boundaries are shared, and where the cross section
// changes the boundary is closed by the region one section has over the
// other, so no faces overlap inside the solid. One of two neighbouring
// sections must contain the other.
func sweepStages(path curve.Path, f Frame, stages []stage) (*Mesh, error) {
	if path.Length() == 0 || len(stages) == 0 {
		return nil, errors.New("sweep: empty path range")
	}
	for i, s := range stages {
		if !(s.to > s.from) {
			return nil, errors.New("sweep: empty path range")
		}
		if i > 0 && s.from != stages[i-1].to {
			return nil, errors.New("sweep: stages are not contiguous")
		}
	}
	sec, err := newSections(stages)
	if err != nil {
		return nil, err
	}

	// Carry the frame to the start of the first stage.
	n, b := f.Normal, f.Binormal
	prev := r3.Vec{Z: 1}
	if from := stages[0].from; from > 0 {
		_, lead := path.SampleRange(0, from, max(stages[0].steps, 1))
		for _, t := range lead {
			n, b = transport(prev, t, n, b)
			prev = t
		}
	}
	// bounds[i] is the ring stage i starts on. Stages share boundary rings.
	var rings []ring
	bounds := make([]int, len(stages)+1)
	for i, s := range stages {
		points, tangents := path.SampleRange(s.from, s.to, max(s.steps, 1))
		if i > 0 {
			points, tangents = points[1:], tangents[1:]
			bounds[i] = len(rings) - 1
		}
		for j, pt := range points {
			n, b = transport(prev, tangents[j], n, b)
			prev = tangents[j]
			rings = append(rings, ring{pt: pt, n: n, b: b})
		}
	}
	bounds[len(stages)] = len(rings) - 1

	m := &Mesh{}
	index := make(map[int]int)
	vert := func(r, id int) int {
		key := r*len(sec.pts) + id
		if i, ok := index[key]; ok {
			return i
		}
		rg, v := rings[r], sec.pts[id]
		m.Vertices = append(m.Vertices, r3.Add(rg.pt, r3.Add(r3.Scale(v.Y, rg.n), r3.Scale(v.X, rg.b))))
		index[key] = len(m.Vertices) - 1
		return len(m.Vertices) - 1
	}
	for _, loop := range sec.loops[0] {
		for _, id := range loop {
			vert(0, id)
		}
	}

	// Face triangles are counter-clockwise in profile space, facing along
	// Binormal×Normal. flip tells whether that is backwards along the path.
	flip := r3.Dot(r3.Cross(f.Binormal, f.Normal), r3.Vec{Z: 1}) < 0
	for i, loops := range sec.loops {
		for r := bounds[i]; r < bounds[i+1]; r++ {
			for _, loop := range loops {
				for j, u := range loop {
					v := loop[(j+1)%len(loop)]
					a, bb := vert(r, u), vert(r, v)
					c, d := vert(r+1, v), vert(r+1, u)
					if !flip {
						m.Triangles = append(m.Triangles, [3]int{a, bb, c}, [3]int{a, c, d})
					} else {
						m.Triangles = append(m.Triangles, [3]int{a, c, bb}, [3]int{a, d, c})
					}
				}
			}
		}
	}
	face := func(r int, tris [][3]int, forward bool) {
		for _, t := range tris {
			a, b, c := vert(r, t[0]), vert(r, t[1]), vert(r, t[2])
			if forward == flip {
				b, c = c, b
			}
			m.Triangles = append(m.Triangles, [3]int{a, b, c})
		}
	}
	last := len(stages) - 1
	start, err := sec.triangulate(sec.loops[0])
	if err != nil {
		return nil, err
	}
	end, err := sec.triangulate(sec.loops[last])
	if err != nil {
		return nil, err
	}
	face(0, start, false)
	face(bounds[last+1], end, true)
	for i := 1; i < len(stages); i++ {
		step, forward, err := sec.step(i-1, i)
		if err != nil {
			return nil, err
		}
		face(bounds[i], step, forward)
	}
	return m, nil
}

// transport rotates the frame (n, b) by the rotation taking tangent t0 to
// t1 and re-orthonormalizes it against t1.
func transport(t0, t1, n, b r3.Vec) (r3.Vec, r3.Vec) {
	axis := r3.Cross(t0, t1)
	if s := r3.Norm(axis); s > 1e-12 {
		angle := math.Atan2(s, r3.Dot(t0, t1))
		rot := d3.Rotation(axis, angle)
		n, b = rot.Direction(n), rot.Direction(b)
	}
	n = r3.Unit(r3.Sub(n, r3.Scale(r3.Dot(n, t1), t1)))
	b = r3.Sub(b, r3.Scale(r3.Dot(b, t1), t1))
	b = r3.Unit(r3.Sub(b, r3.Scale(r3.Dot(b, n), n)))
	return n, b
}

// earClip triangulates a simple polygon given without its closing point.
// Triangles are returned counter-clockwise regardless of the polygon's
// orientation.
func earClip(poly d2.Set) ([][3]int, error) {
	n := len(poly)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if poly.Area() < 0 {
		for i := range idx {
			idx[i] = n - 1 - i
		}
	}
	cross := func(a, b, c int) float64 {
		return r2.Cross(r2.Sub(poly[b], poly[a]), r2.Sub(poly[c], poly[a]))
	}
	tris := make([][3]int, 0, n-2)
	for len(idx) > 3 {
		found := false
		for i := range idx {
			a, b, c := idx[(i+len(idx)-1)%len(idx)], idx[i], idx[(i+1)%len(idx)]
			if cross(a, b, c) <= 0 {
				continue // reflex or flat.
			}
			ear := true
			for _, q := range idx {
				if q == a || q == b || q == c {
					continue
				}
				if cross(a, b, q) > 0 && cross(b, c, q) > 0 && cross(c, a, q) > 0 {
					ear = false
					break
				}
			}
			if ear {
				tris = append(tris, [3]int{a, b, c})
				idx = append(idx[:i], idx[i+1:]...)
				found = true
				break
			}
		}
		if found {
			continue
		}
		// No proper ear: drop a flat vertex, which adds no area.
		dropped := false
		for i := range idx {
			a, b, c := idx[(i+len(idx)-1)%len(idx)], idx[i], idx[(i+1)%len(idx)]
			if math.Abs(cross(a, b, c)) < 1e-12 {
				idx = append(idx[:i], idx[i+1:]...)
				dropped = true
				break
			}
		}
		if !dropped {
			return nil, errors.New("sweep: profile is not a simple polygon")
		}
	}
	if cross(idx[0], idx[1], idx[2]) > 0 {
		tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	}
	return tris, nil
}

package solid

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/soypat/railkit/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// sectionTol is the distance under which two profile points are the same
// point.
const sectionTol = 1e-6

// sections holds the cross sections of a staged sweep as counter-clockwise
// loops of indices into pts. Points shared between sections are stored
// once, and every loop edge is split at the points other loops place on
// it, so neighbouring sections agree on their common boundary.
type sections struct {
	pts   []r2.Vec
	loops [][][]int
}

func newSections(stages []stage) (*sections, error) {
	s := &sections{loops: make([][][]int, len(stages))}
	for i, st := range stages {
		if len(st.loops) == 0 {
			return nil, errors.New("sweep: stage has no cross section")
		}
		for _, poly := range st.loops {
			loop := s.loop(poly)
			if len(loop) < 3 {
				return nil, errors.New("sweep: profile has fewer than three points")
			}
			s.loops[i] = append(s.loops[i], loop)
		}
	}
	for _, loops := range s.loops {
		for j, loop := range loops {
			loops[j] = s.split(loop)
		}
	}
	return s, nil
}

// loop interns a polygon counter-clockwise, keeping its first point first.
func (s *sections) loop(poly d2.Set) []int {
	ordered := poly
	if poly.Area() < 0 {
		ordered = make(d2.Set, 0, len(poly))
		ordered = append(ordered, poly[0])
		for i := len(poly) - 1; i > 0; i-- {
			ordered = append(ordered, poly[i])
		}
	}
	ids := make([]int, 0, len(ordered))
	for _, v := range ordered {
		id := s.intern(v)
		if len(ids) > 0 && ids[len(ids)-1] == id {
			continue
		}
		ids = append(ids, id)
	}
	for len(ids) > 1 && ids[0] == ids[len(ids)-1] {
		ids = ids[:len(ids)-1]
	}
	return ids
}

func (s *sections) intern(v r2.Vec) int {
	for i, q := range s.pts {
		if d2.EqualWithin(q, v, sectionTol) {
			return i
		}
	}
	s.pts = append(s.pts, v)
	return len(s.pts) - 1
}

// split inserts every known point lying inside an edge of loop.
func (s *sections) split(loop []int) []int {
	out := make([]int, 0, len(loop))
	type cut struct {
		id int
		t  float64
	}
	var cuts []cut
	for j, u := range loop {
		v := loop[(j+1)%len(loop)]
		out = append(out, u)
		cuts = cuts[:0]
		for id := range s.pts {
			if t, ok := s.inside(u, v, id); ok {
				cuts = append(cuts, cut{id: id, t: t})
			}
		}
		sort.Slice(cuts, func(a, b int) bool { return cuts[a].t < cuts[b].t })
		for _, c := range cuts {
			out = append(out, c.id)
		}
	}
	return out
}

// inside reports whether point id lies strictly between points u and v and
// where along the segment it does.
func (s *sections) inside(u, v, id int) (float64, bool) {
	if id == u || id == v {
		return 0, false
	}
	a, b, p := s.pts[u], s.pts[v], s.pts[id]
	d := r2.Sub(b, a)
	l2 := r2.Dot(d, d)
	if l2 == 0 {
		return 0, false
	}
	t := r2.Dot(r2.Sub(p, a), d) / l2
	if t <= 0 || t >= 1 {
		return 0, false
	}
	if r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, d)))) >= sectionTol {
		return 0, false
	}
	return t, true
}

func (s *sections) area(loops [][]int) (area float64) {
	for _, loop := range loops {
		area += s.poly(loop).Area()
	}
	return area
}

func (s *sections) poly(loop []int) d2.Set {
	poly := make(d2.Set, len(loop))
	for i, id := range loop {
		poly[i] = s.pts[id]
	}
	return poly
}

// triangulate returns counter-clockwise triangles covering loops. Loop
// points that would end up inside a triangle edge split that triangle, so
// the triangles meet the loop edges vertex to vertex.
func (s *sections) triangulate(loops [][]int) ([][3]int, error) {
	var tris [][3]int
	for _, loop := range loops {
		local, err := earClip(s.poly(loop))
		if err != nil {
			return nil, err
		}
		work := make([][3]int, len(local))
		for i, t := range local {
			work[i] = [3]int{loop[t[0]], loop[t[1]], loop[t[2]]}
		}
	next:
		for len(work) > 0 {
			t := work[len(work)-1]
			work = work[:len(work)-1]
			for e := 0; e < 3; e++ {
				a, b, c := t[e], t[(e+1)%3], t[(e+2)%3]
				for _, id := range loop {
					if id == c {
						continue
					}
					if _, ok := s.inside(a, b, id); ok {
						work = append(work, [3]int{a, id, c}, [3]int{id, b, c})
						continue next
					}
				}
			}
			tris = append(tris, t)
		}
	}
	return tris, nil
}

// step returns the face closing the boundary between sections i and j:
// the region the larger section has over the smaller one. forward reports
// whether the face looks along the path, which is the case when the
// larger section comes first.
func (s *sections) step(i, j int) (tris [][3]int, forward bool, err error) {
	outer, inner := s.loops[i], s.loops[j]
	ai, aj := s.area(outer), s.area(inner)
	forward = true
	if aj > ai {
		outer, inner, forward = inner, outer, false
	}
	loops, err := s.difference(outer, inner)
	if err != nil {
		return nil, false, err
	}
	got, want := s.area(loops), math.Abs(ai-aj)
	if math.Abs(got-want) > sectionTol*(1+math.Abs(ai)+math.Abs(aj)) {
		return nil, false, fmt.Errorf("sweep: stage %d cross section does not contain stage %d", i, j)
	}
	tris, err = s.triangulate(loops)
	return tris, forward, err
}

// difference returns the boundary loops of outer minus inner. Edges the
// two share cancel out and the remaining inner edges are reversed.
func (s *sections) difference(outer, inner [][]int) ([][]int, error) {
	type edge [2]int
	var edges []edge
	for _, loop := range outer {
		for j, u := range loop {
			edges = append(edges, edge{u, loop[(j+1)%len(loop)]})
		}
	}
	for _, loop := range inner {
		for j, u := range loop {
			e := edge{u, loop[(j+1)%len(loop)]}
			found := false
			for k, o := range edges {
				if o == e {
					edges = append(edges[:k], edges[k+1:]...)
					found = true
					break
				}
			}
			if !found {
				edges = append(edges, edge{e[1], e[0]})
			}
		}
	}
	outgoing := make(map[int][]int)
	for k, e := range edges {
		outgoing[e[0]] = append(outgoing[e[0]], k)
	}
	used := make([]bool, len(edges))
	var loops [][]int
	for first := range edges {
		if used[first] {
			continue
		}
		var loop []int
		cur := first
		for {
			used[cur] = true
			e := edges[cur]
			loop = append(loop, e[0])
			// Leave a shared vertex by the edge turning furthest right,
			// which keeps loops that touch at a point apart.
			back := r2.Sub(s.pts[e[0]], s.pts[e[1]])
			next, best := -1, math.Inf(1)
			for _, k := range outgoing[e[1]] {
				if used[k] && k != first {
					continue
				}
				w := r2.Sub(s.pts[edges[k][1]], s.pts[e[1]])
				ang := math.Atan2(r2.Cross(w, back), r2.Dot(w, back))
				if ang <= 0 {
					ang += 2 * math.Pi
				}
				if ang < best {
					next, best = k, ang
				}
			}
			if next == first {
				break
			}
			if next < 0 {
				return nil, errors.New("sweep: cross section boundary does not close")
			}
			cur = next
		}
		if len(loop) < 3 {
			continue
		}
		if s.poly(loop).Area() < 0 {
			return nil, errors.New("sweep: cross section step encloses a hole")
		}
		loops = append(loops, loop)
	}
	return loops, nil
}

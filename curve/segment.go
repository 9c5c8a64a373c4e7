package curve

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// arcDivisions is the number of chords used to approximate the length of
// a curved segment.
const arcDivisions = 200

// Segment is a piece of a sweep path. At and Tangent take a parameter
// u in [0,1] that is proportional to arc length.
type Segment interface {
	At(u float64) r3.Vec
	Tangent(u float64) r3.Vec
	Length() float64
}

// Line is a straight path segment.
type Line struct {
	P0, P1 r3.Vec
}

func (l Line) At(u float64) r3.Vec {
	if u >= 1 {
		return l.P1
	}
	return r3.Add(l.P0, r3.Scale(u, r3.Sub(l.P1, l.P0)))
}

func (l Line) Tangent(float64) r3.Vec {
	d := r3.Sub(l.P1, l.P0)
	if r3.Norm(d) == 0 {
		return r3.Vec{Z: 1}
	}
	return r3.Unit(d)
}

func (l Line) Length() float64 { return r3.Norm(r3.Sub(l.P1, l.P0)) }

// QuadBezier is a quadratic Bézier segment with control point P1.
type QuadBezier struct {
	P0, P1, P2 r3.Vec
	lengths    []float64 // cumulative chord lengths, lazily built.
}

// NewQuadBezier returns a Bézier segment with its arc length table built.
func NewQuadBezier(p0, p1, p2 r3.Vec) *QuadBezier {
	q := &QuadBezier{P0: p0, P1: p1, P2: p2}
	q.buildLengths()
	return q
}

func (q *QuadBezier) buildLengths() {
	q.lengths = make([]float64, arcDivisions+1)
	prev := q.P0
	for i := 1; i <= arcDivisions; i++ {
		p := q.eval(float64(i) / arcDivisions)
		q.lengths[i] = q.lengths[i-1] + r3.Norm(r3.Sub(p, prev))
		prev = p
	}
}

// eval evaluates the curve at its natural parameter s.
func (q *QuadBezier) eval(s float64) r3.Vec {
	k := 1 - s
	return r3.Add(r3.Add(
		r3.Scale(k*k, q.P0),
		r3.Scale(2*k*s, q.P1)),
		r3.Scale(s*s, q.P2))
}

func (q *QuadBezier) derivative(s float64) r3.Vec {
	return r3.Add(
		r3.Scale(2*(1-s), r3.Sub(q.P1, q.P0)),
		r3.Scale(2*s, r3.Sub(q.P2, q.P1)))
}

// natural maps an arc length fraction u to the natural curve parameter.
func (q *QuadBezier) natural(u float64) float64 {
	if q.lengths == nil {
		q.buildLengths()
	}
	total := q.lengths[arcDivisions]
	if total == 0 || u <= 0 {
		return 0
	}
	if u >= 1 {
		return 1
	}
	target := u * total
	i := sort.SearchFloat64s(q.lengths, target)
	if i == 0 {
		return 0
	}
	before, after := q.lengths[i-1], q.lengths[i]
	frac := (target - before) / (after - before)
	return (float64(i-1) + frac) / arcDivisions
}

func (q *QuadBezier) At(u float64) r3.Vec { return q.eval(q.natural(u)) }

func (q *QuadBezier) Tangent(u float64) r3.Vec {
	d := q.derivative(q.natural(u))
	if r3.Norm(d) == 0 {
		// Degenerate control polygon: fall back to the chord.
		return Line{P0: q.P0, P1: q.P2}.Tangent(0)
	}
	return r3.Unit(d)
}

func (q *QuadBezier) Length() float64 {
	if q.lengths == nil {
		q.buildLengths()
	}
	return q.lengths[arcDivisions]
}

func clamp01(u float64) float64 {
	return math.Max(0, math.Min(1, u))
}

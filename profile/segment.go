package profile

import (
	"math"

	"github.com/soypat/railkit/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Kind distinguishes line segments from circular arcs.
type Kind uint8

const (
	Line Kind = iota
	Arc
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case Arc:
		return "arc"
	}
	return "Kind(?)"
}

// Segment is a piece of a profile contour. P0 and P1 are always the start
// and end points, for arcs they are derived from the arc parameters.
type Segment struct {
	Kind   Kind
	P0, P1 r2.Vec
	// Arc parameters. Angles are in radians.
	Center     r2.Vec
	Radius     float64
	Start, End float64
	Clockwise  bool
}

// NewLine returns a line segment from p0 to p1.
func NewLine(p0, p1 r2.Vec) Segment {
	return Segment{Kind: Line, P0: p0, P1: p1}
}

// NewArc returns an arc segment centered at c. The direction of travel
// follows the same rules as three.js absarc: the angular delta is reduced
// to [0, 2π] and clockwise arcs travel the complementary way around.
func NewArc(c r2.Vec, radius, start, end float64, clockwise bool) Segment {
	s := Segment{Kind: Arc, Center: c, Radius: radius, Start: start, End: end, Clockwise: clockwise}
	s.P0 = d2.Polar(c, radius, start)
	s.P1 = d2.Polar(c, radius, start+s.Sweep())
	return s
}

// Sweep returns the signed angle travelled by an arc. Positive values are
// counter-clockwise. Lines return 0.
func (s Segment) Sweep() float64 {
	if s.Kind != Arc {
		return 0
	}
	const eps = 1e-12
	const twoPi = 2 * math.Pi
	delta := s.End - s.Start
	samePoints := math.Abs(delta) < eps
	for delta < 0 {
		delta += twoPi
	}
	for delta > twoPi {
		delta -= twoPi
	}
	if delta < eps {
		if samePoints {
			delta = 0
		} else {
			delta = twoPi
		}
	}
	if s.Clockwise && !samePoints {
		if delta == twoPi {
			delta = -twoPi
		} else {
			delta -= twoPi
		}
	}
	return delta
}

// At returns the point at parameter t in [0, 1] along the segment.
func (s Segment) At(t float64) r2.Vec {
	switch {
	case t <= 0:
		return s.P0
	case t >= 1:
		return s.P1
	case s.Kind == Arc:
		return d2.Polar(s.Center, s.Radius, s.Start+t*s.Sweep())
	}
	return r2.Add(s.P0, r2.Scale(t, r2.Sub(s.P1, s.P0)))
}

// Length returns the segment's length.
func (s Segment) Length() float64 {
	if s.Kind == Arc {
		return math.Abs(s.Sweep()) * s.Radius
	}
	return r2.Norm(r2.Sub(s.P1, s.P0))
}

// Reverse returns the segment traversed from end to start.
func (s Segment) Reverse() Segment {
	if s.Kind == Arc {
		sweep := s.Sweep()
		r := NewArc(s.Center, s.Radius, s.Start+sweep, s.Start, sweep > 0)
		r.P0, r.P1 = s.P1, s.P0
		return r
	}
	return NewLine(s.P1, s.P0)
}

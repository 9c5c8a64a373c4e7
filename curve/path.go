// Package curve builds the sweep paths rails and covers follow. Paths
// start at the origin heading +Z and are evaluated by arc length.
package curve

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Axis selects the plane an angled path turns in.
type Axis int

const (
	// Vertical turns in the YZ plane, bending the rail up or down.
	Vertical Axis = iota
	// Horizontal turns in the XZ plane, bending the rail sideways.
	Horizontal
)

func (a Axis) String() string {
	switch a {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// ParseAxis parses "vertical" or "horizontal".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertical":
		return Vertical, nil
	case "horizontal":
		return Horizontal, nil
	}
	return 0, fmt.Errorf("unknown turn axis %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Axis) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Axis) UnmarshalText(b []byte) error {
	v, err := ParseAxis(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Direction returns the unit direction of the second leg of a path that
// turns by angle radians about axis.
func (a Axis) Direction(angle float64) r3.Vec {
	s, c := math.Sincos(angle)
	if a == Horizontal {
		return r3.Vec{X: s, Z: c}
	}
	return r3.Vec{Y: s, Z: c}
}

// Path is a chain of segments evaluated by arc length.
type Path struct {
	Segments []Segment
	// Fillet is the tangent offset of the corner blend, zero if the corner
	// is sharp.
	Fillet float64
	cum    []float64
}

// NewPath returns a path over segs. Zero length segments are dropped.
func NewPath(segs ...Segment) Path {
	var p Path
	for _, s := range segs {
		if s.Length() > 0 {
			p.Segments = append(p.Segments, s)
		}
	}
	p.cum = make([]float64, len(p.Segments)+1)
	for i, s := range p.Segments {
		p.cum[i+1] = p.cum[i] + s.Length()
	}
	return p
}

// Straight returns a path running from the origin to (0,0,length).
func Straight(length float64) Path {
	return NewPath(Line{P1: r3.Vec{Z: length}})
}

// Rounded returns a path with a first leg of length l1 along +Z, then a
// turn of angleDeg degrees about axis and a second leg of length l2. The
// corner is blended with a quadratic Bézier whose tangent offset is
// |r·tan(θ/2)|, clamped to leave at least 0.1 of each leg straight.
// Nearly straight turns and tiny blends produce a sharp corner.
func Rounded(l1, l2, angleDeg, r float64, axis Axis) Path {
	theta := angleDeg * math.Pi / 180
	dir := axis.Direction(theta)
	corner := r3.Vec{Z: l1}
	end := r3.Add(corner, r3.Scale(l2, dir))

	t := math.Abs(r * math.Tan(theta/2))
	if limit := math.Min(l1, l2) - 0.1; t > limit {
		t = math.Max(0, limit)
	}
	if math.Abs(angleDeg) < 0.1 || t < 0.1 || math.IsNaN(t) {
		return NewPath(
			Line{P1: corner},
			Line{P0: corner, P1: end},
		)
	}
	p0 := r3.Vec{Z: l1 - t}
	p2 := r3.Add(corner, r3.Scale(t, dir))
	path := NewPath(
		Line{P1: p0},
		NewQuadBezier(p0, corner, p2),
		Line{P0: p2, P1: end},
	)
	path.Fillet = t
	return path
}

// Length returns the total arc length of the path.
func (p Path) Length() float64 {
	if len(p.cum) == 0 {
		return 0
	}
	return p.cum[len(p.cum)-1]
}

// locate returns the segment at arc length fraction t and the local
// fraction within it.
func (p Path) locate(t float64) (Segment, float64) {
	t = clamp01(t)
	total := p.Length()
	d := t * total
	for i, s := range p.Segments {
		if d <= p.cum[i+1] || i == len(p.Segments)-1 {
			return s, clamp01((d - p.cum[i]) / s.Length())
		}
	}
	return nil, 0
}

// PointAt returns the point at arc length fraction t in [0,1].
func (p Path) PointAt(t float64) r3.Vec {
	s, u := p.locate(t)
	if s == nil {
		return r3.Vec{}
	}
	return s.At(u)
}

// TangentAt returns the unit tangent at arc length fraction t in [0,1].
func (p Path) TangentAt(t float64) r3.Vec {
	s, u := p.locate(t)
	if s == nil {
		return r3.Vec{Z: 1}
	}
	return s.Tangent(u)
}

// Sample returns steps+1 evenly spaced points along the path and their
// tangents.
func (p Path) Sample(steps int) (points, tangents []r3.Vec) {
	return p.SampleRange(0, 1, steps)
}

// SampleRange samples the part of the path between arc length fractions
// from and to with steps+1 evenly spaced points.
func (p Path) SampleRange(from, to float64, steps int) (points, tangents []r3.Vec) {
	if steps < 1 {
		steps = 1
	}
	points = make([]r3.Vec, steps+1)
	tangents = make([]r3.Vec, steps+1)
	for i := 0; i <= steps; i++ {
		t := from + (to-from)*float64(i)/float64(steps)
		points[i] = p.PointAt(t)
		tangents[i] = p.TangentAt(t)
	}
	return points, tangents
}

// Start returns the first point of the path.
func (p Path) Start() r3.Vec { return p.PointAt(0) }

// End returns the last point of the path.
func (p Path) End() r3.Vec { return p.PointAt(1) }

package profile

import (
	"math"

	"github.com/soypat/railkit/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// tolerance below which two profile points are considered the same.
const tolerance = 1e-9

// Builder assembles a contour from pen movements in the manner of a
// canvas path: MoveTo starts the contour, LineTo and AbsArc extend it.
// Zero length lines are dropped so the result never holds duplicate
// consecutive points. Arcs that do not start at the pen position are
// joined to it with a line.
type Builder struct {
	segs    []Segment
	start   r2.Vec
	pen     r2.Vec
	started bool
}

// MoveTo starts the contour at (x, y). It may only be called once.
func (b *Builder) MoveTo(x, y float64) *Builder {
	if b.started {
		panic("profile builder: MoveTo called twice")
	}
	b.start = r2.Vec{X: x, Y: y}
	b.pen = b.start
	b.started = true
	return b
}

// LineTo draws a line from the pen position to (x, y).
func (b *Builder) LineTo(x, y float64) *Builder {
	b.lineTo(r2.Vec{X: x, Y: y})
	return b
}

func (b *Builder) lineTo(p r2.Vec) {
	b.mustStart()
	if !d2.IsFinite(p) {
		panic("profile builder: non-finite point")
	}
	if d2.EqualWithin(b.pen, p, tolerance) {
		return
	}
	b.segs = append(b.segs, NewLine(b.pen, p))
	b.pen = p
}

// AbsArc draws a circular arc with absolute center (cx, cy).
func (b *Builder) AbsArc(cx, cy, radius, start, end float64, clockwise bool) *Builder {
	b.mustStart()
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		panic("profile builder: arc radius must be positive")
	}
	arc := NewArc(r2.Vec{X: cx, Y: cy}, radius, start, end, clockwise)
	b.lineTo(arc.P0)
	if arc.Sweep() == 0 {
		return b
	}
	arc.P0 = b.pen
	b.segs = append(b.segs, arc)
	b.pen = arc.P1
	return b
}

// Append adds a segment as is, joining it to the pen with a line if needed.
func (b *Builder) Append(s Segment) *Builder {
	b.mustStart()
	b.lineTo(s.P0)
	if s.Length() < tolerance {
		return b
	}
	s.P0 = b.pen
	b.segs = append(b.segs, s)
	b.pen = s.P1
	return b
}

// Pen returns the current pen position.
func (b *Builder) Pen() r2.Vec { return b.pen }

// Close draws a line back to the starting point if needed and returns
// the closed profile.
func (b *Builder) Close() Profile {
	return b.closeWithin(1e-6)
}

// closeWithin closes the contour, snapping the last point onto the start
// when it is closer than tol.
func (b *Builder) closeWithin(tol float64) Profile {
	b.mustStart()
	if len(b.segs) > 0 && r2.Norm(r2.Sub(b.pen, b.start)) < tol {
		// Snap the last point onto the start so closure is exact.
		b.segs[len(b.segs)-1].P1 = b.start
	} else {
		b.lineTo(b.start)
	}
	if len(b.segs) < 2 {
		panic("profile builder: closed contour needs at least two segments")
	}
	return Profile{Segments: b.segs, Closed: true}
}

// Open returns the profile built so far without adding a closing line.
// The profile is marked closed only if the pen is back at the start.
func (b *Builder) Open() Profile {
	closed := len(b.segs) > 1 && d2.EqualWithin(b.pen, b.start, 1e-6)
	return Profile{Segments: b.segs, Closed: closed}
}

func (b *Builder) mustStart() {
	if !b.started {
		panic("profile builder: MoveTo must be called first")
	}
}

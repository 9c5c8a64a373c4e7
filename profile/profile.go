// Package profile builds the closed 2D cross sections that are swept into
// rails, covers and connectors.
package profile

import (
	"errors"
	"fmt"

	"github.com/soypat/railkit/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultDivisions is the curve resolution used when flattening arcs.
// Each arc is split into 2*divisions straight pieces regardless of size.
const DefaultDivisions = 12

var (
	ErrEmpty     = errors.New("profile has no segments")
	ErrOpen      = errors.New("profile is not closed")
	ErrDuplicate = errors.New("profile has duplicate consecutive points")
)

// Profile is a contour made of lines and arcs. Consecutive segments share
// endpoints and a closed profile ends where it starts.
type Profile struct {
	Segments []Segment
	Closed   bool
}

// Start returns the first point of the contour.
func (p Profile) Start() r2.Vec {
	if len(p.Segments) == 0 {
		return r2.Vec{}
	}
	return p.Segments[0].P0
}

// End returns the last point of the contour.
func (p Profile) End() r2.Vec {
	if len(p.Segments) == 0 {
		return r2.Vec{}
	}
	return p.Segments[len(p.Segments)-1].P1
}

// Points returns the segment endpoints: the first point of every segment
// followed by the last point of the contour.
func (p Profile) Points() []r2.Vec {
	if len(p.Segments) == 0 {
		return nil
	}
	pts := make([]r2.Vec, 0, len(p.Segments)+1)
	for _, s := range p.Segments {
		pts = append(pts, s.P0)
	}
	return append(pts, p.End())
}

// Polyline flattens the contour into points. Arcs are split into
// 2*divisions pieces and lines are kept as is. For closed profiles the
// closing point (equal to the first) is not repeated.
func (p Profile) Polyline(divisions int) d2.Set {
	if divisions < 1 {
		divisions = DefaultDivisions
	}
	var pts d2.Set
	add := func(v r2.Vec) {
		if len(pts) > 0 && d2.EqualWithin(pts[len(pts)-1], v, tolerance) {
			return
		}
		pts = append(pts, v)
	}
	for _, s := range p.Segments {
		add(s.P0)
		if s.Kind == Arc {
			n := 2 * divisions
			for i := 1; i < n; i++ {
				add(s.At(float64(i) / float64(n)))
			}
		}
	}
	if len(p.Segments) > 0 {
		add(p.End())
	}
	if p.Closed && len(pts) > 1 && d2.EqualWithin(pts[0], pts[len(pts)-1], 1e-6) {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// Bounds returns the bounding box of the flattened contour.
func (p Profile) Bounds() d2.Box {
	b := d2.EmptyBox()
	for _, v := range p.Polyline(DefaultDivisions) {
		b = b.Include(v)
	}
	return b
}

// Area returns the signed area enclosed by the contour. Counter-clockwise
// contours have positive area.
func (p Profile) Area() float64 {
	return p.Polyline(DefaultDivisions).Area()
}

// Contains reports whether pt lies inside the closed contour.
func (p Profile) Contains(pt r2.Vec) bool {
	return p.Polyline(DefaultDivisions).Winding(pt) != 0
}

// Length returns the perimeter of the contour.
func (p Profile) Length() (l float64) {
	for _, s := range p.Segments {
		l += s.Length()
	}
	return l
}

// Validate checks the closure invariant, the continuity of segments and
// that no two consecutive points coincide.
func (p Profile) Validate() error {
	if len(p.Segments) == 0 {
		return ErrEmpty
	}
	for i, s := range p.Segments {
		if !d2.IsFinite(s.P0) || !d2.IsFinite(s.P1) {
			return fmt.Errorf("segment %d has non-finite endpoint", i)
		}
		if s.Length() < tolerance {
			return fmt.Errorf("segment %d: %w", i, ErrDuplicate)
		}
		if i > 0 && !d2.EqualWithin(p.Segments[i-1].P1, s.P0, 1e-6) {
			return fmt.Errorf("segment %d does not start where segment %d ends", i, i-1)
		}
	}
	if !p.Closed || !d2.EqualWithin(p.Start(), p.End(), 1e-6) {
		return ErrOpen
	}
	return nil
}

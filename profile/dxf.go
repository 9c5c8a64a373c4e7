package profile

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
	"gonum.org/v1/gonum/spatial/r2"
)

// ChainTolerance is the distance under which segment endpoints are
// considered coincident when chaining DXF entities.
const ChainTolerance = 0.001

// ErrNoEntities is returned when a DXF stream holds no LINE or ARC entity.
var ErrNoEntities = errors.New("dxf: no LINE or ARC entities")

// FromDXF reads a DXF stream and chains its LINE and ARC entities
// into a single profile. Chaining is greedy: starting from the first
// entity it repeatedly picks an unused entity starting (or, reversed,
// ending) at the current point. A chain that cannot be continued yields
// a warning and an open profile.
func FromDXF(r io.Reader) (Profile, []string, error) {
	segs, err := ReadDXF(r)
	if err != nil {
		return Profile{}, nil, err
	}
	return Chain(segs)
}

// Chain joins segments end to end as described in FromDXF.
func Chain(segs []Segment) (p Profile, warnings []string, err error) {
	if len(segs) == 0 {
		return Profile{}, nil, ErrNoEntities
	}
	defer recoverShape(&err)
	used := make([]bool, len(segs))
	var b Builder
	first := segs[0]
	used[0] = true
	b.MoveTo(first.P0.X, first.P0.Y)
	b.Append(first)
	current := first.P1
	for count := 1; count < len(segs); count++ {
		next, reverse := -1, false
		for i, s := range segs {
			if !used[i] && r2.Norm(r2.Sub(s.P0, current)) < ChainTolerance {
				next = i
				break
			}
		}
		if next < 0 {
			for i, s := range segs {
				if !used[i] && r2.Norm(r2.Sub(s.P1, current)) < ChainTolerance {
					next, reverse = i, true
					break
				}
			}
		}
		if next < 0 {
			warnings = append(warnings, fmt.Sprintf("could not find segment connected to (%g, %g): %d of %d segments chained, shape may be open or disjoint",
				current.X, current.Y, count, len(segs)))
			break
		}
		used[next] = true
		s := segs[next]
		if reverse {
			s = s.Reverse()
		}
		b.Append(s)
		current = s.P1
	}
	if r2.Norm(r2.Sub(current, first.P0)) < ChainTolerance {
		return b.closeWithin(ChainTolerance), warnings, err
	}
	warnings = append(warnings, "chained contour does not close")
	return b.Open(), warnings, err
}

// ReadDXF parses the LINE and ARC entities of a DXF stream. Other
// entities are ignored. DXF arc angles are in degrees and run
// counter-clockwise.
func ReadDXF(r io.Reader) ([]Segment, error) {
	d, err := dxf.FromReader(r)
	if err != nil {
		return nil, fmt.Errorf("dxf: %w", err)
	}
	var segs []Segment
	for _, e := range d.Entities() {
		switch e := e.(type) {
		case *entity.Line:
			segs = append(segs, NewLine(
				r2.Vec{X: e.Start[0], Y: e.Start[1]},
				r2.Vec{X: e.End[0], Y: e.End[1]},
			))
		case *entity.Arc:
			if e.Radius > 0 {
				segs = append(segs, NewArc(
					r2.Vec{X: e.Center[0], Y: e.Center[1]}, e.Radius,
					e.Angle[0]*math.Pi/180, e.Angle[1]*math.Pi/180, false,
				))
			}
		}
	}
	return segs, nil
}

// Package sdf holds the signed distance functions the hole carving
// boolean is evaluated on.
package sdf

import (
	"math"
	"strconv"

	"github.com/soypat/railkit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// SDF3 is the interface to a 3d signed distance function object.
type SDF3 interface {
	// Evaluate takes a point in 3D space as input and returns
	// the minimum distance of the SDF3 to the point. The distance
	// is negative if the point is contained within the SDF3.
	Evaluate(p r3.Vec) float64
	// Bounds returns the bounding box that completely contains
	// the SDF3.
	Bounds() r3.Box
}

// MinFunc is a minimum function for SDF blending.
type MinFunc func(a, b float64) float64

// MaxFunc is a maximum function for SDF blending.
type MaxFunc func(a, b float64) float64

type SDF3Union interface {
	SDF3
	SetMin(MinFunc)
}

type SDF3Diff interface {
	SDF3
	SetMax(MaxFunc)
}

// union3 is a union of SDF3s.
type union3 struct {
	sdf []SDF3
	min MinFunc
	bb  r3.Box
}

// Union3D returns the union of multiple SDF3 objects.
// Union3D will panic if arguments list is empty or if
// an argument SDF3 is nil.
func Union3D(sdf ...SDF3) SDF3Union {
	if len(sdf) == 0 {
		panic("union requires at least one sdf")
	}
	for i, x := range sdf {
		if x == nil {
			panic("nil sdf argument (" + strconv.Itoa(i) + ") to Union3D")
		}
	}
	bb := d3.Box(sdf[0].Bounds())
	for _, x := range sdf[1:] {
		bb = bb.Extend(d3.Box(x.Bounds()))
	}
	return &union3{sdf: sdf, min: math.Min, bb: r3.Box(bb)}
}

// Evaluate returns the minimum distance to an SDF3 union.
func (s *union3) Evaluate(p r3.Vec) float64 {
	d := s.sdf[0].Evaluate(p)
	for _, x := range s.sdf[1:] {
		d = s.min(d, x.Evaluate(p))
	}
	return d
}

// SetMin sets the minimum function to control blending.
func (s *union3) SetMin(min MinFunc) {
	s.min = min
}

func (s *union3) Bounds() r3.Box {
	return s.bb
}

// diff3 is the difference of two SDF3s, s0 - s1.
type diff3 struct {
	s0  SDF3
	s1  SDF3
	max MaxFunc
	bb  r3.Box
}

// Difference3D returns the difference of two SDF3s, s0 - s1.
// Difference3D will panic if one any of the arguments is nil.
func Difference3D(s0, s1 SDF3) SDF3Diff {
	if s1 == nil || s0 == nil {
		panic("nil argument to Difference3D")
	}
	return &diff3{s0: s0, s1: s1, max: math.Max, bb: s0.Bounds()}
}

// Evaluate returns the minimum distance to the SDF3 difference.
func (s *diff3) Evaluate(p r3.Vec) float64 {
	return s.max(s.s0.Evaluate(p), -s.s1.Evaluate(p))
}

// SetMax sets the maximum function to control blending.
func (s *diff3) SetMax(max MaxFunc) {
	s.max = max
}

// Bounds returns the bounding box of the minuend.
func (s *diff3) Bounds() r3.Box {
	return s.bb
}

// transform3 is an SDF3 placed by a rigid transform.
type transform3 struct {
	sdf     SDF3
	inverse d3.Transform
	bb      r3.Box
}

// Transform3D places an SDF3 with a rotation and translation. Distances
// are only preserved when the transform does not scale.
func Transform3D(sdf SDF3, t d3.Transform) SDF3 {
	if sdf == nil {
		panic("nil SDF3 argument")
	}
	return &transform3{
		sdf:     sdf,
		inverse: t.Inv(),
		bb:      r3.Box(t.ApplyBox(d3.Box(sdf.Bounds()))),
	}
}

// Evaluate returns the minimum distance to a transformed SDF3.
func (s *transform3) Evaluate(p r3.Vec) float64 {
	return s.sdf.Evaluate(s.inverse.Transform(p))
}

func (s *transform3) Bounds() r3.Box {
	return s.bb
}

package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// d3.Box is a 3d bounding box.
type Box r3.Box

// NewBox creates a 3d box with a given center and size.
func NewBox(center, size r3.Vec) Box {
	half := r3.Scale(0.5, size)
	return Box{Min: r3.Sub(center, half), Max: r3.Add(center, half)}
}

// EmptyBox returns an inverted box which any Include call collapses
// onto the included point.
func EmptyBox() Box {
	return Box{Min: Elem(math.Inf(1)), Max: Elem(math.Inf(-1))}
}

// BoxOf returns the bounding box of a set of points.
func BoxOf(pts []r3.Vec) Box {
	b := EmptyBox()
	for _, p := range pts {
		b = b.Include(p)
	}
	return b
}

// Empty reports whether the box has been left inverted (no points included).
func (a Box) Empty() bool {
	return a.Min.X > a.Max.X || a.Min.Y > a.Max.Y || a.Min.Z > a.Max.Z
}

// Equals test the equality of 3d boxes.
func (a Box) Equals(b Box, tol float64) bool {
	return EqualWithin(a.Min, b.Min, tol) && EqualWithin(a.Max, b.Max, tol)
}

// Extend returns a box enclosing two 3d boxes.
func (a Box) Extend(b Box) Box {
	return Box{
		Min: MinElem(a.Min, b.Min),
		Max: MaxElem(a.Max, b.Max),
	}
}

// Include enlarges a 3d box to include a point.
func (a Box) Include(v r3.Vec) Box {
	return Box{
		Min: MinElem(a.Min, v),
		Max: MaxElem(a.Max, v),
	}
}

// Translate translates a 3d box.
func (a Box) Translate(v r3.Vec) Box {
	return Box{r3.Add(a.Min, v), r3.Add(a.Max, v)}
}

// Size returns the size of a 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// Center returns the center of a 3d box.
func (a Box) Center() r3.Vec {
	return r3.Add(a.Min, r3.Scale(0.5, a.Size()))
}

// ScaleAboutCenter returns a new 3d box scaled about the center of a box.
func (a Box) ScaleAboutCenter(k float64) Box {
	return NewBox(a.Center(), r3.Scale(k, a.Size()))
}

// Enlarge returns a new 3d box grown by d on every side.
func (a Box) Enlarge(d float64) Box {
	return Box{
		Min: r3.Sub(a.Min, Elem(d)),
		Max: r3.Add(a.Max, Elem(d)),
	}
}

// Contains checks if the 3d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r3.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y && a.Min.Z <= v.Z &&
		v.X <= a.Max.X && v.Y <= a.Max.Y && v.Z <= a.Max.Z
}

// Vertices returns a slice of 3d box corner vertices.
func (a Box) Vertices() Set {
	v := make([]r3.Vec, 8)
	v[0] = a.Min
	v[1] = r3.Vec{X: a.Min.X, Y: a.Min.Y, Z: a.Max.Z}
	v[2] = r3.Vec{X: a.Min.X, Y: a.Max.Y, Z: a.Min.Z}
	v[3] = r3.Vec{X: a.Min.X, Y: a.Max.Y, Z: a.Max.Z}
	v[4] = r3.Vec{X: a.Max.X, Y: a.Min.Y, Z: a.Min.Z}
	v[5] = r3.Vec{X: a.Max.X, Y: a.Min.Y, Z: a.Max.Z}
	v[6] = r3.Vec{X: a.Max.X, Y: a.Max.Y, Z: a.Min.Z}
	v[7] = a.Max
	return v
}

// Dist2 returns the squared distance from p to the box. Points inside
// the box are at distance zero.
func (a Box) Dist2(p r3.Vec) float64 {
	// https://math.stackexchange.com/questions/2133217
	dx := math.Max(0, math.Max(p.X-a.Max.X, a.Min.X-p.X))
	dy := math.Max(0, math.Max(p.Y-a.Max.Y, a.Min.Y-p.Y))
	dz := math.Max(0, math.Max(p.Z-a.Max.Z, a.Min.Z-p.Z))
	return dx*dx + dy*dy + dz*dz
}

// IntersectRay returns the parametric entry and exit distances of the ray
// o + t*d through the box using the slab method. ok is false when the ray
// misses the box or the box lies entirely behind the origin.
func (a Box) IntersectRay(o, d r3.Vec) (tmin, tmax float64, ok bool) {
	tmin, tmax = math.Inf(-1), math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		oc, dc := Component(o, axis), Component(d, axis)
		lo, hi := Component(a.Min, axis), Component(a.Max, axis)
		if dc == 0 {
			if oc < lo || oc > hi {
				return 0, 0, false
			}
			continue
		}
		t0 := (lo - oc) / dc
		t1 := (hi - oc) / dc
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin = math.Max(tmin, t0)
		tmax = math.Min(tmax, t1)
		if tmin > tmax {
			return 0, 0, false
		}
	}
	return tmin, tmax, tmax >= 0
}

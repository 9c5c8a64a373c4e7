package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// R2 vector helpers for profile construction.

func EqualWithin(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r2.Vec) r2.Vec {
	return r2.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r2.Vec) r2.Vec {
	return r2.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)}
}

// Polar returns the point at radius r and angle theta around center.
func Polar(center r2.Vec, r, theta float64) r2.Vec {
	return r2.Vec{X: center.X + r*math.Cos(theta), Y: center.Y + r*math.Sin(theta)}
}

// IsFinite reports whether both components are neither NaN nor infinite.
func IsFinite(a r2.Vec) bool {
	return !math.IsNaN(a.X) && !math.IsInf(a.X, 0) &&
		!math.IsNaN(a.Y) && !math.IsInf(a.Y, 0)
}

type Set []r2.Vec

// Min return the minimum components of a set of vectors.
func (a Set) Min() r2.Vec {
	vmin := a[0]
	for _, v := range a[1:] {
		vmin = MinElem(vmin, v)
	}
	return vmin
}

// Max return the maximum components of a set of vectors.
func (a Set) Max() r2.Vec {
	vmax := a[0]
	for _, v := range a[1:] {
		vmax = MaxElem(vmax, v)
	}
	return vmax
}

// Area returns the signed area of the closed polygon described by the set.
// Counter-clockwise polygons have positive area.
func (a Set) Area() float64 {
	var sum float64
	for i := range a {
		j := (i + 1) % len(a)
		sum += a[i].X*a[j].Y - a[j].X*a[i].Y
	}
	return sum / 2
}

// Winding returns the winding number of the closed polygon around p.
// See: http://geomalgorithms.com/a03-_inclusion.html
func (a Set) Winding(p r2.Vec) int {
	wn := 0
	for i := range a {
		v0 := a[i]
		v1 := a[(i+1)%len(a)]
		side := r2.Cross(r2.Sub(v1, v0), r2.Sub(p, v0))
		if v0.Y <= p.Y {
			if v1.Y > p.Y && side > 0 {
				wn++ // upward crossing, p left of edge
			}
		} else if v1.Y <= p.Y && side < 0 {
			wn-- // downward crossing, p right of edge
		}
	}
	return wn
}

package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a 3d triangle given by its vertices in counter-clockwise
// order when seen from outside the solid.
type Triangle [3]r3.Vec

// Normal returns the unit normal following the right hand rule. Degenerate
// triangles return the zero vector.
func (t Triangle) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
	l := r3.Norm(n)
	if l == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, n)
}

// Area returns the triangle area.
func (t Triangle) Area() float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0])))
}

// Centroid returns the average of the vertices.
func (t Triangle) Centroid() r3.Vec {
	return r3.Scale(1.0/3, r3.Add(t[0], r3.Add(t[1], t[2])))
}

// Bounds returns the triangle's bounding box.
func (t Triangle) Bounds() Box {
	return Box{Min: MinElem(t[0], MinElem(t[1], t[2])), Max: MaxElem(t[0], MaxElem(t[1], t[2]))}
}

// Closest returns closest point on the triangle to argument point p.
// See Ericson, Real-Time Collision Detection, 5.1.5.
func (t Triangle) Closest(p r3.Vec) r3.Vec {
	a, b, c := t[0], t[1], t[2]
	ab := r3.Sub(b, a)
	ac := r3.Sub(c, a)
	ap := r3.Sub(p, a)
	d1 := r3.Dot(ab, ap)
	d2 := r3.Dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a // vertex region a
	}
	bp := r3.Sub(p, b)
	d3 := r3.Dot(ab, bp)
	d4 := r3.Dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b // vertex region b
	}
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return r3.Add(a, r3.Scale(v, ab)) // edge ab
	}
	cp := r3.Sub(p, c)
	d5 := r3.Dot(ab, cp)
	d6 := r3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c // vertex region c
	}
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return r3.Add(a, r3.Scale(w, ac)) // edge ac
	}
	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b))) // edge bc
	}
	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac)))
}

// IntersectRay returns the distance t along the ray o + t*d at which the
// ray crosses the triangle (Möller-Trumbore). Rays parallel to the
// triangle plane never hit.
func (t Triangle) IntersectRay(o, d r3.Vec) (float64, bool) {
	const eps = 1e-12
	e1 := r3.Sub(t[1], t[0])
	e2 := r3.Sub(t[2], t[0])
	pv := r3.Cross(d, e2)
	det := r3.Dot(e1, pv)
	if math.Abs(det) < eps {
		return 0, false
	}
	inv := 1 / det
	tv := r3.Sub(o, t[0])
	u := r3.Dot(tv, pv) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	qv := r3.Cross(tv, e1)
	v := r3.Dot(d, qv) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	return r3.Dot(e2, qv) * inv, true
}

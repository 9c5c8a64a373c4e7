package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Transform represents an affine 3D spatial transformation.
// The zero value of Transform is the identity transform.
type Transform struct {
	// in order to make the zero value of Transform represent the identity
	// transform we store it with the identity matrix subtracted.
	//  d00 = x00-1, d11 = x11-1, d22 = x22-1
	// The fourth column holds the translation. The projective row is
	// always (0, 0, 0, 1) and is not stored.
	d00, x01, x02, x03 float64
	x10, d11, x12, x13 float64
	x20, x21, d22, x23 float64
}

// Transform applies the Transform to the argument point
// and returns the result.
func (t Transform) Transform(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: (t.d00+1)*v.X + t.x01*v.Y + t.x02*v.Z + t.x03,
		Y: t.x10*v.X + (t.d11+1)*v.Y + t.x12*v.Z + t.x13,
		Z: t.x20*v.X + t.x21*v.Y + (t.d22+1)*v.Z + t.x23,
	}
}

// Direction applies the linear part of the Transform to v, ignoring translation.
func (t Transform) Direction(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: (t.d00+1)*v.X + t.x01*v.Y + t.x02*v.Z,
		Y: t.x10*v.X + (t.d11+1)*v.Y + t.x12*v.Z,
		Z: t.x20*v.X + t.x21*v.Y + (t.d22+1)*v.Z,
	}
}

// NewTransform returns a new Transform populated with the 12 values
// of a 3x4 affine matrix passed in row-major form.
func NewTransform(a []float64) Transform {
	if len(a) != 12 {
		panic("Transform is initialized with 12 values")
	}
	return Transform{
		d00: a[0] - 1, x01: a[1], x02: a[2], x03: a[3],
		x10: a[4], d11: a[5] - 1, x12: a[6], x13: a[7],
		x20: a[8], x21: a[9], d22: a[10] - 1, x23: a[11],
	}
}

// ComposeTransform creates a new transform for a given translation to
// positon, scaling vector scale and quaternion rotation.
// The identity Transform is constructed with
//  ComposeTransform(Vec{}, Vec{1,1,1}, Rotation{Real: 1})
func ComposeTransform(position, scale r3.Vec, q r3.Rotation) Transform {
	x2 := q.Imag + q.Imag
	y2 := q.Jmag + q.Jmag
	z2 := q.Kmag + q.Kmag
	xx := q.Imag * x2
	yy := q.Jmag * y2
	zz := q.Kmag * z2
	xy := q.Imag * y2
	xz := q.Imag * z2
	yz := q.Jmag * z2
	wx := q.Real * x2
	wy := q.Real * y2
	wz := q.Real * z2

	var t Transform
	t.d00 = (1-(yy+zz))*scale.X - 1
	t.x10 = (xy + wz) * scale.X
	t.x20 = (xz - wy) * scale.X

	t.x01 = (xy - wz) * scale.Y
	t.d11 = (1-(xx+zz))*scale.Y - 1
	t.x21 = (yz + wx) * scale.Y

	t.x02 = (xz + wy) * scale.Z
	t.x12 = (yz - wx) * scale.Z
	t.d22 = (1-(xx+yy))*scale.Z - 1

	t.x03 = position.X
	t.x13 = position.Y
	t.x23 = position.Z
	return t
}

// Rotation returns the transform rotating by angle radians about axis
// following the right hand rule.
func Rotation(axis r3.Vec, angle float64) Transform {
	return ComposeTransform(r3.Vec{}, Elem(1), r3.NewRotation(angle, axis))
}

// Translation returns a pure translation transform.
func Translation(v r3.Vec) Transform {
	return Transform{x03: v.X, x13: v.Y, x23: v.Z}
}

// Translate adds Vec to the positional Transform.
func (t Transform) Translate(v r3.Vec) Transform {
	t.x03 += v.X
	t.x13 += v.Y
	t.x23 += v.Z
	return t
}

// Mul multiplies the Transforms t and b and returns the result.
// Applying the result is the same as applying b and then t.
func (t Transform) Mul(b Transform) Transform {
	if t == (Transform{}) {
		return b
	}
	if b == (Transform{}) {
		return t
	}
	tm, bm := t.rows(), b.rows()
	var m [3][4]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			v := tm[i][0]*bm[0][j] + tm[i][1]*bm[1][j] + tm[i][2]*bm[2][j]
			if j == 3 {
				v += tm[i][3]
			}
			m[i][j] = v
		}
	}
	return fromRows(m)
}

// Det returns the determinant of the linear part of the Transform.
// A negative determinant means the transform mirrors space and
// reverses triangle winding.
func (t Transform) Det() float64 {
	m := t.rows()
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Inv returns the inverse of the transform such that
// t.Inv().Mul(t) is the identity Transform.
// If the matrix is singular then Inv returns the identity.
func (t Transform) Inv() Transform {
	if t == (Transform{}) {
		return t
	}
	det := t.Det()
	if math.Abs(det) < 1e-16 {
		return Transform{}
	}
	m := t.rows()
	d := 1 / det
	var inv [3][4]float64
	inv[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) * d
	inv[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * d
	inv[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * d
	inv[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) * d
	inv[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * d
	inv[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * d
	inv[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) * d
	inv[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * d
	inv[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * d
	for i := 0; i < 3; i++ {
		inv[i][3] = -(inv[i][0]*m[0][3] + inv[i][1]*m[1][3] + inv[i][2]*m[2][3])
	}
	return fromRows(inv)
}

// ApplyBox returns the axis aligned box enclosing the transformed corners of b.
func (t Transform) ApplyBox(b Box) Box {
	out := EmptyBox()
	for _, v := range b.Vertices() {
		out = out.Include(t.Transform(v))
	}
	return out
}

// EqualWithin tests the equality of the Transforms to within a tolerance.
func (t Transform) EqualWithin(b Transform, tol float64) bool {
	tm, bm := t.rows(), b.rows()
	for i := range tm {
		for j := range tm[i] {
			if math.Abs(tm[i][j]-bm[i][j]) > tol {
				return false
			}
		}
	}
	return true
}

// SliceCopy returns a copy of the Transform's data
// in row major storage format. It returns 12 elements.
func (t Transform) SliceCopy() []float64 {
	m := t.rows()
	return append(append(m[0][:], m[1][:]...), m[2][:]...)
}

func (t Transform) rows() [3][4]float64 {
	return [3][4]float64{
		{t.d00 + 1, t.x01, t.x02, t.x03},
		{t.x10, t.d11 + 1, t.x12, t.x13},
		{t.x20, t.x21, t.d22 + 1, t.x23},
	}
}

func fromRows(m [3][4]float64) Transform {
	return Transform{
		d00: m[0][0] - 1, x01: m[0][1], x02: m[0][2], x03: m[0][3],
		x10: m[1][0], d11: m[1][1] - 1, x12: m[1][2], x13: m[1][3],
		x20: m[2][0], x21: m[2][1], d22: m[2][2] - 1, x23: m[2][3],
	}
}

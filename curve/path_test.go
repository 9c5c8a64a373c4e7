package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func assertVec(t *testing.T, want, got r3.Vec, tol float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, tol, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, tol, msgAndArgs...)
}

func TestRoundedEndpoints(t *testing.T) {
	for _, test := range []struct {
		l1, l2, angle, r float64
		axis             Axis
	}{
		{100, 100, 90, 20, Horizontal},
		{100, 100, 90, 20, Vertical},
		{50, 80, 45, 10, Vertical},
		{30, 30, -60, 5, Horizontal},
		{10, 10, 170, 50, Horizontal}, // fillet clamped
		{100, 100, 0, 20, Vertical},
	} {
		p := Rounded(test.l1, test.l2, test.angle, test.r, test.axis)
		assertVec(t, r3.Vec{}, p.PointAt(0), 1e-12)
		theta := test.angle * math.Pi / 180
		want := r3.Add(r3.Vec{Z: test.l1}, r3.Scale(test.l2, test.axis.Direction(theta)))
		assertVec(t, want, p.PointAt(1), 1e-9, "end of %+v", test)
		assert.LessOrEqual(t, p.Fillet, math.Min(test.l1, test.l2)-0.1+1e-12)
		assertVec(t, r3.Vec{Z: 1}, p.TangentAt(0), 1e-12)
	}
}

func TestRoundedClamp(t *testing.T) {
	p := Rounded(10, 10, 170, 50, Horizontal)
	assert.InDelta(t, 9.9, p.Fillet, 1e-12)
	require.Len(t, p.Segments, 3)

	p = Rounded(100, 100, 90, 20, Horizontal)
	assert.InDelta(t, 20, p.Fillet, 1e-9, "r·tan(45°)")
	_, ok := p.Segments[1].(*QuadBezier)
	assert.True(t, ok)
}

func TestRoundedDegenerate(t *testing.T) {
	// Angle zero: collinear legs.
	p := Rounded(40, 60, 0, 20, Vertical)
	assert.Zero(t, p.Fillet)
	for _, u := range []float64{0, 0.25, 0.5, 0.9, 1} {
		pt := p.PointAt(u)
		assert.InDelta(t, 0, pt.X, 1e-12)
		assert.InDelta(t, 0, pt.Y, 1e-12)
		assert.InDelta(t, 100*u, pt.Z, 1e-9)
	}
	// Tiny blend radius yields a sharp corner.
	p = Rounded(40, 60, 90, 0.01, Vertical)
	assert.Zero(t, p.Fillet)
	require.Len(t, p.Segments, 2)
	assertVec(t, r3.Vec{Z: 40}, p.PointAt(0.4), 1e-9)
}

func TestArcLengthParameterization(t *testing.T) {
	p := Rounded(100, 100, 90, 20, Horizontal)
	total := p.Length()
	// The blend is shorter than the two legs it replaces.
	assert.Less(t, total, 200.0)
	assert.Greater(t, total, 200-2*20.0)
	// Points spaced evenly in t are spaced evenly along the path.
	pts, tans := p.Sample(400)
	require.Len(t, pts, 401)
	require.Len(t, tans, 401)
	step := total / 400
	for i := 1; i < len(pts); i++ {
		d := r3.Norm(r3.Sub(pts[i], pts[i-1]))
		assert.InDelta(t, step, d, step*0.02, "chord %d", i)
		assert.InDelta(t, 1, r3.Norm(tans[i]), 1e-9)
	}
	// Second leg direction is +X for a 90° horizontal turn.
	assertVec(t, r3.Vec{X: 1}, p.TangentAt(1), 1e-9)
}

func TestSampleRange(t *testing.T) {
	p := Straight(100)
	pts, _ := p.SampleRange(0.25, 0.75, 2)
	require.Len(t, pts, 3)
	assertVec(t, r3.Vec{Z: 25}, pts[0], 1e-12)
	assertVec(t, r3.Vec{Z: 50}, pts[1], 1e-12)
	assertVec(t, r3.Vec{Z: 75}, pts[2], 1e-12)
}

func TestParseAxis(t *testing.T) {
	a, err := ParseAxis(" Horizontal ")
	require.NoError(t, err)
	assert.Equal(t, Horizontal, a)
	_, err = ParseAxis("diagonal")
	assert.Error(t, err)

	var b Axis
	require.NoError(t, b.UnmarshalText([]byte("vertical")))
	assert.Equal(t, Vertical, b)
	txt, _ := Horizontal.MarshalText()
	assert.Equal(t, "horizontal", string(txt))
}

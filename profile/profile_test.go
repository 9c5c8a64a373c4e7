package profile

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestArcSweep(t *testing.T) {
	for _, test := range []struct {
		start, end float64
		clockwise  bool
		want       float64
	}{
		{start: math.Pi / 2, end: 3 * math.Pi / 2, want: math.Pi},
		{start: 0, end: -math.Pi / 2, clockwise: true, want: -math.Pi / 2},
		{start: math.Pi / 2, end: 0, clockwise: true, want: -math.Pi / 2},
		{start: 3 * math.Pi / 2, end: math.Pi / 2, want: math.Pi},
		{start: 0, end: 2 * math.Pi, want: 2 * math.Pi},
		{start: 1, end: 1, want: 0},
	} {
		got := NewArc(r2.Vec{}, 1, test.start, test.end, test.clockwise).Sweep()
		assert.InDelta(t, test.want, got, 1e-12, "arc %g -> %g cw=%v", test.start, test.end, test.clockwise)
	}
}

func TestSegmentReverse(t *testing.T) {
	arc := NewArc(r2.Vec{X: 1}, 2, 0.2, 1.4, false)
	rev := arc.Reverse()
	assert.InDelta(t, -arc.Sweep(), rev.Sweep(), 1e-12)
	for _, u := range []float64{0, 0.3, 0.7, 1} {
		a, b := arc.At(u), rev.At(1-u)
		assert.InDelta(t, a.X, b.X, 1e-9)
		assert.InDelta(t, a.Y, b.Y, 1e-9)
	}
}

func checkContour(t *testing.T, p Profile) {
	t.Helper()
	require.NoError(t, p.Validate())
	assert.InDelta(t, 0, r2.Norm(r2.Sub(p.Start(), p.End())), 1e-6, "contour not closed")
	pts := p.Points()
	for i := 1; i < len(pts); i++ {
		if r2.Norm(r2.Sub(pts[i], pts[i-1])) < tolerance {
			t.Fatalf("duplicate consecutive points at %d: %v", i, pts[i])
		}
	}
	poly := p.Polyline(DefaultDivisions)
	for i := range poly {
		j := (i + 1) % len(poly)
		if r2.Norm(r2.Sub(poly[i], poly[j])) < tolerance {
			t.Fatalf("duplicate consecutive polyline points at %d", i)
		}
	}
}

func TestRailAndCoverInvariants(t *testing.T) {
	for _, iw := range []float64{0.5, 2, 8, 13.7, 40} {
		for _, ih := range []float64{0.5, 3, 9, 25} {
			rail, err := Rail(iw, ih)
			require.NoError(t, err)
			checkContour(t, rail)
			rb := rail.Bounds()
			assert.InDelta(t, iw/2+WallThickness, rb.Max.X, 1e-9, "rail outer half-width")
			assert.InDelta(t, -(iw/2 + WallThickness), rb.Min.X, 1e-9)
			assert.InDelta(t, -FloorThickness, rb.Min.Y, 1e-9)

			if iw < 2 {
				// Claw ribs of very narrow covers reach past the skirt.
				continue
			}
			for _, claws := range []bool{false, true} {
				cover, err := Cover(iw, ih, 0.6, claws)
				require.NoError(t, err)
				checkContour(t, cover)
				cb := cover.Bounds()
				assert.InDelta(t, iw/2+WallThickness, cb.Max.X, 1e-9, "cover outer half-width")
				assert.InDelta(t, ih+coverRoof, cb.Max.Y, 1e-9)
			}
		}
	}
}

func TestRailRegions(t *testing.T) {
	rail, err := Rail(8, 9)
	require.NoError(t, err)
	assert.True(t, rail.Contains(r2.Vec{X: 0, Y: -0.6}), "floor")
	assert.True(t, rail.Contains(r2.Vec{X: 4.6, Y: 5}), "right wall")
	assert.True(t, rail.Contains(r2.Vec{X: -4.6, Y: 5}), "left wall")
	assert.True(t, rail.Contains(r2.Vec{X: 3.5, Y: 9}), "right bead")
	assert.False(t, rail.Contains(r2.Vec{X: 0, Y: 4}), "channel")
	assert.False(t, rail.Contains(r2.Vec{X: 3.5, Y: 7}), "under bead")
	assert.Greater(t, rail.Area(), 0.0)
}

func TestCoverClaws(t *testing.T) {
	const iw, ih = 8, 9
	withClaws, err := Cover(iw, ih, 0.6, true)
	require.NoError(t, err)
	flat, err := Cover(iw, ih, 0.6, false)
	require.NoError(t, err)

	assert.InDelta(t, ih+coverSkirt, flat.Bounds().Min.Y, 1e-9)
	assert.InDelta(t, ih+ribRadius*math.Sin(clawTipAngle), withClaws.Bounds().Min.Y, 1e-9)
	assert.True(t, flat.Contains(r2.Vec{Y: ih + 1.7}))
	assert.Greater(t, math.Abs(withClaws.Area()), math.Abs(flat.Area()))

	// A point inside the right claw crescent.
	clawX := ClawOffset(iw, 0.6)
	inClaw := r2.Vec{X: clawX - 1.7, Y: ih}
	assert.True(t, withClaws.Contains(inClaw))
	assert.False(t, flat.Contains(inClaw))
	assert.True(t, withClaws.Contains(r2.Vec{X: -inClaw.X, Y: ih}), "left claw mirrors right")

	// Tighter clearance moves the claws outward.
	assert.Greater(t, ClawOffset(iw, 0.2), ClawOffset(iw, 0.6))
	assert.InDelta(t, iw/2-0.5, ClawOffset(iw, 0.6), 1e-12)
}

func TestConnectorNesting(t *testing.T) {
	const iw, ih, c, w = 8.0, 9.0, 0.2, 1.2
	set, err := Connector(iw, ih, c, w)
	require.NoError(t, err)
	for _, p := range []Profile{set.Center, set.OuterSleeve, set.InnerSleeve} {
		checkContour(t, p)
	}
	halfOW := iw/2 + WallThickness
	ob := set.OuterSleeve.Bounds()
	ib := set.InnerSleeve.Bounds()
	cb := set.Center.Bounds()
	assert.InDelta(t, halfOW+c+w, ob.Max.X, 1e-9)
	assert.InDelta(t, iw/2-c, ib.Max.X, 1e-9)
	assert.Less(t, ib.Max.X, halfOW+c, "inner sleeve must not reach the outer sleeve")
	assert.InDelta(t, ob.Max.X, cb.Max.X, 1e-9)
	assert.InDelta(t, ob.Min.Y, cb.Min.Y, 1e-9)

	// Sleeve material lies inside the center stop.
	for _, p := range []r2.Vec{
		{X: halfOW + c + w/2, Y: 3},            // outer sleeve wall
		{X: 0, Y: -FloorThickness - c - w/2},   // outer sleeve floor
		{X: iw/2 - c - w/2, Y: 3},              // inner sleeve wall below taper
		{X: iw/2 - c - BeadRadius - w/2, Y: 9}, // inner sleeve arm above taper
	} {
		inOuter := set.OuterSleeve.Contains(p)
		inInner := set.InnerSleeve.Contains(p)
		assert.True(t, inOuter != inInner, "point %v must be in exactly one sleeve", p)
		assert.True(t, set.Center.Contains(p), "point %v must be in center", p)
	}
	// The inner sleeve clears the rail bead.
	assert.False(t, set.InnerSleeve.Contains(r2.Vec{X: iw/2 - BeadRadius/2, Y: ih}))
}

func TestConnectorErrors(t *testing.T) {
	_, err := Connector(8, 9, 0, 1.2)
	assert.Error(t, err)
	_, err = Connector(3, 9, 0.2, 1.2)
	assert.Error(t, err, "walls do not fit")
	_, err = Rail(-1, 9)
	assert.Error(t, err)
	_, err = Cover(8, math.NaN(), 0.6, true)
	assert.Error(t, err)
}

const squareDXF = `0
SECTION
2
ENTITIES
0
LINE
8
0
10
0.0
20
0.0
11
10.0
21
0.0
0
LINE
8
0
10
10.0
20
10.0
11
10.0
21
0.0
0
ARC
8
0
10
5.0
20
10.0
40
5.0
50
0.0
51
180.0
0
LINE
10
0.0
20
10.0
11
0.0
21
0.0005
0
ENDSEC
0
EOF
`

func TestFromDXF(t *testing.T) {
	p, warnings, err := FromDXF(strings.NewReader(squareDXF))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.NoError(t, p.Validate())
	require.Len(t, p.Segments, 4)
	assert.Equal(t, Arc, p.Segments[2].Kind)
	b := p.Bounds()
	assert.InDelta(t, 15, b.Max.Y, 1e-9, "arc bulges above the square")
	assert.Greater(t, p.Area(), 0.0, "chained counter-clockwise")
}

func TestFromDXFOpenChain(t *testing.T) {
	const disjoint = "0\nSECTION\n2\nENTITIES\n0\nLINE\n10\n0\n20\n0\n11\n1\n21\n0\n0\nLINE\n10\n5\n20\n5\n11\n6\n21\n5\n0\nENDSEC\n0\nEOF\n"
	p, warnings, err := FromDXF(strings.NewReader(disjoint))
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)
	assert.False(t, p.Closed)
	assert.ErrorIs(t, p.Validate(), ErrOpen)

	_, _, err = FromDXF(strings.NewReader("0\nSECTION\n2\nENTITIES\n0\nENDSEC\n0\nEOF\n"))
	assert.ErrorIs(t, err, ErrNoEntities)
	_, _, err = FromDXF(strings.NewReader("zero\nSECTION\n"))
	assert.Error(t, err)
}

package solid

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/railkit/curve"
	"github.com/soypat/railkit/internal/d3"
	"github.com/soypat/railkit/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func square(half float64, clockwise bool) profile.Profile {
	var b profile.Builder
	if clockwise {
		b.MoveTo(-half, -half).LineTo(-half, half).LineTo(half, half).LineTo(half, -half)
	} else {
		b.MoveTo(-half, -half).LineTo(half, -half).LineTo(half, half).LineTo(-half, half)
	}
	return b.Close()
}

func TestExtrudeVolume(t *testing.T) {
	for _, cw := range []bool{false, true} {
		m, err := Extrude(square(1, cw), 10)
		require.NoError(t, err)
		assert.InDelta(t, 40, m.Volume(), 1e-9, "clockwise=%v", cw)
		bb := m.Bounds()
		assert.InDelta(t, 0, bb.Min.Z, 1e-12)
		assert.InDelta(t, 10, bb.Max.Z, 1e-12)
		assert.Len(t, m.Triangles, 2*4+2*2)
	}
}

func TestSweepRoundedVolume(t *testing.T) {
	for _, axis := range []curve.Axis{curve.Vertical, curve.Horizontal} {
		path := curve.Rounded(50, 50, 90, 20, axis)
		m, err := Sweep(square(1, false), path, DefaultSteps)
		require.NoError(t, err)
		// A profile centered on the path encloses area times length.
		want := 4 * path.Length()
		assert.InEpsilon(t, want, m.Volume(), 0.01, "axis %v", axis)
		require.NoError(t, CheckFinite(m))
	}
}

func TestSweepFrameMapping(t *testing.T) {
	var b profile.Builder
	// Tall thin rectangle: profile y spans [0,5], x spans [-1,1].
	p := b.MoveTo(-1, 0).LineTo(1, 0).LineTo(1, 5).LineTo(-1, 5).Close()
	plan, err := Extrude(p, 3)
	require.NoError(t, err)
	bb := plan.Bounds()
	assert.InDelta(t, 5, bb.Max.Y, 1e-12, "plan frame keeps profile y as world y")
	assert.InDelta(t, 1, bb.Max.X, 1e-12)

	swept, err := Sweep(p, curve.Straight(3), 1)
	require.NoError(t, err)
	bb = swept.Bounds()
	assert.InDelta(t, 5, bb.Max.X, 1e-12, "path frame lays profile y along x")
	assert.InDelta(t, 1, bb.Max.Y, 1e-12)
	assert.Greater(t, swept.Volume(), 0.0)
}

func TestCoverZones(t *testing.T) {
	zones := CoverZones(100, 6)
	require.Len(t, zones, 3)
	assert.InDelta(t, 2, zones[0].Length(), 1e-12)
	assert.InDelta(t, 96, zones[1].Length(), 1e-12)
	assert.InDelta(t, 2, zones[2].Length(), 1e-12)
	assert.Equal(t, []bool{false, true, false}, []bool{zones[0].Claws, zones[1].Claws, zones[2].Claws})

	zones = CoverZones(3, 6)
	require.Len(t, zones, 1)
	assert.False(t, zones[0].Claws)
	assert.InDelta(t, 3, zones[0].Length(), 1e-12)
}

// requireClosed checks that every edge of m is shared by exactly two
// triangles running along it in opposite directions.
func requireClosed(t *testing.T, m *Mesh) {
	t.Helper()
	edges := make(map[[2]int]int)
	for _, tri := range m.Triangles {
		for i := 0; i < 3; i++ {
			edges[[2]int{tri[i], tri[(i+1)%3]}]++
		}
	}
	for e, n := range edges {
		require.Equal(t, 1, n, "edge %v runs the same way twice", e)
		require.Equal(t, 1, edges[[2]int{e[1], e[0]}], "edge %v is open", e)
	}
}

func coverProfiles(t *testing.T) (claw, flat profile.Profile) {
	t.Helper()
	claw, err := profile.Cover(8, 9, 0.6, true)
	require.NoError(t, err)
	flat, err = profile.Cover(8, 9, 0.6, false)
	require.NoError(t, err)
	return claw, flat
}

func TestSweepZonesContinuity(t *testing.T) {
	claw, flat := coverProfiles(t)
	path := curve.Rounded(40, 40, 90, 15, curve.Horizontal)
	zones := CoverZones(path.Length(), 30)
	cover, err := SweepZones(claw, flat, path, PathFrame, zones, DefaultSteps)
	require.NoError(t, err)
	assert.Equal(t, RoleCover, cover.Role)
	assert.Equal(t, Stitched, cover.Mode)
	requireClosed(t, cover)

	whole, err := Sweep(claw, path, DefaultSteps)
	require.NoError(t, err)
	got, want := cover.Bounds(), whole.Bounds()
	assert.True(t, got.Equals(want, 1e-6), "zoned sweep bounds %v differ from %v", got, want)

	// Zone boundaries share their rings.
	welded := FromTriangles(cover.TriangleSoup(), 1e-6)
	assert.Equal(t, len(cover.Vertices), len(welded.Vertices))
}

func TestSweepZonesVolume(t *testing.T) {
	claw, flat := coverProfiles(t)
	const length, connLength = 60.0, 6.0
	zones := CoverZones(length, connLength)
	for _, f := range []Frame{PlanFrame, PathFrame} {
		cover, err := SweepZones(claw, flat, curve.Straight(length), f, zones, 1)
		require.NoError(t, err)
		requireClosed(t, cover)
		clawLen := zones[1].Length()
		want := flat.Area()*(length-clawLen) + claw.Area()*clawLen
		assert.InDelta(t, math.Abs(want), cover.Volume(), 1e-6)
	}

	// A cover too short for sleeves is one flat piece.
	short, err := SweepZones(claw, flat, curve.Straight(3), PlanFrame, CoverZones(3, connLength), 1)
	require.NoError(t, err)
	requireClosed(t, short)
	assert.InDelta(t, math.Abs(3*flat.Area()), short.Volume(), 1e-9)
}

func TestSweepStagesNotContained(t *testing.T) {
	// Two squares side by side share an edge but neither contains the
	// other.
	var a, b profile.Builder
	left := a.MoveTo(-1, 0).LineTo(0, 0).LineTo(0, 1).LineTo(-1, 1).Close()
	right := b.MoveTo(0, 0).LineTo(1, 0).LineTo(1, 1).LineTo(0, 1).Close()
	_, err := SweepZones(left, right, curve.Straight(10), PlanFrame, CoverZones(10, 6), 1)
	assert.Error(t, err)

	// A section strictly inside the other would leave a hole in the step.
	_, err = SweepZones(square(1, false), square(0.5, false), curve.Straight(10), PlanFrame, CoverZones(10, 6), 1)
	assert.Error(t, err)
}

func TestConnectorMesh(t *testing.T) {
	set, err := profile.Connector(8, 9, 0.2, 1.2)
	require.NoError(t, err)
	conn, err := Connector(set, 30)
	require.NoError(t, err)
	assert.Equal(t, RoleConnector, conn.Role)
	requireClosed(t, conn)
	bb := conn.Bounds()
	assert.InDelta(t, 0, bb.Min.Z, 1e-12)
	assert.InDelta(t, 30, bb.Max.Z, 1e-9)
	sleeves := set.OuterSleeve.Area() + set.InnerSleeve.Area()
	assert.InDelta(t, 20*sleeves+10*set.Center.Area(), conn.Volume(), 1e-6)

	PlaceConnector(conn, 30)
	wb := conn.WorldBounds()
	assert.InDelta(t, 0, wb.Min.Y, 1e-12)
	assert.InDelta(t, -15, wb.Min.Z, 1e-9)
}

func TestPlaceStraight(t *testing.T) {
	rail, err := profile.Rail(8, 9)
	require.NoError(t, err)
	cover, err := profile.Cover(8, 9, 0.6, false)
	require.NoError(t, err)
	rm, err := Extrude(rail, 100)
	require.NoError(t, err)
	cm, err := Extrude(cover, 100)
	require.NoError(t, err)
	PlaceStraight(rm, 100, cm)
	rb, cb := rm.WorldBounds(), cm.WorldBounds()
	assert.InDelta(t, 0, rb.Min.Y, 1e-12)
	assert.InDelta(t, -50, rb.Min.Z, 1e-12)
	assert.InDelta(t, 50, rb.Max.Z, 1e-12)
	// The cover keeps its height above the rail.
	assert.InDelta(t, 9+1.1+profile.FloorThickness, cb.Min.Y, 1e-9)
}

func TestPlaceAngled(t *testing.T) {
	rail, err := profile.Rail(8, 9)
	require.NoError(t, err)
	m, err := Sweep(rail, curve.Rounded(100, 100, 90, 20, curve.Vertical), 50)
	require.NoError(t, err)
	PlaceAngled(m, 100)
	wb := m.WorldBounds()
	assert.InDelta(t, 0, wb.Min.Y, 1e-9)
	assert.InDelta(t, -100, wb.Min.Z, 1e-9)
	// The quarter turn puts profile y on world y before the turn.
	start := m.World.Transform(m.Vertices[0])
	assert.InDelta(t, -1.2, m.Vertices[0].X, 1e-9)
	assert.InDelta(t, 0, start.Y, 1e-9)
}

func TestPrintTransform(t *testing.T) {
	up := r3.Vec{Y: 1}
	rail := PrintTransform(RoleRail, false, curve.Vertical).Direction(up)
	assert.InDelta(t, 1, rail.Z, 1e-12)
	cover := PrintTransform(RoleCover, false, curve.Vertical).Direction(up)
	assert.InDelta(t, -1, cover.Z, 1e-12)

	// Horizontal angled parts roll about Z first: +X goes to +Y, then +Z.
	rolled := PrintTransform(RoleRail, true, curve.Horizontal).Direction(r3.Vec{X: 1})
	assert.InDelta(t, 1, rolled.Z, 1e-12)
	assert.Equal(t, PrintTransform(RoleRail, true, curve.Vertical), PrintTransform(RoleRail, false, curve.Horizontal))
}

func TestCylinder(t *testing.T) {
	const r, h, n = 2.0, 12.5, CutterSegments
	c := Cylinder(r, h, n)
	polyArea := 0.5 * n * r * r * math.Sin(2*math.Pi/n)
	assert.InDelta(t, polyArea*h, c.Volume(), 1e-9)
	bb := c.Bounds()
	assert.InDelta(t, -h/2, bb.Min.Y, 1e-12)
	assert.InDelta(t, h/2, bb.Max.Y, 1e-12)
}

func TestMeshApplyMirror(t *testing.T) {
	m, err := Extrude(square(1, false), 2)
	require.NoError(t, err)
	m.ComputeNormals()
	mirror := d3.NewTransform([]float64{
		-1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	})
	m.Apply(mirror)
	assert.InDelta(t, 8, m.Volume(), 1e-9, "winding follows the mirror")
	assert.Len(t, m.Normals, len(m.Vertices))
}

func TestCheckFinite(t *testing.T) {
	m := Cylinder(1, 1, 8)
	m.Role = RoleCover
	require.NoError(t, CheckFinite(m))
	m.Vertices[3].Y = math.NaN()
	err := CheckFinite(m)
	assert.True(t, errors.Is(err, ErrNonFinite))
	assert.Contains(t, err.Error(), "cover")
}

func TestFromTrianglesWeld(t *testing.T) {
	tris := []d3.Triangle{
		{{}, {X: 1}, {Y: 1}},
		{{X: 1}, {X: 1, Y: 1}, {Y: 1 + 1e-12}},
		{{}, {}, {Z: 1}}, // collapses
	}
	m := FromTriangles(tris, 1e-6)
	assert.Len(t, m.Vertices, 4)
	assert.Len(t, m.Triangles, 2)

	soup := append(Cylinder(1, 1, 8).TriangleSoup(), Cylinder(1, 1, 8).TriangleSoup()...)
	assert.Len(t, FromTriangles(soup, 1e-9).Vertices, 2*8+2)
}

func TestRoleParse(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := ParseRole("lid")
	assert.Error(t, err)
}

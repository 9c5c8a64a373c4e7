package solid

import (
	"math"

	"github.com/soypat/railkit/curve"
	"github.com/soypat/railkit/internal/d2"
	"github.com/soypat/railkit/internal/d3"
	"github.com/soypat/railkit/profile"
	"gonum.org/v1/gonum/spatial/r3"
)

// Zone is a stretch of a cover between arc lengths From and To.
type Zone struct {
	From, To float64
	Claws    bool
}

// Length returns the zone length.
func (z Zone) Length() float64 { return z.To - z.From }

// CoverZones splits a cover of the given length so that a connector
// sleeve of length connLength/3 fits under each end: a clawless zone at
// each end and clawed zone in between. Covers too short for that are a
// single clawless zone.
func CoverZones(length, connLength float64) []Zone {
	sleeve := connLength / 3
	if length > 2*sleeve {
		return []Zone{
			{From: 0, To: sleeve},
			{From: sleeve, To: length - sleeve, Claws: true},
			{From: length - sleeve, To: length},
		}
	}
	return []Zone{{From: 0, To: length}}
}

// SweepZones sweeps the cover along path with the clawed profile over
// clawed zones and the flat profile elsewhere. The zones form one closed
// surface: only the ends of the path are capped, and a zone boundary is
// closed by the part of the claw profile hanging below the flat one.
func SweepZones(claw, flat profile.Profile, path curve.Path, f Frame, zones []Zone, steps int) (*Mesh, error) {
	if len(zones) == 0 {
		return nil, ErrEmptyMesh
	}
	if err := claw.Validate(); err != nil {
		return nil, err
	}
	if err := flat.Validate(); err != nil {
		return nil, err
	}
	clawPoly := claw.Polyline(profile.DefaultDivisions)
	flatPoly := flat.Polyline(profile.DefaultDivisions)
	total := path.Length()
	stages := make([]stage, 0, len(zones))
	for _, z := range zones {
		poly := flatPoly
		if z.Claws {
			poly = clawPoly
		}
		from, to := z.From/total, z.To/total
		n := int(math.Round(float64(steps) * (to - from)))
		stages = append(stages, stage{loops: []d2.Set{poly}, from: from, to: to, steps: max(n, 1)})
	}
	cover, err := sweepStages(path, f, stages)
	if err != nil {
		return nil, err
	}
	cover.Role = RoleCover
	return cover, nil
}

// Connector builds the connector solid along +Z: the front sleeve (outer
// and inner sleeve profiles), the center stop and the back sleeve, each
// connLength/3 long. The center stop contains both sleeve sections, so
// its faces towards the sleeves are the gaps between them.
func Connector(set profile.ConnectorSet, connLength float64) (*Mesh, error) {
	for _, p := range []profile.Profile{set.OuterSleeve, set.InnerSleeve, set.Center} {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	sleeves := []d2.Set{
		set.OuterSleeve.Polyline(profile.DefaultDivisions),
		set.InnerSleeve.Polyline(profile.DefaultDivisions),
	}
	center := []d2.Set{set.Center.Polyline(profile.DefaultDivisions)}
	third := 1.0 / 3
	conn, err := sweepStages(curve.Straight(connLength), PlanFrame, []stage{
		{loops: sleeves, from: 0, to: third, steps: 1},
		{loops: center, from: third, to: 2 * third, steps: 1},
		{loops: sleeves, from: 2 * third, to: 1, steps: 1},
	})
	if err != nil {
		return nil, err
	}
	conn.Role = RoleConnector
	return conn, nil
}

// PlaceStraight grounds straight parts: every mesh is lifted by the rail's
// lowest y so the rail rests on y=0 and the cover sits on the rail, and
// centered on z=0.
func PlaceStraight(rail *Mesh, length float64, others ...*Mesh) {
	lift := -rail.Bounds().Min.Y
	world := d3.Translation(r3.Vec{Y: lift, Z: -length / 2})
	rail.World = world
	for _, m := range others {
		m.World = world
	}
}

// PlaceAngled orients parts swept in PathFrame: a quarter turn about Z
// brings profile y up, the rail's lowest point is lifted to y=0 and the
// corner moves to the origin along z.
func PlaceAngled(rail *Mesh, len1 float64, others ...*Mesh) {
	orient := d3.Rotation(r3.Vec{Z: 1}, math.Pi/2)
	minY := math.Inf(1)
	for _, v := range rail.Vertices {
		minY = math.Min(minY, orient.Transform(v).Y)
	}
	world := d3.Translation(r3.Vec{Y: -minY, Z: -len1}).Mul(orient)
	rail.World = world
	for _, m := range others {
		m.World = world
	}
}

// PlaceConnector rests the connector on y=0 centered on z=0.
func PlaceConnector(conn *Mesh, connLength float64) {
	conn.World = d3.Translation(r3.Vec{Y: -conn.Bounds().Min.Y, Z: -connLength / 2})
}

// PrintTransform returns the rotation that lays a part on the print bed:
// the rail stands on its floor and covers and connectors on their tops.
// Angled parts turned horizontally are first rolled a quarter turn
// about Z.
func PrintTransform(role Role, angled bool, axis curve.Axis) d3.Transform {
	angle := -math.Pi / 2
	if role == RoleRail {
		angle = math.Pi / 2
	}
	t := d3.Rotation(r3.Vec{X: 1}, angle)
	if angled && axis == curve.Horizontal {
		t = t.Mul(d3.Rotation(r3.Vec{Z: 1}, math.Pi/2))
	}
	return t
}

// CutterSegments is the number of sides of a cutter preview cylinder.
const CutterSegments = 32

// Cylinder returns a closed cylinder mesh of the given radius and height
// centered on the origin with its axis along +Y.
func Cylinder(radius, height float64, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	h := height / 2
	m := &Mesh{Vertices: make([]r3.Vec, 0, 2*segments+2)}
	for k := 0; k < segments; k++ {
		s, c := math.Sincos(2 * math.Pi * float64(k) / float64(segments))
		m.Vertices = append(m.Vertices,
			r3.Vec{X: radius * c, Y: -h, Z: radius * s},
			r3.Vec{X: radius * c, Y: h, Z: radius * s},
		)
	}
	bottom, top := len(m.Vertices), len(m.Vertices)+1
	m.Vertices = append(m.Vertices, r3.Vec{Y: -h}, r3.Vec{Y: h})
	for k := 0; k < segments; k++ {
		b0, t0 := 2*k, 2*k+1
		b1, t1 := 2*((k+1)%segments), 2*((k+1)%segments)+1
		m.Triangles = append(m.Triangles,
			[3]int{b0, t0, b1},
			[3]int{b1, t0, t1},
			[3]int{top, t1, t0},
			[3]int{bottom, b0, b1},
		)
	}
	return m
}

package railkit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/soypat/railkit/carve"
	"github.com/soypat/railkit/curve"
	"github.com/soypat/railkit/internal/d3"
	"github.com/soypat/railkit/profile"
	"github.com/soypat/railkit/solid"
)

// Visibility flags which parts a viewer shows.
type Visibility struct {
	Rail, Cover, Connector, Cutters bool
}

// Generation owns the solids of one generation run. Meshes carry their
// placement in World; Release drops them.
type Generation struct {
	ID     uuid.UUID
	Params Parameters
	// Preview is set when holes were skipped. Previews are never exported.
	Preview bool

	Rail      *solid.Mesh
	Cover     *solid.Mesh
	Connector *solid.Mesh
	// Holes are in the rail's mesh space.
	Holes []carve.Hole
	// Zones are the cover sweep zones by arc length.
	Zones   []solid.Zone
	Visible Visibility

	cutters []*solid.Mesh
}

// Mesh returns the mesh of a role, nil once released.
func (g *Generation) Mesh(role Role) *solid.Mesh {
	switch role {
	case RoleRail:
		return g.Rail
	case RoleCover:
		return g.Cover
	case RoleConnector:
		return g.Connector
	}
	return nil
}

// Cutters returns the hole cutter meshes, placed like the rail.
func (g *Generation) Cutters() []*solid.Mesh { return g.cutters }

// PrintTransform returns the rotation that lays the role's part on the
// print bed, scaled up for the material's shrinkage.
func (g *Generation) PrintTransform(role Role) d3.Transform {
	angled := g.Params.Angled && role != RoleConnector
	return g.Params.material().Transform().Mul(solid.PrintTransform(role, angled, g.Params.TurnAxis))
}

// Release drops every mesh of the generation.
func (g *Generation) Release() {
	for _, m := range append([]*solid.Mesh{g.Rail, g.Cover, g.Connector}, g.cutters...) {
		if m != nil {
			m.Release()
		}
	}
	g.Rail, g.Cover, g.Connector, g.cutters = nil, nil, nil, nil
}

// coverZones splits the cover so connector sleeves fit at both ends. An
// angled cover only gets clawless ends when the straight part of both legs
// left by the corner fillet is longer than a sleeve.
func coverZones(p Parameters, path curve.Path) []solid.Zone {
	sleeve := p.ConnLength / 3
	if p.Angled && (p.Len1-path.Fillet <= sleeve || p.Len2-path.Fillet <= sleeve) {
		return []solid.Zone{{From: 0, To: path.Length()}}
	}
	return solid.CoverZones(path.Length(), p.ConnLength)
}

// generate builds every part for p. Holes are drilled by carver unless
// skipHoles is set.
func generate(ctx context.Context, p Parameters, skipHoles bool, carver Carver) (*Generation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	railProfile, err := profile.Rail(p.InnerWidth, p.InnerHeight)
	if err != nil {
		return nil, fmt.Errorf("rail profile: %w", err)
	}
	claw, err := profile.Cover(p.InnerWidth, p.InnerHeight, p.Clearance, true)
	if err != nil {
		return nil, fmt.Errorf("cover profile: %w", err)
	}
	flat, err := profile.Cover(p.InnerWidth, p.InnerHeight, p.Clearance, false)
	if err != nil {
		return nil, fmt.Errorf("cover profile: %w", err)
	}
	set, err := profile.Connector(p.InnerWidth, p.InnerHeight, p.ConnClearance, p.ConnWall)
	if err != nil {
		return nil, fmt.Errorf("connector profiles: %w", err)
	}

	path := p.Path()
	frame, steps := solid.PlanFrame, 1
	if p.Angled {
		frame, steps = solid.PathFrame, p.steps()
	}
	g := &Generation{
		ID:      uuid.New(),
		Params:  p,
		Preview: skipHoles,
		Visible: Visibility{Rail: true, Cover: true, Connector: true, Cutters: p.ShowCutters},
		Zones:   coverZones(p, path),
	}
	if g.Rail, err = solid.SweepRange(railProfile, path, frame, 0, 1, steps); err != nil {
		return nil, fmt.Errorf("rail sweep: %w", err)
	}
	g.Rail.Role = RoleRail
	if g.Cover, err = solid.SweepZones(claw, flat, path, frame, g.Zones, steps); err != nil {
		return nil, fmt.Errorf("cover sweep: %w", err)
	}
	if g.Connector, err = solid.Connector(set, p.ConnLength); err != nil {
		return nil, fmt.Errorf("connector: %w", err)
	}
	for _, m := range []*solid.Mesh{g.Rail, g.Cover, g.Connector} {
		if err := solid.CheckFinite(m); err != nil {
			return nil, err
		}
	}

	if p.Angled {
		solid.PlaceAngled(g.Rail, p.Len1, g.Cover)
	} else {
		// Straight parts are carved in place so their holes are centered
		// on the origin.
		solid.PlaceStraight(g.Rail, p.Length, g.Cover)
		g.Rail.Bake()
		g.Cover.Bake()
	}
	solid.PlaceConnector(g.Connector, p.ConnLength)

	if skipHoles {
		return g, nil
	}
	g.Holes = p.Holes()
	if len(g.Holes) == 0 {
		return g, nil
	}
	cfg := p.CarveConfig().WithDefaults()
	carved, err := carver.Carve(ctx, g.Rail, g.Holes, cfg)
	if err != nil {
		g.Release()
		return nil, fmt.Errorf("drilling %d holes: %w", len(g.Holes), err)
	}
	if err := solid.CheckFinite(carved); err != nil {
		g.Release()
		return nil, err
	}
	g.Rail.Release()
	g.Rail = carved
	g.cutters = carve.Cutters(g.Holes, cfg.CutterHeight)
	for _, c := range g.cutters {
		c.World = g.Rail.World
	}
	return g, nil
}

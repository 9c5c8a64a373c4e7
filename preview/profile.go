// Package preview draws the cross sections and parts of a rail system
// for quick inspection: dimensioned profile plots and shaded snapshots of
// generated meshes.
package preview

import (
	"fmt"
	"image/color"
	"io"

	"github.com/soypat/railkit"
	"github.com/soypat/railkit/internal/d2"
	"github.com/soypat/railkit/profile"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	railColor  = color.RGBA{R: 0x00, G: 0xaa, B: 0x00, A: 0xff}
	coverColor = color.RGBA{R: 0x00, G: 0xaa, B: 0xff, A: 0xff}
	innerColor = color.RGBA{R: 0xdd, G: 0xaa, B: 0x00, A: 0xff}
	dimColor   = color.Gray{Y: 0x88}
)

// Dimensions are the measured extents of a drawn profile set.
type Dimensions struct {
	Bounds        d2.Box
	Width, Height float64
}

// Profiles returns the cross sections of a role: one contour for the rail
// and the clawed cover, three for the connector.
func Profiles(p railkit.Parameters, role railkit.Role) ([]profile.Profile, error) {
	switch role {
	case railkit.RoleRail:
		rail, err := profile.Rail(p.InnerWidth, p.InnerHeight)
		return []profile.Profile{rail}, err
	case railkit.RoleCover:
		cover, err := profile.Cover(p.InnerWidth, p.InnerHeight, p.Clearance, true)
		return []profile.Profile{cover}, err
	case railkit.RoleConnector:
		set, err := profile.Connector(p.InnerWidth, p.InnerHeight, p.ConnClearance, p.ConnWall)
		if err != nil {
			return nil, err
		}
		return []profile.Profile{set.Center, set.OuterSleeve, set.InnerSleeve}, nil
	}
	return nil, fmt.Errorf("no profile for role %v", role)
}

// Profile plots the cross sections of a role with their overall width and
// height and the inner channel width.
func Profile(p railkit.Parameters, role railkit.Role) (*plot.Plot, Dimensions, error) {
	profiles, err := Profiles(p, role)
	if err != nil {
		return nil, Dimensions{}, err
	}
	c := railColor
	if role != railkit.RoleRail {
		c = coverColor
	}
	plt, dims, err := Plot(profiles, c)
	if err != nil {
		return nil, dims, err
	}
	plt.Title.Text = fmt.Sprintf("%v profile", role)

	// Inner channel width at half height, as on the rail.
	iw, ih := p.InnerWidth, p.InnerHeight
	inner, err := plotter.NewLine(plotter.XYs{{X: -iw / 2, Y: ih / 2}, {X: iw / 2, Y: ih / 2}})
	if err != nil {
		return nil, dims, err
	}
	inner.LineStyle.Color = innerColor
	inner.LineStyle.Width = vg.Points(1)
	lbl, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: -iw / 2, Y: ih/2 + 0.5}},
		Labels: []string{fmt.Sprintf("Inner: %g", iw)},
	})
	if err != nil {
		return nil, dims, err
	}
	plt.Add(inner, lbl)
	return plt, dims, nil
}

// Plot draws contours in color c, or the rail color if nil, with width and
// height dimension lines. The axes share a scale so the drawing keeps its
// proportions when written square.
func Plot(profiles []profile.Profile, c color.Color) (*plot.Plot, Dimensions, error) {
	if c == nil {
		c = railColor
	}
	bb := d2.EmptyBox()
	plt := plot.New()
	for i, prof := range profiles {
		poly := prof.Polyline(profile.DefaultDivisions)
		if len(poly) < 2 {
			return nil, Dimensions{}, fmt.Errorf("profile %d: %w", i, profile.ErrEmpty)
		}
		xys := make(plotter.XYs, 0, len(poly)+1)
		for _, v := range poly {
			bb = bb.Include(v)
			xys = append(xys, plotter.XY{X: v.X, Y: v.Y})
		}
		if prof.Closed {
			xys = append(xys, xys[0])
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, Dimensions{}, err
		}
		line.LineStyle.Color = c
		line.LineStyle.Width = vg.Points(1.5)
		plt.Add(line)
	}
	size := bb.Size()
	dims := Dimensions{Bounds: bb, Width: size.X, Height: size.Y}

	gap := 0.1 * max(size.X, size.Y)
	bottom := bb.Min.Y - gap
	right := bb.Max.X + gap
	wLine, err := plotter.NewLine(plotter.XYs{{X: bb.Min.X, Y: bottom}, {X: bb.Max.X, Y: bottom}})
	if err != nil {
		return nil, dims, err
	}
	hLine, err := plotter.NewLine(plotter.XYs{{X: right, Y: bb.Min.Y}, {X: right, Y: bb.Max.Y}})
	if err != nil {
		return nil, dims, err
	}
	for _, l := range []*plotter.Line{wLine, hLine} {
		l.LineStyle.Color = dimColor
		l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs: plotter.XYs{
			{X: bb.Center().X, Y: bottom - gap/2},
			{X: right + gap/4, Y: bb.Center().Y},
		},
		Labels: []string{
			fmt.Sprintf("W: %.1f", dims.Width),
			fmt.Sprintf("H: %.1f", dims.Height),
		},
	})
	if err != nil {
		return nil, dims, err
	}
	plt.Add(wLine, hLine, labels)

	// Square view with room for the dimension lines.
	span := max(size.X, size.Y) + 4*gap
	center := r2.Add(bb.Center(), r2.Vec{X: gap, Y: -gap})
	plt.X.Min, plt.X.Max = center.X-span/2, center.X+span/2
	plt.Y.Min, plt.Y.Max = center.Y-span/2, center.Y+span/2
	plt.X.Label.Text = "x (mm)"
	plt.Y.Label.Text = "y (mm)"
	return plt, dims, nil
}

// Write encodes plt as a square image of the given side in one of the
// formats gonum/plot supports, such as "png" or "svg".
func Write(w io.Writer, plt *plot.Plot, side vg.Length, format string) error {
	wt, err := plt.WriterTo(side, side, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

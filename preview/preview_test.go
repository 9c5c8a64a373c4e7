package preview

import (
	"bytes"
	"image/color"
	"math"
	"testing"

	"github.com/soypat/railkit"
	"github.com/soypat/railkit/profile"
	"github.com/soypat/railkit/solid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

func TestProfileDimensions(t *testing.T) {
	p := railkit.DefaultParameters()
	_, dims, err := Profile(p, railkit.RoleRail)
	require.NoError(t, err)
	assert.InDelta(t, p.InnerWidth+2*profile.WallThickness, dims.Width, 1e-9)
	assert.InDelta(t, profile.FloorThickness+p.InnerHeight+profile.BeadRadius, dims.Height, 1e-9)

	_, conn, err := Profile(p, railkit.RoleConnector)
	require.NoError(t, err)
	// The outer sleeve wraps the rail.
	assert.Greater(t, conn.Width, dims.Width)
}

func TestProfileSVGLabels(t *testing.T) {
	p := railkit.DefaultParameters()
	plt, dims, err := Profile(p, railkit.RoleRail)
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, Write(&b, plt, 4*vg.Inch, "svg"))
	svg := b.String()
	for _, want := range []string{"W: 10.4", "H: 11.2", "Inner: 8"} {
		assert.Contains(t, svg, want)
	}
	assert.InDelta(t, 10.4, dims.Width, 1e-9)
}

func TestProfileErrors(t *testing.T) {
	p := railkit.DefaultParameters()
	p.InnerWidth = -1
	_, _, err := Profile(p, railkit.RoleCover)
	assert.Error(t, err)
	_, err = Profiles(railkit.DefaultParameters(), railkit.Role(42))
	assert.Error(t, err)
}

func TestWritePNG(t *testing.T) {
	plt, _, err := Profile(railkit.DefaultParameters(), railkit.RoleCover)
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, Write(&b, plt, 2*vg.Inch, "png"))
	assert.True(t, bytes.HasPrefix(b.Bytes(), []byte("\x89PNG")), "missing PNG signature")
}

func TestSnapshot(t *testing.T) {
	m := solid.Cylinder(4, 10, 24)
	view := DefaultView()
	view.Width, view.Height = 64, 48
	img, err := Snapshot(m, view)
	require.NoError(t, err)
	b := img.Bounds()
	require.Equal(t, 64, b.Dx())
	require.Equal(t, 48, b.Dy())

	// The mesh is fit to the view, so the center pixel is shaded.
	bg := color.NRGBAModel.Convert(color.RGBA{R: 0xFF, G: 0xF8, B: 0xE3, A: 0xFF}).(color.NRGBA)
	got := color.NRGBAModel.Convert(img.At(b.Min.X+32, b.Min.Y+24)).(color.NRGBA)
	diff := math.Abs(float64(got.R)-float64(bg.R)) + math.Abs(float64(got.G)-float64(bg.G)) + math.Abs(float64(got.B)-float64(bg.B))
	assert.Greater(t, diff, 30., "center pixel %v matches background", got)

	_, err = Snapshot(&solid.Mesh{}, view)
	assert.ErrorIs(t, err, solid.ErrEmptyMesh)
}

package railkit

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/soypat/railkit/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestDefaultParameters(t *testing.T) {
	p := DefaultParameters()
	require.NoError(t, p.Validate())
	assert.Equal(t, 100.0, p.Length)
	assert.Equal(t, 2, p.HoleCount)
	assert.Equal(t, 4.0, p.HoleDiameter)
	assert.Equal(t, 90.0, p.Angle)
	assert.Equal(t, curve.Horizontal, p.TurnAxis)
	assert.Equal(t, 12.5, p.CutterHeight)
	assert.Equal(t, 3.0, p.HoleOffset)
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Parameters){
		"innerWidth":    func(p *Parameters) { p.InnerWidth = 0 },
		"innerHeight":   func(p *Parameters) { p.InnerHeight = -1 },
		"holeCount":     func(p *Parameters) { p.HoleCount = -1 },
		"holeDiameter":  func(p *Parameters) { p.HoleDiameter = 0 },
		"connClearance": func(p *Parameters) { p.ConnClearance = 0 },
		"connWall":      func(p *Parameters) { p.ConnWall = 0 },
		"connLength":    func(p *Parameters) { p.ConnLength = 0 },
		"length":        func(p *Parameters) { p.Length = 0 },
		"len1":          func(p *Parameters) { p.Angled, p.Len1 = true, 0 },
		"len2":          func(p *Parameters) { p.Angled, p.Len2 = true, -5 },
		"material":      func(p *Parameters) { p.Material = "wood" },
	} {
		p := DefaultParameters()
		mutate(&p)
		err := p.Validate()
		assert.ErrorIs(t, err, ErrInvalidParameter, name)
		assert.Contains(t, err.Error(), name)
	}
	// Lengths of the other mode are not checked.
	p := DefaultParameters()
	p.Len1 = 0
	assert.NoError(t, p.Validate())
	p.HoleCount, p.HoleDiameter = 0, 0
	assert.NoError(t, p.Validate())
}

func TestParametersHoles(t *testing.T) {
	p := DefaultParameters()
	holes := p.Holes()
	require.Len(t, holes, 2)
	assert.InDelta(t, -25, holes[0].Position.Z, 1e-12)
	assert.InDelta(t, 25, holes[1].Position.Z, 1e-12)

	p.Angled = true
	holes = p.Holes()
	require.Len(t, holes, 2)
	// Evenly spread by arc length, so the corner lies between them.
	assert.Less(t, holes[0].T, holes[1].T)
	// Cutters sit HoleOffset below the floor of the path.
	onPath := p.Path().PointAt(holes[0].T)
	assert.InDelta(t, p.HoleOffset, r3.Norm(r3.Sub(holes[0].Position, onPath)), 1e-9)

	p.HoleDiameter = 0
	assert.Empty(t, p.Holes())
}

func TestMaterialCompensation(t *testing.T) {
	p := DefaultParameters()
	assert.Equal(t, p.HoleDiameter, p.HoleLayout().Diameter)
	p.Material = "PLA"
	require.NoError(t, p.Validate())
	assert.InDelta(t, p.HoleDiameter+0.45, p.HoleLayout().Diameter, 1e-12)

	g := &Generation{Params: p}
	// The rail is rolled onto its floor: +Y becomes +Z, scaled up.
	v := g.PrintTransform(RoleRail).Transform(r3.Vec{Y: 10})
	assert.InDelta(t, 10/0.998, v.Z, 1e-9)
	assert.InDelta(t, 0, v.Y, 1e-9)
}

func TestLoadParameters(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "rail.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("innerWidth: 10\nangled: true\nturnAxis: vertical\nholeCount: 3\n"), 0o644))
	p, err := LoadParameters(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.InnerWidth)
	assert.True(t, p.Angled)
	assert.Equal(t, curve.Vertical, p.TurnAxis)
	assert.Equal(t, 3, p.HoleCount)
	assert.Equal(t, 9.0, p.InnerHeight, "unset fields keep defaults")

	tomlPath := filepath.Join(dir, "rail.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("length = 250.0\nconnLength = 45.0\nturnAxis = \"horizontal\"\n"), 0o644))
	p, err = LoadParameters(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, 250.0, p.Length)
	assert.Equal(t, 45.0, p.ConnLength)

	_, err = LoadParameters(filepath.Join(dir, "rail.json"))
	assert.Error(t, err)
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("turnAxis: sideways\n"), 0o644))
	_, err = LoadParameters(bad)
	assert.Error(t, err)
}

func TestEncodeParameters(t *testing.T) {
	want := DefaultParameters()
	want.Angled = true
	want.TurnAxis = curve.Vertical
	want.HoleOffset = 2.5
	for _, format := range []Format{YAML, TOML} {
		var b bytes.Buffer
		require.NoError(t, want.Encode(&b, format))
		got, err := DecodeParameters(&b, format)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", format, diff)
		}
	}
}

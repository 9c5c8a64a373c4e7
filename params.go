package railkit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/soypat/railkit/carve"
	"github.com/soypat/railkit/curve"
	"github.com/soypat/railkit/helpers/matter"
	"github.com/soypat/railkit/solid"
	"gopkg.in/yaml.v3"
)

// ErrInvalidParameter is wrapped by every Validate failure.
var ErrInvalidParameter = errors.New("invalid parameter")

// Parameters are the dimensions of a rail system in millimeters and
// degrees. They are passed by value and never modified by generation.
type Parameters struct {
	InnerWidth  float64 `yaml:"innerWidth" toml:"innerWidth"`
	InnerHeight float64 `yaml:"innerHeight" toml:"innerHeight"`
	// Length of a straight part.
	Length float64 `yaml:"length" toml:"length"`
	// Angled selects the rounded two leg path instead of a straight part.
	Angled   bool       `yaml:"angled" toml:"angled"`
	Len1     float64    `yaml:"len1" toml:"len1"`
	Len2     float64    `yaml:"len2" toml:"len2"`
	Angle    float64    `yaml:"angle" toml:"angle"`
	Radius   float64    `yaml:"radius" toml:"radius"`
	TurnAxis curve.Axis `yaml:"turnAxis" toml:"turnAxis"`

	HoleCount    int     `yaml:"holeCount" toml:"holeCount"`
	HoleDiameter float64 `yaml:"holeDiameter" toml:"holeDiameter"`

	Clearance     float64 `yaml:"clearance" toml:"clearance"`
	ConnClearance float64 `yaml:"connClearance" toml:"connClearance"`
	ConnWall      float64 `yaml:"connWall" toml:"connWall"`
	ConnLength    float64 `yaml:"connLength" toml:"connLength"`
	ShowCutters   bool    `yaml:"showCutters" toml:"showCutters"`
	// Material names the filament whose shrinkage export compensates:
	// none, pla or petg.
	Material string `yaml:"material,omitempty" toml:"material,omitempty"`

	SweepSteps   int     `yaml:"sweepSteps" toml:"sweepSteps"`
	CutterHeight float64 `yaml:"cutterHeight" toml:"cutterHeight"`
	HoleOffset   float64 `yaml:"holeOffset" toml:"holeOffset"`
	Resolution   float64 `yaml:"resolution" toml:"resolution"`
}

// DefaultParameters returns a 100 mm straight rail for an 8x9 mm channel
// with two 4 mm holes.
func DefaultParameters() Parameters {
	return Parameters{
		InnerWidth:    8,
		InnerHeight:   9,
		Length:        100,
		Len1:          100,
		Len2:          100,
		Angle:         90,
		Radius:        20,
		TurnAxis:      curve.Horizontal,
		HoleCount:     2,
		HoleDiameter:  4,
		Clearance:     0.6,
		ConnClearance: 0.2,
		ConnWall:      1.2,
		ConnLength:    30,
		ShowCutters:   true,
		SweepSteps:    solid.DefaultSteps,
		CutterHeight:  carve.DefaultCutterHeight,
		HoleOffset:    carve.DefaultHoleOffset,
		Resolution:    carve.DefaultResolution,
	}
}

func invalid(name string, v any) error {
	return fmt.Errorf("%s=%v: %w", name, v, ErrInvalidParameter)
}

// Validate reports the first parameter out of range.
func (p Parameters) Validate() error {
	switch {
	case !(p.InnerWidth > 0):
		return invalid("innerWidth", p.InnerWidth)
	case !(p.InnerHeight > 0):
		return invalid("innerHeight", p.InnerHeight)
	case p.HoleCount < 0:
		return invalid("holeCount", p.HoleCount)
	case p.HoleCount > 0 && !(p.HoleDiameter > 0):
		return invalid("holeDiameter", p.HoleDiameter)
	case !(p.ConnClearance > 0):
		return invalid("connClearance", p.ConnClearance)
	case !(p.ConnWall > 0):
		return invalid("connWall", p.ConnWall)
	case !(p.ConnLength > 0):
		return invalid("connLength", p.ConnLength)
	case p.Clearance < 0:
		return invalid("clearance", p.Clearance)
	case p.SweepSteps < 0:
		return invalid("sweepSteps", p.SweepSteps)
	case p.Resolution < 0:
		return invalid("resolution", p.Resolution)
	case p.CutterHeight < 0:
		return invalid("cutterHeight", p.CutterHeight)
	}
	if _, err := matter.Lookup(p.Material); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	if p.Angled {
		switch {
		case !(p.Len1 > 0):
			return invalid("len1", p.Len1)
		case !(p.Len2 > 0):
			return invalid("len2", p.Len2)
		case p.Radius < 0:
			return invalid("radius", p.Radius)
		}
		return nil
	}
	if !(p.Length > 0) {
		return invalid("length", p.Length)
	}
	return nil
}

// Path returns the sweep path of the parts.
func (p Parameters) Path() curve.Path {
	if p.Angled {
		return curve.Rounded(p.Len1, p.Len2, p.Angle, p.Radius, p.TurnAxis)
	}
	return curve.Straight(p.Length)
}

// HoleLayout returns the hole layout of the rail. The modeled diameter is
// widened by the material's pull into holes.
func (p Parameters) HoleLayout() carve.Layout {
	return carve.Layout{Count: p.HoleCount, Diameter: p.material().HoleDiameter(p.HoleDiameter), Offset: p.HoleOffset}
}

// Holes returns the hole placements of the rail in the space it is swept
// in: centered on the origin for straight parts, path space for angled
// ones. There are none unless HoleCount and HoleDiameter are positive.
func (p Parameters) Holes() []carve.Hole {
	if p.Angled {
		return carve.Curved(p.Path(), p.TurnAxis, p.HoleLayout())
	}
	return carve.Straight(p.Length, p.HoleLayout())
}

func (p Parameters) material() matter.ViscousMaterial {
	m, err := matter.Lookup(p.Material)
	if err != nil {
		return matter.None
	}
	return m
}

// CarveConfig returns the boolean kernel settings.
func (p Parameters) CarveConfig() carve.Config {
	return carve.Config{CutterHeight: p.CutterHeight, Resolution: p.Resolution}
}

func (p Parameters) steps() int {
	if p.SweepSteps <= 0 {
		return solid.DefaultSteps
	}
	return p.SweepSteps
}

// Format is a parameter file encoding.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return "", fmt.Errorf("unknown parameter file extension %q", filepath.Ext(path))
}

// LoadParameters reads a YAML or TOML parameter file. Fields absent from
// the file keep their default values.
func LoadParameters(path string) (Parameters, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Parameters{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Parameters{}, err
	}
	defer f.Close()
	p, err := DecodeParameters(f, format)
	if err != nil {
		return Parameters{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// DecodeParameters decodes parameters on top of the defaults.
func DecodeParameters(r io.Reader, format Format) (Parameters, error) {
	p := DefaultParameters()
	data, err := io.ReadAll(r)
	if err != nil {
		return p, err
	}
	switch format {
	case YAML:
		if len(bytes.TrimSpace(data)) == 0 {
			return p, nil
		}
		err = yaml.Unmarshal(data, &p)
	case TOML:
		err = toml.Unmarshal(data, &p)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	return p, err
}

// Encode writes the parameters in the given format.
func (p Parameters) Encode(w io.Writer, format Format) error {
	switch format {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	case TOML:
		return toml.NewEncoder(w).Encode(p)
	}
	return fmt.Errorf("unsupported format %q", format)
}

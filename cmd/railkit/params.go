package main

import (
	"fmt"

	"github.com/soypat/railkit"
	"github.com/soypat/railkit/curve"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var turnAxis string

// paramSetters copy a flag's value into the resolved parameters.
var paramSetters = map[string]func(p *railkit.Parameters) error{
	"inner-width":    func(p *railkit.Parameters) error { p.InnerWidth = flagParams.InnerWidth; return nil },
	"inner-height":   func(p *railkit.Parameters) error { p.InnerHeight = flagParams.InnerHeight; return nil },
	"length":         func(p *railkit.Parameters) error { p.Length = flagParams.Length; return nil },
	"angled":         func(p *railkit.Parameters) error { p.Angled = flagParams.Angled; return nil },
	"len1":           func(p *railkit.Parameters) error { p.Len1 = flagParams.Len1; return nil },
	"len2":           func(p *railkit.Parameters) error { p.Len2 = flagParams.Len2; return nil },
	"angle":          func(p *railkit.Parameters) error { p.Angle = flagParams.Angle; return nil },
	"radius":         func(p *railkit.Parameters) error { p.Radius = flagParams.Radius; return nil },
	"holes":          func(p *railkit.Parameters) error { p.HoleCount = flagParams.HoleCount; return nil },
	"hole-diameter":  func(p *railkit.Parameters) error { p.HoleDiameter = flagParams.HoleDiameter; return nil },
	"hole-offset":    func(p *railkit.Parameters) error { p.HoleOffset = flagParams.HoleOffset; return nil },
	"clearance":      func(p *railkit.Parameters) error { p.Clearance = flagParams.Clearance; return nil },
	"conn-clearance": func(p *railkit.Parameters) error { p.ConnClearance = flagParams.ConnClearance; return nil },
	"conn-wall":      func(p *railkit.Parameters) error { p.ConnWall = flagParams.ConnWall; return nil },
	"conn-length":    func(p *railkit.Parameters) error { p.ConnLength = flagParams.ConnLength; return nil },
	"sweep-steps":    func(p *railkit.Parameters) error { p.SweepSteps = flagParams.SweepSteps; return nil },
	"resolution":     func(p *railkit.Parameters) error { p.Resolution = flagParams.Resolution; return nil },
	"material":       func(p *railkit.Parameters) error { p.Material = flagParams.Material; return nil },
	"turn-axis": func(p *railkit.Parameters) (err error) {
		p.TurnAxis, err = curve.ParseAxis(turnAxis)
		return err
	},
}

func addParamFlags(fs *pflag.FlagSet) {
	p := &flagParams
	fs.Float64Var(&p.InnerWidth, "inner-width", p.InnerWidth, "Channel width in mm")
	fs.Float64Var(&p.InnerHeight, "inner-height", p.InnerHeight, "Channel height in mm")
	fs.Float64Var(&p.Length, "length", p.Length, "Straight part length in mm")
	fs.BoolVar(&p.Angled, "angled", p.Angled, "Build a two leg part with a rounded corner")
	fs.Float64Var(&p.Len1, "len1", p.Len1, "First leg length in mm")
	fs.Float64Var(&p.Len2, "len2", p.Len2, "Second leg length in mm")
	fs.Float64Var(&p.Angle, "angle", p.Angle, "Turn angle in degrees")
	fs.Float64Var(&p.Radius, "radius", p.Radius, "Corner radius in mm")
	fs.StringVar(&turnAxis, "turn-axis", p.TurnAxis.String(), "Corner turn axis: horizontal or vertical")
	fs.IntVar(&p.HoleCount, "holes", p.HoleCount, "Number of mounting holes")
	fs.Float64Var(&p.HoleDiameter, "hole-diameter", p.HoleDiameter, "Mounting hole diameter in mm")
	fs.Float64Var(&p.HoleOffset, "hole-offset", p.HoleOffset, "Lateral hole offset on angled parts in mm")
	fs.Float64Var(&p.Clearance, "clearance", p.Clearance, "Cover claw clearance in mm")
	fs.Float64Var(&p.ConnClearance, "conn-clearance", p.ConnClearance, "Connector clearance in mm")
	fs.Float64Var(&p.ConnWall, "conn-wall", p.ConnWall, "Connector wall thickness in mm")
	fs.Float64Var(&p.ConnLength, "conn-length", p.ConnLength, "Connector length in mm")
	fs.IntVar(&p.SweepSteps, "sweep-steps", p.SweepSteps, "Sweep steps along an angled path")
	fs.Float64Var(&p.Resolution, "resolution", p.Resolution, "Hole drilling mesh cell size in mm")
	fs.StringVar(&p.Material, "material", p.Material, "Filament to compensate shrinkage for: none, pla or petg")
}

// resolveParams loads the config file, if any, and applies the flags the
// user set on top.
func resolveParams(cmd *cobra.Command) (railkit.Parameters, error) {
	p := railkit.DefaultParameters()
	if configPath != "" {
		var err error
		if p, err = railkit.LoadParameters(configPath); err != nil {
			return p, err
		}
	}
	var err error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		set, ok := paramSetters[f.Name]
		if ok && err == nil {
			err = set(&p)
		}
	})
	if err != nil {
		return p, err
	}
	return p, p.Validate()
}

var paramsFormat string

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Print the resolved parameters",
	Long:  "Print the parameters after applying the config file and flags. The output can be used as a config file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolveParams(cmd)
		if err != nil {
			return err
		}
		return p.Encode(cmd.OutOrStdout(), railkit.Format(paramsFormat))
	},
}

func init() {
	paramsCmd.Flags().StringVar(&paramsFormat, "format", string(railkit.YAML), fmt.Sprintf("Output format: %s or %s", railkit.YAML, railkit.TOML))
}

// Package matter compensates printed parts for how their filament shrinks
// as it cools.
package matter

import (
	"fmt"
	"strings"

	"github.com/soypat/railkit/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// None applies no compensation.
	None = ViscousMaterial{name: "none"}
	// PLA (polylactic acid) is the most widely used plastic filament material in 3D printing.
	PLA = ViscousMaterial{name: "pla", shrink: 0.2e-2, pullShrink: .45} // 0.2% shrinkage
	// PETG contracts more than PLA and pulls less into holes.
	PETG = ViscousMaterial{name: "petg", shrink: 0.4e-2, pullShrink: .3}
)

var materials = []ViscousMaterial{None, PLA, PETG}

// ViscousMaterial describes the shrinkage of a filament once printed.
type ViscousMaterial struct {
	name string
	// shrink is the thermal contraction shrinkage of a material once the material
	// cools to room temperature after the heated bed is turned off.
	shrink float64
	// pullShrink is the extra material, in mm, that viscoelastic pull
	// leaves on the inside of holes.
	pullShrink float64
}

// Lookup returns the material by name. The empty name is None.
func Lookup(name string) (ViscousMaterial, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return None, nil
	}
	for _, m := range materials {
		if m.name == name {
			return m, nil
		}
	}
	return None, fmt.Errorf("unknown material %q", name)
}

func (m ViscousMaterial) String() string { return m.name }

// Scale is the uniform scale factor that makes a printed part cool to
// its modeled size.
func (m ViscousMaterial) Scale() float64 { return 1 / (1 - m.shrink) }

// Transform scales about the origin by Scale.
func (m ViscousMaterial) Transform() d3.Transform {
	if m.shrink == 0 {
		return d3.Transform{}
	}
	return d3.ComposeTransform(r3.Vec{}, d3.Elem(m.Scale()), r3.Rotation{Real: 1})
}

// HoleDiameter returns the diameter to model so a hole prints at real
// diameter on a part already scaled by Transform.
func (m ViscousMaterial) HoleDiameter(real float64) float64 {
	if real <= 0 {
		return real
	}
	return real + m.pullShrink
}

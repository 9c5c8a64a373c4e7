package profile

import (
	"fmt"
	"math"
	"runtime/debug"
)

// Rail and cover dimensions in millimeters.
const (
	WallThickness  = 1.2 // rail side wall and cover overhang.
	FloorThickness = 1.2 // rail floor below the channel.
	BeadRadius     = 1.0 // snap bead at the top of each rail wall.
	FloorFillet    = 1.0 // channel floor corner radius.

	coverRoof    = 2.3 // cover top above the bead center.
	coverSkirt   = 1.1 // cover underside above the bead center.
	coverCorner  = 0.8 // cover top corner radius.
	clipRadius   = 1.1 // inner hook arc of a claw.
	ribRadius    = 2.3 // outer rib arc of a claw.
	clawTipAngle = 250 * math.Pi / 180
)

type shapeErr struct {
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("%s", s.panicObj)
}

func recoverShape(err *error) {
	if a := recover(); a != nil {
		*err = &shapeErr{
			panicObj: a,
			stack:    string(debug.Stack()),
		}
	}
}

func mustPositive(name string, v ...float64) {
	for _, x := range v {
		if !(x > 0) || math.IsInf(x, 0) {
			panic(name + " must be positive and finite")
		}
	}
}

// Rail returns the channel cross section: a U with bead hooks at the top
// of each wall and filleted inner floor corners. The channel floor is at
// y=0 and the outer half-width is innerWidth/2 + WallThickness.
func Rail(innerWidth, innerHeight float64) (p Profile, err error) {
	defer recoverShape(&err)
	return mustRail(innerWidth, innerHeight), err
}

func mustRail(innerWidth, innerHeight float64) Profile {
	mustPositive("rail dimensions", innerWidth, innerHeight)
	halfIW := innerWidth / 2
	halfOW := halfIW + WallThickness
	yOuterFloor := -FloorThickness
	yBead := innerHeight
	yTop := yBead + BeadRadius
	f := FloorFillet

	var b Builder
	b.MoveTo(-halfOW, yOuterFloor).
		LineTo(halfOW, yOuterFloor).
		LineTo(halfOW, yTop).
		LineTo(halfIW, yTop).
		AbsArc(halfIW, yBead, BeadRadius, math.Pi/2, 3*math.Pi/2, false).
		LineTo(halfIW, f).
		AbsArc(halfIW-f, f, f, 0, -math.Pi/2, true).
		LineTo(-(halfIW - f), 0).
		AbsArc(-(halfIW - f), f, f, -math.Pi/2, -math.Pi, true).
		LineTo(-halfIW, yBead-BeadRadius).
		AbsArc(-halfIW, yBead, BeadRadius, 3*math.Pi/2, math.Pi/2, false).
		LineTo(-halfOW, yTop)
	return b.Close()
}

// ClawOffset returns the lateral distance from the channel centerline to
// the center of a cover claw. Larger clearance pulls the claws inward.
func ClawOffset(innerWidth, clearance float64) float64 {
	return innerWidth/2 - (clearance - 0.1)
}

// Cover returns the roof cross section. With claws each side carries a
// barbed catch that snaps under the rail bead. Without claws the
// underside is flat across the inner width so a connector sleeve can pass.
func Cover(innerWidth, innerHeight, clearance float64, hasClaws bool) (p Profile, err error) {
	defer recoverShape(&err)
	return mustCover(innerWidth, innerHeight, clearance, hasClaws), err
}

func mustCover(innerWidth, innerHeight, clearance float64, hasClaws bool) Profile {
	mustPositive("cover dimensions", innerWidth, innerHeight)
	if math.IsNaN(clearance) || math.IsInf(clearance, 0) {
		panic("cover clearance must be finite")
	}
	halfIW := innerWidth / 2
	halfOW := halfIW + WallThickness
	yBead := innerHeight
	topY := yBead + coverRoof
	bottomY := yBead + coverSkirt
	r := coverCorner

	var b Builder
	b.MoveTo(0, topY).
		LineTo(halfOW-r, topY).
		AbsArc(halfOW-r, topY-r, r, math.Pi/2, 0, true).
		LineTo(halfOW, bottomY)
	if hasClaws {
		clawX := ClawOffset(innerWidth, clearance)
		ribEnd := math.Pi - math.Asin(clipRadius/ribRadius)
		// Right claw: hook arc down to the tip, rib arc back up to the skirt.
		b.LineTo(clawX, bottomY).
			AbsArc(clawX, yBead, clipRadius, math.Pi/2, clawTipAngle, false).
			AbsArc(clawX, yBead, ribRadius, clawTipAngle, ribEnd, true).
			LineTo(0, bottomY)
		// Left claw mirrors the right one.
		leftTip := -(clawTipAngle - math.Pi) // -70°
		b.AbsArc(-clawX, yBead, ribRadius, math.Pi-ribEnd, leftTip, true).
			AbsArc(-clawX, yBead, clipRadius, leftTip, math.Pi/2, false)
	} else {
		b.LineTo(halfIW, bottomY).
			LineTo(-halfIW, bottomY)
	}
	b.LineTo(-halfOW, bottomY).
		LineTo(-halfOW, topY-r).
		AbsArc(-halfOW+r, topY-r, r, math.Pi, math.Pi/2, true)
	return b.Close()
}

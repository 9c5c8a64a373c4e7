package profile

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// TaperHeight is the height of the inward step on the inner sleeve that
// lets it slide past the rail bead. It does not scale with clearance.
const TaperHeight = 1.0

// ConnectorSet holds the three cross sections of a connector. A connector
// is a front sleeve (OuterSleeve and InnerSleeve), a Center stop and a
// back sleeve.
type ConnectorSet struct {
	Center      Profile
	OuterSleeve Profile
	InnerSleeve Profile
}

// Connector returns the connector cross sections. The outer sleeve wraps
// the rail walls with its inner face connClearance away from them. The
// inner sleeve sits inside the channel connClearance away from its walls
// and floor and steps inward by BeadRadius below the bead. Both sleeves
// are connWall thick.
func Connector(innerWidth, innerHeight, connClearance, connWall float64) (set ConnectorSet, err error) {
	defer recoverShape(&err)
	return mustConnector(innerWidth, innerHeight, connClearance, connWall), err
}

func mustConnector(innerWidth, innerHeight, c, w float64) ConnectorSet {
	mustPositive("connector dimensions", innerWidth, innerHeight, c, w)
	halfIW := innerWidth / 2
	halfOW := halfIW + WallThickness
	yTop := innerHeight + BeadRadius

	// Outer sleeve faces and floors.
	xOuterIn := halfOW + c
	xOuterOut := xOuterIn + w
	yOuterIn := -FloorThickness - c
	yOuterOut := yOuterIn - w

	// Inner sleeve faces. xNarrow is the outer face above the taper.
	xInnerOut := halfIW - c
	xNarrow := xInnerOut - BeadRadius
	yInnerOut := c
	yInnerIn := c + w
	armTop := yTop - c
	fillet := FloorFillet - c
	if xNarrow-w <= 0 {
		panic("connector wall and clearance do not fit inside the channel")
	}
	if fillet <= 0 {
		panic("connector clearance must be smaller than the floor fillet")
	}
	// The taper sits just under the bead, clamped above the floor fillet
	// and the inner floor.
	taperTop := innerHeight - BeadRadius - c
	taperBottom := taperTop - TaperHeight
	lowest := math.Max(FloorFillet, yInnerIn) + tolerance*1e3
	if taperBottom < lowest {
		taperBottom = lowest
		taperTop = math.Max(taperTop, taperBottom+tolerance*1e3)
	}
	if taperTop >= armTop {
		panic("connector taper does not fit below the rail top")
	}

	outer := uProfile(
		[]r2.Vec{{X: xOuterOut, Y: yOuterOut}, {X: xOuterOut, Y: yTop}},
		[]r2.Vec{{X: xOuterIn, Y: yTop}, {X: xOuterIn, Y: yOuterIn}},
		yOuterOut,
	)

	var ib Builder
	ib.MoveTo(-(halfIW - FloorFillet), yInnerOut).
		LineTo(halfIW-FloorFillet, yInnerOut).
		AbsArc(halfIW-FloorFillet, FloorFillet, fillet, -math.Pi/2, 0, false).
		LineTo(xInnerOut, taperBottom).
		LineTo(xNarrow, taperTop).
		LineTo(xNarrow, armTop).
		LineTo(xNarrow-w, armTop).
		LineTo(xNarrow-w, taperTop).
		LineTo(xInnerOut-w, taperBottom).
		LineTo(xInnerOut-w, yInnerIn).
		LineTo(-(xInnerOut - w), yInnerIn).
		LineTo(-(xInnerOut - w), taperBottom).
		LineTo(-(xNarrow - w), taperTop).
		LineTo(-(xNarrow - w), armTop).
		LineTo(-xNarrow, armTop).
		LineTo(-xNarrow, taperTop).
		LineTo(-xInnerOut, taperBottom).
		LineTo(-xInnerOut, FloorFillet).
		AbsArc(-(halfIW - FloorFillet), FloorFillet, fillet, math.Pi, 3*math.Pi/2, false)
	inner := ib.Close()

	center := uProfile(
		[]r2.Vec{{X: xOuterOut, Y: yOuterOut}, {X: xOuterOut, Y: yTop}},
		[]r2.Vec{{X: xNarrow - w, Y: yTop}, {X: xNarrow - w, Y: yInnerIn}},
		yOuterOut,
	)
	return ConnectorSet{Center: center, OuterSleeve: outer, InnerSleeve: inner}
}

// uProfile builds a U symmetric about x=0 from its right half. outerRight
// runs up the outer face and innerRight runs down the inner face, both
// with positive x. The result is counter-clockwise.
func uProfile(outerRight, innerRight []r2.Vec, yBottom float64) Profile {
	var b Builder
	b.MoveTo(-outerRight[0].X, yBottom)
	for _, v := range outerRight {
		b.LineTo(v.X, v.Y)
	}
	for _, v := range innerRight {
		b.LineTo(v.X, v.Y)
	}
	for i := len(innerRight) - 1; i >= 0; i-- {
		b.LineTo(-innerRight[i].X, innerRight[i].Y)
	}
	for i := len(outerRight) - 1; i >= 0; i-- {
		b.LineTo(-outerRight[i].X, outerRight[i].Y)
	}
	return b.Close()
}

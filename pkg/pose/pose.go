// Package pose provides the value types describing where the simulated
// Finch is and whether its pen touches the paper.
//
// Coordinates are in centimetres. Headings are in degrees: 0 faces +X and
// positive angles turn counter-clockwise. A Pose is never modified in place;
// every motion returns a new value.
package pose

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// FullTurn is one revolution in degrees.
const FullTurn = 360.0

// Pose is the robot's position and heading at one instant.
type Pose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"` // degrees in [0, 360)
}

// Origin returns the pose of a freshly created robot.
func Origin() Pose {
	return Pose{}
}

// New returns a pose at (x, y) with the heading normalized.
func New(x, y, heading float64) Pose {
	return Pose{X: x, Y: y, Heading: NormalizeHeading(heading)}
}

// Position returns the pose's location as a vector.
func (p Pose) Position() mgl64.Vec2 {
	return mgl64.Vec2{p.X, p.Y}
}

// Direction returns the unit vector the pose faces.
func (p Pose) Direction() mgl64.Vec2 {
	s, c := SinCosDeg(p.Heading)
	return mgl64.Vec2{c, s}
}

// Move returns the pose displaced by distance along the current heading.
// Negative distances move backward; the heading is unchanged.
func (p Pose) Move(distance float64) Pose {
	pos := p.Position().Add(p.Direction().Mul(distance))
	return Pose{X: pos[0], Y: pos[1], Heading: p.Heading}
}

// Turn returns the pose rotated by angle degrees (positive = counter-clockwise).
// The angle is reduced to [-180, 180] first, exactly, so huge angles keep
// their fractional part and Turn(a) followed by Turn(-a) cancels.
func (p Pose) Turn(angle float64) Pose {
	return Pose{X: p.X, Y: p.Y, Heading: NormalizeHeading(p.Heading + math.Remainder(angle, FullTurn))}
}

// Equal reports exact equality.
func (p Pose) Equal(other Pose) bool {
	return p == other
}

// ApproxEqual compares positions and headings within eps. Headings are
// compared on the circle, so 359.9999 and 0 are close.
func (p Pose) ApproxEqual(other Pose, eps float64) bool {
	if math.Abs(p.X-other.X) > eps || math.Abs(p.Y-other.Y) > eps {
		return false
	}
	d := math.Abs(p.Heading - other.Heading)
	return d <= eps || FullTurn-d <= eps
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.2f°)", p.X, p.Y, p.Heading)
}

// NormalizeHeading maps deg into [0, 360).
func NormalizeHeading(deg float64) float64 {
	h := math.Mod(deg, FullTurn)
	if h < 0 {
		h += FullTurn
	}
	// math.Mod of a tiny negative value can round up to exactly 360.
	if h >= FullTurn || h == 0 {
		return 0 // also folds -0 into +0
	}
	return h
}

// SinCosDeg returns sin and cos of deg. Quadrant angles return exact values
// so axis-aligned programs do not accumulate 1e-16 drift.
func SinCosDeg(deg float64) (sin, cos float64) {
	switch NormalizeHeading(deg) {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	return math.Sincos(mgl64.DegToRad(deg))
}

// PenState records whether the pen is touching the drawing surface.
type PenState struct {
	Down bool `json:"down"`
}

// PenDown is the state of a robot whose pen draws.
var PenDown = PenState{Down: true}

// PenUp is the state of a robot whose pen is lifted.
var PenUp = PenState{Down: false}

func (s PenState) String() string {
	if s.Down {
		return "down"
	}
	return "up"
}

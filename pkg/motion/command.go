package motion

import "fmt"

// Command is one instruction the engine can interpret.
type Command interface {
	// Name returns the command identifier (for logging).
	Name() string
}

// Move translates the robot along its heading. Negative distances reverse.
type Move struct {
	Distance float64 // cm
}

// Turn rotates the robot in place. Positive angles turn left.
type Turn struct {
	Angle float64 // degrees
}

// Pen raises or lowers the pen.
type Pen struct {
	Down bool
}

// Wheels drives the two wheels independently for a fixed time.
type Wheels struct {
	Left     float64 // cm/s
	Right    float64 // cm/s
	Duration float64 // seconds
}

// Name returns "forward" or "backward" depending on the sign of the distance.
func (m Move) Name() string {
	if m.Distance < 0 {
		return "backward"
	}
	return "forward"
}

// Name returns "turn_left" or "turn_right".
func (t Turn) Name() string {
	if t.Angle < 0 {
		return "turn_right"
	}
	return "turn_left"
}

// Name returns "pen_down" or "pen_up".
func (p Pen) Name() string {
	if p.Down {
		return "pen_down"
	}
	return "pen_up"
}

// Name returns "wheels".
func (Wheels) Name() string { return "wheels" }

func (m Move) String() string   { return fmt.Sprintf("move(%g)", m.Distance) }
func (t Turn) String() string   { return fmt.Sprintf("turn(%g)", t.Angle) }
func (p Pen) String() string    { return p.Name() }
func (w Wheels) String() string { return fmt.Sprintf("wheels(%g, %g, %gs)", w.Left, w.Right, w.Duration) }

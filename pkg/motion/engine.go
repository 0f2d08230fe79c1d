// Package motion turns movement commands into pose changes and path segments.
//
// The Engine is stateless: every method takes the current State and returns
// the next one together with the segments the motion produced. The caller
// (usually finch.Robot) owns the state and the path recorder.
//
// Conventions:
//   - Forward/Backward produce exactly one segment, even for zero distance.
//   - Turns and pen changes never produce a segment.
//   - Segments are recorded whether or not the pen is down; Drawn tells them apart.
package motion

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-finch/pkg/path"
	"github.com/teslashibe/go-finch/pkg/pose"
)

// Differential drive defaults, matching the Finch 2.0 chassis.
const (
	DefaultWheelbase = 10.0 // cm between wheel contact points
	DefaultTimeStep  = 0.02 // seconds per integration step

	// MaxWheelSteps bounds the segments a single Wheels command can emit.
	// Longer drives use a coarser step.
	MaxWheelSteps = 100_000

	// straightOmega is the turn rate (rad/s) below which a drive is treated as straight.
	straightOmega = 1e-9
)

// State is everything a command can change.
type State struct {
	Pose pose.Pose
	Pen  pose.PenState
}

// Step is the result of applying one command.
type Step struct {
	State    State
	Segments []path.Segment
}

// Engine applies motion commands.
type Engine struct {
	wheelbase float64
	timeStep  float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithWheelbase sets the distance between the wheels in cm.
// Non-positive values are ignored.
func WithWheelbase(cm float64) Option {
	return func(e *Engine) {
		if cm > 0 {
			e.wheelbase = cm
		}
	}
}

// WithTimeStep sets the Wheels integration step in seconds.
// Non-positive values are ignored.
func WithTimeStep(seconds float64) Option {
	return func(e *Engine) {
		if seconds > 0 {
			e.timeStep = seconds
		}
	}
}

// NewEngine creates an engine with the Finch defaults.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		wheelbase: DefaultWheelbase,
		timeStep:  DefaultTimeStep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Wheelbase returns the configured wheelbase in cm.
func (e *Engine) Wheelbase() float64 {
	return e.wheelbase
}

// Forward moves distance cm along the heading.
func (e *Engine) Forward(s State, distance float64) (Step, error) {
	if err := checkFinite("distance", distance); err != nil {
		return Step{State: s}, err
	}
	return e.translate(s, distance)
}

// Backward moves distance cm against the heading.
func (e *Engine) Backward(s State, distance float64) (Step, error) {
	if err := checkFinite("distance", distance); err != nil {
		return Step{State: s}, err
	}
	return e.translate(s, -distance)
}

// TurnLeft rotates counter-clockwise by angle degrees.
func (e *Engine) TurnLeft(s State, angle float64) (Step, error) {
	if err := checkFinite("angle", angle); err != nil {
		return Step{State: s}, err
	}
	return e.rotate(s, angle), nil
}

// TurnRight rotates clockwise by angle degrees.
func (e *Engine) TurnRight(s State, angle float64) (Step, error) {
	if err := checkFinite("angle", angle); err != nil {
		return Step{State: s}, err
	}
	return e.rotate(s, -angle), nil
}

// SetPen changes the pen state only.
func (e *Engine) SetPen(s State, down bool) Step {
	s.Pen = pose.PenState{Down: down}
	return Step{State: s}
}

// SetMove mirrors the hardware call setMove(direction, distance, speed).
// direction is "F" or "B". Speed only gates the motion: a zero speed does
// not move the robot.
func (e *Engine) SetMove(s State, direction string, distance, speed float64) (Step, error) {
	if err := checkFinite("distance", distance, "speed", speed); err != nil {
		return Step{State: s}, err
	}
	sign, err := moveSign(direction)
	if err != nil {
		return Step{State: s}, err
	}
	if speed == 0 {
		return Step{State: s}, nil
	}
	return e.translate(s, sign*distance)
}

// SetTurn mirrors the hardware call setTurn(direction, degrees, speed).
// direction is "L" or "R". A zero speed does not turn the robot.
func (e *Engine) SetTurn(s State, direction string, degrees, speed float64) (Step, error) {
	if err := checkFinite("degrees", degrees, "speed", speed); err != nil {
		return Step{State: s}, err
	}
	sign, err := turnSign(direction)
	if err != nil {
		return Step{State: s}, err
	}
	if speed == 0 {
		return Step{State: s}, nil
	}
	return e.rotate(s, sign*degrees), nil
}

// Wheels drives the left and right wheels at the given speeds (cm/s) for
// duration seconds, integrating the differential-drive kinematics. Each
// integration step that changes the position emits one segment, so arcs come
// out as a chain of chords. A non-positive duration does nothing.
func (e *Engine) Wheels(s State, left, right, duration float64) (Step, error) {
	if err := checkFinite("left", left, "right", right, "duration", duration); err != nil {
		return Step{State: s}, err
	}
	if duration <= 0 {
		return Step{State: s}, nil
	}

	// Halve before adding so speeds near MaxFloat64 do not overflow.
	v := 0.5*left + 0.5*right
	omega := right/e.wheelbase - left/e.wheelbase // rad/s

	steps := max(1, int(math.Min(math.Ceil(duration/e.timeStep), MaxWheelSteps)))
	h := duration / float64(steps)

	pos := s.Pose.Position()
	th := mgl64.DegToRad(s.Pose.Heading)
	segments := make([]path.Segment, 0, steps)

	for i := 0; i < steps; i++ {
		var next mgl64.Vec2
		if math.Abs(omega) < straightOmega {
			next = pos.Add(mgl64.Vec2{math.Cos(th), math.Sin(th)}.Mul(v * h))
		} else {
			thNext := th + omega*h
			r := v / omega
			next = mgl64.Vec2{
				pos[0] + r*(math.Sin(thNext)-math.Sin(th)),
				pos[1] - r*(math.Cos(thNext)-math.Cos(th)),
			}
			th = thNext
		}
		if err := checkFinite("x", next[0], "y", next[1]); err != nil {
			return Step{State: s}, fmt.Errorf("wheels step %d: %w", i, err)
		}
		if next != pos {
			segments = append(segments, path.Segment{Start: pos, End: next, Drawn: s.Pen.Down})
		}
		pos = next
	}

	// th can exceed the float range once scaled to degrees.
	th = math.Remainder(th, 2*math.Pi)
	s.Pose = pose.New(pos[0], pos[1], mgl64.RadToDeg(th))
	return Step{State: s, Segments: segments}, nil
}

// Apply interprets cmd against s.
func (e *Engine) Apply(s State, cmd Command) (Step, error) {
	switch c := cmd.(type) {
	case Move:
		return e.Forward(s, c.Distance)
	case Turn:
		return e.TurnLeft(s, c.Angle)
	case Pen:
		return e.SetPen(s, c.Down), nil
	case Wheels:
		return e.Wheels(s, c.Left, c.Right, c.Duration)
	default:
		return Step{State: s}, fmt.Errorf("motion: unsupported command %T", cmd)
	}
}

// translate moves s by distance. The state is left unchanged when the
// destination is not representable.
func (e *Engine) translate(s State, distance float64) (Step, error) {
	next := s.Pose.Move(distance)
	if err := checkFinite("x", next.X, "y", next.Y); err != nil {
		return Step{State: s}, err
	}
	seg := path.Segment{
		Start: s.Pose.Position(),
		End:   next.Position(),
		Drawn: s.Pen.Down,
	}
	s.Pose = next
	return Step{State: s, Segments: []path.Segment{seg}}, nil
}

func (e *Engine) rotate(s State, angle float64) Step {
	s.Pose = s.Pose.Turn(angle)
	return Step{State: s}
}

func moveSign(direction string) (float64, error) {
	switch strings.ToUpper(direction) {
	case "F", "FORWARD":
		return 1, nil
	case "B", "BACKWARD":
		return -1, nil
	}
	return 0, fmt.Errorf("%w: %q (want F or B)", ErrBadDirection, direction)
}

func turnSign(direction string) (float64, error) {
	switch strings.ToUpper(direction) {
	case "L", "LEFT":
		return 1, nil
	case "R", "RIGHT":
		return -1, nil
	}
	return 0, fmt.Errorf("%w: %q (want L or R)", ErrBadDirection, direction)
}

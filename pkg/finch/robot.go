// Package finch simulates a Finch 2.0 robot with a pen.
//
// A Robot accepts the same movement vocabulary as the hardware library
// (Forward, Backward, TurnLeft, TurnRight, PenUp, PenDown, SetMove, SetTurn,
// Wheels) but, instead of driving motors, records where the pen went. Call
// Render for the drawing as data, Show to hand it to a display, or MIMEBundle
// for notebook-style rich output.
//
// Conventions: distances are centimetres, angles are degrees, the robot
// starts at (0, 0) facing +X with the pen down, and left turns are
// counter-clockwise. Every translation is recorded, pen-up moves as
// non-drawn segments.
//
// A Robot is not safe for concurrent use. Give each goroutine its own robot
// or serialize access.
package finch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/google/uuid"

	"github.com/teslashibe/go-finch/internal/log"
	"github.com/teslashibe/go-finch/pkg/motion"
	"github.com/teslashibe/go-finch/pkg/path"
	"github.com/teslashibe/go-finch/pkg/pose"
	"github.com/teslashibe/go-finch/pkg/render"
)

// ErrNoDisplay is returned by Show when no display collaborator is attached.
var ErrNoDisplay = errors.New("finch: no display attached (construct the robot WithDisplay)")

// Robot is a simulated Finch. Each Robot owns its pose, pen and path.
type Robot struct {
	id     string
	cfg    Config
	engine *motion.Engine
	state  motion.State
	path   *path.Recorder
	logger *slog.Logger
}

// New creates a robot at the origin.
func New(opts ...Option) *Robot {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	id := uuid.NewString()
	logger := cfg.Logger
	if logger == nil {
		logger = log.L()
	}

	r := &Robot{
		id:     id,
		cfg:    cfg,
		engine: motion.NewEngine(motion.WithWheelbase(cfg.Wheelbase)),
		path:   path.NewRecorder(),
		logger: logger.With("robot", id[:8]),
	}
	r.state = r.initialState()
	return r
}

func (r *Robot) initialState() motion.State {
	return motion.State{Pose: pose.Origin(), Pen: pose.PenState{Down: r.cfg.PenDown}}
}

// ID returns the robot's unique identifier.
func (r *Robot) ID() string {
	return r.id
}

// --- Movement -----------------------------------------------------------

// Forward drives distance cm straight ahead. Negative distances reverse.
func (r *Robot) Forward(distance float64) error {
	return r.commit("forward", distance)(r.engine.Forward(r.state, distance))
}

// Backward drives distance cm straight back.
func (r *Robot) Backward(distance float64) error {
	return r.commit("backward", distance)(r.engine.Backward(r.state, distance))
}

// TurnLeft rotates counter-clockwise in place by angle degrees.
func (r *Robot) TurnLeft(angle float64) error {
	return r.commit("turn_left", angle)(r.engine.TurnLeft(r.state, angle))
}

// TurnRight rotates clockwise in place by angle degrees.
func (r *Robot) TurnRight(angle float64) error {
	return r.commit("turn_right", angle)(r.engine.TurnRight(r.state, angle))
}

// PenUp lifts the pen. Later moves are recorded as travel.
func (r *Robot) PenUp() {
	_ = r.commit("pen_up")(r.engine.SetPen(r.state, false), nil)
}

// PenDown lowers the pen. Later moves draw.
func (r *Robot) PenDown() {
	_ = r.commit("pen_down")(r.engine.SetPen(r.state, true), nil)
}

// SetMove is the hardware call setMove: direction "F" or "B", distance in
// cm, speed in cm/s. A zero speed leaves the robot where it is.
func (r *Robot) SetMove(direction string, distance, speed float64) error {
	return r.commit("set_move", direction, distance, speed)(r.engine.SetMove(r.state, direction, distance, speed))
}

// SetTurn is the hardware call setTurn: direction "L" or "R", angle in
// degrees, speed in deg/s. A zero speed leaves the robot where it is.
func (r *Robot) SetTurn(direction string, degrees, speed float64) error {
	return r.commit("set_turn", direction, degrees, speed)(r.engine.SetTurn(r.state, direction, degrees, speed))
}

// Wheels drives the wheels at left and right cm/s for duration seconds.
// Unequal speeds trace an arc.
func (r *Robot) Wheels(left, right, duration float64) error {
	return r.commit("wheels", left, right, duration)(r.engine.Wheels(r.state, left, right, duration))
}

// Apply runs a single engine command.
func (r *Robot) Apply(cmd motion.Command) error {
	return r.commit(cmd.Name(), cmd)(r.engine.Apply(r.state, cmd))
}

// Reset returns the robot to the origin with its initial pen state and
// clears the path.
func (r *Robot) Reset() {
	r.state = r.initialState()
	r.path.Reset()
	r.logger.Debug("reset")
}

// commit returns a function that applies an engine result. On error nothing
// is changed.
func (r *Robot) commit(name string, args ...any) func(motion.Step, error) error {
	return func(step motion.Step, err error) error {
		if err != nil {
			r.logger.Debug("command rejected", "cmd", name, "args", args, "error", err)
			return fmt.Errorf("finch: %s: %w", name, err)
		}
		r.state = step.State
		for _, seg := range step.Segments {
			r.path.Record(seg)
		}
		r.logger.Debug("command",
			"cmd", name,
			"args", args,
			"pose", r.state.Pose.String(),
			"pen", r.state.Pen.String(),
			"segments", len(step.Segments),
		)
		return nil
	}
}

// --- Queries ------------------------------------------------------------

// Pose returns the current pose.
func (r *Robot) Pose() pose.Pose {
	return r.state.Pose
}

// Heading returns the current heading in degrees, in [0, 360).
func (r *Robot) Heading() float64 {
	return r.state.Pose.Heading
}

// Position returns the current x and y in cm.
func (r *Robot) Position() (x, y float64) {
	return r.state.Pose.X, r.state.Pose.Y
}

// IsPenDown reports whether the pen is drawing.
func (r *Robot) IsPenDown() bool {
	return r.state.Pen.Down
}

// Path iterates over the recorded segments, oldest first.
func (r *Robot) Path() iter.Seq[path.Segment] {
	return r.path.Segments()
}

// SegmentCount returns the number of recorded segments.
func (r *Robot) SegmentCount() int {
	return r.path.Len()
}

// Bounds returns the bounding box of the recorded path.
func (r *Robot) Bounds() path.Bounds {
	return r.path.Bounds()
}

// DrawnLength returns the total pen-down distance in cm.
func (r *Robot) DrawnLength() float64 {
	return r.path.DrawnLength()
}

// --- Rendering ----------------------------------------------------------

// Render returns a snapshot of the drawing. The artifact does not share
// memory with the robot.
func (r *Robot) Render() render.Artifact {
	return render.Artifact{
		RobotID:  r.id,
		Segments: r.path.Snapshot(),
		Pose:     r.state.Pose,
		PenDown:  r.state.Pen.Down,
		Bounds:   r.path.Bounds(),
	}
}

// Show renders the robot and hands the result to the attached display.
func (r *Robot) Show(ctx context.Context) error {
	if r.cfg.Display == nil {
		return ErrNoDisplay
	}
	if err := r.cfg.Display.Show(ctx, r.Render()); err != nil {
		return fmt.Errorf("finch: display failed: %w", err)
	}
	return nil
}

// MIMEBundle returns the drawing keyed by MIME type, for notebook front-ends
// that display the last value of a cell. SVG is always included; PNG is
// included when a rasterizer is configured.
func (r *Robot) MIMEBundle() map[string][]byte {
	return render.MIMEBundle(r.Render(), r.cfg.Rasterizer)
}

// String summarizes the robot for logs and REPLs.
func (r *Robot) String() string {
	return fmt.Sprintf("Finch(%s pen=%s segments=%d)", r.state.Pose, r.state.Pen, r.path.Len())
}

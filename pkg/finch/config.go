package finch

import (
	"log/slog"

	"github.com/teslashibe/go-finch/pkg/motion"
	"github.com/teslashibe/go-finch/pkg/render"
)

// Config holds Robot construction settings.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// PenDown is the pen state of a new or reset robot. Defaults to true.
	PenDown bool

	// Wheelbase is the wheel separation in cm used by Wheels.
	Wheelbase float64

	// Display receives artifacts from Show. Optional.
	Display render.Display

	// Rasterizer adds PNG output to MIMEBundle. Optional.
	Rasterizer render.Rasterizer

	// Logger receives one debug record per command.
	Logger *slog.Logger
}

// Option is a functional option for configuring a Robot.
type Option func(*Config)

// DefaultConfig returns the configuration of a robot built with no options.
func DefaultConfig() Config {
	return Config{
		PenDown:   true,
		Wheelbase: motion.DefaultWheelbase,
	}
}

// WithPenUp starts the robot with its pen lifted.
func WithPenUp() Option {
	return func(c *Config) {
		c.PenDown = false
	}
}

// WithWheelbase sets the wheel separation in cm.
func WithWheelbase(cm float64) Option {
	return func(c *Config) {
		c.Wheelbase = cm
	}
}

// WithDisplay attaches the display collaborator used by Show.
func WithDisplay(d render.Display) Option {
	return func(c *Config) {
		c.Display = d
	}
}

// WithRasterizer enables PNG output.
func WithRasterizer(r render.Rasterizer) Option {
	return func(c *Config) {
		c.Rasterizer = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

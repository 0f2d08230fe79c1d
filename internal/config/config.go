// Package config provides environment-driven settings for go-finch commands.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Defaults used when the environment does not override them.
const (
	DefaultOutputPath = "finch_sim_output.png"
	DefaultViewerPort = "8080"
	DefaultLogLevel   = "info"
	DefaultWheelbase  = 10.0 // cm
)

// OutputPath returns the PNG output path from FINCH_SIM_OUTPUT.
// The SVG is written next to it (see SVGPath).
func OutputPath() string {
	if p := os.Getenv("FINCH_SIM_OUTPUT"); p != "" {
		return p
	}
	return DefaultOutputPath
}

// SVGPath returns the SVG file that accompanies a PNG path.
func SVGPath(pngPath string) string {
	return strings.TrimSuffix(pngPath, filepath.Ext(pngPath)) + ".svg"
}

// ViewerPort returns the browser viewer port from FINCH_VIEWER_PORT.
func ViewerPort() string {
	if port := os.Getenv("FINCH_VIEWER_PORT"); port != "" {
		return port
	}
	return DefaultViewerPort
}

// LogLevel returns the log level from FINCH_LOG_LEVEL.
func LogLevel() string {
	if lvl := os.Getenv("FINCH_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return DefaultLogLevel
}

// Wheelbase returns the wheel separation in cm from FINCH_WHEELBASE_CM.
// Unparseable or non-positive values fall back to the default.
func Wheelbase() float64 {
	if s := os.Getenv("FINCH_WHEELBASE_CM"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
			return v
		}
	}
	return DefaultWheelbase
}

// Package render turns a robot's recorded path into something a person can
// look at.
//
// The Artifact is the contract between the simulator and any display: an
// ordered list of segments, the current pose and the bounding box. SVG
// encoding lives here and has no dependencies; PNG encoding is delegated to a
// Rasterizer (see package raster) so callers that only want SVG do not pull
// in OpenCV.
package render

import (
	"context"
	"errors"

	"github.com/teslashibe/go-finch/pkg/path"
	"github.com/teslashibe/go-finch/pkg/pose"
)

// MIME types produced by MIMEBundle.
const (
	MIMESVG = "image/svg+xml"
	MIMEPNG = "image/png"
)

// ViewMargin is the fraction of the path's extent added on each side of the viewport.
const ViewMargin = 0.1

// ErrNoRasterizer is returned when PNG output is requested without a Rasterizer.
var ErrNoRasterizer = errors.New("render: no PNG rasterizer configured")

// Artifact is a self-contained snapshot of a drawing.
type Artifact struct {
	RobotID  string         `json:"robot_id"`
	Segments []path.Segment `json:"segments"`
	Pose     pose.Pose      `json:"pose"`
	PenDown  bool           `json:"pen_down"`
	Bounds   path.Bounds    `json:"bounds"`
}

// Viewport returns the region a renderer should show: the bounds, grown to
// include the current pose, plus ViewMargin on every side.
func (a Artifact) Viewport() path.Bounds {
	return a.Bounds.Include(a.Pose.Position()).Pad(ViewMargin)
}

// DrawnCount returns the number of pen-down segments.
func (a Artifact) DrawnCount() int {
	n := 0
	for _, s := range a.Segments {
		if s.Drawn {
			n++
		}
	}
	return n
}

// Display is an external collaborator that shows artifacts to a person:
// a file on disk, a browser tab, a notebook cell.
type Display interface {
	Show(ctx context.Context, a Artifact) error
}

// DisplayFunc adapts a function to the Display interface.
type DisplayFunc func(ctx context.Context, a Artifact) error

// Show calls f.
func (f DisplayFunc) Show(ctx context.Context, a Artifact) error {
	return f(ctx, a)
}

// Displays shows an artifact on every display in turn. All displays are
// tried; their errors are joined.
type Displays []Display

// Show calls Show on each display.
func (ds Displays) Show(ctx context.Context, a Artifact) error {
	var errs []error
	for _, d := range ds {
		if err := d.Show(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Rasterizer encodes an artifact as a PNG image.
type Rasterizer interface {
	PNG(a Artifact) ([]byte, error)
}

// MIMEBundle returns the artifact keyed by MIME type, the shape notebook
// front-ends use to pick a representation. SVG is always present; PNG is
// added when r is non-nil and succeeds.
func MIMEBundle(a Artifact, r Rasterizer) map[string][]byte {
	bundle := map[string][]byte{MIMESVG: SVG(a)}
	if r == nil {
		return bundle
	}
	if png, err := r.PNG(a); err == nil {
		bundle[MIMEPNG] = png
	}
	return bundle
}

// Package raster draws render artifacts into PNG images using OpenCV.
//
// It is kept apart from package render because gocv needs cgo and an OpenCV
// install; programs that only emit SVG never link it.
package raster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"gocv.io/x/gocv"

	"github.com/teslashibe/go-finch/pkg/path"
	"github.com/teslashibe/go-finch/pkg/render"
)

// Default raster settings.
const (
	DefaultWidth     = 600
	DefaultThickness = 2
	DefaultMaxHeight = 4096
)

var (
	black  = color.RGBA{A: 255}
	grey   = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	marker = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// Rasterizer renders artifacts to PNG.
type Rasterizer struct {
	Width     int
	Thickness int
	MaxHeight int

	// Travel controls whether pen-up segments are drawn (in grey).
	Travel bool
}

// New returns a rasterizer with the default 600px width.
func New() *Rasterizer {
	return &Rasterizer{
		Width:     DefaultWidth,
		Thickness: DefaultThickness,
		MaxHeight: DefaultMaxHeight,
		Travel:    true,
	}
}

// PNG implements render.Rasterizer.
func (r *Rasterizer) PNG(a render.Artifact) ([]byte, error) {
	vp := a.Viewport()
	w, h := render.ImageSize(vp, r.Width, 2, r.MaxHeight)

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), h, w, gocv.MatTypeCV8UC3)
	defer img.Close()
	if img.Empty() {
		return nil, fmt.Errorf("raster: failed to allocate %dx%d image", w, h)
	}

	m := newMapper(vp, w, h)
	if r.Travel {
		for _, s := range a.Segments {
			if !s.Drawn {
				gocv.Line(&img, m.point(s.Start), m.point(s.End), grey, max(1, r.Thickness/2))
			}
		}
	}
	for _, s := range a.Segments {
		if s.Drawn {
			gocv.Line(&img, m.point(s.Start), m.point(s.End), black, r.Thickness)
		}
	}

	pos := m.point(a.Pose.Position())
	gocv.Circle(&img, pos, r.Thickness*3, marker, -1)
	tip := m.point(a.Pose.Position().Add(a.Pose.Direction().Mul(vp.Width() * 0.04)))
	gocv.Line(&img, pos, tip, marker, r.Thickness)

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("raster: PNG encode failed: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases native memory that Close frees.
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// mapper converts drawing coordinates (cm, +Y up) to pixels (+Y down).
type mapper struct {
	vp     path.Bounds
	sx, sy float64
}

func newMapper(vp path.Bounds, w, h int) mapper {
	return mapper{
		vp: vp,
		sx: float64(w) / vp.Width(),
		sy: float64(h) / vp.Height(),
	}
}

func (m mapper) point(v mgl64.Vec2) image.Point {
	return image.Pt(
		int((v[0]-m.vp.Min[0])*m.sx),
		int((m.vp.Max[1]-v[1])*m.sy),
	)
}

var _ render.Rasterizer = (*Rasterizer)(nil)

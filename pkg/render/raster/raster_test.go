package raster

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-finch/pkg/path"
	"github.com/teslashibe/go-finch/pkg/pose"
	"github.com/teslashibe/go-finch/pkg/render"
)

func TestMapper_FlipsY(t *testing.T) {
	vp := path.Bounds{Min: mgl64.Vec2{0, 0}, Max: mgl64.Vec2{10, 10}}
	m := newMapper(vp, 100, 100)

	if p := m.point(mgl64.Vec2{0, 10}); p.X != 0 || p.Y != 0 {
		t.Errorf("top-left: got %v, want (0, 0)", p)
	}
	if p := m.point(mgl64.Vec2{10, 0}); p.X != 100 || p.Y != 100 {
		t.Errorf("bottom-right: got %v, want (100, 100)", p)
	}
}

func TestRasterizer_PNG(t *testing.T) {
	rec := path.NewRecorder()
	rec.Record(path.Segment{Start: mgl64.Vec2{0, 0}, End: mgl64.Vec2{10, 0}, Drawn: true})
	rec.Record(path.Segment{Start: mgl64.Vec2{10, 0}, End: mgl64.Vec2{10, 5}, Drawn: false})
	a := render.Artifact{Segments: rec.Snapshot(), Pose: pose.New(10, 5, 90), Bounds: rec.Bounds()}

	data, err := New().PNG(a)
	if err != nil {
		t.Fatalf("PNG failed: %v", err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if cfg.Width != DefaultWidth {
		t.Errorf("width: got %d, want %d", cfg.Width, DefaultWidth)
	}
	// 12 x 6 cm viewport (10 x 5 plus 10% margins) at 600px wide.
	if cfg.Height != 300 {
		t.Errorf("height: got %d, want 300", cfg.Height)
	}
}

func TestRasterizer_TallNarrowDrawingIsClamped(t *testing.T) {
	a := render.Artifact{
		Segments: []path.Segment{{End: mgl64.Vec2{0, 1e11}, Drawn: true}},
		Pose:     pose.New(0, 1e11, 90),
		Bounds:   path.Bounds{Min: mgl64.Vec2{0, 0}, Max: mgl64.Vec2{path.MinExtent, 1e11}},
	}

	data, err := New().PNG(a)
	if err != nil {
		t.Fatalf("PNG failed: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if cfg.Width != DefaultWidth || cfg.Height != DefaultMaxHeight {
		t.Errorf("size: got %dx%d, want %dx%d", cfg.Width, cfg.Height, DefaultWidth, DefaultMaxHeight)
	}
}

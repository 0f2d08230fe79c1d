package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-finch/pkg/path"
	"github.com/teslashibe/go-finch/pkg/pose"
)

// SVG image sizing, in pixels.
const (
	SVGWidth     = 400
	SVGMaxHeight = 400
	SVGMinHeight = 2
)

// ImageSize returns the pixel size for an image width pixels wide that keeps
// the viewport's aspect ratio. Height is clamped to [minH, maxH]; maxH <= 0
// means no upper limit.
func ImageSize(vp path.Bounds, width, minH, maxH int) (w, h int) {
	// Clamp before converting: a tall, narrow viewport overflows int.
	hf := float64(width) * vp.Height() / vp.Width()
	limit := float64(math.MaxInt32)
	if maxH > 0 {
		limit = float64(maxH)
	}
	hf = math.Min(hf, limit)
	return width, max(minH, int(hf))
}

// SVG encodes the artifact as a standalone SVG document. The drawing's +Y
// points up; SVG's points down, so every y coordinate is negated.
func SVG(a Artifact) []byte {
	vp := a.Viewport()
	w, h := ImageSize(vp, SVGWidth, SVGMinHeight, SVGMaxHeight)
	extent := math.Max(vp.Width(), vp.Height())
	stroke := extent / 200

	// viewBox in flipped coordinates: top edge is -max.y.
	vx, vy, vw, vh := vp.Min[0], -vp.Max[1], vp.Width(), vp.Height()

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="%.3f %.3f %.3f %.3f">`+"\n",
		w, h, vx, vy, vw, vh)
	fmt.Fprintf(&b, `  <rect x="%.3f" y="%.3f" width="%.3f" height="%.3f" fill="white"/>`+"\n", vx, vy, vw, vh)

	if d := pathData(a.Segments, false); d != "" {
		fmt.Fprintf(&b, `  <path d="%s" fill="none" stroke="#999999" stroke-width="%.4f" stroke-dasharray="%.4f"/>`+"\n",
			d, stroke, stroke*4)
	}
	if d := pathData(a.Segments, true); d != "" {
		fmt.Fprintf(&b, `  <path d="%s" fill="none" stroke="black" stroke-width="%.4f" stroke-linecap="round" stroke-linejoin="round"/>`+"\n",
			d, stroke)
	}

	marker := headingMarker(a.Pose, extent*0.03)
	fmt.Fprintf(&b, `  <polygon points="%s" fill="#d62728" fill-opacity="0.8"/>`+"\n", marker)
	b.WriteString("</svg>\n")
	return []byte(b.String())
}

// pathData builds an SVG path over the segments whose Drawn flag equals
// drawn. Runs of touching segments share one subpath.
func pathData(segments []path.Segment, drawn bool) string {
	var b strings.Builder
	var last mgl64.Vec2
	open := false
	for _, s := range segments {
		if s.Drawn != drawn {
			open = false
			continue
		}
		if !open || s.Start != last {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "M %.3f,%.3f", s.Start[0], flipY(s.Start[1]))
		}
		fmt.Fprintf(&b, " L %.3f,%.3f", s.End[0], flipY(s.End[1]))
		last, open = s.End, true
	}
	return b.String()
}

// headingMarker returns the SVG points of a triangle at p pointing along
// its heading.
func headingMarker(p pose.Pose, size float64) string {
	tip := p.Position().Add(p.Direction().Mul(size))
	back := p.Turn(180).Direction().Mul(size * 0.5)
	left := p.Position().Add(back).Add(p.Turn(90).Direction().Mul(size * 0.5))
	right := p.Position().Add(back).Add(p.Turn(-90).Direction().Mul(size * 0.5))

	pts := make([]string, 0, 3)
	for _, v := range []mgl64.Vec2{tip, left, right} {
		pts = append(pts, fmt.Sprintf("%.3f,%.3f", v[0], flipY(v[1])))
	}
	return strings.Join(pts, " ")
}

// flipY maps a drawing y to SVG y without producing negative zero.
func flipY(y float64) float64 {
	return 0 - y
}

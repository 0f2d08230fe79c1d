// Package path records the strokes a simulated robot leaves behind.
//
// A Recorder is append-only: segments are kept in the order they were
// produced, which is also the order a renderer layers them. Every translation
// is recorded, including pen-up travel (Drawn == false), so consecutive
// segments always join end to start.
package path

import (
	"iter"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// MinExtent is the smallest width or height Bounds will report.
const MinExtent = 1e-6

// Segment is one straight stroke between two positions.
type Segment struct {
	Start mgl64.Vec2 `json:"start"`
	End   mgl64.Vec2 `json:"end"`
	Drawn bool       `json:"drawn"`
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return s.End.Sub(s.Start).Len()
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min mgl64.Vec2 `json:"min"`
	Max mgl64.Vec2 `json:"max"`
}

// DefaultBounds is reported before anything has been recorded.
func DefaultBounds() Bounds {
	return Bounds{Min: mgl64.Vec2{-1, -1}, Max: mgl64.Vec2{1, 1}}
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 {
	return b.Max[0] - b.Min[0]
}

// Height returns the vertical extent.
func (b Bounds) Height() float64 {
	return b.Max[1] - b.Min[1]
}

// Include returns b grown to contain p.
func (b Bounds) Include(p mgl64.Vec2) Bounds {
	return Bounds{
		Min: mgl64.Vec2{math.Min(b.Min[0], p[0]), math.Min(b.Min[1], p[1])},
		Max: mgl64.Vec2{math.Max(b.Max[0], p[0]), math.Max(b.Max[1], p[1])},
	}
}

// Pad returns b grown on each side by frac of its extent.
func (b Bounds) Pad(frac float64) Bounds {
	dx, dy := b.Width()*frac, b.Height()*frac
	return Bounds{
		Min: mgl64.Vec2{b.Min[0] - dx, b.Min[1] - dy},
		Max: mgl64.Vec2{b.Max[0] + dx, b.Max[1] + dy},
	}
}

// ensureExtent widens a zero-size axis symmetrically around its centre.
func (b Bounds) ensureExtent() Bounds {
	for axis := 0; axis < 2; axis++ {
		if ext := b.Max[axis] - b.Min[axis]; ext < MinExtent {
			grow := (MinExtent - ext) / 2
			b.Min[axis] -= grow
			b.Max[axis] += grow
		}
	}
	return b
}

// Recorder holds the chronological list of segments for one robot.
// It is not safe for concurrent use.
type Recorder struct {
	segments []Segment
	bounds   Bounds
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends seg.
func (r *Recorder) Record(seg Segment) {
	if len(r.segments) == 0 {
		r.bounds = Bounds{Min: seg.Start, Max: seg.Start}
	}
	r.bounds = r.bounds.Include(seg.Start).Include(seg.End)
	r.segments = append(r.segments, seg)
}

// Segments iterates over the recorded segments in order. The sequence can
// be ranged over any number of times; each pass sees the segments recorded
// up to the moment it started, even if the recorder is appended to or reset
// during the pass.
func (r *Recorder) Segments() iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		// Record only appends past len and Reset drops the slice, so this
		// header keeps pointing at unchanged elements.
		segs := r.segments
		for _, s := range segs {
			if !yield(s) {
				return
			}
		}
	}
}

// Snapshot returns a copy of the recorded segments.
func (r *Recorder) Snapshot() []Segment {
	return slices.Clone(r.segments)
}

// Len returns the number of recorded segments.
func (r *Recorder) Len() int {
	return len(r.segments)
}

// Bounds returns the box around every recorded endpoint, or DefaultBounds
// when nothing has been recorded. Neither extent is ever zero.
func (r *Recorder) Bounds() Bounds {
	if len(r.segments) == 0 {
		return DefaultBounds()
	}
	return r.bounds.ensureExtent()
}

// DrawnLength sums the lengths of segments made with the pen down.
func (r *Recorder) DrawnLength() float64 {
	var total float64
	for _, s := range r.segments {
		if s.Drawn {
			total += s.Length()
		}
	}
	return total
}

// TravelLength sums the lengths of pen-up segments.
func (r *Recorder) TravelLength() float64 {
	var total float64
	for _, s := range r.segments {
		if !s.Drawn {
			total += s.Length()
		}
	}
	return total
}

// Reset discards everything recorded so far.
func (r *Recorder) Reset() {
	r.segments = nil
	r.bounds = Bounds{}
}

// Package eraser implements the object eraser: a click removes whole strokes
// and text boxes under the pointer, never parts of them.
package eraser

import (
	"github.com/example/inkpane/internal/geom"
	"github.com/example/inkpane/internal/stroke"
	"github.com/example/inkpane/internal/tool"
)

// DefaultFactor multiplies the pen width to get the hit radius.
const DefaultFactor = 2.0

// StrokeStore is the part of the stroke engine the eraser needs.
type StrokeStore interface {
	RemoveWhere(func(stroke.Stroke) bool) []stroke.Stroke
}

// OverlayStore removes every text box containing a point and reports their
// ids. It is responsible for clearing the selection when needed.
type OverlayStore interface {
	RemoveContaining(p geom.Vec) []string
}

// Result lists what a single click removed.
type Result struct {
	Strokes  []string
	Overlays []string
}

// Empty reports whether nothing was removed.
func (r Result) Empty() bool { return len(r.Strokes) == 0 && len(r.Overlays) == 0 }

// Eraser deletes strokes and overlays near a point.
type Eraser struct {
	strokes  StrokeStore
	overlays OverlayStore
	factor   float64
}

// Option configures an Eraser.
type Option func(*Eraser)

// WithFactor sets the radius multiplier applied to the line width.
func WithFactor(f float64) Option {
	return func(e *Eraser) {
		if f > 0 {
			e.factor = f
		}
	}
}

// New returns an Eraser working on the given stores. Either store may be nil.
func New(strokes StrokeStore, overlays OverlayStore, opts ...Option) *Eraser {
	e := &Eraser{strokes: strokes, overlays: overlays, factor: DefaultFactor}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Radius returns the hit radius for the given line width.
func (e *Eraser) Radius(lineWidth float64) float64 { return lineWidth * e.factor }

// EraseAt removes every stroke with a sample within the hit radius of p and
// every overlay whose rectangle contains p. It does nothing unless caps
// allows erasing.
func (e *Eraser) EraseAt(p geom.Point, lineWidth float64, caps tool.Capabilities) Result {
	var res Result
	if !caps.CanErase {
		return res
	}
	radius := e.Radius(lineWidth)
	if e.strokes != nil {
		for _, s := range e.strokes.RemoveWhere(func(s stroke.Stroke) bool { return Hits(s, p, radius) }) {
			res.Strokes = append(res.Strokes, s.ID)
		}
	}
	if e.overlays != nil {
		res.Overlays = e.overlays.RemoveContaining(p.Vec())
	}
	return res
}

// Hits reports whether any sample of s lies strictly closer than radius
// to p.
func Hits(s stroke.Stroke, p geom.Point, radius float64) bool {
	for _, q := range s.Points {
		if geom.Dist(p, q) < radius {
			return true
		}
	}
	return false
}

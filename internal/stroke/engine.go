// Package stroke captures freehand pen input into strokes and renders them
// as filled, pressure-sensitive outlines.
package stroke

import (
	"github.com/google/uuid"

	"github.com/example/inkpane/internal/geom"
	"github.com/example/inkpane/internal/tool"
)

// Stroke is a committed or in-progress freehand mark.
type Stroke struct {
	ID     string
	Points []geom.Point
	Color  string
	Width  float64
}

// Bounds returns the axis-aligned box around the stroke's samples.
func (s Stroke) Bounds() geom.Rect {
	if len(s.Points) == 0 {
		return geom.Rect{}
	}
	minX, minY := s.Points[0].X, s.Points[0].Y
	maxX, maxY := minX, minY
	for _, p := range s.Points[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return geom.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// zeroLength reports whether every sample sits on the first one.
func (s Stroke) zeroLength() bool {
	for _, p := range s.Points[1:] {
		if p.X != s.Points[0].X || p.Y != s.Points[0].Y {
			return false
		}
	}
	return true
}

const (
	DefaultColor = "#ff0000"
	DefaultWidth = 2.0
)

// Engine owns the committed strokes and the stroke being drawn.
type Engine struct {
	strokes []Stroke
	active  *Stroke
	color   string
	width   float64
	newID   func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithColor sets the initial pen color.
func WithColor(c string) Option { return func(e *Engine) { e.color = c } }

// WithWidth sets the initial pen width.
func WithWidth(w float64) Option { return func(e *Engine) { e.width = w } }

// WithIDSource replaces the id generator, mainly for tests.
func WithIDSource(fn func() string) Option { return func(e *Engine) { e.newID = fn } }

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{color: DefaultColor, width: DefaultWidth, newID: uuid.NewString}
	for _, o := range opts {
		o(e)
	}
	if e.width <= 0 {
		e.width = DefaultWidth
	}
	return e
}

// Color returns the pen color used for the next commit.
func (e *Engine) Color() string { return e.color }

// Width returns the pen width used for the next commit.
func (e *Engine) Width() float64 { return e.width }

// SetColor changes the pen color.
func (e *Engine) SetColor(c string) {
	e.color = c
	if e.active != nil {
		e.active.Color = c
	}
}

// SetWidth changes the pen width. Non-positive widths are ignored.
func (e *Engine) SetWidth(w float64) {
	if w <= 0 {
		return
	}
	e.width = w
	if e.active != nil {
		e.active.Width = w
	}
}

// Begin starts a stroke at p. It does nothing unless caps allows drawing.
func (e *Engine) Begin(p geom.Point, caps tool.Capabilities) bool {
	if !caps.CanDraw {
		return false
	}
	e.active = &Stroke{
		Points: []geom.Point{p.Normalized()},
		Color:  e.color,
		Width:  e.width,
	}
	return true
}

// Extend appends p to the active stroke, if there is one.
func (e *Engine) Extend(p geom.Point) bool {
	if e.active == nil {
		return false
	}
	e.active.Points = append(e.active.Points, p.Normalized())
	return true
}

// End commits the active stroke. Empty strokes and strokes whose samples all
// coincide are discarded and ok is false.
func (e *Engine) End() (s Stroke, ok bool) {
	if e.active == nil {
		return Stroke{}, false
	}
	s = *e.active
	e.active = nil
	if len(s.Points) == 0 || s.zeroLength() {
		return Stroke{}, false
	}
	s.ID = e.newID()
	s.Color = e.color
	s.Width = e.width
	e.strokes = append(e.strokes, s)
	return s, true
}

// Drawing reports whether a stroke is in progress.
func (e *Engine) Drawing() bool { return e.active != nil }

// Cancel drops the active stroke without committing it.
func (e *Engine) Cancel() { e.active = nil }

// Clear removes every stroke, including the active one.
func (e *Engine) Clear() {
	e.strokes = nil
	e.active = nil
}

// Strokes returns the committed strokes in commit order.
func (e *Engine) Strokes() []Stroke {
	out := make([]Stroke, len(e.strokes))
	copy(out, e.strokes)
	return out
}

// Active returns a copy of the stroke in progress.
func (e *Engine) Active() (Stroke, bool) {
	if e.active == nil {
		return Stroke{}, false
	}
	s := *e.active
	s.Points = append([]geom.Point(nil), e.active.Points...)
	return s, true
}

// RemoveWhere deletes every committed stroke matched by fn and returns them.
func (e *Engine) RemoveWhere(fn func(Stroke) bool) []Stroke {
	var removed []Stroke
	kept := e.strokes[:0:0]
	for _, s := range e.strokes {
		if fn(s) {
			removed = append(removed, s)
			continue
		}
		kept = append(kept, s)
	}
	e.strokes = kept
	return removed
}

// Remap multiplies the coordinates of every stroke by sc.
func (e *Engine) Remap(sc geom.Scale) {
	if sc.Identity() {
		return
	}
	scale := func(s Stroke) Stroke {
		pts := make([]geom.Point, len(s.Points))
		for i, p := range s.Points {
			pts[i] = p.Scaled(sc)
		}
		s.Points = pts
		return s
	}
	for i := range e.strokes {
		e.strokes[i] = scale(e.strokes[i])
	}
	if e.active != nil {
		a := scale(*e.active)
		e.active = &a
	}
}

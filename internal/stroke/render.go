package stroke

import (
	"image"
	"image/draw"

	"golang.org/x/image/vector"

	"github.com/example/inkpane/internal/theme"
)

// Renderer fills stroke outlines into an RGBA surface.
type Renderer struct {
	Options OutlineOptions
	z       vector.Rasterizer
}

// NewRenderer returns a Renderer using opts for every outline.
func NewRenderer(opts OutlineOptions) *Renderer {
	return &Renderer{Options: opts}
}

// Draw paints committed strokes oldest first, then the active stroke if
// there is one, so later marks cover earlier ones.
func (r *Renderer) Draw(dst *image.RGBA, committed []Stroke, active *Stroke) {
	opts := r.Options
	opts.Complete = true
	for _, s := range committed {
		r.fill(dst, s, opts)
	}
	if active != nil {
		opts.Complete = false
		r.fill(dst, *active, opts)
	}
}

func (r *Renderer) fill(dst *image.RGBA, s Stroke, opts OutlineOptions) {
	poly := Outline(s.Points, s.Width, opts)
	if len(poly) < 3 {
		return
	}
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	r.z.Reset(b.Dx(), b.Dy())
	r.z.DrawOp = draw.Over
	ox, oy := float32(b.Min.X), float32(b.Min.Y)
	r.z.MoveTo(float32(poly[0].X)-ox, float32(poly[0].Y)-oy)
	for _, p := range poly[1:] {
		r.z.LineTo(float32(p.X)-ox, float32(p.Y)-oy)
	}
	r.z.ClosePath()
	r.z.Draw(dst, b, image.NewUniform(theme.MustColor(s.Color)), image.Point{})
}

package session

import (
	"image"
	"image/draw"

	"github.com/example/inkpane/internal/overlay"
	"github.com/example/inkpane/internal/stroke"
	"github.com/example/inkpane/internal/theme"
	"github.com/example/inkpane/internal/tool"
)

// Frame is an immutable picture of the session handed to the paint
// goroutine. Nothing in it is modified after it is built.
type Frame struct {
	Annotating bool
	Tool       tool.Tool
	Color      string
	Width      float64
	Theme      *theme.Theme
	Backdrop   *image.RGBA
	Strokes    []stroke.Stroke
	Active     *stroke.Stroke
	Overlays   overlay.Snapshot
}

// Painter renders frames. It keeps rasterizer state and a font face, so
// each goroutine that paints needs its own.
type Painter struct {
	strokes  *stroke.Renderer
	overlays *overlay.Renderer
}

// NewPainter returns a Painter for the given outline tunables, text size
// and style panel swatches.
func NewPainter(outline stroke.OutlineOptions, fontSize float64, pal overlay.Palette) *Painter {
	return &Painter{
		strokes:  stroke.NewRenderer(outline),
		overlays: overlay.NewRenderer(nil, fontSize, pal),
	}
}

// Paint replaces the contents of dst with f: the backdrop or the fallback
// colour, then strokes, then text boxes and their chrome.
func (p *Painter) Paint(dst *image.RGBA, f Frame) {
	th := f.Theme
	if th == nil {
		th = theme.Default()
	}
	b := dst.Bounds()
	draw.Draw(dst, b, image.NewUniform(th.SurfaceFallback), image.Point{}, draw.Src)
	if f.Backdrop != nil {
		draw.Draw(dst, b, f.Backdrop, f.Backdrop.Bounds().Min, draw.Src)
	}
	p.strokes.Draw(dst, f.Strokes, f.Active)
	p.overlays.Theme = th
	p.overlays.Shadow.Opacity = float64(th.Shadow.A) / 255
	p.overlays.Draw(dst, f.Overlays)
}

package appstate

import (
	"context"
	"image"
	"log"

	"golang.org/x/exp/shiny/screen"

	"github.com/example/inkpane/internal/session"
	"github.com/example/inkpane/internal/theme"
)

// paintState is everything the paint goroutine needs for one frame.
type paintState struct {
	width, height int
	frame         session.Frame
	toolbar       image.Rectangle
}

func (st paintState) view() toolbarView {
	return toolbarView{
		annotating: st.frame.Annotating,
		tool:       st.frame.Tool,
		color:      st.frame.Color,
		width:      st.frame.Width,
	}
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, p *session.Painter, tb *toolbar, st paintState) {
	if st.width <= 0 || st.height <= 0 {
		return
	}
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	composeFrame(b.RGBA(), p, tb, st)
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// composeFrame draws the annotation surface when annotating and the toolbar
// on top in both modes.
func composeFrame(dst *image.RGBA, p *session.Painter, tb *toolbar, st paintState) {
	th := st.frame.Theme
	if th == nil {
		th = theme.Default()
	}
	if st.frame.Annotating {
		p.Paint(dst, st.frame)
	}
	if !st.toolbar.Empty() {
		tb.draw(dst, st.toolbar, th, st.view())
	}
}

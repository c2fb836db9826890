package overlay

import (
	"github.com/example/inkpane/internal/geom"
)

const handleSize = 8

// handleRects returns the hit rectangles of the eight resize handles,
// centred on the corners and edge midpoints of r.
func handleRects(r geom.Rect) map[Handle]geom.Rect {
	hs := float64(handleSize) / 2
	cx := r.X + r.Width/2
	cy := r.Y + r.Height/2
	at := func(x, y float64) geom.Rect {
		return geom.Rect{X: x - hs, Y: y - hs, Width: handleSize, Height: handleSize}
	}
	return map[Handle]geom.Rect{
		HandleNW: at(r.X, r.Y),
		HandleN:  at(cx, r.Y),
		HandleNE: at(r.Right(), r.Y),
		HandleE:  at(r.Right(), cy),
		HandleSE: at(r.Right(), r.Bottom()),
		HandleS:  at(cx, r.Bottom()),
		HandleSW: at(r.X, r.Bottom()),
		HandleW:  at(r.X, cy),
	}
}

// handleOrder is the drawing and hit-test order. Corners win over edges
// where they overlap on small boxes.
var handleOrder = []Handle{HandleNW, HandleNE, HandleSE, HandleSW, HandleN, HandleE, HandleS, HandleW}

func handleAt(r geom.Rect, p geom.Vec) Handle {
	rects := handleRects(r)
	for _, h := range handleOrder {
		if rects[h].Contains(p) {
			return h
		}
	}
	return NoHandle
}

// resize applies a pointer delta d to origin for handle h. Each dimension is
// clamped to its minimum on its own. West and north drags keep the opposite
// edge fixed.
func resize(origin geom.Rect, h Handle, d geom.Vec, minW, minH float64) geom.Rect {
	r := origin
	north, south, east, west := h.edges()
	switch {
	case east:
		r.Width = max(minW, origin.Width+d.X)
	case west:
		r.Width = max(minW, origin.Width-d.X)
		r.X = origin.Right() - r.Width
	}
	switch {
	case south:
		r.Height = max(minH, origin.Height+d.Y)
	case north:
		r.Height = max(minH, origin.Height-d.Y)
		r.Y = origin.Bottom() - r.Height
	}
	return r
}

// Palette lists the swatches offered by the style panel.
type Palette struct {
	Text       []string
	Background []string
}

// DefaultPalette returns the built-in swatches.
func DefaultPalette() Palette {
	return Palette{
		Text:       []string{"#000000", "#ffffff", "#f44336", "#4caf50", "#2196f3", "#ffeb3b", "#9c27b0", "#ff9800"},
		Background: []string{"#ffffff", "#000000", "#fff59d", "#c8e6c9", "#bbdefb", "#ffcdd2", "#e1bee7", "#eeeeee"},
	}
}

const (
	panelGap     = 12
	panelPadding = 6
	panelLabel   = 40
	swatchSize   = 16
	swatchGap    = 4
	opacitySteps = 10
	opacityCell  = 14
)

type controlKind int

const (
	textSwatch controlKind = iota
	backgroundSwatch
	opacityCellControl
)

// control is one clickable element of the style panel.
type control struct {
	kind    controlKind
	rect    geom.Rect
	color   string
	opacity float64
}

// panel is the style panel laid out next to a box.
type panel struct {
	rect     geom.Rect
	rows     [3]geom.Rect
	controls []control
}

// layoutPanel places the style panel to the right of b.
func layoutPanel(b TextBox, pal Palette) panel {
	cols := max(len(pal.Text), len(pal.Background))
	swatchW := float64(cols*(swatchSize+swatchGap) - swatchGap)
	barW := float64((opacitySteps + 1) * opacityCell)
	w := panelPadding*2 + panelLabel + max(swatchW, barW)
	h := float64(panelPadding*2 + 3*swatchSize + 2*swatchGap)
	p := panel{rect: geom.Rect{X: b.Rect().Right() + panelGap, Y: b.Y, Width: w, Height: h}}

	x0 := p.rect.X + panelPadding + panelLabel
	for row := range p.rows {
		y := p.rect.Y + panelPadding + float64(row*(swatchSize+swatchGap))
		p.rows[row] = geom.Rect{X: p.rect.X + panelPadding, Y: y, Width: w - panelPadding*2, Height: swatchSize}
	}
	for i, c := range pal.Text {
		p.controls = append(p.controls, control{
			kind:  textSwatch,
			rect:  geom.Rect{X: x0 + float64(i*(swatchSize+swatchGap)), Y: p.rows[0].Y, Width: swatchSize, Height: swatchSize},
			color: c,
		})
	}
	for i, c := range pal.Background {
		p.controls = append(p.controls, control{
			kind:  backgroundSwatch,
			rect:  geom.Rect{X: x0 + float64(i*(swatchSize+swatchGap)), Y: p.rows[1].Y, Width: swatchSize, Height: swatchSize},
			color: c,
		})
	}
	for i := 0; i <= opacitySteps; i++ {
		p.controls = append(p.controls, control{
			kind:    opacityCellControl,
			rect:    geom.Rect{X: x0 + float64(i*opacityCell), Y: p.rows[2].Y, Width: opacityCell, Height: swatchSize},
			opacity: float64(i) / opacitySteps,
		})
	}
	return p
}

// controlAt returns the control under p. The rectangles share edges, so the
// first match wins.
func (p panel) controlAt(at geom.Vec) (control, bool) {
	for _, c := range p.controls {
		if c.rect.Contains(at) {
			return c, true
		}
	}
	return control{}, false
}

// wrapLines breaks text into lines of at most cols runes, honouring explicit
// newlines. Long words are split.
func wrapLines(text string, cols int) []string {
	if cols < 1 {
		cols = 1
	}
	var lines []string
	line := []rune{}
	flush := func() {
		lines = append(lines, string(line))
		line = line[:0]
	}
	for _, r := range text {
		if r == '\n' {
			flush()
			continue
		}
		if len(line) == cols {
			if r == ' ' {
				flush()
				continue
			}
			if i := lastSpace(line); i > 0 {
				rest := append([]rune(nil), line[i+1:]...)
				line = line[:i]
				flush()
				line = append(line, rest...)
			} else {
				flush()
			}
		}
		line = append(line, r)
	}
	flush()
	return lines
}

func lastSpace(line []rune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i] == ' ' {
			return i
		}
	}
	return -1
}

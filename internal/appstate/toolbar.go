package appstate

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/inkpane/internal/theme"
	"github.com/example/inkpane/internal/tool"
)

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
	StateActive
)

// Button represents an interactive toolbar element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, th *theme.Theme, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states. The
// cache is dropped when the rectangle or the theme changes.
type CacheButton struct {
	Button
	theme *theme.Theme
	cache [4]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, th *theme.Theme, state ButtonState) {
	if cb.theme != th {
		cb.theme = th
		cb.cache = [4]*image.RGBA{}
	}
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, th, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) Rect() image.Rectangle { return cb.Button.Rect() }

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [4]*image.RGBA{}
	}
}

func (cb *CacheButton) Activate() { cb.Button.Activate() }

// LabelButton is a toolbar button with a text label.
type LabelButton struct {
	label      string
	rect       image.Rectangle
	onActivate func()
}

func (lb *LabelButton) Draw(dst *image.RGBA, th *theme.Theme, state ButtonState) {
	drawButtonFace(dst, lb.rect, th, state)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.ToolbarText), Face: basicfont.Face7x13,
		Dot: fixed.P(lb.rect.Min.X+4, lb.rect.Min.Y+(lb.rect.Dy()+9)/2)}
	d.DrawString(lb.label)
}

func (lb *LabelButton) Rect() image.Rectangle { return lb.rect }

func (lb *LabelButton) SetRect(r image.Rectangle) { lb.rect = r }

func (lb *LabelButton) Activate() {
	if lb.onActivate != nil {
		lb.onActivate()
	}
}

// ToolButton selects an annotation tool.
type ToolButton struct {
	LabelButton
	tool tool.Tool
}

// SwatchButton shows the pen colour or width and cycles it when clicked.
// Its face depends on live values so it is never cached.
type SwatchButton struct {
	LabelButton
	showsWidth bool
	color      string
	width      float64
}

func (sb *SwatchButton) Draw(dst *image.RGBA, th *theme.Theme, state ButtonState) {
	drawButtonFace(dst, sb.rect, th, state)
	inner := sb.rect.Inset(6)
	if !sb.showsWidth {
		c, err := theme.ParseColor(sb.color)
		if err != nil {
			c = th.ToolbarText
		}
		draw.Draw(dst, inner, image.NewUniform(c), image.Point{}, draw.Src)
		strokeRect(dst, inner, 1, th.ButtonBorder)
	} else {
		w := sb.width
		h := max(1, min(int(w+0.5), inner.Dy()))
		cy := inner.Min.Y + inner.Dy()/2
		bar := image.Rect(inner.Min.X, cy-h/2, inner.Max.X-18, cy-h/2+h)
		draw.Draw(dst, bar, image.NewUniform(th.ToolbarText), image.Point{}, draw.Src)
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.ToolbarText), Face: basicfont.Face7x13,
			Dot: fixed.P(inner.Max.X-16, cy+4)}
		d.DrawString(strconv.FormatFloat(w, 'f', 0, 64))
	}
}

func drawButtonFace(dst *image.RGBA, r image.Rectangle, th *theme.Theme, state ButtonState) {
	c := th.ButtonBackground
	switch state {
	case StateHover:
		c = blend(th.ButtonBackground, th.ButtonActive, 0.4)
	case StatePressed, StateActive:
		c = th.ButtonActive
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
	strokeRect(dst, r, 1, th.ButtonBorder)
}

func blend(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5) }
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), mix(a.A, b.A)}
}

func strokeRect(img *image.RGBA, rect image.Rectangle, thick int, col color.Color) {
	u := image.NewUniform(col)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+thick), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Max.Y-thick, rect.Max.X, rect.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+thick, rect.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Max.X-thick, rect.Min.Y, rect.Max.X, rect.Max.Y), u, image.Point{}, draw.Src)
}

// toolbarActions are the callbacks the toolbar buttons trigger.
type toolbarActions struct {
	toggle     func()
	selectTool func(tool.Tool)
	clear      func()
	cycleColor func()
	cycleWidth func()
}

// toolbarView is what the toolbar shows besides its own hover state.
type toolbarView struct {
	annotating bool
	tool       tool.Tool
	color      string
	width      float64
}

// toolbar lays out and hit-tests the button row. Layout and input happen on
// the event goroutine and drawing on the paint goroutine, so every method
// takes the lock.
type toolbar struct {
	mu      sync.Mutex
	buttons []Button
	hover   int
	pressed int
}

const (
	buttonMinWidth = 44
	buttonGap      = 2
)

func newToolbar(a toolbarActions) *toolbar {
	tb := &toolbar{hover: -1, pressed: -1}
	tb.buttons = append(tb.buttons, &CacheButton{Button: &LabelButton{label: "Annotate", onActivate: a.toggle}})
	for _, t := range tool.All() {
		t := t
		tb.buttons = append(tb.buttons, &CacheButton{Button: &ToolButton{
			LabelButton: LabelButton{label: toolLabel(t), onActivate: func() { a.selectTool(t) }},
			tool:        t,
		}})
	}
	tb.buttons = append(tb.buttons,
		&CacheButton{Button: &LabelButton{label: "Clear", onActivate: a.clear}},
		&SwatchButton{LabelButton: LabelButton{onActivate: a.cycleColor}},
		&SwatchButton{LabelButton: LabelButton{onActivate: a.cycleWidth}, showsWidth: true},
	)
	return tb
}

func toolLabel(t tool.Tool) string {
	switch t {
	case tool.Pen:
		return "P:Pen"
	case tool.Eraser:
		return "E:Erase"
	case tool.Text:
		return "T:Text"
	case tool.Selector:
		return "M:Select"
	}
	return t.String()
}

// layout places the buttons left to right inside bounds. Label widths are
// measured with the toolbar font and the row is stretched to fill bounds.
func (tb *toolbar) layout(bounds image.Rectangle) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	meas := &font.Drawer{Face: basicfont.Face7x13}
	widths := make([]int, len(tb.buttons))
	total := 0
	for i, b := range tb.buttons {
		w := buttonMinWidth
		if lb := labelOf(b); lb != "" {
			w = max(w, meas.MeasureString(lb).Ceil()+8)
		}
		widths[i] = w
		total += w + buttonGap
	}
	extra := 0
	if spare := bounds.Dx() - total; spare > 0 && len(widths) > 0 {
		extra = spare / len(widths)
	}
	x := bounds.Min.X
	for i, b := range tb.buttons {
		w := widths[i] + extra
		b.SetRect(image.Rect(x, bounds.Min.Y, x+w, bounds.Max.Y))
		x += w + buttonGap
	}
}

func labelOf(b Button) string {
	if cb, ok := b.(*CacheButton); ok {
		b = cb.Button
	}
	switch v := b.(type) {
	case *LabelButton:
		return v.label
	case *ToolButton:
		return v.label
	}
	return ""
}

// buttonAt returns the index of the button under p, or -1.
func (tb *toolbar) buttonAt(p image.Point) int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.indexAt(p)
}

func (tb *toolbar) indexAt(p image.Point) int {
	for i, b := range tb.buttons {
		if p.In(b.Rect()) {
			return i
		}
	}
	return -1
}

// hoverAt updates the hover highlight and reports whether it changed.
func (tb *toolbar) hoverAt(p image.Point) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	i := tb.indexAt(p)
	if i == tb.hover {
		return false
	}
	tb.hover = i
	return true
}

// press marks the button under p as pressed and returns its index.
func (tb *toolbar) press(p image.Point) int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.pressed = tb.indexAt(p)
	return tb.pressed
}

// release activates the pressed button when the pointer is still over it.
// The callback runs without the lock held.
func (tb *toolbar) release(p image.Point) bool {
	tb.mu.Lock()
	pressed := tb.pressed
	tb.pressed = -1
	var hit Button
	if pressed >= 0 && tb.indexAt(p) == pressed {
		hit = tb.buttons[pressed]
	}
	tb.mu.Unlock()
	if hit != nil {
		hit.Activate()
	}
	return pressed >= 0
}

// draw paints the toolbar background and buttons. The active tool is
// highlighted only while annotating, and the annotate button while on.
func (tb *toolbar) draw(dst *image.RGBA, bounds image.Rectangle, th *theme.Theme, v toolbarView) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	draw.Draw(dst, bounds, image.NewUniform(th.ToolbarBackground), image.Point{}, draw.Src)
	for i, b := range tb.buttons {
		if sb, ok := b.(*SwatchButton); ok {
			sb.color, sb.width = v.color, v.width
		}
		state := StateDefault
		switch {
		case i == tb.pressed:
			state = StatePressed
		case isActive(b, v.annotating, v.tool):
			state = StateActive
		case i == tb.hover:
			state = StateHover
		}
		b.Draw(dst, th, state)
	}
}

func isActive(b Button, annotating bool, active tool.Tool) bool {
	if !annotating {
		return false
	}
	if cb, ok := b.(*CacheButton); ok {
		b = cb.Button
	}
	switch v := b.(type) {
	case *ToolButton:
		return v.tool == active
	case *LabelButton:
		return v.label == "Annotate"
	}
	return false
}

// penColors and penWidths are the values the swatch buttons cycle through.
var (
	penColors = []string{"#ff0000", "#000000", "#2196f3", "#4caf50", "#ffeb3b", "#ffffff"}
	penWidths = []float64{2, 4, 8, 12}
)

func nextColor(current string) string {
	for i, c := range penColors {
		if c == current {
			return penColors[(i+1)%len(penColors)]
		}
	}
	return penColors[0]
}

func nextWidth(current float64) float64 {
	for _, w := range penWidths {
		if w > current {
			return w
		}
	}
	return penWidths[0]
}

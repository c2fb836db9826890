package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/inkpane/internal/geom"
	"github.com/example/inkpane/internal/render"
	"github.com/example/inkpane/internal/theme"
)

const (
	DefaultFontSize = 14.0
	lineHeight      = 1.5
	textPadding     = 4
	previewDash     = 5
	previewWidth    = 2
)

var (
	monoOnce sync.Once
	monoFont *opentype.Font
	monoErr  error
)

// newMonoFace returns a fresh Go Mono face. Faces keep glyph buffers and
// must not be shared between goroutines.
func newMonoFace(size float64) (font.Face, error) {
	if size <= 0 {
		size = DefaultFontSize
	}
	monoOnce.Do(func() {
		monoFont, monoErr = opentype.Parse(gomono.TTF)
	})
	if monoErr != nil {
		return nil, fmt.Errorf("parse mono font: %w", monoErr)
	}
	return opentype.NewFace(monoFont, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// Renderer draws text boxes and their chrome. A Renderer owns its font
// face, so it is used by one goroutine at a time.
type Renderer struct {
	Theme    *theme.Theme
	FontSize float64
	Palette  Palette
	Shadow   render.ShadowOptions

	face     font.Face
	faceSize float64
}

// NewRenderer returns a Renderer using th. A nil theme uses the default.
func NewRenderer(th *theme.Theme, fontSize float64, pal Palette) *Renderer {
	if th == nil {
		th = theme.Default()
	}
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	sh := render.DefaultShadowOptions()
	sh.Opacity = float64(th.Shadow.A) / 255
	return &Renderer{Theme: th, FontSize: fontSize, Palette: pal, Shadow: sh}
}

// Draw paints every box in s oldest first, then the chrome of the selected
// box and the creation preview.
func (r *Renderer) Draw(dst *image.RGBA, s Snapshot) {
	face := r.textFace()
	var selected *TextBox
	for i := range s.Boxes {
		b := s.Boxes[i]
		if b.ID == s.Selected {
			selected = &s.Boxes[i]
			render.DropShadow(dst, pixelRect(b.Rect()), r.Shadow)
		}
		r.drawBox(dst, b, face)
	}
	if selected != nil {
		rect := pixelRect(selected.Rect())
		strokeRect(dst, rect.Inset(-1), 2, r.Theme.Selection)
		if !selected.Editing {
			for _, h := range handleOrder {
				hr := pixelRect(handleRects(selected.Rect())[h])
				draw.Draw(dst, hr, image.NewUniform(r.Theme.Handle), image.Point{}, draw.Src)
				strokeRect(dst, hr, 1, r.Theme.HandleBorder)
			}
		}
		r.drawPanel(dst, *selected)
	}
	if s.Preview != nil {
		drawDashedRect(dst, pixelRect(*s.Preview), previewDash, previewWidth, r.Theme.Preview)
	}
}

func (r *Renderer) textFace() font.Face {
	if r.face != nil && r.faceSize == r.FontSize {
		return r.face
	}
	face, err := newMonoFace(r.FontSize)
	if err != nil {
		log.Printf("text face: %v", err)
		face = basicfont.Face7x13
	}
	r.face, r.faceSize = face, r.FontSize
	return face
}

func (r *Renderer) drawBox(dst *image.RGBA, b TextBox, face font.Face) {
	rect := pixelRect(b.Rect())
	alpha := image.NewUniform(color.Alpha{A: uint8(clampOpacity(b.Opacity)*255 + 0.5)})
	draw.DrawMask(dst, rect, image.NewUniform(theme.MustColor(b.Background)), image.Point{}, alpha, image.Point{}, draw.Over)

	inner := rect.Inset(textPadding)
	if inner.Empty() {
		return
	}
	clip, ok := dst.SubImage(inner).(*image.RGBA)
	if !ok {
		return
	}
	adv, ok := face.GlyphAdvance('M')
	if !ok || adv <= 0 {
		adv = fixed.I(7)
	}
	cols := inner.Dx() / max(adv.Ceil(), 1)
	lh := int(math.Round(r.FontSize * lineHeight))
	m := face.Metrics()
	lead := (lh - (m.Ascent + m.Descent).Ceil()) / 2

	fg := withOpacity(theme.MustColor(b.TextColor), b.Opacity)
	d := &font.Drawer{Dst: clip, Src: image.NewUniform(fg), Face: face}
	lines := wrapLines(b.Text, cols)
	for i, line := range lines {
		top := inner.Min.Y + i*lh
		d.Dot = fixed.P(inner.Min.X, top+lead+m.Ascent.Ceil())
		d.DrawString(line)
	}
	if b.Editing {
		last := len(lines) - 1
		x := inner.Min.X + min(d.MeasureString(lines[last]).Ceil(), inner.Dx()-1)
		top := inner.Min.Y + last*lh
		caret := image.Rect(x, top+lead, x+1, top+lh-lead)
		draw.Draw(clip, caret, image.NewUniform(r.Theme.Caret), image.Point{}, draw.Over)
	}
}

func (r *Renderer) drawPanel(dst *image.RGBA, b TextBox) {
	p := layoutPanel(b, r.Palette)
	pr := pixelRect(p.rect)
	draw.Draw(dst, pr, image.NewUniform(r.Theme.PanelBackground), image.Point{}, draw.Src)
	strokeRect(dst, pr, 1, r.Theme.PanelBorder)

	d := &font.Drawer{Dst: dst, Src: image.NewUniform(r.Theme.PanelText), Face: basicfont.Face7x13}
	for i, label := range []string{"Text", "Fill", "Alpha"} {
		row := pixelRect(p.rows[i])
		d.Dot = fixed.P(row.Min.X, row.Min.Y+12)
		d.DrawString(label)
	}
	for _, c := range p.controls {
		cr := pixelRect(c.rect)
		switch c.kind {
		case textSwatch, backgroundSwatch:
			draw.Draw(dst, cr, image.NewUniform(theme.MustColor(c.color)), image.Point{}, draw.Src)
			active := (c.kind == textSwatch && b.TextColor == c.color) ||
				(c.kind == backgroundSwatch && b.Background == c.color)
			if active {
				strokeRect(dst, cr.Inset(-1), 2, r.Theme.Selection)
			} else {
				strokeRect(dst, cr, 1, r.Theme.PanelBorder)
			}
		case opacityCellControl:
			fill := r.Theme.PanelBorder
			if c.opacity <= b.Opacity+1e-9 {
				fill = r.Theme.Selection
			}
			draw.Draw(dst, cr.Inset(1), image.NewUniform(fill), image.Point{}, draw.Src)
		}
	}
}

func pixelRect(r geom.Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.Right())), int(math.Round(r.Bottom())),
	)
}

// withOpacity scales a straight-alpha colour by o and premultiplies it.
func withOpacity(c color.RGBA, o float64) color.RGBA {
	a := float64(c.A) / 255 * clampOpacity(o)
	return color.RGBA{
		R: uint8(float64(c.R)*a + 0.5),
		G: uint8(float64(c.G)*a + 0.5),
		B: uint8(float64(c.B)*a + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

// strokeRect draws a border of the given thickness just inside rect.
func strokeRect(img *image.RGBA, rect image.Rectangle, thickness int, col color.Color) {
	u := image.NewUniform(col)
	t := thickness
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+t), u, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Max.Y-t, rect.Max.X, rect.Max.Y), u, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y+t, rect.Min.X+t, rect.Max.Y-t), u, image.Point{}, draw.Over)
	draw.Draw(img, image.Rect(rect.Max.X-t, rect.Min.Y+t, rect.Max.X, rect.Max.Y-t), u, image.Point{}, draw.Over)
}

// drawDashedLine draws an axis-aligned dashed line. Gaps are left untouched.
func drawDashedLine(img *image.RGBA, x0, y0, x1, y1, dash, thickness int, col color.Color) {
	u := image.NewUniform(col)
	horiz := y0 == y1
	if horiz && x1 < x0 {
		x0, x1 = x1, x0
	}
	if !horiz && y1 < y0 {
		y0, y1 = y1, y0
	}
	length := x1 - x0
	if !horiz {
		length = y1 - y0
	}
	for i := 0; i <= length; i += dash * 2 {
		n := min(dash, length-i+1)
		var seg image.Rectangle
		if horiz {
			seg = image.Rect(x0+i, y0, x0+i+n, y0+thickness)
		} else {
			seg = image.Rect(x0, y0+i, x0+thickness, y0+i+n)
		}
		draw.Draw(img, seg, u, image.Point{}, draw.Over)
	}
}

func drawDashedRect(img *image.RGBA, rect image.Rectangle, dash, thickness int, col color.Color) {
	if rect.Empty() {
		return
	}
	x0, y0 := rect.Min.X, rect.Min.Y
	x1, y1 := rect.Max.X-thickness, rect.Max.Y-thickness
	drawDashedLine(img, x0, y0, x1, y0, dash, thickness, col)
	drawDashedLine(img, x0, y1, x1, y1, dash, thickness, col)
	drawDashedLine(img, x0, y0, x0, y1, dash, thickness, col)
	drawDashedLine(img, x1, y0, x1, y1, dash, thickness, col)
}

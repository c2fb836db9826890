// Package session is the mode and tool controller. It owns the drawing
// surface state and routes pointer and key input to the stroke engine, the
// eraser and the overlay manager according to the active tool.
//
// A Session is not safe for concurrent use. The host calls it from its
// event goroutine only and hands Frame values to the paint goroutine.
package session

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/example/inkpane/internal/capture"
	"github.com/example/inkpane/internal/clipboard"
	"github.com/example/inkpane/internal/eraser"
	"github.com/example/inkpane/internal/geom"
	"github.com/example/inkpane/internal/notify"
	"github.com/example/inkpane/internal/overlay"
	"github.com/example/inkpane/internal/stroke"
	"github.com/example/inkpane/internal/surface"
	"github.com/example/inkpane/internal/theme"
	"github.com/example/inkpane/internal/tool"
	"github.com/example/inkpane/internal/window"
)

// Swapped in tests.
var (
	backdropFn     = capture.Backdrop
	readClipboard  = clipboard.ReadText
	writeClipboard = clipboard.WriteText
)

// DefaultDoubleClick is the longest gap between two clicks that still
// counts as a double click.
const DefaultDoubleClick = 400 * time.Millisecond

const doubleClickSlop = 4.0

// Session holds the annotation state.
type Session struct {
	annotating bool
	tool       tool.Tool

	mapper   surface.Mapper
	strokes  *stroke.Engine
	overlays *overlay.Manager
	eraser   *eraser.Eraser
	snap     overlay.Snapshot
	backdrop *image.RGBA

	win      window.Window
	notifier *notify.Notifier
	theme    *theme.Theme
	toolbar  image.Rectangle
	capture  capture.Options
	painter  *Painter

	outline     stroke.OutlineOptions
	fontSize    float64
	strokeOpts  []stroke.Option
	overlayOpts []overlay.Option
	factor      float64

	onTextBoxCreate func(overlay.TextBox)
	onClear         func()

	now         func() time.Time
	doubleClick time.Duration
	lastClick   time.Time
	lastClickAt geom.Vec
	clicks      int
}

// Option configures a Session.
type Option func(*Session)

// WithWindow sets the host window collaborator. It is wrapped with
// window.Serialize.
func WithWindow(w window.Window) Option { return func(s *Session) { s.win = w } }

// WithNotifier sets the desktop notifier. A nil notifier sends nothing.
func WithNotifier(n *notify.Notifier) Option { return func(s *Session) { s.notifier = n } }

// WithTheme sets the chrome colours.
func WithTheme(th *theme.Theme) Option { return func(s *Session) { s.theme = th } }

// WithToolbar sets the window geometry restored when annotation is turned
// off.
func WithToolbar(r image.Rectangle) Option { return func(s *Session) { s.toolbar = r } }

// WithCapture sets how the desktop backdrop is captured.
func WithCapture(opts capture.Options) Option { return func(s *Session) { s.capture = opts } }

// WithStrokeOptions passes options to the stroke engine.
func WithStrokeOptions(opts ...stroke.Option) Option {
	return func(s *Session) { s.strokeOpts = append(s.strokeOpts, opts...) }
}

// WithOverlayOptions passes options to the overlay manager.
func WithOverlayOptions(opts ...overlay.Option) Option {
	return func(s *Session) { s.overlayOpts = append(s.overlayOpts, opts...) }
}

// WithOutline sets the stroke outline tunables.
func WithOutline(o stroke.OutlineOptions) Option { return func(s *Session) { s.outline = o } }

// WithFontSize sets the text box font size in pixels.
func WithFontSize(size float64) Option { return func(s *Session) { s.fontSize = size } }

// WithEraserFactor sets the multiplier applied to the pen width to get the
// eraser radius.
func WithEraserFactor(f float64) Option { return func(s *Session) { s.factor = f } }

// WithOnTextBoxCreate registers a callback for newly committed text boxes.
func WithOnTextBoxCreate(fn func(overlay.TextBox)) Option {
	return func(s *Session) { s.onTextBoxCreate = fn }
}

// WithOnClear registers a callback invoked whenever the drawing is wiped.
func WithOnClear(fn func()) Option { return func(s *Session) { s.onClear = fn } }

// WithDoubleClick sets the double click interval.
func WithDoubleClick(d time.Duration) Option { return func(s *Session) { s.doubleClick = d } }

// New creates a Session with annotation off and the pen selected.
func New(opts ...Option) *Session {
	s := &Session{
		tool:        tool.Pen,
		win:         &window.Nop{},
		theme:       theme.Default(),
		outline:     stroke.DefaultOutlineOptions(),
		fontSize:    overlay.DefaultFontSize,
		factor:      eraser.DefaultFactor,
		now:         time.Now,
		doubleClick: DefaultDoubleClick,
	}
	for _, o := range opts {
		o(s)
	}
	if s.win == nil {
		s.win = &window.Nop{}
	}
	s.win = window.Serialize(s.win)
	if s.theme == nil {
		s.theme = theme.Default()
	}
	s.strokes = stroke.New(s.strokeOpts...)
	s.overlays = overlay.New(s.overlayOpts...)
	s.eraser = eraser.New(s.strokes, s.overlays, eraser.WithFactor(s.factor))
	s.snap = s.overlays.Snapshot()
	s.painter = s.NewPainter()
	return s
}

// SetWindow replaces the host window collaborator, for hosts that can only
// locate their window after it is mapped.
func (s *Session) SetWindow(w window.Window) {
	if w == nil {
		w = &window.Nop{}
	}
	s.win = window.Serialize(w)
}

// NewPainter returns a Painter configured like the session's own.
func (s *Session) NewPainter() *Painter {
	return NewPainter(s.outline, s.fontSize, s.overlays.Palette())
}

// Annotating reports whether annotation mode is on.
func (s *Session) Annotating() bool { return s.annotating }

// Tool returns the active tool.
func (s *Session) Tool() tool.Tool { return s.tool }

// Capabilities returns what the active tool may do right now.
func (s *Session) Capabilities() tool.Capabilities {
	return tool.CapabilitiesFor(s.annotating, s.tool)
}

// Overlays returns the latest overlay state.
func (s *Session) Overlays() overlay.Snapshot { return s.snap }

// Strokes returns the committed strokes.
func (s *Session) Strokes() []stroke.Stroke { return s.strokes.Strokes() }

// Theme returns the chrome colours in use.
func (s *Session) Theme() *theme.Theme { return s.theme }

// SetTheme replaces the chrome colours. A nil theme is ignored.
func (s *Session) SetTheme(th *theme.Theme) {
	if th != nil {
		s.theme = th
	}
}

// Toolbar returns the window geometry used while annotation is off.
func (s *Session) Toolbar() image.Rectangle { return s.toolbar }

// SetToolbar changes the toolbar geometry.
func (s *Session) SetToolbar(r image.Rectangle) { s.toolbar = r }

// Color returns the pen colour.
func (s *Session) Color() string { return s.strokes.Color() }

// Width returns the pen width.
func (s *Session) Width() float64 { return s.strokes.Width() }

// SetColor changes the pen colour. Any colour theme.ParseColor accepts is
// allowed and stored in canonical hex form.
func (s *Session) SetColor(c string) error {
	hex, err := theme.NormalizeHex(c)
	if err != nil {
		return fmt.Errorf("pen color: %w", err)
	}
	s.strokes.SetColor(hex)
	return nil
}

// SetWidth changes the pen width.
func (s *Session) SetWidth(w float64) error {
	if w <= 0 {
		return fmt.Errorf("pen width must be positive, got %v", w)
	}
	s.strokes.SetWidth(w)
	return nil
}

// SelectTool switches tools. Any stroke, creation, drag or resize in
// progress is abandoned.
func (s *Session) SelectTool(t tool.Tool) bool {
	changed := s.strokes.Drawing()
	s.strokes.Cancel()
	snap := s.overlays.Dispatch(overlay.Cancel{}, s.Capabilities())
	s.snap = snap
	changed = changed || snap.Changed || s.tool != t
	s.tool = t
	s.clicks = 0
	return changed
}

// SetOrigin records the surface's on-screen position.
func (s *Session) SetOrigin(x, y int) { s.mapper.SetOrigin(x, y) }

// Resize records a new surface size and rescales strokes, text boxes and
// the backdrop when the size actually changed.
func (s *Session) Resize(w, h int) bool {
	sc, ok := s.mapper.Resize(w, h)
	if ok {
		s.strokes.Remap(sc)
		s.snap = s.overlays.Dispatch(overlay.Remap{Scale: sc}, tool.None)
	}
	s.fitBackdrop()
	return ok
}

// Size returns the current surface size.
func (s *Session) Size() (int, int) { return s.mapper.Size() }

func (s *Session) fitBackdrop() {
	if s.backdrop == nil || !s.mapper.Sized() {
		return
	}
	w, h := s.mapper.Size()
	if b := s.backdrop.Bounds(); b.Dx() == w && b.Dy() == h {
		return
	}
	s.backdrop = surface.ScaleRaster(s.backdrop, w, h)
}

// Toggle flips annotation mode.
func (s *Session) Toggle(ctx context.Context) {
	s.SetAnnotation(ctx, !s.annotating)
}

// SetAnnotation switches annotation mode on or off and reconfigures the
// host window. Each window request is awaited before the next one is
// issued. Failures are logged.
func (s *Session) SetAnnotation(ctx context.Context, on bool) {
	if on == s.annotating {
		return
	}
	s.reset()
	if on {
		s.grabBackdrop()
		s.annotating = true
		s.request(ctx, "hide decorations", func(ctx context.Context) error { return s.win.SetDecorations(ctx, false) })
		s.request(ctx, "keep on top", func(ctx context.Context) error { return s.win.SetAlwaysOnTop(ctx, true) })
		s.request(ctx, "accept input", func(ctx context.Context) error { return s.win.SetIgnoreCursorEvents(ctx, false) })
		s.request(ctx, "enter fullscreen", func(ctx context.Context) error { return s.win.SetFullscreen(ctx, true) })
		s.request(ctx, "focus", s.win.SetFocus)
		s.notifier.Annotate(true)
		return
	}

	s.annotating = false
	s.backdrop = nil
	tb := s.toolbar
	s.request(ctx, "leave fullscreen", func(ctx context.Context) error { return s.win.SetFullscreen(ctx, false) })
	s.request(ctx, "hide decorations", func(ctx context.Context) error { return s.win.SetDecorations(ctx, false) })
	s.request(ctx, "keep on top", func(ctx context.Context) error { return s.win.SetAlwaysOnTop(ctx, true) })
	if !tb.Empty() {
		s.request(ctx, "resize to toolbar", func(ctx context.Context) error { return s.win.SetSize(ctx, tb.Dx(), tb.Dy()) })
		s.request(ctx, "move to toolbar", func(ctx context.Context) error { return s.win.SetPosition(ctx, tb.Min.X, tb.Min.Y) })
	}
	if s.onClear != nil {
		s.onClear()
	}
	s.notifier.Annotate(false)
}

// ToggleFullscreen flips the host window's fullscreen state.
func (s *Session) ToggleFullscreen(ctx context.Context) {
	on, err := s.win.IsFullscreen(ctx)
	if err != nil {
		log.Printf("window fullscreen state: %v", err)
		return
	}
	s.request(ctx, "toggle fullscreen", func(ctx context.Context) error { return s.win.SetFullscreen(ctx, !on) })
}

// Close asks the host window to close.
func (s *Session) Close(ctx context.Context) {
	s.request(ctx, "close", s.win.Close)
}

func (s *Session) request(ctx context.Context, what string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		log.Printf("window %s: %v", what, err)
	}
}

func (s *Session) grabBackdrop() {
	img, err := backdropFn(s.capture)
	if err != nil {
		log.Printf("capture backdrop: %v", err)
		return
	}
	s.backdrop = img
	s.fitBackdrop()
}

// reset discards strokes, text boxes and any gesture in progress.
func (s *Session) reset() {
	s.strokes.Clear()
	s.snap = s.overlays.Dispatch(overlay.Clear{}, tool.None)
	s.clicks = 0
}

// Clear wipes strokes and text boxes, keeping the mode and tool.
func (s *Session) Clear() {
	var preview *image.RGBA
	if s.notifier != nil && s.mapper.Sized() {
		w, h := s.mapper.Size()
		preview = image.NewRGBA(image.Rect(0, 0, w, h))
		s.NewPainter().Paint(preview, s.Frame())
	}
	s.reset()
	if s.onClear != nil {
		s.onClear()
	}
	if preview != nil {
		s.notifier.Clear("drawing", preview)
	}
}

// Frame returns an immutable picture of the current state.
func (s *Session) Frame() Frame {
	f := Frame{
		Annotating: s.annotating,
		Tool:       s.tool,
		Color:      s.strokes.Color(),
		Width:      s.strokes.Width(),
		Theme:      s.theme,
		Backdrop:   s.backdrop,
		Strokes:    s.strokes.Strokes(),
		Overlays:   s.snap,
	}
	if a, ok := s.strokes.Active(); ok {
		f.Active = &a
	}
	return f
}

// Render paints the current state into dst. It is meant for tests and
// previews; the host paints Frame values on its own goroutine.
func (s *Session) Render(dst *image.RGBA) {
	s.painter.Paint(dst, s.Frame())
}

// Package appstate hosts a session in a shiny window. It translates window
// events into session input, paints frames on a dedicated goroutine and
// draws the floating toolbar.
package appstate

import (
	"context"
	"errors"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/inkpane/internal/overlay"
	"github.com/example/inkpane/internal/session"
	"github.com/example/inkpane/internal/tool"
	"github.com/example/inkpane/internal/window"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before one is allowed to finish.
const frameDropThreshold = 10

// DefaultTitle is the window title used to find the host window over X11.
const DefaultTitle = "inkpane"

// ErrClosed is returned by Do once the window has gone away.
var ErrClosed = errors.New("window closed")

// Swapped in tests.
var findWindow = window.Current

// AppState holds the session and the window configuration.
type AppState struct {
	Session  *session.Session
	Title    string
	Annotate bool

	mu          sync.Mutex
	sendControl func(controlEvent)

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithTitle sets the window title.
func WithTitle(t string) Option { return func(a *AppState) { a.Title = t } }

// WithAnnotate turns annotation mode on as soon as the window is up.
func WithAnnotate(on bool) Option { return func(a *AppState) { a.Annotate = on } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState driving s.
func New(s *session.Session, opts ...Option) *AppState {
	a := &AppState{Session: s, Title: DefaultTitle}
	for _, o := range opts {
		o(a)
	}
	return a
}

// controlEvent carries work from other goroutines onto the event goroutine.
type controlEvent struct {
	fn   func(*session.Session)
	done chan struct{}
}

// Do runs fn on the event goroutine and waits for it to finish. It fails
// with ErrClosed before the window exists or after it has closed.
func (a *AppState) Do(ctx context.Context, fn func(*session.Session)) error {
	a.mu.Lock()
	send := a.sendControl
	a.mu.Unlock()
	if send == nil {
		return ErrClosed
	}
	done := make(chan struct{})
	send(controlEvent{fn: fn, done: done})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Command runs a control command on the event goroutine and returns its
// reply.
func (a *AppState) Command(ctx context.Context, args []string) (string, error) {
	var (
		out string
		err error
	)
	if derr := a.Do(ctx, func(s *session.Session) { out, err = s.Execute(ctx, args) }); derr != nil {
		return "", derr
	}
	return out, err
}

func (a *AppState) setControlSender(fn func(controlEvent)) {
	a.mu.Lock()
	a.sendControl = fn
	a.mu.Unlock()
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		a.setControlSender(nil)
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

// Main is the shiny entry point.
func (a *AppState) Main(s screen.Screen) {
	sess := a.Session
	tb := sess.Toolbar()
	width, height := max(tb.Dx(), 320), max(tb.Dy(), 32)
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: a.Title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.setControlSender(func(ev controlEvent) { w.Send(ev) })
	go a.attachWindow(ctx, w)

	repaint := func() { w.Send(paint.Event{}) }
	bar := newToolbar(toolbarActions{
		toggle:     func() { sess.Toggle(ctx) },
		selectTool: func(t tool.Tool) { sess.SelectTool(t) },
		clear:      sess.Clear,
		cycleColor: func() {
			if err := sess.SetColor(nextColor(sess.Color())); err != nil {
				log.Printf("toolbar color: %v", err)
			}
		},
		cycleWidth: func() {
			if err := sess.SetWidth(nextWidth(sess.Width())); err != nil {
				log.Printf("toolbar width: %v", err)
			}
		},
	})
	barRect := func() image.Rectangle {
		r := sess.Toolbar()
		return image.Rect(0, 0, min(max(r.Dx(), 1), width), min(max(r.Dy(), 1), height))
	}
	bar.layout(barRect())

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		painter := sess.NewPainter()
		for st := range paintCh {
			pctx, pcancel := context.WithCancel(ctx)
			paintMu.Lock()
			paintCancel = pcancel
			paintMu.Unlock()
			drawFrame(pctx, s, w, painter, bar, st)
			paintMu.Lock()
			paintCancel = nil
			if pctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			pcancel()
		}
	}()

	// pressInBar routes a release to the toolbar when the press began there.
	pressInBar := false

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case controlEvent:
			e.fn(sess)
			close(e.done)
			bar.layout(barRect())
			repaint()
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
			if e.Crosses(lifecycle.StageFocused) == lifecycle.CrossOff && sess.Blur() {
				repaint()
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			sess.Resize(width, height)
			bar.layout(barRect())
			repaint()
		case paint.Event:
			if e.External && width == 0 {
				continue
			}
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := paintState{
				width:   width,
				height:  height,
				frame:   sess.Frame(),
				toolbar: barRect(),
			}
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			p := image.Pt(int(e.X), int(e.Y))
			inBar := p.In(barRect())
			switch {
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress && inBar:
				pressInBar = true
				bar.press(p)
				repaint()
				continue
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease && pressInBar:
				pressInBar = false
				bar.release(p)
				bar.layout(barRect())
				repaint()
				continue
			case e.Direction == mouse.DirNone && (inBar || pressInBar):
				if bar.hoverAt(p) {
					repaint()
				}
				continue
			}
			if bar.hoverAt(image.Pt(-1, -1)) {
				repaint()
			}
			if pointerEvent(sess, e) {
				repaint()
			}
		case key.Event:
			if e.Direction == key.DirRelease {
				continue
			}
			if e.Modifiers&key.ModControl != 0 && (e.Code == key.CodeQ || e.Rune == 'q') {
				return
			}
			k, ok := translateKey(e)
			if !ok {
				continue
			}
			if sess.HandleKey(ctx, k) {
				bar.layout(barRect())
				repaint()
			}
		case error:
			log.Print(e)
		}
	}
}

// attachWindow locates the X11 window once shiny has mapped it and hands it
// to the session, then applies the start-up annotation mode.
func (a *AppState) attachWindow(ctx context.Context, w screen.Window) {
	var (
		host window.Window
		err  error
	)
	for attempt := 0; attempt < 20; attempt++ {
		host, err = findWindow(a.Title)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
	if err != nil {
		log.Printf("host window: %v", err)
	}
	annotate := a.Annotate
	w.Send(controlEvent{fn: func(s *session.Session) {
		s.SetWindow(host)
		if annotate {
			s.SetAnnotation(ctx, true)
		}
	}, done: make(chan struct{})})
}

// pointerEvent forwards a mouse event to the session. Only the left button
// draws; other buttons are ignored.
func pointerEvent(s *session.Session, e mouse.Event) bool {
	p := session.Pointer{X: float64(e.X), Y: float64(e.Y)}
	switch e.Direction {
	case mouse.DirPress:
		if e.Button != mouse.ButtonLeft {
			return false
		}
		return s.PointerDown(p)
	case mouse.DirRelease:
		if e.Button != mouse.ButtonLeft {
			return false
		}
		return s.PointerUp(p)
	case mouse.DirNone:
		return s.PointerMove(p)
	}
	return false
}

// translateKey maps a shiny key event to session input. Events with no
// meaning to the session report false.
func translateKey(e key.Event) (session.Key, bool) {
	k := session.Key{
		Ctrl: e.Modifiers&key.ModControl != 0,
		Alt:  e.Modifiers&key.ModAlt != 0,
	}
	switch e.Code {
	case key.CodeEscape:
		k.Code = overlay.KeyEscape
	case key.CodeDeleteForward:
		k.Code = overlay.KeyDelete
	case key.CodeDeleteBackspace:
		k.Code = overlay.KeyBackspace
	case key.CodeReturnEnter, key.CodeKeypadEnter:
		k.Code = overlay.KeyEnter
	case key.CodeTab:
		k.Code = overlay.KeyTab
	case key.CodeLeftArrow:
		k.Code = overlay.KeyLeft
	case key.CodeRightArrow:
		k.Code = overlay.KeyRight
	case key.CodeUpArrow:
		k.Code = overlay.KeyUp
	case key.CodeDownArrow:
		k.Code = overlay.KeyDown
	case key.CodeF11:
		k.Function = 11
	default:
		r := e.Rune
		// Control combinations may arrive as control characters.
		if (k.Ctrl || k.Alt) && e.Code >= key.CodeA && e.Code <= key.CodeZ {
			r = 'a' + rune(e.Code-key.CodeA)
		}
		if r <= 0 {
			return k, false
		}
		k.Code = overlay.KeyRune
		k.Rune = r
	}
	return k, true
}

// Package window wraps the window-manager requests the overlay makes on its
// own host window: fullscreen, stacking, decorations, click-through, focus,
// size and position.
package window

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Current when the host window cannot be located.
var ErrNotFound = errors.New("host window not found")

// Window is the host window as seen by the session.
type Window interface {
	SetSize(ctx context.Context, w, h int) error
	SetPosition(ctx context.Context, x, y int) error
	SetFullscreen(ctx context.Context, on bool) error
	SetAlwaysOnTop(ctx context.Context, on bool) error
	SetIgnoreCursorEvents(ctx context.Context, on bool) error
	SetDecorations(ctx context.Context, on bool) error
	SetFocus(ctx context.Context) error
	IsFullscreen(ctx context.Context) (bool, error)
	Close(ctx context.Context) error
}

// serialized allows a single request in flight at a time.
type serialized struct {
	mu sync.Mutex
	w  Window
}

// Serialize wraps w so concurrent callers queue behind each other. A
// request whose context ends while waiting is not sent.
func Serialize(w Window) Window {
	if s, ok := w.(*serialized); ok {
		return s
	}
	return &serialized{w: w}
}

func (s *serialized) do(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn()
}

func (s *serialized) SetSize(ctx context.Context, w, h int) error {
	return s.do(ctx, func() error { return s.w.SetSize(ctx, w, h) })
}

func (s *serialized) SetPosition(ctx context.Context, x, y int) error {
	return s.do(ctx, func() error { return s.w.SetPosition(ctx, x, y) })
}

func (s *serialized) SetFullscreen(ctx context.Context, on bool) error {
	return s.do(ctx, func() error { return s.w.SetFullscreen(ctx, on) })
}

func (s *serialized) SetAlwaysOnTop(ctx context.Context, on bool) error {
	return s.do(ctx, func() error { return s.w.SetAlwaysOnTop(ctx, on) })
}

func (s *serialized) SetIgnoreCursorEvents(ctx context.Context, on bool) error {
	return s.do(ctx, func() error { return s.w.SetIgnoreCursorEvents(ctx, on) })
}

func (s *serialized) SetDecorations(ctx context.Context, on bool) error {
	return s.do(ctx, func() error { return s.w.SetDecorations(ctx, on) })
}

func (s *serialized) SetFocus(ctx context.Context) error {
	return s.do(ctx, func() error { return s.w.SetFocus(ctx) })
}

func (s *serialized) IsFullscreen(ctx context.Context) (bool, error) {
	var on bool
	err := s.do(ctx, func() error {
		var err error
		on, err = s.w.IsFullscreen(ctx)
		return err
	})
	return on, err
}

func (s *serialized) Close(ctx context.Context) error {
	return s.do(ctx, func() error { return s.w.Close(ctx) })
}

// Nop accepts every request and does nothing. It stands in when no window
// manager is reachable; it remembers the fullscreen flag so toggles work.
type Nop struct {
	mu         sync.Mutex
	fullscreen bool
}

func (*Nop) SetSize(context.Context, int, int) error           { return nil }
func (*Nop) SetPosition(context.Context, int, int) error       { return nil }
func (*Nop) SetAlwaysOnTop(context.Context, bool) error        { return nil }
func (*Nop) SetIgnoreCursorEvents(context.Context, bool) error { return nil }
func (*Nop) SetDecorations(context.Context, bool) error        { return nil }
func (*Nop) SetFocus(context.Context) error                    { return nil }
func (*Nop) Close(context.Context) error                       { return nil }

func (n *Nop) SetFullscreen(_ context.Context, on bool) error {
	n.mu.Lock()
	n.fullscreen = on
	n.mu.Unlock()
	return nil
}

func (n *Nop) IsFullscreen(context.Context) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fullscreen, nil
}

// Current locates the window of this process titled title. When no X
// server is reachable or the window is missing it returns a *Nop together
// with the error, so callers can log and carry on.
func Current(title string) (Window, error) {
	w, err := findCurrent(title)
	if err != nil {
		return &Nop{}, err
	}
	return w, nil
}

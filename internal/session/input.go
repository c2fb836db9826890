package session

import (
	"context"
	"log"
	"unicode"

	"github.com/example/inkpane/internal/geom"
	"github.com/example/inkpane/internal/overlay"
	"github.com/example/inkpane/internal/tool"
)

// Pointer is a pointer sample in global screen coordinates. A zero
// Pressure means the device did not report one.
type Pointer struct {
	X, Y     float64
	Pressure float64
}

// Key is a key press. Function holds the number of an F key, so F11 is 11.
type Key struct {
	overlay.Key
	Ctrl     bool
	Alt      bool
	Function int
}

// PointerDown handles a button press. It reports whether a repaint is
// needed.
func (s *Session) PointerDown(p Pointer) bool {
	if !s.annotating || !s.mapper.Sized() {
		return false
	}
	pt := s.mapper.Local(p.X, p.Y, p.Pressure)
	caps := s.Capabilities()

	if caps.CanErase {
		res := s.eraser.EraseAt(pt, s.strokes.Width(), caps)
		s.snap = s.overlays.Snapshot()
		return !res.Empty()
	}

	snap := s.overlays.Dispatch(overlay.PointerDown{At: pt.Vec()}, caps)
	changed := s.apply(snap)
	if !snap.Consumed && s.strokes.Begin(pt, caps) {
		changed = true
	}
	return changed
}

// PointerMove handles motion with or without a button held.
func (s *Session) PointerMove(p Pointer) bool {
	if !s.annotating || !s.mapper.Sized() {
		return false
	}
	pt := s.mapper.Local(p.X, p.Y, p.Pressure)
	if s.strokes.Drawing() {
		return s.strokes.Extend(pt)
	}
	return s.apply(s.overlays.Dispatch(overlay.PointerMove{At: pt.Vec()}, s.Capabilities()))
}

// PointerUp handles a button release. A second click close in time and
// space to the previous one is also reported to the overlay manager as a
// double click.
func (s *Session) PointerUp(p Pointer) bool {
	if !s.annotating || !s.mapper.Sized() {
		return false
	}
	pt := s.mapper.Local(p.X, p.Y, p.Pressure)
	changed := false
	if s.strokes.Drawing() {
		_, changed = s.strokes.End()
	} else {
		changed = s.apply(s.overlays.Dispatch(overlay.PointerUp{At: pt.Vec()}, s.Capabilities()))
	}
	if s.registerClick(pt.Vec()) {
		if s.apply(s.overlays.Dispatch(overlay.DoubleClick{At: pt.Vec()}, s.Capabilities())) {
			changed = true
		}
	}
	return changed
}

func (s *Session) registerClick(at geom.Vec) bool {
	now := s.now()
	if s.clicks > 0 && now.Sub(s.lastClick) <= s.doubleClick && at.Dist(s.lastClickAt) <= doubleClickSlop {
		s.clicks = 0
		return true
	}
	s.clicks = 1
	s.lastClick = now
	s.lastClickAt = at
	return false
}

// apply records an overlay snapshot and acts on its side results.
func (s *Session) apply(snap overlay.Snapshot) bool {
	s.snap = snap
	if snap.ToolRequest != nil {
		s.tool = *snap.ToolRequest
	}
	if snap.Created != nil && s.onTextBoxCreate != nil {
		s.onTextBoxCreate(*snap.Created)
	}
	return snap.Changed
}

// HandleKey applies a key press and reports whether a repaint is needed.
func (s *Session) HandleKey(ctx context.Context, k Key) bool {
	r := unicode.ToLower(k.Rune)
	switch {
	case k.Function == 11, k.Ctrl && r == 'f':
		s.ToggleFullscreen(ctx)
		return false
	case k.Alt && r == 'a':
		s.Toggle(ctx)
		return true
	}
	if !s.annotating {
		return false
	}
	switch {
	case k.Ctrl && r == 'l':
		s.Clear()
		return true
	case k.Ctrl && r == 'c':
		s.copySelection()
		return false
	case k.Ctrl && r == 'v':
		return s.paste()
	case k.Ctrl || k.Alt:
		return false
	}

	snap := s.overlays.Dispatch(k.Key, s.Capabilities())
	changed := s.apply(snap)
	if snap.Consumed {
		return changed
	}
	if k.Code == overlay.KeyEscape && s.strokes.Drawing() {
		s.strokes.Cancel()
		return true
	}
	if k.Code == overlay.KeyRune {
		if t, ok := tool.ForKey(k.Rune); ok {
			return s.SelectTool(t) || changed
		}
	}
	return changed
}

// Blur ends text editing, for example when the window loses focus.
func (s *Session) Blur() bool {
	return s.apply(s.overlays.Dispatch(overlay.Blur{}, s.Capabilities()))
}

// Style applies a text colour, background or opacity change to the
// selected text box.
func (s *Session) Style(ev overlay.Event) bool {
	switch ev.(type) {
	case overlay.SetTextColor, overlay.SetBackground, overlay.SetOpacity:
	default:
		return false
	}
	return s.apply(s.overlays.Dispatch(ev, s.Capabilities()))
}

func (s *Session) copySelection() {
	b, ok := s.snap.SelectedBox()
	if !ok || b.Text == "" {
		return
	}
	if err := writeClipboard(b.Text); err != nil {
		log.Printf("copy: %v", err)
		return
	}
	s.notifier.Copy("text")
}

func (s *Session) paste() bool {
	if _, ok := s.snap.EditingBox(); !ok {
		return false
	}
	text, err := readClipboard()
	if err != nil {
		log.Printf("paste: %v", err)
		return false
	}
	return s.apply(s.overlays.Dispatch(overlay.InsertText{Text: text}, s.Capabilities()))
}

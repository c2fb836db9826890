package overlay

import (
	"fmt"
	"testing"

	"github.com/example/inkpane/internal/geom"
	"github.com/example/inkpane/internal/tool"
)

var (
	textCaps   = tool.Capabilities{CanCreateText: true}
	selectCaps = tool.Capabilities{CanSelect: true}
	penCaps    = tool.Capabilities{CanDraw: true}
)

func v(x, y float64) geom.Vec { return geom.Vec{X: x, Y: y} }

func newManager(opts ...Option) *Manager {
	n := 0
	opts = append([]Option{WithIDSource(func() string {
		n++
		return fmt.Sprintf("b%d", n)
	})}, opts...)
	return New(opts...)
}

func create(t *testing.T, m *Manager, from, to geom.Vec) TextBox {
	t.Helper()
	m.Dispatch(PointerDown{At: from}, textCaps)
	m.Dispatch(PointerMove{At: to}, textCaps)
	s := m.Dispatch(PointerUp{At: to}, textCaps)
	if s.Created == nil {
		t.Fatalf("no box created dragging %v to %v", from, to)
	}
	return *s.Created
}

// place creates a box with the exact rectangle and leaves it selected but not
// editing.
func place(t *testing.T, m *Manager, r geom.Rect) TextBox {
	t.Helper()
	b := create(t, m, v(r.X, r.Y), v(r.Right(), r.Bottom()))
	m.Dispatch(Blur{}, selectCaps)
	return b
}

func rectOf(t *testing.T, s Snapshot, id string) geom.Rect {
	t.Helper()
	b, ok := s.Box(id)
	if !ok {
		t.Fatalf("box %s missing", id)
	}
	return b.Rect()
}

func TestCreateIsOrderIndependent(t *testing.T) {
	m := newManager(WithMinSize(20, 20))
	b := create(t, m, v(50, 50), v(10, 10))
	if b.Rect() != (geom.Rect{X: 10, Y: 10, Width: 40, Height: 40}) {
		t.Fatalf("rect = %+v", b.Rect())
	}
}

func TestCreateClampsToDefaultMinimum(t *testing.T) {
	m := newManager()
	b := create(t, m, v(50, 50), v(10, 10))
	if b.Rect() != (geom.Rect{X: 10, Y: 10, Width: 100, Height: 40}) {
		t.Fatalf("rect = %+v", b.Rect())
	}
	c := create(t, m, v(300, 300), v(300, 300))
	if c.Width != DefaultMinWidth || c.Height != DefaultMinHeight {
		t.Fatalf("click without drag gave %+v", c.Rect())
	}
}

func TestCreateSelectsEditsAndRequestsSelector(t *testing.T) {
	m := newManager()
	m.Dispatch(PointerDown{At: v(0, 0)}, textCaps)
	s := m.Dispatch(PointerMove{At: v(150, 60)}, textCaps)
	if s.State != Creating || s.Preview == nil || *s.Preview != (geom.Rect{Width: 150, Height: 60}) {
		t.Fatalf("preview = %+v state %v", s.Preview, s.State)
	}
	if len(s.Boxes) != 0 {
		t.Fatalf("no box may exist while creating")
	}
	s = m.Dispatch(PointerUp{At: v(150, 60)}, textCaps)
	if s.ToolRequest == nil || *s.ToolRequest != tool.Selector {
		t.Fatalf("expected a selector tool request, got %v", s.ToolRequest)
	}
	b, _ := s.SelectedBox()
	if !b.Editing || s.State != Editing || s.Preview != nil {
		t.Fatalf("new box should be selected and editing: %+v %v", b, s.State)
	}
	if b.TextColor != "#000000" || b.Background != "#ffffff" || b.Opacity != 1 {
		t.Fatalf("unexpected default style %+v", b)
	}
}

func TestCancelDropsPreview(t *testing.T) {
	m := newManager()
	m.Dispatch(PointerDown{At: v(0, 0)}, textCaps)
	m.Dispatch(PointerMove{At: v(200, 200)}, textCaps)
	s := m.Dispatch(Cancel{}, textCaps)
	if s.State != Idle || s.Preview != nil {
		t.Fatalf("cancel left state %v preview %v", s.State, s.Preview)
	}
	s = m.Dispatch(PointerUp{At: v(200, 200)}, selectCaps)
	if len(s.Boxes) != 0 || s.Created != nil {
		t.Fatalf("cancelled creation produced a box")
	}
}

func TestResizeSouthEast(t *testing.T) {
	m := newManager()
	b := place(t, m, geom.Rect{X: 100, Y: 100, Width: 120, Height: 40})
	m.Dispatch(PointerDown{At: v(220, 140)}, selectCaps)
	if m.Snapshot().State != Resizing {
		t.Fatalf("press on the se handle should resize")
	}
	m.Dispatch(PointerMove{At: v(250, 160)}, selectCaps)
	s := m.Dispatch(PointerUp{At: v(250, 160)}, selectCaps)
	if got := rectOf(t, s, b.ID); got != (geom.Rect{X: 100, Y: 100, Width: 150, Height: 60}) {
		t.Fatalf("rect = %+v", got)
	}
	if s.State != Idle {
		t.Fatalf("state = %v", s.State)
	}
}

func TestResizeNorthWest(t *testing.T) {
	tests := []struct {
		name       string
		minW, minH float64
		want       geom.Rect
	}{
		{"small minimum", 50, 20, geom.Rect{X: 130, Y: 120, Width: 90, Height: 20}},
		{"default minimum", 0, 0, geom.Rect{X: 120, Y: 120, Width: 100, Height: 20}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newManager(WithMinSize(tc.minW, tc.minH))
			b := place(t, m, geom.Rect{X: 100, Y: 100, Width: 120, Height: 40})
			m.Dispatch(PointerDown{At: v(100, 100)}, selectCaps)
			s := m.Dispatch(PointerMove{At: v(130, 120)}, selectCaps)
			if got := rectOf(t, s, b.ID); got != tc.want {
				t.Fatalf("rect = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestResizeNeverBelowMinimum(t *testing.T) {
	for _, h := range []Handle{HandleNW, HandleN, HandleNE, HandleE, HandleSE, HandleS, HandleSW, HandleW} {
		origin := geom.Rect{X: 0, Y: 0, Width: 150, Height: 50}
		for _, d := range []geom.Vec{v(1000, 1000), v(-1000, -1000), v(1000, -1000), v(-1000, 1000)} {
			r := resize(origin, h, d, 100, 20)
			if r.Width < 100 || r.Height < 20 {
				t.Fatalf("%v by %v gave %+v", h, d, r)
			}
		}
	}
}

func TestHandleNames(t *testing.T) {
	for _, n := range []string{"n", "s", "e", "w", "ne", "nw", "se", "sw"} {
		h, ok := ParseHandle(n)
		if !ok || h.String() != n {
			t.Fatalf("handle %q round trip gave %v %v", n, h, ok)
		}
	}
	if _, ok := ParseHandle("x"); ok {
		t.Fatalf("unknown handle accepted")
	}
}

func TestDragMovesByCumulativeDelta(t *testing.T) {
	m := newManager()
	b := place(t, m, geom.Rect{X: 10, Y: 10, Width: 120, Height: 40})
	m.Dispatch(PointerDown{At: v(50, 30)}, selectCaps)
	m.Dispatch(PointerMove{At: v(60, 35)}, selectCaps)
	m.Dispatch(PointerMove{At: v(80, 50)}, selectCaps)
	s := m.Dispatch(PointerUp{At: v(80, 50)}, selectCaps)
	if got := rectOf(t, s, b.ID); got != (geom.Rect{X: 40, Y: 30, Width: 120, Height: 40}) {
		t.Fatalf("rect = %+v", got)
	}
}

func TestDragNeedsSelector(t *testing.T) {
	m := newManager()
	b := place(t, m, geom.Rect{X: 10, Y: 10, Width: 120, Height: 40})
	s := m.Dispatch(PointerDown{At: v(50, 30)}, textCaps)
	if !s.Consumed || s.State == Dragging || s.State == Creating {
		t.Fatalf("text tool press on a box: consumed=%v state=%v", s.Consumed, s.State)
	}
	s = m.Dispatch(PointerMove{At: v(90, 90)}, textCaps)
	if got := rectOf(t, s, b.ID); got.X != 10 || got.Y != 10 {
		t.Fatalf("box moved without the selector: %+v", got)
	}
}

func TestCancelRollsBackDrag(t *testing.T) {
	m := newManager()
	b := place(t, m, geom.Rect{X: 10, Y: 10, Width: 120, Height: 40})
	m.Dispatch(PointerDown{At: v(50, 30)}, selectCaps)
	m.Dispatch(PointerMove{At: v(300, 300)}, selectCaps)
	s := m.Dispatch(Cancel{}, selectCaps)
	if got := rectOf(t, s, b.ID); got != (geom.Rect{X: 10, Y: 10, Width: 120, Height: 40}) {
		t.Fatalf("rect = %+v", got)
	}
}

func TestSingleEditingBox(t *testing.T) {
	m := newManager()
	a := place(t, m, geom.Rect{X: 0, Y: 0, Width: 120, Height: 40})
	b := place(t, m, geom.Rect{X: 0, Y: 200, Width: 120, Height: 40})
	m.Dispatch(DoubleClick{At: v(10, 10)}, selectCaps)
	s := m.Dispatch(DoubleClick{At: v(10, 210)}, selectCaps)
	ba, _ := s.Box(a.ID)
	bb, _ := s.Box(b.ID)
	if ba.Editing || !bb.Editing || s.Selected != b.ID {
		t.Fatalf("a editing=%v b editing=%v selected=%s", ba.Editing, bb.Editing, s.Selected)
	}
	n := 0
	for _, box := range s.Boxes {
		if box.Editing {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("%d boxes editing", n)
	}
}

func TestDoubleClickNeedsSelector(t *testing.T) {
	m := newManager()
	place(t, m, geom.Rect{X: 0, Y: 0, Width: 120, Height: 40})
	s := m.Dispatch(DoubleClick{At: v(10, 10)}, penCaps)
	if _, ok := s.EditingBox(); ok {
		t.Fatalf("pen double click must not start editing")
	}
}

func TestTyping(t *testing.T) {
	m := newManager()
	b := create(t, m, v(0, 0), v(200, 100))
	for _, r := range "hi" {
		m.Dispatch(Key{Code: KeyRune, Rune: r}, selectCaps)
	}
	m.Dispatch(Key{Code: KeyTab}, selectCaps)
	m.Dispatch(Key{Code: KeyEnter}, selectCaps)
	m.Dispatch(Key{Code: KeyRune, Rune: 'é'}, selectCaps)
	m.Dispatch(Key{Code: KeyRune, Rune: 'x'}, selectCaps)
	s := m.Dispatch(Key{Code: KeyBackspace}, selectCaps)
	got, _ := s.Box(b.ID)
	if got.Text != "hi    \né" {
		t.Fatalf("text = %q", got.Text)
	}
	s = m.Dispatch(InsertText{Text: "a\r\nb\tc"}, selectCaps)
	got, _ = s.Box(b.ID)
	if got.Text != "hi    \néa\nb    c" {
		t.Fatalf("pasted text = %q", got.Text)
	}
}

func TestBackspaceWhileEditingKeepsBox(t *testing.T) {
	m := newManager()
	b := create(t, m, v(0, 0), v(200, 100))
	s := m.Dispatch(Key{Code: KeyBackspace}, selectCaps)
	if _, ok := s.Box(b.ID); !ok || len(s.Removed) != 0 {
		t.Fatalf("backspace in an empty editing box must not delete it")
	}
}

func TestEscapeEndsEditingKeepsSelection(t *testing.T) {
	m := newManager()
	b := create(t, m, v(0, 0), v(200, 100))
	s := m.Dispatch(Key{Code: KeyEscape}, selectCaps)
	got, _ := s.Box(b.ID)
	if got.Editing || s.Selected != b.ID || s.State != Idle {
		t.Fatalf("after escape: %+v selected=%q state=%v", got, s.Selected, s.State)
	}
}

func TestDeleteSelected(t *testing.T) {
	for _, code := range []KeyCode{KeyDelete, KeyBackspace} {
		m := newManager()
		b := place(t, m, geom.Rect{X: 0, Y: 0, Width: 120, Height: 40})
		s := m.Dispatch(Key{Code: code}, selectCaps)
		if len(s.Boxes) != 0 || s.Selected != "" {
			t.Fatalf("key %v left %+v selected %q", code, s.Boxes, s.Selected)
		}
		if len(s.Removed) != 1 || s.Removed[0] != b.ID {
			t.Fatalf("removed = %v", s.Removed)
		}
	}
}

func TestClickOutsideClearsSelection(t *testing.T) {
	m := newManager()
	place(t, m, geom.Rect{X: 0, Y: 0, Width: 120, Height: 40})
	s := m.Dispatch(PointerDown{At: v(600, 600)}, selectCaps)
	if s.Selected != "" || s.Consumed {
		t.Fatalf("selected=%q consumed=%v", s.Selected, s.Consumed)
	}
}

func TestStylePanel(t *testing.T) {
	m := newManager()
	b := place(t, m, geom.Rect{X: 0, Y: 0, Width: 120, Height: 40})
	p := layoutPanel(b, m.Palette())
	if p.rect.X != 132 || p.rect.Y != 0 {
		t.Fatalf("panel at %+v", p.rect)
	}
	if q := layoutPanel(TextBox{X: 40, Y: 25, Width: 100, Height: 30}, m.Palette()); q.rect.X != 152 || q.rect.Y != 25 {
		t.Fatalf("offset panel at %+v", q.rect)
	}
	centre := func(c control) geom.Vec {
		return v(c.rect.X+c.rect.Width/2, c.rect.Y+c.rect.Height/2)
	}
	var red, half control
	for _, c := range p.controls {
		if c.kind == textSwatch && c.color == "#f44336" {
			red = c
		}
		if c.kind == opacityCellControl && c.opacity == 0.5 {
			half = c
		}
	}
	s := m.Dispatch(PointerDown{At: centre(red)}, selectCaps)
	if !s.Consumed || s.State == Dragging || s.Selected != b.ID {
		t.Fatalf("panel press: consumed=%v state=%v selected=%q", s.Consumed, s.State, s.Selected)
	}
	m.Dispatch(PointerUp{At: centre(red)}, selectCaps)
	s = m.Dispatch(PointerDown{At: centre(half)}, selectCaps)
	got, _ := s.Box(b.ID)
	if got.TextColor != "#f44336" || got.Opacity != 0.5 {
		t.Fatalf("style = %+v", got)
	}
	if got.Rect() != b.Rect() {
		t.Fatalf("panel press moved the box")
	}
}

func TestStyleEvents(t *testing.T) {
	m := newManager()
	b := place(t, m, geom.Rect{X: 0, Y: 0, Width: 120, Height: 40})
	m.Dispatch(SetBackground{Color: "#FFEB3B"}, selectCaps)
	m.Dispatch(SetTextColor{Color: "not a colour"}, selectCaps)
	s := m.Dispatch(SetOpacity{Opacity: 3}, selectCaps)
	got, _ := s.Box(b.ID)
	if got.Background != "#ffeb3b" || got.TextColor != "#000000" || got.Opacity != 1 {
		t.Fatalf("style = %+v", got)
	}
	s = m.Dispatch(SetOpacity{Opacity: -1}, selectCaps)
	got, _ = s.Box(b.ID)
	if got.Opacity != 0 {
		t.Fatalf("opacity = %v", got.Opacity)
	}
}

func TestRemap(t *testing.T) {
	m := newManager()
	b := place(t, m, geom.Rect{X: 100, Y: 50, Width: 200, Height: 40})
	s := m.Dispatch(Remap{Scale: geom.Scale{X: 2, Y: 1}}, selectCaps)
	if got := rectOf(t, s, b.ID); got != (geom.Rect{X: 200, Y: 50, Width: 400, Height: 40}) {
		t.Fatalf("rect = %+v", got)
	}
	s = m.Dispatch(Remap{Scale: geom.Scale{X: 0.1, Y: 0.1}}, selectCaps)
	if got := rectOf(t, s, b.ID); got.Width < DefaultMinWidth || got.Height < DefaultMinHeight {
		t.Fatalf("remap shrank below minimum: %+v", got)
	}
}

func TestRemapRoundTripKeepsSize(t *testing.T) {
	m := newManager()
	b := place(t, m, geom.Rect{X: 40, Y: 40, Width: 150, Height: 40})
	s := m.Dispatch(Remap{Scale: geom.Scale{X: 0.5, Y: 0.5}}, selectCaps)
	if got := rectOf(t, s, b.ID); got != (geom.Rect{X: 20, Y: 20, Width: DefaultMinWidth, Height: DefaultMinHeight}) {
		t.Fatalf("shrunk rect = %+v", got)
	}
	s = m.Dispatch(Remap{Scale: geom.Scale{X: 2, Y: 2}}, selectCaps)
	if got := rectOf(t, s, b.ID); got != b.Rect() {
		t.Fatalf("round trip rect = %+v, want %+v", got, b.Rect())
	}
}

func TestRemoveContaining(t *testing.T) {
	m := newManager()
	a := place(t, m, geom.Rect{X: 0, Y: 0, Width: 120, Height: 40})
	b := place(t, m, geom.Rect{X: 300, Y: 300, Width: 120, Height: 40})
	if ids := m.RemoveContaining(v(310, 310)); len(ids) != 1 || ids[0] != b.ID {
		t.Fatalf("removed %v", ids)
	}
	s := m.Snapshot()
	if s.Selected != "" {
		t.Fatalf("selection should clear with the removed box")
	}
	if _, ok := s.Box(a.ID); !ok {
		t.Fatalf("unrelated box removed")
	}
}

func TestClear(t *testing.T) {
	m := newManager()
	place(t, m, geom.Rect{X: 0, Y: 0, Width: 120, Height: 40})
	create(t, m, v(0, 100), v(200, 200))
	s := m.Dispatch(Clear{}, selectCaps)
	if len(s.Boxes) != 0 || s.Selected != "" || s.State != Idle || len(s.Removed) != 2 {
		t.Fatalf("after clear: %+v", s)
	}
}

func TestNoCapabilitiesIgnoresPointer(t *testing.T) {
	m := newManager()
	s := m.Dispatch(PointerDown{At: v(0, 0)}, tool.None)
	m.Dispatch(PointerMove{At: v(200, 200)}, tool.None)
	s = m.Dispatch(PointerUp{At: v(200, 200)}, tool.None)
	if len(s.Boxes) != 0 || s.Changed {
		t.Fatalf("pointer input while off changed state: %+v", s)
	}
}

func TestWrapLines(t *testing.T) {
	got := wrapLines("hello world foo\nbar", 11)
	want := []string{"hello world", "foo", "bar"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("wrap = %q", got)
	}
	if got := wrapLines("abcdefgh", 3); fmt.Sprint(got) != fmt.Sprint([]string{"abc", "def", "gh"}) {
		t.Fatalf("long word wrap = %q", got)
	}
	if got := wrapLines("", 5); len(got) != 1 || got[0] != "" {
		t.Fatalf("empty text = %q", got)
	}
}

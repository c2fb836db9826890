package overlay

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/example/inkpane/internal/geom"
	"github.com/example/inkpane/internal/theme"
	"github.com/example/inkpane/internal/tool"
)

const tabSpaces = "    "

// Manager owns the text boxes, the single selected id and the gesture in
// progress.
type Manager struct {
	boxes    []TextBox
	selected string
	state    State

	minW, minH float64
	style      Style
	palette    Palette
	newID      func() string

	// unclamped size per box id after the last remap
	scaled map[string]geom.Vec

	// gesture bookkeeping
	start   geom.Vec
	current geom.Vec
	origin  geom.Rect
	target  string
	handle  Handle
}

// Option configures a Manager.
type Option func(*Manager)

// WithMinSize sets the smallest width and height a box may have.
func WithMinSize(w, h float64) Option {
	return func(m *Manager) {
		if w > 0 {
			m.minW = w
		}
		if h > 0 {
			m.minH = h
		}
	}
}

// WithStyle sets the style of newly created boxes.
func WithStyle(s Style) Option { return func(m *Manager) { m.style = s } }

// WithPalette replaces the style panel swatches.
func WithPalette(p Palette) Option { return func(m *Manager) { m.palette = p } }

// WithIDSource replaces the id generator, mainly for tests.
func WithIDSource(fn func() string) Option { return func(m *Manager) { m.newID = fn } }

// New creates an empty Manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		minW:    DefaultMinWidth,
		minH:    DefaultMinHeight,
		style:   DefaultStyle(),
		palette: DefaultPalette(),
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// MinSize returns the configured minimum box size.
func (m *Manager) MinSize() (w, h float64) { return m.minW, m.minH }

// Palette returns the style panel swatches.
func (m *Manager) Palette() Palette { return m.palette }

// outcome accumulates the side results of one event.
type outcome struct {
	created     *TextBox
	removed     []string
	toolRequest *tool.Tool
	consumed    bool
	changed     bool
}

// Dispatch applies ev and returns the resulting state. Events that caps does
// not allow are ignored.
func (m *Manager) Dispatch(ev Event, caps tool.Capabilities) Snapshot {
	var out outcome
	switch e := ev.(type) {
	case PointerDown:
		m.pointerDown(e.At, caps, &out)
	case PointerMove:
		m.pointerMove(e.At, &out)
	case PointerUp:
		m.pointerUp(e.At, &out)
	case DoubleClick:
		m.doubleClick(e.At, caps, &out)
	case Key:
		m.key(e, caps, &out)
	case InsertText:
		m.insert(e.Text, &out)
	case Blur:
		out.changed = m.stopEditing()
	case SetTextColor:
		m.restyle(&out, func(b *TextBox) bool { return setColor(&b.TextColor, e.Color) })
	case SetBackground:
		m.restyle(&out, func(b *TextBox) bool { return setColor(&b.Background, e.Color) })
	case SetOpacity:
		m.restyle(&out, func(b *TextBox) bool {
			o := clampOpacity(e.Opacity)
			if b.Opacity == o {
				return false
			}
			b.Opacity = o
			return true
		})
	case Cancel:
		out.changed = m.cancelGesture()
	case Clear:
		out.changed = len(m.boxes) > 0 || m.state != Idle
		for _, b := range m.boxes {
			out.removed = append(out.removed, b.ID)
		}
		m.boxes = nil
		m.scaled = nil
		m.selected = ""
		m.state = Idle
		m.target = ""
	case Remap:
		m.remap(e.Scale, &out)
	case Remove:
		out.removed = m.remove(func(b TextBox) bool { return b.ID == e.ID })
		out.changed = len(out.removed) > 0
	}
	return m.snapshot(out)
}

// Snapshot returns the current state without applying an event.
func (m *Manager) Snapshot() Snapshot { return m.snapshot(outcome{}) }

// RemoveContaining deletes every box whose rectangle contains p and returns
// their ids. The selection is cleared if the selected box goes.
func (m *Manager) RemoveContaining(p geom.Vec) []string {
	return m.remove(func(b TextBox) bool { return b.Rect().Contains(p) })
}

func (m *Manager) snapshot(out outcome) Snapshot {
	s := Snapshot{
		Boxes:       append([]TextBox(nil), m.boxes...),
		Selected:    m.selected,
		State:       m.state,
		Created:     out.created,
		Removed:     out.removed,
		ToolRequest: out.toolRequest,
		Consumed:    out.consumed,
		Changed:     out.changed,
	}
	if m.state == Creating {
		r := geom.RectFromCorners(m.start, m.current)
		s.Preview = &r
	}
	return s
}

func (m *Manager) index(id string) int {
	if id == "" {
		return -1
	}
	for i := range m.boxes {
		if m.boxes[i].ID == id {
			return i
		}
	}
	return -1
}

// boxAt returns the index of the topmost box containing p.
func (m *Manager) boxAt(p geom.Vec) int {
	for i := len(m.boxes) - 1; i >= 0; i-- {
		if m.boxes[i].Rect().Contains(p) {
			return i
		}
	}
	return -1
}

func (m *Manager) editingIndex() int {
	for i := range m.boxes {
		if m.boxes[i].Editing {
			return i
		}
	}
	return -1
}

// restState is the state to fall back to once a gesture ends.
func (m *Manager) restState() State {
	if m.editingIndex() >= 0 {
		return Editing
	}
	return Idle
}

func (m *Manager) stopEditing() bool {
	changed := false
	for i := range m.boxes {
		if m.boxes[i].Editing {
			m.boxes[i].Editing = false
			changed = true
		}
	}
	if m.state == Editing {
		m.state = Idle
	}
	return changed
}

// startEditing makes box i the only editing box and selects it.
func (m *Manager) startEditing(i int) {
	for j := range m.boxes {
		m.boxes[j].Editing = j == i
	}
	m.selected = m.boxes[i].ID
	m.state = Editing
}

func (m *Manager) pointerDown(p geom.Vec, caps tool.Capabilities, out *outcome) {
	if caps == tool.None {
		return
	}
	if m.state == Creating || m.state == Dragging || m.state == Resizing {
		// A press without a release for the previous gesture.
		m.cancelGesture()
	}

	if i := m.index(m.selected); i >= 0 {
		sel := m.boxes[i]
		if c, ok := layoutPanel(sel, m.palette).controlAt(p); ok {
			out.consumed = true
			out.changed = m.applyControl(i, c)
			return
		}
		if caps.CanSelect && !sel.Editing {
			if h := handleAt(sel.Rect(), p); h != NoHandle {
				m.beginGesture(Resizing, sel, p)
				m.handle = h
				out.consumed = true
				out.changed = true
				return
			}
		}
	}

	if i := m.boxAt(p); i >= 0 {
		out.consumed = true
		b := m.boxes[i]
		if b.Editing {
			return
		}
		out.changed = m.stopEditing()
		if caps.CanSelect {
			m.selected = b.ID
			m.beginGesture(Dragging, b, p)
			out.changed = true
		}
		return
	}

	if m.selected != "" || m.editingIndex() >= 0 {
		m.stopEditing()
		m.selected = ""
		out.changed = true
	}
	if caps.CanCreateText {
		m.state = Creating
		m.start, m.current = p, p
		m.target = ""
		out.changed = true
	}
}

func (m *Manager) beginGesture(s State, b TextBox, p geom.Vec) {
	m.state = s
	m.target = b.ID
	m.start, m.current = p, p
	m.origin = b.Rect()
	m.handle = NoHandle
}

func (m *Manager) pointerMove(p geom.Vec, out *outcome) {
	switch m.state {
	case Creating:
		m.current = p
		out.changed = true
	case Dragging, Resizing:
		m.current = p
		out.changed = m.track()
		out.consumed = true
	}
}

// track moves or resizes the gesture target to follow the pointer.
func (m *Manager) track() bool {
	i := m.index(m.target)
	if i < 0 {
		m.state = m.restState()
		return false
	}
	d := m.current.Sub(m.start)
	r := m.origin
	if m.state == Dragging {
		r.X += d.X
		r.Y += d.Y
	} else {
		r = resize(m.origin, m.handle, d, m.minW, m.minH)
	}
	if r == m.boxes[i].Rect() {
		return false
	}
	m.boxes[i].setRect(r)
	return true
}

func (m *Manager) pointerUp(p geom.Vec, out *outcome) {
	switch m.state {
	case Creating:
		r := geom.RectFromCorners(m.start, p)
		r.Width = max(r.Width, m.minW)
		r.Height = max(r.Height, m.minH)
		b := TextBox{
			ID:         m.newID(),
			TextColor:  m.style.TextColor,
			Background: m.style.Background,
			Opacity:    clampOpacity(m.style.Opacity),
		}
		b.setRect(r)
		m.boxes = append(m.boxes, b)
		m.startEditing(len(m.boxes) - 1)
		created := m.boxes[len(m.boxes)-1]
		sel := tool.Selector
		out.created = &created
		out.toolRequest = &sel
		out.changed = true
	case Dragging, Resizing:
		m.current = p
		out.changed = m.track()
		out.consumed = true
		m.state = m.restState()
		m.target = ""
		m.handle = NoHandle
	}
}

func (m *Manager) doubleClick(p geom.Vec, caps tool.Capabilities, out *outcome) {
	if !caps.CanSelect {
		return
	}
	i := m.boxAt(p)
	if i < 0 {
		return
	}
	if m.state == Dragging || m.state == Resizing {
		m.state = m.restState()
		m.target = ""
	}
	out.consumed = true
	if m.boxes[i].Editing {
		return
	}
	m.startEditing(i)
	out.changed = true
}

func (m *Manager) key(k Key, caps tool.Capabilities, out *outcome) {
	if i := m.editingIndex(); i >= 0 {
		out.consumed = true
		b := &m.boxes[i]
		switch k.Code {
		case KeyEscape:
			m.stopEditing()
			out.changed = true
		case KeyBackspace:
			if b.Text != "" {
				_, n := utf8.DecodeLastRuneInString(b.Text)
				b.Text = b.Text[:len(b.Text)-n]
				out.changed = true
			}
		case KeyEnter:
			b.Text += "\n"
			out.changed = true
		case KeyTab:
			b.Text += tabSpaces
			out.changed = true
		case KeyRune:
			if unicode.IsPrint(k.Rune) {
				b.Text += string(k.Rune)
				out.changed = true
			}
		}
		return
	}

	if k.Code == KeyEscape && m.state == Creating {
		m.cancelGesture()
		out.consumed = true
		out.changed = true
		return
	}

	i := m.index(m.selected)
	if i < 0 || caps == tool.None {
		return
	}
	switch k.Code {
	case KeyDelete, KeyBackspace:
		out.removed = m.remove(func(b TextBox) bool { return b.ID == m.selected })
		out.consumed = true
		out.changed = true
	case KeyLeft, KeyRight, KeyUp, KeyDown:
		if !caps.CanSelect || m.state != Idle {
			return
		}
		d := map[KeyCode]geom.Vec{KeyLeft: {X: -1}, KeyRight: {X: 1}, KeyUp: {Y: -1}, KeyDown: {Y: 1}}[k.Code]
		m.boxes[i].X += d.X
		m.boxes[i].Y += d.Y
		out.consumed = true
		out.changed = true
	case KeyEnter:
		if caps.CanSelect {
			m.startEditing(i)
			out.consumed = true
			out.changed = true
		}
	}
}

func (m *Manager) insert(text string, out *outcome) {
	i := m.editingIndex()
	if i < 0 || text == "" {
		return
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", tabSpaces)
	m.boxes[i].Text += text
	out.consumed = true
	out.changed = true
}

func (m *Manager) restyle(out *outcome, fn func(*TextBox) bool) {
	i := m.index(m.selected)
	if i < 0 {
		return
	}
	out.changed = fn(&m.boxes[i])
}

func (m *Manager) applyControl(i int, c control) bool {
	b := &m.boxes[i]
	switch c.kind {
	case textSwatch:
		return setColor(&b.TextColor, c.color)
	case backgroundSwatch:
		return setColor(&b.Background, c.color)
	case opacityCellControl:
		if b.Opacity == c.opacity {
			return false
		}
		b.Opacity = c.opacity
		return true
	}
	return false
}

func setColor(dst *string, c string) bool {
	hex, err := theme.NormalizeHex(c)
	if err != nil || *dst == hex {
		return false
	}
	*dst = hex
	return true
}

func clampOpacity(o float64) float64 {
	return min(max(o, 0), 1)
}

// cancelGesture drops a creation preview and rolls a drag or resize back to
// the geometry it started from.
func (m *Manager) cancelGesture() bool {
	switch m.state {
	case Creating:
		m.state = m.restState()
		return true
	case Dragging, Resizing:
		if i := m.index(m.target); i >= 0 {
			m.boxes[i].setRect(m.origin)
		}
		m.state = m.restState()
		m.target = ""
		m.handle = NoHandle
		return true
	}
	return false
}

func (m *Manager) remap(sc geom.Scale, out *outcome) {
	if sc.Identity() || sc.X <= 0 || sc.Y <= 0 {
		return
	}
	for i := range m.boxes {
		b := &m.boxes[i]
		size := geom.Vec{X: b.Width, Y: b.Height}
		if prev, ok := m.scaled[b.ID]; ok && b.Width == max(prev.X, m.minW) && b.Height == max(prev.Y, m.minH) {
			size = prev
		}
		size = geom.Vec{X: size.X * sc.X, Y: size.Y * sc.Y}
		if m.scaled == nil {
			m.scaled = make(map[string]geom.Vec)
		}
		m.scaled[b.ID] = size
		b.setRect(geom.Rect{
			X: b.X * sc.X, Y: b.Y * sc.Y,
			Width: max(size.X, m.minW), Height: max(size.Y, m.minH),
		})
	}
	m.start = geom.Vec{X: m.start.X * sc.X, Y: m.start.Y * sc.Y}
	m.current = geom.Vec{X: m.current.X * sc.X, Y: m.current.Y * sc.Y}
	m.origin = m.origin.Scaled(sc)
	out.changed = len(m.boxes) > 0 || m.state == Creating
}

// remove deletes matching boxes and fixes up selection and gesture state.
func (m *Manager) remove(match func(TextBox) bool) []string {
	var ids []string
	kept := m.boxes[:0:0]
	for _, b := range m.boxes {
		if match(b) {
			ids = append(ids, b.ID)
			delete(m.scaled, b.ID)
			continue
		}
		kept = append(kept, b)
	}
	if len(ids) == 0 {
		return nil
	}
	m.boxes = kept
	if m.index(m.selected) < 0 {
		m.selected = ""
	}
	if m.target != "" && m.index(m.target) < 0 {
		m.target = ""
		m.handle = NoHandle
		if m.state == Dragging || m.state == Resizing {
			m.state = Idle
		}
	}
	if m.state == Editing && m.editingIndex() < 0 {
		m.state = Idle
	}
	return ids
}

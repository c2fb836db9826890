// Package overlay manages the text boxes drawn above the stroke layer. All
// input arrives through Manager.Dispatch, which returns a snapshot of the
// resulting state.
package overlay

import (
	"fmt"

	"github.com/example/inkpane/internal/geom"
	"github.com/example/inkpane/internal/tool"
)

const (
	DefaultMinWidth   = 100.0
	DefaultMinHeight  = 20.0
	DefaultTextColor  = "#000000"
	DefaultBackground = "#ffffff"
	DefaultOpacity    = 1.0
)

// TextBox is a movable, resizable, styled text overlay.
type TextBox struct {
	ID            string
	X, Y          float64
	Width, Height float64
	Text          string
	Editing       bool
	TextColor     string
	Background    string
	Opacity       float64
}

// Rect returns the box geometry.
func (b TextBox) Rect() geom.Rect {
	return geom.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

func (b *TextBox) setRect(r geom.Rect) {
	b.X, b.Y, b.Width, b.Height = r.X, r.Y, r.Width, r.Height
}

// Style is the look applied to newly created boxes.
type Style struct {
	TextColor  string
	Background string
	Opacity    float64
}

// DefaultStyle is black text on white at full opacity.
func DefaultStyle() Style {
	return Style{TextColor: DefaultTextColor, Background: DefaultBackground, Opacity: DefaultOpacity}
}

// State is the interaction state of the manager.
type State int

const (
	Idle State = iota
	Creating
	Editing
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Handle identifies one of the eight resize handles.
type Handle int

const (
	NoHandle Handle = iota
	HandleNW
	HandleN
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW
)

var handleNames = map[Handle]string{
	HandleNW: "nw", HandleN: "n", HandleNE: "ne", HandleE: "e",
	HandleSE: "se", HandleS: "s", HandleSW: "sw", HandleW: "w",
}

func (h Handle) String() string {
	if n, ok := handleNames[h]; ok {
		return n
	}
	return "none"
}

// ParseHandle resolves a compass name such as "se".
func ParseHandle(s string) (Handle, bool) {
	for h, n := range handleNames {
		if n == s {
			return h, true
		}
	}
	return NoHandle, false
}

// edges reports which sides of the box the handle moves.
func (h Handle) edges() (north, south, east, west bool) {
	switch h {
	case HandleNW:
		return true, false, false, true
	case HandleN:
		return true, false, false, false
	case HandleNE:
		return true, false, true, false
	case HandleE:
		return false, false, true, false
	case HandleSE:
		return false, true, true, false
	case HandleS:
		return false, true, false, false
	case HandleSW:
		return false, true, false, true
	case HandleW:
		return false, false, false, true
	}
	return
}

// Snapshot is the state after an event was applied. Boxes is a copy.
type Snapshot struct {
	Boxes    []TextBox
	Selected string
	State    State
	// Preview is the rectangle being dragged out while creating.
	Preview *geom.Rect
	// Created is set on the event that committed a new box.
	Created *TextBox
	// Removed lists boxes deleted by the event.
	Removed []string
	// ToolRequest asks the controller to switch tools.
	ToolRequest *tool.Tool
	// Consumed reports that the event landed on a box, a handle or the style
	// panel, so it must not reach the stroke layer.
	Consumed bool
	// Changed reports whether anything visible changed.
	Changed bool
}

// Box returns the box with the given id.
func (s Snapshot) Box(id string) (TextBox, bool) {
	for _, b := range s.Boxes {
		if b.ID == id {
			return b, true
		}
	}
	return TextBox{}, false
}

// SelectedBox returns the selected box, if any.
func (s Snapshot) SelectedBox() (TextBox, bool) {
	if s.Selected == "" {
		return TextBox{}, false
	}
	return s.Box(s.Selected)
}

// EditingBox returns the box being edited, if any.
func (s Snapshot) EditingBox() (TextBox, bool) {
	for _, b := range s.Boxes {
		if b.Editing {
			return b, true
		}
	}
	return TextBox{}, false
}

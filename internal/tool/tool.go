// Package tool names the annotation tools and the capability set derived from
// the active tool.
package tool

import (
	"fmt"
	"strings"
)

// Tool identifies the active annotation tool.
type Tool int

const (
	Pen Tool = iota
	Eraser
	Text
	Selector
)

var names = [...]string{
	Pen:      "pen",
	Eraser:   "eraser",
	Text:     "text",
	Selector: "selector",
}

// All lists the tools in toolbar order.
func All() []Tool { return []Tool{Pen, Eraser, Text, Selector} }

func (t Tool) String() string {
	if t < 0 || int(t) >= len(names) {
		return fmt.Sprintf("tool(%d)", int(t))
	}
	return names[t]
}

// Parse resolves a tool name. "select" is accepted for the selector.
func Parse(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pen", "p":
		return Pen, nil
	case "eraser", "e":
		return Eraser, nil
	case "text", "t":
		return Text, nil
	case "selector", "select", "m":
		return Selector, nil
	}
	return Pen, fmt.Errorf("unknown tool %q", s)
}

// ForKey maps the single-letter key bindings to tools.
func ForKey(r rune) (Tool, bool) {
	switch r {
	case 'p', 'P':
		return Pen, true
	case 'e', 'E':
		return Eraser, true
	case 't', 'T':
		return Text, true
	case 'm', 'M':
		return Selector, true
	}
	return Pen, false
}

// Capabilities is computed once per event and handed to the components so
// they never inspect the tool themselves.
type Capabilities struct {
	CanDraw       bool
	CanErase      bool
	CanCreateText bool
	CanSelect     bool
}

// None grants nothing.
var None = Capabilities{}

// CapabilitiesFor returns what the active tool may do. Nothing is allowed
// while annotation mode is off.
func CapabilitiesFor(annotating bool, t Tool) Capabilities {
	if !annotating {
		return None
	}
	switch t {
	case Pen:
		return Capabilities{CanDraw: true}
	case Eraser:
		return Capabilities{CanErase: true}
	case Text:
		return Capabilities{CanCreateText: true}
	case Selector:
		return Capabilities{CanSelect: true}
	}
	return None
}

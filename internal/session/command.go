package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/inkpane/internal/overlay"
	"github.com/example/inkpane/internal/theme"
	"github.com/example/inkpane/internal/tool"
)

var (
	// ErrUnknownCommand is returned by Execute for commands it does not know.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrNoSelection is returned by style commands when no text box is
	// selected.
	ErrNoSelection = errors.New("no text box selected")
)

// Status summarises the session for the status command.
type Status struct {
	Annotating bool
	Tool       tool.Tool
	Color      string
	Width      float64
	Strokes    int
	TextBoxes  int
}

func (st Status) String() string {
	mode := "off"
	if st.Annotating {
		mode = "on"
	}
	return fmt.Sprintf("annotation=%s tool=%s color=%s width=%s strokes=%d textboxes=%d",
		mode, st.Tool, st.Color, strconv.FormatFloat(st.Width, 'f', -1, 64), st.Strokes, st.TextBoxes)
}

// Status reports the current mode, tool, pen and content counts.
func (s *Session) Status() Status {
	return Status{
		Annotating: s.annotating,
		Tool:       s.tool,
		Color:      s.strokes.Color(),
		Width:      s.strokes.Width(),
		Strokes:    len(s.strokes.Strokes()),
		TextBoxes:  len(s.snap.Boxes),
	}
}

// Commands lists the names Execute accepts.
func Commands() []string {
	return []string{"toggle", "on", "off", "clear", "tool", "color", "width",
		"textcolor", "background", "opacity", "status", "ping", "quit"}
}

// Execute runs one control command given as already tokenised arguments
// and returns the reply text.
func (s *Session) Execute(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: empty", ErrUnknownCommand)
	}
	name, rest := strings.ToLower(args[0]), args[1:]
	needArg := func() (string, error) {
		if len(rest) != 1 {
			return "", fmt.Errorf("%s takes exactly one argument", name)
		}
		return rest[0], nil
	}
	switch name {
	case "ping":
		return "pong", nil
	case "status":
		return s.Status().String(), nil
	case "toggle":
		s.Toggle(ctx)
	case "on":
		s.SetAnnotation(ctx, true)
	case "off":
		s.SetAnnotation(ctx, false)
	case "clear":
		s.Clear()
	case "tool":
		v, err := needArg()
		if err != nil {
			return "", err
		}
		t, err := tool.Parse(v)
		if err != nil {
			return "", err
		}
		s.SelectTool(t)
	case "color":
		v, err := needArg()
		if err != nil {
			return "", err
		}
		if err := s.SetColor(v); err != nil {
			return "", err
		}
	case "width":
		v, err := needArg()
		if err != nil {
			return "", err
		}
		w, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", fmt.Errorf("width: %w", err)
		}
		if err := s.SetWidth(w); err != nil {
			return "", err
		}
	case "textcolor", "background":
		v, err := needArg()
		if err != nil {
			return "", err
		}
		hex, err := theme.NormalizeHex(v)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		var ev overlay.Event = overlay.SetTextColor{Color: hex}
		if name == "background" {
			ev = overlay.SetBackground{Color: hex}
		}
		if _, ok := s.snap.SelectedBox(); !ok {
			return "", ErrNoSelection
		}
		s.Style(ev)
	case "opacity":
		v, err := needArg()
		if err != nil {
			return "", err
		}
		o, err := strconv.ParseFloat(v, 64)
		if err != nil || o < 0 || o > 1 {
			return "", fmt.Errorf("opacity must be between 0 and 1, got %q", v)
		}
		if _, ok := s.snap.SelectedBox(); !ok {
			return "", ErrNoSelection
		}
		s.Style(overlay.SetOpacity{Opacity: o})
	case "quit":
		s.Close(ctx)
		return "bye", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return s.Status().String(), nil
}

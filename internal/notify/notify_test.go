package notify

import (
	"errors"
	"image"
	"os"
	"testing"

	"github.com/example/inkpane/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
	iconExisted bool
}

func capture(t *testing.T, err error) *[]sent {
	t.Helper()
	var got []sent
	prev := send
	send = func(title, body string, opts platform.Options) error {
		s := sent{title: title, body: body, opts: opts}
		if opts.IconPath != "" {
			_, statErr := os.Stat(opts.IconPath)
			s.iconExisted = statErr == nil
		}
		got = append(got, s)
		return err
	}
	t.Cleanup(func() { send = prev })
	return &got
}

func TestDisabledEventsAreSilent(t *testing.T) {
	got := capture(t, nil)
	n := New(DefaultPreferences())
	n.Annotate(true)
	n.Copy("hello")
	var nilNotifier *Notifier
	nilNotifier.Clear("", nil)
	if len(*got) != 0 {
		t.Fatalf("sent %v", *got)
	}
}

func TestAnnotateAndCopy(t *testing.T) {
	got := capture(t, nil)
	n := New(DefaultPreferences())
	n.Enable(EventAnnotate, true)
	n.Enable(EventCopy, true)
	n.Annotate(false)
	n.Copy("")
	if len(*got) != 2 {
		t.Fatalf("sent %v", *got)
	}
	if (*got)[0].title != "inkpane" || (*got)[0].body != "Annotation off" {
		t.Fatalf("annotate = %+v", (*got)[0])
	}
	if (*got)[1].body != "Copied text to clipboard" {
		t.Fatalf("copy = %+v", (*got)[1])
	}
}

func TestClearAttachesPreview(t *testing.T) {
	got := capture(t, errors.New("no bus"))
	n := New(DefaultPreferences())
	n.Enable(EventClear, true)
	n.Clear("3 strokes", image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if len(*got) != 1 {
		t.Fatalf("sent %v", *got)
	}
	s := (*got)[0]
	if s.body != "Cleared 3 strokes" || !s.iconExisted {
		t.Fatalf("clear = %+v", s)
	}
	if _, err := os.Stat(s.opts.IconPath); !os.IsNotExist(err) {
		t.Fatalf("preview file should be removed after sending")
	}
}

func TestLoadPreferencesFromEnv(t *testing.T) {
	t.Setenv("INKPANE_NOTIFY_TITLE", "Ink")
	t.Setenv("INKPANE_NOTIFY_CLEAR_TEXT", "Wiped %s")
	p := LoadPreferences()
	if p.Title != "Ink" || p.Events[EventClear].Template != "Wiped %s" {
		t.Fatalf("prefs = %+v", p)
	}
}

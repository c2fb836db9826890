package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mattn/go-shellwords"

	"github.com/example/inkpane/internal/capture"
	"github.com/example/inkpane/internal/config"
	"github.com/example/inkpane/internal/theme"
)

type fakeCommander struct {
	mu   sync.Mutex
	seen [][]string
}

func (f *fakeCommander) Command(_ context.Context, args []string) (string, error) {
	f.mu.Lock()
	f.seen = append(f.seen, args)
	f.mu.Unlock()
	switch args[0] {
	case "ping":
		return "pong", nil
	case "clear":
		return "", nil
	}
	return "", errors.New("unknown command: " + args[0])
}

func startServer(t *testing.T, target commander) string {
	t.Helper()
	dir := t.TempDir()
	srv, err := listenControl(dir, "test", target)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.serve(ctx); err != nil {
			t.Errorf("serve: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return socketPath(dir, "test")
}

func TestControlRoundTrip(t *testing.T) {
	fake := &fakeCommander{}
	path := startServer(t, fake)

	var out bytes.Buffer
	if err := sendCommands(path, []string{"ping", "clear", `tool "pen"`}, &out); err == nil {
		t.Fatal("expected the unknown tool command to fail")
	} else if !strings.Contains(err.Error(), "unknown command: tool") {
		t.Fatalf("unexpected error %v", err)
	}
	if got := out.String(); got != "pong\n" {
		t.Fatalf("stdout = %q", got)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.seen) != 3 || len(fake.seen[2]) != 2 || fake.seen[2][1] != "pen" {
		t.Fatalf("commands seen = %q", fake.seen)
	}
}

func TestListenRefusesRunningSession(t *testing.T) {
	path := startServer(t, &fakeCommander{})
	if _, err := listenControl(filepath.Dir(path), "test", &fakeCommander{}); err == nil {
		t.Fatal("expected a second listener on the same name to fail")
	}
}

func TestSendWithoutServer(t *testing.T) {
	err := sendCommands(filepath.Join(t.TempDir(), "missing.sock"), []string{"ping"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "no running inkpane session") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestQuoteArgsRoundTrip(t *testing.T) {
	cases := [][]string{
		{"toggle"},
		{"color", "#ff0000"},
		{"tool", "it's here"},
		{"color", "a b;c"},
	}
	for _, args := range cases {
		got, err := shellwords.Parse(quoteArgs(args))
		if err != nil {
			t.Fatalf("%q: %v", args, err)
		}
		if strings.Join(got, "\x00") != strings.Join(args, "\x00") || len(got) != len(args) {
			t.Fatalf("round trip of %q gave %q", args, got)
		}
	}
}

func TestResolveSocketDir(t *testing.T) {
	t.Setenv("INKPANE_SOCKET_DIR", "")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	if got, _ := resolveSocketDir(""); got != "/run/user/1000/inkpane" {
		t.Fatalf("xdg dir = %q", got)
	}
	t.Setenv("INKPANE_SOCKET_DIR", "/tmp/ink")
	if got, _ := resolveSocketDir(""); got != "/tmp/ink" {
		t.Fatalf("env dir = %q", got)
	}
	if got, _ := resolveSocketDir("/srv/sock"); got != "/srv/sock" {
		t.Fatalf("explicit dir = %q", got)
	}
}

func TestResolveThemePrecedence(t *testing.T) {
	cfg := config.New()
	custom := theme.Default()
	custom.ToolbarBackground.R = 1
	cfg.Themes["mine"] = custom
	cfg.Theme = "mine"

	t.Setenv("INKPANE_THEME", "")
	if got := resolveTheme("", cfg); got != custom {
		t.Fatal("config theme should apply without flag or env")
	}
	t.Setenv("INKPANE_THEME", "default")
	if got := resolveTheme("", cfg); got == custom {
		t.Fatal("env should override config")
	}
	if got := resolveTheme("mine", cfg); got != custom {
		t.Fatal("flag should override env")
	}
	if got := resolveTheme("no-such-theme", cfg); got == nil {
		t.Fatal("unknown themes fall back to the default")
	}
}

func TestUsageErrorRendersHelp(t *testing.T) {
	r := newRoot()
	r.config = config.New()
	msg := (&UsageError{of: r}).Error()
	for _, want := range []string{"Usage: inkpane", "-theme", "control"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("root help missing %q:\n%s", want, msg)
		}
	}
	c := &controlCmd{root: r}
	if msg := (&UsageError{of: c}).Error(); !strings.Contains(msg, "toggle") {
		t.Fatalf("control help should list commands:\n%s", msg)
	}
}

func TestMonitorsCmd(t *testing.T) {
	orig := listMonitorsFn
	t.Cleanup(func() { listMonitorsFn = orig })
	listMonitorsFn = func() ([]capture.MonitorInfo, error) {
		return []capture.MonitorInfo{
			{Index: 0, Name: "DP-1", Rect: image.Rect(0, 0, 1920, 1080), Primary: true},
			{Index: 1, Name: "HDMI-1", Rect: image.Rect(1920, 0, 3200, 1024)},
		}, nil
	}
	var out bytes.Buffer
	cmd := &monitorsCmd{root: &root{program: "inkpane"}, stdout: &out}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"* 0: DP-1 1920x1080+0+0", "  1: HDMI-1 1280x1024+1920+0"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}

	sentinel := errors.New("no display")
	listMonitorsFn = func() ([]capture.MonitorInfo, error) { return nil, sentinel }
	if err := cmd.Run(); !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestConfigPrint(t *testing.T) {
	cfg := config.New()
	cfg.Pen.Color = "#2196f3"
	var out bytes.Buffer
	c, err := parseConfigCmd([]string{"print"}, &root{program: "inkpane", config: cfg})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c.stdout = &out
	if err := c.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	parsed, err := config.Parse(strings.NewReader(out.String()))
	if err != nil {
		t.Fatalf("printed config does not parse: %v", err)
	}
	if parsed.Pen.Color != "#2196f3" {
		t.Fatalf("pen colour = %q", parsed.Pen.Color)
	}
}

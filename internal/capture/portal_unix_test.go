//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestPortalScreenshotOptions(t *testing.T) {
	prevToken := portalHandleToken
	portalHandleToken = func() string { return "test-token" }
	t.Cleanup(func() { portalHandleToken = prevToken })

	tests := []struct {
		name       string
		opts       Options
		wantCursor string
	}{
		{name: "defaults", wantCursor: "hidden"},
		{name: "cursor", opts: Options{IncludeCursor: true}, wantCursor: "embedded"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			values := portalScreenshotOptions(tc.opts)
			if got := values["cursor_mode"].Value().(string); got != tc.wantCursor {
				t.Fatalf("cursor_mode = %q, want %q", got, tc.wantCursor)
			}
			if got := values["interactive"].Value().(bool); got {
				t.Fatalf("backdrop capture must not be interactive")
			}
			if got := values["handle_token"].Value().(string); got != "test-token" {
				t.Fatalf("handle_token = %q", got)
			}
			if len(values) != 4 {
				t.Fatalf("expected 4 options, got %d", len(values))
			}
		})
	}
}

func TestPortalResultPath(t *testing.T) {
	ok := []interface{}{uint32(0), map[string]dbus.Variant{"uri": dbus.MakeVariant("file:///tmp/Screenshot%20one.png")}}
	if got, err := portalResultPath(ok); err != nil || got != "/tmp/Screenshot one.png" {
		t.Fatalf("path = %q, %v", got, err)
	}
	denied := []interface{}{uint32(1), map[string]dbus.Variant{}}
	if _, err := portalResultPath(denied); err == nil {
		t.Fatalf("expected an error for a cancelled request")
	}
	if _, err := portalResultPath([]interface{}{uint32(0)}); err == nil {
		t.Fatalf("expected an error for a short body")
	}
}

func TestLoadPNGRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, err := loadPNG(path)
	if err != nil {
		t.Fatalf("loadPNG: %v", err)
	}
	if img.Bounds() != src.Bounds() || img.RGBAAt(1, 1) != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Fatalf("decoded image differs")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("portal file should be removed")
	}
}

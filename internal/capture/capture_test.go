package capture

import (
	"errors"
	"image"
	"strings"
	"testing"
)

type fakeBackend struct {
	monitors []MonitorInfo
	err      error
}

func (f fakeBackend) ListMonitors() ([]MonitorInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.monitors, nil
}

func (f fakeBackend) RootImage() (*image.RGBA, error) {
	return nil, errors.New("not used")
}

func stubSources(t *testing.T, wayland bool, root, portal func() (*image.RGBA, error)) {
	t.Helper()
	prevRoot, prevPortal, prevWayland := rootImageFn, portalScreenshotFn, waylandFn
	t.Cleanup(func() {
		rootImageFn, portalScreenshotFn, waylandFn = prevRoot, prevPortal, prevWayland
	})
	rootImageFn = root
	portalScreenshotFn = func(Options) (*image.RGBA, error) { return portal() }
	waylandFn = func() bool { return wayland }
}

func TestBackdropPrefersRootWindowOnX11(t *testing.T) {
	want := image.NewRGBA(image.Rect(0, 0, 4, 4))
	portalCalled := false
	stubSources(t, false,
		func() (*image.RGBA, error) { return want, nil },
		func() (*image.RGBA, error) {
			portalCalled = true
			return nil, errors.New("unused")
		},
	)
	got, err := Backdrop(Options{})
	if err != nil || got != want {
		t.Fatalf("Backdrop = %v, %v", got, err)
	}
	if portalCalled {
		t.Fatalf("portal should not be used when the root window is readable")
	}
}

func TestBackdropFallsBackToPortal(t *testing.T) {
	want := image.NewRGBA(image.Rect(0, 0, 2, 2))
	stubSources(t, false,
		func() (*image.RGBA, error) { return nil, errors.New("no X") },
		func() (*image.RGBA, error) { return want, nil },
	)
	if got, err := Backdrop(Options{}); err != nil || got != want {
		t.Fatalf("Backdrop = %v, %v", got, err)
	}
}

func TestBackdropJoinsErrors(t *testing.T) {
	rootErr := errors.New("no X")
	portalErr := errors.New("no portal")
	stubSources(t, false,
		func() (*image.RGBA, error) { return nil, rootErr },
		func() (*image.RGBA, error) { return nil, portalErr },
	)
	_, err := Backdrop(Options{})
	if !errors.Is(err, rootErr) || !errors.Is(err, portalErr) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "root window") {
		t.Fatalf("missing context: %v", err)
	}
}

func TestBackdropWaylandUsesPortalOnly(t *testing.T) {
	want := image.NewRGBA(image.Rect(0, 0, 2, 2))
	stubSources(t, true,
		func() (*image.RGBA, error) {
			t.Errorf("root window read on wayland")
			return nil, nil
		},
		func() (*image.RGBA, error) { return want, nil },
	)
	if got, err := Backdrop(Options{}); err != nil || got != want {
		t.Fatalf("Backdrop = %v, %v", got, err)
	}
}

func TestBackdropCropsToMonitor(t *testing.T) {
	shot := image.NewRGBA(image.Rect(0, 0, 300, 100))
	stubSources(t, false,
		func() (*image.RGBA, error) { return shot, nil },
		func() (*image.RGBA, error) { return nil, errors.New("unused") },
	)
	prev := backend
	backend = fakeBackend{monitors: []MonitorInfo{
		{Index: 0, Name: "DP-1", Rect: image.Rect(0, 0, 100, 100)},
		{Index: 1, Name: "HDMI-1", Rect: image.Rect(100, 0, 300, 100), Primary: true},
	}}
	t.Cleanup(func() { backend = prev })

	img, err := Backdrop(Options{Monitor: "primary"})
	if err != nil {
		t.Fatalf("Backdrop: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 200, 100) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}

func TestFindMonitor(t *testing.T) {
	mons := []MonitorInfo{
		{Index: 0, Name: "eDP-1", Rect: image.Rect(0, 0, 10, 10)},
		{Index: 1, Name: "HDMI-1", Rect: image.Rect(10, 0, 20, 10), Primary: true},
	}
	tests := []struct {
		sel     string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"primary", 1, false},
		{"#1", 1, false},
		{"0", 0, false},
		{"hdmi", 1, false},
		{"5", 0, true},
		{"vga", 0, true},
	}
	for _, tc := range tests {
		got, err := FindMonitor(mons, tc.sel)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tc.sel)
			}
			continue
		}
		if err != nil || got.Index != tc.want {
			t.Errorf("%q: got %d, %v", tc.sel, got.Index, err)
		}
	}
	if _, err := FindMonitor(nil, ""); !errors.Is(err, errNoMonitors) {
		t.Errorf("empty list: %v", err)
	}
}

func TestMonitorAt(t *testing.T) {
	mons := []MonitorInfo{
		{Index: 0, Rect: image.Rect(0, 0, 10, 10)},
		{Index: 1, Rect: image.Rect(10, 0, 20, 10)},
	}
	if m, ok := MonitorAt(mons, image.Pt(15, 5)); !ok || m.Index != 1 {
		t.Fatalf("MonitorAt = %+v %v", m, ok)
	}
	if m, ok := MonitorAt(mons, image.Pt(50, 50)); !ok || m.Index != 0 {
		t.Fatalf("outside point should fall back to the first monitor")
	}
	if _, ok := MonitorAt(nil, image.Point{}); ok {
		t.Fatalf("no monitors")
	}
}

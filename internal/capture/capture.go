// Package capture grabs the desktop behind the overlay so annotation mode
// can show it as a frozen backdrop.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// Options selects what Backdrop captures.
type Options struct {
	// Monitor restricts the capture to one monitor, see FindMonitor. Empty
	// keeps the whole desktop.
	Monitor string
	// IncludeCursor asks the portal to embed the pointer.
	IncludeCursor bool
}

var (
	portalScreenshotFn = portalScreenshot
	rootImageFn        = func() (*image.RGBA, error) { return backend.RootImage() }
	waylandFn          = runningOnWayland
)

// Backdrop captures the desktop. X11 sessions read the root window directly
// and fall back to the screenshot portal, which is the only route on
// Wayland.
func Backdrop(opts Options) (*image.RGBA, error) {
	img, err := screenshot(opts)
	if err != nil {
		return nil, err
	}
	if opts.Monitor == "" {
		return img, nil
	}
	monitors, err := ListMonitors()
	if err != nil {
		return nil, err
	}
	monitor, err := FindMonitor(monitors, opts.Monitor)
	if err != nil {
		return nil, err
	}
	return cropToRect(img, monitor.Rect)
}

func screenshot(opts Options) (*image.RGBA, error) {
	if waylandFn() {
		return portalScreenshotFn(opts)
	}
	img, rootErr := rootImageFn()
	if rootErr == nil {
		return img, nil
	}
	img, err := portalScreenshotFn(opts)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("root window: %w", rootErr), err)
	}
	return img, nil
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}

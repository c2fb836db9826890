// Package clipboard copies overlay text to and from the desktop clipboard.
package clipboard

import (
	"errors"
	"os"
)

var (
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
	// ErrEmpty is returned by ReadText when the clipboard holds no text.
	ErrEmpty = errors.New("clipboard does not contain text data")
)

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package window

func findCurrent(string) (Window, error) {
	return nil, ErrNotFound
}

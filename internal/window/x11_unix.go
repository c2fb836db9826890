//go:build linux || freebsd || openbsd || netbsd || dragonfly

package window

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/shape"
	"github.com/jezek/xgb/xproto"
)

const (
	netWMStateRemove = 0
	netWMStateAdd    = 1
	sourceNormalApp  = 1

	mwmHintsDecorations = 1 << 1
)

// X11 talks EWMH to the window manager on behalf of one client window.
type X11 struct {
	conn  *xgb.Conn
	root  xproto.Window
	win   xproto.Window
	shape bool

	mu    sync.Mutex
	atoms map[string]xproto.Atom
}

func findCurrent(title string) (Window, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	setup := xproto.Setup(conn)
	if setup == nil {
		conn.Close()
		return nil, fmt.Errorf("xproto setup unavailable")
	}
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		conn.Close()
		return nil, fmt.Errorf("xproto screen unavailable")
	}
	x := &X11{conn: conn, root: screen.Root, atoms: map[string]xproto.Atom{}}
	x.shape = shape.Init(conn) == nil

	win, err := x.lookup(uint32(os.Getpid()), title)
	if err != nil {
		conn.Close()
		return nil, err
	}
	x.win = win
	return x, nil
}

// lookup walks the managed client list for a window owned by pid, or failing
// that one whose title matches.
func (x *X11) lookup(pid uint32, title string) (xproto.Window, error) {
	listAtom, err := x.atom("_NET_CLIENT_LIST")
	if err != nil {
		return 0, err
	}
	reply, err := xproto.GetProperty(x.conn, false, x.root, listAtom, xproto.AtomWindow, 0, 1<<16).Reply()
	if err != nil {
		return 0, fmt.Errorf("client list: %w", err)
	}
	var byTitle xproto.Window
	for idx := 0; idx < int(reply.ValueLen); idx++ {
		win := xproto.Window(xgb.Get32(reply.Value[idx*4:]))
		name := x.readTitle(win)
		if x.readPID(win) == pid && (title == "" || name == title) {
			return win, nil
		}
		if byTitle == 0 && title != "" && name == title {
			byTitle = win
		}
	}
	if byTitle != 0 {
		return byTitle, nil
	}
	return 0, ErrNotFound
}

func (x *X11) atom(name string) (xproto.Atom, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if a, ok := x.atoms[name]; ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(x.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern %s: %w", name, err)
	}
	x.atoms[name] = reply.Atom
	return reply.Atom, nil
}

func (x *X11) readPID(win xproto.Window) uint32 {
	atom, err := x.atom("_NET_WM_PID")
	if err != nil {
		return 0
	}
	reply, err := xproto.GetProperty(x.conn, false, win, atom, xproto.AtomCardinal, 0, 1).Reply()
	if err != nil || reply.Format != 32 || reply.ValueLen == 0 {
		return 0
	}
	return xgb.Get32(reply.Value)
}

func (x *X11) readTitle(win xproto.Window) string {
	if atom, err := x.atom("_NET_WM_NAME"); err == nil {
		if utf8, err := x.atom("UTF8_STRING"); err == nil {
			reply, err := xproto.GetProperty(x.conn, false, win, atom, utf8, 0, 1<<16).Reply()
			if err == nil && reply.ValueLen > 0 {
				return strings.TrimRight(string(reply.Value), "\x00")
			}
		}
	}
	reply, err := xproto.GetProperty(x.conn, false, win, xproto.AtomWmName, xproto.AtomString, 0, 1<<16).Reply()
	if err != nil || reply.ValueLen == 0 {
		return ""
	}
	return strings.TrimRight(string(reply.Value), "\x00")
}

// clientMessage sends a 32-bit client message about x.win to the root
// window, which is how EWMH state changes reach the window manager.
func (x *X11) clientMessage(ctx context.Context, msgType string, data ...uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	typ, err := x.atom(msgType)
	if err != nil {
		return err
	}
	payload := make([]uint32, 5)
	copy(payload, data)
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: x.win,
		Type:   typ,
		Data:   xproto.ClientMessageDataUnionData32New(payload),
	}
	mask := uint32(xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify)
	if err := xproto.SendEventChecked(x.conn, false, x.root, mask, string(ev.Bytes())).Check(); err != nil {
		return fmt.Errorf("send %s: %w", msgType, err)
	}
	return nil
}

func (x *X11) setState(ctx context.Context, state string, on bool) error {
	a, err := x.atom(state)
	if err != nil {
		return err
	}
	action := uint32(netWMStateRemove)
	if on {
		action = netWMStateAdd
	}
	return x.clientMessage(ctx, "_NET_WM_STATE", action, uint32(a), 0, sourceNormalApp)
}

func (x *X11) configure(ctx context.Context, mask uint16, values ...uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := xproto.ConfigureWindowChecked(x.conn, x.win, mask, values).Check(); err != nil {
		return fmt.Errorf("configure window: %w", err)
	}
	return nil
}

func (x *X11) SetSize(ctx context.Context, w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid size %dx%d", w, h)
	}
	return x.configure(ctx, xproto.ConfigWindowWidth|xproto.ConfigWindowHeight, uint32(w), uint32(h))
}

func (x *X11) SetPosition(ctx context.Context, px, py int) error {
	return x.configure(ctx, xproto.ConfigWindowX|xproto.ConfigWindowY, uint32(int32(px)), uint32(int32(py)))
}

func (x *X11) SetFullscreen(ctx context.Context, on bool) error {
	return x.setState(ctx, "_NET_WM_STATE_FULLSCREEN", on)
}

func (x *X11) SetAlwaysOnTop(ctx context.Context, on bool) error {
	return x.setState(ctx, "_NET_WM_STATE_ABOVE", on)
}

// SetIgnoreCursorEvents replaces the input shape with an empty region so
// clicks fall through to the desktop, or restores the default region.
func (x *X11) SetIgnoreCursorEvents(ctx context.Context, on bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !x.shape {
		return fmt.Errorf("shape extension unavailable")
	}
	var err error
	if on {
		err = shape.RectanglesChecked(x.conn, shape.SoSet, shape.SkInput, xproto.ClipOrderingUnsorted, x.win, 0, 0, nil).Check()
	} else {
		err = shape.MaskChecked(x.conn, shape.SoSet, shape.SkInput, x.win, 0, 0, xproto.PixmapNone).Check()
	}
	if err != nil {
		return fmt.Errorf("input shape: %w", err)
	}
	return nil
}

// SetDecorations writes the Motif hints most window managers honour for
// borderless windows.
func (x *X11) SetDecorations(ctx context.Context, on bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a, err := x.atom("_MOTIF_WM_HINTS")
	if err != nil {
		return err
	}
	decorations := uint32(0)
	if on {
		decorations = 1
	}
	hints := []uint32{mwmHintsDecorations, 0, decorations, 0, 0}
	buf := make([]byte, len(hints)*4)
	for i, v := range hints {
		xgb.Put32(buf[i*4:], v)
	}
	if err := xproto.ChangePropertyChecked(x.conn, xproto.PropModeReplace, x.win, a, a, 32, uint32(len(hints)), buf).Check(); err != nil {
		return fmt.Errorf("motif hints: %w", err)
	}
	return nil
}

func (x *X11) SetFocus(ctx context.Context) error {
	if err := x.clientMessage(ctx, "_NET_ACTIVE_WINDOW", sourceNormalApp, xproto.TimeCurrentTime); err != nil {
		return err
	}
	if err := xproto.SetInputFocusChecked(x.conn, xproto.InputFocusParent, x.win, xproto.TimeCurrentTime).Check(); err != nil {
		return fmt.Errorf("set input focus: %w", err)
	}
	return nil
}

func (x *X11) IsFullscreen(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	stateAtom, err := x.atom("_NET_WM_STATE")
	if err != nil {
		return false, err
	}
	fs, err := x.atom("_NET_WM_STATE_FULLSCREEN")
	if err != nil {
		return false, err
	}
	reply, err := xproto.GetProperty(x.conn, false, x.win, stateAtom, xproto.AtomAtom, 0, 64).Reply()
	if err != nil {
		return false, fmt.Errorf("read wm state: %w", err)
	}
	if reply.Format != 32 {
		return false, nil
	}
	for idx := 0; idx < int(reply.ValueLen); idx++ {
		if xproto.Atom(xgb.Get32(reply.Value[idx*4:])) == fs {
			return true, nil
		}
	}
	return false, nil
}

// Close asks the window manager to close the window and drops the X
// connection.
func (x *X11) Close(ctx context.Context) error {
	err := x.clientMessage(ctx, "_NET_CLOSE_WINDOW", xproto.TimeCurrentTime, sourceNormalApp)
	x.conn.Close()
	return err
}

//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Without cgo the CLIPBOARD selection is owned directly over the X11 wire
// protocol. Only UTF-8 text is offered and requested.

var (
	initOnce sync.Once
	initErr  error
	owner    *selectionOwner
)

func ensureInit() error {
	initOnce.Do(func() {
		if !hasDisplay() {
			initErr = errNoDisplay
			return
		}
		o, err := newSelectionOwner()
		if err != nil {
			initErr = fmt.Errorf("clipboard owner window: %w", err)
			return
		}
		owner = o
	})
	return initErr
}

// WriteText takes ownership of the CLIPBOARD selection and serves text to
// requesting clients until another owner takes over.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return owner.own(text)
}

// ReadText returns UTF-8 text data from the clipboard.
func ReadText() (string, error) {
	if err := ensureInit(); err != nil {
		return "", err
	}
	data, err := owner.fetch(owner.atoms[atomUTF8])
	if err != nil {
		if data, err = owner.fetch(xproto.AtomString); err != nil {
			return "", err
		}
	}
	// STRING replies from some clients end in a NUL.
	data = bytes.TrimRight(data, "\x00")
	if len(data) == 0 {
		return "", ErrEmpty
	}
	return string(data), nil
}

const (
	atomClipboard = "CLIPBOARD"
	atomTargets   = "TARGETS"
	atomUTF8      = "UTF8_STRING"
	atomPlain     = "text/plain;charset=utf-8"
	atomTransfer  = "INKPANE_SELECTION"
)

type selectionOwner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  map[string]xproto.Atom

	mu   sync.Mutex
	text []byte
}

func newSelectionOwner() (*selectionOwner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	win, err := hiddenWindow(conn, xproto.EventMaskPropertyChange|xproto.EventMaskStructureNotify)
	if err != nil {
		conn.Close()
		return nil, err
	}
	atoms := make(map[string]xproto.Atom)
	for _, name := range []string{atomClipboard, atomTargets, atomUTF8, atomPlain, atomTransfer} {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			xproto.DestroyWindow(conn, win)
			conn.Close()
			return nil, fmt.Errorf("intern %s: %w", name, err)
		}
		atoms[name] = reply.Atom
	}
	o := &selectionOwner{conn: conn, window: win, atoms: atoms}
	go o.serve()
	return o, nil
}

// hiddenWindow creates the 1x1 unmapped window used as selection owner or
// requestor.
func hiddenWindow(conn *xgb.Conn, mask uint32) (xproto.Window, error) {
	screen := xproto.Setup(conn).DefaultScreen(conn)
	win, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateWindowChecked(conn, 0, win, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{mask}).Check()
	return win, err
}

func (o *selectionOwner) own(text string) error {
	o.mu.Lock()
	o.text = []byte(text)
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atoms[atomClipboard], xproto.TimeCurrentTime).Check()
}

func (o *selectionOwner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.text = nil
			o.mu.Unlock()
		}
	}
}

// answer stores the requested conversion on the requestor's property and
// notifies it. Unsupported targets are refused with property None.
func (o *selectionOwner) answer(e xproto.SelectionRequestEvent) {
	o.mu.Lock()
	text := o.text
	o.mu.Unlock()

	prop := e.Property
	if prop == xproto.AtomNone {
		prop = e.Target
	}
	switch e.Target {
	case o.atoms[atomTargets]:
		offered := []xproto.Atom{o.atoms[atomTargets]}
		if len(text) > 0 {
			offered = append(offered, o.atoms[atomUTF8], o.atoms[atomPlain], xproto.AtomString)
		}
		buf := make([]byte, 4*len(offered))
		for i, a := range offered {
			xgb.Put32(buf[4*i:], uint32(a))
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, prop, xproto.AtomAtom, 32, uint32(len(offered)), buf)
	case o.atoms[atomUTF8], o.atoms[atomPlain], xproto.AtomString:
		if len(text) == 0 {
			prop = xproto.AtomNone
			break
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, prop, o.atoms[atomUTF8], 8, uint32(len(text)), text)
	default:
		prop = xproto.AtomNone
	}

	reply := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  prop,
	}
	xproto.SendEvent(o.conn, false, e.Requestor, 0, string(reply.Bytes()))
}

// fetch converts the CLIPBOARD selection to target on a fresh connection and
// waits for the owner's reply.
func (o *selectionOwner) fetch(target xproto.Atom) ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	win, err := hiddenWindow(conn, xproto.EventMaskPropertyChange)
	if err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, win)

	transfer := o.atoms[atomTransfer]
	if err := xproto.ConvertSelectionChecked(conn, win, o.atoms[atomClipboard], target, transfer, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}
	for {
		ev, err := conn.WaitForEvent()
		if err != nil {
			return nil, err
		}
		n, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if n.Property == xproto.AtomNone {
			return nil, ErrEmpty
		}
		reply, perr := xproto.GetProperty(conn, true, win, transfer, xproto.GetPropertyTypeAny, 0, 1<<24).Reply()
		if perr != nil {
			return nil, perr
		}
		return append([]byte(nil), reply.Value...), nil
	}
}

package overlay

import "github.com/example/inkpane/internal/geom"

// Event is anything Manager.Dispatch accepts.
type Event interface {
	overlayEvent()
}

// PointerDown is a primary button press in surface coordinates.
type PointerDown struct{ At geom.Vec }

// PointerMove is pointer motion while a button may be held.
type PointerMove struct{ At geom.Vec }

// PointerUp releases the primary button.
type PointerUp struct{ At geom.Vec }

// DoubleClick follows the second press of a double click.
type DoubleClick struct{ At geom.Vec }

// KeyCode names the non-printing keys the manager reacts to.
type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyEscape
	KeyDelete
	KeyBackspace
	KeyEnter
	KeyTab
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
)

// Key is a key press. Rune is used when Code is KeyRune.
type Key struct {
	Code KeyCode
	Rune rune
}

// InsertText appends pasted text to the editing box.
type InsertText struct{ Text string }

// Blur ends editing, as when the surface loses focus.
type Blur struct{}

// SetTextColor restyles the selected box.
type SetTextColor struct{ Color string }

// SetBackground restyles the selected box.
type SetBackground struct{ Color string }

// SetOpacity restyles the selected box. Values are clamped to [0,1].
type SetOpacity struct{ Opacity float64 }

// Cancel aborts any creation, drag or resize in progress.
type Cancel struct{}

// Clear removes every box.
type Clear struct{}

// Remap scales every box after a surface resize.
type Remap struct{ Scale geom.Scale }

// Remove deletes the box with the given id.
type Remove struct{ ID string }

func (PointerDown) overlayEvent()   {}
func (PointerMove) overlayEvent()   {}
func (PointerUp) overlayEvent()     {}
func (DoubleClick) overlayEvent()   {}
func (Key) overlayEvent()           {}
func (InsertText) overlayEvent()    {}
func (Blur) overlayEvent()          {}
func (SetTextColor) overlayEvent()  {}
func (SetBackground) overlayEvent() {}
func (SetOpacity) overlayEvent()    {}
func (Cancel) overlayEvent()        {}
func (Clear) overlayEvent()         {}
func (Remap) overlayEvent()         {}
func (Remove) overlayEvent()        {}

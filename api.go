package mandel

import (
	"errors"
	"image"
)

// ErrSurfaceUnavailable is returned when a surface cannot hand out its pixel buffer.
var ErrSurfaceUnavailable = errors.New("surface unavailable")

// RGB is a single opaque pixel colour.
type RGB struct {
	R, G, B uint8
}

// PixelBuffer is the mutable pixel grid of a Surface.
// Writes to distinct pixels may happen from different goroutines.
type PixelBuffer interface {
	Size() (w, h int)
	SetRGB(x, y int, c RGB)
}

// Surface is the window (or window-like thing) the fractal is drawn into.
type Surface interface {
	// Size reports the window size in pixels.
	Size() (w, h int)

	// Buffer gives exclusive write access to the window pixels.
	// The returned buffer must not be used after the render pass that requested it.
	Buffer() (PixelBuffer, error)

	// PresentRegion pushes only the given rectangles of the buffer to the screen.
	PresentRegion(rects []image.Rectangle) error

	// PresentAll pushes the whole buffer to the screen.
	PresentAll() error

	// PollEvent returns the next pending event. It never blocks.
	PollEvent() (Event, bool)
}

type EventKind int

const (
	EventNone EventKind = iota
	EventQuit
	EventKeyDown
	EventMouseButtonDown
	// EventExpose asks for a redraw of the current view, e.g. after a resize.
	EventExpose
)

type Key int

const (
	KeyOther Key = iota
	KeySpace
	KeyEscape
	// KeyRune carries a printable character in Event.Rune.
	KeyRune
)

type MouseButton int

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

type Event struct {
	Kind EventKind

	Key  Key
	Rune rune

	Button MouseButton
	X, Y   int
}

func QuitEvent() Event { return Event{Kind: EventQuit} }

func KeyEvent(k Key) Event { return Event{Kind: EventKeyDown, Key: k} }

func RuneEvent(r rune) Event {
	switch r {
	case ' ':
		return Event{Kind: EventKeyDown, Key: KeySpace, Rune: r}
	case 0x1b:
		return Event{Kind: EventKeyDown, Key: KeyEscape, Rune: r}
	}
	return Event{Kind: EventKeyDown, Key: KeyRune, Rune: r}
}

func ClickEvent(b MouseButton, x, y int) Event {
	return Event{Kind: EventMouseButtonDown, Button: b, X: x, Y: y}
}

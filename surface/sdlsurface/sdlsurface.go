// Package sdlsurface implements mandel.Surface with an SDL2 window.
//
// SDL wants its video calls on the thread that initialised it. Callers should
// lock the main goroutine to its OS thread (runtime.LockOSThread in an init
// function) and do all rendering and polling from there.
package sdlsurface

import (
	"encoding/binary"
	"fmt"
	"image"

	"github.com/veandco/go-sdl2/sdl"

	mandel "github.com/marben/sdl_mandel"
)

type Window struct {
	win   *sdl.Window
	rects []sdl.Rect
}

var _ mandel.Surface = (*Window)(nil)

// Open initialises SDL video and creates a w×h window.
func Open(title string, w, h int) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("could not initialize SDL: %w", err)
	}

	win, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(w), int32(h), sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("couldn't create window: %w", err)
	}

	return &Window{win: win}, nil
}

// Close destroys the window and shuts SDL down.
func (w *Window) Close() error {
	err := w.win.Destroy()
	sdl.Quit()
	return err
}

func (w *Window) Size() (int, int) {
	ww, wh := w.win.GetSize()
	return int(ww), int(wh)
}

// Buffer returns the pixels of the window surface. The surface is fetched
// anew on every call since SDL replaces it when the window is resized.
func (w *Window) Buffer() (mandel.PixelBuffer, error) {
	s, err := w.win.GetSurface()
	if err != nil {
		return nil, fmt.Errorf("could not get surface: %w", err)
	}
	bpp := int(s.Format.BytesPerPixel)
	if bpp < 2 || bpp > 4 {
		return nil, fmt.Errorf("unsupported pixel format: %d bytes per pixel", bpp)
	}
	return &pixels{
		format: s.Format,
		pix:    s.Pixels(),
		pitch:  int(s.Pitch),
		bpp:    bpp,
		w:      int(s.W),
		h:      int(s.H),
	}, nil
}

func (w *Window) PresentRegion(rects []image.Rectangle) error {
	w.rects = w.rects[:0]
	for _, r := range rects {
		w.rects = append(w.rects, sdlRect(r))
	}
	return w.win.UpdateSurfaceRects(w.rects)
}

func (w *Window) PresentAll() error {
	return w.win.UpdateSurface()
}

// PollEvent drains SDL events until one of interest shows up.
func (w *Window) PollEvent() (mandel.Event, bool) {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		if e, ok := translate(ev); ok {
			return e, true
		}
	}
	return mandel.Event{}, false
}

func sdlRect(r image.Rectangle) sdl.Rect {
	return sdl.Rect{
		X: int32(r.Min.X),
		Y: int32(r.Min.Y),
		W: int32(r.Dx()),
		H: int32(r.Dy()),
	}
}

func translate(ev sdl.Event) (mandel.Event, bool) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		return mandel.QuitEvent(), true

	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN {
			return mandel.Event{}, false
		}
		switch sym := e.Keysym.Sym; {
		case sym == sdl.K_SPACE:
			return mandel.KeyEvent(mandel.KeySpace), true
		case sym == sdl.K_ESCAPE:
			return mandel.KeyEvent(mandel.KeyEscape), true
		case sym > ' ' && sym < 0x7f:
			return mandel.RuneEvent(rune(sym)), true
		}
		return mandel.KeyEvent(mandel.KeyOther), true

	case *sdl.MouseButtonEvent:
		if e.Type != sdl.MOUSEBUTTONDOWN {
			return mandel.Event{}, false
		}
		return mandel.ClickEvent(button(e.Button), int(e.X), int(e.Y)), true

	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_EXPOSED, sdl.WINDOWEVENT_SIZE_CHANGED:
			return mandel.Event{Kind: mandel.EventExpose}, true
		}
	}
	return mandel.Event{}, false
}

func button(b uint8) mandel.MouseButton {
	switch b {
	case sdl.BUTTON_LEFT:
		return mandel.ButtonLeft
	case sdl.BUTTON_MIDDLE:
		return mandel.ButtonMiddle
	case sdl.BUTTON_RIGHT:
		return mandel.ButtonRight
	}
	return mandel.ButtonNone
}

// pixels writes into the window surface in its native pixel format.
type pixels struct {
	format *sdl.PixelFormat
	pix    []byte
	pitch  int
	bpp    int
	w, h   int
}

func (p *pixels) Size() (int, int) {
	return p.w, p.h
}

func (p *pixels) SetRGB(x, y int, c mandel.RGB) {
	if x < 0 || y < 0 || x >= p.w || y >= p.h {
		return
	}
	v := sdl.MapRGB(p.format, c.R, c.G, c.B)
	off := y*p.pitch + x*p.bpp
	switch p.bpp {
	case 4:
		binary.NativeEndian.PutUint32(p.pix[off:], v)
	case 2:
		binary.NativeEndian.PutUint16(p.pix[off:], uint16(v))
	case 3:
		put24(p.pix[off:off+3], v)
	}
}

// put24 stores the low 24 bits of v in host byte order.
func put24(b []byte, v uint32) {
	var tmp [4]byte
	binary.NativeEndian.PutUint32(tmp[:], v)
	if tmp[0] == byte(v) {
		copy(b, tmp[:3])
	} else {
		copy(b, tmp[1:])
	}
}

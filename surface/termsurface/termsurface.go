// Package termsurface implements mandel.Surface in a terminal using tcell.
//
// Every character cell shows two pixels stacked on top of each other: the
// upper half block '▀' is drawn in the colour of the upper pixel and its
// background in the colour of the lower one. A terminal of 100×40 cells is
// therefore a 100×80 pixel window.
package termsurface

import (
	"image"
	"sync"

	"github.com/gdamore/tcell/v2"

	mandel "github.com/marben/sdl_mandel"
)

const upperHalfBlock = '▀'

type Terminal struct {
	screen tcell.Screen
	events chan mandel.Event
	quit   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	pix     []mandel.RGB
	w, h    int
	buttons tcell.ButtonMask
}

var _ mandel.Surface = (*Terminal)(nil)

// Open takes over the terminal.
func Open() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return New(screen)
}

// New initialises screen and starts reading its events.
func New(screen tcell.Screen) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.HideCursor()
	screen.Clear()

	t := &Terminal{
		screen: screen,
		events: make(chan mandel.Event, 64),
		quit:   make(chan struct{}),
	}
	t.resize()

	t.wg.Add(1)
	go t.pump()
	return t, nil
}

// Close gives the terminal back.
func (t *Terminal) Close() error {
	close(t.quit)
	t.screen.Fini()
	t.wg.Wait()
	return nil
}

// resize matches the pixel grid to the current screen size.
func (t *Terminal) resize() {
	cols, rows := t.screen.Size()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.w, t.h = cols, rows*2
	t.pix = make([]mandel.RGB, t.w*t.h)
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w, t.h
}

func (t *Terminal) Buffer() (mandel.PixelBuffer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return &pixels{pix: t.pix, w: t.w, h: t.h}, nil
}

// PresentRegion redraws the cells covering rects.
func (t *Terminal) PresentRegion(rects []image.Rectangle) error {
	t.mu.Lock()
	bounds := image.Rect(0, 0, t.w, t.h)
	for _, r := range rects {
		r = r.Intersect(bounds)
		for y := r.Min.Y &^ 1; y < r.Max.Y; y += 2 {
			for x := r.Min.X; x < r.Max.X; x++ {
				t.setCell(x, y/2)
			}
		}
	}
	t.mu.Unlock()

	t.screen.Show()
	return nil
}

func (t *Terminal) PresentAll() error {
	t.mu.Lock()
	for row := 0; row < t.h/2; row++ {
		for x := 0; x < t.w; x++ {
			t.setCell(x, row)
		}
	}
	t.mu.Unlock()

	t.screen.Show()
	return nil
}

// setCell draws cell (x, row) from pixels (x, 2*row) and (x, 2*row+1).
// Callers hold t.mu.
func (t *Terminal) setCell(x, row int) {
	top := t.pix[2*row*t.w+x]
	bottom := t.pix[(2*row+1)*t.w+x]
	style := tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
		Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
	t.screen.SetContent(x, row, upperHalfBlock, nil, style)
}

func (t *Terminal) PollEvent() (mandel.Event, bool) {
	select {
	case ev := <-t.events:
		return ev, true
	default:
		return mandel.Event{}, false
	}
}

// pump moves tcell events into t.events, since tcell's PollEvent blocks.
func (t *Terminal) pump() {
	defer t.wg.Done()
	for {
		tev := t.screen.PollEvent()
		if tev == nil {
			// screen finalized
			return
		}
		ev, ok := t.convertEvent(tev)
		if !ok {
			continue
		}
		select {
		case t.events <- ev:
		case <-t.quit:
			return
		}
	}
}

// convertEvent translates tcell events. Mouse events are reported for every
// motion and release too; only the moment a button goes down becomes a click.
func (t *Terminal) convertEvent(ev tcell.Event) (mandel.Event, bool) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		switch e.Key() {
		case tcell.KeyEscape:
			return mandel.KeyEvent(mandel.KeyEscape), true
		case tcell.KeyCtrlC:
			return mandel.QuitEvent(), true
		case tcell.KeyRune:
			if e.Modifiers()&tcell.ModCtrl != 0 && (e.Rune() == 'c' || e.Rune() == 'C') {
				return mandel.QuitEvent(), true
			}
			return mandel.RuneEvent(e.Rune()), true
		}
		return mandel.KeyEvent(mandel.KeyOther), true

	case *tcell.EventMouse:
		x, y := e.Position()
		now := e.Buttons()

		t.mu.Lock()
		pressed := now &^ t.buttons
		t.buttons = now
		t.mu.Unlock()

		var b mandel.MouseButton
		switch {
		case pressed&tcell.ButtonPrimary != 0:
			b = mandel.ButtonLeft
		case pressed&tcell.ButtonSecondary != 0:
			b = mandel.ButtonRight
		case pressed&tcell.ButtonMiddle != 0:
			b = mandel.ButtonMiddle
		default:
			return mandel.Event{}, false
		}
		return mandel.ClickEvent(b, x, 2*y), true

	case *tcell.EventResize:
		t.resize()
		t.screen.Sync()
		return mandel.Event{Kind: mandel.EventExpose}, true
	}
	return mandel.Event{}, false
}

type pixels struct {
	pix  []mandel.RGB
	w, h int
}

func (p *pixels) Size() (int, int) {
	return p.w, p.h
}

func (p *pixels) SetRGB(x, y int, c mandel.RGB) {
	if x < 0 || y < 0 || x >= p.w || y >= p.h {
		return
	}
	p.pix[y*p.w+x] = c
}

// Package memsurface implements mandel.Surface on top of an in-memory image.
//
// It is used for headless rendering and as a recording surface in tests:
// every present is remembered and events can be queued up front.
package memsurface

import (
	"image"
	"image/color"
	"slices"
	"sync"

	mandel "github.com/marben/sdl_mandel"
)

type Surface struct {
	img *image.RGBA

	m            sync.Mutex
	events       []mandel.Event
	presents     [][]image.Rectangle
	fullPresents int
	bufferErr    error
	onPresent    func(rects []image.Rectangle, img *image.RGBA)
}

var _ mandel.Surface = (*Surface)(nil)

// New returns a w×h surface with every pixel transparent black.
func New(w, h int) *Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (s *Surface) Size() (int, int) {
	return s.img.Rect.Dx(), s.img.Rect.Dy()
}

// Buffer implements mandel.Surface. Written pixels become opaque.
func (s *Surface) Buffer() (mandel.PixelBuffer, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if s.bufferErr != nil {
		return nil, s.bufferErr
	}
	return pixels{s.img}, nil
}

func (s *Surface) PresentRegion(rects []image.Rectangle) error {
	s.m.Lock()
	s.presents = append(s.presents, slices.Clone(rects))
	hook := s.onPresent
	s.m.Unlock()

	if hook != nil {
		hook(rects, s.img)
	}
	return nil
}

func (s *Surface) PresentAll() error {
	s.m.Lock()
	s.fullPresents++
	hook := s.onPresent
	s.m.Unlock()

	if hook != nil {
		hook([]image.Rectangle{s.img.Rect}, s.img)
	}
	return nil
}

func (s *Surface) PollEvent() (mandel.Event, bool) {
	s.m.Lock()
	defer s.m.Unlock()

	if len(s.events) == 0 {
		return mandel.Event{}, false
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, true
}

// Push queues events for PollEvent.
func (s *Surface) Push(evs ...mandel.Event) {
	s.m.Lock()
	defer s.m.Unlock()
	s.events = append(s.events, evs...)
}

// Fail makes every following Buffer call return err. A nil err clears it.
func (s *Surface) Fail(err error) {
	s.m.Lock()
	defer s.m.Unlock()
	s.bufferErr = err
}

// OnPresent registers a hook that runs after every present, with the
// presented rectangles and the backing image.
func (s *Surface) OnPresent(fn func(rects []image.Rectangle, img *image.RGBA)) {
	s.m.Lock()
	defer s.m.Unlock()
	s.onPresent = fn
}

// Presents returns the rectangles of every PresentRegion call so far.
func (s *Surface) Presents() [][]image.Rectangle {
	s.m.Lock()
	defer s.m.Unlock()
	return slices.Clone(s.presents)
}

func (s *Surface) FullPresents() int {
	s.m.Lock()
	defer s.m.Unlock()
	return s.fullPresents
}

// Reset forgets recorded presents and clears the image.
func (s *Surface) Reset() {
	s.m.Lock()
	defer s.m.Unlock()
	s.presents = nil
	s.fullPresents = 0
	clear(s.img.Pix)
}

// Image returns the backing image. It is shared, not copied.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

type pixels struct {
	img *image.RGBA
}

func (p pixels) Size() (int, int) {
	return p.img.Rect.Dx(), p.img.Rect.Dy()
}

func (p pixels) SetRGB(x, y int, c mandel.RGB) {
	p.img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
}

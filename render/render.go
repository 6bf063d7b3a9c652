// Package render draws the Mandelbrot set into a mandel.Surface.
//
// A pass computes rows in interleaved scan groups: first every Flips-th row
// starting at row 0, then every Flips-th row starting at row 1, and so on.
// Each group is presented as soon as it is complete, so a coarse full-height
// picture shows up early and then fills in.
package render

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	mandel "github.com/marben/sdl_mandel"
)

// Renderer renders viewports. It keeps no state between passes and may be
// reused for any number of surfaces, one pass at a time per surface.
type Renderer struct {
	flips   int
	workers int
	logger  *slog.Logger
}

// Stats describes a finished render pass.
type Stats struct {
	Width, Height int
	Budget        int
	Groups        int  // scan groups that were computed and presented
	Presents      int  // PresentRegion calls, one per group
	FullPresent   bool // a trailing PresentAll was issued
	Elapsed       time.Duration
}

func New(opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Renderer{
		flips:   o.flips,
		workers: o.workers,
		logger:  o.logger,
	}
}

func (r *Renderer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return Logger()
}

// Render draws vp into s. The buffer is written group by group and every
// group is presented before the next one is computed.
//
// An error wrapping mandel.ErrSurfaceUnavailable means nothing was drawn and
// the surface is unusable.
func (r *Renderer) Render(vp mandel.Viewport, s mandel.Surface) (Stats, error) {
	if err := vp.Validate(); err != nil {
		return Stats{}, err
	}

	buf, err := s.Buffer()
	if err != nil {
		return Stats{}, fmt.Errorf("%w: %w", mandel.ErrSurfaceUnavailable, err)
	}

	start := time.Now()
	w, h := buf.Size()
	st := Stats{
		Width:  w,
		Height: h,
		Budget: Budget(w, vp.Zoom),
	}

	log := r.log()
	log.Debug("render started",
		"zoom", vp.Zoom,
		"center", fmt.Sprintf("%f %+fi", real(vp.Center), imag(vp.Center)),
		"iterations", st.Budget)

	row := func(y int) {
		for x := 0; x < w; x++ {
			n, z := Escape(vp.Point(x, y, w, h), st.Budget)
			buf.SetRGB(x, y, Color(n, z, st.Budget))
		}
	}

	for f := 0; f < r.flips; f++ {
		rects := scanGroup(f, r.flips, w, h)
		if len(rects) == 0 {
			continue
		}
		r.renderRows(rects, row)
		if err := s.PresentRegion(rects); err != nil {
			return st, fmt.Errorf("present scan group %d: %w", f, err)
		}
		st.Groups++
		st.Presents++
	}

	if h%r.flips != 0 {
		if err := s.PresentAll(); err != nil {
			return st, fmt.Errorf("present all: %w", err)
		}
		st.FullPresent = true
	}

	st.Elapsed = time.Since(start)
	log.Debug("render finished", "elapsed", st.Elapsed, "groups", st.Groups, "iterations", st.Budget)
	return st, nil
}

// scanGroup returns one full-width, one pixel high rectangle for every row
// y < h with y mod flips == f.
func scanGroup(f, flips, w, h int) []image.Rectangle {
	if f >= h {
		return nil
	}
	rects := make([]image.Rectangle, 0, (h-f+flips-1)/flips)
	for y := f; y < h; y += flips {
		rects = append(rects, image.Rect(0, y, w, y+1))
	}
	return rects
}

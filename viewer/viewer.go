// Package viewer turns surface events into view changes and re-renders.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	mandel "github.com/marben/sdl_mandel"
	"github.com/marben/sdl_mandel/render"
)

// Action tells the event loop what to do after an event.
type Action int

const (
	Continue Action = iota // nothing to do
	Redraw                 // render the returned viewport
	Stop                   // leave the loop
)

func (a Action) String() string {
	switch a {
	case Continue:
		return "continue"
	case Redraw:
		return "redraw"
	case Stop:
		return "stop"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

type Config struct {
	// Window size used to map clicks to the complex plane.
	Width, Height int

	// ZoomFactor multiplies the zoom on a left click and divides it on a right click.
	ZoomFactor float64

	// Idle is how long the loop sleeps when no event is pending.
	Idle time.Duration
}

func DefaultConfig() Config {
	return Config{
		Width:      800,
		Height:     600,
		ZoomFactor: 4,
		Idle:       10 * time.Millisecond,
	}
}

var ErrInvalidConfig = errors.New("invalid viewer config")

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if !(c.ZoomFactor > 0) || math.IsInf(c.ZoomFactor, 0) {
		return fmt.Errorf("%w: zoom factor %v", ErrInvalidConfig, c.ZoomFactor)
	}
	if c.Idle < 0 {
		return fmt.Errorf("%w: idle %s", ErrInvalidConfig, c.Idle)
	}
	return nil
}

// Home is the view the viewer starts with and resets to.
func (c Config) Home() mandel.Viewport {
	return mandel.DefaultViewport(c.Width)
}

// HandleEvent returns the viewport that follows vp after ev.
//
//	Space           back to Home
//	Escape, Quit    stop
//	1..6            jump to a classic landmark
//	left click      centre on the click, zoom in
//	right click     centre on the click, zoom out
//	other click     centre on the click
//	Expose          redraw vp unchanged
func (c Config) HandleEvent(vp mandel.Viewport, ev mandel.Event) (mandel.Viewport, Action) {
	switch ev.Kind {
	case mandel.EventQuit:
		return vp, Stop

	case mandel.EventExpose:
		return vp, Redraw

	case mandel.EventKeyDown:
		switch ev.Key {
		case mandel.KeyEscape:
			return vp, Stop
		case mandel.KeySpace:
			return c.Home(), Redraw
		case mandel.KeyRune:
			if i := int(ev.Rune - '1'); ev.Rune >= '1' && i < len(mandel.Landmarks) {
				return mandel.Landmarks[i].Viewport(c.Width), Redraw
			}
		}

	case mandel.EventMouseButtonDown:
		next := mandel.Viewport{
			Center: vp.Point(ev.X, ev.Y, c.Width, c.Height),
			Zoom:   vp.Zoom,
		}
		switch ev.Button {
		case mandel.ButtonLeft:
			next.Zoom *= c.ZoomFactor
		case mandel.ButtonRight:
			next.Zoom /= c.ZoomFactor
		}
		if next.Validate() != nil {
			// zoomed past what float64 can represent
			return vp, Continue
		}
		return next, Redraw
	}

	return vp, Continue
}

// Viewer owns the current viewport of one surface.
type Viewer struct {
	cfg      Config
	surface  mandel.Surface
	renderer *render.Renderer

	// OnRender, if set, is called after every finished render pass.
	OnRender func(vp mandel.Viewport, st render.Stats)
}

func New(cfg Config, s mandel.Surface, r *render.Renderer) (*Viewer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		r = render.New()
	}
	return &Viewer{cfg: cfg, surface: s, renderer: r}, nil
}

// Run draws the home view and then handles events until the user quits or
// ctx is done, both of which return nil. Render passes run on the calling
// goroutine, so no event is looked at while a pass is in progress.
// A render error ends the loop and is returned.
func (v *Viewer) Run(ctx context.Context) error {
	vp := v.config().Home()
	if err := v.draw(ctx, vp); err != nil {
		return err
	}

	idle := time.NewTicker(max(v.cfg.Idle, time.Millisecond))
	defer idle.Stop()

	for ctx.Err() == nil {
		ev, ok := v.surface.PollEvent()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-idle.C:
			}
			continue
		}

		next, action := v.config().HandleEvent(vp, ev)
		switch action {
		case Stop:
			return nil
		case Redraw:
			vp = next
			if err := v.draw(ctx, vp); err != nil {
				return err
			}
		}
	}
	return nil
}

// config is v.cfg with the window size the surface currently reports.
func (v *Viewer) config() Config {
	cfg := v.cfg
	if w, h := v.surface.Size(); w > 0 && h > 0 {
		cfg.Width, cfg.Height = w, h
	}
	return cfg
}

// draw renders vp. Errors after ctx is done are a shutdown, not a failure.
func (v *Viewer) draw(ctx context.Context, vp mandel.Viewport) error {
	st, err := v.renderer.Render(vp, v.surface)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("render %s: %w", vp, err)
	}
	if v.OnRender != nil {
		v.OnRender(vp, st)
	}
	return nil
}

package viewer

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	mandel "github.com/marben/sdl_mandel"
	"github.com/marben/sdl_mandel/render"
	"github.com/marben/sdl_mandel/surface/memsurface"
)

func TestLeftClickAtCentre(t *testing.T) {
	cfg := DefaultConfig()
	home := cfg.Home()

	next, action := cfg.HandleEvent(home, mandel.ClickEvent(mandel.ButtonLeft, 400, 300))
	if action != Redraw {
		t.Fatalf("action: got %v, want redraw", action)
	}
	if next.Center != home.Center {
		t.Errorf("center: got %v, want %v", next.Center, home.Center)
	}
	if next.Zoom != home.Zoom*4 {
		t.Errorf("zoom: got %v, want %v", next.Zoom, home.Zoom*4)
	}
}

func TestClickRecentres(t *testing.T) {
	cfg := DefaultConfig()
	vp := mandel.Viewport{Center: 0, Zoom: 100}

	tests := []struct {
		name   string
		button mandel.MouseButton
		x, y   int
		want   mandel.Viewport
	}{
		{"left", mandel.ButtonLeft, 500, 300, mandel.Viewport{Center: 1, Zoom: 400}},
		{"right", mandel.ButtonRight, 400, 200, mandel.Viewport{Center: complex(0, -1), Zoom: 25}},
		{"middle", mandel.ButtonMiddle, 300, 350, mandel.Viewport{Center: complex(-1, 0.5), Zoom: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, action := cfg.HandleEvent(vp, mandel.ClickEvent(tt.button, tt.x, tt.y))
			if action != Redraw || got != tt.want {
				t.Errorf("got %v %v, want %v redraw", got, action, tt.want)
			}
		})
	}
}

func TestResetRestoresHome(t *testing.T) {
	cfg := DefaultConfig()
	home := cfg.Home()

	vp := home
	clicks := []mandel.Event{
		mandel.ClickEvent(mandel.ButtonLeft, 123, 45),
		mandel.ClickEvent(mandel.ButtonLeft, 700, 590),
		mandel.ClickEvent(mandel.ButtonRight, 1, 1),
		mandel.RuneEvent('4'),
		mandel.ClickEvent(mandel.ButtonLeft, 399, 301),
	}
	for _, ev := range clicks {
		vp, _ = cfg.HandleEvent(vp, ev)
	}
	if vp == home {
		t.Fatal("panning and zooming did not move the view")
	}

	vp, action := cfg.HandleEvent(vp, mandel.KeyEvent(mandel.KeySpace))
	if action != Redraw {
		t.Errorf("action: got %v, want redraw", action)
	}
	if math.Float64bits(real(vp.Center)) != math.Float64bits(real(home.Center)) ||
		math.Float64bits(imag(vp.Center)) != math.Float64bits(imag(home.Center)) ||
		math.Float64bits(vp.Zoom) != math.Float64bits(home.Zoom) {
		t.Errorf("reset: got %v, want %v", vp, home)
	}
}

func TestHandleEventKeys(t *testing.T) {
	cfg := DefaultConfig()
	vp := mandel.Viewport{Center: complex(0.1, 0.2), Zoom: 1000}

	tests := []struct {
		name   string
		ev     mandel.Event
		action Action
		want   mandel.Viewport
	}{
		{"quit", mandel.QuitEvent(), Stop, vp},
		{"escape", mandel.KeyEvent(mandel.KeyEscape), Stop, vp},
		{"expose", mandel.Event{Kind: mandel.EventExpose}, Redraw, vp},
		{"other key", mandel.KeyEvent(mandel.KeyOther), Continue, vp},
		{"letter", mandel.RuneEvent('q'), Continue, vp},
		{"zero", mandel.RuneEvent('0'), Continue, vp},
		{"seven", mandel.RuneEvent('7'), Continue, vp},
		{"landmark 1", mandel.RuneEvent('1'), Redraw, mandel.SeahorseValley.Viewport(800)},
		{"landmark 6", mandel.RuneEvent('6'), Redraw, mandel.MinibrotInMiniSpiral.Viewport(800)},
		{"none", mandel.Event{}, Continue, vp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, action := cfg.HandleEvent(vp, tt.ev)
			if action != tt.action || got != tt.want {
				t.Errorf("got %v %v, want %v %v", got, action, tt.want, tt.action)
			}
		})
	}
}

func TestZoomOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	vp := mandel.Viewport{Zoom: math.MaxFloat64}
	got, action := cfg.HandleEvent(vp, mandel.ClickEvent(mandel.ButtonLeft, 400, 300))
	if action != Continue || got != vp {
		t.Errorf("got %v %v, want unchanged view", got, action)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}

	bad := []func(*Config){
		func(c *Config) { c.Width = 0 },
		func(c *Config) { c.Height = -1 },
		func(c *Config) { c.ZoomFactor = 0 },
		func(c *Config) { c.ZoomFactor = math.Inf(1) },
		func(c *Config) { c.Idle = -time.Second },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("case %d: got %v, want ErrInvalidConfig", i, err)
		}
		if _, err := New(cfg, memsurface.New(1, 1), nil); err == nil {
			t.Errorf("case %d: New accepted an invalid config", i)
		}
	}
}

func TestRunHandlesEvents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 80, 48
	s := memsurface.New(80, 48)
	s.Push(
		mandel.ClickEvent(mandel.ButtonLeft, 40, 24),
		mandel.RuneEvent('x'),
		mandel.ClickEvent(mandel.ButtonRight, 40, 24),
		mandel.KeyEvent(mandel.KeySpace),
		mandel.KeyEvent(mandel.KeyEscape),
		mandel.ClickEvent(mandel.ButtonLeft, 0, 0), // never reached
	)

	v, err := New(cfg, s, render.New())
	if err != nil {
		t.Fatal(err)
	}
	var views []mandel.Viewport
	v.OnRender = func(vp mandel.Viewport, st render.Stats) {
		views = append(views, vp)
	}

	if err := v.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	home := cfg.Home()
	want := []mandel.Viewport{
		home,
		{Center: home.Center, Zoom: home.Zoom * 4},
		home,
		home,
	}
	if len(views) != len(want) {
		t.Fatalf("renders: got %v, want %v", views, want)
	}
	for i := range want {
		if views[i] != want[i] {
			t.Errorf("render %d: got %v, want %v", i, views[i], want[i])
		}
	}
	if got := len(s.Presents()); got != 24*len(want) {
		t.Errorf("region presents: got %d, want %d", got, 24*len(want))
	}
	if _, ok := s.PollEvent(); !ok {
		t.Error("events after escape should not be consumed")
	}
}

func TestRunStopsOnContext(t *testing.T) {
	s := memsurface.New(24, 24)
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 24, 24
	v, err := New(cfg, s, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := v.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(s.Presents()) != 24 {
		t.Errorf("home view not rendered: %d presents", len(s.Presents()))
	}
}

// closingSurface cancels its context and loses its buffer when the next
// event is handed out, like a web surface whose server is shutting down.
type closingSurface struct {
	*memsurface.Surface
	cancel context.CancelFunc
}

func (s closingSurface) PollEvent() (mandel.Event, bool) {
	ev, ok := s.Surface.PollEvent()
	if ok {
		s.cancel()
		s.Fail(context.Canceled)
	}
	return ev, ok
}

func TestRunRenderErrorAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := closingSurface{Surface: memsurface.New(24, 24), cancel: cancel}
	s.Push(mandel.KeyEvent(mandel.KeySpace))
	v, err := New(DefaultConfig(), s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Run(ctx); err != nil {
		t.Fatalf("Run: got %v, want nil after cancel", err)
	}
	if len(s.Presents()) != 24 {
		t.Errorf("presents: got %d, want only the home view", len(s.Presents()))
	}
}

func TestRunRenderError(t *testing.T) {
	s := memsurface.New(24, 24)
	s.Fail(errors.New("surface lost"))
	v, err := New(DefaultConfig(), s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Run(context.Background()); !errors.Is(err, mandel.ErrSurfaceUnavailable) {
		t.Fatalf("got %v, want ErrSurfaceUnavailable", err)
	}
}

// viewer shows the Mandelbrot set and lets you explore it.
//
//	left click    zoom in around the clicked point
//	right click   zoom out around the clicked point
//	space         back to the start view
//	1..6          jump to a classic landmark
//	escape        quit
//
// The -backend flag picks where it is shown: an SDL window (default), the
// terminal, or a browser page served on -addr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	mandel "github.com/marben/sdl_mandel"
	"github.com/marben/sdl_mandel/render"
	"github.com/marben/sdl_mandel/surface/sdlsurface"
	"github.com/marben/sdl_mandel/surface/termsurface"
	"github.com/marben/sdl_mandel/surface/websurface"
	"github.com/marben/sdl_mandel/viewer"
)

// SDL must be driven from the main thread.
func init() {
	runtime.LockOSThread()
}

type options struct {
	backend string
	addr    string
	width   int
	height  int
	workers int
	verbose bool
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %v", err)
	}
}

func parseFlags() options {
	cfg := viewer.DefaultConfig()
	var opts options
	flag.StringVar(&opts.backend, "backend", "sdl", "where to draw: sdl, term or web")
	flag.StringVar(&opts.addr, "addr", ":8080", "listen address of the web backend")
	flag.IntVar(&opts.width, "width", cfg.Width, "window width in pixels (sdl and web)")
	flag.IntVar(&opts.height, "height", cfg.Height, "window height in pixels (sdl and web)")
	flag.IntVar(&opts.workers, "workers", 1, "goroutines computing the rows of a scan group")
	flag.BoolVar(&opts.verbose, "v", false, "log render details")
	flag.Parse()
	return opts
}

func run() error {
	opts := parseFlags()

	// the terminal backend owns the screen, anything printed would garble it
	if opts.backend == "term" {
		log.SetOutput(io.Discard)
	}
	logger := slog.New(slog.NewTextHandler(log.Writer(), &slog.HandlerOptions{Level: slog.LevelInfo}))
	if opts.verbose {
		logger = slog.New(slog.NewTextHandler(log.Writer(), &slog.HandlerOptions{Level: slog.LevelDebug}))
		render.SetLogger(logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	surface, closeSurface, err := openSurface(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer closeSurface()

	cfg := viewer.DefaultConfig()
	cfg.Width, cfg.Height = surface.Size()

	v, err := viewer.New(cfg, surface, render.New(render.WithWorkers(opts.workers)))
	if err != nil {
		return err
	}
	v.OnRender = func(vp mandel.Viewport, st render.Stats) {
		log.Printf("zoom: %f", vp.Zoom)
		log.Printf("center point: %f %+fi", real(vp.Center), imag(vp.Center))
		log.Printf("iterations: %d (%s)", st.Budget, st.Elapsed)
	}

	return v.Run(ctx)
}

func openSurface(ctx context.Context, opts options, logger *slog.Logger) (mandel.Surface, func(), error) {
	switch opts.backend {
	case "sdl":
		w, err := sdlsurface.Open("sdlmandel", opts.width, opts.height)
		if err != nil {
			return nil, nil, err
		}
		return w, func() { w.Close() }, nil

	case "term":
		t, err := termsurface.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open terminal: %w", err)
		}
		return t, func() { t.Close() }, nil

	case "web":
		s := websurface.New(ctx, opts.width, opts.height, logger)
		l, err := net.Listen("tcp", opts.addr)
		if err != nil {
			return nil, nil, fmt.Errorf("net.Listen: %w", err)
		}
		srv := s.Server(opts.addr)
		go func() {
			if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("httpServer: %v", err)
			}
		}()
		log.Printf("listening on http://localhost%s", opts.addr)
		return s, func() {
			s.Close()
			srv.Close()
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", opts.backend)
}

// snapshot renders one view of the Mandelbrot set without a window and saves it
// as PNG, BMP or TIFF, depending on the extension of -o.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	mandel "github.com/marben/sdl_mandel"
	"github.com/marben/sdl_mandel/render"
	"github.com/marben/sdl_mandel/snapshot"
	"github.com/marben/sdl_mandel/surface/memsurface"
)

type options struct {
	out     string
	width   int
	height  int
	x, y    float64
	zoom    float64
	region  string
	workers int
}

func main() {
	log.Printf("Starting snapshot...")
	if err := run(parseFlags()); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.out, "o", "mandel.png", "output file (.png, .bmp, .tif)")
	flag.IntVar(&opts.width, "width", 800, "image width in pixels")
	flag.IntVar(&opts.height, "height", 600, "image height in pixels")
	flag.Float64Var(&opts.x, "x", real(mandel.DefaultCenter), "real part of the view center")
	flag.Float64Var(&opts.y, "y", imag(mandel.DefaultCenter), "imaginary part of the view center")
	flag.Float64Var(&opts.zoom, "zoom", math.NaN(), "pixels per unit (default: fit the whole set)")
	flag.StringVar(&opts.region, "region", "", "render a classic landmark instead: seahorse, elephant, spiral, triple, dragon, minibrot")
	flag.IntVar(&opts.workers, "workers", 1, "goroutines computing the rows of a scan group")
	flag.Parse()
	return opts
}

// viewport resolves the flags to the view to render.
func (opts options) viewport() (mandel.Viewport, error) {
	if opts.region != "" {
		r, ok := mandel.LandmarkByName(opts.region)
		if !ok {
			return mandel.Viewport{}, fmt.Errorf("unknown region %q", opts.region)
		}
		return r.Viewport(opts.width), nil
	}

	vp := mandel.DefaultViewport(opts.width)
	vp.Center = complex(opts.x, opts.y)
	if !math.IsNaN(opts.zoom) {
		vp.Zoom = opts.zoom
	}
	return vp, vp.Validate()
}

func run(opts options) error {
	// Step 1: Work out what to render
	vp, err := opts.viewport()
	if err != nil {
		return err
	}
	if opts.width <= 0 || opts.height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", opts.width, opts.height)
	}

	// Step 2: Render into an in-memory surface
	log.Printf("Rendering %dx%d, %s...", opts.width, opts.height, vp)
	s := memsurface.New(opts.width, opts.height)
	st, err := render.New(render.WithWorkers(opts.workers)).Render(vp, s)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	log.Printf("iterations: %d, took %s", st.Budget, st.Elapsed)

	// Step 3: Save the image
	log.Printf("Saving rendered image to %q...", opts.out)
	if err := snapshot.Save(opts.out, s.Image()); err != nil {
		return err
	}

	log.Printf("Fully rendered image saved to %q", opts.out)
	return nil
}

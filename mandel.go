package mandel

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidViewport = errors.New("invalid viewport")

const (
	// DefaultCenter is the point the viewer starts at and resets to.
	DefaultCenter = complex(-0.5, 0)

	// defaultZoomPerPixel fits the whole set into the window width.
	defaultZoomPerPixel = 0.25296875
)

// Viewport is the visible part of the complex plane.
// Zoom is in pixels per unit.
type Viewport struct {
	Center complex128
	Zoom   float64
}

// DefaultViewport returns the start view for a window of the given width.
// The zoom is computed in single precision so that it matches the classic
// start values exactly (202.375 for 800 pixels).
func DefaultViewport(width int) Viewport {
	return Viewport{
		Center: DefaultCenter,
		Zoom:   float64(float32(width) * float32(defaultZoomPerPixel)),
	}
}

func (v Viewport) Validate() error {
	if math.IsNaN(real(v.Center)) || math.IsNaN(imag(v.Center)) ||
		math.IsInf(real(v.Center), 0) || math.IsInf(imag(v.Center), 0) {
		return fmt.Errorf("%w: center %v", ErrInvalidViewport, v.Center)
	}
	if !(v.Zoom > 0) || math.IsInf(v.Zoom, 0) {
		return fmt.Errorf("%w: zoom %v", ErrInvalidViewport, v.Zoom)
	}
	return nil
}

// Point maps pixel (x, y) of a w×h window to the complex plane.
func (v Viewport) Point(x, y, w, h int) complex128 {
	re := real(v.Center) + float64(x-w/2)/v.Zoom
	im := imag(v.Center) + float64(y-h/2)/v.Zoom
	return complex(re, im)
}

func (v Viewport) String() string {
	return fmt.Sprintf("center: %f %+fi zoom: %f", real(v.Center), imag(v.Center), v.Zoom)
}

// Region within the Mandelbrot set
type Region struct {
	Name       string
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// Viewport returns the view centred on r that shows its full width in w pixels.
func (r Region) Viewport(w int) Viewport {
	return Viewport{
		Center: complex((r.Xmin+r.Xmax)/2, (r.Ymin+r.Ymax)/2),
		Zoom:   float64(w) / (r.Xmax - r.Xmin),
	}
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Region{
		Name: "seahorse",
		Xmin: -0.8,
		Xmax: -0.7,
		Ymin: 0.05,
		Ymax: 0.15,
	}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Region{
		Name: "elephant",
		Xmin: -1.85,
		Xmax: -1.75,
		Ymin: -0.10,
		Ymax: -0.02,
	}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Region{
		Name: "spiral",
		Xmin: -0.7435,
		Xmax: -0.7420,
		Ymin: 0.1310,
		Ymax: 0.1325,
	}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = Region{
		Name: "triple",
		Xmin: -0.7480,
		Xmax: -0.7450,
		Ymin: 0.0950,
		Ymax: 0.0980,
	}

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = Region{
		Name: "dragon",
		Xmin: -0.7400,
		Xmax: -0.7350,
		Ymin: 0.1800,
		Ymax: 0.1850,
	}

	// Minibrot in a Mini-Spiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = Region{
		Name: "minibrot",
		Xmin: -1.7390,
		Xmax: -1.7375,
		Ymin: -0.0235,
		Ymax: -0.0220,
	}
)

// Landmarks lists the classic regions in the order of the viewer's digit keys.
var Landmarks = []Region{
	SeahorseValley,
	ElephantValley,
	SpiralMinibrot,
	TripleSpiral,
	ValleyOfTheDragon,
	MinibrotInMiniSpiral,
}

// LandmarkByName looks a region up by its short name, ignoring case.
func LandmarkByName(name string) (Region, bool) {
	for _, r := range Landmarks {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Region{}, false
}

package render

import (
	"math"
	"math/cmplx"

	mandel "github.com/marben/sdl_mandel"
)

// Background is the colour of points inside the set.
var Background = mandel.RGB{}

// Color maps an escape result to a pixel colour using the smooth iteration
// count C = n - log2(ln|z| / ln 2) fed through three sine waves.
// n >= budget is background, so with a zero budget every point that Escape
// reports as escaped at step 0 is drawn as background too.
func Color(n int, z complex128, budget int) mandel.RGB {
	if n >= budget {
		return Background
	}

	lz := math.Log(cmplx.Abs(z))
	if !(lz > 0) || math.IsInf(lz, 0) {
		// log2 below would be undefined
		return Background
	}
	c := float64(n) - math.Log2(lz/math.Ln2)

	return mandel.RGB{
		R: channel(math.Sin(0.27*c + 5)),
		G: channel(math.Cos(0.85 * c)),
		B: channel(math.Sin(0.15 * c)),
	}
}

// channel scales a wave value in [-1, 1] to 0..255.
func channel(wave float64) uint8 {
	v := math.Round(127.5 * (1 + wave))
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

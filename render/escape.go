package render

import "math"

// budgetScale balances detail against render time.
const budgetScale = 0.049715909

// Budget returns the iteration limit for a pass at the given pixel width and zoom.
// It grows with log10(zoom) and linearly with the width. Results that would be
// negative (zoom below 1) or not finite are clamped to 0.
func Budget(width int, zoom float64) int {
	v := math.Floor(float64(width/2) * budgetScale * math.Log10(zoom))
	if !(v > 0) {
		return 0
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

// inSet reports whether c lies in the main cardioid or the period-2 bulb.
// Both regions are inside the set, so those points never need iterating.
func inSet(c complex128) bool {
	x, y := real(c), imag(c)
	y2 := y * y

	q := (x-0.25)*(x-0.25) + y2
	if q*(x*x+x/2+y2-0.1875) < y2/4 {
		return true
	}
	return (x+1)*(x+1)+y2 < 0.0625
}

// Escape iterates z = z² + c from z = c until |z| reaches 2 or budget steps
// were taken. It returns the step count and the last z.
// Points known to be inside the set return budget straight away; z is then
// meaningless and callers treat n == budget as interior.
func Escape(c complex128, budget int) (n int, z complex128) {
	n, z, _ = escape(c, budget)
	return n, z
}

// escape is Escape that also reports how many loop steps actually ran.
func escape(c complex128, budget int) (n int, z complex128, steps int) {
	if budget < 0 {
		budget = 0
	}
	if inSet(c) {
		return budget, c, 0
	}

	z = c
	for n < budget {
		x, y := real(z), imag(z)
		if x*x+y*y >= 4 {
			break
		}
		z = z*z + c
		n++
	}
	return n, z, n
}

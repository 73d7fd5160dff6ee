package filter

import (
	"fmt"
	"math"

	"github.com/gogpu/logfilter/internal/image"
)

// LevelShift subtracts offset from every interior sample of p, centering an
// unsigned range on zero. The border is left stale.
func LevelShift(p *image.Plane, offset float32) {
	for r := 0; r < p.Height(); r++ {
		row := p.Row(r)
		for c := range row {
			row[c] -= offset
		}
	}
}

// Combine writes clamp(round((p1+p2)*alpha) + offset, 0, maxValue) into the
// interior of dst.
//
// The value is formed and saturated in float64 before it is stored, so
// out-of-range results never go through an integer conversion. NaN
// saturates to 0.
func Combine(p1, p2 *image.Plane, alpha, offset, maxValue float64, dst *image.Plane) error {
	if !sameSize(p1, p2) || !sameSize(p1, dst) {
		return fmt.Errorf("%w: partials %dx%d and %dx%d, output %dx%d", ErrSizeMismatch,
			p1.Width(), p1.Height(), p2.Width(), p2.Height(), dst.Width(), dst.Height())
	}

	for r := 0; r < dst.Height(); r++ {
		a, b, out := p1.Row(r), p2.Row(r), dst.Row(r)
		for c := range out {
			v := math.Round((float64(a[c])+float64(b[c]))*alpha) + offset
			out[c] = float32(clamp(v, 0, maxValue))
		}
	}
	return nil
}

// clamp saturates v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if !(v > lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

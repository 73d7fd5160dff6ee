package filter

import (
	"fmt"

	"github.com/gogpu/logfilter/internal/image"
)

// Pass runs one separable path: a horizontal convolution of src into inter,
// a border refresh of inter, then a vertical convolution of inter into dst.
// Every accumulation is descaled by an arithmetic right shift.
//
// src must already be extended. src and inter need a border of at least
// the kernel half-width; dst is written on its interior only. The
// preconditions are checked before any sample is written.
func Pass(path IntPath, shift int, src, inter, dst *image.Plane) error {
	h := len(path.Horizontal) / 2
	if len(path.Vertical) != len(path.Horizontal) {
		return fmt.Errorf("%w: horizontal %d taps, vertical %d taps",
			ErrSizeMismatch, len(path.Horizontal), len(path.Vertical))
	}
	if err := checkBorder("source", src, h); err != nil {
		return err
	}
	if err := checkBorder("intermediate", inter, h); err != nil {
		return err
	}
	if !sameSize(src, inter) || !sameSize(src, dst) {
		return fmt.Errorf("%w: source %dx%d, intermediate %dx%d, output %dx%d", ErrSizeMismatch,
			src.Width(), src.Height(), inter.Width(), inter.Height(), dst.Width(), dst.Height())
	}

	convolveRows(path.Horizontal, shift, src, inter)
	inter.Extend()
	convolveColumns(path.Vertical, shift, inter, dst)
	return nil
}

// convolveRows computes dst[r,c] = (Σ src[r,c+k]·taps[k]) >> shift.
func convolveRows(taps []int32, shift int, src, dst *image.Plane) {
	h := len(taps) / 2
	data := src.Data()

	for r := 0; r < dst.Height(); r++ {
		base := src.Offset(r, -h)
		out := dst.Row(r)
		for c := range out {
			window := data[base+c : base+c+len(taps)]
			var sum int32
			for k, tap := range taps {
				sum += int32(window[k]) * tap
			}
			out[c] = float32(sum >> shift)
		}
	}
}

// convolveColumns computes dst[r,c] = (Σ src[r+k,c]·taps[k]) >> shift.
func convolveColumns(taps []int32, shift int, src, dst *image.Plane) {
	h := len(taps) / 2
	data := src.Data()
	stride := src.Stride()

	for r := 0; r < dst.Height(); r++ {
		base := src.Offset(r-h, 0)
		out := dst.Row(r)
		for c := range out {
			i := base + c
			var sum int32
			for _, tap := range taps {
				sum += int32(data[i]) * tap
				i += stride
			}
			out[c] = float32(sum >> shift)
		}
	}
}

func checkBorder(name string, p *image.Plane, h int) error {
	if p.Border() < h {
		return fmt.Errorf("%w: %s border %d, half-width %d", ErrBorderTooSmall, name, p.Border(), h)
	}
	return nil
}

func sameSize(a, b *image.Plane) bool {
	return a.Width() == b.Width() && a.Height() == b.Height()
}

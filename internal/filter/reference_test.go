package filter

import (
	"math"
	"math/rand/v2"

	"github.com/gogpu/logfilter/internal/image"
)

// reflect maps i onto [0, n) by whole-sample mirroring.
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i = (i%period + period) % period
	if i >= n {
		i = period - i
	}
	return i
}

// refPass is a direct int64 model of one separable path over a mirrored
// grid of signed samples.
func refPass(p IntPath, shift int, in [][]int64) [][]int64 {
	rows, cols := len(in), len(in[0])
	h := len(p.Horizontal) / 2

	inter := make([][]int64, rows)
	for r := range rows {
		inter[r] = make([]int64, cols)
		for c := range cols {
			var sum int64
			for k, tap := range p.Horizontal {
				sum += in[r][reflect(c+k-h, cols)] * int64(tap)
			}
			inter[r][c] = sum >> shift
		}
	}

	out := make([][]int64, rows)
	for r := range rows {
		out[r] = make([]int64, cols)
		for c := range cols {
			var sum int64
			for k, tap := range p.Vertical {
				sum += inter[reflect(r+k-h, rows)][c] * int64(tap)
			}
			out[r][c] = sum >> shift
		}
	}
	return out
}

// refFilter models the whole engine on unsigned samples.
func refFilter(k *Kernels, alpha float64, samples [][]int64) [][]int64 {
	offset := int64(k.LevelOffset())
	shifted := make([][]int64, len(samples))
	for r, row := range samples {
		shifted[r] = make([]int64, len(row))
		for c, v := range row {
			shifted[r][c] = v - offset
		}
	}

	p1 := refPass(k.IntPath(0), k.Shift(), shifted)
	p2 := refPass(k.IntPath(1), k.Shift(), shifted)

	out := make([][]int64, len(samples))
	for r := range out {
		out[r] = make([]int64, len(samples[r]))
		for c := range out[r] {
			v := math.Round(float64(p1[r][c]+p2[r][c])*alpha) + float64(offset)
			out[r][c] = int64(clamp(v, 0, k.MaxSample()))
		}
	}
	return out
}

// randomSamples returns a rows x cols grid drawn from values, or from
// [0, maxValue] when values is empty.
func randomSamples(rng *rand.Rand, rows, cols int, maxValue int64, values ...int64) [][]int64 {
	out := make([][]int64, rows)
	for r := range out {
		out[r] = make([]int64, cols)
		for c := range out[r] {
			if len(values) > 0 {
				out[r][c] = values[rng.IntN(len(values))]
			} else {
				out[r][c] = rng.Int64N(maxValue + 1)
			}
		}
	}
	return out
}

// toPlane copies samples into the interior of a new plane.
func toPlane(samples [][]int64, border int) *image.Plane {
	p, err := image.NewPlane(len(samples), len(samples[0]), border)
	if err != nil {
		panic(err)
	}
	for r, row := range samples {
		for c, v := range row {
			p.Set(r, c, float32(v))
		}
	}
	return p
}

// fromPlane copies the interior of p out as integers.
func fromPlane(p *image.Plane) [][]int64 {
	out := make([][]int64, p.Height())
	for r := range out {
		out[r] = make([]int64, p.Width())
		for c, v := range p.Row(r) {
			out[r][c] = int64(v)
		}
	}
	return out
}

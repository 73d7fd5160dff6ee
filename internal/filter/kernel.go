package filter

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Default bit budget: 8-bit samples into a 32-bit signed accumulator.
const (
	DefaultSampleBits      = 8
	DefaultAccumulatorBits = 32
)

// Path is one separable branch of the filter as float taps.
// Horizontal runs first along rows, Vertical second along columns.
// Both have 2H+1 taps, index H being offset zero.
type Path struct {
	Horizontal []float64
	Vertical   []float64
}

// IntPath is a Path quantized to fixed point with a shared shift.
type IntPath struct {
	Horizontal []int32
	Vertical   []int32
}

// HalfWidth returns ceil(3*sigma), which captures effectively all of the
// Gaussian's energy.
func HalfWidth(sigma float64) int {
	return int(math.Ceil(3 * sigma))
}

// KernelOption configures kernel construction.
type KernelOption func(*kernelOptions)

type kernelOptions struct {
	sampleBits int
	accBits    int
	logger     *slog.Logger
}

// WithSampleBits sets the unsigned input sample width. Default 8.
func WithSampleBits(bits int) KernelOption {
	return func(o *kernelOptions) {
		o.sampleBits = bits
	}
}

// WithAccumulatorBits sets the signed accumulator width used to size the
// fixed-point shift. Default 32, which is also the maximum.
func WithAccumulatorBits(bits int) KernelOption {
	return func(o *kernelOptions) {
		o.accBits = bits
	}
}

// WithKernelLogger sets the logger that receives tap diagnostics at debug level.
func WithKernelLogger(l *slog.Logger) KernelOption {
	return func(o *kernelOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Kernels holds the four LoG filters, in float and fixed point, together
// with the shift that descales them. A Kernels value is immutable and may
// be shared read-only across channels.
type Kernels struct {
	sigma      float64
	halfWidth  int
	sampleBits int
	accBits    int

	paths    [2]Path
	intPaths [2]IntPath

	gain     float64
	nominal  int
	shift    int
	response *mat.Dense
}

// NewKernels builds the LoG filters for sigma with 2*halfWidth+1 taps.
//
// The shift starts at accumulatorBits - sampleBits - floor(log2(A)), where A
// is the BIBO gain of the combined 2-D response, and is lowered until the
// quantized taps provably keep both stages of both paths inside the
// accumulator. ErrOverflow is returned when no shift of at least 1 works.
func NewKernels(sigma float64, halfWidth int, opts ...KernelOption) (*Kernels, error) {
	o := kernelOptions{
		sampleBits: DefaultSampleBits,
		accBits:    DefaultAccumulatorBits,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if !(sigma > 0) || math.IsInf(sigma, 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSigma, sigma)
	}
	if halfWidth < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHalfWidth, halfWidth)
	}
	if o.accBits > DefaultAccumulatorBits || o.sampleBits < 1 || o.sampleBits >= o.accBits {
		return nil, fmt.Errorf("%w: sample %d, accumulator %d", ErrInvalidBits, o.sampleBits, o.accBits)
	}

	gauss, deriv := logTaps(sigma, halfWidth)
	k := &Kernels{
		sigma:      sigma,
		halfWidth:  halfWidth,
		sampleBits: o.sampleBits,
		accBits:    o.accBits,
		paths: [2]Path{
			{Horizontal: deriv, Vertical: gauss},
			{Horizontal: gauss, Vertical: deriv},
		},
	}

	k.gain, k.response = k.bibo()
	k.nominal = nominalShift(k.gain, o.sampleBits, o.accBits)

	shift, ints, ok := k.quantize()
	if !ok {
		return nil, fmt.Errorf("%w: sigma %v, half-width %d, %d-bit samples in %d-bit accumulator",
			ErrOverflow, sigma, halfWidth, o.sampleBits, o.accBits)
	}
	k.shift = shift
	k.intPaths = ints

	k.log(o.logger)
	return k, nil
}

// logTaps evaluates the Gaussian and its second-derivative weighting at
// every integer offset in [-h, h].
func logTaps(sigma float64, h int) (gauss, deriv []float64) {
	n := 2*h + 1
	gauss = make([]float64, n)
	deriv = make([]float64, n)

	s2 := sigma * sigma
	norm := 2 * math.Pi * math.Pow(sigma, 6)
	for loc := -h; loc <= h; loc++ {
		x2 := float64(loc * loc)
		g := math.Exp(-x2 / (2 * s2))
		gauss[h+loc] = g
		deriv[h+loc] = (x2 - s2) / norm * g
	}
	return gauss, deriv
}

// bibo returns the gain A, the summed magnitude of the difference between
// the two rank-1 responses, along with the combined response h11⊗h12 + h21⊗h22
// (rows vertical, columns horizontal).
func (k *Kernels) bibo() (float64, *mat.Dense) {
	n := 2*k.halfWidth + 1

	p1 := mat.NewDense(n, n, nil)
	p1.Outer(1, mat.NewVecDense(n, k.paths[0].Vertical), mat.NewVecDense(n, k.paths[0].Horizontal))
	p2 := mat.NewDense(n, n, nil)
	p2.Outer(1, mat.NewVecDense(n, k.paths[1].Vertical), mat.NewVecDense(n, k.paths[1].Horizontal))

	var diff mat.Dense
	diff.Sub(p1, p2)

	gain := 0.0
	for r := range n {
		for c := range n {
			gain += math.Abs(diff.At(r, c))
		}
	}

	response := mat.NewDense(n, n, nil)
	response.Add(p1, p2)
	return gain, response
}

// nominalShift is accBits - sampleBits - floor(log2(gain)), limited to the
// accumulator width.
func nominalShift(gain float64, sampleBits, accBits int) int {
	maxShift := accBits - 1
	if !(gain > 0) || math.IsInf(gain, 1) {
		return maxShift
	}
	shift := float64(accBits-sampleBits) - math.Floor(math.Log2(gain))
	if shift > float64(maxShift) {
		return maxShift
	}
	return int(shift)
}

// quantize finds the largest shift, not above the nominal one, whose
// rounded taps pass the overflow check.
func (k *Kernels) quantize() (int, [2]IntPath, bool) {
	for shift := k.nominal; shift >= 1; shift-- {
		scale := math.Ldexp(1, shift)

		var fixed [2][2][]float64
		for i, p := range k.paths {
			fixed[i][0] = roundTaps(p.Horizontal, scale)
			fixed[i][1] = roundTaps(p.Vertical, scale)
		}
		if !k.fits(fixed, shift) {
			continue
		}

		var ints [2]IntPath
		for i := range fixed {
			ints[i] = IntPath{
				Horizontal: toInt32(fixed[i][0]),
				Vertical:   toInt32(fixed[i][1]),
			}
		}
		return shift, ints, true
	}
	return 0, [2]IntPath{}, false
}

// fits reports whether, for samples of magnitude up to 2^(sampleBits-1),
// the horizontal sum and the vertical sum over descaled horizontal results
// both stay within the signed accumulator for each path.
//
// Sums are carried in float64, exact for every value that can pass.
func (k *Kernels) fits(fixed [2][2][]float64, shift int) bool {
	limit := math.Ldexp(1, k.accBits-1) - 1
	peak := math.Ldexp(1, k.sampleBits-1)
	scale := math.Ldexp(1, shift)

	for _, p := range fixed {
		stage1 := peak * absSum(p[0])
		if !(stage1 <= limit) {
			return false
		}
		// The arithmetic shift floors, so a negative sum can grow by one.
		inter := math.Ceil(stage1 / scale)
		if !(inter*absSum(p[1]) <= limit) {
			return false
		}
	}
	return true
}

func (k *Kernels) log(l *slog.Logger) {
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug("LoG float taps",
		"sigma", k.sigma,
		"h11", k.paths[0].Horizontal,
		"h12", k.paths[0].Vertical,
		"h21", k.paths[1].Horizontal,
		"h22", k.paths[1].Vertical)
	l.Debug("LoG fixed-point taps",
		"gain", k.gain,
		"nominal_shift", k.nominal,
		"shift", k.shift,
		"h11", k.intPaths[0].Horizontal,
		"h12", k.intPaths[0].Vertical,
		"h21", k.intPaths[1].Horizontal,
		"h22", k.intPaths[1].Vertical)
}

// Sigma returns the Gaussian scale.
func (k *Kernels) Sigma() float64 { return k.sigma }

// HalfWidth returns H; every filter has 2H+1 taps.
func (k *Kernels) HalfWidth() int { return k.halfWidth }

// SampleBits returns the unsigned input sample width.
func (k *Kernels) SampleBits() int { return k.sampleBits }

// Gain returns the BIBO gain A used to size the nominal shift.
func (k *Kernels) Gain() float64 { return k.gain }

// NominalShift returns accBits - sampleBits - floor(log2(A)).
func (k *Kernels) NominalShift() int { return k.nominal }

// Shift returns K, the shift applied after every accumulation.
func (k *Kernels) Shift() int { return k.shift }

// Path returns float path i (0 or 1). The slices are shared and must not
// be modified.
func (k *Kernels) Path(i int) Path { return k.paths[i] }

// IntPath returns fixed-point path i (0 or 1). The slices are shared and
// must not be modified.
func (k *Kernels) IntPath(i int) IntPath { return k.intPaths[i] }

// Response returns a copy of the combined 2-D float response.
func (k *Kernels) Response() *mat.Dense {
	return mat.DenseCopyOf(k.response)
}

// LevelOffset returns 2^(sampleBits-1), the value removed before filtering
// and restored after.
func (k *Kernels) LevelOffset() float64 {
	return math.Ldexp(1, k.sampleBits-1)
}

// MaxSample returns the largest unsigned sample, 2^sampleBits - 1.
func (k *Kernels) MaxSample() float64 {
	return math.Ldexp(1, k.sampleBits) - 1
}

func roundTaps(taps []float64, scale float64) []float64 {
	out := make([]float64, len(taps))
	for i, t := range taps {
		out[i] = math.Round(t * scale)
	}
	return out
}

func toInt32(taps []float64) []int32 {
	out := make([]int32, len(taps))
	for i, t := range taps {
		out[i] = int32(t)
	}
	return out
}

func absSum(taps []float64) float64 {
	var s float64
	for _, t := range taps {
		s += math.Abs(t)
	}
	return s
}

package logfilter

import (
	"context"
	"fmt"
	stdimage "image"
	"log/slog"
	"time"

	"github.com/gogpu/logfilter/internal/filter"
	"github.com/gogpu/logfilter/internal/image"
)

// Plane is a single-channel sample grid with a symmetric-extension border.
type Plane = image.Plane

// Raster is an interleaved 8-bit image stored bottom row first.
type Raster = image.Raster

// NewPlane allocates a plane with the given interior extent and border.
func NewPlane(height, width, border int) (*Plane, error) {
	return image.NewPlane(height, width, border)
}

// scratchPerLayout bounds the scratch planes a Filter keeps per image size.
const scratchPerLayout = 8

// Filter applies a fixed-point Laplacian-of-Gaussian approximation.
//
// The kernels are built once in New and shared read-only by every channel
// the filter processes. A Filter is safe for concurrent use; each call holds
// its own working buffers, recycled through a per-filter pool.
type Filter struct {
	kernels *filter.Kernels
	engine  *filter.Engine
	logger  *slog.Logger
}

// New builds a filter for Gaussian scale sigma and output scale alpha.
//
// Configuration problems (non-positive sigma, non-finite alpha, a half-width
// below 1, or parameters for which no fixed-point shift is overflow-safe)
// are reported here; see IsConfigError.
func New(sigma, alpha float64, opts ...Option) (*Filter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = Logger()
	}

	h := o.halfWidth
	if h == 0 {
		h = filter.HalfWidth(sigma)
	}

	kernels, err := filter.NewKernels(sigma, h,
		filter.WithSampleBits(o.sampleBits),
		filter.WithAccumulatorBits(o.accBits),
		filter.WithKernelLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	engine, err := filter.NewEngine(kernels, alpha,
		filter.WithEngineLogger(logger),
		filter.WithPool(image.NewPool(scratchPerLayout)),
	)
	if err != nil {
		return nil, err
	}

	return &Filter{
		kernels: kernels,
		engine:  engine,
		logger:  logger,
	}, nil
}

// Sigma returns the Gaussian scale.
func (f *Filter) Sigma() float64 { return f.kernels.Sigma() }

// Alpha returns the output scale.
func (f *Filter) Alpha() float64 { return f.engine.Alpha() }

// HalfWidth returns H, the border every input plane needs.
func (f *Filter) HalfWidth() int { return f.kernels.HalfWidth() }

// Shift returns the fixed-point shift K.
func (f *Filter) Shift() int { return f.kernels.Shift() }

// Gain returns the BIBO gain A of the combined kernel.
func (f *Filter) Gain() float64 { return f.kernels.Gain() }

// ApplyPlane filters one channel. p must have a border of at least
// HalfWidth and is consumed: its samples are level-shifted in place.
// The result has no border and holds samples in [0, 2^sampleBits-1].
func (f *Filter) ApplyPlane(ctx context.Context, p *Plane) (*Plane, error) {
	return f.engine.RunContext(ctx, p)
}

// ApplyPlanes filters each channel in turn with the same kernels.
func (f *Filter) ApplyPlanes(ctx context.Context, planes []*Plane) ([]*Plane, error) {
	out := make([]*Plane, len(planes))
	for n, p := range planes {
		res, err := f.engine.RunContext(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("logfilter: channel %d: %w", n, err)
		}
		out[n] = res
	}
	return out, nil
}

// ApplyRaster filters every component of r and returns a new raster of the
// same shape. r is not modified.
func (f *Filter) ApplyRaster(ctx context.Context, r *Raster) (*Raster, error) {
	if f.kernels.SampleBits() != 8 {
		return nil, fmt.Errorf("%w: rasters carry 8-bit samples, filter expects %d",
			ErrInvalidBits, f.kernels.SampleBits())
	}

	dst, err := image.NewRaster(r.Width, r.Height, r.Components)
	if err != nil {
		return nil, err
	}

	for n := 0; n < r.Components; n++ {
		p, err := r.Plane(n, f.HalfWidth())
		if err != nil {
			return nil, err
		}
		res, err := f.engine.RunContext(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("logfilter: component %d: %w", n, err)
		}
		if err := dst.SetPlane(n, res); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// Apply filters a decoded image. Gray inputs give a gray result; anything
// else is filtered as RGB and returned opaque.
func (f *Filter) Apply(ctx context.Context, img stdimage.Image) (stdimage.Image, error) {
	res, err := f.ApplyRaster(ctx, image.FromStdImage(img))
	if err != nil {
		return nil, err
	}
	return res.ToStdImage(), nil
}

// Stats describes one ProcessFile run.
type Stats struct {
	Input      string
	Output     string
	Width      int
	Height     int
	Components int
	HalfWidth  int
	Shift      int
	Duration   time.Duration
}

// Pixels returns the number of samples filtered.
func (s Stats) Pixels() int {
	return s.Width * s.Height * s.Components
}

// ProcessFile loads input, filters it and writes output. The output format
// follows the output extension (.bmp, .png, .jpg, .jpeg, .tif, .tiff).
func (f *Filter) ProcessFile(ctx context.Context, input, output string) (Stats, error) {
	start := time.Now()

	src, err := image.Load(input)
	if err != nil {
		return Stats{}, err
	}

	dst, err := f.ApplyRaster(ctx, src)
	if err != nil {
		return Stats{}, err
	}

	if err := dst.Save(output); err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Input:      input,
		Output:     output,
		Width:      src.Width,
		Height:     src.Height,
		Components: src.Components,
		HalfWidth:  f.HalfWidth(),
		Shift:      f.Shift(),
		Duration:   time.Since(start),
	}
	f.logger.Info("image filtered",
		"input", input,
		"output", output,
		"width", stats.Width,
		"height", stats.Height,
		"components", stats.Components,
		"duration", stats.Duration)
	return stats, nil
}

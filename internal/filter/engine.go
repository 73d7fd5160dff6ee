package filter

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/gogpu/logfilter/internal/image"
)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger used for per-run diagnostics.
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPool draws the intermediate and partial planes of every run from p
// and returns them when the run ends. The output plane is never pooled.
func WithPool(p *image.Pool) EngineOption {
	return func(e *Engine) {
		e.pool = p
	}
}

// Engine applies one set of kernels with one alpha to single-channel planes.
// An Engine holds no per-run state; every Run owns its intermediate buffers
// for its whole duration.
type Engine struct {
	kernels *Kernels
	alpha   float64
	logger  *slog.Logger
	pool    *image.Pool
}

// NewEngine binds kernels and the output scale alpha.
func NewEngine(k *Kernels, alpha float64, opts ...EngineOption) (*Engine, error) {
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAlpha, alpha)
	}
	e := &Engine{
		kernels: k,
		alpha:   alpha,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Kernels returns the kernels the engine applies.
func (e *Engine) Kernels() *Kernels {
	return e.kernels
}

// Alpha returns the output scale.
func (e *Engine) Alpha() float64 {
	return e.alpha
}

// Run filters one channel. See RunContext.
func (e *Engine) Run(in *image.Plane) (*image.Plane, error) {
	return e.RunContext(context.Background(), in)
}

// RunContext filters one channel and returns a border-free plane of
// samples in [0, 2^sampleBits-1].
//
// in holds unsigned samples on its interior and must have a border of at
// least the kernel half-width. It is consumed: the level shift is applied
// to it in place and its border is refreshed. ctx is checked between
// stages only.
func (e *Engine) RunContext(ctx context.Context, in *image.Plane) (*image.Plane, error) {
	k := e.kernels
	h := k.HalfWidth()
	if err := checkBorder("input", in, h); err != nil {
		return nil, err
	}

	height, width := in.Height(), in.Width()
	offset := k.LevelOffset()

	LevelShift(in, float32(offset))
	in.Extend()

	var scratch []*image.Plane
	defer func() {
		for _, p := range scratch {
			e.release(p)
		}
	}()

	partials := [2]*image.Plane{}
	for i := range partials {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		inter, err := e.acquire(height, width, h)
		if err != nil {
			return nil, err
		}
		scratch = append(scratch, inter)
		partial, err := e.acquire(height, width, 0)
		if err != nil {
			return nil, err
		}
		scratch = append(scratch, partial)

		if err := Pass(k.IntPath(i), k.Shift(), in, inter, partial); err != nil {
			return nil, fmt.Errorf("filter: path %d: %w", i+1, err)
		}
		partials[i] = partial
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := image.NewPlane(height, width, 0)
	if err != nil {
		return nil, err
	}
	if err := Combine(partials[0], partials[1], e.alpha, offset, k.MaxSample(), out); err != nil {
		return nil, err
	}

	e.logger.Debug("LoG channel filtered",
		"width", width,
		"height", height,
		"half_width", h,
		"shift", k.Shift())
	return out, nil
}

func (e *Engine) acquire(height, width, border int) (*image.Plane, error) {
	if e.pool != nil {
		return e.pool.Get(height, width, border)
	}
	return image.NewPlane(height, width, border)
}

func (e *Engine) release(p *image.Plane) {
	if e.pool != nil {
		e.pool.Put(p)
	}
}

package logfilter

import (
	"log/slog"

	"github.com/gogpu/logfilter/internal/filter"
)

// Option configures a Filter during creation.
//
// Example:
//
//	// Default: H = ceil(3*sigma), 8-bit samples, 32-bit accumulator
//	f, err := logfilter.New(1.5, 4)
//
//	// Wider kernel, explicit logger
//	f, err := logfilter.New(1.5, 4, logfilter.WithHalfWidth(7), logfilter.WithLogger(l))
type Option func(*options)

// options holds optional configuration for Filter creation.
type options struct {
	halfWidth  int
	sampleBits int
	accBits    int
	logger     *slog.Logger
}

// defaultOptions returns the default filter options.
func defaultOptions() options {
	return options{
		halfWidth:  0, // derived from sigma if zero
		sampleBits: filter.DefaultSampleBits,
		accBits:    filter.DefaultAccumulatorBits,
		logger:     nil, // package logger if nil
	}
}

// WithHalfWidth overrides the kernel half-width H. Each 1-D filter then has
// 2H+1 taps. The default is ceil(3*sigma).
func WithHalfWidth(h int) Option {
	return func(o *options) {
		o.halfWidth = h
	}
}

// WithSampleBits sets the input sample depth. Only 8-bit rasters can be
// loaded from files; other depths are for callers feeding planes directly.
func WithSampleBits(bits int) Option {
	return func(o *options) {
		o.sampleBits = bits
	}
}

// WithAccumulatorBits sets the signed accumulator width the fixed-point
// shift is sized for. At most 32.
func WithAccumulatorBits(bits int) Option {
	return func(o *options) {
		o.accBits = bits
	}
}

// WithLogger sets a logger for this filter, overriding the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

package filter

import "errors"

// Configuration errors, returned by NewKernels and NewEngine.
var (
	// ErrInvalidSigma is returned when sigma is not a positive finite number.
	ErrInvalidSigma = errors.New("filter: sigma must be positive and finite")

	// ErrInvalidHalfWidth is returned when the filter half-width is below 1.
	ErrInvalidHalfWidth = errors.New("filter: half-width must be at least 1")

	// ErrInvalidBits is returned for unusable sample or accumulator widths.
	ErrInvalidBits = errors.New("filter: invalid sample or accumulator bit width")

	// ErrInvalidAlpha is returned when alpha is NaN or infinite.
	ErrInvalidAlpha = errors.New("filter: alpha must be finite")

	// ErrOverflow is returned when no fixed-point shift keeps every
	// accumulation inside the accumulator.
	ErrOverflow = errors.New("filter: no fixed-point shift avoids accumulator overflow")
)

// Precondition errors, returned by Pass and Engine.Run before any sample
// is written.
var (
	// ErrBorderTooSmall is returned when a plane's border is narrower than
	// the kernel half-width.
	ErrBorderTooSmall = errors.New("filter: plane border smaller than kernel half-width")

	// ErrSizeMismatch is returned when planes passed together differ in
	// interior extent.
	ErrSizeMismatch = errors.New("filter: plane dimensions differ")
)

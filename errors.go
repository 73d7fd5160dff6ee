package logfilter

import (
	"errors"

	"github.com/gogpu/logfilter/internal/filter"
	"github.com/gogpu/logfilter/internal/image"
)

// Configuration errors. These are detected when a Filter is built and mean
// the requested parameters cannot be honored.
var (
	ErrInvalidSigma     = filter.ErrInvalidSigma
	ErrInvalidAlpha     = filter.ErrInvalidAlpha
	ErrInvalidHalfWidth = filter.ErrInvalidHalfWidth
	ErrInvalidBits      = filter.ErrInvalidBits
	ErrOverflow         = filter.ErrOverflow
)

// Precondition errors. These indicate a programming error in the caller
// and abort the run before any output is produced.
var (
	ErrBorderTooSmall = filter.ErrBorderTooSmall
	ErrSizeMismatch   = filter.ErrSizeMismatch
)

// I/O errors from loading and saving images.
var (
	ErrUnsupportedFormat = image.ErrUnsupportedFormat
	ErrEmptyData         = image.ErrEmptyData
)

// IsConfigError reports whether err comes from the filter engine's
// configuration or precondition checks rather than from image I/O.
func IsConfigError(err error) bool {
	for _, target := range []error{
		ErrInvalidSigma, ErrInvalidAlpha, ErrInvalidHalfWidth, ErrInvalidBits,
		ErrOverflow, ErrBorderTooSmall, ErrSizeMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

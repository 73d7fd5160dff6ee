// Package filter implements the fixed-point separable Laplacian-of-Gaussian
// engine used by logfilter.
//
// The 2-D kernel is realized as the sum of two rank-1 paths:
//
//	LoG ≈ (h11 ⊗ h12) + (h21 ⊗ h22)
//
// where h11 = h22 is the second-derivative-weighted Gaussian and
// h12 = h21 is the plain Gaussian. Each path runs a horizontal pass, a
// border refresh and a vertical pass over integer taps scaled by 2^K. The
// two partial outputs are summed, scaled by alpha, re-centered and clamped.
//
// All arithmetic inside a pass uses an int32 accumulator. K is verified at
// kernel construction time so that no stage can overflow for any sample in
// the configured input range.
package filter

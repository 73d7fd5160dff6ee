// Package logfilter applies a separable, integer-quantized approximation of
// a Laplacian-of-Gaussian (LoG) filter to raster images.
//
// # Quick Start
//
//	import "github.com/gogpu/logfilter"
//
//	// sigma 1.5, alpha 4: H = ceil(3*1.5) = 5
//	f, err := logfilter.New(1.5, 4)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := f.ProcessFile(ctx, "in.bmp", "out.bmp"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Algorithm
//
// The 2-D LoG kernel is decomposed into four 1-D filters forming two
// separable paths. The taps are converted to integers with a shared
// fixed-point shift K, chosen so that no accumulation can overflow a 32-bit
// signed accumulator for 8-bit input. Each channel is level-shifted by -128,
// symmetrically extended, convolved along both paths, and recombined:
//
//	out = clamp(round((path1 + path2) * alpha) + 128, 0, 255)
//
// # Channels
//
// Every channel is filtered independently with the same kernels. Gray
// images stay gray; other images are processed as RGB and alpha is dropped.
//
// # Errors
//
// Configuration and precondition failures (see IsConfigError) are distinct
// from image I/O failures such as ErrUnsupportedFormat.
//
// # Logging
//
// logfilter is silent by default. SetLogger or WithLogger enables
// structured diagnostics through log/slog; at debug level the float and
// fixed-point taps are logged when a filter is built.
package logfilter

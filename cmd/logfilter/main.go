// Command logfilter applies a fixed-point Laplacian-of-Gaussian filter to
// BMP, PNG, JPEG, TIFF and WebP images.
//
// Usage:
//
//	logfilter <input> <output> <sigma> <alpha>
//	logfilter batch <input-dir> <output-dir> --sigma 1.5 --alpha 4
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gogpu/logfilter"
)

// Exit codes.
const (
	exitIO     = 1
	exitConfig = 2
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "logfilter: %s\n", describe(err))
		os.Exit(exitCode(err))
	}
}

// describe turns an error into the message shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, logfilter.ErrUnsupportedFormat):
		return fmt.Sprintf("unsupported image format (BMP, PNG, JPEG, TIFF and WebP input; BMP, PNG, JPEG and TIFF output): %v", err)
	case errors.Is(err, os.ErrNotExist):
		return fmt.Sprintf("cannot open supplied input or output file: %v", err)
	case errors.Is(err, logfilter.ErrOverflow):
		return fmt.Sprintf("sigma too small for fixed-point filtering: %v", err)
	default:
		return err.Error()
	}
}

func exitCode(err error) int {
	var usage *usageError
	if logfilter.IsConfigError(err) || errors.As(err, &usage) {
		return exitConfig
	}
	return exitIO
}

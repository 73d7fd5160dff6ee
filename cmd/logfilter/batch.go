package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/logfilter"
)

// inputExts lists the extensions batch picks up.
var inputExts = []string{".bmp", ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".webp"}

type batchFlags struct {
	sigma  float64
	alpha  float64
	jobs   int
	suffix string
	format string
}

func newBatchCmd(global *globalFlags) *cobra.Command {
	var flags batchFlags

	cmd := &cobra.Command{
		Use:   "batch <input-dir> <output-dir>",
		Short: "Filter every image in a directory",
		Long: `batch filters every BMP, PNG, JPEG, TIFF and WebP file in input-dir and
writes the results to output-dir. Images are processed concurrently, up to
--jobs at a time; each image is filtered on a single goroutine.`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := global.setup(flags.sigma, flags.alpha)
			if err != nil {
				return err
			}

			inputs, err := listImages(args[0])
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				return fmt.Errorf("no images found in %s", args[0])
			}
			if err := os.MkdirAll(args[1], 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			results := make([]logfilter.Stats, len(inputs))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(flags.jobs, 1))
			for i, in := range inputs {
				out := outputPath(args[1], in, flags.suffix, flags.format)
				g.Go(func() error {
					stats, err := f.ProcessFile(ctx, in, out)
					if err != nil {
						return fmt.Errorf("%s: %w", in, err)
					}
					results[i] = stats
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if !global.quiet {
				for _, s := range results {
					printStats(cmd.OutOrStdout(), s)
				}
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.Float64Var(&flags.sigma, "sigma", 1, "Gaussian scale")
	fs.Float64Var(&flags.alpha, "alpha", 1, "output scale factor")
	fs.IntVarP(&flags.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "images processed concurrently")
	fs.StringVar(&flags.suffix, "suffix", "_log", "suffix added to output file names")
	fs.StringVar(&flags.format, "format", "", "output extension, e.g. png (default: same as input; WebP becomes PNG)")
	return cmd
}

// listImages returns the supported image files in dir, sorted by name.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(inputExts, strings.ToLower(filepath.Ext(e.Name()))) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// outputPath maps an input file to its output location.
func outputPath(dir, input, suffix, format string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	switch {
	case format != "":
		ext = "." + strings.TrimPrefix(strings.ToLower(format), ".")
	case strings.EqualFold(ext, ".webp"):
		ext = ".png"
	}
	return filepath.Join(dir, name+suffix+ext)
}

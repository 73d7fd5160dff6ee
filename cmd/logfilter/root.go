package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/logfilter"
)

// usageError marks malformed command line values.
type usageError struct {
	arg string
	err error
}

func (e *usageError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.arg, e.err)
}

func (e *usageError) Unwrap() error { return e.err }

// globalFlags are shared by every command.
type globalFlags struct {
	debug     bool
	quiet     bool
	halfWidth int
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&g.debug, "debug", false, "log kernel taps and per-channel diagnostics to stderr")
	fs.BoolVarP(&g.quiet, "quiet", "q", false, "suppress the summary line")
	fs.IntVar(&g.halfWidth, "half-width", 0, "filter half-width H (default ceil(3*sigma))")
}

// setup installs the logger and builds the filter.
func (g *globalFlags) setup(sigma, alpha float64) (*logfilter.Filter, error) {
	if g.debug {
		logfilter.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	var opts []logfilter.Option
	if g.halfWidth != 0 {
		opts = append(opts, logfilter.WithHalfWidth(g.halfWidth))
	}
	return logfilter.New(sigma, alpha, opts...)
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "logfilter <input> <output> <sigma> <alpha>",
		Short: "Apply a fixed-point Laplacian-of-Gaussian filter to an image",
		Long: `logfilter filters every channel of an image with a separable,
integer-quantized Laplacian of Gaussian of scale sigma, scales the response
by alpha and re-centers it on mid-gray.

The filter half-width is ceil(3*sigma) unless --half-width is given.`,
		Args:          usageArgs(cobra.ExactArgs(4)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sigma, err := parseFloat("sigma", args[2])
			if err != nil {
				return err
			}
			alpha, err := parseFloat("alpha", args[3])
			if err != nil {
				return err
			}

			f, err := flags.setup(sigma, alpha)
			if err != nil {
				return err
			}

			stats, err := f.ProcessFile(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !flags.quiet {
				printStats(cmd.OutOrStdout(), stats)
			}
			return nil
		},
	}

	flags.register(cmd.PersistentFlags())
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{arg: "flag", err: err}
	})
	cmd.AddCommand(newBatchCmd(&flags))
	return cmd
}

// usageArgs reports positional argument errors as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &usageError{arg: "arguments", err: err}
		}
		return nil
	}
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &usageError{arg: name, err: err}
	}
	return v, nil
}

// printStats writes one summary line with grouped digits.
func printStats(w io.Writer, s logfilter.Stats) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "%s -> %s: %dx%d, %d component(s), %d samples, H=%d K=%d, %v\n",
		s.Input, s.Output, s.Width, s.Height, s.Components, s.Pixels(),
		s.HalfWidth, s.Shift, s.Duration.Round(time.Millisecond))
}

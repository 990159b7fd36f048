// Package cli is the lutimg command line: histogram equalization by default,
// plus subcommands for any registered transform, histogram plots and
// self-update.
package cli

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Fepozopo/lutimg/pkg/config"
	"github.com/Fepozopo/lutimg/pkg/lut"
	"github.com/Fepozopo/lutimg/pkg/pipeline"
	"github.com/Fepozopo/lutimg/pkg/stdimg"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// usageError marks argument and flag problems so they map to exitUsage.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func minimumArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// Execute runs the command line with os.Args and returns the process exit
// code.
func Execute() int {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	root := newRootCmd(cfg)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(stderr, "run 'lutimg --help' for usage")
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

type rootOptions struct {
	color   bool
	plotDir string
	preview bool
	verbose bool
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "lutimg <input> <output>",
		Short: "Histogram-equalize an image",
		Long: `lutimg equalizes the histogram of <input> and writes the result to <output>.
The image is converted to greyscale unless --color is given; with --color every
channel goes through the same table built from the histogram of all samples.`,
		Args:          exactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEqualize(cmd, opts, args[0], args[1])
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "print progress")
	pf.BoolVar(&opts.preview, "preview", cfg.Preview, "show the result in the terminal")
	pf.BoolVar(&opts.color, "color", cfg.Color, "keep colour channels instead of converting to greyscale")
	root.Flags().StringVar(&opts.plotDir, "plot-dir", cfg.PlotDir, "write input and output histogram plots to this directory")

	root.AddCommand(
		newApplyCmd(opts),
		newHistogramCmd(opts),
		newVersionCmd(),
		newUpdateCmd(cfg),
	)
	return root
}

func (o *rootOptions) logf(cmd *cobra.Command, format string, args ...interface{}) {
	if o.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
	}
}

func runEqualize(cmd *cobra.Command, opts *rootOptions, in, out string) error {
	img, err := stdimg.Load(in, !opts.color)
	if err != nil {
		return err
	}
	opts.logf(cmd, "loaded %s: %s", in, stdimg.Describe(img))

	h := stdimg.ComputeHistogram(img)
	opts.logf(cmd, "input: %s", stdimg.Stats(h))
	res, err := pipeline.Pipeline{Histogram: stdimg.ComputeHistogram}.Run(img, h)
	if err != nil {
		return fmt.Errorf("equalize %s: %w", in, err)
	}
	opts.logf(cmd, "output: %s", stdimg.Stats(res.Histogram))
	if err := stdimg.Save(out, res.Image); err != nil {
		return err
	}
	opts.logf(cmd, "wrote %s", out)

	if opts.plotDir != "" {
		if err := os.MkdirAll(opts.plotDir, 0o755); err != nil {
			return fmt.Errorf("create plot directory: %w", err)
		}
		plots := []struct {
			file  string
			title string
			h     lut.Histogram
		}{
			{"input_histogram.png", "input histogram", h},
			{"output_histogram.png", "output histogram", res.Histogram},
		}
		for _, p := range plots {
			path := filepath.Join(opts.plotDir, p.file)
			plot := stdimg.RenderHistogramImage(p.title, []lut.Histogram{p.h}, 0, 0)
			if err := stdimg.SaveStd(path, plot); err != nil {
				return err
			}
			opts.logf(cmd, "wrote %s", path)
		}
	}

	if opts.preview {
		std, err := res.Image.Std()
		if err != nil {
			return err
		}
		showPreview(cmd, std,
			stdimg.RenderHistogramImage("input histogram", []lut.Histogram{h}, 0, 0),
			stdimg.RenderHistogramImage("output histogram", []lut.Histogram{res.Histogram}, 0, 0))
	}
	return nil
}

// showPreview is best effort: a terminal without image support only gets a
// note on stderr.
func showPreview(cmd *cobra.Command, imgs ...image.Image) {
	if !PreviewSupported() {
		fmt.Fprintln(cmd.ErrOrStderr(), "preview: terminal does not support inline images")
		return
	}
	p := NewPreviewer(cmd.OutOrStdout())
	for _, img := range imgs {
		if err := p.Show(img); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "preview: %v\n", err)
			return
		}
	}
}

const applyLong = `Apply one point transform to <input> and write <output>.
Put -- before negative arguments, e.g. lutimg apply brightness in.png out.png -- -40

Transforms:
`

func newApplyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <transform> <input> <output> [args...]",
		Short: "Apply a single lookup-table transform",
		Long:  applyLong + stdimg.Help(),
		Args:  minimumArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, in, out := args[0], args[1], args[2]
			if _, ok := stdimg.Lookup(name); !ok {
				return usageError{fmt.Errorf("unknown transform %q", name)}
			}
			img, err := stdimg.Load(in, !opts.color)
			if err != nil {
				return err
			}
			opts.logf(cmd, "loaded %s: %s", in, stdimg.Describe(img))
			res, err := stdimg.ApplyCommand(img, name, args[3:])
			if err != nil {
				return err
			}
			if err := stdimg.Save(out, res.Image); err != nil {
				return err
			}
			opts.logf(cmd, "wrote %s", out)
			if opts.preview {
				std, err := res.Image.Std()
				if err != nil {
					return err
				}
				showPreview(cmd, std)
			}
			return nil
		},
	}
}

func newHistogramCmd(opts *rootOptions) *cobra.Command {
	var perChannel bool
	cmd := &cobra.Command{
		Use:   "histogram <input> <output.png>",
		Short: "Render the intensity histogram of an image",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := stdimg.Load(args[0], !opts.color)
			if err != nil {
				return err
			}
			hists := []lut.Histogram{stdimg.ComputeHistogram(img)}
			if perChannel && img.Channels > 1 {
				hists = stdimg.ChannelHistograms(img)
			}
			plot := stdimg.RenderHistogramImage(filepath.Base(args[0]), hists, 0, 0)
			if err := stdimg.SaveStd(args[1], plot); err != nil {
				return err
			}
			opts.logf(cmd, "wrote %s", args[1])
			if opts.preview {
				showPreview(cmd, plot)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&perChannel, "per-channel", false, "plot one series per channel (with --color)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lutimg version",
		Args:  exactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lutimg %s\n", Version)
		},
	}
}

func newUpdateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Check GitHub for a newer release and install it",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := &Updater{
				Repo: cfg.UpdateRepo,
				Out:  cmd.OutOrStdout(),
				In:   cmd.InOrStdin(),
			}
			return u.Check(Version)
		},
	}
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fcoury/ergogen-rs-sub000/pkg/pipeline"
)

// layoutFlags holds the flags shared by layout-producing commands.
type layoutFlags struct {
	format  string
	noCache bool
	refresh bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "input format: yaml, json, toml (default: from file extension)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even if a cached result exists")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormat)
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   layoutFlags
		output  string
		asTable bool
	)

	cmd := &cobra.Command{
		Use:   "layout <config|->",
		Short: "Lay out the points of a keyboard config",
		Long: `Lay out the points of a keyboard config.

The config is read from a file, or from stdin when the argument is "-". Its
macros are expanded, units evaluated and every zone laid out. The result
(units and named points) is written as JSON to stdout or to --output.

Results are cached locally for faster subsequent runs.`,
		Example: `  keyplan layout board.yaml
  keyplan layout board.yaml -o points.json
  cat board.json | keyplan layout - --format json --table`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args[0], flags, output, asTable)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&asTable, "table", false, "print a point table instead of JSON")

	return cmd
}

// runLayout executes the pipeline and writes the result.
func (c *CLI) runLayout(ctx context.Context, stdin io.Reader, stdout io.Writer, input string, flags layoutFlags, output string, asTable bool) error {
	res, err := c.execute(ctx, stdin, input, flags)
	if err != nil {
		return err
	}

	switch {
	case asTable:
		fmt.Fprintln(stdout, pointTable(res.Points))
	case output == "":
		if err := writeJSON(stdout, res); err != nil {
			return err
		}
	default:
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		if err := writeJSON(f, res); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", output, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	printSuccess("Layout complete")
	if output != "" {
		printFile(output)
	}
	printStats(res.Stats.ZoneCount, res.Stats.PointCount, res.CacheInfo.LayoutHit)
	if input != "-" {
		printNewline()
		printNextStep("Preview", appName+" preview "+input)
	}
	return nil
}

// execute reads input and runs the layout pipeline behind a spinner.
func (c *CLI) execute(ctx context.Context, stdin io.Reader, input string, flags layoutFlags) (*pipeline.Result, error) {
	opts, err := readInput(input, flags.format, stdin)
	if err != nil {
		return nil, err
	}
	opts.Refresh = flags.refresh

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Laying out "+opts.Source+"...")
	spinner.Start()

	p := newProgress(loggerFromContext(ctx))
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return nil, err
	}
	spinner.Stop()
	p.done(fmt.Sprintf("Laid out %d points", res.Stats.PointCount))

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return res, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fcoury/ergogen-rs-sub000/pkg/render/preview"
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
		opts   preview.Options
		dot    bool
	)

	cmd := &cobra.Command{
		Use:   "preview <config|->",
		Short: "Render a keyboard layout as an SVG preview",
		Long: `Render a keyboard layout as an SVG preview.

Every key is drawn as a box at its laid-out position. With --binds, edges
connect keys that autobind linked together. --dot writes the Graphviz
source instead of rendering it.`,
		Example: `  keyplan preview board.yaml
  keyplan preview board.yaml --binds -o board.svg
  keyplan preview board.yaml --dot -o - | dot -Kneato -Tpng > board.png`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dot {
				opts.Format = preview.FormatDOT
			}
			return c.runPreview(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args[0], flags, opts, output)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default: <config>.svg)`)
	cmd.Flags().BoolVar(&dot, "dot", false, "write Graphviz DOT instead of SVG")
	cmd.Flags().BoolVar(&opts.Binds, "binds", false, "draw edges between bound keys")
	cmd.Flags().Float64Var(&opts.Scale, "scale", preview.DefaultScale, "output points per millimetre")
	_ = cmd.RegisterFlagCompletionFunc("output", completePreviewOutput)

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, stdin io.Reader, stdout io.Writer, input string, flags layoutFlags, opts preview.Options, output string) error {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return err
	}

	res, err := c.execute(ctx, stdin, input, flags)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	data, err := runner.Preview(ctx, res, opts)
	if err != nil {
		return fmt.Errorf("render preview: %w", err)
	}

	if output == "" {
		output = previewPath(input, opts.Format)
	}
	if output == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Preview rendered")
	printFile(output)
	printStats(res.Stats.ZoneCount, res.Stats.PointCount, res.CacheInfo.PreviewHit)
	return nil
}

// previewPath derives the default output path from the input path.
func previewPath(input, format string) string {
	if input == "-" {
		return "-"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}

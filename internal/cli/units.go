package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// unitsCommand creates the units command.
func (c *CLI) unitsCommand() *cobra.Command {
	var (
		format string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "units <config|->",
		Short: "Print the evaluated units dictionary",
		Long: `Print the evaluated units dictionary of a keyboard config.

The built-in units (U, u, cx, cy, ...) come first, followed by the config's
own units and variables in declaration order.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runUnits(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args[0], format, asJSON)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "input format: yaml, json, toml (default: from file extension)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormat)

	return cmd
}

func (c *CLI) runUnits(ctx context.Context, stdin io.Reader, stdout io.Writer, input, format string, asJSON bool) error {
	opts, err := readInput(input, format, stdin)
	if err != nil {
		return err
	}

	// Units are never cached.
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close()

	u, err := runner.Units(ctx, opts)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(stdout, u)
	}
	fmt.Fprintln(stdout, unitsTable(u))
	return nil
}

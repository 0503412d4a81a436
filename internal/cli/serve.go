package cli

import (
	"github.com/spf13/cobra"

	"github.com/fcoury/ergogen-rs-sub000/pkg/cache"
	"github.com/fcoury/ergogen-rs-sub000/pkg/pipeline"
	"github.com/fcoury/ergogen-rs-sub000/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout pipeline over HTTP",
		Long: `Serve the layout pipeline over HTTP.

Routes:
  GET  /healthz       liveness and build info
  POST /v1/layout     lay out the posted config
  POST /v1/units      evaluate the posted config's units
  POST /v1/preview    render the posted config as SVG or DOT

The request body format is taken from ?format= or the Content-Type header.
Cache entries are namespaced apart from CLI runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newCache(ctx, noCache)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, "api:"), c.Logger)
			defer runner.Close()

			printInfo("Listening on %s", addr)
			return server.New(runner, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

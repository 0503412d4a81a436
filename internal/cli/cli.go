// Package cli implements the keyplan command-line interface.
//
// Commands:
//   - layout: lay out a keyboard config and write the points as JSON
//   - units: print the evaluated units dictionary
//   - preview: render the points as an SVG or DOT preview
//   - cache: inspect and clear the result cache
//   - serve: run the HTTP API
//   - version, completion
//
// All commands support --verbose (-v) for debug-level logging. Results are
// cached under $XDG_CACHE_HOME/keyplan unless --no-cache is given; setting
// --redis or KEYPLAN_REDIS_URL switches the cache to Redis.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/fcoury/ergogen-rs-sub000/pkg/buildinfo"
	"github.com/fcoury/ergogen-rs-sub000/pkg/cache"
	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
	"github.com/fcoury/ergogen-rs-sub000/pkg/pipeline"
)

const (
	// appName is the application name used for directories and display.
	appName = "keyplan"

	// redisEnv names the environment variable holding a Redis URL.
	redisEnv = "KEYPLAN_REDIS_URL"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	redisURL string
	cacheDir string
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "keyplan lays out keyboard key positions from a config file",
		Long: `keyplan expands a keyboard config (YAML, JSON or TOML), evaluates its units
and lays out every key of every zone as a named point with a position,
rotation and metadata.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.redisURL, "redis", os.Getenv(redisEnv),
		"Redis URL for the result cache (env "+redisEnv+")")
	root.PersistentFlags().StringVar(&c.cacheDir, "cache-dir", "", "cache directory (default: $XDG_CACHE_HOME/keyplan)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.unitsCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache picks Redis when a URL is configured, else the file cache. An
// unusable cache directory degrades to no caching rather than failing.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, c.redisURL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return rc, nil
	}
	dir, err := c.resolveCacheDir()
	if err != nil {
		c.Logger.Warn("caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

func (c *CLI) resolveCacheDir() (string, error) {
	if c.cacheDir != "" {
		return c.cacheDir, nil
	}
	return cache.DefaultDir()
}

// readInput loads a config document from path, or from stdin when path is
// "-". format overrides the extension-derived format when set.
func readInput(path, format string, stdin io.Reader) (pipeline.Options, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return pipeline.Options{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return pipeline.Options{}, fmt.Errorf("read %s: %w", path, err)
	}

	opts := pipeline.Options{Input: data, Source: path}
	if path == "-" {
		opts.Source = "<stdin>"
	}
	if format != "" {
		f, err := config.ParseFormat(format)
		if err != nil {
			return opts, err
		}
		opts.Format = f
	}
	return opts, nil
}

// Package pipeline runs a keyboard config through the full layout pipeline.
//
// This package implements the decode → prepare → units → layout sequence
// shared by the CLI and the HTTP server, so both entry points produce
// identical results and share one caching policy.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Prepare: decode the document and expand its macros (unnest, inherit,
//     parameterize)
//  2. Units: evaluate the units dictionary
//  3. Layout: place every zone's points, mirror them and autobind
//
// A finished run may additionally be rendered as a preview (see
// [Runner.Preview]).
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:  data,
//	    Format: config.FormatYAML,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for name, p := range result.Points.All() {
//	    fmt.Println(name, p.X, p.Y, p.R)
//	}
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fcoury/ergogen-rs-sub000/pkg/cache"
	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
	"github.com/fcoury/ergogen-rs-sub000/pkg/points"
	"github.com/fcoury/ergogen-rs-sub000/pkg/units"
)

// DefaultFormat is used when neither Format nor Source names one.
const DefaultFormat = config.FormatYAML

// ResultVersion is folded into layout cache keys. Bump it whenever the
// encoding of Result changes.
const ResultVersion = 1

// MaxInputSize bounds the accepted config document.
const MaxInputSize = 4 << 20

// Options contains all configuration for a pipeline run.
type Options struct {
	// Input is the raw config document.
	Input []byte `json:"-"`

	// Format selects the decoder. When empty it is derived from Source.
	Format config.Format `json:"format,omitempty"`

	// Source names the input for logs and hooks, typically a file path.
	Source string `json:"source,omitempty"`

	// Refresh bypasses cached results (the fresh result is still stored).
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this run, cache hits included.
	RunID string `json:"run_id"`

	// Hash is the content hash of the input and its format.
	Hash string `json:"hash"`

	Units  *units.Units `json:"units"`
	Points *points.Set  `json:"points"`

	Stats     Stats     `json:"-"`
	CacheInfo CacheInfo `json:"-"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ZoneCount   int
	PointCount  int
	PrepareTime time.Duration
	UnitsTime   time.Duration
	LayoutTime  time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	LayoutHit  bool // result came from cache
	PreviewHit bool // last preview came from cache
}

// snapshot is the cached form of a Result.
type snapshot struct {
	Hash   string       `json:"hash"`
	Units  *units.Units `json:"units"`
	Points *points.Set  `json:"points"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Input) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "config document is empty")
	}
	if len(o.Input) > MaxInputSize {
		return errors.New(errors.ErrCodeInvalidInput,
			"config document is %d bytes (max %d)", len(o.Input), MaxInputSize)
	}
	if o.Format == "" {
		o.Format = DefaultFormat
		if o.Source != "" {
			o.Format = config.FormatFromPath(o.Source)
		}
	}
	f, err := config.ParseFormat(string(o.Format))
	if err != nil {
		return err
	}
	o.Format = f
	if o.Source == "" {
		o.Source = "<input>"
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// InputHash returns the content hash identifying the input.
func (o *Options) InputHash() string {
	return cache.HashParts([]byte(o.Format), o.Input)
}

// LayoutKeyOpts returns cache key options for the layout result.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Format: string(o.Format), Version: ResultVersion}
}

func (s Stats) String() string {
	return fmt.Sprintf("%d zones, %d points in %s",
		s.ZoneCount, s.PointCount, (s.PrepareTime + s.UnitsTime + s.LayoutTime).Round(time.Microsecond))
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/fcoury/ergogen-rs-sub000/pkg/cache"
	"github.com/fcoury/ergogen-rs-sub000/pkg/observability"
	"github.com/fcoury/ergogen-rs-sub000/pkg/units"
)

// Runner encapsulates pipeline execution with caching.
//
// A Runner holds no per-run state: every run owns its config tree, units
// and points, so one Runner may serve concurrent runs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects the default keyer and a nil logger selects log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs prepare → units → layout, returning a cached result when the
// same input was laid out before.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	res := &Result{
		RunID: uuid.NewString(),
		Hash:  opts.InputHash(),
	}
	logger := opts.Logger.With("run", res.RunID[:8])
	key := r.Keyer.LayoutKey(res.Hash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, ok := r.load(ctx, key, "layout"); ok {
			var snap snapshot
			if err := json.Unmarshal(data, &snap); err == nil && snap.Points != nil && snap.Units != nil {
				res.Units, res.Points = snap.Units, snap.Points
				res.Stats.PointCount = snap.Points.Len()
				res.Stats.ZoneCount = distinctZones(snap.Points)
				res.CacheInfo.LayoutHit = true
				logger.Debug("layout cache hit", "source", opts.Source, "points", res.Stats.PointCount)
				return res, nil
			}
			logger.Debug("discarding undecodable cache entry", "key", key)
		}
	}

	hooks := observability.Pipeline()

	// Stage 1: Prepare
	hooks.OnPrepareStart(ctx, opts.Source)
	start := time.Now()
	root, err := Prepare(opts.Input, opts.Format)
	res.Stats.PrepareTime = time.Since(start)
	hooks.OnPrepareComplete(ctx, opts.Source, res.Stats.PrepareTime, err)
	if err != nil {
		return nil, err
	}
	logger.Info("prepared config",
		"source", opts.Source,
		"format", opts.Format,
		"duration", res.Stats.PrepareTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Units
	start = time.Now()
	u, err := ParseUnits(root)
	res.Stats.UnitsTime = time.Since(start)
	if err != nil {
		return nil, err
	}
	res.Units = u
	logger.Info("parsed units",
		"units", u.Len(),
		"duration", res.Stats.UnitsTime)

	// Stage 3: Layout
	res.Stats.ZoneCount = zoneCount(root)
	hooks.OnLayoutStart(ctx, res.Stats.ZoneCount)
	start = time.Now()
	pts, err := Layout(root, u)
	res.Stats.LayoutTime = time.Since(start)
	count := 0
	if pts != nil {
		count = pts.Len()
	}
	hooks.OnLayoutComplete(ctx, count, res.Stats.LayoutTime, err)
	if err != nil {
		return nil, err
	}
	res.Points = pts
	res.Stats.PointCount = count
	logger.Info("laid out points",
		"zones", res.Stats.ZoneCount,
		"points", count,
		"duration", res.Stats.LayoutTime)

	if data, err := json.Marshal(snapshot{Hash: res.Hash, Units: res.Units, Points: res.Points}); err == nil {
		r.store(ctx, key, "layout", data, cache.TTLLayout)
	}
	return res, nil
}

// Units runs prepare → units only. Results are not cached: the dictionary
// is cheap to rebuild.
func (r *Runner) Units(ctx context.Context, opts Options) (*units.Units, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	root, err := Prepare(opts.Input, opts.Format)
	if err != nil {
		return nil, err
	}
	u, err := ParseUnits(root)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("parsed units", "source", opts.Source, "units", u.Len())
	return u, nil
}

// Close releases resources held by the runner (the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// load reads key, firing cache hooks. Backend errors count as misses so an
// unreachable cache never fails a run.
func (r *Runner) load(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "kind", keyType, "err", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	r.Logger.Debug("cache miss", "kind", keyType)
	return nil, false
}

func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "kind", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// String describes a result for log lines.
func (res *Result) String() string {
	return fmt.Sprintf("run %s: %s", res.RunID, res.Stats)
}

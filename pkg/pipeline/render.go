package pipeline

import (
	"context"
	"time"

	"github.com/fcoury/ergogen-rs-sub000/pkg/cache"
	"github.com/fcoury/ergogen-rs-sub000/pkg/observability"
	"github.com/fcoury/ergogen-rs-sub000/pkg/render/preview"
)

// Preview renders res as a Graphviz preview, consulting the cache first.
// It records the cache outcome in res.CacheInfo.PreviewHit.
func (r *Runner) Preview(ctx context.Context, res *Result, opts preview.Options) ([]byte, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	key := r.Keyer.PreviewKey(res.Hash, cache.PreviewKeyOpts{
		Format: opts.Format,
		Binds:  opts.Binds,
		Scale:  opts.Scale,
	})
	if data, ok := r.load(ctx, key, "preview"); ok {
		res.CacheInfo.PreviewHit = true
		r.Logger.Debug("preview cache hit", "format", opts.Format)
		return data, nil
	}
	res.CacheInfo.PreviewHit = false

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Format)
	start := time.Now()
	data, err := preview.Render(ctx, res.Points, opts)
	elapsed := time.Since(start)
	hooks.OnRenderComplete(ctx, opts.Format, elapsed, err)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("rendered preview",
		"format", opts.Format,
		"bytes", len(data),
		"duration", elapsed)

	r.store(ctx, key, "preview", data, cache.TTLPreview)
	return data, nil
}

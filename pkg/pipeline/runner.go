package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/imagepuzzler/pkg/cache"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
	"github.com/matzehuels/imagepuzzler/pkg/observability"
	"github.com/matzehuels/imagepuzzler/pkg/player"
	"github.com/matzehuels/imagepuzzler/pkg/preview"
	"github.com/matzehuels/imagepuzzler/pkg/project"
	"github.com/matzehuels/imagepuzzler/pkg/puzzle"
	"github.com/matzehuels/imagepuzzler/pkg/reveal"
)

// Runner executes pipeline stages with caching.
//
// The Runner holds no per-run state; multiple goroutines can share one
// Runner with different options. Projects passed to it must not be
// modified while a stage runs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer uses the default keyer, a nil
// cache disables caching and a nil logger discards output.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// ExportWithCacheInfo renders p as a standalone quiz or a project archive
// and reports whether the result came from the cache. HTML exports are
// refused for projects with items lacking a selection.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, p *puzzle.Project, opts Options) (data []byte, hit bool, err error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, false, err
	}
	logger := r.logger(opts)

	start := time.Now()
	observability.Pipeline().OnExportStart(ctx, opts.Format, p.Len())
	defer func() {
		observability.Pipeline().OnExportComplete(ctx, opts.Format, len(data), time.Since(start), err)
	}()

	if opts.Format == FormatHTML {
		if err := p.ValidateForExport(); err != nil {
			return nil, false, err
		}
	}
	var archive bytes.Buffer
	if err := project.Save(&archive, p); err != nil {
		return nil, false, err
	}
	if opts.Format == FormatZip {
		logger.Info("exported project archive", "images", p.Len(), "bytes", archive.Len())
		return archive.Bytes(), false, nil
	}

	key := r.Keyer.ExportKey(cache.Hash(archive.Bytes()), opts.Format)
	if data, ok := r.lookup(ctx, "export", key, opts.Refresh); ok {
		logger.Debug("export cache hit", "format", opts.Format)
		return data, true, nil
	}

	data, err = player.Render(ctx, p, player.Options{Workers: opts.Workers, Logger: logger})
	if err != nil {
		return nil, false, err
	}
	r.store(ctx, "export", key, data, cache.ExportTTL)
	logger.Info("exported quiz",
		"questions", p.Len(),
		"bytes", len(data),
		"duration", time.Since(start))
	return data, false, nil
}

// Export is ExportWithCacheInfo without the cache hit info.
func (r *Runner) Export(ctx context.Context, p *puzzle.Project, opts Options) ([]byte, error) {
	data, _, err := r.ExportWithCacheInfo(ctx, p, opts)
	return data, err
}

// PreviewWithCacheInfo renders one item's reveal as a PNG frame at opts.At
// or as an animated GIF. The next button and progress text follow the
// project settings.
func (r *Runner) PreviewWithCacheInfo(ctx context.Context, p *puzzle.Project, opts Options) (data []byte, hit bool, err error) {
	if err := opts.ValidateForPreview(); err != nil {
		return nil, false, err
	}
	logger := r.logger(opts)

	it, err := p.Item(opts.Index)
	if err != nil {
		return nil, false, err
	}
	progress := reveal.ProgressText(p.ProgressLabel, opts.Index+1, p.Len())
	key := r.Keyer.FrameKey(itemHash(it, opts.Index), opts.FrameKeyOpts(p.NextButtonLabel, progress))
	if data, ok := r.lookup(ctx, "frame", key, opts.Refresh); ok {
		logger.Debug("preview cache hit", "format", opts.Format, "index", opts.Index)
		return data, true, nil
	}

	rend, err := preview.NewRenderer(it, opts.Index, preview.Options{
		Viewport:  geometry.Size{W: opts.Width, H: opts.Height},
		FPS:       opts.FPS,
		Hold:      opts.Hold,
		NextLabel: p.NextButtonLabel,
		Progress:  progress,
		Workers:   opts.Workers,
	})
	if err != nil {
		return nil, false, err
	}

	variant := rend.Plan().Variant.String()
	frames := 1
	if opts.Format == FormatGIF {
		frames = len(rend.FrameTimes())
	}
	start := time.Now()
	observability.Pipeline().OnFramesStart(ctx, variant, frames)
	defer func() {
		observability.Pipeline().OnFramesComplete(ctx, variant, time.Since(start), err)
	}()

	var buf bytes.Buffer
	switch opts.Format {
	case FormatGIF:
		err = rend.GIF(ctx, &buf)
	case FormatPNG:
		at := opts.At
		if at < 0 {
			at = rend.Plan().Duration()
		}
		err = renderPNG(rend, at, &buf)
	}
	if err != nil {
		return nil, false, err
	}

	r.store(ctx, "frame", key, buf.Bytes(), cache.FrameTTL)
	logger.Info("rendered preview",
		"format", opts.Format,
		"index", opts.Index,
		"variant", variant,
		"frames", frames,
		"duration", time.Since(start))
	return buf.Bytes(), false, nil
}

// Preview is PreviewWithCacheInfo without the cache hit info.
func (r *Runner) Preview(ctx context.Context, p *puzzle.Project, opts Options) ([]byte, error) {
	data, _, err := r.PreviewWithCacheInfo(ctx, p, opts)
	return data, err
}

// TimelineWithCacheInfo renders the reveal plan of one item.
func (r *Runner) TimelineWithCacheInfo(ctx context.Context, p *puzzle.Project, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateForTimeline(); err != nil {
		return nil, false, err
	}
	it, err := p.Item(opts.Index)
	if err != nil {
		return nil, false, err
	}
	return r.RenderPlan(ctx, reveal.NewPlan(it.Question(opts.Index)), opts)
}

// Timeline is TimelineWithCacheInfo without the cache hit info.
func (r *Runner) Timeline(ctx context.Context, p *puzzle.Project, opts Options) ([]byte, error) {
	data, _, err := r.TimelineWithCacheInfo(ctx, p, opts)
	return data, err
}

// RenderPlan renders plan in opts.Format with caching. Only the format is
// read from opts.
func (r *Runner) RenderPlan(ctx context.Context, plan reveal.Plan, opts Options) ([]byte, bool, error) {
	if err := ValidateTimelineFormat(opts.Format); err != nil {
		return nil, false, err
	}
	planJSON, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, false, fmt.Errorf("encode plan: %w", err)
	}
	if opts.Format == FormatJSON {
		return planJSON, false, nil
	}
	if opts.Format == FormatDOT {
		return []byte(plan.ToDOT()), false, nil
	}

	key := r.Keyer.TimelineKey(cache.Hash(planJSON), opts.Format)
	if data, ok := r.lookup(ctx, "timeline", key, opts.Refresh); ok {
		return data, true, nil
	}
	data, err := plan.RenderSVG(ctx)
	if err != nil {
		return nil, false, err
	}
	r.store(ctx, "timeline", key, data, cache.TimelineTTL)
	r.logger(opts).Debug("rendered timeline", "variant", plan.Variant, "steps", len(plan.Steps))
	return data, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup reads key unless refresh is set. Backend errors count as misses.
func (r *Runner) lookup(ctx context.Context, kind, key string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "kind", kind, "error", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, kind)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, kind)
	return nil, false
}

func (r *Runner) store(ctx context.Context, kind, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "kind", kind, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func renderPNG(rend *preview.Renderer, at time.Duration, w io.Writer) error {
	img, err := rend.FrameAt(at)
	if err != nil {
		return err
	}
	return preview.EncodePNG(w, img)
}

// itemHash identifies everything about an item that changes its preview.
func itemHash(it puzzle.Item, index int) string {
	return cache.HashJSON(struct {
		Raster    string
		Index     int
		Selection *geometry.Rect
		Label     puzzle.Label
	}{cache.Hash(it.Raster), index, it.Selection, it.Label.Normalize()})
}

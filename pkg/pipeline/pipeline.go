// Package pipeline runs the artifact-producing operations of imagepuzzler
// behind one cache-aware [Runner], so the CLI and the preview server share
// the same caching and instrumentation.
//
// There are three stages, each usable on its own:
//
//  1. Export: the standalone HTML quiz or the project archive
//  2. Preview: a PNG frame or an animated GIF of one item's reveal
//  3. Timeline: one item's reveal plan as DOT, SVG or JSON
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	html, hit, err := runner.ExportWithCacheInfo(ctx, p, pipeline.Options{Format: pipeline.FormatHTML})
//
//	gif, err := runner.Preview(ctx, p, pipeline.Options{Format: pipeline.FormatGIF, Index: 2})
//
// Cache keys are derived from content hashes (the encoded project archive,
// the item's raster and label, the plan), so an edited project is never
// served a stale artifact.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/imagepuzzler/pkg/cache"
	"github.com/matzehuels/imagepuzzler/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default preview viewport width in pixels.
	DefaultWidth = 960.0

	// DefaultHeight is the default preview viewport height in pixels.
	DefaultHeight = 600.0

	// DefaultFPS is the default GIF frame rate.
	DefaultFPS = 20

	// DefaultHold is how long GIFs linger on the final frame.
	DefaultHold = time.Second

	// MaxFPS bounds GIF frame rates; browsers clamp faster delays anyway.
	MaxFPS = 50

	// MaxViewport bounds either preview dimension.
	MaxViewport = 4096.0
)

// Format constants for output formats.
const (
	FormatHTML = "html"
	FormatZip  = "zip"
	FormatGIF  = "gif"
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// Formats accepted by each stage.
var (
	ExportFormats   = map[string]bool{FormatHTML: true, FormatZip: true}
	PreviewFormats  = map[string]bool{FormatGIF: true, FormatPNG: true}
	TimelineFormats = map[string]bool{FormatSVG: true, FormatDOT: true, FormatJSON: true}
)

// ContentType returns the MIME type served for an output format.
func ContentType(format string) string {
	switch format {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatZip:
		return "application/zip"
	case FormatGIF:
		return "image/gif"
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	}
	return "application/octet-stream"
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configure one pipeline operation.
type Options struct {
	// Format selects the output; it must be valid for the stage.
	Format string `json:"format"`

	// Index selects the item for previews and timelines.
	Index int `json:"index"`

	// Preview options
	Width  float64       `json:"width,omitempty"`
	Height float64       `json:"height,omitempty"`
	FPS    int           `json:"fps,omitempty"`
	Hold   time.Duration `json:"hold,omitempty"`
	// At is the time of a PNG frame after activation. Negative means the
	// end of the reveal.
	At time.Duration `json:"at,omitempty"`

	// Workers bounds concurrent image work. Zero uses GOMAXPROCS.
	Workers int `json:"-"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"-"`

	Logger *log.Logger `json:"-"`
}

// =============================================================================
// Validation Functions
// =============================================================================

func validateIn(stage string, formats map[string]bool, format string) error {
	if formats[format] {
		return nil
	}
	names := make([]string, 0, len(formats))
	for f := range formats {
		names = append(names, f)
	}
	sort.Strings(names)
	return errors.New(errors.ErrCodeInvalidFormat,
		"invalid %s format: %q (must be one of: %s)", stage, format, strings.Join(names, ", "))
}

// ValidateExportFormat checks an export format.
func ValidateExportFormat(format string) error {
	return validateIn("export", ExportFormats, format)
}

// ValidatePreviewFormat checks a preview format.
func ValidatePreviewFormat(format string) error {
	return validateIn("preview", PreviewFormats, format)
}

// ValidateTimelineFormat checks a timeline format.
func ValidateTimelineFormat(format string) error {
	return validateIn("timeline", TimelineFormats, format)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForExport checks the export format.
func (o *Options) ValidateForExport() error {
	return ValidateExportFormat(o.Format)
}

// SetPreviewDefaults fills the viewport, frame rate and hold.
func (o *Options) SetPreviewDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	if o.Hold <= 0 {
		o.Hold = DefaultHold
	}
}

// ValidateForPreview applies preview defaults and checks the format, the
// viewport and the frame rate.
func (o *Options) ValidateForPreview() error {
	if err := ValidatePreviewFormat(o.Format); err != nil {
		return err
	}
	o.SetPreviewDefaults()
	if o.Width > MaxViewport || o.Height > MaxViewport {
		return errors.New(errors.ErrCodeInvalidInput,
			"viewport %vx%v exceeds %v", o.Width, o.Height, MaxViewport)
	}
	if o.FPS > MaxFPS {
		return errors.New(errors.ErrCodeInvalidInput, "fps %d exceeds %d", o.FPS, MaxFPS)
	}
	return validateIndex(o.Index)
}

// ValidateForTimeline checks the format and item index.
func (o *Options) ValidateForTimeline() error {
	if err := ValidateTimelineFormat(o.Format); err != nil {
		return err
	}
	return validateIndex(o.Index)
}

func validateIndex(i int) error {
	if i < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "index %d is negative", i)
	}
	return nil
}

// FrameKeyOpts returns the options that affect preview output.
func (o *Options) FrameKeyOpts(next, progress string) cache.FrameKeyOpts {
	k := cache.FrameKeyOpts{
		Format:    o.Format,
		Width:     o.Width,
		Height:    o.Height,
		NextLabel: next,
		Progress:  progress,
	}
	switch o.Format {
	case FormatGIF:
		k.FPS = o.FPS
		k.HoldMillis = o.Hold.Milliseconds()
	case FormatPNG:
		k.AtNanos = int64(o.At)
	}
	return k
}

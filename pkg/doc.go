// Package pkg provides the libraries behind imagepuzzler, a builder for
// zoom-out image quizzes.
//
// # Overview
//
// An author collects images, marks a rectangular region on each, and exports
// a standalone HTML quiz. Every question first shows the cropped region
// large and centered; on click the cropped view flies back to where the
// region sits in the full picture, the full image appears with one of four
// reveal animations, and the answer fades in. The pkg directory is organized
// into four areas:
//
//  1. Model - the project, its items and the geometry they use
//  2. Reveal - the transform solver, plan builder and playback engine
//  3. Output - quiz export, preview frames and the project archive
//  4. Infrastructure - caching, configuration, hooks and build info
//
// # Architecture
//
// The typical data flow through imagepuzzler:
//
//	images + selections + labels
//	         ↓
//	    [puzzle] package (project model, editing operations)
//	         ↓
//	    [reveal] package (plan per variant, engine drives an adapter)
//	         ↓
//	    [player] / [preview] packages (HTML quiz, PNG/GIF frames)
//	         ↓
//	    [pipeline] package (validation + caching around the above)
//
// # Quick Start
//
// Build a one-question quiz:
//
//	p := puzzle.NewProject("Zoo")
//	i, _ := p.Add("lion.jpg", raster)
//	_ = p.SetSelection(i, &geometry.Rect{X: 120, Y: 80, W: 200, H: 150})
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	html, _ := runner.Export(ctx, p, pipeline.Options{Format: pipeline.FormatHTML})
//
// # Main Packages
//
// ## Model
//
// [puzzle] - Projects, items, labels and settings. Items keep their raster
// bytes and natural size; selections are in source pixels.
//
// [geometry] - Sizes, rectangles, boxes and the editor's display scale.
//
// ## Reveal
//
// [transform] - Solves the translate-and-scale that carries the cropped
// view onto its place in the full image.
//
// [reveal] - Reveal variants (fade, blur, box, circle), the timed plan of
// each, the overlay state, and the engine and player that run plans against
// a rendering surface.
//
// ## Output
//
// [player] - Renders a project into one self-contained HTML file.
//
// [preview] - Draws frames of a reveal as images and encodes GIF and PNG;
// also draws the editor canvas.
//
// [project] - Saves and loads the zip project archive.
//
// [pipeline] - The export, preview and timeline stages shared by the CLI and
// the preview server.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches for rendered artifacts, keyed by
// content hashes.
//
// [config] - The TOML config file.
//
// [errors] - Coded errors shared by all packages.
//
// [observability] - Hooks for metrics and tracing.
//
// [fonts] - Embedded fonts for frame rendering.
//
// [buildinfo] - Version information.
//
// [puzzle]: https://pkg.go.dev/github.com/matzehuels/imagepuzzler/pkg/puzzle
// [geometry]: https://pkg.go.dev/github.com/matzehuels/imagepuzzler/pkg/geometry
// [transform]: https://pkg.go.dev/github.com/matzehuels/imagepuzzler/pkg/transform
// [reveal]: https://pkg.go.dev/github.com/matzehuels/imagepuzzler/pkg/reveal
// [player]: https://pkg.go.dev/github.com/matzehuels/imagepuzzler/pkg/player
// [preview]: https://pkg.go.dev/github.com/matzehuels/imagepuzzler/pkg/preview
// [project]: https://pkg.go.dev/github.com/matzehuels/imagepuzzler/pkg/project
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/imagepuzzler/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/imagepuzzler/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/imagepuzzler/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/imagepuzzler/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/imagepuzzler/pkg/observability
// [fonts]: https://pkg.go.dev/github.com/matzehuels/imagepuzzler/pkg/fonts
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/imagepuzzler/pkg/buildinfo
package pkg

package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/pipeline"
	"github.com/matzehuels/imagepuzzler/pkg/preview"
	"github.com/matzehuels/imagepuzzler/pkg/puzzle"
)

// outputOpts are the flags shared by commands that write an artifact.
type outputOpts struct {
	output  string
	noCache bool
	refresh bool
}

func (o *outputOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (- for stdout)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "re-render and overwrite cached output")
}

// exportCommand writes the standalone quiz or a copy of the project.
func (c *CLI) exportCommand() *cobra.Command {
	var out outputOpts
	var format string
	var workers int

	cmd := &cobra.Command{
		Use:   "export <project.zip>",
		Short: "Export the project as a standalone HTML quiz",
		Long: `Export the project as a single HTML file that plays the quiz in any
browser without a server. Every image needs a selection first.

With --format zip the project archive is written instead, which can be
opened again with any command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := pipeline.Options{Format: format, Workers: workers, Refresh: out.refresh, Logger: c.Logger}
			if err := opts.ValidateForExport(); err != nil {
				return err
			}
			p, err := c.openProject(args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, out.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			spinner := newSpinner(ctx, fmt.Sprintf("Exporting %s...", p.Summary()))
			spinner.Start()
			data, hit, err := runner.ExportWithCacheInfo(ctx, p, opts)
			spinner.Stop()
			if err != nil {
				if missing := p.Incomplete(); len(missing) > 0 && errors.Is(err, errors.ErrCodeIncompleteProject) {
					printIncomplete(p, missing)
				}
				return err
			}

			path := out.output
			if path == "" {
				path = derivePath(args[0], "", format)
			}
			if err := writeOutput(path, data); err != nil {
				return err
			}
			prog.done("exported "+format, "questions", p.Len(), "bytes", len(data), "cached", hit)
			if path != "-" {
				printSuccess("Exported %s", p.DisplayName())
				printFile(path)
				printArtifact(len(data), hit)
			}
			return nil
		},
	}

	out.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatHTML, "output format: html or zip")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel image encoders (0: one per CPU)")
	return cmd
}

// previewCommand renders a single question as an image or animation.
func (c *CLI) previewCommand() *cobra.Command {
	var out outputOpts
	var (
		format        string
		at            string
		width, height float64
		fps           int
		hold          time.Duration
		canvasWidth   float64
	)

	cmd := &cobra.Command{
		Use:   "preview <project.zip> <n>",
		Short: "Render the reveal of one image as PNG or GIF",
		Long: `Render how image n plays in the exported quiz.

  png     one frame at --at (a duration like 1.2s, or "end")
  gif     the whole reveal, from the first click to the next button
  editor  the editor canvas with the selection marked`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			i, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			p, err := c.openProject(args[0])
			if err != nil {
				return err
			}

			var data []byte
			var hit bool
			if format == "editor" {
				data, err = editorPNG(p, i, canvasWidth)
			} else {
				opts := pipeline.Options{
					Format:  format,
					Index:   i,
					Width:   width,
					Height:  height,
					FPS:     fps,
					Hold:    hold,
					Refresh: out.refresh,
					Logger:  c.Logger,
				}
				if opts.At, err = parseAt(at); err != nil {
					return err
				}
				if err := c.applyPreviewDefaults(cmd, &opts); err != nil {
					return err
				}
				data, hit, err = c.renderPreview(ctx, p, opts, out.noCache)
			}
			if err != nil {
				return err
			}

			ext := format
			if ext == "editor" {
				ext = pipeline.FormatPNG
			}
			path := out.output
			if path == "" {
				path = derivePath(args[0], fmt.Sprintf("-%d", i+1), ext)
			}
			if err := writeOutput(path, data); err != nil {
				return err
			}
			if path != "-" {
				printSuccess("Rendered #%d %s", i+1, p.Items[i].Name)
				printFile(path)
				printArtifact(len(data), hit)
			}
			return nil
		},
	}

	out.register(cmd)
	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", pipeline.FormatPNG, "output format: png, gif or editor")
	f.StringVar(&at, "at", "end", `frame time for png ("end" for the final frame)`)
	f.Float64VarP(&width, "width", "W", pipeline.DefaultWidth, "viewport width in pixels")
	f.Float64VarP(&height, "height", "H", pipeline.DefaultHeight, "viewport height in pixels")
	f.IntVar(&fps, "fps", pipeline.DefaultFPS, "gif frame rate")
	f.DurationVar(&hold, "hold", pipeline.DefaultHold, "how long the gif lingers on the last frame")
	f.Float64Var(&canvasWidth, "canvas-width", 1000, "container width for the editor canvas")
	return cmd
}

// applyPreviewDefaults fills viewport settings not given on the command
// line from the config file.
func (c *CLI) applyPreviewDefaults(cmd *cobra.Command, opts *pipeline.Options) error {
	pc := c.Config.Preview
	flags := cmd.Flags()
	if !flags.Changed("width") && pc.Width > 0 {
		opts.Width = pc.Width
	}
	if !flags.Changed("height") && pc.Height > 0 {
		opts.Height = pc.Height
	}
	if !flags.Changed("fps") && pc.FPS > 0 {
		opts.FPS = pc.FPS
	}
	if !flags.Changed("hold") && pc.Hold > 0 {
		opts.Hold = pc.Hold
	}
	return opts.ValidateForPreview()
}

func (c *CLI) renderPreview(ctx context.Context, p *puzzle.Project, opts pipeline.Options, noCache bool) ([]byte, bool, error) {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, false, err
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", opts.Format))
	spinner.Start()
	defer spinner.Stop()
	return runner.PreviewWithCacheInfo(ctx, p, opts)
}

func editorPNG(p *puzzle.Project, i int, containerWidth float64) ([]byte, error) {
	it, err := p.Item(i)
	if err != nil {
		return nil, err
	}
	img, _, err := preview.EditorCanvas(it, containerWidth)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := preview.EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// timelineCommand renders the reveal schedule of one question.
func (c *CLI) timelineCommand() *cobra.Command {
	var out outputOpts
	var format string

	cmd := &cobra.Command{
		Use:   "timeline <project.zip> <n>",
		Short: "Render the reveal schedule of an image as SVG, DOT or JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			i, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			opts := pipeline.Options{Format: format, Index: i, Refresh: out.refresh, Logger: c.Logger}
			if err := opts.ValidateForTimeline(); err != nil {
				return err
			}
			p, err := c.openProject(args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, out.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			data, hit, err := runner.TimelineWithCacheInfo(ctx, p, opts)
			if err != nil {
				return err
			}
			path := out.output
			if path == "" {
				path = derivePath(args[0], fmt.Sprintf("-%d-timeline", i+1), format)
			}
			if err := writeOutput(path, data); err != nil {
				return err
			}
			if path != "-" {
				printSuccess("Timeline of #%d (%s)", i+1, p.Items[i].Label.Normalize().Variant)
				printFile(path)
				printArtifact(len(data), hit)
			}
			return nil
		},
	}

	out.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatSVG, "output format: svg, dot or json")
	return cmd
}

// parseAt parses a frame time; "end" selects the final frame.
func parseAt(s string) (time.Duration, error) {
	if s == "" || strings.EqualFold(s, "end") {
		return -1, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, `--at must be a non-negative duration or "end", got %q`, s)
	}
	return d, nil
}

// derivePath names an output next to the project: photos.zip with suffix
// "-2" and ext "png" becomes photos-2.png. A zip export of photos.zip
// becomes photos-copy.zip.
func derivePath(projectPath, suffix, ext string) string {
	base := strings.TrimSuffix(projectPath, filepath.Ext(projectPath))
	if suffix == "" && ext == pipeline.FormatZip {
		suffix = "-copy"
	}
	return base + suffix + "." + ext
}

// writeOutput writes data to path, or to stdout for "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func printIncomplete(p *puzzle.Project, missing []int) {
	printWarning("Images without a selection (%d):", len(missing))
	for _, i := range missing {
		printDetail("#%d %s", i+1, p.Items[i].Name)
	}
}

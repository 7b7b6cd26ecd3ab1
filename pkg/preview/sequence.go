package preview

import (
	"context"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"runtime"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
)

// FrameTimes returns the activation offsets sampled by Sequence: one per
// frame from 0 through the end of the plan plus the hold.
func (r *Renderer) FrameTimes() []time.Duration {
	end := r.plan.Duration() + r.opts.Hold
	step := time.Second / time.Duration(r.opts.FPS)
	var out []time.Duration
	for t := time.Duration(0); t <= end; t += step {
		out = append(out, t)
	}
	return out
}

// Sequence renders every frame of the reveal concurrently. Frames are
// returned in time order.
func (r *Renderer) Sequence(ctx context.Context) ([]image.Image, error) {
	times := r.FrameTimes()
	frames := make([]image.Image, len(times))

	workers := r.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, t := range times {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := r.FrameAt(t)
			if err != nil {
				return err
			}
			frames[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frames, nil
}

// EncodeGIF writes frames as a looping animated GIF at fps frames per
// second. Frames are dithered onto the Plan 9 palette.
func EncodeGIF(w io.Writer, frames []image.Image, fps int) error {
	if len(frames) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no frames to encode")
	}
	if fps <= 0 {
		fps = DefaultOptions().FPS
	}
	delay := max(1, 100/fps)

	anim := &gif.GIF{LoopCount: 0}
	for _, f := range frames {
		p := image.NewPaletted(f.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(p, f.Bounds(), f, f.Bounds().Min)
		anim.Image = append(anim.Image, p)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, anim)
}

// EncodePNG writes one frame as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}

// GIF renders the whole reveal of r and encodes it.
func (r *Renderer) GIF(ctx context.Context, w io.Writer) error {
	frames, err := r.Sequence(ctx)
	if err != nil {
		return err
	}
	return EncodeGIF(w, frames, r.opts.FPS)
}

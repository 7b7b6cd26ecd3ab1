package preview

import (
	"image"
	"image/color"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/fonts"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
	"github.com/matzehuels/imagepuzzler/pkg/puzzle"
	"github.com/matzehuels/imagepuzzler/pkg/reveal"
	"github.com/matzehuels/imagepuzzler/pkg/transform"
)

// Options configure frame rendering.
type Options struct {
	// Viewport is the simulated window size in pixels.
	Viewport geometry.Size
	// FPS is the frame rate of sequences and GIFs.
	FPS int
	// Hold extends sequences past the end of the plan.
	Hold time.Duration
	// NextLabel is drawn as a button once advancing is unlocked. Empty
	// means the quiz advances on click and no button is drawn.
	NextLabel string
	// Progress is drawn in the top-right corner when non-empty.
	Progress string
	// Workers bounds concurrent frame rendering. Zero uses GOMAXPROCS.
	Workers int
}

// DefaultOptions returns a 960x600 viewport at 20 frames per second.
func DefaultOptions() Options {
	return Options{
		Viewport: geometry.Size{W: 960, H: 600},
		FPS:      20,
		Hold:     time.Second,
	}
}

var (
	gradientFrom = color.NRGBA{0x66, 0x7e, 0xea, 0xff}
	gradientTo   = color.NRGBA{0x76, 0x4b, 0xa2, 0xff}
	accent       = color.NRGBA{0x66, 0x7e, 0xea, 0xff}
)

// Renderer draws frames of one question's reveal.
type Renderer struct {
	opts    Options
	item    puzzle.Item
	plan    reveal.Plan
	layout  reveal.Layout
	base    reveal.Overlay
	full    image.Image
	cropped image.Image
}

// NewRenderer lays out it, solves its transform and prepares the scaled
// rasters. It fails with DEGENERATE_SELECTION when the question cannot be
// revealed.
func NewRenderer(it puzzle.Item, index int, opts Options) (*Renderer, error) {
	if opts.Viewport.Empty() {
		opts.Viewport = DefaultOptions().Viewport
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultOptions().FPS
	}
	it.Label = it.Label.Normalize()

	layout, err := ComputeLayout(opts.Viewport, it)
	if err != nil {
		return nil, err
	}
	q := it.Question(index)
	t, err := transform.Solve(layout.Full, layout.Cropped, q.Selection, q.Natural)
	if err != nil {
		return nil, err
	}

	img, err := it.Decode()
	if err != nil {
		return nil, err
	}
	crop, err := it.Crop(img)
	if err != nil {
		return nil, err
	}

	plan := reveal.NewPlan(q)
	base := reveal.Ready()
	base.Transform = t
	base.Clip = plan.Clip

	return &Renderer{
		opts:    opts,
		item:    it,
		plan:    plan,
		layout:  layout,
		base:    base,
		full:    resizeTo(img, layout.Full),
		cropped: resizeTo(crop, layout.Cropped),
	}, nil
}

func resizeTo(img image.Image, b geometry.Box) image.Image {
	w := max(1, int(math.Round(b.Width)))
	h := max(1, int(math.Round(b.Height)))
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// Plan returns the reveal plan being rendered.
func (r *Renderer) Plan() reveal.Plan { return r.plan }

// Layout returns the computed layout.
func (r *Renderer) Layout() reveal.Layout { return r.layout }

// At returns the overlay t after activation. Negative t is the idle state.
func (r *Renderer) At(t time.Duration) reveal.Overlay {
	if t < 0 {
		return r.base
	}
	return r.base.At(r.plan, t)
}

// FrameAt renders the frame t after activation.
func (r *Renderer) FrameAt(t time.Duration) (image.Image, error) {
	return r.Frame(r.At(t))
}

// Frame renders an overlay. It is safe to call from several goroutines.
func (r *Renderer) Frame(o reveal.Overlay) (image.Image, error) {
	w, h := int(r.opts.Viewport.W), int(r.opts.Viewport.H)
	dc := gg.NewContext(w, h)

	grad := gg.NewLinearGradient(0, 0, float64(w), float64(h))
	grad.AddColorStop(0, gradientFrom)
	grad.AddColorStop(1, gradientTo)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()

	if err := r.drawFull(dc, o); err != nil {
		return nil, err
	}
	if err := r.drawAnswer(dc, o); err != nil {
		return nil, err
	}
	if err := r.drawCropped(dc, o); err != nil {
		return nil, err
	}
	if err := r.drawQuestion(dc, o); err != nil {
		return nil, err
	}
	if err := r.drawChrome(dc, o); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

func (r *Renderer) drawFull(dc *gg.Context, o reveal.Overlay) error {
	if o.FullOpacity <= 0 {
		return nil
	}
	fb := r.layout.Full
	mask := gg.NewContext(dc.Width(), dc.Height())
	mask.SetRGBA(0, 0, 0, clamp01(o.FullOpacity))
	switch {
	case o.ClipEnabled && o.Clip.Kind == reveal.ClipInset:
		top, right, bottom, left := o.Clip.Inset(o.ClipProgress)
		x0 := fb.Left + left/100*fb.Width
		y0 := fb.Top + top/100*fb.Height
		x1 := fb.Right() - right/100*fb.Width
		y1 := fb.Bottom() - bottom/100*fb.Height
		mask.DrawRectangle(x0, y0, math.Max(0, x1-x0), math.Max(0, y1-y0))
	case o.ClipEnabled && o.Clip.Kind == reveal.ClipCircle:
		// Percentage radii resolve against the box diagonal over sqrt(2).
		ref := math.Hypot(fb.Width, fb.Height) / math.Sqrt2
		mask.DrawCircle(
			fb.Left+o.Clip.CenterX/100*fb.Width,
			fb.Top+o.Clip.CenterY/100*fb.Height,
			o.Clip.RadiusAt(o.ClipProgress)/100*ref,
		)
	default:
		mask.DrawRectangle(fb.Left, fb.Top, fb.Width, fb.Height)
	}
	mask.Fill()

	img := r.full
	if o.FullBlur > 0 {
		img = imaging.Blur(img, o.FullBlur)
	}

	dc.Push()
	defer popMasked(dc)
	if err := dc.SetMask(mask.AsMask()); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "set mask")
	}
	dc.Translate(fb.Left, fb.Top)
	dc.DrawImage(img, 0, 0)
	return nil
}

func (r *Renderer) drawCropped(dc *gg.Context, o reveal.Overlay) error {
	if !o.CroppedVisible || o.CroppedOpacity <= 0 {
		return nil
	}
	cb := r.layout.Cropped
	t := o.CroppedTransform()

	mask := gg.NewContext(dc.Width(), dc.Height())
	mask.SetRGBA(0, 0, 0, clamp01(o.CroppedOpacity))
	mask.DrawRectangle(0, 0, float64(dc.Width()), float64(dc.Height()))
	mask.Fill()

	dc.Push()
	defer popMasked(dc)
	if err := dc.SetMask(mask.AsMask()); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "set mask")
	}
	dc.Translate(cb.Left+t.TranslateX, cb.Top+t.TranslateY)
	dc.Scale(t.Scale*cb.Width/float64(r.cropped.Bounds().Dx()), t.Scale*cb.Height/float64(r.cropped.Bounds().Dy()))
	dc.DrawImage(r.cropped, 0, 0)
	return nil
}

func (r *Renderer) drawQuestion(dc *gg.Context, o reveal.Overlay) error {
	text := r.item.Label.Question
	alpha := clamp01(o.CroppedOpacity * o.QuestionOpacity)
	if text == "" || alpha <= 0 {
		return nil
	}
	cb := r.layout.Cropped
	size := float64(r.item.Label.QuestionSize) * cb.Width / r.item.Selection.W
	face, err := fonts.Regular(size)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	x := cb.Left + cb.Width/2
	y := cb.Bottom() + questionMargin
	dc.SetRGBA(0, 0, 0, 0.8*alpha)
	dc.DrawStringAnchored(text, x+2, y+2, 0.5, 1)
	dc.SetRGBA(1, 1, 1, alpha)
	dc.DrawStringAnchored(text, x, y, 0.5, 1)
	return nil
}

func (r *Renderer) drawAnswer(dc *gg.Context, o reveal.Overlay) error {
	l := r.item.Label
	if l.Answer == "" || o.AnswerOpacity <= 0 {
		return nil
	}
	fb := r.layout.Full
	pos := geometry.Point{
		X: fb.Left + l.AnswerPosition.X/100*fb.Width,
		Y: fb.Top + l.AnswerPosition.Y/100*fb.Height,
	}
	return drawLabel(dc, l, pos, float64(l.AnswerSize), clamp01(o.AnswerOpacity))
}

// outlineOffsets trace the answer outline as stacked shadows.
var outlineOffsets = [][2]float64{
	{-1, -1}, {1, -1}, {-1, 1}, {1, 1}, {-2, 0}, {2, 0}, {0, -2}, {0, 2},
}

// drawLabel draws the answer centered on pos.
func drawLabel(dc *gg.Context, l puzzle.Label, pos geometry.Point, size, alpha float64) error {
	face, err := fonts.Bold(size)
	if err != nil {
		return err
	}
	c, err := colorful.Hex(l.AnswerColor)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "answer color %q", l.AnswerColor)
	}
	dc.SetFontFace(face)
	if l.AnswerOutline {
		dc.SetRGBA(0, 0, 0, alpha)
		for _, d := range outlineOffsets {
			dc.DrawStringAnchored(l.Answer, pos.X+d[0], pos.Y+d[1], 0.5, 0.5)
		}
	}
	dc.SetRGBA(c.R, c.G, c.B, alpha)
	dc.DrawStringAnchored(l.Answer, pos.X, pos.Y, 0.5, 0.5)
	return nil
}

// drawChrome draws the progress pill and the next button.
func (r *Renderer) drawChrome(dc *gg.Context, o reveal.Overlay) error {
	w, h := float64(dc.Width()), float64(dc.Height())
	if r.opts.Progress != "" {
		face, err := fonts.Bold(16)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		tw, th := dc.MeasureString(r.opts.Progress)
		bw, bh := tw+32, th+16
		x, y := w-20-bw, 20.0
		dc.SetColor(color.White)
		dc.DrawRoundedRectangle(x, y, bw, bh, bh/2)
		dc.Fill()
		dc.SetColor(accent)
		dc.DrawStringAnchored(r.opts.Progress, x+bw/2, y+bh/2, 0.5, 0.35)
	}
	if o.NextVisible && r.opts.NextLabel != "" {
		face, err := fonts.Bold(19)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		tw, th := dc.MeasureString(r.opts.NextLabel)
		bw, bh := tw+80, th+30
		x, y := (w-bw)/2, h-40-bh
		dc.SetColor(accent)
		dc.DrawRoundedRectangle(x, y, bw, bh, 10)
		dc.Fill()
		dc.SetColor(color.White)
		dc.DrawStringAnchored(r.opts.NextLabel, x+bw/2, y+bh/2, 0.5, 0.35)
	}
	return nil
}

// popMasked restores the transform; gg keeps the mask across Pop.
func popMasked(dc *gg.Context) {
	dc.ResetClip()
	dc.Pop()
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

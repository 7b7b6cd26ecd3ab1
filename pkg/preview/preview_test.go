package preview

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"
	"time"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
	"github.com/matzehuels/imagepuzzler/pkg/puzzle"
	"github.com/matzehuels/imagepuzzler/pkg/reveal"
)

func solidItem(t *testing.T, w, h int, sel *geometry.Rect) puzzle.Item {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	it, err := puzzle.NewItem("red.png", buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	it.Selection = sel
	return it
}

func TestComputeLayout(t *testing.T) {
	it := solidItem(t, 400, 200, &geometry.Rect{X: 100, Y: 50, W: 100, H: 50})
	layout, err := ComputeLayout(geometry.Size{W: 1000, H: 500}, it)
	if err != nil {
		t.Fatal(err)
	}
	wantCropped := geometry.Box{Left: 200, Top: 100, Width: 600, Height: 300}
	wantFull := geometry.Box{Left: 300, Top: 150, Width: 400, Height: 200}
	if layout.Cropped != wantCropped {
		t.Errorf("Cropped = %+v, want %+v", layout.Cropped, wantCropped)
	}
	if layout.Full != wantFull {
		t.Errorf("Full = %+v, want %+v", layout.Full, wantFull)
	}
}

func TestComputeLayoutQuestionShiftsCropped(t *testing.T) {
	it := solidItem(t, 400, 200, &geometry.Rect{X: 100, Y: 50, W: 100, H: 50})
	plain, _ := ComputeLayout(geometry.Size{W: 1000, H: 500}, it)
	it.Label.Question = "What is it?"
	withText, _ := ComputeLayout(geometry.Size{W: 1000, H: 500}, it)
	if withText.Cropped.Top >= plain.Cropped.Top {
		t.Errorf("question text should move the cropped image up: %v >= %v", withText.Cropped.Top, plain.Cropped.Top)
	}
}

func TestComputeLayoutErrors(t *testing.T) {
	it := solidItem(t, 40, 30, nil)
	if _, err := ComputeLayout(geometry.Size{W: 100, H: 100}, it); !errors.Is(err, errors.ErrCodeIncompleteProject) {
		t.Errorf("missing selection: err = %v", err)
	}
	it.Selection = &geometry.Rect{W: 10, H: 10}
	if _, err := ComputeLayout(geometry.Size{}, it); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty viewport: err = %v", err)
	}
}

func TestStageDrivesEngine(t *testing.T) {
	it := solidItem(t, 400, 200, &geometry.Rect{X: 100, Y: 50, W: 100, H: 50})
	stage, err := NewStage(geometry.Size{W: 1000, H: 500}, it)
	if err != nil {
		t.Fatal(err)
	}
	e := reveal.NewEngine(stage)
	t0 := time.Unix(0, 0)
	e.Load(it.Question(0), t0)
	if !stage.Overlay().Instant {
		t.Error("load should apply an instant reset")
	}
	if _, err := e.Activate(t0.Add(time.Second)); err != nil {
		t.Fatal(err)
	}

	got := stage.Overlay().Transform.Apply(stage.layout.Cropped)
	want := geometry.Box{Left: 400, Top: 200, Width: 100, Height: 50}
	if got != want {
		t.Errorf("cropped lands on %+v, want %+v", got, want)
	}
	e.Tick(t0.Add(10 * time.Second))
	if !stage.Overlay().NextVisible || stage.Applied() < 3 {
		t.Errorf("plan did not run: applied=%d", stage.Applied())
	}
}

func TestStageResize(t *testing.T) {
	it := solidItem(t, 400, 200, &geometry.Rect{X: 100, Y: 50, W: 100, H: 50})
	stage, _ := NewStage(geometry.Size{W: 1000, H: 500}, it)
	if err := stage.Resize(geometry.Size{W: 500, H: 250}); err != nil {
		t.Fatal(err)
	}
	l, _ := stage.Measure()
	if l.Full.Width != 400 || l.Cropped.Width != 300 {
		t.Errorf("after resize full=%v cropped=%v", l.Full.Width, l.Cropped.Width)
	}
}

func TestNewRendererDegenerate(t *testing.T) {
	it := solidItem(t, 40, 30, &geometry.Rect{X: 5, Y: 5, W: 0, H: 10})
	_, err := NewRenderer(it, 0, Options{Viewport: geometry.Size{W: 200, H: 150}})
	if !errors.Is(err, errors.ErrCodeDegenerateSelection) {
		t.Errorf("err = %v, want DEGENERATE_SELECTION", err)
	}
}

func isRed(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r>>8 > 200 && g>>8 < 60 && b>>8 < 60
}

func TestFrames(t *testing.T) {
	it := solidItem(t, 40, 30, &geometry.Rect{X: 10, Y: 10, W: 20, H: 10})
	r, err := NewRenderer(it, 0, Options{Viewport: geometry.Size{W: 200, H: 150}, FPS: 10})
	if err != nil {
		t.Fatal(err)
	}

	start, err := r.FrameAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if b := start.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Fatalf("bounds = %v", b)
	}
	if isRed(start.At(1, 1)) {
		t.Error("corner should be background")
	}
	cb := r.Layout().Cropped
	if !isRed(start.At(int(cb.Left+cb.Width/2), int(cb.Top+cb.Height/2))) {
		t.Error("cropped image not drawn at t=0")
	}

	end, err := r.FrameAt(r.Plan().Duration())
	if err != nil {
		t.Fatal(err)
	}
	fb := r.Layout().Full
	if !isRed(end.At(int(fb.Left+fb.Width/2), int(fb.Top+fb.Height/2))) {
		t.Error("full image not visible at the end")
	}
	if o := r.At(r.Plan().Duration()); o.CroppedVisible || !o.NextVisible {
		t.Errorf("end overlay = %+v", o)
	}
}

func TestSequenceAndGIF(t *testing.T) {
	it := solidItem(t, 40, 30, &geometry.Rect{X: 10, Y: 10, W: 20, H: 10})
	it.Label.Variant = reveal.Circle
	it.Label.Answer = "Red"
	r, err := NewRenderer(it, 0, Options{Viewport: geometry.Size{W: 80, H: 60}, FPS: 5, Workers: 3})
	if err != nil {
		t.Fatal(err)
	}
	times := r.FrameTimes()
	if times[0] != 0 || len(times) < 2 {
		t.Fatalf("times = %v", times)
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			t.Fatalf("times not increasing at %d", i)
		}
	}

	var buf bytes.Buffer
	if err := r.GIF(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	g, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Image) != len(times) {
		t.Errorf("gif frames = %d, want %d", len(g.Image), len(times))
	}
	if g.Delay[0] != 20 {
		t.Errorf("delay = %d, want 20", g.Delay[0])
	}
}

func TestSequenceCanceled(t *testing.T) {
	it := solidItem(t, 40, 30, &geometry.Rect{X: 10, Y: 10, W: 20, H: 10})
	r, _ := NewRenderer(it, 0, Options{Viewport: geometry.Size{W: 80, H: 60}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Sequence(ctx); err == nil {
		t.Error("expected cancellation error")
	}
}

func TestEncodeGIFEmpty(t *testing.T) {
	if err := EncodeGIF(&bytes.Buffer{}, nil, 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v", err)
	}
}

func TestEditorCanvas(t *testing.T) {
	it := solidItem(t, 40, 30, &geometry.Rect{X: 10, Y: 10, W: 20, H: 10})
	img, frame, err := EditorCanvas(it, 140)
	if err != nil {
		t.Fatal(err)
	}
	if frame.Scale != 1 {
		t.Errorf("Scale = %v, want 1 (no upscaling)", frame.Scale)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Fatalf("bounds = %v", b)
	}
	_, _, outB, _ := img.At(2, 2).RGBA()
	_, _, inB, _ := img.At(20, 15).RGBA()
	if outB>>8 != 0 {
		t.Errorf("outside selection tinted: b=%d", outB>>8)
	}
	if inB>>8 < 20 {
		t.Errorf("selection fill missing: b=%d", inB>>8)
	}

	small, frame, err := EditorCanvas(it, 60)
	if err != nil {
		t.Fatal(err)
	}
	if frame.Scale != 0.5 || small.Bounds().Dx() != 20 {
		t.Errorf("scale = %v, width = %d", frame.Scale, small.Bounds().Dx())
	}
}

func TestStageShow(t *testing.T) {
	first := solidItem(t, 400, 200, &geometry.Rect{X: 100, Y: 50, W: 100, H: 50})
	second := solidItem(t, 200, 400, &geometry.Rect{X: 0, Y: 0, W: 50, H: 50})
	stage, _ := NewStage(geometry.Size{W: 1000, H: 500}, first)
	if err := stage.Show(second); err != nil {
		t.Fatal(err)
	}
	l, _ := stage.Measure()
	want, _ := ComputeLayout(geometry.Size{W: 1000, H: 500}, second)
	if l != want {
		t.Errorf("layout = %+v, want %+v", l, want)
	}
	second.Selection = nil
	if err := stage.Show(second); !errors.Is(err, errors.ErrCodeIncompleteProject) {
		t.Errorf("err = %v", err)
	}
}

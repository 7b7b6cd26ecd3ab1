package transform

import (
	"math"
	"testing"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSolveReferenceExample(t *testing.T) {
	natural := geometry.Size{W: 1000, H: 800}
	sel := geometry.Rect{X: 100, Y: 100, W: 200, H: 160}
	full := geometry.Box{Left: 0, Top: 0, Width: 500, Height: 400}
	cropped := geometry.Box{Left: 50, Top: 50, Width: 400, Height: 320}

	got, err := Solve(full, cropped, sel, natural)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if !approx(got.Scale, 0.25) {
		t.Errorf("Scale = %v, want 0.25", got.Scale)
	}
	if !approx(got.TranslateX, 0) || !approx(got.TranslateY, 0) {
		t.Errorf("Translate = (%v, %v), want (0, 0)", got.TranslateX, got.TranslateY)
	}
}

func TestSolveLandsOnSelection(t *testing.T) {
	natural := geometry.Size{W: 1920, H: 1080}
	sel := geometry.Rect{X: 640, Y: 270, W: 320, H: 180}

	// Two unrelated layouts, as after a window resize.
	layouts := []struct {
		full, cropped geometry.Box
	}{
		{geometry.Box{Left: 96, Top: 54, Width: 1728, Height: 972}, geometry.Box{Left: 240, Top: 100, Width: 1440, Height: 810}},
		{geometry.Box{Left: 20, Top: 300, Width: 640, Height: 360}, geometry.Box{Left: 30, Top: 40, Width: 75, Height: 42.1875}},
	}

	for _, l := range layouts {
		tr, err := Solve(l.full, l.cropped, sel, natural)
		if err != nil {
			t.Fatalf("Solve() error = %v", err)
		}
		got := tr.Apply(l.cropped)

		k := l.full.Width / natural.W
		want := geometry.Box{
			Left:   l.full.Left + sel.X*k,
			Top:    l.full.Top + sel.Y*(l.full.Height/natural.H),
			Width:  sel.W * k,
			Height: sel.H * k,
		}
		if !approx(got.Left, want.Left) || !approx(got.Top, want.Top) ||
			!approx(got.Width, want.Width) || !approx(got.Height, want.Height) {
			t.Errorf("Apply() = %+v, want %+v", got, want)
		}
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	base := geometry.Box{Left: 50, Top: 50, Width: 400, Height: 320}
	tr := Transform{TranslateX: 12.5, TranslateY: -7, Scale: 0.3}

	first := tr.Apply(base)
	second := tr.Apply(base)
	if first != second {
		t.Errorf("re-applying changed geometry: %+v vs %+v", first, second)
	}
}

func TestSolveDegenerate(t *testing.T) {
	natural := geometry.Size{W: 1000, H: 800}
	full := geometry.Box{Width: 500, Height: 400}
	cropped := geometry.Box{Width: 400, Height: 320}

	tests := []struct {
		name    string
		sel     geometry.Rect
		natural geometry.Size
		cropped geometry.Box
	}{
		{"zero width", geometry.Rect{X: 10, Y: 10, W: 0, H: 50}, natural, cropped},
		{"zero height", geometry.Rect{X: 10, Y: 10, W: 50, H: 0}, natural, cropped},
		{"zero natural", geometry.Rect{X: 10, Y: 10, W: 50, H: 50}, geometry.Size{}, cropped},
		{"zero cropped", geometry.Rect{X: 10, Y: 10, W: 50, H: 50}, natural, geometry.Box{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Solve(full, tt.cropped, tt.sel, tt.natural)
			if !errors.Is(err, errors.ErrCodeDegenerateSelection) {
				t.Fatalf("expected DEGENERATE_SELECTION, got %v", err)
			}
			if math.IsNaN(got.Scale) || math.IsInf(got.Scale, 0) {
				t.Errorf("degenerate solve leaked %v", got.Scale)
			}
		})
	}
}

func TestLerp(t *testing.T) {
	tr := Transform{TranslateX: 100, TranslateY: -40, Scale: 0.5}
	if got := tr.Lerp(0); got != Identity {
		t.Errorf("Lerp(0) = %+v, want identity", got)
	}
	if got := tr.Lerp(1); got != tr {
		t.Errorf("Lerp(1) = %+v, want %+v", got, tr)
	}
	mid := tr.Lerp(0.5)
	if !approx(mid.TranslateX, 50) || !approx(mid.TranslateY, -20) || !approx(mid.Scale, 0.75) {
		t.Errorf("Lerp(0.5) = %+v", mid)
	}
}

func TestCSS(t *testing.T) {
	tr := Transform{TranslateX: 12.5, TranslateY: -3, Scale: 0.25}
	want := "translate(12.5px, -3px) scale(0.25)"
	if got := tr.CSS(); got != want {
		t.Errorf("CSS() = %q, want %q", got, want)
	}
}

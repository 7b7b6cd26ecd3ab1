package puzzle

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
	"github.com/matzehuels/imagepuzzler/pkg/reveal"
)

func pngRaster(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func projectWith(t *testing.T, n int) *Project {
	t.Helper()
	p := NewProject("test")
	for i := 0; i < n; i++ {
		if _, err := p.Add("img"+string(rune('a'+i))+".png", pngRaster(t, 100, 80)); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func TestNewItem(t *testing.T) {
	it, err := NewItem("cat.png", pngRaster(t, 120, 90))
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}
	if it.Natural != (geometry.Size{W: 120, H: 90}) {
		t.Errorf("Natural = %+v", it.Natural)
	}
	if it.MIME != "image/png" {
		t.Errorf("MIME = %q", it.MIME)
	}
	if it.Selection != nil || it.Complete() {
		t.Error("new item should be incomplete")
	}
	if it.Label != DefaultLabel() {
		t.Errorf("Label = %+v", it.Label)
	}
	if it.ID.Version() != 7 {
		t.Errorf("ID version = %d, want 7", it.ID.Version())
	}

	other, _ := NewItem("cat.png", pngRaster(t, 10, 10))
	if other.ID == it.ID {
		t.Error("item IDs collide")
	}
}

func TestNewItemDetectsFormat(t *testing.T) {
	it, err := NewItem("mislabeled.jpg", pngRaster(t, 4, 4))
	if err != nil {
		t.Fatal(err)
	}
	if it.MIME != "image/png" {
		t.Errorf("MIME = %q, want detected image/png", it.MIME)
	}
}

func TestNewItemErrors(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		raster []byte
		code   errors.Code
	}{
		{"garbage", "x.png", []byte("not an image"), errors.ErrCodeMissingRaster},
		{"empty", "x.png", nil, errors.ErrCodeMissingRaster},
		{"bad name", "../x.png", pngRaster(t, 2, 2), errors.ErrCodeInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewItem(tt.file, tt.raster)
			if !errors.Is(err, tt.code) {
				t.Errorf("NewItem() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestMIMEFromName(t *testing.T) {
	tests := map[string]string{
		"a.png":  "image/png",
		"a.PNG":  "image/png",
		"a.gif":  "image/gif",
		"a.webp": "image/webp",
		"a.jpg":  "image/jpeg",
		"a.jpeg": "image/jpeg",
		"a":      "image/jpeg",
	}
	for name, want := range tests {
		if got := MIMEFromName(name); got != want {
			t.Errorf("MIMEFromName(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestLabelNormalizeAndValidate(t *testing.T) {
	l := Label{AnswerPosition: geometry.Point{X: -5, Y: 140}}.Normalize()
	if l.QuestionSize != 72 || l.AnswerSize != 72 || l.AnswerColor != "#ffffff" || l.Variant != reveal.Fade {
		t.Errorf("Normalize() = %+v", l)
	}
	if l.AnswerPosition != (geometry.Point{X: 0, Y: 100}) {
		t.Errorf("AnswerPosition = %+v", l.AnswerPosition)
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	bad := DefaultLabel()
	bad.Variant = "wipe"
	if !errors.Is(bad.Validate(), errors.ErrCodeInvalidVariant) {
		t.Error("expected INVALID_VARIANT")
	}
	bad = DefaultLabel()
	bad.AnswerColor = "red"
	if !errors.Is(bad.Validate(), errors.ErrCodeInvalidInput) {
		t.Error("expected INVALID_INPUT for color")
	}
}

func TestItemReturnsCopy(t *testing.T) {
	p := projectWith(t, 1)
	sel := geometry.Rect{X: 10, Y: 10, W: 20, H: 20}
	if err := p.SetSelection(0, &sel); err != nil {
		t.Fatal(err)
	}

	it, _ := p.Item(0)
	it.Selection.W = 99
	it.Label.Question = "changed"

	again, _ := p.Item(0)
	if again.Selection.W != 20 || again.Label.Question != "" {
		t.Error("mutating a copy changed the project")
	}

	sel.W = 50
	if again, _ := p.Item(0); again.Selection.W != 20 {
		t.Error("project aliases the caller's rectangle")
	}
}

func TestUpdateKeepsIdentity(t *testing.T) {
	p := projectWith(t, 1)
	before, _ := p.Item(0)
	p.Update(0, func(it *Item) {
		it.ID[0] ^= 0xff
		it.Natural = geometry.Size{W: 1, H: 1}
		it.Label.Answer = "dog"
	})
	after, _ := p.Item(0)
	if after.ID != before.ID || after.Natural != before.Natural {
		t.Error("Update changed identity or natural size")
	}
	if after.Label.Answer != "dog" {
		t.Error("Update did not apply label change")
	}
}

func TestSetSelection(t *testing.T) {
	p := projectWith(t, 1)
	tests := []struct {
		name string
		sel  geometry.Rect
		ok   bool
	}{
		{"inside", geometry.Rect{X: 10, Y: 10, W: 50, H: 40}, true},
		{"full image", geometry.Rect{X: 0, Y: 0, W: 100, H: 80}, true},
		{"zero area", geometry.Rect{X: 10, Y: 10, W: 0, H: 0}, true},
		{"overflow", geometry.Rect{X: 60, Y: 10, W: 50, H: 40}, false},
		{"negative", geometry.Rect{X: -1, Y: 0, W: 10, H: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.SetSelection(0, &tt.sel)
			if tt.ok && err != nil {
				t.Errorf("SetSelection() error = %v", err)
			}
			if !tt.ok && !errors.Is(err, errors.ErrCodeInvalidSelection) {
				t.Errorf("SetSelection() error = %v, want INVALID_SELECTION", err)
			}
		})
	}

	if err := p.SetSelection(0, nil); err != nil {
		t.Fatal(err)
	}
	if it, _ := p.Item(0); it.Complete() {
		t.Error("nil selection should clear")
	}
}

func TestSetSelectionFromDrag(t *testing.T) {
	p := projectWith(t, 1)
	frame := geometry.Frame{Scale: 0.5}

	// Dragged up-left and past the canvas edge.
	err := p.SetSelectionFromDrag(0, frame, geometry.Point{X: 30, Y: 30}, geometry.Point{X: -10, Y: 5})
	if err != nil {
		t.Fatal(err)
	}
	it, _ := p.Item(0)
	want := geometry.Rect{X: 0, Y: 10, W: 60, H: 50}
	if *it.Selection != want {
		t.Errorf("selection = %+v, want %+v", *it.Selection, want)
	}
	if !it.Selection.Within(it.Natural) {
		t.Error("drag selection escaped the image")
	}
}

func TestMoveAnswer(t *testing.T) {
	p := projectWith(t, 1)
	canvas := geometry.Box{Left: 20, Top: 20, Width: 200, Height: 160}
	p.MoveAnswer(0, geometry.Point{X: 70, Y: 500}, canvas)
	it, _ := p.Item(0)
	if it.Label.AnswerPosition != (geometry.Point{X: 25, Y: 100}) {
		t.Errorf("AnswerPosition = %+v", it.Label.AnswerPosition)
	}
}

func TestRemoveClampsCursor(t *testing.T) {
	p := projectWith(t, 3)
	p.Select(2)
	p.Remove(2)
	if p.Current != 1 {
		t.Errorf("Current = %d, want 1", p.Current)
	}
	p.Remove(0)
	p.Remove(0)
	if p.Current != -1 || p.Len() != 0 {
		t.Errorf("Current = %d, Len = %d", p.Current, p.Len())
	}
	if !errors.Is(p.Remove(0), errors.ErrCodeNotFound) {
		t.Error("expected NOT_FOUND")
	}
}

func TestReorderCursor(t *testing.T) {
	tests := []struct {
		name              string
		current, from, to int
		wantCurrent       int
	}{
		{"move current", 1, 1, 3, 3},
		{"move before current to after", 2, 0, 3, 1},
		{"move after current to before", 1, 3, 0, 2},
		{"unrelated", 0, 2, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := projectWith(t, 4)
			names := make([]string, 4)
			for i, it := range p.Items {
				names[i] = it.Name
			}
			p.Select(tt.current)
			pointed := p.Items[tt.current].Name

			if err := p.Reorder(tt.from, tt.to); err != nil {
				t.Fatal(err)
			}
			if p.Current != tt.wantCurrent {
				t.Errorf("Current = %d, want %d", p.Current, tt.wantCurrent)
			}
			if p.Items[p.Current].Name != pointed {
				t.Errorf("cursor moved off %s", pointed)
			}
			if p.Items[tt.to].Name != names[tt.from] {
				t.Errorf("item %s not at %d", names[tt.from], tt.to)
			}
		})
	}
}

func TestValidateForExport(t *testing.T) {
	p := NewProject("empty")
	if !errors.Is(p.ValidateForExport(), errors.ErrCodeIncompleteProject) {
		t.Error("empty project should be refused")
	}

	p = projectWith(t, 3)
	err := p.ValidateForExport()
	if !errors.Is(err, errors.ErrCodeIncompleteProject) || !strings.Contains(err.Error(), "3 images are missing") {
		t.Errorf("error = %v", err)
	}

	sel := geometry.Rect{X: 1, Y: 1, W: 10, H: 10}
	p.SetSelection(0, &sel)
	p.SetSelection(1, &sel)
	err = p.ValidateForExport()
	if err == nil || !strings.Contains(err.Error(), "1 image is missing") {
		t.Errorf("error = %v", err)
	}

	p.SetSelection(2, &geometry.Rect{X: 1, Y: 1})
	if !errors.Is(p.ValidateForExport(), errors.ErrCodeDegenerateSelection) {
		t.Error("degenerate selection should be refused")
	}

	p.SetSelection(2, &sel)
	if err := p.ValidateForExport(); err != nil {
		t.Errorf("complete project refused: %v", err)
	}
	if got := p.Incomplete(); len(got) != 0 {
		t.Errorf("Incomplete() = %v", got)
	}
}

func TestLabelDefaultsAndReset(t *testing.T) {
	p := NewProject("x")
	l := DefaultLabel()
	l.AnswerColor = "#ff0000"
	l.Variant = reveal.Circle
	p.SetLabelDefaults(l)
	p.Add("a.png", pngRaster(t, 4, 4))

	it, _ := p.Item(0)
	if it.Label.AnswerColor != "#ff0000" || it.Label.Variant != reveal.Circle {
		t.Errorf("label defaults not applied: %+v", it.Label)
	}
	if p.Summary() != "x: 1 image" {
		t.Errorf("Summary() = %q", p.Summary())
	}

	p.GameTitle = "Quiz"
	p.Reset()
	if p.Len() != 0 || p.Current != -1 || p.GameTitle != "" {
		t.Error("Reset left state behind")
	}
	if p.DisplayName() != DefaultProjectName {
		t.Errorf("DisplayName() = %q", p.DisplayName())
	}
}

func TestCropAndQuestion(t *testing.T) {
	p := projectWith(t, 1)
	sel := geometry.Rect{X: 10.5, Y: 20, W: 30, H: 15.2}
	p.SetSelection(0, &sel)
	it, _ := p.Item(0)

	img, err := it.Decode()
	if err != nil {
		t.Fatal(err)
	}
	crop, err := it.Crop(img)
	if err != nil {
		t.Fatal(err)
	}
	if b := crop.Bounds(); b.Dx() != 31 || b.Dy() != 16 {
		t.Errorf("crop bounds = %v", b)
	}

	q := it.Question(4)
	if q.Index != 4 || q.Selection != sel || q.Natural != it.Natural || q.Variant != reveal.Fade {
		t.Errorf("Question() = %+v", q)
	}
}

func TestAddUniqueNames(t *testing.T) {
	p := NewProject("x")
	raster := pngRaster(t, 4, 4)
	for i := 0; i < 3; i++ {
		if _, err := p.Add("cat.png", raster); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{"cat.png", "cat-2.png", "cat-3.png"}
	for i, it := range p.Items {
		if it.Name != want[i] {
			t.Errorf("item %d name = %q, want %q", i, it.Name, want[i])
		}
	}
}

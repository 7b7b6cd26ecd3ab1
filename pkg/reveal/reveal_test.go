package reveal

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
)

// fakeAdapter records every overlay it is asked to apply.
type fakeAdapter struct {
	layout  Layout
	err     error
	applied []Overlay
}

func (f *fakeAdapter) Measure() (Layout, error) { return f.layout, f.err }
func (f *fakeAdapter) Apply(o Overlay)          { f.applied = append(f.applied, o) }

func (f *fakeAdapter) last() Overlay { return f.applied[len(f.applied)-1] }

func referenceLayout() Layout {
	return Layout{
		Full:    geometry.Box{Left: 0, Top: 0, Width: 500, Height: 400},
		Cropped: geometry.Box{Left: 50, Top: 50, Width: 400, Height: 320},
	}
}

func testQuestion(v Variant) Question {
	return Question{
		Natural:   geometry.Size{W: 1000, H: 800},
		Selection: geometry.Rect{X: 100, Y: 100, W: 200, H: 160},
		Question:  "What is it?",
		Answer:    "A cat",
		Variant:   v,
	}
}

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in      string
		want    Variant
		wantErr bool
	}{
		{"", Fade, false},
		{"fade", Fade, false},
		{"BLUR", Blur, false},
		{" box ", Box, false},
		{"circle", Circle, false},
		{"wipe", "", true},
	}
	for _, tt := range tests {
		got, err := ParseVariant(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVariant(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, errors.ErrCodeInvalidVariant) {
			t.Errorf("ParseVariant(%q) error code = %v", tt.in, errors.GetCode(err))
		}
		if got != tt.want {
			t.Errorf("ParseVariant(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAnswerDelay(t *testing.T) {
	want := map[Variant]time.Duration{
		Fade:   3200 * time.Millisecond,
		Blur:   4400 * time.Millisecond,
		Box:    3200 * time.Millisecond,
		Circle: 3200 * time.Millisecond,
	}
	for v, d := range want {
		if got := v.AnswerDelay(); got != d {
			t.Errorf("%s.AnswerDelay() = %v, want %v", v, got, d)
		}
	}
}

func TestPlanTimingMonotonic(t *testing.T) {
	for _, v := range Variants() {
		t.Run(string(v), func(t *testing.T) {
			plan := NewPlan(testQuestion(v))
			var prev time.Duration
			var answerAt time.Duration = -1
			for i, s := range plan.Steps {
				if s.Seq != i {
					t.Errorf("step %d has Seq %d", i, s.Seq)
				}
				if s.At < prev {
					t.Errorf("step %q at %v precedes previous step at %v", s.Effect.Name, s.At, prev)
				}
				prev = s.At
				if s.Effect.Unlock {
					if answerAt >= 0 {
						t.Errorf("more than one unlocking step")
					}
					answerAt = s.At
				}
			}
			if answerAt < TransformDuration+v.RevealDuration() {
				t.Errorf("answer at %v, before %v", answerAt, TransformDuration+v.RevealDuration())
			}
			if plan.AnswerDelay != answerAt {
				t.Errorf("AnswerDelay = %v, answer step at %v", plan.AnswerDelay, answerAt)
			}
		})
	}
}

func TestPlanVariantSteps(t *testing.T) {
	ms := time.Millisecond
	tests := []struct {
		variant Variant
		steps   map[string]time.Duration
	}{
		{Fade, map[string]time.Duration{"transform": 0, "settle": 1200 * ms, "fade-in": 1400 * ms, "hide-cropped": 3200 * ms, "answer": 3200 * ms}},
		{Blur, map[string]time.Duration{"transform": 0, "fade-in": 1400 * ms, "sharpen": 2900 * ms, "answer": 4400 * ms}},
		{Box, map[string]time.Duration{"clip": 1400 * ms, "expand": 1450 * ms, "answer": 3200 * ms}},
		{Circle, map[string]time.Duration{"clip": 1400 * ms, "expand": 1450 * ms, "answer": 3200 * ms}},
	}
	for _, tt := range tests {
		plan := NewPlan(testQuestion(tt.variant))
		for name, at := range tt.steps {
			s, ok := plan.Step(name)
			if !ok {
				t.Errorf("%s: missing step %q", tt.variant, name)
				continue
			}
			if s.At != at {
				t.Errorf("%s: step %q at %v, want %v", tt.variant, name, s.At, at)
			}
		}
	}
}

func TestPlanSkipsEmptyAnswer(t *testing.T) {
	q := testQuestion(Fade)
	q.Answer = ""
	plan := NewPlan(q)
	s, ok := plan.Step("answer")
	if !ok {
		t.Fatal("answer step missing")
	}
	if !s.Effect.Unlock {
		t.Error("answer step must still unlock advancing")
	}
	for _, c := range s.Effect.Changes {
		if c.Prop == PropAnswerOpacity {
			t.Error("answer fade present for empty answer")
		}
	}
}

func TestClipFor(t *testing.T) {
	natural := geometry.Size{W: 1000, H: 800}
	sel := geometry.Rect{X: 100, Y: 100, W: 200, H: 160}

	box := ClipFor(Box, sel, natural)
	if box.Kind != ClipInset || box.CenterX != 20 || box.CenterY != 22.5 || box.HalfW != 10 || box.HalfH != 10 {
		t.Errorf("box clip = %+v", box)
	}
	top, right, bottom, left := box.Inset(0)
	if top != 12.5 || right != 70 || bottom != 67.5 || left != 10 {
		t.Errorf("Inset(0) = %v %v %v %v", top, right, bottom, left)
	}
	if got := box.CSS(1); got != "inset(0% 0% 0% 0%)" {
		t.Errorf("CSS(1) = %q", got)
	}

	circle := ClipFor(Circle, sel, natural)
	if circle.Kind != ClipCircle || circle.Radius != 10 {
		t.Errorf("circle clip = %+v", circle)
	}
	if got := circle.CSS(1); got != "circle(150% at 20% 22.5%)" {
		t.Errorf("CSS(1) = %q", got)
	}

	if c := ClipFor(Fade, sel, natural); c.Kind != ClipNone {
		t.Errorf("fade should not clip: %+v", c)
	}
}

func TestOverlayAt(t *testing.T) {
	plan := NewPlan(testQuestion(Fade))
	base := Ready()

	start := base.At(plan, 0)
	if start.Motion != 0 || start.QuestionOpacity != 1 {
		t.Errorf("At(0) = motion %v question %v, want 0 and 1", start.Motion, start.QuestionOpacity)
	}

	mid := base.At(plan, 600*time.Millisecond)
	if mid.Motion <= 0 || mid.Motion >= 1 {
		t.Errorf("motion at 0.6s = %v, want in (0,1)", mid.Motion)
	}
	if math.Abs(mid.Motion-0.5) > 1e-6 {
		t.Errorf("ease-in-out is symmetric, motion at half time = %v", mid.Motion)
	}

	end := base.At(plan, plan.Duration())
	if end.Motion != 1 || end.FullOpacity != 1 || end.AnswerOpacity != 1 || end.QuestionOpacity != 0 {
		t.Errorf("final overlay = %+v", end)
	}
	if end.CroppedVisible {
		t.Error("cropped view should be hidden at the end of a fade")
	}
	if !end.NextVisible {
		t.Error("next affordance should be visible at the end")
	}
	if end.Transition(PropAnswerOpacity).Duration != AnswerFadeDuration {
		t.Errorf("answer transition = %+v", end.Transition(PropAnswerOpacity))
	}
}

func TestOverlayAtBlurSharpens(t *testing.T) {
	plan := NewPlan(testQuestion(Blur))
	base := Ready()

	if got := base.At(plan, time.Millisecond).FullBlur; got != BlurRadius {
		t.Errorf("blur right after activation = %v, want %v", got, BlurRadius)
	}
	mid := base.At(plan, 3500*time.Millisecond)
	if mid.FullBlur <= 0 || mid.FullBlur >= BlurRadius {
		t.Errorf("blur mid-sharpen = %v", mid.FullBlur)
	}
	if got := base.At(plan, plan.Duration()).FullBlur; got != 0 {
		t.Errorf("final blur = %v", got)
	}
}

func TestOverlayAtBoxClip(t *testing.T) {
	plan := NewPlan(testQuestion(Box))
	base := Ready()

	before := base.At(plan, 1300*time.Millisecond)
	if before.ClipEnabled {
		t.Error("clip enabled before the reveal starts")
	}
	atStart := base.At(plan, 1400*time.Millisecond)
	if !atStart.ClipEnabled || atStart.ClipProgress != 0 || atStart.FullOpacity != 1 {
		t.Errorf("overlay at clip start = %+v", atStart)
	}
	if got := atStart.ClipCSS(); got != "inset(12.5% 70% 67.5% 10%)" {
		t.Errorf("ClipCSS() = %q", got)
	}
	done := base.At(plan, 3450*time.Millisecond)
	if done.ClipProgress != 1 {
		t.Errorf("clip progress after expand = %v", done.ClipProgress)
	}
}

func TestEaseEndpoints(t *testing.T) {
	for _, e := range []Ease{EaseLinear, EaseDefault, EaseOut, EaseInOut} {
		if e.Apply(0) != 0 || e.Apply(1) != 1 {
			t.Errorf("%s endpoints = %v, %v", e, e.Apply(0), e.Apply(1))
		}
		prev := 0.0
		for i := 1; i <= 20; i++ {
			v := e.Apply(float64(i) / 20)
			if v < prev-1e-9 {
				t.Errorf("%s not monotonic at %d", e, i)
			}
			prev = v
		}
	}
}

func TestPlanJSON(t *testing.T) {
	plan := NewPlan(testQuestion(Circle))
	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)
	for _, want := range []string{`"variant":"circle"`, `"answerDelay":3200`, `"at":1450`, `"prop":"clipProgress"`, `"phase":"answer-revealed"`, `"ease":"ease-out"`} {
		if !strings.Contains(s, want) {
			t.Errorf("plan JSON missing %s: %s", want, s)
		}
	}
}

func TestToDOT(t *testing.T) {
	dot := NewPlan(testQuestion(Blur)).ToDOT()
	for _, want := range []string{"digraph", "rankdir=LR", "cluster_1", "sharpen", "can advance", "s0 -> s1"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q", want)
		}
	}
}

func TestProgressText(t *testing.T) {
	tests := []struct {
		label          string
		current, total int
		want           string
	}{
		{"{current}/{total}", 2, 5, "2/5"},
		{"Question {current} of {total}", 1, 3, "Question 1 of 3"},
		{"{current}{current}", 4, 9, "44"},
		{"", 1, 1, ""},
		{"no placeholders", 1, 1, "no placeholders"},
	}
	for _, tt := range tests {
		if got := ProgressText(tt.label, tt.current, tt.total); got != tt.want {
			t.Errorf("ProgressText(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

package reveal

import (
	"testing"
	"time"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
)

func newTestEngine(opts ...Option) (*Engine, *fakeAdapter) {
	a := &fakeAdapter{layout: referenceLayout()}
	return NewEngine(a, opts...), a
}

func TestLoadPushesInstantReset(t *testing.T) {
	e, a := newTestEngine()
	s := e.Load(testQuestion(Fade), t0)

	if s.ID == 0 || s.Phase != Idle || s.Revealed || s.CanAdvance {
		t.Fatalf("fresh session = %+v", s)
	}
	if len(a.applied) != 1 || !a.applied[0].Instant {
		t.Fatalf("load should push one instant overlay, got %d", len(a.applied))
	}
	if a.applied[0].CroppedOpacity != 0 {
		t.Error("cropped view should start hidden")
	}

	e.Tick(t0.Add(IntroDelay))
	if got := a.last(); got.Instant || got.CroppedOpacity != 1 {
		t.Errorf("intro overlay = %+v", got)
	}
}

func TestActivateRunsPlan(t *testing.T) {
	e, a := newTestEngine()
	e.Load(testQuestion(Fade), t0)

	now := t0.Add(time.Second)
	if _, err := e.Activate(now); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	s, _ := e.Session()
	if !s.Revealed || s.Phase != Transforming || s.Start != now {
		t.Fatalf("session after activation = %+v", s)
	}
	if tr := a.last().Transform; tr.Scale != 0.25 || tr.TranslateX != 0 || tr.TranslateY != 0 {
		t.Errorf("solved transform = %+v", tr)
	}

	e.Tick(now.Add(TransformDuration))
	if s, _ := e.Session(); s.Phase != Materializing {
		t.Errorf("phase after transform = %v", s.Phase)
	}

	e.Tick(now.Add(3199 * time.Millisecond))
	if s, _ := e.Session(); s.CanAdvance {
		t.Error("CanAdvance before the answer delay")
	}

	e.Tick(now.Add(3200 * time.Millisecond))
	s, _ = e.Session()
	if !s.CanAdvance || s.Phase != AnswerRevealed {
		t.Errorf("session at answer delay = %+v", s)
	}
	if o := e.Overlay(); o.AnswerOpacity != 1 || !o.NextVisible || o.CroppedVisible {
		t.Errorf("overlay at answer = %+v", o)
	}
}

func TestCanAdvanceNeverEarly(t *testing.T) {
	for _, v := range Variants() {
		e, _ := newTestEngine()
		e.Load(testQuestion(v), t0)
		if _, err := e.Activate(t0); err != nil {
			t.Fatalf("%s: Activate() error = %v", v, err)
		}
		for ms := 0; ms < int(v.AnswerDelay()/time.Millisecond); ms += 50 {
			e.Tick(t0.Add(time.Duration(ms) * time.Millisecond))
			if s, _ := e.Session(); s.CanAdvance {
				t.Fatalf("%s: CanAdvance at %dms", v, ms)
			}
			if e.Advance() {
				t.Fatalf("%s: Advance allowed at %dms", v, ms)
			}
		}
		e.Tick(t0.Add(v.AnswerDelay()))
		if s, _ := e.Session(); !s.CanAdvance {
			t.Errorf("%s: CanAdvance false at answer delay", v)
		}
	}
}

func TestActivateIgnoredWhileInFlight(t *testing.T) {
	e, a := newTestEngine()
	e.Load(testQuestion(Fade), t0)
	e.Activate(t0)

	a.layout.Full.Width = 9999
	before := len(a.applied)
	action, err := e.Activate(t0.Add(500 * time.Millisecond))
	if err != nil || action != ActionNone {
		t.Fatalf("re-activation = %v, %v", action, err)
	}
	if len(a.applied) != before {
		t.Error("re-activation pushed an overlay")
	}
	if e.Overlay().Transform.Scale != 0.25 {
		t.Error("re-activation re-solved the transform")
	}
}

func TestActivateAfterReveal(t *testing.T) {
	tests := []struct {
		name    string
		hasNext bool
		want    Action
	}{
		{"click anywhere", false, ActionAdvance},
		{"explicit next", true, ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(WithNextAffordance(tt.hasNext))
			e.Load(testQuestion(Box), t0)
			e.Activate(t0)
			e.Tick(t0.Add(10 * time.Second))

			got, err := e.Activate(t0.Add(11 * time.Second))
			if err != nil {
				t.Fatalf("Activate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Activate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStaleTimersHaveNoEffect(t *testing.T) {
	e, a := newTestEngine()
	first := e.Load(testQuestion(Fade), t0)
	e.Activate(t0)
	e.Tick(t0.Add(500 * time.Millisecond))

	// Abandon the first reveal mid-sequence.
	q2 := testQuestion(Circle)
	q2.Index = 1
	second := e.Load(q2, t0.Add(time.Second))
	if second.ID == first.ID {
		t.Fatal("session identity not replaced")
	}
	e.Tick(t0.Add(time.Second + IntroDelay))
	snapshot := e.Overlay()
	pushed := len(a.applied)

	// Late callbacks from the first session.
	for _, step := range first.Plan.Steps {
		if e.Deliver(first.ID, step) {
			t.Errorf("stale step %q was applied", step.Effect.Name)
		}
	}
	if e.Deliver(first.ID, IntroStep()) {
		t.Error("stale intro was applied")
	}
	if len(a.applied) != pushed {
		t.Error("stale delivery pushed an overlay")
	}
	if got := e.Overlay(); got.Motion != snapshot.Motion || got.FullOpacity != snapshot.FullOpacity || got.AnswerOpacity != snapshot.AnswerOpacity {
		t.Error("stale delivery changed the overlay")
	}
	s, _ := e.Session()
	if s.ID != second.ID || s.Phase != Idle || s.Revealed {
		t.Errorf("new session disturbed: %+v", s)
	}
}

func TestDeliverAppliesOnce(t *testing.T) {
	e, a := newTestEngine()
	s := e.Load(testQuestion(Fade), t0)
	e.Activate(t0)
	e.Tick(t0.Add(1300 * time.Millisecond))

	step, _ := s.Plan.Step("fade-in")
	if !e.Deliver(s.ID, step) {
		t.Fatal("Deliver() rejected a current step")
	}
	n := len(a.applied)
	if e.Deliver(s.ID, step) {
		t.Error("Deliver() applied a step twice")
	}
	if e.Tick(t0.Add(step.At)) != 0 || len(a.applied) != n {
		t.Error("Tick re-ran a delivered step")
	}
}

func TestDeliverBeforeActivation(t *testing.T) {
	e, _ := newTestEngine()
	s := e.Load(testQuestion(Fade), t0)
	step, _ := s.Plan.Step("answer")
	if e.Deliver(s.ID, step) {
		t.Error("plan step applied before activation")
	}
	if got, _ := e.Session(); got.CanAdvance {
		t.Error("CanAdvance set before activation")
	}
}

func TestDegenerateSelectionFails(t *testing.T) {
	e, a := newTestEngine()
	q := testQuestion(Fade)
	q.Selection = geometry.Rect{X: 10, Y: 10, W: 0, H: 40}
	e.Load(q, t0)

	_, err := e.Activate(t0)
	if !errors.Is(err, errors.ErrCodeDegenerateSelection) {
		t.Fatalf("Activate() error = %v, want DEGENERATE_SELECTION", err)
	}
	s, _ := e.Session()
	if !s.Failed || !s.CanAdvance || s.Err == nil {
		t.Errorf("failed session = %+v", s)
	}
	if o := a.last(); o.Motion != 0 || !o.NextVisible {
		t.Errorf("overlay after failure = %+v", o)
	}
	if _, ok := e.NextDeadline(); ok {
		t.Error("failed session kept deadlines")
	}
	if !e.Advance() {
		t.Error("failed session should be skippable")
	}
}

func TestMeasureErrorIsRetryable(t *testing.T) {
	e, a := newTestEngine()
	e.Load(testQuestion(Fade), t0)
	a.err = errors.New(errors.ErrCodeInternal, "not laid out")

	if _, err := e.Activate(t0); err == nil {
		t.Fatal("expected measure error")
	}
	if s, _ := e.Session(); s.Revealed || s.Failed {
		t.Errorf("measure error changed session: %+v", s)
	}

	a.err = nil
	if _, err := e.Activate(t0); err != nil {
		t.Fatalf("retry error = %v", err)
	}
}

func TestActivateWithoutQuestion(t *testing.T) {
	e, _ := newTestEngine()
	if _, err := e.Activate(t0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Activate() without Load error = %v", err)
	}
	if e.Advance() {
		t.Error("Advance() without a session")
	}
}

func TestNextDeadline(t *testing.T) {
	e, _ := newTestEngine()
	e.Load(testQuestion(Fade), t0)
	d, ok := e.NextDeadline()
	if !ok || !d.Equal(t0.Add(IntroDelay)) {
		t.Errorf("NextDeadline() = %v, %v", d, ok)
	}
	e.Tick(d)
	if _, ok := e.NextDeadline(); ok {
		t.Error("deadline left after intro")
	}
}

func TestPlayerSequencing(t *testing.T) {
	e, _ := newTestEngine()
	qs := []Question{testQuestion(Fade), testQuestion(Blur)}
	p := NewPlayer(e, qs, "{current}/{total}")

	if p.State() != StateStart {
		t.Fatalf("initial state = %v", p.State())
	}
	p.Start(t0)
	if p.State() != StatePlaying || p.Progress() != "1/2" {
		t.Fatalf("after Start: %v %q", p.State(), p.Progress())
	}

	if err := p.Activate(t0); err != nil {
		t.Fatal(err)
	}
	if p.Next(t0.Add(time.Second)) {
		t.Fatal("Next allowed before the answer")
	}
	p.Tick(t0.Add(Fade.AnswerDelay()))

	// Click-anywhere: a second activation advances.
	if err := p.Activate(t0.Add(5 * time.Second)); err != nil {
		t.Fatal(err)
	}
	if p.Index() != 1 || p.Progress() != "2/2" {
		t.Fatalf("after advance: index %d progress %q", p.Index(), p.Progress())
	}

	now := t0.Add(10 * time.Second)
	p.Activate(now)
	p.Tick(now.Add(Blur.AnswerDelay()))
	if !p.Next(now.Add(Blur.AnswerDelay())) {
		t.Fatal("Next refused after the answer")
	}
	if p.State() != StateCompleted {
		t.Fatalf("state = %v, want completed", p.State())
	}
	if p.Tick(now.Add(time.Minute)) != 0 {
		t.Error("completed player still ticking")
	}

	p.Restart(now.Add(time.Minute))
	if p.State() != StatePlaying || p.Index() != 0 {
		t.Errorf("after Restart: %v %d", p.State(), p.Index())
	}
}

func TestPlayerEmptyQuiz(t *testing.T) {
	e, _ := newTestEngine()
	p := NewPlayer(e, nil, "")
	p.Start(t0)
	if p.State() != StateCompleted {
		t.Errorf("empty quiz state = %v", p.State())
	}
}

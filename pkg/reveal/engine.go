package reveal

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
	"github.com/matzehuels/imagepuzzler/pkg/observability"
	"github.com/matzehuels/imagepuzzler/pkg/transform"
)

// Layout is the live on-screen geometry of the two elements, in viewport
// pixels.
type Layout struct {
	Full    geometry.Box
	Cropped geometry.Box
}

// Adapter connects the engine to a rendering surface.
//
// Measure must report the layout as it is right now; the engine calls it at
// activation time, never earlier. Apply receives the complete visual state
// and must produce the same result when called twice with the same value.
// When Overlay.Instant is set the host disables transitions while applying.
type Adapter interface {
	Measure() (Layout, error)
	Apply(Overlay)
}

// Session is the playback state of the current question.
type Session struct {
	ID       uint64
	Question Question
	Plan     Plan
	Phase    Phase
	Loaded   time.Time
	// Start is the activation time; zero until activated.
	Start      time.Time
	Revealed   bool
	CanAdvance bool
	// Failed is set when the question could not be revealed. Failed
	// sessions may always be advanced past.
	Failed bool
	Err    error
}

// Action tells a host what to do after an activation.
type Action int

const (
	// ActionNone means nothing further is required.
	ActionNone Action = iota
	// ActionAdvance means the host should move to the next question.
	ActionAdvance
)

type deadline struct {
	at      time.Time
	session uint64
	step    Step
}

// Engine drives one question at a time through its reveal plan.
type Engine struct {
	adapter Adapter
	logger  *log.Logger
	hasNext bool

	lastID  uint64
	session *Session
	overlay Overlay
	pending []deadline
	applied map[int]bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for phase transitions and failures.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithNextAffordance declares that the host shows an explicit "next"
// control. Without one, activating a revealed question advances.
func WithNextAffordance(enabled bool) Option {
	return func(e *Engine) { e.hasNext = enabled }
}

// NewEngine creates an engine bound to adapter.
func NewEngine(adapter Adapter, opts ...Option) *Engine {
	e := &Engine{
		adapter: adapter,
		logger:  log.New(io.Discard),
		overlay: Reset(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load replaces the current session with a fresh one for q, pushes the
// reset state with transitions disabled and schedules the intro fade.
// Any deadlines left over from the previous session are dropped.
func (e *Engine) Load(q Question, now time.Time) Session {
	e.lastID++
	e.session = &Session{
		ID:       e.lastID,
		Question: q,
		Plan:     NewPlan(q),
		Phase:    Idle,
		Loaded:   now,
	}
	e.pending = e.pending[:0]
	e.applied = make(map[int]bool)
	e.overlay = Reset()
	e.overlay.Clip = e.session.Plan.Clip
	e.adapter.Apply(e.overlay)

	e.schedule(now, IntroStep())
	e.logger.Debug("question loaded", "session", e.session.ID, "index", q.Index, "variant", e.session.Plan.Variant)
	return *e.session
}

// Session returns a copy of the current session. ok is false before the
// first Load.
func (e *Engine) Session() (s Session, ok bool) {
	if e.session == nil {
		return Session{}, false
	}
	return *e.session, true
}

// Overlay returns the state most recently pushed to the adapter.
func (e *Engine) Overlay() Overlay { return e.overlay }

// Activate handles a user activation.
//
// The first activation of an idle session measures the live layout,
// solves the transform and starts the plan. Activations while the reveal
// is in flight are ignored. Once advancing is permitted and the host has no
// explicit next control, Activate returns [ActionAdvance].
//
// A degenerate selection fails the session with DEGENERATE_SELECTION; the
// session is then marked Failed and may be advanced past.
func (e *Engine) Activate(now time.Time) (Action, error) {
	s := e.session
	if s == nil {
		return ActionNone, errors.New(errors.ErrCodeInvalidInput, "no question loaded")
	}
	if s.Revealed {
		if s.CanAdvance && !e.hasNext {
			return ActionAdvance, nil
		}
		return ActionNone, nil
	}

	layout, err := e.adapter.Measure()
	if err != nil {
		return ActionNone, fmt.Errorf("measure layout: %w", err)
	}
	t, err := transform.Solve(layout.Full, layout.Cropped, s.Question.Selection, s.Question.Natural)
	if err != nil {
		e.fail(err)
		return ActionNone, err
	}

	s.Revealed = true
	s.Start = now
	e.overlay.Transform = t
	observability.Reveal().OnActivate(string(s.Plan.Variant), s.Question.Index)
	e.logger.Debug("reveal started", "session", s.ID, "transform", t.CSS())

	for _, step := range s.Plan.Steps {
		e.schedule(now, step)
	}
	e.Tick(now)
	return ActionNone, nil
}

func (e *Engine) fail(err error) {
	s := e.session
	s.Revealed = true
	s.Failed = true
	s.CanAdvance = true
	s.Err = err
	e.pending = e.pending[:0]
	e.overlay.Instant = false
	e.overlay.NextVisible = true
	e.adapter.Apply(e.overlay)
	observability.Reveal().OnFailed(string(s.Plan.Variant), s.Question.Index, err)
	e.logger.Warn("question cannot be revealed", "index", s.Question.Index, "err", err)
}

func (e *Engine) schedule(base time.Time, step Step) {
	e.pending = append(e.pending, deadline{
		at:      base.Add(step.At),
		session: e.session.ID,
		step:    step,
	})
	sort.SliceStable(e.pending, func(i, j int) bool {
		return e.pending[i].at.Before(e.pending[j].at)
	})
}

// Tick runs every pending step due at now, in deadline order, and returns
// how many were applied. It is the engine's single scheduling loop.
func (e *Engine) Tick(now time.Time) int {
	n := 0
	for len(e.pending) > 0 && !e.pending[0].at.After(now) {
		d := e.pending[0]
		e.pending = e.pending[1:]
		if e.Deliver(d.session, d.step) {
			n++
		}
	}
	return n
}

// Deliver applies step if it belongs to the current session and has not
// run yet. Hosts that own their timers call it from the timer callback.
// It reports whether the step had any effect; steps of abandoned sessions
// are always rejected.
func (e *Engine) Deliver(sessionID uint64, step Step) bool {
	s := e.session
	if s == nil || sessionID != s.ID {
		return false
	}
	if e.applied[step.Seq] || s.Failed {
		return false
	}
	if step.Seq >= 0 && !s.Revealed {
		return false
	}
	e.applied[step.Seq] = true
	e.removePending(step.Seq)

	e.overlay.apply(step.Effect)
	if step.Seq >= 0 && step.Phase != s.Phase {
		s.Phase = step.Phase
		observability.Reveal().OnPhase(string(s.Plan.Variant), s.Phase.String(), step.At)
		e.logger.Debug("phase", "session", s.ID, "phase", s.Phase, "at", step.At)
	}
	if step.Effect.Unlock {
		s.CanAdvance = true
	}
	e.adapter.Apply(e.overlay)
	return true
}

func (e *Engine) removePending(seq int) {
	for i, d := range e.pending {
		if d.step.Seq == seq {
			e.pending = append(e.pending[:i], e.pending[i+1:]...)
			return
		}
	}
}

// NextDeadline returns the time of the earliest pending step.
func (e *Engine) NextDeadline() (time.Time, bool) {
	if len(e.pending) == 0 {
		return time.Time{}, false
	}
	return e.pending[0].at, true
}

// Advance ends the current session. It is refused until the reveal has
// unlocked advancing or the session failed. Pending deadlines are dropped.
func (e *Engine) Advance() bool {
	s := e.session
	if s == nil || !(s.CanAdvance || s.Failed) {
		return false
	}
	e.session = nil
	e.pending = e.pending[:0]
	return true
}

package reveal

import (
	"strconv"
	"strings"
	"time"
)

// PlayerState is the screen a quiz player is showing.
type PlayerState int

const (
	StateStart PlayerState = iota
	StatePlaying
	StateCompleted
)

func (s PlayerState) String() string {
	switch s {
	case StateStart:
		return "start"
	case StatePlaying:
		return "playing"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

// Player sequences a list of questions through one engine.
type Player struct {
	engine        *Engine
	questions     []Question
	progressLabel string

	index int
	state PlayerState
}

// NewPlayer creates a player on the start screen. progressLabel may contain
// {current} and {total} placeholders; empty disables the progress text.
func NewPlayer(e *Engine, questions []Question, progressLabel string) *Player {
	return &Player{
		engine:        e,
		questions:     questions,
		progressLabel: progressLabel,
	}
}

// Start begins the quiz at the first question. A quiz without questions
// completes immediately.
func (p *Player) Start(now time.Time) {
	p.index = 0
	if len(p.questions) == 0 {
		p.state = StateCompleted
		return
	}
	p.state = StatePlaying
	p.engine.Load(p.questions[0], now)
}

// Restart is Start from any state.
func (p *Player) Restart(now time.Time) { p.Start(now) }

// Activate forwards a user activation to the engine and advances when the
// engine asks for it.
func (p *Player) Activate(now time.Time) error {
	if p.state != StatePlaying {
		return nil
	}
	action, err := p.engine.Activate(now)
	if err != nil {
		return err
	}
	if action == ActionAdvance {
		p.Next(now)
	}
	return nil
}

// Next moves to the following question, or to the completion screen after
// the last one. It reports false when the current question may not be left
// yet.
func (p *Player) Next(now time.Time) bool {
	if p.state != StatePlaying || !p.engine.Advance() {
		return false
	}
	p.index++
	if p.index >= len(p.questions) {
		p.state = StateCompleted
		return true
	}
	p.engine.Load(p.questions[p.index], now)
	return true
}

// Tick drives the engine's scheduling loop.
func (p *Player) Tick(now time.Time) int {
	if p.state != StatePlaying {
		return 0
	}
	return p.engine.Tick(now)
}

// State returns the current screen.
func (p *Player) State() PlayerState { return p.state }

// Index returns the zero-based index of the current question.
func (p *Player) Index() int { return p.index }

// Total returns the number of questions.
func (p *Player) Total() int { return len(p.questions) }

// Engine returns the underlying engine.
func (p *Player) Engine() *Engine { return p.engine }

// Progress renders the progress label for the current question.
func (p *Player) Progress() string {
	return ProgressText(p.progressLabel, p.index+1, len(p.questions))
}

// ProgressText substitutes {current} and {total} in label.
func ProgressText(label string, current, total int) string {
	if label == "" {
		return ""
	}
	return strings.NewReplacer(
		"{current}", strconv.Itoa(current),
		"{total}", strconv.Itoa(total),
	).Replace(label)
}

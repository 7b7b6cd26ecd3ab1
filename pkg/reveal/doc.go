// Package reveal sequences the animated reveal of one quiz question.
//
// # Overview
//
// A question starts with a cropped view of the selection and its question
// text. A single activation morphs the cropped element onto the matching
// region of the full image, fades or clips the full image in using one of
// four variants, and finally shows the answer. The sequence is:
//
//	Idle → Transforming → Materializing → AnswerRevealed
//
// # Plans
//
// The timing of a reveal is data, not nested callbacks. [NewPlan] builds a
// [Plan]: an ordered table of [Step] values, each with an offset from the
// activation, the phase it enters and the [Effect] it applies. Every offset
// is a constant of the engine:
//
//	TransformDuration  1.2s  cropped element moves and scales into place
//	SettleDelay        0.2s  variant reveal starts at 1.4s
//	fade               2.0s  answer at 3.2s
//	blur               3.2s  answer at 4.4s
//	box, circle        2.0s  answer at 3.2s
//	AnswerFadeDuration 0.8s
//
// # Engine
//
// [Engine] owns the one active [Session] and a queue of deadlines. Hosts
// feed it activation events and clock ticks; it reads live layout through
// an [Adapter] and pushes complete [Overlay] states back:
//
//	eng := reveal.NewEngine(adapter, reveal.WithNextAffordance(true))
//	eng.Load(q, time.Now())
//	// on click:
//	action, err := eng.Activate(time.Now())
//	// on every frame or timer:
//	eng.Tick(time.Now())
//
// Every queued deadline carries the session identity it was scheduled for.
// Loading a new question replaces the session, so late deadlines from an
// abandoned reveal are dropped instead of touching the new question.
//
// Hosts that render frames offline use [Overlay.At] to evaluate the visual
// state at any offset into a plan, including mid-transition values.
//
// The engine is not safe for concurrent use. Hosts serialize calls through
// their own event loop.
package reveal

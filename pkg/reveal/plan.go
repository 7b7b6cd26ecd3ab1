package reveal

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/imagepuzzler/pkg/geometry"
)

// Question is everything the engine needs to reveal one quiz item.
type Question struct {
	Index     int
	Natural   geometry.Size
	Selection geometry.Rect
	Question  string
	Answer    string
	Variant   Variant
}

// Change sets one property to a target value.
type Change struct {
	Prop     Prop
	To       float64
	Duration time.Duration
	Ease     Ease
}

// Effect is the set of changes a step applies. Unlock permits advancing to
// the next question.
type Effect struct {
	Name    string
	Changes []Change
	Unlock  bool
}

// Step is one row of a plan's phase/deadline table.
type Step struct {
	// Seq is the step's position in its plan. The intro step uses -1.
	Seq    int
	At     time.Duration
	Phase  Phase
	Effect Effect
}

// Plan is the ordered step table for one question's reveal. Step offsets
// are relative to activation and never decrease.
type Plan struct {
	Variant     Variant
	Clip        Clip
	AnswerDelay time.Duration
	Steps       []Step
}

// IntroStep fades the cropped view in shortly after a question loads. It is
// scheduled relative to the load, not the activation.
func IntroStep() Step {
	return Step{
		Seq:   -1,
		At:    IntroDelay,
		Phase: Idle,
		Effect: Effect{
			Name: "intro",
			Changes: []Change{
				{Prop: PropCroppedOpacity, To: 1, Duration: labelFadeDuration, Ease: EaseDefault},
			},
		},
	}
}

// NewPlan builds the reveal plan for q. An unknown variant falls back to
// [DefaultVariant].
func NewPlan(q Question) Plan {
	v := q.Variant
	if !v.Valid() {
		v = DefaultVariant
	}

	b := planBuilder{plan: Plan{
		Variant:     v,
		Clip:        ClipFor(v, q.Selection, q.Natural),
		AnswerDelay: v.AnswerDelay(),
	}}

	start := Effect{Name: "transform", Changes: []Change{
		{Prop: PropMotion, To: 1, Duration: TransformDuration, Ease: EaseInOut},
		{Prop: PropQuestionOpacity, To: 0, Duration: labelFadeDuration, Ease: EaseDefault},
	}}
	if v == Blur {
		start.Changes = append(start.Changes, Change{Prop: PropFullBlur, To: BlurRadius})
	}
	b.add(0, Transforming, start)
	b.add(TransformDuration, Materializing, Effect{Name: "settle"})

	at := revealStart()
	switch v {
	case Fade:
		b.add(at, Materializing, Effect{Name: "fade-in", Changes: []Change{
			{Prop: PropFullOpacity, To: 1, Duration: fadeInDuration, Ease: EaseOut},
		}})
		b.add(v.AnswerDelay(), Materializing, Effect{Name: "hide-cropped", Changes: []Change{
			{Prop: PropCroppedVisible, To: 0},
		}})

	case Blur:
		b.add(at, Materializing, Effect{Name: "fade-in", Changes: []Change{
			{Prop: PropFullOpacity, To: 1, Duration: fadeInDuration, Ease: EaseOut},
		}})
		b.add(at+fadeInDuration, Materializing, Effect{Name: "sharpen", Changes: []Change{
			{Prop: PropCroppedVisible, To: 0},
			{Prop: PropFullBlur, To: 0, Duration: sharpenDuration, Ease: EaseOut},
		}})

	case Box, Circle:
		b.add(at, Materializing, Effect{Name: "clip", Changes: []Change{
			{Prop: PropClipEnabled, To: 1},
			{Prop: PropClipProgress, To: 0},
			{Prop: PropFullOpacity, To: 1},
			{Prop: PropCroppedVisible, To: 0},
		}})
		b.add(at+ClipKickoff, Materializing, Effect{Name: "expand", Changes: []Change{
			{Prop: PropClipProgress, To: 1, Duration: clipGrowDuration, Ease: EaseOut},
		}})
	}

	answer := Effect{Name: "answer", Unlock: true, Changes: []Change{
		{Prop: PropNextVisible, To: 1, Duration: labelFadeDuration, Ease: EaseDefault},
	}}
	if q.Answer != "" {
		answer.Changes = append(answer.Changes,
			Change{Prop: PropAnswerOpacity, To: 1, Duration: AnswerFadeDuration, Ease: EaseDefault})
	}
	b.add(v.AnswerDelay(), AnswerRevealed, answer)

	return b.plan
}

// Step returns the first step with the given effect name.
func (p Plan) Step(name string) (Step, bool) {
	for _, s := range p.Steps {
		if s.Effect.Name == name {
			return s, true
		}
	}
	return Step{}, false
}

// Duration is the offset at which the last transition of the plan ends.
func (p Plan) Duration() time.Duration {
	var end time.Duration
	for _, s := range p.Steps {
		for _, c := range s.Effect.Changes {
			end = max(end, s.At+c.Duration)
		}
		end = max(end, s.At)
	}
	return end
}

type planBuilder struct {
	plan Plan
}

func (b *planBuilder) add(at time.Duration, ph Phase, e Effect) {
	b.plan.Steps = append(b.plan.Steps, Step{
		Seq:    len(b.plan.Steps),
		At:     at,
		Phase:  ph,
		Effect: e,
	})
}

// Wire format. Durations are milliseconds so the embedded player runtime
// can pass them straight to setTimeout and CSS.

type changeJSON struct {
	Prop     Prop    `json:"prop"`
	To       float64 `json:"to"`
	Duration int64   `json:"ms,omitempty"`
	Ease     Ease    `json:"ease,omitempty"`
}

type stepJSON struct {
	Seq     int          `json:"seq"`
	At      int64        `json:"at"`
	Phase   Phase        `json:"phase"`
	Name    string       `json:"name"`
	Unlock  bool         `json:"unlock,omitempty"`
	Changes []changeJSON `json:"changes"`
}

// MarshalJSON encodes the step with millisecond offsets.
func (s Step) MarshalJSON() ([]byte, error) {
	out := stepJSON{
		Seq:     s.Seq,
		At:      s.At.Milliseconds(),
		Phase:   s.Phase,
		Name:    s.Effect.Name,
		Unlock:  s.Effect.Unlock,
		Changes: make([]changeJSON, 0, len(s.Effect.Changes)),
	}
	for _, c := range s.Effect.Changes {
		out.Changes = append(out.Changes, changeJSON{
			Prop:     c.Prop,
			To:       c.To,
			Duration: c.Duration.Milliseconds(),
			Ease:     c.Ease,
		})
	}
	return json.Marshal(out)
}

// MarshalJSON encodes the plan with millisecond offsets.
func (p Plan) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Variant     Variant `json:"variant"`
		Clip        Clip    `json:"clip"`
		AnswerDelay int64   `json:"answerDelay"`
		Steps       []Step  `json:"steps"`
	}{p.Variant, p.Clip, p.AnswerDelay.Milliseconds(), p.Steps})
}

package reveal

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
	"github.com/matzehuels/imagepuzzler/pkg/transform"
)

// Prop names one animatable property of the overlay.
type Prop int

const (
	// PropMotion is the cropped element's progress from its layout position
	// (0) to the solved transform (1).
	PropMotion Prop = iota
	PropCroppedOpacity
	PropCroppedVisible
	PropQuestionOpacity
	PropFullOpacity
	PropFullBlur
	PropClipEnabled
	// PropClipProgress grows the clip shape from the selection (0) to full
	// coverage (1).
	PropClipProgress
	PropAnswerOpacity
	PropNextVisible

	numProps
)

var propNames = [numProps]string{
	"motion", "croppedOpacity", "croppedVisible", "questionOpacity",
	"fullOpacity", "fullBlur", "clipEnabled", "clipProgress",
	"answerOpacity", "nextVisible",
}

func (p Prop) String() string {
	if p < 0 || p >= numProps {
		return "prop(" + strconv.Itoa(int(p)) + ")"
	}
	return propNames[p]
}

// MarshalText implements encoding.TextMarshaler.
func (p Prop) MarshalText() ([]byte, error) {
	if p < 0 || p >= numProps {
		return nil, fmt.Errorf("unknown prop %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Prop) UnmarshalText(b []byte) error {
	for i, name := range propNames {
		if name == string(b) {
			*p = Prop(i)
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown prop %q", b)
}

// Transition describes how a host animates a change to one property.
// A zero Duration means the change is instantaneous.
type Transition struct {
	Duration time.Duration
	Ease     Ease
}

// ClipKind is the shape used to reveal the full image.
type ClipKind int

const (
	ClipNone ClipKind = iota
	ClipInset
	ClipCircle
)

// FullRadius is the circle radius, in percent, that covers the whole image
// from any center.
const FullRadius = 150.0

// Clip is the starting clip shape for the box and circle variants, in
// percentages of the full image.
type Clip struct {
	Kind    ClipKind `json:"kind"`
	CenterX float64  `json:"centerX"`
	CenterY float64  `json:"centerY"`
	HalfW   float64  `json:"halfW,omitempty"`
	HalfH   float64  `json:"halfH,omitempty"`
	Radius  float64  `json:"radius,omitempty"`
}

// ClipFor returns the starting clip shape of variant v for a selection.
// Fade and blur do not clip.
func ClipFor(v Variant, sel geometry.Rect, natural geometry.Size) Clip {
	if natural.Empty() || (v != Box && v != Circle) {
		return Clip{}
	}
	c := sel.Center()
	clip := Clip{
		CenterX: c.X / natural.W * 100,
		CenterY: c.Y / natural.H * 100,
	}
	if v == Box {
		clip.Kind = ClipInset
		clip.HalfW = sel.W / natural.W * 50
		clip.HalfH = sel.H / natural.H * 50
		return clip
	}
	clip.Kind = ClipCircle
	clip.Radius = math.Max(sel.W, sel.H) / natural.Max() * 50
	return clip
}

// Inset returns the top, right, bottom and left insets in percent at grow
// progress p.
func (c Clip) Inset(p float64) (top, right, bottom, left float64) {
	k := 1 - p
	return (c.CenterY - c.HalfH) * k,
		(100 - c.CenterX - c.HalfW) * k,
		(100 - c.CenterY - c.HalfH) * k,
		(c.CenterX - c.HalfW) * k
}

// RadiusAt returns the circle radius in percent at grow progress p.
func (c Clip) RadiusAt(p float64) float64 {
	return c.Radius + (FullRadius-c.Radius)*p
}

// CSS renders the clip-path value at grow progress p.
func (c Clip) CSS(p float64) string {
	switch c.Kind {
	case ClipInset:
		t, r, b, l := c.Inset(p)
		return fmt.Sprintf("inset(%s%% %s%% %s%% %s%%)", pct(t), pct(r), pct(b), pct(l))
	case ClipCircle:
		return fmt.Sprintf("circle(%s%% at %s%% %s%%)", pct(c.RadiusAt(p)), pct(c.CenterX), pct(c.CenterY))
	}
	return "none"
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Overlay is the complete visual state of a question. Hosts apply it as a
// whole, never as a delta, so applying the same overlay twice is harmless.
type Overlay struct {
	// Instant asks the host to suppress transitions while applying this
	// state, as when a new question is loaded.
	Instant bool

	// Transform is the solved cropped-to-full transform. It is the identity
	// until the session is activated.
	Transform transform.Transform
	// Clip is the starting clip shape of the session's variant.
	Clip Clip

	Motion          float64
	CroppedOpacity  float64
	CroppedVisible  bool
	QuestionOpacity float64
	FullOpacity     float64
	FullBlur        float64
	ClipEnabled     bool
	ClipProgress    float64
	AnswerOpacity   float64
	NextVisible     bool

	transitions [numProps]Transition
}

// Reset is the state pushed when a question loads: cropped view hidden
// until its intro fade, everything else at rest.
func Reset() Overlay {
	return Overlay{
		Instant:         true,
		Transform:       transform.Identity,
		CroppedVisible:  true,
		QuestionOpacity: 1,
	}
}

// Ready is the idle state once the intro has finished. Offline renderers
// start plans from it.
func Ready() Overlay {
	o := Reset()
	o.Instant = false
	o.CroppedOpacity = 1
	return o
}

// Transition returns the transition that applies to the last change of p.
func (o Overlay) Transition(p Prop) Transition {
	if p < 0 || p >= numProps {
		return Transition{}
	}
	return o.transitions[p]
}

// CroppedTransform is the transform currently applied to the cropped
// element, honoring partial motion.
func (o Overlay) CroppedTransform() transform.Transform {
	return o.Transform.Lerp(o.Motion)
}

// ClipCSS renders the current clip-path, or "none" when clipping is off.
func (o Overlay) ClipCSS() string {
	if !o.ClipEnabled {
		return "none"
	}
	return o.Clip.CSS(o.ClipProgress)
}

func (o *Overlay) value(p Prop) float64 {
	switch p {
	case PropMotion:
		return o.Motion
	case PropCroppedOpacity:
		return o.CroppedOpacity
	case PropCroppedVisible:
		return boolValue(o.CroppedVisible)
	case PropQuestionOpacity:
		return o.QuestionOpacity
	case PropFullOpacity:
		return o.FullOpacity
	case PropFullBlur:
		return o.FullBlur
	case PropClipEnabled:
		return boolValue(o.ClipEnabled)
	case PropClipProgress:
		return o.ClipProgress
	case PropAnswerOpacity:
		return o.AnswerOpacity
	case PropNextVisible:
		return boolValue(o.NextVisible)
	}
	return 0
}

func (o *Overlay) set(p Prop, v float64) {
	switch p {
	case PropMotion:
		o.Motion = v
	case PropCroppedOpacity:
		o.CroppedOpacity = v
	case PropCroppedVisible:
		o.CroppedVisible = v >= 0.5
	case PropQuestionOpacity:
		o.QuestionOpacity = v
	case PropFullOpacity:
		o.FullOpacity = v
	case PropFullBlur:
		o.FullBlur = v
	case PropClipEnabled:
		o.ClipEnabled = v >= 0.5
	case PropClipProgress:
		o.ClipProgress = v
	case PropAnswerOpacity:
		o.AnswerOpacity = v
	case PropNextVisible:
		o.NextVisible = v >= 0.5
	}
}

// apply sets the target values of an effect, recording their transitions.
func (o *Overlay) apply(e Effect) {
	o.Instant = false
	for _, c := range e.Changes {
		o.set(c.Prop, c.To)
		o.transitions[c.Prop] = Transition{Duration: c.Duration, Ease: c.Ease}
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

type tween struct {
	from, to float64
	start    time.Duration
	tr       Transition
}

func (tw tween) at(t time.Duration) float64 {
	if tw.tr.Duration <= 0 || t >= tw.start+tw.tr.Duration {
		return tw.to
	}
	if t <= tw.start {
		return tw.from
	}
	f := float64(t-tw.start) / float64(tw.tr.Duration)
	return tw.from + (tw.to-tw.from)*tw.tr.Ease.Apply(f)
}

// At evaluates the visual state t after activation, starting from o and
// running every step of plan due by then. Transitions in flight are
// interpolated, and a change that interrupts a running transition starts
// from the interrupted value, as a browser would.
//
// Boolean properties switch at the instant their step runs.
func (o Overlay) At(plan Plan, t time.Duration) Overlay {
	out := o
	out.Instant = false
	out.Clip = plan.Clip

	var tweens [numProps]*tween
	for _, step := range plan.Steps {
		if step.At > t {
			break
		}
		for _, c := range step.Effect.Changes {
			from := out.value(c.Prop)
			if tw := tweens[c.Prop]; tw != nil {
				from = tw.at(step.At)
			}
			tweens[c.Prop] = &tween{
				from:  from,
				to:    c.To,
				start: step.At,
				tr:    Transition{Duration: c.Duration, Ease: c.Ease},
			}
			out.transitions[c.Prop] = tweens[c.Prop].tr
		}
	}
	for p, tw := range tweens {
		if tw != nil {
			out.set(Prop(p), tw.at(t))
		}
	}
	return out
}

package reveal

import (
	"strings"
	"time"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
)

// Variant selects how the full image materializes after the transform.
type Variant string

const (
	Fade   Variant = "fade"
	Blur   Variant = "blur"
	Box    Variant = "box"
	Circle Variant = "circle"
)

// DefaultVariant is used when a label does not name one.
const DefaultVariant = Fade

// Engine timing constants.
const (
	TransformDuration  = 1200 * time.Millisecond
	SettleDelay        = 200 * time.Millisecond
	AnswerFadeDuration = 800 * time.Millisecond

	// IntroDelay is how long after loading the cropped view starts to fade in.
	IntroDelay = 50 * time.Millisecond

	// ClipKickoff separates setting the starting clip shape from animating it,
	// so the starting shape is never tweened from the previous one.
	ClipKickoff = 50 * time.Millisecond

	fadeInDuration    = 1500 * time.Millisecond
	sharpenDuration   = 1500 * time.Millisecond
	clipGrowDuration  = 2000 * time.Millisecond
	labelFadeDuration = 400 * time.Millisecond

	// BlurRadius is the starting blur of the blur variant, in pixels.
	BlurRadius = 20.0
)

// Variants returns every supported variant in presentation order.
func Variants() []Variant {
	return []Variant{Fade, Blur, Box, Circle}
}

// ParseVariant resolves a variant name case-insensitively. The empty string
// yields [DefaultVariant].
func ParseVariant(s string) (Variant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultVariant, nil
	}
	for _, v := range Variants() {
		if string(v) == s {
			return v, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidVariant,
		"unknown reveal animation %q (expected fade, blur, box or circle)", s)
}

// Valid reports whether v is one of the supported variants.
func (v Variant) Valid() bool {
	switch v {
	case Fade, Blur, Box, Circle:
		return true
	}
	return false
}

func (v Variant) String() string { return string(v) }

// RevealDuration is how long the variant's materialization lasts, measured
// from the end of the transform motion.
func (v Variant) RevealDuration() time.Duration {
	if v == Blur {
		return 3200 * time.Millisecond
	}
	return 2000 * time.Millisecond
}

// AnswerDelay is the offset from activation at which the answer fades in
// and advancing becomes possible.
func (v Variant) AnswerDelay() time.Duration {
	return TransformDuration + v.RevealDuration()
}

// revealStart is when the variant's first materialization step runs.
func revealStart() time.Duration {
	return TransformDuration + SettleDelay
}

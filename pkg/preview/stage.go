package preview

import (
	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
	"github.com/matzehuels/imagepuzzler/pkg/puzzle"
	"github.com/matzehuels/imagepuzzler/pkg/reveal"
)

// Layout constants of the quiz screen, as fractions of the viewport.
const (
	croppedMaxW = 0.75
	croppedMaxH = 0.6
	fullMaxW    = 0.9
	fullMaxH    = 0.9

	// questionMargin separates the cropped image from the question text.
	questionMargin = 20.0
	lineHeight     = 1.2
)

// ComputeLayout lays out the quiz screen for it in a viewport the way the
// exported player does. The cropped image is scaled up or down to fill
// 75%x60% of the viewport and centered together with its question text;
// the full image is contained in 90%x90% without upscaling and centered.
//
// Selections without area produce a cropped box without area, which the
// solver rejects at activation.
func ComputeLayout(viewport geometry.Size, it puzzle.Item) (reveal.Layout, error) {
	if viewport.Empty() {
		return reveal.Layout{}, errors.New(errors.ErrCodeInvalidInput, "viewport %gx%g has no area", viewport.W, viewport.H)
	}
	if it.Selection == nil {
		return reveal.Layout{}, errors.New(errors.ErrCodeIncompleteProject, "%s has no selection", it.Name)
	}
	sel := *it.Selection

	cs := croppedScale(viewport, sel)
	cw, ch := sel.W*cs, sel.H*cs
	block := ch
	if it.Label.Question != "" {
		block += questionMargin + float64(it.Label.QuestionSize)*cs*lineHeight
	}

	fs := geometry.ContainScale(it.Natural, viewport.W*fullMaxW, viewport.H*fullMaxH)
	center := geometry.Point{X: viewport.W / 2, Y: viewport.H / 2}

	return reveal.Layout{
		Full: geometry.CenteredBox(center, it.Natural.W*fs, it.Natural.H*fs),
		Cropped: geometry.Box{
			Left:   (viewport.W - cw) / 2,
			Top:    (viewport.H - block) / 2,
			Width:  cw,
			Height: ch,
		},
	}, nil
}

func croppedScale(viewport geometry.Size, sel geometry.Rect) float64 {
	if sel.IsDegenerate() {
		return 0
	}
	return geometry.FitScale(geometry.Size{W: sel.W, H: sel.H}, viewport.W*croppedMaxW, viewport.H*croppedMaxH)
}

// Stage is a [reveal.Adapter] over a computed layout. It stands in for a
// browser window when the engine runs headless: the server and the
// terminal player drive an engine against a Stage and render whatever
// overlay it last received.
type Stage struct {
	viewport geometry.Size
	item     puzzle.Item
	layout   reveal.Layout
	overlay  reveal.Overlay
	applied  int
}

// NewStage lays out it in the viewport.
func NewStage(viewport geometry.Size, it puzzle.Item) (*Stage, error) {
	layout, err := ComputeLayout(viewport, it)
	if err != nil {
		return nil, err
	}
	return &Stage{viewport: viewport, item: it, layout: layout, overlay: reveal.Reset()}, nil
}

// Measure returns the layout for the current viewport.
func (s *Stage) Measure() (reveal.Layout, error) { return s.layout, nil }

// Apply stores the overlay.
func (s *Stage) Apply(o reveal.Overlay) {
	s.overlay = o
	s.applied++
}

// Resize recomputes the layout, as a window resize would.
func (s *Stage) Resize(viewport geometry.Size) error {
	layout, err := ComputeLayout(viewport, s.item)
	if err != nil {
		return err
	}
	s.viewport, s.layout = viewport, layout
	return nil
}

// Show switches the stage to another item, as the player does when it
// moves to the next question. The overlay is kept until the engine pushes
// the next reset.
func (s *Stage) Show(it puzzle.Item) error {
	layout, err := ComputeLayout(s.viewport, it)
	if err != nil {
		return err
	}
	s.item, s.layout = it, layout
	return nil
}

// Overlay returns the most recently applied state.
func (s *Stage) Overlay() reveal.Overlay { return s.overlay }

// Applied returns how many states have been applied.
func (s *Stage) Applied() int { return s.applied }

// Viewport returns the stage size.
func (s *Stage) Viewport() geometry.Size { return s.viewport }

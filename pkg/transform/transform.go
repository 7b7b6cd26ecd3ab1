// Package transform solves the on-screen transform that morphs a displayed
// cropped question image onto the matching region of the displayed full
// image.
//
// The two elements are laid out by different containers at different
// scales, so the solver works purely from their live bounding boxes:
//
//	t, err := transform.Solve(fullBox, croppedBox, sel, natural)
//	if err != nil {
//	    return err // DEGENERATE_SELECTION
//	}
//	el.Style.Transform = t.CSS() // with transform-origin: top left
//
// Solve must be called with boxes measured at activation time. Layouts
// change between loading a question and revealing it (window resizes), so
// results are never cached.
package transform

import (
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
)

// Transform is a uniform scale about the element's top-left corner followed
// by a translation, in viewport pixels.
type Transform struct {
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	Scale      float64 `json:"scale"`
}

// Identity is the transform that leaves an element where it was laid out.
var Identity = Transform{Scale: 1}

// Solve computes the transform that moves the cropped element so that its
// top-left corner lands on the selection's position inside the full image's
// current box and its rendered size matches the selection's size there.
//
//	targetX = full.Left + sel.X/natural.W * full.Width
//	targetY = full.Top  + sel.Y/natural.H * full.Height
//	scale   = (full.Width/natural.W) / (cropped.Width/sel.W)
//
// A selection, natural size or cropped box without area makes the scale
// undefined; Solve fails with DEGENERATE_SELECTION instead of producing
// NaN or Inf.
func Solve(full, cropped geometry.Box, sel geometry.Rect, natural geometry.Size) (Transform, error) {
	if sel.IsDegenerate() {
		return Transform{}, errors.New(errors.ErrCodeDegenerateSelection,
			"selection %gx%g has no area", sel.W, sel.H)
	}
	if natural.Empty() {
		return Transform{}, errors.New(errors.ErrCodeDegenerateSelection,
			"natural size %gx%g has no area", natural.W, natural.H)
	}
	if cropped.Width <= 0 {
		return Transform{}, errors.New(errors.ErrCodeDegenerateSelection,
			"cropped element has zero width")
	}

	targetX := full.Left + (sel.X/natural.W)*full.Width
	targetY := full.Top + (sel.Y/natural.H)*full.Height

	fullPerSource := full.Width / natural.W
	croppedPerSource := cropped.Width / sel.W
	scale := fullPerSource / croppedPerSource

	t := Transform{
		TranslateX: targetX - cropped.Left,
		TranslateY: targetY - cropped.Top,
		Scale:      scale,
	}
	if !t.finite() {
		return Transform{}, errors.New(errors.ErrCodeDegenerateSelection,
			"transform is not finite: %+v", t)
	}
	return t, nil
}

// Apply returns where base ends up once the transform is applied. base is
// always the untransformed layout box, so applying the same transform any
// number of times yields the same geometry.
func (t Transform) Apply(base geometry.Box) geometry.Box {
	return geometry.Box{
		Left:   base.Left + t.TranslateX,
		Top:    base.Top + t.TranslateY,
		Width:  base.Width * t.Scale,
		Height: base.Height * t.Scale,
	}
}

// Lerp interpolates between the identity (f=0) and t (f=1). Scale and
// translation are interpolated linearly, matching how browsers tween a
// translate+scale transform list.
func (t Transform) Lerp(f float64) Transform {
	return Transform{
		TranslateX: t.TranslateX * f,
		TranslateY: t.TranslateY * f,
		Scale:      1 + (t.Scale-1)*f,
	}
}

// CSS renders the transform as a CSS transform list. The element must use
// transform-origin: top left.
func (t Transform) CSS() string {
	return fmt.Sprintf("translate(%spx, %spx) scale(%s)", num(t.TranslateX), num(t.TranslateY), num(t.Scale))
}

func (t Transform) finite() bool {
	for _, v := range []float64{t.TranslateX, t.TranslateY, t.Scale} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

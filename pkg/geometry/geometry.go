package geometry

import "math"

// Editor canvas constraints carried over from the authoring surface.
const (
	// EditorGutter is subtracted from the container width before fitting.
	EditorGutter = 40.0

	// EditorMaxHeight caps the editor canvas height in display pixels.
	EditorMaxHeight = 600.0

	// EditorMinWidth is the narrowest canvas the editor fits an image into.
	EditorMinWidth = 1.0
)

// Size is a width/height pair. For images it is the natural size in source
// pixels.
type Size struct {
	W float64 `json:"width" toml:"width"`
	H float64 `json:"height" toml:"height"`
}

// Empty reports whether either dimension is non-positive.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Max returns the larger of the two dimensions.
func (s Size) Max() float64 { return math.Max(s.W, s.H) }

// Point is a position in whatever space the caller is working in.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle with its minimum corner at (X, Y).
// Selections are Rects in source-pixel coordinates.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Right returns the maximum x coordinate.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the maximum y coordinate.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// IsDegenerate reports whether the rectangle has no area.
func (r Rect) IsDegenerate() bool { return r.W <= 0 || r.H <= 0 }

// Within reports whether r lies fully inside [0,s.W]×[0,s.H] with
// non-negative extents.
func (r Rect) Within(s Size) bool {
	return r.X >= 0 && r.Y >= 0 && r.W >= 0 && r.H >= 0 &&
		r.Right() <= s.W && r.Bottom() <= s.H
}

// ClampTo intersects r with [0,s.W]×[0,s.H]. The result may be degenerate
// when r lies entirely outside the image.
func (r Rect) ClampTo(s Size) Rect {
	x0 := clamp(r.X, 0, s.W)
	y0 := clamp(r.Y, 0, s.H)
	x1 := clamp(r.Right(), 0, s.W)
	y1 := clamp(r.Bottom(), 0, s.H)
	return Rect{X: x0, Y: y0, W: math.Max(0, x1-x0), H: math.Max(0, y1-y0)}
}

// Box is an on-screen bounding box in viewport pixels, as reported by a
// host after layout.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the right edge of the box.
func (b Box) Right() float64 { return b.Left + b.Width }

// Bottom returns the bottom edge of the box.
func (b Box) Bottom() float64 { return b.Top + b.Height }

// Center returns the midpoint of the box.
func (b Box) Center() Point { return Point{X: b.Left + b.Width/2, Y: b.Top + b.Height/2} }

// Contains reports whether p lies inside the box (edges inclusive).
func (b Box) Contains(p Point) bool {
	return p.X >= b.Left && p.X <= b.Right() && p.Y >= b.Top && p.Y <= b.Bottom()
}

// CenteredBox returns a box of the given size centered on c.
func CenteredBox(c Point, w, h float64) Box {
	return Box{Left: c.X - w/2, Top: c.Y - h/2, Width: w, Height: h}
}

// Frame maps source pixels to display pixels. It is recomputed on every
// layout pass and never persisted.
type Frame struct {
	Scale  float64
	Origin Point
}

// ToDisplay converts a source point to display coordinates.
func (f Frame) ToDisplay(p Point) Point {
	return Point{X: f.Origin.X + p.X*f.Scale, Y: f.Origin.Y + p.Y*f.Scale}
}

// ToSource converts a display point back to source coordinates.
// f.Scale must be positive.
func (f Frame) ToSource(p Point) Point {
	return Point{X: (p.X - f.Origin.X) / f.Scale, Y: (p.Y - f.Origin.Y) / f.Scale}
}

// DisplayScale returns the uniform scale that fits natural inside a
// container of the given width and a maximum height, never upscaling.
// The width constraint is applied first, then the height constraint, which
// yields min(1, containerWidth/W, maxHeight/H).
func DisplayScale(natural Size, containerWidth, maxHeight float64) float64 {
	if natural.Empty() {
		return 1
	}
	w, h := natural.W, natural.H
	if containerWidth > 0 && w > containerWidth {
		h *= containerWidth / w
		w = containerWidth
	}
	if maxHeight > 0 && h > maxHeight {
		w *= maxHeight / h
	}
	return w / natural.W
}

// EditorFrame computes the editor canvas frame for an image shown in a
// container of the given width. Containers narrower than the gutter still
// constrain the width, down to [EditorMinWidth].
func EditorFrame(natural Size, containerWidth float64) Frame {
	w := math.Max(containerWidth-EditorGutter, EditorMinWidth)
	return Frame{Scale: DisplayScale(natural, w, EditorMaxHeight)}
}

// FitScale returns min(maxW/W, maxH/H). It upscales small content.
func FitScale(content Size, maxW, maxH float64) float64 {
	if content.Empty() {
		return 1
	}
	return math.Min(maxW/content.W, maxH/content.H)
}

// ContainScale returns FitScale capped at 1.
func ContainScale(content Size, maxW, maxH float64) float64 {
	return math.Min(FitScale(content, maxW, maxH), 1)
}

// ToDisplayRect scales a source rectangle into display space.
func ToDisplayRect(r Rect, scale float64) Rect {
	return Rect{X: r.X * scale, Y: r.Y * scale, W: r.W * scale, H: r.H * scale}
}

// ToSourceRect is the inverse of ToDisplayRect. scale must be positive.
func ToSourceRect(r Rect, scale float64) Rect {
	return Rect{X: r.X / scale, Y: r.Y / scale, W: r.W / scale, H: r.H / scale}
}

// ClampPercentage clamps v to [0, 100]. NaN clamps to 0.
func ClampPercentage(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, 0, 100)
}

// PercentPoint converts a pointer position into clamped percentages of box.
// It is used for free-form label dragging so a label never leaves the
// canvas.
func PercentPoint(p Point, box Box) Point {
	if box.Width <= 0 || box.Height <= 0 {
		return Point{}
	}
	return Point{
		X: ClampPercentage((p.X - box.Left) / box.Width * 100),
		Y: ClampPercentage((p.Y - box.Top) / box.Height * 100),
	}
}

// NormalizeDrag turns two drag endpoints into a rectangle whose minimum
// corner is the componentwise minimum and whose extents are non-negative.
func NormalizeDrag(p0, p1 Point) Rect {
	return Rect{
		X: math.Min(p0.X, p1.X),
		Y: math.Min(p0.Y, p1.Y),
		W: math.Abs(p1.X - p0.X),
		H: math.Abs(p1.Y - p0.Y),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

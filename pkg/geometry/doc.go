// Package geometry provides the coordinate math shared by the editor, the
// reveal engine and every presentation host.
//
// # Coordinate Spaces
//
// Three spaces appear throughout imagepuzzler:
//
//   - Source space: pixels of the decoded raster. Selections ([Rect]) are
//     always stored here, never in display coordinates.
//   - Display space: pixels of a scaled rendering of the image, for example
//     the editor canvas. A [Frame] maps source to display with a single
//     uniform scale factor, so aspect ratio is preserved exactly.
//   - Viewport space: on-screen boxes ([Box]) as measured by a host after
//     layout. The transform solver works exclusively in this space.
//
// # Scales
//
// [DisplayScale] fits an image into the editor canvas without ever
// upscaling. [FitScale] fits a selection into the question area and may
// upscale. [ContainScale] fits the full image into the viewport, capped at
// 1.
//
// # Selections
//
// A drag produces two arbitrary endpoints; [NormalizeDrag] turns them into
// a rectangle with its minimum corner first and non-negative extents:
//
//	sel := geometry.NormalizeDrag(geometry.Point{X: 300, Y: 40}, geometry.Point{X: 120, Y: 200})
//	// sel == Rect{X: 120, Y: 40, W: 180, H: 160}
//
// [ToDisplayRect] and [ToSourceRect] are exact inverses for any positive
// scale.
package geometry

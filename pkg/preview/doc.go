// Package preview renders the quiz outside a browser.
//
// [ComputeLayout] reproduces the exported player's screen layout for a
// viewport, and [Stage] wraps it as a [reveal.Adapter] so an engine can run
// headless. [Renderer] draws single frames of a reveal, frame sequences
// and animated GIFs from the same plan the player executes; overlays are
// sampled with [reveal.Overlay.At]. [EditorCanvas] draws the authoring
// view with the selection rectangle and the answer label.
//
// Frame sequences are rendered concurrently; a Renderer holds only
// read-only state once constructed.
package preview

// Package puzzle holds the authoring model: images, their selections and
// labels, and the project that owns them.
//
// # Ownership
//
// Items live only inside [Project.Items]. Callers address them by index or
// ID and re-fetch after every mutation: [Project.Item] returns a copy, and
// all changes go through [Project.Update] or one of the typed setters built
// on it. No other component keeps a pointer to an item across mutations.
//
// # Selections
//
// A selection is a [geometry.Rect] in source pixels. A nil selection marks
// the question as incomplete; such items are refused by export. Explicit
// rectangles must lie within the image ([Project.SetSelection] rejects
// anything else with INVALID_SELECTION), while rectangles produced by
// dragging on the editor canvas are clamped into the image
// ([Project.SetSelectionFromDrag]).
//
// # Rasters
//
// Rasters are kept in their original encoding. The natural size is read
// once with [image.DecodeConfig] when an item is created; PNG, JPEG, GIF and
// WebP are supported.
package puzzle

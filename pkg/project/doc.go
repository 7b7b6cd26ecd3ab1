// Package project reads and writes project archives.
//
// An archive is a zip file holding a manifest and the original image files:
//
//	project.json      version 1 manifest (settings + per-image fields)
//	images/<name>     raw raster, in its original encoding
//
// # Loading
//
// [Load] validates the manifest structure before anything is returned.
// A structural failure (not a zip, missing or unparsable manifest, unknown
// version, invalid image names) aborts with MALFORMED_PROJECT and yields no
// project at all, so the caller's current state is never partially
// overwritten.
//
// Per-image problems are not fatal. An image whose raster is missing or
// cannot be decoded is skipped and reported as a [Notice] with code
// MISSING_RASTER; an out-of-bounds selection is clamped into the image and
// reported the same way.
package project

// Package player exports a project as a standalone interactive quiz: a
// single HTML file with every image inlined as a data URL.
//
// Each question record carries the full raster, a pre-cropped raster of
// the selection, the label fields, the precomputed progress text and the
// reveal plan built by [reveal.NewPlan]. The embedded runtime does not know
// any variant timings. It measures the two image boxes when the player
// activates a question, runs the same solver formula as
// transform.Solve, and executes the plan steps with session checks so
// that timers left over from a previous question are ignored.
//
// Advancing works one of two ways. With a next button label the button
// appears when the answer is revealed. Without one, a click anywhere on
// the game screen advances once the question is unlocked.
//
//	html, err := player.Render(ctx, project, player.Options{Logger: logger})
package player

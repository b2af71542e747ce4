// Package analysis drives the per-frame loop: each frame is localized and
// the resulting position is folded into zone occupancy.
//
// A Session holds the state of one recording: the localizer's background
// model, the occupancy engine and a log of individual visits. Sessions are
// stepped one frame at a time by a caller, or driven over a whole frames.Source
// by Run.
//
// Run returns a Report with the final records, per-zone visit summaries, the
// transition events, path length and, on request, a per-frame trace and one
// overlay PNG per frame. When the source fails or the context is canceled, Run
// returns the partial report together with the error.
//
// A Session is not safe for concurrent use.
package analysis

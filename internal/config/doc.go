// Package config loads and saves experiment configuration: where the frames
// are, which detector settings to use, which zones to track and how to draw
// the debug overlay.
//
// A configuration is a JSON document:
//
//	{
//	  "frames":   {"dir": "trial-3", "pattern": "*.png", "fps": 30},
//	  "detector": {"min_area": 2000, "noise_floor": 5, "kernel_size": 3},
//	  "regions":  [{"id": "centro", "center": [145, 117], "radius": 25}],
//	  "overlay":  {"inside_color": "#FF0000", "grid_spacing": 50}
//	}
//
// Fields missing from the file keep the values of DefaultConfig. A relative
// frames.dir is resolved against the directory holding the file.
//
// # Validation
//
// Validate resets out-of-range values that have an obvious default, such as a
// non-positive fps or kernel size. It does not rewrite choices that only the
// caller can make: detection thresholds that contradict each other, invalid
// region specs and unparseable colors are reported, all at once.
//
// # Presets
//
// Preset returns a fresh copy of a built-in experiment:
//   - plus-maze: two quadrilateral arms, "este" and "oeste"
//   - open-field: a single circular zone "centro" with a low min_area
//
// Presets leave frames.dir empty; the caller supplies it.
package config

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/multierr"

	"github.com/ironsheep/maze-zone-mcp/internal/frames"
	"github.com/ironsheep/maze-zone-mcp/internal/geometry"
	"github.com/ironsheep/maze-zone-mcp/internal/render"
	"github.com/ironsheep/maze-zone-mcp/internal/tracking"
)

// maxFileSize bounds configuration files.
const maxFileSize = 1 * 1024 * 1024

// Config describes one experiment.
type Config struct {
	Name     string          `json:"name,omitempty"`
	Frames   FramesConfig    `json:"frames"`
	Detector tracking.Config `json:"detector"`
	Regions  []geometry.Spec `json:"regions"`
	Overlay  OverlayConfig   `json:"overlay"`
}

// FramesConfig locates the exported frames of a recording.
type FramesConfig struct {
	Dir     string  `json:"dir"`
	Pattern string  `json:"pattern"`
	FPS     float64 `json:"fps"`
}

// OverlayConfig controls the debug overlay.
type OverlayConfig struct {
	InsideColor  string  `json:"inside_color"`
	OutsideColor string  `json:"outside_color"`
	Thickness    float64 `json:"thickness"`
	HitboxSize   int     `json:"hitbox_size"`
	Labels       bool    `json:"labels"`
	Scale        float64 `json:"scale"`
	GridSpacing  int     `json:"grid_spacing"`
}

// DefaultConfig returns a Config with every default filled in and no regions.
func DefaultConfig() *Config {
	return &Config{
		Frames: FramesConfig{
			Pattern: frames.DefaultPattern,
			FPS:     30,
		},
		Detector: tracking.DefaultConfig(),
		Regions:  []geometry.Spec{},
		Overlay: OverlayConfig{
			InsideColor:  "#FF0000",
			OutsideColor: "#00FF00",
			Thickness:    2,
			HitboxSize:   10,
			Labels:       true,
			Scale:        1,
		},
	}
}

// Validate clamps out-of-range values back to their defaults and reports
// problems that have no sensible default: a noise_floor above min_area,
// missing or invalid regions and unparseable colors. All problems are
// reported together.
func (c *Config) Validate() error {
	def := DefaultConfig()

	if c.Frames.Pattern == "" {
		c.Frames.Pattern = def.Frames.Pattern
	}
	if !(c.Frames.FPS > 0) {
		c.Frames.FPS = def.Frames.FPS
	}

	d := &c.Detector
	if d.MinArea < 0 {
		d.MinArea = def.Detector.MinArea
	}
	if d.NoiseFloor < 0 {
		d.NoiseFloor = def.Detector.NoiseFloor
		if d.NoiseFloor > d.MinArea {
			d.NoiseFloor = d.MinArea
		}
	}
	if d.KernelSize < 1 {
		d.KernelSize = def.Detector.KernelSize
	}
	if d.DilateIterations < 0 {
		d.DilateIterations = def.Detector.DilateIterations
	}
	bg := &d.Background
	if !(bg.LearningRate > 0 && bg.LearningRate <= 1) {
		bg.LearningRate = def.Detector.Background.LearningRate
	}
	if bg.VarianceThreshold <= 0 {
		bg.VarianceThreshold = def.Detector.Background.VarianceThreshold
	}
	if bg.MinDifference < 0 {
		bg.MinDifference = def.Detector.Background.MinDifference
	}
	if bg.InitialVariance <= 0 {
		bg.InitialVariance = def.Detector.Background.InitialVariance
	}
	if bg.MinVariance <= 0 {
		bg.MinVariance = def.Detector.Background.MinVariance
	}

	o := &c.Overlay
	if o.Thickness <= 0 {
		o.Thickness = def.Overlay.Thickness
	}
	if o.HitboxSize < 0 {
		o.HitboxSize = def.Overlay.HitboxSize
	}
	if !(o.Scale > 0) {
		o.Scale = def.Overlay.Scale
	}
	if o.GridSpacing < 0 {
		o.GridSpacing = 0
	}

	var errs error
	if err := d.Validate(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := c.RegionSet(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := c.Style(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// RegionSet builds the configured regions.
func (c *Config) RegionSet() (*geometry.RegionSet, error) {
	return geometry.BuildRegionSet(c.Regions)
}

// Style builds the overlay style.
func (c *Config) Style() (render.Style, error) {
	style := render.DefaultStyle()
	style.Thickness = c.Overlay.Thickness
	style.HitboxSize = c.Overlay.HitboxSize
	style.Labels = c.Overlay.Labels
	style.GridSpacing = c.Overlay.GridSpacing

	var errs error
	if in, err := render.ParseColor(c.Overlay.InsideColor); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("inside_color: %w", err))
	} else {
		style.InsideColor = in
	}
	if out, err := render.ParseColor(c.Overlay.OutsideColor); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("outside_color: %w", err))
	} else {
		style.OutsideColor = out
	}
	return style, errs
}

// Load reads a configuration file.
//
// Parameters:
//   - path: JSON file, at most 1 MB, with a .json extension.
//
// Fields absent from the file keep their defaults. A relative frames.dir is
// resolved against the directory holding the file. The result is validated.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if cfg.Frames.Dir != "" && !filepath.IsAbs(cfg.Frames.Dir) {
		cfg.Frames.Dir = filepath.Join(filepath.Dir(cleanPath), cfg.Frames.Dir)
	}
	return cfg, nil
}

// Parse decodes a JSON configuration over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as indented JSON.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// presets are the recorded experiments the tool ships with.
var presets = map[string]func() *Config{
	"plus-maze": func() *Config {
		c := DefaultConfig()
		c.Name = "plus-maze"
		c.Detector.MinArea = 2000
		c.Regions = []geometry.Spec{
			{ID: "este", Shape: geometry.ShapePolygon, Points: [][2]float64{{620, 450}, {903, 450}, {900, 320}, {622, 320}}},
			{ID: "oeste", Shape: geometry.ShapePolygon, Points: [][2]float64{{272, 450}, {274, 320}, {566, 320}, {562, 450}}},
		}
		return c
	},
	"open-field": func() *Config {
		c := DefaultConfig()
		c.Name = "open-field"
		c.Detector.MinArea = 100
		c.Regions = []geometry.Spec{
			{ID: "centro", Shape: geometry.ShapeCircle, Center: &[2]float64{145, 117}, Radius: 25},
		}
		return c
	},
}

// Preset returns a fresh copy of a built-in configuration.
func Preset(name string) (*Config, error) {
	mk, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %v)", name, PresetNames())
	}
	return mk(), nil
}

// PresetNames lists the built-in configurations, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

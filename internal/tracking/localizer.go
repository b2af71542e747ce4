package tracking

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ironsheep/maze-zone-mcp/internal/geometry"
)

// Config holds the detector settings. The area thresholds depend on the
// camera setup and the animal's size in pixels and must be tuned per
// recording.
type Config struct {
	// MinArea is the contour area, in square pixels, at which the largest
	// contour is accepted on its own.
	MinArea float64 `json:"min_area"`

	// NoiseFloor is the smallest contour area pooled when the largest
	// contour falls below MinArea.
	NoiseFloor float64 `json:"noise_floor"`

	// KernelSize is the side of the square structuring element.
	KernelSize int `json:"kernel_size"`

	// CloseGaps enables the closing pass before opening.
	CloseGaps bool `json:"close_gaps"`

	// DilateIterations is the number of dilations after opening.
	DilateIterations int `json:"dilate_iterations"`

	// Background controls the running background estimate.
	Background BackgroundParams `json:"background"`
}

// DefaultConfig returns settings for a rat-sized animal filmed at roughly
// 1000x600 pixels.
func DefaultConfig() Config {
	return Config{
		MinArea:          2000,
		NoiseFloor:       5,
		KernelSize:       3,
		CloseGaps:        false,
		DilateIterations: 2,
		Background:       DefaultBackgroundParams(),
	}
}

// Validate reports every setting that would make the detector misbehave.
func (c Config) Validate() error {
	var errs error
	if c.MinArea < 0 {
		errs = multierr.Append(errs, fmt.Errorf("min_area must not be negative, got %g", c.MinArea))
	}
	if c.NoiseFloor < 0 {
		errs = multierr.Append(errs, fmt.Errorf("noise_floor must not be negative, got %g", c.NoiseFloor))
	}
	if c.NoiseFloor > c.MinArea {
		errs = multierr.Append(errs, fmt.Errorf("noise_floor (%g) must not exceed min_area (%g)", c.NoiseFloor, c.MinArea))
	}
	if c.KernelSize < 1 {
		errs = multierr.Append(errs, fmt.Errorf("kernel_size must be at least 1, got %d", c.KernelSize))
	}
	if c.DilateIterations < 0 {
		errs = multierr.Append(errs, fmt.Errorf("dilate_iterations must not be negative, got %d", c.DilateIterations))
	}
	if !(c.Background.LearningRate > 0 && c.Background.LearningRate <= 1) {
		errs = multierr.Append(errs, fmt.Errorf("learning_rate must be in (0, 1], got %g", c.Background.LearningRate))
	}
	if c.Background.VarianceThreshold < 0 || c.Background.MinDifference < 0 {
		errs = multierr.Append(errs, errors.New("variance_threshold and min_difference must not be negative"))
	}
	return errs
}

// Detection is the result of locating the object in one frame.
type Detection struct {
	// Position is the estimated object centroid, or nil when the object was
	// not found.
	Position *geometry.Point `json:"position"`

	// Mask is the cleaned foreground mask, 255 for foreground.
	Mask *image.Gray `json:"-"`

	// Area is the area of the selected contour, or of the pooled contours
	// when Fallback is set.
	Area float64 `json:"area"`

	// Contours is the number of contours found in the cleaned mask.
	Contours int `json:"contours"`

	// Fallback reports that the largest contour was below MinArea and the
	// position comes from pooling contours above NoiseFloor.
	Fallback bool `json:"fallback"`
}

// Found reports whether the frame produced a position.
func (d Detection) Found() bool { return d.Position != nil }

// Localizer estimates the position of a single moving object frame by frame.
type Localizer struct {
	cfg        Config
	background *BackgroundModel
	logger     *zap.SugaredLogger
}

// NewLocalizer creates a Localizer with an empty background model. A nil
// logger disables logging.
func NewLocalizer(cfg Config, logger *zap.SugaredLogger) *Localizer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Localizer{
		cfg:        cfg,
		background: NewBackgroundModel(cfg.Background),
		logger:     logger,
	}
}

// Config returns the detector settings.
func (l *Localizer) Config() Config { return l.cfg }

// Frames returns the number of frames in the current background model.
func (l *Localizer) Frames() int { return l.background.Frames() }

// Reset discards the background model.
func (l *Localizer) Reset() { l.background.Reset() }

// Locate estimates the object position in frame and folds frame into the
// background model.
//
// Parameters:
//   - frame: Grayscale frame. All frames of a stream should share one size;
//     a frame of a new size restarts the background model.
//
// Returns the Detection. A miss is reported with a nil Position, never as an
// error. The first frame of a stream always misses because it only seeds the
// background.
func (l *Localizer) Locate(frame *image.Gray) Detection {
	raw := l.background.Apply(frame)
	mask := Clean(raw, MorphologyOptions{
		KernelSize:       l.cfg.KernelSize,
		CloseGaps:        l.cfg.CloseGaps,
		DilateIterations: l.cfg.DilateIterations,
	})

	contours := FindContours(mask)
	det := Detection{Mask: mask, Contours: len(contours)}
	if len(contours) == 0 {
		return det
	}

	largest := contours[0]
	var m00, m10, m01 float64
	if largest.Area() >= l.cfg.MinArea {
		m00, m10, m01 = largest.M00, largest.M10, largest.M01
	} else {
		det.Fallback = true
		for _, c := range contours {
			if c.Area() < l.cfg.NoiseFloor {
				// Sorted by area, nothing smaller follows.
				break
			}
			m00 += c.M00
			m10 += c.M10
			m01 += c.M01
		}
	}

	det.Area = m00
	pos, ok := centroid(m00, m10, m01)
	if !ok {
		l.logger.Debugw("no usable contour",
			"contours", len(contours),
			"largest_area", largest.Area(),
			"largest_pixels", largest.Pixels)
		return det
	}
	if det.Fallback {
		l.logger.Debugw("pooled small contours",
			"largest_area", largest.Area(),
			"pooled_area", m00)
	}
	det.Position = &pos
	return det
}

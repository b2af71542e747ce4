package tracking

import (
	"image"
	"math"
)

// BackgroundParams controls the running background estimate.
type BackgroundParams struct {
	// LearningRate is the fraction of each new observation blended into the
	// per-pixel mean and variance. Must be in (0, 1].
	LearningRate float64 `json:"learning_rate"`

	// VarianceThreshold is the squared number of standard deviations a pixel
	// must differ from the mean to count as foreground.
	VarianceThreshold float64 `json:"variance_threshold"`

	// MinDifference is the smallest absolute intensity difference that can
	// count as foreground, regardless of variance.
	MinDifference float64 `json:"min_difference"`

	// InitialVariance seeds every pixel's variance on the first frame.
	InitialVariance float64 `json:"initial_variance"`

	// MinVariance is the floor the variance never decays below.
	MinVariance float64 `json:"min_variance"`
}

// DefaultBackgroundParams returns parameters suited to a static camera over
// a maze floor at 25-30 fps.
func DefaultBackgroundParams() BackgroundParams {
	return BackgroundParams{
		LearningRate:      0.01,
		VarianceThreshold: 16,
		MinDifference:     15,
		InitialVariance:   225,
		MinVariance:       4,
	}
}

// BackgroundModel is a per-pixel running Gaussian estimate of the static
// scene.
//
// The first frame, and any frame whose size differs from the model, seeds the
// model and produces an empty foreground mask. Every later frame is classified
// against the model and then folded into it.
type BackgroundModel struct {
	params   BackgroundParams
	bounds   image.Rectangle
	mean     []float64
	variance []float64
	frames   int
}

// NewBackgroundModel creates an unseeded model.
func NewBackgroundModel(params BackgroundParams) *BackgroundModel {
	return &BackgroundModel{params: params}
}

// Frames returns the number of frames folded into the model since it was
// last seeded.
func (m *BackgroundModel) Frames() int { return m.frames }

// Reset discards the model. The next frame seeds it again.
func (m *BackgroundModel) Reset() {
	m.bounds = image.Rectangle{}
	m.mean = nil
	m.variance = nil
	m.frames = 0
}

// Apply classifies every pixel of frame and updates the model.
//
// A pixel x with model mean μ and variance σ² is foreground when
//
//	|x - μ| > MinDifference  and  (x - μ)² > VarianceThreshold · σ²
//
// The model is then updated with exponential moving averages:
//
//	μ  ← μ + α(x - μ)
//	σ² ← (1 - α)σ² + α(x - μ)²,  clamped to MinVariance
//
// Returns a mask with frame's bounds, 255 for foreground and 0 otherwise.
func (m *BackgroundModel) Apply(frame *image.Gray) *image.Gray {
	b := frame.Bounds()
	mask := image.NewGray(b)

	if m.mean == nil || b.Size() != m.bounds.Size() {
		m.seed(frame)
		return mask
	}

	p := m.params
	alpha := p.LearningRate
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+w]
		for x, v := range row {
			i := y*w + x
			d := float64(v) - m.mean[i]
			d2 := d * d
			if math.Abs(d) > p.MinDifference && d2 > p.VarianceThreshold*m.variance[i] {
				mask.Pix[y*mask.Stride+x] = 255
			}
			m.mean[i] += alpha * d
			m.variance[i] = math.Max((1-alpha)*m.variance[i]+alpha*d2, p.MinVariance)
		}
	}
	m.frames++
	return mask
}

// seed initializes the model from frame.
func (m *BackgroundModel) seed(frame *image.Gray) {
	b := frame.Bounds()
	n := b.Dx() * b.Dy()
	m.bounds = b
	m.mean = make([]float64, n)
	m.variance = make([]float64, n)

	initial := math.Max(m.params.InitialVariance, m.params.MinVariance)
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+w]
		for x, v := range row {
			m.mean[y*w+x] = float64(v)
			m.variance[y*w+x] = initial
		}
	}
	m.frames = 1
}

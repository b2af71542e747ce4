package frames

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"sort"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// DefaultPattern selects the images of a frame directory.
const DefaultPattern = "*.png"

// ErrNoFrames is returned when a frame directory holds no matching images.
var ErrNoFrames = errors.New("no frames found")

// Frame is one decoded frame of a recording.
type Frame struct {
	// Index is the zero-based position of the frame in the recording.
	Index int

	// Time is the frame timestamp in seconds, Index / fps.
	Time float64

	// Path is the file the frame was read from, empty for in-memory frames.
	Path string

	// Gray is the grayscale frame handed to the tracker.
	Gray *image.Gray

	// Color is the frame as decoded, used for overlays.
	Color image.Image
}

// Source yields frames in recording order.
//
// Next returns io.EOF after the last frame. A Source is consumed once and is
// not safe for concurrent use.
type Source interface {
	Next(ctx context.Context) (Frame, error)
	Len() int
	FPS() float64
}

// Timestamp returns the time of frame index at fps frames per second.
func Timestamp(index int, fps float64) float64 {
	return float64(index) / fps
}

// DirSequence reads the frames of a recording exported as still images.
type DirSequence struct {
	paths []string
	fps   float64
	next  int
}

// NewDirSequence lists the images in dir matching pattern, sorted by name.
//
// Parameters:
//   - dir: Directory holding the exported frames.
//   - pattern: filepath.Match pattern, DefaultPattern when empty.
//   - fps: Recording frame rate. Must be positive.
//
// Returns ErrNoFrames when nothing matches.
func NewDirSequence(dir, pattern string, fps float64) (*DirSequence, error) {
	if !(fps > 0) {
		return nil, fmt.Errorf("fps must be positive, got %g", fps)
	}
	if pattern == "" {
		pattern = DefaultPattern
	}

	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid frame pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s matching %s", ErrNoFrames, dir, pattern)
	}
	sort.Strings(paths)

	return &DirSequence{paths: paths, fps: fps}, nil
}

// Len returns the number of frames.
func (s *DirSequence) Len() int { return len(s.paths) }

// FPS returns the frame rate.
func (s *DirSequence) FPS() float64 { return s.fps }

// Next decodes the next frame.
func (s *DirSequence) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.next >= len(s.paths) {
		return Frame{}, io.EOF
	}

	idx := s.next
	path := s.paths[idx]
	s.next++

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return Frame{}, fmt.Errorf("failed to decode frame %d (%s): %w", idx, path, err)
	}

	return Frame{
		Index: idx,
		Time:  Timestamp(idx, s.fps),
		Path:  path,
		Gray:  ToGray(img),
		Color: img,
	}, nil
}

// SliceSource serves frames held in memory.
type SliceSource struct {
	images []image.Image
	fps    float64
	next   int
}

// NewSliceSource creates a source over images at fps frames per second.
func NewSliceSource(images []image.Image, fps float64) *SliceSource {
	return &SliceSource{images: images, fps: fps}
}

// Len returns the number of frames.
func (s *SliceSource) Len() int { return len(s.images) }

// FPS returns the frame rate.
func (s *SliceSource) FPS() float64 { return s.fps }

// Next returns the next frame.
func (s *SliceSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.next >= len(s.images) {
		return Frame{}, io.EOF
	}

	idx := s.next
	img := s.images[idx]
	s.next++

	return Frame{
		Index: idx,
		Time:  Timestamp(idx, s.fps),
		Gray:  ToGray(img),
		Color: img,
	}, nil
}

// ToGray converts img to an 8-bit grayscale image with bounds starting at
// the origin. A *image.Gray already at the origin is returned as is.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}

	// Luminance lands in all three channels; R is taken.
	rgba := effect.Grayscale(img)
	b := rgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := rgba.Pix[y*rgba.Stride:]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return gray
}

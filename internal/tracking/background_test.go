package tracking

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackgroundModelSeedsThenDetects(t *testing.T) {
	m := NewBackgroundModel(DefaultBackgroundParams())

	mask := m.Apply(uniformFrame(30, 20, floor))
	assert.Zero(t, countMarked(mask))
	assert.Equal(t, 1, m.Frames())

	frame := uniformFrame(30, 20, floor)
	fillRect(frame, image.Rect(5, 5, 10, 10), animal)
	mask = m.Apply(frame)
	assert.Equal(t, 25, countMarked(mask))
	assert.Equal(t, uint8(255), mask.GrayAt(7, 7).Y)
	assert.Equal(t, uint8(0), mask.GrayAt(20, 15).Y)
	assert.Equal(t, 2, m.Frames())
}

func TestBackgroundModelIgnoresSmallChanges(t *testing.T) {
	m := NewBackgroundModel(DefaultBackgroundParams())
	m.Apply(uniformFrame(10, 10, 100))

	// Below MinDifference.
	mask := m.Apply(uniformFrame(10, 10, 110))
	assert.Zero(t, countMarked(mask))
}

func TestBackgroundModelAbsorbsStationaryObject(t *testing.T) {
	params := DefaultBackgroundParams()
	params.LearningRate = 0.5
	m := NewBackgroundModel(params)
	m.Apply(uniformFrame(10, 10, floor))

	frame := uniformFrame(10, 10, floor)
	fillRect(frame, image.Rect(2, 2, 6, 6), animal)

	first := m.Apply(frame)
	assert.Equal(t, 16, countMarked(first))

	var last *image.Gray
	for i := 0; i < 20; i++ {
		last = m.Apply(frame)
	}
	assert.Zero(t, countMarked(last), "an object that stops moving becomes background")
}

func TestBackgroundModelReset(t *testing.T) {
	m := NewBackgroundModel(DefaultBackgroundParams())
	m.Apply(uniformFrame(10, 10, floor))
	m.Reset()
	assert.Zero(t, m.Frames())

	mask := m.Apply(uniformFrame(10, 10, animal))
	assert.Zero(t, countMarked(mask), "the first frame after Reset seeds")
}

func TestClean(t *testing.T) {
	tests := []struct {
		name   string
		opts   MorphologyOptions
		rects  []image.Rectangle
		hole   *image.Point
		marked int
	}{
		{
			name:   "opening removes speckle",
			opts:   MorphologyOptions{KernelSize: 3},
			rects:  []image.Rectangle{image.Rect(3, 3, 4, 4), image.Rect(10, 10, 12, 11)},
			marked: 0,
		},
		{
			name:   "opening keeps blobs",
			opts:   MorphologyOptions{KernelSize: 3},
			rects:  []image.Rectangle{image.Rect(5, 5, 15, 15)},
			marked: 100,
		},
		{
			name:   "dilation grows blob",
			opts:   MorphologyOptions{KernelSize: 3, DilateIterations: 2},
			rects:  []image.Rectangle{image.Rect(5, 5, 15, 15)},
			marked: 14 * 14,
		},
		{
			name:   "closing fills pinhole",
			opts:   MorphologyOptions{KernelSize: 3, CloseGaps: true},
			rects:  []image.Rectangle{image.Rect(5, 5, 15, 15)},
			hole:   &image.Point{X: 10, Y: 10},
			marked: 100,
		},
		{
			name:   "kernel of one only binarizes",
			opts:   MorphologyOptions{KernelSize: 1, DilateIterations: 3},
			rects:  []image.Rectangle{image.Rect(3, 3, 4, 4)},
			marked: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := binaryMask(30, 30, tt.rects...)
			if tt.hole != nil {
				mask.Pix[mask.PixOffset(tt.hole.X, tt.hole.Y)] = 0
			}

			out := Clean(mask, tt.opts)
			assert.Equal(t, mask.Bounds(), out.Bounds())
			assert.Equal(t, tt.marked, countMarked(out))
		})
	}
}

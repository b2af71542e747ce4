package tracking

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binaryMask creates a mask with the given rectangles marked.
func binaryMask(w, h int, rects ...image.Rectangle) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for _, r := range rects {
		fillRect(mask, r, 255)
	}
	return mask
}

func TestFindContoursSquare(t *testing.T) {
	mask := binaryMask(40, 40, image.Rect(10, 10, 20, 20))

	contours := FindContours(mask)
	require.Len(t, contours, 1)

	c := contours[0]
	assert.Equal(t, 100, c.Pixels)
	assert.InDelta(t, 81.0, c.Area(), 1e-9)
	assert.Equal(t, image.Pt(10, 10), c.Points[0], "trace starts at the top-left pixel")
	assert.Len(t, c.Points, 36, "perimeter pixels of a 10x10 square")

	pos, ok := c.Centroid()
	require.True(t, ok)
	assert.InDelta(t, 14.5, pos.X, 1e-9)
	assert.InDelta(t, 14.5, pos.Y, 1e-9)
}

func TestFindContoursSortedByArea(t *testing.T) {
	mask := binaryMask(100, 100,
		image.Rect(5, 5, 10, 10),
		image.Rect(50, 50, 80, 70),
		image.Rect(20, 80, 30, 90),
	)

	contours := FindContours(mask)
	require.Len(t, contours, 3)
	assert.InDelta(t, 29.0*19.0, contours[0].Area(), 1e-9)
	assert.InDelta(t, 81.0, contours[1].Area(), 1e-9)
	assert.InDelta(t, 16.0, contours[2].Area(), 1e-9)
}

func TestFindContoursDiagonalConnectivity(t *testing.T) {
	mask := binaryMask(20, 20,
		image.Rect(2, 2, 6, 6),
		image.Rect(6, 6, 10, 10),
	)

	contours := FindContours(mask)
	require.Len(t, contours, 1, "corner-touching blobs are 8-connected")
	assert.Equal(t, 32, contours[0].Pixels)

	pos, ok := contours[0].Centroid()
	require.True(t, ok)
	assert.InDelta(t, 5.5, pos.X, 1e-9)
	assert.InDelta(t, 5.5, pos.Y, 1e-9)
}

func TestFindContoursDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		rect   image.Rectangle
		pixels int
	}{
		{"single pixel", image.Rect(5, 5, 6, 6), 1},
		{"horizontal line", image.Rect(2, 8, 15, 9), 13},
		{"vertical line", image.Rect(8, 2, 9, 15), 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contours := FindContours(binaryMask(20, 20, tt.rect))
			require.Len(t, contours, 1)
			assert.Equal(t, tt.pixels, contours[0].Pixels)
			assert.Zero(t, contours[0].Area())

			_, ok := contours[0].Centroid()
			assert.False(t, ok)
		})
	}
}

func TestFindContoursIgnoresHoles(t *testing.T) {
	mask := binaryMask(30, 30, image.Rect(5, 5, 25, 25))
	fillRect(mask, image.Rect(10, 10, 20, 20), 0)

	contours := FindContours(mask)
	require.Len(t, contours, 1)
	assert.InDelta(t, 19.0*19.0, contours[0].Area(), 1e-9, "area is enclosed by the outer boundary")
	assert.Equal(t, 400-100, contours[0].Pixels)
}

func TestFindContoursOffsetMask(t *testing.T) {
	full := binaryMask(50, 50, image.Rect(30, 30, 40, 40))
	sub := full.SubImage(image.Rect(20, 20, 50, 50)).(*image.Gray)

	contours := FindContours(sub)
	require.Len(t, contours, 1)
	assert.Equal(t, image.Pt(30, 30), contours[0].Points[0])

	pos, ok := contours[0].Centroid()
	require.True(t, ok)
	assert.InDelta(t, 34.5, pos.X, 1e-9)
	assert.InDelta(t, 34.5, pos.Y, 1e-9)
}

func TestFindContoursEmpty(t *testing.T) {
	assert.Empty(t, FindContours(image.NewGray(image.Rect(0, 0, 10, 10))))
}

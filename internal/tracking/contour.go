package tracking

import (
	"image"
	"sort"

	"github.com/ironsheep/maze-zone-mcp/internal/geometry"
)

// Contour is the outer boundary of one connected foreground component.
type Contour struct {
	// Points is the boundary traced through pixel centers, clockwise on
	// screen, starting at the component's top-left pixel. The closing edge
	// back to the first point is implicit.
	Points []image.Point

	// Pixels is the number of foreground pixels in the component.
	Pixels int

	// Spatial moments of the boundary polygon.
	M00, M10, M01 float64
}

// Area returns the area enclosed by the boundary polygon.
//
// A component one pixel wide encloses no area, whatever its length.
func (c Contour) Area() float64 { return c.M00 }

// Centroid returns the area-weighted center m10/m00, m01/m00. It reports
// false for a contour with zero area.
func (c Contour) Centroid() (geometry.Point, bool) {
	return centroid(c.M00, c.M10, c.M01)
}

func centroid(m00, m10, m01 float64) (geometry.Point, bool) {
	if m00 == 0 {
		return geometry.Point{}, false
	}
	return geometry.Point{X: m10 / m00, Y: m01 / m00}, true
}

// moore lists the 8 neighbor offsets clockwise on screen, starting east.
var moore = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// west is the index of {-1, 0} in moore.
const west = 4

// FindContours extracts the outer contour of every 8-connected component of
// non-zero pixels in mask, sorted by area, largest first.
//
// # Algorithm
//
//  1. Labeling: scan in raster order; each unvisited foreground pixel starts
//     an iterative flood fill that marks its whole component.
//  2. Tracing: Moore-neighbor tracing from the component's first raster
//     pixel walks its outer boundary. Holes are ignored.
//  3. Moments: m00, m10 and m01 of the boundary polygon by Green's theorem.
func FindContours(mask *image.Gray) []Contour {
	b := mask.Bounds()
	width, height := b.Dx(), b.Dy()

	fg := make([][]bool, height)
	visited := make([][]bool, height)
	for y := 0; y < height; y++ {
		fg[y] = make([]bool, width)
		visited[y] = make([]bool, width)
		row := mask.Pix[y*mask.Stride : y*mask.Stride+width]
		for x, v := range row {
			fg[y][x] = v != 0
		}
	}

	contours := make([]Contour, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !fg[y][x] || visited[y][x] {
				continue
			}
			pixels := floodFill(fg, visited, x, y, width, height)
			pts := traceBoundary(fg, image.Point{X: x, Y: y}, width, height)
			c := Contour{Points: pts, Pixels: pixels}
			c.M00, c.M10, c.M01 = polygonMoments(pts)
			// Report in mask coordinates.
			for i := range c.Points {
				c.Points[i] = c.Points[i].Add(b.Min)
			}
			c.M10 += c.M00 * float64(b.Min.X)
			c.M01 += c.M00 * float64(b.Min.Y)
			contours = append(contours, c)
		}
	}

	sort.SliceStable(contours, func(i, j int) bool {
		return contours[i].M00 > contours[j].M00
	})
	return contours
}

// floodFill marks the 8-connected component containing (startX, startY) as
// visited and returns its pixel count.
//
// Uses an explicit stack rather than recursion so large blobs cannot
// overflow the goroutine stack.
func floodFill(fg, visited [][]bool, startX, startY, width, height int) int {
	stack := []image.Point{{X: startX, Y: startY}}
	count := 0

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !fg[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		count++

		for _, d := range moore {
			stack = append(stack, p.Add(d))
		}
	}
	return count
}

// traceBoundary walks the outer boundary of the component whose first pixel
// in raster order is start.
//
// The walk stops when it is about to leave start the same way it first did
// (Jacob's stopping criterion), which handles components that pass through
// start more than once.
func traceBoundary(fg [][]bool, start image.Point, width, height int) []image.Point {
	isFG := func(p image.Point) bool {
		return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height && fg[p.Y][p.X]
	}

	pts := []image.Point{start}
	cur := start
	// start is first in raster order, so its west neighbor is background.
	back := west
	limit := 4*width*height + 8

	for step := 0; step < limit; step++ {
		next, nextBack, ok := mooreStep(isFG, cur, back)
		if !ok {
			// Isolated pixel.
			break
		}
		if cur == start && len(pts) > 1 && next == pts[1] {
			break
		}
		pts = append(pts, next)
		cur, back = next, nextBack
	}

	if len(pts) > 1 && pts[len(pts)-1] == start {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// mooreStep searches the neighbors of cur clockwise, starting just after the
// backtrack direction, and returns the first foreground neighbor together
// with the backtrack direction to use from it.
func mooreStep(isFG func(image.Point) bool, cur image.Point, back int) (image.Point, int, bool) {
	for i := 1; i <= 8; i++ {
		d := (back + i) % 8
		n := cur.Add(moore[d])
		if !isFG(n) {
			continue
		}
		// The last background cell examined becomes the new backtrack.
		prev := cur.Add(moore[(d+7)%8])
		return n, direction(prev.Sub(n)), true
	}
	return cur, back, false
}

// direction returns the moore index of a unit offset.
func direction(off image.Point) int {
	for i, d := range moore {
		if d == off {
			return i
		}
	}
	return west
}

// polygonMoments returns m00, m10 and m01 of the closed polygon through pts,
// oriented so that m00 is non-negative.
func polygonMoments(pts []image.Point) (m00, m10, m01 float64) {
	n := len(pts)
	if n < 3 {
		return 0, 0, 0
	}
	for i := 0; i < n; i++ {
		xi, yi := float64(pts[i].X), float64(pts[i].Y)
		xj, yj := float64(pts[(i+1)%n].X), float64(pts[(i+1)%n].Y)
		a := xi*yj - xj*yi
		m00 += a
		m10 += a * (xi + xj)
		m01 += a * (yi + yj)
	}
	m00 /= 2
	m10 /= 6
	m01 /= 6
	if m00 < 0 {
		m00, m10, m01 = -m00, -m10, -m01
	}
	return m00, m10, m01
}

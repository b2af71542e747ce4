package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
)

// DefaultGridColor is a translucent yellow that stays readable over both
// dark and bright maze floors.
var DefaultGridColor = color.NRGBA{255, 255, 0, 110}

// DrawGrid draws a coordinate grid every spacing pixels, so zone vertices
// can be read off a frame. With labels set each intersection is annotated
// with its "x,y" coordinates.
func DrawGrid(dst *image.RGBA, spacing int, c color.Color, labels bool) {
	if spacing <= 0 {
		return
	}
	b := dst.Bounds()
	src := image.NewUniform(c)

	for x := b.Min.X + spacing; x < b.Max.X; x += spacing {
		draw.Draw(dst, image.Rect(x, b.Min.Y, x+1, b.Max.Y), src, image.Point{}, draw.Over)
	}
	for y := b.Min.Y + spacing; y < b.Max.Y; y += spacing {
		draw.Draw(dst, image.Rect(b.Min.X, y, b.Max.X, y+1), src, image.Point{}, draw.Over)
	}

	if !labels {
		return
	}

	dc := gg.NewContextForRGBA(dst)
	for y := b.Min.Y + spacing; y < b.Max.Y; y += spacing {
		for x := b.Min.X + spacing; x < b.Max.X; x += spacing {
			label := fmt.Sprintf("%d,%d", x, y)
			w, h := dc.MeasureString(label)
			dc.SetRGBA(0, 0, 0, 0.7)
			dc.DrawRectangle(float64(x+1), float64(y+1), w+2, h+2)
			dc.Fill()
			dc.SetColor(color.White)
			dc.DrawStringAnchored(label, float64(x+2), float64(y+2), 0, 1)
		}
	}
}

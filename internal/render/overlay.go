package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/maze-zone-mcp/internal/geometry"
)

// Style controls overlay appearance.
type Style struct {
	// InsideColor draws regions the object is in, and the hit box when the
	// object is in any region.
	InsideColor color.Color

	// OutsideColor draws every other region and the hit box otherwise.
	OutsideColor color.Color

	// Thickness is the region outline width in pixels.
	Thickness float64

	// HitboxSize is half the side of the square drawn around the object.
	HitboxSize int

	// Labels writes each region's identifier above it, and coordinates on
	// the grid.
	Labels bool

	// GridSpacing draws a coordinate grid under the regions when positive.
	GridSpacing int

	// GridColor is the grid line color; DefaultGridColor when nil.
	GridColor color.Color
}

// DefaultStyle returns red for occupied regions and green for the rest.
func DefaultStyle() Style {
	return Style{
		InsideColor:  color.RGBA{255, 0, 0, 255},
		OutsideColor: color.RGBA{0, 255, 0, 255},
		Thickness:    2,
		HitboxSize:   10,
		Labels:       true,
	}
}

// ParseColor parses "#RRGGBB" or "#RGB", with or without the leading '#'.
func ParseColor(hex string) (color.RGBA, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Overlay returns a copy of frame with every region drawn in its occupancy
// color and a hit box around pos.
//
// Parameters:
//   - frame: Source frame; not modified.
//   - regions: Regions to draw, in set order.
//   - inside: Region IDs the object is currently in. Missing IDs are
//     outside.
//   - pos: Object position, or nil to omit the hit box.
//   - style: Colors and sizes.
func Overlay(frame image.Image, regions *geometry.RegionSet, inside map[string]bool, pos *geometry.Point, style Style) *image.RGBA {
	b := frame.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, frame, b.Min, draw.Src)

	if style.GridSpacing > 0 {
		gc := style.GridColor
		if gc == nil {
			gc = DefaultGridColor
		}
		DrawGrid(out, style.GridSpacing, gc, style.Labels)
	}

	anyInside := false
	for _, r := range regions.Regions() {
		c := style.OutsideColor
		if inside[r.ID()] {
			c = style.InsideColor
			anyInside = true
		}
		r.Draw(out, c, style.Thickness)
	}

	if style.Labels {
		dc := gg.NewContextForRGBA(out)
		for _, r := range regions.Regions() {
			c := style.OutsideColor
			if inside[r.ID()] {
				c = style.InsideColor
			}
			dc.SetColor(c)
			if circle, ok := r.(*geometry.Circle); ok {
				ctr := circle.Center()
				dc.DrawStringAnchored(r.ID(), ctr.X, ctr.Y-circle.Radius()-4, 0.5, 0)
				continue
			}
			rb := r.Bounds()
			dc.DrawStringAnchored(r.ID(), float64(rb.Min.X), float64(rb.Min.Y)-4, 0, 0)
		}
	}

	if pos != nil && style.HitboxSize > 0 {
		c := style.OutsideColor
		if anyInside {
			c = style.InsideColor
		}
		DrawHitbox(out, *pos, style.HitboxSize, c)
	}
	return out
}

// DrawHitbox strokes a square of half-side half around p.
func DrawHitbox(dst *image.RGBA, p geometry.Point, half int, c color.Color) {
	h := float64(half)
	dc := gg.NewContextForRGBA(dst)
	dc.SetColor(c)
	dc.SetLineWidth(2)
	dc.DrawRectangle(p.X-h, p.Y-h, 2*h, 2*h)
	dc.Stroke()
}

// MaskImage turns a binary mask into an opaque RGBA image, painting marked
// pixels with c over black.
func MaskImage(mask *image.Gray, c color.Color) *image.RGBA {
	b := mask.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, image.NewUniform(color.Black), image.Point{}, draw.Src)
	// Gray reports every pixel as opaque; reinterpret the levels as alpha.
	alpha := &image.Alpha{Pix: mask.Pix, Stride: mask.Stride, Rect: mask.Rect}
	draw.DrawMask(out, b, image.NewUniform(c), image.Point{}, alpha, b.Min, draw.Over)
	return out
}

// ImageResult is an encoded image returned to tool callers.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Encode PNG-encodes img as base64, optionally rescaled.
//
// A scale of 1, or one that is not positive, keeps the source size. Other
// values resize with a Lanczos filter.
func Encode(img image.Image, scale float64) (*ImageResult, error) {
	if scale != 1.0 && scale > 0 {
		w := int(float64(img.Bounds().Dx()) * scale)
		h := int(float64(img.Bounds().Dy()) * scale)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("scale %g leaves an empty image", scale)
		}
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &ImageResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Save writes img to path; the format follows the file extension.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

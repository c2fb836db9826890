// Package render holds raster effects shared by the overlay layers.
package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures a drop shadow.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadowOptions returns the soft shadow drawn under a selected text
// box.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  4,
		Offset:  image.Pt(2, 3),
		Opacity: 0.35,
	}
}

// DropShadow paints a blurred shadow of rect onto dst, shifted by
// opts.Offset. Callers draw the shadowed content afterwards so it sits on
// top. Parts of the shadow outside dst are clipped.
func DropShadow(dst *image.RGBA, rect image.Rectangle, opts ShadowOptions) {
	if dst == nil || rect.Empty() || opts.Opacity <= 0 {
		return
	}
	opacity := min(opts.Opacity, 1)
	radius := max(opts.Radius, 0)

	padded := rect.Inset(-radius)
	mask := image.NewGray(padded.Sub(padded.Min))
	inner := rect.Sub(padded.Min)
	draw.Draw(mask, inner, image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
	blurred := blurGray(mask, radius)

	target := padded.Add(opts.Offset)
	clip := target.Intersect(dst.Bounds())
	if clip.Empty() {
		return
	}
	alpha := uint8(opacity*255 + 0.5)
	if alpha == 0 {
		return
	}
	draw.DrawMask(dst, clip, image.NewUniform(color.RGBA{A: alpha}), image.Point{}, blurred, clip.Min.Sub(target.Min), draw.Over)
}

func blurGray(src *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		out := image.NewGray(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	tmp := image.NewGray(bounds)
	dst := image.NewGray(bounds)

	prefix := make([]int, max(w, h)+1)
	for y := 0; y < h; y++ {
		row := y * src.Stride
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(src.Pix[row+x])
		}
		for x := 0; x < w; x++ {
			x0 := max(x-radius, 0)
			x1 := min(x+radius, w-1)
			tmp.Pix[y*tmp.Stride+x] = uint8((prefix[x1+1] - prefix[x0]) / (x1 - x0 + 1))
		}
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			y0 := max(y-radius, 0)
			y1 := min(y+radius, h-1)
			dst.Pix[y*dst.Stride+x] = uint8((prefix[y1+1] - prefix[y0]) / (y1 - y0 + 1))
		}
	}

	return dst
}

// Package composite blends layer images with the canvas blend modes.
package composite

import (
	"image"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"

	"github.com/gogpu/gpubridge/gpucore"
)

type blendFunc func(bg, fg image.Image) *image.RGBA

var modes = map[gpucore.BlendMode]blendFunc{
	gpucore.BlendModeNormal:     blend.Normal,
	gpucore.BlendModeMultiply:   blend.Multiply,
	gpucore.BlendModeScreen:     blend.Screen,
	gpucore.BlendModeOverlay:    blend.Overlay,
	gpucore.BlendModeSoftLight:  blend.SoftLight,
	gpucore.BlendModeHardLight:  hardLight,
	gpucore.BlendModeColorDodge: blend.ColorDodge,
	gpucore.BlendModeColorBurn:  blend.ColorBurn,
	gpucore.BlendModeDarken:     blend.Darken,
	gpucore.BlendModeLighten:    blend.Lighten,
	gpucore.BlendModeDifference: blend.Difference,
	gpucore.BlendModeExclusion:  blend.Exclusion,
}

// hardLight is overlay with the operands swapped.
func hardLight(bg, fg image.Image) *image.RGBA {
	return blend.Overlay(fg, bg)
}

// Over blends fg onto bg with the given mode and opacity and returns a new
// image with bg's bounds. Unknown modes blend as normal; opacity is clamped
// to [0,1].
func Over(bg, fg *image.RGBA, mode gpucore.BlendMode, opacity float64) *image.RGBA {
	switch {
	case opacity <= 0:
		return clone.AsRGBA(bg)
	case opacity > 1:
		opacity = 1
	}
	fn, ok := modes[mode]
	if !ok {
		fn = blend.Normal
	}
	out := fn(bg, fg)
	if mode == gpucore.BlendModeHardLight {
		// Swapping operands also swaps which alpha wins; keep the
		// backdrop wherever the layer is transparent.
		out = blend.Normal(bg, maskAlpha(out, fg))
	}
	if opacity < 1 {
		out = blend.Opacity(bg, out, opacity)
	}
	return out
}

// maskAlpha returns img with fg's alpha channel.
func maskAlpha(img, fg *image.RGBA) *image.RGBA {
	out := clone.AsRGBA(img)
	for i := 3; i < len(out.Pix) && i < len(fg.Pix); i += 4 {
		a := fg.Pix[i]
		if a == out.Pix[i] {
			continue
		}
		// Rescale the premultiplied colour to the new alpha.
		if out.Pix[i] == 0 {
			out.Pix[i-3], out.Pix[i-2], out.Pix[i-1], out.Pix[i] = 0, 0, 0, 0
			continue
		}
		for c := i - 3; c < i; c++ {
			out.Pix[c] = uint8(int(out.Pix[c]) * int(a) / int(out.Pix[i]))
		}
		out.Pix[i] = a
	}
	return out
}

// Flip mirrors img horizontally or vertically.
func Flip(img image.Image, horizontal bool) *image.RGBA {
	if horizontal {
		return transform.FlipH(img)
	}
	return transform.FlipV(img)
}

// Crop returns the part of img inside r, translated to the origin.
func Crop(img image.Image, r image.Rectangle) *image.RGBA {
	return transform.Crop(img, r)
}

// Resize scales img to w×h with bilinear filtering.
func Resize(img image.Image, w, h int) *image.RGBA {
	return transform.Resize(img, w, h, transform.Linear)
}

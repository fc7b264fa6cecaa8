// Package mipmap builds mip chains on the CPU.
//
// Four-byte colour formats are filtered with x/image/draw; every other
// format is point-sampled texel by texel, which keeps float and packed
// formats byte-exact.
package mipmap

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Size returns the dimensions of a mip level, never smaller than 1x1.
func Size(width, height, level int) (int, int) {
	w, h := width>>level, height>>level
	return max(w, 1), max(h, 1)
}

// Generate derives levels 1..len(levels)-1 from levels[0] in place.
// Each level slice must already be sized for its dimensions.
// filter selects bilinear filtering and is only honoured for bpp == 4.
func Generate(levels [][]byte, width, height, bpp int, filter bool) {
	for l := 1; l < len(levels); l++ {
		sw, sh := Size(width, height, l-1)
		dw, dh := Size(width, height, l)
		if filter && bpp == 4 {
			scaleRGBA(levels[l-1], sw, sh, levels[l], dw, dh)
		} else {
			nearest(levels[l-1], sw, sh, levels[l], dw, dh, bpp)
		}
	}
}

// Chain allocates and fills a full chain of n levels from base.
func Chain(base []byte, width, height, bpp, n int, filter bool) [][]byte {
	levels := make([][]byte, max(n, 1))
	levels[0] = base
	for l := 1; l < len(levels); l++ {
		w, h := Size(width, height, l)
		levels[l] = make([]byte, w*h*bpp)
	}
	Generate(levels, width, height, bpp, filter)
	return levels
}

func scaleRGBA(src []byte, sw, sh int, dst []byte, dw, dh int) {
	// Channel order does not matter for a linear filter, so BGRA data is
	// scaled as if it were RGBA.
	s := &image.RGBA{Pix: src, Stride: sw * 4, Rect: image.Rect(0, 0, sw, sh)}
	d := &image.RGBA{Pix: dst, Stride: dw * 4, Rect: image.Rect(0, 0, dw, dh)}
	xdraw.BiLinear.Scale(d, d.Rect, s, s.Rect, xdraw.Src, nil)
}

func nearest(src []byte, sw, sh int, dst []byte, dw, dh, bpp int) {
	for y := 0; y < dh; y++ {
		sy := min(y*sh/dh, sh-1)
		for x := 0; x < dw; x++ {
			sx := min(x*sw/dw, sw-1)
			copy(dst[(y*dw+x)*bpp:(y*dw+x+1)*bpp], src[(sy*sw+sx)*bpp:])
		}
	}
}

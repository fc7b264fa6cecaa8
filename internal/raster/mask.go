package raster

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/gogpu/gpubridge/gpucore"
)

// Mask accumulates coverage for one shape.
type Mask struct {
	*image.Alpha
}

// NewMask creates an empty mask of the given size.
func NewMask(w, h int) Mask {
	return Mask{image.NewAlpha(image.Rect(0, 0, w, h))}
}

// AddPolygon rasterizes a closed polygon and unions it into m.
// Only the polygon's bounding box is rasterized.
func (m Mask) AddPolygon(pts []gpucore.Point) {
	if len(pts) < 3 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			return
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	b := m.Bounds()
	box := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1,
	).Intersect(b)
	if box.Empty() {
		return
	}

	r := vector.NewRasterizer(box.Dx(), box.Dy())
	r.DrawOp = draw.Src
	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	r.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		r.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	r.ClosePath()

	tmp := image.NewAlpha(image.Rect(0, 0, box.Dx(), box.Dy()))
	r.Draw(tmp, tmp.Bounds(), image.Opaque, image.Point{})

	for y := 0; y < box.Dy(); y++ {
		src := tmp.Pix[y*tmp.Stride : y*tmp.Stride+box.Dx()]
		off := m.PixOffset(box.Min.X, box.Min.Y+y)
		dst := m.Pix[off : off+box.Dx()]
		for x, a := range src {
			if a > dst[x] {
				dst[x] = a
			}
		}
	}
}

// Hatch keeps only the coverage on the pattern's lines. Solid and
// unknown patterns leave the mask unchanged.
func (m Mask) Hatch(p gpucore.FillPattern) {
	const spacing = 8
	var on func(x, y int) bool
	switch p {
	case gpucore.FillPatternHorizontal:
		on = func(_, y int) bool { return y%spacing == 0 }
	case gpucore.FillPatternVertical:
		on = func(x, _ int) bool { return x%spacing == 0 }
	case gpucore.FillPatternDiagonal:
		on = func(x, y int) bool { return (x+y)%spacing == 0 }
	case gpucore.FillPatternCrosshatch:
		on = func(x, y int) bool { return x%spacing == 0 || y%spacing == 0 }
	default:
		return
	}
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !on(x, y) {
				m.Pix[m.PixOffset(x, y)] = 0
			}
		}
	}
}

// Paint composites c over dst through the mask.
func (m Mask) Paint(dst *image.RGBA, c gpucore.Color) {
	if c.Alpha <= 0 {
		return
	}
	draw.DrawMask(dst, dst.Bounds(), image.NewUniform(c.NRGBA()), image.Point{}, m.Alpha, dst.Bounds().Min, draw.Over)
}

package raster

import (
	"math"

	"github.com/gogpu/gpubridge/gpucore"
)

// miterLimit is the longest miter, in half line widths, before a join is
// bevelled.
const miterLimit = 4

// RectPolygon returns the corners of r.
func RectPolygon(r gpucore.Rect) []gpucore.Point {
	return []gpucore.Point{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}
}

// EllipsePolygon flattens an axis-aligned ellipse.
func EllipsePolygon(c gpucore.Point, rx, ry float64) []gpucore.Point {
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		return nil
	}
	n := max(16, int(math.Ceil(math.Pi*(rx+ry)/2)))
	pts := make([]gpucore.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = gpucore.Point{X: c.X + rx*math.Cos(a), Y: c.Y + ry*math.Sin(a)}
	}
	return pts
}

// Stroke expands a polyline into polygons covering its outline.
func Stroke(pts []gpucore.Point, closed bool, style gpucore.LineStyle) [][]gpucore.Point {
	width := style.Width
	if width <= 0 {
		width = 1
	}
	pts = dedupe(pts)
	if closed && len(pts) > 2 {
		pts = append(pts, pts[0])
	}
	if len(pts) == 1 {
		if style.CapStyle == gpucore.LineCapRound {
			return [][]gpucore.Point{EllipsePolygon(pts[0], width/2, width/2)}
		}
		return nil
	}

	var out [][]gpucore.Point
	for _, seg := range dash(pts, style.DashPattern) {
		out = append(out, strokeOpen(seg, closed && len(style.DashPattern) == 0, width, style)...)
	}
	return out
}

func strokeOpen(pts []gpucore.Point, closed bool, width float64, style gpucore.LineStyle) [][]gpucore.Point {
	half := width / 2
	var out [][]gpucore.Point

	for i := 0; i+1 < len(pts); i++ {
		p0, p1 := pts[i], pts[i+1]
		nx, ny, ok := normal(p0, p1)
		if !ok {
			continue
		}
		if !closed && style.CapStyle == gpucore.LineCapSquare {
			dx, dy := ny, -nx // unit direction
			if i == 0 {
				p0 = gpucore.Point{X: p0.X - dx*half, Y: p0.Y - dy*half}
			}
			if i+2 == len(pts) {
				p1 = gpucore.Point{X: p1.X + dx*half, Y: p1.Y + dy*half}
			}
		}
		out = append(out, []gpucore.Point{
			{X: p0.X + nx*half, Y: p0.Y + ny*half},
			{X: p0.X - nx*half, Y: p0.Y - ny*half},
			{X: p1.X - nx*half, Y: p1.Y - ny*half},
			{X: p1.X + nx*half, Y: p1.Y + ny*half},
		})
	}

	last := len(pts) - 1
	for i := 1; i < last; i++ {
		out = append(out, join(pts[i-1], pts[i], pts[i+1], half, style.JoinStyle)...)
	}
	if closed && last >= 2 {
		out = append(out, join(pts[last-1], pts[0], pts[1], half, style.JoinStyle)...)
	}
	if !closed && style.CapStyle == gpucore.LineCapRound {
		out = append(out, EllipsePolygon(pts[0], half, half), EllipsePolygon(pts[last], half, half))
	}
	return out
}

func join(prev, at, next gpucore.Point, half float64, style gpucore.LineJoin) [][]gpucore.Point {
	n0x, n0y, ok0 := normal(prev, at)
	n1x, n1y, ok1 := normal(at, next)
	if !ok0 || !ok1 {
		return nil
	}
	if style == gpucore.LineJoinRound {
		return [][]gpucore.Point{EllipsePolygon(at, half, half)}
	}

	// The outer side is the one the path turns away from.
	side := 1.0
	if cross := (at.X-prev.X)*(next.Y-at.Y) - (at.Y-prev.Y)*(next.X-at.X); cross > 0 {
		side = -1
	}
	a := gpucore.Point{X: at.X + side*n0x*half, Y: at.Y + side*n0y*half}
	b := gpucore.Point{X: at.X + side*n1x*half, Y: at.Y + side*n1y*half}
	bevel := [][]gpucore.Point{{at, a, b}}
	if style == gpucore.LineJoinBevel {
		return bevel
	}

	// Miter: intersect the two offset edges along the bisector.
	mx, my := n0x+n1x, n0y+n1y
	ml := math.Hypot(mx, my)
	if ml < 1e-9 {
		return bevel
	}
	cos := (n0x*mx + n0y*my) / ml
	if cos < 1e-9 || 1/cos > miterLimit {
		return bevel
	}
	scale := half / cos / ml
	tip := gpucore.Point{X: at.X + side*mx*scale, Y: at.Y + side*my*scale}
	return [][]gpucore.Point{{at, a, tip, b}}
}

func normal(p0, p1 gpucore.Point) (nx, ny float64, ok bool) {
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	l := math.Hypot(dx, dy)
	if l < 1e-9 {
		return 0, 0, false
	}
	return -dy / l, dx / l, true
}

func dedupe(pts []gpucore.Point) []gpucore.Point {
	out := make([]gpucore.Point, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}

// dash splits a polyline into the "on" runs of a dash pattern. An empty or
// non-positive pattern yields the polyline unchanged.
func dash(pts []gpucore.Point, pattern []float64) [][]gpucore.Point {
	total := 0.0
	for _, d := range pattern {
		if d < 0 {
			return [][]gpucore.Point{pts}
		}
		total += d
	}
	if total <= 0 {
		return [][]gpucore.Point{pts}
	}
	if len(pattern)%2 == 1 {
		pattern = append(append([]float64(nil), pattern...), pattern...)
	}

	var out [][]gpucore.Point
	idx, left, on := 0, pattern[0], true
	cur := []gpucore.Point{pts[0]}
	for i := 0; i+1 < len(pts); i++ {
		p0, p1 := pts[i], pts[i+1]
		segLen := math.Hypot(p1.X-p0.X, p1.Y-p0.Y)
		pos := 0.0
		for segLen-pos > left {
			pos += left
			t := pos / segLen
			q := gpucore.Point{X: p0.X + (p1.X-p0.X)*t, Y: p0.Y + (p1.Y-p0.Y)*t}
			if on {
				out = append(out, append(cur, q))
			}
			cur = []gpucore.Point{q}
			on = !on
			idx = (idx + 1) % len(pattern)
			left = pattern[idx]
		}
		left -= segLen - pos
		if on {
			cur = append(cur, p1)
		} else {
			cur = []gpucore.Point{p1}
		}
	}
	if on && len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

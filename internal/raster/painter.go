package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/gpubridge/gpucore"
)

// Draw paints one command into dst.
func Draw(dst *image.RGBA, cmd *gpucore.DrawingCommand) error {
	d, s := &cmd.Data, &cmd.Style
	switch cmd.Type {
	case gpucore.CommandLine:
		if d.From == nil || d.To == nil {
			return fmt.Errorf("raster: line needs from and to")
		}
		stroke(dst, []gpucore.Point{*d.From, *d.To}, false, s.Line)
	case gpucore.CommandRectangle:
		if d.Rect == nil {
			return fmt.Errorf("raster: rectangle needs rect")
		}
		shape(dst, RectPolygon(*d.Rect), true, s)
	case gpucore.CommandCircle:
		if d.Circle == nil {
			return fmt.Errorf("raster: circle needs circle")
		}
		shape(dst, EllipsePolygon(d.Circle.Center, d.Circle.Radius, d.Circle.Radius), true, s)
	case gpucore.CommandEllipse:
		if d.Ellipse == nil {
			return fmt.Errorf("raster: ellipse needs ellipse")
		}
		shape(dst, EllipsePolygon(d.Ellipse.Center, d.Ellipse.RadiusX, d.Ellipse.RadiusY), true, s)
	case gpucore.CommandPath:
		if d.Path == nil {
			return fmt.Errorf("raster: path needs points")
		}
		shape(dst, d.Path.Points, d.Path.Closed, s)
	case gpucore.CommandText:
		if d.At == nil || s.Text == nil {
			return fmt.Errorf("raster: text needs a position and style")
		}
		return Text(dst, d.Text, *d.At, *s.Text)
	case gpucore.CommandImage:
		return drawImage(dst, d)
	default:
		return fmt.Errorf("raster: unknown command %q", cmd.Type)
	}
	return nil
}

// shape fills then strokes. A closed shape without any style is filled black.
func shape(dst *image.RGBA, pts []gpucore.Point, closed bool, s *gpucore.Style) {
	if s.Fill != nil && closed && len(pts) >= 3 {
		m := NewMask(dst.Bounds().Dx(), dst.Bounds().Dy())
		m.AddPolygon(pts)
		m.Hatch(s.Fill.Pattern)
		m.Paint(dst, s.Fill.Color)
	}
	if s.Line != nil {
		stroke(dst, pts, closed, s.Line)
	}
	if s.Fill == nil && s.Line == nil && closed {
		m := NewMask(dst.Bounds().Dx(), dst.Bounds().Dy())
		m.AddPolygon(pts)
		m.Paint(dst, gpucore.Black)
	}
}

func stroke(dst *image.RGBA, pts []gpucore.Point, closed bool, style *gpucore.LineStyle) {
	if style == nil {
		style = &gpucore.LineStyle{Color: gpucore.Black, Width: 1}
	}
	m := NewMask(dst.Bounds().Dx(), dst.Bounds().Dy())
	for _, poly := range Stroke(pts, closed, *style) {
		m.AddPolygon(poly)
	}
	m.Paint(dst, style.Color)
}

func drawImage(dst *image.RGBA, d *gpucore.CommandData) error {
	w, h := d.ImageWidth, d.ImageHeight
	if w <= 0 || h <= 0 || len(d.ImagePixels) < w*h*4 {
		return fmt.Errorf("raster: image needs %dx%d RGBA pixels", w, h)
	}
	src := &image.NRGBA{Pix: d.ImagePixels[:w*h*4], Stride: w * 4, Rect: image.Rect(0, 0, w, h)}

	sr := src.Bounds()
	if d.SourceRect != nil {
		sr = rectOf(*d.SourceRect).Intersect(sr)
	}
	var dr image.Rectangle
	switch {
	case d.DestRect != nil:
		dr = rectOf(*d.DestRect)
	case d.At != nil:
		dr = sr.Sub(sr.Min).Add(image.Pt(int(d.At.X), int(d.At.Y)))
	default:
		dr = sr.Sub(sr.Min)
	}
	if sr.Empty() || dr.Empty() {
		return nil
	}

	opts := &xdraw.Options{}
	if d.Opacity > 0 && d.Opacity < 1 {
		opts.DstMask = image.NewUniform(color.Alpha{A: uint8(d.Opacity*255 + 0.5)})
	}
	if sr.Dx() == dr.Dx() && sr.Dy() == dr.Dy() && opts.DstMask == nil {
		draw.Draw(dst, dr, src, sr.Min, draw.Over)
		return nil
	}
	xdraw.BiLinear.Scale(dst, dr, src, sr, xdraw.Over, opts)
	return nil
}

func rectOf(r gpucore.Rect) image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X+r.Width), int(r.Y+r.Height))
}

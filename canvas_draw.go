package gpubridge

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/internal/composite"
	"github.com/gogpu/gpubridge/internal/handle"
	"github.com/gogpu/gpubridge/internal/textmeasure"
)

// ImageOptions positions an image drawn by DrawImage2D. DestRect wins over
// At; with neither the image is drawn at the origin. A nil SourceRect uses
// the whole texture. Opacity 0 draws fully opaque.
type ImageOptions struct {
	At         *gpucore.Point `json:"at,omitempty"`
	SourceRect *gpucore.Rect  `json:"sourceRect,omitempty"`
	DestRect   *gpucore.Rect  `json:"destRect,omitempty"`
	Opacity    float64        `json:"opacity,omitempty"`
}

// record stamps cmd and appends it to the active layer, or paints it into
// the base image when no layer is active. Callers hold r.mu.
func (r *Registry) record(c *canvasEntry, cmd gpucore.DrawingCommand) (ID, error) {
	r.commands++
	cmd.ID = fmt.Sprintf("cmd-%d", r.commands)
	cmd.Timestamp = r.clock().UnixMilli()

	if c.active != handle.Invalid {
		for _, l := range c.layers {
			if l.h == c.active {
				l.commands = append(l.commands, cmd)
				c.dirty = true
				return ID(cmd.ID), nil
			}
		}
	}
	if err := r.rasterizeInto(c.base, &cmd); err != nil {
		return "", err
	}
	c.dirty = true
	return ID(cmd.ID), nil
}

func (r *Registry) draw(id ID, build func(c *canvasEntry) (gpucore.DrawingCommand, error)) (ID, error) {
	var out ID
	err := r.withCanvas(id, func(c *canvasEntry, _ handle.Handle) error {
		cmd, err := build(c)
		if err != nil {
			return err
		}
		out, err = r.record(c, cmd)
		return err
	})
	return out, err
}

// shapeStyle picks the styles for a closed shape. With neither given the
// canvas fill style is used.
func shapeStyle(c *canvasEntry, fill *gpucore.FillStyle, line *gpucore.LineStyle) gpucore.Style {
	s := gpucore.Style{Fill: cloneFill(fill), Line: cloneLine(line)}
	if s.Fill == nil && s.Line == nil {
		s.Fill = cloneFill(&c.fill)
	}
	return s
}

func cloneLine(s *gpucore.LineStyle) *gpucore.LineStyle {
	if s == nil {
		return nil
	}
	v := *s
	v.DashPattern = append([]float64(nil), s.DashPattern...)
	return &v
}

func cloneFill(s *gpucore.FillStyle) *gpucore.FillStyle {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// DrawLine2D strokes a line. A nil style uses the canvas line style.
func (r *Registry) DrawLine2D(id ID, from, to gpucore.Point, style *gpucore.LineStyle) (ID, error) {
	return r.draw(id, func(c *canvasEntry) (gpucore.DrawingCommand, error) {
		if !finite(from.X, from.Y, to.X, to.Y) {
			return gpucore.DrawingCommand{}, fmt.Errorf("%w: line endpoints must be finite", ErrInvalidDescriptor)
		}
		if style == nil {
			style = &c.line
		}
		return gpucore.DrawingCommand{
			Type:  gpucore.CommandLine,
			Data:  gpucore.CommandData{From: &from, To: &to},
			Style: gpucore.Style{Line: cloneLine(style)},
		}, nil
	})
}

// DrawRectangle2D fills and/or strokes a rectangle.
func (r *Registry) DrawRectangle2D(id ID, rect gpucore.Rect, fill *gpucore.FillStyle, line *gpucore.LineStyle) (ID, error) {
	return r.draw(id, func(c *canvasEntry) (gpucore.DrawingCommand, error) {
		if rect.Width < 0 || rect.Height < 0 || !finite(rect.X, rect.Y, rect.Width, rect.Height) {
			return gpucore.DrawingCommand{}, fmt.Errorf("%w: rectangle %+v", ErrInvalidDescriptor, rect)
		}
		return gpucore.DrawingCommand{
			Type:  gpucore.CommandRectangle,
			Data:  gpucore.CommandData{Rect: &rect},
			Style: shapeStyle(c, fill, line),
		}, nil
	})
}

// DrawCircle2D fills and/or strokes a circle.
func (r *Registry) DrawCircle2D(id ID, circle gpucore.Circle, fill *gpucore.FillStyle, line *gpucore.LineStyle) (ID, error) {
	return r.draw(id, func(c *canvasEntry) (gpucore.DrawingCommand, error) {
		if circle.Radius < 0 || !finite(circle.Center.X, circle.Center.Y, circle.Radius) {
			return gpucore.DrawingCommand{}, fmt.Errorf("%w: circle radius %v", ErrInvalidDescriptor, circle.Radius)
		}
		return gpucore.DrawingCommand{
			Type:  gpucore.CommandCircle,
			Data:  gpucore.CommandData{Circle: &circle},
			Style: shapeStyle(c, fill, line),
		}, nil
	})
}

// DrawEllipse2D fills and/or strokes an axis-aligned ellipse.
func (r *Registry) DrawEllipse2D(id ID, e gpucore.Ellipse, fill *gpucore.FillStyle, line *gpucore.LineStyle) (ID, error) {
	return r.draw(id, func(c *canvasEntry) (gpucore.DrawingCommand, error) {
		if e.RadiusX < 0 || e.RadiusY < 0 || !finite(e.Center.X, e.Center.Y, e.RadiusX, e.RadiusY) {
			return gpucore.DrawingCommand{}, fmt.Errorf("%w: ellipse radii %v, %v", ErrInvalidDescriptor, e.RadiusX, e.RadiusY)
		}
		return gpucore.DrawingCommand{
			Type:  gpucore.CommandEllipse,
			Data:  gpucore.CommandData{Ellipse: &e},
			Style: shapeStyle(c, fill, line),
		}, nil
	})
}

// DrawPath2D draws a polyline. Closed paths are treated like other shapes;
// open paths are only stroked, with the canvas line style when line is nil.
func (r *Registry) DrawPath2D(id ID, path gpucore.Path, fill *gpucore.FillStyle, line *gpucore.LineStyle) (ID, error) {
	return r.draw(id, func(c *canvasEntry) (gpucore.DrawingCommand, error) {
		if len(path.Points) < 2 {
			return gpucore.DrawingCommand{}, fmt.Errorf("%w: path needs at least 2 points, got %d", ErrInvalidDescriptor, len(path.Points))
		}
		for _, p := range path.Points {
			if !finite(p.X, p.Y) {
				return gpucore.DrawingCommand{}, fmt.Errorf("%w: path point %+v", ErrInvalidDescriptor, p)
			}
		}
		path.Points = append([]gpucore.Point(nil), path.Points...)
		var style gpucore.Style
		if path.Closed {
			style = shapeStyle(c, fill, line)
		} else {
			if line == nil {
				line = &c.line
			}
			style.Line = cloneLine(line)
		}
		return gpucore.DrawingCommand{
			Type:  gpucore.CommandPath,
			Data:  gpucore.CommandData{Path: &path},
			Style: style,
		}, nil
	})
}

// DrawText2D draws text anchored at at. A nil style uses the canvas text
// style.
func (r *Registry) DrawText2D(id ID, text string, at gpucore.Point, style *gpucore.TextStyle) (ID, error) {
	return r.draw(id, func(c *canvasEntry) (gpucore.DrawingCommand, error) {
		if !finite(at.X, at.Y) {
			return gpucore.DrawingCommand{}, fmt.Errorf("%w: text position %+v", ErrInvalidDescriptor, at)
		}
		s := c.text
		if style != nil {
			s = *style
		}
		if s.FontSize <= 0 {
			s.FontSize = DefaultFontSize
		}
		return gpucore.DrawingCommand{
			Type:  gpucore.CommandText,
			Data:  gpucore.CommandData{Text: text, At: &at},
			Style: gpucore.Style{Text: &s},
		}, nil
	})
}

// DrawImage2D draws an 8-bit colour texture onto the canvas. The pixels are
// copied into the command, so the texture may be released afterwards.
func (r *Registry) DrawImage2D(id ID, textureID ID, opts ImageOptions) (ID, error) {
	return r.draw(id, func(c *canvasEntry) (gpucore.DrawingCommand, error) {
		if !(opts.Opacity >= 0 && opts.Opacity <= 1) {
			return gpucore.DrawingCommand{}, fmt.Errorf("%w: image opacity %v", ErrInvalidDescriptor, opts.Opacity)
		}
		t, _, err := lookup(r, r.textures, textureID, ErrTextureNotFound)
		if err != nil {
			return gpucore.DrawingCommand{}, err
		}
		if !t.desc.PixelFormat.IsRGBA8() {
			return gpucore.DrawingCommand{}, fmt.Errorf("%w: cannot draw %s texture %s", ErrUnsupportedFormat, t.desc.PixelFormat, textureID)
		}
		pix, err := r.readTexture(t)
		if err != nil {
			return gpucore.DrawingCommand{}, err
		}
		return gpucore.DrawingCommand{
			Type: gpucore.CommandImage,
			Data: gpucore.CommandData{
				ImageWidth:  t.desc.Width,
				ImageHeight: t.desc.Height,
				ImagePixels: pix,
				TextureID:   string(textureID),
				At:          opts.At,
				SourceRect:  opts.SourceRect,
				DestRect:    opts.DestRect,
				Opacity:     opts.Opacity,
			},
		}, nil
	})
}

// MeasureText2D returns the extent of text drawn with style. A style with
// no positive size is measured at DefaultFontSize.
func (r *Registry) MeasureText2D(text string, style gpucore.TextStyle) (gpucore.TextMetrics, error) {
	size := style.FontSize
	if size <= 0 {
		size = DefaultFontSize
	}
	m, err := r.measurer.Measure(text, textmeasure.FaceFor(style.FontFamily, style.Bold(), style.Italic()), size)
	if err != nil {
		return gpucore.TextMetrics{}, err
	}
	return gpucore.TextMetrics{Width: m.Width, Height: m.Height}, nil
}

// CompositeCanvas2D blends the composited image of source onto the base
// image of id, anchored at the top-left corner. Opacity must lie in [0,1].
func (r *Registry) CompositeCanvas2D(id, sourceID ID, mode gpucore.BlendMode, opacity float64) error {
	if mode == "" {
		mode = gpucore.BlendModeNormal
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: blend mode %q", ErrInvalidDescriptor, mode)
	}
	if !(opacity >= 0 && opacity <= 1) {
		return fmt.Errorf("%w: opacity %v outside [0,1]", ErrInvalidDescriptor, opacity)
	}
	return r.withCanvas(id, func(c *canvasEntry, _ handle.Handle) error {
		src, _, err := r.canvas(sourceID)
		if err != nil {
			return err
		}
		fg := image.NewRGBA(c.base.Rect)
		draw.Draw(fg, fg.Rect, src.render(), image.Point{}, draw.Src)
		c.base = composite.Over(c.base, fg, mode, opacity)
		c.dirty = true
		return nil
	})
}

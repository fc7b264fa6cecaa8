package gpubridge

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/internal/composite"
	"github.com/gogpu/gpubridge/internal/handle"
	"github.com/gogpu/gpubridge/internal/imageio"
	"github.com/gogpu/gpubridge/internal/parallel"
	"github.com/gogpu/gpubridge/internal/raster"
	"github.com/gogpu/gpubridge/translate"
)

// Default canvas styles.
var (
	DefaultLineStyle = gpucore.LineStyle{
		Color:     gpucore.Black,
		Width:     1,
		CapStyle:  gpucore.LineCapButt,
		JoinStyle: gpucore.LineJoinMiter,
	}
	DefaultFillStyle  = gpucore.FillStyle{Color: gpucore.Black, Pattern: gpucore.FillPatternSolid}
	DefaultBrushStyle = gpucore.BrushStyle{Color: gpucore.Black, Size: 1, Opacity: 1, BlendMode: gpucore.BlendModeNormal}
	DefaultTextStyle  = gpucore.TextStyle{
		FontFamily: "sans-serif",
		FontSize:   DefaultFontSize,
		FontWeight: "normal",
		FontStyle:  "normal",
		Color:      gpucore.Black,
		Alignment:  "left",
		Baseline:   "alphabetic",
	}
)

// DefaultFontSize is used when a text style has no positive size.
const DefaultFontSize = 16

// Canvas2D describes a 2D drawing canvas.
type Canvas2D struct {
	ID          ID                  `json:"id"`
	Width       int                 `json:"width"`
	Height      int                 `json:"height"`
	PixelFormat gpucore.PixelFormat `json:"pixelFormat"`

	// TextureID is the texture FlushCanvas2D uploads to. It changes when
	// the canvas is resized or cropped.
	TextureID ID `json:"textureId"`

	ActiveLayerID   ID                 `json:"activeLayerId,omitempty"`
	LayerCount      int                `json:"layerCount"`
	BackgroundColor gpucore.Color      `json:"backgroundColor"`
	LineStyle       gpucore.LineStyle  `json:"lineStyle"`
	FillStyle       gpucore.FillStyle  `json:"fillStyle"`
	TextStyle       gpucore.TextStyle  `json:"textStyle"`
	BrushStyle      gpucore.BrushStyle `json:"brushStyle"`
}

type canvasEntry struct {
	desc    gpucore.Canvas2DDescriptor
	texture handle.Handle
	// base holds everything drawn with no active layer.
	base       *image.RGBA
	background gpucore.Color

	layers []*layerEntry
	active handle.Handle

	line  gpucore.LineStyle
	fill  gpucore.FillStyle
	text  gpucore.TextStyle
	brush gpucore.BrushStyle

	// dirty is set by every change not yet uploaded by FlushCanvas2D.
	dirty bool

	pool *parallel.Pool
}

func (c *canvasEntry) snapshot(h handle.Handle) Canvas2D {
	out := Canvas2D{
		ID:              idOf(h),
		Width:           c.desc.Width,
		Height:          c.desc.Height,
		PixelFormat:     c.desc.PixelFormat,
		TextureID:       idOf(c.texture),
		LayerCount:      len(c.layers),
		BackgroundColor: c.background,
		LineStyle:       c.line,
		FillStyle:       c.fill,
		TextStyle:       c.text,
		BrushStyle:      c.brush,
	}
	out.LineStyle.DashPattern = append([]float64(nil), c.line.DashPattern...)
	if c.active != handle.Invalid {
		out.ActiveLayerID = idOf(c.active)
	}
	return out
}

// render composites the base image and the visible layers, bottom to top.
func (c *canvasEntry) render() *image.RGBA {
	out := image.NewRGBA(c.base.Rect)
	copy(out.Pix, c.base.Pix)
	var visible []*layerEntry
	for _, l := range c.layers {
		if l.visible && l.opacity > 0 && len(l.commands) > 0 {
			visible = append(visible, l)
		}
	}
	// Layers rasterize independently; compositing stays in layer order.
	images := make([]*image.RGBA, len(visible))
	tasks := make([]func(), len(visible))
	for i, l := range visible {
		tasks[i] = func() { images[i] = l.rasterize(c.base.Rect) }
	}
	c.pool.Run(tasks)
	for i, l := range visible {
		out = composite.Over(out, images[i], l.blend, l.opacity)
	}
	return out
}

// CreateCanvas2D creates a canvas with a transparent base image and an
// owned texture of the same size and format.
func (r *Registry) CreateCanvas2D(d gpucore.Canvas2DDescriptor) (Canvas2D, error) {
	if err := r.lock(); err != nil {
		return Canvas2D{}, err
	}
	defer r.mu.Unlock()
	d, err := translate.ApplyCanvasDefaults(d)
	if err != nil {
		return Canvas2D{}, invalid(err)
	}
	th, t, err := r.canvasTexture(d)
	if err != nil {
		return Canvas2D{}, err
	}
	h := r.ids.Acquire()
	t.canvas = h
	c := &canvasEntry{
		desc:       d,
		texture:    th,
		base:       image.NewRGBA(image.Rect(0, 0, d.Width, d.Height)),
		background: gpucore.Color{},
		line:       DefaultLineStyle,
		fill:       DefaultFillStyle,
		text:       DefaultTextStyle,
		brush:      DefaultBrushStyle,
		pool:       r.pool,
	}
	r.canvases[h] = c
	r.log.Debug("gpubridge: canvas created", "id", idOf(h), "w", d.Width, "h", d.Height, "texture", idOf(th))
	return c.snapshot(h), nil
}

func (r *Registry) canvasTexture(d gpucore.Canvas2DDescriptor) (handle.Handle, *textureEntry, error) {
	return r.createTexture(gpucore.TextureDescriptor{
		Width:       d.Width,
		Height:      d.Height,
		PixelFormat: d.PixelFormat,
		Usage:       gpucore.TextureUsageShaderRead,
		Label:       "canvas",
	})
}

// canvas resolves a canvas id. Callers hold r.mu.
func (r *Registry) canvas(id ID) (*canvasEntry, handle.Handle, error) {
	return lookup(r, r.canvases, id, ErrCanvasNotFound)
}

func (r *Registry) withCanvas(id ID, fn func(c *canvasEntry, h handle.Handle) error) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.mu.Unlock()
	c, h, err := r.canvas(id)
	if err != nil {
		return err
	}
	return fn(c, h)
}

// GetCanvas2D describes a live canvas.
func (r *Registry) GetCanvas2D(id ID) (Canvas2D, error) {
	if err := r.rlock(); err != nil {
		return Canvas2D{}, err
	}
	defer r.mu.RUnlock()
	c, h, err := r.canvas(id)
	if err != nil {
		return Canvas2D{}, err
	}
	return c.snapshot(h), nil
}

// ReleaseCanvas2D releases a canvas, its layers and its texture. Unknown and
// released ids are ignored.
func (r *Registry) ReleaseCanvas2D(id ID) {
	if r.lock() != nil {
		return
	}
	defer r.mu.Unlock()
	c, h, ok := peek(r, r.canvases, id)
	if !ok {
		return
	}
	for _, l := range c.layers {
		delete(r.layers, l.h)
		r.ids.Release(l.h)
	}
	if t, ok := r.textures[c.texture]; ok {
		r.releaseTexture(c.texture, t)
	}
	delete(r.canvases, h)
	r.ids.Release(h)
	r.log.Debug("gpubridge: canvas released", "id", id)
}

// ClearCanvas2D fills the base image with color and empties every layer.
// Layers themselves are kept.
func (r *Registry) ClearCanvas2D(id ID, color gpucore.Color) error {
	return r.withCanvas(id, func(c *canvasEntry, _ handle.Handle) error {
		draw.Draw(c.base, c.base.Rect, image.NewUniform(color.NRGBA()), image.Point{}, draw.Src)
		c.background = color
		for _, l := range c.layers {
			l.commands = nil
		}
		c.dirty = true
		return nil
	})
}

// ResizeCanvas2D gives the canvas a new size. The old texture is released
// and a new one created; the canvas id stays the same. The base image is
// cleared, layer commands are kept.
func (r *Registry) ResizeCanvas2D(id ID, width, height int) (Canvas2D, error) {
	var out Canvas2D
	err := r.withCanvas(id, func(c *canvasEntry, h handle.Handle) error {
		if width <= 0 || height <= 0 {
			return fmt.Errorf("%w: canvas size must be positive: %dx%d", ErrInvalidDescriptor, width, height)
		}
		if err := r.retexture(c, h, width, height); err != nil {
			return err
		}
		c.base = image.NewRGBA(image.Rect(0, 0, width, height))
		out = c.snapshot(h)
		return nil
	})
	return out, err
}

// retexture swaps the canvas texture for one of the given size. On error
// the canvas keeps its old texture.
func (r *Registry) retexture(c *canvasEntry, h handle.Handle, width, height int) error {
	d := c.desc
	d.Width, d.Height = width, height
	th, t, err := r.canvasTexture(d)
	if err != nil {
		return err
	}
	t.canvas = h
	if old, ok := r.textures[c.texture]; ok {
		r.releaseTexture(c.texture, old)
	}
	c.desc = d
	c.texture = th
	c.dirty = true
	return nil
}

// CropCanvas2D keeps the part of the canvas inside rect. Layers are
// flattened into the base image first, so they are empty afterwards.
func (r *Registry) CropCanvas2D(id ID, rect gpucore.Rect) (Canvas2D, error) {
	var out Canvas2D
	err := r.withCanvas(id, func(c *canvasEntry, h handle.Handle) error {
		area := image.Rect(int(rect.X), int(rect.Y), int(rect.X+rect.Width), int(rect.Y+rect.Height)).Intersect(c.base.Rect)
		if area.Empty() {
			return fmt.Errorf("%w: crop %+v is outside the %dx%d canvas", ErrInvalidDescriptor, rect, c.desc.Width, c.desc.Height)
		}
		cropped := composite.Crop(c.render(), area)
		if err := r.retexture(c, h, area.Dx(), area.Dy()); err != nil {
			return err
		}
		c.base = imageio.RGBA(cropped)
		c.flatten()
		out = c.snapshot(h)
		return nil
	})
	return out, err
}

// FlipCanvas2D mirrors the canvas. Layers are flattened into the base image.
func (r *Registry) FlipCanvas2D(id ID, horizontal bool) error {
	return r.withCanvas(id, func(c *canvasEntry, _ handle.Handle) error {
		c.base = imageio.RGBA(composite.Flip(c.render(), horizontal))
		c.flatten()
		c.dirty = true
		return nil
	})
}

func (c *canvasEntry) flatten() {
	for _, l := range c.layers {
		l.commands = nil
	}
}

// FlushCanvas2D uploads the composited canvas to its texture when anything
// changed since the last flush.
func (r *Registry) FlushCanvas2D(id ID) error {
	return r.withCanvas(id, func(c *canvasEntry, _ handle.Handle) error {
		if !c.dirty {
			return nil
		}
		t, ok := r.textures[c.texture]
		if !ok {
			return fmt.Errorf("%w: canvas %s has no texture", ErrTextureNotFound, id)
		}
		pix := imageio.NRGBA(c.render()).Pix
		if c.desc.PixelFormat.IsBGRA() {
			imageio.SwapRB(pix)
		}
		if err := r.writeTexture(t, gpucore.Region{Width: c.desc.Width, Height: c.desc.Height}, pix); err != nil {
			return err
		}
		c.dirty = false
		return nil
	})
}

// === Styles ===

// SetLineStyle2D sets the stroke style used when a draw call passes none.
func (r *Registry) SetLineStyle2D(id ID, s gpucore.LineStyle) error {
	return r.withCanvas(id, func(c *canvasEntry, _ handle.Handle) error {
		if s.Width < 0 {
			return fmt.Errorf("%w: line width %v", ErrInvalidDescriptor, s.Width)
		}
		s.DashPattern = append([]float64(nil), s.DashPattern...)
		c.line = s
		return nil
	})
}

// SetFillStyle2D sets the fill style used when a draw call passes none.
func (r *Registry) SetFillStyle2D(id ID, s gpucore.FillStyle) error {
	return r.withCanvas(id, func(c *canvasEntry, _ handle.Handle) error {
		c.fill = s
		return nil
	})
}

// SetTextStyle2D sets the text style used when a draw call passes none.
func (r *Registry) SetTextStyle2D(id ID, s gpucore.TextStyle) error {
	return r.withCanvas(id, func(c *canvasEntry, _ handle.Handle) error {
		if s.FontSize <= 0 {
			s.FontSize = DefaultFontSize
		}
		c.text = s
		return nil
	})
}

// SetBrushStyle2D stores the brush style. It is reported by GetCanvas2D
// for hosts that draw freehand strokes as paths.
func (r *Registry) SetBrushStyle2D(id ID, s gpucore.BrushStyle) error {
	return r.withCanvas(id, func(c *canvasEntry, _ handle.Handle) error {
		if s.BlendMode == "" {
			s.BlendMode = gpucore.BlendModeNormal
		}
		if !s.BlendMode.Valid() {
			return fmt.Errorf("%w: blend mode %q", ErrInvalidDescriptor, s.BlendMode)
		}
		c.brush = s
		return nil
	})
}

// === Transforms ===
//
// TODO: keep a per-canvas affine matrix stack and apply it to command
// geometry before rasterizing. Until then these only validate the id.

// Save2D pushes the transform state. Currently a no-op.
func (r *Registry) Save2D(id ID) error { return r.touchCanvas(id) }

// Restore2D pops the transform state. Currently a no-op.
func (r *Registry) Restore2D(id ID) error { return r.touchCanvas(id) }

// Translate2D translates the transform. Currently a no-op.
func (r *Registry) Translate2D(id ID, _, _ float64) error { return r.touchCanvas(id) }

// Rotate2D rotates the transform by radians. Currently a no-op.
func (r *Registry) Rotate2D(id ID, _ float64) error { return r.touchCanvas(id) }

// Scale2D scales the transform. Currently a no-op.
func (r *Registry) Scale2D(id ID, _, _ float64) error { return r.touchCanvas(id) }

// SetTransform2D replaces the transform with a, b, c, d, e, f. Currently a
// no-op.
func (r *Registry) SetTransform2D(id ID, _ [6]float64) error { return r.touchCanvas(id) }

func (r *Registry) touchCanvas(id ID) error {
	if err := r.rlock(); err != nil {
		return err
	}
	defer r.mu.RUnlock()
	_, _, err := r.canvas(id)
	return err
}

// rasterizeInto paints cmd into dst.
func (r *Registry) rasterizeInto(dst *image.RGBA, cmd *gpucore.DrawingCommand) error {
	if err := raster.Draw(dst, cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}
	return nil
}

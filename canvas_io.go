package gpubridge

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/internal/handle"
	"github.com/gogpu/gpubridge/internal/imageio"
)

// === Pixel access ===

func (c *canvasEntry) contains(x, y int) error {
	if !image.Pt(x, y).In(c.base.Rect) {
		return fmt.Errorf("%w: pixel (%d,%d) outside %dx%d canvas", ErrInvalidDescriptor, x, y, c.desc.Width, c.desc.Height)
	}
	return nil
}

// GetCanvas2DPixel returns the composited colour at (x, y).
func (r *Registry) GetCanvas2DPixel(id ID, x, y int) (gpucore.Color, error) {
	if err := r.rlock(); err != nil {
		return gpucore.Color{}, err
	}
	defer r.mu.RUnlock()
	c, _, err := r.canvas(id)
	if err != nil {
		return gpucore.Color{}, err
	}
	if err := c.contains(x, y); err != nil {
		return gpucore.Color{}, err
	}
	px := c.render().RGBAAt(x, y)
	return gpucore.ColorFromNRGBA(color.NRGBAModel.Convert(px).(color.NRGBA)), nil
}

// SetCanvas2DPixel writes one pixel of the base image. Layers above it are
// not affected.
func (r *Registry) SetCanvas2DPixel(id ID, x, y int, col gpucore.Color) error {
	return r.withCanvas(id, func(c *canvasEntry, _ handle.Handle) error {
		if err := c.contains(x, y); err != nil {
			return err
		}
		c.base.Set(x, y, col.NRGBA())
		c.dirty = true
		return nil
	})
}

// GetCanvas2DData returns the composited canvas as straight-alpha RGBA
// bytes, row by row.
func (r *Registry) GetCanvas2DData(id ID) ([]byte, error) {
	if err := r.rlock(); err != nil {
		return nil, err
	}
	defer r.mu.RUnlock()
	c, _, err := r.canvas(id)
	if err != nil {
		return nil, err
	}
	return imageio.NRGBA(c.render()).Pix, nil
}

// SetCanvas2DData replaces the base image with straight-alpha RGBA bytes.
// data must hold exactly width*height*4 bytes.
func (r *Registry) SetCanvas2DData(id ID, data []byte) error {
	return r.withCanvas(id, func(c *canvasEntry, _ handle.Handle) error {
		w, h := c.desc.Width, c.desc.Height
		if len(data) != w*h*4 {
			return fmt.Errorf("%w: %d bytes for a %dx%d canvas, want %d", ErrInvalidDescriptor, len(data), w, h, w*h*4)
		}
		src := &image.NRGBA{Pix: data, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
		draw.Draw(c.base, c.base.Rect, src, image.Point{}, draw.Src)
		c.dirty = true
		return nil
	})
}

// === Encoding ===

// ExportCanvas2D encodes the composited canvas as png, jpg, jpeg, bmp or
// tiff. quality only applies to jpeg.
func (r *Registry) ExportCanvas2D(id ID, format string, quality int) ([]byte, error) {
	if err := r.rlock(); err != nil {
		return nil, err
	}
	defer r.mu.RUnlock()
	c, _, err := r.canvas(id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imageio.Encode(&buf, imageio.NRGBA(c.render()), format, quality); err != nil {
		if errors.Is(err, imageio.ErrUnsupported) {
			return nil, fmt.Errorf("%w: export format %q", ErrUnsupportedFormat, format)
		}
		return nil, fmt.Errorf("gpubridge: export %s: %w", id, err)
	}
	return buf.Bytes(), nil
}

// ImportImageToCanvas2D decodes an image and draws it over the base image
// with its top-left corner at at. Parts outside the canvas are clipped.
func (r *Registry) ImportImageToCanvas2D(id ID, data []byte, at gpucore.Point) error {
	img, _, err := imageio.Decode(data, r.info.MaxTextureSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}
	return r.withCanvas(id, func(c *canvasEntry, _ handle.Handle) error {
		b := img.Bounds()
		dst := b.Sub(b.Min).Add(image.Pt(int(at.X), int(at.Y)))
		draw.Draw(c.base, dst, img, b.Min, draw.Over)
		c.dirty = true
		return nil
	})
}

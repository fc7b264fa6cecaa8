package gpubridge

import (
	"fmt"
	"image"
	"slices"

	"github.com/jinzhu/copier"

	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/internal/handle"
	"github.com/gogpu/gpubridge/internal/logx"
	"github.com/gogpu/gpubridge/internal/raster"
	"github.com/gogpu/gpubridge/translate"
)

// DrawingLayer is a snapshot of a canvas layer. Commands are deep copies;
// changing them does not affect the canvas.
type DrawingLayer struct {
	ID        ID                       `json:"id"`
	CanvasID  ID                       `json:"canvasId"`
	Name      string                   `json:"name"`
	Visible   bool                     `json:"visible"`
	Opacity   float64                  `json:"opacity"`
	BlendMode gpucore.BlendMode        `json:"blendMode"`
	Commands  []gpucore.DrawingCommand `json:"commands"`
}

type layerEntry struct {
	h        handle.Handle
	name     string
	visible  bool
	opacity  float64
	blend    gpucore.BlendMode
	commands []gpucore.DrawingCommand
}

func (l *layerEntry) snapshot(canvas handle.Handle) DrawingLayer {
	out := DrawingLayer{
		ID:        idOf(l.h),
		CanvasID:  idOf(canvas),
		Name:      l.name,
		Visible:   l.visible,
		Opacity:   l.opacity,
		BlendMode: l.blend,
	}
	if err := copier.CopyWithOption(&out.Commands, &l.commands, copier.Option{DeepCopy: true}); err != nil {
		logx.Logger().Warn("gpubridge: layer snapshot failed", "layer", out.ID, "err", err)
	}
	if out.Commands == nil {
		out.Commands = []gpucore.DrawingCommand{}
	}
	return out
}

// rasterize paints the layer's commands onto a transparent image.
func (l *layerEntry) rasterize(bounds image.Rectangle) *image.RGBA {
	img := image.NewRGBA(bounds)
	for i := range l.commands {
		if err := raster.Draw(img, &l.commands[i]); err != nil {
			logx.Logger().Warn("gpubridge: command skipped", "layer", idOf(l.h), "command", l.commands[i].ID, "err", err)
		}
	}
	return img
}

// layer resolves a layer id within canvas c. Callers hold r.mu.
func (r *Registry) layer(c *canvasEntry, canvas handle.Handle, id ID) (*layerEntry, int, error) {
	owner, h, err := lookup(r, r.layers, id, ErrLayerNotFound)
	if err != nil {
		return nil, -1, err
	}
	if owner != canvas {
		return nil, -1, fmt.Errorf("%w: %s is not a layer of canvas %s", ErrLayerNotFound, id, idOf(canvas))
	}
	i := slices.IndexFunc(c.layers, func(l *layerEntry) bool { return l.h == h })
	if i < 0 {
		return nil, -1, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	return c.layers[i], i, nil
}

func (r *Registry) withLayer(canvasID, layerID ID, fn func(c *canvasEntry, l *layerEntry) error) error {
	return r.withCanvas(canvasID, func(c *canvasEntry, h handle.Handle) error {
		l, _, err := r.layer(c, h, layerID)
		if err != nil {
			return err
		}
		return fn(c, l)
	})
}

// CreateDrawingLayer appends a visible, opaque, normal-blend layer on top
// of the canvas and makes it the active layer.
func (r *Registry) CreateDrawingLayer(canvasID ID, name string) (DrawingLayer, error) {
	var out DrawingLayer
	err := r.withCanvas(canvasID, func(c *canvasEntry, ch handle.Handle) error {
		h := r.ids.Acquire()
		l := &layerEntry{
			h:       h,
			name:    name,
			visible: true,
			opacity: translate.DefaultLayerOpacity,
			blend:   translate.DefaultLayerBlendMode,
		}
		c.layers = append(c.layers, l)
		c.active = h
		r.layers[h] = ch
		out = l.snapshot(ch)
		r.log.Debug("gpubridge: layer created", "canvas", canvasID, "id", idOf(h), "name", name)
		return nil
	})
	return out, err
}

// DeleteDrawingLayer removes a layer; the others keep their order and ids.
// Deleting the active layer activates the new top layer, or none.
func (r *Registry) DeleteDrawingLayer(canvasID, layerID ID) error {
	return r.withCanvas(canvasID, func(c *canvasEntry, ch handle.Handle) error {
		l, i, err := r.layer(c, ch, layerID)
		if err != nil {
			return err
		}
		c.layers = slices.Delete(c.layers, i, i+1)
		delete(r.layers, l.h)
		r.ids.Release(l.h)
		if c.active == l.h {
			c.active = handle.Invalid
			if n := len(c.layers); n > 0 {
				c.active = c.layers[n-1].h
			}
		}
		c.dirty = true
		return nil
	})
}

// SetActiveLayer selects the layer draw calls record into. An empty layer
// id makes draw calls paint straight into the base image.
func (r *Registry) SetActiveLayer(canvasID, layerID ID) error {
	return r.withCanvas(canvasID, func(c *canvasEntry, ch handle.Handle) error {
		if layerID == "" {
			c.active = handle.Invalid
			return nil
		}
		l, _, err := r.layer(c, ch, layerID)
		if err != nil {
			return err
		}
		c.active = l.h
		return nil
	})
}

// SetLayerOpacity sets a layer's opacity, which must lie in [0,1].
func (r *Registry) SetLayerOpacity(canvasID, layerID ID, opacity float64) error {
	if !(opacity >= 0 && opacity <= 1) {
		return fmt.Errorf("%w: opacity %v outside [0,1]", ErrInvalidDescriptor, opacity)
	}
	return r.withLayer(canvasID, layerID, func(c *canvasEntry, l *layerEntry) error {
		l.opacity = opacity
		c.dirty = true
		return nil
	})
}

// SetLayerBlendMode sets how a layer is composited onto the layers below.
func (r *Registry) SetLayerBlendMode(canvasID, layerID ID, mode gpucore.BlendMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: blend mode %q", ErrInvalidDescriptor, mode)
	}
	return r.withLayer(canvasID, layerID, func(c *canvasEntry, l *layerEntry) error {
		l.blend = mode
		c.dirty = true
		return nil
	})
}

// ToggleLayerVisibility flips a layer's visibility and returns the new
// value.
func (r *Registry) ToggleLayerVisibility(canvasID, layerID ID) (bool, error) {
	var visible bool
	err := r.withLayer(canvasID, layerID, func(c *canvasEntry, l *layerEntry) error {
		l.visible = !l.visible
		visible = l.visible
		c.dirty = true
		return nil
	})
	return visible, err
}

// Layers returns the canvas layers in paint order, bottom first.
func (r *Registry) Layers(canvasID ID) ([]DrawingLayer, error) {
	if err := r.rlock(); err != nil {
		return nil, err
	}
	defer r.mu.RUnlock()
	c, h, err := r.canvas(canvasID)
	if err != nil {
		return nil, err
	}
	out := make([]DrawingLayer, 0, len(c.layers))
	for _, l := range c.layers {
		out = append(out, l.snapshot(h))
	}
	return out, nil
}

// GetDrawingLayer returns one layer of a canvas.
func (r *Registry) GetDrawingLayer(canvasID, layerID ID) (DrawingLayer, error) {
	if err := r.rlock(); err != nil {
		return DrawingLayer{}, err
	}
	defer r.mu.RUnlock()
	c, h, err := r.canvas(canvasID)
	if err != nil {
		return DrawingLayer{}, err
	}
	l, _, err := r.layer(c, h, layerID)
	if err != nil {
		return DrawingLayer{}, err
	}
	return l.snapshot(h), nil
}

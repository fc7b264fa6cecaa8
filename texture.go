package gpubridge

import (
	"fmt"

	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/internal/handle"
	"github.com/gogpu/gpubridge/internal/imageio"
	"github.com/gogpu/gpubridge/translate"
)

// Texture is the resolved description of a live texture.
type Texture struct {
	ID ID `json:"id"`
	gpucore.TextureDescriptor

	// NativePixelFormat is the dialect's value for PixelFormat.
	NativePixelFormat uint32 `json:"nativePixelFormat"`

	// Canvas is set when the texture is owned by a canvas.
	Canvas ID `json:"canvas,omitempty"`
}

type textureEntry struct {
	desc   gpucore.TextureDescriptor
	format uint32
	native backend.Handle
	canvas handle.Handle
}

func (t *textureEntry) bytes() int64 {
	bpp := t.desc.PixelFormat.BytesPerPixel()
	return int64(t.desc.Width) * int64(t.desc.Height) * int64(bpp) * int64(t.desc.Depth) * int64(t.desc.ArrayLength)
}

func (t *textureEntry) snapshot(h handle.Handle) Texture {
	out := Texture{ID: idOf(h), TextureDescriptor: t.desc, NativePixelFormat: t.format}
	if t.canvas != handle.Invalid {
		out.Canvas = idOf(t.canvas)
	}
	return out
}

// CreateTexture validates d, applies defaults, resolves its tags and
// allocates the texture. Unknown tags fall back to the dialect's default and
// the returned descriptor shows the tag actually used.
func (r *Registry) CreateTexture(d gpucore.TextureDescriptor) (Texture, error) {
	if err := r.lock(); err != nil {
		return Texture{}, err
	}
	defer r.mu.Unlock()
	h, t, err := r.createTexture(d)
	if err != nil {
		return Texture{}, err
	}
	return t.snapshot(h), nil
}

// checkTextureLimit rejects sizes above the device limit. A limit of 0
// means unlimited.
func checkTextureLimit(width, height, limit int) error {
	if limit > 0 && (width > limit || height > limit) {
		return fmt.Errorf("%w: %dx%d exceeds the device limit of %d", ErrResourceCreationFailed, width, height, limit)
	}
	return nil
}

func (r *Registry) createTexture(d gpucore.TextureDescriptor) (handle.Handle, *textureEntry, error) {
	d, err := translate.ApplyTextureDefaults(d)
	if err != nil {
		return handle.Invalid, nil, invalid(err)
	}
	if err := checkTextureLimit(d.Width, d.Height, r.info.MaxTextureSize); err != nil {
		return handle.Invalid, nil, err
	}

	format, ok := r.dialect.PixelFormat(d.PixelFormat)
	if !ok {
		tag, _ := r.dialect.PixelFormatTag(format)
		r.fallback("pixelFormat", d.PixelFormat, tag)
		d.PixelFormat = tag
	}
	usage, ok := r.dialect.TextureUsage(d.Usage)
	if !ok {
		r.fallback("usage", d.Usage, translate.DefaultTextureUsage)
		d.Usage = translate.DefaultTextureUsage
	}
	mode, ok := r.dialect.StorageMode(d.StorageMode)
	if !ok {
		r.fallback("storageMode", d.StorageMode, translate.DefaultStorageMode)
		d.StorageMode = translate.DefaultStorageMode
	}

	native, err := r.backend.CreateTexture(&backend.TextureSpec{
		Label:        d.Label,
		Width:        d.Width,
		Height:       d.Height,
		Depth:        d.Depth,
		ArrayLength:  d.ArrayLength,
		MipLevels:    d.MipmapLevelCount,
		SampleCount:  d.SampleCount,
		Format:       d.PixelFormat,
		NativeFormat: format,
		Usage:        d.Usage,
		NativeUsage:  usage,
		Storage:      d.StorageMode,
		NativeMode:   mode,
	})
	if err != nil {
		return handle.Invalid, nil, fmt.Errorf("%w: texture %dx%d %s: %w",
			ErrResourceCreationFailed, d.Width, d.Height, d.PixelFormat, err)
	}
	if native == nil {
		return handle.Invalid, nil, fmt.Errorf("%w: texture %dx%d %s: no handle",
			ErrResourceCreationFailed, d.Width, d.Height, d.PixelFormat)
	}

	h := r.ids.Acquire()
	t := &textureEntry{desc: d, format: format, native: native}
	r.textures[h] = t
	r.log.Debug("gpubridge: texture created", "id", idOf(h), "w", d.Width, "h", d.Height, "format", d.PixelFormat)
	return h, t, nil
}

// UpdateTexture writes tightly packed rows into region of mip level 0.
// The region must lie inside the texture and data must cover it.
func (r *Registry) UpdateTexture(id ID, region gpucore.Region, data []byte) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.mu.Unlock()
	t, _, err := lookup(r, r.textures, id, ErrTextureNotFound)
	if err != nil {
		return err
	}
	return r.writeTexture(t, region, data)
}

func (r *Registry) writeTexture(t *textureEntry, region gpucore.Region, data []byte) error {
	if !region.Within(t.desc.Width, t.desc.Height) {
		return fmt.Errorf("%w: region %+v outside %dx%d texture",
			ErrInvalidDescriptor, region, t.desc.Width, t.desc.Height)
	}
	bpp := t.desc.PixelFormat.BytesPerPixel()
	if need := region.Width * region.Height * bpp; len(data) < need {
		return fmt.Errorf("%w: %d bytes for a %dx%d region, need %d",
			ErrInvalidDescriptor, len(data), region.Width, region.Height, need)
	}
	return fromBackend(r.backend.WriteTexture(t.native, 0, region, data))
}

// ReadTexture returns mip level 0. 8-bit colour textures are returned in
// RGBA channel order whatever their storage order; other formats are
// returned as stored.
func (r *Registry) ReadTexture(id ID) ([]byte, error) {
	if err := r.rlock(); err != nil {
		return nil, err
	}
	defer r.mu.RUnlock()
	t, _, err := lookup(r, r.textures, id, ErrTextureNotFound)
	if err != nil {
		return nil, err
	}
	return r.readTexture(t)
}

func (r *Registry) readTexture(t *textureEntry) ([]byte, error) {
	data, err := r.backend.ReadTexture(t.native, 0)
	if err != nil {
		return nil, fromBackend(err)
	}
	if t.desc.PixelFormat.IsBGRA() {
		imageio.SwapRB(data)
	}
	return data, nil
}

// GenerateMipmaps fills levels 1..n-1 from level 0.
func (r *Registry) GenerateMipmaps(id ID) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.mu.Unlock()
	t, _, err := lookup(r, r.textures, id, ErrTextureNotFound)
	if err != nil {
		return err
	}
	if t.desc.MipmapLevelCount == 1 {
		return nil
	}
	return fromBackend(r.backend.GenerateMipmaps(t.native))
}

// GetTexture returns the resolved descriptor of a live texture.
func (r *Registry) GetTexture(id ID) (Texture, error) {
	if err := r.rlock(); err != nil {
		return Texture{}, err
	}
	defer r.mu.RUnlock()
	t, h, err := lookup(r, r.textures, id, ErrTextureNotFound)
	if err != nil {
		return Texture{}, err
	}
	return t.snapshot(h), nil
}

// ReleaseTexture frees a texture. Unknown and released ids are ignored, as
// are textures owned by a canvas; release the canvas instead.
func (r *Registry) ReleaseTexture(id ID) {
	if r.lock() != nil {
		return
	}
	defer r.mu.Unlock()
	t, h, ok := peek(r, r.textures, id)
	if !ok {
		return
	}
	if t.canvas != handle.Invalid {
		r.log.Warn("gpubridge: texture is owned by a canvas", "id", id, "canvas", idOf(t.canvas))
		return
	}
	r.releaseTexture(h, t)
}

func (r *Registry) releaseTexture(h handle.Handle, t *textureEntry) {
	delete(r.textures, h)
	r.ids.Release(h)
	r.backend.DestroyTexture(t.native)
	r.log.Debug("gpubridge: texture released", "id", idOf(h))
}

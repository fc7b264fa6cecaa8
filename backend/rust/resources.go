//go:build rust

package rust

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/internal/mipmap"
)

type texture struct {
	raw    *wgpu.Texture
	spec   backend.TextureSpec
	bpp    int
	shadow [][]byte
}

type buffer struct {
	raw    *wgpu.Buffer
	shadow []byte
}

// === Textures ===

// CreateTexture allocates a texture from the portable format and usage tags.
func (b *Backend) CreateTexture(spec *backend.TextureSpec) (backend.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ready(); err != nil {
		return nil, err
	}

	bpp := spec.Format.BytesPerPixel()
	if bpp == 0 {
		bpp = 4
	}
	dimension := wgpu.TextureDimension2D
	if spec.Depth > 1 {
		dimension = wgpu.TextureDimension3D
	}
	raw, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     spec.Label,
		Usage:     textureUsage(spec.Usage),
		Dimension: dimension,
		Size: wgpu.Extent3D{
			Width:              uint32(spec.Width),
			Height:             uint32(spec.Height),
			DepthOrArrayLayers: uint32(max(spec.Depth, 1) * max(spec.ArrayLength, 1)),
		},
		Format:        textureFormat(spec.Format),
		MipLevelCount: uint32(max(spec.MipLevels, 1)),
		SampleCount:   uint32(max(spec.SampleCount, 1)),
	})
	if err != nil {
		return nil, fmt.Errorf("rust: create texture %q: %w", spec.Label, err)
	}

	t := &texture{raw: raw, spec: *spec, bpp: bpp, shadow: make([][]byte, max(spec.MipLevels, 1))}
	for l := range t.shadow {
		w, h := mipmap.Size(spec.Width, spec.Height, l)
		t.shadow[l] = make([]byte, w*h*bpp)
	}
	b.textures[t] = struct{}{}
	return t, nil
}

func (b *Backend) texture(h backend.Handle) (*texture, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	t, ok := h.(*texture)
	if !ok {
		return nil, backend.ErrInvalidHandle
	}
	if _, live := b.textures[t]; !live {
		return nil, backend.ErrInvalidHandle
	}
	return t, nil
}

// WriteTexture uploads tightly packed rows into region of a mip level.
func (b *Backend) WriteTexture(h backend.Handle, mip int, region gpucore.Region, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, err := b.texture(h)
	if err != nil {
		return err
	}
	if mip < 0 || mip >= len(t.shadow) {
		return fmt.Errorf("%w: mip level %d of %d", backend.ErrOutOfRange, mip, len(t.shadow))
	}
	w, ht := mipmap.Size(t.spec.Width, t.spec.Height, mip)
	if !region.Within(w, ht) {
		return fmt.Errorf("%w: region %+v outside %dx%d", backend.ErrOutOfRange, region, w, ht)
	}
	rowBytes := region.Width * t.bpp
	if len(data) < rowBytes*region.Height {
		return fmt.Errorf("%w: %d bytes for a %dx%d region", backend.ErrOutOfRange, len(data), region.Width, region.Height)
	}
	for y := 0; y < region.Height; y++ {
		dst := ((region.Y+y)*w + region.X) * t.bpp
		copy(t.shadow[mip][dst:dst+rowBytes], data[y*rowBytes:])
	}
	b.upload(t, mip, region, data[:rowBytes*region.Height])
	return nil
}

func (b *Backend) upload(t *texture, mip int, region gpucore.Region, data []byte) {
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.raw,
			MipLevel: uint32(mip),
			Origin:   wgpu.Origin3D{X: uint32(region.X), Y: uint32(region.Y)},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(region.Width * t.bpp),
			RowsPerImage: uint32(region.Height),
		},
		&wgpu.Extent3D{Width: uint32(region.Width), Height: uint32(region.Height), DepthOrArrayLayers: 1},
	)
}

// ReadTexture returns the shadow copy of a mip level.
func (b *Backend) ReadTexture(h backend.Handle, mip int) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, err := b.texture(h)
	if err != nil {
		return nil, err
	}
	if mip < 0 || mip >= len(t.shadow) {
		return nil, fmt.Errorf("%w: mip level %d of %d", backend.ErrOutOfRange, mip, len(t.shadow))
	}
	return append([]byte(nil), t.shadow[mip]...), nil
}

// GenerateMipmaps filters the shadow chain on the CPU and uploads each level.
func (b *Backend) GenerateMipmaps(h backend.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, err := b.texture(h)
	if err != nil {
		return err
	}
	mipmap.Generate(t.shadow, t.spec.Width, t.spec.Height, t.bpp, t.spec.Format.IsRGBA8())
	for l := 1; l < len(t.shadow); l++ {
		w, ht := mipmap.Size(t.spec.Width, t.spec.Height, l)
		b.upload(t, l, gpucore.Region{Width: w, Height: ht}, t.shadow[l])
	}
	return nil
}

// DestroyTexture releases a texture. Unknown handles are ignored.
func (b *Backend) DestroyTexture(h backend.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := h.(*texture); ok {
		if _, live := b.textures[t]; live {
			delete(b.textures, t)
			t.raw.Release()
		}
	}
}

// === Buffers ===

// CreateBuffer allocates a buffer padded to a multiple of 4 bytes.
func (b *Backend) CreateBuffer(spec *backend.BufferSpec) (backend.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ready(); err != nil {
		return nil, err
	}
	if limit := b.limits.MaxBufferSize; limit > 0 && uint64(spec.Length) > limit {
		return nil, fmt.Errorf("rust: buffer length %d exceeds %d", spec.Length, limit)
	}
	raw, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: spec.Label,
		Size:  uint64(max(spec.Length, 4)+3) &^ 3,
		Usage: bufferUsage(spec.Options),
	})
	if err != nil {
		return nil, fmt.Errorf("rust: create buffer %q: %w", spec.Label, err)
	}
	buf := &buffer{raw: raw, shadow: make([]byte, spec.Length)}
	b.buffers[buf] = struct{}{}
	return buf, nil
}

func (b *Backend) buffer(h backend.Handle) (*buffer, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	buf, ok := h.(*buffer)
	if !ok {
		return nil, backend.ErrInvalidHandle
	}
	if _, live := b.buffers[buf]; !live {
		return nil, backend.ErrInvalidHandle
	}
	return buf, nil
}

// WriteBuffer copies data at offset and uploads the touched 4-byte words.
func (b *Backend) WriteBuffer(h backend.Handle, offset int, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf, err := b.buffer(h)
	if err != nil {
		return err
	}
	if offset < 0 || offset+len(data) > len(buf.shadow) {
		return fmt.Errorf("%w: write of %d bytes at %d into %d", backend.ErrOutOfRange, len(data), offset, len(buf.shadow))
	}
	copy(buf.shadow[offset:], data)
	if len(data) == 0 {
		return nil
	}
	start := offset &^ 3
	end := (offset + len(data) + 3) &^ 3
	chunk := make([]byte, end-start)
	copy(chunk, buf.shadow[start:min(end, len(buf.shadow))])
	b.queue.WriteBuffer(buf.raw, uint64(start), chunk)
	return nil
}

// ReadBuffer returns the shadow copy.
func (b *Backend) ReadBuffer(h backend.Handle) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	buf, err := b.buffer(h)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.shadow...), nil
}

// DestroyBuffer releases a buffer. Unknown handles are ignored.
func (b *Backend) DestroyBuffer(h backend.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if buf, ok := h.(*buffer); ok {
		if _, live := b.buffers[buf]; live {
			delete(b.buffers, buf)
			buf.raw.Release()
		}
	}
}

//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/internal/mipmap"
)

type texture struct {
	raw    hal.Texture
	spec   backend.TextureSpec
	bpp    int
	shadow [][]byte // one slice per mip level, first array layer only
}

type buffer struct {
	raw    hal.Buffer
	shadow []byte
}

// === Textures ===

// CreateTexture allocates a 2D texture. NativeFormat and NativeUsage carry
// gputypes values resolved by the WebGPU dialect.
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
	layers := max(spec.Depth, 1) * max(spec.ArrayLength, 1)
	dimension := gputypes.TextureDimension2D
	if spec.Depth > 1 {
		dimension = gputypes.TextureDimension3D
	}
	raw, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label: spec.Label,
		Size: hal.Extent3D{
			Width:              uint32(spec.Width),
			Height:             uint32(spec.Height),
			DepthOrArrayLayers: uint32(layers),
		},
		MipLevelCount: uint32(max(spec.MipLevels, 1)),
		SampleCount:   uint32(max(spec.SampleCount, 1)),
		Dimension:     dimension,
		Format:        gputypes.TextureFormat(spec.NativeFormat),
		Usage:         gputypes.TextureUsage(spec.NativeUsage),
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture %q: %w", spec.Label, err)
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

	level := t.shadow[mip]
	for y := 0; y < region.Height; y++ {
		dst := ((region.Y+y)*w + region.X) * t.bpp
		copy(level[dst:dst+rowBytes], data[y*rowBytes:])
	}
	b.upload(t, mip, region, data[:rowBytes*region.Height])
	return nil
}

func (b *Backend) upload(t *texture, mip int, region gpucore.Region, data []byte) {
	b.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.raw,
			MipLevel: uint32(mip),
			Origin:   hal.Origin3D{X: uint32(region.X), Y: uint32(region.Y), Z: 0},
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(region.Width * t.bpp),
			RowsPerImage: uint32(region.Height),
		},
		&hal.Extent3D{Width: uint32(region.Width), Height: uint32(region.Height), DepthOrArrayLayers: 1},
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
	t, ok := h.(*texture)
	if ok {
		_, ok = b.textures[t]
		delete(b.textures, t)
	}
	device := b.device
	b.mu.Unlock()

	if ok && device != nil {
		device.DestroyTexture(t.raw)
	}
}

// === Buffers ===

// CreateBuffer allocates a buffer with the gputypes usage in NativeOptions.
// WebGPU requires sizes to be multiples of 4; the allocation is padded and
// the logical length kept in the shadow copy.
func (b *Backend) CreateBuffer(spec *backend.BufferSpec) (backend.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ready(); err != nil {
		return nil, err
	}
	if limit := b.limits.MaxBufferSize; limit > 0 && uint64(spec.Length) > limit {
		return nil, fmt.Errorf("native: buffer length %d exceeds %d", spec.Length, limit)
	}
	size := uint64(max(spec.Length, 4)+3) &^ 3
	raw, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: spec.Label,
		Size:  size,
		Usage: gputypes.BufferUsage(spec.NativeOptions) | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create buffer %q: %w", spec.Label, err)
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

// WriteBuffer copies data at offset. Queue writes must be 4-byte aligned,
// so the touched words are uploaded from the shadow copy.
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

// ReadBuffer returns the shadow copy. Compute writes on the GPU are not
// reflected.
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
	buf, ok := h.(*buffer)
	if ok {
		_, ok = b.buffers[buf]
		delete(b.buffers, buf)
	}
	device := b.device
	b.mu.Unlock()

	if ok && device != nil {
		device.DestroyBuffer(buf.raw)
	}
}

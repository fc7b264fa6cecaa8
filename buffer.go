package gpubridge

import (
	"fmt"

	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/internal/handle"
	"github.com/gogpu/gpubridge/translate"
)

// Buffer is the resolved description of a live buffer.
type Buffer struct {
	ID ID `json:"id"`
	gpucore.BufferDescriptor

	NativeOptions uint32 `json:"nativeOptions"`

	// MeshRefs counts live meshes referencing the buffer.
	MeshRefs int `json:"meshRefs"`
}

type bufferEntry struct {
	desc    gpucore.BufferDescriptor
	options uint32
	native  backend.Handle

	// refs counts live meshes using the buffer. A buffer released while
	// refs > 0 leaves the id space at once; the native buffer is destroyed
	// when the last mesh goes.
	refs     int
	released bool
	// owned buffers were created by LoadMeshFromData and are released
	// with their mesh.
	owned bool
}

func (b *bufferEntry) snapshot(h handle.Handle) Buffer {
	return Buffer{ID: idOf(h), BufferDescriptor: b.desc, NativeOptions: b.options, MeshRefs: b.refs}
}

// CreateBuffer allocates a zeroed buffer.
func (r *Registry) CreateBuffer(d gpucore.BufferDescriptor) (Buffer, error) {
	if err := r.lock(); err != nil {
		return Buffer{}, err
	}
	defer r.mu.Unlock()
	h, b, err := r.createBuffer(d)
	if err != nil {
		return Buffer{}, err
	}
	return b.snapshot(h), nil
}

// CreateBufferWithData allocates a buffer holding a copy of data. d.Length
// is ignored.
func (r *Registry) CreateBufferWithData(data []byte, d gpucore.BufferDescriptor) (Buffer, error) {
	if err := r.lock(); err != nil {
		return Buffer{}, err
	}
	defer r.mu.Unlock()
	d.Length = len(data)
	h, b, err := r.createBuffer(d)
	if err != nil {
		return Buffer{}, err
	}
	if err := r.backend.WriteBuffer(b.native, 0, data); err != nil {
		r.releaseBuffer(h, b)
		return Buffer{}, fmt.Errorf("%w: upload: %w", ErrResourceCreationFailed, err)
	}
	return b.snapshot(h), nil
}

func (r *Registry) createBuffer(d gpucore.BufferDescriptor) (handle.Handle, *bufferEntry, error) {
	d, err := translate.ApplyBufferDefaults(d)
	if err != nil {
		return handle.Invalid, nil, invalid(err)
	}
	if limit := r.info.MaxBufferSize; limit > 0 && uint64(d.Length) > limit {
		return handle.Invalid, nil, fmt.Errorf("%w: buffer length %d exceeds the device limit of %d",
			ErrResourceCreationFailed, d.Length, limit)
	}
	options, ok := r.dialect.ResourceOptions(d.Options)
	if !ok {
		r.fallback("options", d.Options, translate.DefaultBufferOptions)
		d.Options = translate.DefaultBufferOptions
	}
	native, err := r.backend.CreateBuffer(&backend.BufferSpec{
		Label:         d.Label,
		Length:        d.Length,
		Options:       d.Options,
		NativeOptions: options,
	})
	if err != nil {
		return handle.Invalid, nil, fmt.Errorf("%w: buffer of %d bytes: %w", ErrResourceCreationFailed, d.Length, err)
	}
	if native == nil {
		return handle.Invalid, nil, fmt.Errorf("%w: buffer of %d bytes: no handle", ErrResourceCreationFailed, d.Length)
	}
	h := r.ids.Acquire()
	b := &bufferEntry{desc: d, options: options, native: native}
	r.buffers[h] = b
	r.log.Debug("gpubridge: buffer created", "id", idOf(h), "length", d.Length)
	return h, b, nil
}

// UpdateBuffer copies data into the buffer at offset. The write must fit:
// offset >= 0 and offset+len(data) <= length.
func (r *Registry) UpdateBuffer(id ID, data []byte, offset int) error {
	if err := r.lock(); err != nil {
		return err
	}
	defer r.mu.Unlock()
	b, _, err := lookup(r, r.buffers, id, ErrBufferNotFound)
	if err != nil {
		return err
	}
	if offset < 0 || offset+len(data) > b.desc.Length {
		return fmt.Errorf("%w: write of %d bytes at offset %d into a %d-byte buffer",
			ErrInvalidDescriptor, len(data), offset, b.desc.Length)
	}
	return fromBackend(r.backend.WriteBuffer(b.native, offset, data))
}

// GetBufferContents returns a copy of the buffer's bytes.
func (r *Registry) GetBufferContents(id ID) ([]byte, error) {
	if err := r.rlock(); err != nil {
		return nil, err
	}
	defer r.mu.RUnlock()
	b, _, err := lookup(r, r.buffers, id, ErrBufferNotFound)
	if err != nil {
		return nil, err
	}
	data, err := r.backend.ReadBuffer(b.native)
	return data, fromBackend(err)
}

// GetBuffer returns the resolved descriptor of a live buffer.
func (r *Registry) GetBuffer(id ID) (Buffer, error) {
	if err := r.rlock(); err != nil {
		return Buffer{}, err
	}
	defer r.mu.RUnlock()
	b, h, err := lookup(r, r.buffers, id, ErrBufferNotFound)
	if err != nil {
		return Buffer{}, err
	}
	return b.snapshot(h), nil
}

// ReleaseBuffer releases a buffer id. Unknown and released ids are ignored.
// While meshes still reference the buffer its native storage is kept alive
// and freed with the last of them.
func (r *Registry) ReleaseBuffer(id ID) {
	if r.lock() != nil {
		return
	}
	defer r.mu.Unlock()
	if b, h, ok := peek(r, r.buffers, id); ok {
		r.releaseBuffer(h, b)
	}
}

func (r *Registry) releaseBuffer(h handle.Handle, b *bufferEntry) {
	delete(r.buffers, h)
	r.ids.Release(h)
	b.released = true
	if b.refs > 0 {
		r.log.Warn("gpubridge: buffer released while referenced by meshes, deferring free",
			"id", idOf(h), "meshes", b.refs)
		return
	}
	r.backend.DestroyBuffer(b.native)
	r.log.Debug("gpubridge: buffer released", "id", idOf(h))
}

// unref drops one mesh reference and frees a released buffer at zero.
func (r *Registry) unref(b *bufferEntry) {
	b.refs--
	if b.refs == 0 && b.released {
		r.backend.DestroyBuffer(b.native)
		r.log.Debug("gpubridge: deferred buffer freed")
	}
}

package gpubridge

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/internal/handle"
	"github.com/gogpu/gpubridge/internal/meshio"
	"github.com/gogpu/gpubridge/translate"
)

// Mesh is a drawable assembled from registry buffers.
type Mesh struct {
	ID ID `json:"id"`
	gpucore.MeshDescriptor
	Submeshes []gpucore.Submesh `json:"submeshes"`

	// VertexStride is the interleaved vertex size in bytes for meshes
	// loaded from files, 0 otherwise.
	VertexStride int `json:"vertexStride,omitempty"`
}

// MeshUpdate lists the mesh fields to change. Nil fields are kept; an
// empty IndexBuffer removes the index buffer.
type MeshUpdate struct {
	VertexBuffers []string               `json:"vertexBuffers,omitempty"`
	VertexCount   *int                   `json:"vertexCount,omitempty"`
	PrimitiveType *gpucore.PrimitiveType `json:"primitiveType,omitempty"`
	IndexBuffer   *string                `json:"indexBuffer,omitempty"`
	IndexCount    *int                   `json:"indexCount,omitempty"`
	IndexType     *gpucore.IndexType     `json:"indexType,omitempty"`
}

type bufferRef struct {
	h handle.Handle
	b *bufferEntry
}

type meshEntry struct {
	desc      gpucore.MeshDescriptor
	submeshes []gpucore.Submesh
	stride    int
	vertex    []bufferRef
	index     *bufferRef
}

func (m *meshEntry) refs() []*bufferEntry {
	out := make([]*bufferEntry, 0, len(m.vertex)+1)
	for _, ref := range m.vertex {
		out = append(out, ref.b)
	}
	if m.index != nil {
		out = append(out, m.index.b)
	}
	return out
}

func (m *meshEntry) snapshot(h handle.Handle) Mesh {
	d := m.desc
	d.VertexBuffers = append([]string(nil), d.VertexBuffers...)
	return Mesh{
		ID:             idOf(h),
		MeshDescriptor: d,
		Submeshes:      append([]gpucore.Submesh{}, m.submeshes...),
		VertexStride:   m.stride,
	}
}

// CreateMesh assembles a mesh from existing buffers. Every referenced
// buffer must be live; it then stays allocated until the mesh is released,
// even if its id is released first. Submeshes start empty.
func (r *Registry) CreateMesh(d gpucore.MeshDescriptor) (Mesh, error) {
	if err := r.lock(); err != nil {
		return Mesh{}, err
	}
	defer r.mu.Unlock()
	m, err := r.resolveMesh(d)
	if err != nil {
		return Mesh{}, err
	}
	h := r.addMesh(m)
	return m.snapshot(h), nil
}

// resolveMesh validates d and looks up its buffers without taking
// references.
func (r *Registry) resolveMesh(d gpucore.MeshDescriptor) (*meshEntry, error) {
	d, err := translate.ApplyMeshDefaults(d)
	if err != nil {
		return nil, invalid(err)
	}
	if len(d.VertexBuffers) == 0 {
		return nil, fmt.Errorf("%w: mesh needs at least one vertex buffer", ErrInvalidDescriptor)
	}
	m := &meshEntry{}
	for _, id := range d.VertexBuffers {
		b, h, err := lookup(r, r.buffers, ID(id), ErrBufferNotFound)
		if err != nil {
			return nil, err
		}
		m.vertex = append(m.vertex, bufferRef{h: h, b: b})
	}
	if _, ok := r.dialect.PrimitiveType(d.PrimitiveType); !ok {
		r.fallback("primitiveType", d.PrimitiveType, translate.DefaultPrimitiveType)
		d.PrimitiveType = translate.DefaultPrimitiveType
	}
	if d.IndexBuffer != "" {
		b, h, err := lookup(r, r.buffers, ID(d.IndexBuffer), ErrBufferNotFound)
		if err != nil {
			return nil, err
		}
		if _, ok := r.dialect.IndexType(d.IndexType); !ok {
			r.fallback("indexType", d.IndexType, translate.DefaultIndexType)
			d.IndexType = translate.DefaultIndexType
		}
		if need := d.IndexCount * d.IndexType.Size(); need > b.desc.Length {
			return nil, fmt.Errorf("%w: %d %s indices need %d bytes, index buffer has %d",
				ErrInvalidDescriptor, d.IndexCount, d.IndexType, need, b.desc.Length)
		}
		m.index = &bufferRef{h: h, b: b}
	} else {
		d.IndexCount, d.IndexType = 0, ""
	}
	m.desc = d
	return m, nil
}

func (r *Registry) addMesh(m *meshEntry) handle.Handle {
	for _, b := range m.refs() {
		b.refs++
	}
	h := r.ids.Acquire()
	r.meshes[h] = m
	r.log.Debug("gpubridge: mesh created", "id", idOf(h), "vertices", m.desc.VertexCount, "indices", m.desc.IndexCount)
	return h
}

// UpdateMesh changes the fields set in u and returns the new mesh. The
// result is validated like CreateMesh; on error the mesh is unchanged.
// Submeshes are dropped when the index buffer changes.
func (r *Registry) UpdateMesh(id ID, u MeshUpdate) (Mesh, error) {
	if err := r.lock(); err != nil {
		return Mesh{}, err
	}
	defer r.mu.Unlock()
	old, h, err := lookup(r, r.meshes, id, ErrMeshNotFound)
	if err != nil {
		return Mesh{}, err
	}
	d := old.desc
	if u.VertexBuffers != nil {
		d.VertexBuffers = u.VertexBuffers
	}
	if u.VertexCount != nil {
		d.VertexCount = *u.VertexCount
	}
	if u.PrimitiveType != nil {
		d.PrimitiveType = *u.PrimitiveType
	}
	if u.IndexBuffer != nil {
		d.IndexBuffer = *u.IndexBuffer
	}
	if u.IndexCount != nil {
		d.IndexCount = *u.IndexCount
	}
	if u.IndexType != nil {
		d.IndexType = *u.IndexType
	}
	m, err := r.resolveMesh(d)
	if err != nil {
		return Mesh{}, err
	}
	if m.desc.IndexBuffer == old.desc.IndexBuffer {
		m.submeshes = old.submeshes
	}
	m.stride = old.stride

	for _, b := range m.refs() {
		b.refs++
	}
	for _, b := range old.refs() {
		r.unref(b)
	}
	r.meshes[h] = m
	return m.snapshot(h), nil
}

// LoadMeshFromURL fetches a mesh file the way LoadTextureFromURL fetches
// images and loads it like LoadMeshFromData. An empty format is taken from
// the URL's file extension.
func (r *Registry) LoadMeshFromURL(ctx context.Context, rawURL, format string) (Mesh, error) {
	if format == "" {
		format = meshFormatOf(rawURL)
	}
	if f := strings.ToLower(strings.TrimPrefix(format, ".")); f != "obj" {
		return Mesh{}, fmt.Errorf("%w: mesh format %q", ErrUnsupportedFormat, format)
	}
	data, err := fetch(ctx, rawURL)
	if err != nil {
		return Mesh{}, err
	}
	return r.LoadMeshFromData(data, format)
}

func meshFormatOf(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	return strings.TrimPrefix(path.Ext(p), ".")
}

// LoadMeshFromData parses a mesh file and creates its vertex and index
// buffers. Only "obj" (Wavefront) is understood. Vertices are interleaved
// float32 position, normal and texcoord; each group or material becomes a
// submesh. The buffers are released with the mesh.
func (r *Registry) LoadMeshFromData(data []byte, format string) (Mesh, error) {
	if f := strings.ToLower(strings.TrimPrefix(format, ".")); f != "obj" {
		return Mesh{}, fmt.Errorf("%w: mesh format %q", ErrUnsupportedFormat, format)
	}
	parsed, err := meshio.ParseOBJ(bytes.NewReader(data))
	if err != nil {
		return Mesh{}, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}
	indexType := gpucore.IndexTypeUInt16
	if parsed.Wide() {
		indexType = gpucore.IndexTypeUInt32
	}

	if err := r.lock(); err != nil {
		return Mesh{}, err
	}
	defer r.mu.Unlock()
	vh, vb, err := r.bufferWith(parsed.VertexBytes(), "obj vertices")
	if err != nil {
		return Mesh{}, err
	}
	ih, ib, err := r.bufferWith(parsed.IndexBytes(), "obj indices")
	if err != nil {
		r.releaseBuffer(vh, vb)
		return Mesh{}, err
	}
	vb.owned, ib.owned = true, true

	m := &meshEntry{
		desc: gpucore.MeshDescriptor{
			VertexBuffers: []string{string(idOf(vh))},
			VertexCount:   parsed.VertexCount(),
			PrimitiveType: gpucore.PrimitiveTypeTriangle,
			IndexBuffer:   string(idOf(ih)),
			IndexCount:    len(parsed.Indices),
			IndexType:     indexType,
		},
		stride: meshio.Stride,
		vertex: []bufferRef{{h: vh, b: vb}},
		index:  &bufferRef{h: ih, b: ib},
	}
	for _, g := range parsed.Groups {
		m.submeshes = append(m.submeshes, gpucore.Submesh{
			IndexBuffer:   m.desc.IndexBuffer,
			IndexStart:    g.Start,
			IndexCount:    g.Count,
			IndexType:     indexType,
			PrimitiveType: gpucore.PrimitiveTypeTriangle,
			MaterialIndex: g.Material,
		})
	}
	h := r.addMesh(m)
	return m.snapshot(h), nil
}

func (r *Registry) bufferWith(data []byte, label string) (handle.Handle, *bufferEntry, error) {
	h, b, err := r.createBuffer(gpucore.BufferDescriptor{Length: len(data), Label: label})
	if err != nil {
		return handle.Invalid, nil, err
	}
	if err := r.backend.WriteBuffer(b.native, 0, data); err != nil {
		r.releaseBuffer(h, b)
		return handle.Invalid, nil, fmt.Errorf("%w: upload: %w", ErrResourceCreationFailed, err)
	}
	return h, b, nil
}

// GetMesh returns a live mesh.
func (r *Registry) GetMesh(id ID) (Mesh, error) {
	if err := r.rlock(); err != nil {
		return Mesh{}, err
	}
	defer r.mu.RUnlock()
	m, h, err := lookup(r, r.meshes, id, ErrMeshNotFound)
	if err != nil {
		return Mesh{}, err
	}
	return m.snapshot(h), nil
}

// ReleaseMesh drops the mesh's buffer references, freeing buffers whose ids
// were released earlier and buffers the mesh loaded itself. Unknown and
// released ids are ignored.
func (r *Registry) ReleaseMesh(id ID) {
	if r.lock() != nil {
		return
	}
	defer r.mu.Unlock()
	m, h, ok := peek(r, r.meshes, id)
	if !ok {
		return
	}
	delete(r.meshes, h)
	r.ids.Release(h)
	refs := append([]bufferRef(nil), m.vertex...)
	if m.index != nil {
		refs = append(refs, *m.index)
	}
	for _, ref := range refs {
		r.unref(ref.b)
	}
	for _, ref := range refs {
		if ref.b.owned && !ref.b.released {
			r.releaseBuffer(ref.h, ref.b)
		}
	}
	r.log.Debug("gpubridge: mesh released", "id", id)
}

package gpubridge

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/translate"
)

const quadOBJ = `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl red
f 1/1/1 2/2/1 3/3/1
usemtl blue
f 1/1/1 3/3/1 4/4/1
`

func meshBuffers(t *testing.T, r *Registry) (vb, ib Buffer) {
	t.Helper()
	var err error
	if vb, err = r.CreateBuffer(gpucore.BufferDescriptor{Length: 48}); err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	if ib, err = r.CreateBuffer(gpucore.BufferDescriptor{Length: 12}); err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	return vb, ib
}

func TestCreateMesh(t *testing.T) {
	r := newRegistry(t)
	vb, ib := meshBuffers(t, r)

	m, err := r.CreateMesh(gpucore.MeshDescriptor{
		VertexBuffers: []string{string(vb.ID)},
		VertexCount:   4,
		IndexBuffer:   string(ib.ID),
		IndexCount:    6,
	})
	if err != nil {
		t.Fatalf("CreateMesh() error = %v", err)
	}
	if m.PrimitiveType != translate.DefaultPrimitiveType {
		t.Errorf("PrimitiveType = %q, want %q", m.PrimitiveType, translate.DefaultPrimitiveType)
	}
	if m.IndexType != translate.DefaultIndexType {
		t.Errorf("IndexType = %q, want %q", m.IndexType, translate.DefaultIndexType)
	}
	if m.Submeshes == nil || len(m.Submeshes) != 0 {
		t.Errorf("Submeshes = %v, want empty", m.Submeshes)
	}
}

func TestCreateMeshErrors(t *testing.T) {
	r := newRegistry(t)
	vb, ib := meshBuffers(t, r)

	tests := []struct {
		name string
		d    gpucore.MeshDescriptor
		want error
	}{
		{"no vertex buffers", gpucore.MeshDescriptor{VertexCount: 3}, ErrInvalidDescriptor},
		{"unknown vertex buffer", gpucore.MeshDescriptor{VertexBuffers: []string{"00000000000000ff"}}, ErrBufferNotFound},
		{"unknown index buffer", gpucore.MeshDescriptor{
			VertexBuffers: []string{string(vb.ID)}, IndexBuffer: "zz", IndexCount: 3,
		}, ErrBufferNotFound},
		{"indices overflow", gpucore.MeshDescriptor{
			VertexBuffers: []string{string(vb.ID)}, IndexBuffer: string(ib.ID), IndexCount: 7,
		}, ErrInvalidDescriptor},
		{"wide indices overflow", gpucore.MeshDescriptor{
			VertexBuffers: []string{string(vb.ID)}, IndexBuffer: string(ib.ID), IndexCount: 4,
			IndexType: gpucore.IndexTypeUInt32,
		}, ErrInvalidDescriptor},
		{"negative count", gpucore.MeshDescriptor{VertexBuffers: []string{string(vb.ID)}, VertexCount: -1}, ErrInvalidDescriptor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.CreateMesh(tt.d); !errors.Is(err, tt.want) {
				t.Errorf("CreateMesh() error = %v, want %v", err, tt.want)
			}
		})
	}
	if got, _ := r.GetBuffer(vb.ID); got.MeshRefs != 0 {
		t.Errorf("MeshRefs after failed creates = %d, want 0", got.MeshRefs)
	}
}

func TestUpdateMesh(t *testing.T) {
	r := newRegistry(t)
	vb, ib := meshBuffers(t, r)
	vb2, _ := r.CreateBuffer(gpucore.BufferDescriptor{Length: 48})

	m, err := r.CreateMesh(gpucore.MeshDescriptor{VertexBuffers: []string{string(vb.ID)}, VertexCount: 3})
	if err != nil {
		t.Fatalf("CreateMesh() error = %v", err)
	}

	count := 4
	ibID := string(ib.ID)
	m, err = r.UpdateMesh(m.ID, MeshUpdate{
		VertexBuffers: []string{string(vb2.ID)},
		VertexCount:   &count,
		IndexBuffer:   &ibID,
	})
	if err != nil {
		t.Fatalf("UpdateMesh() error = %v", err)
	}
	if m.VertexCount != 4 || m.IndexBuffer != ibID || m.VertexBuffers[0] != string(vb2.ID) {
		t.Errorf("UpdateMesh() = %+v", m.MeshDescriptor)
	}
	if got, _ := r.GetBuffer(vb.ID); got.MeshRefs != 0 {
		t.Errorf("old vertex buffer MeshRefs = %d, want 0", got.MeshRefs)
	}
	if got, _ := r.GetBuffer(vb2.ID); got.MeshRefs != 1 {
		t.Errorf("new vertex buffer MeshRefs = %d, want 1", got.MeshRefs)
	}

	tooMany := 100
	if _, err := r.UpdateMesh(m.ID, MeshUpdate{IndexCount: &tooMany}); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("UpdateMesh(overflow) error = %v, want ErrInvalidDescriptor", err)
	}
	if got, _ := r.GetMesh(m.ID); got.VertexCount != 4 {
		t.Errorf("mesh changed by a failed update: %+v", got.MeshDescriptor)
	}
	if _, err := r.UpdateMesh("00000000000000ff", MeshUpdate{}); !errors.Is(err, ErrMeshNotFound) {
		t.Errorf("UpdateMesh(unknown) error = %v, want ErrMeshNotFound", err)
	}
}

func TestLoadMeshFromData(t *testing.T) {
	r := newRegistry(t)
	m, err := r.LoadMeshFromData([]byte(quadOBJ), "obj")
	if err != nil {
		t.Fatalf("LoadMeshFromData() error = %v", err)
	}
	if m.VertexCount != 4 || m.IndexCount != 6 {
		t.Errorf("counts = %d vertices, %d indices, want 4, 6", m.VertexCount, m.IndexCount)
	}
	if m.IndexType != gpucore.IndexTypeUInt16 || m.VertexStride != 32 {
		t.Errorf("IndexType = %q, VertexStride = %d, want UInt16, 32", m.IndexType, m.VertexStride)
	}
	if len(m.Submeshes) != 2 {
		t.Fatalf("len(Submeshes) = %d, want 2", len(m.Submeshes))
	}
	if s := m.Submeshes[1]; s.IndexStart != 3 || s.IndexCount != 3 || s.MaterialIndex != 1 {
		t.Errorf("Submeshes[1] = %+v, want start 3, count 3, material 1", s)
	}
	vertices, err := r.GetBufferContents(ID(m.VertexBuffers[0]))
	if err != nil {
		t.Fatalf("GetBufferContents() error = %v", err)
	}
	if len(vertices) != 4*32 {
		t.Errorf("vertex buffer = %d bytes, want %d", len(vertices), 4*32)
	}
	if n := r.Stats().Buffers; n != 2 {
		t.Errorf("Stats().Buffers = %d, want 2", n)
	}

	r.ReleaseMesh(m.ID)
	if n := r.Stats().Buffers; n != 0 {
		t.Errorf("Stats().Buffers after ReleaseMesh = %d, want 0", n)
	}
	if _, err := r.GetMesh(m.ID); !errors.Is(err, ErrMeshNotFound) {
		t.Errorf("GetMesh(released) error = %v, want ErrMeshNotFound", err)
	}
}

func TestLoadMeshFromURL(t *testing.T) {
	r := newRegistry(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/quad.obj" {
			http.NotFound(w, req)
			return
		}
		_, _ = w.Write([]byte(quadOBJ))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "quad.OBJ")
	if err := os.WriteFile(path, []byte(quadOBJ), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	tests := []struct {
		url    string
		format string
	}{
		{srv.URL + "/quad.obj", ""},
		{srv.URL + "/quad.obj?v=2", ""},
		{"file://" + path, ""},
		{path, "obj"},
	}
	for _, tt := range tests {
		m, err := r.LoadMeshFromURL(ctx, tt.url, tt.format)
		if err != nil {
			t.Errorf("LoadMeshFromURL(%q, %q) error = %v", tt.url, tt.format, err)
			continue
		}
		if m.VertexCount != 4 || m.IndexCount != 6 {
			t.Errorf("LoadMeshFromURL(%q) counts = %d, %d, want 4, 6", tt.url, m.VertexCount, m.IndexCount)
		}
	}

	if _, err := r.LoadMeshFromURL(ctx, srv.URL+"/quad.ply", ""); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("LoadMeshFromURL(.ply) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := r.LoadMeshFromURL(ctx, srv.URL+"/missing.obj", ""); !errors.Is(err, ErrResourceCreationFailed) {
		t.Errorf("LoadMeshFromURL(404) error = %v, want ErrResourceCreationFailed", err)
	}
}

func TestLoadMeshFromDataErrors(t *testing.T) {
	r := newRegistry(t)
	if _, err := r.LoadMeshFromData([]byte(quadOBJ), "ply"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("LoadMeshFromData(ply) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := r.LoadMeshFromData([]byte("f 1 2 3\n"), "obj"); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("LoadMeshFromData(bad obj) error = %v, want ErrInvalidDescriptor", err)
	}
	if n := r.Stats().Buffers; n != 0 {
		t.Errorf("Stats().Buffers = %d, want 0", n)
	}
}

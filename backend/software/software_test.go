package software

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/translate"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()
	b := New()
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

func rgbaSpec(w, h, mips int) *backend.TextureSpec {
	return &backend.TextureSpec{
		Width: w, Height: h, Depth: 1, ArrayLength: 1, MipLevels: mips, SampleCount: 1,
		Format: gpucore.PixelFormatRGBA8Unorm,
	}
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendSoftware) {
		t.Fatal("software backend not registered")
	}
	if b := backend.Get(backend.BackendSoftware); b == nil || b.Name() != backend.BackendSoftware {
		t.Errorf("Get(software) = %v", b)
	}
}

func TestNotInitialized(t *testing.T) {
	b := New()
	if _, err := b.CreateTexture(rgbaSpec(1, 1, 1)); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("CreateTexture() error = %v, want ErrNotInitialized", err)
	}
	if _, err := b.CreateBuffer(&backend.BufferSpec{Length: 4}); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("CreateBuffer() error = %v, want ErrNotInitialized", err)
	}
}

func TestTextureWriteRead(t *testing.T) {
	b := newBackend(t)
	h, err := b.CreateTexture(rgbaSpec(4, 2, 1))
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}

	data := bytes.Repeat([]byte{1, 2, 3, 4}, 2*2)
	if err := b.WriteTexture(h, 0, gpucore.Region{X: 1, Y: 0, Width: 2, Height: 2}, data); err != nil {
		t.Fatalf("WriteTexture() error = %v", err)
	}
	got, err := b.ReadTexture(h, 0)
	if err != nil {
		t.Fatalf("ReadTexture() error = %v", err)
	}
	if len(got) != 4*2*4 {
		t.Fatalf("ReadTexture() len = %d, want %d", len(got), 32)
	}
	// Row 0: texel 0 untouched, texels 1-2 written.
	if got[0] != 0 || got[4] != 1 || got[8] != 1 || got[12] != 0 {
		t.Errorf("row 0 = %v", got[:16])
	}
	if got[16+4] != 1 {
		t.Errorf("row 1 texel 1 = %d, want 1", got[16+4])
	}
}

func TestTextureWriteOutOfRange(t *testing.T) {
	b := newBackend(t)
	h, _ := b.CreateTexture(rgbaSpec(4, 4, 1))

	tests := []struct {
		name   string
		mip    int
		region gpucore.Region
		n      int
	}{
		{"outside", 0, gpucore.Region{X: 3, Y: 3, Width: 2, Height: 2}, 16},
		{"short data", 0, gpucore.Region{Width: 2, Height: 2}, 15},
		{"bad mip", 1, gpucore.Region{Width: 1, Height: 1}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.WriteTexture(h, tt.mip, tt.region, make([]byte, tt.n))
			if !errors.Is(err, backend.ErrOutOfRange) {
				t.Errorf("WriteTexture() error = %v, want ErrOutOfRange", err)
			}
		})
	}
}

func TestGenerateMipmaps(t *testing.T) {
	b := newBackend(t)
	h, _ := b.CreateTexture(rgbaSpec(4, 4, 3))
	if err := b.WriteTexture(h, 0, gpucore.Region{Width: 4, Height: 4}, bytes.Repeat([]byte{255, 0, 0, 255}, 16)); err != nil {
		t.Fatal(err)
	}
	if err := b.GenerateMipmaps(h); err != nil {
		t.Fatalf("GenerateMipmaps() error = %v", err)
	}
	top, err := b.ReadTexture(h, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(top, []byte{255, 0, 0, 255}) {
		t.Errorf("level 2 = %v, want [255 0 0 255]", top)
	}
}

func TestDestroyedTextureInvalid(t *testing.T) {
	b := newBackend(t)
	h, _ := b.CreateTexture(rgbaSpec(1, 1, 1))
	b.DestroyTexture(h)
	b.DestroyTexture(h) // no-op
	if _, err := b.ReadTexture(h, 0); !errors.Is(err, backend.ErrInvalidHandle) {
		t.Errorf("ReadTexture() after destroy error = %v, want ErrInvalidHandle", err)
	}
}

func TestBufferWriteRead(t *testing.T) {
	b := newBackend(t)
	h, err := b.CreateBuffer(&backend.BufferSpec{Length: 8})
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	if err := b.WriteBuffer(h, 4, []byte{9, 8, 7, 6}); err != nil {
		t.Fatalf("WriteBuffer() error = %v", err)
	}
	got, _ := b.ReadBuffer(h)
	want := []byte{0, 0, 0, 0, 9, 8, 7, 6}
	if !bytes.Equal(got, want) {
		t.Errorf("ReadBuffer() = %v, want %v", got, want)
	}
	if err := b.WriteBuffer(h, 6, []byte{1, 2, 3}); !errors.Is(err, backend.ErrOutOfRange) {
		t.Errorf("WriteBuffer() overflow error = %v, want ErrOutOfRange", err)
	}
	if err := b.WriteBuffer(h, -1, nil); !errors.Is(err, backend.ErrOutOfRange) {
		t.Errorf("WriteBuffer() negative offset error = %v, want ErrOutOfRange", err)
	}
}

func TestWrongHandleKind(t *testing.T) {
	b := newBackend(t)
	tex, _ := b.CreateTexture(rgbaSpec(1, 1, 1))
	if _, err := b.ReadBuffer(tex); !errors.Is(err, backend.ErrInvalidHandle) {
		t.Errorf("ReadBuffer(texture) error = %v, want ErrInvalidHandle", err)
	}
}

const libWGSL = `
@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

func TestPipelineEntryPoints(t *testing.T) {
	b := newBackend(t)
	lib, err := b.CompileShader(&backend.ShaderSpec{Label: "lib", Source: libWGSL})
	if err != nil {
		t.Fatalf("CompileShader() error = %v", err)
	}

	ok := &backend.RenderPipelineSpec{Library: lib, Descriptor: gpucore.RenderPipelineDescriptor{
		VertexFunction: "vs_main", FragmentFunction: "fs_main",
	}}
	if _, err := b.CreateRenderPipeline(ok); err != nil {
		t.Errorf("CreateRenderPipeline() error = %v", err)
	}

	bad := &backend.RenderPipelineSpec{Library: lib, Descriptor: gpucore.RenderPipelineDescriptor{
		VertexFunction: "fs_main", FragmentFunction: "fs_main",
	}}
	if _, err := b.CreateRenderPipeline(bad); err == nil {
		t.Error("CreateRenderPipeline() with a fragment function as vertex should fail")
	}

	if _, err := b.CreateComputePipeline(&backend.ComputePipelineSpec{Library: lib, Function: "vs_main"}); err == nil {
		t.Error("CreateComputePipeline() with a vertex function should fail")
	}

	// Without a library, names are not checked.
	if _, err := b.CreateComputePipeline(&backend.ComputePipelineSpec{Function: "anything"}); err != nil {
		t.Errorf("CreateComputePipeline() without library error = %v", err)
	}
}

func TestCompileShaderEmpty(t *testing.T) {
	b := newBackend(t)
	if _, err := b.CompileShader(&backend.ShaderSpec{Source: ""}); err == nil {
		t.Error("CompileShader(empty) should fail")
	}
}

func TestDialectAndInfo(t *testing.T) {
	b := NewWithDialect(translate.Metal)
	if b.Dialect().Name() != translate.Metal.Name() {
		t.Errorf("Dialect() = %q, want %q", b.Dialect().Name(), translate.Metal.Name())
	}
	info := b.Info()
	if info.Backend != backend.BackendSoftware || info.MaxTextureSize != MaxTextureSize {
		t.Errorf("Info() = %+v", info)
	}
}

func TestStats(t *testing.T) {
	b := newBackend(t)
	tex, _ := b.CreateTexture(rgbaSpec(1, 1, 1))
	_, _ = b.CreateBuffer(&backend.BufferSpec{Length: 1})
	textures, buffers, _, _ := b.Stats()
	if textures != 1 || buffers != 1 {
		t.Errorf("Stats() = %d textures, %d buffers, want 1, 1", textures, buffers)
	}
	b.DestroyTexture(tex)
	if textures, _, _, _ = b.Stats(); textures != 0 {
		t.Errorf("Stats() textures after destroy = %d, want 0", textures)
	}
}

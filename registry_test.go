package gpubridge

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/backend/software"
	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/translate"
)

// fixedTime is the clock used by tests that check timestamps.
var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	opts = append([]Option{WithBackendName(backend.BackendSoftware)}, opts...)
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

// countingBackend records native buffer frees.
type countingBackend struct {
	*software.Backend
	destroyedBuffers int
}

func (b *countingBackend) DestroyBuffer(h backend.Handle) {
	b.destroyedBuffers++
	b.Backend.DestroyBuffer(h)
}

func TestNewSoftware(t *testing.T) {
	r := newRegistry(t)
	info := r.DeviceInfo()
	if info.Backend != backend.BackendSoftware {
		t.Errorf("DeviceInfo().Backend = %q, want %q", info.Backend, backend.BackendSoftware)
	}
	if info.Dialect != translate.WebGPU.Name() {
		t.Errorf("DeviceInfo().Dialect = %q, want %q", info.Dialect, translate.WebGPU.Name())
	}
	if info.MaxTextureSize != software.MaxTextureSize {
		t.Errorf("DeviceInfo().MaxTextureSize = %d, want %d", info.MaxTextureSize, software.MaxTextureSize)
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(WithBackendName("no-such-backend"))
	if !errors.Is(err, backend.ErrBackendNotAvailable) {
		t.Errorf("New() error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestWithDialect(t *testing.T) {
	r := newRegistry(t, WithDialect(translate.Metal))
	if got := r.Dialect().Name(); got != "metal" {
		t.Errorf("Dialect().Name() = %q, want %q", got, "metal")
	}
	if got := r.DeviceInfo().Dialect; got != "metal" {
		t.Errorf("DeviceInfo().Dialect = %q, want %q", got, "metal")
	}
}

func TestIDsUnique(t *testing.T) {
	r := newRegistry(t)
	seen := make(map[ID]string)
	add := func(kind string, id ID, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("create %s: %v", kind, err)
		}
		if id == "" {
			t.Fatalf("create %s returned an empty id", kind)
		}
		if prev, dup := seen[id]; dup {
			t.Fatalf("id %s issued for both %s and %s", id, prev, kind)
		}
		seen[id] = kind
	}
	for range 20 {
		tex, err := r.CreateTexture(gpucore.TextureDescriptor{Width: 2, Height: 2})
		add("texture", tex.ID, err)
		buf, err := r.CreateBuffer(gpucore.BufferDescriptor{Length: 4})
		add("buffer", buf.ID, err)
		anim, err := r.CreateAnimation(gpucore.AnimationDescriptor{Duration: 1})
		add("animation", anim.ID, err)
	}
	c, err := r.CreateCanvas2D(gpucore.Canvas2DDescriptor{Width: 4, Height: 4})
	add("canvas", c.ID, err)
	add("canvas texture", c.TextureID, nil)
	l, err := r.CreateDrawingLayer(c.ID, "layer")
	add("layer", l.ID, err)
}

func TestReleasedIDIsStale(t *testing.T) {
	r := newRegistry(t)
	buf, err := r.CreateBuffer(gpucore.BufferDescriptor{Length: 8})
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	r.ReleaseBuffer(buf.ID)

	_, err = r.GetBuffer(buf.ID)
	for _, want := range []error{ErrBufferNotFound, ErrResourceNotFound, ErrStaleID} {
		if !errors.Is(err, want) {
			t.Errorf("GetBuffer(released) error = %v, want %v", err, want)
		}
	}

	again, err := r.CreateBuffer(gpucore.BufferDescriptor{Length: 8})
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	if again.ID == buf.ID {
		t.Errorf("released id %s was issued again", buf.ID)
	}
}

func TestLookupErrors(t *testing.T) {
	r := newRegistry(t)
	tex, err := r.CreateTexture(gpucore.TextureDescriptor{Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"malformed", func() error { _, err := r.GetTexture("nope"); return err }(), ErrTextureNotFound},
		{"empty", func() error { _, err := r.GetMesh(""); return err }(), ErrMeshNotFound},
		{"wrong kind", func() error { _, err := r.GetBuffer(tex.ID); return err }(), ErrBufferNotFound},
		{"never issued", func() error { _, err := r.GetAnimation("00000000000000ff"); return err }(), ErrAnimationNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("error = %v, want %v", tt.err, tt.want)
			}
			if !errors.Is(tt.err, ErrResourceNotFound) {
				t.Errorf("error = %v, want ErrResourceNotFound", tt.err)
			}
			if errors.Is(tt.err, ErrStaleID) {
				t.Errorf("error = %v, should not be stale", tt.err)
			}
		})
	}
}

func TestDoubleRelease(t *testing.T) {
	r := newRegistry(t)
	tex, _ := r.CreateTexture(gpucore.TextureDescriptor{Width: 1, Height: 1})
	buf, _ := r.CreateBuffer(gpucore.BufferDescriptor{Length: 1})
	anim, _ := r.CreateAnimation(gpucore.AnimationDescriptor{Duration: 1})

	for range 2 {
		r.ReleaseTexture(tex.ID)
		r.ReleaseBuffer(buf.ID)
		r.ReleaseAnimation(anim.ID)
	}
	r.ReleaseMesh("not-an-id")
	r.ReleaseCanvas2D("")

	s := r.Stats()
	if s.Textures != 0 || s.Buffers != 0 || s.Animations != 0 {
		t.Errorf("Stats() = %+v, want no live resources", s)
	}
}

func TestStats(t *testing.T) {
	r := newRegistry(t)
	if _, err := r.CreateTexture(gpucore.TextureDescriptor{Width: 4, Height: 4, PixelFormat: gpucore.PixelFormatRGBA8Unorm}); err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	if _, err := r.CreateBuffer(gpucore.BufferDescriptor{Length: 16}); err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	s := r.Stats()
	if s.Textures != 1 || s.TextureBytes != 64 {
		t.Errorf("Stats() textures = %d (%d bytes), want 1 (64 bytes)", s.Textures, s.TextureBytes)
	}
	if s.Buffers != 1 || s.BufferBytes != 16 {
		t.Errorf("Stats() buffers = %d (%d bytes), want 1 (16 bytes)", s.Buffers, s.BufferBytes)
	}
}

func TestClose(t *testing.T) {
	r, err := New(WithBackendName(backend.BackendSoftware))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	buf, _ := r.CreateBuffer(gpucore.BufferDescriptor{Length: 4})
	r.Close()
	r.Close()

	if _, err := r.CreateBuffer(gpucore.BufferDescriptor{Length: 4}); !errors.Is(err, ErrClosed) {
		t.Errorf("CreateBuffer() after Close error = %v, want ErrClosed", err)
	}
	if _, err := r.GetBuffer(buf.ID); !errors.Is(err, ErrClosed) {
		t.Errorf("GetBuffer() after Close error = %v, want ErrClosed", err)
	}
	r.ReleaseBuffer(buf.ID)
	r.AdvanceAnimations(1)
	if s := r.Stats(); s.Buffers != 0 {
		t.Errorf("Stats().Buffers after Close = %d, want 0", s.Buffers)
	}
}

//go:build rust

package rust

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/gpucore"
)

func TestRegistered(t *testing.T) {
	b := backend.Get(backend.BackendRust)
	if b == nil {
		t.Fatal("Get(rust) = nil with the rust tag")
	}
	if b.Name() != backend.BackendRust {
		t.Errorf("Name() = %q, want %q", b.Name(), backend.BackendRust)
	}
}

func TestNotInitialized(t *testing.T) {
	b := New()
	if _, err := b.CreateBuffer(&backend.BufferSpec{Length: 4}); !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("CreateBuffer() error = %v, want ErrNotInitialized", err)
	}
}

func TestTextureFormatMapping(t *testing.T) {
	tests := []struct {
		tag  gpucore.PixelFormat
		want wgpu.TextureFormat
	}{
		{gpucore.PixelFormatRGBA8Unorm, wgpu.TextureFormatRGBA8Unorm},
		{gpucore.PixelFormatBGRA8UnormSRGB, wgpu.TextureFormatBGRA8UnormSrgb},
		{gpucore.PixelFormatDepth32Float, wgpu.TextureFormatDepth32Float},
		{"bogus", wgpu.TextureFormatBGRA8Unorm},
	}
	for _, tt := range tests {
		if got := textureFormat(tt.tag); got != tt.want {
			t.Errorf("textureFormat(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestColorTargets(t *testing.T) {
	got := colorTargets([]gpucore.ColorAttachmentDescriptor{
		{PixelFormat: gpucore.PixelFormatBGRA8Unorm},
		{
			PixelFormat:               gpucore.PixelFormatRGBA8Unorm,
			IsBlendingEnabled:         true,
			SourceRGBBlendFactor:      gpucore.BlendFactorSourceAlpha,
			DestinationRGBBlendFactor: gpucore.BlendFactorOneMinusSourceAlpha,
		},
	})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Blend != nil {
		t.Error("target 0 should not blend")
	}
	if got[1].Blend == nil || got[1].Blend.Color.SrcFactor != wgpu.BlendFactorSrcAlpha {
		t.Errorf("target 1 blend = %+v", got[1].Blend)
	}
	if got[1].Blend.Alpha.SrcFactor != wgpu.BlendFactorOne {
		t.Errorf("unset alpha src factor = %v, want One", got[1].Blend.Alpha.SrcFactor)
	}
}

// TestDeviceSmoke needs wgpu-native; it skips when no adapter is found.
func TestDeviceSmoke(t *testing.T) {
	b := New()
	if err := b.Init(); err != nil {
		t.Skipf("wgpu-native unavailable: %v", err)
	}
	defer b.Close()

	h, err := b.CreateBuffer(&backend.BufferSpec{Length: 6})
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	if err := b.WriteBuffer(h, 1, []byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteBuffer() error = %v", err)
	}
	got, _ := b.ReadBuffer(h)
	if got[1] != 1 || got[3] != 3 {
		t.Errorf("ReadBuffer() = %v", got)
	}
}

package gpubridge

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gogpu/gpubridge/backend/software"
	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/internal/imageio"
	"github.com/gogpu/gpubridge/translate"
)

func TestCreateTextureDefaults(t *testing.T) {
	r := newRegistry(t)
	tex, err := r.CreateTexture(gpucore.TextureDescriptor{Width: 4, Height: 2})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	if tex.PixelFormat != translate.DefaultTexturePixelFormat {
		t.Errorf("PixelFormat = %q, want %q", tex.PixelFormat, translate.DefaultTexturePixelFormat)
	}
	if tex.MipmapLevelCount != 1 || tex.SampleCount != 1 || tex.ArrayLength != 1 || tex.Depth != 1 {
		t.Errorf("counts = %d/%d/%d/%d, want 1/1/1/1",
			tex.MipmapLevelCount, tex.SampleCount, tex.ArrayLength, tex.Depth)
	}
	if tex.Usage != gpucore.TextureUsageShaderRead {
		t.Errorf("Usage = %q, want %q", tex.Usage, gpucore.TextureUsageShaderRead)
	}
	if tex.StorageMode != gpucore.StorageModePrivate {
		t.Errorf("StorageMode = %q, want %q", tex.StorageMode, gpucore.StorageModePrivate)
	}
	want, _ := r.Dialect().PixelFormat(tex.PixelFormat)
	if tex.NativePixelFormat != want {
		t.Errorf("NativePixelFormat = %d, want %d", tex.NativePixelFormat, want)
	}
}

func TestCreateTextureErrors(t *testing.T) {
	r := newRegistry(t)
	tests := []struct {
		name string
		d    gpucore.TextureDescriptor
		want error
	}{
		{"zero width", gpucore.TextureDescriptor{Width: 0, Height: 4}, ErrInvalidDescriptor},
		{"negative height", gpucore.TextureDescriptor{Width: 4, Height: -1}, ErrInvalidDescriptor},
		{"negative mips", gpucore.TextureDescriptor{Width: 4, Height: 4, MipmapLevelCount: -1}, ErrInvalidDescriptor},
		{"too many mips", gpucore.TextureDescriptor{Width: 4, Height: 4, MipmapLevelCount: 10}, ErrInvalidDescriptor},
		{"over device limit", gpucore.TextureDescriptor{Width: software.MaxTextureSize + 1, Height: 1}, ErrResourceCreationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.CreateTexture(tt.d); !errors.Is(err, tt.want) {
				t.Errorf("CreateTexture() error = %v, want %v", err, tt.want)
			}
		})
	}
	if n := r.Stats().Textures; n != 0 {
		t.Errorf("Stats().Textures = %d after failed creates, want 0", n)
	}
}

func TestCreateTextureUnknownFormatFallsBack(t *testing.T) {
	r := newRegistry(t)
	tex, err := r.CreateTexture(gpucore.TextureDescriptor{Width: 1, Height: 1, PixelFormat: "Bogus"})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	v, _ := r.Dialect().PixelFormat("Bogus")
	want, _ := r.Dialect().PixelFormatTag(v)
	if tex.PixelFormat != want || tex.PixelFormat == "Bogus" {
		t.Errorf("PixelFormat = %q, want fallback %q", tex.PixelFormat, want)
	}
}

func TestGLESLossyFormatCollision(t *testing.T) {
	r := newRegistry(t, WithBackend(software.NewWithDialect(translate.GLES)))
	rgba, err := r.CreateTexture(gpucore.TextureDescriptor{Width: 1, Height: 1, PixelFormat: gpucore.PixelFormatRGBA8Unorm})
	if err != nil {
		t.Fatalf("CreateTexture(RGBA) error = %v", err)
	}
	bgra, err := r.CreateTexture(gpucore.TextureDescriptor{Width: 1, Height: 1, PixelFormat: gpucore.PixelFormatBGRA8Unorm})
	if err != nil {
		t.Fatalf("CreateTexture(BGRA) error = %v", err)
	}
	if rgba.NativePixelFormat != bgra.NativePixelFormat {
		t.Errorf("GLES native formats = %#x, %#x, want the same enum", rgba.NativePixelFormat, bgra.NativePixelFormat)
	}
	// The tags are kept even though the native values collide.
	if rgba.PixelFormat != gpucore.PixelFormatRGBA8Unorm || bgra.PixelFormat != gpucore.PixelFormatBGRA8Unorm {
		t.Errorf("PixelFormat = %q, %q, want the requested tags", rgba.PixelFormat, bgra.PixelFormat)
	}
}

func TestUpdateAndReadTexture(t *testing.T) {
	r := newRegistry(t)
	tests := []struct {
		format gpucore.PixelFormat
		want   []byte
	}{
		{gpucore.PixelFormatRGBA8Unorm, []byte{1, 2, 3, 4}},
		{gpucore.PixelFormatBGRA8Unorm, []byte{3, 2, 1, 4}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			tex, err := r.CreateTexture(gpucore.TextureDescriptor{Width: 2, Height: 2, PixelFormat: tt.format})
			if err != nil {
				t.Fatalf("CreateTexture() error = %v", err)
			}
			if err := r.UpdateTexture(tex.ID, gpucore.Region{X: 1, Y: 0, Width: 1, Height: 1}, []byte{1, 2, 3, 4}); err != nil {
				t.Fatalf("UpdateTexture() error = %v", err)
			}
			got, err := r.ReadTexture(tex.ID)
			if err != nil {
				t.Fatalf("ReadTexture() error = %v", err)
			}
			if len(got) != 16 {
				t.Fatalf("len(ReadTexture()) = %d, want 16", len(got))
			}
			if !bytes.Equal(got[4:8], tt.want) {
				t.Errorf("texel (1,0) = %v, want %v", got[4:8], tt.want)
			}
			if !bytes.Equal(got[:4], []byte{0, 0, 0, 0}) {
				t.Errorf("texel (0,0) = %v, want zeroes", got[:4])
			}
		})
	}
}

func TestUpdateTextureErrors(t *testing.T) {
	r := newRegistry(t)
	tex, _ := r.CreateTexture(gpucore.TextureDescriptor{Width: 2, Height: 2, PixelFormat: gpucore.PixelFormatRGBA8Unorm})
	tests := []struct {
		name   string
		id     ID
		region gpucore.Region
		data   []byte
		want   error
	}{
		{"outside", tex.ID, gpucore.Region{X: 1, Y: 1, Width: 2, Height: 1}, make([]byte, 8), ErrInvalidDescriptor},
		{"negative origin", tex.ID, gpucore.Region{X: -1, Width: 1, Height: 1}, make([]byte, 4), ErrInvalidDescriptor},
		{"short data", tex.ID, gpucore.Region{Width: 2, Height: 2}, make([]byte, 15), ErrInvalidDescriptor},
		{"unknown id", "0000000000000099", gpucore.Region{Width: 1, Height: 1}, make([]byte, 4), ErrTextureNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.UpdateTexture(tt.id, tt.region, tt.data); !errors.Is(err, tt.want) {
				t.Errorf("UpdateTexture() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestLoadTextureFromData(t *testing.T) {
	r := newRegistry(t)
	data := encodePNG(t, 3, 2, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	tex, err := r.LoadTextureFromData(data, gpucore.TextureDescriptor{PixelFormat: gpucore.PixelFormatBGRA8Unorm})
	if err != nil {
		t.Fatalf("LoadTextureFromData() error = %v", err)
	}
	if tex.Width != 3 || tex.Height != 2 {
		t.Errorf("size = %dx%d, want 3x2", tex.Width, tex.Height)
	}
	got, err := r.ReadTexture(tex.ID)
	if err != nil {
		t.Fatalf("ReadTexture() error = %v", err)
	}
	if want := []byte{200, 100, 50, 255}; !bytes.Equal(got[:4], want) {
		t.Errorf("texel (0,0) = %v, want %v", got[:4], want)
	}

	resized, err := r.LoadTextureFromData(data, gpucore.TextureDescriptor{Width: 6, Height: 4})
	if err != nil {
		t.Fatalf("LoadTextureFromData(resize) error = %v", err)
	}
	if resized.Width != 6 || resized.Height != 4 {
		t.Errorf("resized = %dx%d, want 6x4", resized.Width, resized.Height)
	}

	if _, err := r.LoadTextureFromData([]byte("not an image"), gpucore.TextureDescriptor{}); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("LoadTextureFromData(garbage) error = %v, want ErrInvalidDescriptor", err)
	}
}

func TestLoadTextureFromDataSizeLimit(t *testing.T) {
	r := newRegistry(t)
	tiny := encodePNG(t, 1, 1, color.NRGBA{A: 255})
	limit := software.MaxTextureSize

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := r.LoadTextureFromData(tiny, gpucore.TextureDescriptor{Width: limit + 1, Height: 4096})
	runtime.ReadMemStats(&after)
	if !errors.Is(err, ErrResourceCreationFailed) {
		t.Errorf("LoadTextureFromData(oversized request) error = %v, want ErrResourceCreationFailed", err)
	}
	if grew := after.TotalAlloc - before.TotalAlloc; grew > 16<<20 {
		t.Errorf("oversized request allocated %d bytes before rejection", grew)
	}

	wide := encodePNG(t, limit+1, 1, color.NRGBA{A: 255})
	if _, err := r.LoadTextureFromData(wide, gpucore.TextureDescriptor{}); !errors.Is(err, imageio.ErrTooLarge) {
		t.Errorf("LoadTextureFromData(oversized image) error = %v, want imageio.ErrTooLarge", err)
	}
	if got := r.Stats().Textures; got != 0 {
		t.Errorf("Stats().Textures = %d after rejected loads, want 0", got)
	}
}

func TestLoadTextureFromURL(t *testing.T) {
	r := newRegistry(t)
	data := encodePNG(t, 2, 2, color.NRGBA{G: 255, A: 255})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/img.png" {
			http.NotFound(w, req)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "img.png")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for _, url := range []string{srv.URL + "/img.png", "file://" + path, path} {
		tex, err := r.LoadTextureFromURL(ctx, url, gpucore.TextureDescriptor{})
		if err != nil {
			t.Errorf("LoadTextureFromURL(%q) error = %v", url, err)
			continue
		}
		if tex.Width != 2 || tex.Height != 2 {
			t.Errorf("LoadTextureFromURL(%q) size = %dx%d, want 2x2", url, tex.Width, tex.Height)
		}
	}

	if _, err := r.LoadTextureFromURL(ctx, srv.URL+"/missing.png", gpucore.TextureDescriptor{}); err == nil {
		t.Error("LoadTextureFromURL(404) should fail")
	}
}

func TestGenerateMipmaps(t *testing.T) {
	r := newRegistry(t)
	tex, err := r.CreateTexture(gpucore.TextureDescriptor{Width: 4, Height: 4, MipmapLevelCount: 3})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	if err := r.GenerateMipmaps(tex.ID); err != nil {
		t.Errorf("GenerateMipmaps() error = %v", err)
	}
	if err := r.GenerateMipmaps("0000000000000099"); !errors.Is(err, ErrTextureNotFound) {
		t.Errorf("GenerateMipmaps(unknown) error = %v, want ErrTextureNotFound", err)
	}
}

package gpubridge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/internal/composite"
	"github.com/gogpu/gpubridge/internal/imageio"
)

// MaxFetchBytes bounds the size of a file read by LoadTextureFromURL and
// LoadMeshFromURL.
const MaxFetchBytes = 64 << 20

// LoadTextureFromData decodes an encoded image (PNG, JPEG, GIF, WebP, BMP
// or TIFF) into a new texture. Zero Width and Height take the image size;
// a different size scales the image. PixelFormat defaults to RGBA8Unorm and
// must be an 8-bit colour format. Mip levels beyond the first are generated.
func (r *Registry) LoadTextureFromData(data []byte, d gpucore.TextureDescriptor) (Texture, error) {
	// Requested sizes are checked before decoding so a tiny image cannot be
	// scaled into an oversized allocation.
	limit := r.info.MaxTextureSize
	if err := checkTextureLimit(d.Width, d.Height, limit); err != nil {
		return Texture{}, err
	}
	img, _, err := imageio.Decode(data, limit)
	if err != nil {
		return Texture{}, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}
	b := img.Bounds()
	if d.Width == 0 && d.Height == 0 {
		d.Width, d.Height = b.Dx(), b.Dy()
	}
	if d.PixelFormat == "" {
		d.PixelFormat = gpucore.PixelFormatRGBA8Unorm
	}
	if !d.PixelFormat.IsRGBA8() {
		return Texture{}, fmt.Errorf("%w: image textures need an 8-bit colour format, got %q",
			ErrInvalidDescriptor, d.PixelFormat)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return Texture{}, fmt.Errorf("%w: texture size must be positive: %dx%d", ErrInvalidDescriptor, d.Width, d.Height)
	}
	if d.Width != b.Dx() || d.Height != b.Dy() {
		img = composite.Resize(img, d.Width, d.Height)
	}
	pix := imageio.NRGBA(img).Pix
	if d.PixelFormat.IsBGRA() {
		pix = append([]byte(nil), pix...)
		imageio.SwapRB(pix)
	}

	if err := r.lock(); err != nil {
		return Texture{}, err
	}
	defer r.mu.Unlock()
	h, t, err := r.createTexture(d)
	if err != nil {
		return Texture{}, err
	}
	if err := r.writeTexture(t, gpucore.Region{Width: d.Width, Height: d.Height}, pix); err != nil {
		r.releaseTexture(h, t)
		return Texture{}, fmt.Errorf("%w: upload: %w", ErrResourceCreationFailed, err)
	}
	if t.desc.MipmapLevelCount > 1 {
		if err := r.backend.GenerateMipmaps(t.native); err != nil {
			r.log.Warn("gpubridge: mipmap generation failed", "id", idOf(h), "err", err)
		}
	}
	return t.snapshot(h), nil
}

// LoadTextureFromURL fetches an image and loads it like LoadTextureFromData.
// http and https URLs are fetched with ctx; file URLs and bare paths are
// read from disk.
func (r *Registry) LoadTextureFromURL(ctx context.Context, rawURL string, d gpucore.TextureDescriptor) (Texture, error) {
	data, err := fetch(ctx, rawURL)
	if err != nil {
		return Texture{}, err
	}
	return r.LoadTextureFromData(data, d)
}

func fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || rawURL == "" {
		return nil, fmt.Errorf("%w: bad url %q", ErrInvalidDescriptor, rawURL)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: fetch %s: %w", ErrResourceCreationFailed, rawURL, err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: fetch %s: %s", ErrResourceCreationFailed, rawURL, resp.Status)
		}
		return readLimited(resp.Body, rawURL)
	case "file":
		return readFile(u.Path)
	case "":
		return readFile(rawURL)
	default:
		return nil, fmt.Errorf("%w: unsupported url scheme %q", ErrInvalidDescriptor, u.Scheme)
	}
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResourceCreationFailed, err)
	}
	defer func() {
		_ = f.Close()
	}()
	return readLimited(f, path)
}

func readLimited(rd io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(rd, MaxFetchBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrResourceCreationFailed, name, err)
	}
	if len(data) > MaxFetchBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrInvalidDescriptor, name, MaxFetchBytes)
	}
	return data, nil
}

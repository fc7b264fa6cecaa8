// Package imageio sniffs, decodes and encodes the image formats textures
// and canvases accept.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // decoder
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // decoder
)

var (
	// ErrUnsupported is returned for formats that cannot be decoded or encoded.
	ErrUnsupported = errors.New("imageio: unsupported format")

	// ErrTooLarge is returned when an image header declares a size above
	// the decode limit.
	ErrTooLarge = errors.New("imageio: image too large")
)

// decodable lists the sniffed extensions with a registered decoder.
var decodable = map[string]bool{
	"png": true, "jpg": true, "gif": true, "webp": true, "bmp": true, "tif": true,
}

// Sniff returns the extension of the image format in data.
func Sniff(data []byte) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return "", fmt.Errorf("imageio: sniff: %w", err)
	}
	if kind == filetype.Unknown || !decodable[kind.Extension] {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, kind.Extension)
	}
	return kind.Extension, nil
}

// Decode sniffs and decodes data. When maxSide is positive the header is
// read first and images wider or taller than maxSide are rejected with
// ErrTooLarge before any pixels are allocated.
func Decode(data []byte, maxSide int) (image.Image, string, error) {
	ext, err := Sniff(data)
	if err != nil {
		return nil, "", err
	}
	if maxSide > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, ext, fmt.Errorf("imageio: decode %s header: %w", ext, err)
		}
		if cfg.Width > maxSide || cfg.Height > maxSide {
			return nil, ext, fmt.Errorf("%w: %dx%d exceeds %d", ErrTooLarge, cfg.Width, cfg.Height, maxSide)
		}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ext, fmt.Errorf("imageio: decode %s: %w", ext, err)
	}
	return img, ext, nil
}

// Encode writes img in the named format. jpg and jpeg take a quality in
// [1,100]; 0 selects the encoder default.
func Encode(w io.Writer, img image.Image, format string, quality int) error {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, img)
	case "jpg", "jpeg":
		opts := &jpeg.Options{Quality: jpeg.DefaultQuality}
		if quality > 0 {
			opts.Quality = min(quality, 100)
		}
		return jpeg.Encode(w, img, opts)
	case "bmp":
		return bmp.Encode(w, img)
	case "tif", "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupported, format)
	}
}

// NRGBA converts img to straight-alpha RGBA with its origin at (0,0).
func NRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// RGBA converts img to premultiplied RGBA with its origin at (0,0).
func RGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if r, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return r
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// SwapRB exchanges the red and blue channels of 4-byte texels in place.
func SwapRB(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

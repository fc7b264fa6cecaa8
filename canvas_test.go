package gpubridge

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/gogpu/gpubridge/backend/software"
	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/internal/imageio"
)

var (
	white = gpucore.Color{Red: 1, Green: 1, Blue: 1, Alpha: 1}
	red   = gpucore.Color{Red: 1, Alpha: 1}
	blue  = gpucore.Color{Blue: 1, Alpha: 1}
)

func newCanvas(t *testing.T, r *Registry, w, h int) Canvas2D {
	t.Helper()
	c, err := r.CreateCanvas2D(gpucore.Canvas2DDescriptor{Width: w, Height: h})
	if err != nil {
		t.Fatalf("CreateCanvas2D() error = %v", err)
	}
	if err := r.ClearCanvas2D(c.ID, white); err != nil {
		t.Fatalf("ClearCanvas2D() error = %v", err)
	}
	return c
}

func pixel(t *testing.T, r *Registry, id ID, x, y int) color.NRGBA {
	t.Helper()
	c, err := r.GetCanvas2DPixel(id, x, y)
	if err != nil {
		t.Fatalf("GetCanvas2DPixel(%d, %d) error = %v", x, y, err)
	}
	return c.NRGBA()
}

func TestCreateCanvas2D(t *testing.T) {
	r := newRegistry(t)
	c, err := r.CreateCanvas2D(gpucore.Canvas2DDescriptor{Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("CreateCanvas2D() error = %v", err)
	}
	if c.Width != 800 || c.Height != 600 || c.PixelFormat != gpucore.PixelFormatRGBA8Unorm {
		t.Errorf("CreateCanvas2D() = %dx%d %s, want 800x600 RGBA8Unorm", c.Width, c.Height, c.PixelFormat)
	}
	tex, err := r.GetTexture(c.TextureID)
	if err != nil {
		t.Fatalf("GetTexture(canvas texture) error = %v", err)
	}
	if tex.Canvas != c.ID || tex.Width != 800 || tex.Height != 600 {
		t.Errorf("canvas texture = %+v, want 800x600 owned by %s", tex, c.ID)
	}
	if c.LineStyle.Width != DefaultLineStyle.Width || c.TextStyle.FontSize != DefaultFontSize {
		t.Errorf("default styles = %+v / %+v", c.LineStyle, c.TextStyle)
	}

	for _, d := range []gpucore.Canvas2DDescriptor{
		{Width: 0, Height: 10},
		{Width: 10, Height: 10, PixelFormat: gpucore.PixelFormatRGBA16Float},
	} {
		if _, err := r.CreateCanvas2D(d); !errors.Is(err, ErrInvalidDescriptor) {
			t.Errorf("CreateCanvas2D(%+v) error = %v, want ErrInvalidDescriptor", d, err)
		}
	}
}

func TestResizeCanvas2D(t *testing.T) {
	r := newRegistry(t)
	c, _ := r.CreateCanvas2D(gpucore.Canvas2DDescriptor{Width: 800, Height: 600})

	resized, err := r.ResizeCanvas2D(c.ID, 400, 300)
	if err != nil {
		t.Fatalf("ResizeCanvas2D() error = %v", err)
	}
	if resized.ID != c.ID {
		t.Errorf("canvas id changed: %s -> %s", c.ID, resized.ID)
	}
	if resized.Width != 400 || resized.Height != 300 {
		t.Errorf("size = %dx%d, want 400x300", resized.Width, resized.Height)
	}
	if resized.TextureID == c.TextureID {
		t.Error("TextureID unchanged after resize")
	}
	if _, err := r.GetTexture(c.TextureID); !errors.Is(err, ErrTextureNotFound) {
		t.Errorf("GetTexture(old) error = %v, want ErrTextureNotFound", err)
	}
	if tex, err := r.GetTexture(resized.TextureID); err != nil || tex.Width != 400 || tex.Height != 300 {
		t.Errorf("GetTexture(new) = %+v, %v, want 400x300", tex, err)
	}
	if n := r.Stats().Textures; n != 1 {
		t.Errorf("Stats().Textures = %d, want 1", n)
	}

	if _, err := r.ResizeCanvas2D(c.ID, 0, 10); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("ResizeCanvas2D(0, 10) error = %v, want ErrInvalidDescriptor", err)
	}
	if _, err := r.ResizeCanvas2D("00000000000000ff", 10, 10); !errors.Is(err, ErrCanvasNotFound) {
		t.Errorf("ResizeCanvas2D(unknown) error = %v, want ErrCanvasNotFound", err)
	}
}

func TestReleaseCanvas2D(t *testing.T) {
	r := newRegistry(t)
	c := newCanvas(t, r, 4, 4)
	if _, err := r.CreateDrawingLayer(c.ID, "a"); err != nil {
		t.Fatalf("CreateDrawingLayer() error = %v", err)
	}

	// The texture belongs to the canvas and outlives a direct release.
	r.ReleaseTexture(c.TextureID)
	if _, err := r.GetTexture(c.TextureID); err != nil {
		t.Errorf("GetTexture() after ReleaseTexture on canvas texture error = %v", err)
	}

	r.ReleaseCanvas2D(c.ID)
	r.ReleaseCanvas2D(c.ID)
	if _, err := r.GetTexture(c.TextureID); !errors.Is(err, ErrTextureNotFound) {
		t.Errorf("GetTexture() after ReleaseCanvas2D error = %v, want ErrTextureNotFound", err)
	}
	if s := r.Stats(); s.Canvases != 0 || s.Layers != 0 || s.Textures != 0 {
		t.Errorf("Stats() = %+v, want nothing live", s)
	}
}

func TestLayers(t *testing.T) {
	r := newRegistry(t)
	c := newCanvas(t, r, 8, 8)

	l1, err := r.CreateDrawingLayer(c.ID, "L1")
	if err != nil {
		t.Fatalf("CreateDrawingLayer() error = %v", err)
	}
	if !l1.Visible || l1.Opacity != 1 || l1.BlendMode != gpucore.BlendModeNormal {
		t.Errorf("new layer = %+v, want visible, opaque, normal", l1)
	}
	if l1.Commands == nil || len(l1.Commands) != 0 {
		t.Errorf("Commands = %v, want empty", l1.Commands)
	}
	l2, _ := r.CreateDrawingLayer(c.ID, "L2")

	if err := r.DeleteDrawingLayer(c.ID, l1.ID); err != nil {
		t.Fatalf("DeleteDrawingLayer() error = %v", err)
	}
	layers, err := r.Layers(c.ID)
	if err != nil {
		t.Fatalf("Layers() error = %v", err)
	}
	if len(layers) != 1 || layers[0].ID != l2.ID || layers[0].Name != "L2" {
		t.Errorf("Layers() = %+v, want only L2 with id %s", layers, l2.ID)
	}

	l3, _ := r.CreateDrawingLayer(c.ID, "L3")
	layers, _ = r.Layers(c.ID)
	if len(layers) != 2 || layers[0].ID != l2.ID || layers[1].ID != l3.ID {
		t.Errorf("Layers() order = %+v, want L2, L3", layers)
	}
	if got, _ := r.GetCanvas2D(c.ID); got.ActiveLayerID != l3.ID || got.LayerCount != 2 {
		t.Errorf("ActiveLayerID = %s, LayerCount = %d, want %s, 2", got.ActiveLayerID, got.LayerCount, l3.ID)
	}

	// Deleting the active layer activates the new top layer.
	_ = r.DeleteDrawingLayer(c.ID, l3.ID)
	if got, _ := r.GetCanvas2D(c.ID); got.ActiveLayerID != l2.ID {
		t.Errorf("ActiveLayerID after deleting active = %s, want %s", got.ActiveLayerID, l2.ID)
	}
}

func TestLayerErrors(t *testing.T) {
	r := newRegistry(t)
	a := newCanvas(t, r, 4, 4)
	b := newCanvas(t, r, 4, 4)
	la, _ := r.CreateDrawingLayer(a.ID, "a")
	lb, _ := r.CreateDrawingLayer(b.ID, "b")
	_ = r.DeleteDrawingLayer(b.ID, lb.ID)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"other canvas", r.SetActiveLayer(b.ID, la.ID), ErrLayerNotFound},
		{"deleted", r.DeleteDrawingLayer(b.ID, lb.ID), ErrLayerNotFound},
		{"unknown canvas", r.SetActiveLayer("00000000000000ff", la.ID), ErrCanvasNotFound},
		{"opacity above 1", r.SetLayerOpacity(a.ID, la.ID, 1.5), ErrInvalidDescriptor},
		{"negative opacity", r.SetLayerOpacity(a.ID, la.ID, -0.1), ErrInvalidDescriptor},
		{"bad blend mode", r.SetLayerBlendMode(a.ID, la.ID, "plasma"), ErrInvalidDescriptor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("error = %v, want %v", tt.err, tt.want)
			}
		})
	}
	if _, err := r.CreateDrawingLayer("00000000000000ff", "x"); !errors.Is(err, ErrCanvasNotFound) {
		t.Errorf("CreateDrawingLayer(unknown) error = %v, want ErrCanvasNotFound", err)
	}
}

func TestDrawRecordsIntoActiveLayer(t *testing.T) {
	r := newRegistry(t, WithClock(func() time.Time { return fixedTime }))
	c := newCanvas(t, r, 10, 10)
	l, _ := r.CreateDrawingLayer(c.ID, "shapes")

	fill := &gpucore.FillStyle{Color: red, Pattern: gpucore.FillPatternSolid}
	cmdID, err := r.DrawRectangle2D(c.ID, gpucore.Rect{X: 2, Y: 2, Width: 4, Height: 4}, fill, nil)
	if err != nil {
		t.Fatalf("DrawRectangle2D() error = %v", err)
	}
	if cmdID == "" {
		t.Fatal("DrawRectangle2D() returned an empty command id")
	}

	got, err := r.GetDrawingLayer(c.ID, l.ID)
	if err != nil {
		t.Fatalf("GetDrawingLayer() error = %v", err)
	}
	if len(got.Commands) != 1 {
		t.Fatalf("len(Commands) = %d, want 1", len(got.Commands))
	}
	cmd := got.Commands[0]
	if cmd.ID != string(cmdID) || cmd.Type != gpucore.CommandRectangle || cmd.Timestamp != fixedTime.UnixMilli() {
		t.Errorf("command = %+v", cmd)
	}

	// Snapshots are deep copies.
	cmd.Data.Rect.Width = 100
	again, _ := r.GetDrawingLayer(c.ID, l.ID)
	if again.Commands[0].Data.Rect.Width != 4 {
		t.Errorf("snapshot aliases layer state: width = %v", again.Commands[0].Data.Rect.Width)
	}

	if px := pixel(t, r, c.ID, 3, 3); px.R < 253 || px.G > 2 {
		t.Errorf("pixel(3,3) = %v, want red", px)
	}
	if px := pixel(t, r, c.ID, 8, 8); px != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("pixel(8,8) = %v, want white", px)
	}

	visible, err := r.ToggleLayerVisibility(c.ID, l.ID)
	if err != nil || visible {
		t.Fatalf("ToggleLayerVisibility() = %v, %v, want false", visible, err)
	}
	if px := pixel(t, r, c.ID, 3, 3); px.G != 255 {
		t.Errorf("pixel(3,3) with hidden layer = %v, want white", px)
	}
	_, _ = r.ToggleLayerVisibility(c.ID, l.ID)
	_ = r.SetLayerOpacity(c.ID, l.ID, 0)
	if px := pixel(t, r, c.ID, 3, 3); px.G != 255 {
		t.Errorf("pixel(3,3) with transparent layer = %v, want white", px)
	}
}

func TestDrawWithoutLayerPaintsBase(t *testing.T) {
	r := newRegistry(t)
	c := newCanvas(t, r, 10, 10)

	if _, err := r.DrawCircle2D(c.ID, gpucore.Circle{Center: gpucore.Point{X: 5, Y: 5}, Radius: 3},
		&gpucore.FillStyle{Color: blue}, nil); err != nil {
		t.Fatalf("DrawCircle2D() error = %v", err)
	}
	if px := pixel(t, r, c.ID, 5, 5); px.B != 255 || px.R != 0 {
		t.Errorf("pixel(5,5) = %v, want blue", px)
	}

	if err := r.FlushCanvas2D(c.ID); err != nil {
		t.Fatalf("FlushCanvas2D() error = %v", err)
	}
	data, err := r.ReadTexture(c.TextureID)
	if err != nil {
		t.Fatalf("ReadTexture() error = %v", err)
	}
	off := (5*10 + 5) * 4
	if got := data[off : off+4]; !bytes.Equal(got, []byte{0, 0, 255, 255}) {
		t.Errorf("texture texel (5,5) = %v, want opaque blue", got)
	}
}

func TestDrawErrors(t *testing.T) {
	r := newRegistry(t)
	c := newCanvas(t, r, 10, 10)

	tests := []struct {
		name string
		draw func() (ID, error)
		want error
	}{
		{"short path", func() (ID, error) {
			return r.DrawPath2D(c.ID, gpucore.Path{Points: []gpucore.Point{{X: 1, Y: 1}}}, nil, nil)
		}, ErrInvalidDescriptor},
		{"negative radius", func() (ID, error) {
			return r.DrawCircle2D(c.ID, gpucore.Circle{Radius: -1}, nil, nil)
		}, ErrInvalidDescriptor},
		{"negative ellipse", func() (ID, error) {
			return r.DrawEllipse2D(c.ID, gpucore.Ellipse{RadiusX: 1, RadiusY: -1}, nil, nil)
		}, ErrInvalidDescriptor},
		{"negative rect", func() (ID, error) {
			return r.DrawRectangle2D(c.ID, gpucore.Rect{Width: -2, Height: 2}, nil, nil)
		}, ErrInvalidDescriptor},
		{"unknown texture", func() (ID, error) {
			return r.DrawImage2D(c.ID, "00000000000000ff", ImageOptions{})
		}, ErrTextureNotFound},
		{"unknown canvas", func() (ID, error) {
			return r.DrawLine2D("00000000000000ff", gpucore.Point{}, gpucore.Point{X: 1}, nil)
		}, ErrCanvasNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.draw(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDrawShapes(t *testing.T) {
	r := newRegistry(t)
	c := newCanvas(t, r, 20, 20)
	line := &gpucore.LineStyle{Color: red, Width: 2}

	ids := map[ID]bool{}
	record := func(id ID, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("draw error = %v", err)
		}
		if ids[id] {
			t.Errorf("command id %s reused", id)
		}
		ids[id] = true
	}
	record(r.DrawLine2D(c.ID, gpucore.Point{X: 0, Y: 10}, gpucore.Point{X: 20, Y: 10}, line))
	record(r.DrawEllipse2D(c.ID, gpucore.Ellipse{Center: gpucore.Point{X: 10, Y: 10}, RadiusX: 6, RadiusY: 3}, nil, line))
	record(r.DrawPath2D(c.ID, gpucore.Path{Points: []gpucore.Point{{X: 1, Y: 1}, {X: 5, Y: 1}, {X: 5, Y: 5}}}, nil, nil))

	// Sampled before the text, whose glyphs cover the middle of the canvas.
	if px := pixel(t, r, c.ID, 10, 10); px.R != 255 || px.G > 40 {
		t.Errorf("pixel(10,10) on the line = %v, want red", px)
	}

	record(r.DrawText2D(c.ID, "Hi", gpucore.Point{X: 2, Y: 18}, nil))
	if len(ids) != 4 {
		t.Errorf("recorded %d commands, want 4", len(ids))
	}
}

func TestDrawImage2D(t *testing.T) {
	r := newRegistry(t)
	c := newCanvas(t, r, 6, 6)
	tex, _ := r.CreateTexture(gpucore.TextureDescriptor{Width: 2, Height: 2, PixelFormat: gpucore.PixelFormatRGBA8Unorm})
	src := bytes.Repeat([]byte{0, 0, 255, 255}, 4)
	if err := r.UpdateTexture(tex.ID, gpucore.Region{Width: 2, Height: 2}, src); err != nil {
		t.Fatalf("UpdateTexture() error = %v", err)
	}

	if _, err := r.DrawImage2D(c.ID, tex.ID, ImageOptions{At: &gpucore.Point{X: 2, Y: 2}}); err != nil {
		t.Fatalf("DrawImage2D() error = %v", err)
	}
	// The command keeps its own pixels.
	r.ReleaseTexture(tex.ID)

	if px := pixel(t, r, c.ID, 3, 3); px.B != 255 || px.R != 0 {
		t.Errorf("pixel(3,3) = %v, want blue", px)
	}
	if px := pixel(t, r, c.ID, 0, 0); px.R != 255 {
		t.Errorf("pixel(0,0) = %v, want white", px)
	}
}

func TestCanvasPixelsAndData(t *testing.T) {
	r := newRegistry(t)
	c := newCanvas(t, r, 3, 2)

	if err := r.SetCanvas2DPixel(c.ID, 2, 1, red); err != nil {
		t.Fatalf("SetCanvas2DPixel() error = %v", err)
	}
	if px := pixel(t, r, c.ID, 2, 1); px != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("pixel(2,1) = %v, want red", px)
	}
	for _, p := range [][2]int{{3, 0}, {0, 2}, {-1, 0}} {
		if err := r.SetCanvas2DPixel(c.ID, p[0], p[1], red); !errors.Is(err, ErrInvalidDescriptor) {
			t.Errorf("SetCanvas2DPixel(%v) error = %v, want ErrInvalidDescriptor", p, err)
		}
		if _, err := r.GetCanvas2DPixel(c.ID, p[0], p[1]); !errors.Is(err, ErrInvalidDescriptor) {
			t.Errorf("GetCanvas2DPixel(%v) error = %v, want ErrInvalidDescriptor", p, err)
		}
	}

	data := make([]byte, 3*2*4)
	for i := range data {
		data[i] = byte(i * 10)
		if i%4 == 3 {
			data[i] = 255
		}
	}
	if err := r.SetCanvas2DData(c.ID, data); err != nil {
		t.Fatalf("SetCanvas2DData() error = %v", err)
	}
	got, err := r.GetCanvas2DData(c.ID)
	if err != nil {
		t.Fatalf("GetCanvas2DData() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("GetCanvas2DData() = %v, want %v", got, data)
	}
	if err := r.SetCanvas2DData(c.ID, data[:5]); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("SetCanvas2DData(short) error = %v, want ErrInvalidDescriptor", err)
	}
}

func TestExportImportCanvas2D(t *testing.T) {
	r := newRegistry(t)
	c := newCanvas(t, r, 8, 6)
	_ = r.SetCanvas2DPixel(c.ID, 0, 0, red)

	for _, format := range []string{"png", "jpeg", "bmp", "tiff"} {
		data, err := r.ExportCanvas2D(c.ID, format, 90)
		if err != nil {
			t.Errorf("ExportCanvas2D(%s) error = %v", format, err)
			continue
		}
		img, _, err := imageio.Decode(data, 0)
		if err != nil {
			t.Errorf("decode %s export: %v", format, err)
			continue
		}
		if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
			t.Errorf("%s export size = %dx%d, want 8x6", format, b.Dx(), b.Dy())
		}
	}
	if _, err := r.ExportCanvas2D(c.ID, "gif", 0); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ExportCanvas2D(gif) error = %v, want ErrUnsupportedFormat", err)
	}

	other := newCanvas(t, r, 4, 4)
	if err := r.ImportImageToCanvas2D(other.ID, encodePNG(t, 2, 2, color.NRGBA{G: 255, A: 255}), gpucore.Point{X: 1, Y: 1}); err != nil {
		t.Fatalf("ImportImageToCanvas2D() error = %v", err)
	}
	if px := pixel(t, r, other.ID, 2, 2); px != (color.NRGBA{0, 255, 0, 255}) {
		t.Errorf("pixel(2,2) = %v, want green", px)
	}
	if px := pixel(t, r, other.ID, 0, 0); px != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("pixel(0,0) = %v, want white", px)
	}
	if err := r.ImportImageToCanvas2D(other.ID, []byte("nope"), gpucore.Point{}); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("ImportImageToCanvas2D(garbage) error = %v, want ErrInvalidDescriptor", err)
	}
	wide := encodePNG(t, software.MaxTextureSize+1, 1, color.NRGBA{A: 255})
	if err := r.ImportImageToCanvas2D(other.ID, wide, gpucore.Point{}); !errors.Is(err, imageio.ErrTooLarge) {
		t.Errorf("ImportImageToCanvas2D(oversized) error = %v, want imageio.ErrTooLarge", err)
	}
}

func TestCropAndFlipCanvas2D(t *testing.T) {
	r := newRegistry(t)
	c := newCanvas(t, r, 10, 10)
	_ = r.SetCanvas2DPixel(c.ID, 0, 0, red)

	if err := r.FlipCanvas2D(c.ID, true); err != nil {
		t.Fatalf("FlipCanvas2D() error = %v", err)
	}
	if px := pixel(t, r, c.ID, 9, 0); px != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("pixel(9,0) after horizontal flip = %v, want red", px)
	}

	cropped, err := r.CropCanvas2D(c.ID, gpucore.Rect{X: 5, Y: 0, Width: 5, Height: 4})
	if err != nil {
		t.Fatalf("CropCanvas2D() error = %v", err)
	}
	if cropped.Width != 5 || cropped.Height != 4 || cropped.TextureID == c.TextureID {
		t.Errorf("CropCanvas2D() = %+v, want 5x4 with a new texture", cropped)
	}
	if px := pixel(t, r, c.ID, 4, 0); px != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("pixel(4,0) after crop = %v, want red", px)
	}
	if _, err := r.CropCanvas2D(c.ID, gpucore.Rect{X: 50, Y: 50, Width: 5, Height: 5}); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("CropCanvas2D(outside) error = %v, want ErrInvalidDescriptor", err)
	}
}

func TestCompositeCanvas2D(t *testing.T) {
	r := newRegistry(t)
	dst := newCanvas(t, r, 4, 4)
	src, _ := r.CreateCanvas2D(gpucore.Canvas2DDescriptor{Width: 2, Height: 2})
	_ = r.ClearCanvas2D(src.ID, red)

	if err := r.CompositeCanvas2D(dst.ID, src.ID, gpucore.BlendModeNormal, 1); err != nil {
		t.Fatalf("CompositeCanvas2D() error = %v", err)
	}
	if px := pixel(t, r, dst.ID, 1, 1); px.R != 255 || px.G > 2 {
		t.Errorf("pixel(1,1) = %v, want red", px)
	}
	if px := pixel(t, r, dst.ID, 3, 3); px.G < 253 {
		t.Errorf("pixel(3,3) = %v, want white", px)
	}
	if err := r.CompositeCanvas2D(dst.ID, "00000000000000ff", gpucore.BlendModeNormal, 1); !errors.Is(err, ErrCanvasNotFound) {
		t.Errorf("CompositeCanvas2D(unknown source) error = %v, want ErrCanvasNotFound", err)
	}
	if err := r.CompositeCanvas2D(dst.ID, src.ID, "plasma", 1); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("CompositeCanvas2D(bad mode) error = %v, want ErrInvalidDescriptor", err)
	}
}

func TestMeasureText2D(t *testing.T) {
	r := newRegistry(t)
	short, err := r.MeasureText2D("Hi", gpucore.TextStyle{FontSize: 16})
	if err != nil {
		t.Fatalf("MeasureText2D() error = %v", err)
	}
	long, _ := r.MeasureText2D("Hello, world", gpucore.TextStyle{FontSize: 16})
	if short.Width <= 0 || short.Height <= 0 {
		t.Errorf("MeasureText2D(Hi) = %+v, want positive extent", short)
	}
	if long.Width <= short.Width {
		t.Errorf("MeasureText2D widths = %v, %v, want longer text wider", short.Width, long.Width)
	}
	def, _ := r.MeasureText2D("Hi", gpucore.TextStyle{})
	if def != short {
		t.Errorf("MeasureText2D with no size = %+v, want default size %+v", def, short)
	}
}

func TestCanvasStylesAndTransforms(t *testing.T) {
	r := newRegistry(t)
	c := newCanvas(t, r, 4, 4)

	if err := r.SetLineStyle2D(c.ID, gpucore.LineStyle{Width: -1}); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("SetLineStyle2D(negative) error = %v, want ErrInvalidDescriptor", err)
	}
	if err := r.SetBrushStyle2D(c.ID, gpucore.BrushStyle{Size: 4, BlendMode: gpucore.BlendModeMultiply}); err != nil {
		t.Errorf("SetBrushStyle2D() error = %v", err)
	}
	_ = r.SetTextStyle2D(c.ID, gpucore.TextStyle{FontFamily: "monospace"})
	got, _ := r.GetCanvas2D(c.ID)
	if got.BrushStyle.BlendMode != gpucore.BlendModeMultiply || got.TextStyle.FontSize != DefaultFontSize {
		t.Errorf("styles = %+v / %+v", got.BrushStyle, got.TextStyle)
	}

	ops := []func(ID) error{
		r.Save2D,
		r.Restore2D,
		func(id ID) error { return r.Translate2D(id, 1, 2) },
		func(id ID) error { return r.Rotate2D(id, 0.5) },
		func(id ID) error { return r.Scale2D(id, 2, 2) },
		func(id ID) error { return r.SetTransform2D(id, [6]float64{1, 0, 0, 1, 0, 0}) },
	}
	for i, op := range ops {
		if err := op(c.ID); err != nil {
			t.Errorf("transform op %d error = %v", i, err)
		}
		if err := op("00000000000000ff"); !errors.Is(err, ErrCanvasNotFound) {
			t.Errorf("transform op %d on unknown canvas error = %v, want ErrCanvasNotFound", i, err)
		}
	}
}

func TestLayerOrderWithParallelRender(t *testing.T) {
	r := newRegistry(t, WithRenderWorkers(4))
	c := newCanvas(t, r, 6, 6)
	full := gpucore.Rect{Width: 6, Height: 6}
	for _, col := range []gpucore.Color{red, blue, {Green: 1, Alpha: 1}} {
		if _, err := r.CreateDrawingLayer(c.ID, ""); err != nil {
			t.Fatalf("CreateDrawingLayer() error = %v", err)
		}
		if _, err := r.DrawRectangle2D(c.ID, full, &gpucore.FillStyle{Color: col}, nil); err != nil {
			t.Fatalf("DrawRectangle2D() error = %v", err)
		}
	}
	if px := pixel(t, r, c.ID, 3, 3); px.G < 253 || px.R > 2 || px.B > 2 {
		t.Errorf("pixel(3,3) = %v, want the top layer's green", px)
	}
}

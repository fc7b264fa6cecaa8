package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/gogpu/gpubridge"
	"github.com/gogpu/gpubridge/backend"
)

func newDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	reg, err := gpubridge.New(gpubridge.WithBackendName(backend.BackendSoftware))
	if err != nil {
		t.Fatalf("gpubridge.New() error = %v", err)
	}
	t.Cleanup(reg.Close)
	return NewDispatcher(reg, nil)
}

type reply struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

// send runs one request and decodes the reply.
func send(t *testing.T, d *Dispatcher, method string, params any) reply {
	t.Helper()
	raw, err := json.Marshal(params)
	if err != nil {
		t.Fatal(err)
	}
	msg, _ := json.Marshal(Request{ID: json.RawMessage(`"req"`), Method: method, Params: raw})
	var out reply
	if err := json.Unmarshal(d.Handle(context.Background(), msg), &out); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if string(out.ID) != `"req"` {
		t.Errorf("reply id = %s, want \"req\"", out.ID)
	}
	return out
}

func mustResult[R any](t *testing.T, d *Dispatcher, method string, params any) R {
	t.Helper()
	out := send(t, d, method, params)
	if out.Error != nil {
		t.Fatalf("%s: error = %v", method, out.Error)
	}
	var r R
	if err := json.Unmarshal(out.Result, &r); err != nil {
		t.Fatalf("%s: decode result: %v", method, err)
	}
	return r
}

func TestDispatchTextureRoundTrip(t *testing.T) {
	d := newDispatcher(t)
	tex := mustResult[gpubridge.Texture](t, d, "createTexture", map[string]any{
		"width": 1, "height": 1, "pixelFormat": "RGBA8Unorm",
	})
	if tex.ID == "" || tex.Width != 1 {
		t.Fatalf("createTexture = %+v", tex)
	}
	mustResult[ok](t, d, "updateTexture", map[string]any{
		"id": tex.ID, "region": map[string]int{"width": 1, "height": 1}, "data": []byte{1, 2, 3, 4},
	})
	got := mustResult[bytesResult](t, d, "readTexture", map[string]any{"id": tex.ID})
	if fmt.Sprint(got.Data) != "[1 2 3 4]" {
		t.Errorf("readTexture = %v, want [1 2 3 4]", got.Data)
	}
	mustResult[ok](t, d, "releaseTexture", map[string]any{"id": tex.ID})
	if out := send(t, d, "getTexture", map[string]any{"id": tex.ID}); out.Error == nil || out.Error.Code != CodeResourceNotFound {
		t.Errorf("getTexture(released) error = %v, want %s", out.Error, CodeResourceNotFound)
	}
}

func TestDispatchErrorCodes(t *testing.T) {
	d := newDispatcher(t)
	const missing = "00000000000000ff"

	tests := []struct {
		method string
		params any
		want   Code
	}{
		{"noSuchMethod", nil, CodeUnknownMethod},
		{"createTexture", map[string]any{"width": -1, "height": 1}, CodeInvalidDescriptor},
		{"createTexture", map[string]any{"width": 1, "height": 1, "colour": "red"}, CodeInvalidDescriptor},
		{"createShaderLibrary", map[string]any{"source": "fn broken( {"}, CodeShaderCompilationFailed},
		{"createRenderPipelineState", map[string]any{"fragmentFunction": "fs"}, CodePipelineCreationFailed},
		{"createRenderPipelineState", map[string]any{"vertexFunction": "vs", "fragmentFunction": "fs", "library": missing}, CodePipelineCreationFailed},
		{"startAnimation", map[string]any{"id": missing}, CodeAnimationNotFound},
		{"getCanvas2D", map[string]any{"id": missing}, CodeCanvasNotFound},
		{"getMesh", map[string]any{"id": missing}, CodeResourceNotFound},
		{"loadMeshFromData", map[string]any{"data": []byte("v 0 0 0"), "format": "fbx"}, CodeUnsupportedFormat},
		{"loadMeshFromURL", map[string]any{"url": "scene.fbx"}, CodeUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			out := send(t, d, tt.method, tt.params)
			if out.Error == nil {
				t.Fatalf("%s: no error, result %s", tt.method, out.Result)
			}
			if out.Error.Code != tt.want {
				t.Errorf("%s: code = %s, want %s (%s)", tt.method, out.Error.Code, tt.want, out.Error.Message)
			}
		})
	}
}

func TestDispatchCanvasAndLayers(t *testing.T) {
	d := newDispatcher(t)
	c := mustResult[gpubridge.Canvas2D](t, d, "createCanvas2D", map[string]any{"width": 8, "height": 8})
	l := mustResult[gpubridge.DrawingLayer](t, d, "createDrawingLayer", map[string]any{"canvasId": c.ID, "name": "ink"})

	cmd := mustResult[commandResult](t, d, "drawRectangle2D", map[string]any{
		"id":   c.ID,
		"rect": map[string]float64{"x": 0, "y": 0, "width": 8, "height": 8},
		"fill": map[string]any{"color": map[string]float64{"red": 1, "alpha": 1}},
	})
	if cmd.CommandID == "" {
		t.Error("drawRectangle2D returned no command id")
	}
	px := mustResult[map[string]float64](t, d, "getCanvas2DPixel", map[string]any{"id": c.ID, "x": 4, "y": 4})
	if px["red"] < 0.99 || px["green"] > 0.01 || px["alpha"] < 0.99 {
		t.Errorf("getCanvas2DPixel = %v, want opaque red", px)
	}

	vis := mustResult[visibilityResult](t, d, "toggleLayerVisibility", map[string]any{"canvasId": c.ID, "layerId": l.ID})
	if vis.Visible {
		t.Error("toggleLayerVisibility: layer still visible")
	}
	layers := mustResult[[]gpubridge.DrawingLayer](t, d, "layers", map[string]any{"id": c.ID})
	if len(layers) != 1 || len(layers[0].Commands) != 1 {
		t.Errorf("layers = %+v, want one layer with one command", layers)
	}
	if out := send(t, d, "setActiveLayer", map[string]any{"canvasId": c.ID, "layerId": "00000000000000ff"}); out.Error == nil || out.Error.Code != CodeLayerNotFound {
		t.Errorf("setActiveLayer(unknown) error = %v, want %s", out.Error, CodeLayerNotFound)
	}
	if out := send(t, d, "exportCanvas2D", map[string]any{"id": c.ID, "format": "gif"}); out.Error == nil || out.Error.Code != CodeUnsupportedFormat {
		t.Errorf("exportCanvas2D(gif) error = %v, want %s", out.Error, CodeUnsupportedFormat)
	}
}

func TestHandleMalformed(t *testing.T) {
	d := newDispatcher(t)
	var out reply
	if err := json.Unmarshal(d.Handle(context.Background(), []byte("{not json")), &out); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if out.Error == nil || out.Error.Code != CodeInvalidDescriptor {
		t.Errorf("Handle(malformed) error = %v, want %s", out.Error, CodeInvalidDescriptor)
	}
}

func TestMethodsCoverRegistry(t *testing.T) {
	d := newDispatcher(t)
	for _, name := range []string{
		"createTexture", "loadTextureFromURL", "createBuffer", "createShaderLibrary",
		"createRenderPipelineState", "createComputePipelineState", "createMesh", "loadMeshFromURL",
		"createAnimation", "createCanvas2D", "createDrawingLayer", "deviceInfo",
	} {
		if _, found := d.methods[name]; !found {
			t.Errorf("method %q not registered", name)
		}
	}
	names := d.Methods()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("Methods() not sorted at %q, %q", names[i-1], names[i])
		}
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want Code
	}{
		{fmt.Errorf("wrap: %w", gpubridge.ErrLayerNotFound), CodeLayerNotFound},
		{gpubridge.ErrTextureNotFound, CodeResourceNotFound},
		{gpubridge.ErrNotSupported, CodeNotSupported},
		{fmt.Errorf("%w: %w", gpubridge.ErrPipelineCreationFailed, gpubridge.ErrShaderNotFound), CodePipelineCreationFailed},
		{gpubridge.ErrResourceCreationFailed, CodeResourceCreationFailed},
		{gpubridge.ErrClosed, CodeInternal},
		{&Error{Code: CodeUnknownMethod}, CodeUnknownMethod},
	}
	for _, tt := range tests {
		if got := CodeOf(tt.err); got != tt.want {
			t.Errorf("CodeOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestEncodeEvent(t *testing.T) {
	data, err := EncodeEvent(gpubridge.Event{Type: gpubridge.EventAnimationComplete, ID: "0000000100000002"})
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}
	want := `{"event":"animationComplete","data":{"id":"0000000100000002"}}`
	if string(data) != want {
		t.Errorf("EncodeEvent() = %s, want %s", data, want)
	}
}

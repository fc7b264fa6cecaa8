package bridge

import (
	"context"

	"github.com/gogpu/gpubridge"
	"github.com/gogpu/gpubridge/gpucore"
)

type idParams struct {
	ID gpubridge.ID `json:"id"`
}

type textureDataParams struct {
	Data       []byte                    `json:"data"`
	Descriptor gpucore.TextureDescriptor `json:"descriptor"`
}

type textureURLParams struct {
	URL        string                    `json:"url"`
	Descriptor gpucore.TextureDescriptor `json:"descriptor"`
}

type updateTextureParams struct {
	ID     gpubridge.ID   `json:"id"`
	Region gpucore.Region `json:"region"`
	Data   []byte         `json:"data"`
}

type bufferDataParams struct {
	Data       []byte                   `json:"data"`
	Descriptor gpucore.BufferDescriptor `json:"descriptor"`
}

type updateBufferParams struct {
	ID     gpubridge.ID `json:"id"`
	Data   []byte       `json:"data"`
	Offset int          `json:"offset"`
}

type shaderParams struct {
	Label  string `json:"label"`
	Source string `json:"source"`
}

type updateMeshParams struct {
	ID gpubridge.ID `json:"id"`
	gpubridge.MeshUpdate
}

type meshDataParams struct {
	Data   []byte `json:"data"`
	Format string `json:"format"`
}

type meshURLParams struct {
	URL    string `json:"url"`
	Format string `json:"format,omitempty"`
}

type animationTimeParams struct {
	ID   gpubridge.ID `json:"id"`
	Time float64      `json:"time"`
}

type advanceParams struct {
	DeltaTime float64 `json:"deltaTime"`
}

type colorParams struct {
	ID    gpubridge.ID  `json:"id"`
	Color gpucore.Color `json:"color"`
}

type sizeParams struct {
	ID     gpubridge.ID `json:"id"`
	Width  int          `json:"width"`
	Height int          `json:"height"`
}

type rectParams struct {
	ID   gpubridge.ID `json:"id"`
	Rect gpucore.Rect `json:"rect"`
}

type flipParams struct {
	ID         gpubridge.ID `json:"id"`
	Horizontal bool         `json:"horizontal"`
}

type lineStyleParams struct {
	ID    gpubridge.ID      `json:"id"`
	Style gpucore.LineStyle `json:"style"`
}

type fillStyleParams struct {
	ID    gpubridge.ID      `json:"id"`
	Style gpucore.FillStyle `json:"style"`
}

type textStyleParams struct {
	ID    gpubridge.ID      `json:"id"`
	Style gpucore.TextStyle `json:"style"`
}

type brushStyleParams struct {
	ID    gpubridge.ID       `json:"id"`
	Style gpucore.BrushStyle `json:"style"`
}

type translateParams struct {
	ID gpubridge.ID `json:"id"`
	X  float64      `json:"x"`
	Y  float64      `json:"y"`
}

type rotateParams struct {
	ID    gpubridge.ID `json:"id"`
	Angle float64      `json:"angle"`
}

type transformParams struct {
	ID     gpubridge.ID `json:"id"`
	Matrix [6]float64   `json:"matrix"`
}

type lineParams struct {
	ID    gpubridge.ID       `json:"id"`
	From  gpucore.Point      `json:"from"`
	To    gpucore.Point      `json:"to"`
	Style *gpucore.LineStyle `json:"style,omitempty"`
}

type shapeStyle struct {
	Fill *gpucore.FillStyle `json:"fill,omitempty"`
	Line *gpucore.LineStyle `json:"line,omitempty"`
}

type drawRectParams struct {
	ID   gpubridge.ID `json:"id"`
	Rect gpucore.Rect `json:"rect"`
	shapeStyle
}

type circleParams struct {
	ID     gpubridge.ID   `json:"id"`
	Circle gpucore.Circle `json:"circle"`
	shapeStyle
}

type ellipseParams struct {
	ID      gpubridge.ID    `json:"id"`
	Ellipse gpucore.Ellipse `json:"ellipse"`
	shapeStyle
}

type pathParams struct {
	ID   gpubridge.ID `json:"id"`
	Path gpucore.Path `json:"path"`
	shapeStyle
}

type textParams struct {
	ID    gpubridge.ID       `json:"id"`
	Text  string             `json:"text"`
	At    gpucore.Point      `json:"at"`
	Style *gpucore.TextStyle `json:"style,omitempty"`
}

type imageParams struct {
	ID        gpubridge.ID `json:"id"`
	TextureID gpubridge.ID `json:"textureId"`
	gpubridge.ImageOptions
}

type measureParams struct {
	Text  string            `json:"text"`
	Style gpucore.TextStyle `json:"style"`
}

type compositeParams struct {
	ID       gpubridge.ID      `json:"id"`
	SourceID gpubridge.ID      `json:"sourceId"`
	Mode     gpucore.BlendMode `json:"mode"`
	Opacity  float64           `json:"opacity"`
}

type pixelParams struct {
	ID    gpubridge.ID  `json:"id"`
	X     int           `json:"x"`
	Y     int           `json:"y"`
	Color gpucore.Color `json:"color"`
}

type dataParams struct {
	ID   gpubridge.ID `json:"id"`
	Data []byte       `json:"data"`
}

type exportParams struct {
	ID      gpubridge.ID `json:"id"`
	Format  string       `json:"format"`
	Quality int          `json:"quality"`
}

type importParams struct {
	ID   gpubridge.ID  `json:"id"`
	Data []byte        `json:"data"`
	At   gpucore.Point `json:"at"`
}

type layerParams struct {
	CanvasID gpubridge.ID `json:"canvasId"`
	LayerID  gpubridge.ID `json:"layerId"`
	Name     string       `json:"name,omitempty"`
}

type layerOpacityParams struct {
	CanvasID gpubridge.ID `json:"canvasId"`
	LayerID  gpubridge.ID `json:"layerId"`
	Opacity  float64      `json:"opacity"`
}

type layerBlendParams struct {
	CanvasID  gpubridge.ID      `json:"canvasId"`
	LayerID   gpubridge.ID      `json:"layerId"`
	BlendMode gpucore.BlendMode `json:"blendMode"`
}

type visibilityResult struct {
	Visible bool `json:"visible"`
}

type commandResult struct {
	CommandID gpubridge.ID `json:"commandId"`
}

type progressResult struct {
	Progress float64 `json:"progress"`
}

type bytesResult struct {
	Data []byte `json:"data"`
}

type none struct{}

func command(id gpubridge.ID, err error) (commandResult, error) {
	return commandResult{CommandID: id}, err
}

func release(fn func(gpubridge.ID)) handler {
	return exec(func(_ context.Context, p idParams) error {
		fn(p.ID)
		return nil
	})
}

func (d *Dispatcher) register() {
	r := d.reg
	m := d.methods

	// === Device ===

	m["deviceInfo"] = call(func(context.Context, none) (gpubridge.DeviceInfo, error) {
		return r.DeviceInfo(), nil
	})
	m["stats"] = call(func(context.Context, none) (gpubridge.Stats, error) {
		return r.Stats(), nil
	})

	// === Textures ===

	m["createTexture"] = call(func(_ context.Context, p gpucore.TextureDescriptor) (gpubridge.Texture, error) {
		return r.CreateTexture(p)
	})
	m["loadTextureFromData"] = call(func(_ context.Context, p textureDataParams) (gpubridge.Texture, error) {
		return r.LoadTextureFromData(p.Data, p.Descriptor)
	})
	m["loadTextureFromURL"] = call(func(ctx context.Context, p textureURLParams) (gpubridge.Texture, error) {
		return r.LoadTextureFromURL(ctx, p.URL, p.Descriptor)
	})
	m["updateTexture"] = exec(func(_ context.Context, p updateTextureParams) error {
		return r.UpdateTexture(p.ID, p.Region, p.Data)
	})
	m["readTexture"] = call(func(_ context.Context, p idParams) (bytesResult, error) {
		data, err := r.ReadTexture(p.ID)
		return bytesResult{Data: data}, err
	})
	m["generateMipmaps"] = exec(func(_ context.Context, p idParams) error {
		return r.GenerateMipmaps(p.ID)
	})
	m["getTexture"] = call(func(_ context.Context, p idParams) (gpubridge.Texture, error) {
		return r.GetTexture(p.ID)
	})
	m["releaseTexture"] = release(r.ReleaseTexture)

	// === Buffers ===

	m["createBuffer"] = call(func(_ context.Context, p gpucore.BufferDescriptor) (gpubridge.Buffer, error) {
		return r.CreateBuffer(p)
	})
	m["createBufferWithData"] = call(func(_ context.Context, p bufferDataParams) (gpubridge.Buffer, error) {
		return r.CreateBufferWithData(p.Data, p.Descriptor)
	})
	m["updateBuffer"] = exec(func(_ context.Context, p updateBufferParams) error {
		return r.UpdateBuffer(p.ID, p.Data, p.Offset)
	})
	m["getBufferContents"] = call(func(_ context.Context, p idParams) (bytesResult, error) {
		data, err := r.GetBufferContents(p.ID)
		return bytesResult{Data: data}, err
	})
	m["getBuffer"] = call(func(_ context.Context, p idParams) (gpubridge.Buffer, error) {
		return r.GetBuffer(p.ID)
	})
	m["releaseBuffer"] = release(r.ReleaseBuffer)

	// === Shaders and pipelines ===

	m["createShaderLibrary"] = call(func(_ context.Context, p shaderParams) (gpubridge.ShaderLibrary, error) {
		return r.CreateShaderLibrary(p.Label, p.Source)
	})
	m["getShaderLibrary"] = call(func(_ context.Context, p idParams) (gpubridge.ShaderLibrary, error) {
		return r.GetShaderLibrary(p.ID)
	})
	m["releaseShaderLibrary"] = release(r.ReleaseShaderLibrary)
	m["createRenderPipelineState"] = call(func(_ context.Context, p gpucore.RenderPipelineDescriptor) (gpubridge.RenderPipelineState, error) {
		return r.CreateRenderPipelineState(p)
	})
	m["getRenderPipelineState"] = call(func(_ context.Context, p idParams) (gpubridge.RenderPipelineState, error) {
		return r.GetRenderPipelineState(p.ID)
	})
	m["releaseRenderPipelineState"] = release(r.ReleaseRenderPipelineState)
	m["createComputePipelineState"] = call(func(_ context.Context, p gpucore.ComputePipelineDescriptor) (gpubridge.ComputePipelineState, error) {
		return r.CreateComputePipelineState(p)
	})
	m["getComputePipelineState"] = call(func(_ context.Context, p idParams) (gpubridge.ComputePipelineState, error) {
		return r.GetComputePipelineState(p.ID)
	})
	m["releaseComputePipelineState"] = release(r.ReleaseComputePipelineState)

	// === Meshes ===

	m["createMesh"] = call(func(_ context.Context, p gpucore.MeshDescriptor) (gpubridge.Mesh, error) {
		return r.CreateMesh(p)
	})
	m["updateMesh"] = call(func(_ context.Context, p updateMeshParams) (gpubridge.Mesh, error) {
		return r.UpdateMesh(p.ID, p.MeshUpdate)
	})
	m["loadMeshFromData"] = call(func(_ context.Context, p meshDataParams) (gpubridge.Mesh, error) {
		return r.LoadMeshFromData(p.Data, p.Format)
	})
	m["loadMeshFromURL"] = call(func(ctx context.Context, p meshURLParams) (gpubridge.Mesh, error) {
		return r.LoadMeshFromURL(ctx, p.URL, p.Format)
	})
	m["getMesh"] = call(func(_ context.Context, p idParams) (gpubridge.Mesh, error) {
		return r.GetMesh(p.ID)
	})
	m["releaseMesh"] = release(r.ReleaseMesh)

	// === Animations ===

	m["createAnimation"] = call(func(_ context.Context, p gpucore.AnimationDescriptor) (gpubridge.Animation, error) {
		return r.CreateAnimation(p)
	})
	m["startAnimation"] = exec(func(_ context.Context, p idParams) error { return r.StartAnimation(p.ID) })
	m["pauseAnimation"] = exec(func(_ context.Context, p idParams) error { return r.PauseAnimation(p.ID) })
	m["stopAnimation"] = exec(func(_ context.Context, p idParams) error { return r.StopAnimation(p.ID) })
	m["setAnimationTime"] = exec(func(_ context.Context, p animationTimeParams) error {
		return r.SetAnimationTime(p.ID, p.Time)
	})
	m["animationProgress"] = call(func(_ context.Context, p idParams) (progressResult, error) {
		v, err := r.AnimationProgress(p.ID)
		return progressResult{Progress: v}, err
	})
	m["advanceAnimations"] = exec(func(_ context.Context, p advanceParams) error {
		r.AdvanceAnimations(p.DeltaTime)
		return nil
	})
	m["tick"] = exec(func(context.Context, none) error {
		r.Tick()
		return nil
	})
	m["getAnimation"] = call(func(_ context.Context, p idParams) (gpubridge.Animation, error) {
		return r.GetAnimation(p.ID)
	})
	m["releaseAnimation"] = release(r.ReleaseAnimation)

	// === Canvases ===

	m["createCanvas2D"] = call(func(_ context.Context, p gpucore.Canvas2DDescriptor) (gpubridge.Canvas2D, error) {
		return r.CreateCanvas2D(p)
	})
	m["getCanvas2D"] = call(func(_ context.Context, p idParams) (gpubridge.Canvas2D, error) {
		return r.GetCanvas2D(p.ID)
	})
	m["releaseCanvas2D"] = release(r.ReleaseCanvas2D)
	m["clearCanvas2D"] = exec(func(_ context.Context, p colorParams) error { return r.ClearCanvas2D(p.ID, p.Color) })
	m["resizeCanvas2D"] = call(func(_ context.Context, p sizeParams) (gpubridge.Canvas2D, error) {
		return r.ResizeCanvas2D(p.ID, p.Width, p.Height)
	})
	m["cropCanvas2D"] = call(func(_ context.Context, p rectParams) (gpubridge.Canvas2D, error) {
		return r.CropCanvas2D(p.ID, p.Rect)
	})
	m["flipCanvas2D"] = exec(func(_ context.Context, p flipParams) error { return r.FlipCanvas2D(p.ID, p.Horizontal) })
	m["flushCanvas2D"] = exec(func(_ context.Context, p idParams) error { return r.FlushCanvas2D(p.ID) })

	m["setLineStyle2D"] = exec(func(_ context.Context, p lineStyleParams) error { return r.SetLineStyle2D(p.ID, p.Style) })
	m["setFillStyle2D"] = exec(func(_ context.Context, p fillStyleParams) error { return r.SetFillStyle2D(p.ID, p.Style) })
	m["setTextStyle2D"] = exec(func(_ context.Context, p textStyleParams) error { return r.SetTextStyle2D(p.ID, p.Style) })
	m["setBrushStyle2D"] = exec(func(_ context.Context, p brushStyleParams) error { return r.SetBrushStyle2D(p.ID, p.Style) })

	m["save2D"] = exec(func(_ context.Context, p idParams) error { return r.Save2D(p.ID) })
	m["restore2D"] = exec(func(_ context.Context, p idParams) error { return r.Restore2D(p.ID) })
	m["translate2D"] = exec(func(_ context.Context, p translateParams) error { return r.Translate2D(p.ID, p.X, p.Y) })
	m["rotate2D"] = exec(func(_ context.Context, p rotateParams) error { return r.Rotate2D(p.ID, p.Angle) })
	m["scale2D"] = exec(func(_ context.Context, p translateParams) error { return r.Scale2D(p.ID, p.X, p.Y) })
	m["setTransform2D"] = exec(func(_ context.Context, p transformParams) error { return r.SetTransform2D(p.ID, p.Matrix) })

	m["drawLine2D"] = call(func(_ context.Context, p lineParams) (commandResult, error) {
		return command(r.DrawLine2D(p.ID, p.From, p.To, p.Style))
	})
	m["drawRectangle2D"] = call(func(_ context.Context, p drawRectParams) (commandResult, error) {
		return command(r.DrawRectangle2D(p.ID, p.Rect, p.Fill, p.Line))
	})
	m["drawCircle2D"] = call(func(_ context.Context, p circleParams) (commandResult, error) {
		return command(r.DrawCircle2D(p.ID, p.Circle, p.Fill, p.Line))
	})
	m["drawEllipse2D"] = call(func(_ context.Context, p ellipseParams) (commandResult, error) {
		return command(r.DrawEllipse2D(p.ID, p.Ellipse, p.Fill, p.Line))
	})
	m["drawPath2D"] = call(func(_ context.Context, p pathParams) (commandResult, error) {
		return command(r.DrawPath2D(p.ID, p.Path, p.Fill, p.Line))
	})
	m["drawText2D"] = call(func(_ context.Context, p textParams) (commandResult, error) {
		return command(r.DrawText2D(p.ID, p.Text, p.At, p.Style))
	})
	m["drawImage2D"] = call(func(_ context.Context, p imageParams) (commandResult, error) {
		return command(r.DrawImage2D(p.ID, p.TextureID, p.ImageOptions))
	})
	m["measureText2D"] = call(func(_ context.Context, p measureParams) (gpucore.TextMetrics, error) {
		return r.MeasureText2D(p.Text, p.Style)
	})
	m["compositeCanvas2D"] = exec(func(_ context.Context, p compositeParams) error {
		return r.CompositeCanvas2D(p.ID, p.SourceID, p.Mode, p.Opacity)
	})

	m["getCanvas2DPixel"] = call(func(_ context.Context, p pixelParams) (gpucore.Color, error) {
		return r.GetCanvas2DPixel(p.ID, p.X, p.Y)
	})
	m["setCanvas2DPixel"] = exec(func(_ context.Context, p pixelParams) error {
		return r.SetCanvas2DPixel(p.ID, p.X, p.Y, p.Color)
	})
	m["getCanvas2DData"] = call(func(_ context.Context, p idParams) (bytesResult, error) {
		data, err := r.GetCanvas2DData(p.ID)
		return bytesResult{Data: data}, err
	})
	m["setCanvas2DData"] = exec(func(_ context.Context, p dataParams) error { return r.SetCanvas2DData(p.ID, p.Data) })
	m["exportCanvas2D"] = call(func(_ context.Context, p exportParams) (bytesResult, error) {
		data, err := r.ExportCanvas2D(p.ID, p.Format, p.Quality)
		return bytesResult{Data: data}, err
	})
	m["importImageToCanvas2D"] = exec(func(_ context.Context, p importParams) error {
		return r.ImportImageToCanvas2D(p.ID, p.Data, p.At)
	})

	// === Layers ===

	m["createDrawingLayer"] = call(func(_ context.Context, p layerParams) (gpubridge.DrawingLayer, error) {
		return r.CreateDrawingLayer(p.CanvasID, p.Name)
	})
	m["deleteDrawingLayer"] = exec(func(_ context.Context, p layerParams) error {
		return r.DeleteDrawingLayer(p.CanvasID, p.LayerID)
	})
	m["setActiveLayer"] = exec(func(_ context.Context, p layerParams) error {
		return r.SetActiveLayer(p.CanvasID, p.LayerID)
	})
	m["setLayerOpacity"] = exec(func(_ context.Context, p layerOpacityParams) error {
		return r.SetLayerOpacity(p.CanvasID, p.LayerID, p.Opacity)
	})
	m["setLayerBlendMode"] = exec(func(_ context.Context, p layerBlendParams) error {
		return r.SetLayerBlendMode(p.CanvasID, p.LayerID, p.BlendMode)
	})
	m["toggleLayerVisibility"] = call(func(_ context.Context, p layerParams) (visibilityResult, error) {
		v, err := r.ToggleLayerVisibility(p.CanvasID, p.LayerID)
		return visibilityResult{Visible: v}, err
	})
	m["layers"] = call(func(_ context.Context, p idParams) ([]gpubridge.DrawingLayer, error) {
		return r.Layers(p.ID)
	})
	m["getDrawingLayer"] = call(func(_ context.Context, p layerParams) (gpubridge.DrawingLayer, error) {
		return r.GetDrawingLayer(p.CanvasID, p.LayerID)
	})
}

package gpubridge

import (
	"fmt"

	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/translate"
)

// RenderPipelineState is an immutable render pipeline with its resolved
// descriptor.
type RenderPipelineState struct {
	ID ID `json:"id"`
	gpucore.RenderPipelineDescriptor
}

// ComputePipelineState is an immutable compute pipeline.
type ComputePipelineState struct {
	ID ID `json:"id"`
	gpucore.ComputePipelineDescriptor
}

type pipelineEntry struct {
	compute bool
	render  gpucore.RenderPipelineDescriptor
	kernel  gpucore.ComputePipelineDescriptor
	native  backend.Handle
}

// === Render pipelines ===

// CreateRenderPipelineState resolves d and builds a render pipeline.
// Every failure, including an unknown library id or a non-depth format in a
// depth slot, is reported as ErrPipelineCreationFailed.
func (r *Registry) CreateRenderPipelineState(d gpucore.RenderPipelineDescriptor) (RenderPipelineState, error) {
	if err := r.lock(); err != nil {
		return RenderPipelineState{}, err
	}
	defer r.mu.Unlock()

	d, err := translate.ApplyPipelineDefaults(d)
	if err != nil {
		return RenderPipelineState{}, fmt.Errorf("%w: %w", ErrPipelineCreationFailed, err)
	}
	if d.VertexFunction == "" {
		return RenderPipelineState{}, fmt.Errorf("%w: vertexFunction is required", ErrPipelineCreationFailed)
	}
	if d.Rasterizes() && d.FragmentFunction == "" {
		return RenderPipelineState{}, fmt.Errorf("%w: fragmentFunction is required when rasterizing", ErrPipelineCreationFailed)
	}
	lib, err := r.library(d.Library)
	if err != nil {
		return RenderPipelineState{}, err
	}

	spec := &backend.RenderPipelineSpec{Label: d.Label, Library: lib}
	for i := range d.ColorAttachments {
		target, err := r.colorTarget(&d.ColorAttachments[i])
		if err != nil {
			return RenderPipelineState{}, fmt.Errorf("%w: color attachment %d: %w", ErrPipelineCreationFailed, i, err)
		}
		spec.Targets = append(spec.Targets, target)
	}
	if spec.DepthFormat, err = r.depthFormat(d.DepthAttachmentPixelFormat, false); err != nil {
		return RenderPipelineState{}, fmt.Errorf("%w: depth attachment: %w", ErrPipelineCreationFailed, err)
	}
	if spec.StencilFormat, err = r.depthFormat(d.StencilAttachmentPixelFormat, true); err != nil {
		return RenderPipelineState{}, fmt.Errorf("%w: stencil attachment: %w", ErrPipelineCreationFailed, err)
	}
	topology, ok := r.dialect.PrimitiveType(d.PrimitiveType)
	if !ok {
		r.fallback("primitiveType", d.PrimitiveType, translate.DefaultPrimitiveType)
		d.PrimitiveType = translate.DefaultPrimitiveType
	}
	spec.Topology = topology
	spec.Descriptor = d

	native, err := r.backend.CreateRenderPipeline(spec)
	if err != nil {
		return RenderPipelineState{}, fmt.Errorf("%w: %w", ErrPipelineCreationFailed, err)
	}
	if native == nil {
		return RenderPipelineState{}, fmt.Errorf("%w: no handle", ErrPipelineCreationFailed)
	}
	h := r.ids.Acquire()
	r.pipelines[h] = &pipelineEntry{render: d, native: native}
	r.log.Debug("gpubridge: render pipeline created", "id", idOf(h),
		"vertex", d.VertexFunction, "fragment", d.FragmentFunction)
	return RenderPipelineState{ID: idOf(h), RenderPipelineDescriptor: clonePipeline(d)}, nil
}

// library resolves an optional shader library id.
func (r *Registry) library(id string) (backend.Handle, error) {
	if id == "" {
		return nil, nil
	}
	s, _, err := lookup(r, r.shaders, ID(id), ErrShaderNotFound)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPipelineCreationFailed, err)
	}
	return s.native, nil
}

// colorTarget resolves one attachment in place and returns its native form.
func (r *Registry) colorTarget(a *gpucore.ColorAttachmentDescriptor) (backend.ColorTarget, error) {
	if a.PixelFormat.IsDepth() {
		return backend.ColorTarget{}, fmt.Errorf("depth format %q is not a colour format", a.PixelFormat)
	}
	format, ok := r.dialect.PixelFormat(a.PixelFormat)
	if !ok {
		tag, _ := r.dialect.PixelFormatTag(format)
		r.fallback("pixelFormat", a.PixelFormat, tag)
		a.PixelFormat = tag
	}
	def := translate.DefaultColorAttachment()
	t := backend.ColorTarget{Format: format, BlendEnabled: a.IsBlendingEnabled}
	a.SourceRGBBlendFactor, t.SrcColorFactor = r.blendFactor(a.SourceRGBBlendFactor, def.SourceRGBBlendFactor)
	a.SourceAlphaBlendFactor, t.SrcAlphaFactor = r.blendFactor(a.SourceAlphaBlendFactor, def.SourceAlphaBlendFactor)
	a.DestinationRGBBlendFactor, t.DstColorFactor = r.blendFactor(a.DestinationRGBBlendFactor, def.DestinationRGBBlendFactor)
	a.DestinationAlphaBlendFactor, t.DstAlphaFactor = r.blendFactor(a.DestinationAlphaBlendFactor, def.DestinationAlphaBlendFactor)
	a.RGBBlendOperation, t.ColorOperation = r.blendOperation(a.RGBBlendOperation)
	a.AlphaBlendOperation, t.AlphaOperation = r.blendOperation(a.AlphaBlendOperation)

	mask, ok := r.dialect.ColorWriteMask(a.WriteMask)
	if !ok {
		r.fallback("writeMask", a.WriteMask, def.WriteMask)
		a.WriteMask = def.WriteMask
		mask, _ = r.dialect.ColorWriteMask(def.WriteMask)
	}
	t.WriteMask = mask
	return t, nil
}

// blendFactor resolves f, substituting fallback for unknown tags. Source
// factors fall back to One and destination factors to Zero.
func (r *Registry) blendFactor(f, fallback gpucore.BlendFactor) (gpucore.BlendFactor, uint32) {
	if v, ok := r.dialect.BlendFactor(f); ok {
		return f, v
	}
	r.fallback("blendFactor", f, fallback)
	v, _ := r.dialect.BlendFactor(fallback)
	return fallback, v
}

func (r *Registry) blendOperation(op gpucore.BlendOperation) (gpucore.BlendOperation, uint32) {
	if v, ok := r.dialect.BlendOperation(op); ok {
		return op, v
	}
	r.fallback("blendOperation", op, gpucore.BlendOperationAdd)
	v, _ := r.dialect.BlendOperation(gpucore.BlendOperationAdd)
	return gpucore.BlendOperationAdd, v
}

// depthFormat resolves a depth or stencil attachment format. Empty means
// no attachment and resolves to 0.
func (r *Registry) depthFormat(f gpucore.PixelFormat, stencil bool) (uint32, error) {
	if f == "" {
		return 0, nil
	}
	if !f.IsDepth() {
		return 0, fmt.Errorf("%q is not a depth format", f)
	}
	if stencil && f == gpucore.PixelFormatDepth32Float {
		return 0, fmt.Errorf("%q has no stencil aspect", f)
	}
	v, ok := r.dialect.PixelFormat(f)
	if !ok {
		return 0, fmt.Errorf("%q is not available in the %s dialect", f, r.dialect.Name())
	}
	return v, nil
}

func clonePipeline(d gpucore.RenderPipelineDescriptor) gpucore.RenderPipelineDescriptor {
	d.ColorAttachments = append([]gpucore.ColorAttachmentDescriptor(nil), d.ColorAttachments...)
	if d.RasterizationEnabled != nil {
		v := *d.RasterizationEnabled
		d.RasterizationEnabled = &v
	}
	return d
}

// GetRenderPipelineState returns the resolved descriptor of a render
// pipeline.
func (r *Registry) GetRenderPipelineState(id ID) (RenderPipelineState, error) {
	if err := r.rlock(); err != nil {
		return RenderPipelineState{}, err
	}
	defer r.mu.RUnlock()
	p, h, err := lookup(r, r.pipelines, id, ErrPipelineNotFound)
	if err != nil {
		return RenderPipelineState{}, err
	}
	if p.compute {
		return RenderPipelineState{}, fmt.Errorf("%w: %s is a compute pipeline", ErrPipelineNotFound, id)
	}
	return RenderPipelineState{ID: idOf(h), RenderPipelineDescriptor: clonePipeline(p.render)}, nil
}

// ReleaseRenderPipelineState frees a render pipeline. Unknown ids and
// compute pipeline ids are ignored.
func (r *Registry) ReleaseRenderPipelineState(id ID) {
	r.releasePipeline(id, false)
}

// === Compute pipelines ===

// CreateComputePipelineState builds a compute pipeline.
func (r *Registry) CreateComputePipelineState(d gpucore.ComputePipelineDescriptor) (ComputePipelineState, error) {
	if err := r.lock(); err != nil {
		return ComputePipelineState{}, err
	}
	defer r.mu.Unlock()
	if d.ComputeFunction == "" {
		return ComputePipelineState{}, fmt.Errorf("%w: computeFunction is required", ErrPipelineCreationFailed)
	}
	lib, err := r.library(d.Library)
	if err != nil {
		return ComputePipelineState{}, err
	}
	native, err := r.backend.CreateComputePipeline(&backend.ComputePipelineSpec{
		Label:    d.Label,
		Library:  lib,
		Function: d.ComputeFunction,
	})
	if err != nil {
		return ComputePipelineState{}, fmt.Errorf("%w: %w", ErrPipelineCreationFailed, err)
	}
	if native == nil {
		return ComputePipelineState{}, fmt.Errorf("%w: no handle", ErrPipelineCreationFailed)
	}
	h := r.ids.Acquire()
	r.pipelines[h] = &pipelineEntry{compute: true, kernel: d, native: native}
	r.log.Debug("gpubridge: compute pipeline created", "id", idOf(h), "function", d.ComputeFunction)
	return ComputePipelineState{ID: idOf(h), ComputePipelineDescriptor: d}, nil
}

// GetComputePipelineState returns the descriptor of a compute pipeline.
func (r *Registry) GetComputePipelineState(id ID) (ComputePipelineState, error) {
	if err := r.rlock(); err != nil {
		return ComputePipelineState{}, err
	}
	defer r.mu.RUnlock()
	p, h, err := lookup(r, r.pipelines, id, ErrPipelineNotFound)
	if err != nil {
		return ComputePipelineState{}, err
	}
	if !p.compute {
		return ComputePipelineState{}, fmt.Errorf("%w: %s is a render pipeline", ErrPipelineNotFound, id)
	}
	return ComputePipelineState{ID: idOf(h), ComputePipelineDescriptor: p.kernel}, nil
}

// ReleaseComputePipelineState frees a compute pipeline. Unknown ids and
// render pipeline ids are ignored.
func (r *Registry) ReleaseComputePipelineState(id ID) {
	r.releasePipeline(id, true)
}

func (r *Registry) releasePipeline(id ID, compute bool) {
	if r.lock() != nil {
		return
	}
	defer r.mu.Unlock()
	p, h, ok := peek(r, r.pipelines, id)
	if !ok || p.compute != compute {
		return
	}
	delete(r.pipelines, h)
	r.ids.Release(h)
	r.backend.DestroyPipeline(p.native)
	r.log.Debug("gpubridge: pipeline released", "id", id, "compute", compute)
}

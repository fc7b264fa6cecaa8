//go:build rust

package rust

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/internal/shader"
)

type shaderModule struct {
	raw     *wgpu.ShaderModule
	label   string
	entries map[string]string
}

type pipeline struct {
	layout  *wgpu.PipelineLayout
	render  *wgpu.RenderPipeline
	compute *wgpu.ComputePipeline
}

func (p *pipeline) release() {
	if p.render != nil {
		p.render.Release()
	}
	if p.compute != nil {
		p.compute.Release()
	}
	if p.layout != nil {
		p.layout.Release()
	}
}

// === Shader Compilation ===

// CompileShader validates WGSL with naga, then hands the source to
// wgpu-native which does its own translation.
func (b *Backend) CompileShader(spec *backend.ShaderSpec) (backend.Handle, error) {
	if _, err := shader.CompileSPIRV(spec.Source); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ready(); err != nil {
		return nil, err
	}
	raw, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: spec.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: spec.Source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("rust: create shader module %q: %w", spec.Label, err)
	}
	m := &shaderModule{raw: raw, label: spec.Label, entries: shader.EntryPoints(spec.Source)}
	b.shaders[m] = struct{}{}
	return m, nil
}

// DestroyShader releases a shader module.
func (b *Backend) DestroyShader(h backend.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := h.(*shaderModule); ok {
		if _, live := b.shaders[m]; live {
			delete(b.shaders, m)
			m.raw.Release()
		}
	}
}

func (b *Backend) module(h backend.Handle, entry, stage string) (*shaderModule, error) {
	if h == nil {
		return nil, ErrLibraryRequired
	}
	m, ok := h.(*shaderModule)
	if !ok {
		return nil, backend.ErrInvalidHandle
	}
	if _, live := b.shaders[m]; !live {
		return nil, backend.ErrInvalidHandle
	}
	if got := m.entries[entry]; got != stage {
		return nil, fmt.Errorf("rust: no %s entry point %q in %q", stage, entry, m.label)
	}
	return m, nil
}

func (b *Backend) emptyLayout(label string) (*wgpu.PipelineLayout, error) {
	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label + "_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{},
	})
	if err != nil {
		return nil, fmt.Errorf("rust: create pipeline layout: %w", err)
	}
	return layout, nil
}

// === Pipelines ===

// CreateRenderPipeline builds a render pipeline from the descriptor's tags.
func (b *Backend) CreateRenderPipeline(spec *backend.RenderPipelineSpec) (backend.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ready(); err != nil {
		return nil, err
	}
	d := &spec.Descriptor
	vs, err := b.module(spec.Library, d.VertexFunction, "vertex")
	if err != nil {
		return nil, err
	}
	layout, err := b.emptyLayout(spec.Label)
	if err != nil {
		return nil, err
	}

	desc := &wgpu.RenderPipelineDescriptor{
		Label:  spec.Label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs.raw,
			EntryPoint: d.VertexFunction,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topology(d.PrimitiveType),
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(max(d.SampleCount, 1)),
			Mask:  0xFFFFFFFF,
		},
	}
	if d.Rasterizes() {
		fs, err := b.module(spec.Library, d.FragmentFunction, "fragment")
		if err != nil {
			layout.Release()
			return nil, err
		}
		desc.Fragment = &wgpu.FragmentState{
			Module:     fs.raw,
			EntryPoint: d.FragmentFunction,
			Targets:    colorTargets(d.ColorAttachments),
		}
	}
	if format := depthStencilTag(d); format != "" {
		desc.DepthStencil = &wgpu.DepthStencilState{
			Format:            textureFormat(format),
			DepthWriteEnabled: d.DepthAttachmentPixelFormat != "",
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilReadMask:   0xFF,
			StencilWriteMask:  0xFF,
		}
	}

	raw, err := b.device.CreateRenderPipeline(desc)
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("rust: create render pipeline %q: %w", spec.Label, err)
	}
	p := &pipeline{layout: layout, render: raw}
	b.pipelines[p] = struct{}{}
	return p, nil
}

func depthStencilTag(d *gpucore.RenderPipelineDescriptor) gpucore.PixelFormat {
	if d.DepthAttachmentPixelFormat != "" {
		return d.DepthAttachmentPixelFormat
	}
	return d.StencilAttachmentPixelFormat
}

// CreateComputePipeline builds a compute pipeline with an empty layout.
func (b *Backend) CreateComputePipeline(spec *backend.ComputePipelineSpec) (backend.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ready(); err != nil {
		return nil, err
	}
	cs, err := b.module(spec.Library, spec.Function, "compute")
	if err != nil {
		return nil, err
	}
	layout, err := b.emptyLayout(spec.Label)
	if err != nil {
		return nil, err
	}
	raw, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  spec.Label,
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     cs.raw,
			EntryPoint: spec.Function,
		},
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("rust: create compute pipeline %q: %w", spec.Label, err)
	}
	p := &pipeline{layout: layout, compute: raw}
	b.pipelines[p] = struct{}{}
	return p, nil
}

// DestroyPipeline releases a render or compute pipeline and its layout.
func (b *Backend) DestroyPipeline(h backend.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := h.(*pipeline); ok {
		if _, live := b.pipelines[p]; live {
			delete(b.pipelines, p)
			p.release()
		}
	}
}

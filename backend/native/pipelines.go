//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/internal/shader"
)

type shaderModule struct {
	raw     hal.ShaderModule
	label   string
	entries map[string]string
}

type pipeline struct {
	layout  hal.PipelineLayout
	render  hal.RenderPipeline
	compute hal.ComputePipeline
}

func (p *pipeline) destroy(device hal.Device) {
	if p.render != nil {
		device.DestroyRenderPipeline(p.render)
	}
	if p.compute != nil {
		device.DestroyComputePipeline(p.compute)
	}
	if p.layout != nil {
		device.DestroyPipelineLayout(p.layout)
	}
}

// === Shader Compilation ===

// CompileShader compiles WGSL to SPIR-V with naga and creates a module.
func (b *Backend) CompileShader(spec *backend.ShaderSpec) (backend.Handle, error) {
	spirv, err := shader.CompileSPIRV(spec.Source)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ready(); err != nil {
		return nil, err
	}
	raw, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  spec.Label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create shader module %q: %w", spec.Label, err)
	}
	m := &shaderModule{raw: raw, label: spec.Label, entries: shader.EntryPoints(spec.Source)}
	b.shaders[m] = struct{}{}
	return m, nil
}

// DestroyShader releases a shader module.
func (b *Backend) DestroyShader(h backend.Handle) {
	b.mu.Lock()
	m, ok := h.(*shaderModule)
	if ok {
		_, ok = b.shaders[m]
		delete(b.shaders, m)
	}
	device := b.device
	b.mu.Unlock()

	if ok && device != nil {
		device.DestroyShaderModule(m.raw)
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
		return nil, fmt.Errorf("native: no %s entry point %q in %q", stage, entry, m.label)
	}
	return m, nil
}

// === Pipelines ===

// CreateRenderPipeline builds a render pipeline with an empty layout.
// Target, topology and depth values are gputypes values.
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

	layout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            spec.Label + "_layout",
		BindGroupLayouts: []hal.BindGroupLayout{},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create pipeline layout: %w", err)
	}

	desc := &hal.RenderPipelineDescriptor{
		Label:  spec.Label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     vs.raw,
			EntryPoint: d.VertexFunction,
		},
		Multisample: gputypes.MultisampleState{
			Count: uint32(max(d.SampleCount, 1)),
			Mask:  0xFFFFFFFF,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopology(spec.Topology),
			CullMode: gputypes.CullModeNone,
		},
	}
	if d.Rasterizes() {
		fs, err := b.module(spec.Library, d.FragmentFunction, "fragment")
		if err != nil {
			b.device.DestroyPipelineLayout(layout)
			return nil, err
		}
		desc.Fragment = &hal.FragmentState{
			Module:     fs.raw,
			EntryPoint: d.FragmentFunction,
			Targets:    colorTargets(spec.Targets),
		}
	}
	if format := depthStencilFormat(spec); format != 0 {
		desc.DepthStencil = &hal.DepthStencilState{
			Format:            gputypes.TextureFormat(format),
			DepthWriteEnabled: spec.DepthFormat != 0,
			DepthCompare:      gputypes.CompareFunctionLess,
			StencilFront: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilBack: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilReadMask:  0xFF,
			StencilWriteMask: 0xFF,
		}
	}

	raw, err := b.device.CreateRenderPipeline(desc)
	if err != nil {
		b.device.DestroyPipelineLayout(layout)
		return nil, fmt.Errorf("native: create render pipeline %q: %w", spec.Label, err)
	}
	p := &pipeline{layout: layout, render: raw}
	b.pipelines[p] = struct{}{}
	return p, nil
}

// depthStencilFormat picks the attachment format. A combined depth-stencil
// format may arrive in either slot; 0 means no attachment.
func depthStencilFormat(spec *backend.RenderPipelineSpec) uint32 {
	if spec.DepthFormat != 0 {
		return spec.DepthFormat
	}
	return spec.StencilFormat
}

func colorTargets(targets []backend.ColorTarget) []gputypes.ColorTargetState {
	out := make([]gputypes.ColorTargetState, 0, len(targets))
	for _, t := range targets {
		state := gputypes.ColorTargetState{
			Format:    gputypes.TextureFormat(t.Format),
			WriteMask: gputypes.ColorWriteMask(t.WriteMask),
		}
		if t.BlendEnabled {
			state.Blend = &gputypes.BlendState{
				Color: gputypes.BlendComponent{
					SrcFactor: gputypes.BlendFactor(t.SrcColorFactor),
					DstFactor: gputypes.BlendFactor(t.DstColorFactor),
					Operation: gputypes.BlendOperation(t.ColorOperation),
				},
				Alpha: gputypes.BlendComponent{
					SrcFactor: gputypes.BlendFactor(t.SrcAlphaFactor),
					DstFactor: gputypes.BlendFactor(t.DstAlphaFactor),
					Operation: gputypes.BlendOperation(t.AlphaOperation),
				},
			}
		}
		out = append(out, state)
	}
	return out
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
	layout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            spec.Label + "_layout",
		BindGroupLayouts: []hal.BindGroupLayout{},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create pipeline layout: %w", err)
	}
	raw, err := b.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   spec.Label,
		Layout:  layout,
		Compute: hal.ComputeState{Module: cs.raw, EntryPoint: spec.Function},
	})
	if err != nil {
		b.device.DestroyPipelineLayout(layout)
		return nil, fmt.Errorf("native: create compute pipeline %q: %w", spec.Label, err)
	}
	p := &pipeline{layout: layout, compute: raw}
	b.pipelines[p] = struct{}{}
	return p, nil
}

// DestroyPipeline releases a render or compute pipeline and its layout.
func (b *Backend) DestroyPipeline(h backend.Handle) {
	b.mu.Lock()
	p, ok := h.(*pipeline)
	if ok {
		_, ok = b.pipelines[p]
		delete(b.pipelines, p)
	}
	device := b.device
	b.mu.Unlock()

	if ok && device != nil {
		p.destroy(device)
	}
}

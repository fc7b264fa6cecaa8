package gpubridge

import (
	"fmt"

	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/internal/handle"
	"github.com/gogpu/gpubridge/internal/shader"
)

// ShaderLibrary is a compiled WGSL module.
type ShaderLibrary struct {
	ID    ID     `json:"id"`
	Label string `json:"label,omitempty"`

	// Functions maps each entry point to its stage: "vertex", "fragment"
	// or "compute".
	Functions map[string]string `json:"functions"`
}

type shaderEntry struct {
	label   string
	entries map[string]string
	native  backend.Handle
}

func (s *shaderEntry) snapshot(h handle.Handle) ShaderLibrary {
	fns := make(map[string]string, len(s.entries))
	for k, v := range s.entries {
		fns[k] = v
	}
	return ShaderLibrary{ID: idOf(h), Label: s.label, Functions: fns}
}

// CreateShaderLibrary compiles WGSL source. Pipelines name their entry
// points in the library by id.
func (r *Registry) CreateShaderLibrary(label, source string) (ShaderLibrary, error) {
	if err := r.lock(); err != nil {
		return ShaderLibrary{}, err
	}
	defer r.mu.Unlock()
	native, err := r.backend.CompileShader(&backend.ShaderSpec{Label: label, Source: source})
	if err != nil {
		return ShaderLibrary{}, fmt.Errorf("%w: %q: %w", ErrShaderCompilationFailed, label, err)
	}
	if native == nil {
		return ShaderLibrary{}, fmt.Errorf("%w: %q: no handle", ErrShaderCompilationFailed, label)
	}
	h := r.ids.Acquire()
	s := &shaderEntry{label: label, entries: shader.EntryPoints(source), native: native}
	r.shaders[h] = s
	r.log.Debug("gpubridge: shader library created", "id", idOf(h), "label", label, "functions", len(s.entries))
	return s.snapshot(h), nil
}

// GetShaderLibrary describes a live shader library.
func (r *Registry) GetShaderLibrary(id ID) (ShaderLibrary, error) {
	if err := r.rlock(); err != nil {
		return ShaderLibrary{}, err
	}
	defer r.mu.RUnlock()
	s, h, err := lookup(r, r.shaders, id, ErrShaderNotFound)
	if err != nil {
		return ShaderLibrary{}, err
	}
	return s.snapshot(h), nil
}

// ReleaseShaderLibrary frees a library. Pipelines built from it stay valid.
// Unknown and released ids are ignored.
func (r *Registry) ReleaseShaderLibrary(id ID) {
	if r.lock() != nil {
		return
	}
	defer r.mu.Unlock()
	s, h, ok := peek(r, r.shaders, id)
	if !ok {
		return
	}
	delete(r.shaders, h)
	r.ids.Release(h)
	r.backend.DestroyShader(s.native)
	r.log.Debug("gpubridge: shader library released", "id", id)
}

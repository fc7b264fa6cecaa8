// Package software provides the CPU backend. Textures and buffers live in
// host memory, which makes every resource readable and keeps the registry
// usable on machines without a GPU.
//
// The backend registers itself on import:
//
//	import _ "github.com/gogpu/gpubridge/backend/software"
package software

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/internal/logx"
	"github.com/gogpu/gpubridge/internal/mipmap"
	"github.com/gogpu/gpubridge/internal/shader"
	"github.com/gogpu/gpubridge/translate"
)

// Device limits reported by Info.
const (
	MaxTextureSize = 16384
	MaxBufferSize  = 1 << 30
)

func init() {
	backend.Register(backend.BackendSoftware, func() backend.Backend {
		return New()
	})
}

type texture struct {
	spec   backend.TextureSpec
	bpp    int
	layers int // depth * arrayLength
	levels [][]byte
}

type buffer struct {
	label string
	data  []byte
}

type shaderLib struct {
	label   string
	spirv   []uint32
	entries map[string]string
}

type pipeline struct {
	label   string
	compute bool
}

// Backend is the CPU backend.
type Backend struct {
	mu          sync.RWMutex
	initialized bool
	dialect     translate.Dialect

	textures  map[*texture]struct{}
	buffers   map[*buffer]struct{}
	shaders   map[*shaderLib]struct{}
	pipelines map[*pipeline]struct{}
}

var _ backend.Backend = (*Backend)(nil)

// New creates a CPU backend speaking the WebGPU dialect.
func New() *Backend {
	return NewWithDialect(translate.WebGPU)
}

// NewWithDialect creates a CPU backend that reports d as its dialect.
// The CPU backend stores bytes verbatim, so any dialect works; this lets
// callers exercise Metal or GL translation without the native API.
func NewWithDialect(d translate.Dialect) *Backend {
	return &Backend{dialect: d}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return backend.BackendSoftware }

// Dialect returns the dialect used for native enum values.
func (b *Backend) Dialect() translate.Dialect { return b.dialect }

// Init initializes the backend.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return nil
	}
	b.textures = make(map[*texture]struct{})
	b.buffers = make(map[*buffer]struct{})
	b.shaders = make(map[*shaderLib]struct{})
	b.pipelines = make(map[*pipeline]struct{})
	b.initialized = true
	return nil
}

// Close releases all resources.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.textures = nil
	b.buffers = nil
	b.shaders = nil
	b.pipelines = nil
	b.initialized = false
}

// Info describes the CPU device.
func (b *Backend) Info() backend.Info {
	return backend.Info{
		Backend:         backend.BackendSoftware,
		Device:          "CPU",
		Dialect:         b.dialect.Name(),
		MaxTextureSize:  MaxTextureSize,
		MaxBufferSize:   MaxBufferSize,
		SupportsCompute: false,
	}
}

// === Textures ===

// CreateTexture allocates zeroed storage for every mip level.
func (b *Backend) CreateTexture(spec *backend.TextureSpec) (backend.Handle, error) {
	if spec.Width > MaxTextureSize || spec.Height > MaxTextureSize {
		return nil, fmt.Errorf("software: texture %dx%d exceeds %d", spec.Width, spec.Height, MaxTextureSize)
	}
	bpp := spec.Format.BytesPerPixel()
	if bpp == 0 {
		bpp = 4
	}
	t := &texture{
		spec:   *spec,
		bpp:    bpp,
		layers: max(spec.Depth, 1) * max(spec.ArrayLength, 1),
		levels: make([][]byte, max(spec.MipLevels, 1)),
	}
	for l := range t.levels {
		w, h := mipmap.Size(spec.Width, spec.Height, l)
		t.levels[l] = make([]byte, w*h*bpp*t.layers)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	b.textures[t] = struct{}{}
	logx.Logger().Debug("software: texture created", "label", spec.Label, "w", spec.Width, "h", spec.Height)
	return t, nil
}

func (b *Backend) texture(h backend.Handle) (*texture, error) {
	t, ok := h.(*texture)
	if !ok {
		return nil, backend.ErrInvalidHandle
	}
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	if _, live := b.textures[t]; !live {
		return nil, backend.ErrInvalidHandle
	}
	return t, nil
}

// WriteTexture copies tightly packed rows into region of the first slice
// of a mip level.
func (b *Backend) WriteTexture(h backend.Handle, mip int, region gpucore.Region, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, err := b.texture(h)
	if err != nil {
		return err
	}
	if mip < 0 || mip >= len(t.levels) {
		return fmt.Errorf("%w: mip level %d of %d", backend.ErrOutOfRange, mip, len(t.levels))
	}
	w, ht := mipmap.Size(t.spec.Width, t.spec.Height, mip)
	if !region.Within(w, ht) {
		return fmt.Errorf("%w: region %+v outside %dx%d", backend.ErrOutOfRange, region, w, ht)
	}
	rowBytes := region.Width * t.bpp
	if len(data) < rowBytes*region.Height {
		return fmt.Errorf("%w: %d bytes for a %dx%d region", backend.ErrOutOfRange, len(data), region.Width, region.Height)
	}
	level := t.levels[mip]
	for y := 0; y < region.Height; y++ {
		dst := ((region.Y+y)*w + region.X) * t.bpp
		copy(level[dst:dst+rowBytes], data[y*rowBytes:])
	}
	return nil
}

// ReadTexture returns a copy of a mip level.
func (b *Backend) ReadTexture(h backend.Handle, mip int) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, err := b.texture(h)
	if err != nil {
		return nil, err
	}
	if mip < 0 || mip >= len(t.levels) {
		return nil, fmt.Errorf("%w: mip level %d of %d", backend.ErrOutOfRange, mip, len(t.levels))
	}
	return append([]byte(nil), t.levels[mip]...), nil
}

// GenerateMipmaps rebuilds levels 1..n-1 from level 0.
func (b *Backend) GenerateMipmaps(h backend.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, err := b.texture(h)
	if err != nil {
		return err
	}
	if t.layers == 1 {
		mipmap.Generate(t.levels, t.spec.Width, t.spec.Height, t.bpp, t.spec.Format.IsRGBA8())
		return nil
	}
	// Layered textures are filtered slice by slice.
	for s := 0; s < t.layers; s++ {
		slices := make([][]byte, len(t.levels))
		for l, level := range t.levels {
			n := len(level) / t.layers
			slices[l] = level[s*n : (s+1)*n]
		}
		mipmap.Generate(slices, t.spec.Width, t.spec.Height, t.bpp, t.spec.Format.IsRGBA8())
	}
	return nil
}

// DestroyTexture releases a texture. Unknown handles are ignored.
func (b *Backend) DestroyTexture(h backend.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := h.(*texture); ok && b.textures != nil {
		delete(b.textures, t)
	}
}

// === Buffers ===

// CreateBuffer allocates zeroed storage.
func (b *Backend) CreateBuffer(spec *backend.BufferSpec) (backend.Handle, error) {
	if spec.Length > MaxBufferSize {
		return nil, fmt.Errorf("software: buffer length %d exceeds %d", spec.Length, MaxBufferSize)
	}
	buf := &buffer{label: spec.Label, data: make([]byte, spec.Length)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	b.buffers[buf] = struct{}{}
	return buf, nil
}

func (b *Backend) buffer(h backend.Handle) (*buffer, error) {
	buf, ok := h.(*buffer)
	if !ok {
		return nil, backend.ErrInvalidHandle
	}
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	if _, live := b.buffers[buf]; !live {
		return nil, backend.ErrInvalidHandle
	}
	return buf, nil
}

// WriteBuffer copies data at offset.
func (b *Backend) WriteBuffer(h backend.Handle, offset int, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf, err := b.buffer(h)
	if err != nil {
		return err
	}
	if offset < 0 || offset+len(data) > len(buf.data) {
		return fmt.Errorf("%w: write of %d bytes at %d into %d", backend.ErrOutOfRange, len(data), offset, len(buf.data))
	}
	copy(buf.data[offset:], data)
	return nil
}

// ReadBuffer returns a copy of the buffer contents.
func (b *Backend) ReadBuffer(h backend.Handle) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	buf, err := b.buffer(h)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.data...), nil
}

// DestroyBuffer releases a buffer. Unknown handles are ignored.
func (b *Backend) DestroyBuffer(h backend.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if buf, ok := h.(*buffer); ok && b.buffers != nil {
		delete(b.buffers, buf)
	}
}

// === Shaders and pipelines ===

// CompileShader validates WGSL by compiling it to SPIR-V.
func (b *Backend) CompileShader(spec *backend.ShaderSpec) (backend.Handle, error) {
	words, err := shader.CompileSPIRV(spec.Source)
	if err != nil {
		return nil, err
	}
	lib := &shaderLib{label: spec.Label, spirv: words, entries: shader.EntryPoints(spec.Source)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	b.shaders[lib] = struct{}{}
	return lib, nil
}

// DestroyShader releases a shader library.
func (b *Backend) DestroyShader(h backend.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if lib, ok := h.(*shaderLib); ok && b.shaders != nil {
		delete(b.shaders, lib)
	}
}

// library resolves an optional library handle. nil means "no library".
func (b *Backend) library(h backend.Handle) (*shaderLib, error) {
	if h == nil {
		return nil, nil
	}
	lib, ok := h.(*shaderLib)
	if !ok {
		return nil, backend.ErrInvalidHandle
	}
	if _, live := b.shaders[lib]; !live {
		return nil, backend.ErrInvalidHandle
	}
	return lib, nil
}

func checkEntry(lib *shaderLib, name, stage string) error {
	if lib == nil || name == "" {
		return nil
	}
	if got, ok := lib.entries[name]; !ok || got != stage {
		return fmt.Errorf("software: no %s entry point %q in library %q", stage, name, lib.label)
	}
	return nil
}

// CreateRenderPipeline records a render pipeline. When a library is given
// the named entry points must exist in it with the right stage.
func (b *Backend) CreateRenderPipeline(spec *backend.RenderPipelineSpec) (backend.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	lib, err := b.library(spec.Library)
	if err != nil {
		return nil, err
	}
	if err := checkEntry(lib, spec.Descriptor.VertexFunction, "vertex"); err != nil {
		return nil, err
	}
	if spec.Descriptor.Rasterizes() {
		if err := checkEntry(lib, spec.Descriptor.FragmentFunction, "fragment"); err != nil {
			return nil, err
		}
	}
	p := &pipeline{label: spec.Label}
	b.pipelines[p] = struct{}{}
	return p, nil
}

// CreateComputePipeline records a compute pipeline.
func (b *Backend) CreateComputePipeline(spec *backend.ComputePipelineSpec) (backend.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	lib, err := b.library(spec.Library)
	if err != nil {
		return nil, err
	}
	if err := checkEntry(lib, spec.Function, "compute"); err != nil {
		return nil, err
	}
	p := &pipeline{label: spec.Label, compute: true}
	b.pipelines[p] = struct{}{}
	return p, nil
}

// DestroyPipeline releases a render or compute pipeline.
func (b *Backend) DestroyPipeline(h backend.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := h.(*pipeline); ok && b.pipelines != nil {
		delete(b.pipelines, p)
	}
}

// Stats reports live native object counts.
func (b *Backend) Stats() (textures, buffers, shaders, pipelines int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.textures), len(b.buffers), len(b.shaders), len(b.pipelines)
}

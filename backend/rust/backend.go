//go:build rust

package rust

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/internal/logx"
	"github.com/gogpu/gpubridge/translate"
)

func init() {
	backend.Register(backend.BackendRust, func() backend.Backend {
		return New()
	})
}

// Backend is the wgpu-native GPU backend.
//
// Thread Safety: Backend is safe for concurrent use from multiple goroutines.
type Backend struct {
	mu       sync.RWMutex
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	limits   wgpu.Limits

	// ForceFallbackAdapter requests the CPU adapter; used by CI.
	ForceFallbackAdapter bool

	textures  map[*texture]struct{}
	buffers   map[*buffer]struct{}
	shaders   map[*shaderModule]struct{}
	pipelines map[*pipeline]struct{}
}

var _ backend.Backend = (*Backend)(nil)

// New creates a new rust backend.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return backend.BackendRust }

// Dialect returns the WebGPU dialect.
func (b *Backend) Dialect() translate.Dialect { return translate.WebGPU }

// Init requests an adapter and device from wgpu-native.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device != nil {
		return nil
	}

	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.ForceFallbackAdapter,
	})
	if err != nil {
		instance.Release()
		return fmt.Errorf("%w: %v", ErrNoGPU, err)
	}

	limits := wgpu.DefaultLimits()
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "gpubridge",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		adapter.Release()
		instance.Release()
		return fmt.Errorf("rust: request device: %w", err)
	}

	b.instance = instance
	b.adapter = adapter
	b.device = device
	b.queue = device.GetQueue()
	b.limits = limits
	b.textures = make(map[*texture]struct{})
	b.buffers = make(map[*buffer]struct{})
	b.shaders = make(map[*shaderModule]struct{})
	b.pipelines = make(map[*pipeline]struct{})

	logx.Logger().Info("rust: device ready", "fallback", b.ForceFallbackAdapter)
	return nil
}

// Close releases every live resource and the device.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for p := range b.pipelines {
		p.release()
	}
	for s := range b.shaders {
		s.raw.Release()
	}
	for t := range b.textures {
		t.raw.Release()
	}
	for buf := range b.buffers {
		buf.raw.Release()
	}
	b.textures, b.buffers, b.shaders, b.pipelines = nil, nil, nil, nil

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Info describes the device.
func (b *Backend) Info() backend.Info {
	b.mu.RLock()
	defer b.mu.RUnlock()
	device := "wgpu-native"
	if b.ForceFallbackAdapter {
		device = "wgpu-native (fallback)"
	}
	return backend.Info{
		Backend:         backend.BackendRust,
		Device:          device,
		Dialect:         translate.WebGPU.Name(),
		MaxTextureSize:  int(b.limits.MaxTextureDimension2D),
		MaxBufferSize:   b.limits.MaxBufferSize,
		SupportsCompute: true,
	}
}

func (b *Backend) ready() error {
	if b.device == nil {
		return backend.ErrNotInitialized
	}
	return nil
}

//go:build !nogpu

// Package native provides a Pure Go GPU backend using gogpu/wgpu.
//
// The backend opens its own Vulkan device through the HAL, or shares a
// host's device via [NewFromProvider]. Every texture and buffer keeps a CPU
// shadow copy of what was written, so reads never stall on the GPU and mip
// chains are generated on the host and uploaded level by level.
//
// Build with -tags nogpu to exclude this package's GPU code.
package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // registers the Vulkan HAL

	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/internal/logx"
	"github.com/gogpu/gpubridge/translate"
)

func init() {
	backend.Register(backend.BackendNative, func() backend.Backend {
		return New()
	})
}

// Backend is the Pure Go GPU backend.
//
// Thread Safety: Backend is safe for concurrent use from multiple goroutines.
// All HAL calls are serialized by a mutex.
type Backend struct {
	mu       sync.RWMutex
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	// externalDevice is true when the device came from a provider and must
	// not be destroyed on Close.
	externalDevice bool
	provider       gpucontext.DeviceProvider

	deviceName string
	limits     gputypes.Limits

	textures  map[*texture]struct{}
	buffers   map[*buffer]struct{}
	shaders   map[*shaderModule]struct{}
	pipelines map[*pipeline]struct{}
}

var _ backend.Backend = (*Backend)(nil)

// New creates a backend that opens its own device on Init.
func New() *Backend {
	return &Backend{}
}

// NewFromProvider creates a backend that shares the device of a host such
// as a gogpu window. The provider must expose HalDevice() and HalQueue();
// the device is not destroyed on Close.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Backend, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return &Backend{
		device:         device,
		queue:          queue,
		externalDevice: true,
		provider:       provider,
		deviceName:     "shared",
		limits:         gputypes.DefaultLimits(),
	}, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return backend.BackendNative }

// Dialect returns the WebGPU dialect; gogpu/wgpu consumes gputypes values.
func (b *Backend) Dialect() translate.Dialect { return translate.WebGPU }

// Init opens the GPU device, preferring discrete then integrated adapters.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.textures != nil {
		return nil
	}
	if !b.externalDevice {
		if err := b.openDevice(); err != nil {
			return err
		}
	}
	b.textures = make(map[*texture]struct{})
	b.buffers = make(map[*buffer]struct{})
	b.shaders = make(map[*shaderModule]struct{})
	b.pipelines = make(map[*pipeline]struct{})
	logx.Logger().Info("native: device ready", "device", b.deviceName, "shared", b.externalDevice)
	return nil
}

func (b *Backend) openDevice() error {
	halBackend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return ErrVulkanUnavailable
	}
	instance, err := halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("native: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return ErrNoGPU
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	limits := gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("native: open device: %w", err)
	}
	b.instance = instance
	b.device = openDev.Device
	b.queue = openDev.Queue
	b.deviceName = selected.Info.Name
	b.limits = limits
	return nil
}

// Close destroys every live resource and, unless shared, the device.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device != nil {
		for p := range b.pipelines {
			p.destroy(b.device)
		}
		for s := range b.shaders {
			b.device.DestroyShaderModule(s.raw)
		}
		for t := range b.textures {
			b.device.DestroyTexture(t.raw)
		}
		for buf := range b.buffers {
			b.device.DestroyBuffer(buf.raw)
		}
	}
	b.textures, b.buffers, b.shaders, b.pipelines = nil, nil, nil, nil

	if b.externalDevice {
		// Shared resources belong to the provider.
		b.device = nil
		b.queue = nil
		return
	}
	if b.device != nil {
		b.device.Destroy()
		b.device = nil
	}
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
	b.queue = nil
}

// Info describes the opened device.
func (b *Backend) Info() backend.Info {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return backend.Info{
		Backend:         backend.BackendNative,
		Device:          b.deviceName,
		Dialect:         translate.WebGPU.Name(),
		MaxTextureSize:  int(b.limits.MaxTextureDimension2D),
		MaxBufferSize:   b.limits.MaxBufferSize,
		SupportsCompute: true,
	}
}

// Provider returns the shared device provider, or nil for an owned device.
func (b *Backend) Provider() gpucontext.DeviceProvider {
	return b.provider
}

func (b *Backend) ready() error {
	if b.device == nil || b.textures == nil {
		return backend.ErrNotInitialized
	}
	return nil
}

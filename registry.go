package gpubridge

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gpubridge/backend"
	_ "github.com/gogpu/gpubridge/backend/software" // always available fallback
	"github.com/gogpu/gpubridge/internal/cache"
	"github.com/gogpu/gpubridge/internal/handle"
	"github.com/gogpu/gpubridge/internal/parallel"
	"github.com/gogpu/gpubridge/internal/textmeasure"
	"github.com/gogpu/gpubridge/translate"
)

// Registry maps ids to live resources on one backend.
//
// Thread Safety: Registry is safe for concurrent use from multiple
// goroutines. A single RWMutex serializes mutations; backends serialize
// their own native calls.
type Registry struct {
	mu     sync.RWMutex
	closed bool

	backend backend.Backend
	dialect translate.Dialect
	info    backend.Info
	log     *slog.Logger
	events  EventHandler
	clock   func() time.Time

	// One pool issues ids for every kind, so an id is unique across kinds.
	ids *handle.Pool

	textures   map[handle.Handle]*textureEntry
	buffers    map[handle.Handle]*bufferEntry
	shaders    map[handle.Handle]*shaderEntry
	pipelines  map[handle.Handle]*pipelineEntry
	meshes     map[handle.Handle]*meshEntry
	animations map[handle.Handle]*animationEntry
	canvases   map[handle.Handle]*canvasEntry
	// layers maps a layer id to its owning canvas.
	layers map[handle.Handle]handle.Handle

	measurer *textmeasure.Measurer
	pool     *parallel.Pool
	commands uint64
	lastTick time.Time
}

// New creates a registry and initializes its backend.
func New(opts ...Option) (*Registry, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}

	b, err := openBackend(&o)
	if err != nil {
		return nil, err
	}

	dialect := b.Dialect()
	if o.dialect != nil {
		if b.Name() == backend.BackendSoftware {
			dialect = o.dialect
		} else {
			log.Warn("gpubridge: dialect override ignored", "backend", b.Name(), "dialect", o.dialect.Name())
		}
	}

	r := &Registry{
		backend:    b,
		dialect:    dialect,
		info:       b.Info(),
		log:        log,
		events:     o.events,
		clock:      o.clock,
		ids:        handle.NewPool(),
		textures:   make(map[handle.Handle]*textureEntry),
		buffers:    make(map[handle.Handle]*bufferEntry),
		shaders:    make(map[handle.Handle]*shaderEntry),
		pipelines:  make(map[handle.Handle]*pipelineEntry),
		meshes:     make(map[handle.Handle]*meshEntry),
		animations: make(map[handle.Handle]*animationEntry),
		canvases:   make(map[handle.Handle]*canvasEntry),
		layers:     make(map[handle.Handle]handle.Handle),
		measurer:   textmeasure.New(o.textCacheSize),
		pool:       parallel.New(o.renderWorkers),
	}
	r.info.Dialect = dialect.Name()
	r.lastTick = r.clock()
	log.Info("gpubridge: registry ready", "backend", b.Name(), "device", r.info.Device, "dialect", dialect.Name())
	return r, nil
}

func openBackend(o *options) (backend.Backend, error) {
	switch {
	case o.backend != nil:
		if err := o.backend.Init(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", backend.ErrBackendNotAvailable, o.backend.Name(), err)
		}
		return o.backend, nil
	case o.backendName != "":
		b := backend.Get(o.backendName)
		if b == nil {
			return nil, fmt.Errorf("%w: %q", backend.ErrBackendNotAvailable, o.backendName)
		}
		if err := b.Init(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", backend.ErrBackendNotAvailable, o.backendName, err)
		}
		return b, nil
	default:
		return backend.InitDefault()
	}
}

// Close releases every live resource and closes the backend. Further calls
// fail with ErrClosed. Close is idempotent.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true

	for _, p := range r.pipelines {
		r.backend.DestroyPipeline(p.native)
	}
	for _, s := range r.shaders {
		r.backend.DestroyShader(s.native)
	}
	for _, t := range r.textures {
		r.backend.DestroyTexture(t.native)
	}
	destroyed := make(map[*bufferEntry]bool)
	for _, b := range r.buffers {
		destroyed[b] = true
		r.backend.DestroyBuffer(b.native)
	}
	// Buffers released while a mesh held them are no longer in the map.
	for _, m := range r.meshes {
		for _, b := range m.refs() {
			if !destroyed[b] {
				destroyed[b] = true
				r.backend.DestroyBuffer(b.native)
			}
		}
	}
	r.textures, r.buffers, r.shaders, r.pipelines = nil, nil, nil, nil
	r.meshes, r.animations, r.canvases, r.layers = nil, nil, nil, nil
	r.backend.Close()
	r.pool.Close()
	r.log.Info("gpubridge: registry closed")
}

// lock acquires the write lock, failing after Close.
func (r *Registry) lock() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	return nil
}

// rlock acquires the read lock, failing after Close.
func (r *Registry) rlock() error {
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return ErrClosed
	}
	return nil
}

// Backend returns the backend the registry allocates on.
func (r *Registry) Backend() backend.Backend { return r.backend }

// Dialect returns the dialect native values are resolved with.
func (r *Registry) Dialect() translate.Dialect { return r.dialect }

// DeviceInfo describes the device behind the registry.
type DeviceInfo struct {
	Name            string `json:"name"`
	Backend         string `json:"backend"`
	Dialect         string `json:"dialect"`
	MaxTextureSize  int    `json:"maxTextureSize"`
	MaxBufferSize   uint64 `json:"maxBufferSize"`
	SupportsCompute bool   `json:"supportsCompute"`
}

// DeviceInfo reports the backend's device.
func (r *Registry) DeviceInfo() DeviceInfo {
	return DeviceInfo{
		Name:            r.info.Device,
		Backend:         r.info.Backend,
		Dialect:         r.info.Dialect,
		MaxTextureSize:  r.info.MaxTextureSize,
		MaxBufferSize:   r.info.MaxBufferSize,
		SupportsCompute: r.info.SupportsCompute,
	}
}

// Stats counts live resources.
type Stats struct {
	Textures   int `json:"textures"`
	Buffers    int `json:"buffers"`
	Shaders    int `json:"shaders"`
	Pipelines  int `json:"pipelines"`
	Meshes     int `json:"meshes"`
	Animations int `json:"animations"`
	Canvases   int `json:"canvases"`
	Layers     int `json:"layers"`

	// TextureBytes and BufferBytes sum the level-0 texel storage and
	// buffer lengths of live entries.
	TextureBytes int64 `json:"textureBytes"`
	BufferBytes  int64 `json:"bufferBytes"`

	TextCache cache.Stats `json:"textCache"`
}

// Stats returns live resource counts. A closed registry reports zeros.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Stats{
		Textures:   len(r.textures),
		Buffers:    len(r.buffers),
		Shaders:    len(r.shaders),
		Pipelines:  len(r.pipelines),
		Meshes:     len(r.meshes),
		Animations: len(r.animations),
		Canvases:   len(r.canvases),
		Layers:     len(r.layers),
		TextCache:  r.measurer.CacheStats(),
	}
	for _, t := range r.textures {
		s.TextureBytes += t.bytes()
	}
	for _, b := range r.buffers {
		s.BufferBytes += int64(b.desc.Length)
	}
	return s
}

// emit delivers events. Callers must not hold r.mu.
func (r *Registry) emit(events []Event) {
	if r.events == nil {
		return
	}
	for _, e := range events {
		r.events(e)
	}
}

// fallback logs a tag the dialect did not know.
func (r *Registry) fallback(kind string, tag any, used any) {
	r.log.Warn("gpubridge: unsupported tag, using fallback",
		"kind", kind, "tag", tag, "fallback", used, "dialect", r.dialect.Name())
}

// invalid wraps a validation error from the translate package.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
}

// fromBackend maps backend errors to registry errors.
func fromBackend(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, backend.ErrOutOfRange):
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	case errors.Is(err, backend.ErrNotSupported):
		return fmt.Errorf("%w: %w", ErrNotSupported, err)
	default:
		return err
	}
}

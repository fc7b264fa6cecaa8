package backend

import (
	"errors"

	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/translate"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrNotSupported is returned for capabilities a backend lacks,
	// such as pixel readback on a GPU-only texture.
	ErrNotSupported = errors.New("backend: operation not supported")

	// ErrInvalidHandle is returned when a handle was not created by the
	// backend it is passed to, or was already destroyed.
	ErrInvalidHandle = errors.New("backend: invalid handle")

	// ErrOutOfRange is returned when a write or read exceeds a resource.
	ErrOutOfRange = errors.New("backend: out of range")
)

// Handle is an opaque native resource owned by a backend.
// A nil Handle means allocation produced nothing.
type Handle any

// Info describes the device behind a backend.
type Info struct {
	Backend         string `json:"backend"`
	Device          string `json:"device"`
	Dialect         string `json:"dialect"`
	MaxTextureSize  int    `json:"maxTextureSize"`
	MaxBufferSize   uint64 `json:"maxBufferSize"`
	SupportsCompute bool   `json:"supportsCompute"`
}

// TextureSpec is a fully resolved texture allocation request.
type TextureSpec struct {
	Label       string
	Width       int
	Height      int
	Depth       int
	ArrayLength int
	MipLevels   int
	SampleCount int

	Format       gpucore.PixelFormat
	NativeFormat uint32
	Usage        gpucore.TextureUsage
	NativeUsage  uint32
	Storage      gpucore.StorageMode
	NativeMode   uint32
}

// BufferSpec is a fully resolved buffer allocation request.
type BufferSpec struct {
	Label         string
	Length        int
	Options       gpucore.ResourceOption
	NativeOptions uint32
}

// ShaderSpec is a shader library compile request. Source is WGSL.
type ShaderSpec struct {
	Label  string
	Source string
}

// ColorTarget is a colour attachment with native enum values.
type ColorTarget struct {
	Format         uint32
	BlendEnabled   bool
	SrcColorFactor uint32
	DstColorFactor uint32
	ColorOperation uint32
	SrcAlphaFactor uint32
	DstAlphaFactor uint32
	AlphaOperation uint32
	WriteMask      uint32
}

// RenderPipelineSpec is a fully resolved render pipeline request.
type RenderPipelineSpec struct {
	Label string

	// Library is the shader handle holding the entry points, or nil.
	Library Handle

	Descriptor    gpucore.RenderPipelineDescriptor
	Targets       []ColorTarget
	DepthFormat   uint32
	StencilFormat uint32
	Topology      uint32
}

// ComputePipelineSpec is a fully resolved compute pipeline request.
type ComputePipelineSpec struct {
	Label    string
	Library  Handle
	Function string
}

// Backend is the capability set the registry needs from a graphics API.
// It allocates, writes, reads and destroys native resources; ids, validation
// and defaulting live in the registry.
//
// Texture data is tightly packed rows in the texture's own format.
// Backends must be safe for concurrent use.
type Backend interface {
	// Name returns the backend identifier (e.g., "software", "native").
	Name() string

	// Dialect returns the enum vocabulary the backend consumes.
	Dialect() translate.Dialect

	// Init acquires the device. It must be called before any allocation.
	Init() error

	// Close releases the device. Outstanding handles become invalid.
	Close()

	// Info describes the device.
	Info() Info

	CreateTexture(spec *TextureSpec) (Handle, error)
	WriteTexture(h Handle, mip int, region gpucore.Region, data []byte) error
	ReadTexture(h Handle, mip int) ([]byte, error)
	GenerateMipmaps(h Handle) error
	DestroyTexture(h Handle)

	CreateBuffer(spec *BufferSpec) (Handle, error)
	WriteBuffer(h Handle, offset int, data []byte) error
	ReadBuffer(h Handle) ([]byte, error)
	DestroyBuffer(h Handle)

	CompileShader(spec *ShaderSpec) (Handle, error)
	DestroyShader(h Handle)

	CreateRenderPipeline(spec *RenderPipelineSpec) (Handle, error)
	CreateComputePipeline(spec *ComputePipelineSpec) (Handle, error)
	DestroyPipeline(h Handle)
}

package gpubridge

import (
	"errors"
	"fmt"
)

// Registry errors. Every lookup failure matches ErrResourceNotFound;
// the kind-specific errors below wrap it.
var (
	// ErrResourceNotFound is returned when an id does not name a live
	// resource of the requested kind.
	ErrResourceNotFound = errors.New("gpubridge: resource not found")

	// ErrStaleID is joined to a not-found error when the id was issued by
	// this registry and has since been released.
	ErrStaleID = errors.New("gpubridge: id was released")

	// ErrResourceCreationFailed is returned when the backend produced no
	// native resource.
	ErrResourceCreationFailed = errors.New("gpubridge: resource creation failed")

	// ErrInvalidDescriptor is returned for out-of-range regions, negative
	// sizes and other malformed input.
	ErrInvalidDescriptor = errors.New("gpubridge: invalid descriptor")

	// ErrPipelineCreationFailed is returned when a pipeline state cannot be
	// built.
	ErrPipelineCreationFailed = errors.New("gpubridge: pipeline creation failed")

	// ErrShaderCompilationFailed is returned when WGSL source does not
	// compile.
	ErrShaderCompilationFailed = errors.New("gpubridge: shader compilation failed")

	// ErrUnsupportedFormat is returned where no fallback exists, such as an
	// unknown export image format or mesh file format.
	ErrUnsupportedFormat = errors.New("gpubridge: unsupported format")

	// ErrNotSupported is returned when the backend lacks a capability.
	ErrNotSupported = errors.New("gpubridge: operation not supported")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("gpubridge: registry closed")
)

// Kind-specific not-found errors.
var (
	ErrTextureNotFound   = notFound("texture")
	ErrBufferNotFound    = notFound("buffer")
	ErrShaderNotFound    = notFound("shader library")
	ErrPipelineNotFound  = notFound("pipeline state")
	ErrMeshNotFound      = notFound("mesh")
	ErrAnimationNotFound = notFound("animation")
	ErrCanvasNotFound    = notFound("canvas")
	ErrLayerNotFound     = notFound("drawing layer")
)

func notFound(kind string) error {
	return fmt.Errorf("%w: %s", ErrResourceNotFound, kind)
}

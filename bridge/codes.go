package bridge

import (
	"errors"

	"github.com/gogpu/gpubridge"
)

// Code is a machine-readable error category.
type Code string

// Error codes.
const (
	CodeResourceNotFound        Code = "RESOURCE_NOT_FOUND"
	CodeResourceCreationFailed  Code = "RESOURCE_CREATION_FAILED"
	CodeInvalidDescriptor       Code = "INVALID_DESCRIPTOR"
	CodePipelineCreationFailed  Code = "PIPELINE_CREATION_FAILED"
	CodeShaderCompilationFailed Code = "SHADER_COMPILATION_FAILED"
	CodeAnimationNotFound       Code = "ANIMATION_NOT_FOUND"
	CodeCanvasNotFound          Code = "CANVAS_NOT_FOUND"
	CodeLayerNotFound           Code = "LAYER_NOT_FOUND"
	CodeUnsupportedFormat       Code = "UNSUPPORTED_FORMAT"
	CodeNotSupported            Code = "NOT_SUPPORTED"
	CodeUnknownMethod           Code = "UNKNOWN_METHOD"
	CodeInternal                Code = "INTERNAL"
)

// errBadParams marks params that do not decode into the method's shape.
var errBadParams = errors.New("bridge: bad params")

// codes is checked in order; the first match wins. Pipeline and shader
// failures may wrap a not-found cause and keep their own code; kind-specific
// not-found errors come before ErrResourceNotFound.
var codes = []struct {
	err  error
	code Code
}{
	{gpubridge.ErrPipelineCreationFailed, CodePipelineCreationFailed},
	{gpubridge.ErrShaderCompilationFailed, CodeShaderCompilationFailed},
	{gpubridge.ErrAnimationNotFound, CodeAnimationNotFound},
	{gpubridge.ErrCanvasNotFound, CodeCanvasNotFound},
	{gpubridge.ErrLayerNotFound, CodeLayerNotFound},
	{gpubridge.ErrResourceNotFound, CodeResourceNotFound},
	{gpubridge.ErrResourceCreationFailed, CodeResourceCreationFailed},
	{gpubridge.ErrUnsupportedFormat, CodeUnsupportedFormat},
	{gpubridge.ErrNotSupported, CodeNotSupported},
	{gpubridge.ErrInvalidDescriptor, CodeInvalidDescriptor},
	{errBadParams, CodeInvalidDescriptor},
}

// CodeOf classifies err. Unclassified errors are CodeInternal.
func CodeOf(err error) Code {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

package translate

import (
	"fmt"
	"math"

	"github.com/gogpu/gpubridge/gpucore"
)

// Default descriptor values.
const (
	DefaultTexturePixelFormat = gpucore.PixelFormatBGRA8Unorm
	DefaultTextureUsage       = gpucore.TextureUsageShaderRead
	DefaultStorageMode        = gpucore.StorageModePrivate
	DefaultBufferOptions      = gpucore.ResourceOptionStorageModePrivate
	DefaultCanvasPixelFormat  = gpucore.PixelFormatRGBA8Unorm
	DefaultTimingFunction     = gpucore.TimingFunctionDefault
	DefaultPrimitiveType      = gpucore.PrimitiveTypeTriangle
	DefaultIndexType          = gpucore.IndexTypeUInt16
	DefaultLayerBlendMode     = gpucore.BlendModeNormal
	DefaultRepeatCount        = 1.0
	DefaultLayerOpacity       = 1.0
)

// ApplyTextureDefaults fills unspecified fields of d and validates the
// numeric ones. Unknown tags are left for the dialect to resolve.
func ApplyTextureDefaults(d gpucore.TextureDescriptor) (gpucore.TextureDescriptor, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return d, fmt.Errorf("texture size must be positive: %dx%d", d.Width, d.Height)
	}
	if d.MipmapLevelCount < 0 || d.SampleCount < 0 || d.ArrayLength < 0 || d.Depth < 0 {
		return d, fmt.Errorf("negative texture field: mip=%d samples=%d array=%d depth=%d",
			d.MipmapLevelCount, d.SampleCount, d.ArrayLength, d.Depth)
	}
	if d.PixelFormat == "" {
		d.PixelFormat = DefaultTexturePixelFormat
	}
	if d.Usage == "" {
		d.Usage = DefaultTextureUsage
	}
	if d.StorageMode == "" {
		d.StorageMode = DefaultStorageMode
	}
	if d.MipmapLevelCount == 0 {
		d.MipmapLevelCount = 1
	}
	if d.SampleCount == 0 {
		d.SampleCount = 1
	}
	if d.ArrayLength == 0 {
		d.ArrayLength = 1
	}
	if d.Depth == 0 {
		d.Depth = 1
	}
	if maxMip := MaxMipLevels(d.Width, d.Height); d.MipmapLevelCount > maxMip {
		return d, fmt.Errorf("mipmapLevelCount %d exceeds %d for %dx%d",
			d.MipmapLevelCount, maxMip, d.Width, d.Height)
	}
	return d, nil
}

// MaxMipLevels returns the length of a full mip chain for the given size.
func MaxMipLevels(width, height int) int {
	n := 1
	for width > 1 || height > 1 {
		width /= 2
		height /= 2
		n++
	}
	return n
}

// ApplyBufferDefaults fills unspecified fields of d.
func ApplyBufferDefaults(d gpucore.BufferDescriptor) (gpucore.BufferDescriptor, error) {
	if d.Length < 0 {
		return d, fmt.Errorf("buffer length must not be negative: %d", d.Length)
	}
	if d.Options == "" {
		d.Options = DefaultBufferOptions
	}
	return d, nil
}

// DefaultColorAttachment is the attachment used when a pipeline declares none.
func DefaultColorAttachment() gpucore.ColorAttachmentDescriptor {
	return gpucore.ColorAttachmentDescriptor{
		PixelFormat:                 gpucore.PixelFormatBGRA8Unorm,
		IsBlendingEnabled:           false,
		RGBBlendOperation:           gpucore.BlendOperationAdd,
		AlphaBlendOperation:         gpucore.BlendOperationAdd,
		SourceRGBBlendFactor:        gpucore.BlendFactorOne,
		SourceAlphaBlendFactor:      gpucore.BlendFactorOne,
		DestinationRGBBlendFactor:   gpucore.BlendFactorZero,
		DestinationAlphaBlendFactor: gpucore.BlendFactorZero,
		WriteMask:                   gpucore.ColorWriteMaskAll,
	}
}

// ApplyColorAttachmentDefaults fills unspecified fields of a.
func ApplyColorAttachmentDefaults(a gpucore.ColorAttachmentDescriptor) gpucore.ColorAttachmentDescriptor {
	def := DefaultColorAttachment()
	if a.PixelFormat == "" {
		a.PixelFormat = def.PixelFormat
	}
	if a.RGBBlendOperation == "" {
		a.RGBBlendOperation = def.RGBBlendOperation
	}
	if a.AlphaBlendOperation == "" {
		a.AlphaBlendOperation = def.AlphaBlendOperation
	}
	if a.SourceRGBBlendFactor == "" {
		a.SourceRGBBlendFactor = def.SourceRGBBlendFactor
	}
	if a.SourceAlphaBlendFactor == "" {
		a.SourceAlphaBlendFactor = def.SourceAlphaBlendFactor
	}
	if a.DestinationRGBBlendFactor == "" {
		a.DestinationRGBBlendFactor = def.DestinationRGBBlendFactor
	}
	if a.DestinationAlphaBlendFactor == "" {
		a.DestinationAlphaBlendFactor = def.DestinationAlphaBlendFactor
	}
	if a.WriteMask == "" {
		a.WriteMask = def.WriteMask
	}
	return a
}

// ApplyPipelineDefaults fills unspecified fields of d. The colour
// attachment slice is copied, never aliased.
func ApplyPipelineDefaults(d gpucore.RenderPipelineDescriptor) (gpucore.RenderPipelineDescriptor, error) {
	if d.SampleCount < 0 || d.RasterSampleCount < 0 {
		return d, fmt.Errorf("negative sample count: %d/%d", d.SampleCount, d.RasterSampleCount)
	}
	if len(d.ColorAttachments) > gpucore.MaxColorAttachments {
		return d, fmt.Errorf("%d color attachments exceed the limit of %d",
			len(d.ColorAttachments), gpucore.MaxColorAttachments)
	}
	if d.SampleCount == 0 {
		d.SampleCount = 1
	}
	if d.RasterSampleCount == 0 {
		d.RasterSampleCount = 1
	}
	if d.RasterizationEnabled == nil {
		on := true
		d.RasterizationEnabled = &on
	} else {
		v := *d.RasterizationEnabled
		d.RasterizationEnabled = &v
	}
	if d.PrimitiveType == "" {
		d.PrimitiveType = DefaultPrimitiveType
	}
	attachments := make([]gpucore.ColorAttachmentDescriptor, 0, max(1, len(d.ColorAttachments)))
	for _, a := range d.ColorAttachments {
		attachments = append(attachments, ApplyColorAttachmentDefaults(a))
	}
	if len(attachments) == 0 {
		attachments = append(attachments, DefaultColorAttachment())
	}
	d.ColorAttachments = attachments
	return d, nil
}

// ApplyMeshDefaults fills unspecified fields of d.
func ApplyMeshDefaults(d gpucore.MeshDescriptor) (gpucore.MeshDescriptor, error) {
	if d.VertexCount < 0 || d.IndexCount < 0 {
		return d, fmt.Errorf("negative mesh count: vertices=%d indices=%d", d.VertexCount, d.IndexCount)
	}
	if d.PrimitiveType == "" {
		d.PrimitiveType = DefaultPrimitiveType
	}
	if d.IndexBuffer != "" && d.IndexType == "" {
		d.IndexType = DefaultIndexType
	}
	d.VertexBuffers = append([]string(nil), d.VertexBuffers...)
	return d, nil
}

// ApplyAnimationDefaults fills unspecified fields of d.
func ApplyAnimationDefaults(d gpucore.AnimationDescriptor) (gpucore.AnimationDescriptor, error) {
	if !(d.Duration > 0) || math.IsInf(d.Duration, 1) {
		return d, fmt.Errorf("animation duration must be positive and finite: %v", d.Duration)
	}
	// +Inf repeats forever; NaN fails the comparison.
	if !(d.RepeatCount >= 0) {
		return d, fmt.Errorf("animation repeat count must not be negative: %v", d.RepeatCount)
	}
	if d.RepeatCount == 0 {
		d.RepeatCount = DefaultRepeatCount
	}
	if d.TimingFunction == "" {
		d.TimingFunction = DefaultTimingFunction
	}
	return d, nil
}

// ApplyCanvasDefaults fills unspecified fields of d.
func ApplyCanvasDefaults(d gpucore.Canvas2DDescriptor) (gpucore.Canvas2DDescriptor, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return d, fmt.Errorf("canvas size must be positive: %dx%d", d.Width, d.Height)
	}
	if d.PixelFormat == "" {
		d.PixelFormat = DefaultCanvasPixelFormat
	}
	if !d.PixelFormat.IsRGBA8() {
		return d, fmt.Errorf("canvas pixel format %q is not an 8-bit colour format", d.PixelFormat)
	}
	return d, nil
}

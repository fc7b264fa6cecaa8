package gpucore

// MaxColorAttachments is the number of colour targets a render pipeline
// may declare.
const MaxColorAttachments = 8

// ColorAttachmentDescriptor describes one colour target of a render pipeline.
type ColorAttachmentDescriptor struct {
	PixelFormat                 PixelFormat    `json:"pixelFormat,omitempty"`
	IsBlendingEnabled           bool           `json:"isBlendingEnabled"`
	RGBBlendOperation           BlendOperation `json:"rgbBlendOperation,omitempty"`
	AlphaBlendOperation         BlendOperation `json:"alphaBlendOperation,omitempty"`
	SourceRGBBlendFactor        BlendFactor    `json:"sourceRGBBlendFactor,omitempty"`
	SourceAlphaBlendFactor      BlendFactor    `json:"sourceAlphaBlendFactor,omitempty"`
	DestinationRGBBlendFactor   BlendFactor    `json:"destinationRGBBlendFactor,omitempty"`
	DestinationAlphaBlendFactor BlendFactor    `json:"destinationAlphaBlendFactor,omitempty"`
	WriteMask                   ColorWriteMask `json:"writeMask,omitempty"`
}

// RenderPipelineDescriptor describes a render pipeline state.
type RenderPipelineDescriptor struct {
	// Library is the id of a shader library holding the entry points.
	// When empty the backend resolves functions by name alone.
	Library string `json:"library,omitempty"`

	VertexFunction   string `json:"vertexFunction"`
	FragmentFunction string `json:"fragmentFunction"`

	// ColorAttachments defaults to a single BGRA8Unorm target without blending.
	ColorAttachments []ColorAttachmentDescriptor `json:"colorAttachments,omitempty"`

	DepthAttachmentPixelFormat   PixelFormat `json:"depthAttachmentPixelFormat,omitempty"`
	StencilAttachmentPixelFormat PixelFormat `json:"stencilAttachmentPixelFormat,omitempty"`

	// SampleCount and RasterSampleCount default to 1.
	SampleCount       int `json:"sampleCount,omitempty"`
	RasterSampleCount int `json:"rasterSampleCount,omitempty"`

	AlphaToCoverageEnabled bool `json:"alphaToCoverageEnabled,omitempty"`
	AlphaToOneEnabled      bool `json:"alphaToOneEnabled,omitempty"`

	// RasterizationEnabled defaults to true.
	RasterizationEnabled *bool `json:"rasterizationEnabled,omitempty"`

	// PrimitiveType defaults to Triangle.
	PrimitiveType PrimitiveType `json:"primitiveType,omitempty"`

	Label string `json:"label,omitempty"`
}

// Rasterizes reports the effective rasterization flag.
func (d *RenderPipelineDescriptor) Rasterizes() bool {
	return d.RasterizationEnabled == nil || *d.RasterizationEnabled
}

// ComputePipelineDescriptor describes a compute pipeline state.
type ComputePipelineDescriptor struct {
	Library         string `json:"library,omitempty"`
	ComputeFunction string `json:"computeFunction"`
	Label           string `json:"label,omitempty"`
}

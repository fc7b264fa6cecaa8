package gpucore

// PixelFormat is a portable pixel format tag.
type PixelFormat string

// Pixel formats.
const (
	PixelFormatRGBA8Unorm           PixelFormat = "RGBA8Unorm"
	PixelFormatRGBA8UnormSRGB       PixelFormat = "RGBA8Unorm_sRGB"
	PixelFormatBGRA8Unorm           PixelFormat = "BGRA8Unorm"
	PixelFormatBGRA8UnormSRGB       PixelFormat = "BGRA8Unorm_sRGB"
	PixelFormatRGB10A2Unorm         PixelFormat = "RGB10A2Unorm"
	PixelFormatRG11B10Float         PixelFormat = "RG11B10Float"
	PixelFormatRGB9E5Float          PixelFormat = "RGB9E5Float"
	PixelFormatRGBA16Float          PixelFormat = "RGBA16Float"
	PixelFormatRGBA32Float          PixelFormat = "RGBA32Float"
	PixelFormatDepth32Float         PixelFormat = "Depth32Float"
	PixelFormatDepth24UnormStencil8 PixelFormat = "Depth24Unorm_Stencil8"
	PixelFormatDepth32FloatStencil8 PixelFormat = "Depth32Float_Stencil8"
)

// PixelFormats lists every supported pixel format tag.
var PixelFormats = []PixelFormat{
	PixelFormatRGBA8Unorm,
	PixelFormatRGBA8UnormSRGB,
	PixelFormatBGRA8Unorm,
	PixelFormatBGRA8UnormSRGB,
	PixelFormatRGB10A2Unorm,
	PixelFormatRG11B10Float,
	PixelFormatRGB9E5Float,
	PixelFormatRGBA16Float,
	PixelFormatRGBA32Float,
	PixelFormatDepth32Float,
	PixelFormatDepth24UnormStencil8,
	PixelFormatDepth32FloatStencil8,
}

// BytesPerPixel returns the size of one texel, or 0 for unknown tags.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatRGBA16Float:
		return 8
	case PixelFormatRGBA32Float:
		return 16
	case PixelFormatDepth32FloatStencil8:
		return 8
	case PixelFormatRGBA8Unorm, PixelFormatRGBA8UnormSRGB,
		PixelFormatBGRA8Unorm, PixelFormatBGRA8UnormSRGB,
		PixelFormatRGB10A2Unorm, PixelFormatRG11B10Float, PixelFormatRGB9E5Float,
		PixelFormatDepth32Float, PixelFormatDepth24UnormStencil8:
		return 4
	default:
		return 0
	}
}

// IsDepth reports whether the format is a depth or depth-stencil format.
func (f PixelFormat) IsDepth() bool {
	switch f {
	case PixelFormatDepth32Float, PixelFormatDepth24UnormStencil8, PixelFormatDepth32FloatStencil8:
		return true
	}
	return false
}

// IsRGBA8 reports whether the format stores four 8-bit channels.
// Canvases and image uploads only accept these formats.
func (f PixelFormat) IsRGBA8() bool {
	switch f {
	case PixelFormatRGBA8Unorm, PixelFormatRGBA8UnormSRGB,
		PixelFormatBGRA8Unorm, PixelFormatBGRA8UnormSRGB:
		return true
	}
	return false
}

// IsBGRA reports whether the channel order is blue first.
func (f PixelFormat) IsBGRA() bool {
	return f == PixelFormatBGRA8Unorm || f == PixelFormatBGRA8UnormSRGB
}

// TextureUsage is a texture usage tag.
type TextureUsage string

// Texture usages.
const (
	TextureUsageShaderRead      TextureUsage = "ShaderRead"
	TextureUsageShaderWrite     TextureUsage = "ShaderWrite"
	TextureUsageRenderTarget    TextureUsage = "RenderTarget"
	TextureUsagePixelFormatView TextureUsage = "PixelFormatView"
)

// StorageMode is a texture storage mode tag.
type StorageMode string

// Storage modes.
const (
	StorageModeShared  StorageMode = "Shared"
	StorageModeManaged StorageMode = "Managed"
	StorageModePrivate StorageMode = "Private"
)

// ResourceOption is a buffer resource option tag.
type ResourceOption string

// Buffer resource options.
const (
	ResourceOptionCPUCacheModeDefaultCache  ResourceOption = "CPUCacheModeDefaultCache"
	ResourceOptionCPUCacheModeWriteCombined ResourceOption = "CPUCacheModeWriteCombined"
	ResourceOptionStorageModeShared         ResourceOption = "StorageModeShared"
	ResourceOptionStorageModeManaged        ResourceOption = "StorageModeManaged"
	ResourceOptionStorageModePrivate        ResourceOption = "StorageModePrivate"
)

// PrimitiveType is a mesh primitive topology tag.
type PrimitiveType string

// Primitive types.
const (
	PrimitiveTypePoint         PrimitiveType = "Point"
	PrimitiveTypeLine          PrimitiveType = "Line"
	PrimitiveTypeLineStrip     PrimitiveType = "LineStrip"
	PrimitiveTypeTriangle      PrimitiveType = "Triangle"
	PrimitiveTypeTriangleStrip PrimitiveType = "TriangleStrip"
)

// IndexType is an index element type tag.
type IndexType string

// Index types.
const (
	IndexTypeUInt16 IndexType = "UInt16"
	IndexTypeUInt32 IndexType = "UInt32"
)

// Size returns the byte size of one index, or 0 for unknown tags.
func (t IndexType) Size() int {
	switch t {
	case IndexTypeUInt16:
		return 2
	case IndexTypeUInt32:
		return 4
	}
	return 0
}

// BlendOperation is a blend equation tag.
type BlendOperation string

// Blend operations.
const (
	BlendOperationAdd             BlendOperation = "Add"
	BlendOperationSubtract        BlendOperation = "Subtract"
	BlendOperationReverseSubtract BlendOperation = "ReverseSubtract"
	BlendOperationMin             BlendOperation = "Min"
	BlendOperationMax             BlendOperation = "Max"
)

// BlendFactor is a blend factor tag.
type BlendFactor string

// Blend factors.
const (
	BlendFactorZero                     BlendFactor = "Zero"
	BlendFactorOne                      BlendFactor = "One"
	BlendFactorSourceColor              BlendFactor = "SourceColor"
	BlendFactorOneMinusSourceColor      BlendFactor = "OneMinusSourceColor"
	BlendFactorSourceAlpha              BlendFactor = "SourceAlpha"
	BlendFactorOneMinusSourceAlpha      BlendFactor = "OneMinusSourceAlpha"
	BlendFactorDestinationColor         BlendFactor = "DestinationColor"
	BlendFactorOneMinusDestinationColor BlendFactor = "OneMinusDestinationColor"
	BlendFactorDestinationAlpha         BlendFactor = "DestinationAlpha"
	BlendFactorOneMinusDestinationAlpha BlendFactor = "OneMinusDestinationAlpha"
	BlendFactorBlendColor               BlendFactor = "BlendColor"
	BlendFactorOneMinusBlendColor       BlendFactor = "OneMinusBlendColor"
	BlendFactorBlendAlpha               BlendFactor = "BlendAlpha"
	BlendFactorOneMinusBlendAlpha       BlendFactor = "OneMinusBlendAlpha"
	BlendFactorSourceAlphaSaturated     BlendFactor = "SourceAlphaSaturated"
	BlendFactorSource1Color             BlendFactor = "Source1Color"
	BlendFactorOneMinusSource1Color     BlendFactor = "OneMinusSource1Color"
	BlendFactorSource1Alpha             BlendFactor = "Source1Alpha"
	BlendFactorOneMinusSource1Alpha     BlendFactor = "OneMinusSource1Alpha"
)

// ColorWriteMask is a colour write mask tag.
type ColorWriteMask string

// Write masks.
const (
	ColorWriteMaskNone  ColorWriteMask = "None"
	ColorWriteMaskRed   ColorWriteMask = "Red"
	ColorWriteMaskGreen ColorWriteMask = "Green"
	ColorWriteMaskBlue  ColorWriteMask = "Blue"
	ColorWriteMaskAlpha ColorWriteMask = "Alpha"
	ColorWriteMaskAll   ColorWriteMask = "All"
)

// TimingFunction is an animation easing tag.
type TimingFunction string

// Timing functions.
const (
	TimingFunctionLinear        TimingFunction = "Linear"
	TimingFunctionEaseIn        TimingFunction = "EaseIn"
	TimingFunctionEaseOut       TimingFunction = "EaseOut"
	TimingFunctionEaseInEaseOut TimingFunction = "EaseInEaseOut"
	TimingFunctionDefault       TimingFunction = "Default"
)

// BlendMode is a 2D layer compositing mode.
type BlendMode string

// Layer blend modes.
const (
	BlendModeNormal     BlendMode = "normal"
	BlendModeMultiply   BlendMode = "multiply"
	BlendModeScreen     BlendMode = "screen"
	BlendModeOverlay    BlendMode = "overlay"
	BlendModeSoftLight  BlendMode = "softLight"
	BlendModeHardLight  BlendMode = "hardLight"
	BlendModeColorDodge BlendMode = "colorDodge"
	BlendModeColorBurn  BlendMode = "colorBurn"
	BlendModeDarken     BlendMode = "darken"
	BlendModeLighten    BlendMode = "lighten"
	BlendModeDifference BlendMode = "difference"
	BlendModeExclusion  BlendMode = "exclusion"
)

// BlendModes lists every layer blend mode.
var BlendModes = []BlendMode{
	BlendModeNormal, BlendModeMultiply, BlendModeScreen, BlendModeOverlay,
	BlendModeSoftLight, BlendModeHardLight, BlendModeColorDodge, BlendModeColorBurn,
	BlendModeDarken, BlendModeLighten, BlendModeDifference, BlendModeExclusion,
}

// Valid reports whether m is a known blend mode.
func (m BlendMode) Valid() bool {
	for _, v := range BlendModes {
		if v == m {
			return true
		}
	}
	return false
}

package translate

import "github.com/gogpu/gpubridge/gpucore"

// MTLPixelFormat raw values.
const (
	mtlPixelFormatRGBA8Unorm           = 70
	mtlPixelFormatRGBA8UnormSRGB       = 71
	mtlPixelFormatBGRA8Unorm           = 80
	mtlPixelFormatBGRA8UnormSRGB       = 81
	mtlPixelFormatRGB10A2Unorm         = 90
	mtlPixelFormatRG11B10Float         = 92
	mtlPixelFormatRGB9E5Float          = 93
	mtlPixelFormatRGBA16Float          = 115
	mtlPixelFormatRGBA32Float          = 125
	mtlPixelFormatDepth32Float         = 252
	mtlPixelFormatDepth24UnormStencil8 = 255
	mtlPixelFormatDepth32FloatStencil8 = 260
)

// Metal resolves tags to MTL raw enum values.
//
// The tables follow iOS: there is no managed storage, so Managed resolves to
// Shared for textures and buffers alike. Depth24Unorm_Stencil8 keeps its own
// value here although iOS devices substitute Depth32Float_Stencil8 at
// allocation time.
var Metal Dialect = &table{
	name: "metal",
	formats: map[gpucore.PixelFormat]uint32{
		gpucore.PixelFormatRGBA8Unorm:           mtlPixelFormatRGBA8Unorm,
		gpucore.PixelFormatRGBA8UnormSRGB:       mtlPixelFormatRGBA8UnormSRGB,
		gpucore.PixelFormatBGRA8Unorm:           mtlPixelFormatBGRA8Unorm,
		gpucore.PixelFormatBGRA8UnormSRGB:       mtlPixelFormatBGRA8UnormSRGB,
		gpucore.PixelFormatRGB10A2Unorm:         mtlPixelFormatRGB10A2Unorm,
		gpucore.PixelFormatRG11B10Float:         mtlPixelFormatRG11B10Float,
		gpucore.PixelFormatRGB9E5Float:          mtlPixelFormatRGB9E5Float,
		gpucore.PixelFormatRGBA16Float:          mtlPixelFormatRGBA16Float,
		gpucore.PixelFormatRGBA32Float:          mtlPixelFormatRGBA32Float,
		gpucore.PixelFormatDepth32Float:         mtlPixelFormatDepth32Float,
		gpucore.PixelFormatDepth24UnormStencil8: mtlPixelFormatDepth24UnormStencil8,
		gpucore.PixelFormatDepth32FloatStencil8: mtlPixelFormatDepth32FloatStencil8,
	},
	formatFallback: gpucore.PixelFormatBGRA8Unorm,

	// MTLTextureUsage option bits.
	usages: map[gpucore.TextureUsage]uint32{
		gpucore.TextureUsageShaderRead:      0x01,
		gpucore.TextureUsageShaderWrite:     0x02,
		gpucore.TextureUsageRenderTarget:    0x04,
		gpucore.TextureUsagePixelFormatView: 0x10,
	},
	usageFallback: gpucore.TextureUsageShaderRead,

	// MTLStorageMode.
	storage: map[gpucore.StorageMode]uint32{
		gpucore.StorageModeShared:  0,
		gpucore.StorageModeManaged: 0,
		gpucore.StorageModePrivate: 2,
	},
	storageFallback: gpucore.StorageModePrivate,

	// MTLResourceOptions: cache mode in bits 0-3, storage mode in bits 4-7.
	options: map[gpucore.ResourceOption]uint32{
		gpucore.ResourceOptionCPUCacheModeDefaultCache:  0,
		gpucore.ResourceOptionCPUCacheModeWriteCombined: 1,
		gpucore.ResourceOptionStorageModeShared:         0 << 4,
		gpucore.ResourceOptionStorageModeManaged:        0 << 4,
		gpucore.ResourceOptionStorageModePrivate:        2 << 4,
	},
	optionsFallback: gpucore.ResourceOptionStorageModePrivate,

	factors: map[gpucore.BlendFactor]uint32{
		gpucore.BlendFactorZero:                     0,
		gpucore.BlendFactorOne:                      1,
		gpucore.BlendFactorSourceColor:              2,
		gpucore.BlendFactorOneMinusSourceColor:      3,
		gpucore.BlendFactorSourceAlpha:              4,
		gpucore.BlendFactorOneMinusSourceAlpha:      5,
		gpucore.BlendFactorDestinationColor:         6,
		gpucore.BlendFactorOneMinusDestinationColor: 7,
		gpucore.BlendFactorDestinationAlpha:         8,
		gpucore.BlendFactorOneMinusDestinationAlpha: 9,
		gpucore.BlendFactorSourceAlphaSaturated:     10,
		gpucore.BlendFactorBlendColor:               11,
		gpucore.BlendFactorOneMinusBlendColor:       12,
		gpucore.BlendFactorBlendAlpha:               13,
		gpucore.BlendFactorOneMinusBlendAlpha:       14,
		gpucore.BlendFactorSource1Color:             15,
		gpucore.BlendFactorOneMinusSource1Color:     16,
		gpucore.BlendFactorSource1Alpha:             17,
		gpucore.BlendFactorOneMinusSource1Alpha:     18,
	},
	factorFallback: gpucore.BlendFactorOne,

	ops: map[gpucore.BlendOperation]uint32{
		gpucore.BlendOperationAdd:             0,
		gpucore.BlendOperationSubtract:        1,
		gpucore.BlendOperationReverseSubtract: 2,
		gpucore.BlendOperationMin:             3,
		gpucore.BlendOperationMax:             4,
	},
	opFallback: gpucore.BlendOperationAdd,

	primitives: map[gpucore.PrimitiveType]uint32{
		gpucore.PrimitiveTypePoint:         0,
		gpucore.PrimitiveTypeLine:          1,
		gpucore.PrimitiveTypeLineStrip:     2,
		gpucore.PrimitiveTypeTriangle:      3,
		gpucore.PrimitiveTypeTriangleStrip: 4,
	},
	primitiveFallback: gpucore.PrimitiveTypeTriangle,

	indices: map[gpucore.IndexType]uint32{
		gpucore.IndexTypeUInt16: 0,
		gpucore.IndexTypeUInt32: 1,
	},
	indexFallback: gpucore.IndexTypeUInt16,

	// MTLColorWriteMask bits: alpha 1, blue 2, green 4, red 8.
	masks: map[gpucore.ColorWriteMask]uint32{
		gpucore.ColorWriteMaskNone:  0,
		gpucore.ColorWriteMaskAlpha: 1,
		gpucore.ColorWriteMaskBlue:  2,
		gpucore.ColorWriteMaskGreen: 4,
		gpucore.ColorWriteMaskRed:   8,
		gpucore.ColorWriteMaskAll:   15,
	},
	maskFallback: gpucore.ColorWriteMaskAll,
}

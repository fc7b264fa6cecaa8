package translate

import "github.com/gogpu/gpubridge/gpucore"

// OpenGL ES / WebGL enum values.
const (
	glRGBA              = 0x1908
	glRGB               = 0x1907
	glRGBA16F           = 0x881A
	glRGBA32F           = 0x8814
	glDepthComponent    = 0x1902
	glDepthStencil      = 0x84F9
	glStaticDraw        = 0x88E4
	glDynamicDraw       = 0x88E8
	glStreamDraw        = 0x88E0
	glUnsignedShort     = 0x1403
	glUnsignedInt       = 0x1405
	glPoints            = 0x0000
	glLines             = 0x0001
	glLineStrip         = 0x0003
	glTriangles         = 0x0004
	glTriangleStrip     = 0x0005
	glFuncAdd           = 0x8006
	glMin               = 0x8007
	glMax               = 0x8008
	glFuncSubtract      = 0x800A
	glFuncRevSubtract   = 0x800B
	glSrc1ColorEXT      = 0x88F9
	glOneMinusSrc1Color = 0x88FA
	glOneMinusSrc1Alpha = 0x88FB
	glSrc1AlphaEXT      = 0x8589
)

// GL texture usage has no enum; the dialects pass the portable bit set
// through so backends can still tell render targets apart.
var glUsages = map[gpucore.TextureUsage]uint32{
	gpucore.TextureUsageShaderRead:      0x01,
	gpucore.TextureUsageShaderWrite:     0x02,
	gpucore.TextureUsageRenderTarget:    0x04,
	gpucore.TextureUsagePixelFormatView: 0x10,
}

// Storage modes and resource options become buffer usage hints.
var glStorage = map[gpucore.StorageMode]uint32{
	gpucore.StorageModeShared:  glDynamicDraw,
	gpucore.StorageModeManaged: glDynamicDraw,
	gpucore.StorageModePrivate: glStaticDraw,
}

var glOptions = map[gpucore.ResourceOption]uint32{
	gpucore.ResourceOptionCPUCacheModeDefaultCache:  glStaticDraw,
	gpucore.ResourceOptionCPUCacheModeWriteCombined: glStreamDraw,
	gpucore.ResourceOptionStorageModeShared:         glDynamicDraw,
	gpucore.ResourceOptionStorageModeManaged:        glDynamicDraw,
	gpucore.ResourceOptionStorageModePrivate:        glStaticDraw,
}

var glFactors = map[gpucore.BlendFactor]uint32{
	gpucore.BlendFactorZero:                     0,
	gpucore.BlendFactorOne:                      1,
	gpucore.BlendFactorSourceColor:              0x0300,
	gpucore.BlendFactorOneMinusSourceColor:      0x0301,
	gpucore.BlendFactorSourceAlpha:              0x0302,
	gpucore.BlendFactorOneMinusSourceAlpha:      0x0303,
	gpucore.BlendFactorDestinationAlpha:         0x0304,
	gpucore.BlendFactorOneMinusDestinationAlpha: 0x0305,
	gpucore.BlendFactorDestinationColor:         0x0306,
	gpucore.BlendFactorOneMinusDestinationColor: 0x0307,
	gpucore.BlendFactorSourceAlphaSaturated:     0x0308,
	gpucore.BlendFactorBlendColor:               0x8001,
	gpucore.BlendFactorOneMinusBlendColor:       0x8002,
	gpucore.BlendFactorBlendAlpha:               0x8003,
	gpucore.BlendFactorOneMinusBlendAlpha:       0x8004,
}

var glOps = map[gpucore.BlendOperation]uint32{
	gpucore.BlendOperationAdd:             glFuncAdd,
	gpucore.BlendOperationSubtract:        glFuncSubtract,
	gpucore.BlendOperationReverseSubtract: glFuncRevSubtract,
	gpucore.BlendOperationMin:             glMin,
	gpucore.BlendOperationMax:             glMax,
}

var glPrimitives = map[gpucore.PrimitiveType]uint32{
	gpucore.PrimitiveTypePoint:         glPoints,
	gpucore.PrimitiveTypeLine:          glLines,
	gpucore.PrimitiveTypeLineStrip:     glLineStrip,
	gpucore.PrimitiveTypeTriangle:      glTriangles,
	gpucore.PrimitiveTypeTriangleStrip: glTriangleStrip,
}

var glIndices = map[gpucore.IndexType]uint32{
	gpucore.IndexTypeUInt16: glUnsignedShort,
	gpucore.IndexTypeUInt32: glUnsignedInt,
}

// glColorMask arguments packed as bits: red 1, green 2, blue 4, alpha 8.
var glMasks = map[gpucore.ColorWriteMask]uint32{
	gpucore.ColorWriteMaskNone:  0,
	gpucore.ColorWriteMaskRed:   1,
	gpucore.ColorWriteMaskGreen: 2,
	gpucore.ColorWriteMaskBlue:  4,
	gpucore.ColorWriteMaskAlpha: 8,
	gpucore.ColorWriteMaskAll:   15,
}

func withDualSource(m map[gpucore.BlendFactor]uint32) map[gpucore.BlendFactor]uint32 {
	out := make(map[gpucore.BlendFactor]uint32, len(m)+4)
	for k, v := range m {
		out[k] = v
	}
	out[gpucore.BlendFactorSource1Color] = glSrc1ColorEXT
	out[gpucore.BlendFactorOneMinusSource1Color] = glOneMinusSrc1Color
	out[gpucore.BlendFactorSource1Alpha] = glSrc1AlphaEXT
	out[gpucore.BlendFactorOneMinusSource1Alpha] = glOneMinusSrc1Alpha
	return out
}

// GLES resolves tags to OpenGL ES 3 enums. Pixel formats resolve to the
// format argument of glTexImage2D, so all 8-bit colour formats share
// GL_RGBA. Dual-source factors use the EXT_blend_func_extended values.
var GLES Dialect = &table{
	name: "gles",
	formats: map[gpucore.PixelFormat]uint32{
		gpucore.PixelFormatRGBA8Unorm:           glRGBA,
		gpucore.PixelFormatRGBA8UnormSRGB:       glRGBA,
		gpucore.PixelFormatBGRA8Unorm:           glRGBA,
		gpucore.PixelFormatBGRA8UnormSRGB:       glRGBA,
		gpucore.PixelFormatRGB10A2Unorm:         glRGBA,
		gpucore.PixelFormatRG11B10Float:         glRGB,
		gpucore.PixelFormatRGB9E5Float:          glRGB,
		gpucore.PixelFormatRGBA16Float:          glRGBA16F,
		gpucore.PixelFormatRGBA32Float:          glRGBA32F,
		gpucore.PixelFormatDepth32Float:         glDepthComponent,
		gpucore.PixelFormatDepth24UnormStencil8: glDepthStencil,
		gpucore.PixelFormatDepth32FloatStencil8: glDepthStencil,
	},
	formatFallback:    gpucore.PixelFormatRGBA8Unorm,
	usages:            glUsages,
	usageFallback:     gpucore.TextureUsageShaderRead,
	storage:           glStorage,
	storageFallback:   gpucore.StorageModePrivate,
	options:           glOptions,
	optionsFallback:   gpucore.ResourceOptionStorageModePrivate,
	factors:           withDualSource(glFactors),
	factorFallback:    gpucore.BlendFactorOne,
	ops:               glOps,
	opFallback:        gpucore.BlendOperationAdd,
	primitives:        glPrimitives,
	primitiveFallback: gpucore.PrimitiveTypeTriangle,
	indices:           glIndices,
	indexFallback:     gpucore.IndexTypeUInt16,
	masks:             glMasks,
	maskFallback:      gpucore.ColorWriteMaskAll,
}

// WebGL resolves tags to WebGL 1 enums. Float formats have no sized
// internal format and collapse to RGBA; dual-source blending is absent and
// falls back.
var WebGL Dialect = &table{
	name: "webgl",
	formats: map[gpucore.PixelFormat]uint32{
		gpucore.PixelFormatRGBA8Unorm:           glRGBA,
		gpucore.PixelFormatRGBA8UnormSRGB:       glRGBA,
		gpucore.PixelFormatBGRA8Unorm:           glRGBA,
		gpucore.PixelFormatBGRA8UnormSRGB:       glRGBA,
		gpucore.PixelFormatRGB10A2Unorm:         glRGBA,
		gpucore.PixelFormatRG11B10Float:         glRGB,
		gpucore.PixelFormatRGB9E5Float:          glRGB,
		gpucore.PixelFormatRGBA16Float:          glRGBA,
		gpucore.PixelFormatRGBA32Float:          glRGBA,
		gpucore.PixelFormatDepth32Float:         glDepthComponent,
		gpucore.PixelFormatDepth24UnormStencil8: glDepthStencil,
		gpucore.PixelFormatDepth32FloatStencil8: glDepthStencil,
	},
	formatFallback:    gpucore.PixelFormatRGBA8Unorm,
	usages:            glUsages,
	usageFallback:     gpucore.TextureUsageShaderRead,
	storage:           glStorage,
	storageFallback:   gpucore.StorageModePrivate,
	options:           glOptions,
	optionsFallback:   gpucore.ResourceOptionStorageModePrivate,
	factors:           glFactors,
	factorFallback:    gpucore.BlendFactorOne,
	ops:               glOps,
	opFallback:        gpucore.BlendOperationAdd,
	primitives:        glPrimitives,
	primitiveFallback: gpucore.PrimitiveTypeTriangle,
	indices:           glIndices,
	indexFallback:     gpucore.IndexTypeUInt16,
	masks:             glMasks,
	maskFallback:      gpucore.ColorWriteMaskAll,
}

package translate

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gpubridge/gpucore"
)

// WebGPU resolves tags to gputypes values, the vocabulary of gogpu/wgpu and
// wgpu-native. Storage modes have no WebGPU counterpart and resolve to the
// buffer usages a registry buffer of that mode needs. WebGPU has no constant
// alpha or dual-source blend factors; those fall back.
var WebGPU Dialect = &table{
	name: "webgpu",
	formats: map[gpucore.PixelFormat]uint32{
		gpucore.PixelFormatRGBA8Unorm:           uint32(gputypes.TextureFormatRGBA8Unorm),
		gpucore.PixelFormatRGBA8UnormSRGB:       uint32(gputypes.TextureFormatRGBA8UnormSrgb),
		gpucore.PixelFormatBGRA8Unorm:           uint32(gputypes.TextureFormatBGRA8Unorm),
		gpucore.PixelFormatBGRA8UnormSRGB:       uint32(gputypes.TextureFormatBGRA8UnormSrgb),
		gpucore.PixelFormatRGB10A2Unorm:         uint32(gputypes.TextureFormatRGB10A2Unorm),
		gpucore.PixelFormatRG11B10Float:         uint32(gputypes.TextureFormatRG11B10Ufloat),
		gpucore.PixelFormatRGB9E5Float:          uint32(gputypes.TextureFormatRGB9E5Ufloat),
		gpucore.PixelFormatRGBA16Float:          uint32(gputypes.TextureFormatRGBA16Float),
		gpucore.PixelFormatRGBA32Float:          uint32(gputypes.TextureFormatRGBA32Float),
		gpucore.PixelFormatDepth32Float:         uint32(gputypes.TextureFormatDepth32Float),
		gpucore.PixelFormatDepth24UnormStencil8: uint32(gputypes.TextureFormatDepth24PlusStencil8),
		gpucore.PixelFormatDepth32FloatStencil8: uint32(gputypes.TextureFormatDepth32FloatStencil8),
	},
	formatFallback: gpucore.PixelFormatBGRA8Unorm,

	usages: map[gpucore.TextureUsage]uint32{
		gpucore.TextureUsageShaderRead:      uint32(gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc),
		gpucore.TextureUsageShaderWrite:     uint32(gputypes.TextureUsageStorageBinding | gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc),
		gpucore.TextureUsageRenderTarget:    uint32(gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc),
		gpucore.TextureUsagePixelFormatView: uint32(gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc),
	},
	usageFallback: gpucore.TextureUsageShaderRead,

	storage: map[gpucore.StorageMode]uint32{
		gpucore.StorageModeShared:  uint32(gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst),
		gpucore.StorageModeManaged: uint32(gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst),
		gpucore.StorageModePrivate: uint32(gputypes.BufferUsageCopyDst),
	},
	storageFallback: gpucore.StorageModePrivate,

	options: map[gpucore.ResourceOption]uint32{
		gpucore.ResourceOptionCPUCacheModeDefaultCache:  uint32(bufferUsageAll | gputypes.BufferUsageCopySrc),
		gpucore.ResourceOptionCPUCacheModeWriteCombined: uint32(bufferUsageAll),
		gpucore.ResourceOptionStorageModeShared:         uint32(bufferUsageAll | gputypes.BufferUsageCopySrc),
		gpucore.ResourceOptionStorageModeManaged:        uint32(bufferUsageAll | gputypes.BufferUsageCopySrc),
		gpucore.ResourceOptionStorageModePrivate:        uint32(bufferUsageAll),
	},
	optionsFallback: gpucore.ResourceOptionStorageModePrivate,

	factors: map[gpucore.BlendFactor]uint32{
		gpucore.BlendFactorZero:                     uint32(gputypes.BlendFactorZero),
		gpucore.BlendFactorOne:                      uint32(gputypes.BlendFactorOne),
		gpucore.BlendFactorSourceColor:              uint32(gputypes.BlendFactorSrc),
		gpucore.BlendFactorOneMinusSourceColor:      uint32(gputypes.BlendFactorOneMinusSrc),
		gpucore.BlendFactorSourceAlpha:              uint32(gputypes.BlendFactorSrcAlpha),
		gpucore.BlendFactorOneMinusSourceAlpha:      uint32(gputypes.BlendFactorOneMinusSrcAlpha),
		gpucore.BlendFactorDestinationColor:         uint32(gputypes.BlendFactorDst),
		gpucore.BlendFactorOneMinusDestinationColor: uint32(gputypes.BlendFactorOneMinusDst),
		gpucore.BlendFactorDestinationAlpha:         uint32(gputypes.BlendFactorDstAlpha),
		gpucore.BlendFactorOneMinusDestinationAlpha: uint32(gputypes.BlendFactorOneMinusDstAlpha),
		gpucore.BlendFactorSourceAlphaSaturated:     uint32(gputypes.BlendFactorSrcAlphaSaturated),
		gpucore.BlendFactorBlendColor:               uint32(gputypes.BlendFactorConstant),
		gpucore.BlendFactorOneMinusBlendColor:       uint32(gputypes.BlendFactorOneMinusConstant),
	},
	factorFallback: gpucore.BlendFactorOne,

	ops: map[gpucore.BlendOperation]uint32{
		gpucore.BlendOperationAdd:             uint32(gputypes.BlendOperationAdd),
		gpucore.BlendOperationSubtract:        uint32(gputypes.BlendOperationSubtract),
		gpucore.BlendOperationReverseSubtract: uint32(gputypes.BlendOperationReverseSubtract),
		gpucore.BlendOperationMin:             uint32(gputypes.BlendOperationMin),
		gpucore.BlendOperationMax:             uint32(gputypes.BlendOperationMax),
	},
	opFallback: gpucore.BlendOperationAdd,

	primitives: map[gpucore.PrimitiveType]uint32{
		gpucore.PrimitiveTypePoint:         uint32(gputypes.PrimitiveTopologyPointList),
		gpucore.PrimitiveTypeLine:          uint32(gputypes.PrimitiveTopologyLineList),
		gpucore.PrimitiveTypeLineStrip:     uint32(gputypes.PrimitiveTopologyLineStrip),
		gpucore.PrimitiveTypeTriangle:      uint32(gputypes.PrimitiveTopologyTriangleList),
		gpucore.PrimitiveTypeTriangleStrip: uint32(gputypes.PrimitiveTopologyTriangleStrip),
	},
	primitiveFallback: gpucore.PrimitiveTypeTriangle,

	indices: map[gpucore.IndexType]uint32{
		gpucore.IndexTypeUInt16: uint32(gputypes.IndexFormatUint16),
		gpucore.IndexTypeUInt32: uint32(gputypes.IndexFormatUint32),
	},
	indexFallback: gpucore.IndexTypeUInt16,

	masks: map[gpucore.ColorWriteMask]uint32{
		gpucore.ColorWriteMaskNone:  uint32(gputypes.ColorWriteMaskNone),
		gpucore.ColorWriteMaskRed:   uint32(gputypes.ColorWriteMaskRed),
		gpucore.ColorWriteMaskGreen: uint32(gputypes.ColorWriteMaskGreen),
		gpucore.ColorWriteMaskBlue:  uint32(gputypes.ColorWriteMaskBlue),
		gpucore.ColorWriteMaskAlpha: uint32(gputypes.ColorWriteMaskAlpha),
		gpucore.ColorWriteMaskAll:   uint32(gputypes.ColorWriteMaskAll),
	},
	maskFallback: gpucore.ColorWriteMaskAll,
}

// bufferUsageAll is the usage set every registry buffer gets: meshes may
// bind any buffer as vertex, index, uniform or storage data.
const bufferUsageAll = gputypes.BufferUsageVertex | gputypes.BufferUsageIndex |
	gputypes.BufferUsageUniform | gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst

// WebGPUTextureFormat resolves a tag to a typed gputypes format.
func WebGPUTextureFormat(f gpucore.PixelFormat) (gputypes.TextureFormat, bool) {
	v, ok := WebGPU.PixelFormat(f)
	return gputypes.TextureFormat(v), ok
}

// WebGPUTextureUsage resolves a tag to typed gputypes usage flags.
func WebGPUTextureUsage(u gpucore.TextureUsage) (gputypes.TextureUsage, bool) {
	v, ok := WebGPU.TextureUsage(u)
	return gputypes.TextureUsage(v), ok
}

// WebGPUBufferUsage resolves buffer options to typed gputypes usage flags.
func WebGPUBufferUsage(o gpucore.ResourceOption) (gputypes.BufferUsage, bool) {
	v, ok := WebGPU.ResourceOptions(o)
	return gputypes.BufferUsage(v), ok
}

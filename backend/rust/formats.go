//go:build rust

package rust

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/gpubridge/gpucore"
)

// Portable tags map straight onto wgpu-native enums. The registry hands us
// gputypes values through the WebGPU dialect; those numbers are not
// guaranteed to match webgpu.h, so the tags are authoritative here.

var textureFormats = map[gpucore.PixelFormat]wgpu.TextureFormat{
	gpucore.PixelFormatRGBA8Unorm:           wgpu.TextureFormatRGBA8Unorm,
	gpucore.PixelFormatRGBA8UnormSRGB:       wgpu.TextureFormatRGBA8UnormSrgb,
	gpucore.PixelFormatBGRA8Unorm:           wgpu.TextureFormatBGRA8Unorm,
	gpucore.PixelFormatBGRA8UnormSRGB:       wgpu.TextureFormatBGRA8UnormSrgb,
	gpucore.PixelFormatRGB10A2Unorm:         wgpu.TextureFormatRGB10A2Unorm,
	gpucore.PixelFormatRG11B10Float:         wgpu.TextureFormatRG11B10Ufloat,
	gpucore.PixelFormatRGB9E5Float:          wgpu.TextureFormatRGB9E5Ufloat,
	gpucore.PixelFormatRGBA16Float:          wgpu.TextureFormatRGBA16Float,
	gpucore.PixelFormatRGBA32Float:          wgpu.TextureFormatRGBA32Float,
	gpucore.PixelFormatDepth32Float:         wgpu.TextureFormatDepth32Float,
	gpucore.PixelFormatDepth24UnormStencil8: wgpu.TextureFormatDepth24PlusStencil8,
	gpucore.PixelFormatDepth32FloatStencil8: wgpu.TextureFormatDepth32FloatStencil8,
}

func textureFormat(f gpucore.PixelFormat) wgpu.TextureFormat {
	if v, ok := textureFormats[f]; ok {
		return v
	}
	return wgpu.TextureFormatBGRA8Unorm
}

func textureUsage(u gpucore.TextureUsage) wgpu.TextureUsage {
	base := wgpu.TextureUsageCopyDst | wgpu.TextureUsageCopySrc
	switch u {
	case gpucore.TextureUsageShaderWrite:
		return base | wgpu.TextureUsageStorageBinding
	case gpucore.TextureUsageRenderTarget:
		return base | wgpu.TextureUsageRenderAttachment
	default:
		return base | wgpu.TextureUsageTextureBinding
	}
}

func bufferUsage(o gpucore.ResourceOption) wgpu.BufferUsage {
	usage := wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc |
		wgpu.BufferUsageVertex | wgpu.BufferUsageIndex
	if o == gpucore.ResourceOptionStorageModePrivate || o == "" {
		usage |= wgpu.BufferUsageStorage
	} else {
		usage |= wgpu.BufferUsageUniform
	}
	return usage
}

var blendFactors = map[gpucore.BlendFactor]wgpu.BlendFactor{
	gpucore.BlendFactorZero:                     wgpu.BlendFactorZero,
	gpucore.BlendFactorOne:                      wgpu.BlendFactorOne,
	gpucore.BlendFactorSourceColor:              wgpu.BlendFactorSrc,
	gpucore.BlendFactorOneMinusSourceColor:      wgpu.BlendFactorOneMinusSrc,
	gpucore.BlendFactorSourceAlpha:              wgpu.BlendFactorSrcAlpha,
	gpucore.BlendFactorOneMinusSourceAlpha:      wgpu.BlendFactorOneMinusSrcAlpha,
	gpucore.BlendFactorDestinationColor:         wgpu.BlendFactorDst,
	gpucore.BlendFactorOneMinusDestinationColor: wgpu.BlendFactorOneMinusDst,
	gpucore.BlendFactorDestinationAlpha:         wgpu.BlendFactorDstAlpha,
	gpucore.BlendFactorOneMinusDestinationAlpha: wgpu.BlendFactorOneMinusDstAlpha,
	gpucore.BlendFactorBlendColor:               wgpu.BlendFactorConstant,
	gpucore.BlendFactorOneMinusBlendColor:       wgpu.BlendFactorOneMinusConstant,
	gpucore.BlendFactorBlendAlpha:               wgpu.BlendFactorConstant,
	gpucore.BlendFactorOneMinusBlendAlpha:       wgpu.BlendFactorOneMinusConstant,
	gpucore.BlendFactorSourceAlphaSaturated:     wgpu.BlendFactorSrcAlphaSaturated,
}

func blendFactor(f gpucore.BlendFactor, fallback wgpu.BlendFactor) wgpu.BlendFactor {
	if v, ok := blendFactors[f]; ok {
		return v
	}
	return fallback
}

func blendOperation(op gpucore.BlendOperation) wgpu.BlendOperation {
	switch op {
	case gpucore.BlendOperationSubtract:
		return wgpu.BlendOperationSubtract
	case gpucore.BlendOperationReverseSubtract:
		return wgpu.BlendOperationReverseSubtract
	case gpucore.BlendOperationMin:
		return wgpu.BlendOperationMin
	case gpucore.BlendOperationMax:
		return wgpu.BlendOperationMax
	default:
		return wgpu.BlendOperationAdd
	}
}

func writeMask(m gpucore.ColorWriteMask) wgpu.ColorWriteMask {
	switch m {
	case gpucore.ColorWriteMaskNone:
		return wgpu.ColorWriteMaskNone
	case gpucore.ColorWriteMaskRed:
		return wgpu.ColorWriteMaskRed
	case gpucore.ColorWriteMaskGreen:
		return wgpu.ColorWriteMaskGreen
	case gpucore.ColorWriteMaskBlue:
		return wgpu.ColorWriteMaskBlue
	case gpucore.ColorWriteMaskAlpha:
		return wgpu.ColorWriteMaskAlpha
	default:
		return wgpu.ColorWriteMaskAll
	}
}

func topology(p gpucore.PrimitiveType) wgpu.PrimitiveTopology {
	switch p {
	case gpucore.PrimitiveTypePoint:
		return wgpu.PrimitiveTopologyPointList
	case gpucore.PrimitiveTypeLine:
		return wgpu.PrimitiveTopologyLineList
	case gpucore.PrimitiveTypeLineStrip:
		return wgpu.PrimitiveTopologyLineStrip
	case gpucore.PrimitiveTypeTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func colorTargets(attachments []gpucore.ColorAttachmentDescriptor) []wgpu.ColorTargetState {
	out := make([]wgpu.ColorTargetState, 0, len(attachments))
	for _, a := range attachments {
		state := wgpu.ColorTargetState{
			Format:    textureFormat(a.PixelFormat),
			WriteMask: writeMask(a.WriteMask),
		}
		if a.IsBlendingEnabled {
			state.Blend = &wgpu.BlendState{
				Color: wgpu.BlendComponent{
					SrcFactor: blendFactor(a.SourceRGBBlendFactor, wgpu.BlendFactorOne),
					DstFactor: blendFactor(a.DestinationRGBBlendFactor, wgpu.BlendFactorZero),
					Operation: blendOperation(a.RGBBlendOperation),
				},
				Alpha: wgpu.BlendComponent{
					SrcFactor: blendFactor(a.SourceAlphaBlendFactor, wgpu.BlendFactorOne),
					DstFactor: blendFactor(a.DestinationAlphaBlendFactor, wgpu.BlendFactorZero),
					Operation: blendOperation(a.AlphaBlendOperation),
				},
			}
		}
		out = append(out, state)
	}
	return out
}

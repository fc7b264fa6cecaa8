// Package translate converts portable descriptor tags into the enumeration
// values each native graphics API expects.
//
// A [Dialect] is a stateless table for one API: [Metal], [GLES], [WebGL] and
// [WebGPU]. Every resolve method returns the native value and ok=false when
// the tag was unknown or unsupported and the dialect's documented fallback
// was substituted. Fallbacks are never errors; callers log them.
//
//	v, ok := translate.GLES.PixelFormat(gpucore.PixelFormatRGBA16Float)
//	// v == 0x881A (GL_RGBA16F), ok == true
//
// Reverse lookups ([Dialect.PixelFormatTag]) are lossy where several tags
// share one native value: GLES maps RGBA8Unorm and BGRA8Unorm to GL_RGBA,
// and GL_RGBA reverses to RGBA8Unorm.
//
// The Apply*Defaults functions are the single place descriptor defaults live.
package translate

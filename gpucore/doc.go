// Package gpucore defines the portable vocabulary shared by the registry,
// the descriptor translator and every backend.
//
// Descriptors are plain structs whose enum-valued fields are closed sets of
// string tags ([PixelFormat], [TextureUsage], [StorageMode], [BlendFactor],
// ...). A zero tag means "not specified"; defaults are applied in one place,
// package translate, never by the backends.
//
// # Architecture
//
//	   caller (bridge, Go program)
//	              |
//	     descriptors (gpucore)
//	              |
//	   +----------v-----------+
//	   |  gpubridge.Registry  |----> translate.Dialect (tag -> native enum)
//	   +----------+-----------+
//	              |
//	      backend.Backend
//	              |
//	  +-----------+-----------+
//	  |           |           |
//	software   native       rust
//	 (CPU)    (wgpu/hal)  (wgpu-native)
//
// The tag strings match the names used by JavaScript hosts, so descriptors
// decode directly from bridge requests.
package gpucore

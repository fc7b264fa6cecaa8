// Package gpubridge is a registry of GPU resources addressed by opaque ids.
//
// A Registry owns textures, buffers, shader libraries, pipeline states,
// meshes, animations and 2D canvases with their drawing layers. Callers
// such as a JavaScript host or a websocket client create a resource from a
// portable descriptor, receive an [ID] plus the resolved descriptor, and use
// that id for every later update, read or release.
//
// # Quick Start
//
//	reg, err := gpubridge.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reg.Close()
//
//	tex, err := reg.CreateTexture(gpucore.TextureDescriptor{
//	    Width: 256, Height: 256, PixelFormat: gpucore.PixelFormatRGBA8Unorm,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reg.ReleaseTexture(tex.ID)
//
// # Backends
//
// Allocation is delegated to a [backend.Backend]. The CPU backend
// (backend/software) is always linked in; GPU backends register themselves
// on import:
//
//	import _ "github.com/gogpu/gpubridge/backend/native" // gogpu/wgpu
//	import _ "github.com/gogpu/gpubridge/backend/rust"   // wgpu-native, -tags rust
//
// [New] picks the highest-priority backend whose device opens, or the one
// named with [WithBackendName].
//
// # Descriptors
//
// Enum-valued fields are string tags from package gpucore. The translate
// package applies defaults and resolves tags to the backend's native values.
// Unknown tags never fail a call: they fall back to a documented default and
// the fallback is logged at warn level.
//
// # Ids
//
// Ids are generational: a released id is never handed out again, and using
// one fails with an error matching both [ErrResourceNotFound] and
// [ErrStaleID]. Releasing an unknown or stale id is a no-op.
//
// # Logging
//
// gpubridge is silent by default. Call [SetLogger] or pass [WithLogger] to
// enable structured logging via log/slog.
package gpubridge

// Package rust provides a GPU backend on wgpu-native, the Rust WebGPU
// implementation, through the cogentcore/webgpu bindings.
//
// # Registration and Selection
//
// The backend is registered when this package is imported with the "rust"
// build tag:
//
//	// Build with: go build -tags rust
//	import _ "github.com/gogpu/gpubridge/backend/rust"
//
// It is preferred over native and software when available.
// Priority order: rust > native > software
//
// Without the tag a stub is compiled whose factory returns nil, so
// backend.InitDefault skips it.
//
// # Resources
//
// Portable tags are mapped straight to wgpu-native enums; the backend
// reports the WebGPU dialect so that registry descriptors echo the same
// values the native backend would. Textures and buffers keep CPU shadow
// copies for reads, as in the native backend.
//
// # Dependencies
//
// This backend requires the wgpu-native library:
//   - Windows: wgpu_native.dll
//   - Linux: libwgpu_native.so
//   - macOS: libwgpu_native.dylib
package rust

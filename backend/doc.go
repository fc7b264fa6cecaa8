// Package backend defines the capability interface between the resource
// registry and a native graphics API, plus the name -> factory registry used
// to select one at runtime.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// Import a backend package for its side effect:
//
//	import _ "github.com/gogpu/gpubridge/backend/software"
//
// # Backend Selection
//
// Use InitDefault to get the best backend whose device opens, or Get to
// request a specific backend by name:
//
//	// Best available, falling back from GPU to CPU
//	b, err := backend.InitDefault()
//
//	// Or request a specific backend
//	b := backend.Get(backend.BackendSoftware)
//	if err := b.Init(); err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
// # Available Backends
//
//   - "software": CPU storage, always available, supports pixel readback
//   - "native": Pure Go GPU via gogpu/wgpu HAL (Vulkan)
//   - "rust": wgpu-native via cogentcore/webgpu (build tag "rust")
//
// Backends never see registry ids. They receive fully resolved specs whose
// enum fields already carry values from their [translate.Dialect].
package backend

//go:build nogpu

// Package native is compiled out with the nogpu build tag; the registry
// entry yields nil so backend selection falls through to software.
package native

import "github.com/gogpu/gpubridge/backend"

func init() {
	backend.Register(backend.BackendNative, func() backend.Backend { return nil })
}

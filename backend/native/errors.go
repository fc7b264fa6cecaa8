//go:build !nogpu

package native

import "errors"

// Package errors for the native backend.
var (
	// ErrNoGPU is returned when no GPU adapter is available.
	ErrNoGPU = errors.New("native: no GPU adapter available")

	// ErrVulkanUnavailable is returned when the Vulkan HAL is not compiled in.
	ErrVulkanUnavailable = errors.New("native: vulkan backend not available")

	// ErrNilProvider is returned when NewFromProvider gets a nil provider.
	ErrNilProvider = errors.New("native: nil DeviceProvider")

	// ErrNoHAL is returned when a provider does not expose HAL types.
	ErrNoHAL = errors.New("native: provider does not expose HAL device and queue")

	// ErrLibraryRequired is returned for pipelines without a shader library;
	// the GPU cannot resolve entry points by name alone.
	ErrLibraryRequired = errors.New("native: pipeline requires a shader library")
)

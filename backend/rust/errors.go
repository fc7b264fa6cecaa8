//go:build rust

package rust

import "errors"

// Package errors for rust backend.
var (
	// ErrNoGPU is returned when no GPU adapter is available.
	ErrNoGPU = errors.New("rust: no GPU adapter available")

	// ErrLibraryRequired is returned for pipelines without a shader library.
	ErrLibraryRequired = errors.New("rust: pipeline requires a shader library")
)

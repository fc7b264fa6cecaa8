// Package shader compiles WGSL shader libraries for the backends.
package shader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
)

// ErrEmptySource is returned for a library without any source text.
var ErrEmptySource = errors.New("shader: empty source")

// CompileSPIRV compiles WGSL source to SPIR-V words.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	if strings.TrimSpace(wgsl) == "" {
		return nil, ErrEmptySource
	}
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("shader: compile: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("shader: compile: SPIR-V length %d is not word aligned", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// EntryPoints returns the @vertex, @fragment and @compute functions
// declared in WGSL source, keyed by name with the stage as value.
// It is a lexical scan; CompileSPIRV is the authority on validity.
func EntryPoints(wgsl string) map[string]string {
	out := make(map[string]string)
	stage := ""
	wantName := false
	for _, tok := range strings.Fields(wgsl) {
		switch {
		case wantName:
			name := tok
			if i := strings.IndexByte(name, '('); i >= 0 {
				name = name[:i]
			}
			if name != "" {
				out[name] = stage
			}
			stage, wantName = "", false
		case strings.HasPrefix(tok, "@vertex"):
			stage = "vertex"
		case strings.HasPrefix(tok, "@fragment"):
			stage = "fragment"
		case strings.HasPrefix(tok, "@compute"):
			stage = "compute"
		case tok == "fn":
			wantName = stage != ""
		}
	}
	return out
}

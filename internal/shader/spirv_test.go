package shader

import (
	"errors"
	"testing"
)

const computeWGSL = `
@group(0) @binding(0) var<storage, read_write> data: array<f32>;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    data[id.x] = data[id.x] * 2.0;
}
`

const renderWGSL = `
@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

fn helper() -> f32 { return 1.0; }

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

func TestEntryPoints(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want map[string]string
	}{
		{"compute", computeWGSL, map[string]string{"main": "compute"}},
		{"render", renderWGSL, map[string]string{"vs_main": "vertex", "fs_main": "fragment"}},
		{"none", "fn helper() -> f32 { return 1.0; }", map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EntryPoints(tt.src)
			if len(got) != len(tt.want) {
				t.Fatalf("EntryPoints() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("EntryPoints()[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestCompileSPIRVEmpty(t *testing.T) {
	if _, err := CompileSPIRV("  \n"); !errors.Is(err, ErrEmptySource) {
		t.Errorf("CompileSPIRV(blank) error = %v, want ErrEmptySource", err)
	}
}

func TestCompileSPIRV(t *testing.T) {
	words, err := CompileSPIRV(computeWGSL)
	if err != nil {
		t.Fatalf("CompileSPIRV() error = %v", err)
	}
	if len(words) == 0 {
		t.Fatal("CompileSPIRV() returned no words")
	}
	// SPIR-V magic number
	if words[0] != 0x07230203 {
		t.Errorf("CompileSPIRV() first word = %#x, want 0x07230203", words[0])
	}
}

func TestCompileSPIRVInvalid(t *testing.T) {
	if _, err := CompileSPIRV("fn broken( {"); err == nil {
		t.Error("CompileSPIRV(invalid) should fail")
	}
}

package translate

import (
	"sort"
	"strings"

	"github.com/gogpu/gpubridge/gpucore"
)

// Dialect resolves portable tags to the native values of one graphics API.
// Implementations are immutable and safe for concurrent use.
type Dialect interface {
	// Name returns the dialect identifier ("metal", "gles", "webgl", "webgpu").
	Name() string

	PixelFormat(f gpucore.PixelFormat) (uint32, bool)
	// PixelFormatTag reverses PixelFormat. When several tags share a value
	// the first in gpucore.PixelFormats order wins.
	PixelFormatTag(v uint32) (gpucore.PixelFormat, bool)
	TextureUsage(u gpucore.TextureUsage) (uint32, bool)
	StorageMode(m gpucore.StorageMode) (uint32, bool)
	ResourceOptions(o gpucore.ResourceOption) (uint32, bool)
	BlendFactor(f gpucore.BlendFactor) (uint32, bool)
	BlendOperation(op gpucore.BlendOperation) (uint32, bool)
	PrimitiveType(p gpucore.PrimitiveType) (uint32, bool)
	IndexType(t gpucore.IndexType) (uint32, bool)
	ColorWriteMask(m gpucore.ColorWriteMask) (uint32, bool)
}

// table is the map-backed Dialect shared by every API.
type table struct {
	name string

	formats        map[gpucore.PixelFormat]uint32
	formatFallback gpucore.PixelFormat

	usages        map[gpucore.TextureUsage]uint32
	usageFallback gpucore.TextureUsage

	storage         map[gpucore.StorageMode]uint32
	storageFallback gpucore.StorageMode

	options         map[gpucore.ResourceOption]uint32
	optionsFallback gpucore.ResourceOption

	factors        map[gpucore.BlendFactor]uint32
	factorFallback gpucore.BlendFactor

	ops        map[gpucore.BlendOperation]uint32
	opFallback gpucore.BlendOperation

	primitives        map[gpucore.PrimitiveType]uint32
	primitiveFallback gpucore.PrimitiveType

	indices       map[gpucore.IndexType]uint32
	indexFallback gpucore.IndexType

	masks        map[gpucore.ColorWriteMask]uint32
	maskFallback gpucore.ColorWriteMask
}

func resolve[K comparable](m map[K]uint32, key, fallback K) (uint32, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	return m[fallback], false
}

func (t *table) Name() string { return t.name }

func (t *table) PixelFormat(f gpucore.PixelFormat) (uint32, bool) {
	return resolve(t.formats, f, t.formatFallback)
}

func (t *table) PixelFormatTag(v uint32) (gpucore.PixelFormat, bool) {
	for _, f := range gpucore.PixelFormats {
		if nv, ok := t.formats[f]; ok && nv == v {
			return f, true
		}
	}
	return "", false
}

func (t *table) TextureUsage(u gpucore.TextureUsage) (uint32, bool) {
	return resolve(t.usages, u, t.usageFallback)
}

func (t *table) StorageMode(m gpucore.StorageMode) (uint32, bool) {
	return resolve(t.storage, m, t.storageFallback)
}

func (t *table) ResourceOptions(o gpucore.ResourceOption) (uint32, bool) {
	return resolve(t.options, o, t.optionsFallback)
}

func (t *table) BlendFactor(f gpucore.BlendFactor) (uint32, bool) {
	return resolve(t.factors, f, t.factorFallback)
}

func (t *table) BlendOperation(op gpucore.BlendOperation) (uint32, bool) {
	return resolve(t.ops, op, t.opFallback)
}

func (t *table) PrimitiveType(p gpucore.PrimitiveType) (uint32, bool) {
	return resolve(t.primitives, p, t.primitiveFallback)
}

func (t *table) IndexType(it gpucore.IndexType) (uint32, bool) {
	return resolve(t.indices, it, t.indexFallback)
}

func (t *table) ColorWriteMask(m gpucore.ColorWriteMask) (uint32, bool) {
	return resolve(t.masks, m, t.maskFallback)
}

var dialects = map[string]Dialect{
	Metal.Name():  Metal,
	GLES.Name():   GLES,
	WebGL.Name():  WebGL,
	WebGPU.Name(): WebGPU,
}

// Lookup returns the dialect with the given name, case-insensitively.
func Lookup(name string) (Dialect, bool) {
	d, ok := dialects[strings.ToLower(name)]
	return d, ok
}

// Names returns the registered dialect names in sorted order.
func Names() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

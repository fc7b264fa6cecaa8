package gpucore

// Descriptors
//
// Zero values mean "not specified". Defaults are applied by
// translate.Apply*Defaults before a descriptor reaches a backend, and the
// resolved descriptor is echoed back to the caller.

// TextureDescriptor describes a texture to create.
type TextureDescriptor struct {
	// Width and Height are the level-0 dimensions in texels. Both must be > 0.
	Width  int `json:"width"`
	Height int `json:"height"`

	// PixelFormat of the texels. Unknown tags fall back to the dialect's
	// default colour format.
	PixelFormat PixelFormat `json:"pixelFormat,omitempty"`

	// Usage defaults to ShaderRead.
	Usage TextureUsage `json:"usage,omitempty"`

	// MipmapLevelCount defaults to 1.
	MipmapLevelCount int `json:"mipmapLevelCount,omitempty"`

	// SampleCount defaults to 1.
	SampleCount int `json:"sampleCount,omitempty"`

	// ArrayLength defaults to 1.
	ArrayLength int `json:"arrayLength,omitempty"`

	// Depth defaults to 1.
	Depth int `json:"depth,omitempty"`

	// StorageMode defaults to Private.
	StorageMode StorageMode `json:"storageMode,omitempty"`

	// Label is an optional debug name forwarded to the backend.
	Label string `json:"label,omitempty"`
}

// Region is a 2D rectangle of texels.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the region covers no texels.
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Within reports whether r lies inside [0,width)x[0,height).
func (r Region) Within(width, height int) bool {
	if r.X < 0 || r.Y < 0 || r.Empty() {
		return false
	}
	return r.X+r.Width <= width && r.Y+r.Height <= height
}

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	// Length in bytes. Must be >= 0.
	Length int `json:"length"`

	// Options defaults to StorageModePrivate.
	Options ResourceOption `json:"options,omitempty"`

	// Label is an optional debug name forwarded to the backend.
	Label string `json:"label,omitempty"`
}

// MeshDescriptor describes a mesh assembled from existing buffers.
// Buffer references are registry ids.
type MeshDescriptor struct {
	VertexBuffers []string      `json:"vertexBuffers"`
	VertexCount   int           `json:"vertexCount"`
	PrimitiveType PrimitiveType `json:"primitiveType,omitempty"`
	IndexBuffer   string        `json:"indexBuffer,omitempty"`
	IndexCount    int           `json:"indexCount,omitempty"`
	IndexType     IndexType     `json:"indexType,omitempty"`
}

// Submesh is a drawable subrange of a mesh.
type Submesh struct {
	IndexBuffer   string        `json:"indexBuffer"`
	IndexStart    int           `json:"indexStart"`
	IndexCount    int           `json:"indexCount"`
	IndexType     IndexType     `json:"indexType"`
	PrimitiveType PrimitiveType `json:"primitiveType"`
	MaterialIndex int           `json:"materialIndex"`
}

// AnimationDescriptor describes a timed animation.
type AnimationDescriptor struct {
	// Duration in seconds. Must be > 0.
	Duration float64 `json:"duration"`

	// RepeatCount defaults to 1. Fractional counts stop mid-cycle.
	RepeatCount float64 `json:"repeatCount,omitempty"`

	Autoreverses bool `json:"autoreverses,omitempty"`

	// TimingFunction defaults to Default.
	TimingFunction TimingFunction `json:"timingFunction,omitempty"`

	// KeyPath, FromValue and ToValue describe the animated property.
	// They are stored and echoed; interpolation is left to the caller.
	KeyPath   string  `json:"keyPath,omitempty"`
	FromValue float64 `json:"fromValue,omitempty"`
	ToValue   float64 `json:"toValue,omitempty"`
}

// Canvas2DDescriptor describes a 2D drawing canvas.
type Canvas2DDescriptor struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// PixelFormat defaults to RGBA8Unorm. Only 8-bit RGBA/BGRA formats
	// are accepted.
	PixelFormat PixelFormat `json:"pixelFormat,omitempty"`
}

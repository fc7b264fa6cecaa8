package gpucore

import (
	"image/color"
	"math"
)

// Color is a non-premultiplied colour with channels in [0,1].
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
	Alpha float64 `json:"alpha"`
}

// Black is opaque black, the default clear colour.
var Black = Color{Alpha: 1}

// NRGBA converts c to an 8-bit colour, clamping each channel.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: unit8(c.Red), G: unit8(c.Green), B: unit8(c.Blue), A: unit8(c.Alpha)}
}

// ColorFromNRGBA converts an 8-bit colour.
func ColorFromNRGBA(c color.NRGBA) Color {
	return Color{
		Red:   float64(c.R) / 255,
		Green: float64(c.G) / 255,
		Blue:  float64(c.B) / 255,
		Alpha: float64(c.A) / 255,
	}
}

// WithAlpha returns c with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.Alpha *= a
	return c
}

func unit8(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Point is a 2D point in canvas pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in canvas pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Circle is a circle in canvas pixels.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Ellipse is an axis-aligned ellipse in canvas pixels.
type Ellipse struct {
	Center  Point   `json:"center"`
	RadiusX float64 `json:"radiusX"`
	RadiusY float64 `json:"radiusY"`
}

// Path is a polyline, optionally closed.
type Path struct {
	Points []Point `json:"points"`
	Closed bool    `json:"closed"`
}

// LineCap is a stroke end style.
type LineCap string

// Line caps.
const (
	LineCapButt   LineCap = "butt"
	LineCapRound  LineCap = "round"
	LineCapSquare LineCap = "square"
)

// LineJoin is a stroke corner style.
type LineJoin string

// Line joins.
const (
	LineJoinMiter LineJoin = "miter"
	LineJoinRound LineJoin = "round"
	LineJoinBevel LineJoin = "bevel"
)

// LineStyle configures strokes.
type LineStyle struct {
	Color       Color     `json:"color"`
	Width       float64   `json:"width"`
	CapStyle    LineCap   `json:"capStyle,omitempty"`
	JoinStyle   LineJoin  `json:"joinStyle,omitempty"`
	DashPattern []float64 `json:"dashPattern,omitempty"`
}

// FillPattern is a hatch pattern for fills.
type FillPattern string

// Fill patterns.
const (
	FillPatternSolid      FillPattern = "solid"
	FillPatternHorizontal FillPattern = "horizontal"
	FillPatternVertical   FillPattern = "vertical"
	FillPatternDiagonal   FillPattern = "diagonal"
	FillPatternCrosshatch FillPattern = "crosshatch"
)

// FillStyle configures fills.
type FillStyle struct {
	Color   Color       `json:"color"`
	Pattern FillPattern `json:"pattern,omitempty"`
}

// BrushStyle configures freehand strokes.
type BrushStyle struct {
	Color     Color     `json:"color"`
	Size      float64   `json:"size"`
	Opacity   float64   `json:"opacity"`
	BlendMode BlendMode `json:"blendMode,omitempty"`
}

// TextStyle configures text drawing and measurement.
type TextStyle struct {
	FontFamily string  `json:"fontFamily,omitempty"`
	FontSize   float64 `json:"fontSize"`
	// FontWeight is "normal", "bold" or a CSS numeric weight.
	FontWeight string `json:"fontWeight,omitempty"`
	// FontStyle is "normal", "italic" or "oblique".
	FontStyle string `json:"fontStyle,omitempty"`
	Color     Color  `json:"color"`
	// Alignment is "left", "center" or "right".
	Alignment string `json:"alignment,omitempty"`
	// Baseline is "top", "middle", "bottom", "alphabetic" or "hanging".
	Baseline string `json:"baseline,omitempty"`
}

// Bold reports whether the weight selects a bold face.
func (s TextStyle) Bold() bool {
	switch s.FontWeight {
	case "bold", "600", "700", "800", "900":
		return true
	}
	return false
}

// Italic reports whether the style selects an italic face.
func (s TextStyle) Italic() bool {
	return s.FontStyle == "italic" || s.FontStyle == "oblique"
}

// TextMetrics is the measured extent of a string.
type TextMetrics struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CommandType names the kind of a drawing command.
type CommandType string

// Drawing command kinds.
const (
	CommandLine      CommandType = "line"
	CommandRectangle CommandType = "rectangle"
	CommandCircle    CommandType = "circle"
	CommandEllipse   CommandType = "ellipse"
	CommandPath      CommandType = "path"
	CommandText      CommandType = "text"
	CommandImage     CommandType = "image"
)

// Style is the union of styles a drawing command may carry.
// Exactly the fields relevant to the command kind are set.
type Style struct {
	Line *LineStyle `json:"line,omitempty"`
	Fill *FillStyle `json:"fill,omitempty"`
	Text *TextStyle `json:"text,omitempty"`
}

// CommandData is the geometry of a drawing command.
type CommandData struct {
	From    *Point   `json:"from,omitempty"`
	To      *Point   `json:"to,omitempty"`
	Rect    *Rect    `json:"rect,omitempty"`
	Circle  *Circle  `json:"circle,omitempty"`
	Ellipse *Ellipse `json:"ellipse,omitempty"`
	Path    *Path    `json:"path,omitempty"`
	Text    string   `json:"text,omitempty"`
	At      *Point   `json:"at,omitempty"`

	// Image commands carry decoded RGBA pixels so that a later release of
	// the source texture does not invalidate the layer.
	ImageWidth  int     `json:"imageWidth,omitempty"`
	ImageHeight int     `json:"imageHeight,omitempty"`
	ImagePixels []byte  `json:"-"`
	SourceRect  *Rect   `json:"sourceRect,omitempty"`
	DestRect    *Rect   `json:"destRect,omitempty"`
	TextureID   string  `json:"textureId,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
}

// DrawingCommand is one recorded draw operation.
type DrawingCommand struct {
	ID        string      `json:"id"`
	Type      CommandType `json:"type"`
	Data      CommandData `json:"data"`
	Style     Style       `json:"style"`
	Timestamp int64       `json:"timestamp"`
}

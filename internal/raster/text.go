package raster

import (
	"fmt"
	"image"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/gpubridge/gpucore"
	"github.com/gogpu/gpubridge/internal/textmeasure"
)

var (
	fontsMu sync.Mutex
	fonts   = make(map[textmeasure.Face]*opentype.Font)
)

func openFont(f textmeasure.Face) (*opentype.Font, error) {
	fontsMu.Lock()
	defer fontsMu.Unlock()
	if ft, ok := fonts[f]; ok {
		return ft, nil
	}
	ft, err := opentype.Parse(f.TTF())
	if err != nil {
		return nil, fmt.Errorf("raster: parse font: %w", err)
	}
	fonts[f] = ft
	return ft, nil
}

// Text draws s at the anchor point using the style's alignment and
// baseline. Lines are separated by '\n'.
func Text(dst *image.RGBA, s string, at gpucore.Point, style gpucore.TextStyle) error {
	if s == "" || style.FontSize <= 0 || style.Color.Alpha <= 0 {
		return nil
	}
	ft, err := openFont(textmeasure.FaceFor(style.FontFamily, style.Bold(), style.Italic()))
	if err != nil {
		return err
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    style.FontSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return fmt.Errorf("raster: new face: %w", err)
	}
	defer func() {
		_ = face.Close()
	}()

	m := face.Metrics()
	ascent := fix(m.Ascent)
	descent := fix(m.Descent)
	lineHeight := fix(m.Height)

	y := at.Y
	switch style.Baseline {
	case "top":
		y += ascent
	case "middle":
		y += (ascent - descent) / 2
	case "bottom":
		y -= descent
	case "hanging":
		y += ascent * 0.8
	}

	d := &font.Drawer{Dst: dst, Src: image.NewUniform(style.Color.NRGBA()), Face: face}
	for i, line := range strings.Split(s, "\n") {
		x := at.X
		switch style.Alignment {
		case "center":
			x -= fix(d.MeasureString(line)) / 2
		case "right", "end":
			x -= fix(d.MeasureString(line))
		}
		d.Dot = fixed.Point26_6{
			X: fixed.Int26_6(math.Round(x * 64)),
			Y: fixed.Int26_6(math.Round((y + float64(i)*lineHeight) * 64)),
		}
		d.DrawString(line)
	}
	return nil
}

func fix(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

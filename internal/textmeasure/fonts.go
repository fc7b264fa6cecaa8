package textmeasure

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Face selects one of the bundled Go fonts.
type Face struct {
	Mono   bool
	Bold   bool
	Italic bool
}

// FaceFor maps a CSS-like family name and style flags to a bundled face.
// Monospace families select Go Mono; everything else Go Regular.
func FaceFor(family string, bold, italic bool) Face {
	f := strings.ToLower(family)
	mono := strings.Contains(f, "mono") || strings.Contains(f, "courier") || f == "consolas"
	return Face{Mono: mono, Bold: bold, Italic: italic && !mono}
}

// TTF returns the font file bytes for the face.
func (f Face) TTF() []byte {
	switch {
	case f.Mono && f.Bold:
		return gomonobold.TTF
	case f.Mono:
		return gomono.TTF
	case f.Bold && f.Italic:
		return gobolditalic.TTF
	case f.Bold:
		return gobold.TTF
	case f.Italic:
		return goitalic.TTF
	default:
		return goregular.TTF
	}
}

var (
	parsedMu sync.Mutex
	parsed   = make(map[Face]*font.Font)
)

// parse returns the shared parsed font. font.Font is read-only and safe for
// concurrent use; font.Face is not and is created per call.
func parse(f Face) (*font.Font, error) {
	parsedMu.Lock()
	defer parsedMu.Unlock()

	if ft, ok := parsed[f]; ok {
		return ft, nil
	}
	face, err := font.ParseTTF(bytes.NewReader(f.TTF()))
	if err != nil {
		return nil, fmt.Errorf("textmeasure: parse font: %w", err)
	}
	parsed[f] = face.Font
	return face.Font, nil
}

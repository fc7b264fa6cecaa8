// Package textmeasure measures strings with HarfBuzz shaping.
//
// Text is split into bidi runs, each run is shaped with the script of its
// first letter, and the advances are summed. Results are cached by string,
// face and size.
package textmeasure

import (
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"

	"github.com/gogpu/gpubridge/internal/cache"
)

// DefaultCacheSize is the number of measurements kept by New(0).
const DefaultCacheSize = 512

// Metrics is the extent of a measured string in pixels.
type Metrics struct {
	Width  float64
	Height float64
	// Ascent is the distance from the baseline to the top of the line box.
	Ascent float64
}

type key struct {
	text string
	face Face
	size float64
}

// Measurer measures text. It is safe for concurrent use.
type Measurer struct {
	cache *cache.Cache[key, Metrics]
	pool  sync.Pool
}

// New creates a measurer caching up to size results. 0 selects
// DefaultCacheSize.
func New(size int) *Measurer {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Measurer{
		cache: cache.New[key, Metrics](size),
		pool: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
	}
}

// CacheStats reports cache counters.
func (m *Measurer) CacheStats() cache.Stats {
	return m.cache.Stats()
}

// Measure returns the width of the widest line and the height of all lines.
// Empty text has zero width and the height of one line.
func (m *Measurer) Measure(text string, face Face, size float64) (Metrics, error) {
	if size <= 0 {
		return Metrics{}, nil
	}
	k := key{text: text, face: face, size: size}
	if v, ok := m.cache.Get(k); ok {
		return v, nil
	}

	ft, err := parse(face)
	if err != nil {
		return Metrics{}, err
	}
	var out Metrics
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		w, ascent, lineHeight := m.measureLine(ft, line, size)
		out.Width = max(out.Width, w)
		out.Height += lineHeight
		if i == 0 {
			out.Ascent = ascent
		}
	}
	m.cache.Set(k, out)
	return out, nil
}

func (m *Measurer) measureLine(ft *font.Font, line string, size float64) (width, ascent, height float64) {
	face := font.NewFace(ft)
	runs := bidiRuns(line)
	empty := len(runs) == 0
	if empty {
		// Shape a space so an empty line still has a height.
		runs = []run{{text: []rune(" "), dir: di.DirectionLTR}}
	}

	hb := m.pool.Get().(*shaping.HarfbuzzShaper)
	defer m.pool.Put(hb)

	for _, r := range runs {
		out := hb.Shape(shaping.Input{
			Text:      r.text,
			RunStart:  0,
			RunEnd:    len(r.text),
			Direction: r.dir,
			Face:      face,
			Size:      fixed.Int26_6(size * 64),
			Script:    script(r.text),
			Language:  language.NewLanguage("en"),
		})
		width += fromFixed(out.Advance)
		a := fromFixed(out.LineBounds.Ascent)
		d := -fromFixed(out.LineBounds.Descent)
		g := fromFixed(out.LineBounds.Gap)
		ascent = max(ascent, a)
		height = max(height, a+d+g)
	}
	if empty {
		width = 0
	}
	return width, ascent, height
}

type run struct {
	text []rune
	dir  di.Direction
}

// bidiRuns splits a line into directional runs in logical order.
func bidiRuns(line string) []run {
	if line == "" {
		return nil
	}
	var p bidi.Paragraph
	if _, err := p.SetString(line); err != nil {
		return []run{{text: []rune(line), dir: di.DirectionLTR}}
	}
	ordering, err := p.Order()
	if err != nil {
		return []run{{text: []rune(line), dir: di.DirectionLTR}}
	}
	runs := make([]run, 0, ordering.NumRuns())
	for i := 0; i < ordering.NumRuns(); i++ {
		r := ordering.Run(i)
		dir := di.DirectionLTR
		if r.Direction() == bidi.RightToLeft {
			dir = di.DirectionRTL
		}
		runs = append(runs, run{text: []rune(r.String()), dir: dir})
	}
	return runs
}

func script(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

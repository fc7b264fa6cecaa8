// Command gpubridgedemo draws a layered scene on a software canvas and
// exports it.
package main

import (
	"flag"
	"log"
	"math"
	"os"

	"github.com/gogpu/gpubridge"
	"github.com/gogpu/gpubridge/backend"
	"github.com/gogpu/gpubridge/gpucore"
)

func main() {
	var (
		width  = flag.Int("width", 800, "image width")
		height = flag.Int("height", 600, "image height")
		output = flag.String("output", "demo.png", "output file")
		format = flag.String("format", "png", "png, jpeg, bmp or tiff")
	)
	flag.Parse()

	reg, err := gpubridge.New(gpubridge.WithBackendName(backend.BackendSoftware))
	if err != nil {
		log.Fatalf("Failed to create registry: %v", err)
	}
	defer reg.Close()

	c, err := reg.CreateCanvas2D(gpucore.Canvas2DDescriptor{Width: *width, Height: *height})
	if err != nil {
		log.Fatalf("Failed to create canvas: %v", err)
	}

	drawGradientBackground(reg, c)
	drawShapesDemo(reg, c)
	drawStarburstDemo(reg, c)
	drawPathDemo(reg, c)

	data, err := reg.ExportCanvas2D(c.ID, *format, 90)
	if err != nil {
		log.Fatalf("Failed to export: %v", err)
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	s := reg.Stats()
	log.Printf("Demo saved to %s (%dx%d, %d layers)\n", *output, *width, *height, s.Layers)
}

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func fill(r, g, b, a float64) *gpucore.FillStyle {
	return &gpucore.FillStyle{Color: gpucore.Color{Red: r, Green: g, Blue: b, Alpha: a}, Pattern: gpucore.FillPatternSolid}
}

// drawGradientBackground paints bands straight into the base image.
func drawGradientBackground(reg *gpubridge.Registry, c gpubridge.Canvas2D) {
	steps := 100
	w, h := float64(c.Width), float64(c.Height)
	for i := range steps {
		t := float64(i) / float64(steps)
		rect := gpucore.Rect{Y: h * t, Width: w, Height: h/float64(steps) + 1}
		must(reg.DrawRectangle2D(c.ID, rect, fill(0.1+t*0.4, 0.2+t*0.3, 0.4+t*0.2, 1), nil))
	}
}

func drawShapesDemo(reg *gpubridge.Registry, c gpubridge.Canvas2D) {
	l := must(reg.CreateDrawingLayer(c.ID, "shapes"))
	_ = reg.SetLayerBlendMode(c.ID, l.ID, gpucore.BlendModeScreen)

	must(reg.DrawCircle2D(c.ID, gpucore.Circle{Center: gpucore.Point{X: 150, Y: 150}, Radius: 60}, fill(1, 0.3, 0.3, 0.8), nil))
	must(reg.DrawCircle2D(c.ID, gpucore.Circle{Center: gpucore.Point{X: 200, Y: 150}, Radius: 60}, fill(0.3, 1, 0.3, 0.8), nil))
	must(reg.DrawCircle2D(c.ID, gpucore.Circle{Center: gpucore.Point{X: 175, Y: 200}, Radius: 60}, fill(0.3, 0.3, 1, 0.8), nil))

	outline := &gpucore.LineStyle{Color: gpucore.Color{Red: 1, Green: 1, Blue: 1, Alpha: 1}, Width: 4}
	must(reg.DrawRectangle2D(c.ID, gpucore.Rect{X: 350, Y: 100, Width: 120, Height: 80}, fill(1, 0.8, 0, 1), outline))
	must(reg.DrawText2D(c.ID, "gpubridge", gpucore.Point{X: 355, Y: 215}, &gpucore.TextStyle{
		FontSize: 22, FontWeight: "bold", Color: gpucore.Color{Red: 1, Green: 1, Blue: 1, Alpha: 1},
	}))
}

// drawStarburstDemo draws eight rotated squares as closed paths.
func drawStarburstDemo(reg *gpubridge.Registry, c gpubridge.Canvas2D) {
	l := must(reg.CreateDrawingLayer(c.ID, "starburst"))
	_ = reg.SetLayerOpacity(c.ID, l.ID, 0.85)

	cx, cy := 600.0, 150.0
	for i := range 8 {
		angle := float64(i) * math.Pi / 4
		pts := make([]gpucore.Point, 4)
		for k := range pts {
			a := angle + math.Pi/4 + float64(k)*math.Pi/2
			pts[k] = gpucore.Point{X: cx + 42*math.Cos(a), Y: cy + 42*math.Sin(a)}
		}
		hue := float64(i) / 8
		must(reg.DrawPath2D(c.ID, gpucore.Path{Points: pts, Closed: true}, fill(hue, 0.6, 1-hue, 0.5), nil))
	}
}

func drawPathDemo(reg *gpubridge.Registry, c gpubridge.Canvas2D) {
	must(reg.CreateDrawingLayer(c.ID, "paths"))

	// Wave
	wave := make([]gpucore.Point, 0, 61)
	for i := range 61 {
		x := float64(i) * 5
		wave = append(wave, gpucore.Point{X: 150 + x, Y: 400 + 25*math.Sin(x/300*4*math.Pi)})
	}
	must(reg.DrawPath2D(c.ID, gpucore.Path{Points: wave}, nil, &gpucore.LineStyle{
		Color: gpucore.Color{Red: 1, Green: 0.5, Alpha: 1}, Width: 6, CapStyle: gpucore.LineCapRound, JoinStyle: gpucore.LineJoinRound,
	}))

	// Polygon star
	points := 5
	outerR, innerR := 60.0, 30.0
	star := make([]gpucore.Point, 0, points*2)
	for i := range points * 2 {
		angle := float64(i) * math.Pi / float64(points)
		r := outerR
		if i%2 == 1 {
			r = innerR
		}
		star = append(star, gpucore.Point{X: 550 + r*math.Cos(angle-math.Pi/2), Y: 400 + r*math.Sin(angle-math.Pi/2)})
	}
	must(reg.DrawPath2D(c.ID, gpucore.Path{Points: star, Closed: true}, fill(1, 1, 0, 1), nil))
}

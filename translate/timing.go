package translate

import (
	"math"

	"github.com/gogpu/gpubridge/gpucore"
)

// Curve is a cubic Bézier easing curve from (0,0) to (1,1) with control
// points (X1,Y1) and (X2,Y2).
type Curve struct {
	X1, Y1, X2, Y2 float64
}

var curves = map[gpucore.TimingFunction]Curve{
	gpucore.TimingFunctionLinear:        {0, 0, 1, 1},
	gpucore.TimingFunctionEaseIn:        {0.42, 0, 1, 1},
	gpucore.TimingFunctionEaseOut:       {0, 0, 0.58, 1},
	gpucore.TimingFunctionEaseInEaseOut: {0.42, 0, 0.58, 1},
	gpucore.TimingFunctionDefault:       {0.25, 0.1, 0.25, 1},
}

// TimingCurve returns the easing curve for a timing function tag.
// Unknown tags fall back to Default.
func TimingCurve(tf gpucore.TimingFunction) (Curve, bool) {
	c, ok := curves[tf]
	if !ok {
		return curves[gpucore.TimingFunctionDefault], false
	}
	return c, true
}

// Ease maps linear progress x in [0,1] to eased progress.
func (c Curve) Ease(x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}
	if c.X1 == c.Y1 && c.X2 == c.Y2 {
		return x
	}
	t := c.solveX(x)
	return bezier(t, c.Y1, c.Y2)
}

// solveX finds the curve parameter whose x coordinate is x.
// Newton steps first, bisection when the slope vanishes.
func (c Curve) solveX(x float64) float64 {
	const eps = 1e-7
	t := x
	for i := 0; i < 8; i++ {
		dx := bezier(t, c.X1, c.X2) - x
		if math.Abs(dx) < eps {
			return t
		}
		d := bezierSlope(t, c.X1, c.X2)
		if math.Abs(d) < 1e-6 {
			break
		}
		t -= dx / d
	}
	lo, hi := 0.0, 1.0
	t = x
	for i := 0; i < 64 && hi-lo > eps; i++ {
		if bezier(t, c.X1, c.X2) < x {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return t
}

func bezier(t, p1, p2 float64) float64 {
	u := 1 - t
	return 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t
}

func bezierSlope(t, p1, p2 float64) float64 {
	u := 1 - t
	return 3*u*u*p1 + 6*u*t*(p2-p1) + 3*t*t*(1-p2)
}

// Package easing provides pure easing curves mapping normalized progress in [0, 1] to eased progress.
// The cubic Bezier solver follows the CSS timing-function definition: control points (0,0), (x1,y1), (x2,y2), (1,1).
package easing

import (
	"fmt"

	"github.com/chewxy/math32"
)

const (
	newtonIterations         = 4
	newtonMinSlope           = 0.001
	subdivisionPrecision     = 0.0000001
	subdivisionMaxIterations = 10

	splineTableSize = 11
	sampleStepSize  = 1.0 / (splineTableSize - 1.0)
)

// Func is an easing curve. Implementations are pure and safe for concurrent use.
type Func func(t float32) float32

// Linear returns t unchanged.
func Linear(t float32) float32 {
	return t
}

// ExpoInOut is the exponential ease-in-out curve: flat at both ends with a steep middle.
//
// Parameters:
//   - t: progress in [0, 1]
//
// Returns:
//   - float32: eased progress, exactly 0 at 0 and 1 at 1
func ExpoInOut(t float32) float32 {
	if t == 0 || t == 1 {
		return t
	}
	if t < 0.5 {
		return 0.5 * math32.Pow(2, 20*t-10)
	}
	return -0.5*math32.Pow(2, 10-t*20) + 1
}

// SineWave maps a looping playhead to a value that rises from 0 to 1 at the loop midpoint and falls back to 0,
// i.e. sin(playhead * pi).
//
// Parameters:
//   - playhead: normalized loop progress in [0, 1)
//
// Returns:
//   - float32: the warped progress in [0, 1]
func SineWave(playhead float32) float32 {
	return math32.Sin(playhead * math32.Pi)
}

// Sketch is the curve that drives the scene rotation.
var Sketch = MustCubicBezier(0.67, 0.03, 0.29, 0.99)

// MustCubicBezier is like CubicBezier but panics on invalid control points.
// Intended for package-level curve definitions.
func MustCubicBezier(x1, y1, x2, y2 float32) Func {
	f, err := CubicBezier(x1, y1, x2, y2)
	if err != nil {
		panic(err)
	}
	return f
}

// CubicBezier builds a timing curve through (0,0) and (1,1) with control points (x1,y1) and (x2,y2).
// For a given x it solves the curve's x(t) = x for t with Newton-Raphson, seeded from a precomputed
// sample table and falling back to binary subdivision where the slope is too flat, then returns y(t).
//
// Parameters:
//   - x1, y1: the first control point; x1 must lie in [0, 1]
//   - x2, y2: the second control point; x2 must lie in [0, 1]
//
// Returns:
//   - Func: the easing curve, returning exactly 0 and 1 at the endpoints
//   - error: an error if x1 or x2 lies outside [0, 1], which would make x(t) non-monotonic
func CubicBezier(x1, y1, x2, y2 float32) (Func, error) {
	if x1 < 0 || x1 > 1 || x2 < 0 || x2 > 1 {
		return nil, fmt.Errorf("easing: bezier x control points must be in [0, 1], got %v and %v", x1, x2)
	}

	if x1 == y1 && x2 == y2 {
		return Linear, nil
	}

	var samples [splineTableSize]float32
	for i := range samples {
		samples[i] = bezierAt(float32(i)*sampleStepSize, x1, x2)
	}

	tForX := func(x float32) float32 {
		intervalStart := float32(0)
		current := 1
		last := splineTableSize - 1

		for ; current != last && samples[current] <= x; current++ {
			intervalStart += sampleStepSize
		}
		current--

		dist := (x - samples[current]) / (samples[current+1] - samples[current])
		guess := intervalStart + dist*sampleStepSize

		slope := bezierSlope(guess, x1, x2)
		switch {
		case slope >= newtonMinSlope:
			return newtonRaphson(x, guess, x1, x2)
		case slope == 0:
			return guess
		default:
			return binarySubdivide(x, intervalStart, intervalStart+sampleStepSize, x1, x2)
		}
	}

	return func(x float32) float32 {
		if x == 0 || x == 1 {
			return x
		}
		return bezierAt(tForX(x), y1, y2)
	}, nil
}

// bezierAt evaluates one axis of the cubic Bezier at parameter t using Horner's method.
func bezierAt(t, a1, a2 float32) float32 {
	return ((coefA(a1, a2)*t+coefB(a1, a2))*t + coefC(a1)) * t
}

// bezierSlope returns the derivative of one axis of the curve with respect to t.
func bezierSlope(t, a1, a2 float32) float32 {
	return 3*coefA(a1, a2)*t*t + 2*coefB(a1, a2)*t + coefC(a1)
}

func coefA(a1, a2 float32) float32 { return 1 - 3*a2 + 3*a1 }
func coefB(a1, a2 float32) float32 { return 3*a2 - 6*a1 }
func coefC(a1 float32) float32     { return 3 * a1 }

func newtonRaphson(x, guess, x1, x2 float32) float32 {
	for range newtonIterations {
		slope := bezierSlope(guess, x1, x2)
		if slope == 0 {
			return guess
		}
		guess -= (bezierAt(guess, x1, x2) - x) / slope
	}
	return guess
}

func binarySubdivide(x, a, b, x1, x2 float32) float32 {
	var t float32
	for i := 0; i < subdivisionMaxIterations; i++ {
		t = a + (b-a)/2
		cur := bezierAt(t, x1, x2) - x
		if cur > 0 {
			b = t
		} else {
			a = t
		}
		if math32.Abs(cur) <= subdivisionPrecision {
			break
		}
	}
	return t
}

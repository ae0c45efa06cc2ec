// package common contains common types that are used throughout this module. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Color is an RGB color with float components, nominally in the range [0, 1].
// It is the shared color currency between palettes, materials, lights and the renderer clear color.
type Color struct {
	// R is the red component.
	R float32
	// G is the green component.
	G float32
	// B is the blue component.
	B float32
}

// Vec3 returns the color as a three-element array suitable for GPU struct packing.
//
// Returns:
//   - [3]float32: the R, G and B components in order
func (c Color) Vec3() [3]float32 {
	return [3]float32{c.R, c.G, c.B}
}

// Scale returns the color with every component multiplied by s.
func (c Color) Scale(s float32) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s}
}

// Size is a pixel width and height pair.
type Size struct {
	Width  int
	Height int
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Aspect returns width divided by height, or 1 for an invalid size.
func (s Size) Aspect() float32 {
	if !s.Valid() {
		return 1
	}
	return float32(s.Width) / float32(s.Height)
}

// Scaled returns the size multiplied by a pixel ratio, rounded to the nearest pixel and never below 1.
//
// Parameters:
//   - ratio: the device pixel ratio; values <= 0 are treated as 1
//
// Returns:
//   - Size: the physical pixel size
func (s Size) Scaled(ratio float64) Size {
	if ratio <= 0 {
		ratio = 1
	}
	w := int(float64(s.Width)*ratio + 0.5)
	h := int(float64(s.Height)*ratio + 0.5)
	return Size{Width: max(w, 1), Height: max(h, 1)}
}

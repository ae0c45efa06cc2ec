// Package palette provides the embedded table of five-color palettes the sketch draws its sphere colors from,
// plus small helpers for turning hex and HSL literals into common.Color values.
package palette

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/noise-spheres/common"
	"github.com/Carmen-Shannon/noise-spheres/engine/random"
	"github.com/lucasb-eyer/go-colorful"
)

//go:embed assets/palettes.json
var palettesJSON []byte

var (
	loadOnce sync.Once
	builtin  []Palette
)

// Palette is an immutable ordered list of colors.
type Palette []common.Color

// Pick chooses one color from the palette using the provided generator.
// An empty palette yields the zero color.
//
// Parameters:
//   - g: the seeded generator to draw from
//
// Returns:
//   - common.Color: the chosen color
func (p Palette) Pick(g random.Generator) common.Color {
	i := g.Pick(len(p))
	if i < 0 {
		return common.Color{}
	}
	return p[i]
}

// Palettes returns every palette in the embedded table. The table is parsed once; a corrupt
// table is a build defect and panics.
//
// Returns:
//   - []Palette: the built-in palettes, shared between callers and not to be mutated
func Palettes() []Palette {
	loadOnce.Do(func() {
		p, err := Load(palettesJSON)
		if err != nil {
			panic(fmt.Errorf("embedded palette table: %w", err))
		}
		builtin = p
	})
	return builtin
}

// Pick chooses one of the built-in palettes using the provided generator.
//
// Parameters:
//   - g: the seeded generator to draw from
//
// Returns:
//   - Palette: the chosen palette
func Pick(g random.Generator) Palette {
	all := Palettes()
	return all[g.Pick(len(all))]
}

// Load parses a JSON array of palettes, each an array of hex color strings.
//
// Parameters:
//   - data: the raw JSON document
//
// Returns:
//   - []Palette: the parsed palettes in document order
//   - error: an error if the document is malformed, empty, or holds an invalid hex color
func Load(data []byte) ([]Palette, error) {
	var raw [][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode palettes: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("palette table is empty")
	}

	out := make([]Palette, len(raw))
	for i, hexes := range raw {
		if len(hexes) == 0 {
			return nil, fmt.Errorf("palette %d has no colors", i)
		}
		p := make(Palette, len(hexes))
		for j, h := range hexes {
			c, err := Hex(h)
			if err != nil {
				return nil, fmt.Errorf("palette %d color %d: %w", i, j, err)
			}
			p[j] = c
		}
		out[i] = p
	}
	return out, nil
}

// Hex parses a "#rrggbb" string into a Color.
func Hex(s string) (common.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return common.Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return fromColorful(c), nil
}

// HSL builds a Color from hue in degrees and saturation/lightness in [0, 1].
// HSL(0, 0, 0.95) is the sketch's off-white background.
func HSL(h, s, l float64) common.Color {
	return fromColorful(colorful.Hsl(h, s, l))
}

func fromColorful(c colorful.Color) common.Color {
	c = c.Clamped()
	return common.Color{R: float32(c.R), G: float32(c.G), B: float32(c.B)}
}

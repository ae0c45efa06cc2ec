package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/noise-spheres/common"
	"github.com/Carmen-Shannon/noise-spheres/engine/camera"
	"github.com/Carmen-Shannon/noise-spheres/engine/game_object"
	"github.com/Carmen-Shannon/noise-spheres/engine/light"
	"github.com/Carmen-Shannon/noise-spheres/engine/model"
	"github.com/Carmen-Shannon/noise-spheres/engine/palette"
	"github.com/Carmen-Shannon/noise-spheres/engine/random"
	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/material"
)

const (
	// DefaultMeshCount is the number of spheres in the sketch.
	DefaultMeshCount = 40

	// PipelineKey is the key the sphere pipeline is registered under.
	PipelineKey = "noise_spheres"

	scaleFactor = 0.5
)

// Plan is the CPU-side description of a sketch: everything Build decides from a seed, before any GPU work.
type Plan struct {
	// Seed is the generator seed the plan was built from.
	Seed uint64

	// Palette is the palette every mesh color was drawn from.
	Palette palette.Palette

	// Model is the sphere geometry shared by every mesh.
	Model model.Model

	// Meshes holds one entity per sphere, each with its own material.
	Meshes []game_object.GameObject

	// Lights holds the ambient light followed by the directional light.
	Lights []light.Light

	// Camera is the orthographic camera, uninitialized until the first resize.
	Camera camera.Camera

	// ClearColor is the frame background.
	ClearColor common.Color
}

type buildConfig struct {
	meshCount      int
	palettes       []palette.Palette
	customPalettes bool
	segments       int
}

// BuildOption is a functional option for Build.
type BuildOption func(*buildConfig)

// WithMeshCount overrides the number of spheres.
func WithMeshCount(n int) BuildOption {
	return func(c *buildConfig) {
		c.meshCount = n
	}
}

// WithPalettes replaces the built-in palette table the plan picks from.
func WithPalettes(palettes ...palette.Palette) BuildOption {
	return func(c *buildConfig) {
		c.palettes = palettes
		c.customPalettes = true
	}
}

// WithSphereSegments sets the width and height segment count of the shared sphere.
func WithSphereSegments(segments int) BuildOption {
	return func(c *buildConfig) {
		c.segments = segments
	}
}

// Build lays out the sketch for a seed. One palette is picked first; then, for each mesh in order,
// three position components in [-1, 1), three scale components in [-1, 1) halved, and one palette
// color are drawn. Identical seeds produce identical plans.
//
// Scale components may be zero or negative. They are kept as drawn, so a sphere can render mirrored or flattened.
//
// Parameters:
//   - seed: the generator seed
//   - options: BuildOption functions
//
// Returns:
//   - *Plan: the plan
//   - error: an error if the mesh count is negative or the palette table is empty
func Build(seed uint64, options ...BuildOption) (*Plan, error) {
	cfg := buildConfig{
		meshCount: DefaultMeshCount,
		segments:  model.DefaultSphereSegments,
	}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.meshCount < 0 {
		return nil, fmt.Errorf("build: mesh count %d is negative", cfg.meshCount)
	}

	g := random.NewGenerator(seed)

	var pal palette.Palette
	switch {
	case !cfg.customPalettes:
		pal = palette.Pick(g)
	case len(cfg.palettes) == 0:
		return nil, fmt.Errorf("build: no palettes to pick from")
	default:
		pal = cfg.palettes[g.Pick(len(cfg.palettes))]
	}

	sphere := model.NewModel(
		model.WithName("sphere"),
		model.WithGeometry(model.NewSphereGeometry(model.DefaultSphereRadius, cfg.segments, cfg.segments)),
	)

	meshes := make([]game_object.GameObject, cfg.meshCount)
	for i := range meshes {
		var pos, scale [3]float32
		for axis := range pos {
			pos[axis] = float32(g.Range(-1, 1))
		}
		for axis := range scale {
			scale[axis] = float32(g.Range(-1, 1)) * scaleFactor
		}
		color := pal.Pick(g)

		meshes[i] = game_object.NewGameObject(
			game_object.WithID(uint64(i+1)),
			game_object.WithModel(sphere),
			game_object.WithMaterial(material.NewMaterial(
				material.WithName(fmt.Sprintf("sphere_%d", i)),
				material.WithColor(color),
				material.WithSlot(i),
				material.WithPipelineKey(PipelineKey),
			)),
			game_object.WithPosition(pos),
			game_object.WithScale(scale),
		)
	}

	return &Plan{
		Seed:    seed,
		Palette: pal,
		Model:   sphere,
		Meshes:  meshes,
		Lights: []light.Light{
			light.NewLight(light.LightTypeAmbient, light.WithColor(palette.HSL(0, 0, 0.4))),
			light.NewLight(light.LightTypeDirectional, light.WithPosition(2, 2, 4), light.WithIntensity(1)),
		},
		Camera:     camera.NewCamera(),
		ClearColor: palette.HSL(0, 0, 0.95),
	}, nil
}

package game_object

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/noise-spheres/engine/renderer/material"
)

// GPUSphereInstanceSource is the canonical WGSL definition of the SphereInstance struct.
// It references MaterialUniform, so shaders must include the material struct before it.
// Matches GPUSphereInstance layout exactly (80 bytes, std430 aligned).
//
//go:embed assets/sphere_instance.wgsl
var GPUSphereInstanceSource string

// GPUSphereInstance is one element of the instance storage buffer read by the sphere vertex shader.
// Size: 80 bytes (mat4x4<f32> followed by the 16-byte MaterialUniform, std430 aligned).
type GPUSphereInstance struct {
	Model    [16]float32                 // offset  0: world matrix including the scene's root rotation (64 bytes)
	Material material.GPUMaterialUniform // offset 64: color and time (16 bytes)
}

// Size returns the size of the GPUSphereInstance struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUSphereInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSphereInstance struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload.
func (g *GPUSphereInstance) Marshal() []byte {
	buf := make([]byte, 0, 80)
	for _, f := range g.Model {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return append(buf, g.Material.Marshal()...)
}

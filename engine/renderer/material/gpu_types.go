package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialUniformSource is the canonical WGSL definition of the MaterialUniform struct.
// Matches GPUMaterialUniform layout exactly (16 bytes, std430 aligned).
//
//go:embed assets/material_uniform.wgsl
var GPUMaterialUniformSource string

// GPUMaterialUniform is the GPU-aligned per-material data read by the sphere shaders.
// Matches the WGSL MaterialUniform struct layout exactly (see GPUMaterialUniformSource).
// Size: 16 bytes (vec3<f32> packed with a trailing f32, std430 aligned).
type GPUMaterialUniform struct {
	Color [3]float32 // offset  0: RGB tint color (12 bytes)
	Time  float32    // offset 12: animation time in seconds (4 bytes)
}

// Size returns the size of the GPUMaterialUniform struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUMaterialUniform) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Color[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Color[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Color[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Time))
	return buf
}

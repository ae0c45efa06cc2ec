package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (80 bytes, uniform address space).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the per-frame camera data bound at group 0 of the sphere pipeline.
// Size: 80 bytes; the trailing float pads the vec3 position out to the struct's 16-byte alignment.
type GPUCameraUniform struct {
	ViewProj       [16]float32 // offset  0: projection * view (mat4x4<f32>)
	CameraPosition [3]float32  // offset 64: eye position (vec3<f32>)
	_pad           float32     // offset 76
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform into little-endian bytes for Queue.WriteBuffer.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := 0
	put := func(f float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
		off += 4
	}
	for _, f := range g.ViewProj {
		put(f)
	}
	for _, f := range g.CameraPosition {
		put(f)
	}
	return buf
}

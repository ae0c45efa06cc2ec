package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct for mesh pipelines.
// Matches GPUVertex layout exactly (32 bytes, tightly packed vertex attributes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
// Size: 32 bytes (no padding required).
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: unit surface normal (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 32)
	fields := [8]float32{
		g.Position[0], g.Position[1], g.Position[2],
		g.Normal[0], g.Normal[1], g.Normal[2],
		g.TexCoord[0], g.TexCoord[1],
	}
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(f))
	}
	return buf
}

// MarshalVertices packs a vertex slice into one contiguous upload buffer.
//
// Parameters:
//   - vertices: the vertices to pack, in buffer order
//
// Returns:
//   - []byte: len(vertices)*32 bytes
func MarshalVertices(vertices []GPUVertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	stride := vertices[0].Size()
	buf := make([]byte, 0, stride*len(vertices))
	for i := range vertices {
		buf = append(buf, vertices[i].Marshal()...)
	}
	return buf
}

// MarshalIndices packs uint32 triangle indices into a little-endian upload buffer.
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], idx)
	}
	return buf
}

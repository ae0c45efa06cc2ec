package common

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// clipCorrection remaps OpenGL clip-space depth [-w, w] to the WebGPU range [0, w].
// mgl32 builds projections for OpenGL, so every projection is pre-multiplied by this matrix.
var clipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Identity sets the provided 4x4 matrix to the identity matrix.
//
// Parameters:
//   - m: the 16-element slice to overwrite in-place
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// SliceToBytes reinterprets a slice of any fixed-size type as a byte slice without copying.
// The returned slice aliases the input memory.
//
// Parameters:
//   - data: the slice to reinterpret
//
// Returns:
//   - []byte: a byte view over the slice memory, or nil if the slice is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a byte slice without copying.
//
// Parameters:
//   - v: pointer to the value to reinterpret
//
// Returns:
//   - []byte: a byte view over the value's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// Mul4 multiplies two column-major 4x4 matrices and returns a*b.
//
// Parameters:
//   - a: the left-hand matrix
//   - b: the right-hand matrix
//
// Returns:
//   - [16]float32: the product a*b
func Mul4(a, b [16]float32) [16]float32 {
	return [16]float32(mgl32.Mat4(a).Mul4(mgl32.Mat4(b)))
}

// Ortho builds a column-major orthographic projection matrix with WebGPU depth range [0, 1].
// near and far may be negative, which places the near plane behind the eye.
//
// Parameters:
//   - left, right: the horizontal bounds of the view volume
//   - bottom, top: the vertical bounds of the view volume
//   - near, far: the depth bounds of the view volume
//
// Returns:
//   - [16]float32: the projection matrix
func Ortho(left, right, bottom, top, near, far float32) [16]float32 {
	return [16]float32(clipCorrection.Mul4(mgl32.Ortho(left, right, bottom, top, near, far)))
}

// LookAt builds a column-major right-handed view matrix for an eye looking at a target point.
//
// Parameters:
//   - eye: the eye position in world space
//   - center: the point the eye looks at
//   - up: the world up direction
//
// Returns:
//   - [16]float32: the view matrix
func LookAt(eye, center, up [3]float32) [16]float32 {
	return [16]float32(mgl32.LookAtV(mgl32.Vec3(eye), mgl32.Vec3(center), mgl32.Vec3(up)))
}

// ModelMatrix composes a parent z-rotation with a child translation and scale:
// Rz(rotZ) * T(position) * S(scale). No inversion is performed, so zero or negative
// scale components produce a flattened or mirrored matrix instead of an error.
//
// Parameters:
//   - rotZ: the parent rotation about the z-axis in radians
//   - position: the child translation
//   - scale: the child per-axis scale
//
// Returns:
//   - [16]float32: the composed world matrix
func ModelMatrix(rotZ float32, position, scale [3]float32) [16]float32 {
	m := mgl32.HomogRotate3DZ(rotZ).
		Mul4(mgl32.Translate3D(position[0], position[1], position[2])).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
	return [16]float32(m)
}

// IsFinite reports whether every element of the matrix is a finite number.
//
// Parameters:
//   - m: the matrix to check
//
// Returns:
//   - bool: false if any element is NaN or infinite
func IsFinite(m [16]float32) bool {
	for _, v := range m {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

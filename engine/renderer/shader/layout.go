package shader

import (
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// typeLayout is a WGSL host-shareable size and alignment in bytes.
type typeLayout struct {
	size  uint64
	align uint64
}

var scalarSizes = map[string]uint64{
	"f32":  4,
	"i32":  4,
	"u32":  4,
	"f16":  2,
	"bool": 4,
}

// vertexFormats[scalar][n] is the vertex format of an n-component vector of scalar.
var vertexFormats = map[string][5]wgpu.VertexFormat{
	"f32": {1: wgpu.VertexFormatFloat32, 2: wgpu.VertexFormatFloat32x2, 3: wgpu.VertexFormatFloat32x3, 4: wgpu.VertexFormatFloat32x4},
	"i32": {1: wgpu.VertexFormatSint32, 2: wgpu.VertexFormatSint32x2, 3: wgpu.VertexFormatSint32x3, 4: wgpu.VertexFormatSint32x4},
	"u32": {1: wgpu.VertexFormatUint32, 2: wgpu.VertexFormatUint32x2, 3: wgpu.VertexFormatUint32x3, 4: wgpu.VertexFormatUint32x4},
	"f16": {2: wgpu.VertexFormatFloat16x2, 4: wgpu.VertexFormatFloat16x4},
}

var shorthandScalars = map[byte]string{'f': "f32", 'i': "i32", 'u': "u32", 'h': "f16"}

// canonicalType strips whitespace and expands shorthand aliases: vec3f is vec3<f32>, mat4x4f is mat4x4<f32>.
func canonicalType(t string) string {
	t = strings.Join(strings.Fields(t), "")
	if strings.Contains(t, "<") {
		return t
	}
	for _, prefix := range []string{"vec", "mat"} {
		if !strings.HasPrefix(t, prefix) || len(t) < len(prefix)+2 {
			continue
		}
		if scalar, ok := shorthandScalars[t[len(t)-1]]; ok {
			return t[:len(t)-1] + "<" + scalar + ">"
		}
	}
	return t
}

// vectorParts splits vecN<T> into N and T.
func vectorParts(t string) (n int, scalar string, ok bool) {
	if len(t) < 7 || !strings.HasPrefix(t, "vec") || t[4] != '<' || !strings.HasSuffix(t, ">") {
		return 0, "", false
	}
	n = int(t[3] - '0')
	if n < 2 || n > 4 {
		return 0, "", false
	}
	return n, t[5 : len(t)-1], true
}

// vertexFormat maps a vertex attribute type to its format and packed size.
func vertexFormat(t string) (wgpu.VertexFormat, uint64, bool) {
	t = canonicalType(t)
	n, scalar := 1, t
	if vn, vs, ok := vectorParts(t); ok {
		n, scalar = vn, vs
	}
	formats, ok := vertexFormats[scalar]
	if !ok || formats[n] == wgpu.VertexFormatUndefined {
		return wgpu.VertexFormatUndefined, 0, false
	}
	return formats[n], uint64(n) * scalarSizes[scalar], true
}

// roundUp rounds value up to a multiple of align, a power of two.
func roundUp(align, value uint64) uint64 {
	if align == 0 {
		return value
	}
	return (value + align - 1) &^ (align - 1)
}

// resolveTypeLayout returns the layout of a scalar, vector, matrix, array or known struct type.
// A runtime-sized array resolves to one element stride, the smallest useful binding.
//
// Parameters:
//   - t: the WGSL type, e.g. "vec3<f32>", "CameraUniform", "array<SphereInstance, 40>"
//   - known: struct layouts resolved so far
//
// Returns:
//   - typeLayout: the layout
//   - bool: false for unknown types
func resolveTypeLayout(t string, known map[string]typeLayout) (typeLayout, bool) {
	t = canonicalType(t)

	if s, ok := scalarSizes[t]; ok {
		return typeLayout{s, s}, true
	}
	if n, scalar, ok := vectorParts(t); ok {
		s, ok := scalarSizes[scalar]
		if !ok {
			return typeLayout{}, false
		}
		// vec3 aligns like vec4
		return typeLayout{s * uint64(n), s * uint64(max(n, 2)+n%2)}, true
	}
	if strings.HasPrefix(t, "mat") && len(t) > 7 && t[4] == 'x' && t[6] == '<' {
		cols := uint64(t[3] - '0')
		col, ok := resolveTypeLayout("vec"+t[5:], known)
		if !ok || cols < 2 || cols > 4 {
			return typeLayout{}, false
		}
		return typeLayout{cols * roundUp(col.align, col.size), col.align}, true
	}
	if strings.HasPrefix(t, "array<") && strings.HasSuffix(t, ">") {
		parts := splitTopLevel(t[len("array<") : len(t)-1])
		elem, ok := resolveTypeLayout(parts[0], known)
		if !ok {
			return typeLayout{}, false
		}
		stride := roundUp(elem.align, elem.size)
		switch len(parts) {
		case 1:
			return typeLayout{stride, elem.align}, true
		case 2:
			count, err := strconv.ParseUint(parts[1], 10, 64)
			if err != nil {
				return typeLayout{}, false
			}
			return typeLayout{count * stride, elem.align}, true
		}
		return typeLayout{}, false
	}
	if l, ok := known[t]; ok {
		return l, true
	}
	return typeLayout{}, false
}

// isRuntimeArray reports whether t is an array<T> without an element count.
func isRuntimeArray(t string) bool {
	t = canonicalType(t)
	if !strings.HasPrefix(t, "array<") || !strings.HasSuffix(t, ">") {
		return false
	}
	return len(splitTopLevel(t[len("array<"):len(t)-1])) == 1
}

// structLayout lays out members at their aligned offsets and rounds the size up to the largest
// member alignment. A trailing runtime-sized array contributes only its offset; a struct holding
// nothing else takes one element.
func structLayout(st wgslStruct, known map[string]typeLayout) (typeLayout, bool) {
	var offset uint64
	align := uint64(1)
	for i, f := range st.fields {
		if f.builtin {
			continue
		}
		l, ok := resolveTypeLayout(f.typ, known)
		if !ok {
			return typeLayout{}, false
		}
		align = max(align, l.align)
		offset = roundUp(l.align, offset)

		if isRuntimeArray(f.typ) && i == len(st.fields)-1 && offset > 0 {
			return typeLayout{roundUp(align, offset), align}, true
		}
		offset += l.size
	}
	return typeLayout{roundUp(align, offset), align}, true
}

// structLayouts resolves every struct, repeating passes until nested struct members are known.
func structLayouts(structs []wgslStruct) map[string]typeLayout {
	known := make(map[string]typeLayout, len(structs))
	pending := structs
	for len(pending) > 0 {
		var next []wgslStruct
		for _, st := range pending {
			if l, ok := structLayout(st, known); ok {
				known[st.name] = l
			} else {
				next = append(next, st)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	return known
}

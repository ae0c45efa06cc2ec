package model

import (
	"github.com/chewxy/math32"
)

const (
	// DefaultSphereRadius is the radius of the sketch's shared sphere.
	DefaultSphereRadius = 1

	// DefaultSphereSegments is the number of width and height segments of the sketch's shared sphere.
	DefaultSphereSegments = 32

	minWidthSegments  = 3
	minHeightSegments = 2
)

// NewSphereGeometry builds a UV sphere centred on the origin.
// The grid has (widthSegments+1)*(heightSegments+1) vertices so the seam and poles carry their own UVs.
// Pole rows emit a single triangle per quad, and their u coordinate is shifted half a segment so the
// pole texel sits between its two neighbours.
//
// Parameters:
//   - radius: the sphere radius
//   - widthSegments: horizontal segments around the equator, clamped to at least 3
//   - heightSegments: vertical segments from pole to pole, clamped to at least 2
//
// Returns:
//   - Geometry: the vertices and counter-clockwise triangle indices
func NewSphereGeometry(radius float32, widthSegments, heightSegments int) Geometry {
	widthSegments = max(widthSegments, minWidthSegments)
	heightSegments = max(heightSegments, minHeightSegments)

	vertices := make([]GPUVertex, 0, (widthSegments+1)*(heightSegments+1))
	grid := make([][]uint32, heightSegments+1)

	var index uint32
	for iy := 0; iy <= heightSegments; iy++ {
		row := make([]uint32, widthSegments+1)
		v := float32(iy) / float32(heightSegments)

		var uOffset float32
		switch iy {
		case 0:
			uOffset = 0.5 / float32(widthSegments)
		case heightSegments:
			uOffset = -0.5 / float32(widthSegments)
		}

		for ix := 0; ix <= widthSegments; ix++ {
			u := float32(ix) / float32(widthSegments)

			sinPhi, cosPhi := math32.Sincos(u * 2 * math32.Pi)
			sinTheta, cosTheta := math32.Sincos(v * math32.Pi)

			pos := [3]float32{
				-radius * cosPhi * sinTheta,
				radius * cosTheta,
				radius * sinPhi * sinTheta,
			}

			vertices = append(vertices, GPUVertex{
				Position: pos,
				Normal:   normalize(pos),
				TexCoord: [2]float32{u + uOffset, 1 - v},
			})
			row[ix] = index
			index++
		}
		grid[iy] = row
	}

	indices := make([]uint32, 0, 6*widthSegments*(heightSegments-1))
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]

			if iy != 0 {
				indices = append(indices, a, b, d)
			}
			if iy != heightSegments-1 {
				indices = append(indices, b, c, d)
			}
		}
	}

	return Geometry{Vertices: vertices, Indices: indices}
}

func normalize(v [3]float32) [3]float32 {
	l := sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}

func sqrt(x float32) float32 {
	return math32.Sqrt(x)
}

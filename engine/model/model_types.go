package model

// Geometry is CPU-side indexed triangle data ready to be packed into vertex and index buffers.
type Geometry struct {
	// Vertices holds every vertex in buffer order.
	Vertices []GPUVertex

	// Indices holds triangle-list indices into Vertices, counter-clockwise winding.
	Indices []uint32
}

// BoundingRadius returns the largest distance from the origin of any vertex.
//
// Returns:
//   - float32: the bounding sphere radius centred on the origin
func (g Geometry) BoundingRadius() float32 {
	var maxDistSq float32
	for _, v := range g.Vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return sqrt(maxDistSq)
}

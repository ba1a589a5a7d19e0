package mesh

import (
	"github.com/Faultbox/meshkit/pkg/normals"
)

// Expand converts m into a plain triangle list in place: every triangle
// corner gets its own copy of the vertex attributes and Indices becomes
// nil. Degenerate strip triangles are dropped.
func (m *Mesh) Expand() {
	if m.DrawMode == Triangles && m.Indices == nil {
		return
	}

	corners := make([]int, 0, m.NumPrimitives()*3)
	var mats []int32
	if m.MaterialIDs != nil {
		mats = make([]int32, 0, m.NumPrimitives())
	}
	m.forEachPrimitive(func(p int, a, b, c uint32) bool {
		corners = append(corners, int(a), int(b), int(c))
		if mats != nil {
			mats = append(mats, m.MaterialID(p))
		}
		return true
	})

	m.gather(corners)
	m.MaterialIDs = mats
	m.Indices = nil
	m.DrawMode = Triangles
}

// gather replaces every per-vertex array with the tuples of the listed
// source vertices.
func (m *Mesh) gather(src []int) {
	m.Positions = gather(m.Positions, 3, src)
	m.Normals = gather(m.Normals, 3, src)
	m.Tangents = gather(m.Tangents, 4, src)
	m.UVs = gather(m.UVs, 2, src)
	m.Colors = gather(m.Colors, 1, src)
	m.BoneIndices = gather(m.BoneIndices, 4, src)
	m.BoneWeights = gather(m.BoneWeights, 4, src)
}

func gather[T any](values []T, width int, src []int) []T {
	if len(values) == 0 {
		return values
	}
	out := make([]T, len(src)*width)
	for slot, v := range src {
		start := v * width
		if start >= len(values) {
			continue
		}
		copy(out[slot*width:(slot+1)*width], values[start:min(start+width, len(values))])
	}
	return out
}

// MakeFlatShaded expands the mesh and gives every triangle its face normal.
// Existing tangents are cleared so the next EnsureNorTanUVs recomputes them.
func (m *Mesh) MakeFlatShaded() {
	m.Expand()
	m.Normals = make([]float32, len(m.Positions))
	normals.FlatNonIndexed(m.Positions, m.Normals)
	clear(m.Tangents)
}

// CalculateNormals recomputes all normals. With smooth set, a plain
// triangle list first gets an index buffer from exact vertex deduplication
// so that identical corners share one averaged normal.
func (m *Mesh) CalculateNormals(smooth bool) {
	if m.Positions == nil {
		return
	}
	if smooth && m.Indices == nil && m.DrawMode == Triangles {
		m.GenerateIndices()
	}
	m.Normals = make([]float32, len(m.Positions))
	normals.Check(m.Positions, m.Normals, m.smoothingIndices())
}

// SmoothNormals computes angle-limited smooth normals across corners that
// share a position, regardless of indexing. Triangles for which smoothness
// returns 0 stay flat. The mesh is expanded to a plain triangle list.
func (m *Mesh) SmoothNormals(maxAngle, minVertexDistance float32, smoothness func(tri int) float32) {
	m.Expand()
	m.Normals = normals.SmoothGroups(m.Positions, m.Normals, maxAngle, minVertexDistance, smoothness)
	clear(m.Tangents)
}

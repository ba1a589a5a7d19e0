package mesh

import (
	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/normals"
	"github.com/Faultbox/meshkit/pkg/tangents"
)

// Bounds returns the bounding box of all positions.
func (m *Mesh) Bounds() math.Box3 {
	return math.BoundsOf(m.Positions)
}

// Move translates every position.
func (m *Mesh) Move(d math.Vec3) {
	for i := 0; i+2 < len(m.Positions); i += 3 {
		m.Positions[i] += d.X
		m.Positions[i+1] += d.Y
		m.Positions[i+2] += d.Z
	}
}

// Scale multiplies every position component-wise.
// Normals are not touched; recompute them after non-uniform scaling.
func (m *Mesh) Scale(f math.Vec3) {
	for i := 0; i+2 < len(m.Positions); i += 3 {
		m.Positions[i] *= f.X
		m.Positions[i+1] *= f.Y
		m.Positions[i+2] *= f.Z
	}
}

// CenterXYZ moves the mesh so its bounding box is centred on the origin.
func (m *Mesh) CenterXYZ() {
	b := m.Bounds()
	if b.IsEmpty() {
		return
	}
	m.Move(b.Center().Negate())
}

// EnsureNorTanUVs sizes the normal, tangent and uv arrays to the vertex
// count and recomputes normals and tangents that fail the validity check.
// Tangents are only created when the mesh has uvs.
func (m *Mesh) EnsureNorTanUVs() {
	if m.Positions == nil {
		return
	}
	n := m.VertexCount()
	m.Normals = Resize(m.Normals, n*3)
	indices := m.smoothingIndices()
	normals.Check(m.Positions, m.Normals, indices)

	if !m.HasUVs() {
		return
	}
	m.UVs = Resize(m.UVs, n*2)
	m.Tangents = Resize(m.Tangents, n*4)
	tangents.Check(m.Positions, m.Normals, m.UVs, m.Tangents, indices)
}

// Prepared returns a copy of m with consistent normal, tangent and uv
// arrays. m itself is not modified.
func Prepared(m *Mesh) *Mesh {
	c := m.Clone()
	c.EnsureNorTanUVs()
	return c
}

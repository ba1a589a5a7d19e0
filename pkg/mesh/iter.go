package mesh

import "github.com/Faultbox/meshkit/pkg/math"

// ForEachTriangleIndex calls fn with the vertex indices of every
// non-degenerate triangle in draw order. Strip triangles alternate winding
// so that all of them face the same way. Returning false stops iteration.
func (m *Mesh) ForEachTriangleIndex(fn func(a, b, c uint32) bool) {
	m.forEachPrimitive(func(_ int, a, b, c uint32) bool {
		return fn(a, b, c)
	})
}

// ForEachTriangle is ForEachTriangleIndex with positions resolved.
// Triangles referencing missing positions are skipped.
func (m *Mesh) ForEachTriangle(fn func(a, b, c math.Vec3) bool) {
	n := uint32(m.VertexCount())
	m.ForEachTriangleIndex(func(a, b, c uint32) bool {
		if a >= n || b >= n || c >= n {
			return true
		}
		return fn(
			math.Vec3At(m.Positions, int(a)),
			math.Vec3At(m.Positions, int(b)),
			math.Vec3At(m.Positions, int(c)),
		)
	})
}

// forEachPrimitive also passes the primitive number, used to look up
// per-primitive material ids.
func (m *Mesh) forEachPrimitive(fn func(p int, a, b, c uint32) bool) {
	at := func(i int) uint32 {
		if m.Indices != nil {
			return m.Indices[i]
		}
		return uint32(i)
	}
	count := m.VertexCount()
	if m.Indices != nil {
		count = len(m.Indices)
	}

	if m.DrawMode == TriangleStrip {
		for p := 0; p+2 < count; p++ {
			a, b, c := at(p), at(p+1), at(p+2)
			if a == b || b == c || a == c {
				continue
			}
			if p&1 == 1 {
				a, b = b, a
			}
			if !fn(p, a, b, c) {
				return
			}
		}
		return
	}

	for p := 0; p*3+2 < count; p++ {
		if !fn(p, at(p*3), at(p*3+1), at(p*3+2)) {
			return
		}
	}
}

// TriangleIndices returns an index buffer in triangle-list form. For an
// indexed triangle list it is the index buffer itself.
func (m *Mesh) TriangleIndices() []uint32 {
	if m.DrawMode == Triangles && m.Indices != nil {
		return m.Indices
	}
	out := make([]uint32, 0, m.NumPrimitives()*3)
	m.ForEachTriangleIndex(func(a, b, c uint32) bool {
		out = append(out, a, b, c)
		return true
	})
	return out
}

// smoothingIndices returns the index buffer normal and tangent passes
// should use, or nil for a plain triangle list.
func (m *Mesh) smoothingIndices() []uint32 {
	if m.DrawMode == Triangles && m.Indices == nil {
		return nil
	}
	return m.TriangleIndices()
}

// ToTriangleList rewrites a strip as an indexed triangle list without
// touching vertex data. Material ids follow their triangles; ids of
// degenerate strip triangles are dropped with them.
func (m *Mesh) ToTriangleList() {
	if m.DrawMode == Triangles {
		return
	}
	indices := make([]uint32, 0, m.NumPrimitives()*3)
	var mats []int32
	if m.MaterialIDs != nil {
		mats = make([]int32, 0, m.NumPrimitives())
	}
	m.forEachPrimitive(func(p int, a, b, c uint32) bool {
		indices = append(indices, a, b, c)
		if mats != nil {
			mats = append(mats, m.MaterialID(p))
		}
		return true
	})
	m.Indices = indices
	m.MaterialIDs = mats
	m.DrawMode = Triangles
}

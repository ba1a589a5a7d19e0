// Package mesh defines the in-memory triangle mesh shared by the geometry
// packages, together with traversal helpers and whole-mesh operations.
package mesh

import (
	"errors"
	"fmt"
	"slices"
)

// Validation errors.
var (
	ErrNoPositions = errors.New("mesh has no positions")
	ErrBadLength   = errors.New("attribute length does not match vertex count")
	ErrIndexRange  = errors.New("vertex index out of range")
)

// DrawMode tells how the index buffer (or the vertex order) forms triangles.
type DrawMode uint8

const (
	Triangles DrawMode = iota
	TriangleStrip
)

// String returns the glTF-style name of the mode.
func (d DrawMode) String() string {
	switch d {
	case Triangles:
		return "TRIANGLES"
	case TriangleStrip:
		return "TRIANGLE_STRIP"
	default:
		return fmt.Sprintf("DrawMode(%d)", uint8(d))
	}
}

// Mesh stores vertex attributes as parallel packed arrays. A nil array means
// the attribute is unused. Per-vertex arrays hold VertexCount tuples of
// their width when present.
type Mesh struct {
	Name string

	Positions   []float32 // xyz
	Normals     []float32 // xyz
	Tangents    []float32 // xyz + handedness
	UVs         []float32 // uv
	Colors      []uint32  // packed ARGB
	BoneIndices []uint8   // 4 per vertex
	BoneWeights []float32 // 4 per vertex

	// Indices is nil for sequential vertex order.
	Indices []uint32
	// MaterialIDs holds one index into Materials per primitive.
	MaterialIDs []int32
	Materials   []string

	DrawMode DrawMode
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// NumPrimitives returns the number of triangles described by the index
// buffer, or by the vertex order when there is none. Degenerate strip
// triangles are counted.
func (m *Mesh) NumPrimitives() int {
	n := m.VertexCount()
	if m.Indices != nil {
		n = len(m.Indices)
	}
	if m.DrawMode == TriangleStrip {
		return max(0, n-2)
	}
	return n / 3
}

// NumMaterials returns the number of material slots, at least one.
func (m *Mesh) NumMaterials() int {
	return max(1, len(m.Materials))
}

// HasBones reports whether the mesh carries skinning data.
func (m *Mesh) HasBones() bool {
	return len(m.BoneIndices) > 0
}

// HasColors reports whether the mesh carries vertex colors.
func (m *Mesh) HasColors() bool {
	return len(m.Colors) > 0
}

// HasUVs reports whether the mesh carries texture coordinates.
func (m *Mesh) HasUVs() bool {
	return len(m.UVs) > 0
}

// Validate checks the structural invariants a renderer would rely on.
func (m *Mesh) Validate() error {
	if m.Positions == nil {
		return ErrNoPositions
	}
	if len(m.Positions)%3 != 0 {
		return fmt.Errorf("%w: %d position floats", ErrBadLength, len(m.Positions))
	}
	n := m.VertexCount()
	for _, a := range []struct {
		name  string
		size  int
		width int
	}{
		{"normals", len(m.Normals), 3},
		{"tangents", len(m.Tangents), 4},
		{"uvs", len(m.UVs), 2},
		{"colors", len(m.Colors), 1},
		{"bone indices", len(m.BoneIndices), 4},
		{"bone weights", len(m.BoneWeights), 4},
	} {
		if a.size != 0 && a.size != n*a.width {
			return fmt.Errorf("%w: %d %s for %d vertices", ErrBadLength, a.size, a.name, n)
		}
	}
	if len(m.MaterialIDs) != 0 && len(m.MaterialIDs) != m.NumPrimitives() {
		return fmt.Errorf("%w: %d material ids for %d primitives", ErrBadLength, len(m.MaterialIDs), m.NumPrimitives())
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: indices[%d] = %d, %d vertices", ErrIndexRange, i, idx, n)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.Positions = slices.Clone(m.Positions)
	c.Normals = slices.Clone(m.Normals)
	c.Tangents = slices.Clone(m.Tangents)
	c.UVs = slices.Clone(m.UVs)
	c.Colors = slices.Clone(m.Colors)
	c.BoneIndices = slices.Clone(m.BoneIndices)
	c.BoneWeights = slices.Clone(m.BoneWeights)
	c.Indices = slices.Clone(m.Indices)
	c.MaterialIDs = slices.Clone(m.MaterialIDs)
	c.Materials = slices.Clone(m.Materials)
	return &c
}

// MaterialID returns the material of primitive p, 0 when unset.
func (m *Mesh) MaterialID(p int) int32 {
	if p < len(m.MaterialIDs) {
		return m.MaterialIDs[p]
	}
	return 0
}

// Resize returns s with length n. The existing prefix is kept and new
// elements are zero. The backing array is reused when large enough.
func Resize[T any](s []T, n int) []T {
	if cap(s) < n {
		grown := make([]T, n)
		copy(grown, s)
		return grown
	}
	old := len(s)
	s = s[:n]
	if n > old {
		clear(s[old:])
	}
	return s
}

// MulARGB multiplies two packed ARGB colors channel by channel.
func MulARGB(a, b uint32) uint32 {
	var out uint32
	for shift := 0; shift < 32; shift += 8 {
		x := (a >> shift) & 0xFF
		y := (b >> shift) & 0xFF
		out |= ((x*y + 127) / 255) << shift
	}
	return out
}

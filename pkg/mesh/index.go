package mesh

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshkit/pkg/dedup"
	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/spatialhash"
)

// GenerateIndices merges vertices whose position, uv, color, material and
// skinning data are identical and builds an index buffer over the unique
// vertices. Normals and tangents of the first occurrence are kept. An
// indexed mesh or a strip is expanded first.
func (m *Mesh) GenerateIndices() {
	m.Expand()
	n := m.VertexCount()

	var mats []int32
	if m.MaterialIDs != nil {
		mats = make([]int32, n)
		for v := range mats {
			mats[v] = m.MaterialID(v / 3)
		}
	}
	res := dedup.Deduplicate(&dedup.Streams{
		Positions:   m.Positions,
		UVs:         m.UVs,
		Colors:      m.Colors,
		Materials:   mats,
		BoneIndices: m.BoneIndices,
		BoneWeights: m.BoneWeights,
	})

	m.gather(res.Unique)
	m.Indices = res.Indices
}

// Weld merges vertices whose positions lie within minVertexDistance of an
// earlier vertex, ignoring every other attribute. The earliest vertex of a
// group represents it. Triangles that collapse are removed along with
// their material id.
func (m *Mesh) Weld(minVertexDistance float32) {
	n := m.VertexCount()
	if n == 0 {
		return
	}
	tris := m.TriangleIndices()
	var mats []int32
	if m.MaterialIDs != nil {
		mats = make([]int32, 0, len(tris)/3)
		m.forEachPrimitive(func(p int, _, _, _ uint32) bool {
			mats = append(mats, m.MaterialID(p))
			return true
		})
	}

	tol := math32.Max(2*minVertexDistance, 1e-7)
	grid := spatialhash.New[uint32](n, m.Bounds().AddMargin(tol), tol)
	remap := make([]uint32, n)
	var keep []int
	for v := 0; v < n; v++ {
		p := math.Vec3At(m.Positions, v)
		if slot, ok := grid.Nearest(p, minVertexDistance); ok {
			remap[v] = *slot
			continue
		}
		remap[v] = uint32(len(keep))
		grid.Insert(p, remap[v])
		keep = append(keep, v)
	}

	indices := make([]uint32, 0, len(tris))
	var keptMats []int32
	for t := 0; t+2 < len(tris); t += 3 {
		if int(max(tris[t], tris[t+1], tris[t+2])) >= n {
			continue
		}
		a, b, c := remap[tris[t]], remap[tris[t+1]], remap[tris[t+2]]
		if a == b || b == c || a == c {
			continue
		}
		indices = append(indices, a, b, c)
		if mats != nil {
			keptMats = append(keptMats, mats[t/3])
		}
	}

	m.gather(keep)
	m.Indices = indices
	m.MaterialIDs = keptMats
	m.DrawMode = Triangles
}

// Package meshjoin merges many meshes into one triangle list, applying a
// per-source transform, material remapping and attribute defaults.
package meshjoin

import (
	"slices"

	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// NoColor is the vertex color callback result that keeps source colors.
const NoColor uint32 = 0xFFFFFFFF

// identityEps is the summed absolute deviation below which a transform is
// treated as translation only.
const identityEps = 1e-7

// Joiner describes how to read mesh, transform and material data from an
// element of type E. Mesh and Transform are required; every other callback
// may be nil.
type Joiner[E any] struct {
	// HasColors enables the color output array.
	HasColors bool
	// HasBones enables bone index and weight output arrays.
	HasBones bool
	// MayHaveUVs enables uv and tangent output when any source has uvs.
	MayHaveUVs bool

	Mesh      func(E) *mesh.Mesh
	Transform func(E) math.Mat4
	Materials func(E) []string

	// VertexColor returns an ARGB tint or NoColor.
	VertexColor func(E) uint32
	// BoneID is written to all four bone slots of sources without skinning.
	BoneID func(E) uint8
	// MultiplyColors tints source colors instead of replacing them.
	MultiplyColors func(E) bool
	// OnFinishedMesh receives the range of output primitives [p0, p1)
	// written for one element.
	OnFinishedMesh func(p0, p1 int)
}

func (j *Joiner[E]) materials(e E) []string {
	if j.Materials == nil {
		return nil
	}
	return j.Materials(e)
}

func (j *Joiner[E]) vertexColor(e E) uint32 {
	if j.VertexColor == nil {
		return NoColor
	}
	return j.VertexColor(e)
}

// source is an element with its mesh normalized for joining.
type source[E any] struct {
	elem      E
	mesh      *mesh.Mesh
	materials []string
}

// Join merges elements into dst, reusing its arrays where they are large
// enough, and returns dst. The result is always an indexed triangle list.
// Elements whose mesh has no positions contribute nothing.
func (j *Joiner[E]) Join(dst *mesh.Mesh, elements []E) *mesh.Mesh {
	if dst == nil {
		dst = &mesh.Mesh{}
	}
	if len(elements) == 0 {
		dst.DrawMode = mesh.Triangles
		dst.Positions = []float32{}
		dst.Indices = nil
		dst.MaterialIDs = nil
		return dst
	}

	// Sources are copied before dst is touched; dst may be one of them.
	elemMaterials := make([][]string, len(elements))
	sources := make([]source[E], 0, len(elements))
	numVertices, numPrimitives := 0, 0
	anyUVs := false
	for i, e := range elements {
		elemMaterials[i] = slices.Clone(j.materials(e))
		src := j.Mesh(e)
		if src == nil || src.Positions == nil {
			continue
		}
		prepared := mesh.Prepared(src)
		prepared.ToTriangleList()
		sources = append(sources, source[E]{elem: e, mesh: prepared, materials: elemMaterials[i]})
		numVertices += prepared.VertexCount()
		numPrimitives += prepared.NumPrimitives()
		anyUVs = anyUVs || src.UVs != nil
	}

	first := elemMaterials[0]
	uniqueMaterial := len(first) < 2
	for _, mats := range elemMaterials[1:] {
		if !uniqueMaterial {
			break
		}
		uniqueMaterial = slices.Equal(mats, first)
	}

	var materialToID map[string]int32
	if uniqueMaterial {
		dst.Materials = slices.Clone(first)
	} else {
		materialToID = make(map[string]int32)
		materials := make([]string, 0, len(first))
		for _, mats := range elemMaterials {
			for _, mat := range mats {
				if _, ok := materialToID[mat]; !ok {
					materialToID[mat] = int32(len(materials))
					materials = append(materials, mat)
				}
			}
		}
		dst.Materials = materials
	}

	dst.DrawMode = mesh.Triangles
	hasUVs := j.MayHaveUVs && anyUVs

	dst.Positions = resize(dst.Positions, numVertices*3, true)
	dst.Normals = resize(dst.Normals, numVertices*3, true)
	dst.UVs = resize(dst.UVs, numVertices*2, hasUVs)
	dst.Tangents = resize(dst.Tangents, numVertices*4, hasUVs)
	dst.Colors = resize(dst.Colors, numVertices, j.HasColors)
	dst.Indices = resize(dst.Indices, numPrimitives*3, true)
	dst.MaterialIDs = resize(dst.MaterialIDs, numPrimitives, !uniqueMaterial)
	dst.BoneIndices = resize(dst.BoneIndices, numVertices*4, j.HasBones)
	dst.BoneWeights = resize(dst.BoneWeights, numVertices*4, j.HasBones)
	for i := 0; i < len(dst.BoneWeights); i += 4 {
		dst.BoneWeights[i] = 1
	}

	ctx := joinContext{dst: dst, materialToID: materialToID}
	for _, s := range sources {
		j.fill(&ctx, s)
	}
	return dst
}

// joinContext carries the output cursors of one Join call.
type joinContext struct {
	dst          *mesh.Mesh
	materialToID map[string]int32
	vertex       int
	primitive    int
}

func (j *Joiner[E]) fill(ctx *joinContext, s source[E]) {
	dst, src := ctx.dst, s.mesh
	v0, n := ctx.vertex, src.VertexCount()
	p0, p1 := ctx.primitive, ctx.primitive+src.NumPrimitives()

	fillPosNorTan(dst, src, j.Transform(s.elem), v0)

	if dst.UVs != nil && src.UVs != nil {
		copy(dst.UVs[v0*2:(v0+n)*2], src.UVs)
	}
	if dst.BoneIndices != nil {
		j.fillBones(dst, src, s.elem, v0)
	}
	if dst.Colors != nil {
		j.fillColors(dst, src, s.elem, v0)
	}
	fillIndices(dst, src, v0, p0)
	if dst.MaterialIDs != nil {
		fillMaterialIDs(dst, src, s.materials, ctx.materialToID, p0, p1)
	}

	ctx.vertex += n
	ctx.primitive = p1
	if j.OnFinishedMesh != nil {
		j.OnFinishedMesh(p0, p1)
	}
}

func fillPosNorTan(dst, src *mesh.Mesh, t math.Mat4, v0 int) {
	n := src.VertexCount()
	positions := dst.Positions[v0*3 : (v0+n)*3]
	normals := dst.Normals[v0*3 : (v0+n)*3]
	var tangents []float32
	if dst.Tangents != nil && src.Tangents != nil {
		tangents = dst.Tangents[v0*4 : (v0+n)*4]
	}

	if t.Is3x3Identity(identityEps) {
		tr := t.Translation()
		for i := 0; i < n*3; i += 3 {
			positions[i] = src.Positions[i] + tr.X
			positions[i+1] = src.Positions[i+1] + tr.Y
			positions[i+2] = src.Positions[i+2] + tr.Z
		}
		copy(normals, src.Normals)
		copy(tangents, src.Tangents)
		return
	}

	for v := 0; v < n; v++ {
		t.TransformPoint(math.Vec3At(src.Positions, v)).Store(positions, v)
		t.TransformDirection(math.Vec3At(src.Normals, v)).Normalize().Store(normals, v)
		if tangents != nil {
			v4 := v * 4
			d := t.TransformDirection(math.Vec3{X: src.Tangents[v4], Y: src.Tangents[v4+1], Z: src.Tangents[v4+2]}).Normalize()
			tangents[v4] = d.X
			tangents[v4+1] = d.Y
			tangents[v4+2] = d.Z
			tangents[v4+3] = src.Tangents[v4+3]
		}
	}
}

func (j *Joiner[E]) fillBones(dst, src *mesh.Mesh, e E, v0 int) {
	n := src.VertexCount()
	indices := dst.BoneIndices[v0*4 : (v0+n)*4]
	weights := dst.BoneWeights[v0*4 : (v0+n)*4]
	if src.BoneIndices != nil || src.BoneWeights != nil {
		copy(weights, src.BoneWeights)
		copy(indices, src.BoneIndices)
		return
	}
	var id uint8
	if j.BoneID != nil {
		id = j.BoneID(e)
	}
	for i := range indices {
		indices[i] = id
	}
}

func (j *Joiner[E]) fillColors(dst, src *mesh.Mesh, e E, v0 int) {
	n := src.VertexCount()
	colors := dst.Colors[v0 : v0+n]
	color := j.vertexColor(e)
	switch {
	case color == NoColor && src.HasColors():
		k := copy(colors, src.Colors)
		fillSlice(colors[k:], color)
	case src.HasColors() && j.MultiplyColors != nil && j.MultiplyColors(e):
		k := min(n, len(src.Colors))
		for i := 0; i < k; i++ {
			colors[i] = mesh.MulARGB(src.Colors[i], color)
		}
		fillSlice(colors[k:], color)
	default:
		fillSlice(colors, color)
	}
}

func fillIndices(dst, src *mesh.Mesh, v0, p0 int) {
	out := dst.Indices[p0*3 : (p0+src.NumPrimitives())*3]
	base := uint32(v0)
	if src.Indices != nil {
		for i := range out {
			out[i] = base + src.Indices[i]
		}
		return
	}
	for i := range out {
		out[i] = base + uint32(i)
	}
}

func fillMaterialIDs(dst, src *mesh.Mesh, materials []string, materialToID map[string]int32, p0, p1 int) {
	out := dst.MaterialIDs[p0:p1]
	used := min(len(materials), src.NumMaterials())
	ids := make([]int32, used)
	allZero, allSame := true, true
	for k := range ids {
		ids[k] = materialToID[materials[k]]
		allZero = allZero && ids[k] == 0
		allSame = allSame && ids[k] == ids[0]
	}
	if allZero {
		clear(out)
		return
	}
	if allSame || src.MaterialIDs == nil {
		fillSlice(out, ids[0])
		return
	}
	k := min(len(out), len(src.MaterialIDs))
	for i := 0; i < k; i++ {
		if id := src.MaterialIDs[i]; id >= 0 && int(id) < len(ids) {
			out[i] = ids[id]
		} else {
			out[i] = ids[0]
		}
	}
	fillSlice(out[k:], ids[0])
}

// resize returns a cleared slice of length n backed by s when it has room,
// or nil when the array is not needed.
func resize[T any](s []T, n int, needed bool) []T {
	if !needed {
		return nil
	}
	if cap(s) < n {
		return make([]T, n)
	}
	s = s[:n]
	clear(s)
	return s
}

func fillSlice[T any](s []T, v T) {
	for i := range s {
		s[i] = v
	}
}

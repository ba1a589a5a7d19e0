package meshio

import (
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

func quad() *mesh.Mesh {
	return &mesh.Mesh{
		Name:      "quad",
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		UVs:       []float32{0, 0, 1, 0, 0, 1, 1, 1},
		Colors:    []uint32{0xFF102030, 0x80FFFFFF, 0xFF000000, 0x00ABCDEF},
		BoneIndices: []uint8{
			0, 1, 0, 0,
			2, 0, 0, 0,
			3, 4, 5, 6,
			1, 1, 0, 0,
		},
		BoneWeights: []float32{
			1, 0, 0, 0,
			1, 0, 0, 0,
			0.25, 0.25, 0.25, 0.25,
			0.5, 0.5, 0, 0,
		},
		Indices:     []uint32{0, 1, 2, 2, 1, 3},
		MaterialIDs: []int32{0, 1},
		Materials:   []string{"stone", "moss"},
	}
}

func TestColorPacking(t *testing.T) {
	assert.Equal(t, [4]uint8{0x10, 0x20, 0x30, 0xFF}, unpackARGB(0xFF102030))
	for _, c := range []uint32{0, 0xFFFFFFFF, 0x80402010, 0x00ABCDEF} {
		assert.Equal(t, c, packARGB(unpackARGB(c)))
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := quad()
	doc, err := Encode(src)
	require.NoError(t, err)
	assert.Equal(t, Generator, doc.Asset.Generator)
	require.Len(t, doc.Meshes[0].Primitives, 2)

	parts, err := Decode(doc)
	require.NoError(t, err)
	require.Len(t, parts, 2)

	assert.Equal(t, "quad.0", parts[0].Mesh.Name)
	assert.Equal(t, []string{"stone"}, parts[0].Materials)
	assert.Equal(t, []string{"moss"}, parts[1].Materials)
	assert.Equal(t, []uint32{0, 1, 2}, parts[0].Mesh.Indices)
	assert.Equal(t, []uint32{2, 1, 3}, parts[1].Mesh.Indices)

	for _, p := range parts {
		m := p.Mesh
		assert.Equal(t, math.Identity(), p.Transform)
		assert.Equal(t, mesh.Triangles, m.DrawMode)
		assert.Equal(t, src.Positions, m.Positions)
		assert.Equal(t, src.Normals, m.Normals)
		assert.Equal(t, src.UVs, m.UVs)
		assert.Equal(t, src.Colors, m.Colors)
		assert.Equal(t, src.BoneIndices, m.BoneIndices)
		assert.InDeltaSlice(t, src.BoneWeights, m.BoneWeights, 1e-6)
		assert.NoError(t, m.Validate())
	}
}

func TestEncodeWritesStripsAsLists(t *testing.T) {
	strip := &mesh.Mesh{
		Name:      "strip",
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0},
		DrawMode:  mesh.TriangleStrip,
	}
	doc, err := Encode(strip)
	require.NoError(t, err)
	assert.Equal(t, mesh.TriangleStrip, strip.DrawMode, "source must not change")

	parts, err := Decode(doc)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3}, parts[0].Mesh.Indices)
	assert.Equal(t, []string{"default"}, parts[0].Materials)
	assert.Nil(t, parts[0].Mesh.Normals)
}

func TestEncodeRejectsInvalidMesh(t *testing.T) {
	_, err := Encode(&mesh.Mesh{Name: "empty"})
	assert.ErrorIs(t, err, mesh.ErrNoPositions)

	m := quad()
	m.MaterialIDs = []int32{0, 5}
	_, err = Encode(m)
	assert.Error(t, err)
}

func TestDecodeAppliesNodeHierarchy(t *testing.T) {
	doc, err := Encode(quad())
	require.NoError(t, err)

	doc.Nodes = []*gltf.Node{
		{Name: "root", Translation: [3]float64{1, 2, 3}, Children: []int{1}},
		{Name: "child", Scale: [3]float64{2, 2, 2}, Mesh: gltf.Index(0)},
	}
	doc.Scenes[0].Nodes = []int{0}

	parts, err := Decode(doc)
	require.NoError(t, err)
	require.Len(t, parts, 2)

	got := parts[0].Transform.TransformPoint(math.Vec3{X: 1})
	assert.InDelta(t, 3, got.X, 1e-6)
	assert.InDelta(t, 2, got.Y, 1e-6)
	assert.InDelta(t, 3, got.Z, 1e-6)
}

func TestDecodeWithoutScenes(t *testing.T) {
	doc, err := Encode(quad())
	require.NoError(t, err)
	doc.Scenes = nil
	doc.Scene = nil

	parts, err := Decode(doc)
	require.NoError(t, err)
	assert.Len(t, parts, 2)
}

func TestDecodeSkipsNonTrianglePrimitives(t *testing.T) {
	doc, err := Encode(quad())
	require.NoError(t, err)
	doc.Meshes[0].Primitives[0].Mode = gltf.PrimitivePoints

	parts, err := Decode(doc)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, []string{"moss"}, parts[0].Materials)
}

func TestDecodeRejectsWideJoints(t *testing.T) {
	doc, err := Encode(quad())
	require.NoError(t, err)
	joints := modeler.WriteJoints(doc, [][4]uint16{{300, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}})
	doc.Meshes[0].Primitives[0].Attributes[gltf.JOINTS_0] = joints

	_, err = Decode(doc)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.glb")
	src := quad()
	src.MaterialIDs = nil
	src.Materials = []string{"stone"}

	require.NoError(t, Save(path, src))

	parts, err := Load(path)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "quad", parts[0].Mesh.Name)
	assert.Equal(t, src.Positions, parts[0].Mesh.Positions)
	assert.Equal(t, src.Indices, parts[0].Mesh.Indices)
	assert.Equal(t, []string{"stone"}, parts[0].Materials)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.glb"))
	assert.Error(t, err)
}

func TestMaterialNamesAreComposed(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Materials = []*gltf.Material{{Name: "cafe\u0301"}, {}}

	assert.Equal(t, "caf\u00e9", materialName(doc, gltf.Index(0)))
	assert.Equal(t, "material_1", materialName(doc, gltf.Index(1)))
	assert.Equal(t, "default", materialName(doc, nil))
	assert.Equal(t, "default", materialName(doc, gltf.Index(5)))
}

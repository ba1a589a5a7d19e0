package meshio

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// Generator is written to the asset block of saved documents.
const Generator = "meshkit"

// Save writes m to path as a binary glTF.
func Save(path string, m *mesh.Mesh) error {
	doc, err := Encode(m)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	logger.Debug("saved glb",
		zap.String("path", path),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("primitives", len(doc.Meshes[0].Primitives)))
	return nil
}

// Encode builds a document holding m as one node. Vertex streams are shared
// and each material gets its own indexed triangle primitive. Strips are
// written as triangle lists.
func Encode(m *mesh.Mesh) (*gltf.Document, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("encode %q: %w", m.Name, err)
	}
	if m.DrawMode == mesh.TriangleStrip {
		m = m.Clone()
		m.ToTriangleList()
	}
	indices := m.TriangleIndices()

	doc := gltf.NewDocument()
	doc.Asset.Generator = Generator

	attrs := gltf.PrimitiveAttributes{
		gltf.POSITION: modeler.WritePosition(doc, pack3(m.Positions)),
	}
	if len(m.Normals) > 0 {
		attrs[gltf.NORMAL] = modeler.WriteNormal(doc, pack3(m.Normals))
	}
	if len(m.Tangents) > 0 {
		attrs[gltf.TANGENT] = modeler.WriteTangent(doc, pack4(m.Tangents))
	}
	if m.HasUVs() {
		uv := make([][2]float32, len(m.UVs)/2)
		for i := range uv {
			uv[i] = [2]float32{m.UVs[i*2], m.UVs[i*2+1]}
		}
		attrs[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(doc, uv)
	}
	if m.HasColors() {
		col := make([][4]uint8, len(m.Colors))
		for i, c := range m.Colors {
			col[i] = unpackARGB(c)
		}
		attrs[gltf.COLOR_0] = modeler.WriteColor(doc, col)
	}
	if m.HasBones() {
		joints := make([][4]uint8, len(m.BoneIndices)/4)
		for i := range joints {
			copy(joints[i][:], m.BoneIndices[i*4:])
		}
		attrs[gltf.JOINTS_0] = modeler.WriteJoints(doc, joints)
		if len(m.BoneWeights) > 0 {
			attrs[gltf.WEIGHTS_0] = modeler.WriteWeights(doc, pack4(m.BoneWeights))
		}
	}

	names := m.Materials
	if len(names) == 0 {
		names = []string{"default"}
	}
	groups := make([][]uint32, len(names))
	for p := 0; p*3+2 < len(indices); p++ {
		id := int(m.MaterialID(p))
		if id < 0 || id >= len(groups) {
			return nil, fmt.Errorf("encode %q: primitive %d uses material %d of %d", m.Name, p, id, len(groups))
		}
		groups[id] = append(groups[id], indices[p*3:p*3+3]...)
	}

	gm := &gltf.Mesh{Name: m.Name}
	for id, group := range groups {
		if len(group) == 0 {
			continue
		}
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: names[id],
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				MetallicFactor:  gltf.Float(0),
				RoughnessFactor: gltf.Float(1),
			},
		})
		gm.Primitives = append(gm.Primitives, &gltf.Primitive{
			Attributes: attrs,
			Indices:    gltf.Index(modeler.WriteIndices(doc, group)),
			Material:   gltf.Index(len(doc.Materials) - 1),
		})
	}

	doc.Meshes = []*gltf.Mesh{gm}
	doc.Nodes = []*gltf.Node{{Name: m.Name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}

func pack3(v []float32) [][3]float32 {
	out := make([][3]float32, len(v)/3)
	for i := range out {
		out[i] = [3]float32{v[i*3], v[i*3+1], v[i*3+2]}
	}
	return out
}

func pack4(v []float32) [][4]float32 {
	out := make([][4]float32, len(v)/4)
	for i := range out {
		out[i] = [4]float32{v[i*4], v[i*4+1], v[i*4+2], v[i*4+3]}
	}
	return out
}

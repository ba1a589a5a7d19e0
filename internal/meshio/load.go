// Package meshio reads and writes meshes as glTF 2.0 documents.
package meshio

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// ErrUnsupported reports glTF content meshkit cannot represent.
var ErrUnsupported = errors.New("meshio: unsupported")

// Part is one triangle primitive placed in the scene.
type Part struct {
	Mesh      *mesh.Mesh
	Transform math.Mat4 // node world transform
	Materials []string
}

// Load opens a .gltf or .glb file and returns its triangle primitives.
func Load(path string) ([]Part, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	parts, err := Decode(doc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	logger.Debug("loaded gltf",
		zap.String("path", path),
		zap.Int("meshes", len(doc.Meshes)),
		zap.Int("parts", len(parts)))
	return parts, nil
}

// Decode walks the default scene and converts every triangle primitive it
// reaches. A document without scenes yields each mesh once, untransformed.
func Decode(doc *gltf.Document) ([]Part, error) {
	var parts []Part
	if len(doc.Scenes) == 0 {
		for i := range doc.Meshes {
			p, err := decodeMesh(doc, i, math.Identity())
			if err != nil {
				return nil, err
			}
			parts = append(parts, p...)
		}
		return parts, nil
	}

	scene := 0
	if doc.Scene != nil {
		scene = *doc.Scene
	}
	if scene >= len(doc.Scenes) {
		return nil, fmt.Errorf("scene %d out of range", scene)
	}

	var walk func(node int, parent math.Mat4, depth int) error
	walk = func(node int, parent math.Mat4, depth int) error {
		if node >= len(doc.Nodes) {
			return fmt.Errorf("node %d out of range", node)
		}
		if depth > len(doc.Nodes) {
			return errors.New("node hierarchy has a cycle")
		}
		n := doc.Nodes[node]
		world := parent.Mul(localTransform(n))
		if n.Mesh != nil {
			p, err := decodeMesh(doc, *n.Mesh, world)
			if err != nil {
				return err
			}
			parts = append(parts, p...)
		}
		for _, child := range n.Children {
			if err := walk(child, world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range doc.Scenes[scene].Nodes {
		if err := walk(root, math.Identity(), 0); err != nil {
			return nil, err
		}
	}
	return parts, nil
}

func localTransform(n *gltf.Node) math.Mat4 {
	var m math.Mat4
	for i, v := range n.MatrixOrDefault() {
		m[i] = float32(v)
	}
	if m != math.Identity() {
		return m
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return math.Compose(
		math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])},
	)
}

func decodeMesh(doc *gltf.Document, index int, world math.Mat4) ([]Part, error) {
	if index >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh %d out of range", index)
	}
	gm := doc.Meshes[index]
	name := gm.Name
	if name == "" {
		name = fmt.Sprintf("mesh_%d", index)
	}

	var parts []Part
	for pi, prim := range gm.Primitives {
		var mode mesh.DrawMode
		switch prim.Mode {
		case gltf.PrimitiveTriangles:
			mode = mesh.Triangles
		case gltf.PrimitiveTriangleStrip:
			mode = mesh.TriangleStrip
		default:
			logger.Debug("skipping primitive", zap.String("mesh", name), zap.Int("primitive", pi), zap.Any("mode", prim.Mode))
			continue
		}
		if _, ok := prim.Attributes[gltf.POSITION]; !ok {
			continue
		}

		m, err := decodePrimitive(doc, prim)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", name, pi, err)
		}
		m.Name = name
		if len(gm.Primitives) > 1 {
			m.Name = fmt.Sprintf("%s.%d", name, pi)
		}
		m.DrawMode = mode
		m.Materials = []string{materialName(doc, prim.Material)}

		parts = append(parts, Part{Mesh: m, Transform: world, Materials: m.Materials})
	}
	return parts, nil
}

// materialName returns the NFC form of the material name, so joins merge
// names that differ only in Unicode composition.
func materialName(doc *gltf.Document, index *int) string {
	if index == nil || *index >= len(doc.Materials) {
		return "default"
	}
	if name := doc.Materials[*index].Name; name != "" {
		return norm.NFC.String(name)
	}
	return fmt.Sprintf("material_%d", *index)
}

func accessor(doc *gltf.Document, prim *gltf.Primitive, attr string) (*gltf.Accessor, bool, error) {
	i, ok := prim.Attributes[attr]
	if !ok {
		return nil, false, nil
	}
	if i >= len(doc.Accessors) {
		return nil, false, fmt.Errorf("%s accessor %d out of range", attr, i)
	}
	return doc.Accessors[i], true, nil
}

func decodePrimitive(doc *gltf.Document, prim *gltf.Primitive) (*mesh.Mesh, error) {
	m := &mesh.Mesh{}

	acr, _, err := accessor(doc, prim, gltf.POSITION)
	if err != nil {
		return nil, err
	}
	pos, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	m.Positions = flatten3(pos)

	if acr, ok, err := accessor(doc, prim, gltf.NORMAL); err != nil {
		return nil, err
	} else if ok {
		nor, err := modeler.ReadNormal(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
		m.Normals = flatten3(nor)
	}

	if acr, ok, err := accessor(doc, prim, gltf.TANGENT); err != nil {
		return nil, err
	} else if ok {
		tan, err := modeler.ReadTangent(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read tangents: %w", err)
		}
		m.Tangents = flatten4(tan)
	}

	if acr, ok, err := accessor(doc, prim, gltf.TEXCOORD_0); err != nil {
		return nil, err
	} else if ok {
		uv, err := modeler.ReadTextureCoord(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
		m.UVs = make([]float32, 0, len(uv)*2)
		for _, t := range uv {
			m.UVs = append(m.UVs, t[0], t[1])
		}
	}

	if acr, ok, err := accessor(doc, prim, gltf.COLOR_0); err != nil {
		return nil, err
	} else if ok {
		col, err := modeler.ReadColor(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read colors: %w", err)
		}
		m.Colors = make([]uint32, len(col))
		for i, c := range col {
			m.Colors[i] = packARGB(c)
		}
	}

	if acr, ok, err := accessor(doc, prim, gltf.JOINTS_0); err != nil {
		return nil, err
	} else if ok {
		joints, err := modeler.ReadJoints(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read joints: %w", err)
		}
		m.BoneIndices = make([]uint8, 0, len(joints)*4)
		for _, j := range joints {
			for _, b := range j {
				if b > 0xFF {
					return nil, fmt.Errorf("%w: joint index %d exceeds 255", ErrUnsupported, b)
				}
				m.BoneIndices = append(m.BoneIndices, uint8(b))
			}
		}
	}

	if acr, ok, err := accessor(doc, prim, gltf.WEIGHTS_0); err != nil {
		return nil, err
	} else if ok {
		w, err := modeler.ReadWeights(doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read weights: %w", err)
		}
		m.BoneWeights = flatten4(w)
	}

	if prim.Indices != nil {
		if *prim.Indices >= len(doc.Accessors) {
			return nil, fmt.Errorf("index accessor %d out of range", *prim.Indices)
		}
		m.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func flatten3(v [][3]float32) []float32 {
	out := make([]float32, 0, len(v)*3)
	for _, t := range v {
		out = append(out, t[0], t[1], t[2])
	}
	return out
}

func flatten4(v [][4]float32) []float32 {
	out := make([]float32, 0, len(v)*4)
	for _, t := range v {
		out = append(out, t[0], t[1], t[2], t[3])
	}
	return out
}

// packARGB converts glTF's RGBA byte order to a packed ARGB word.
func packARGB(c [4]uint8) uint32 {
	return uint32(c[3])<<24 | uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2])
}

func unpackARGB(c uint32) [4]uint8 {
	return [4]uint8{uint8(c >> 16), uint8(c >> 8), uint8(c), uint8(c >> 24)}
}

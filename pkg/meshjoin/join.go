package meshjoin

import (
	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/mesh"
)

// JoinMeshes merges meshes as they are, keeping each mesh's own materials.
func JoinMeshes(meshes []*mesh.Mesh) *mesh.Mesh {
	j := Joiner[*mesh.Mesh]{MayHaveUVs: true}
	for _, m := range meshes {
		j.HasColors = j.HasColors || m.HasColors()
		j.HasBones = j.HasBones || m.HasBones()
	}
	j.Mesh = func(m *mesh.Mesh) *mesh.Mesh { return m }
	j.Transform = func(*mesh.Mesh) math.Mat4 { return math.Identity() }
	j.Materials = func(m *mesh.Mesh) []string { return m.Materials }
	return j.Join(nil, meshes)
}

// Instance places a mesh in the world.
type Instance struct {
	Mesh      *mesh.Mesh
	Transform math.Mat4
	// Materials overrides Mesh.Materials when non-nil.
	Materials []string

	// Color replaces (or with MultiplyColor, tints) the vertex colors when
	// OverrideColor is set.
	Color         uint32
	OverrideColor bool
	MultiplyColor bool

	// BoneID is assigned to every vertex of an unskinned mesh.
	BoneID uint8
}

// InstanceJoiner returns the joiner used by JoinInstances.
func InstanceJoiner(hasColors, hasBones bool) *Joiner[Instance] {
	return &Joiner[Instance]{
		HasColors:  hasColors,
		HasBones:   hasBones,
		MayHaveUVs: true,
		Mesh:       func(in Instance) *mesh.Mesh { return in.Mesh },
		Transform:  func(in Instance) math.Mat4 { return in.Transform },
		Materials: func(in Instance) []string {
			if in.Materials != nil {
				return in.Materials
			}
			if in.Mesh == nil {
				return nil
			}
			return in.Mesh.Materials
		},
		VertexColor: func(in Instance) uint32 {
			if !in.OverrideColor {
				return NoColor
			}
			return in.Color
		},
		BoneID:         func(in Instance) uint8 { return in.BoneID },
		MultiplyColors: func(in Instance) bool { return in.MultiplyColor },
	}
}

// JoinInstances merges transformed mesh instances into dst.
// Colors are emitted when any instance has vertex colors or a color
// override; bone data when any mesh is skinned or any BoneID is set.
func JoinInstances(dst *mesh.Mesh, instances []Instance) *mesh.Mesh {
	hasColors, hasBones := false, false
	for _, in := range instances {
		if in.Mesh == nil {
			continue
		}
		hasColors = hasColors || in.OverrideColor || in.Mesh.HasColors()
		hasBones = hasBones || in.BoneID != 0 || in.Mesh.HasBones()
	}
	return InstanceJoiner(hasColors, hasBones).Join(dst, instances)
}

package normals

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshkit/pkg/math"
)

// expand de-indexes a triangle list.
func expand(positions []float32, indices []uint32) []float32 {
	out := make([]float32, 0, len(indices)*3)
	for _, i := range indices {
		out = append(out, positions[i*3], positions[i*3+1], positions[i*3+2])
	}
	return out
}

// cube returns a closed unit cube as a plain triangle list, outward facing.
func cube() []float32 {
	return scaledCube(1)
}

// scaledCube returns a cube spanning [0, size] on every axis.
func scaledCube(size float32) []float32 {
	s := size
	p := []float32{
		0, 0, 0, s, 0, 0, s, s, 0, 0, s, 0,
		0, 0, s, s, 0, s, s, s, s, 0, s, s,
	}
	idx := []uint32{
		0, 2, 1, 0, 3, 2, // -z
		4, 5, 6, 4, 6, 7, // +z
		0, 1, 5, 0, 5, 4, // -y
		3, 7, 6, 3, 6, 2, // +y
		0, 4, 7, 0, 7, 3, // -x
		1, 2, 6, 1, 6, 5, // +x
	}
	return expand(p, idx)
}

func TestSmoothGroupsFlatPatchIsConsistent(t *testing.T) {
	positions, indices := flatPatch()
	flat := expand(positions, indices)

	normals := SmoothGroups(flat, nil, math32.Pi/3, 0.01, nil)
	require.Len(t, normals, len(flat))
	for v := 0; v < len(flat)/3; v++ {
		n := math.Vec3At(normals, v)
		assert.InDelta(t, 0, n.X, 1e-5, "vertex %d", v)
		assert.InDelta(t, 0, n.Y, 1e-5, "vertex %d", v)
		assert.InDelta(t, 1, n.Z, 1e-5, "vertex %d", v)
	}
}

func TestSmoothGroupsKeepsHardEdges(t *testing.T) {
	positions := cube()
	normals := SmoothGroups(positions, nil, math32.Pi/6, 0.01, nil)

	for tri := 0; tri < len(positions)/9; tri++ {
		v := tri * 3
		face := FlatNormal(math.Vec3At(positions, v), math.Vec3At(positions, v+1), math.Vec3At(positions, v+2))
		for c := 0; c < 3; c++ {
			n := math.Vec3At(normals, v+c)
			assert.InDelta(t, 1, n.Dot(face), 1e-5, "triangle %d corner %d", tri, c)
		}
	}
}

func assertFaceNormals(t *testing.T, positions, normals []float32) {
	t.Helper()
	for tri := 0; tri < len(positions)/9; tri++ {
		v := tri * 3
		face := FlatNormal(math.Vec3At(positions, v), math.Vec3At(positions, v+1), math.Vec3At(positions, v+2))
		for c := 0; c < 3; c++ {
			n := math.Vec3At(normals, v+c)
			assert.InDelta(t, 1, n.Dot(face), 1e-4, "triangle %d corner %d", tri, c)
		}
	}
}

func TestSmoothGroupsKeepsHardEdgesAtScale(t *testing.T) {
	tests := []struct {
		name string
		size float32
		h    float32
	}{
		{"half extent 100", 200, 1e-4},
		{"half extent 1000", 2000, 1e-4},
		{"unit cube without offset", 1, 0},
		{"large cube without offset", 2000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positions := scaledCube(tt.size)
			normals := SmoothGroups(positions, nil, math32.Pi/3, tt.h, nil)
			assertFaceNormals(t, positions, normals)
		})
	}
}

func TestSmoothGroupsBlendsWideAngleAtScale(t *testing.T) {
	positions := scaledCube(2000)
	normals := SmoothGroups(positions, nil, 100*math32.Pi/180, 0, nil)

	v := 30
	require.Equal(t, math.Vec3{X: 2000}, math.Vec3At(positions, v))
	n := math.Vec3At(normals, v)
	assert.InDelta(t, 1, n.Length(), 1e-5)
	assert.Greater(t, n.X, float32(0.3))
	assert.Less(t, n.Y, float32(-0.3))
	assert.Less(t, n.Z, float32(-0.3))
}

func TestSmoothGroupsBlendsWideAngle(t *testing.T) {
	positions := cube()
	normals := SmoothGroups(positions, nil, 100*math32.Pi/180, 0.01, nil)

	// first corner of the +x face sits at (1,0,0) touching -z, -y, +x
	v := 30
	require.Equal(t, math.Vec3{X: 1}, math.Vec3At(positions, v))
	n := math.Vec3At(normals, v)
	assert.InDelta(t, 1, n.Length(), 1e-5)
	assert.Greater(t, n.X, float32(0))
	assert.Less(t, n.Y, float32(0))
	assert.Less(t, n.Z, float32(0))
}

func TestSmoothGroupsZeroSmoothnessKeepsFlat(t *testing.T) {
	positions := cube()
	normals := SmoothGroups(positions, nil, 100*math32.Pi/180, 0.01, func(tri int) float32 {
		if tri >= 10 {
			return 0
		}
		return 1
	})

	// +x face triangles are 10 and 11
	for v := 30; v < 36; v++ {
		assert.Equal(t, math.Vec3{X: 1}, math.Vec3At(normals, v))
	}
}

func TestSmoothGroupsReusesDst(t *testing.T) {
	positions := cube()
	dst := make([]float32, len(positions), len(positions)+10)
	out := SmoothGroups(positions, dst, math32.Pi/6, 0.01, nil)
	assert.Same(t, &dst[0], &out[0])

	assert.Empty(t, SmoothGroups(nil, nil, 1, 0.01, nil))
}

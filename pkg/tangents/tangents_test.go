package tangents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshkit/pkg/math"
)

var (
	triPositions = []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	triNormals   = []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}
)

func TestTriangleAlignedUV(t *testing.T) {
	s, b, ok := Triangle(
		math.Vec3{}, math.Vec3{X: 1}, math.Vec3{Y: 1},
		math.Vec2{}, math.Vec2{X: 1}, math.Vec2{Y: 1},
	)
	require.True(t, ok)
	assert.Equal(t, math.Vec3{X: 1}, s)
	assert.Equal(t, math.Vec3{Y: 1}, b)
}

func TestTriangleDegenerateUV(t *testing.T) {
	_, _, ok := Triangle(
		math.Vec3{}, math.Vec3{X: 1}, math.Vec3{Y: 1},
		math.Vec2{X: 0.5, Y: 0.5}, math.Vec2{X: 0.5, Y: 0.5}, math.Vec2{X: 0.5, Y: 0.5},
	)
	assert.False(t, ok)

	// collinear uvs
	_, _, ok = Triangle(
		math.Vec3{}, math.Vec3{X: 1}, math.Vec3{Y: 1},
		math.Vec2{}, math.Vec2{X: 1}, math.Vec2{X: 2},
	)
	assert.False(t, ok)
}

func TestMirroredUVFlipsHandedness(t *testing.T) {
	uvs := []float32{0, 0, 1, 0, 0, 1}
	tangents := make([]float32, 12)
	ComputeIndexed(triPositions, triNormals, uvs, tangents, []uint32{0, 1, 2})
	for v := 0; v < 3; v++ {
		assert.Equal(t, []float32{1, 0, 0, 1}, tangents[v*4:v*4+4], "vertex %d", v)
	}

	mirrored := []float32{0, 0, -1, 0, 0, 1}
	clear(tangents)
	ComputeIndexed(triPositions, triNormals, mirrored, tangents, []uint32{0, 1, 2})
	for v := 0; v < 3; v++ {
		assert.Equal(t, []float32{-1, 0, 0, -1}, tangents[v*4:v*4+4], "vertex %d", v)
	}
}

func TestFinalizeOrthogonalizes(t *testing.T) {
	n := math.Vec3{Z: 1}
	tangent, w, ok := Finalize(n, math.Vec3{X: 2, Z: 5}, math.Vec3{Y: 1})
	require.True(t, ok)
	assert.Equal(t, math.Vec3{X: 1}, tangent)
	assert.Equal(t, float32(1), w)
}

func TestFinalizeNonFiniteIsRejected(t *testing.T) {
	n := math.Vec3{Z: 1}
	_, _, ok := Finalize(n, math.Vec3{Z: 3}, math.Vec3{Y: 1})
	assert.False(t, ok)
	_, _, ok = Finalize(n, math.Vec3{}, math.Vec3{})
	assert.False(t, ok)
}

func TestComputeIndexedLeavesUnreachedSlots(t *testing.T) {
	positions := append(append([]float32{}, triPositions...), 5, 5, 5)
	nors := append(append([]float32{}, triNormals...), 0, 0, 1)
	uvs := []float32{0, 0, 1, 0, 0, 1, 0, 0}
	tangents := make([]float32, 16)
	tangents[12], tangents[15] = 7, 7

	ComputeIndexed(positions, nors, uvs, tangents, []uint32{0, 1, 2})
	assert.Equal(t, []float32{7, 0, 0, 7}, tangents[12:16])
}

func TestComputeIndexedAccumulates(t *testing.T) {
	// quad in z=0 with u along x; the shared diagonal corners receive
	// two equal contributions
	positions := []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}
	nors := []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1}
	uvs := []float32{0, 0, 1, 0, 1, 1, 0, 1}
	tangents := make([]float32, 16)

	ComputeIndexed(positions, nors, uvs, tangents, []uint32{0, 1, 2, 0, 2, 3})
	for v := 0; v < 4; v++ {
		assert.InDeltaSlice(t, []float32{1, 0, 0, 1}, tangents[v*4:v*4+4], 1e-6, "vertex %d", v)
	}
}

func TestComputeNonIndexedOnlyInvalidWindows(t *testing.T) {
	positions := append(append([]float32{}, triPositions...), triPositions...)
	nors := append(append([]float32{}, triNormals...), triNormals...)
	uvs := []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1}
	tangents := []float32{
		0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, // valid, kept
		0, 0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, // first corner invalid
	}

	ComputeNonIndexed(positions, nors, uvs, tangents)

	assert.Equal(t, []float32{0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1}, tangents[:12])
	assert.Equal(t, []float32{1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1}, tangents[12:])
}

func TestCheck(t *testing.T) {
	uvs := []float32{0, 0, 1, 0, 0, 1}
	tangents := []float32{1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1}
	assert.False(t, Check(triPositions, triNormals, uvs, tangents, nil))

	tangents[4] = 0
	assert.True(t, Check(triPositions, triNormals, uvs, tangents, nil))
	assert.Equal(t, float32(1), tangents[4])
}

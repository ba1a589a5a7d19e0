package normals

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshkit/pkg/math"
)

func TestIsNormalValid(t *testing.T) {
	tests := []struct {
		name string
		n    math.Vec3
		want bool
	}{
		{"unit", math.Vec3{Z: 1}, true},
		{"zero", math.Vec3{}, false},
		{"slightly short", math.Vec3{Y: 0.85}, true},
		{"too short", math.Vec3{Y: 0.8}, false},
		{"slightly long", math.Vec3{X: 1.04}, true},
		{"too long", math.Vec3{X: 1.1}, false},
		{"nan", math.Vec3{X: math32.NaN()}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNormalValid(tt.n))
		})
	}
}

func TestNeedsComputation(t *testing.T) {
	assert.False(t, NeedsComputation([]float32{0, 0, 1, 0, 1, 0}, 3))
	assert.True(t, NeedsComputation([]float32{0, 0, 1, 0, 0, 0}, 3))
	// stride 4 skips the handedness component
	assert.False(t, NeedsComputation([]float32{1, 0, 0, -1, 0, 1, 0, 1}, 4))
	assert.True(t, NeedsComputation([]float32{1, 0, 0, 1, 0, 0, 0, 1}, 4))
	assert.False(t, NeedsComputation(nil, 3))
}

func TestFlatNormalSign(t *testing.T) {
	n := FlatNormal(math.Vec3{}, math.Vec3{X: 1}, math.Vec3{Y: 1})
	assert.Equal(t, math.Vec3{Z: 1}, n)

	// reversed winding flips it
	n = FlatNormal(math.Vec3{}, math.Vec3{Y: 1}, math.Vec3{X: 1})
	assert.Equal(t, math.Vec3{Z: -1}, n)
}

func TestFlatNormalDegenerate(t *testing.T) {
	p := math.Vec3{X: 1, Y: 2, Z: 3}
	assert.Equal(t, math.Vec3{}, FlatNormal(p, p, p))
	assert.Equal(t, math.Vec3{}, FlatNormal(math.Vec3{}, math.Vec3{X: 1}, math.Vec3{X: 2}))
}

// flatPatch builds a 2x2 patch in the z=0 plane fanned around an
// off-centre vertex, so vertex valences and triangle areas differ.
func flatPatch() ([]float32, []uint32) {
	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		2, 0, 0,
		0, 1, 0,
		0.3, 0.8, 0,
		2, 1, 0,
		0, 2, 0,
		1, 2, 0,
		2, 2, 0,
	}
	indices := []uint32{
		0, 1, 4, 1, 2, 4, 2, 5, 4, 5, 8, 4,
		8, 7, 4, 7, 6, 4, 6, 3, 4, 3, 0, 4,
	}
	return positions, indices
}

func TestSmoothIndexedFlatPatch(t *testing.T) {
	positions, indices := flatPatch()
	normals := make([]float32, len(positions))

	SmoothIndexed(positions, normals, indices)

	for v := 0; v < len(positions)/3; v++ {
		n := math.Vec3At(normals, v)
		assert.InDelta(t, 0, n.X, 1e-6, "vertex %d", v)
		assert.InDelta(t, 0, n.Y, 1e-6, "vertex %d", v)
		assert.InDelta(t, 1, n.Z, 1e-6, "vertex %d", v)
	}
}

func TestSmoothIndexedKeepsValidNormals(t *testing.T) {
	positions, indices := flatPatch()
	normals := make([]float32, len(positions))
	// vertex 2 carries a deliberately tilted but valid normal
	math.Vec3{X: 0.6, Z: 0.8}.Store(normals, 2)

	SmoothIndexed(positions, normals, indices)

	assert.Equal(t, math.Vec3{X: 0.6, Z: 0.8}, math.Vec3At(normals, 2))
	assert.InDelta(t, 1, math.Vec3At(normals, 4).Z, 1e-6)
}

func TestSmoothIndexedAveragesAcrossEdge(t *testing.T) {
	// two faces folded 90 degrees along the x axis
	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
	indices := []uint32{0, 1, 2, 0, 3, 1}
	normals := make([]float32, len(positions))

	SmoothIndexed(positions, normals, indices)

	shared := math.Vec3At(normals, 0)
	s := float32(1 / math32.Sqrt(2))
	assert.InDelta(t, 0, shared.X, 1e-6)
	assert.InDelta(t, s, shared.Y, 1e-6)
	assert.InDelta(t, s, shared.Z, 1e-6)

	// single-face vertices keep their face normal
	assert.Equal(t, math.Vec3{Z: 1}, math.Vec3At(normals, 2))
	assert.Equal(t, math.Vec3{Y: 1}, math.Vec3At(normals, 3))
}

func TestSmoothIndexedSkipsDegenerateAndOutOfRange(t *testing.T) {
	positions := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	normals := make([]float32, 9)
	indices := []uint32{0, 0, 0, 0, 1, 9, 0, 1, 2}

	SmoothIndexed(positions, normals, indices)

	for v := 0; v < 3; v++ {
		assert.Equal(t, math.Vec3{Z: 1}, math.Vec3At(normals, v))
	}
}

func TestFlatNonIndexed(t *testing.T) {
	positions := []float32{
		0, 0, 0, 1, 0, 0, 0, 1, 0,
		0, 0, 0, 0, 1, 0, 1, 0, 0,
	}
	normals := []float32{
		0, 0, 0, 0, 0, 1, 0, 0, 1,
		1, 0, 0, 1, 0, 0, 1, 0, 0, // valid, kept even though wrong
	}
	FlatNonIndexed(positions, normals)

	assert.Equal(t, []float32{
		0, 0, 1, 0, 0, 1, 0, 0, 1,
		1, 0, 0, 1, 0, 0, 1, 0, 0,
	}, normals)
}

func TestCheck(t *testing.T) {
	positions := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	normals := []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}
	assert.False(t, Check(positions, normals, nil))

	normals[5] = 0
	require.True(t, Check(positions, normals, nil))
	assert.Equal(t, float32(1), normals[5])
}

func BenchmarkSmoothIndexed(b *testing.B) {
	positions, indices := flatPatch()
	normals := make([]float32, len(positions))
	for b.Loop() {
		clear(normals)
		SmoothIndexed(positions, normals, indices)
	}
}

package spatialhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshkit/pkg/math"
)

func unitBox() math.Box3 {
	return math.NewBox3(math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1})
}

func TestGridCellSize(t *testing.T) {
	g := NewGrid(unitBox(), 0.01)
	assert.Equal(t, float32(0.01), g.CellSize())

	// Requested resolution finer than 21 bits can hold.
	huge := math.NewBox3(math.Vec3{}, math.Vec3{X: 1e6, Y: 1, Z: 1})
	g = NewGrid(huge, 1e-6)
	assert.InDelta(t, 1e6/float64(1<<AxisBits-5), g.CellSize(), 1e-3)
}

func TestHashPacking(t *testing.T) {
	g := NewGrid(math.NewBox3(math.Vec3{}, math.Vec3{X: 10, Y: 10, Z: 10}), 1)

	// origin is min - cell, so (0,0,0) sits in cell (1,1,1)
	k := g.Hash(0.5, 2.5, 4.5)
	assert.Equal(t, Key(1<<42|3<<21|5), k)
}

func TestHash8Corners(t *testing.T) {
	h0 := Key(7<<42 | 7<<21 | 7)
	want := []Key{
		h0,
		h0 + 1,
		h0 + 1<<21,
		h0 + 1<<21 + 1,
		h0 + 1<<42,
		h0 + 1<<42 + 1,
		h0 + 1<<42 + 1<<21,
		h0 + 1<<42 + 1<<21 + 1,
	}
	for i, w := range want {
		assert.Equal(t, w, Hash8(h0, i), "corner %d", i)
	}
}

func TestHashOutOfBoundsPanics(t *testing.T) {
	g := NewGrid(unitBox(), 0.1)
	assert.Panics(t, func() { g.Hash(-5, 0, 0) })
	assert.Panics(t, func() { g.Hash(0, 0, 1e9) })
	assert.NotPanics(t, func() { g.Hash(1, 1, 1) })
}

func TestFindWithinTolerance(t *testing.T) {
	const tol = float32(0.01)
	m := New[int](16, unitBox(), tol)

	points := []math.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 0.005, Y: 0.005, Z: 0.005}, // on a cell boundary after the shift
		{X: -0.73, Y: 0.31, Z: 0.999},
		{X: 0.12345, Y: -0.5, Z: 0.25},
	}
	offsets := []math.Vec3{
		{X: 0.0049, Y: 0, Z: 0},
		{X: -0.0049, Y: 0.0049, Z: -0.0049},
		{X: 0.001, Y: -0.002, Z: 0.003},
		{X: 1e-7, Y: 1e-7, Z: 1e-7},
	}

	for i, p := range points {
		m.Insert(p, i)
	}
	require.Equal(t, len(points), m.Len())

	for i, p := range points {
		for _, eps := range offsets {
			q := p.Add(eps)
			found := false
			m.Find(q, tol, func(_ math.Vec3, v *int) bool {
				if *v == i {
					found = true
					return false
				}
				return true
			})
			assert.True(t, found, "point %d not found from %v", i, q)
		}
	}
}

// Offsets between half a cell and a full cell are only seen when the query
// block happens to cover the stored point's cell.
func TestFindBeyondHalfCell(t *testing.T) {
	m := New[int](4, math.NewBox3(math.Vec3{}, math.Vec3{X: 10, Y: 10, Z: 10}), 1)
	p := math.Vec3{X: 2.1, Y: 2.1, Z: 2.1}
	m.Insert(p, 1)

	_, ok := m.Nearest(p.Add(math.Vec3{X: 0.8}), 1)
	assert.True(t, ok, "block above the point covers its cell")

	_, ok = m.Nearest(p.Sub(math.Vec3{X: 0.8}), 1)
	assert.False(t, ok, "block below the point misses its cell")

	_, ok = m.Nearest(p.Sub(math.Vec3{X: 0.45}), 1)
	assert.True(t, ok, "half a cell is always covered")
}

func TestFindRespectsRadius(t *testing.T) {
	m := New[string](4, unitBox(), 0.2)
	m.Insert(math.Vec3{}, "origin")

	var hits []string
	m.Find(math.Vec3{X: 0.09}, 0.05, func(_ math.Vec3, v *string) bool {
		hits = append(hits, *v)
		return true
	})
	assert.Empty(t, hits)

	m.Find(math.Vec3{X: 0.04}, 0.05, func(_ math.Vec3, v *string) bool {
		hits = append(hits, *v)
		return true
	})
	assert.Equal(t, []string{"origin"}, hits)
}

func TestNearestAndMutation(t *testing.T) {
	m := New[float32](4, unitBox(), 0.2)
	m.Insert(math.Vec3{X: 0.00}, 1)
	m.Insert(math.Vec3{X: 0.05}, 2)

	v, ok := m.Nearest(math.Vec3{X: 0.04}, 0.1)
	require.True(t, ok)
	assert.Equal(t, float32(2), *v)

	*v += 10
	v, ok = m.Nearest(math.Vec3{X: 0.05}, 0.01)
	require.True(t, ok)
	assert.Equal(t, float32(12), *v)

	_, ok = m.Nearest(math.Vec3{X: 0.9}, 0.1)
	assert.False(t, ok)
}

func BenchmarkInsertFind(b *testing.B) {
	m := New[int](1024, unitBox(), 0.001)
	p := math.Vec3{X: 0.1, Y: 0.2, Z: 0.3}
	for b.Loop() {
		m.Insert(p, 1)
		m.Find(p, 0.0005, func(math.Vec3, *int) bool { return false })
	}
}

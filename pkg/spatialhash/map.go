package spatialhash

import "github.com/Faultbox/meshkit/pkg/math"

type entry[V any] struct {
	pos   math.Vec3
	value V
}

// Map stores values at points and finds them again within a radius.
// Map is not safe for concurrent use.
type Map[V any] struct {
	grid    Grid
	buckets map[Key][]entry[V]
	size    int
}

// New creates a map for points inside bounds. Queries reliably see points
// up to half of minVertexDistance away on each axis, so callers searching a
// radius r should pass 2r.
func New[V any](capacity int, bounds math.Box3, minVertexDistance float32) *Map[V] {
	return &Map[V]{
		grid:    NewGrid(bounds, minVertexDistance),
		buckets: make(map[Key][]entry[V], capacity),
	}
}

// Grid returns the underlying grid.
func (m *Map[V]) Grid() Grid {
	return m.grid
}

// Len returns the number of inserted values.
func (m *Map[V]) Len() int {
	return m.size
}

// Insert stores v at p and returns a pointer to the stored value. The
// pointer stays valid until the next Insert into the same cell.
func (m *Map[V]) Insert(p math.Vec3, v V) *V {
	k := m.grid.HashPoint(p)
	bucket := append(m.buckets[k], entry[V]{pos: p, value: v})
	m.buckets[k] = bucket
	m.size++
	return &bucket[len(bucket)-1].value
}

// Find calls fn for every stored value within radius of p, in insertion
// order per cell. Returning false from fn stops the search.
func (m *Map[V]) Find(p math.Vec3, radius float32, fn func(pos math.Vec3, v *V) bool) {
	r2 := radius * radius
	h0 := m.grid.Hash0(p)
	for i := 0; i < 8; i++ {
		bucket := m.buckets[Hash8(h0, i)]
		for j := range bucket {
			e := &bucket[j]
			if e.pos.DistanceSq(p) > r2 {
				continue
			}
			if !fn(e.pos, &e.value) {
				return
			}
		}
	}
}

// Nearest returns the closest stored value within radius of p.
func (m *Map[V]) Nearest(p math.Vec3, radius float32) (*V, bool) {
	var best *V
	var bestD float32
	m.Find(p, radius, func(pos math.Vec3, v *V) bool {
		if d := pos.DistanceSq(p); best == nil || d < bestD {
			best, bestD = v, d
		}
		return true
	})
	return best, best != nil
}

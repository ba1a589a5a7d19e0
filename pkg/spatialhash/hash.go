// Package spatialhash quantizes points into a uniform grid packed into a
// 63-bit key and looks up neighbours within a tolerance.
//
// A point is inserted once under its own cell key. Queries visit the eight
// cells of the 2x2x2 block around the query's half-cell shifted corner, so a
// neighbour within half a cell on every axis is found no matter which side
// of a cell boundary either point rounded to.
package spatialhash

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/meshkit/pkg/math"
)

const (
	// AxisBits is the number of bits per packed grid coordinate.
	AxisBits = 21

	axisLimit  = 1<<AxisBits - 1
	axisMargin = 5

	yShift = AxisBits
	xShift = 2 * AxisBits
)

// Key is a packed grid coordinate: gx<<42 | gy<<21 | gz.
type Key int64

// Grid maps points inside a bounding box to cell keys.
type Grid struct {
	cellSize float32
	scale    float32
	origin   math.Vec3
}

// NewGrid creates a grid over bounds whose cells are at least
// minVertexDistance wide. The cell size is raised when the box is too large
// to fit 21 bits per axis at the requested resolution.
func NewGrid(bounds math.Box3, minVertexDistance float32) Grid {
	cell := math32.Max(bounds.MaxExtent()/float32(1<<AxisBits-axisMargin), minVertexDistance)
	if !(cell > 0) || math32.IsInf(cell, 0) {
		panic(fmt.Sprintf("spatialhash: invalid cell size %v for bounds %v", cell, bounds))
	}
	return Grid{
		cellSize: cell,
		scale:    1 / cell,
		origin:   bounds.Min.Sub(math.Vec3{X: cell, Y: cell, Z: cell}),
	}
}

// CellSize returns the edge length of one grid cell.
func (g Grid) CellSize() float32 {
	return g.cellSize
}

// Hash returns the key of the cell containing (x, y, z).
// It panics if the point lies outside the grid bounds.
func (g Grid) Hash(x, y, z float32) Key {
	gx := g.axis(x, g.origin.X, 'x')
	gy := g.axis(y, g.origin.Y, 'y')
	gz := g.axis(z, g.origin.Z, 'z')
	return Key(gx<<xShift | gy<<yShift | gz)
}

// HashPoint is Hash for a vector.
func (g Grid) HashPoint(p math.Vec3) Key {
	return g.Hash(p.X, p.Y, p.Z)
}

// Hash0 returns the lower corner key of the 2x2x2 query block around p.
func (g Grid) Hash0(p math.Vec3) Key {
	h := g.cellSize * 0.5
	return g.Hash(p.X-h, p.Y-h, p.Z-h)
}

// Hash8 returns the i-th corner (0..7) of the block whose lower corner is h0.
// Bit 0 steps along z, bit 1 along y and bit 2 along x.
func Hash8(h0 Key, i int) Key {
	return h0 + Key(i&1) + Key((i>>1)&1)<<yShift + Key((i>>2)&1)<<xShift
}

func (g Grid) axis(v, origin float32, name byte) int64 {
	f := math32.Floor((v - origin) * g.scale)
	if !(f >= 0 && f < axisLimit) {
		panic(fmt.Sprintf("spatialhash: %c coordinate %v outside grid (cell %v, origin %v)",
			name, v, g.cellSize, origin))
	}
	return int64(f)
}

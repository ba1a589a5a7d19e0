// Package sdf bakes triangle meshes into approximate signed distance fields
// sampled on a regular voxel grid.
//
// Values are negative inside the surface. Voxels the bake never reaches
// hold +Inf.
package sdf

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/meshkit/pkg/math"
)

// Errors returned by NewGrid and Bake.
var (
	ErrResolution = errors.New("sdf: grid needs at least 2 samples per axis")
	ErrBounds     = errors.New("sdf: bounds must have positive extent on every axis")
)

// Grid is a dense voxel array. Voxel (0,0,0) sits on Bounds.Min and voxel
// Size-1 on Bounds.Max. Values are stored x fastest, then y, then z.
type Grid struct {
	Size   [3]int
	Bounds math.Box3
	Values []float32
}

// NewGrid allocates a grid with every voxel set to +Inf.
func NewGrid(bounds math.Box3, size [3]int) (*Grid, error) {
	for axis, n := range size {
		if n < 2 {
			return nil, fmt.Errorf("%w: axis %d has %d", ErrResolution, axis, n)
		}
	}
	if ext := bounds.Size(); !(ext.X > 0 && ext.Y > 0 && ext.Z > 0) {
		return nil, fmt.Errorf("%w: %v", ErrBounds, ext)
	}
	g := &Grid{
		Size:   size,
		Bounds: bounds,
		Values: make([]float32, size[0]*size[1]*size[2]),
	}
	inf := math32.Inf(1)
	for i := range g.Values {
		g.Values[i] = inf
	}
	return g, nil
}

// Index returns the offset of voxel (x, y, z) in Values.
func (g *Grid) Index(x, y, z int) int {
	return x + g.Size[0]*(y+g.Size[1]*z)
}

// At returns the value of voxel (x, y, z).
func (g *Grid) At(x, y, z int) float32 {
	return g.Values[g.Index(x, y, z)]
}

// InRange reports whether (x, y, z) is a voxel of the grid.
func (g *Grid) InRange(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < g.Size[0] && y < g.Size[1] && z < g.Size[2]
}

// CellSize returns the voxel spacing per axis.
func (g *Grid) CellSize() math.Vec3 {
	s := g.Bounds.Size()
	return math.Vec3{
		X: s.X / float32(g.Size[0]-1),
		Y: s.Y / float32(g.Size[1]-1),
		Z: s.Z / float32(g.Size[2]-1),
	}
}

// Position returns the world position of voxel (x, y, z).
func (g *Grid) Position(x, y, z int) math.Vec3 {
	c := g.CellSize()
	return g.Bounds.Min.Add(math.Vec3{X: float32(x) * c.X, Y: float32(y) * c.Y, Z: float32(z) * c.Z})
}

// ToGrid maps a world position to continuous voxel coordinates.
func (g *Grid) ToGrid(p math.Vec3) math.Vec3 {
	c := g.CellSize()
	d := p.Sub(g.Bounds.Min)
	return math.Vec3{X: d.X / c.X, Y: d.Y / c.Y, Z: d.Z / c.Z}
}

// Range returns the smallest and largest finite value.
// ok is false when no voxel is finite.
func (g *Grid) Range() (lo, hi float32, ok bool) {
	lo, hi = math32.Inf(1), math32.Inf(-1)
	for _, v := range g.Values {
		if math32.IsInf(v, 0) || math32.IsNaN(v) {
			continue
		}
		lo = math32.Min(lo, v)
		hi = math32.Max(hi, v)
		ok = true
	}
	return lo, hi, ok
}

// Slice is a 2D cut through a grid, stored row by row.
type Slice struct {
	Width, Height int
	Values        []float32
}

// At returns the value at column x, row y.
func (s *Slice) At(x, y int) float32 {
	return s.Values[x+y*s.Width]
}

// Slice cuts the grid perpendicular to axis (0=x, 1=y, 2=z) at voxel i.
// The remaining axes keep their order: an x slice spans (y, z), a y slice
// (x, z) and a z slice (x, y).
func (g *Grid) Slice(axis, i int) (Slice, error) {
	if axis < 0 || axis > 2 {
		return Slice{}, fmt.Errorf("sdf: invalid slice axis %d", axis)
	}
	if i < 0 || i >= g.Size[axis] {
		return Slice{}, fmt.Errorf("sdf: slice %d outside axis %d of size %d", i, axis, g.Size[axis])
	}
	ua, va := (axis+1)%3, (axis+2)%3
	if ua > va {
		ua, va = va, ua
	}
	s := Slice{Width: g.Size[ua], Height: g.Size[va]}
	s.Values = make([]float32, s.Width*s.Height)
	var c [3]int
	c[axis] = i
	for v := 0; v < s.Height; v++ {
		c[va] = v
		for u := 0; u < s.Width; u++ {
			c[ua] = u
			s.Values[u+v*s.Width] = g.At(c[0], c[1], c[2])
		}
	}
	return s, nil
}

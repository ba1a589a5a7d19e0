package sdf

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/mesh"
	"github.com/Faultbox/meshkit/pkg/normals"
)

// FillMode selects how far Bake propagates values into untouched voxels.
type FillMode uint8

const (
	// FillRing extends the band by one voxel.
	FillRing FillMode = iota
	// FillConverge repeats the fill until every reachable voxel is finite.
	FillConverge
	// FillNone leaves untouched voxels at +Inf.
	FillNone
)

var fillModeNames = [...]string{
	FillRing:     "ring",
	FillConverge: "converge",
	FillNone:     "none",
}

func (f FillMode) String() string {
	if int(f) < len(fillModeNames) {
		return fillModeNames[f]
	}
	return fmt.Sprintf("FillMode(%d)", f)
}

// ParseFillMode maps "ring", "converge" or "none" to a FillMode.
func ParseFillMode(s string) (FillMode, error) {
	for i, name := range fillModeNames {
		if name == s {
			return FillMode(i), nil
		}
	}
	return FillRing, fmt.Errorf("sdf: unknown fill mode %q", s)
}

// Options controls the passes that follow rasterization.
type Options struct {
	Smooth bool
	Fill   FillMode
}

// insideEps widens the rasterizer's coverage test so cells exactly on a
// shared edge are claimed by both triangles.
const insideEps = 1e-4

// neighbourhood lists the 27 offsets of a 3x3x3 block.
var neighbourhood = func() (out [27][3]int) {
	i := 0
	for z := -1; z <= 1; z++ {
		for y := -1; y <= 1; y++ {
			for x := -1; x <= 1; x++ {
				out[i] = [3]int{x, y, z}
				i++
			}
		}
	}
	return out
}()

var faceNeighbours = [6][3]int{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// Bake samples the signed distance to m's triangles on a size[0] x size[1]
// x size[2] grid spanning bounds.
//
// Each voxel near a triangle receives the signed distance to the
// triangle's plane, positive on the side its normal faces. Where several
// triangles reach one voxel, the value closer to zero wins if both agree in
// sign and the negative one wins otherwise.
func Bake(m *mesh.Mesh, bounds math.Box3, size [3]int, opts Options) (*Grid, error) {
	g, err := NewGrid(bounds, size)
	if err != nil {
		return nil, err
	}
	g.Rasterize(m)
	if opts.Smooth {
		g.Smooth()
	}
	switch opts.Fill {
	case FillRing:
		g.FloodFill()
	case FillConverge:
		for g.FloodFill() > 0 {
		}
	}
	return g, nil
}

// Rasterize merges the plane distances of every triangle of m into g.
func (g *Grid) Rasterize(m *mesh.Mesh) {
	var primaries [][3]int
	m.ForEachTriangle(func(a, b, c math.Vec3) bool {
		primaries = g.rasterizeTriangle(a, b, c, primaries[:0])
		return true
	})
}

func (g *Grid) rasterizeTriangle(a, b, c math.Vec3, primaries [][3]int) [][3]int {
	n := normals.FlatNormal(a, b, c)
	if n == (math.Vec3{}) {
		return primaries
	}
	offset := n.Dot(a)

	ga, gb, gc := g.ToGrid(a), g.ToGrid(b), g.ToGrid(c)
	gn := normals.FaceCross(ga, gb, gc)
	axis := dominantAxis(gn)
	ua, va := (axis+1)%3, (axis+2)%3
	gnArr := vecArr(gn)
	if gnArr[axis] == 0 {
		return primaries
	}
	planeD := gn.Dot(ga)

	pa := math.Vec2{X: vecArr(ga)[ua], Y: vecArr(ga)[va]}
	pb := math.Vec2{X: vecArr(gb)[ua], Y: vecArr(gb)[va]}
	pc := math.Vec2{X: vecArr(gc)[ua], Y: vecArr(gc)[va]}

	u0 := max(0, int(math32.Floor(math32.Min(pa.X, math32.Min(pb.X, pc.X)))))
	u1 := min(g.Size[ua]-1, int(math32.Ceil(math32.Max(pa.X, math32.Max(pb.X, pc.X)))))
	v0 := max(0, int(math32.Floor(math32.Min(pa.Y, math32.Min(pb.Y, pc.Y)))))
	v1 := min(g.Size[va]-1, int(math32.Ceil(math32.Max(pa.Y, math32.Max(pb.Y, pc.Y)))))

	for v := v0; v <= v1; v++ {
		for u := u0; u <= u1; u++ {
			if !InsideTriangle(pa, pb, pc, math.Vec2{X: float32(u), Y: float32(v)}, insideEps) {
				continue
			}
			depth := (planeD - gnArr[ua]*float32(u) - gnArr[va]*float32(v)) / gnArr[axis]
			var cell [3]int
			cell[ua], cell[va], cell[axis] = u, v, int(math32.Round(depth))
			primaries = append(primaries, cell)
		}
	}
	for _, p := range [3]math.Vec3{ga, gb, gc} {
		primaries = append(primaries, [3]int{
			int(math32.Round(p.X)), int(math32.Round(p.Y)), int(math32.Round(p.Z)),
		})
	}

	for _, p := range primaries {
		for _, o := range neighbourhood {
			x, y, z := p[0]+o[0], p[1]+o[1], p[2]+o[2]
			if !g.InRange(x, y, z) {
				continue
			}
			i := g.Index(x, y, z)
			g.Values[i] = absMin(g.Values[i], n.Dot(g.Position(x, y, z))-offset)
		}
	}
	return primaries
}

// absMin merges two signed distances: the smaller magnitude when the signs
// agree, the smaller value when they do not.
func absMin(a, b float32) float32 {
	if (a < 0) == (b < 0) {
		if math32.Abs(b) < math32.Abs(a) {
			return b
		}
		return a
	}
	return math32.Min(a, b)
}

func dominantAxis(n math.Vec3) int {
	ax, ay, az := math32.Abs(n.X), math32.Abs(n.Y), math32.Abs(n.Z)
	switch {
	case ax >= ay && ax >= az:
		return 0
	case ay >= az:
		return 1
	default:
		return 2
	}
}

func vecArr(v math.Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Smooth replaces every finite interior voxel by the mean of the finite
// voxels in its 3x3x3 block. Border voxels keep their values. All voxels
// read the values from before the pass.
func (g *Grid) Smooth() {
	src := make([]float32, len(g.Values))
	copy(src, g.Values)
	for z := 1; z < g.Size[2]-1; z++ {
		for y := 1; y < g.Size[1]-1; y++ {
			for x := 1; x < g.Size[0]-1; x++ {
				i := g.Index(x, y, z)
				if math32.IsInf(src[i], 0) {
					continue
				}
				var sum float32
				var count int
				for _, o := range neighbourhood {
					if v := src[g.Index(x+o[0], y+o[1], z+o[2])]; !math32.IsInf(v, 0) {
						sum += v
						count++
					}
				}
				g.Values[i] = sum / float32(count)
			}
		}
	}
}

// FloodFill copies every finite voxel into its still infinite face
// neighbours, moved one cell further from zero. Voxels filled in this pass
// do not spread further in the same pass, and the first voxel to reach a
// neighbour decides its value. FloodFill returns the number of voxels it
// filled.
func (g *Grid) FloodFill() int {
	cell := g.CellSize()
	steps := [3]float32{cell.X, cell.Y, cell.Z}
	filled := make([]bool, len(g.Values))
	count := 0
	for z := 0; z < g.Size[2]; z++ {
		for y := 0; y < g.Size[1]; y++ {
			for x := 0; x < g.Size[0]; x++ {
				i := g.Index(x, y, z)
				v := g.Values[i]
				if filled[i] || math32.IsInf(v, 0) {
					continue
				}
				sign := float32(1)
				if v < 0 {
					sign = -1
				}
				for k, o := range faceNeighbours {
					nx, ny, nz := x+o[0], y+o[1], z+o[2]
					if !g.InRange(nx, ny, nz) {
						continue
					}
					j := g.Index(nx, ny, nz)
					if !math32.IsInf(g.Values[j], 1) {
						continue
					}
					g.Values[j] = v + sign*steps[k/2]
					filled[j] = true
					count++
				}
			}
		}
	}
	return count
}

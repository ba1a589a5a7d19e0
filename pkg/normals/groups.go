package normals

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/spatialhash"
)

// parallelCos is the cosine above which two face normals join one cluster
// in the first pass.
const parallelCos = 0.99

// minProbeScale is the smallest probe offset relative to the mesh extent.
// Smaller offsets drown in float32 rounding at the corner positions.
const minProbeScale = 1e-4

// cluster accumulates weighted face normals around one probe point.
type cluster struct {
	sum math.Vec3
}

// SmoothGroups computes smooth normals for a plain (non-indexed) triangle
// list whose duplicated corners share no indices.
//
// Every corner is probed at p + h*n, where n is its face normal and h is
// minVertexDistance, raised to at least 1e-4 of the mesh extent. Two faces
// meeting at p at angle a produce probes 2h*sin(a/2) apart, so gathering
// clusters within that chord for maxAngle smooths across edges up to
// maxAngle and keeps sharper edges hard.
//
// smoothness scales the contribution of each triangle; a triangle for which
// it returns 0 keeps its flat normal. A nil smoothness treats every
// triangle as fully smooth.
//
// The result is written to dst, which is grown to len(positions) if needed,
// and returned.
func SmoothGroups(positions, dst []float32, maxAngle, minVertexDistance float32,
	smoothness func(tri int) float32) []float32 {
	numTris := len(positions) / 9
	if cap(dst) < len(positions) {
		dst = make([]float32, len(positions))
	}
	dst = dst[:len(positions)]
	if numTris == 0 {
		return dst
	}
	if smoothness == nil {
		smoothness = func(int) float32 { return 1 }
	}

	bounds := math.BoundsOf(positions[:numTris*9])
	extent := bounds.MaxExtent()
	h := math32.Max(minVertexDistance, extent*minProbeScale)
	if !(h > 0) {
		h = minProbeScale
	}
	dc, ds := math32.Cos(maxAngle)-1, math32.Sin(maxAngle)
	maxD := h * math32.Sqrt(dc*dc+ds*ds)
	// exact absorbs rounding only; it stays far below the probe chord.
	exact := math32.Min(math32.Max(extent, h)*1e-6, maxD*0.05)

	tolerance := 2 * (maxD + exact)
	clusters := spatialhash.New[cluster](numTris*3, bounds.AddMargin(h*1.01+tolerance), tolerance)

	faces := make([]math.Vec3, numTris)
	weights := make([]float32, numTris)
	for t := range faces {
		v := t * 3
		cross := FaceCross(math.Vec3At(positions, v), math.Vec3At(positions, v+1), math.Vec3At(positions, v+2))
		faces[t] = cross.Normalize()
		weights[t] = cross.Length() * smoothness(t)
	}

	for t, n := range faces {
		w := weights[t]
		if w <= 0 || n == (math.Vec3{}) {
			continue
		}
		contribution := n.Scale(w)
		for c := 0; c < 3; c++ {
			probe := math.Vec3At(positions, t*3+c).Add(n.Scale(h))
			var best *cluster
			var bestD float32
			clusters.Find(probe, maxD+exact, func(pos math.Vec3, cl *cluster) bool {
				if cl.sum.Normalize().Dot(n) <= parallelCos {
					return true
				}
				if d := pos.DistanceSq(probe); best == nil || d < bestD {
					best, bestD = cl, d
				}
				return true
			})
			if best != nil {
				best.sum = best.sum.Add(contribution)
				continue
			}
			clusters.Insert(probe, cluster{sum: contribution})
		}
	}

	for t, n := range faces {
		for c := 0; c < 3; c++ {
			v := t*3 + c
			if weights[t] <= 0 || n == (math.Vec3{}) {
				n.Store(dst, v)
				continue
			}
			probe := math.Vec3At(positions, v).Add(n.Scale(h))
			var sum math.Vec3
			clusters.Find(probe, maxD+exact, func(_ math.Vec3, cl *cluster) bool {
				sum = sum.Add(cl.sum)
				return true
			})
			if smooth := sum.Normalize(); smooth != (math.Vec3{}) {
				smooth.Store(dst, v)
			} else {
				n.Store(dst, v)
			}
		}
	}
	return dst
}

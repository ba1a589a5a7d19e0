// Package normals reconstructs per-vertex normals for triangle meshes.
package normals

import (
	"github.com/Faultbox/meshkit/pkg/math"
)

// Squared-length window inside which a stored normal is kept as is.
const (
	MinValidLengthSq = 0.7
	MaxValidLengthSq = 1.1
)

// IsNormalValid reports whether n is close enough to unit length to keep.
// The window is loose on purpose: mildly denormalized data is not recomputed.
func IsNormalValid(n math.Vec3) bool {
	l := n.LengthSq()
	return l >= MinValidLengthSq && l <= MaxValidLengthSq
}

// NeedsComputation reports whether any vertex in values fails
// IsNormalValid. The first three floats of every stride-wide tuple are
// checked, so the same test serves normals (stride 3) and tangents (stride 4).
func NeedsComputation(values []float32, stride int) bool {
	for i := 0; i+2 < len(values); i += stride {
		if !IsNormalValid(math.Vec3{X: values[i], Y: values[i+1], Z: values[i+2]}) {
			return true
		}
	}
	return false
}

// FaceCross returns (b-a) x (c-a), whose length is twice the triangle area.
func FaceCross(a, b, c math.Vec3) math.Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}

// FlatNormal returns the unit face normal of a counter-clockwise triangle,
// or the zero vector when the triangle has no area.
func FlatNormal(a, b, c math.Vec3) math.Vec3 {
	return FaceCross(a, b, c).Normalize()
}

// SmoothIndexed averages face normals into every vertex whose stored normal
// is invalid. Valid normals are left untouched. Triangles are visited in
// index order and those referencing a vertex outside the arrays are skipped.
func SmoothIndexed(positions, normals []float32, indices []uint32) {
	n := min(len(positions), len(normals)) / 3
	if n == 0 {
		return
	}

	// -1 marks a vertex that keeps its normal
	weights := make([]int32, n)
	for v := 0; v < n; v++ {
		if IsNormalValid(math.Vec3At(normals, v)) {
			weights[v] = -1
		} else {
			math.Vec3{}.Store(normals, v)
		}
	}

	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := int(indices[t]), int(indices[t+1]), int(indices[t+2])
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		if weights[i0] < 0 && weights[i1] < 0 && weights[i2] < 0 {
			continue
		}
		face := FlatNormal(math.Vec3At(positions, i0), math.Vec3At(positions, i1), math.Vec3At(positions, i2))
		if face == (math.Vec3{}) {
			continue
		}
		for _, v := range [3]int{i0, i1, i2} {
			if weights[v] < 0 {
				continue
			}
			math.Vec3At(normals, v).Add(face).Store(normals, v)
			weights[v]++
		}
	}

	for v, w := range weights {
		if w > 1 {
			math.Vec3At(normals, v).Normalize().Store(normals, v)
		}
	}
}

// FlatNonIndexed processes a plain triangle list three vertices at a time.
// When any corner of a triangle has an invalid normal, the face normal is
// written to all three corners.
func FlatNonIndexed(positions, normals []float32) {
	n := min(len(positions), len(normals))
	for i := 0; i+9 <= n; i += 9 {
		v := i / 3
		if IsNormalValid(math.Vec3At(normals, v)) &&
			IsNormalValid(math.Vec3At(normals, v+1)) &&
			IsNormalValid(math.Vec3At(normals, v+2)) {
			continue
		}
		face := FlatNormal(math.Vec3At(positions, v), math.Vec3At(positions, v+1), math.Vec3At(positions, v+2))
		face.Store(normals, v)
		face.Store(normals, v+1)
		face.Store(normals, v+2)
	}
}

// Check recomputes normals when any stored normal is invalid, smoothing
// across shared vertices when indices are given and flat-shading otherwise.
// It reports whether anything was recomputed.
func Check(positions, normals []float32, indices []uint32) bool {
	if !NeedsComputation(normals[:min(len(normals), len(positions))], 3) {
		return false
	}
	if indices != nil {
		SmoothIndexed(positions, normals, indices)
	} else {
		FlatNonIndexed(positions, normals)
	}
	return true
}

// Package tangents builds per-vertex tangent frames from positions,
// normals and texture coordinates.
//
// Tangents are stored as 4 floats per vertex. The fourth component is the
// handedness: the bitangent is cross(normal, tangent) * w.
package tangents

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshkit/pkg/math"
	"github.com/Faultbox/meshkit/pkg/normals"
)

// DegenerateDet is the smallest UV-space determinant a triangle may have
// and still contribute.
const DegenerateDet = 1e-16

// Triangle solves for the tangent s and bitangent t of one triangle.
// ok is false when the UV mapping of the triangle is degenerate.
func Triangle(p0, p1, p2 math.Vec3, uv0, uv1, uv2 math.Vec2) (s, t math.Vec3, ok bool) {
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	d1 := uv1.Sub(uv0)
	d2 := uv2.Sub(uv0)

	det := d1.X*d2.Y - d2.X*d1.Y
	if math32.Abs(det) < DegenerateDet {
		return math.Vec3{}, math.Vec3{}, false
	}
	r := 1 / det
	s = e1.Scale(d2.Y).Sub(e2.Scale(d1.Y)).Scale(r)
	t = e2.Scale(d1.X).Sub(e1.Scale(d2.X)).Scale(r)
	return s, t, true
}

// Finalize orthogonalizes s against the unit normal n and returns the
// tangent with its handedness sign. ok is false when the result is not
// finite, e.g. when s is zero or parallel to n.
func Finalize(n, s, t math.Vec3) (tangent math.Vec3, w float32, ok bool) {
	v := s.Sub(n.Scale(n.Dot(s)))
	tangent = v.Scale(1 / v.Length())
	if !tangent.IsFinite() {
		return math.Vec3{}, 0, false
	}
	w = 1
	if n.Cross(tangent).Dot(t) < 0 {
		w = -1
	}
	return tangent, w, true
}

func store(dst []float32, i int, tangent math.Vec3, w float32) {
	i4 := i * 4
	dst[i4] = tangent.X
	dst[i4+1] = tangent.Y
	dst[i4+2] = tangent.Z
	dst[i4+3] = w
}

func tangentAt(values []float32, i int) math.Vec3 {
	i4 := i * 4
	return math.Vec3{X: values[i4], Y: values[i4+1], Z: values[i4+2]}
}

func vertexLimit(positions, nors, uvs, tangents []float32) int {
	return min(len(positions)/3, len(nors)/3, len(uvs)/2, len(tangents)/4)
}

// ComputeIndexed accumulates tangents over all triangles sharing a vertex
// and writes the finalized frame of every vertex that received a finite
// result. Other slots are left unchanged.
func ComputeIndexed(positions, nors, uvs, tangents []float32, indices []uint32) {
	n := vertexLimit(positions, nors, uvs, tangents)
	if n == 0 {
		return
	}
	sums := make([]math.Vec3, n)
	bis := make([]math.Vec3, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		s, t, ok := Triangle(
			math.Vec3At(positions, i0), math.Vec3At(positions, i1), math.Vec3At(positions, i2),
			math.Vec2At(uvs, i0), math.Vec2At(uvs, i1), math.Vec2At(uvs, i2),
		)
		if !ok {
			continue
		}
		for _, v := range [3]int{i0, i1, i2} {
			sums[v] = sums[v].Add(s)
			bis[v] = bis[v].Add(t)
		}
	}

	for v := 0; v < n; v++ {
		if tangent, w, ok := Finalize(math.Vec3At(nors, v), sums[v], bis[v]); ok {
			store(tangents, v, tangent, w)
		}
	}
}

// ComputeNonIndexed walks a plain triangle list and recomputes the
// tangents of every triangle with at least one invalid tangent.
func ComputeNonIndexed(positions, nors, uvs, tangents []float32) {
	n := vertexLimit(positions, nors, uvs, tangents)
	for v := 0; v+3 <= n; v += 3 {
		if normals.IsNormalValid(tangentAt(tangents, v)) &&
			normals.IsNormalValid(tangentAt(tangents, v+1)) &&
			normals.IsNormalValid(tangentAt(tangents, v+2)) {
			continue
		}
		s, t, ok := Triangle(
			math.Vec3At(positions, v), math.Vec3At(positions, v+1), math.Vec3At(positions, v+2),
			math.Vec2At(uvs, v), math.Vec2At(uvs, v+1), math.Vec2At(uvs, v+2),
		)
		if !ok {
			continue
		}
		for c := v; c < v+3; c++ {
			if tangent, w, ok := Finalize(math.Vec3At(nors, c), s, t); ok {
				store(tangents, c, tangent, w)
			}
		}
	}
}

// Check recomputes tangents when any stored tangent is invalid and reports
// whether it did.
func Check(positions, nors, uvs, tangents []float32, indices []uint32) bool {
	if !normals.NeedsComputation(tangents, 4) {
		return false
	}
	if indices != nil {
		ComputeIndexed(positions, nors, uvs, tangents, indices)
	} else {
		ComputeNonIndexed(positions, nors, uvs, tangents)
	}
	return true
}

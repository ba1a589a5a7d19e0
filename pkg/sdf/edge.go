package sdf

import "github.com/Faultbox/meshkit/pkg/math"

// EdgeSide returns twice the signed area of (a, b, p): positive when p lies
// left of the directed edge a->b, negative when right, zero on the line.
func EdgeSide(a, b, p math.Vec2) float32 {
	return b.Sub(a).Cross(p.Sub(a))
}

// InsideTriangle reports whether p lies inside or within eps of the
// boundary of triangle abc, for either winding.
func InsideTriangle(a, b, c, p math.Vec2, eps float32) bool {
	e0 := EdgeSide(a, b, p)
	e1 := EdgeSide(b, c, p)
	e2 := EdgeSide(c, a, p)
	return (e0 >= -eps && e1 >= -eps && e2 >= -eps) ||
		(e0 <= eps && e1 <= eps && e2 <= eps)
}

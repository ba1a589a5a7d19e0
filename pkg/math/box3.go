package math

import "github.com/chewxy/math32"

// Box3 is an axis-aligned bounding box.
type Box3 struct {
	Min Vec3
	Max Vec3
}

// EmptyBox returns an inverted box that any point expands.
func EmptyBox() Box3 {
	inf := math32.Inf(1)
	return Box3{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// NewBox3 returns the box spanning min and max.
func NewBox3(min, max Vec3) Box3 {
	return Box3{Min: min, Max: max}
}

// BoundsOf returns the bounds of a packed xyz array.
func BoundsOf(positions []float32) Box3 {
	b := EmptyBox()
	for i := 0; i+2 < len(positions); i += 3 {
		b = b.Union(Vec3{positions[i], positions[i+1], positions[i+2]})
	}
	return b
}

// IsEmpty reports whether the box contains no point.
func (b Box3) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Union returns the box grown to contain p.
func (b Box3) Union(p Vec3) Box3 {
	return Box3{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// UnionBox returns the box grown to contain other.
func (b Box3) UnionBox(other Box3) Box3 {
	if other.IsEmpty() {
		return b
	}
	return Box3{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// AddMargin grows the box by m on every side.
func (b Box3) AddMargin(m float32) Box3 {
	d := Vec3{m, m, m}
	return Box3{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// Size returns the extent along each axis.
func (b Box3) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the box center.
func (b Box3) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// MaxExtent returns the largest side length.
func (b Box3) MaxExtent() float32 {
	return b.Size().MaxComponent()
}

// Contains reports whether p lies inside or on the box.
func (b Box3) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

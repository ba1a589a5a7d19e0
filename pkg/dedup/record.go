// Package dedup merges vertices whose attributes are bit-for-bit identical.
//
// Equality is exact. Tolerance-based merging lives in the spatialhash
// package and never shares code with this one.
package dedup

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

// VertexRecord is the full attribute tuple of one source vertex.
type VertexRecord struct {
	Position    [3]float32
	UV          [2]float32
	Color       uint32
	Material    int32
	BoneIndices [4]uint8
	BoneWeights [4]float32

	hash uint64
}

// NewVertexRecord builds a record and caches its hash.
func NewVertexRecord(position [3]float32, uv [2]float32, color uint32, material int32,
	boneIndices [4]uint8, boneWeights [4]float32) VertexRecord {
	r := VertexRecord{
		Position:    position,
		UV:          uv,
		Color:       color,
		Material:    material,
		BoneIndices: boneIndices,
		BoneWeights: boneWeights,
	}
	r.hash = r.computeHash()
	return r
}

// Hash returns the cached hash.
func (r *VertexRecord) Hash() uint64 {
	return r.hash
}

// Equal compares every field bit for bit, so -0 and +0 differ and a NaN
// equals an identical NaN.
func (r *VertexRecord) Equal(o *VertexRecord) bool {
	if r.hash != o.hash || r.Color != o.Color || r.Material != o.Material ||
		r.BoneIndices != o.BoneIndices {
		return false
	}
	for i := range r.Position {
		if math.Float32bits(r.Position[i]) != math.Float32bits(o.Position[i]) {
			return false
		}
	}
	for i := range r.UV {
		if math.Float32bits(r.UV[i]) != math.Float32bits(o.UV[i]) {
			return false
		}
	}
	for i := range r.BoneWeights {
		if math.Float32bits(r.BoneWeights[i]) != math.Float32bits(o.BoneWeights[i]) {
			return false
		}
	}
	return true
}

func (r *VertexRecord) computeHash() uint64 {
	var buf [4*3 + 4*2 + 4 + 4 + 4 + 4*4]byte
	b := buf[:0]
	for _, f := range r.Position {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
	}
	for _, f := range r.UV {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
	}
	b = binary.LittleEndian.AppendUint32(b, r.Color)
	b = binary.LittleEndian.AppendUint32(b, uint32(r.Material))
	b = append(b, r.BoneIndices[:]...)
	for _, f := range r.BoneWeights {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
	}

	h := fnv.New64a()
	h.Write(b)
	return h.Sum64()
}

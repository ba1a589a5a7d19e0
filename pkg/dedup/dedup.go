package dedup

// Streams holds the attribute arrays of N source vertices. Positions is
// required. Any other stream may be nil or shorter than N; missing entries
// read as zero.
type Streams struct {
	Positions   []float32 // 3 per vertex
	UVs         []float32 // 2 per vertex
	Colors      []uint32  // 1 per vertex
	Materials   []int32   // 1 per vertex
	BoneIndices []uint8   // 4 per vertex
	BoneWeights []float32 // 4 per vertex
}

// VertexCount returns the number of source vertices.
func (s *Streams) VertexCount() int {
	return len(s.Positions) / 3
}

// Record builds the record of source vertex i.
func (s *Streams) Record(i int) VertexRecord {
	var (
		pos     [3]float32
		uv      [2]float32
		bones   [4]uint8
		weights [4]float32
		color   uint32
		mat     int32
	)
	copyAt(pos[:], s.Positions, i)
	copyAt(uv[:], s.UVs, i)
	copyAt(bones[:], s.BoneIndices, i)
	copyAt(weights[:], s.BoneWeights, i)
	if i < len(s.Colors) {
		color = s.Colors[i]
	}
	if i < len(s.Materials) {
		mat = s.Materials[i]
	}
	return NewVertexRecord(pos, uv, color, mat, bones, weights)
}

// copyAt fills dst with element i of a stream of len(dst)-wide tuples,
// leaving the tail zero when src is truncated.
func copyAt[T any](dst, src []T, i int) {
	start := i * len(dst)
	if start >= len(src) {
		return
	}
	copy(dst, src[start:min(start+len(dst), len(src))])
}

// Result maps source vertices to unique output slots.
type Result struct {
	// Unique holds, per output slot, the source vertex that first produced it.
	Unique []int
	// Indices holds, per source vertex, its output slot.
	Indices []uint32
}

// UniqueCount returns the number of output vertices.
func (r *Result) UniqueCount() int {
	return len(r.Unique)
}

// Deduplicate assigns every distinct record a slot in first-occurrence order.
func Deduplicate(s *Streams) Result {
	n := s.VertexCount()
	res := Result{
		Unique:  make([]int, 0, n),
		Indices: make([]uint32, n),
	}
	if n == 0 {
		return res
	}

	records := make([]VertexRecord, 0, n)
	buckets := make(map[uint64][]int32, n)

	for i := 0; i < n; i++ {
		rec := s.Record(i)
		slot := -1
		for _, c := range buckets[rec.hash] {
			if records[c].Equal(&rec) {
				slot = int(c)
				break
			}
		}
		if slot < 0 {
			slot = len(records)
			records = append(records, rec)
			res.Unique = append(res.Unique, i)
			buckets[rec.hash] = append(buckets[rec.hash], int32(slot))
		}
		res.Indices[i] = uint32(slot)
	}
	return res
}

// Gather copies the selected tuples of a width-wide stream into a new slice.
// Source tuples past the end of src are left zero. A nil src yields nil.
func Gather[T any](src []T, width int, unique []int) []T {
	if src == nil {
		return nil
	}
	dst := make([]T, len(unique)*width)
	for slot, i := range unique {
		copyAt(dst[slot*width:(slot+1)*width], src, i)
	}
	return dst
}

package process

// ReduceFn combines two samples for one level of a 2x2x2 down-sampling
// reduction tree.
type ReduceFn func(a, b int32) int32

// ReduceAvg averages two samples, rounding to nearest.
func ReduceAvg(a, b int32) int32 { return (a + b + 1) / 2 }

// ReduceMax takes the larger of two samples.
func ReduceMax(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// DownSampling is a fixed 2x isotropic reduction: one output voxel
// aggregates a 2x2x2 neighborhood through Reduce, applied as a balanced
// tree (4 pairwise reductions along x, 2 along y, 1 along z).
type DownSampling struct {
	Reduce ReduceFn
}

// Apply reduces 8 samples ordered (z,y,x) fastest-x to one.
func (d DownSampling) Apply(v [8]int32) int32 {
	var x [4]int32
	for i := 0; i < 4; i++ {
		x[i] = d.Reduce(v[2*i], v[2*i+1])
	}
	var y [2]int32
	y[0] = d.Reduce(x[0], x[1])
	y[1] = d.Reduce(x[2], x[3])
	return d.Reduce(y[0], y[1])
}

// MapFn is a per-sample transform for Mapping.
type MapFn func(v int32) int32

// MapAdd, MapMul, MapMin, MapMax build the named Mapping reducers against
// a constant operand.
func MapAdd(k int32) MapFn { return func(v int32) int32 { return v + k } }
func MapMul(k int32) MapFn { return func(v int32) int32 { return v * k } }
func MapMin(k int32) MapFn {
	return func(v int32) int32 {
		if v < k {
			return v
		}
		return k
	}
}
func MapMax(k int32) MapFn {
	return func(v int32) int32 {
		if v > k {
			return v
		}
		return k
	}
}

// Mapping applies Fn to every sample.
type Mapping struct {
	Fn MapFn
}

// Statistics accumulates a histogram of observed sample values, bucketed
// to fit BitsPerSample's declared range.
type Statistics struct {
	Buckets []uint64
}

// NewStatistics allocates a histogram sized to 2^bitsPerSample buckets.
func NewStatistics(bitsPerSample int) *Statistics {
	n := 1 << uint(bitsPerSample)
	return &Statistics{Buckets: make([]uint64, n)}
}

// Observe records one sample value.
func (s *Statistics) Observe(v int32) {
	if int(v) < 0 || int(v) >= len(s.Buckets) {
		return
	}
	s.Buckets[v]++
}

// OpStack is the ordered, all-optional set of operations a Target may
// apply: down-sampling first (it changes the output's spatial extent),
// then mapping, then statistics observed on the final mapped value.
type OpStack struct {
	DownSample *DownSampling
	Mapping    *Mapping
	Stats      *Statistics
}

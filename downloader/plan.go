package downloader

import "s3fetch/internal"

// BuildPlan partitions [0, size) into concurrency contiguous, non-overlapping
// segments. Segment i starts at i*floor(size/concurrency); the last segment
// absorbs the remainder so the ranges always union to [0, size-1].
//
// size == 0 produces concurrency zero-length segments (workers short-circuit
// to complete). size < concurrency is allowed: early segments may be length 0
// or 1; contiguity is preserved regardless.
func BuildPlan(size int64, concurrency int) []internal.Segment {
	segments := make([]internal.Segment, concurrency)
	base := size / int64(concurrency)

	for i := 0; i < concurrency; i++ {
		start := int64(i) * base
		var end int64
		if i == concurrency-1 {
			end = size - 1
		} else {
			end = int64(i+1)*base - 1
		}
		segments[i] = internal.Segment{Index: i, Start: start, End: end}
	}

	return segments
}

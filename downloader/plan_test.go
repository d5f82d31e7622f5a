package downloader

import "testing"

func TestBuildPlan_CoverageAndContiguity(t *testing.T) {
	tests := []struct {
		name        string
		size        int64
		concurrency int
		description string
	}{
		{"large_file_multi_segment", 100 * 1024 * 1024, 8, "large file split evenly across all workers"},
		{"small_file_still_splits", 500 * 1024, 8, "no min-segment-size consolidation: small files still split N ways"},
		{"zero_size", 0, 4, "zero size yields N zero-length segments"},
		{"size_smaller_than_concurrency", 3, 5, "degenerate case: early segments length 0, last absorbs remainder"},
		{"single_worker", 12345, 1, "a single segment must cover the whole object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := BuildPlan(tt.size, tt.concurrency)

			if len(segments) != tt.concurrency {
				t.Fatalf("expected %d segments, got %d. %s", tt.concurrency, len(segments), tt.description)
			}

			var covered int64
			for i, seg := range segments {
				if seg.Index != i {
					t.Errorf("segment %d has index %d", i, seg.Index)
				}
				if i > 0 && seg.Start != segments[i-1].End+1 {
					t.Errorf("segment %d not contiguous with previous: start=%d, prev end=%d", i, seg.Start, segments[i-1].End)
				}
				covered += seg.Length()
			}

			if tt.size > 0 && covered != tt.size {
				t.Errorf("segments cover %d bytes, want %d", covered, tt.size)
			}
			if tt.size == 0 {
				for _, seg := range segments {
					if seg.Length() != 0 {
						t.Errorf("expected zero-length segment for zero-size object, got %d", seg.Length())
					}
				}
			}
			if len(segments) > 0 && segments[len(segments)-1].End != tt.size-1 {
				t.Errorf("last segment must end at size-1=%d, got %d", tt.size-1, segments[len(segments)-1].End)
			}
		})
	}
}

func TestBuildPlan_NoOverlap(t *testing.T) {
	segments := BuildPlan(1000, 7)
	for i := 1; i < len(segments); i++ {
		if segments[i].Start <= segments[i-1].End && segments[i-1].Length() > 0 {
			t.Errorf("segment %d overlaps segment %d", i, i-1)
		}
	}
}

package internal

// SegmentStatus is an explicit enum replacing substring-matched status text:
// Display() produces exactly the strings the distilled spec's display logic
// expects, so human-facing output is unchanged while status comparisons
// elsewhere in the engine stay exact instead of substring-based.
type SegmentStatus int

const (
	StatusPending SegmentStatus = iota
	StatusDownloading
	StatusCompleted
	StatusCompletedAlreadyExists
	StatusCompletedResumed
	StatusRetrying
)

func (s SegmentStatus) Display() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDownloading:
		return "downloading"
	case StatusCompleted:
		return "completed"
	case StatusCompletedAlreadyExists:
		return "completed (already exists)"
	case StatusCompletedResumed:
		return "completed (resumed)"
	case StatusRetrying:
		return "retrying"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the status is one of the "completed …" states.
func (s SegmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCompletedAlreadyExists || s == StatusCompletedResumed
}

// ProgressSink is the narrow surface a Segment Worker needs from the Progress
// Tracker: status transitions, retry counts and byte-delta samples. The
// concrete implementation is utils.ProgressTracker.
type ProgressSink interface {
	SetStatus(segmentIndex int, status SegmentStatus)
	IncrementRetry(segmentIndex int)
	ReportSample(segmentIndex int, downloaded int64, instantaneousSpeed float64)
}

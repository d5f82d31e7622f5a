package internal

import "time"

// ObjectDescriptor identifies the remote object being downloaded, resolved once
// per run via Transport.Head.
type ObjectDescriptor struct {
	Bucket string
	Key    string
	Size   int64
}

// Segment is one contiguous byte range of the object, as produced by the Plan Builder.
type Segment struct {
	Index int
	Start int64
	End   int64 // inclusive
}

// Length returns the number of bytes covered by the segment.
func (s Segment) Length() int64 {
	return s.End - s.Start + 1
}

// DownloadConfig carries the options enumerated in the external interfaces section:
// bucket, region, endpoint, credentials, concurrency, download_dir, object_key and
// log_file_name, plus ambient logging/debug flags.
type DownloadConfig struct {
	Bucket      string
	Region      string
	Endpoint    string
	Credentials string
	Concurrency int
	DownloadDir string
	ObjectKey   string
	LogFileName string

	LogLevel   string
	EnableDebug bool
	QuietMode   bool
}

// TransferSummary is returned by the Supervisor on a successful run.
type TransferSummary struct {
	FinalPath    string
	Size         int64
	Elapsed      time.Duration
	AvgSpeed     float64
	TotalRetries int
}

// ResumeSidecar records the descriptor a set of scratch files were created for, so a
// later run sharing the same download_dir and basename can detect that the existing
// .partN files belong to a different object and must not be trusted for resume.
type ResumeSidecar struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	Concurrency int    `json:"concurrency"`
}

// Matches reports whether the sidecar was written for the same object/plan shape.
func (s ResumeSidecar) Matches(desc ObjectDescriptor, concurrency int) bool {
	return s.Bucket == desc.Bucket && s.Key == desc.Key && s.Size == desc.Size && s.Concurrency == concurrency
}

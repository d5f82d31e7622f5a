package downloader

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"s3fetch/internal"
)

// retryBackoff is the fixed delay between attempts. Unbounded retry with a
// fixed backoff is a deliberate departure from exponential schemes: a
// segment download either eventually succeeds or the user cancels.
const retryBackoff = 1 * time.Second

// SegmentWorker drives one segment's lifecycle: inspect, fetch the
// remainder, stream to disk, verify length, retry forever on error.
type SegmentWorker struct {
	transport internal.Transport
	bucket    string
	key       string

	segment     internal.Segment
	scratchPath string
	progress    internal.ProgressSink
}

// NewSegmentWorker builds a worker for one segment.
func NewSegmentWorker(transport internal.Transport, bucket, key, scratchPath string, segment internal.Segment, progress internal.ProgressSink) *SegmentWorker {
	return &SegmentWorker{
		transport:   transport,
		bucket:      bucket,
		key:         key,
		segment:     segment,
		scratchPath: scratchPath,
		progress:    progress,
	}
}

// Run drives the attempt loop until the segment completes or ctx is
// cancelled. On success it returns the scratch file path.
func (w *SegmentWorker) Run(ctx context.Context) (string, error) {
	index := w.segment.Index
	expectedLength := w.segment.Length()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		w.progress.IncrementRetry(index)

		inspection := InspectScratch(w.scratchPath, expectedLength)

		switch inspection.Classification {
		case ScratchComplete:
			w.progress.ReportSample(index, expectedLength, 0)
			w.progress.SetStatus(index, internal.StatusCompletedAlreadyExists)
			return w.scratchPath, nil

		case ScratchInspectionError:
			internal.LogWarn("segment %d: scratch inspection failed, starting fresh: %v", index, inspection.Err)
		}

		onDisk := inspection.OnDiskLength
		remaining := expectedLength - onDisk
		if remaining <= 0 {
			w.progress.ReportSample(index, expectedLength, 0)
			w.progress.SetStatus(index, internal.StatusCompletedResumed)
			return w.scratchPath, nil
		}

		w.progress.SetStatus(index, internal.StatusDownloading)

		if err := w.attemptFetch(ctx, onDisk); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			internal.LogWarn("segment %d: %v, retrying in %s", index, err, retryBackoff)
			w.progress.SetStatus(index, internal.StatusRetrying)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryBackoff):
			}
			continue
		}

		info, err := os.Stat(w.scratchPath)
		if err != nil {
			internal.LogWarn("segment %d: post-stream stat failed: %v, retrying", index, err)
			w.progress.SetStatus(index, internal.StatusRetrying)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryBackoff):
			}
			continue
		}
		if info.Size() != expectedLength {
			internal.LogWarn("segment %d: length mismatch after stream: got %d, want %d, retrying", index, info.Size(), expectedLength)
			w.progress.SetStatus(index, internal.StatusRetrying)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryBackoff):
			}
			continue
		}

		w.progress.ReportSample(index, expectedLength, 0)
		w.progress.SetStatus(index, internal.StatusCompleted)
		return w.scratchPath, nil
	}
}

// attemptFetch issues the ranged request for the remaining bytes and streams
// the body into the scratch file, appending after onDisk if onDisk > 0.
func (w *SegmentWorker) attemptFetch(ctx context.Context, onDisk int64) error {
	rangeHeader := fmt.Sprintf("bytes=%d-%d", w.segment.Start+onDisk, w.segment.End)

	_, body, err := w.transport.Get(ctx, w.bucket, w.key, rangeHeader)
	if err != nil {
		return fmt.Errorf("stream error: %w", err)
	}
	defer body.Close()

	flags := os.O_CREATE | os.O_WRONLY
	if onDisk > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(w.scratchPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("stream error: failed to open scratch file: %w", err)
	}
	defer file.Close()

	writer := &sampledWriter{
		file:        file,
		segment:     w.segment.Index,
		progress:    w.progress,
		sessionBase: onDisk,
		lastSample:  time.Now(),
	}

	if _, err := io.Copy(writer, body); err != nil {
		return fmt.Errorf("stream error: %w", err)
	}
	writer.flushSample()
	return nil
}

// sampledWriter wraps the scratch file handle, emitting a progress sample at
// most once per second as bytes are written.
type sampledWriter struct {
	file        *os.File
	segment     int
	progress    internal.ProgressSink
	sessionBase int64
	sessionSent int64
	lastSample  time.Time
	sinceSample int64
}

func (s *sampledWriter) Write(p []byte) (int, error) {
	n, err := s.file.Write(p)
	if n > 0 {
		s.sessionSent += int64(n)
		s.sinceSample += int64(n)
		if elapsed := time.Since(s.lastSample); elapsed >= time.Second {
			speed := float64(s.sinceSample) / elapsed.Seconds()
			s.progress.ReportSample(s.segment, s.sessionBase+s.sessionSent, speed)
			s.lastSample = time.Now()
			s.sinceSample = 0
		}
	}
	return n, err
}

func (s *sampledWriter) flushSample() {
	elapsed := time.Since(s.lastSample)
	var speed float64
	if elapsed > 0 {
		speed = float64(s.sinceSample) / elapsed.Seconds()
	}
	s.progress.ReportSample(s.segment, s.sessionBase+s.sessionSent, speed)
}

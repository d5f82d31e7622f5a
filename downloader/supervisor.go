package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"s3fetch/internal"
	"s3fetch/utils"
)

const spawnStagger = 100 * time.Millisecond

// Supervisor orchestrates a single object's download end to end: head
// request, plan, resume-sidecar compatibility check, spawn N Segment
// Workers, await completion, assemble, report.
type Supervisor struct {
	transport internal.Transport
	fileOps   *utils.FileOperations
}

// NewSupervisor builds a Supervisor against a Transport.
func NewSupervisor(transport internal.Transport) *Supervisor {
	return &Supervisor{
		transport: transport,
		fileOps:   utils.NewFileOperations(),
	}
}

func sidecarPath(downloadDir, basename string) string {
	return filepath.Join(downloadDir, basename+".s3fetch.json")
}

// finalFileComplete reports whether a final file already exists at path with
// exactly the expected size, making the run a no-op: a rerun against an
// already-assembled object must not re-fetch a single byte.
func finalFileComplete(path string, expectedSize int64) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Size() == expectedSize, nil
}

// Run downloads config.ObjectKey from config.Bucket into config.DownloadDir,
// honoring any compatible resumable scratch state, and returns a summary on
// success.
func (s *Supervisor) Run(ctx context.Context, config *internal.DownloadConfig) (*internal.TransferSummary, error) {
	start := time.Now()

	if err := s.fileOps.EnsureDir(config.DownloadDir); err != nil {
		return nil, fmt.Errorf("supervisor: failed to create download directory: %w", err)
	}

	size, err := s.transport.Head(ctx, config.Bucket, config.ObjectKey)
	if err != nil {
		return nil, fmt.Errorf("supervisor: head failed: %w", err)
	}
	descriptor := internal.ObjectDescriptor{Bucket: config.Bucket, Key: config.ObjectKey, Size: size}

	basename := filepath.Base(config.ObjectKey)
	sidePath := sidecarPath(config.DownloadDir, basename)
	finalPath := filepath.Join(config.DownloadDir, basename)

	if complete, err := finalFileComplete(finalPath, size); err != nil {
		return nil, fmt.Errorf("supervisor: failed to stat existing final file: %w", err)
	} else if complete {
		internal.LogInfo("download already complete: %s (%d bytes), nothing to do", finalPath, size)
		_ = os.Remove(sidePath)
		return &internal.TransferSummary{
			FinalPath:    finalPath,
			Size:         size,
			Elapsed:      time.Since(start),
			AvgSpeed:     0,
			TotalRetries: 0,
		}, nil
	}

	if err := s.reconcileSidecar(sidePath, descriptor, config.Concurrency, basename, config.DownloadDir); err != nil {
		return nil, fmt.Errorf("supervisor: sidecar reconciliation failed: %w", err)
	}

	segments := BuildPlan(size, config.Concurrency)
	tracker := utils.NewProgressTracker(size, config.Concurrency, config.QuietMode)

	scratchPaths := make([]string, config.Concurrency)
	for i, seg := range segments {
		path := ScratchPath(config.DownloadDir, basename, seg.Index)
		scratchPaths[i] = path
		primeSegment(tracker, path, seg)
	}

	tracker.Start()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type workerResult struct {
		index int
		path  string
		err   error
	}
	results := make(chan workerResult, config.Concurrency)

	for i, seg := range segments {
		worker := NewSegmentWorker(s.transport, config.Bucket, config.ObjectKey, scratchPaths[i], seg, tracker)
		go func(index int, w *SegmentWorker) {
			path, err := w.Run(runCtx)
			results <- workerResult{index: index, path: path, err: err}
		}(i, worker)
		time.Sleep(spawnStagger)
	}

	var firstErr error
	for range segments {
		res := <-results
		if res.err != nil && firstErr == nil {
			firstErr = res.err
			cancel()
		}
	}

	if firstErr != nil {
		tracker.Stop()
		if ctx.Err() != nil {
			// The caller's context (not just runCtx) was cancelled: this is a
			// user-initiated cancellation, not a worker failure. Already-written
			// scratch bytes and the sidecar are left in place for a later resume.
			internal.LogInfo("download cancelled, progress preserved for resume")
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("supervisor: segment download failed: %w", firstErr)
	}

	if err := Assemble(scratchPaths, segments, finalPath); err != nil {
		tracker.Stop()
		if transferErr, ok := err.(*internal.TransferError); ok {
			internal.LogTransferError(transferErr)
		}
		return nil, fmt.Errorf("supervisor: assembly failed: %w", err)
	}

	tracker.Stop()

	if err := os.Remove(sidePath); err != nil && !os.IsNotExist(err) {
		internal.LogWarn("supervisor: failed to remove resume sidecar: %v", err)
	}

	snap := tracker.Snapshot()
	elapsed := time.Since(start)
	avgSpeed := 0.0
	if elapsed.Seconds() > 0 {
		avgSpeed = float64(size) / elapsed.Seconds()
	}

	internal.LogInfo("download complete: %s (%d bytes in %s, avg %s/s)", finalPath, size, elapsed.Round(time.Millisecond), utils.FormatBytes(int64(avgSpeed)))

	return &internal.TransferSummary{
		FinalPath:    finalPath,
		Size:         size,
		Elapsed:      elapsed,
		AvgSpeed:     avgSpeed,
		TotalRetries: snap.TotalRetries,
	}, nil
}

// reconcileSidecar compares any existing resume sidecar against the current
// run's descriptor. On mismatch (or scratch files present with no sidecar)
// it discards all existing scratch files and writes a fresh sidecar, so a
// later run never resumes against a different object's bytes.
func (s *Supervisor) reconcileSidecar(sidePath string, desc internal.ObjectDescriptor, concurrency int, basename, downloadDir string) error {
	existing, err := readSidecar(sidePath)
	compatible := err == nil && existing.Matches(desc, concurrency)

	if !compatible {
		for i := 0; i < concurrency; i++ {
			_ = os.Remove(ScratchPath(downloadDir, basename, i))
		}
	}

	sidecar := internal.ResumeSidecar{Bucket: desc.Bucket, Key: desc.Key, Size: desc.Size, Concurrency: concurrency}
	return writeSidecar(sidePath, sidecar)
}

func readSidecar(path string) (internal.ResumeSidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return internal.ResumeSidecar{}, err
	}
	var sidecar internal.ResumeSidecar
	if err := json.Unmarshal(data, &sidecar); err != nil {
		return internal.ResumeSidecar{}, err
	}
	return sidecar, nil
}

func writeSidecar(path string, sidecar internal.ResumeSidecar) error {
	data, err := json.Marshal(sidecar)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// primeSegment seeds the Progress Tracker's initial counters for a segment by
// inspecting any pre-existing scratch file, so the display starts accurate
// instead of at zero for a resumed run.
func primeSegment(tracker *utils.ProgressTracker, scratchPath string, seg internal.Segment) {
	inspection := InspectScratch(scratchPath, seg.Length())
	switch inspection.Classification {
	case ScratchComplete:
		tracker.PrimeSegment(seg.Index, seg.Length(), internal.StatusCompletedAlreadyExists)
	case ScratchPartialValid:
		tracker.PrimeSegment(seg.Index, inspection.OnDiskLength, internal.StatusPending)
	default:
		tracker.PrimeSegment(seg.Index, 0, internal.StatusPending)
	}
}

package downloader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"s3fetch/internal"
	"s3fetch/utils"
)

// Assemble re-verifies each segment's on-disk length, concatenates the
// scratch files in order into a temp file alongside finalPath, re-verifies
// the temp file's length, then atomically renames it into place before
// deleting the scratch files. Staging through a temp file means a crash
// mid-concatenation never leaves a truncated file visible at finalPath.
// Per-segment or final length mismatches are fatal; a scratch deletion
// failure is only a warning (the final file is already correct at that
// point).
func Assemble(scratchPaths []string, segments []internal.Segment, finalPath string) error {
	for i, seg := range segments {
		info, err := os.Stat(scratchPaths[i])
		if err != nil {
			return internal.NewSegmentVerificationError(i, seg.Length(), 0).WithContext("stat_error", err.Error())
		}
		if info.Size() != seg.Length() {
			return internal.NewSegmentVerificationError(i, seg.Length(), info.Size())
		}
	}

	tmpPath := finalPath + ".s3fetch.tmp"

	out, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("assembler: failed to create staging file: %w", err)
	}

	var written int64
	for i, path := range scratchPaths {
		if err := appendScratch(out, path); err != nil {
			out.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("assembler: failed to concatenate segment %d: %w", i, err)
		}
		written += segments[i].Length()
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("assembler: failed to close staging file: %w", err)
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return internal.NewFinalLengthMismatchError(written, 0).WithContext("stat_error", err.Error())
	}
	if info.Size() != written {
		os.Remove(tmpPath)
		return internal.NewFinalLengthMismatchError(written, info.Size())
	}

	fileOps := utils.NewFileOperations()
	if err := fileOps.AtomicRename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("assembler: failed to rename %s into place: %w", filepath.Base(finalPath), err)
	}

	for i, path := range scratchPaths {
		if err := os.Remove(path); err != nil {
			internal.LogWarn("assembler: failed to delete scratch file for segment %d: %v", i, err)
		}
	}

	return nil
}

func appendScratch(out *os.File, scratchPath string) error {
	in, err := os.Open(scratchPath)
	if err != nil {
		return err
	}
	defer in.Close()

	_, err = io.Copy(out, in)
	return err
}

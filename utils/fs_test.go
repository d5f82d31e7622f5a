package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileOperations_EnsureDir(t *testing.T) {
	fileOps := NewFileOperations()

	t.Run("creates_nested_dir", func(t *testing.T) {
		tempDir, err := os.MkdirTemp("", "s3fetch_test")
		if err != nil {
			t.Fatalf("failed to create temp dir: %v", err)
		}
		defer os.RemoveAll(tempDir)

		nested := filepath.Join(tempDir, "a", "b", "c")
		if err := fileOps.EnsureDir(nested); err != nil {
			t.Fatalf("EnsureDir failed: %v", err)
		}

		info, err := os.Stat(nested)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory to exist at %s", nested)
		}
	})
}

func TestFileOperations_FileExistsAndSize(t *testing.T) {
	fileOps := NewFileOperations()
	tempDir, err := os.MkdirTemp("", "s3fetch_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	missing := filepath.Join(tempDir, "missing.part0")
	if fileOps.FileExists(missing) {
		t.Errorf("expected missing file to report as absent")
	}

	present := filepath.Join(tempDir, "present.part0")
	if err := os.WriteFile(present, make([]byte, 42), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	if !fileOps.FileExists(present) {
		t.Errorf("expected present file to report as existing")
	}

	size, err := fileOps.FileSize(present)
	if err != nil {
		t.Fatalf("FileSize failed: %v", err)
	}
	if size != 42 {
		t.Errorf("expected size 42, got %d", size)
	}
}

func TestFileOperations_AtomicRename(t *testing.T) {
	fileOps := NewFileOperations()
	tempDir, err := os.MkdirTemp("", "s3fetch_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	src := filepath.Join(tempDir, "src")
	dst := filepath.Join(tempDir, "dst")
	if err := os.WriteFile(src, []byte("hello"), 0644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}

	if err := fileOps.AtomicRename(src, dst); err != nil {
		t.Fatalf("AtomicRename failed: %v", err)
	}

	if fileOps.FileExists(src) {
		t.Errorf("expected source to be gone after rename")
	}
	if !fileOps.FileExists(dst) {
		t.Errorf("expected destination to exist after rename")
	}
}

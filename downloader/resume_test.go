package downloader

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInspectScratch_Absent(t *testing.T) {
	dir := t.TempDir()
	result := InspectScratch(filepath.Join(dir, "missing.part0"), 100)
	if result.Classification != ScratchAbsent {
		t.Errorf("expected absent, got %s", result.Classification)
	}
}

func TestInspectScratch_PartialValid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.part0")
	if err := os.WriteFile(path, make([]byte, 40), 0644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}

	result := InspectScratch(path, 100)
	if result.Classification != ScratchPartialValid {
		t.Errorf("expected partial-valid, got %s", result.Classification)
	}
	if result.OnDiskLength != 40 {
		t.Errorf("expected on-disk length 40, got %d", result.OnDiskLength)
	}
}

func TestInspectScratch_Complete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.part0")
	if err := os.WriteFile(path, make([]byte, 100), 0644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}

	result := InspectScratch(path, 100)
	if result.Classification != ScratchComplete {
		t.Errorf("expected complete, got %s", result.Classification)
	}
}

func TestInspectScratch_OverlongDeletesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.part0")
	if err := os.WriteFile(path, make([]byte, 150), 0644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}

	result := InspectScratch(path, 100)
	if result.Classification != ScratchOverlongInvalid {
		t.Errorf("expected overlong-invalid, got %s", result.Classification)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected overlong scratch file to be deleted")
	}
}

func TestScratchPath(t *testing.T) {
	got := ScratchPath("/tmp/files", "object.bin", 3)
	want := "/tmp/files/object.bin.part3"
	if got != want {
		t.Errorf("ScratchPath() = %q, want %q", got, want)
	}
}

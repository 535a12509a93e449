package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFormatBytesReadable(t *testing.T) {
	cases := []struct {
		bytes uint64
		want  string
	}{
		{500, "500 B"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, c := range cases {
		if got := FormatBytesReadable(c.bytes); got != c.want {
			t.Errorf("FormatBytesReadable(%d) = %q, want %q", c.bytes, got, c.want)
		}
	}
}

func TestFormatDurationFromSecs(t *testing.T) {
	cases := []struct {
		secs int64
		want string
	}{
		{45, "0:45"},
		{90, "1:30"},
		{3725, "1:02:05"},
	}
	for _, c := range cases {
		if got := FormatDurationFromSecs(c.secs); got != c.want {
			t.Errorf("FormatDurationFromSecs(%d) = %q, want %q", c.secs, got, c.want)
		}
	}
}

func TestCreateTempDirAndCleanup(t *testing.T) {
	base := t.TempDir()
	td, err := CreateTempDir(base, "run")
	if err != nil {
		t.Fatalf("CreateTempDir: %v", err)
	}
	if err := EnsureDirectoryWritable(td.Path()); err != nil {
		t.Fatalf("expected created temp dir to be writable: %v", err)
	}
	if err := td.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
}

func TestCleanupStaleTempFilesRemovesOnlyOldMatchingEntries(t *testing.T) {
	base := t.TempDir()

	stale := filepath.Join(base, "distrffmpeg_deadbeef")
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatalf("creating stale run dir: %v", err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("backdating stale run dir: %v", err)
	}

	fresh := filepath.Join(base, "distrffmpeg_cafef00d")
	if err := os.MkdirAll(fresh, 0o755); err != nil {
		t.Fatalf("creating fresh run dir: %v", err)
	}

	unrelated := filepath.Join(base, "other_prefix_xyz")
	if err := os.MkdirAll(unrelated, 0o755); err != nil {
		t.Fatalf("creating unrelated dir: %v", err)
	}
	if err := os.Chtimes(unrelated, old, old); err != nil {
		t.Fatalf("backdating unrelated dir: %v", err)
	}

	n, err := CleanupStaleTempFiles(base, "distrffmpeg", 24)
	if err != nil {
		t.Fatalf("CleanupStaleTempFiles: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one stale entry removed, got %d", n)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale run dir to be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("expected fresh run dir to survive: %v", err)
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Fatalf("expected unrelated-prefix dir to survive: %v", err)
	}
}

func TestCleanupStaleTempFilesOnMissingDirIsNoop(t *testing.T) {
	n, err := CleanupStaleTempFiles(filepath.Join(t.TempDir(), "does-not-exist"), "distrffmpeg", 24)
	if err != nil {
		t.Fatalf("CleanupStaleTempFiles: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 cleaned entries for a missing directory, got %d", n)
	}
}

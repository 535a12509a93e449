package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `{
  "ffmpeg_bin": "ffmpeg",
  "ffprobe_bin": "ffprobe",
  "server_work_path": "/tmp/distrffmpeg",
  "segment_frames": 250,
  "keyint_min": 10,
  "keyint_max": 50,
  "job_max_retries": 3,
  "loglevel": "INFO",
  "workers": [
    {"user": "enc", "host": "worker1", "work_path": "/tmp/work", "ffmpeg_bin": "ffmpeg", "params": {"key_filename": "/home/enc/.ssh/id_rsa"}}
  ]
}`

func writeSampleConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaultsAndValidate(t *testing.T) {
	path := writeSampleConfig(t)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SegmentLookahead != defaultSegmentLookahead {
		t.Fatalf("expected default segment lookahead %d, got %d", defaultSegmentLookahead, cfg.SegmentLookahead)
	}
	if cfg.Workers[0].Platform != "Linux" {
		t.Fatalf("expected default platform Linux, got %q", cfg.Workers[0].Platform)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsEmptyWorkers(t *testing.T) {
	cfg := &Config{SegmentFrames: 1, KeyintMin: 1, KeyintMax: 1, JobMaxRetries: 1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty workers")
	}
}

func TestValidateRejectsBadPlatform(t *testing.T) {
	cfg := &Config{
		SegmentFrames: 1, KeyintMin: 1, KeyintMax: 1, JobMaxRetries: 1,
		Workers: []WorkerConfig{{User: "a", Host: "b", Platform: "macOS"}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid platform")
	}
}

func TestApplyOverridesConsumesTokensAndMutatesConfig(t *testing.T) {
	path := writeSampleConfig(t)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	args := []string{"-i", "in.mp4", "-df_segment_frames=500", "-df_job_max_retries=3", "-c:v", "libx265"}
	remaining, err := ApplyOverrides(cfg, args)
	if err != nil {
		t.Fatalf("ApplyOverrides: %v", err)
	}

	if cfg.SegmentFrames != 500 || cfg.JobMaxRetries != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	for _, tok := range remaining {
		if tok == "-df_segment_frames=500" || tok == "-df_job_max_retries=3" {
			t.Fatalf("override token not removed from remaining args: %v", remaining)
		}
	}
	if len(remaining) != 4 {
		t.Fatalf("expected 4 remaining tokens, got %d: %v", len(remaining), remaining)
	}
}

func TestApplyOverridesRejectsUnknownField(t *testing.T) {
	cfg := &Config{}
	_, err := ApplyOverrides(cfg, []string{"-df_nonexistent=1"})
	if err == nil {
		t.Fatal("expected error for unknown override field")
	}
}

func TestApplyOverridesRejectsNonIntValue(t *testing.T) {
	cfg := &Config{}
	_, err := ApplyOverrides(cfg, []string{"-df_segment_frames=notanumber"})
	if err == nil {
		t.Fatal("expected error for non-integer override value")
	}
}

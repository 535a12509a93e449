// Package config loads and validates the run configuration: transcoder
// paths, segmentation/keyframe parameters, retry bounds, and the worker
// fleet.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LogLevel is the string name of a severity, as carried in the config
// file's "loglevel" field. Valid names are defined by internal/logging.
type LogLevel string

// WorkerConfig describes one SSH-reachable worker machine.
type WorkerConfig struct {
	User     string            `json:"user"`
	Host     string            `json:"host"`
	WorkPath string            `json:"work_path"`
	FfmpegBin string           `json:"ffmpeg_bin"`
	Params   map[string]string `json:"params"`
	Platform string            `json:"platform"`
}

// Config is the full run configuration, loaded from a JSON file.
type Config struct {
	FfmpegBin      string         `json:"ffmpeg_bin"`
	FfprobeBin     string         `json:"ffprobe_bin"`
	ServerWorkPath string         `json:"server_work_path"`
	SegmentFrames  int            `json:"segment_frames"`
	KeyintMin      int            `json:"keyint_min"`
	KeyintMax      int            `json:"keyint_max"`
	JobMaxRetries  int            `json:"job_max_retries"`
	LogLevel       LogLevel       `json:"loglevel"`
	Workers        []WorkerConfig `json:"workers"`

	// SegmentLookahead is the exclusive end offset of a job's
	// required_segments, counted from the index of the segment containing
	// the slice's last frame: with the default 2, that segment and the one
	// after it are staged, compensating for B-frame reordering. The source
	// hard-codes this at 2; exposing it as a config field follows
	// spec.md's design note that it should be measurable/overridable
	// rather than a silent magic constant.
	SegmentLookahead int `json:"segment_lookahead"`
}

// defaultSegmentLookahead matches the source's hard-coded "+2" constant.
const defaultSegmentLookahead = 2

// DefaultConfigPath returns the config file location the source hard-codes
// as "~/.config/distrffmpeg/config.json", generalized to respect
// XDG_CONFIG_HOME the way internal/logging.DefaultLogDir respects
// XDG_STATE_HOME.
func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "distrffmpeg", "config.json"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "distrffmpeg", "config.json"), nil
}

// LoadConfig reads and parses the JSON config file at path and applies
// defaults. It does not validate: callers should apply "-df_" CLI
// overrides via ApplyOverrides first, then call Validate, matching the
// source's load-then-override-then-validate order.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidConfig, path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
	}

	if cfg.SegmentLookahead == 0 {
		cfg.SegmentLookahead = defaultSegmentLookahead
	}
	for i := range cfg.Workers {
		if cfg.Workers[i].Platform == "" {
			cfg.Workers[i].Platform = "Linux"
		}
	}

	return &cfg, nil
}

// Validate checks the numeric bounds and worker-list non-emptiness
// required for a run to proceed. It does not check that the configured
// ffmpeg/ffprobe binaries exist, matching the source's own validate().
func (c *Config) Validate() error {
	switch {
	case c.SegmentFrames <= 0:
		return fmt.Errorf("%w: segment_frames must be > 0, got %d", ErrInvalidConfig, c.SegmentFrames)
	case c.KeyintMin <= 0:
		return fmt.Errorf("%w: keyint_min must be > 0, got %d", ErrInvalidConfig, c.KeyintMin)
	case c.KeyintMax < c.KeyintMin:
		return fmt.Errorf("%w: keyint_max (%d) must be >= keyint_min (%d)", ErrInvalidConfig, c.KeyintMax, c.KeyintMin)
	case c.JobMaxRetries <= 0:
		return fmt.Errorf("%w: job_max_retries must be > 0, got %d", ErrInvalidConfig, c.JobMaxRetries)
	case len(c.Workers) == 0:
		return fmt.Errorf("%w: workers must be non-empty", ErrInvalidConfig)
	}

	for _, w := range c.Workers {
		if w.Platform != "Linux" && w.Platform != "Windows" {
			return fmt.Errorf("%w: worker %s@%s has invalid platform %q (must be Linux or Windows)",
				ErrInvalidConfig, w.User, w.Host, w.Platform)
		}
	}

	return nil
}

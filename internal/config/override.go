package config

import (
	"fmt"
	"strconv"
	"strings"
)

// overridePrefix marks a CLI argument as a config override rather than a
// transcoder flag.
const overridePrefix = "-df_"

// setter applies a raw string value (already split from "-df_name=value")
// to the matching Config field.
type setter func(c *Config, raw string) error

// OverridableFields is the fixed, reflection-free table of config fields a
// "-df_" CLI override may target, mirroring the source's restriction to
// string- and integer-typed dataclass fields (its __annotations__ lookup
// followed by a str/int type check). There is one entry per such field;
// anything else (loglevel, workers, segment_lookahead's sibling fields
// that aren't plain str/int) is deliberately absent and falls through to
// ErrInvalidOverride.
var OverridableFields = map[string]setter{
	"ffmpeg_bin":         func(c *Config, v string) error { c.FfmpegBin = v; return nil },
	"ffprobe_bin":        func(c *Config, v string) error { c.FfprobeBin = v; return nil },
	"server_work_path":   func(c *Config, v string) error { c.ServerWorkPath = v; return nil },
	"segment_frames":     setIntField(func(c *Config, n int) { c.SegmentFrames = n }),
	"keyint_min":         setIntField(func(c *Config, n int) { c.KeyintMin = n }),
	"keyint_max":         setIntField(func(c *Config, n int) { c.KeyintMax = n }),
	"job_max_retries":    setIntField(func(c *Config, n int) { c.JobMaxRetries = n }),
	"segment_lookahead":  setIntField(func(c *Config, n int) { c.SegmentLookahead = n }),
}

func setIntField(assign func(c *Config, n int)) setter {
	return func(c *Config, raw string) error {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", ErrInvalidOverride, raw)
		}
		assign(c, n)
		return nil
	}
}

// ApplyOverrides scans args for "-df_<field>=<value>" tokens, applies each
// to cfg, and returns the remaining args with those tokens removed (in
// order) so the rest can be forwarded to the command-argument parser as
// the user's transcoder command line.
func ApplyOverrides(cfg *Config, args []string) ([]string, error) {
	remaining := make([]string, 0, len(args))

	for _, arg := range args {
		if !strings.HasPrefix(arg, overridePrefix) {
			remaining = append(remaining, arg)
			continue
		}

		body := strings.TrimPrefix(arg, overridePrefix)
		if strings.Count(body, "=") != 1 {
			return nil, fmt.Errorf("%w: malformed override %q", ErrInvalidOverride, arg)
		}

		parts := strings.SplitN(body, "=", 2)
		name, value := parts[0], parts[1]

		set, ok := OverridableFields[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown or non-overridable field %q", ErrInvalidOverride, name)
		}
		if err := set(cfg, value); err != nil {
			return nil, err
		}
	}

	return remaining, nil
}

// Package sceneanalysis invokes the configured transcoder to emit
// per-frame scene-change scores and parses the resulting report.
package sceneanalysis

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Score is one frame's scene-change score, as emitted by the transcoder's
// metadata=print report.
type Score struct {
	Frame   int
	PTS     int64
	PTSTime float64
	Score   float64
}

// frameInfoConverters assign a parsed token value onto a Score field, the
// Go stand-in for the source's setattr(cur_score, key, ...) dispatch —
// spec.md §3 calls for a typed converter table keyed by token name rather
// than reflection.
var frameInfoConverters = map[string]func(s *Score, raw string) error{
	"frame": func(s *Score, raw string) error {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("sceneanalysis: bad frame value %q: %w", raw, err)
		}
		s.Frame = n
		return nil
	},
	"pts": func(s *Score, raw string) error {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("sceneanalysis: bad pts value %q: %w", raw, err)
		}
		s.PTS = n
		return nil
	},
	"pts_time": func(s *Score, raw string) error {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("sceneanalysis: bad pts_time value %q: %w", raw, err)
		}
		s.PTSTime = f
		return nil
	},
}

// ParseReport reads a scene-score report file produced by the
// metadata=print filter: pairs of lines, a frame-info line of
// space-separated "key:value" tokens followed by a "lavfi.scene_score=F"
// line, repeated once per frame.
func ParseReport(path string) ([]Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sceneanalysis: opening report: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var scores []Score
	for scanner.Scan() {
		frameInfo := strings.TrimSpace(scanner.Text())
		if frameInfo == "" {
			break
		}

		var cur Score
		for _, keyval := range strings.Fields(frameInfo) {
			key, val, ok := strings.Cut(keyval, ":")
			if !ok {
				continue
			}
			convert, ok := frameInfoConverters[key]
			if !ok {
				continue
			}
			if err := convert(&cur, val); err != nil {
				return nil, err
			}
		}

		if !scanner.Scan() {
			return nil, fmt.Errorf("sceneanalysis: report truncated after frame info line %q", frameInfo)
		}
		scoreLine := strings.TrimSpace(scanner.Text())
		_, raw, ok := strings.Cut(scoreLine, "=")
		if !ok {
			return nil, fmt.Errorf("sceneanalysis: malformed score line %q", scoreLine)
		}
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("sceneanalysis: bad score value %q: %w", raw, err)
		}
		cur.Score = score

		scores = append(scores, cur)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("sceneanalysis: reading report: %w", err)
	}

	return scores, nil
}

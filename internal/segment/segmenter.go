package segment

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/five82/distrffmpeg/internal/argcatalog"
	"github.com/five82/distrffmpeg/internal/ffcmd"
	"github.com/five82/distrffmpeg/internal/logging"
)

// probeConcurrency bounds how many ffprobe invocations run at once while
// scanning segments for their first keyframe, the same "N independent
// workers over a bounded channel" shape the teacher uses for per-chunk
// encoding, applied here to a much cheaper per-segment probe.
const probeConcurrency = 8

const segmentTemplate = `ffmpeg -y -i PLACEHOLDER -c copy -f segment -segment_frames %s -segment_list "%s" -reset_timestamps 1 -break_non_keyframes 1 "%s/out%%06d.mkv"`

// BuildCommand assembles the PRE-scope segmentation Command: fixed-frame
// cuts at every segment boundary (excluding frame 0, which ffmpeg's
// segment muxer rejects as a split point), keyframe-safe, overlaid with
// the user's own PRE-eligible flags.
func BuildCommand(segments []Segment, segmentsDir, segmentsMetaPath, userCmd string) (*ffcmd.Command, error) {
	var bounds []string
	for _, s := range segments[1:] {
		bounds = append(bounds, strconv.Itoa(s.FrameLo))
	}

	p := ffcmd.NewParser(argcatalog.Pre)
	base := fmt.Sprintf(segmentTemplate, strings.Join(bounds, ","), segmentsMetaPath, segmentsDir)
	if err := p.ParseCommand(base, true); err != nil {
		return nil, fmt.Errorf("segment: building template: %w", err)
	}
	if err := p.ParseCommand(userCmd, false); err != nil {
		return nil, fmt.Errorf("segment: overlaying user command: %w", err)
	}
	return p.Cmds[0], nil
}

// Cut computes the segment table for sceneCount frames, invokes the
// transcoder to write the segment files, and probes each for its first
// keyframe packet, returning the populated segment table.
func Cut(ctx context.Context, ffmpegBin, ffprobeBin, userCmd string, sceneCount, segmentFrames int, segmentsDir string, log *logging.Logger) ([]Segment, error) {
	if err := os.MkdirAll(segmentsDir, 0o755); err != nil {
		return nil, fmt.Errorf("segment: creating segments dir: %w", err)
	}

	segments := Table(sceneCount, segmentFrames)
	segmentsMetaPath := filepath.Join(segmentsDir, "segments.csv")

	cmd, err := BuildCommand(segments, segmentsDir, segmentsMetaPath, userCmd)
	if err != nil {
		return nil, err
	}

	shellCmd := ffmpegBin + " " + cmd.GetCommand(true)
	log.Logf(logging.Shell, "Running local command: %s", shellCmd)

	c := exec.CommandContext(ctx, "sh", "-c", shellCmd)
	if out, err := c.CombinedOutput(); err != nil {
		log.Logf(logging.Shell, "Segmentation command failed: %s", out)
		return nil, fmt.Errorf("%w: %v", ErrLocalCommandFailed, err)
	}

	if err := probeAll(ctx, ffprobeBin, segmentsDir, segments); err != nil {
		return nil, err
	}

	return segments, nil
}

// probeAll runs ffprobe over every segment file concurrently, bounded by
// probeConcurrency, and fills in each Segment's FirstKeyframe in place.
func probeAll(ctx context.Context, ffprobeBin, segmentsDir string, segments []Segment) error {
	sem := semaphore.NewWeighted(probeConcurrency)
	errs := make([]error, len(segments))

	type result struct {
		idx int
		kf  *int
		err error
	}
	results := make(chan result, len(segments))

	for i := range segments {
		if err := sem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("segment: waiting for probe slot: %w", err)
		}
		go func(i int) {
			defer sem.Release(1)
			kf, err := probeFirstKeyframe(ctx, ffprobeBin, filepath.Join(segmentsDir, segments[i].Filename))
			results <- result{idx: i, kf: kf, err: err}
		}(i)
	}

	for range segments {
		r := <-results
		errs[r.idx] = r.err
		if r.err == nil {
			segments[r.idx].FirstKeyframe = r.kf
		}
	}

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

type ffprobePacket struct {
	CodecType string `json:"codec_type"`
	Flags     string `json:"flags"`
}

type ffprobePacketsOutput struct {
	Packets []ffprobePacket `json:"packets"`
}

// probeFirstKeyframe inspects a segment file's video packets in order and
// returns the zero-based index of the first one flagged as a keyframe, or
// nil if none is.
func probeFirstKeyframe(ctx context.Context, ffprobeBin, segmentPath string) (*int, error) {
	cmd := exec.CommandContext(ctx, ffprobeBin,
		"-select_streams", "v",
		"-print_format", "json",
		"-show_packets",
		segmentPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("segment: probing %s: %w", segmentPath, err)
	}

	var parsed ffprobePacketsOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("segment: parsing ffprobe output for %s: %w", segmentPath, err)
	}

	idx := 0
	for _, pkt := range parsed.Packets {
		if pkt.CodecType != "video" {
			continue
		}
		if strings.HasPrefix(pkt.Flags, "K") {
			i := idx
			return &i, nil
		}
		idx++
	}
	return nil, nil
}

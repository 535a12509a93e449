// Package validation performs a post-merge sanity check on the final
// output: duration close enough to the input, and the expected video/audio
// streams present.
package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
)

// durationToleranceSecs is the maximum allowed difference in duration
// between input and output.
const durationToleranceSecs = 1.0

// Options describes what the merged output is expected to look like. A nil
// field skips that check.
type Options struct {
	ExpectedDuration    *float64
	ExpectedAudioTracks *int
	ExpectedVideoTracks *int
}

// Step is one named check's outcome.
type Step struct {
	Name    string
	Passed  bool
	Details string
}

// Result aggregates every check run against the output.
type Result struct {
	Passed bool
	Steps  []Step
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

func probe(ctx context.Context, ffprobeBin, path string) (*ffprobeOutput, error) {
	cmd := exec.CommandContext(ctx, ffprobeBin,
		"-show_format", "-show_streams", "-print_format", "json", path)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("validation: probing %s: %w", path, err)
	}
	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("validation: parsing ffprobe output for %s: %w", path, err)
	}
	return &parsed, nil
}

// ProbeInput runs ffprobe against the original input file so the caller can
// populate Options.ExpectedDuration/ExpectedAudioTracks before validating the
// merged output against it.
func ProbeInput(ctx context.Context, ffprobeBin, inputPath string) (duration float64, audioTracks int, err error) {
	info, err := probe(ctx, ffprobeBin, inputPath)
	if err != nil {
		return 0, 0, err
	}

	for _, s := range info.Streams {
		if s.CodecType == "audio" {
			audioTracks++
		}
	}

	duration, err = strconv.ParseFloat(info.Format.Duration, 64)
	if err != nil {
		return 0, audioTracks, fmt.Errorf("validation: could not parse input duration: %w", err)
	}
	return duration, audioTracks, nil
}

// ValidateOutput checks outputPath against opts, running ffprobe once to
// gather duration and stream information.
func ValidateOutput(ctx context.Context, ffprobeBin, outputPath string, opts Options) (*Result, error) {
	info, err := probe(ctx, ffprobeBin, outputPath)
	if err != nil {
		return nil, err
	}

	result := &Result{Passed: true}

	videoTracks, audioTracks := 0, 0
	var videoCodecs, audioCodecs []string
	for _, s := range info.Streams {
		switch s.CodecType {
		case "video":
			videoTracks++
			videoCodecs = append(videoCodecs, s.CodecName)
		case "audio":
			audioTracks++
			audioCodecs = append(audioCodecs, s.CodecName)
		}
	}

	result.addStep(checkVideoPresent(videoTracks, videoCodecs))
	result.addStep(checkAudioTracks(audioTracks, audioCodecs, opts.ExpectedAudioTracks))
	if opts.ExpectedVideoTracks != nil {
		result.addStep(checkVideoTrackCount(videoTracks, *opts.ExpectedVideoTracks))
	}
	if opts.ExpectedDuration != nil {
		actual, err := strconv.ParseFloat(info.Format.Duration, 64)
		if err != nil {
			result.addStep(Step{Name: "Duration", Passed: false, Details: "could not parse output duration"})
		} else {
			result.addStep(checkDuration(actual, *opts.ExpectedDuration))
		}
	}

	return result, nil
}

func (r *Result) addStep(s Step) {
	r.Steps = append(r.Steps, s)
	if !s.Passed {
		r.Passed = false
	}
}

func checkVideoPresent(videoTracks int, codecs []string) Step {
	if videoTracks == 0 {
		return Step{Name: "Video stream", Passed: false, Details: "no video stream in output"}
	}
	return Step{Name: "Video stream", Passed: true, Details: fmt.Sprintf("%d video stream(s): %v", videoTracks, codecs)}
}

func checkAudioTracks(audioTracks int, codecs []string, expected *int) Step {
	if expected != nil && audioTracks != *expected {
		return Step{
			Name:    "Audio tracks",
			Passed:  false,
			Details: fmt.Sprintf("got %d audio track(s), expected %d", audioTracks, *expected),
		}
	}
	return Step{Name: "Audio tracks", Passed: true, Details: fmt.Sprintf("%d audio track(s): %v", audioTracks, codecs)}
}

func checkVideoTrackCount(videoTracks, expected int) Step {
	if videoTracks != expected {
		return Step{
			Name:    "Video track count",
			Passed:  false,
			Details: fmt.Sprintf("got %d video track(s), expected %d", videoTracks, expected),
		}
	}
	return Step{Name: "Video track count", Passed: true, Details: fmt.Sprintf("%d video track(s)", videoTracks)}
}

func checkDuration(actual, expected float64) Step {
	diff := math.Abs(actual - expected)
	if diff <= durationToleranceSecs {
		return Step{Name: "Duration", Passed: true, Details: fmt.Sprintf("%.1fs (expected %.1fs)", actual, expected)}
	}
	return Step{
		Name:    "Duration",
		Passed:  false,
		Details: fmt.Sprintf("got %.1fs, expected %.1fs (diff %.1fs)", actual, expected, diff),
	}
}

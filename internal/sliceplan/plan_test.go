package sliceplan

import (
	"strings"
	"testing"

	"github.com/five82/distrffmpeg/internal/sceneanalysis"
	"github.com/five82/distrffmpeg/internal/segment"
)

// syntheticScores builds n frames of scene scores, all zero except for a
// single spike at spikeFrame, mirroring scenario S6 ("100 synthetic
// frames with a single max at frame 42").
func syntheticScores(n, spikeFrame int) []sceneanalysis.Score {
	scores := make([]sceneanalysis.Score, n)
	for i := 0; i < n; i++ {
		v := 0.0
		if i == spikeFrame {
			v = 1.0
		}
		scores[i] = sceneanalysis.Score{Frame: i, PTS: int64(i * 1001), PTSTime: float64(i) / 24.0, Score: v}
	}
	return scores
}

// segmentsWithKeyframes builds a segment table for frameCount frames at
// segmentFrames-per-segment, with every segment's FirstKeyframe set to 0
// (keyframe at the start of each segment, the common case).
func segmentsWithKeyframes(frameCount, segmentFrames int) []segment.Segment {
	segs := segment.Table(frameCount, segmentFrames)
	zero := 0
	for i := range segs {
		segs[i].FirstKeyframe = &zero
	}
	return segs
}

func TestPlanSingleSpikeProducesTwoJobs(t *testing.T) {
	scores := syntheticScores(100, 42)
	segs := segmentsWithKeyframes(100, 25)

	jobs, err := Plan(scores, segs, 10, 50, 2, "/tmp/segments", "/tmp/slices", "ffmpeg -i input.mp4")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs for a single mid-stream spike, got %d", len(jobs))
	}

	first := jobs[0]
	if first.RequiredSegments[0].Idx != 0 {
		t.Fatalf("expected first job's segment range to start at segment 0, got %d", first.RequiredSegments[0].Idx)
	}
	if len(first.RequiredSegments) < 2 {
		t.Fatalf("expected first job to span multiple segments, got %+v", first.RequiredSegments)
	}

	last := jobs[len(jobs)-1]
	lastSpan := last.RequiredSegments[len(last.RequiredSegments)-1]
	finalSeg := segs[len(segs)-1]
	if lastSpan.Idx != finalSeg.Idx {
		t.Fatalf("expected last job's required segments to reach the final segment %d, got %d", finalSeg.Idx, lastSpan.Idx)
	}
}

func TestPlanJobsHaveSequentialOutputPaths(t *testing.T) {
	scores := syntheticScores(60, 20)
	segs := segmentsWithKeyframes(60, 15)

	jobs, err := Plan(scores, segs, 5, 30, 1, "/tmp/segments", "/tmp/slices", "ffmpeg -i input.mp4")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for i, j := range jobs {
		want := "000000.mkv"
		if i > 0 {
			want = "00000" + string(rune('0'+i)) + ".mkv"
		}
		if !strings.HasSuffix(j.OutputPath, want) {
			t.Fatalf("job %d has unexpected output path %q", i, j.OutputPath)
		}
		if j.Taken || j.Completed {
			t.Fatalf("job %d should start untaken and incomplete", i)
		}
	}
}

func TestPlanNoWindowCoversTailInOneJob(t *testing.T) {
	// keyintMin set to the score count so the very first window is already
	// empty: the whole stream becomes one job ending at the final frame
	// with no range correction.
	scores := syntheticScores(30, 10)
	segs := segmentsWithKeyframes(30, 10)

	jobs, err := Plan(scores, segs, 30, 1000, 0, "/tmp/segments", "/tmp/slices", "ffmpeg -i input.mp4")
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected a single job spanning the whole stream, got %d", len(jobs))
	}
}

func TestPlanMultiPassUserCommandProducesAllCommandsPerJob(t *testing.T) {
	scores := syntheticScores(60, 20)
	segs := segmentsWithKeyframes(60, 15)

	userCmd := "ffmpeg -i input.mp4 -pass 1 -f null - ffmpeg -i input.mp4 -pass 2"
	jobs, err := Plan(scores, segs, 5, 30, 1, "/tmp/segments", "/tmp/slices", userCmd)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for i, j := range jobs {
		if len(j.Commands) != 2 {
			t.Fatalf("job %d: expected 2 REMOTE commands for a two-pass user command, got %d", i, len(j.Commands))
		}
		first := j.Commands[0].GetCommand(true)
		second := j.Commands[1].GetCommand(true)
		if !strings.Contains(first, "-pass 1") {
			t.Fatalf("job %d: first pass missing -pass 1: %s", i, first)
		}
		if !strings.Contains(second, "-pass 2") {
			t.Fatalf("job %d: second pass missing -pass 2: %s", i, second)
		}
	}
}

func TestPlanRejectsEmptyInputs(t *testing.T) {
	if _, err := Plan(nil, segmentsWithKeyframes(10, 5), 1, 5, 2, "/tmp/s", "/tmp/o", "ffmpeg"); err == nil {
		t.Fatal("expected error for empty scores")
	}
	if _, err := Plan(syntheticScores(10, 5), nil, 1, 5, 2, "/tmp/s", "/tmp/o", "ffmpeg"); err == nil {
		t.Fatal("expected error for empty segments")
	}
}

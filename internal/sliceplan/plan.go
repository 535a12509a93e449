// Package sliceplan implements the scene/segment/slice planner: the loop
// that turns per-frame scene scores and a segment table into the ordered
// list of Jobs a Dispatcher will hand out to workers.
package sliceplan

import (
	"fmt"
	"sync"

	"github.com/five82/distrffmpeg/internal/argcatalog"
	"github.com/five82/distrffmpeg/internal/ffcmd"
	"github.com/five82/distrffmpeg/internal/sceneanalysis"
	"github.com/five82/distrffmpeg/internal/segment"
)

// Job is one unit of remote work: the REMOTE-scope command(s) to run, the
// segment files it needs staged, and where its output slice belongs.
//
// Taken/Completed/Retries are read and mutated from both the dispatcher's
// loop goroutine and the per-job worker goroutines it spawns; the
// TryTake/Release/MarkCompleted/IncRetries/RetryCount methods guard every
// access with mu so no caller ever observes or clobbers a half-applied
// update. Fields are still exported for tests that inspect a Job after a
// single-goroutine Plan() call, where no synchronization is needed.
type Job struct {
	Commands         []*ffcmd.Command
	SegmentsDir      string
	RequiredSegments []segment.Segment
	OutputPath       string

	mu        sync.Mutex
	Taken     bool
	Completed bool
	Retries   int
}

// TryTake marks the job taken if and only if it is neither already taken
// nor completed, reporting whether the claim succeeded. The check and the
// claim happen as one atomic step, so two callers racing to pick up the
// same job can never both succeed.
func (j *Job) TryTake() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Taken || j.Completed {
		return false
	}
	j.Taken = true
	return true
}

// Release marks the job no longer taken, letting the dispatcher hand it
// to another worker.
func (j *Job) Release() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Taken = false
}

// MarkCompleted marks the job done.
func (j *Job) MarkCompleted() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Completed = true
}

// IncRetries increments and returns the job's retry count (-1 before the
// first attempt, 0 during the first attempt, 1 during the second, ...).
func (j *Job) IncRetries() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Retries++
	return j.Retries
}

// RetryCount returns the job's current retry count.
func (j *Job) RetryCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Retries
}

const remoteTemplate = `ffmpeg -y -f concat -safe 0 -i segments.txt -vf "select=between(n\,%d\,%d),setpts=N/FRAME_RATE/TB" -fps_mode passthrough -frame_pts true -an -g 10000 out.mkv`

// buildJobCommands assembles the REMOTE-scope Command(s) for one slice: the
// fixed concat+select template parameterized with the slice's relative
// frame range, overlaid with the user's own REMOTE-eligible flags (codec,
// crf, filters, ...). A userCmd with more than one literal "ffmpeg"
// pipeline-separator token is a genuine multi-pass encode, so every
// Command the parser produces is returned, not just the first.
func buildJobCommands(relStart, relEnd int, userCmd string) ([]*ffcmd.Command, error) {
	p := ffcmd.NewParser(argcatalog.Remote)
	base := fmt.Sprintf(remoteTemplate, relStart, relEnd)
	if err := p.ParseCommand(base, true); err != nil {
		return nil, fmt.Errorf("sliceplan: building template: %w", err)
	}
	if err := p.ParseCommand(userCmd, false); err != nil {
		return nil, fmt.Errorf("sliceplan: overlaying user command: %w", err)
	}
	return p.Cmds, nil
}

// Plan runs the cur/window/split/range_correction loop over scores and
// segments, producing the ordered Job list. segmentLookahead is added to
// the index of the segment containing the slice's last frame to form the
// exclusive end of the required-segment range, so 2 stages that segment
// plus one more (the source's hard-coded "+2"; see config's
// SegmentLookahead for why it is configurable here).
func Plan(scores []sceneanalysis.Score, segments []segment.Segment, keyintMin, keyintMax, segmentLookahead int, segmentsDir, slicesDir, userCmd string) ([]*Job, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("sliceplan: no scene scores to plan from")
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("sliceplan: no segments to plan from")
	}

	var jobs []*Job
	curFrameIdx := 0
	sliceIdx := 0

	for {
		window := windowFrom(scores, curFrameIdx+keyintMin, curFrameIdx+keyintMax)

		rangeCorrection := 1
		var split sceneanalysis.Score
		if len(window) > 0 {
			split = argmaxScore(window)
		} else {
			rangeCorrection = 0
			split = scores[len(scores)-1]
		}

		first := scores[curFrameIdx]
		last := split

		firstSeg, ok := segment.At(segments, first.Frame)
		if !ok {
			return nil, fmt.Errorf("sliceplan: no segment contains frame %d", first.Frame)
		}
		firstSegIdx := firstSeg.Idx
		for segments[firstSegIdx].FirstKeyframe == nil {
			if firstSegIdx == 0 {
				return nil, fmt.Errorf("sliceplan: no segment with a keyframe found walking back from frame %d", first.Frame)
			}
			firstSegIdx--
		}

		lastSeg, ok := segment.At(segments, last.Frame)
		if !ok {
			return nil, fmt.Errorf("sliceplan: no segment contains frame %d", last.Frame)
		}
		endIdx := lastSeg.Idx + segmentLookahead
		if endIdx > len(segments) {
			endIdx = len(segments)
		}
		required := append([]segment.Segment(nil), segments[firstSegIdx:endIdx]...)

		base := required[0].FrameLo + *required[0].FirstKeyframe
		relStart := first.Frame - base
		relEnd := last.Frame - base - rangeCorrection

		cmds, err := buildJobCommands(relStart, relEnd, userCmd)
		if err != nil {
			return nil, err
		}

		outputPath := fmt.Sprintf("%s/%06d.mkv", slicesDir, sliceIdx)
		jobs = append(jobs, &Job{
			Commands:         cmds,
			SegmentsDir:      segmentsDir,
			RequiredSegments: required,
			OutputPath:       outputPath,
			Retries:          -1,
		})

		if len(window) == 0 {
			break
		}

		curFrameIdx = split.Frame
		sliceIdx++
	}

	return jobs, nil
}

// windowFrom returns the scores whose index lies in [lo, hi), matching the
// source's Python slice semantics (out-of-range bounds are clamped, never
// an error).
func windowFrom(scores []sceneanalysis.Score, lo, hi int) []sceneanalysis.Score {
	if lo < 0 {
		lo = 0
	}
	if lo > len(scores) {
		lo = len(scores)
	}
	if hi > len(scores) {
		hi = len(scores)
	}
	if hi < lo {
		hi = lo
	}
	return scores[lo:hi]
}

// argmaxScore returns the highest-scoring entry in window; ties resolve to
// the first occurrence, matching Python's max() semantics.
func argmaxScore(window []sceneanalysis.Score) sceneanalysis.Score {
	best := window[0]
	for _, s := range window[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return best
}

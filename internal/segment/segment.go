// Package segment cuts the input into fixed-frame-count segment files and
// probes each for its first keyframe packet.
package segment

import "fmt"

// Segment is one fixed-frame-count slice of the raw input, as produced by
// the transcoder's segmenter.
type Segment struct {
	Idx           int
	Filename      string
	FrameLo       int
	FrameHi       int // exclusive
	FirstKeyframe *int
}

// Contains reports whether frame falls within this segment's frame range.
func (s Segment) Contains(frame int) bool {
	return frame >= s.FrameLo && frame < s.FrameHi
}

// Table computes the segment index set for sceneCount frames at
// segmentFrames per segment: segment i covers [i*segmentFrames,
// (i+1)*segmentFrames), for i in [0, sceneCount/segmentFrames].
func Table(sceneCount, segmentFrames int) []Segment {
	n := sceneCount/segmentFrames + 1
	segs := make([]Segment, n)
	for i := 0; i < n; i++ {
		segs[i] = Segment{
			Idx:      i,
			Filename: fmt.Sprintf("out%06d.mkv", i),
			FrameLo:  i * segmentFrames,
			FrameHi:  (i + 1) * segmentFrames,
		}
	}
	return segs
}

// At returns the segment containing frame, or false if none does.
func At(segments []Segment, frame int) (Segment, bool) {
	for _, s := range segments {
		if s.Contains(frame) {
			return s, true
		}
	}
	return Segment{}, false
}

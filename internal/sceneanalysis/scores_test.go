package sceneanalysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseReport(t *testing.T) {
	report := "frame:0 pts:0 pts_time:0.000000\nlavfi.scene_score=0.000000\n" +
		"frame:1 pts:1001 pts_time:0.041708\nlavfi.scene_score=0.812345\n"

	path := filepath.Join(t.TempDir(), "scenescores.txt")
	if err := os.WriteFile(path, []byte(report), 0o600); err != nil {
		t.Fatalf("write report: %v", err)
	}

	scores, err := ParseReport(path)
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	if scores[1].Frame != 1 || scores[1].PTS != 1001 {
		t.Fatalf("unexpected second score: %+v", scores[1])
	}
	if scores[1].Score < 0.81 || scores[1].Score > 0.82 {
		t.Fatalf("unexpected score value: %v", scores[1].Score)
	}
}

func TestBuildCommandSubstitutesPlaceholder(t *testing.T) {
	cmd, err := BuildCommand("/tmp/scores.txt", `ffmpeg -i input.mp4 -c:v libx265`)
	if err != nil {
		t.Fatalf("BuildCommand: %v", err)
	}
	rendered := cmd.GetCommand(true)
	if want := `-i "input.mp4"`; !strings.Contains(rendered, want) {
		t.Fatalf("expected %q in rendered command: %s", want, rendered)
	}
	if strings.Contains(rendered, "PLACEHOLDER") {
		t.Fatalf("placeholder should have been substituted: %s", rendered)
	}
	if strings.Contains(rendered, "libx265") {
		t.Fatalf("REMOTE-only flag should not appear in a PRE command: %s", rendered)
	}
}

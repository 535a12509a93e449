package sceneanalysis

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/five82/distrffmpeg/internal/argcatalog"
	"github.com/five82/distrffmpeg/internal/ffcmd"
	"github.com/five82/distrffmpeg/internal/logging"
)

// sceneTemplate seeds the scene-detection command; PLACEHOLDER is
// substituted with the real input path carried in the user's own -i flag
// when the user command is overlaid on top of this template.
const sceneTemplate = `ffmpeg -y -i PLACEHOLDER -vf "select='gte(scene,0)',metadata=print:file='%s'" -f null -`

// BuildCommand assembles the PRE-scope scene-detection Command: the fixed
// template above, overlaid with whatever PRE-eligible flags (chiefly -i)
// the user's own command line supplies.
func BuildCommand(scoresPath, userCmd string) (*ffcmd.Command, error) {
	p := ffcmd.NewParser(argcatalog.Pre)
	if err := p.ParseCommand(fmt.Sprintf(sceneTemplate, scoresPath), true); err != nil {
		return nil, fmt.Errorf("sceneanalysis: building template: %w", err)
	}
	if err := p.ParseCommand(userCmd, false); err != nil {
		return nil, fmt.Errorf("sceneanalysis: overlaying user command: %w", err)
	}
	return p.Cmds[0], nil
}

// Analyze runs the scene-detection command locally, then parses the
// resulting report into a list of Scores.
func Analyze(ctx context.Context, ffmpegBin, userCmd, scoresPath string, log *logging.Logger) ([]Score, error) {
	cmd, err := BuildCommand(scoresPath, userCmd)
	if err != nil {
		return nil, err
	}

	shellCmd := ffmpegBin + " " + cmd.GetCommand(true)
	log.Logf(logging.Shell, "Running local command: %s", shellCmd)

	c := exec.CommandContext(ctx, "sh", "-c", shellCmd)
	out, err := c.CombinedOutput()
	if err != nil {
		log.Logf(logging.Shell, "Scene analysis command failed: %s", out)
		return nil, fmt.Errorf("%w: %v", ErrLocalCommandFailed, err)
	}

	scores, err := ParseReport(scoresPath)
	if err != nil {
		return nil, err
	}
	log.Logf(logging.Info, "Fetched %d scene scores", len(scores))
	return scores, nil
}

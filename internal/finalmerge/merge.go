// Package finalmerge concatenates a run's completed slices into the final
// output, muxing in the audio track from the original input.
package finalmerge

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/five82/distrffmpeg/internal/argcatalog"
	"github.com/five82/distrffmpeg/internal/ffcmd"
	"github.com/five82/distrffmpeg/internal/logging"
	"github.com/five82/distrffmpeg/internal/sliceplan"
)

const mergeTemplate = `ffmpeg -y -f concat -safe 0 -i "%s" -i PLACEHOLDER -c:v copy -map 0:v:0 -map 1:a:0 "%s"`

// writeSlicesManifest writes the concat-demuxer manifest listing every
// job's output slice, in job order.
func writeSlicesManifest(path string, jobs []*sliceplan.Job) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("finalmerge: creating slices manifest: %w", err)
	}
	defer f.Close()

	for _, j := range jobs {
		if _, err := fmt.Fprintf(f, "file '%s'\n", filepath.Base(j.OutputPath)); err != nil {
			return fmt.Errorf("finalmerge: writing slices manifest: %w", err)
		}
	}
	return nil
}

// BuildCommand assembles the FINAL-scope concat+audio-mux Command,
// overlaid with the user's own FINAL-eligible flags (audio codec,
// container-specific movflags, ...). This assumes the input has exactly
// one audio track, matching the source's own assumption.
//
// A multi-pass userCmd overlays onto the *last* parsed Command, matching
// the source's merge_final_slices (ffcmds[-1]): FINAL-scope flags like
// "-c:a libopus -b:a 32k" are conventionally placed on a pipeline's final
// pass, not its first.
func BuildCommand(slicesManifestPath, outputPath, userCmd string) (*ffcmd.Command, error) {
	p := ffcmd.NewParser(argcatalog.Final)
	base := fmt.Sprintf(mergeTemplate, slicesManifestPath, outputPath)
	if err := p.ParseCommand(base, true); err != nil {
		return nil, fmt.Errorf("finalmerge: building template: %w", err)
	}
	if err := p.ParseCommand(userCmd, false); err != nil {
		return nil, fmt.Errorf("finalmerge: overlaying user command: %w", err)
	}
	return p.Cmds[len(p.Cmds)-1], nil
}

// Merge writes the slices manifest, runs the concat+audio-mux command, and
// removes runWorkPath on success. jobs must all be Completed.
func Merge(ctx context.Context, ffmpegBin, userCmd, slicesDir, outputPath, runWorkPath string, jobs []*sliceplan.Job, log *logging.Logger) error {
	log.Logf(logging.Info, "merging %d slices into %s", len(jobs), outputPath)

	manifestPath := filepath.Join(slicesDir, "slices.txt")
	if err := writeSlicesManifest(manifestPath, jobs); err != nil {
		return err
	}

	cmd, err := BuildCommand(manifestPath, outputPath, userCmd)
	if err != nil {
		return err
	}

	shellCmd := ffmpegBin + " " + cmd.GetCommand(true)
	log.Logf(logging.Shell, "running local command: %s", shellCmd)

	c := exec.CommandContext(ctx, "sh", "-c", shellCmd)
	if out, err := c.CombinedOutput(); err != nil {
		log.Logf(logging.Shell, "merge command failed: %s", out)
		return fmt.Errorf("%w: %v", ErrLocalCommandFailed, err)
	}

	if err := os.RemoveAll(runWorkPath); err != nil {
		log.Logf(logging.Warning, "cleaning up %s: %v", runWorkPath, err)
	}

	return nil
}

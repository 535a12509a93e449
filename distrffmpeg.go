// Package distrffmpeg distributes one ffmpeg transcode across a fleet of
// SSH-reachable workers: it splits the input into fixed-frame segments at
// scene-change-aware boundaries, hands each slice to an idle worker, then
// concatenates the completed slices back into a single output file.
package distrffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/five82/distrffmpeg/internal/argcatalog"
	"github.com/five82/distrffmpeg/internal/config"
	"github.com/five82/distrffmpeg/internal/dispatch"
	"github.com/five82/distrffmpeg/internal/ffcmd"
	"github.com/five82/distrffmpeg/internal/finalmerge"
	"github.com/five82/distrffmpeg/internal/logging"
	"github.com/five82/distrffmpeg/internal/remoteworker"
	"github.com/five82/distrffmpeg/internal/reporter"
	"github.com/five82/distrffmpeg/internal/sceneanalysis"
	"github.com/five82/distrffmpeg/internal/segment"
	"github.com/five82/distrffmpeg/internal/sliceplan"
	"github.com/five82/distrffmpeg/internal/util"
	"github.com/five82/distrffmpeg/internal/validation"
)

// Run loads the config file at cfgPath, resolves any "-df_" overrides out
// of args, and runs the full scene-analysis -> segment -> slice-plan ->
// dispatch -> merge pipeline against the remaining ffmpeg arguments. args
// must not include a program name, unlike os.Args.
//
// rep receives progress events as the run advances; pass nil to discard
// them. Every event is also written to the run's log file regardless of
// rep, matching the teacher's always-on log-plus-optional-terminal
// composition.
func Run(ctx context.Context, cfgPath string, args []string, rep Reporter) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	remaining, err := config.ApplyOverrides(cfg, args)
	if err != nil {
		return err
	}
	userCmd := "ffmpeg " + strings.Join(remaining, " ")

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(string(cfg.LogLevel))
	if err != nil {
		level = logging.Info
	}
	log, err := logging.Setup(logging.DefaultLogDir(), level, append([]string{"distrffmpeg"}, args...))
	if err != nil {
		return err
	}
	defer func() { _ = log.Close() }()
	log.Logf(logging.Shell, "parsed input command line: %s", userCmd)

	if rep == nil {
		rep = reporter.NullReporter{}
	}
	composite := reporter.NewCompositeReporter(rep, reporter.NewLogReporter(log.Writer()))

	if err := pipeline(ctx, cfg, userCmd, log, composite); err != nil {
		composite.Error(reporter.ReporterError{Title: "run failed", Message: err.Error()})
		return err
	}
	return nil
}

// staleRunMaxAgeHours bounds how long an orphaned run directory (left
// behind by a crashed or killed process; normal completion always removes
// its own run directory via finalmerge.Merge) is allowed to linger under
// server_work_path before the next run sweeps it.
const staleRunMaxAgeHours = 24

// pipeline runs one end-to-end encode: scene scores, segments, slice plan,
// dispatch across workers, then the final merge and a best-effort
// post-merge sanity check. This mirrors DistrFFmpeg.run in the source.
func pipeline(ctx context.Context, cfg *config.Config, userCmd string, log *logging.Logger, rep Reporter) error {
	startedAt := time.Now()

	if n, err := util.CleanupStaleTempFiles(cfg.ServerWorkPath, "distrffmpeg", staleRunMaxAgeHours); err != nil {
		log.Logf(logging.Warning, "sweeping stale run directories under %s: %v", cfg.ServerWorkPath, err)
	} else if n > 0 {
		log.Logf(logging.Info, "removed %d stale run directories under %s", n, cfg.ServerWorkPath)
	}

	runDir, err := util.CreateTempDir(cfg.ServerWorkPath, "distrffmpeg")
	if err != nil {
		return fmt.Errorf("distrffmpeg: creating run directory: %w", err)
	}

	segmentsDir := filepath.Join(runDir.Path(), "segments")
	slicesDir := filepath.Join(runDir.Path(), "slices_final")
	scoresPath := filepath.Join(runDir.Path(), "scenescores.txt")
	if err := os.MkdirAll(slicesDir, 0o755); err != nil {
		return fmt.Errorf("distrffmpeg: creating slices directory: %w", err)
	}

	inputPath, err := extractFlagValue(userCmd, "i")
	if err != nil {
		return err
	}
	outputPath, err := extractOutputPath(userCmd, slicesDir)
	if err != nil {
		return err
	}

	scores, err := sceneanalysis.Analyze(ctx, cfg.FfmpegBin, userCmd, scoresPath, log)
	if err != nil {
		return err
	}

	segments, err := segment.Cut(ctx, cfg.FfmpegBin, cfg.FfprobeBin, userCmd, len(scores), cfg.SegmentFrames, segmentsDir, log)
	if err != nil {
		return err
	}

	jobs, err := sliceplan.Plan(scores, segments, cfg.KeyintMin, cfg.KeyintMax, cfg.SegmentLookahead, segmentsDir, slicesDir, userCmd)
	if err != nil {
		return err
	}

	workers := make([]*remoteworker.Worker, 0, len(cfg.Workers))
	for _, wc := range cfg.Workers {
		workers = append(workers, remoteworker.New(wc))
	}

	rep.RunStarted(reporter.RunStartInfo{InputFile: inputPath, OutputFile: outputPath, TotalJobs: len(jobs)})

	var completed atomic.Int64
	emit := func(e dispatch.Event) { forwardDispatchEvent(rep, len(jobs), cfg.JobMaxRetries, &completed, e) }
	if err := dispatch.Run(ctx, jobs, workers, cfg.JobMaxRetries, log, emit); err != nil {
		return err
	}

	rep.MergeStarted(outputPath)
	if err := finalmerge.Merge(ctx, cfg.FfmpegBin, userCmd, slicesDir, outputPath, runDir.Path(), jobs, log); err != nil {
		return err
	}

	runValidation(ctx, cfg, inputPath, outputPath, rep, log)

	rep.RunComplete(reporter.RunOutcome{
		OutputFile: outputPath,
		TotalTime:  time.Since(startedAt),
		JobsTotal:  len(jobs),
	})
	return nil
}

// forwardDispatchEvent adapts a dispatch.Event into the corresponding
// Reporter call, keeping dispatch itself free of any reporting opinion.
func forwardDispatchEvent(rep Reporter, totalJobs, maxRetries int, completed *atomic.Int64, e dispatch.Event) {
	switch e.Kind {
	case dispatch.EventWorkerConnected:
		rep.WorkerConnected(reporter.WorkerConnection{Name: e.Worker, Connected: true})
	case dispatch.EventWorkerUnavailable:
		rep.WorkerConnected(reporter.WorkerConnection{Name: e.Worker, Connected: false})
	case dispatch.EventJobAssigned:
		rep.JobAssigned(reporter.JobAssignment{Worker: e.Worker, JobIndex: e.JobIndex, TotalJobs: totalJobs})
	case dispatch.EventJobCompleted:
		rep.JobCompleted(reporter.JobOutcome{Worker: e.Worker, JobIndex: e.JobIndex, Retries: e.Retries})
		done := completed.Add(1)
		rep.Progress(reporter.ProgressSnapshot{
			JobsCompleted: int(done),
			TotalJobs:     totalJobs,
			Percent:       100 * float64(done) / float64(totalJobs),
		})
	case dispatch.EventJobFailed:
		rep.JobFailed(reporter.JobFailure{Worker: e.Worker, JobIndex: e.JobIndex, Err: e.Err, Retries: e.Retries, MaxRetries: maxRetries})
	case dispatch.EventJobExhausted:
		rep.Warning(fmt.Sprintf("job %d exhausted its retry budget: %v", e.JobIndex, e.Err))
	}
}

// runValidation probes the merged output against the original input and
// reports any discrepancy as a warning; the spec names no validation
// failure mode, so a failed check never fails the run.
func runValidation(ctx context.Context, cfg *config.Config, inputPath, outputPath string, rep Reporter, log *logging.Logger) {
	duration, audioTracks, err := validation.ProbeInput(ctx, cfg.FfprobeBin, inputPath)
	if err != nil {
		log.Logf(logging.Warning, "validation: could not probe input %s: %v", inputPath, err)
		return
	}

	result, err := validation.ValidateOutput(ctx, cfg.FfprobeBin, outputPath, validation.Options{
		ExpectedDuration:    &duration,
		ExpectedAudioTracks: &audioTracks,
	})
	if err != nil {
		log.Logf(logging.Warning, "validation: could not probe output %s: %v", outputPath, err)
		return
	}

	for _, step := range result.Steps {
		log.Logf(logging.Info, "validation: %s: passed=%t %s", step.Name, step.Passed, step.Details)
		if !step.Passed {
			rep.Warning(fmt.Sprintf("validation check %q failed: %s", step.Name, step.Details))
		}
	}
}

// extractFlagValue overlays userCmd on a bare PRE-scope parser and returns
// the literal value bound to the given flag spec (e.g. "i" for -i).
func extractFlagValue(userCmd, spec string) (string, error) {
	p := ffcmd.NewParser(argcatalog.Pre)
	if err := p.ParseCommand(userCmd, false); err != nil {
		return "", fmt.Errorf("distrffmpeg: parsing user command: %w", err)
	}
	for _, cmd := range p.Cmds {
		for _, param := range cmd.Params() {
			if param.Spec != nil && *param.Spec == spec {
				if lit, ok := param.Value.(ffcmd.Literal); ok {
					return string(lit), nil
				}
			}
		}
	}
	return "", fmt.Errorf("distrffmpeg: user command has no -%s flag", spec)
}

// extractOutputPath resolves the final output path the user's own command
// line names as its last positional argument, the same path the final
// merge's FINAL-scope overlay resolves to (see internal/finalmerge).
func extractOutputPath(userCmd, fallbackDir string) (string, error) {
	seed := filepath.Join(fallbackDir, "out.mkv")
	cmd, err := finalmerge.BuildCommand(filepath.Join(fallbackDir, "slices.txt"), seed, userCmd)
	if err != nil {
		return "", err
	}
	params := cmd.Params()
	last := params[len(params)-1]
	if lit, ok := last.Value.(ffcmd.Literal); ok && last.IsOutput() {
		return string(lit), nil
	}
	return seed, nil
}

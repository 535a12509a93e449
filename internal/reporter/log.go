package reporter

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/five82/distrffmpeg/internal/util"
)

// LogReporter writes dispatch events to a log file.
type LogReporter struct {
	w  io.Writer
	mu sync.Mutex
}

// NewLogReporter creates a new log reporter that writes to w.
func NewLogReporter(w io.Writer) *LogReporter {
	return &LogReporter{w: w}
}

func (r *LogReporter) log(level, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(r.w, "%s [%s] %s\n", timestamp, level, msg)
}

func (r *LogReporter) RunStarted(info RunStartInfo) {
	r.log("INFO", "=== RUN STARTED ===")
	r.log("INFO", "Input: %s", info.InputFile)
	r.log("INFO", "Output: %s", info.OutputFile)
	r.log("INFO", "Jobs: %d", info.TotalJobs)
}

func (r *LogReporter) WorkerConnected(c WorkerConnection) {
	if c.Connected {
		r.log("INFO", "Worker %s connected", c.Name)
	} else {
		r.log("WARN", "Worker %s unreachable", c.Name)
	}
}

func (r *LogReporter) JobAssigned(a JobAssignment) {
	r.log("INFO", "Job %d/%d assigned to %s", a.JobIndex+1, a.TotalJobs, a.Worker)
}

func (r *LogReporter) JobCompleted(o JobOutcome) {
	r.log("INFO", "Job %d completed on %s (retry %d)", o.JobIndex+1, o.Worker, o.Retries)
}

func (r *LogReporter) JobFailed(f JobFailure) {
	r.log("WARN", "Job %d failed on %s (retry %d/%d): %v", f.JobIndex+1, f.Worker, f.Retries, f.MaxRetries, f.Err)
}

func (r *LogReporter) Progress(p ProgressSnapshot) {
	r.log("INFO", "Progress: %d/%d jobs (%.1f%%)", p.JobsCompleted, p.TotalJobs, p.Percent)
}

func (r *LogReporter) MergeStarted(outputFile string) {
	r.log("INFO", "=== MERGE STARTED === %s", outputFile)
}

func (r *LogReporter) RunComplete(o RunOutcome) {
	r.log("INFO", "=== RUN COMPLETE ===")
	r.log("INFO", "Output: %s", o.OutputFile)
	r.log("INFO", "Jobs: %d", o.JobsTotal)
	r.log("INFO", "Time: %s", util.FormatDurationFromSecs(int64(o.TotalTime.Seconds())))
}

func (r *LogReporter) Warning(message string) {
	r.log("WARN", "%s", message)
}

func (r *LogReporter) Error(err ReporterError) {
	r.log("ERROR", "%s: %s", err.Title, err.Message)
	if err.Context != "" {
		r.log("ERROR", "  Context: %s", err.Context)
	}
	if err.Suggestion != "" {
		r.log("ERROR", "  Suggestion: %s", err.Suggestion)
	}
}

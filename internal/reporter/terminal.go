package reporter

import (
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/distrffmpeg/internal/util"
)

// labelWidth is the global width for all labels to ensure consistent alignment.
const labelWidth = 16

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu       sync.Mutex
	progress *progressbar.ProgressBar
	cyan     *color.Color
	green    *color.Color
	yellow   *color.Color
	red      *color.Color
	magenta  *color.Color
	bold     *color.Color
	dim      *color.Color
}

// NewTerminalReporter creates a new terminal reporter.
func NewTerminalReporter() *TerminalReporter {
	return &TerminalReporter{
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
		dim:     color.New(color.Faint),
	}
}

// printLabel prints a bold label with fixed width padding followed by a value.
func (r *TerminalReporter) printLabel(label, value string) {
	padded := fmt.Sprintf("%-*s", labelWidth, label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(padded), value)
}

func (r *TerminalReporter) RunStarted(info RunStartInfo) {
	fmt.Println()
	_, _ = r.cyan.Println("RUN")
	r.printLabel("Input:", info.InputFile)
	r.printLabel("Output:", info.OutputFile)
	r.printLabel("Jobs:", fmt.Sprintf("%d", info.TotalJobs))
}

func (r *TerminalReporter) WorkerConnected(c WorkerConnection) {
	if c.Connected {
		r.printLabel("Worker:", fmt.Sprintf("%s %s", r.green.Sprint("✓"), c.Name))
	} else {
		r.printLabel("Worker:", fmt.Sprintf("%s %s (unreachable)", r.red.Sprint("✗"), c.Name))
	}
}

func (r *TerminalReporter) JobAssigned(a JobAssignment) {
	fmt.Printf("  %s job %d/%d -> %s\n", r.magenta.Sprint("›"), a.JobIndex+1, a.TotalJobs, a.Worker)
}

func (r *TerminalReporter) JobCompleted(o JobOutcome) {
	if o.Retries > 0 {
		fmt.Printf("  %s job %d done on %s (retry %d)\n", r.green.Sprint("✓"), o.JobIndex+1, o.Worker, o.Retries)
		return
	}
	fmt.Printf("  %s job %d done on %s\n", r.green.Sprint("✓"), o.JobIndex+1, o.Worker)
}

func (r *TerminalReporter) JobFailed(f JobFailure) {
	fmt.Printf("  %s job %d failed on %s (retry %d/%d): %v\n",
		r.yellow.Sprint("!"), f.JobIndex+1, f.Worker, f.Retries, f.MaxRetries, f.Err)
}

func (r *TerminalReporter) Progress(p ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		r.progress = progressbar.NewOptions64(
			int64(p.TotalJobs),
			progressbar.OptionSetDescription(""),
			progressbar.OptionSetWidth(40),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionShowDescriptionAtLineEnd(),
			progressbar.OptionSetElapsedTime(false),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "Dispatching [",
				BarEnd:        "]",
			}),
		)
	}
	_ = r.progress.Set64(int64(p.JobsCompleted))
	if p.JobsCompleted >= p.TotalJobs {
		_ = r.progress.Finish()
		r.progress = nil
	}
}

func (r *TerminalReporter) MergeStarted(outputFile string) {
	fmt.Println()
	_, _ = r.cyan.Println("MERGE")
	r.printLabel("Output:", outputFile)
}

func (r *TerminalReporter) RunComplete(o RunOutcome) {
	fmt.Println()
	_, _ = r.cyan.Println("RESULTS")
	r.printLabel("Output:", r.green.Sprint(o.OutputFile))
	r.printLabel("Jobs:", fmt.Sprintf("%d", o.JobsTotal))
	r.printLabel("Time:", util.FormatDurationFromSecs(int64(o.TotalTime.Seconds())))
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Println()
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", err.Suggestion)
	}
}

// Package reporter defines the dispatch-event Reporter interface and its
// terminal, log-file, composite, and no-op implementations.
package reporter

import "time"

// RunStartInfo describes a run as it begins.
type RunStartInfo struct {
	InputFile  string
	OutputFile string
	TotalJobs  int
}

// WorkerConnection reports one worker's connect-phase outcome.
type WorkerConnection struct {
	Name      string
	Connected bool
}

// JobAssignment reports a job being handed to a worker.
type JobAssignment struct {
	Worker    string
	JobIndex  int
	TotalJobs int
}

// JobOutcome reports a job finishing successfully. Retries is the job's
// retry count: 0 for a job that succeeded on its first try, 1 if it
// succeeded on its second, and so on.
type JobOutcome struct {
	Worker   string
	JobIndex int
	Retries  int
}

// JobFailure reports a job attempt failing, whether or not it will be
// retried.
type JobFailure struct {
	Worker     string
	JobIndex   int
	Err        error
	Retries    int
	MaxRetries int
}

// ProgressSnapshot reports overall run completion.
type ProgressSnapshot struct {
	JobsCompleted int
	TotalJobs     int
	Percent       float64
}

// RunOutcome reports the run's final result.
type RunOutcome struct {
	OutputFile string
	TotalTime  time.Duration
	JobsTotal  int
}

// ReporterError carries a structured error for display.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// Reporter receives notifications as a dispatch run progresses. All
// methods must be safe to call from multiple goroutines: jobs complete and
// fail concurrently across workers.
type Reporter interface {
	RunStarted(RunStartInfo)
	WorkerConnected(WorkerConnection)
	JobAssigned(JobAssignment)
	JobCompleted(JobOutcome)
	JobFailed(JobFailure)
	Progress(ProgressSnapshot)
	MergeStarted(outputFile string)
	RunComplete(RunOutcome)
	Warning(message string)
	Error(err ReporterError)
}

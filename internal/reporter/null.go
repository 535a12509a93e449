package reporter

// NullReporter discards every notification. Useful as a default when the
// caller supplies none of their own.
type NullReporter struct{}

func (NullReporter) RunStarted(RunStartInfo)          {}
func (NullReporter) WorkerConnected(WorkerConnection) {}
func (NullReporter) JobAssigned(JobAssignment)        {}
func (NullReporter) JobCompleted(JobOutcome)          {}
func (NullReporter) JobFailed(JobFailure)             {}
func (NullReporter) Progress(ProgressSnapshot)        {}
func (NullReporter) MergeStarted(string)              {}
func (NullReporter) RunComplete(RunOutcome)           {}
func (NullReporter) Warning(string)                   {}
func (NullReporter) Error(ReporterError)              {}

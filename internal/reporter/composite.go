package reporter

// CompositeReporter fans every notification out to a fixed list of
// Reporters, in order. Used to drive a terminal reporter and a log
// reporter from the same dispatch run.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter returns a Reporter that forwards to every reporter
// in rs, in order.
func NewCompositeReporter(rs ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: rs}
}

func (c *CompositeReporter) RunStarted(info RunStartInfo) {
	for _, r := range c.reporters {
		r.RunStarted(info)
	}
}

func (c *CompositeReporter) WorkerConnected(conn WorkerConnection) {
	for _, r := range c.reporters {
		r.WorkerConnected(conn)
	}
}

func (c *CompositeReporter) JobAssigned(a JobAssignment) {
	for _, r := range c.reporters {
		r.JobAssigned(a)
	}
}

func (c *CompositeReporter) JobCompleted(o JobOutcome) {
	for _, r := range c.reporters {
		r.JobCompleted(o)
	}
}

func (c *CompositeReporter) JobFailed(f JobFailure) {
	for _, r := range c.reporters {
		r.JobFailed(f)
	}
}

func (c *CompositeReporter) Progress(p ProgressSnapshot) {
	for _, r := range c.reporters {
		r.Progress(p)
	}
}

func (c *CompositeReporter) MergeStarted(outputFile string) {
	for _, r := range c.reporters {
		r.MergeStarted(outputFile)
	}
}

func (c *CompositeReporter) RunComplete(o RunOutcome) {
	for _, r := range c.reporters {
		r.RunComplete(o)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(err ReporterError) {
	for _, r := range c.reporters {
		r.Error(err)
	}
}

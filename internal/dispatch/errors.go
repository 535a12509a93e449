package dispatch

import "errors"

// ErrNoWorkersOnline is returned when zero workers connect during the
// dispatch loop's connect phase.
var ErrNoWorkersOnline = errors.New("dispatch: no workers online")

// ErrRetriesExhausted is returned when a job's retry count reaches its
// configured retry budget without completing.
var ErrRetriesExhausted = errors.New("dispatch: job exhausted its retry budget")

// ErrJobFailed wraps any error from a single job attempt on a worker,
// surfaced via Event.Err on EventJobFailed; it never stops the run by
// itself, only ErrRetriesExhausted does.
var ErrJobFailed = errors.New("dispatch: job attempt failed")

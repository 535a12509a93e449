// Package distrffmpeg provides a Go library for distributing an ffmpeg
// transcode across a fleet of SSH-reachable workers.
//
// This file re-exports the internal Reporter interface and its event
// payload types so callers can receive dispatch events directly, the same
// re-export shape the teacher uses for its own Reporter.
package distrffmpeg

import "github.com/five82/distrffmpeg/internal/reporter"

// Reporter receives notifications as a run progresses. Implement this
// interface to receive worker-connect, job-assignment, and completion
// events directly instead of the built-in terminal/log output.
type Reporter = reporter.Reporter

// NullReporter is a no-op Reporter that discards all updates.
type NullReporter = reporter.NullReporter

// RunStartInfo describes a run as it begins.
type RunStartInfo = reporter.RunStartInfo

// WorkerConnection reports one worker's connect-phase outcome.
type WorkerConnection = reporter.WorkerConnection

// JobAssignment reports a job being handed to a worker.
type JobAssignment = reporter.JobAssignment

// JobOutcome reports a job finishing successfully.
type JobOutcome = reporter.JobOutcome

// JobFailure reports a job attempt failing, whether or not it will be
// retried.
type JobFailure = reporter.JobFailure

// ProgressSnapshot reports overall run completion.
type ProgressSnapshot = reporter.ProgressSnapshot

// RunOutcome reports the run's final result.
type RunOutcome = reporter.RunOutcome

// ReporterError carries a structured error for display.
type ReporterError = reporter.ReporterError

// Package dispatch runs the worker pool against a planned job list: it
// connects to every configured worker, then repeatedly hands idle workers
// the next untaken job until the list is exhausted or the job's retry
// budget is spent.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/distrffmpeg/internal/logging"
	"github.com/five82/distrffmpeg/internal/remoteworker"
	"github.com/five82/distrffmpeg/internal/sliceplan"
)

// pollInterval is how long the dispatch loop sleeps between scans for an
// idle worker and an available job, matching the source's 5s poll.
const pollInterval = 5 * time.Second

// EventFunc receives dispatch progress notifications; dispatch itself has
// no opinion on how they're displayed (see internal/reporter for that).
type EventFunc func(Event)

// EventKind distinguishes the shapes of Event.
type EventKind int

const (
	EventWorkerConnected EventKind = iota
	EventWorkerUnavailable
	EventJobAssigned
	EventJobCompleted
	EventJobFailed
	EventJobExhausted
)

// Event is one notification emitted by Run as the dispatch loop
// progresses.
type Event struct {
	Kind     EventKind
	Worker   string
	JobIndex int
	Retries  int
	Err      error
}

// Run connects every worker, then dispatches jobs to idle workers until all
// jobs complete or a job exhausts its retry budget, in which case Run
// returns an error wrapping ErrRetriesExhausted that names the job and its
// retry count. Workers that fail to connect are excluded
// from the active pool rather than failing the run, matching the source's
// per-worker connect-or-skip behavior.
func Run(ctx context.Context, jobs []*sliceplan.Job, workers []*remoteworker.Worker, maxRetries int, log *logging.Logger, emit EventFunc) error {
	if emit == nil {
		emit = func(Event) {}
	}

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *remoteworker.Worker) {
			defer wg.Done()
			if err := w.Connect(ctx, log); err != nil {
				emit(Event{Kind: EventWorkerUnavailable, Worker: w.Name, Err: err})
				return
			}
			if w.State() == remoteworker.Idle {
				emit(Event{Kind: EventWorkerConnected, Worker: w.Name})
			} else {
				emit(Event{Kind: EventWorkerUnavailable, Worker: w.Name})
			}
		}(w)
	}
	wg.Wait()

	active := make([]*remoteworker.Worker, 0, len(workers))
	for _, w := range workers {
		if w.State() == remoteworker.Idle {
			active = append(active, w)
		}
	}
	if len(active) == 0 {
		return ErrNoWorkersOnline
	}
	defer func() {
		for _, w := range active {
			_ = w.Disconnect()
		}
	}()

	var mu sync.Mutex
	var runErr atomic.Pointer[error]
	setErr := func(err error) {
		runErr.CompareAndSwap(nil, &err)
	}
	getErr := func() error {
		if p := runErr.Load(); p != nil {
			return *p
		}
		return nil
	}

	remaining := len(jobs)
	var runWg sync.WaitGroup

	for {
		if getErr() != nil {
			break
		}

		mu.Lock()
		if remaining == 0 {
			mu.Unlock()
			break
		}

		var job *sliceplan.Job
		var jobIdx int
		for i, j := range jobs {
			if j.TryTake() {
				job = j
				jobIdx = i
				break
			}
		}

		if job == nil {
			mu.Unlock()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollInterval):
			}
			continue
		}

		if retries := job.RetryCount(); retries >= maxRetries {
			mu.Unlock()
			setErr(fmt.Errorf("%w: job %d (%d retries)", ErrRetriesExhausted, jobIdx, retries))
			emit(Event{Kind: EventJobExhausted, JobIndex: jobIdx})
			break
		}

		// Claiming the worker (Idle->Busy) happens here, still under mu,
		// right alongside the job's own claim above: no other dispatch
		// iteration can run between the two, so a worker can never be
		// handed two jobs before its first RunJob goroutine even starts.
		var worker *remoteworker.Worker
		for _, w := range active {
			if w.TryClaim() {
				worker = w
				break
			}
		}

		if worker == nil {
			job.Release()
			mu.Unlock()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollInterval):
			}
			continue
		}

		mu.Unlock()

		emit(Event{Kind: EventJobAssigned, Worker: worker.Name, JobIndex: jobIdx})

		runWg.Add(1)
		go func(job *sliceplan.Job, jobIdx int, worker *remoteworker.Worker) {
			defer runWg.Done()

			if err := worker.RunJob(ctx, job, log); err != nil {
				emit(Event{Kind: EventJobFailed, Worker: worker.Name, JobIndex: jobIdx, Retries: job.RetryCount(), Err: fmt.Errorf("%w: %v", ErrJobFailed, err)})
				return
			}

			mu.Lock()
			remaining--
			mu.Unlock()
			emit(Event{Kind: EventJobCompleted, Worker: worker.Name, JobIndex: jobIdx, Retries: job.RetryCount()})
		}(job, jobIdx, worker)
	}

	runWg.Wait()

	if err := getErr(); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if remaining != 0 {
		return fmt.Errorf("dispatch: loop exited with %d jobs still incomplete", remaining)
	}
	return nil
}

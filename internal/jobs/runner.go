// Package jobs executes blocking operations off the interactive loop. The
// runner holds a single slot: while one job is in flight every other start
// request is rejected, never queued.
package jobs

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"voice-clone-studio/internal/dispatch"
	"voice-clone-studio/internal/domain"
)

// Work is one blocking operation. It runs on its own goroutine and has no
// side channel back to the loop except its return value or error.
type Work func(ctx context.Context) (any, error)

// Runner owns the single slot for the current long operation and delivers
// exactly one terminal outcome per job onto the dispatch loop.
type Runner struct {
	loop *dispatch.Loop

	mu      sync.Mutex
	current *domain.Job
}

// NewRunner creates an idle runner delivering outcomes via loop.
func NewRunner(loop *dispatch.Loop) *Runner {
	return &Runner{loop: loop}
}

// Busy reports whether a job is pending or running.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

// Current returns a snapshot of the in-flight job, if any.
func (r *Runner) Current() (domain.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return domain.Job{}, false
	}
	return *r.current, true
}

// Start launches work on a worker goroutine. Exactly one of onSuccess or
// onFailure is invoked, exactly once, on the dispatch loop. A second start
// while busy is rejected with a busy error and starts nothing.
func (r *Runner) Start(kind domain.JobKind, work Work, onSuccess func(result any), onFailure func(failure *domain.AppError)) (domain.Job, error) {
	r.mu.Lock()
	if r.current != nil {
		inFlight := r.current.Kind
		r.mu.Unlock()
		return domain.Job{}, domain.E(domain.ErrBusy,
			"another operation is in progress: "+string(inFlight))
	}

	job := domain.Job{
		ID:    uuid.NewString(),
		Kind:  kind,
		State: domain.JobStatePending,
	}
	r.current = &job
	r.mu.Unlock()

	go r.execute(job, work, onSuccess, onFailure)
	return job, nil
}

// execute runs the work and posts its single terminal outcome.
func (r *Runner) execute(job domain.Job, work Work, onSuccess func(any), onFailure func(*domain.AppError)) {
	r.setState(job.ID, domain.JobStateRunning)

	result, err := work(context.Background())

	if err != nil {
		failure := domain.Classify(err)
		r.setState(job.ID, domain.JobStateFailed)
		r.loop.Post(func() {
			r.clear(job.ID)
			if onFailure != nil {
				onFailure(failure)
			}
		})
		return
	}

	r.setState(job.ID, domain.JobStateSucceeded)
	r.loop.Post(func() {
		r.clear(job.ID)
		if onSuccess != nil {
			onSuccess(result)
		}
	})
}

// setState advances the in-flight job's forward-only state.
func (r *Runner) setState(jobID string, state domain.JobState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil && r.current.ID == jobID {
		r.current.State = state
	}
}

// clear frees the slot once the terminal outcome is being delivered.
func (r *Runner) clear(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil && r.current.ID == jobID {
		r.current = nil
	}
}

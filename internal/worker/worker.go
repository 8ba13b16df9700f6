// Package worker runs library passes in the background and exposes their
// progress so interactive frontends stay responsive.
package worker

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// Progress is one progress report from a running job. Fraction is in [0, 1];
// Text is the user-facing description of the current step.
type Progress struct {
	Fraction float64
	Text     string
}

// Result is the terminal outcome of a job.
type Result struct {
	ID  string
	Err error
}

// Job is a single background pass. Progress and Done are owned by the job and
// closed when it finishes; Done delivers exactly one Result.
type Job struct {
	id        string
	cancel    context.CancelFunc
	cancelled atomic.Bool
	progress  chan Progress
	done      chan Result
}

// Fn is the work a job performs. It must honor ctx and poll interrupted at
// its checkpoints; report may be passed down as a progress callback.
type Fn func(ctx context.Context, report func(fraction float64, text string), interrupted func() bool) error

// Run starts fn on its own goroutine and returns the job handle immediately.
func Run(ctx context.Context, fn Fn) *Job {
	ctx, cancel := context.WithCancel(ctx)
	j := &Job{
		id:       uuid.NewString(),
		cancel:   cancel,
		progress: make(chan Progress, 16),
		done:     make(chan Result, 1),
	}
	go func() {
		defer cancel()
		err := fn(ctx, j.report, j.cancelled.Load)
		close(j.progress)
		j.done <- Result{ID: j.id, Err: err}
		close(j.done)
	}()
	return j
}

func (j *Job) report(fraction float64, text string) {
	select {
	case j.progress <- Progress{Fraction: fraction, Text: text}:
	default:
		// Drop reports the consumer has fallen behind on; the next one
		// carries a fresher fraction anyway.
	}
}

// ID returns the job's unique id.
func (j *Job) ID() string { return j.id }

// Progress returns the stream of progress reports. Closed on completion.
func (j *Job) Progress() <-chan Progress { return j.progress }

// Done returns the channel delivering the terminal Result.
func (j *Job) Done() <-chan Result { return j.done }

// Cancel requests a graceful stop. The job keeps running until its next
// checkpoint; partial progress up to that point is preserved.
func (j *Job) Cancel() {
	j.cancelled.Store(true)
	j.cancel()
}

// Cancelled reports whether Cancel has been called.
func (j *Job) Cancelled() bool { return j.cancelled.Load() }

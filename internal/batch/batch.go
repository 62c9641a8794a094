// Package batch implements a chunk-oriented step engine: items are pulled
// from a Reader one at a time, run through a Processor, buffered, and
// flushed to a Writer in fixed-size chunks that commit atomically.
// Execution is single-threaded per step and strictly source-ordered.
package batch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Reader produces a lazy, finite, non-restartable sequence of items.
// Read returns io.EOF when the source is exhausted. Any other error is an
// item-level failure governed by the step's fault policy.
type Reader[S any] interface {
	Read(ctx context.Context) (S, error)
}

// Processor maps one input item to one output item. A returned error marks
// the item as failed; the fault policy decides retry, skip, or abort.
type Processor[S, T any] interface {
	Process(ctx context.Context, item S) (T, error)
}

// Writer persists one chunk as a single atomic unit. On error the whole
// chunk is discarded; a writer failure is always fatal to the step.
type Writer[T any] interface {
	Write(ctx context.Context, chunk []T) error
}

// Status is the terminal state of a step or job execution.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// StepResult carries the exact counters and terminal status of one step run.
type StepResult struct {
	Name    string
	Read    int // items successfully read from the source
	Written int // items committed by the writer
	Skipped int // items dropped under the fault policy
	Failed  int // items whose failure aborted the step
	Status  Status
	Err     error
}

// Step is one source -> transform -> sink pipeline execution within a job.
type Step interface {
	Name() string
	Execute(ctx context.Context) StepResult
}

// Job is an ordered sequence of steps launched with named run parameters.
type Job struct {
	Name  string
	Steps []Step
}

// Params are the named run parameters of a job launch.
type Params map[string]string

// Well-known parameter names recognized by the shipped jobs.
const (
	ParamRunDate   = "run.date"
	ParamRunPeriod = "run.period"
	ParamRunYear   = "run.year"
)

// JobExecution aggregates the outcome of one job launch.
type JobExecution struct {
	ID        uuid.UUID
	JobName   string
	Params    Params
	StartTime time.Time
	EndTime   time.Time
	Status    Status
	Steps     []StepResult
	Err       error
}

// Counts sums the step counters across the execution.
func (e *JobExecution) Counts() (read, written, skipped, failed int) {
	for _, s := range e.Steps {
		read += s.Read
		written += s.Written
		skipped += s.Skipped
		failed += s.Failed
	}
	return read, written, skipped, failed
}

// Duration is the wall-clock time between job start and end.
func (e *JobExecution) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// ErrRunInProgress is returned when a job with identical parameters is
// already executing.
var ErrRunInProgress = errors.New("job run already in progress")

// ErrSkipLimitExceeded marks a step abort caused by exhausting the skip
// allowance of its fault policy.
var ErrSkipLimitExceeded = errors.New("skip limit exceeded")

package batch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Runner launches jobs, sequences their steps, and notifies listeners.
// Steps run strictly in order; the next step never starts before the
// previous reports a terminal status. Run blocks until the job does.
type Runner struct {
	listeners []Listener

	mu     sync.Mutex
	active map[string]struct{} // job name + params of in-flight runs
}

// NewRunner creates a Runner with the given listeners. Listeners are
// notified in registration order and never influence control flow.
func NewRunner(listeners ...Listener) *Runner {
	return &Runner{
		listeners: listeners,
		active:    make(map[string]struct{}),
	}
}

// Run executes a job to a terminal status. A second run of the same job
// with identical parameters while one is in flight fails with
// ErrRunInProgress; the shared stores are not built for interleaved writes.
func (r *Runner) Run(ctx context.Context, job Job, params Params) (*JobExecution, error) {
	key := runKey(job.Name, params)
	if err := r.acquire(key); err != nil {
		return nil, err
	}
	defer r.release(key)

	exec := &JobExecution{
		ID:        uuid.New(),
		JobName:   job.Name,
		Params:    params,
		StartTime: time.Now(),
		Status:    StatusCompleted,
	}

	for _, l := range r.listeners {
		l.BeforeJob(exec)
	}

	for _, step := range job.Steps {
		for _, l := range r.listeners {
			l.BeforeStep(exec, step.Name())
		}

		res := step.Execute(ctx)
		exec.Steps = append(exec.Steps, res)

		for _, l := range r.listeners {
			l.AfterStep(exec, res)
		}

		if res.Status == StatusFailed {
			// Completed sibling steps keep their persisted output; there is
			// no job-level rollback.
			exec.Status = StatusFailed
			exec.Err = res.Err
			break
		}
	}

	exec.EndTime = time.Now()

	for _, l := range r.listeners {
		l.AfterJob(exec)
	}

	return exec, nil
}

func (r *Runner) acquire(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, running := r.active[key]; running {
		return fmt.Errorf("%w: %s", ErrRunInProgress, key)
	}
	r.active[key] = struct{}{}
	return nil
}

func (r *Runner) release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, key)
}

// runKey builds a canonical lock key from the job name and its parameters.
func runKey(jobName string, params Params) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(jobName)
	for _, k := range keys {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}
	return b.String()
}

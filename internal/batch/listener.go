package batch

import "github.com/rs/zerolog"

// Listener observes job and step lifecycle events. Implementations are
// consumed for logging and audit only; they must not mutate the execution.
type Listener interface {
	BeforeJob(exec *JobExecution)
	AfterJob(exec *JobExecution)
	BeforeStep(exec *JobExecution, stepName string)
	AfterStep(exec *JobExecution, result StepResult)
}

// LogListener reports job and step execution through a structured logger.
type LogListener struct {
	log zerolog.Logger
}

// NewLogListener creates a LogListener.
func NewLogListener(log zerolog.Logger) *LogListener {
	return &LogListener{log: log}
}

func (l *LogListener) BeforeJob(exec *JobExecution) {
	l.log.Info().
		Str("job", exec.JobName).
		Str("execution_id", exec.ID.String()).
		Interface("params", exec.Params).
		Msg("starting job")
}

func (l *LogListener) AfterJob(exec *JobExecution) {
	read, written, skipped, failed := exec.Counts()
	evt := l.log.Info()
	if exec.Status == StatusFailed {
		evt = l.log.Error().Err(exec.Err)
	}
	evt.
		Str("job", exec.JobName).
		Str("execution_id", exec.ID.String()).
		Str("status", string(exec.Status)).
		Dur("duration", exec.Duration()).
		Int("read", read).
		Int("written", written).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("job finished")
}

func (l *LogListener) BeforeStep(exec *JobExecution, stepName string) {
	l.log.Info().
		Str("job", exec.JobName).
		Str("step", stepName).
		Msg("starting step")
}

func (l *LogListener) AfterStep(exec *JobExecution, result StepResult) {
	evt := l.log.Info()
	if result.Status == StatusFailed {
		evt = l.log.Warn().Err(result.Err)
	}
	evt.
		Str("job", exec.JobName).
		Str("step", result.Name).
		Str("status", string(result.Status)).
		Int("read", result.Read).
		Int("written", result.Written).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("step finished")
}

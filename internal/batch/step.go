package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ChunkStep is the chunk-oriented Step implementation. It never prefetches
// beyond the item needed to fill the current chunk, and it never writes an
// item that has not passed through the processor.
type ChunkStep[S, T any] struct {
	name      string
	reader    Reader[S]
	processor Processor[S, T]
	writer    Writer[T]
	chunkSize int
	policy    FaultPolicy
}

// NewChunkStep builds a chunk step. chunkSize must be at least 1.
func NewChunkStep[S, T any](name string, reader Reader[S], processor Processor[S, T], writer Writer[T], chunkSize int, policy FaultPolicy) *ChunkStep[S, T] {
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &ChunkStep[S, T]{
		name:      name,
		reader:    reader,
		processor: processor,
		writer:    writer,
		chunkSize: chunkSize,
		policy:    policy,
	}
}

// Name returns the step name.
func (s *ChunkStep[S, T]) Name() string { return s.name }

// Execute runs the step to a single terminal status. Counters are exact:
// Read counts items pulled from the source, Written counts items committed
// by the writer, Skipped counts items dropped under the policy, Failed is
// non-zero only when the step aborted on an item.
func (s *ChunkStep[S, T]) Execute(ctx context.Context) StepResult {
	res := StepResult{Name: s.name, Status: StatusCompleted}
	buf := make([]T, 0, s.chunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return s.fail(res, fmt.Errorf("step %q: %w", s.name, err))
		}

		item, err := s.reader.Read(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A malformed source item. The source is non-restartable, so a
			// re-read would consume the next item; only the skip allowance
			// applies here.
			if s.policy.CanSkip(res.Skipped) {
				res.Skipped++
				continue
			}
			return s.abortOnItem(res, fmt.Errorf("step %q: read: %w", s.name, err), err)
		}
		res.Read++

		out, err := s.process(ctx, item)
		if err != nil {
			if s.policy.CanSkip(res.Skipped) {
				res.Skipped++
				continue
			}
			return s.abortOnItem(res, fmt.Errorf("step %q: process: %w", s.name, err), err)
		}

		buf = append(buf, out)
		if len(buf) == s.chunkSize {
			if err := s.flush(ctx, buf, &res); err != nil {
				return s.fail(res, err)
			}
			buf = buf[:0]
		}
	}

	if len(buf) > 0 {
		if err := s.flush(ctx, buf, &res); err != nil {
			return s.fail(res, err)
		}
	}

	return res
}

// process invokes the processor, re-invoking on failure up to the policy's
// retry limit. The last error is returned when all attempts fail.
func (s *ChunkStep[S, T]) process(ctx context.Context, item S) (T, error) {
	out, err := s.processor.Process(ctx, item)
	for attempt := 0; err != nil && attempt < s.policy.RetryLimit(); attempt++ {
		out, err = s.processor.Process(ctx, item)
	}
	return out, err
}

// flush commits the buffered chunk as one atomic unit. On writer failure
// the chunk is discarded whole; no count is added to Written.
func (s *ChunkStep[S, T]) flush(ctx context.Context, chunk []T, res *StepResult) error {
	if err := s.writer.Write(ctx, chunk); err != nil {
		return fmt.Errorf("step %q: writing chunk of %d: %w", s.name, len(chunk), err)
	}
	res.Written += len(chunk)
	return nil
}

// abortOnItem finalizes the result after an item failure the policy could
// not absorb. When skips already happened, the abort is attributed to the
// exhausted skip allowance.
func (s *ChunkStep[S, T]) abortOnItem(res StepResult, wrapped, cause error) StepResult {
	res.Failed++
	if s.policy.SkipsEnabled() {
		wrapped = fmt.Errorf("step %q: %w after %d skips: %w", s.name, ErrSkipLimitExceeded, res.Skipped, cause)
	}
	return s.fail(res, wrapped)
}

func (s *ChunkStep[S, T]) fail(res StepResult, err error) StepResult {
	res.Status = StatusFailed
	res.Err = err
	return res
}

package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upperProcessor uppercases strings and fails on items listed in failOn.
// failCount tracks invocations per item so retry behavior can be asserted.
type upperProcessor struct {
	failOn    map[string]int // item -> number of times it should fail
	callCount map[string]int
}

func newUpperProcessor(failOn map[string]int) *upperProcessor {
	return &upperProcessor{failOn: failOn, callCount: make(map[string]int)}
}

func (p *upperProcessor) Process(_ context.Context, item string) (string, error) {
	p.callCount[item]++
	if remaining := p.failOn[item]; remaining > 0 {
		p.failOn[item] = remaining - 1
		return "", fmt.Errorf("bad item %q", item)
	}
	return strings.ToUpper(item), nil
}

// chunkRecorder records every committed chunk and can fail on demand.
type chunkRecorder struct {
	chunks  [][]string
	failOn  int // 1-based chunk ordinal to fail on, 0 = never
	attempt int
}

func (w *chunkRecorder) Write(_ context.Context, chunk []string) error {
	w.attempt++
	if w.failOn != 0 && w.attempt == w.failOn {
		return errors.New("sink unavailable")
	}
	cp := make([]string, len(chunk))
	copy(cp, chunk)
	w.chunks = append(w.chunks, cp)
	return nil
}

func (w *chunkRecorder) written() []string {
	var all []string
	for _, c := range w.chunks {
		all = append(all, c...)
	}
	return all
}

func items(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("item-%02d", i)
	}
	return out
}

func TestChunkStep_CompletesAndFlushesPartialChunk(t *testing.T) {
	proc := newUpperProcessor(nil)
	sink := &chunkRecorder{}
	step := NewChunkStep[string, string]("s", NewSliceReader(items(7)), proc, sink, 3, NoTolerance())

	res := step.Execute(context.Background())

	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, 7, res.Read)
	assert.Equal(t, 7, res.Written)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 0, res.Failed)
	// Chunks of 3, 3, and a final partial of 1.
	require.Len(t, sink.chunks, 3)
	assert.Len(t, sink.chunks[2], 1)
	assert.Equal(t, "ITEM-00", sink.chunks[0][0])
}

func TestChunkStep_EmptySourceWritesNothing(t *testing.T) {
	sink := &chunkRecorder{}
	step := NewChunkStep[string, string]("s", NewSliceReader([]string(nil)), newUpperProcessor(nil), sink, 3, NoTolerance())

	res := step.Execute(context.Background())

	assert.Equal(t, StatusCompleted, res.Status)
	assert.Zero(t, res.Read)
	assert.Empty(t, sink.chunks)
}

func TestChunkStep_NoToleranceAbortsOnFirstFailure(t *testing.T) {
	proc := newUpperProcessor(map[string]int{"item-02": 1})
	sink := &chunkRecorder{}
	step := NewChunkStep[string, string]("s", NewSliceReader(items(6)), proc, sink, 2, NoTolerance())

	res := step.Execute(context.Background())

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 3, res.Read)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 0, res.Skipped)
	// Only the first full chunk had been committed.
	assert.Equal(t, []string{"ITEM-00", "ITEM-01"}, sink.written())
	assert.NotErrorIs(t, res.Err, ErrSkipLimitExceeded)
}

func TestChunkStep_SkipPolicyDropsFailedItems(t *testing.T) {
	proc := newUpperProcessor(map[string]int{"item-01": 1, "item-04": 1})
	sink := &chunkRecorder{}
	step := NewChunkStep[string, string]("s", NewSliceReader(items(6)), proc, sink, 10, SkipPolicy(5))

	res := step.Execute(context.Background())

	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, 6, res.Read)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 4, res.Written)
	assert.Equal(t, []string{"ITEM-00", "ITEM-02", "ITEM-03", "ITEM-05"}, sink.written())
}

func TestChunkStep_SkipLimitBoundary(t *testing.T) {
	// Exactly at the limit the step completes; one more failure aborts it.
	failTwo := map[string]int{"item-00": 1, "item-01": 1}
	step := NewChunkStep[string, string]("s", NewSliceReader(items(4)), newUpperProcessor(failTwo), &chunkRecorder{}, 2, SkipPolicy(2))
	res := step.Execute(context.Background())
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, 2, res.Skipped)

	failThree := map[string]int{"item-00": 1, "item-01": 1, "item-02": 1}
	sink := &chunkRecorder{}
	step = NewChunkStep[string, string]("s", NewSliceReader(items(6)), newUpperProcessor(failThree), sink, 2, SkipPolicy(2))
	res = step.Execute(context.Background())
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 1, res.Failed)
	assert.ErrorIs(t, res.Err, ErrSkipLimitExceeded)
	// No item after the aborting one was written.
	assert.Empty(t, sink.written())
}

func TestChunkStep_RetryReinvokesSameItem(t *testing.T) {
	// item-01 fails twice, succeeds on the third invocation.
	proc := newUpperProcessor(map[string]int{"item-01": 2})
	sink := &chunkRecorder{}
	step := NewChunkStep[string, string]("s", NewSliceReader(items(3)), proc, sink, 3, RetryPolicy(3))

	res := step.Execute(context.Background())

	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, 3, res.Written)
	assert.Equal(t, 3, proc.callCount["item-01"])
	assert.Equal(t, 1, proc.callCount["item-00"])
}

func TestChunkStep_RetryExhaustionAborts(t *testing.T) {
	proc := newUpperProcessor(map[string]int{"item-01": 10})
	sink := &chunkRecorder{}
	step := NewChunkStep[string, string]("s", NewSliceReader(items(3)), proc, sink, 3, RetryPolicy(3))

	res := step.Execute(context.Background())

	assert.Equal(t, StatusFailed, res.Status)
	// First invocation plus 3 retries.
	assert.Equal(t, 4, proc.callCount["item-01"])
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 0, res.Skipped)
	assert.Empty(t, sink.written())
}

func TestChunkStep_RetryThenSkip(t *testing.T) {
	proc := newUpperProcessor(map[string]int{"item-01": 10})
	sink := &chunkRecorder{}
	step := NewChunkStep[string, string]("s", NewSliceReader(items(3)), proc, sink, 3, RetryThenSkip(2, 5))

	res := step.Execute(context.Background())

	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, 3, proc.callCount["item-01"]) // 1 + 2 retries
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []string{"ITEM-00", "ITEM-02"}, sink.written())
}

func TestChunkStep_SinkFailureDiscardsChunkAndAborts(t *testing.T) {
	proc := newUpperProcessor(nil)
	sink := &chunkRecorder{failOn: 2}
	step := NewChunkStep[string, string]("s", NewSliceReader(items(9)), proc, sink, 3, SkipPolicy(100))

	res := step.Execute(context.Background())

	assert.Equal(t, StatusFailed, res.Status)
	// Chunk 1 committed, chunk 2 discarded whole, chunk 3 never attempted.
	assert.Equal(t, 3, res.Written)
	assert.Equal(t, 2, sink.attempt)
	assert.Equal(t, []string{"ITEM-00", "ITEM-01", "ITEM-02"}, sink.written())
	// A sink failure is never downgraded to a per-item skip.
	assert.Equal(t, 0, res.Skipped)
}

// failingReader yields an item error mid-stream.
type failingReader struct {
	reads int
}

func (r *failingReader) Read(_ context.Context) (string, error) {
	r.reads++
	switch r.reads {
	case 1:
		return "ok-1", nil
	case 2:
		return "", errors.New("malformed line")
	case 3:
		return "ok-2", nil
	}
	var zero string
	return zero, io.EOF
}

func TestChunkStep_ReadErrorGovernedByPolicy(t *testing.T) {
	sink := &chunkRecorder{}
	step := NewChunkStep[string, string]("s", &failingReader{}, newUpperProcessor(nil), sink, 2, SkipPolicy(1))

	res := step.Execute(context.Background())

	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, 2, res.Read)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []string{"OK-1", "OK-2"}, sink.written())
}

func TestChunkStep_ReadErrorAbortsWithoutPolicy(t *testing.T) {
	sink := &chunkRecorder{}
	step := NewChunkStep[string, string]("s", &failingReader{}, newUpperProcessor(nil), sink, 2, NoTolerance())

	res := step.Execute(context.Background())

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 1, res.Read)
	assert.Empty(t, sink.written())
}

func TestChunkStep_ContextCancelFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	step := NewChunkStep[string, string]("s", NewSliceReader(items(3)), newUpperProcessor(nil), &chunkRecorder{}, 2, NoTolerance())
	res := step.Execute(ctx)

	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

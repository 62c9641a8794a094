package batch

import (
	"context"
	"io"
)

// SliceReader serves items from an in-memory slice, one per Read. Used for
// enumeration sources such as "all accounts".
type SliceReader[S any] struct {
	items []S
	next  int
}

// NewSliceReader creates a SliceReader over items.
func NewSliceReader[S any](items []S) *SliceReader[S] {
	return &SliceReader[S]{items: items}
}

// Read returns the next item, or io.EOF once the slice is exhausted.
func (r *SliceReader[S]) Read(ctx context.Context) (S, error) {
	if err := ctx.Err(); err != nil {
		var zero S
		return zero, err
	}
	if r.next >= len(r.items) {
		var zero S
		return zero, io.EOF
	}
	item := r.items[r.next]
	r.next++
	return item, nil
}

// Package feed reads the bank's legacy delimited transaction feed. The
// feed's column names are configurable per environment but the column
// order is fixed: id, fecha, monto, tipo. The first line is a header and
// is skipped. Lines are pulled lazily, one per Read.
package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bancodev/bankbatch/internal/model"
)

const numColumns = 4

const (
	colID = iota
	colFecha
	colMonto
	colTipo
)

// Options configure a feed Reader.
type Options struct {
	Delimiter rune // 0 means ','
}

// Reader is a lazy, finite, non-restartable source of legacy records.
// It implements batch.Reader[model.LegacyRecord].
type Reader struct {
	cr      *csv.Reader
	closer  io.Closer
	line    int
	skipped bool // header consumed
}

// New creates a Reader over r.
func New(r io.Reader, opts Options) *Reader {
	cr := csv.NewReader(r)
	// Lenient: rows with missing trailing fields are padded empty and left
	// to validation; only structurally broken lines error.
	cr.FieldsPerRecord = -1
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	return &Reader{cr: cr}
}

// Open creates a Reader over a feed file. Close releases the file.
func Open(path string, opts Options) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feed: %w", err)
	}
	r := New(f, opts)
	r.closer = f
	return r, nil
}

// Read returns the next record, io.EOF at end of feed, or an item-level
// error for a line the CSV layer cannot parse. A parse error does not
// abort the read; the next Read continues with the following line.
func (r *Reader) Read(ctx context.Context) (model.LegacyRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.LegacyRecord{}, err
	}

	if !r.skipped {
		r.skipped = true
		r.line++
		if _, err := r.cr.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return model.LegacyRecord{}, io.EOF
			}
			return model.LegacyRecord{}, fmt.Errorf("feed header: %w", err)
		}
	}

	row, err := r.cr.Read()
	r.line++
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.LegacyRecord{}, io.EOF
		}
		return model.LegacyRecord{}, fmt.Errorf("feed line %d: %w", r.line, err)
	}

	// Pad short rows; validation flags the resulting empty fields.
	fields := make([]string, numColumns)
	copy(fields, row)

	return model.LegacyRecord{
		ID:     fields[colID],
		Fecha:  fields[colFecha],
		Monto:  fields[colMonto],
		Tipo:   fields[colTipo],
		LineNo: r.line,
	}, nil
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Package runlog appends an audit trail of job executions to a CSV file.
// It is observability only and never influences control flow.
package runlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bancodev/bankbatch/internal/batch"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp   time.Time
	ExecutionID string
	Job         string
	Status      string
	Read        int
	Written     int
	Skipped     int
	Failed      int
	Error       string
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,execution_id,job,status,read,written,skipped,failed,error"

const (
	numFields = 9
	logFile   = "run-log.csv"

	colTimestamp = 0
	colExecID    = 1
	colJob       = 2
	colStatus    = 3
	colRead      = 4
	colWritten   = 5
	colSkipped   = 6
	colFailed    = 7
	colError     = 8
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colExecID] = e.ExecutionID
	row[colJob] = e.Job
	row[colStatus] = e.Status
	row[colRead] = strconv.Itoa(e.Read)
	row[colWritten] = strconv.Itoa(e.Written)
	row[colSkipped] = strconv.Itoa(e.Skipped)
	row[colFailed] = strconv.Itoa(e.Failed)
	row[colError] = e.Error
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	counts := make([]int, 4)
	for i, col := range []int{colRead, colWritten, colSkipped, colFailed} {
		counts[i], err = strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
	}

	return Entry{
		Timestamp:   ts,
		ExecutionID: record[colExecID],
		Job:         record[colJob],
		Status:      record[colStatus],
		Read:        counts[0],
		Written:     counts[1],
		Skipped:     counts[2],
		Failed:      counts[3],
		Error:       record[colError],
	}, nil
}

// Append writes entries to <dir>/run-log.csv, creating it with a header
// when new.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := filepath.Join(dir, logFile)
	isNew := false
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	cw := csv.NewWriter(f)
	defer cw.Flush()
	for _, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry: %w", err)
		}
	}
	return cw.Error()
}

// Read reads all entries from a run log reader, skipping the header.
func Read(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Recorder is a batch.Listener that appends one run-log row per finished
// job execution.
type Recorder struct {
	dir string
}

// NewRecorder creates a Recorder writing under dir.
func NewRecorder(dir string) *Recorder {
	return &Recorder{dir: dir}
}

func (r *Recorder) BeforeJob(*batch.JobExecution)                   {}
func (r *Recorder) BeforeStep(*batch.JobExecution, string)          {}
func (r *Recorder) AfterStep(*batch.JobExecution, batch.StepResult) {}

// AfterJob appends the execution's summary row. Failures to write the
// audit row are reported on stderr and otherwise ignored.
func (r *Recorder) AfterJob(exec *batch.JobExecution) {
	read, written, skipped, failed := exec.Counts()
	e := Entry{
		Timestamp:   exec.EndTime,
		ExecutionID: exec.ID.String(),
		Job:         exec.JobName,
		Status:      string(exec.Status),
		Read:        read,
		Written:     written,
		Skipped:     skipped,
		Failed:      failed,
	}
	if exec.Err != nil {
		e.Error = exec.Err.Error()
	}
	if err := Append(r.dir, []Entry{e}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write run log: %v\n", err)
	}
}

// Package trainlog records one row of named values per training
// iteration.
//
// A Log tracks a Status (run identity and progress counters) and a
// writable current row. Advance completes the current row and moves to
// the next iteration; what happens to completed rows depends on the
// backend:
//
//   - MemoryLog keeps every row and serves reads at any time
//   - JSONLinesLog appends completed rows to a file and only serves the
//     current and previous rows
//   - SQLiteLog persists completed rows to a database and serves reads
//     at any past time
package trainlog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNegativeTime = errors.New("log time entries must be non-negative")
	ErrPastEntry    = errors.New("log backend cannot read past entries")
	ErrFutureEntry  = errors.New("log backend cannot read future entries")
)

// Row holds the values recorded for one iteration.
type Row map[string]any

// Status tracks the identity and progress of a training run.
type Status struct {
	RunID          uuid.UUID
	IterationsDone int
	EpochsDone     int
}

// Log is a training log backend.
type Log interface {
	// Status returns the mutable run status.
	Status() *Status

	// Row returns the row for the given time. The row at the current
	// iteration is writable; which other times are readable depends on
	// the backend. Negative times are always an error.
	Row(time int) (Row, error)

	// Current returns the writable row of the present iteration.
	Current() Row

	// Previous returns the last completed row.
	Previous() (Row, error)

	// Advance completes the current row and starts the next iteration.
	Advance() error

	// Close releases the backend.
	Close() error
}

func newStatus() Status {
	return Status{RunID: uuid.New()}
}

func checkTime(logTime int) error {
	if logTime < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeTime, logTime)
	}
	return nil
}

package trainlog

import (
	"encoding/json"
	"fmt"
	"os"
)

// JSONLinesLog appends one JSON object per completed iteration to a
// file. Only the current and the previous row stay readable; deeper
// history lives in the file alone and reading it returns ErrPastEntry.
type JSONLinesLog struct {
	status   Status
	file     *os.File
	encoder  *json.Encoder
	current  Row
	previous Row
}

type jsonlRecord struct {
	RunID  string `json:"run_id"`
	Time   int    `json:"time"`
	Values Row    `json:"values"`
}

// NewJSONLinesLog creates a log appending to the given file.
func NewJSONLinesLog(path string) (*JSONLinesLog, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &JSONLinesLog{
		status:  newStatus(),
		file:    file,
		encoder: json.NewEncoder(file),
		current: Row{},
	}, nil
}

// Status returns the mutable run status.
func (l *JSONLinesLog) Status() *Status { return &l.status }

// Row returns the row at the given time. Only the current and the
// previous iteration are available.
func (l *JSONLinesLog) Row(logTime int) (Row, error) {
	if err := checkTime(logTime); err != nil {
		return nil, err
	}
	switch {
	case logTime == l.status.IterationsDone:
		return l.current, nil
	case logTime == l.status.IterationsDone-1:
		return l.previous, nil
	case logTime < l.status.IterationsDone:
		return nil, fmt.Errorf("%w: time %d", ErrPastEntry, logTime)
	default:
		return nil, fmt.Errorf("%w: time %d", ErrFutureEntry, logTime)
	}
}

// Current returns the row of the present iteration.
func (l *JSONLinesLog) Current() Row { return l.current }

// Previous returns the last completed row.
func (l *JSONLinesLog) Previous() (Row, error) {
	return l.Row(l.status.IterationsDone - 1)
}

// Advance writes the current row to the file and moves to the next
// iteration.
func (l *JSONLinesLog) Advance() error {
	if err := l.flush(); err != nil {
		return err
	}
	l.previous = l.current
	l.current = Row{}
	l.status.IterationsDone++
	return nil
}

func (l *JSONLinesLog) flush() error {
	record := jsonlRecord{
		RunID:  l.status.RunID.String(),
		Time:   l.status.IterationsDone,
		Values: l.current,
	}
	if err := l.encoder.Encode(record); err != nil {
		return fmt.Errorf("flush log row: %w", err)
	}
	return nil
}

// Close writes any values of the unfinished row and closes the file.
func (l *JSONLinesLog) Close() error {
	if len(l.current) > 0 {
		if err := l.flush(); err != nil {
			l.file.Close()
			return err
		}
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

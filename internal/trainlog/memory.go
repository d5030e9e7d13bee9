package trainlog

// MemoryLog keeps every row in memory. Rows are created on demand, so
// reading any non-negative time yields a writable row.
type MemoryLog struct {
	status Status
	rows   map[int]Row
}

// NewMemoryLog creates an empty in-memory log with a fresh run id.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{status: newStatus(), rows: make(map[int]Row)}
}

// Status returns the mutable run status.
func (l *MemoryLog) Status() *Status { return &l.status }

// Row returns the row at the given time, creating it if needed.
func (l *MemoryLog) Row(logTime int) (Row, error) {
	if err := checkTime(logTime); err != nil {
		return nil, err
	}
	row := l.rows[logTime]
	if row == nil {
		row = Row{}
		l.rows[logTime] = row
	}
	return row, nil
}

// Current returns the row of the present iteration.
func (l *MemoryLog) Current() Row {
	row, _ := l.Row(l.status.IterationsDone)
	return row
}

// Previous returns the last completed row.
func (l *MemoryLog) Previous() (Row, error) {
	return l.Row(l.status.IterationsDone - 1)
}

// Advance moves to the next iteration.
func (l *MemoryLog) Advance() error {
	l.status.IterationsDone++
	return nil
}

// Close is a no-op for the in-memory backend.
func (l *MemoryLog) Close() error { return nil }

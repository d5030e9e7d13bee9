package trainlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	run_id TEXT NOT NULL,
	time   INTEGER NOT NULL,
	key    TEXT NOT NULL,
	value  TEXT NOT NULL,
	PRIMARY KEY (run_id, time, key)
);

CREATE TABLE IF NOT EXISTS runs (
	run_id          TEXT PRIMARY KEY,
	iterations_done INTEGER NOT NULL,
	epochs_done     INTEGER NOT NULL,
	created_at      TEXT NOT NULL
);
`

// SQLiteLog persists completed rows to a SQLite database. One database
// can hold many runs, told apart by run id. Values are stored JSON
// encoded, so historical reads return what encoding/json decodes:
// numbers come back as float64.
type SQLiteLog struct {
	status  Status
	db      *sql.DB
	current Row
}

// NewSQLiteLog opens (and if needed migrates) the database at path and
// registers a fresh run.
func NewSQLiteLog(path string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open log db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	l := &SQLiteLog{status: newStatus(), db: db, current: Row{}}
	_, err = db.Exec(
		`INSERT INTO runs (run_id, iterations_done, epochs_done, created_at) VALUES (?, 0, 0, ?)`,
		l.status.RunID.String(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("register run: %w", err)
	}
	return l, nil
}

// Status returns the mutable run status.
func (l *SQLiteLog) Status() *Status { return &l.status }

// Row returns the row at the given time. Past rows are read back from
// the database; future rows are not available.
func (l *SQLiteLog) Row(logTime int) (Row, error) {
	if err := checkTime(logTime); err != nil {
		return nil, err
	}
	switch {
	case logTime == l.status.IterationsDone:
		return l.current, nil
	case logTime > l.status.IterationsDone:
		return nil, fmt.Errorf("%w: time %d", ErrFutureEntry, logTime)
	}

	rows, err := l.db.Query(
		`SELECT key, value FROM entries WHERE run_id = ? AND time = ?`,
		l.status.RunID.String(), logTime,
	)
	if err != nil {
		return nil, fmt.Errorf("query row %d: %w", logTime, err)
	}
	defer rows.Close()

	row := Row{}
	for rows.Next() {
		var key, encoded string
		if err := rows.Scan(&key, &encoded); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", logTime, err)
		}
		var value any
		if err := json.Unmarshal([]byte(encoded), &value); err != nil {
			return nil, fmt.Errorf("decode %q at %d: %w", key, logTime, err)
		}
		row[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read row %d: %w", logTime, err)
	}
	return row, nil
}

// Current returns the row of the present iteration.
func (l *SQLiteLog) Current() Row { return l.current }

// Previous returns the last completed row.
func (l *SQLiteLog) Previous() (Row, error) {
	return l.Row(l.status.IterationsDone - 1)
}

// Advance persists the current row and moves to the next iteration.
func (l *SQLiteLog) Advance() error {
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	runID := l.status.RunID.String()
	for key, value := range l.current {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %q: %w", key, err)
		}
		_, err = tx.Exec(
			`INSERT OR REPLACE INTO entries (run_id, time, key, value) VALUES (?, ?, ?, ?)`,
			runID, l.status.IterationsDone, key, string(encoded),
		)
		if err != nil {
			return fmt.Errorf("insert %q: %w", key, err)
		}
	}
	_, err = tx.Exec(
		`UPDATE runs SET iterations_done = ?, epochs_done = ? WHERE run_id = ?`,
		l.status.IterationsDone+1, l.status.EpochsDone, runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	l.status.IterationsDone++
	l.current = Row{}
	return nil
}

// Close closes the underlying database connection.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}

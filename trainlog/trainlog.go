// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package trainlog

import (
	"github.com/bricks-ml/bricks/internal/trainlog"
)

// Sentinel errors shared by every backend.
var (
	ErrNegativeTime = trainlog.ErrNegativeTime
	ErrPastEntry    = trainlog.ErrPastEntry
	ErrFutureEntry  = trainlog.ErrFutureEntry
)

// Row is the set of values recorded at one time step.
type Row = trainlog.Row

// Status carries a run's identity and progress counters.
type Status = trainlog.Status

// Log is a time-indexed record of a training run. Writes always go to
// the current time step; Advance closes the step and moves on. How far
// back a backend can read differs per implementation and is documented
// on its constructor.
type Log = trainlog.Log

// NewMemoryLog creates a log holding every row in memory. Any past or
// current time step can be read back.
func NewMemoryLog() *MemoryLog {
	return trainlog.NewMemoryLog()
}

// MemoryLog is the in-memory Log backend.
type MemoryLog = trainlog.MemoryLog

// NewJSONLinesLog creates a log appending one JSON document per time
// step to the file at path. Only the current and previous rows stay
// readable; older rows have been flushed to disk.
func NewJSONLinesLog(path string) (*JSONLinesLog, error) {
	return trainlog.NewJSONLinesLog(path)
}

// JSONLinesLog is the append-only JSON Lines Log backend.
type JSONLinesLog = trainlog.JSONLinesLog

// NewSQLiteLog creates a log persisting rows to a SQLite database at
// path. Any past or current time step can be read back, across
// processes; numbers read from storage come back as float64.
func NewSQLiteLog(path string) (*SQLiteLog, error) {
	return trainlog.NewSQLiteLog(path)
}

// SQLiteLog is the SQLite-backed Log backend.
type SQLiteLog = trainlog.SQLiteLog

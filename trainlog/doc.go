// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package trainlog provides time-indexed training run logs for the
// Bricks ML toolkit.
//
// # Overview
//
// A Log records rows of named values, one row per time step, under a
// unique run identifier. Writes always target the current step;
// Advance closes it and opens the next. Three backends trade
// durability against read access:
//
//   - MemoryLog: everything stays readable, nothing survives the process
//   - JSONLinesLog: appends each closed row to a file; the current and
//     previous rows stay readable
//   - SQLiteLog: persists rows to a database; every row stays readable,
//     across processes
//
// # Basic Usage
//
//	log := trainlog.NewMemoryLog()
//	log.Current()["cost"] = 0.75
//	if err := log.Advance(); err != nil {
//	    return err
//	}
//	_ = log.Status().IterationsDone // 1
package trainlog

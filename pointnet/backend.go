// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pointnet

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

// recordBackend stores the events of one spike recorder outside memory
type recordBackend interface {
	write(sender int, t float64) error
	flush() error
	close() error
}

// openFile creates a recording file under the kernel data path,
// honoring overwrite_files.
func (k *Kernel) openFile(name string) (*os.File, error) {
	if k.DataPath != "" {
		if err := os.MkdirAll(k.DataPath, 0755); err != nil {
			return nil, err
		}
	}
	fn := filepath.Join(k.DataPath, k.DataPrefix+name)
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !k.OverwriteFiles {
		flag |= os.O_EXCL
	}
	f, err := os.OpenFile(fn, flag, 0644)
	if errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("%w: %s (set overwrite_files to replace it)", ErrFileExists, fn)
	}
	return f, err
}

func (k *Kernel) openBackend(sr *SpikeRecorder) (recordBackend, error) {
	label := sr.Label
	if label == "" {
		label = SpikeRecorderModel
	}
	switch sr.RecordTo {
	case RecordASCII:
		f, err := k.openFile(fmt.Sprintf("%s-%d.dat", label, sr.id))
		if err != nil {
			return nil, err
		}
		ab := &asciiBackend{f: f, w: bufio.NewWriter(f)}
		ab.w.WriteString("sender\ttime_ms\n")
		return ab, nil
	case RecordSQLite:
		db, err := k.spikeDB()
		if err != nil {
			return nil, err
		}
		return &sqliteBackend{db: db, run: k.runID, recorder: sr.id, label: label}, nil
	}
	return nil, nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  ascii

// asciiBackend writes tab-separated sender, time lines
type asciiBackend struct {
	f   *os.File
	w   *bufio.Writer
	buf []byte
}

func (ab *asciiBackend) write(sender int, t float64) error {
	ab.buf = strconv.AppendInt(ab.buf[:0], int64(sender), 10)
	ab.buf = append(ab.buf, '\t')
	ab.buf = strconv.AppendFloat(ab.buf, t, 'f', 3, 64)
	ab.buf = append(ab.buf, '\n')
	_, err := ab.w.Write(ab.buf)
	return err
}

func (ab *asciiBackend) flush() error {
	return ab.w.Flush()
}

func (ab *asciiBackend) close() error {
	if err := ab.w.Flush(); err != nil {
		ab.f.Close()
		return err
	}
	return ab.f.Close()
}

//////////////////////////////////////////////////////////////////////////////////////
//  sqlite

const spikesSchema = `CREATE TABLE IF NOT EXISTS spikes (
	run TEXT NOT NULL,
	recorder INTEGER NOT NULL,
	label TEXT NOT NULL,
	sender INTEGER NOT NULL,
	time_ms REAL NOT NULL
)`

// spikeDB opens the shared events database on first use
func (k *Kernel) spikeDB() (*sql.DB, error) {
	if k.db != nil {
		return k.db, nil
	}
	fn := filepath.Join(k.DataPath, k.DataPrefix+"spikes.db")
	if k.DataPath != "" {
		if err := os.MkdirAll(k.DataPath, 0755); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(fn); err == nil {
		if !k.OverwriteFiles {
			return nil, fmt.Errorf("%w: %s (set overwrite_files to replace it)", ErrFileExists, fn)
		}
		if err := os.Remove(fn); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", fn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(spikesSchema); err != nil {
		db.Close()
		return nil, err
	}
	k.db = db
	return db, nil
}

// sqliteBackend buffers events and inserts them in one transaction per flush
type sqliteBackend struct {
	db       *sql.DB
	run      string
	recorder int
	label    string
	senders  []int
	times    []float64
}

func (sb *sqliteBackend) write(sender int, t float64) error {
	sb.senders = append(sb.senders, sender)
	sb.times = append(sb.times, t)
	return nil
}

func (sb *sqliteBackend) flush() error {
	if len(sb.senders) == 0 {
		return nil
	}
	tx, err := sb.db.Begin()
	if err != nil {
		return err
	}
	st, err := tx.Prepare("INSERT INTO spikes (run, recorder, label, sender, time_ms) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer st.Close()
	for i, s := range sb.senders {
		if _, err := st.Exec(sb.run, sb.recorder, sb.label, s, sb.times[i]); err != nil {
			tx.Rollback()
			return err
		}
	}
	sb.senders = sb.senders[:0]
	sb.times = sb.times[:0]
	return tx.Commit()
}

func (sb *sqliteBackend) close() error {
	return sb.flush()
}

// ReadSpikes returns the events stored in the sqlite database for the
// recorder with given global id, in time order.
func (k *Kernel) ReadSpikes(recorder int) (Events, error) {
	var ev Events
	if k.db == nil {
		return ev, fmt.Errorf("%w: no sqlite recorder has been simulated", ErrBadNodes)
	}
	rows, err := k.db.Query("SELECT sender, time_ms FROM spikes WHERE run = ? AND recorder = ? ORDER BY time_ms, sender", k.runID, recorder)
	if err != nil {
		return ev, err
	}
	defer rows.Close()
	for rows.Next() {
		var s int
		var t float64
		if err := rows.Scan(&s, &t); err != nil {
			return ev, err
		}
		ev.Senders = append(ev.Senders, s)
		ev.Times = append(ev.Times, t)
	}
	return ev, rows.Err()
}

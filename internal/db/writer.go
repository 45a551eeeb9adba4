package db

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/michaelscutari/foldercap/internal/entry"
	"github.com/michaelscutari/foldercap/internal/scan"
)

const insertMetaSQL = `INSERT OR REPLACE INTO scan_meta
    (id, root_path, mode, reference_date, horizon, size_mb, threshold_bytes, start_time)
    VALUES (1, ?, ?, ?, ?, ?, ?, ?)`
const finishMetaSQL = `UPDATE scan_meta
    SET end_time = ?, state = ?, found_count = ?, skip_count = ?, error_count = ?
    WHERE id = 1`
const insertFoundSQL = `INSERT INTO found (seq, path, timestamp, size, truncated) VALUES (?, ?, ?, ?, ?)`
const insertLogSQL = `INSERT INTO scan_log (seq, kind, path, message) VALUES (?, ?, ?, ?)`

// Log lines past this count are counted but not stored.
const maxLogSampled = 50000

// WriteMeta stores the scan parameters before recording starts.
func WriteMeta(db *sql.DB, m *entry.ScanMeta) error {
	horizon := m.Horizon
	if horizon == "" {
		horizon = "custom"
	}
	_, err := db.Exec(insertMetaSQL,
		m.RootPath, m.Mode.String(), m.ReferenceDate, horizon,
		m.SizeMB, int64(m.ThresholdBytes), m.StartTime.Unix())
	if err != nil {
		return fmt.Errorf("failed to write scan meta: %w", err)
	}
	return nil
}

// FinishMeta stores the outcome of a recorded scan.
func FinishMeta(db *sql.DB, m *entry.ScanMeta) error {
	_, err := db.Exec(finishMetaSQL,
		m.EndTime.Unix(), m.State.String(), m.FoundCount, m.SkipCount, m.ErrorCount)
	if err != nil {
		return fmt.Errorf("failed to finish scan meta: %w", err)
	}
	return nil
}

// Recorder batches scan events and writes them to the database.
type Recorder struct {
	db            *sql.DB
	batchSize     int
	flushInterval time.Duration

	foundBatch []entry.Found
	logBatch   []entry.LogLine
	seq        int64
	logRows    int

	foundCount atomic.Int64
	skipCount  atomic.Int64
	errorCount atomic.Int64
	current    atomic.Value // string

	final scan.FinishedEvent

	foundStmt *sql.Stmt
	logStmt   *sql.Stmt
}

// Progress holds counters for a scan being recorded.
type Progress struct {
	Found   int64
	Skips   int64
	Errors  int64
	Current string
}

// NewRecorder creates a new recorder.
func NewRecorder(db *sql.DB, batchSize int, flushInterval time.Duration) *Recorder {
	if batchSize <= 0 {
		batchSize = 500
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	return &Recorder{
		db:            db,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		foundBatch:    make([]entry.Found, 0, batchSize),
		logBatch:      make([]entry.LogLine, 0, batchSize),
	}
}

// Run consumes events until the channel is closed. After a write failure it
// keeps draining so the producer is never blocked, and returns the first
// error.
func (r *Recorder) Run(events <-chan scan.Event) error {
	var err error
	r.foundStmt, err = r.db.Prepare(insertFoundSQL)
	if err != nil {
		drain(events)
		return fmt.Errorf("failed to prepare found statement: %w", err)
	}
	defer r.foundStmt.Close()

	r.logStmt, err = r.db.Prepare(insertLogSQL)
	if err != nil {
		drain(events)
		return fmt.Errorf("failed to prepare log statement: %w", err)
	}
	defer r.logStmt.Close()

	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return r.flush()
			}
			if err := r.record(ev); err != nil {
				drain(events)
				return err
			}
		case <-ticker.C:
			if err := r.flush(); err != nil {
				drain(events)
				return err
			}
		}
	}
}

func drain(events <-chan scan.Event) {
	for range events {
	}
}

func (r *Recorder) record(ev scan.Event) error {
	switch ev := ev.(type) {
	case scan.StatusEvent:
		r.current.Store(ev.Path)
		return nil
	case scan.FinishedEvent:
		r.final = ev
		return nil
	case scan.FoundEvent:
		r.seq++
		r.foundCount.Add(1)
		r.foundBatch = append(r.foundBatch, entry.FoundFromEvent(r.seq, ev))
		if len(r.foundBatch) >= r.batchSize {
			return r.flushFound()
		}
	case scan.LogEvent:
		r.seq++
		switch {
		case ev.Kind.IsSkip():
			r.skipCount.Add(1)
		case ev.Kind == scan.LogError:
			r.errorCount.Add(1)
		}
		if r.logRows >= maxLogSampled {
			return nil
		}
		r.logRows++
		r.logBatch = append(r.logBatch, entry.LogFromEvent(r.seq, ev))
		if len(r.logBatch) >= r.batchSize {
			return r.flushLog()
		}
	}
	return nil
}

func (r *Recorder) flush() error {
	if err := r.flushFound(); err != nil {
		return err
	}
	return r.flushLog()
}

func (r *Recorder) flushFound() error {
	if len(r.foundBatch) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin found transaction: %w", err)
	}

	stmt := tx.Stmt(r.foundStmt)
	for _, f := range r.foundBatch {
		truncated := 0
		if f.Truncated {
			truncated = 1
		}
		_, err := stmt.Exec(f.Seq, f.Path, f.Timestamp.Unix(), int64(f.Size), truncated)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert found %q: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit found transaction: %w", err)
	}

	r.foundBatch = r.foundBatch[:0]
	return nil
}

func (r *Recorder) flushLog() error {
	if len(r.logBatch) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin log transaction: %w", err)
	}

	stmt := tx.Stmt(r.logStmt)
	for _, l := range r.logBatch {
		_, err := stmt.Exec(l.Seq, l.Kind.String(), l.Path, l.Message)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert log for %q: %w", l.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit log transaction: %w", err)
	}

	r.logBatch = r.logBatch[:0]
	return nil
}

// Progress returns current counters (safe for concurrent access).
func (r *Recorder) Progress() Progress {
	current, _ := r.current.Load().(string)
	return Progress{
		Found:   r.foundCount.Load(),
		Skips:   r.skipCount.Load(),
		Errors:  r.errorCount.Load(),
		Current: current,
	}
}

// Finished returns the terminal event seen by Run. It is only meaningful
// after Run has returned.
func (r *Recorder) Finished() scan.FinishedEvent {
	return r.final
}

// Fill copies the final counters and state into m.
func (r *Recorder) Fill(m *entry.ScanMeta) {
	p := r.Progress()
	m.FoundCount = p.Found
	m.SkipCount = p.Skips
	m.ErrorCount = p.Errors
	m.State = r.final.State
}

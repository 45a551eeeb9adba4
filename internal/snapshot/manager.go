package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/michaelscutari/foldercap/internal/db"
	"github.com/michaelscutari/foldercap/internal/entry"
	"github.com/michaelscutari/foldercap/internal/scan"
	"github.com/michaelscutari/foldercap/internal/units"

	_ "modernc.org/sqlite"
)

const (
	snapshotPrefix = "foldercap-"
	latestName     = "latest.db"
	lockName       = ".foldercap.lock"
)

// ErrLocked is returned when another process is scanning into the same
// output directory.
var ErrLocked = errors.New("another scan is in progress")

// ProgressFunc is called periodically with current scan progress.
type ProgressFunc func(p db.Progress)

// Manager handles the scan lifecycle including locking and retention.
type Manager struct {
	outputDir    string
	retention    int
	lockFile     *os.File
	progressFunc ProgressFunc
	engine       *scan.Engine
	log          *slog.Logger
}

// NewManager creates a new snapshot manager.
func NewManager(outputDir string, retention int) *Manager {
	return &Manager{
		outputDir: outputDir,
		retention: retention,
		engine:    scan.NewEngine(),
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetProgressFunc sets a callback for progress updates during scan.
func (m *Manager) SetProgressFunc(f ProgressFunc) {
	m.progressFunc = f
}

// SetEngine replaces the scan engine.
func (m *Manager) SetEngine(e *scan.Engine) {
	m.engine = e
}

// SetLogger sets the logger for lifecycle messages.
func (m *Manager) SetLogger(l *slog.Logger) {
	if l != nil {
		m.log = l
	}
}

// RunScan executes a scan, forwarding every event to sink, and records the
// results in a new snapshot. Completed and stopped scans are kept; a scan
// that fails validation leaves nothing behind and returns its error.
func (m *Manager) RunScan(ctx context.Context, p scan.Params, horizon units.Horizon, sink func(scan.Event)) (string, scan.FinishedEvent, error) {
	var fin scan.FinishedEvent

	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return "", fin, fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := m.acquireLock(); err != nil {
		return "", fin, fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer m.releaseLock()

	tempPath := filepath.Join(m.outputDir, fmt.Sprintf(".foldercap-temp-%d.db", time.Now().UnixNano()))
	database, err := sql.Open("sqlite", tempPath)
	if err != nil {
		os.Remove(tempPath)
		return "", fin, fmt.Errorf("failed to create database: %w", err)
	}
	fail := func(err error) (string, scan.FinishedEvent, error) {
		database.Close()
		os.Remove(tempPath)
		return "", fin, err
	}

	if err := db.InitSchema(database); err != nil {
		return fail(fmt.Errorf("failed to initialize schema: %w", err))
	}
	if err := db.ApplyWritePragmas(database); err != nil {
		return fail(fmt.Errorf("failed to apply pragmas: %w", err))
	}

	meta := &entry.ScanMeta{
		Mode:      p.Mode,
		Horizon:   horizon.Key,
		StartTime: time.Now(),
	}
	if cfg, err := p.Config(); err == nil {
		meta.RootPath = cfg.Root
		meta.ReferenceDate = units.FormatDate(cfg.Reference)
		meta.SizeMB = cfg.SizeMB
		meta.ThresholdBytes = cfg.ThresholdBytes
		if err := db.WriteMeta(database, meta); err != nil {
			return fail(err)
		}
	}

	rec := db.NewRecorder(database, 500, time.Second)
	recCh := make(chan scan.Event, 256)
	recDone := make(chan error, 1)
	go func() {
		recDone <- rec.Run(recCh)
	}()

	progressDone := make(chan struct{})
	if m.progressFunc != nil {
		go func() {
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-progressDone:
					return
				case <-ticker.C:
					m.progressFunc(rec.Progress())
				}
			}
		}()
	}

	fin = m.engine.Run(ctx, p, func(ev scan.Event) {
		if sink != nil {
			sink(ev)
		}
		recCh <- ev
	})
	close(recCh)
	recErr := <-recDone
	close(progressDone)

	if fin.State == scan.StateFailed {
		return fail(fin.Err)
	}
	if recErr != nil {
		return fail(fmt.Errorf("failed to record scan: %w", recErr))
	}

	meta.EndTime = time.Now()
	rec.Fill(meta)
	if err := db.FinishMeta(database, meta); err != nil {
		return fail(err)
	}
	if err := db.BuildIndexes(database); err != nil {
		return fail(fmt.Errorf("failed to build indexes: %w", err))
	}
	if err := db.Finalize(database); err != nil {
		return fail(fmt.Errorf("failed to finalize database: %w", err))
	}
	database.Close()

	// Atomic rename to final location
	finalName := fmt.Sprintf("%s%s.db", snapshotPrefix, time.Now().Format("20060102-150405"))
	finalPath := filepath.Join(m.outputDir, finalName)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return "", fin, fmt.Errorf("failed to rename database: %w", err)
	}

	m.updateLatest(finalName)

	if err := m.pruneOldSnapshots(); err != nil {
		m.log.Warn("failed to prune old snapshots", "err", err)
	}

	m.log.Info("snapshot written", "path", finalPath, "state", fin.State.String(), "found", meta.FoundCount)
	return finalPath, fin, nil
}

// updateLatest points latest.db at name via a temp symlink and rename.
func (m *Manager) updateLatest(name string) {
	latestPath := filepath.Join(m.outputDir, latestName)
	tempLink := filepath.Join(m.outputDir, ".latest.db.tmp")
	os.Remove(tempLink)
	if err := os.Symlink(name, tempLink); err != nil {
		m.log.Warn("failed to create latest.db symlink", "err", err)
		return
	}
	if err := os.Rename(tempLink, latestPath); err != nil {
		os.Remove(tempLink)
		m.log.Warn("failed to update latest.db symlink", "err", err)
	}
}

func (m *Manager) acquireLock() error {
	lockPath := filepath.Join(m.outputDir, lockName)
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}

	if err := lockFile(f); err != nil {
		f.Close()
		return ErrLocked
	}

	m.lockFile = f
	return nil
}

func (m *Manager) releaseLock() {
	if m.lockFile != nil {
		unlockFile(m.lockFile)
		m.lockFile.Close()
		m.lockFile = nil
	}
}

func isSnapshot(name string) bool {
	return strings.HasPrefix(name, snapshotPrefix) && strings.HasSuffix(name, ".db")
}

func (m *Manager) pruneOldSnapshots() error {
	if m.retention <= 0 {
		return nil
	}

	snapshots, err := m.ListSnapshots()
	if err != nil {
		return err
	}

	for len(snapshots) > m.retention {
		if err := os.Remove(snapshots[0]); err != nil {
			return fmt.Errorf("failed to remove %s: %w", snapshots[0], err)
		}
		snapshots = snapshots[1:]
	}

	return nil
}

// GetLatest returns the path to the latest snapshot.
func (m *Manager) GetLatest() (string, error) {
	latestPath := filepath.Join(m.outputDir, latestName)
	resolved, err := filepath.EvalSymlinks(latestPath)
	if err == nil {
		return resolved, nil
	}

	// Symlinks may be unavailable; fall back to the newest file.
	snapshots, listErr := m.ListSnapshots()
	if listErr != nil || len(snapshots) == 0 {
		return "", fmt.Errorf("no latest snapshot found: %w", err)
	}
	return snapshots[len(snapshots)-1], nil
}

// ListSnapshots returns all available snapshots sorted by date.
func (m *Manager) ListSnapshots() ([]string, error) {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return nil, err
	}

	var snapshots []string
	for _, e := range entries {
		if !e.IsDir() && isSnapshot(e.Name()) {
			snapshots = append(snapshots, filepath.Join(m.outputDir, e.Name()))
		}
	}

	// Names embed the timestamp, so lexical order is chronological.
	sort.Strings(snapshots)
	return snapshots, nil
}

package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/michaelscutari/foldercap/internal/db"
	"github.com/michaelscutari/foldercap/internal/scan"
	"github.com/michaelscutari/foldercap/internal/units"
)

func buildTree(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	old := filepath.Join(root, "old")
	if err := os.MkdirAll(old, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(filepath.Join(old, "blob.bin"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.Truncate(int64(2 * units.MB)); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	f.Close()
	past := time.Now().AddDate(-2, 0, 0)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return root, old
}

func params(root string) scan.Params {
	return scan.Params{
		Root:   root,
		Mode:   scan.ModeDormant,
		Date:   units.FormatDate(time.Now().AddDate(-1, 0, 0)),
		SizeMB: "1",
	}
}

func TestManagerRunScanCreatesLatestAndRetention(t *testing.T) {
	root, old := buildTree(t)

	outDir := t.TempDir()
	mgr := NewManager(outDir, 1)
	horizon, _ := units.ParseHorizon("1y")

	var sunk []scan.Event
	ctx := context.Background()
	firstDB, fin, err := mgr.RunScan(ctx, params(root), horizon, func(ev scan.Event) {
		sunk = append(sunk, ev)
	})
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if fin.State != scan.StateCompleted {
		t.Fatalf("state = %v", fin.State)
	}
	if _, ok := sunk[len(sunk)-1].(scan.FinishedEvent); !ok {
		t.Fatalf("sink did not receive the finished event last")
	}

	database, err := sql.Open("sqlite", firstDB)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	found, err := db.LoadFound(database, "", 0)
	if err != nil {
		t.Fatalf("load found: %v", err)
	}
	meta, err := db.GetScanMeta(database)
	if err != nil {
		t.Fatalf("load meta: %v", err)
	}
	database.Close()
	if len(found) != 1 || found[0].Path != old {
		t.Fatalf("found = %+v", found)
	}
	if meta.FoundCount != 1 || meta.Horizon != "1y" || meta.State != scan.StateCompleted || meta.SizeMB != 1 {
		t.Fatalf("meta = %+v", meta)
	}

	latest := filepath.Join(outDir, "latest.db")
	if info, err := os.Lstat(latest); err == nil && (info.Mode()&os.ModeSymlink != 0) {
		resolved, err := filepath.EvalSymlinks(latest)
		if err != nil {
			t.Fatalf("resolve latest: %v", err)
		}
		firstResolved, err := filepath.EvalSymlinks(firstDB)
		if err != nil {
			t.Fatalf("resolve first db: %v", err)
		}
		if resolved != firstResolved {
			t.Fatalf("latest does not point to first db: %s", resolved)
		}
	}

	time.Sleep(1100 * time.Millisecond)

	secondDB, _, err := mgr.RunScan(ctx, params(root), horizon, nil)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if _, err := os.Stat(secondDB); err != nil {
		t.Fatalf("second db missing: %v", err)
	}
	if _, err := os.Stat(firstDB); err == nil {
		t.Fatalf("expected first db to be pruned")
	}

	got, err := mgr.GetLatest()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	want, _ := filepath.EvalSymlinks(secondDB)
	if got != want {
		t.Fatalf("latest = %s, want %s", got, want)
	}
}

func TestManagerFailedConfigLeavesNothing(t *testing.T) {
	outDir := t.TempDir()
	mgr := NewManager(outDir, 0)

	p := params(filepath.Join(t.TempDir(), "missing"))
	var sunk []scan.Event
	path, fin, err := mgr.RunScan(context.Background(), p, units.CustomHorizon, func(ev scan.Event) {
		sunk = append(sunk, ev)
	})
	if err == nil {
		t.Fatal("expected configuration error")
	}
	var cerr *scan.ConfigError
	if !errors.As(err, &cerr) || cerr.Field != "root" {
		t.Fatalf("err = %v, want root config error", err)
	}
	if path != "" || fin.State != scan.StateFailed {
		t.Fatalf("path = %q, state = %v", path, fin.State)
	}
	if len(sunk) != 2 {
		t.Fatalf("sink received %d events, want 2", len(sunk))
	}

	snapshots, err := mgr.ListSnapshots()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snapshots) != 0 {
		t.Fatalf("unexpected snapshots: %v", snapshots)
	}
	entries, _ := os.ReadDir(outDir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".db" {
			t.Fatalf("leftover database %s", e.Name())
		}
	}
}

func TestManagerKeepsStoppedScan(t *testing.T) {
	root, _ := buildTree(t)
	mgr := NewManager(t.TempDir(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path, fin, err := mgr.RunScan(ctx, params(root), units.CustomHorizon, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !fin.Stopped() {
		t.Fatalf("state = %v, want stopped", fin.State)
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer database.Close()
	meta, err := db.GetScanMeta(database)
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if meta.State != scan.StateStopped || meta.Horizon != "custom" {
		t.Fatalf("meta = %+v", meta)
	}
}

func TestManagerRejectsConcurrentScan(t *testing.T) {
	root, _ := buildTree(t)
	outDir := t.TempDir()

	holder := NewManager(outDir, 0)
	if err := holder.acquireLock(); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer holder.releaseLock()

	_, _, err := NewManager(outDir, 0).RunScan(context.Background(), params(root), units.CustomHorizon, nil)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("err = %v, want ErrLocked", err)
	}
}

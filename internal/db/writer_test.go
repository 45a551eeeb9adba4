package db

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/michaelscutari/foldercap/internal/entry"
	"github.com/michaelscutari/foldercap/internal/scan"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Each connection to :memory: is a separate database.
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	if err := InitSchema(database); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return database
}

func TestRecorderPersistsEvents(t *testing.T) {
	database := openTestDB(t)

	ts := time.Unix(1_600_000_000, 0)
	events := make(chan scan.Event, 16)
	events <- scan.StatusEvent{Path: "/r/a"}
	events <- scan.LogEvent{Kind: scan.LogCandidate, Path: "/r/a", Message: "Candidate found: a..."}
	events <- scan.FoundEvent{Path: "/r/a", Timestamp: ts, Size: 5 << 20, Truncated: true}
	events <- scan.LogEvent{Kind: scan.LogConfirmed, Path: "/r/a", Message: "--> CONFIRMED: > 1 MB (Limit Reached)"}
	events <- scan.LogEvent{Kind: scan.LogSkipPermission, Path: "/r/b", Message: "Skipped (Permission): /r/b"}
	events <- scan.LogEvent{Kind: scan.LogError, Path: "/r/c", Message: "Error: boom", Err: errors.New("boom")}
	events <- scan.FoundEvent{Path: "/r/d", Timestamp: ts, Size: 3 << 20}
	events <- scan.FinishedEvent{State: scan.StateStopped}
	close(events)

	rec := NewRecorder(database, 2, time.Hour)
	if err := rec.Run(events); err != nil {
		t.Fatalf("recorder: %v", err)
	}

	p := rec.Progress()
	if p.Found != 2 || p.Skips != 1 || p.Errors != 1 || p.Current != "/r/a" {
		t.Fatalf("progress = %+v", p)
	}
	if !rec.Finished().Stopped() {
		t.Fatalf("finished = %+v, want stopped", rec.Finished())
	}

	found, err := LoadFound(database, "", 0)
	if err != nil {
		t.Fatalf("load found: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 found rows, got %d", len(found))
	}
	if found[0].Path != "/r/a" || !found[0].Truncated || found[0].Size != 5<<20 || !found[0].Timestamp.Equal(ts) {
		t.Fatalf("first row = %+v", found[0])
	}
	if found[1].Path != "/r/d" || found[1].Truncated || found[0].Seq >= found[1].Seq {
		t.Fatalf("second row = %+v", found[1])
	}

	lines, err := LoadLog(database, 0)
	if err != nil {
		t.Fatalf("load log: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 log lines, got %d", len(lines))
	}
	if lines[2].Kind != scan.LogSkipPermission || lines[2].Path != "/r/b" {
		t.Fatalf("third line = %+v", lines[2])
	}

	skips, err := LoadLog(database, 0, scan.LogSkipPermission, scan.LogSkipNotFound)
	if err != nil {
		t.Fatalf("load skips: %v", err)
	}
	if len(skips) != 1 {
		t.Fatalf("expected 1 skip, got %d", len(skips))
	}
}

func TestRecorderDrainsAfterFailure(t *testing.T) {
	database := openTestDB(t)
	if _, err := database.Exec(`DROP TABLE found`); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	events := make(chan scan.Event)
	done := make(chan error, 1)
	go func() {
		done <- NewRecorder(database, 1, time.Hour).Run(events)
	}()

	// Every send must complete even though nothing can be stored.
	for i := 0; i < 5; i++ {
		events <- scan.FoundEvent{Path: "/x"}
	}
	close(events)

	if err := <-done; err == nil {
		t.Fatal("expected an error from the recorder")
	}
}

func TestMetaRoundTrip(t *testing.T) {
	database := openTestDB(t)

	start := time.Unix(1_700_000_000, 0)
	m := &entry.ScanMeta{
		RootPath:       "/data",
		Mode:           scan.ModeRecent,
		ReferenceDate:  "01-02-2023",
		Horizon:        "1y",
		SizeMB:         1000,
		ThresholdBytes: 1000 << 20,
		StartTime:      start,
	}
	if err := WriteMeta(database, m); err != nil {
		t.Fatalf("write meta: %v", err)
	}

	m.EndTime = start.Add(time.Minute)
	m.State = scan.StateCompleted
	m.FoundCount, m.SkipCount, m.ErrorCount = 3, 2, 1
	if err := FinishMeta(database, m); err != nil {
		t.Fatalf("finish meta: %v", err)
	}

	got, err := GetScanMeta(database)
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if got.RootPath != "/data" || got.Mode != scan.ModeRecent || got.ReferenceDate != "01-02-2023" || got.Horizon != "1y" {
		t.Fatalf("meta = %+v", got)
	}
	if got.SizeMB != 1000 || got.ThresholdBytes != 1000<<20 || got.State != scan.StateCompleted {
		t.Fatalf("meta = %+v", got)
	}
	if got.FoundCount != 3 || got.SkipCount != 2 || got.ErrorCount != 1 {
		t.Fatalf("counts = %+v", got)
	}
	if !got.EndTime.Equal(start.Add(time.Minute)) {
		t.Fatalf("end time = %v", got.EndTime)
	}
}

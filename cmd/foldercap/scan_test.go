package main

import (
	"testing"

	"github.com/michaelscutari/foldercap/internal/db"
	"github.com/michaelscutari/foldercap/internal/scan"
)

func TestProgressObserve(t *testing.T) {
	var p progress
	p.observe(scan.StatusEvent{Path: "/data/a"})
	p.observe(scan.FoundEvent{Path: "/data/a"})
	p.observe(scan.LogEvent{Kind: scan.LogSkipPermission})
	p.observe(scan.LogEvent{Kind: scan.LogError})
	p.observe(scan.LogEvent{Kind: scan.LogCandidate})

	if p.found.Load() != 1 || p.skips.Load() != 1 || p.errors.Load() != 1 {
		t.Fatalf("counters = %d/%d/%d", p.found.Load(), p.skips.Load(), p.errors.Load())
	}
	if p.path() != "/data/a" {
		t.Fatalf("path = %q", p.path())
	}

	p.set(db.Progress{Found: 4, Skips: 2})
	if p.found.Load() != 4 || p.errors.Load() != 0 {
		t.Fatalf("set did not replace counters")
	}
	if p.path() != "/data/a" {
		t.Fatalf("empty current should keep the last path, got %q", p.path())
	}
}

func TestTruncatePath(t *testing.T) {
	if got := truncatePath("/short", 10); got != "/short" {
		t.Fatalf("got %q", got)
	}
	got := truncatePath("/a/very/long/path/name", 10)
	if got != "...th/name" {
		t.Fatalf("got %q", got)
	}
}

package db

import (
	"testing"
)

func TestLoadFoundSortsBySize(t *testing.T) {
	database := openTestDB(t)

	insert := func(seq int64, path string, size int64) {
		_, err := database.Exec(
			`INSERT INTO found (seq, path, timestamp, size, truncated) VALUES (?, ?, ?, ?, ?)`,
			seq, path, 0, size, 0,
		)
		if err != nil {
			t.Fatalf("insert %s: %v", path, err)
		}
	}

	insert(1, "/root/b", 100)
	insert(2, "/root/a", 300)
	insert(3, "/root/c", 200)

	bySize, err := LoadFound(database, "size", 10)
	if err != nil {
		t.Fatalf("load found: %v", err)
	}
	if len(bySize) != 3 || bySize[0].Path != "/root/a" || bySize[2].Path != "/root/b" {
		t.Fatalf("unexpected size order: %+v", bySize)
	}

	byPath, err := LoadFound(database, "path", 2)
	if err != nil {
		t.Fatalf("load found: %v", err)
	}
	if len(byPath) != 2 || byPath[0].Path != "/root/a" || byPath[1].Path != "/root/b" {
		t.Fatalf("unexpected path order: %+v", byPath)
	}
}

func TestGetScanMetaMissing(t *testing.T) {
	database := openTestDB(t)
	if _, err := GetScanMeta(database); err == nil {
		t.Fatal("expected error for empty scan_meta")
	}
}

package volume

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestProbeTempDir(t *testing.T) {
	u, err := Probe(t.TempDir())
	if err != nil {
		t.Skipf("usage not available: %v", err)
	}
	if u.Total == 0 {
		t.Fatalf("total = 0 for %+v", u)
	}
	if !strings.Contains(u.String(), "free") {
		t.Fatalf("summary = %q", u.String())
	}
}

func TestCacheProbesOncePerTTL(t *testing.T) {
	c := NewCache(time.Hour)
	calls := 0
	c.probe = func(path string) (Usage, error) {
		calls++
		return Usage{Path: path, Total: 100, Used: 40, Free: 60, UsedPercent: 40}, nil
	}

	for i := 0; i < 3; i++ {
		u, err := c.Get("/data")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if u.Used != 40 {
			t.Fatalf("usage = %+v", u)
		}
	}
	if calls != 1 {
		t.Fatalf("probe called %d times, want 1", calls)
	}

	if _, err := c.Get("/other"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if calls != 2 {
		t.Fatalf("probe called %d times, want 2", calls)
	}
}

func TestCacheDoesNotStoreErrors(t *testing.T) {
	c := NewCache(time.Hour)
	fail := true
	c.probe = func(path string) (Usage, error) {
		if fail {
			return Usage{}, errors.New("statfs failed")
		}
		return Usage{Path: path, Total: 1}, nil
	}
	if _, err := c.Get("/x"); err == nil {
		t.Fatal("expected error")
	}
	fail = false
	if u, err := c.Get("/x"); err != nil || u.Total != 1 {
		t.Fatalf("got %+v, %v", u, err)
	}
}

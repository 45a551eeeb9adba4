package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/michaelscutari/foldercap/internal/scan"
	"github.com/michaelscutari/foldercap/internal/units"

	tea "github.com/charmbracelet/bubbletea"
)

func oldTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "archive")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(filepath.Join(dir, "blob.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Truncate(int64(2 * units.MB)); err != nil {
		t.Fatal(err)
	}
	f.Close()
	past := time.Now().AddDate(-2, 0, 0)
	if err := os.Chtimes(dir, past, past); err != nil {
		t.Fatal(err)
	}
	return root
}

func newTestModel(t *testing.T, root string) (*Model, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	horizon, _ := units.ParseHorizon("1y")
	m := NewModel(Options{
		Params: scan.Params{
			Root:   root,
			Mode:   scan.ModeDormant,
			Date:   horizon.ReferenceDate(time.Now()),
			SizeMB: "1",
		},
		Horizon:   horizon,
		ReportDir: "/reports",
		Fs:        fs,
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, fs
}

// drain feeds every pending scan event through the model.
func drain(m *Model) {
	for ev := range m.events {
		m.handleScanEvent(ev)
	}
}

func TestScanLifecycle(t *testing.T) {
	m, fs := newTestModel(t, oldTree(t))

	m.startScan()
	if !m.running {
		t.Fatal("model should be running")
	}
	drain(m)

	if m.running {
		t.Fatal("model should be idle after the finished event")
	}
	if m.finished == nil || m.finished.State != scan.StateCompleted {
		t.Fatalf("finished = %+v", m.finished)
	}
	if len(m.results.Rows) != 1 || !strings.HasSuffix(m.results.Rows[0].Path, "archive") {
		t.Fatalf("rows = %+v", m.results.Rows)
	}
	if !strings.Contains(m.View(), "Found (1)") {
		t.Fatalf("view does not show the found count:\n%s", m.View())
	}

	m.saveReports()
	matches, err := afero.Glob(fs, "/reports/1_yr_old_1mb_folders_from_*")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("saved files = %v (notice %q)", matches, m.notice)
	}
}

func TestStartRejectedWhileRunning(t *testing.T) {
	m, _ := newTestModel(t, oldTree(t))

	m.startScan()
	events := m.events
	if cmd := m.startScan(); cmd != nil {
		t.Fatal("second start should not return a command")
	}
	if m.notice != "A scan is already in progress." {
		t.Fatalf("notice = %q", m.notice)
	}
	if m.events != events {
		t.Fatal("second start replaced the running stream")
	}
	m.stopScan()
	drain(m)
}

func TestSaveWithoutResults(t *testing.T) {
	m, _ := newTestModel(t, t.TempDir())
	m.saveReports()
	if m.notice != "No found items to export." {
		t.Fatalf("notice = %q", m.notice)
	}
}

func TestCycleCriteria(t *testing.T) {
	m, _ := newTestModel(t, t.TempDir())

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	if m.params.Mode != scan.ModeRecent {
		t.Fatalf("mode = %v", m.params.Mode)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	if m.opts.Horizon.Key != "2y" {
		t.Fatalf("horizon = %+v", m.opts.Horizon)
	}
	if m.params.Date != m.opts.Horizon.ReferenceDate(time.Now()) {
		t.Fatalf("date %s not recomputed", m.params.Date)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")})
	if m.params.SizeMB != "100" {
		t.Fatalf("size = %s", m.params.SizeMB)
	}
}

func TestRestartAfterFinished(t *testing.T) {
	m, _ := newTestModel(t, oldTree(t))

	m.startScan()
	first := m.events
	for ev := range first {
		m.handleScanEvent(ev)
		if _, ok := ev.(scan.FinishedEvent); ok {
			break
		}
	}
	if m.running {
		t.Fatal("model should be idle after the finished event")
	}

	m.startScan()
	drain(m)
	if m.finished == nil || m.finished.State != scan.StateCompleted {
		t.Fatalf("restarted scan finished = %+v", m.finished)
	}
	for range first {
	}
}

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"

	"github.com/michaelscutari/foldercap/internal/report"
	"github.com/michaelscutari/foldercap/internal/scan"
	"github.com/michaelscutari/foldercap/internal/units"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case startScanMsg:
		return m, m.startScan()

	case scanEventMsg:
		return m, m.handleScanEvent(msg.event)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case volumeMsg:
		if msg.err != nil {
			m.log.Debug("volume usage unavailable", "err", msg.err)
		} else {
			m.volumeLine = msg.usage.String()
		}
		return m, m.pollVolume()
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.running {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Start):
		return m, m.startScan()

	case key.Matches(msg, m.keys.Stop):
		m.stopScan()
		return m, nil

	case key.Matches(msg, m.keys.Save):
		m.saveReports()
		return m, nil

	case key.Matches(msg, m.keys.Mode):
		if !m.running {
			if m.params.Mode == scan.ModeDormant {
				m.params.Mode = scan.ModeRecent
			} else {
				m.params.Mode = scan.ModeDormant
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Horizon):
		if !m.running {
			m.cycleHorizon()
		}
		return m, nil

	case key.Matches(msg, m.keys.Size):
		if !m.running {
			m.cycleSize()
		}
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		if m.focus == paneLog {
			m.focus = paneFound
		} else {
			m.focus = paneLog
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == paneFound {
		m.foundView, cmd = m.foundView.Update(msg)
	} else {
		m.logView, cmd = m.logView.Update(msg)
	}
	return m, cmd
}

// startScan refuses to run two scans at once.
func (m *Model) startScan() tea.Cmd {
	if m.running {
		m.notice = "A scan is already in progress."
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.running = true
	m.finished = nil
	m.notice = ""
	m.current = ""
	m.candidates, m.skips, m.errors = 0, 0, 0
	m.logLines = nil
	m.foundLines = nil
	m.results = report.New(m.header(), nil)
	m.started = m.now()

	m.appendLog(fmt.Sprintf("Starting %s scan of %s (reference %s, min %s MB)",
		m.params.Mode, m.params.Root, m.params.Date, m.params.SizeMB))
	m.log.Info("tui scan started", "root", m.params.Root, "mode", m.params.Mode.String())

	m.events = m.opts.Engine.Start(ctx, m.params)
	m.refresh()
	return tea.Batch(m.listenForScanEvents(), m.spinner.Tick)
}

func (m *Model) stopScan() {
	if !m.running {
		return
	}
	m.appendLog(">>> STOP SIGNAL RECEIVED <<<")
	m.cancel()
	m.refresh()
}

func (m *Model) handleScanEvent(ev scan.Event) tea.Cmd {
	switch ev := ev.(type) {
	case scan.StatusEvent:
		m.current = ev.Path
		return m.listenForScanEvents()

	case scan.LogEvent:
		switch {
		case ev.Kind == scan.LogCandidate:
			m.candidates++
			m.appendLog(candidateStyle.Render(ev.Message))
		case ev.Kind.IsSkip():
			m.skips++
			m.appendLog(skipStyle.Render(ev.Message))
		case ev.Kind == scan.LogError:
			m.errors++
			m.appendLog(errorStyle.Render(ev.Message))
		default:
			m.appendLog(ev.Message)
		}

	case scan.FoundEvent:
		row := m.results.Add(ev)
		m.foundLines = append(m.foundLines, foundStyle.Render(row.Line()))

	case scan.FinishedEvent:
		m.running = false
		m.cancel()
		m.finished = &ev
		m.current = ""
		m.results.Header.State = ev.State
		switch ev.State {
		case scan.StateStopped:
			m.appendLog("Scan stopped by user.")
		case scan.StateFailed:
			m.appendLog(errorStyle.Render(fmt.Sprintf("Scan failed: %v", ev.Err)))
		default:
			m.appendLog(fmt.Sprintf("Scan complete. %d folders found.", len(m.results.Rows)))
		}
		m.log.Info("tui scan finished", "state", ev.State.String(), "found", len(m.results.Rows))
		m.refresh()
		return nil
	}

	m.refresh()
	return m.listenForScanEvents()
}

func (m *Model) saveReports() {
	if m.running {
		m.notice = "Wait for the scan to finish before saving."
		return
	}
	if m.results == nil || len(m.results.Rows) == 0 {
		m.notice = "No found items to export."
		return
	}

	m.results.Header.Generated = m.now()
	var saved []string
	for _, f := range []report.Format{report.FormatText, report.FormatHTML} {
		path := filepath.Join(m.opts.ReportDir, report.Filename(m.results.Header, f))
		if err := report.Save(m.opts.Fs, path, m.results, f); err != nil {
			m.notice = fmt.Sprintf("Failed to save report: %v", err)
			return
		}
		saved = append(saved, path)
	}
	m.notice = "Saved " + strings.Join(saved, ", ")
}

func (m *Model) cycleHorizon() {
	next := units.Horizons[0]
	for i, h := range units.Horizons {
		if h.Key == m.opts.Horizon.Key {
			next = units.Horizons[(i+1)%len(units.Horizons)]
			break
		}
	}
	m.opts.Horizon = next
	m.params.Date = next.ReferenceDate(m.now())
}

func (m *Model) cycleSize() {
	current, _ := units.ParseSizeMB(m.params.SizeMB)
	next := units.SizePresets[0]
	for i, p := range units.SizePresets {
		if p.MB == current {
			next = units.SizePresets[(i+1)%len(units.SizePresets)]
			break
		}
	}
	m.params.SizeMB = strconv.Itoa(next.MB)
}

// refresh pushes pane contents into the viewports, following the tail.
func (m *Model) refresh() {
	atBottom := m.logView.AtBottom()
	m.logView.SetContent(strings.Join(m.logLines, "\n"))
	if atBottom || m.running {
		m.logView.GotoBottom()
	}

	atBottom = m.foundView.AtBottom()
	m.foundView.SetContent(strings.Join(m.foundLines, "\n"))
	if atBottom {
		m.foundView.GotoBottom()
	}
}

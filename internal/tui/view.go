package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/michaelscutari/foldercap/internal/scan"
)

const (
	headerLines = 3
	footerLines = 3
	paneChrome  = 3 // border plus pane title
)

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	title := titleStyle.Render("foldercap - Folder Capacity Audit")
	if m.running {
		title += " " + m.spinner.View()
	}
	b.WriteString(title + "\n")

	criteria := fmt.Sprintf("Root: %s | Mode: %s | Horizon: %s (Reference Date: %s) | Min Size: %s MB",
		truncateMiddle(m.params.Root, 40),
		strings.ToUpper(m.params.Mode.String()),
		horizonLabel(m.opts.Horizon.Label),
		m.params.Date,
		m.params.SizeMB,
	)
	b.WriteString(criteriaStyle.Render(criteria) + "\n")
	volumeLine := m.volumeLine
	if volumeLine != "" {
		volumeLine = "Volume: " + volumeLine
	}
	b.WriteString(criteriaStyle.Render(volumeLine) + "\n")

	logPane, foundPane := paneStyle, paneStyle
	if m.focus == paneLog {
		logPane = focusedPaneStyle
	} else {
		foundPane = focusedPaneStyle
	}
	left := logPane.Render(paneTitleStyle.Render("Scan Log") + "\n" + m.logView.View())
	right := foundPane.Render(paneTitleStyle.Render(fmt.Sprintf("Found (%d)", m.foundCount())) + "\n" + m.foundView.View())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n")

	b.WriteString(statusStyle.Render(m.statusLine()) + "\n")
	b.WriteString(noticeStyle.Render(m.notice) + "\n")
	b.WriteString(helpStyle.Render(m.helpLine()))

	return b.String()
}

func (m *Model) foundCount() int {
	if m.results == nil {
		return 0
	}
	return len(m.results.Rows)
}

func (m *Model) statusLine() string {
	counts := fmt.Sprintf("candidates %s | skipped %s | errors %s",
		FormatCount(m.candidates), FormatCount(m.skips), FormatCount(m.errors))

	switch {
	case m.running:
		elapsed := m.now().Sub(m.started).Round(time.Second)
		return fmt.Sprintf("Scanning %s | %s | %s", truncateMiddle(m.current, max(10, m.width/2)), elapsed, counts)
	case m.finished != nil:
		state := "Completed"
		switch m.finished.State {
		case scan.StateStopped:
			state = "Stopped"
		case scan.StateFailed:
			state = "Failed"
		}
		return fmt.Sprintf("%s | %s", state, counts)
	default:
		return "Ready"
	}
}

func (m *Model) helpLine() string {
	var parts []string
	for _, k := range m.keys.help(m.running) {
		h := k.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, " | ")
}

// layout sizes the two panes to split the window.
func (m *Model) layout() {
	paneWidth := m.width/2 - 2
	if paneWidth < 20 {
		paneWidth = 20
	}
	paneHeight := m.height - headerLines - footerLines - paneChrome
	if paneHeight < 3 {
		paneHeight = 3
	}
	m.logView.Width, m.logView.Height = paneWidth, paneHeight
	m.foundView.Width, m.foundView.Height = paneWidth, paneHeight
	m.refresh()
}

func horizonLabel(label string) string {
	if label == "" {
		return "Custom"
	}
	return label
}

func truncateMiddle(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	head := (maxLen - 3) / 2
	tail := maxLen - 3 - head
	return s[:head] + "..." + s[len(s)-tail:]
}

package tui

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/spf13/afero"

	"github.com/michaelscutari/foldercap/internal/report"
	"github.com/michaelscutari/foldercap/internal/scan"
	"github.com/michaelscutari/foldercap/internal/units"
	"github.com/michaelscutari/foldercap/internal/volume"

	tea "github.com/charmbracelet/bubbletea"
)

const maxLogLines = 5000

// Options configures a Model.
type Options struct {
	Params    scan.Params
	Horizon   units.Horizon
	ReportDir string
	Engine    *scan.Engine
	Volume    *volume.Cache
	Fs        afero.Fs
	Logger    *slog.Logger
	AutoStart bool
}

type pane int

const (
	paneLog pane = iota
	paneFound
)

// Model holds the TUI state.
type Model struct {
	opts   Options
	params scan.Params
	keys   KeyMap
	now    func() time.Time
	log    *slog.Logger

	running bool
	cancel  context.CancelFunc
	events  <-chan scan.Event

	logLines   []string
	foundLines []string
	results    *report.Report
	current    string
	finished   *scan.FinishedEvent
	started    time.Time
	candidates int64
	skips      int64
	errors     int64

	spinner   spinner.Model
	logView   viewport.Model
	foundView viewport.Model
	focus     pane

	notice     string
	volumeLine string
	width      int
	height     int
}

// NewModel creates a new TUI model.
func NewModel(opts Options) *Model {
	if opts.Engine == nil {
		opts.Engine = scan.NewEngine()
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.ReportDir == "" {
		opts.ReportDir = "."
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = titleStyle

	return &Model{
		opts:      opts,
		params:    opts.Params,
		keys:      DefaultKeyMap(),
		now:       time.Now,
		log:       opts.Logger,
		spinner:   s,
		logView:   viewport.New(40, 10),
		foundView: viewport.New(40, 10),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.pollVolume()}
	if m.opts.AutoStart {
		cmds = append(cmds, func() tea.Msg { return startScanMsg{} })
	}
	return tea.Batch(cmds...)
}

type startScanMsg struct{}

// scanEventMsg wraps any scan event for continued listening
type scanEventMsg struct {
	event scan.Event
}

type volumeMsg struct {
	usage volume.Usage
	err   error
}

func (m *Model) listenForScanEvents() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return scanEventMsg{event: ev}
	}
}

func (m *Model) pollVolume() tea.Cmd {
	if m.opts.Volume == nil || m.params.Root == "" {
		return nil
	}
	cache, root := m.opts.Volume, m.params.Root
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		u, err := cache.Get(root)
		return volumeMsg{usage: u, err: err}
	})
}

func (m *Model) header() report.Header {
	sizeMB, _ := units.ParseSizeMB(m.params.SizeMB)
	return report.Header{
		Generated:     m.now(),
		Root:          m.params.Root,
		Mode:          m.params.Mode,
		Horizon:       m.opts.Horizon,
		ReferenceDate: m.params.Date,
		SizeMB:        sizeMB,
	}
}

func (m *Model) appendLog(line string) {
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
}

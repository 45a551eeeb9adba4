package main

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/foldercap/internal/logging"
	"github.com/michaelscutari/foldercap/internal/scan"
	"github.com/michaelscutari/foldercap/internal/tui"
	"github.com/michaelscutari/foldercap/internal/volume"

	tea "github.com/charmbracelet/bubbletea"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run scans interactively",
	Long:  `Open an interactive TUI that streams scan progress and found folders live.`,
	RunE:  runTUI,
}

var (
	tuiReportDir string
	tuiAutoStart bool
)

func init() {
	addCriteriaFlags(tuiCmd.Flags())
	tuiCmd.Flags().StringVar(&tuiReportDir, "report-dir", ".", "Directory that saved reports are written to")
	tuiCmd.Flags().BoolVar(&tuiAutoStart, "start", false, "Start scanning immediately")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	params, err := cfg.ScanParams(time.Now())
	if err != nil {
		return err
	}
	horizon, err := cfg.HorizonPreset()
	if err != nil {
		return err
	}

	log := logging.Sub("tui")
	model := tui.NewModel(tui.Options{
		Params:    params,
		Horizon:   horizon,
		ReportDir: tuiReportDir,
		Engine:    scan.NewEngine(scan.WithLogger(logging.Sub("engine"))),
		Volume:    volume.NewCache(volume.DefaultTTL),
		Fs:        afero.NewOsFs(),
		Logger:    log,
		AutoStart: tuiAutoStart,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

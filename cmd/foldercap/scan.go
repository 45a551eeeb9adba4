package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/michaelscutari/foldercap/internal/config"
	"github.com/michaelscutari/foldercap/internal/db"
	"github.com/michaelscutari/foldercap/internal/logging"
	"github.com/michaelscutari/foldercap/internal/pathutil"
	"github.com/michaelscutari/foldercap/internal/report"
	"github.com/michaelscutari/foldercap/internal/scan"
	"github.com/michaelscutari/foldercap/internal/snapshot"
	"github.com/michaelscutari/foldercap/internal/volume"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a directory tree for large dormant or recent folders",
	Long: `Walk a directory tree, print every folder that matches the date and
size criteria, and store the results in a SQLite snapshot.`,
	RunE: runScan,
}

var (
	scanNoDB       bool
	scanReportTxt  string
	scanReportHTML string
	scanProgress   time.Duration
)

// addCriteriaFlags registers the flags shared by scan and tui.
func addCriteriaFlags(fs *pflag.FlagSet) {
	fs.StringP("root", "r", ".", "Root directory to scan")
	fs.StringP("mode", "m", "dormant", "Scan mode: dormant|recent")
	fs.String("horizon", "1y", "Time horizon: 1w, 2w, 1m, 3m, 6m, 1y, 2y, 3y, 5y")
	fs.StringP("date", "d", "", "Explicit reference date (dd-mm-yyyy), overrides --horizon")
	fs.IntP("size", "s", 1024, "Minimum folder size in MB")
	fs.StringSliceP("exclude", "e", nil, "Regex patterns to exclude (can be repeated)")
}

func init() {
	addCriteriaFlags(scanCmd.Flags())
	scanCmd.Flags().StringP("out", "o", "./data", "Output directory for snapshots")
	scanCmd.Flags().Int("retention", 5, "Number of snapshots to retain (0 = unlimited)")
	scanCmd.Flags().StringP("format", "f", "text", "Output format: "+strings.Join(config.Formats, "|"))
	scanCmd.Flags().BoolVar(&scanNoDB, "no-db", false, "Do not write a snapshot")
	scanCmd.Flags().StringVar(&scanReportTxt, "report-txt", "", "Also write a text report to this file")
	scanCmd.Flags().StringVar(&scanReportHTML, "report-html", "", "Also write an HTML report to this file")
	scanCmd.Flags().DurationVar(&scanProgress, "progress-interval", 30*time.Second, "Emit progress lines to stderr at this interval when not a TTY (0 to disable)")
}

// progress is shared between the event sink and the display goroutine.
type progress struct {
	found   atomic.Int64
	skips   atomic.Int64
	errors  atomic.Int64
	current atomic.Value
}

func (p *progress) observe(ev scan.Event) {
	switch ev := ev.(type) {
	case scan.FoundEvent:
		p.found.Add(1)
	case scan.StatusEvent:
		p.current.Store(ev.Path)
	case scan.LogEvent:
		if ev.Kind.IsSkip() {
			p.skips.Add(1)
		} else if ev.Kind == scan.LogError {
			p.errors.Add(1)
		}
	}
}

func (p *progress) set(r db.Progress) {
	p.found.Store(r.Found)
	p.skips.Store(r.Skips)
	p.errors.Store(r.Errors)
	if r.Current != "" {
		p.current.Store(r.Current)
	}
}

func (p *progress) path() string {
	s, _ := p.current.Load().(string)
	return s
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	log := logging.Sub("scan")

	now := time.Now()
	params, err := cfg.ScanParams(now)
	if err != nil {
		return err
	}
	horizon, err := cfg.HorizonPreset()
	if err != nil {
		return err
	}

	// Found lines go to stderr when stdout carries a structured report.
	out := io.Writer(os.Stdout)
	if format != report.FormatText {
		out = os.Stderr
	}

	if root, err := pathutil.Resolve(params.Root); err == nil {
		fmt.Fprintf(out, "Scanning %s...\n", root)
		if u, err := volume.Probe(root); err == nil {
			fmt.Fprintf(out, "Volume: %s\n", u)
		} else {
			log.Debug("volume usage unavailable", "root", root, "err", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n>>> STOP SIGNAL RECEIVED <<< (press Ctrl+C again to force)")
		cancel()
		<-sigCh
		os.Exit(130)
	}()

	header := report.Header{
		Generated:     now,
		Root:          params.Root,
		Mode:          params.Mode,
		Horizon:       horizon,
		ReferenceDate: params.Date,
		SizeMB:        cfg.Size,
	}
	results := report.New(header, nil)

	var (
		prog    progress
		printMu sync.Mutex
	)
	isTTY := isTerminal()
	startTime := time.Now()

	clearLine := func() {
		if isTTY {
			fmt.Fprint(os.Stderr, "\r\033[K")
		}
	}

	sink := func(ev scan.Event) {
		switch ev := ev.(type) {
		case scan.FoundEvent:
			row := results.Add(ev)
			printMu.Lock()
			clearLine()
			fmt.Fprintln(out, row.Line())
			printMu.Unlock()
		case scan.LogEvent:
			if ev.Kind == scan.LogError || cfg.Verbose {
				printMu.Lock()
				clearLine()
				fmt.Fprintln(os.Stderr, ev.Message)
				printMu.Unlock()
			}
		}
	}

	progressDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		var spinnerIdx int
		lastNonTTY := time.Now()
		for {
			select {
			case <-progressDone:
				return
			case <-ticker.C:
				elapsed := time.Since(startTime).Round(time.Second)
				if isTTY {
					spinner := spinnerFrames[spinnerIdx%len(spinnerFrames)]
					spinnerIdx++
					printMu.Lock()
					fmt.Fprintf(os.Stderr, "\r\033[K%s %d found | %d skipped | %s | %s",
						spinner, prog.found.Load(), prog.skips.Load(), elapsed, truncatePath(prog.path(), 60))
					printMu.Unlock()
				} else if scanProgress > 0 && time.Since(lastNonTTY) >= scanProgress {
					fmt.Fprintf(os.Stderr, "PROGRESS found=%d skips=%d errors=%d elapsed=%s current=%s\n",
						prog.found.Load(), prog.skips.Load(), prog.errors.Load(), elapsed, prog.path())
					lastNonTTY = time.Now()
				}
			}
		}
	}()

	var (
		fin    scan.FinishedEvent
		dbPath string
	)
	engine := scan.NewEngine(scan.WithLogger(logging.Sub("engine")), scan.WithSizeErrors(cfg.Verbose))
	if scanNoDB {
		fin = engine.Run(ctx, params, func(ev scan.Event) {
			prog.observe(ev)
			sink(ev)
		})
		err = fin.Err
	} else {
		outDir, rerr := pathutil.Resolve(cfg.Out)
		if rerr != nil {
			close(progressDone)
			return fmt.Errorf("failed to resolve output path: %w", rerr)
		}
		mgr := snapshot.NewManager(outDir, cfg.Retention)
		mgr.SetEngine(engine)
		mgr.SetLogger(logging.Sub("snapshot"))
		mgr.SetProgressFunc(prog.set)
		dbPath, fin, err = mgr.RunScan(ctx, params, horizon, sink)
	}
	close(progressDone)

	printMu.Lock()
	clearLine()
	printMu.Unlock()

	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	results.Header.State = fin.State
	switch fin.State {
	case scan.StateStopped:
		fmt.Fprintln(out, "Scan stopped by user.")
	default:
		fmt.Fprintf(out, "Scan complete. %d folders found.\n", len(results.Rows))
	}
	if n := len(results.Rows); n > 0 {
		fmt.Fprintf(out, "Total: %s across %d folders (%d at size limit)\n",
			humanize.IBytes(results.TotalSize()), n, results.TruncatedCount())
	}
	fmt.Fprintf(out, "Elapsed: %s\n", time.Since(startTime).Round(time.Millisecond))
	if dbPath != "" {
		fmt.Fprintf(out, "Database: %s\n", dbPath)
	}
	log.Info("scan finished", "state", fin.State.String(), "found", len(results.Rows), "db", dbPath)

	return writeScanReports(results, format)
}

func writeScanReports(results *report.Report, format report.Format) error {
	fsys := afero.NewOsFs()
	for _, r := range []struct {
		path   string
		format report.Format
	}{
		{scanReportTxt, report.FormatText},
		{scanReportHTML, report.FormatHTML},
	} {
		if r.path == "" {
			continue
		}
		if err := report.Save(fsys, r.path, results, r.format); err != nil {
			return err
		}
		slog.Info("report written", "path", r.path, "format", string(r.format))
	}

	if format != report.FormatText {
		return results.Write(os.Stdout, format)
	}
	return nil
}

// truncatePath keeps the tail of p, which carries the most useful part.
func truncatePath(p string, max int) string {
	r := []rune(p)
	if len(r) <= max {
		return p
	}
	return "..." + string(r[len(r)-max+3:])
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

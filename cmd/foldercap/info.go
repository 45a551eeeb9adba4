package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/foldercap/internal/config"
	"github.com/michaelscutari/foldercap/internal/db"
	"github.com/michaelscutari/foldercap/internal/entry"
	"github.com/michaelscutari/foldercap/internal/pathutil"
	"github.com/michaelscutari/foldercap/internal/report"
	"github.com/michaelscutari/foldercap/internal/scan"
	"github.com/michaelscutari/foldercap/internal/snapshot"
	"github.com/michaelscutari/foldercap/internal/units"

	_ "modernc.org/sqlite"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display a snapshot's metadata and found folders",
	Long:  `Print metadata about a scan snapshot, the folders it found and any errors it logged.`,
	RunE:  runInfo,
}

var (
	infoDB     string
	infoSort   string
	infoLimit  int
	infoErrors int
	infoList   bool
)

func init() {
	infoCmd.Flags().StringVarP(&infoDB, "db", "d", "", "Path to snapshot (default <out>/latest.db)")
	infoCmd.Flags().StringP("out", "o", "./data", "Snapshot directory")
	infoCmd.Flags().StringVar(&infoSort, "sort", "seq", "Sort found folders by: seq, size, path")
	infoCmd.Flags().IntVarP(&infoLimit, "limit", "n", 0, "Maximum number of found folders (0 = all)")
	infoCmd.Flags().IntVar(&infoErrors, "errors", 10, "Number of logged errors to show")
	infoCmd.Flags().BoolVar(&infoList, "list", false, "List available snapshots and exit")
}

// openSnapshot opens dbPath, or the latest snapshot under cfg.Out when empty.
func openSnapshot(cfg *config.Config, dbPath string) (*sql.DB, string, error) {
	if dbPath == "" {
		outDir, err := pathutil.Resolve(cfg.Out)
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve output path: %w", err)
		}
		dbPath, err = snapshot.NewManager(outDir, cfg.Retention).GetLatest()
		if err != nil {
			return nil, "", err
		}
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	database, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.ApplyReadPragmas(database); err != nil {
		database.Close()
		return nil, "", fmt.Errorf("failed to apply pragmas: %w", err)
	}
	return database, dbPath, nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if infoList {
		return listSnapshots(cfg)
	}

	database, dbPath, err := openSnapshot(cfg, infoDB)
	if err != nil {
		return err
	}
	defer database.Close()

	meta, err := db.GetScanMeta(database)
	if err != nil {
		return fmt.Errorf("failed to read scan metadata: %w", err)
	}

	fmt.Printf("Scan Information\n")
	fmt.Printf("================\n\n")
	fmt.Printf("Database:       %s\n", dbPath)
	fmt.Printf("Root Path:      %s\n", meta.RootPath)
	fmt.Printf("Mode:           %s\n", meta.Mode)
	fmt.Printf("Horizon:        %s (Reference Date: %s)\n", meta.Horizon, meta.ReferenceDate)
	fmt.Printf("Minimum Size:   %d MB (%s)\n", meta.SizeMB, humanize.IBytes(meta.ThresholdBytes))
	fmt.Printf("State:          %s\n", meta.State)
	fmt.Printf("Start Time:     %s\n", meta.StartTime.Format(time.RFC3339))
	if !meta.EndTime.IsZero() {
		fmt.Printf("End Time:       %s\n", meta.EndTime.Format(time.RFC3339))
		fmt.Printf("Duration:       %s\n", meta.EndTime.Sub(meta.StartTime).Round(time.Millisecond))
	}
	fmt.Printf("\nStatistics\n")
	fmt.Printf("----------\n")
	fmt.Printf("Found:          %s\n", humanize.Comma(meta.FoundCount))
	fmt.Printf("Skipped:        %s\n", humanize.Comma(meta.SkipCount))
	if meta.ErrorCount > 0 {
		fmt.Printf("Errors:         %s\n", humanize.Comma(meta.ErrorCount))
	}

	rep, err := loadReport(database, meta, infoSort, infoLimit)
	if err != nil {
		return err
	}

	if len(rep.Rows) > 0 {
		fmt.Printf("\nFound Folders\n")
		fmt.Printf("-------------\n")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "SIZE\t%s\tPATH\n", meta.Mode.TimestampLabel())
		for _, r := range rep.Rows {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.SizeLabel, r.Date, r.Path)
		}
		w.Flush()
		fmt.Printf("\nTotal: %s (%d at size limit)\n", humanize.IBytes(rep.TotalSize()), rep.TruncatedCount())
	}

	if infoErrors > 0 && meta.ErrorCount > 0 {
		lines, err := db.LoadLog(database, infoErrors, scan.LogError)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		fmt.Printf("\nErrors\n")
		fmt.Printf("------\n")
		for _, l := range lines {
			fmt.Println(l.Message)
		}
	}

	return nil
}

func listSnapshots(cfg *config.Config) error {
	outDir, err := pathutil.Resolve(cfg.Out)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}
	names, err := snapshot.NewManager(outDir, cfg.Retention).ListSnapshots()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SNAPSHOT\tSIZE\tMODIFIED\n")
	for _, path := range names {
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", filepath.Base(path), humanize.IBytes(uint64(fi.Size())),
			units.FormatDate(fi.ModTime())+" "+fi.ModTime().Format("15:04"))
	}
	return w.Flush()
}

// loadReport reads found folders into a report. Path order is natural, so it
// is sorted here rather than in SQL.
func loadReport(database *sql.DB, meta *entry.ScanMeta, sortBy string, limit int) (*report.Report, error) {
	queryLimit := limit
	if sortBy == "path" {
		queryLimit = 0
	}
	found, err := db.LoadFound(database, sortBy, queryLimit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	rep := report.New(report.HeaderFromMeta(meta, time.Now()), found)
	if sortBy == "path" {
		rep.Sort("path")
		if limit > 0 && len(rep.Rows) > limit {
			rep.Rows = rep.Rows[:limit]
		}
	}
	return rep, nil
}

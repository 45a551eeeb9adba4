package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/foldercap/internal/db"
	"github.com/michaelscutari/foldercap/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export a report from a snapshot",
	Long: `Regenerate a text, HTML, JSON or YAML report from a scan snapshot.
The file name defaults to one derived from the scan criteria and today's date;
use --output - to write to stdout.`,
	RunE: runReport,
}

var (
	reportDB     string
	reportOutput string
	reportSort   string
)

func init() {
	reportCmd.Flags().StringVarP(&reportDB, "db", "d", "", "Path to snapshot (default <out>/latest.db)")
	reportCmd.Flags().StringP("format", "f", "text", "Report format: text|html|json|yaml")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "O", "", "Report file (default derived from the scan criteria)")
	reportCmd.Flags().StringVar(&reportSort, "sort", "seq", "Row order: seq, size, path")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	database, _, err := openSnapshot(cfg, reportDB)
	if err != nil {
		return err
	}
	defer database.Close()

	meta, err := db.GetScanMeta(database)
	if err != nil {
		return fmt.Errorf("failed to read scan metadata: %w", err)
	}
	rep, err := loadReport(database, meta, reportSort, 0)
	if err != nil {
		return err
	}
	rep.Header.Generated = time.Now()

	if reportOutput == "-" {
		return rep.Write(os.Stdout, format)
	}

	path := reportOutput
	if path == "" {
		path = report.Filename(rep.Header, format)
	}
	if err := report.Save(afero.NewOsFs(), path, rep, format); err != nil {
		return err
	}
	fmt.Printf("Wrote %d rows to %s\n", len(rep.Rows), path)
	return nil
}

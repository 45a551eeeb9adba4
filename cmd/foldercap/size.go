package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/foldercap/internal/logging"
	"github.com/michaelscutari/foldercap/internal/pathutil"
	"github.com/michaelscutari/foldercap/internal/scan"
	"github.com/michaelscutari/foldercap/internal/units"
)

var sizeCmd = &cobra.Command{
	Use:   "size PATH",
	Short: "Measure a folder, stopping once it passes a ceiling",
	Long: `Sum the regular files under PATH. With --ceiling the walk stops as
soon as the total exceeds the ceiling; --exact always walks the whole tree.`,
	Args: cobra.ExactArgs(1),
	RunE: runSize,
}

var (
	sizeCeilingMB int
	sizeExact     bool
)

func init() {
	sizeCmd.Flags().IntVarP(&sizeCeilingMB, "ceiling", "c", 1024, "Stop counting after this many MB")
	sizeCmd.Flags().BoolVar(&sizeExact, "exact", false, "Compute the exact size, ignoring --ceiling")
}

func runSize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path, err := pathutil.Resolve(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	var ceiling uint64
	if !sizeExact {
		mb, err := units.ParseSizeMB(strconv.Itoa(sizeCeilingMB))
		if err != nil {
			return fmt.Errorf("invalid ceiling: %w", err)
		}
		ceiling = units.MBToBytes(uint64(mb))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var total uint64
	var truncated bool
	if cfg.Verbose {
		log := logging.Sub("size")
		sizer := &scan.Sizer{OnSkip: func(p string, err error) {
			log.Warn("skipped entry", "path", p, "err", err)
		}}
		total, truncated = sizer.Sum(ctx, path, ceiling)
	} else {
		total, truncated = scan.SumBounded(ctx, path, ceiling)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	label := humanize.IBytes(total)
	if truncated {
		label = fmt.Sprintf("> %s (ceiling %d MB reached)", label, sizeCeilingMB)
	}
	fmt.Printf("%s\t%s\n", label, path)
	return nil
}

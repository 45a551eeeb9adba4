package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/michaelscutari/foldercap/internal/config"
	"github.com/michaelscutari/foldercap/internal/logging"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "foldercap",
	Short: "Find large dormant or recently created folders",
	Long: `foldercap walks a directory tree and reports subdirectories larger
than a size threshold that have not been modified since a reference date
(dormant mode) or were created after it (recent mode). Results are kept as
SQLite snapshots and can be exported as text, HTML, JSON or YAML reports.`,
	SilenceUsage: true,
}

var configFile string

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default "+config.DefaultFile+")")
	rootCmd.PersistentFlags().String("log-dir", "", "Also write a rotating log file to this directory")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(sizeCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(reportCmd)
}

// loadConfig resolves settings for cmd and installs the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := logging.Init(cfg.LogDir, cfg.Verbose); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, nil
}

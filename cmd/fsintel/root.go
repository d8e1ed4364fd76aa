package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"fsintel/internal/logging"
	"fsintel/internal/tool"
	"fsintel/internal/version"
)

var (
	rootFlag      string
	logLevelFlag  string
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "fsintel",
	Short: "fsintel - file-system analysis and intelligence core",
	Long: `fsintel scans directory trees into durable analysis sessions, answers
queries over the collected metadata, and renders intelligence reports.`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.SetVersionTemplate("fsintel version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".",
		"Root directory holding the .fsintel state")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "human",
		"Log format: human or json")
}

func newLogger() *slog.Logger {
	format := logging.HumanFormat
	if logFormatFlag == "json" {
		format = logging.JSONFormat
	}
	return logging.New(format, logging.ParseLevel(logLevelFlag), os.Stderr)
}

// openFacade builds the facade for the configured root. The caller owns
// the Close.
func openFacade(logger *slog.Logger) (*tool.Facade, error) {
	return tool.Open(rootFlag, logger)
}

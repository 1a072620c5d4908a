// Package cmd builds the logtriage command tree.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/logtriage/internal/config"
	"github.com/harrison/logtriage/internal/diag"
	"github.com/harrison/logtriage/internal/engine"
	"github.com/harrison/logtriage/internal/logger"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for logtriage
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logtriage",
		Short: "Test-run log triage and root-cause analysis",
		Long: `Logtriage scans rotated test-run logs, isolates failed scenarios,
classifies their root causes, and can file tracker tickets for new
failures.

Every command re-scans the configured log directories on each run;
nothing is cached between invocations.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "logtriage.yaml", "path to the configuration file")

	// Add subcommands
	cmd.AddCommand(NewFailuresCommand())
	cmd.AddCommand(NewSummaryCommand())
	cmd.AddCommand(NewCausesCommand())
	cmd.AddCommand(NewReportCommand())
	cmd.AddCommand(NewTicketsCommand())
	cmd.AddCommand(NewToolsCommand())

	return cmd
}

// newService loads configuration and wires the triage service for a
// command invocation. The caller owns Close.
func newService(cmd *cobra.Command) (*engine.Service, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	log := logger.NewConsoleLogger(os.Stderr, cfg.LogLevel)
	sink := diag.NewFileSink(cfg.DiagnosticLog)
	return engine.NewService(cfg, sink, log)
}

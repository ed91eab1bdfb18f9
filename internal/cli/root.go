// Package cli implements the clogni command surface: ingestion,
// queries, verification, and the HTTP server, all over one audit
// trail.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/clognichain/clogni/internal/config"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	LogPath string
	DBPath  string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the clogni CLI.
// Flag defaults come from the environment (CLOGNI_LOG, CLOGNI_DB).
func NewRootCommand() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("invalid environment config, using defaults", "error", err)
		cfg = config.Default()
	}

	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "clogni",
		Short: "clogni - append-only audit trail",
		Long: `An append-only, tamper-evident audit trail: every record is written
to a compressed log and mirrored into a SQLite index, carrying a
SHA-256 fingerprint of its canonical payload.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			setupLogging(opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogPath, "log", cfg.LogPath, "path to the compressed audit log")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", cfg.DBPath, "path to the SQLite index")

	cmd.AddCommand(NewIngestCommand(opts))
	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewTailCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewCallCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// setupLogging configures the process-wide slog handler.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show trail statistics",
		Long: `Show the number of indexed records.

Example:
  clogni stats --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, cmd)
		},
	}

	return cmd
}

func runStats(opts *RootOptions, cmd *cobra.Command) error {
	logger, err := openLogger(opts)
	if err != nil {
		return err
	}
	defer logger.Close()

	count, err := logger.Count(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "stats failed", err)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
	}
	if formatter.Format == "json" {
		return formatter.Success(map[string]int64{"entries": count})
	}
	return formatter.Success(fmt.Sprintf("entries: %d", count))
}

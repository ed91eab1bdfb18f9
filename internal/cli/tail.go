package cli

import (
	"github.com/spf13/cobra"
)

// TailOptions holds flags for the tail command.
type TailOptions struct {
	*RootOptions
	Count int
}

// NewTailCommand creates the tail command.
func NewTailCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TailOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show the most recent records",
		Long: `Show the most recent records, newest first.

Example:
  clogni tail -n 20
  clogni tail --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTail(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 10, "number of records to show")

	return cmd
}

func runTail(opts *TailOptions, cmd *cobra.Command) error {
	logger, err := openLogger(opts.RootOptions)
	if err != nil {
		return err
	}
	defer logger.Close()

	recs, err := logger.Tail(cmd.Context(), opts.Count)
	if err != nil {
		return WrapExitError(ExitCommandError, "tail failed", err)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
	}
	return writeRecords(formatter, recs)
}

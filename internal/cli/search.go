package cli

import (
	"github.com/spf13/cobra"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Limit int
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search payload text for a substring",
		Long: `Search indexed payload text for a case-sensitive substring, newest
matches first.

Example:
  clogni search login --limit 5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "maximum number of matches")

	return cmd
}

func runSearch(opts *SearchOptions, term string, cmd *cobra.Command) error {
	logger, err := openLogger(opts.RootOptions)
	if err != nil {
		return err
	}
	defer logger.Close()

	recs, err := logger.Search(cmd.Context(), term, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "search failed", err)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
	}
	return writeRecords(formatter, recs)
}

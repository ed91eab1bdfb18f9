package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clognichain/clogni/internal/audit"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Repair bool
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Reconcile the append log against the index",
		Long: `Replay the append log against the SQLite index and report
divergence: index rows missing for log records, index rows with no
log record, and log lines whose fingerprint no longer matches their
payload.

With --repair, missing index rows are re-inserted from the log.
Tampered lines are reported but never repaired.

Exits 1 when discrepancies remain.

Example:
  clogni verify
  clogni verify --repair`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Repair, "repair", false, "re-insert missing index rows from the log")

	return cmd
}

// verifyView is the JSON shape of a verification report.
type verifyView struct {
	LogRecords int   `json:"log_records"`
	IndexRows  int64 `json:"index_rows"`
	Missing    int   `json:"missing"`
	Extra      int   `json:"extra"`
	Tampered   int   `json:"tampered"`
	Repaired   int   `json:"repaired"`
	Clean      bool  `json:"clean"`
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	logger, err := openLogger(opts.RootOptions)
	if err != nil {
		return err
	}
	defer logger.Close()

	var result audit.VerifyResult
	if opts.Repair {
		result, err = logger.Repair(cmd.Context())
	} else {
		result, err = logger.Verify(cmd.Context())
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "verification failed", err)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
	}

	view := verifyView{
		LogRecords: result.LogRecords,
		IndexRows:  result.IndexRows,
		Missing:    result.Missing,
		Extra:      result.Extra,
		Tampered:   result.Tampered,
		Repaired:   result.Repaired,
		Clean:      result.Clean(),
	}

	if formatter.Format == "json" {
		if err := formatter.Success(view); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "log records: %d\n", view.LogRecords)
		fmt.Fprintf(formatter.Writer, "index rows:  %d\n", view.IndexRows)
		fmt.Fprintf(formatter.Writer, "missing:     %d\n", view.Missing)
		fmt.Fprintf(formatter.Writer, "extra:       %d\n", view.Extra)
		fmt.Fprintf(formatter.Writer, "tampered:    %d\n", view.Tampered)
		if opts.Repair {
			fmt.Fprintf(formatter.Writer, "repaired:    %d\n", view.Repaired)
		}
	}

	// Repair resolves missing rows; anything else left over is a failure.
	unresolved := result.Tampered > 0 || result.Extra > 0 ||
		(result.Missing > result.Repaired)
	if unresolved {
		return NewExitError(ExitFailure, "verification found discrepancies")
	}
	return nil
}

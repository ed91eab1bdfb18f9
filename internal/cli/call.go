package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/clognichain/clogni/internal/hub"
	"github.com/clognichain/clogni/internal/payload"
)

// CallOptions holds flags for the call command.
type CallOptions struct {
	*RootOptions
	Args string
}

// NewCallCommand creates the call command.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call <function>",
		Short: "Dispatch a hub function locally",
		Long: `Dispatch a registered hub function against the local audit trail,
without going through the HTTP server.

Example:
  clogni call ingest --args '{"source":"cli","payload":{"event":"boot"}}'
  clogni call tail --args '{"n":5}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Args, "args", "{}", "function arguments as JSON")

	return cmd
}

// callView is the JSON shape of a local dispatch result.
type callView struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
}

func runCall(opts *CallOptions, name string, cmd *cobra.Command) error {
	fnArgs, err := payload.DecodeObject([]byte(opts.Args))
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --args JSON", err)
	}

	logger, err := openLogger(opts.RootOptions)
	if err != nil {
		return err
	}
	defer logger.Close()

	h := hub.New()
	hub.RegisterAuditFuncs(h, logger)

	res, err := h.Call(cmd.Context(), name, fnArgs)
	if err != nil {
		return WrapExitError(ExitFailure, "call failed", err)
	}

	out, err := payload.MarshalCanonical(res.Value)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to serialize result", err)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
	}
	if formatter.Format == "json" {
		return formatter.Success(callView{ID: res.ID, Result: out})
	}
	return formatter.Success(string(out))
}

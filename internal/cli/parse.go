package cli

import (
	"github.com/spf13/cobra"

	"github.com/clognichain/clogni/internal/payload"
	"github.com/clognichain/clogni/internal/token"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Lang   string
	Source string
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Tokenize text into a payload",
		Long: `Tokenize text and print the resulting payload. With --source, the
payload is also appended to the audit trail.

Example:
  clogni parse "こんにちは世界" --lang ja
  clogni parse "hello world" --lang en --source cli`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Lang, "lang", "ja", "tokenizer language (ja|en)")
	cmd.Flags().StringVar(&opts.Source, "source", "", "append the payload under this source")

	return cmd
}

func runParse(opts *ParseOptions, text string, cmd *cobra.Command) error {
	parsed := token.NewParser(opts.Lang).Parse(text)

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
	}

	if opts.Source == "" {
		data, err := payload.MarshalCanonical(parsed)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to serialize payload", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(parsed)
		}
		return formatter.Success(string(data))
	}

	logger, err := openLogger(opts.RootOptions)
	if err != nil {
		return err
	}
	defer logger.Close()

	rec, err := logger.Append(cmd.Context(), opts.Source, parsed)
	if err != nil {
		return WrapExitError(ExitCommandError, "append failed", err)
	}
	return writeRecord(formatter, rec)
}

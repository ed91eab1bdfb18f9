package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/clognichain/clogni/internal/audit"
	"github.com/clognichain/clogni/internal/payload"
	"github.com/clognichain/clogni/internal/schema"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	Source  string
	Payload string
	File    string
	Schema  string
}

// batchEntry is one record in a --file YAML batch.
type batchEntry struct {
	Source  string `yaml:"source"`
	Payload any    `yaml:"payload"`
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Append payloads to the audit trail",
		Long: `Append one payload, or a YAML batch of payloads, to the audit trail.

Each payload is serialized canonically, fingerprinted with SHA-256,
appended to the compressed log, and indexed in SQLite. With --schema,
payloads are validated against a CUE schema before anything is written.

Example:
  clogni ingest --source api --payload '{"event":"login","user":"u1"}'
  clogni ingest --file batch.yaml --schema event.cue`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Source, "source", "", "origin label for the record")
	cmd.Flags().StringVar(&opts.Payload, "payload", "", "payload as JSON")
	cmd.Flags().StringVar(&opts.File, "file", "", "YAML file with a list of {source, payload} entries")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "CUE schema to validate payloads against")

	return cmd
}

func runIngest(opts *IngestOptions, cmd *cobra.Command) error {
	if (opts.Payload == "") == (opts.File == "") {
		return NewExitError(ExitCommandError, "exactly one of --payload or --file is required")
	}

	var sch *schema.Schema
	if opts.Schema != "" {
		var err error
		sch, err = schema.CompileFile(opts.Schema)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load schema", err)
		}
	}

	logger, err := openLogger(opts.RootOptions)
	if err != nil {
		return err
	}
	defer logger.Close()

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
	}

	if opts.Payload != "" {
		if opts.Source == "" {
			return NewExitError(ExitCommandError, "--source is required with --payload")
		}
		p, err := payload.Decode([]byte(opts.Payload))
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --payload JSON", err)
		}
		rec, err := appendOne(cmd, logger, sch, opts.Source, p)
		if err != nil {
			return err
		}
		return writeRecord(formatter, rec)
	}

	entries, err := loadBatch(opts.File)
	if err != nil {
		return err
	}

	recs := make([]audit.Record, 0, len(entries))
	for i, entry := range entries {
		if entry.Source == "" {
			return NewExitError(ExitCommandError, fmt.Sprintf("entry %d: source is required", i))
		}
		p, err := payload.FromGo(entry.Payload)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("entry %d: invalid payload", i), err)
		}
		rec, err := appendOne(cmd, logger, sch, entry.Source, p)
		if err != nil {
			return WrapExitError(GetExitCode(err), fmt.Sprintf("entry %d", i), err)
		}
		recs = append(recs, rec)
	}
	return writeRecords(formatter, recs)
}

func appendOne(cmd *cobra.Command, logger *audit.Logger, sch *schema.Schema, source string, p payload.Value) (audit.Record, error) {
	if sch != nil {
		if err := sch.Validate(p); err != nil {
			return audit.Record{}, WrapExitError(ExitFailure, "payload rejected by schema", err)
		}
	}
	rec, err := logger.Append(cmd.Context(), source, p)
	if err != nil {
		return audit.Record{}, WrapExitError(ExitCommandError, "append failed", err)
	}
	return rec, nil
}

func loadBatch(path string) ([]batchEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read batch file", err)
	}
	var entries []batchEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to parse batch file", err)
	}
	return entries, nil
}

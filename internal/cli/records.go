package cli

import (
	"encoding/json"
	"fmt"

	"github.com/clognichain/clogni/internal/audit"
	"github.com/clognichain/clogni/internal/payload"
)

// openLogger opens the audit trail named by the root flags.
func openLogger(opts *RootOptions) (*audit.Logger, error) {
	logger, err := audit.Open(opts.LogPath, opts.DBPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open audit trail", err)
	}
	return logger, nil
}

// recordView is the JSON shape of a record on the CLI surface. The
// payload is embedded in its canonical serialization.
type recordView struct {
	TS      int64           `json:"ts"`
	SHA     string          `json:"sha"`
	Source  string          `json:"source"`
	Payload json.RawMessage `json:"payload"`
}

func viewOf(rec audit.Record) (recordView, error) {
	data, err := payload.MarshalCanonical(rec.Payload)
	if err != nil {
		return recordView{}, fmt.Errorf("serialize payload: %w", err)
	}
	return recordView{TS: rec.TS, SHA: rec.SHA, Source: rec.Source, Payload: data}, nil
}

func viewsOf(recs []audit.Record) ([]recordView, error) {
	views := make([]recordView, 0, len(recs))
	for _, rec := range recs {
		v, err := viewOf(rec)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// writeRecords renders records either as a JSON data array or as one
// text line per record.
func writeRecords(f *OutputFormatter, recs []audit.Record) error {
	views, err := viewsOf(recs)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render records", err)
	}
	if f.Format == "json" {
		return f.Success(views)
	}
	for _, v := range views {
		fmt.Fprintf(f.Writer, "%d  %s  %s  %s\n", v.TS, shortSHA(v.SHA), v.Source, v.Payload)
	}
	return nil
}

func writeRecord(f *OutputFormatter, rec audit.Record) error {
	return writeRecords(f, []audit.Record{rec})
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}

package audit

import (
	"context"
	"errors"
	"io/fs"

	"github.com/clognichain/clogni/internal/chainlog"
	"github.com/clognichain/clogni/internal/index"
	"github.com/clognichain/clogni/internal/payload"
)

// VerifyResult summarizes a reconciliation pass over the two stores.
type VerifyResult struct {
	// LogRecords is the number of well-formed records in the append log.
	LogRecords int

	// IndexRows is the total row count in the index store.
	IndexRows int64

	// Missing is the number of log records without a matching index row
	// (the divergence a failed dual write leaves behind).
	Missing int

	// Extra is the number of index rows not accounted for by the log.
	Extra int

	// Tampered is the number of log lines whose stored fingerprint does
	// not match the recomputed fingerprint of their payload, plus lines
	// that fail to parse at all.
	Tampered int

	// Repaired is the number of missing rows re-inserted (Repair only).
	Repaired int
}

// Clean reports whether the two stores agree and no tampering was found.
func (r VerifyResult) Clean() bool {
	return r.Missing == 0 && r.Extra == 0 && r.Tampered == 0
}

// Verify replays the append log against the index store and reports
// divergence without modifying anything. A log that has never been
// written counts as empty.
func (l *Logger) Verify(ctx context.Context) (VerifyResult, error) {
	return l.reconcile(ctx, false)
}

// Repair is Verify plus re-insertion of rows the index is missing,
// restoring the invariant that every log record has an index row. It is
// the replay-from-log path for recovering from a partial append
// failure. Tampered lines are reported, never repaired.
func (l *Logger) Repair(ctx context.Context) (VerifyResult, error) {
	return l.reconcile(ctx, true)
}

func (l *Logger) reconcile(ctx context.Context, repair bool) (VerifyResult, error) {
	var result VerifyResult

	// Multiset of well-formed log records, keyed by the full row tuple:
	// duplicates are legal, so occurrence counts matter.
	logCounts := make(map[index.Row]int)

	err := chainlog.Scan(l.log.Path(), func(line []byte) error {
		rec, derr := decodeLine(line)
		if derr != nil {
			result.Tampered++
			return nil
		}

		canonical, merr := payload.MarshalCanonical(rec.Payload)
		if merr != nil {
			result.Tampered++
			return nil
		}
		if payload.FingerprintBytes(canonical) != rec.SHA {
			result.Tampered++
			return nil
		}

		result.LogRecords++
		row := index.Row{TS: rec.TS, SHA: rec.SHA, Source: rec.Source, Payload: string(canonical)}
		logCounts[row]++
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return result, newError(ErrCodeIO, "verify", err)
	}

	total, err := l.idx.Count(ctx)
	if err != nil {
		return result, newError(ErrCodeStorage, "verify", err)
	}
	result.IndexRows = total

	var matched int64
	for row, logCount := range logCounts {
		idxCount, err := l.idx.CountMatching(ctx, row)
		if err != nil {
			return result, newError(ErrCodeStorage, "verify", err)
		}

		if idxCount < int64(logCount) {
			missing := logCount - int(idxCount)
			result.Missing += missing
			if repair {
				if err := l.insertMissing(ctx, row, missing); err != nil {
					return result, err
				}
				result.Repaired += missing
			}
		}
		matched += min(idxCount, int64(logCount))
	}

	result.Extra = int(total - matched)
	return result, nil
}

// insertMissing re-inserts n copies of row under the append lock so
// repair writes do not interleave with live appends.
func (l *Logger) insertMissing(ctx context.Context, row index.Row, n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := 0; i < n; i++ {
		if err := l.idx.Insert(ctx, row); err != nil {
			return newError(ErrCodeStorage, "repair", err)
		}
	}
	return nil
}

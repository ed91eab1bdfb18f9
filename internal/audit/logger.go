package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/clognichain/clogni/internal/chainlog"
	"github.com/clognichain/clogni/internal/index"
	"github.com/clognichain/clogni/internal/payload"
)

// Logger coordinates the dual write into the append log and the index
// store. It exclusively owns both handles for the life of the process;
// callers never touch them directly.
type Logger struct {
	mu    sync.Mutex // serializes the append write sequence
	clock Clock

	log     *chainlog.Log
	idx     *index.Store
	metrics *Metrics
}

// Option configures a Logger.
type Option func(*Logger)

// WithClock substitutes the timestamp source. Used by tests.
func WithClock(c Clock) Option {
	return func(l *Logger) { l.clock = c }
}

// WithMetrics attaches Prometheus counters to the trail.
func WithMetrics(m *Metrics) Option {
	return func(l *Logger) { l.metrics = m }
}

// New assembles a Logger over an already-open log and index.
// Ownership of both transfers to the Logger; Close releases them.
func New(log *chainlog.Log, idx *index.Store, opts ...Option) *Logger {
	l := &Logger{
		clock: SystemClock(),
		log:   log,
		idx:   idx,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open opens (creating if absent) the append log and index store at the
// given paths and assembles a Logger over them.
func Open(logPath, dbPath string, opts ...Option) (*Logger, error) {
	log, err := chainlog.Open(logPath)
	if err != nil {
		return nil, newError(ErrCodeIO, "open", err)
	}

	idx, err := index.Open(dbPath)
	if err != nil {
		log.Close()
		return nil, newError(ErrCodeStorage, "open", err)
	}

	return New(log, idx, opts...), nil
}

// Close releases both store handles.
func (l *Logger) Close() error {
	var errs []error
	if err := l.log.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close append log: %w", err))
	}
	if err := l.idx.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close index store: %w", err))
	}
	return errors.Join(errs...)
}

// Append ingests one event: stamps timestamp and fingerprint, then
// writes the record to the append log and the index store as one
// logically atomic unit. Returns the constructed record.
//
// On failure nothing is rolled back: if the log write succeeded and the
// index insert failed the stores have diverged, and the caller must
// treat the entry as "may or may not be durably indexed" (re-verify via
// Search on the fingerprint, or run Repair).
func (l *Logger) Append(ctx context.Context, source string, p payload.Value) (Record, error) {
	rec, err := l.append(ctx, source, p)
	l.metrics.observeAppend(err)
	return rec, err
}

func (l *Logger) append(ctx context.Context, source string, p payload.Value) (Record, error) {
	canonical, err := payload.MarshalCanonical(p)
	if err != nil {
		return Record{}, newError(ErrCodeSerialization, "append", err)
	}

	rec := Record{
		TS:      l.clock.Now(),
		SHA:     payload.FingerprintBytes(canonical),
		Source:  source,
		Payload: p,
	}

	line, err := rec.MarshalLine()
	if err != nil {
		// The payload already serialized, so only a pathological
		// envelope reaches this.
		return Record{}, newError(ErrCodeSerialization, "append", err)
	}

	// Both sinks must receive writes in the same order, and the log
	// file handle is not shareable across concurrent writers.
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.log.AppendLine(line); err != nil {
		return Record{}, newError(ErrCodeIO, "append", err)
	}

	row := index.Row{TS: rec.TS, SHA: rec.SHA, Source: rec.Source, Payload: string(canonical)}
	if err := l.idx.Insert(ctx, row); err != nil {
		slog.Error("index insert failed after log write; stores diverged",
			"sha", rec.SHA, "source", rec.Source)
		return Record{}, newError(ErrCodeStorage, "append", err)
	}

	return rec, nil
}

// Tail returns the n most recent records, timestamp descending, ties
// most-recently-inserted-first. n <= 0 returns an empty slice.
func (l *Logger) Tail(ctx context.Context, n int) ([]Record, error) {
	rows, err := l.idx.Tail(ctx, n)
	if err != nil {
		return nil, newError(ErrCodeStorage, "tail", err)
	}
	return l.toRecords(rows)
}

// Search returns up to limit records whose canonical payload text
// contains term as a case-sensitive substring, most recent first.
func (l *Logger) Search(ctx context.Context, term string, limit int) ([]Record, error) {
	rows, err := l.idx.Search(ctx, term, limit)
	if err != nil {
		return nil, newError(ErrCodeStorage, "search", err)
	}
	return l.toRecords(rows)
}

// Count returns the total number of indexed records.
func (l *Logger) Count(ctx context.Context) (int64, error) {
	count, err := l.idx.Count(ctx)
	if err != nil {
		return 0, newError(ErrCodeStorage, "count", err)
	}
	return count, nil
}

func (l *Logger) toRecords(rows []index.Row) ([]Record, error) {
	records := make([]Record, len(rows))
	for i, row := range rows {
		p, err := payload.Decode([]byte(row.Payload))
		if err != nil {
			return nil, newError(ErrCodeStorage, "decode payload",
				fmt.Errorf("row sha=%s: %w", row.SHA, err))
		}
		records[i] = Record{TS: row.TS, SHA: row.SHA, Source: row.Source, Payload: p}
	}
	l.metrics.observeRead(len(records))
	return records, nil
}

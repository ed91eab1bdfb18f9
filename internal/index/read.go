package index

import (
	"context"
	"database/sql"
	"fmt"
)

// Tail returns the n most recent rows, ordered by timestamp descending
// with ties broken most-recently-inserted-first. n <= 0 returns an
// empty slice without touching the database.
func (s *Store) Tail(ctx context.Context, n int) ([]Row, error) {
	if n <= 0 {
		return []Row{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, sha, source, payload
		FROM audit_index
		ORDER BY ts DESC, rowid DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("query tail: %w", err)
	}
	defer rows.Close()

	return collectRows(rows)
}

// Search returns up to limit rows whose payload text contains term as a
// case-sensitive substring, most recent first. Matching uses instr()
// rather than LIKE: SQLite's LIKE is case-insensitive for ASCII and
// would need pattern-metacharacter escaping.
func (s *Store) Search(ctx context.Context, term string, limit int) ([]Row, error) {
	if limit <= 0 {
		return []Row{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, sha, source, payload
		FROM audit_index
		WHERE instr(payload, ?) > 0
		ORDER BY ts DESC, rowid DESC
		LIMIT ?
	`, term, limit)
	if err != nil {
		return nil, fmt.Errorf("query search: %w", err)
	}
	defer rows.Close()

	return collectRows(rows)
}

// Count returns the total number of indexed rows.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_index`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count index rows: %w", err)
	}
	return count, nil
}

// CountMatching returns how many rows equal the given row on every
// column. Used by log/index reconciliation to multiset-compare the two
// stores (duplicates are legal, so presence alone is not enough).
func (s *Store) CountMatching(ctx context.Context, row Row) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM audit_index
		WHERE ts = ? AND sha = ? AND source = ? AND payload = ?
	`, row.TS, row.SHA, row.Source, row.Payload).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count matching rows: %w", err)
	}
	return count, nil
}

func collectRows(rows *sql.Rows) ([]Row, error) {
	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.TS, &r.SHA, &r.Source, &r.Payload); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate index rows: %w", err)
	}

	// Empty result is a valid result, not an error.
	if out == nil {
		out = []Row{}
	}

	return out, nil
}

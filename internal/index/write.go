package index

import (
	"context"
	"fmt"
)

// Insert appends one row. No uniqueness is enforced on any column:
// duplicate fingerprints and timestamps are valid and expected.
func (s *Store) Insert(ctx context.Context, row Row) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_index (ts, sha, source, payload)
		VALUES (?, ?, ?, ?)
	`,
		row.TS,
		row.SHA,
		row.Source,
		row.Payload,
	)
	if err != nil {
		return fmt.Errorf("insert index row: %w", err)
	}

	return nil
}

// Package index provides the SQLite-backed Index Store, the queryable
// secondary representation of the audit trail.
//
// Every row mirrors one append-log record: (ts, sha, source, payload),
// with payload stored as canonical JSON text. Rows ordered by ts
// descending (ties broken most-recently-inserted-first via rowid) form
// the authoritative view for all read operations; the append log is
// never consulted on a read path.
//
// # Database configuration
//
//   - WAL mode: reads interleave with the single writer
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//
// The connection pool is capped at one connection; SQLite allows one
// writer at a time and the coordinator already serializes appends.
package index

// Package audit implements the coordinator of the tamper-evident audit
// trail: the only writer of records and the sole component enforcing
// consistency between the append log and the index store.
//
// Each Append stamps a wall-clock timestamp and a content fingerprint,
// then writes the record to both stores under one exclusive lock so the
// two receive writes in the same order. Reads (Tail, Search, Count) go
// to the index store only and never take the write lock.
//
// The dual write is deliberately best-effort, not two-phase commit: if
// the log write succeeds and the index insert fails, the stores diverge
// with the log ahead of the index. Verify detects this and Repair
// replays missing records from the log back into the index.
package audit

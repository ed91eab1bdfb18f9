package audit

import (
	"fmt"

	"github.com/clognichain/clogni/internal/payload"
)

// Record is one ingested event: the unit of durability. A record is
// created exactly once at append time and never mutated.
type Record struct {
	// TS is the integer-seconds timestamp assigned at append time.
	TS int64 `json:"ts"`

	// SHA is the hex content fingerprint of the payload's canonical form.
	SHA string `json:"sha"`

	// Source is the caller-supplied free-text producer label.
	Source string `json:"source"`

	// Payload is the ingested structured value, opaque to the trail
	// beyond serialization.
	Payload payload.Value `json:"payload"`
}

// Envelope returns the record as a payload object, the form written to
// the append log and returned over the query surfaces.
func (r Record) Envelope() payload.Object {
	return payload.Object{
		"ts":      payload.Int(r.TS),
		"sha":     payload.String(r.SHA),
		"source":  payload.String(r.Source),
		"payload": r.Payload,
	}
}

// MarshalLine serializes the record to its canonical log line
// {payload, sha, source, ts} (keys in canonical order, no whitespace).
func (r Record) MarshalLine() ([]byte, error) {
	return payload.MarshalCanonical(r.Envelope())
}

// decodeLine parses an append-log line back into a Record.
// Used by verification; the write path never reads the log.
func decodeLine(line []byte) (Record, error) {
	obj, err := payload.DecodeObject(line)
	if err != nil {
		return Record{}, fmt.Errorf("decode log line: %w", err)
	}

	var rec Record

	ts, ok := obj["ts"].(payload.Int)
	if !ok {
		return Record{}, fmt.Errorf("decode log line: missing or invalid ts")
	}
	rec.TS = int64(ts)

	sha, ok := obj["sha"].(payload.String)
	if !ok {
		return Record{}, fmt.Errorf("decode log line: missing or invalid sha")
	}
	rec.SHA = string(sha)

	source, ok := obj["source"].(payload.String)
	if !ok {
		return Record{}, fmt.Errorf("decode log line: missing or invalid source")
	}
	rec.Source = string(source)

	p, ok := obj["payload"]
	if !ok {
		return Record{}, fmt.Errorf("decode log line: missing payload")
	}
	rec.Payload = p

	return rec, nil
}

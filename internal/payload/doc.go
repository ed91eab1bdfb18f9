// Package payload models the structured values carried by audit records.
//
// A payload is a tagged union over null, bool, integer, float, string,
// array, and object. Every payload has exactly one canonical JSON
// serialization (sorted keys, NFC-normalized strings, no extraneous
// whitespace); both the content fingerprint and the persisted payload
// text are derived from it, so the hash input and the stored form can
// never disagree.
package payload

package payload

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// FingerprintLen is the length of a hex fingerprint (SHA-256).
const FingerprintLen = 64

// Fingerprint computes the content hash of a payload: SHA-256 over its
// canonical serialization, hex encoded. Two payloads with the same
// canonical form always produce the same fingerprint, regardless of how
// they were constructed.
func Fingerprint(v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return FingerprintBytes(canonical), nil
}

// FingerprintBytes computes the fingerprint of already-canonical bytes.
// Used by verification to re-check persisted payload text without a
// decode round trip.
func FingerprintBytes(canonical []byte) string {
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

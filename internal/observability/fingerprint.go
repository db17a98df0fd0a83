package observability

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a short stable digest of free text so logs can
// correlate problem reports without storing what the requester wrote.
func Fingerprint(text string) string {
	sum := blake2b.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:8])
}

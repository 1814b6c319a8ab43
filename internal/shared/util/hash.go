package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashContact returns a stable, non-reversible key for a contact address so it can be
// logged and stored without the address itself.
func HashContact(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

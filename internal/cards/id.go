package cards

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/mythos/internal/domain"
)

// idLength is the number of hex characters kept from the SHA-256 digest.
const idLength = 16

// Normalize joins the card type and its source keys after cleaning each part.
// Parts are trimmed, lowercased and have their line endings unified.
func Normalize(t domain.CardType, parts ...string) string {
	clean := make([]string, 0, len(parts)+1)
	clean = append(clean, string(t))
	for _, p := range parts {
		p = strings.ToLower(p)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		clean = append(clean, p)
	}
	// A newline separator keeps ("ab", "c") and ("a", "bc") apart.
	return strings.Join(clean, "\n")
}

// ID derives a stable card id from its type and source keys, so re-minting
// the same content always yields the same id.
func ID(t domain.CardType, parts ...string) string {
	sum := sha256.Sum256([]byte(Normalize(t, parts...)))
	return fmt.Sprintf("%x", sum)[:idLength]
}

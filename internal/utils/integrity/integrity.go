// Package integrity provides content hashing and the statutory retention
// deadline calculation for stored invoice files.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// SHA256Hex returns the lowercase hex digest of b.
func SHA256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Verify reports whether b hashes to expectedHex. A mismatch signals silent
// corruption or tampering and must be treated as a hard integrity fault by
// callers, never as a soft warning.
func Verify(b []byte, expectedHex string) bool {
	return SHA256Hex(b) == expectedHex
}

// RetentionUntil computes the earliest date the invoice file may be deleted:
// the invoice date plus the configured horizon, falling back to now when the
// invoice date is unknown.
func RetentionUntil(invoiceDate *time.Time, now time.Time, years int) time.Time {
	base := now
	if invoiceDate != nil {
		base = *invoiceDate
	}
	return base.AddDate(years, 0, 0)
}

package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Identifiers combine wall-clock time with 8 bytes of crypto/rand entropy, so
// issuance never needs a shared counter and stays contention-free.

func NewUID(now time.Time, actorID, companyID int64) string {
	return fmt.Sprintf("UID-%s-%s-USR%d-CPY%d-%s",
		now.Format("20060102"), now.Format("150405"), actorID, companyID, randomHex(8))
}

func NewToken(now time.Time) string {
	return fmt.Sprintf("DOC-%s-%s-%s",
		now.Format("20060102"), now.Format("150405"), randomHex(8))
}

// ShortRef returns the last 8 characters, used for per-page watermark footers.
func ShortRef(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}

func RandomHex(size int) string {
	return randomHex(size)
}

func randomHex(size int) string {
	buf := make([]byte, size)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

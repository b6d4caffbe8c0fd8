package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashText returns a stable hex digest of item text, used to detect
// duplicates without comparing full contents.
func HashText(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

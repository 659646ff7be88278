package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// HashB calculates hash(b) and returns the resulting bytes.
func HashB(b []byte) []byte {
	h := sha3.Sum256(b)
	return h[:]
}

// EventHash derives a stable hex digest from the given parts, used to key
// audit records so replays of the same event are detectable.
func EventHash(parts ...string) string {
	h := sha3.New256()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

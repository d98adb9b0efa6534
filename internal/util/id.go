package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random hex identifier, safe for URLs and Redis keys.
func NewID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewSessionToken returns the opaque identifier for a session row: 32
// bytes of cryptographically secure randomness, hex encoded (64 chars).
func NewSessionToken() (string, error) {
	return randomHex(32)
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

package utils // package utils provides helpers for password hashing and session ids

import (
	"crypto/rand"  // secure random number generation
	"encoding/hex" // hex encoding of the random bytes
)

// sessionIDBytes is the amount of entropy behind every session id.  32
// bytes encode to 64 hex characters.
const sessionIDBytes = 32

// NewSessionID returns an opaque, unguessable session identifier.  The
// value is what the client carries in its session cookie, so it must come
// from a cryptographically secure source and never from a counter.
func NewSessionID() (string, error) {
	return randomHex(sessionIDBytes)
}

// randomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.  If the random number generator
// fails, an error is returned.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

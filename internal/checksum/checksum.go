// Package checksum computes the content digests used as document ETags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether ifMatch is empty or equals the digest of data.
// Surrounding quotes, as sent in HTTP If-Match headers, are ignored.
func Matches(data []byte, ifMatch string) bool {
	if ifMatch == "" || ifMatch == "*" {
		return true
	}
	if n := len(ifMatch); n >= 2 && ifMatch[0] == '"' && ifMatch[n-1] == '"' {
		ifMatch = ifMatch[1 : n-1]
	}
	return ifMatch == Sum(data)
}

package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// Prefix returns the first n characters of SHA256(input), or the full hash if
// n is larger. Used to correlate log lines without writing raw identifiers.
func Prefix(input string, n int) string {
	full := SHA256Hex(input)
	if n < 0 || n > len(full) {
		return full
	}
	return full[:n]
}

// Salted hashes input with a salt so prefixes cannot be matched across deployments.
func Salted(input, salt string) string {
	return SHA256Hex(salt + input)
}

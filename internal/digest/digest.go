// Package digest implements the stable content hash used throughout the
// synchronization tree: a node's info digest, children digest and combined
// digest are all instances of the same function applied to different
// canonical byte strings.
package digest

import (
	"crypto/md5"
	"encoding/hex"
)

// Sentinel is returned for empty or nil input. Its length (1) makes it
// trivially distinguishable from a real digest (32 hex characters).
const Sentinel = "0"

// Size is the length in bytes of a real digest's hex representation.
const Size = md5.Size * 2

// Sum returns the canonical digest of b: the default sentinel for empty or
// nil input, otherwise the lowercase hex MD5 of b.
//
// MD5 is used for speed and compatibility with the legacy clients this
// format originates from, not for any cryptographic property: the digest is
// not a MAC and callers must not rely on collision resistance against an
// adversarial payload.
func Sum(b []byte) string {
	if len(b) == 0 {
		return Sentinel
	}
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

// Valid reports whether h is a well-formed digest: either the sentinel or
// Size lowercase hex characters.
func Valid(h string) bool {
	if h == Sentinel {
		return true
	}
	if len(h) != Size {
		return false
	}
	for _, r := range h {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}

// Concat joins a sequence of digests into the combined byte string DIGEST
// consumes, in order. It performs no hashing itself — callers pass the
// result to Sum.
func Concat(parts ...string) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	buf := make([]byte, 0, n)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return buf
}

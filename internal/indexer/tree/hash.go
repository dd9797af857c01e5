package tree

import (
	"crypto/sha1"
	"encoding/hex"
)

// DigestLen is the number of hex digits in a key digest, and therefore the
// maximum descent depth of any tree.
const DigestLen = 2 * sha1.Size

// Digest returns the hex SHA-1 of the UTF-8 encoding of key. Successive
// digits of the digest address successive levels of the shard hierarchy, so
// the same key always descends the same path.
func Digest(key string) string {
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

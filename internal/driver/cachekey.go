package driver

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a SHA-256 value.
type Digest [32]byte

// String returns the hex form.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d is unset.
func (d Digest) IsZero() bool { return d == Digest{} }

// CacheKey: H(schema || path || content). Records carry their absolute path,
// so the same content under another path is a different entry.
func CacheKey(path string, content Digest) Digest {
	h := sha256.New()
	_, _ = h.Write([]byte{byte(diskCacheSchemaVersion >> 8), byte(diskCacheSchemaVersion)})
	_, _ = h.Write([]byte(path))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(content[:])
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

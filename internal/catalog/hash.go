package catalog

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// ContentHash is the hex BLAKE3-256 digest of data. It is the root of every
// processed-image cache key and the entity tag sent to clients.
func ContentHash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

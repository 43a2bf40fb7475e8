package skimmer

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// HashContent computes the xxHash of content and returns it as a hex string.
// Used to tag normalized documents on outcomes for change detection.
func HashContent(content string) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64String(content))
	return hex.EncodeToString(b[:])
}

package hashtable

import (
	"PagedDB/types"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// PageIDHasher hashes a page id from its little-endian encoding. This is the
// hasher the buffer pool's page table runs on.
func PageIDHasher(id types.PageID) uint64 {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(id))
	return xxhash.Sum64(buf[:])
}

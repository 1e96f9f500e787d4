package diskmanager

import (
	"os"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"
)

// ############################################# DISK MANAGER #############################################

// DiskManager owns the single backing file of the storage engine and performs
// all page-aligned I/O against it. Pages are fixed-size records at offset
// pageID * PageSize.
type DiskManager struct {
	file     *os.File
	filePath string
	pageSize int

	// blockCache keeps recently touched page images so repeated reads of the
	// same page skip the file. Writes go through the cache and the file, so
	// the cache never serves bytes older than the file's.
	blockCache *ristretto.Cache[int32, []byte]

	logger *zap.Logger
	mu     sync.RWMutex
}

const (
	// Sizing for the block cache: track ~10k keys, hold up to 256 pages.
	blockCacheCounters = 10_000
	blockCachedPages   = 256
)

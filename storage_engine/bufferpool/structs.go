package bufferpool

import (
	diskmanager "PagedDB/storage_engine/disk_manager"
	"PagedDB/storage_engine/hashtable"
	"PagedDB/storage_engine/page"
	"PagedDB/storage_engine/replacer"
	"PagedDB/types"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ############################################# BUFFER POOL #############################################

// BufferPool manages a fixed array of page frames backed by the disk manager.
// Residency is tracked in an extendible hash page table (PageID -> FrameID);
// frame reuse is decided by the free list first and the LRU-K replacer after.
type BufferPool struct {
	pages       []*page.Page
	freeList    []types.FrameID
	pageTable   *hashtable.ExtendibleHashTable[types.PageID, types.FrameID]
	replacer    *replacer.LRUKReplacer
	diskManager *diskmanager.DiskManager
	nextPageID  types.PageID
	logger      *zap.Logger
	mu          sync.Mutex
}

// BufferPoolStats is a point-in-time snapshot for monitoring and tests.
type BufferPoolStats struct {
	TotalPages  int
	PinnedPages int
	DirtyPages  int
	FreeFrames  int
	Capacity    int
}

var (
	// ErrNoFreeFrame means the free list is empty and every resident page is
	// pinned, so no frame can be reclaimed.
	ErrNoFreeFrame = errors.New("no free frame and no evictable page")

	// ErrPageNotFound means the requested page is not resident.
	ErrPageNotFound = errors.New("page not in buffer pool")
)

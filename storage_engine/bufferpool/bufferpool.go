package bufferpool

import (
	diskmanager "PagedDB/storage_engine/disk_manager"
	"PagedDB/storage_engine/hashtable"
	"PagedDB/storage_engine/page"
	"PagedDB/storage_engine/replacer"
	"PagedDB/types"
	"fmt"

	"go.uber.org/zap"
)

/*
This file is the main file of the buffer pool.

Frame lookup goes: page table hit -> free list -> replacer victim. A victim
holding a dirty page is written back through the disk manager before the
frame changes identity. Pinned pages are never victims: pinning a page marks
its frame non-evictable, and the last unpin hands it back to the replacer.

The page id counter lives here and is seeded from the file size, so reopening
a database file resumes allocation after the last existing page.

Lock order is pool mutex, then page latch. The replacer and page table are
leaf locks and are never held across another acquisition.
*/

// NewBufferPool creates a pool of poolSize frames over the disk manager.
// replacerK is the LRU-K history depth, bucketSize the page table's bucket
// capacity. A nil logger disables logging.
func NewBufferPool(poolSize, replacerK, bucketSize int, dm *diskmanager.DiskManager, logger *zap.Logger) (*BufferPool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	nextPageID, err := dm.NumPages()
	if err != nil {
		return nil, fmt.Errorf("failed to size db file: %w", err)
	}

	bp := &BufferPool{
		pages:       make([]*page.Page, poolSize),
		freeList:    make([]types.FrameID, poolSize),
		pageTable:   hashtable.NewExtendibleHashTable[types.PageID, types.FrameID](bucketSize, hashtable.PageIDHasher),
		replacer:    replacer.NewLRUKReplacer(poolSize, replacerK),
		diskManager: dm,
		nextPageID:  nextPageID,
		logger:      logger,
	}

	// Initially every frame is free.
	for i := 0; i < poolSize; i++ {
		bp.pages[i] = page.NewPage()
		bp.freeList[i] = types.FrameID(i)
	}

	return bp, nil
}

// NewPage allocates a fresh page id, places it in a frame and returns the
// page pinned once. Returns ErrNoFreeFrame when every frame is pinned.
func (bp *BufferPool) NewPage() (*page.Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, err := bp.acquireFrame()
	if err != nil {
		return nil, err
	}

	pageID := bp.nextPageID
	bp.nextPageID++

	pg := bp.pages[frameID]
	pg.WLatch()
	pg.ResetMemory()
	pg.SetPageID(pageID)
	pg.SetPinCount(1)
	pg.SetDirty(false)
	pg.WUnlatch()

	bp.registerFrame(pageID, frameID)
	bp.logger.Debug("new page", zap.Int32("pageID", int32(pageID)), zap.Int32("frameID", int32(frameID)))

	return pg, nil
}

// FetchPage returns the page pinned, reading it from disk when it is not
// resident. Returns ErrNoFreeFrame when no frame can be reclaimed for a miss.
func (bp *BufferPool) FetchPage(pageID types.PageID) (*page.Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if frameID, ok := bp.pageTable.Find(pageID); ok {
		bp.logger.Debug("fetch hit", zap.Int32("pageID", int32(pageID)))
		pg := bp.pages[frameID]
		pg.WLatch()
		pg.IncPinCount()
		pg.WUnlatch()
		bp.registerFrame(pageID, frameID)
		return pg, nil
	}

	bp.logger.Debug("fetch miss", zap.Int32("pageID", int32(pageID)))
	frameID, err := bp.acquireFrame()
	if err != nil {
		return nil, err
	}

	pg := bp.pages[frameID]
	pg.WLatch()
	pg.ResetMemory()
	if err := bp.diskManager.ReadPage(pageID, pg.GetData()); err != nil {
		pg.WUnlatch()
		// The frame was never handed out; put it back in front.
		bp.freeList = append([]types.FrameID{frameID}, bp.freeList...)
		return nil, fmt.Errorf("failed to read page %d: %w", pageID, err)
	}
	pg.SetPageID(pageID)
	pg.SetPinCount(1)
	pg.SetDirty(false)
	pg.WUnlatch()

	bp.registerFrame(pageID, frameID)
	return pg, nil
}

// UnpinPage drops one pin from the page, recording whether the caller dirtied
// it. Returns false when the page is not resident or already unpinned; a
// second unpin after the count reached zero changes nothing.
func (bp *BufferPool) UnpinPage(pageID types.PageID, isDirty bool) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.pageTable.Find(pageID)
	if !ok {
		return false
	}

	pg := bp.pages[frameID]
	pg.WLatch()
	defer pg.WUnlatch()

	if pg.GetPinCount() <= 0 {
		return false
	}

	if isDirty {
		pg.SetDirty(true)
	}

	pg.DecPinCount()
	if pg.GetPinCount() == 0 {
		bp.replacer.SetEvictable(frameID, true)
	}

	return true
}

// FlushPage writes the page to disk and clears its dirty flag, regardless of
// the pin count. Returns ErrPageNotFound when the page is not resident.
func (bp *BufferPool) FlushPage(pageID types.PageID) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.pageTable.Find(pageID)
	if !ok {
		return ErrPageNotFound
	}

	pg := bp.pages[frameID]
	pg.WLatch()
	defer pg.WUnlatch()

	return bp.flushLatched(pg)
}

// FlushAllPages writes every resident page to disk.
func (bp *BufferPool) FlushAllPages() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	bp.logger.Debug("flush all pages")
	for _, pg := range bp.pages {
		pg.WLatch()
		if pg.GetPageID() == types.InvalidPageID {
			pg.WUnlatch()
			continue
		}
		if err := bp.flushLatched(pg); err != nil {
			pg.WUnlatch()
			return err
		}
		pg.WUnlatch()
	}
	return nil
}

// DeletePage evicts the page from the pool and frees its frame. Returns true
// when the page is absent or successfully removed, false when it is pinned.
func (bp *BufferPool) DeletePage(pageID types.PageID) (bool, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.pageTable.Find(pageID)
	if !ok {
		return true, nil
	}

	pg := bp.pages[frameID]
	pg.WLatch()

	if pg.GetPinCount() > 0 {
		pg.WUnlatch()
		return false, nil
	}

	if pg.IsDirty() {
		if err := bp.flushLatched(pg); err != nil {
			pg.WUnlatch()
			return false, err
		}
	}

	pg.SetPageID(types.InvalidPageID)
	pg.SetDirty(false)
	pg.ResetMemory()
	pg.WUnlatch()

	bp.pageTable.Remove(pageID)
	if err := bp.replacer.Remove(frameID); err != nil {
		return false, fmt.Errorf("failed to drop frame %d from replacer: %w", frameID, err)
	}
	bp.freeList = append(bp.freeList, frameID)

	bp.logger.Debug("page deleted", zap.Int32("pageID", int32(pageID)))
	return true, nil
}

// acquireFrame returns a frame whose previous identity, if any, has been
// fully retired: page table entry removed and dirty contents written back.
// Assumes the pool mutex is held.
func (bp *BufferPool) acquireFrame() (types.FrameID, error) {
	if len(bp.freeList) > 0 {
		frameID := bp.freeList[0]
		bp.freeList = bp.freeList[1:]
		return frameID, nil
	}

	frameID, ok := bp.replacer.Evict()
	if !ok {
		return 0, ErrNoFreeFrame
	}

	pg := bp.pages[frameID]
	bp.pageTable.Remove(pg.GetPageID())

	pg.WLatch()
	defer pg.WUnlatch()
	bp.logger.Debug("evict", zap.Int32("pageID", int32(pg.GetPageID())), zap.Bool("dirty", pg.IsDirty()))
	if pg.IsDirty() {
		if err := bp.flushLatched(pg); err != nil {
			return 0, err
		}
	}
	pg.SetPageID(types.InvalidPageID)

	return frameID, nil
}

// registerFrame records residency and shields the frame from eviction while
// it is pinned. Assumes the pool mutex is held.
func (bp *BufferPool) registerFrame(pageID types.PageID, frameID types.FrameID) {
	bp.pageTable.Insert(pageID, frameID)
	bp.replacer.RecordAccess(frameID)
	bp.replacer.SetEvictable(frameID, false)
}

// flushLatched writes the page out and clears the dirty flag. The caller
// holds the page's write latch.
func (bp *BufferPool) flushLatched(pg *page.Page) error {
	if err := bp.diskManager.WritePage(pg.GetPageID(), pg.GetData()); err != nil {
		return fmt.Errorf("failed to flush page %d: %w", pg.GetPageID(), err)
	}
	pg.SetDirty(false)
	return nil
}

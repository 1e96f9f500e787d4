package diskmanager

import (
	"PagedDB/types"
	"fmt"
	"os"

	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"
)

/*
This is the main file for the disk manager.
It owns:
The file descriptor (os.File) of the single backing file
Reading/writing raw bytes at page-aligned offsets (ReadAt, WriteAt)
The ristretto block cache sitting in front of the file

The buffer pool calls down here on a cache miss or when a dirty page has to be
written back. The disk manager itself never allocates page ids; the buffer
pool keeps the counter and seeds it from NumPages so reopening a file resumes
allocation after the last existing page.
*/

// NewDiskManager opens or creates the backing file at filePath.
// A nil logger disables logging.
func NewDiskManager(filePath string, logger *zap.Logger) (*DiskManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open db file %s: %w", filePath, err)
	}

	cache, err := ristretto.NewCache(&ristretto.Config[int32, []byte]{
		NumCounters: blockCacheCounters,
		MaxCost:     blockCachedPages * types.PageSize,
		BufferItems: 64,
	})
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create block cache: %w", err)
	}

	return &DiskManager{
		file:       file,
		filePath:   filePath,
		pageSize:   types.PageSize,
		blockCache: cache,
		logger:     logger,
	}, nil
}

// ReadPage reads the page into buf, which must be PageSize bytes long.
// Reading a page id past the end of the file is an error.
func (dm *DiskManager) ReadPage(pageID types.PageID, buf []byte) error {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	if dm.file == nil {
		return fmt.Errorf("disk manager is closed")
	}
	if len(buf) != dm.pageSize {
		return fmt.Errorf("buffer size %d does not match page size %d", len(buf), dm.pageSize)
	}

	if cached, ok := dm.blockCache.Get(int32(pageID)); ok {
		dm.logger.Debug("block cache hit", zap.Int32("pageID", int32(pageID)))
		copy(buf, cached)
		return nil
	}

	offset := int64(pageID) * int64(dm.pageSize)
	n, err := dm.file.ReadAt(buf, offset)
	if err != nil {
		if n == 0 {
			return fmt.Errorf("failed to read page %d: %w", pageID, err)
		}
		// Partial read at the file tail: pad with zeros.
		for i := n; i < dm.pageSize; i++ {
			buf[i] = 0
		}
	}

	image := make([]byte, dm.pageSize)
	copy(image, buf)
	dm.blockCache.Set(int32(pageID), image, int64(dm.pageSize))

	return nil
}

// WritePage writes data to the page's offset, which must be PageSize bytes.
func (dm *DiskManager) WritePage(pageID types.PageID, data []byte) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.file == nil {
		return fmt.Errorf("disk manager is closed")
	}
	if len(data) != dm.pageSize {
		return fmt.Errorf("data size %d does not match page size %d", len(data), dm.pageSize)
	}

	offset := int64(pageID) * int64(dm.pageSize)
	if _, err := dm.file.WriteAt(data, offset); err != nil {
		return fmt.Errorf("failed to write page %d: %w", pageID, err)
	}

	// Drop the old image before re-admitting the new one; Del applies to the
	// cache store immediately, so a stale image queued behind it can never be
	// served after this write.
	dm.blockCache.Del(int32(pageID))
	image := make([]byte, dm.pageSize)
	copy(image, data)
	dm.blockCache.Set(int32(pageID), image, int64(dm.pageSize))
	// Drain the cache's admission buffer so no queued older image can be
	// served after this write returns.
	dm.blockCache.Wait()

	dm.logger.Debug("page written", zap.Int32("pageID", int32(pageID)))
	return nil
}

// NumPages reports how many full pages the backing file currently holds.
func (dm *DiskManager) NumPages() (types.PageID, error) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	if dm.file == nil {
		return 0, fmt.Errorf("disk manager is closed")
	}

	stat, err := dm.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat db file: %w", err)
	}
	return types.PageID(stat.Size() / int64(dm.pageSize)), nil
}

// Sync flushes all pending writes to stable storage.
func (dm *DiskManager) Sync() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.file == nil {
		return fmt.Errorf("disk manager is closed")
	}
	return dm.file.Sync()
}

// Close syncs and closes the backing file. Safe to call twice.
func (dm *DiskManager) Close() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.file == nil {
		return nil
	}

	dm.blockCache.Close()

	if err := dm.file.Sync(); err != nil {
		dm.file.Close()
		dm.file = nil
		return fmt.Errorf("failed to sync before close: %w", err)
	}

	err := dm.file.Close()
	dm.file = nil
	return err
}

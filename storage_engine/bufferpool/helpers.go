package bufferpool

import "PagedDB/types"

/*
This file holds helper functions for the buffer pool.
*/

// GetStats returns current buffer pool statistics.
func (bp *BufferPool) GetStats() BufferPoolStats {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	stats := BufferPoolStats{
		Capacity:   len(bp.pages),
		FreeFrames: len(bp.freeList),
	}

	for _, pg := range bp.pages {
		pg.RLatch()
		if pg.GetPageID() != types.InvalidPageID {
			stats.TotalPages++
			if pg.GetPinCount() > 0 {
				stats.PinnedPages++
			}
			if pg.IsDirty() {
				stats.DirtyPages++
			}
		}
		pg.RUnlatch()
	}

	return stats
}

// Size returns the number of resident pages.
func (bp *BufferPool) Size() int {
	return bp.GetStats().TotalPages
}

package bplus

import (
	"PagedDB/storage_engine/bufferpool"
	"PagedDB/types"
	"bytes"
	"fmt"

	"go.uber.org/zap"
)

// OpenBPlusTree opens the named index on top of the shared buffer pool.
//
// The tree's root page id lives in the header page (page 0 of the backing
// file), keyed by name; opening an unknown name registers an empty tree.
// leafMaxSize and internalMaxSize bound the number of keys per node.
//
// cmp orders keys; nil defaults to bytes.Compare. A nil logger disables
// logging.
func OpenBPlusTree(name string, pool *bufferpool.BufferPool, cmp func(a, b []byte) int, leafMaxSize, internalMaxSize int, logger *zap.Logger) (*BPlusTree, error) {
	if name == "" {
		return nil, fmt.Errorf("OpenBPlusTree: index name cannot be empty")
	}
	if leafMaxSize < 2 || internalMaxSize < 2 {
		return nil, fmt.Errorf("OpenBPlusTree: node sizes too small (leaf=%d internal=%d)", leafMaxSize, internalMaxSize)
	}
	if cmp == nil {
		cmp = bytes.Compare
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &BPlusTree{
		name:            name,
		root:            types.InvalidPageID,
		bufferPool:      pool,
		cmp:             cmp,
		leafMaxSize:     leafMaxSize,
		internalMaxSize: internalMaxSize,
		logger:          logger,
	}

	if err := t.loadRoot(); err != nil {
		return nil, fmt.Errorf("OpenBPlusTree: failed to load root for %q: %w", name, err)
	}

	t.logger.Debug("index opened", zap.String("name", name), zap.Int32("root", int32(t.root)))
	return t, nil
}

// IsEmpty reports whether the tree holds no entries.
func (t *BPlusTree) IsEmpty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root == types.InvalidPageID
}

// RootPageID exposes the current root page id (for inspection tools).
func (t *BPlusTree) RootPageID() types.PageID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

// Close flushes all pages of the shared pool so the index is durable.
// Call this on shutdown.
func (t *BPlusTree) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.bufferPool.FlushAllPages(); err != nil {
		return fmt.Errorf("Close: failed to flush pages: %w", err)
	}
	return nil
}

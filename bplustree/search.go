package bplus

import (
	"PagedDB/types"
	"fmt"
)

// Search looks up a key and returns its value. The second result reports
// whether the key exists.
func (t *BPlusTree) Search(key []byte) ([]byte, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.root == types.InvalidPageID {
		return nil, false, nil
	}

	leaf, err := t.FindLeaf(t.root, key)
	if err != nil {
		return nil, false, fmt.Errorf("Search: failed to find leaf: %w", err)
	}
	defer t.releaseNode(leaf, false)

	idx := binarySearch(leaf.keys, key, t.cmp)
	if idx == -1 {
		return nil, false, nil
	}
	return leaf.values[idx], true, nil
}

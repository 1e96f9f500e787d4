package bplus

import (
	"PagedDB/types"
	"fmt"
)

// Insert adds a key/value pair. The tree is a unique index: inserting an
// existing key returns false and leaves the tree unchanged.
func (t *BPlusTree) Insert(key []byte, value []byte) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// If tree is empty
	if t.root == types.InvalidPageID {
		root, err := t.newNode(NodeLeaf)
		if err != nil {
			return false, fmt.Errorf("Insert: failed to allocate root: %w", err)
		}
		root.keys = append(root.keys, key)
		root.values = append(root.values, value)
		if err := t.writeNode(root); err != nil {
			t.releaseNode(root, false)
			return false, err
		}
		t.root = root.pageID
		t.releaseNode(root, true)
		if err := t.saveRoot(); err != nil {
			return false, err
		}
		return true, nil
	}

	leaf, err := t.FindLeaf(t.root, key)
	if err != nil {
		return false, fmt.Errorf("Insert: failed to find leaf: %w", err)
	}

	if binarySearch(leaf.keys, key, t.cmp) != -1 {
		t.releaseNode(leaf, false)
		return false, nil
	}

	pos := lowerBound(leaf.keys, key, t.cmp)
	leaf.keys = insert(leaf.keys, pos, key)
	leaf.values = insert(leaf.values, pos, value)

	// Split on overflow; splitLeaf writes and releases the leaf itself.
	if leaf.size() > t.leafMaxSize {
		if err := t.splitLeaf(leaf); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := t.writeNode(leaf); err != nil {
		t.releaseNode(leaf, false)
		return false, err
	}
	t.releaseNode(leaf, true)
	return true, nil
}

package bplus

import (
	"PagedDB/types"
	"fmt"
)

// insertIntoParent inserts sepKey and rightID into the parent of leftID.
// If the parent overflows, it splits and propagates upward.
func (t *BPlusTree) insertIntoParent(parentID, leftID types.PageID, sepKey []byte, rightID types.PageID) error {
	parent, err := t.fetchNode(parentID)
	if err != nil {
		return fmt.Errorf("insertIntoParent: failed to fetch parent %d: %w", parentID, err)
	}

	// Find leftID in parent's children.
	idx := 0
	for idx < len(parent.children) && parent.children[idx] != leftID {
		idx++
	}
	if idx == len(parent.children) {
		t.releaseNode(parent, false)
		return fmt.Errorf("insertIntoParent: node %d is not a child of %d", leftID, parentID)
	}

	// Insert sepKey at idx, rightID at idx+1. The splitter already pointed
	// the right sibling at this parent.
	parent.keys = insert(parent.keys, idx, sepKey)
	parent.children = insert(parent.children, idx+1, rightID)

	// Split parent if overflow; splitInternal writes and releases it.
	if parent.size() > t.internalMaxSize {
		return t.splitInternal(parent)
	}

	if err := t.writeNode(parent); err != nil {
		t.releaseNode(parent, false)
		return err
	}
	t.releaseNode(parent, true)
	return nil
}

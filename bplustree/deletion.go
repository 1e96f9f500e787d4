package bplus

import (
	"PagedDB/types"
	"fmt"
)

// Delete removes key from the tree, rebalancing so that every non-root node
// keeps at least half its capacity. Deleting an absent key is a no-op.
func (t *BPlusTree) Delete(key []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.root == types.InvalidPageID {
		return nil
	}

	if _, err := t.deleteRecursive(t.root, key); err != nil {
		return err
	}

	return t.collapseRoot()
}

// deleteRecursive removes key from the subtree rooted at nodeID and reports
// whether the node dropped below its half-full floor.
func (t *BPlusTree) deleteRecursive(nodeID types.PageID, key []byte) (bool, error) {
	node, err := t.fetchNode(nodeID)
	if err != nil {
		return false, fmt.Errorf("deleteRecursive: failed to fetch node %d: %w", nodeID, err)
	}

	if node.nodeType == NodeLeaf {
		idx := binarySearch(node.keys, key, t.cmp)
		if idx == -1 {
			t.releaseNode(node, false)
			return false, nil
		}
		node.keys = remove(node.keys, idx)
		node.values = remove(node.values, idx)
		if err := t.writeNode(node); err != nil {
			t.releaseNode(node, false)
			return false, err
		}
		underflow := node.size() < t.minSize(NodeLeaf)
		t.releaseNode(node, true)
		return underflow, nil
	}

	i := upperBound(node.keys, key, t.cmp)
	childID := node.children[i]

	// The node stays pinned across the descent; a child underflow comes back
	// up here where the sibling and separator live.
	underflow, err := t.deleteRecursive(childID, key)
	if err != nil {
		t.releaseNode(node, false)
		return false, err
	}
	if !underflow {
		t.releaseNode(node, false)
		return false, nil
	}

	return t.rebalanceChild(node, i)
}

// rebalanceChild restores the half-full invariant on parent.children[i] by
// merging with or borrowing from a sibling. Releases parent on every path
// and reports whether parent itself underflowed.
func (t *BPlusTree) rebalanceChild(parent *Node, i int) (bool, error) {
	child, err := t.fetchNode(parent.children[i])
	if err != nil {
		t.releaseNode(parent, false)
		return false, err
	}

	// Prefer the right sibling; the last child falls back to its left one.
	sepIdx := i
	siblingIsRight := true
	if i == len(parent.children)-1 {
		sepIdx = i - 1
		siblingIsRight = false
	}
	var sibID types.PageID
	if siblingIsRight {
		sibID = parent.children[i+1]
	} else {
		sibID = parent.children[i-1]
	}

	sib, err := t.fetchNode(sibID)
	if err != nil {
		t.releaseNode(child, false)
		t.releaseNode(parent, false)
		return false, err
	}

	maxSize := t.maxSize(child.nodeType)
	minSize := t.minSize(child.nodeType)
	combined := child.size() + sib.size()

	// Merge when the pair fits in one node, or when the sibling has nothing
	// to spare; otherwise shift a single entry across the boundary.
	if combined <= maxSize-1 || sib.size() <= minSize {
		if siblingIsRight {
			err = t.mergeNodes(parent, sepIdx, child, sib)
		} else {
			err = t.mergeNodes(parent, sepIdx, sib, child)
		}
	} else {
		err = t.redistribute(parent, sepIdx, child, sib, siblingIsRight)
	}
	if err != nil {
		t.releaseNode(parent, false)
		return false, err
	}

	underflow := parent.size() < t.minSize(NodeInternal)
	t.releaseNode(parent, true)
	return underflow, nil
}

// mergeNodes folds right into left and drops the separator at sepIdx from
// parent. Both siblings are released and the vacated page is returned to the
// pool; parent stays pinned for the caller, already rewritten.
func (t *BPlusTree) mergeNodes(parent *Node, sepIdx int, left, right *Node) error {
	if left.nodeType == NodeLeaf {
		left.keys = append(left.keys, right.keys...)
		left.values = append(left.values, right.values...)
		left.next = right.next
	} else {
		// The separator comes down between the two halves.
		left.keys = append(left.keys, parent.keys[sepIdx])
		left.keys = append(left.keys, right.keys...)
		left.children = append(left.children, right.children...)
		for _, childID := range right.children {
			if err := t.setParent(childID, left.pageID); err != nil {
				t.releaseNode(left, false)
				t.releaseNode(right, false)
				return fmt.Errorf("mergeNodes: %w", err)
			}
		}
	}

	parent.keys = remove(parent.keys, sepIdx)
	parent.children = remove(parent.children, sepIdx+1)

	if err := t.writeNode(left); err != nil {
		t.releaseNode(left, false)
		t.releaseNode(right, false)
		return err
	}
	t.releaseNode(left, true)

	rightID := right.pageID
	t.releaseNode(right, false)
	if _, err := t.bufferPool.DeletePage(rightID); err != nil {
		return fmt.Errorf("mergeNodes: failed to drop page %d: %w", rightID, err)
	}

	return t.writeNode(parent)
}

// redistribute moves one entry from sib into child across the separator at
// sepIdx and refreshes the separator key. Both siblings are released; parent
// stays pinned for the caller, already rewritten.
func (t *BPlusTree) redistribute(parent *Node, sepIdx int, child, sib *Node, siblingIsRight bool) error {
	if child.nodeType == NodeLeaf {
		if siblingIsRight {
			child.keys = append(child.keys, sib.keys[0])
			child.values = append(child.values, sib.values[0])
			sib.keys = remove(sib.keys, 0)
			sib.values = remove(sib.values, 0)
			parent.keys[sepIdx] = sib.keys[0]
		} else {
			last := len(sib.keys) - 1
			child.keys = insert(child.keys, 0, sib.keys[last])
			child.values = insert(child.values, 0, sib.values[last])
			sib.keys = sib.keys[:last]
			sib.values = sib.values[:last]
			parent.keys[sepIdx] = child.keys[0]
		}
	} else {
		// Internal nodes rotate through the separator.
		if siblingIsRight {
			moved := sib.children[0]
			child.keys = append(child.keys, parent.keys[sepIdx])
			child.children = append(child.children, moved)
			parent.keys[sepIdx] = sib.keys[0]
			sib.keys = remove(sib.keys, 0)
			sib.children = remove(sib.children, 0)
			if err := t.setParent(moved, child.pageID); err != nil {
				t.releaseNode(child, false)
				t.releaseNode(sib, false)
				return fmt.Errorf("redistribute: %w", err)
			}
		} else {
			last := len(sib.keys) - 1
			moved := sib.children[len(sib.children)-1]
			child.keys = insert(child.keys, 0, parent.keys[sepIdx])
			child.children = insert(child.children, 0, moved)
			parent.keys[sepIdx] = sib.keys[last]
			sib.keys = sib.keys[:last]
			sib.children = sib.children[:len(sib.children)-1]
			if err := t.setParent(moved, child.pageID); err != nil {
				t.releaseNode(child, false)
				t.releaseNode(sib, false)
				return fmt.Errorf("redistribute: %w", err)
			}
		}
	}

	if err := t.writeNode(child); err != nil {
		t.releaseNode(child, false)
		t.releaseNode(sib, false)
		return err
	}
	if err := t.writeNode(sib); err != nil {
		t.releaseNode(child, true)
		t.releaseNode(sib, false)
		return err
	}
	t.releaseNode(child, true)
	t.releaseNode(sib, true)

	return t.writeNode(parent)
}

// collapseRoot shrinks the tree when deletes emptied the root: an internal
// root with a single child hands the root role to that child, and an empty
// leaf root leaves the tree empty.
func (t *BPlusTree) collapseRoot() error {
	for {
		root, err := t.fetchNode(t.root)
		if err != nil {
			return fmt.Errorf("collapseRoot: failed to fetch root %d: %w", t.root, err)
		}

		if root.nodeType == NodeInternal && root.size() == 0 && len(root.children) == 1 {
			childID := root.children[0]
			oldRootID := root.pageID
			t.releaseNode(root, false)

			if err := t.setParent(childID, types.InvalidPageID); err != nil {
				return fmt.Errorf("collapseRoot: %w", err)
			}
			t.root = childID
			if _, err := t.bufferPool.DeletePage(oldRootID); err != nil {
				return fmt.Errorf("collapseRoot: failed to drop page %d: %w", oldRootID, err)
			}
			if err := t.saveRoot(); err != nil {
				return err
			}
			continue
		}

		if root.nodeType == NodeLeaf && root.size() == 0 {
			oldRootID := root.pageID
			t.releaseNode(root, false)

			t.root = types.InvalidPageID
			if _, err := t.bufferPool.DeletePage(oldRootID); err != nil {
				return fmt.Errorf("collapseRoot: failed to drop page %d: %w", oldRootID, err)
			}
			return t.saveRoot()
		}

		t.releaseNode(root, false)
		return nil
	}
}

package bplus

import (
	"PagedDB/types"
	"fmt"
)

// FindLeaf descends from nodeID to the leaf whose key range owns key.
// The returned leaf is pinned — caller must releaseNode. Internal nodes along
// the path are released before their child is followed.
func (t *BPlusTree) FindLeaf(nodeID types.PageID, key []byte) (*Node, error) {
	for {
		node, err := t.fetchNode(nodeID)
		if err != nil {
			return nil, fmt.Errorf("FindLeaf: failed to fetch node %d: %w", nodeID, err)
		}

		if node.nodeType == NodeLeaf {
			return node, nil
		}

		if len(node.children) == 0 {
			t.releaseNode(node, false)
			return nil, fmt.Errorf("FindLeaf: internal node %d has no children", nodeID)
		}

		// The child at upperBound covers [rightmost key <= target, next key).
		i := upperBound(node.keys, key, t.cmp)
		nextID := node.children[i]
		t.releaseNode(node, false)
		nodeID = nextID
	}
}

// findLeftmostLeaf walks children[0] pointers down to the first leaf.
func (t *BPlusTree) findLeftmostLeaf(nodeID types.PageID) (*Node, error) {
	for {
		node, err := t.fetchNode(nodeID)
		if err != nil {
			return nil, fmt.Errorf("findLeftmostLeaf: failed to fetch node %d: %w", nodeID, err)
		}

		if node.nodeType == NodeLeaf {
			return node, nil
		}

		if len(node.children) == 0 {
			t.releaseNode(node, false)
			return nil, fmt.Errorf("findLeftmostLeaf: internal node %d has no children", nodeID)
		}

		nextID := node.children[0]
		t.releaseNode(node, false)
		nodeID = nextID
	}
}

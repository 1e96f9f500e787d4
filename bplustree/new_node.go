package bplus

import (
	"PagedDB/types"
	"fmt"
)

// newNode creates a new page in the buffer pool and returns an empty Node.
// The returned node is pinned — caller must releaseNode when done.
func (t *BPlusTree) newNode(nodeType NodeType) (*Node, error) {
	pg, err := t.bufferPool.NewPage()
	if err != nil {
		return nil, fmt.Errorf("newNode: failed to allocate page: %w", err)
	}

	n := &Node{
		pageID:   pg.GetPageID(),
		nodeType: nodeType,
		keys:     make([][]byte, 0),
		next:     types.InvalidPageID,
		parent:   types.InvalidPageID,
		pg:       pg,
	}
	if nodeType == NodeInternal {
		n.children = make([]types.PageID, 0)
	} else {
		n.values = make([][]byte, 0)
	}

	// Serialize a leaf's initial state immediately so the page is never
	// garbage on eviction. An empty internal node has no child yet and cannot
	// be encoded; its creator writes it once keys and children are in place.
	if nodeType == NodeLeaf {
		if err := t.writeNode(n); err != nil {
			_ = t.bufferPool.UnpinPage(n.pageID, false)
			return nil, fmt.Errorf("newNode: initial serialize failed: %w", err)
		}
	}

	return n, nil
}

// fetchNode loads a node through the buffer pool.
// The returned node is pinned — caller must releaseNode when done.
func (t *BPlusTree) fetchNode(pageID types.PageID) (*Node, error) {
	if pageID < 0 {
		return nil, fmt.Errorf("fetchNode: invalid pageID %d", pageID)
	}

	pg, err := t.bufferPool.FetchPage(pageID)
	if err != nil {
		return nil, fmt.Errorf("fetchNode: failed to fetch page %d: %w", pageID, err)
	}

	pg.RLatch()
	n, err := DeserializeNode(pg.GetData(), pageID)
	pg.RUnlatch()
	if err != nil {
		_ = t.bufferPool.UnpinPage(pageID, false)
		return nil, fmt.Errorf("fetchNode: deserialize failed for page %d: %w", pageID, err)
	}

	n.pg = pg
	return n, nil
}

// writeNode serializes the node into its pinned frame under the page latch
// and marks the in-memory view dirty. The pin is untouched; dirtiness reaches
// the pool when the node is released.
func (t *BPlusTree) writeNode(n *Node) error {
	n.pg.WLatch()
	defer n.pg.WUnlatch()

	if err := SerializeNode(n, n.pg.GetData()); err != nil {
		return fmt.Errorf("writeNode: serialize failed for page %d: %w", n.pageID, err)
	}
	n.isDirty = true
	return nil
}

// releaseNode drops the node's pin. Every fetchNode/newNode must be paired
// with exactly one releaseNode on every path.
func (t *BPlusTree) releaseNode(n *Node, dirty bool) {
	if n == nil {
		return
	}
	_ = t.bufferPool.UnpinPage(n.pageID, dirty || n.isDirty)
	n.pg = nil
}

// setParent rewrites one child's parent pointer.
func (t *BPlusTree) setParent(childID, parentID types.PageID) error {
	child, err := t.fetchNode(childID)
	if err != nil {
		return fmt.Errorf("setParent: failed to fetch child %d: %w", childID, err)
	}
	child.parent = parentID
	if err := t.writeNode(child); err != nil {
		t.releaseNode(child, false)
		return err
	}
	t.releaseNode(child, true)
	return nil
}

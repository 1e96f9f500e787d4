package bplus

import (
	"PagedDB/types"
	"fmt"
)

// Iterator provides a forward-only ordered scan over the leaves. It keeps a
// decoded snapshot of the current leaf, so no pin is held between calls; the
// end of the scan is reached when the current leaf id becomes invalid.
type Iterator struct {
	tree   *BPlusTree
	leafID types.PageID
	index  int
	keys   [][]byte
	values [][]byte
	next   types.PageID
}

// Begin positions an iterator on the first key of the tree.
func (t *BPlusTree) Begin() (*Iterator, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	it := &Iterator{tree: t, leafID: types.InvalidPageID}
	if t.root == types.InvalidPageID {
		return it, nil
	}

	leaf, err := t.findLeftmostLeaf(t.root)
	if err != nil {
		return nil, fmt.Errorf("Begin: %w", err)
	}
	it.loadFrom(leaf, 0)
	t.releaseNode(leaf, false)

	return it, it.skipExhausted()
}

// SeekGE positions an iterator at the first key >= target.
func (t *BPlusTree) SeekGE(target []byte) (*Iterator, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	it := &Iterator{tree: t, leafID: types.InvalidPageID}
	if t.root == types.InvalidPageID {
		return it, nil
	}

	leaf, err := t.FindLeaf(t.root, target)
	if err != nil {
		return nil, fmt.Errorf("SeekGE: %w", err)
	}
	it.loadFrom(leaf, lowerBound(leaf.keys, target, t.cmp))
	t.releaseNode(leaf, false)

	return it, it.skipExhausted()
}

// loadFrom snapshots a pinned leaf into the iterator.
func (it *Iterator) loadFrom(leaf *Node, index int) {
	it.leafID = leaf.pageID
	it.index = index
	it.keys = leaf.keys
	it.values = leaf.values
	it.next = leaf.next
}

// skipExhausted follows next pointers until the cursor rests on a real entry
// or the chain ends.
func (it *Iterator) skipExhausted() error {
	for it.leafID != types.InvalidPageID && it.index >= len(it.keys) {
		if it.next == types.InvalidPageID {
			it.leafID = types.InvalidPageID
			return nil
		}
		leaf, err := it.tree.fetchNode(it.next)
		if err != nil {
			it.leafID = types.InvalidPageID
			return fmt.Errorf("iterator: failed to fetch leaf %d: %w", it.next, err)
		}
		it.loadFrom(leaf, 0)
		it.tree.releaseNode(leaf, false)
	}
	return nil
}

// Valid reports whether the iterator points at an entry.
func (it *Iterator) Valid() bool {
	return it.leafID != types.InvalidPageID
}

// Next advances the iterator. Returns false when the scan is exhausted.
func (it *Iterator) Next() (bool, error) {
	if !it.Valid() {
		return false, nil
	}

	it.tree.mu.RLock()
	defer it.tree.mu.RUnlock()

	it.index++
	if err := it.skipExhausted(); err != nil {
		return false, err
	}
	return it.Valid(), nil
}

// Key returns the current key.
func (it *Iterator) Key() []byte {
	if !it.Valid() {
		return nil
	}
	return it.keys[it.index]
}

// Value returns the current value.
func (it *Iterator) Value() []byte {
	if !it.Valid() {
		return nil
	}
	return it.values[it.index]
}

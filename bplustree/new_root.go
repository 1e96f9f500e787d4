package bplus

import (
	"PagedDB/types"
	"fmt"

	"go.uber.org/zap"
)

// createNewRoot allocates a new root internal node with leftPageID and
// rightPageID as its two children, separated by promoteKey.
func (t *BPlusTree) createNewRoot(leftPageID types.PageID, promoteKey []byte, rightPageID types.PageID) error {
	root, err := t.newNode(NodeInternal)
	if err != nil {
		return fmt.Errorf("createNewRoot: failed to allocate new root: %w", err)
	}

	root.keys = append(root.keys, promoteKey)
	root.children = append(root.children, leftPageID, rightPageID)
	root.parent = types.InvalidPageID

	// Update parent pointers on both children.
	for _, childID := range []types.PageID{leftPageID, rightPageID} {
		if err := t.setParent(childID, root.pageID); err != nil {
			t.releaseNode(root, false)
			return fmt.Errorf("createNewRoot: %w", err)
		}
	}

	if err := t.writeNode(root); err != nil {
		t.releaseNode(root, false)
		return err
	}

	t.root = root.pageID
	t.releaseNode(root, true)
	t.logger.Debug("new root", zap.Int32("root", int32(t.root)))
	return t.saveRoot()
}

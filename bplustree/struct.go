// Structure of B+ Tree
/*
Tree
 ├── Internal Node (keys + child page ids)
 │      └── Child Internal Nodes ...
 │             └── Leaf Nodes (keys + values + next pointer)


- keys: sorted ascending order
- internal nodes: children length == len(keys)+1
- leaf nodes: values length == len(keys)
- leaf nodes linked with `next` for fast range scans
- all leaf nodes at same depth
- every non-root leaf keeps at least ceil(maxSize/2) keys; every non-root
  internal node keeps at least ceil((maxSize+1)/2) children

Nodes live in buffer pool pages; a Node is the decoded in-memory view of one
pinned page and must be released on every path out of an operation.
*/
package bplus

import (
	"PagedDB/storage_engine/bufferpool"
	"PagedDB/storage_engine/page"
	"PagedDB/types"
	"sync"

	"go.uber.org/zap"
)

type NodeType uint8

const (
	NodeInternal NodeType = iota
	NodeLeaf
)

const (
	MaxKeyLen = 256 // in bytes
	MaxValLen = 512 // in bytes

	// headerPageID is page 0 of the backing file: the directory of
	// indexName -> rootPageID records.
	headerPageID = types.PageID(0)
)

type Node struct {
	pageID   types.PageID
	nodeType NodeType
	keys     [][]byte       // keys in the node (sorted)
	children []types.PageID // only for internal node
	values   [][]byte       // only for leaf node
	next     types.PageID   // only for leaf node
	parent   types.PageID

	isDirty bool       // set when the in-memory view diverges from the frame
	pg      *page.Page // the pinned frame backing this node
}

func (n *Node) size() int {
	return len(n.keys)
}

type BPlusTree struct {
	name            string                 // key of this tree's record in the header page
	root            types.PageID           // page id of the root node
	bufferPool      *bufferpool.BufferPool // shared buffer pool
	cmp             func(a, b []byte) int  // key comparator (typically bytes.Compare)
	leafMaxSize     int
	internalMaxSize int
	logger          *zap.Logger
	mu              sync.RWMutex // protects tree structure during splits/merges
}

// maxSize returns the key capacity for the given node type.
func (t *BPlusTree) maxSize(nodeType NodeType) int {
	if nodeType == NodeLeaf {
		return t.leafMaxSize
	}
	return t.internalMaxSize
}

// minSize is the half-full floor, in keys, every non-root node has to keep:
// ceil(maxSize/2) keys for a leaf, and for an internal node half of its
// maxSize+1 child slots rounded up, which is maxSize/2 keys.
func (t *BPlusTree) minSize(nodeType NodeType) int {
	if nodeType == NodeLeaf {
		return (t.leafMaxSize + 1) / 2
	}
	return t.internalMaxSize / 2
}

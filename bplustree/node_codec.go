package bplus

import (
	"PagedDB/types"
	"encoding/binary"
	"fmt"
)

// SerializeNode writes a Node into a 4KB page buffer.
// Format (little-endian):
//   - Header (11 bytes): nodeType(1), numKeys(2), parent(4), next(4)
//   - Keys: for each, length(2) + bytes
//   - Internal nodes: numKeys+1 child page ids (4 bytes each)
//   - Leaf nodes: for each value, length(2) + bytes
const nodeHeaderSize = 1 + 2 + 4 + 4

func putPageID(buf []byte, id types.PageID) {
	binary.LittleEndian.PutUint32(buf, uint32(id))
}

func getPageID(buf []byte) types.PageID {
	return types.PageID(binary.LittleEndian.Uint32(buf))
}

func SerializeNode(n *Node, buf []byte) error {
	if len(buf) != types.PageSize {
		return fmt.Errorf("page size mismatch: expected %d, got %d", types.PageSize, len(buf))
	}
	if n.nodeType == NodeInternal && len(n.children) != len(n.keys)+1 {
		return fmt.Errorf("internal node %d has %d keys but %d children", n.pageID, len(n.keys), len(n.children))
	}
	if n.nodeType == NodeLeaf && len(n.values) != len(n.keys) {
		return fmt.Errorf("leaf node %d has %d keys but %d values", n.pageID, len(n.keys), len(n.values))
	}

	offset := 0
	buf[offset] = byte(n.nodeType)
	offset += 1
	binary.LittleEndian.PutUint16(buf[offset:], uint16(len(n.keys)))
	offset += 2
	putPageID(buf[offset:], n.parent)
	offset += 4
	putPageID(buf[offset:], n.next)
	offset += 4

	for i, key := range n.keys {
		if len(key) > MaxKeyLen {
			return fmt.Errorf("key %d too long: %d bytes (max: %d)", i, len(key), MaxKeyLen)
		}
		if offset+2+len(key) > types.PageSize {
			return fmt.Errorf("node %d does not fit in page while writing key %d", n.pageID, i)
		}
		binary.LittleEndian.PutUint16(buf[offset:], uint16(len(key)))
		offset += 2
		copy(buf[offset:], key)
		offset += len(key)
	}

	if n.nodeType == NodeInternal {
		for i, child := range n.children {
			if offset+4 > types.PageSize {
				return fmt.Errorf("node %d does not fit in page while writing child %d", n.pageID, i)
			}
			putPageID(buf[offset:], child)
			offset += 4
		}
	} else {
		for i, val := range n.values {
			if len(val) > MaxValLen {
				return fmt.Errorf("value %d too long: %d bytes (max: %d)", i, len(val), MaxValLen)
			}
			if offset+2+len(val) > types.PageSize {
				return fmt.Errorf("node %d does not fit in page while writing value %d", n.pageID, i)
			}
			binary.LittleEndian.PutUint16(buf[offset:], uint16(len(val)))
			offset += 2
			copy(buf[offset:], val)
			offset += len(val)
		}
	}

	return nil
}

// DeserializeNode decodes a Node from a 4KB page buffer. The caller owns the
// returned node; key and value slices are copied out of the page.
func DeserializeNode(buf []byte, pageID types.PageID) (*Node, error) {
	if len(buf) != types.PageSize {
		return nil, fmt.Errorf("page size mismatch: expected %d, got %d", types.PageSize, len(buf))
	}

	n := &Node{pageID: pageID}
	offset := 0

	n.nodeType = NodeType(buf[offset])
	offset += 1
	numKeys := int(binary.LittleEndian.Uint16(buf[offset:]))
	offset += 2
	n.parent = getPageID(buf[offset:])
	offset += 4
	n.next = getPageID(buf[offset:])
	offset += 4

	n.keys = make([][]byte, 0, numKeys)
	for i := 0; i < numKeys; i++ {
		if offset+2 > types.PageSize {
			return nil, fmt.Errorf("page overflow while reading key %d length", i)
		}
		keyLen := int(binary.LittleEndian.Uint16(buf[offset:]))
		offset += 2
		if offset+keyLen > types.PageSize {
			return nil, fmt.Errorf("page overflow while reading key %d data", i)
		}
		key := make([]byte, keyLen)
		copy(key, buf[offset:offset+keyLen])
		offset += keyLen
		n.keys = append(n.keys, key)
	}

	if n.nodeType == NodeInternal {
		n.children = make([]types.PageID, 0, numKeys+1)
		for i := 0; i <= numKeys; i++ {
			if offset+4 > types.PageSize {
				return nil, fmt.Errorf("page overflow while reading child %d", i)
			}
			n.children = append(n.children, getPageID(buf[offset:]))
			offset += 4
		}
	} else {
		n.values = make([][]byte, 0, numKeys)
		for i := 0; i < numKeys; i++ {
			if offset+2 > types.PageSize {
				return nil, fmt.Errorf("page overflow while reading value %d length", i)
			}
			valLen := int(binary.LittleEndian.Uint16(buf[offset:]))
			offset += 2
			if offset+valLen > types.PageSize {
				return nil, fmt.Errorf("page overflow while reading value %d data", i)
			}
			val := make([]byte, valLen)
			copy(val, buf[offset:offset+valLen])
			offset += valLen
			n.values = append(n.values, val)
		}
	}

	return n, nil
}

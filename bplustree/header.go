package bplus

import (
	"PagedDB/storage_engine/bufferpool"
	"PagedDB/types"
	"encoding/binary"
	"errors"
	"fmt"
)

/*
Page 0 of the backing file is the header page: a directory of
indexName -> rootPageID records, so several named trees can share one file
and one buffer pool.

Format (little-endian):
  - numRecords (2 bytes)
  - per record: nameLen (2 bytes), name bytes, rootPageID (4 bytes)

A zeroed page decodes as zero records, which is exactly what a freshly
created file should present.
*/

type headerRecord struct {
	name string
	root types.PageID
}

func decodeHeaderRecords(buf []byte) ([]headerRecord, error) {
	count := int(binary.LittleEndian.Uint16(buf))
	offset := 2

	records := make([]headerRecord, 0, count)
	for i := 0; i < count; i++ {
		if offset+2 > len(buf) {
			return nil, fmt.Errorf("header overflow while reading record %d name length", i)
		}
		nameLen := int(binary.LittleEndian.Uint16(buf[offset:]))
		offset += 2
		if offset+nameLen+4 > len(buf) {
			return nil, fmt.Errorf("header overflow while reading record %d", i)
		}
		name := string(buf[offset : offset+nameLen])
		offset += nameLen
		root := getPageID(buf[offset:])
		offset += 4
		records = append(records, headerRecord{name: name, root: root})
	}

	return records, nil
}

func encodeHeaderRecords(records []headerRecord, buf []byte) error {
	binary.LittleEndian.PutUint16(buf, uint16(len(records)))
	offset := 2

	for i, rec := range records {
		if offset+2+len(rec.name)+4 > len(buf) {
			return fmt.Errorf("header page full while writing record %d", i)
		}
		binary.LittleEndian.PutUint16(buf[offset:], uint16(len(rec.name)))
		offset += 2
		copy(buf[offset:], rec.name)
		offset += len(rec.name)
		putPageID(buf[offset:], rec.root)
		offset += 4
	}

	return nil
}

// loadRoot reads this tree's root page id out of the header page, creating
// the header page on a fresh file and registering the tree when it has no
// record yet.
func (t *BPlusTree) loadRoot() error {
	pg, err := t.bufferPool.FetchPage(headerPageID)
	if err != nil {
		if errors.Is(err, bufferpool.ErrNoFreeFrame) {
			return err
		}
		// Fresh file: page 0 does not exist yet.
		pg, err = t.bufferPool.NewPage()
		if err != nil {
			return fmt.Errorf("loadRoot: failed to create header page: %w", err)
		}
		if pg.GetPageID() != headerPageID {
			_ = t.bufferPool.UnpinPage(pg.GetPageID(), false)
			return fmt.Errorf("loadRoot: header page landed on page %d, pool already allocated pages", pg.GetPageID())
		}
	}

	pg.RLatch()
	records, err := decodeHeaderRecords(pg.GetData())
	pg.RUnlatch()
	if err != nil {
		_ = t.bufferPool.UnpinPage(headerPageID, false)
		return fmt.Errorf("loadRoot: corrupt header page: %w", err)
	}

	for _, rec := range records {
		if rec.name == t.name {
			t.root = rec.root
			_ = t.bufferPool.UnpinPage(headerPageID, false)
			return nil
		}
	}

	// First time this index is seen in the file.
	records = append(records, headerRecord{name: t.name, root: types.InvalidPageID})
	pg.WLatch()
	err = encodeHeaderRecords(records, pg.GetData())
	pg.WUnlatch()
	_ = t.bufferPool.UnpinPage(headerPageID, true)
	if err != nil {
		return fmt.Errorf("loadRoot: failed to register index %q: %w", t.name, err)
	}

	t.root = types.InvalidPageID
	return nil
}

// saveRoot rewrites this tree's header record. Called after every operation
// that changes the root.
func (t *BPlusTree) saveRoot() error {
	pg, err := t.bufferPool.FetchPage(headerPageID)
	if err != nil {
		return fmt.Errorf("saveRoot: failed to fetch header page: %w", err)
	}

	pg.RLatch()
	records, err := decodeHeaderRecords(pg.GetData())
	pg.RUnlatch()
	if err != nil {
		_ = t.bufferPool.UnpinPage(headerPageID, false)
		return fmt.Errorf("saveRoot: corrupt header page: %w", err)
	}

	found := false
	for i := range records {
		if records[i].name == t.name {
			records[i].root = t.root
			found = true
			break
		}
	}
	if !found {
		records = append(records, headerRecord{name: t.name, root: t.root})
	}

	pg.WLatch()
	err = encodeHeaderRecords(records, pg.GetData())
	pg.WUnlatch()
	_ = t.bufferPool.UnpinPage(headerPageID, true)
	if err != nil {
		return fmt.Errorf("saveRoot: failed to persist root ID: %w", err)
	}
	return nil
}

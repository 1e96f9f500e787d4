package main

import (
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"path/filepath"

	bplus "PagedDB/bplustree"
	"PagedDB/storage_engine/bufferpool"
	diskmanager "PagedDB/storage_engine/disk_manager"
)

// Small demo of the storage engine: disk manager -> buffer pool -> B+ tree.
// Inserts a handful of student records, runs point queries and a range scan.
func main() {
	dir, err := os.MkdirTemp("", "pageddb_demo")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	dbPath := filepath.Join(dir, "students.db")
	dm, err := diskmanager.NewDiskManager(dbPath, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer dm.Close()

	pool, err := bufferpool.NewBufferPool(16, 2, 4, dm, nil)
	if err != nil {
		log.Fatal(err)
	}

	tree, err := bplus.OpenBPlusTree("students_primary", pool, nil, 32, 32, nil)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("=== Student Database Test ===")

	students := []struct {
		id    uint32
		name  string
		grade string
	}{
		{1, "Alice Johnson", "A"},
		{2, "Bob Smith", "B"},
		{3, "Charlie Brown", "A"},
		{4, "Diana Prince", "C"},
		{5, "Eve Wilson", "B"},
	}

	for _, student := range students {
		record := student.name + "|" + student.grade
		ok, err := tree.Insert(encodeID(student.id), []byte(record))
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Inserted: %d -> %s (new=%v)\n", student.id, record, ok)
	}

	fmt.Println("\n=== Searching Students ===")
	for _, id := range []uint32{1, 3, 999} {
		value, found, err := tree.Search(encodeID(id))
		if err != nil {
			log.Fatal(err)
		}
		if found {
			fmt.Printf("Found %d: %s\n", id, string(value))
		} else {
			fmt.Printf("Student %d not found\n", id)
		}
	}

	fmt.Println("\n=== Range Scan ===")
	it, err := tree.Begin()
	if err != nil {
		log.Fatal(err)
	}
	for it.Valid() {
		fmt.Printf("%d -> %s\n", binary.BigEndian.Uint32(it.Key()), string(it.Value()))
		if _, err := it.Next(); err != nil {
			log.Fatal(err)
		}
	}

	if err := tree.Close(); err != nil {
		log.Fatal(err)
	}

	stats := pool.GetStats()
	fmt.Println("\n=== Database Stats ===")
	fmt.Printf("Root page: %d\n", tree.RootPageID())
	fmt.Printf("Buffer pool: %d/%d pages resident, %d pinned, %d dirty\n",
		stats.TotalPages, stats.Capacity, stats.PinnedPages, stats.DirtyPages)
}

// encodeID turns a student id into a big-endian key so bytes.Compare orders
// ids numerically.
func encodeID(id uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, id)
	return buf
}

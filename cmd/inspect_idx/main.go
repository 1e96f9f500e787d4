// Inspect the B+ tree indexes stored in a database file.
// Usage: go run ./cmd/inspect_idx <path-to-.db>
package main

import (
	"fmt"
	"os"

	bplus "PagedDB/bplustree"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <file.db>\n", os.Args[0])
		os.Exit(1)
	}
	path := os.Args[1]
	if err := bplus.InspectIndexFile(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

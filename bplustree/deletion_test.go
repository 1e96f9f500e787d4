package bplus

import (
	"bytes"
	"testing"
)

func mustDelete(t *testing.T, tree *BPlusTree, i int) {
	t.Helper()
	if err := tree.Delete(keyOf(i)); err != nil {
		t.Fatalf("Delete(%d) failed: %v", i, err)
	}
}

func TestDeleteAbsentKeyIsNoop(t *testing.T) {
	tree, pool := newTestTree(t, 3, 3)

	mustDelete(t, tree, 42) // empty tree

	mustInsert(t, tree, 1)
	mustDelete(t, tree, 42) // present tree, absent key

	if _, found, _ := tree.Search(keyOf(1)); !found {
		t.Error("existing key disappeared after deleting an absent one")
	}
	validateTree(t, tree, pool)
}

func TestDeleteRebalancesLeaves(t *testing.T) {
	tree, pool := newTestTree(t, 3, 3)

	// Builds a root with three leaves: [5,10] [15,20] [25,30].
	for _, i := range []int{10, 20, 5, 15, 25, 30} {
		mustInsert(t, tree, i)
	}
	validateTree(t, tree, pool)

	// Underflow on the rightmost leaf pulls in its left sibling.
	mustDelete(t, tree, 25)
	validateTree(t, tree, pool)

	mustDelete(t, tree, 20)
	validateTree(t, tree, pool)

	remaining := []int{5, 10, 15, 30}
	keys := scanKeys(t, tree)
	if len(keys) != len(remaining) {
		t.Fatalf("scan returned %d keys, want %d", len(keys), len(remaining))
	}
	for i, want := range remaining {
		if !bytes.Equal(keys[i], keyOf(want)) {
			t.Errorf("scan position %d = %v, want %d", i, keys[i], want)
		}
	}
	for _, gone := range []int{20, 25} {
		if _, found, _ := tree.Search(keyOf(gone)); found {
			t.Errorf("deleted key %d still found", gone)
		}
	}
}

func TestDeleteCollapsesRoot(t *testing.T) {
	tree, pool := newTestTree(t, 3, 3)

	for i := 1; i <= 10; i++ {
		mustInsert(t, tree, i)
	}

	root, err := tree.fetchNode(tree.root)
	if err != nil {
		t.Fatalf("fetch root: %v", err)
	}
	rootWasLeaf := root.nodeType == NodeLeaf
	tree.releaseNode(root, false)
	if rootWasLeaf {
		t.Fatal("ten inserts should have split past a leaf root")
	}

	// Shrink the key set until the whole tree fits one leaf again.
	for i := 4; i <= 10; i++ {
		mustDelete(t, tree, i)
		validateTree(t, tree, pool)
	}

	root, err = tree.fetchNode(tree.root)
	if err != nil {
		t.Fatalf("fetch root after deletes: %v", err)
	}
	if root.nodeType != NodeLeaf {
		t.Errorf("root should have collapsed back to a leaf, still internal with %d keys", root.size())
	}
	tree.releaseNode(root, false)

	keys := scanKeys(t, tree)
	if len(keys) != 3 {
		t.Fatalf("scan returned %d keys, want 3", len(keys))
	}
	for i, key := range keys {
		if !bytes.Equal(key, keyOf(i+1)) {
			t.Errorf("scan position %d = %v, want %d", i, key, i+1)
		}
	}
}

func TestDeleteEverything(t *testing.T) {
	tree, pool := newTestTree(t, 3, 3)

	for i := 1; i <= 30; i++ {
		mustInsert(t, tree, i)
	}

	// Remove in an order that exercises both siblings' rebalance paths.
	for i := 0; i < 30; i++ {
		mustDelete(t, tree, (i*7)%30+1)
		validateTree(t, tree, pool)
	}

	if !tree.IsEmpty() {
		t.Error("tree should be empty after deleting every key")
	}
	if keys := scanKeys(t, tree); len(keys) != 0 {
		t.Errorf("scan of empty tree returned %d keys", len(keys))
	}

	// The empty tree accepts inserts again.
	mustInsert(t, tree, 99)
	if _, found, _ := tree.Search(keyOf(99)); !found {
		t.Error("insert after emptying the tree not found")
	}
	validateTree(t, tree, pool)
}

func TestDeleteInterleavedWithInserts(t *testing.T) {
	tree, pool := newTestTree(t, 4, 4)

	live := make(map[int]bool)
	for i := 0; i < 120; i++ {
		k := (i*53+7)%120 + 1
		mustInsert(t, tree, k)
		live[k] = true
		if i%3 == 2 {
			victim := (i*31+5)%120 + 1
			mustDelete(t, tree, victim)
			delete(live, victim)
		}
	}
	validateTree(t, tree, pool)

	keys := scanKeys(t, tree)
	if len(keys) != len(live) {
		t.Fatalf("scan returned %d keys, want %d", len(keys), len(live))
	}
	for i := 1; i < len(keys); i++ {
		if bytes.Compare(keys[i-1], keys[i]) >= 0 {
			t.Fatalf("scan out of order at position %d", i)
		}
	}
	for k := range live {
		if _, found, _ := tree.Search(keyOf(k)); !found {
			t.Errorf("live key %d missing", k)
		}
	}
}

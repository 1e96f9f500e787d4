package bplus

import (
	"bytes"
	"testing"
)

func TestIteratorFullScan(t *testing.T) {
	tree, pool := newTestTree(t, 3, 3)

	// Keys 1..10 inserted in shuffled order.
	for _, i := range []int{7, 3, 10, 1, 8, 5, 2, 9, 6, 4} {
		mustInsert(t, tree, i)
	}

	it, err := tree.Begin()
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	want := 1
	for it.Valid() {
		if !bytes.Equal(it.Key(), keyOf(want)) {
			t.Fatalf("iterator at %v, want %d", it.Key(), want)
		}
		if !bytes.Equal(it.Value(), valOf(want)) {
			t.Fatalf("iterator value %q, want %q", it.Value(), valOf(want))
		}
		want++
		if _, err := it.Next(); err != nil {
			t.Fatalf("Next failed: %v", err)
		}
	}
	if want != 11 {
		t.Errorf("iterator stopped after %d keys, want 10", want-1)
	}

	validateTree(t, tree, pool)
}

func TestIteratorEmptyTree(t *testing.T) {
	tree, pool := newTestTree(t, 3, 3)

	it, err := tree.Begin()
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if it.Valid() {
		t.Error("iterator over an empty tree should start exhausted")
	}
	if it.Key() != nil || it.Value() != nil {
		t.Error("exhausted iterator must return nil key/value")
	}
	if ok, err := it.Next(); ok || err != nil {
		t.Errorf("Next on exhausted iterator: ok=%v err=%v", ok, err)
	}

	validateTree(t, tree, pool)
}

func TestIteratorSeekGE(t *testing.T) {
	tree, pool := newTestTree(t, 3, 3)

	// Even keys only: 2, 4, ..., 20.
	for i := 1; i <= 10; i++ {
		mustInsert(t, tree, i*2)
	}

	// Exact hit.
	it, err := tree.SeekGE(keyOf(8))
	if err != nil {
		t.Fatalf("SeekGE(8) failed: %v", err)
	}
	if !it.Valid() || !bytes.Equal(it.Key(), keyOf(8)) {
		t.Fatalf("SeekGE(8) landed on %v", it.Key())
	}

	// Between keys: 9 rounds up to 10.
	it, err = tree.SeekGE(keyOf(9))
	if err != nil {
		t.Fatalf("SeekGE(9) failed: %v", err)
	}
	if !it.Valid() || !bytes.Equal(it.Key(), keyOf(10)) {
		t.Fatalf("SeekGE(9) landed on %v, want 10", it.Key())
	}

	// Scan the tail from the seek position.
	want := 10
	for it.Valid() {
		if !bytes.Equal(it.Key(), keyOf(want)) {
			t.Fatalf("tail scan at %v, want %d", it.Key(), want)
		}
		want += 2
		if _, err := it.Next(); err != nil {
			t.Fatalf("Next failed: %v", err)
		}
	}
	if want != 22 {
		t.Errorf("tail scan stopped at %d", want)
	}

	// Past the last key.
	it, err = tree.SeekGE(keyOf(21))
	if err != nil {
		t.Fatalf("SeekGE(21) failed: %v", err)
	}
	if it.Valid() {
		t.Errorf("SeekGE past the maximum should be exhausted, got %v", it.Key())
	}

	validateTree(t, tree, pool)
}

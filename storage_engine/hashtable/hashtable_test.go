package hashtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// identity hasher pins the exact bit patterns the split logic sees.
func identity(k int) uint64 {
	return uint64(k)
}

// checkDirectoryInvariant verifies the structural rules the directory has to
// keep after every operation: a bucket at local depth d is shared by exactly
// 2^(globalDepth-d) slots forming an arithmetic progression of stride 2^d.
func checkDirectoryInvariant[K comparable, V any](t *testing.T, table *ExtendibleHashTable[K, V]) {
	t.Helper()

	table.mu.Lock()
	defer table.mu.Unlock()

	assert.Equal(t, 1<<table.globalDepth, len(table.dir), "directory size")

	slots := make(map[*bucket[K, V]][]int)
	for i, b := range table.dir {
		assert.NotNil(t, b, "slot %d empty", i)
		assert.LessOrEqual(t, b.depth, table.globalDepth, "local depth exceeds global")
		assert.LessOrEqual(t, len(b.items), b.capacity, "bucket over capacity")
		slots[b] = append(slots[b], i)
	}

	for b, refs := range slots {
		expected := 1 << (table.globalDepth - b.depth)
		assert.Equal(t, expected, len(refs), "bucket at depth %d referenced by %v", b.depth, refs)

		stride := 1 << b.depth
		for j := 1; j < len(refs); j++ {
			assert.Equal(t, refs[0]+j*stride, refs[j], "slot progression for depth %d", b.depth)
		}

		// Every entry must hash to the bucket's slot pattern.
		low := uint64(refs[0]) & (uint64(stride) - 1)
		for _, item := range b.items {
			assert.Equal(t, low, table.hash(item.key)&(uint64(stride)-1), "misplaced key %v", item.key)
		}
	}
}

func TestHashTableCollidingSplitRecurses(t *testing.T) {
	table := NewExtendibleHashTable[int, string](2, identity)

	assert.Equal(t, 1, table.GetGlobalDepth())
	assert.Equal(t, 2, table.GetNumBuckets())

	// 4, 12 and 16 collide on the low bit (all even). The third insert
	// doubles the directory and keeps splitting until bit 2 separates them.
	table.Insert(4, "a")
	table.Insert(12, "b")
	table.Insert(16, "c")

	assert.GreaterOrEqual(t, table.GetGlobalDepth(), 2)
	checkDirectoryInvariant(t, table)

	for _, tc := range []struct {
		key  int
		want string
	}{{4, "a"}, {12, "b"}, {16, "c"}} {
		got, ok := table.Find(tc.key)
		assert.True(t, ok, "key %d lost after splits", tc.key)
		assert.Equal(t, tc.want, got)
	}
}

func TestHashTableLastWriteWins(t *testing.T) {
	table := NewExtendibleHashTable[int, string](2, identity)

	table.Insert(7, "old")
	table.Insert(7, "new")

	got, ok := table.Find(7)
	assert.True(t, ok)
	assert.Equal(t, "new", got)
	assert.Equal(t, 1, table.GetGlobalDepth(), "update must not split")
}

func TestHashTableRemove(t *testing.T) {
	table := NewExtendibleHashTable[int, string](2, identity)

	table.Insert(1, "a")
	table.Insert(2, "b")

	assert.True(t, table.Remove(1))
	assert.False(t, table.Remove(1))
	assert.False(t, table.Remove(42))

	_, ok := table.Find(1)
	assert.False(t, ok)
	got, ok := table.Find(2)
	assert.True(t, ok)
	assert.Equal(t, "b", got)
}

// TestHashTableAgainstReferenceMap drives a mixed workload and checks the
// table agrees with a plain map after every operation, with the directory
// invariant intact throughout.
func TestHashTableAgainstReferenceMap(t *testing.T) {
	table := NewExtendibleHashTable[int, int](3, identity)
	reference := make(map[int]int)

	// A fixed pseudo-random walk: inserts dominate, sprinkled with updates
	// and removes.
	key := 17
	for step := 0; step < 400; step++ {
		key = (key*31 + 7) % 257
		switch step % 5 {
		case 0, 1, 2:
			table.Insert(key, step)
			reference[key] = step
		case 3:
			table.Insert(key, step*2)
			reference[key] = step * 2
		case 4:
			_, existed := reference[key]
			assert.Equal(t, existed, table.Remove(key))
			delete(reference, key)
		}

		if step%40 == 0 {
			checkDirectoryInvariant(t, table)
		}
	}

	checkDirectoryInvariant(t, table)

	for k, v := range reference {
		got, ok := table.Find(k)
		assert.True(t, ok, "key %d missing", k)
		assert.Equal(t, v, got, "key %d", k)
	}

	// And nothing extra: a key that was never inserted is absent.
	_, ok := table.Find(-1)
	assert.False(t, ok)
}

func TestHashTableGrowsUnderLoad(t *testing.T) {
	table := NewExtendibleHashTable[int, int](2, identity)

	for i := 0; i < 64; i++ {
		table.Insert(i, i*10)
	}

	assert.GreaterOrEqual(t, table.GetGlobalDepth(), 4)
	assert.GreaterOrEqual(t, table.GetNumBuckets(), 16)
	checkDirectoryInvariant(t, table)

	for i := 0; i < 64; i++ {
		got, ok := table.Find(i)
		assert.True(t, ok)
		assert.Equal(t, i*10, got)
	}
}

package diskmanager

import (
	"PagedDB/types"
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestDiskManager(t *testing.T) (*DiskManager, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	dm, err := NewDiskManager(dbPath, nil)
	assert.NoError(t, err, "create DiskManager")
	t.Cleanup(func() { dm.Close() })
	return dm, dbPath
}

func TestDiskManagerWriteReadRoundTrip(t *testing.T) {
	dm, _ := newTestDiskManager(t)

	data := make([]byte, types.PageSize)
	copy(data, []byte("page three"))
	assert.NoError(t, dm.WritePage(3, data))

	buf := make([]byte, types.PageSize)
	assert.NoError(t, dm.ReadPage(3, buf))
	assert.True(t, bytes.Equal(data, buf))
}

func TestDiskManagerReadPastEOF(t *testing.T) {
	dm, _ := newTestDiskManager(t)

	buf := make([]byte, types.PageSize)
	assert.Error(t, dm.ReadPage(7, buf), "reading an unwritten page fails")
}

func TestDiskManagerBufferSizeChecked(t *testing.T) {
	dm, _ := newTestDiskManager(t)

	assert.Error(t, dm.ReadPage(0, make([]byte, 100)))
	assert.Error(t, dm.WritePage(0, make([]byte, 100)))
}

func TestDiskManagerNumPages(t *testing.T) {
	dm, _ := newTestDiskManager(t)

	n, err := dm.NumPages()
	assert.NoError(t, err)
	assert.Equal(t, types.PageID(0), n)

	data := make([]byte, types.PageSize)
	assert.NoError(t, dm.WritePage(0, data))
	assert.NoError(t, dm.WritePage(1, data))

	n, err = dm.NumPages()
	assert.NoError(t, err)
	assert.Equal(t, types.PageID(2), n)
}

func TestDiskManagerReopen(t *testing.T) {
	dm, dbPath := newTestDiskManager(t)

	data := make([]byte, types.PageSize)
	copy(data, []byte("survives reopen"))
	assert.NoError(t, dm.WritePage(0, data))
	assert.NoError(t, dm.Close())
	assert.NoError(t, dm.Close(), "double close is safe")

	again, err := NewDiskManager(dbPath, nil)
	assert.NoError(t, err)
	defer again.Close()

	n, err := again.NumPages()
	assert.NoError(t, err)
	assert.Equal(t, types.PageID(1), n)

	buf := make([]byte, types.PageSize)
	assert.NoError(t, again.ReadPage(0, buf))
	assert.Equal(t, []byte("survives reopen"), buf[:15])
}

func TestDiskManagerCacheStaysCoherent(t *testing.T) {
	dm, _ := newTestDiskManager(t)

	data := make([]byte, types.PageSize)
	copy(data, []byte("v1"))
	assert.NoError(t, dm.WritePage(5, data))

	buf := make([]byte, types.PageSize)
	assert.NoError(t, dm.ReadPage(5, buf)) // warms the block cache

	// Overwrite and read again: the cache must serve the new bytes.
	copy(data, []byte("v2"))
	assert.NoError(t, dm.WritePage(5, data))
	assert.NoError(t, dm.ReadPage(5, buf))
	assert.Equal(t, []byte("v2"), buf[:2])
}

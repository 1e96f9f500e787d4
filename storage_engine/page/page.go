package page

import (
	"PagedDB/types"
	"sync"
)

/*
A Page is one fixed-size frame of the buffer pool. The pool owns the backing
array; callers only ever borrow a *Page and must hold a pin while they use it.

Two separate locks are in play:
  - the buffer pool's own mutex, which serializes frame allocation and the
    id/pin/dirty bookkeeping
  - the per-page reader/writer latch below, which guards the payload bytes

The latch is exposed through RLatch/WLatch passthroughs so callers never touch
the mutex directly.
*/

type Page struct {
	id       types.PageID
	pinCount int32
	isDirty  bool
	data     [types.PageSize]byte
	mu       sync.RWMutex
}

// NewPage returns a frame that holds no page yet.
func NewPage() *Page {
	return &Page{id: types.InvalidPageID}
}

// GetData returns the page payload. Only valid while the caller holds a pin,
// and reads/writes of the bytes must happen under the page latch.
func (p *Page) GetData() []byte {
	return p.data[:]
}

func (p *Page) GetPageID() types.PageID {
	return p.id
}

func (p *Page) GetPinCount() int32 {
	return p.pinCount
}

func (p *Page) IsDirty() bool {
	return p.isDirty
}

// ResetMemory zeroes the payload. Called when the frame's identity changes.
func (p *Page) ResetMemory() {
	for i := range p.data {
		p.data[i] = 0
	}
}

// Bookkeeping mutators below are for the buffer pool, called with the page
// write-latched.

func (p *Page) SetPageID(id types.PageID) {
	p.id = id
}

func (p *Page) SetDirty(dirty bool) {
	p.isDirty = dirty
}

func (p *Page) SetPinCount(count int32) {
	p.pinCount = count
}

func (p *Page) IncPinCount() {
	p.pinCount++
}

func (p *Page) DecPinCount() {
	p.pinCount--
}

func (p *Page) RLatch() {
	p.mu.RLock()
}

func (p *Page) RUnlatch() {
	p.mu.RUnlock()
}

func (p *Page) WLatch() {
	p.mu.Lock()
}

func (p *Page) WUnlatch() {
	p.mu.Unlock()
}

package replacer

import (
	"PagedDB/types"
	"time"
)

// NewLRUKReplacer creates a replacer for numFrames frames with a history
// depth of k accesses per frame.
func NewLRUKReplacer(numFrames, k int) *LRUKReplacer {
	return &LRUKReplacer{
		numFrames: numFrames,
		k:         k,
		frames:    make(map[types.FrameID]*frameHistory, numFrames),
		clock:     time.Now().UnixNano(),
	}
}

// now returns the next tick of the replacer's clock. Wall time only seeds the
// clock; every access advances it by one so timestamps never repeat.
func (r *LRUKReplacer) now() int64 {
	r.clock++
	return r.clock
}

func (r *LRUKReplacer) checkFrame(frameID types.FrameID) error {
	if frameID < 0 || int(frameID) >= r.numFrames {
		return ErrInvalidFrame
	}
	return nil
}

// RecordAccess appends the current timestamp to the frame's history,
// creating the entry if the frame has not been seen before. New frames start
// non-evictable.
func (r *LRUKReplacer) RecordAccess(frameID types.FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkFrame(frameID); err != nil {
		return err
	}

	entry, ok := r.frames[frameID]
	if !ok {
		entry = &frameHistory{frameID: frameID}
		r.frames[frameID] = entry
	}

	entry.history = append(entry.history, r.now())
	if len(entry.history) > r.k {
		entry.history = entry.history[1:]
	}
	return nil
}

// SetEvictable toggles whether the frame may be chosen by Evict.
// Unknown frames are ignored.
func (r *LRUKReplacer) SetEvictable(frameID types.FrameID, evictable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkFrame(frameID); err != nil {
		return err
	}

	if entry, ok := r.frames[frameID]; ok {
		entry.evictable = evictable
	}
	return nil
}

// Evict removes and returns the evictable frame with the largest backward
// k-distance, clearing its history. Returns false when no frame is evictable.
func (r *LRUKReplacer) Evict() (types.FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var victim *frameHistory
	for _, entry := range r.frames {
		if !entry.evictable {
			continue
		}
		if victim == nil || beats(entry, victim, r.k) {
			victim = entry
		}
	}

	if victim == nil {
		return 0, false
	}

	delete(r.frames, victim.frameID)
	return victim.frameID, true
}

// beats reports whether a is a better eviction victim than b.
// Frames with fewer than k accesses (infinite backward distance) win over
// frames with a full history; ties fall back to the earliest retained
// timestamp, which is the first access for short histories and the k-th most
// recent access for full ones.
func beats(a, b *frameHistory, k int) bool {
	aInf := len(a.history) < k
	bInf := len(b.history) < k
	if aInf != bInf {
		return aInf
	}
	return a.history[0] < b.history[0]
}

// Remove drops a specific frame from the replacer. Removing an absent frame
// is a no-op; removing a present non-evictable frame is a protocol error.
func (r *LRUKReplacer) Remove(frameID types.FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkFrame(frameID); err != nil {
		return err
	}

	entry, ok := r.frames[frameID]
	if !ok {
		return nil
	}
	if !entry.evictable {
		return ErrNotEvictable
	}

	delete(r.frames, frameID)
	return nil
}

// Size returns the number of currently evictable frames.
func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := 0
	for _, entry := range r.frames {
		if entry.evictable {
			size++
		}
	}
	return size
}

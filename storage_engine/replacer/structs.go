package replacer

import (
	"PagedDB/types"
	"errors"
	"sync"
)

// ############################################# LRU-K REPLACER #############################################

/*
The replacer decides which buffer pool frame to evict. It tracks, per frame,
the timestamps of the most recent k accesses and evicts the frame with the
largest backward k-distance (now - timestamp of the k-th most recent access).
A frame with fewer than k recorded accesses has +inf backward k-distance;
among those the one with the earliest recorded access goes first.

Only frames marked evictable are candidates. The buffer pool pins a frame by
setting it non-evictable and releases it on the last unpin.
*/

var (
	ErrInvalidFrame = errors.New("frame id out of range")
	ErrNotEvictable = errors.New("frame is not evictable")
)

// frameHistory holds the bounded access history of one frame.
// history keeps at most k timestamps, oldest first, so history[0] is the
// k-th most recent access once the frame has k of them.
type frameHistory struct {
	frameID   types.FrameID
	evictable bool
	history   []int64
}

type LRUKReplacer struct {
	numFrames int
	k         int
	frames    map[types.FrameID]*frameHistory
	clock     int64 // strictly increasing, nanosecond scale
	mu        sync.Mutex
}

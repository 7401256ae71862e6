package store

import "sync/atomic"

// cursors tracks the write and sync positions of a store.
//
// The write cursor is advanced by reserve with a compare-and-swap, so
// concurrent writers each receive a disjoint byte range. The sync cursor is
// only touched by the flush owner, which holds the store's exclusive lock.
type cursors struct {
	write    atomic.Uint64
	sync     uint64
	capacity uint64
}

func newCursors(capacity, write, sync uint64) *cursors {
	c := &cursors{capacity: capacity, sync: sync}
	c.write.Store(write)
	return c
}

// reserve claims n bytes at the current write cursor and returns the start
// of the claimed range. When the range would pass capacity nothing is
// claimed and ok is false; the returned offset is then the cursor observed.
func (c *cursors) reserve(n uint64) (offset uint64, ok bool) {
	for {
		cur := c.write.Load()
		if n > c.capacity-cur {
			return cur, false
		}
		if c.write.CompareAndSwap(cur, cur+n) {
			return cur, true
		}
	}
}

// current returns the write cursor.
func (c *cursors) current() uint64 {
	return c.write.Load()
}

package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorsReserve(t *testing.T) {
	c := newCursors(64, HeaderSize, HeaderSize)

	off, ok := c.reserve(20)
	assert.True(t, ok)
	assert.Equal(t, uint64(16), off)

	off, ok = c.reserve(28)
	assert.True(t, ok)
	assert.Equal(t, uint64(36), off)
	assert.Equal(t, uint64(64), c.current())

	off, ok = c.reserve(1)
	assert.False(t, ok)
	assert.Equal(t, uint64(64), off)
	assert.Equal(t, uint64(64), c.current())
}

func TestCursorsReserveRejectsHugeRequest(t *testing.T) {
	c := newCursors(64, 60, HeaderSize)

	_, ok := c.reserve(^uint64(0))
	assert.False(t, ok)
	assert.Equal(t, uint64(60), c.current())
}

func TestCursorsConcurrentReserve(t *testing.T) {
	const n = 1000
	c := newCursors(HeaderSize+n*10, HeaderSize, HeaderSize)

	var (
		mu   sync.Mutex
		seen = make(map[uint64]bool)
		wg   sync.WaitGroup
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range n / 10 {
				off, ok := c.reserve(10)
				if !assert.True(t, ok) {
					return
				}
				mu.Lock()
				assert.False(t, seen[off])
				seen[off] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	assert.Equal(t, c.capacity, c.current())
	_, ok := c.reserve(1)
	assert.False(t, ok)
}

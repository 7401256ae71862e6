// Package store provides an append-only record store backed by a
// fixed-capacity, memory-mapped file.
//
// A store file is exactly Capacity bytes long: a 16-byte header followed by
// length-prefixed records. Write appends a record and returns the offset of
// its length field; Sync makes everything written so far durable.
//
// Thread Safety:
// Write and Cursor may be called from multiple goroutines. Each Write claims
// its byte range with an atomic reservation before copying, so concurrent
// records never overlap. Sync and Close wait for in-flight writes to finish.
// No cross-process locking is provided.
package store

import (
	"encoding/binary"
	"os"
	"sync"
	"time"

	"github.com/marmos91/dittolog/internal/logger"
	"golang.org/x/sys/unix"
)

// Store is the capability surface of an open record store.
type Store interface {
	// Cursor returns the offset of the next write.
	Cursor() (uint64, error)

	// Write appends data as one record and returns the offset at which its
	// length field was written.
	Write(data []byte) (uint64, error)

	// Sync flushes everything written since the previous Sync to stable
	// storage and returns the number of bytes newly made durable.
	Sync() (uint64, error)

	// Close releases the mapping and the file. Calling Close on a closed
	// store is a no-op.
	Close() error
}

// MmapStore implements Store on a memory-mapped file.
type MmapStore struct {
	// mu guards the mapping lifetime: writers share it, Sync and Close
	// take it exclusively.
	mu       sync.RWMutex
	path     string
	file     *os.File
	flags    Flags
	capacity uint64
	data     []byte // mmap'd region, exactly capacity bytes
	pageSize uint64
	cursors  *cursors
	closed   bool
	metrics  Metrics
}

// Option configures optional MmapStore behaviour.
type Option func(*MmapStore)

// WithMetrics reports store activity to m.
func WithMetrics(m Metrics) Option {
	return func(s *MmapStore) {
		s.metrics = m
	}
}

// Cursor returns the current write cursor. On a fresh store it is HeaderSize.
func (s *MmapStore) Cursor() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	return s.cursors.current(), nil
}

// checkOpen reports why the store cannot serve operations, if it cannot.
// Callers must hold mu.
func (s *MmapStore) checkOpen() error {
	switch {
	case s.closed:
		return ErrClosed
	case s.cursors == nil:
		return ErrNotOpen
	}
	return nil
}

// Write appends data as a length-prefixed record.
//
// The returned offset is the cursor before the call; afterwards the cursor
// equals offset + LengthFieldSize + len(data). When the record does not fit
// the store is left unchanged and ErrCapacityExceeded is returned.
func (s *MmapStore) Write(data []byte) (uint64, error) {
	start := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, newInvalidArgumentError("record payload must not be empty")
	}

	size := uint64(len(data))
	offset, ok := s.cursors.reserve(LengthFieldSize + size)
	if !ok {
		recordCapacityExceeded(s.metrics)
		logger.Warn("Store capacity exceeded",
			logger.KeyPath, s.path,
			logger.KeyCursor, offset,
			logger.KeyRecordSize, size,
			logger.KeyCapacity, s.capacity)
		return 0, newCapacityExceededError(s.path, offset, LengthFieldSize+size, s.capacity)
	}

	binary.LittleEndian.PutUint64(s.data[offset:], size)
	copy(s.data[offset+LengthFieldSize:], data)

	observeWrite(s.metrics, len(data), start)
	return offset, nil
}

// Sync flushes the pages covering [sync cursor, write cursor) and advances
// the sync cursor. It returns 0 without touching the disk when nothing was
// written since the last Sync.
func (s *MmapStore) Sync() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	return s.syncLocked()
}

// syncLocked flushes pending writes (caller must hold the exclusive lock).
func (s *MmapStore) syncLocked() (uint64, error) {
	write := s.cursors.current()
	old := s.cursors.sync
	if write == old {
		return 0, nil
	}

	start := time.Now()

	// msync needs a page-aligned address; the mapping itself is aligned.
	begin := old &^ (s.pageSize - 1)
	if err := unix.Msync(s.data[begin:write], unix.MS_SYNC); err != nil {
		return 0, newIOError(s.path, "msync", err)
	}
	if s.flags.Has(FlagFullSync) {
		if err := s.file.Sync(); err != nil {
			return 0, newIOError(s.path, "fsync", err)
		}
	}

	s.cursors.sync = write
	flushed := write - old

	observeSync(s.metrics, flushed, start)
	recordCursors(s.metrics, s.cursors)
	logger.Debug("Store synced",
		logger.KeyPath, s.path,
		logger.KeyBytesFlushed, flushed,
		logger.KeySyncCursor, write,
		logger.KeyDurationMs, logger.Duration(start))

	return flushed, nil
}

// Close unmaps the region and closes the file. With FlagSyncOnClose the
// outstanding writes are flushed first. Close is idempotent: calls after
// the first return nil, as does Close on a store that was never opened.
func (s *MmapStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.cursors == nil {
		return nil
	}
	s.closed = true

	var firstErr error
	if s.flags.Has(FlagSyncOnClose) {
		if _, err := s.syncLocked(); err != nil {
			firstErr = err
		}
	}

	if err := s.release(); err != nil && firstErr == nil {
		firstErr = err
	}

	logger.Info("Store closed",
		logger.KeyPath, s.path,
		logger.KeyCursor, s.cursors.current(),
		logger.KeySyncCursor, s.cursors.sync)

	return firstErr
}

// Path returns the path of the backing file.
func (s *MmapStore) Path() string {
	return s.path
}

// Capacity returns the fixed size of the store in bytes.
func (s *MmapStore) Capacity() uint64 {
	return s.capacity
}

// Flags returns the flags the store was opened with.
func (s *MmapStore) Flags() Flags {
	return s.flags
}

// Ensure MmapStore implements Store.
var _ Store = (*MmapStore)(nil)

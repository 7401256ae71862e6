// mmap.go owns the backing file and its memory mapping.
//
// A fresh store file is truncated to its full capacity and mapped once;
// it is never grown or remapped afterwards. Every failure path after the
// file is opened releases the mapping (if any) and then the file.

package store

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/marmos91/dittolog/internal/logger"
	"golang.org/x/sys/unix"
)

// Create opens the store at directory/filename, creating it when the file
// is absent or empty.
//
// A fresh file is sized to exactly capacity bytes, mapped read/write and
// given a header; its write cursor starts at HeaderSize. A non-empty file
// is treated as an existing store: its header is validated, capacity must
// match, and the write cursor is recovered by scanning its records.
//
// Parameters:
//   - capacity: total file size in bytes, at least HeaderSize
//   - directory: directory holding the store file (created if missing)
//   - filename: name of the store file
//   - flags: FlagExclusive, FlagSyncOnClose, FlagFullSync
func Create(capacity uint64, directory, filename string, flags Flags, opts ...Option) (*MmapStore, error) {
	if capacity == 0 {
		return nil, newInvalidArgumentError("capacity must be greater than zero")
	}
	if capacity < HeaderSize {
		return nil, newInvalidArgumentError("capacity %d is smaller than the %d-byte header", capacity, HeaderSize)
	}
	if capacity > math.MaxInt {
		return nil, newInvalidArgumentError("capacity %d cannot be mapped", capacity)
	}

	path, err := storePath(directory, filename)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, newIOError(path, "create directory", err)
	}

	openFlags := os.O_RDWR | os.O_CREATE
	if flags.Has(FlagExclusive) {
		openFlags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, openFlags, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, &StoreError{Code: ErrCodeAlreadyExists, Message: "store already exists", Path: path, Err: err}
		}
		return nil, newIOError(path, "open file", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, newIOError(path, "stat file", err)
	}

	s := newMmapStore(path, f, flags, opts)
	if info.Size() == 0 {
		err = s.initFresh(capacity)
	} else {
		err = s.openExisting(uint64(info.Size()), capacity)
	}
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Open opens an existing store at directory/filename. The capacity is taken
// from the file itself. A missing file is ErrNotFound.
func Open(directory, filename string, flags Flags, opts ...Option) (*MmapStore, error) {
	path, err := storePath(directory, filename)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &StoreError{Code: ErrCodeNotFound, Message: "store not found", Path: path, Err: err}
		}
		return nil, newIOError(path, "open file", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, newIOError(path, "stat file", err)
	}
	if info.Size() == 0 {
		f.Close()
		return nil, newCorruptHeaderError(path, "file is empty")
	}

	s := newMmapStore(path, f, flags, opts)
	if err := s.openExisting(uint64(info.Size()), 0); err != nil {
		return nil, err
	}

	return s, nil
}

func storePath(directory, filename string) (string, error) {
	if filename == "" {
		return "", newInvalidArgumentError("filename must not be empty")
	}
	if filepath.Base(filename) != filename {
		return "", newInvalidArgumentError("filename %q must not contain a directory", filename)
	}
	if directory == "" {
		directory = "."
	}
	return filepath.Join(directory, filename), nil
}

func newMmapStore(path string, f *os.File, flags Flags, opts []Option) *MmapStore {
	s := &MmapStore{
		path:     path,
		file:     f,
		flags:    flags,
		pageSize: uint64(unix.Getpagesize()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// initFresh sizes an empty file to capacity, maps it and writes the header.
func (s *MmapStore) initFresh(capacity uint64) (err error) {
	defer func() {
		if err != nil {
			// Leave an empty file behind so a retry starts fresh.
			_ = s.file.Truncate(0)
			_ = s.release()
		}
	}()

	if err := s.file.Truncate(int64(capacity)); err != nil {
		return newIOError(s.path, "truncate file", err)
	}
	if err := s.mapFile(capacity); err != nil {
		return err
	}

	initHeader(s.data, capacity)

	headerSpan := min(s.pageSize, capacity)
	if err := unix.Msync(s.data[:headerSpan], unix.MS_SYNC); err != nil {
		return newIOError(s.path, "msync header", err)
	}
	if s.flags.Has(FlagFullSync) {
		// The new size and the directory entry must survive a crash too.
		if err := s.file.Sync(); err != nil {
			return newIOError(s.path, "fsync file", err)
		}
		if err := syncDir(filepath.Dir(s.path)); err != nil {
			return err
		}
	}

	s.capacity = capacity
	s.cursors = newCursors(capacity, HeaderSize, HeaderSize)
	recordCursors(s.metrics, s.cursors)

	logger.Info("Store created",
		logger.KeyPath, s.path,
		logger.KeyCapacity, capacity,
		logger.KeyFlags, s.flags.String())

	return nil
}

// syncDir fsyncs a directory so entries created in it are durable.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return newIOError(dir, "open directory", err)
	}
	defer d.Close()

	if err := d.Sync(); err != nil {
		return newIOError(dir, "fsync directory", err)
	}
	return nil
}

// openExisting maps a non-empty file, validates its header and recovers the
// write cursor. want is the capacity requested by the caller, 0 for any.
func (s *MmapStore) openExisting(size, want uint64) (err error) {
	defer func() {
		if err != nil {
			_ = s.release()
		}
	}()

	if size < HeaderSize {
		return newCorruptHeaderError(s.path, "file of %d bytes is smaller than the header", size)
	}
	if size > math.MaxInt {
		return newMappingError(s.path, "file too large to map", nil)
	}
	if err := s.mapFile(size); err != nil {
		return err
	}

	h, err := validateHeader(s.data, s.path, size)
	if err != nil {
		return err
	}
	if want != 0 && want != h.Capacity {
		mismatch := newInvalidArgumentError("capacity is fixed at creation: store has %d bytes, requested %d", h.Capacity, want)
		mismatch.Path = s.path
		return mismatch
	}

	cursor, records, err := recoverCursor(s.data, s.path)
	if err != nil {
		return err
	}

	s.capacity = h.Capacity
	// Recovered bytes are re-flushed by the next Sync.
	s.cursors = newCursors(h.Capacity, cursor, HeaderSize)
	recordCursors(s.metrics, s.cursors)

	logger.Info("Store opened",
		logger.KeyPath, s.path,
		logger.KeyCapacity, h.Capacity,
		logger.KeyCursor, cursor,
		logger.KeyRecords, records,
		logger.KeyFlags, s.flags.String())

	return nil
}

// mapFile maps size bytes of the file shared and read/write.
func (s *MmapStore) mapFile(size uint64) error {
	data, err := unix.Mmap(int(s.file.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return newMappingError(s.path, "mmap", err)
	}
	s.data = data
	return nil
}

// release unmaps the region and closes the file. Safe to call on a
// partially initialized store.
func (s *MmapStore) release() error {
	var firstErr error

	if s.data != nil {
		if err := unix.Munmap(s.data); err != nil {
			firstErr = newMappingError(s.path, "munmap", err)
		}
		s.data = nil
	}

	if s.file != nil {
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = newIOError(s.path, "close file", err)
		}
		s.file = nil
	}

	return firstErr
}

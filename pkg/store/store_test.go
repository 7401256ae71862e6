package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFile = "records.log"

// newTestStore creates a store in a temp dir and closes it on cleanup.
func newTestStore(t *testing.T, capacity uint64, flags Flags, opts ...Option) *MmapStore {
	t.Helper()

	s, err := Create(capacity, t.TempDir(), testFile, flags, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// recordAt decodes the record whose length field is at offset.
func recordAt(t *testing.T, data []byte, offset uint64) []byte {
	t.Helper()

	require.LessOrEqual(t, offset+LengthFieldSize, uint64(len(data)))
	n := binary.LittleEndian.Uint64(data[offset:])
	require.LessOrEqual(t, offset+LengthFieldSize+n, uint64(len(data)))
	return data[offset+LengthFieldSize : offset+LengthFieldSize+n]
}

func TestCreate(t *testing.T) {
	t.Run("FreshStoreLayout", func(t *testing.T) {
		s := newTestStore(t, 4096, FlagNone)

		cursor, err := s.Cursor()
		require.NoError(t, err)
		assert.Equal(t, uint64(HeaderSize), cursor)

		fi, err := os.Stat(s.Path())
		require.NoError(t, err)
		assert.Equal(t, int64(4096), fi.Size())

		data := readFile(t, s.Path())
		assert.Equal(t, []byte{0xEF, 0xBE, 0xAD, 0xDE, 0, 0, 0, 0}, data[0:8])
		assert.Equal(t, uint64(4096), binary.LittleEndian.Uint64(data[8:16]))
		assert.Equal(t, make([]byte, 4096-HeaderSize), data[HeaderSize:])
	})

	t.Run("CreatesMissingDirectory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")
		s, err := Create(1024, dir, testFile, FlagNone)
		require.NoError(t, err)
		defer s.Close()

		assert.Equal(t, filepath.Join(dir, testFile), s.Path())
		assert.Equal(t, uint64(1024), s.Capacity())
		assert.Equal(t, FlagNone, s.Flags())
	})

	t.Run("MinimumCapacity", func(t *testing.T) {
		s := newTestStore(t, HeaderSize, FlagNone)

		_, err := s.Write([]byte{1})
		assert.ErrorIs(t, err, ErrCapacityExceeded)

		cursor, err := s.Cursor()
		require.NoError(t, err)
		assert.Equal(t, uint64(HeaderSize), cursor)
	})

	t.Run("InvalidArguments", func(t *testing.T) {
		dir := t.TempDir()

		_, err := Create(0, dir, testFile, FlagNone)
		assert.ErrorIs(t, err, ErrInvalidArgument)

		_, err = Create(HeaderSize-1, dir, testFile, FlagNone)
		assert.ErrorIs(t, err, ErrInvalidArgument)

		_, err = Create(1024, dir, "", FlagNone)
		assert.ErrorIs(t, err, ErrInvalidArgument)

		_, err = Create(1024, dir, "sub/records.log", FlagNone)
		assert.ErrorIs(t, err, ErrInvalidArgument)

		// None of the rejected calls should have left a file behind.
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("ExclusiveRejectsExisting", func(t *testing.T) {
		dir := t.TempDir()
		s, err := Create(1024, dir, testFile, FlagExclusive)
		require.NoError(t, err)
		require.NoError(t, s.Close())

		_, err = Create(1024, dir, testFile, FlagExclusive)
		assert.ErrorIs(t, err, ErrAlreadyExists)
		assert.ErrorIs(t, err, fs.ErrExist)
	})

	t.Run("ReopensExistingWithSameCapacity", func(t *testing.T) {
		dir := t.TempDir()
		s, err := Create(1024, dir, testFile, FlagNone)
		require.NoError(t, err)
		_, err = s.Write([]byte("hello"))
		require.NoError(t, err)
		require.NoError(t, s.Close())

		s, err = Create(1024, dir, testFile, FlagNone)
		require.NoError(t, err)
		defer s.Close()

		cursor, err := s.Cursor()
		require.NoError(t, err)
		assert.Equal(t, uint64(HeaderSize+LengthFieldSize+5), cursor)
	})

	t.Run("RejectsCapacityChange", func(t *testing.T) {
		dir := t.TempDir()
		s, err := Create(1024, dir, testFile, FlagNone)
		require.NoError(t, err)
		require.NoError(t, s.Close())

		_, err = Create(2048, dir, testFile, FlagNone)
		assert.ErrorIs(t, err, ErrInvalidArgument)

		fi, err := os.Stat(filepath.Join(dir, testFile))
		require.NoError(t, err)
		assert.Equal(t, int64(1024), fi.Size())
	})

	t.Run("EmptyExistingFileIsInitialized", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, testFile), nil, 0644))

		s, err := Create(512, dir, testFile, FlagNone)
		require.NoError(t, err)
		defer s.Close()

		info, err := s.Inspect()
		require.NoError(t, err)
		assert.Equal(t, Magic, info.Magic)
		assert.Equal(t, uint64(512), info.StoredCapacity)
	})
}

func TestWrite(t *testing.T) {
	t.Run("SequentialOffsets", func(t *testing.T) {
		s := newTestStore(t, 4096, FlagNone)

		payloads := [][]byte{
			[]byte("0123456789"),
			[]byte("abcdefghijklmnopqrst"),
			[]byte("x"),
		}
		want := []uint64{16, 34, 62}

		for i, p := range payloads {
			off, err := s.Write(p)
			require.NoError(t, err)
			assert.Equal(t, want[i], off)
		}

		cursor, err := s.Cursor()
		require.NoError(t, err)
		assert.Equal(t, uint64(71), cursor)

		data := readFile(t, s.Path())
		for i, p := range payloads {
			assert.Equal(t, p, recordAt(t, data, want[i]))
		}
	})

	t.Run("LargeStoreFirstRecord", func(t *testing.T) {
		s := newTestStore(t, 64<<20, FlagNone)

		payload := bytes.Repeat([]byte{0xAB}, 250)
		off, err := s.Write(payload)
		require.NoError(t, err)
		assert.Equal(t, uint64(16), off)

		cursor, err := s.Cursor()
		require.NoError(t, err)
		assert.Equal(t, uint64(274), cursor)

		data := readFile(t, s.Path())
		assert.Equal(t, uint64(250), binary.LittleEndian.Uint64(data[16:24]))
		assert.Equal(t, payload, data[24:274])
	})

	t.Run("ExactFit", func(t *testing.T) {
		s := newTestStore(t, 32, FlagNone)

		off, err := s.Write([]byte("12345678"))
		require.NoError(t, err)
		assert.Equal(t, uint64(16), off)

		cursor, err := s.Cursor()
		require.NoError(t, err)
		assert.Equal(t, uint64(32), cursor)

		_, err = s.Write([]byte{1})
		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})

	t.Run("CapacityExceededLeavesStoreUnchanged", func(t *testing.T) {
		s := newTestStore(t, 64, FlagNone)

		_, err := s.Write([]byte("first"))
		require.NoError(t, err)
		before := readFile(t, s.Path())

		_, err = s.Write(make([]byte, 64))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCapacityExceeded)

		var se *StoreError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, ErrCodeCapacityExceeded, se.Code)
		assert.Equal(t, s.Path(), se.Path)

		cursor, err := s.Cursor()
		require.NoError(t, err)
		assert.Equal(t, uint64(HeaderSize+LengthFieldSize+5), cursor)
		assert.Equal(t, before, readFile(t, s.Path()))

		// A smaller record still fits after a rejected one.
		off, err := s.Write([]byte("second"))
		require.NoError(t, err)
		assert.Equal(t, cursor, off)
	})

	t.Run("EmptyPayloadRejected", func(t *testing.T) {
		s := newTestStore(t, 1024, FlagNone)

		_, err := s.Write(nil)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		_, err = s.Write([]byte{})
		assert.ErrorIs(t, err, ErrInvalidArgument)

		cursor, err := s.Cursor()
		require.NoError(t, err)
		assert.Equal(t, uint64(HeaderSize), cursor)
	})

	t.Run("CallerBufferNotRetained", func(t *testing.T) {
		s := newTestStore(t, 1024, FlagNone)

		buf := []byte("original")
		off, err := s.Write(buf)
		require.NoError(t, err)
		copy(buf, "mutated!")

		assert.Equal(t, []byte("original"), recordAt(t, readFile(t, s.Path()), off))
	})
}

func TestCursorIsIdempotent(t *testing.T) {
	s := newTestStore(t, 1024, FlagNone)
	_, err := s.Write([]byte("abc"))
	require.NoError(t, err)

	first, err := s.Cursor()
	require.NoError(t, err)
	second, err := s.Cursor()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestConcurrentWriters(t *testing.T) {
	const (
		writers   = 8
		perWriter = 200
	)

	s := newTestStore(t, 1<<20, FlagNone)

	type result struct {
		offset  uint64
		payload []byte
	}
	results := make([][]result, writers)

	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range perWriter {
				p := bytes.Repeat([]byte{byte(w + 1)}, 1+(i%37))
				off, err := s.Write(p)
				if !assert.NoError(t, err) {
					return
				}
				results[w] = append(results[w], result{off, p})
			}
		}(w)
	}

	// Interleave syncs with the writers.
	var syncErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 20 {
			if _, err := s.Sync(); err != nil {
				syncErr = err
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	wg.Wait()
	<-done
	require.NoError(t, syncErr)

	cursor, err := s.Cursor()
	require.NoError(t, err)

	data := readFile(t, s.Path())
	seen := make(map[uint64]bool)
	var total uint64
	for _, rs := range results {
		require.Len(t, rs, perWriter)
		for _, r := range rs {
			assert.False(t, seen[r.offset], "offset %d returned twice", r.offset)
			seen[r.offset] = true
			assert.Equal(t, r.payload, recordAt(t, data, r.offset))
			total += LengthFieldSize + uint64(len(r.payload))
		}
	}
	assert.Equal(t, HeaderSize+total, cursor)
}

func TestSync(t *testing.T) {
	t.Run("NothingToFlush", func(t *testing.T) {
		s := newTestStore(t, 1024, FlagNone)

		n, err := s.Sync()
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("ReturnsNewlyDurableBytes", func(t *testing.T) {
		s := newTestStore(t, 1024, FlagNone)

		_, err := s.Write([]byte("0123456789"))
		require.NoError(t, err)

		n, err := s.Sync()
		require.NoError(t, err)
		assert.Equal(t, uint64(18), n)

		n, err = s.Sync()
		require.NoError(t, err)
		assert.Zero(t, n)

		_, err = s.Write([]byte("abc"))
		require.NoError(t, err)
		n, err = s.Sync()
		require.NoError(t, err)
		assert.Equal(t, uint64(11), n)

		info, err := s.Inspect()
		require.NoError(t, err)
		assert.Equal(t, info.WriteCursor, info.SyncCursor)
		assert.Zero(t, info.Pending())
	})

	t.Run("FullSyncAcrossPages", func(t *testing.T) {
		s := newTestStore(t, 1<<20, FlagFullSync)

		for range 10 {
			_, err := s.Write(make([]byte, 3000))
			require.NoError(t, err)
		}
		n, err := s.Sync()
		require.NoError(t, err)
		assert.Equal(t, uint64(10*(3000+LengthFieldSize)), n)

		// The next flush starts mid-page.
		_, err = s.Write([]byte("tail"))
		require.NoError(t, err)
		n, err = s.Sync()
		require.NoError(t, err)
		assert.Equal(t, uint64(12), n)
	})
}

func TestUnopened(t *testing.T) {
	var s MmapStore

	t.Run("Cursor", func(t *testing.T) {
		_, err := s.Cursor()
		assert.ErrorIs(t, err, ErrNotOpen)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("Write", func(t *testing.T) {
		_, err := s.Write([]byte("x"))
		assert.ErrorIs(t, err, ErrInvalidState)

		_, err = s.Write(nil)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("Sync", func(t *testing.T) {
		_, err := s.Sync()
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("Inspect", func(t *testing.T) {
		_, err := s.Inspect()
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("CloseIsNoop", func(t *testing.T) {
		require.NoError(t, s.Close())
		require.NoError(t, s.Close())

		_, err := s.Cursor()
		assert.ErrorIs(t, err, ErrNotOpen)
	})
}

func TestClose(t *testing.T) {
	t.Run("Idempotent", func(t *testing.T) {
		s, err := Create(1024, t.TempDir(), testFile, FlagNone)
		require.NoError(t, err)

		require.NoError(t, s.Close())
		require.NoError(t, s.Close())
	})

	t.Run("OperationsAfterClose", func(t *testing.T) {
		s, err := Create(1024, t.TempDir(), testFile, FlagNone)
		require.NoError(t, err)
		require.NoError(t, s.Close())

		_, err = s.Cursor()
		assert.ErrorIs(t, err, ErrClosed)
		assert.ErrorIs(t, err, ErrInvalidState)

		_, err = s.Write([]byte("x"))
		assert.ErrorIs(t, err, ErrClosed)

		_, err = s.Sync()
		assert.ErrorIs(t, err, ErrClosed)

		_, err = s.Inspect()
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("StateErrorWinsOverEmptyPayload", func(t *testing.T) {
		s, err := Create(1024, t.TempDir(), testFile, FlagNone)
		require.NoError(t, err)
		require.NoError(t, s.Close())

		_, err = s.Write(nil)
		assert.ErrorIs(t, err, ErrClosed)
		assert.NotErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("SyncOnCloseFlushes", func(t *testing.T) {
		m := &fakeMetrics{}
		s, err := Create(1024, t.TempDir(), testFile, FlagSyncOnClose, WithMetrics(m))
		require.NoError(t, err)

		_, err = s.Write([]byte("pending"))
		require.NoError(t, err)
		require.NoError(t, s.Close())

		assert.Equal(t, 1, m.syncs)
		assert.Equal(t, uint64(15), m.syncedBytes)
	})

	t.Run("WithoutSyncOnCloseDoesNotFlush", func(t *testing.T) {
		m := &fakeMetrics{}
		s, err := Create(1024, t.TempDir(), testFile, FlagNone, WithMetrics(m))
		require.NoError(t, err)

		_, err = s.Write([]byte("pending"))
		require.NoError(t, err)
		require.NoError(t, s.Close())

		assert.Zero(t, m.syncs)
	})
}

func TestCreateFullSync(t *testing.T) {
	t.Run("DurableFreshFile", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "dir")
		s, err := Create(4096, dir, testFile, FlagFullSync)
		require.NoError(t, err)
		require.NoError(t, s.Close())

		data := readFile(t, filepath.Join(dir, testFile))
		require.Len(t, data, 4096)
		assert.Equal(t, Magic, binary.LittleEndian.Uint64(data[0:]))
		assert.Equal(t, uint64(4096), binary.LittleEndian.Uint64(data[8:]))
	})

	t.Run("SyncDirMissing", func(t *testing.T) {
		err := syncDir(filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrIO)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("SyncDir", func(t *testing.T) {
		assert.NoError(t, syncDir(t.TempDir()))
	})
}

func TestOpen(t *testing.T) {
	t.Run("RecoversCursor", func(t *testing.T) {
		dir := t.TempDir()
		s, err := Create(4096, dir, testFile, FlagNone)
		require.NoError(t, err)

		var last uint64
		for _, p := range []string{"one", "two", "three"} {
			_, err := s.Write([]byte(p))
			require.NoError(t, err)
		}
		last, err = s.Cursor()
		require.NoError(t, err)
		_, err = s.Sync()
		require.NoError(t, err)
		require.NoError(t, s.Close())

		s, err = Open(dir, testFile, FlagNone)
		require.NoError(t, err)
		defer s.Close()

		assert.Equal(t, uint64(4096), s.Capacity())
		cursor, err := s.Cursor()
		require.NoError(t, err)
		assert.Equal(t, last, cursor)

		off, err := s.Write([]byte("four"))
		require.NoError(t, err)
		assert.Equal(t, last, off)

		// Recovered bytes count as unsynced until the next Sync.
		n, err := s.Sync()
		require.NoError(t, err)
		assert.Equal(t, last+LengthFieldSize+4-HeaderSize, n)
	})

	t.Run("RecoversFullStore", func(t *testing.T) {
		dir := t.TempDir()
		s, err := Create(32, dir, testFile, FlagNone)
		require.NoError(t, err)
		_, err = s.Write([]byte("12345678"))
		require.NoError(t, err)
		require.NoError(t, s.Close())

		s, err = Open(dir, testFile, FlagNone)
		require.NoError(t, err)
		defer s.Close()

		cursor, err := s.Cursor()
		require.NoError(t, err)
		assert.Equal(t, uint64(32), cursor)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := Open(t.TempDir(), testFile, FlagNone)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("EmptyFile", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, testFile), nil, 0644))

		_, err := Open(dir, testFile, FlagNone)
		assert.ErrorIs(t, err, ErrCorruptHeader)
	})
}

func TestCorruption(t *testing.T) {
	// build creates a store with one record and returns its path.
	build := func(t *testing.T) (string, string) {
		t.Helper()
		dir := t.TempDir()
		s, err := Create(1024, dir, testFile, FlagNone)
		require.NoError(t, err)
		_, err = s.Write([]byte("payload"))
		require.NoError(t, err)
		require.NoError(t, s.Close())
		return dir, filepath.Join(dir, testFile)
	}

	patch := func(t *testing.T, path string, offset int64, value uint64) {
		t.Helper()
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		require.NoError(t, err)
		defer f.Close()
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], value)
		_, err = f.WriteAt(b[:], offset)
		require.NoError(t, err)
	}

	t.Run("BadMagic", func(t *testing.T) {
		dir, path := build(t)
		patch(t, path, 0, 0xCAFEBABE)

		_, err := Open(dir, testFile, FlagNone)
		assert.ErrorIs(t, err, ErrCorruptHeader)

		_, err = Create(1024, dir, testFile, FlagNone)
		assert.ErrorIs(t, err, ErrCorruptHeader)
	})

	t.Run("StoredCapacityMismatch", func(t *testing.T) {
		dir, path := build(t)
		patch(t, path, 8, 2048)

		_, err := Open(dir, testFile, FlagNone)
		assert.ErrorIs(t, err, ErrCorruptHeader)
	})

	t.Run("FileResized", func(t *testing.T) {
		dir, path := build(t)
		require.NoError(t, os.Truncate(path, 4096))

		_, err := Open(dir, testFile, FlagNone)
		assert.ErrorIs(t, err, ErrCorruptHeader)
	})

	t.Run("ShorterThanHeader", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, testFile), []byte{0xEF, 0xBE, 0xAD, 0xDE}, 0644))

		_, err := Open(dir, testFile, FlagNone)
		assert.ErrorIs(t, err, ErrCorruptHeader)
	})

	t.Run("RecordOverrunsCapacity", func(t *testing.T) {
		dir, path := build(t)
		patch(t, path, HeaderSize, 5000)

		_, err := Open(dir, testFile, FlagNone)
		assert.ErrorIs(t, err, ErrCorruptRecord)
	})
}

func TestInspect(t *testing.T) {
	s := newTestStore(t, 2048, FlagSyncOnClose|FlagFullSync)

	_, err := s.Write([]byte("abc"))
	require.NoError(t, err)

	info, err := s.Inspect()
	require.NoError(t, err)

	assert.Equal(t, s.Path(), info.Path)
	assert.Equal(t, FlagSyncOnClose|FlagFullSync, info.Flags)
	assert.Equal(t, Magic, info.Magic)
	assert.Equal(t, uint64(2048), info.StoredCapacity)
	assert.Equal(t, uint64(2048), info.Capacity)
	assert.Equal(t, uint64(27), info.WriteCursor)
	assert.Equal(t, uint64(HeaderSize), info.SyncCursor)
	assert.Equal(t, uint64(27), info.Used())
	assert.Equal(t, uint64(2048-27), info.Remaining())
	assert.Equal(t, uint64(11), info.Pending())
	assert.NotZero(t, info.PageSize)
}

func TestMetricsHooks(t *testing.T) {
	m := &fakeMetrics{}
	s := newTestStore(t, 64, FlagNone, WithMetrics(m))

	_, err := s.Write([]byte("hello"))
	require.NoError(t, err)
	_, err = s.Write(make([]byte, 100))
	require.Error(t, err)
	_, err = s.Sync()
	require.NoError(t, err)

	assert.Equal(t, 1, m.writes)
	assert.Equal(t, 5, m.writtenBytes)
	assert.Equal(t, 1, m.exceeded)
	assert.Equal(t, 1, m.syncs)
	assert.Equal(t, uint64(13), m.syncedBytes)
	assert.Equal(t, uint64(29), m.write)
	assert.Equal(t, uint64(29), m.sync)
	assert.Equal(t, uint64(64), m.capacity)
}

func TestStoreErrors(t *testing.T) {
	err := newIOError("/x", "msync", fs.ErrPermission)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.NotErrorIs(t, err, ErrMapping)
	assert.Equal(t, "IOError: msync (path: /x): permission denied", err.Error())

	assert.Equal(t, "InvalidArgument: bad", newInvalidArgumentError("bad").Error())
	assert.True(t, errors.Is(ErrClosed, ErrInvalidState))
	assert.Equal(t, "Unknown(99)", ErrorCode(99).String())
	assert.Equal(t, "CorruptRecord", ErrCodeCorruptRecord.String())
}

func TestFlags(t *testing.T) {
	assert.Equal(t, "none", FlagNone.String())
	assert.Equal(t, "exclusive", FlagExclusive.String())
	assert.Equal(t, "exclusive|sync_on_close|full_sync", (FlagExclusive | FlagSyncOnClose | FlagFullSync).String())

	f := FlagSyncOnClose | FlagFullSync
	assert.True(t, f.Has(FlagFullSync))
	assert.False(t, f.Has(FlagExclusive))
	assert.True(t, f.Has(FlagNone))
}

type fakeMetrics struct {
	mu           sync.Mutex
	writes       int
	writtenBytes int
	syncs        int
	syncedBytes  uint64
	exceeded     int

	write, sync, capacity uint64
}

func (m *fakeMetrics) ObserveWrite(bytes int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.writtenBytes += bytes
}

func (m *fakeMetrics) ObserveSync(bytes uint64, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncs++
	m.syncedBytes += bytes
}

func (m *fakeMetrics) RecordCursors(write, sync, capacity uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.write, m.sync, m.capacity = write, sync, capacity
}

func (m *fakeMetrics) RecordCapacityExceeded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exceeded++
}

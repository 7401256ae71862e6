package store

// Info is a point-in-time snapshot of a store, for debugging and tooling.
//
// The header fields are decoded from the mapped bytes, not from the values
// the store was created with, so a test can check what actually landed on
// disk without depending on the layout of MmapStore.
type Info struct {
	Path           string
	Flags          Flags
	Magic          uint64 // raw bytes 0-7 of the file
	StoredCapacity uint64 // raw bytes 8-15 of the file
	Capacity       uint64
	WriteCursor    uint64
	SyncCursor     uint64
	PageSize       uint64
}

// Used returns the bytes consumed by the header and records.
func (i Info) Used() uint64 {
	return i.WriteCursor
}

// Remaining returns the bytes left for records, including length fields.
func (i Info) Remaining() uint64 {
	return i.Capacity - i.WriteCursor
}

// Pending returns the bytes written but not yet synced.
func (i Info) Pending() uint64 {
	return i.WriteCursor - i.SyncCursor
}

// Inspect returns a debug snapshot of the store's header and cursors.
// Production callers should use Cursor instead.
func (s *MmapStore) Inspect() (Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return Info{}, err
	}

	h := readHeader(s.data)
	return Info{
		Path:           s.path,
		Flags:          s.flags,
		Magic:          h.Magic,
		StoredCapacity: h.Capacity,
		Capacity:       s.capacity,
		WriteCursor:    s.cursors.current(),
		SyncCursor:     s.cursors.sync,
		PageSize:       s.pageSize,
	}, nil
}

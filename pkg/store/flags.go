package store

import "strings"

// Flags is the bitmask passed to Create and Open.
type Flags uint32

const (
	// FlagNone selects the default behaviour.
	FlagNone Flags = 0

	// FlagExclusive makes Create fail with ErrAlreadyExists when the
	// backing file already exists.
	FlagExclusive Flags = 1 << 0

	// FlagSyncOnClose flushes outstanding writes before Close unmaps.
	FlagSyncOnClose Flags = 1 << 1

	// FlagFullSync follows every msync with an fsync of the file so the
	// flush also reaches the device write cache.
	FlagFullSync Flags = 1 << 2
)

// Has reports whether all bits of f2 are set in f.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// String lists the set flags, e.g. "exclusive|sync_on_close".
func (f Flags) String() string {
	if f == FlagNone {
		return "none"
	}
	var names []string
	if f.Has(FlagExclusive) {
		names = append(names, "exclusive")
	}
	if f.Has(FlagSyncOnClose) {
		names = append(names, "sync_on_close")
	}
	if f.Has(FlagFullSync) {
		names = append(names, "full_sync")
	}
	return strings.Join(names, "|")
}

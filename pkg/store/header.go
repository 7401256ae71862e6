// header.go holds the on-disk prologue of a store file.
//
// File Format:
//
//	Header (16 bytes):
//	  - Magic: 0xDEADBEEF as uint64 (8 bytes)
//	  - Capacity: uint64 (8 bytes), equal to the file size
//
//	Records (variable, until the write cursor):
//	  - Length L: uint64 (8 bytes)
//	  - Payload: L bytes
//
// All integers are little-endian.

package store

import (
	"encoding/binary"
)

// Header constants
const (
	// Magic identifies a valid store file.
	Magic uint64 = 0xDEADBEEF

	// HeaderSize is the number of bytes reserved at the start of the file.
	HeaderSize = 16

	// LengthFieldSize is the size of the length prefix of every record.
	LengthFieldSize = 8
)

// Header field offsets
const (
	headerOffsetMagic    = 0
	headerOffsetCapacity = 8
)

// header is the decoded form of the first HeaderSize bytes.
type header struct {
	Magic    uint64
	Capacity uint64
}

// initHeader writes the magic and capacity into a freshly created mapping.
func initHeader(data []byte, capacity uint64) {
	binary.LittleEndian.PutUint64(data[headerOffsetMagic:], Magic)
	binary.LittleEndian.PutUint64(data[headerOffsetCapacity:], capacity)
}

// readHeader decodes the header without validating it.
func readHeader(data []byte) header {
	return header{
		Magic:    binary.LittleEndian.Uint64(data[headerOffsetMagic:]),
		Capacity: binary.LittleEndian.Uint64(data[headerOffsetCapacity:]),
	}
}

// validateHeader checks the magic and that the stored capacity equals the
// actual size of the file.
func validateHeader(data []byte, path string, fileSize uint64) (header, error) {
	if uint64(len(data)) < HeaderSize {
		return header{}, newCorruptHeaderError(path, "file of %d bytes is smaller than the header", len(data))
	}

	h := readHeader(data)
	if h.Magic != Magic {
		return h, newCorruptHeaderError(path, "bad magic %#x", h.Magic)
	}
	if h.Capacity != fileSize {
		return h, newCorruptHeaderError(path, "stored capacity %d does not match file size %d", h.Capacity, fileSize)
	}
	return h, nil
}

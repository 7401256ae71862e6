package store

import (
	"encoding/binary"

	"github.com/marmos91/dittolog/internal/logger"
)

// recoverCursor rebuilds the write cursor of an existing store by walking
// the records from HeaderSize.
//
// Payloads are never empty, so a zero length field marks the first byte
// that was never written. A length whose record would run past the end of
// the mapping means the file is corrupt.
func recoverCursor(data []byte, path string) (cursor uint64, records int, err error) {
	capacity := uint64(len(data))
	cursor = HeaderSize

	for cursor+LengthFieldSize <= capacity {
		length := binary.LittleEndian.Uint64(data[cursor:])
		if length == 0 {
			break
		}
		if length > capacity-cursor-LengthFieldSize {
			return 0, 0, newCorruptRecordError(path, cursor, length)
		}
		cursor += LengthFieldSize + length
		records++
	}

	logger.Debug("Store cursor recovered",
		logger.KeyPath, path,
		logger.KeyCursor, cursor,
		logger.KeyRecords, records)

	return cursor, records, nil
}

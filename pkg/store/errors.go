package store

import (
	"errors"
	"fmt"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrCodeIO indicates a file creation, resize, stat or flush failure.
	ErrCodeIO ErrorCode = iota + 1

	// ErrCodeMapping indicates the region could not be mapped or unmapped.
	ErrCodeMapping

	// ErrCodeCorruptHeader indicates a magic or capacity mismatch on an
	// existing file.
	ErrCodeCorruptHeader

	// ErrCodeCorruptRecord indicates a record length field that runs past
	// the end of the store.
	ErrCodeCorruptRecord

	// ErrCodeCapacityExceeded indicates a write would not fit in the
	// remaining capacity. The store is left unmodified.
	ErrCodeCapacityExceeded

	// ErrCodeInvalidArgument indicates malformed call parameters.
	ErrCodeInvalidArgument

	// ErrCodeInvalidState indicates an operation invoked outside the Open state.
	ErrCodeInvalidState

	// ErrCodeNotFound indicates the store file does not exist.
	ErrCodeNotFound

	// ErrCodeAlreadyExists indicates the store file exists and FlagExclusive
	// was requested.
	ErrCodeAlreadyExists
)

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeIO:
		return "IOError"
	case ErrCodeMapping:
		return "MappingError"
	case ErrCodeCorruptHeader:
		return "CorruptHeader"
	case ErrCodeCorruptRecord:
		return "CorruptRecord"
	case ErrCodeCapacityExceeded:
		return "CapacityExceeded"
	case ErrCodeInvalidArgument:
		return "InvalidArgument"
	case ErrCodeInvalidState:
		return "InvalidState"
	case ErrCodeNotFound:
		return "NotFound"
	case ErrCodeAlreadyExists:
		return "AlreadyExists"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// StoreError is the error type returned by every store operation.
//
// Two StoreErrors match under errors.Is when their codes are equal, so
// callers test against the sentinels below:
//
//	if errors.Is(err, store.ErrCapacityExceeded) {
//	    // rotate to a new store
//	}
type StoreError struct {
	Code    ErrorCode
	Message string
	Path    string
	Err     error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s (path: %s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying OS error, if any.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a StoreError with the same code.
func (e *StoreError) Is(target error) bool {
	var t *StoreError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrIO               = &StoreError{Code: ErrCodeIO, Message: "i/o failure"}
	ErrMapping          = &StoreError{Code: ErrCodeMapping, Message: "mapping failure"}
	ErrCorruptHeader    = &StoreError{Code: ErrCodeCorruptHeader, Message: "corrupt header"}
	ErrCorruptRecord    = &StoreError{Code: ErrCodeCorruptRecord, Message: "corrupt record"}
	ErrCapacityExceeded = &StoreError{Code: ErrCodeCapacityExceeded, Message: "capacity exceeded"}
	ErrInvalidArgument  = &StoreError{Code: ErrCodeInvalidArgument, Message: "invalid argument"}
	ErrInvalidState     = &StoreError{Code: ErrCodeInvalidState, Message: "invalid state"}
	ErrNotFound         = &StoreError{Code: ErrCodeNotFound, Message: "store not found"}
	ErrAlreadyExists    = &StoreError{Code: ErrCodeAlreadyExists, Message: "store already exists"}

	// ErrClosed is returned by Cursor, Write and Sync after Close.
	ErrClosed = &StoreError{Code: ErrCodeInvalidState, Message: "store is closed"}

	// ErrNotOpen is returned by Cursor, Write, Sync and Inspect on a store
	// that was never opened (a zero MmapStore).
	ErrNotOpen = &StoreError{Code: ErrCodeInvalidState, Message: "store is not open"}
)

// ============================================================================
// Factory Functions
// ============================================================================

func newIOError(path, op string, err error) *StoreError {
	return &StoreError{Code: ErrCodeIO, Message: op, Path: path, Err: err}
}

func newMappingError(path, op string, err error) *StoreError {
	return &StoreError{Code: ErrCodeMapping, Message: op, Path: path, Err: err}
}

func newCorruptHeaderError(path, format string, args ...any) *StoreError {
	return &StoreError{Code: ErrCodeCorruptHeader, Message: fmt.Sprintf(format, args...), Path: path}
}

func newCorruptRecordError(path string, offset, length uint64) *StoreError {
	return &StoreError{
		Code:    ErrCodeCorruptRecord,
		Message: fmt.Sprintf("record at offset %d with length %d runs past capacity", offset, length),
		Path:    path,
	}
}

func newInvalidArgumentError(format string, args ...any) *StoreError {
	return &StoreError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func newCapacityExceededError(path string, cursor, needed, capacity uint64) *StoreError {
	return &StoreError{
		Code:    ErrCodeCapacityExceeded,
		Message: fmt.Sprintf("write of %d bytes at cursor %d exceeds capacity %d", needed, cursor, capacity),
		Path:    path,
	}
}

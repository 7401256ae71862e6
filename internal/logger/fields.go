package logger

import (
	"log/slog"
	"time"
)

// Standard field keys for structured logging. Use these consistently so
// log lines can be aggregated and queried by key.
const (
	// Tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"
	KeyRunID   = "run_id" // Correlates all lines from one CLI invocation

	// Store
	KeyPath       = "path"        // Store file path
	KeyCapacity   = "capacity"    // Store capacity in bytes
	KeyFlags      = "flags"       // Open flags
	KeyOffset     = "offset"      // Record offset (position of its length field)
	KeyCursor     = "cursor"      // Write cursor
	KeySyncCursor = "sync_cursor" // Sync cursor after a flush
	KeyRecordSize = "record_size" // Payload length of one record
	KeyRecords    = "records"     // Number of records

	// I/O
	KeyBytesWritten = "bytes_written"
	KeyBytesFlushed = "bytes_flushed"
	KeyCount        = "count"

	// Backup
	KeyBucket = "bucket"
	KeyKey    = "key"
	KeyRegion = "region"

	// Operation metadata
	KeyCommand    = "command"
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
	KeyAddress    = "address"
)

// Type-safe attribute constructors.

// TraceID returns a slog.Attr for an OpenTelemetry trace ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for an OpenTelemetry span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Path returns a slog.Attr for a store path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Capacity returns a slog.Attr for a capacity in bytes.
func Capacity(n uint64) slog.Attr {
	return slog.Uint64(KeyCapacity, n)
}

// Offset returns a slog.Attr for a record offset.
func Offset(off uint64) slog.Attr {
	return slog.Uint64(KeyOffset, off)
}

// Cursor returns a slog.Attr for a write cursor.
func Cursor(c uint64) slog.Attr {
	return slog.Uint64(KeyCursor, c)
}

// RecordSize returns a slog.Attr for a payload length.
func RecordSize(n int) slog.Attr {
	return slog.Int(KeyRecordSize, n)
}

// Records returns a slog.Attr for a record count.
func Records(n int) slog.Attr {
	return slog.Int(KeyRecords, n)
}

// BytesFlushed returns a slog.Attr for bytes made durable by a sync.
func BytesFlushed(n uint64) slog.Attr {
	return slog.Uint64(KeyBytesFlushed, n)
}

// Command returns a slog.Attr for a CLI command name.
func Command(name string) slog.Attr {
	return slog.String(KeyCommand, name)
}

// DurationMs returns a slog.Attr for an elapsed duration in milliseconds.
func DurationMs(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMs, float64(d.Microseconds())/1000.0)
}

// Err returns a slog.Attr for an error. A nil error yields an empty Attr,
// which handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

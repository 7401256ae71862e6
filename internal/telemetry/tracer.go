package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys for store operations.
const (
	AttrStorePath    = "store.path"
	AttrCapacity     = "store.capacity"
	AttrFlags        = "store.flags"
	AttrOffset       = "store.offset"
	AttrCursor       = "store.cursor"
	AttrRecordSize   = "store.record_size"
	AttrRecords      = "store.records"
	AttrBytesFlushed = "store.bytes_flushed"
	AttrBucket       = "backup.bucket"
	AttrKey          = "backup.key"
	AttrCommand      = "cli.command"
)

func StorePath(p string) attribute.KeyValue {
	return attribute.String(AttrStorePath, p)
}

func Capacity(n uint64) attribute.KeyValue {
	return attribute.Int64(AttrCapacity, int64(n))
}

func Flags(f string) attribute.KeyValue {
	return attribute.String(AttrFlags, f)
}

func Offset(off uint64) attribute.KeyValue {
	return attribute.Int64(AttrOffset, int64(off))
}

func Cursor(c uint64) attribute.KeyValue {
	return attribute.Int64(AttrCursor, int64(c))
}

func RecordSize(n int) attribute.KeyValue {
	return attribute.Int(AttrRecordSize, n)
}

func Records(n int) attribute.KeyValue {
	return attribute.Int(AttrRecords, n)
}

func BytesFlushed(n uint64) attribute.KeyValue {
	return attribute.Int64(AttrBytesFlushed, int64(n))
}

func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

func Key(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

func Command(name string) attribute.KeyValue {
	return attribute.String(AttrCommand, name)
}

// StartStoreSpan starts a span named "store.<operation>" tagged with the
// store path.
func StartStoreSpan(ctx context.Context, operation, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := make([]attribute.KeyValue, 0, len(attrs)+1)
	all = append(all, StorePath(path))
	all = append(all, attrs...)
	return StartSpan(ctx, "store."+operation, trace.WithAttributes(all...))
}

// StartCommandSpan starts the root span of one CLI command.
func StartCommandSpan(ctx context.Context, command string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := make([]attribute.KeyValue, 0, len(attrs)+1)
	all = append(all, Command(command))
	all = append(all, attrs...)
	return StartSpan(ctx, "cli."+command, trace.WithAttributes(all...), trace.WithSpanKind(trace.SpanKindInternal))
}

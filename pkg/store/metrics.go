package store

import "time"

// Metrics receives store observations.
//
// A nil Metrics is valid and costs nothing; the Prometheus implementation
// lives in pkg/metrics/prometheus.
type Metrics interface {
	// ObserveWrite records one successful Write of bytes payload bytes.
	ObserveWrite(bytes int, duration time.Duration)

	// ObserveSync records one Sync that made bytes newly durable.
	ObserveSync(bytes uint64, duration time.Duration)

	// RecordCursors publishes the current cursor positions.
	RecordCursors(write, sync, capacity uint64)

	// RecordCapacityExceeded counts writes rejected for lack of space.
	RecordCapacityExceeded()
}

func observeWrite(m Metrics, bytes int, start time.Time) {
	if m != nil {
		m.ObserveWrite(bytes, time.Since(start))
	}
}

func observeSync(m Metrics, bytes uint64, start time.Time) {
	if m != nil {
		m.ObserveSync(bytes, time.Since(start))
	}
}

func recordCursors(m Metrics, c *cursors) {
	if m != nil {
		m.RecordCursors(c.current(), c.sync, c.capacity)
	}
}

func recordCapacityExceeded(m Metrics) {
	if m != nil {
		m.RecordCapacityExceeded()
	}
}

// Package flusher syncs a record store in the background.
package flusher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/marmos91/dittolog/internal/logger"
	"github.com/marmos91/dittolog/pkg/store"
)

// Syncer calls Sync on a store at a fixed interval, and once more when
// stopped so nothing written before Stop is left pending.
type Syncer struct {
	store    store.Store
	interval time.Duration

	stopOnce  sync.Once
	stopCh    chan struct{}
	stoppedCh chan struct{}
	started   bool // tracks whether Start() was called

	mu        sync.Mutex
	stats     Stats
	lastError error
}

// Config holds configuration for the syncer.
type Config struct {
	// Interval between syncs.
	// Default: 1s
	Interval time.Duration
}

// Stats counts syncer activity.
type Stats struct {
	Syncs   int    // syncs that flushed at least one byte
	Idle    int    // syncs with nothing pending
	Failed  int    // syncs that returned an error
	Flushed uint64 // bytes made durable

	LastErrorAt time.Time
}

// DefaultConfig returns a one-second interval.
func DefaultConfig() Config {
	return Config{Interval: time.Second}
}

// New creates a stopped syncer for s.
func New(s store.Store, cfg Config) *Syncer {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}

	return &Syncer{
		store:     s,
		interval:  cfg.Interval,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start launches the sync loop. Calling Start again is a no-op. The loop
// exits without a final sync if ctx is cancelled.
func (b *Syncer) Start(ctx context.Context) {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	logger.Debug("Starting background syncer", "interval", b.interval)
	go b.run(ctx)
}

// Stop signals the loop, which runs a final sync and exits. It returns an
// error if the loop has not exited within timeout.
func (b *Syncer) Stop(timeout time.Duration) error {
	b.mu.Lock()
	started := b.started
	b.mu.Unlock()
	if !started {
		return nil
	}

	b.stopOnce.Do(func() { close(b.stopCh) })

	select {
	case <-b.stoppedCh:
		s := b.Stats()
		logger.Debug("Background syncer stopped",
			"syncs", s.Syncs,
			logger.KeyBytesFlushed, s.Flushed)
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("background syncer did not stop within %s", timeout)
	}
}

// Stats returns a snapshot of the counters.
func (b *Syncer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// LastError returns the most recent sync error, or nil.
func (b *Syncer) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastError
}

func (b *Syncer) run(ctx context.Context) {
	defer close(b.stoppedCh)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCh:
			b.syncOnce()
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if closed := b.syncOnce(); closed {
				return
			}
		}
	}
}

// syncOnce runs one Sync and reports whether the store has been closed.
func (b *Syncer) syncOnce() (closed bool) {
	n, err := b.store.Sync()

	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case err != nil:
		b.stats.Failed++
		b.lastError = err
		b.stats.LastErrorAt = time.Now()
		if errors.Is(err, store.ErrClosed) {
			logger.Debug("Background syncer found store closed")
			return true
		}
		logger.Error("Background sync failed", logger.KeyError, err)
	case n == 0:
		b.stats.Idle++
	default:
		b.stats.Syncs++
		b.stats.Flushed += n
	}
	return false
}

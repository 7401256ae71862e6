package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/dittolog/internal/bytesize"
	"github.com/marmos91/dittolog/internal/cli/output"
	"github.com/marmos91/dittolog/internal/logger"
	"github.com/marmos91/dittolog/internal/telemetry"
	"github.com/marmos91/dittolog/pkg/flusher"
	"github.com/marmos91/dittolog/pkg/metrics"
	"github.com/marmos91/dittolog/pkg/store"
	"github.com/spf13/cobra"
)

// maxBenchSize is the largest accepted --size.
const maxBenchSize = 1 << 30

var (
	benchCount     int
	benchSize      string
	benchSyncEvery int
	benchInterval  time.Duration
	benchWorkers   int
	benchOutput    string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure append and sync throughput",
	Long: `Append --count records of --size bytes to the configured store and report
throughput. The store is created if it does not exist.

Each payload starts with a random UUID. With --sync-every K the store is
synced after every K records and once more at the end. --sync-interval
adds a background syncer that flushes on a timer while writers run.
The run stops early, without failing, when the store fills up.

When metrics.enabled is set the Prometheus endpoint is served on
metrics.port for the duration of the run.

Examples:
  dittolog bench --count 100000 --size 1Ki
  dittolog bench --count 10000 --size 4Ki --sync-every 100 --workers 4`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchCount, "count", 10000, "Number of records to append")
	benchCmd.Flags().StringVar(&benchSize, "size", "256", "Payload size per record (e.g. 256, 4Ki, 1Mi)")
	benchCmd.Flags().IntVar(&benchSyncEvery, "sync-every", 0, "Sync after every N records (0: only at the end)")
	benchCmd.Flags().DurationVar(&benchInterval, "sync-interval", 0, "Also sync in the background at this interval (0: disabled)")
	benchCmd.Flags().IntVar(&benchWorkers, "workers", 1, "Number of concurrent writers")
	benchCmd.Flags().StringVarP(&benchOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// benchResult summarizes one bench run.
type benchResult struct {
	Records          uint64  `json:"records" yaml:"records"`
	PayloadBytes     uint64  `json:"payload_bytes" yaml:"payload_bytes"`
	Syncs            uint64  `json:"syncs" yaml:"syncs"`
	BackgroundSyncs  uint64  `json:"background_syncs" yaml:"background_syncs"`
	SyncedBytes      uint64  `json:"synced_bytes" yaml:"synced_bytes"`
	DurationMs       float64 `json:"duration_ms" yaml:"duration_ms"`
	RecordsPerSec    float64 `json:"records_per_sec" yaml:"records_per_sec"`
	MiBPerSec        float64 `json:"mib_per_sec" yaml:"mib_per_sec"`
	CapacityExceeded bool    `json:"capacity_exceeded" yaml:"capacity_exceeded"`
	Cursor           uint64  `json:"cursor" yaml:"cursor"`
}

func (r benchResult) Headers() []string {
	return []string{"Metric", "Value"}
}

func (r benchResult) Rows() [][]string {
	return [][]string{
		{"Records", strconv.FormatUint(r.Records, 10)},
		{"Payload", bytesize.ByteSize(r.PayloadBytes).Human()},
		{"Syncs", strconv.FormatUint(r.Syncs, 10)},
		{"Background syncs", strconv.FormatUint(r.BackgroundSyncs, 10)},
		{"Synced", bytesize.ByteSize(r.SyncedBytes).Human()},
		{"Duration", fmt.Sprintf("%.1fms", r.DurationMs)},
		{"Records/s", fmt.Sprintf("%.0f", r.RecordsPerSec)},
		{"Throughput", fmt.Sprintf("%.2f MiB/s", r.MiBPerSec)},
		{"Store full", strconv.FormatBool(r.CapacityExceeded)},
		{"Cursor", strconv.FormatUint(r.Cursor, 10)},
	}
}

// benchOptions is the validated form of the bench flags.
type benchOptions struct {
	count     int
	size      int
	syncEvery int
	interval  time.Duration
	workers   int
}

func parseBenchOptions() (benchOptions, error) {
	size, err := bytesize.Parse(benchSize)
	if err != nil {
		return benchOptions{}, fmt.Errorf("invalid --size: %w", err)
	}
	switch {
	case benchCount <= 0:
		return benchOptions{}, fmt.Errorf("--count must be positive")
	case size == 0:
		return benchOptions{}, fmt.Errorf("--size must be positive")
	case size > maxBenchSize:
		return benchOptions{}, fmt.Errorf("--size %s is too large", size.Human())
	case benchSyncEvery < 0:
		return benchOptions{}, fmt.Errorf("--sync-every must not be negative")
	case benchInterval < 0:
		return benchOptions{}, fmt.Errorf("--sync-interval must not be negative")
	case benchWorkers <= 0:
		return benchOptions{}, fmt.Errorf("--workers must be positive")
	}
	return benchOptions{
		count:     benchCount,
		size:      int(size),
		syncEvery: benchSyncEvery,
		interval:  benchInterval,
		workers:   min(benchWorkers, benchCount),
	}, nil
}

func runBench(cmd *cobra.Command, args []string) (err error) {
	format, err := output.ParseFormat(benchOutput)
	if err != nil {
		return err
	}
	opts, err := parseBenchOptions()
	if err != nil {
		return err
	}

	sess, err := newSession(cmd, "bench")
	if err != nil {
		return err
	}
	defer func() { sess.close(err) }()

	if sess.cfg.Metrics.Enabled {
		srv, err := metrics.NewServer(sess.cfg.Metrics.Port)
		if err != nil {
			return err
		}
		if err := srv.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		sess.closers = append(sess.closers, srv.Stop)
		logger.InfoCtx(sess.ctx, "Metrics server listening", logger.KeyAddress, fmt.Sprintf(":%d", srv.Port()))
	}

	st, err := sess.createStore()
	if err != nil {
		return err
	}
	defer closeStore(st, &err)

	ctx, span := telemetry.StartStoreSpan(sess.ctx, "bench", st.Path(),
		telemetry.Records(opts.count),
		telemetry.RecordSize(opts.size))
	defer span.End()

	result, err := runBenchLoop(ctx, st, opts)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return err
	}

	telemetry.SetAttributes(ctx,
		telemetry.Cursor(result.Cursor),
		telemetry.BytesFlushed(result.SyncedBytes))
	logger.InfoCtx(ctx, "Bench finished",
		logger.KeyRecords, result.Records,
		logger.KeyBytesWritten, result.PayloadBytes,
		logger.KeyDurationMs, result.DurationMs)

	return output.NewPrinter(cmd.OutOrStdout(), format).Print(result)
}

// runBenchLoop spreads opts.count writes over opts.workers goroutines.
func runBenchLoop(ctx context.Context, st store.Store, opts benchOptions) (benchResult, error) {
	var (
		written  atomic.Uint64
		syncs    atomic.Uint64
		synced   atomic.Uint64
		full     atomic.Bool
		firstErr error
		errOnce  sync.Once
		wg       sync.WaitGroup
	)
	fail := func(err error) {
		errOnce.Do(func() { firstErr = err })
		full.Store(true)
	}
	doSync := func() {
		n, err := st.Sync()
		if err != nil {
			fail(err)
			return
		}
		if n > 0 {
			syncs.Add(1)
			synced.Add(n)
		}
	}

	var syncer *flusher.Syncer
	if opts.interval > 0 {
		syncer = flusher.New(st, flusher.Config{Interval: opts.interval})
		syncer.Start(ctx)
	}

	start := time.Now()
	per, extra := opts.count/opts.workers, opts.count%opts.workers
	for w := 0; w < opts.workers; w++ {
		n := per
		if w < extra {
			n++
		}
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			payload := make([]byte, opts.size)
			for i := range payload {
				payload[i] = byte('a' + i%26)
			}
			for i := 0; i < n && !full.Load(); i++ {
				id := uuid.New()
				copy(payload, id[:])
				if _, err := st.Write(payload); err != nil {
					if errors.Is(err, store.ErrCapacityExceeded) {
						full.Store(true)
						return
					}
					fail(err)
					return
				}
				total := written.Add(1)
				if opts.syncEvery > 0 && total%uint64(opts.syncEvery) == 0 {
					doSync()
				}
			}
		}(n)
	}
	wg.Wait()

	var background flusher.Stats
	if syncer != nil {
		if err := syncer.Stop(5 * time.Second); err != nil {
			return benchResult{}, err
		}
		background = syncer.Stats()
	}

	if firstErr != nil {
		return benchResult{}, firstErr
	}
	doSync()
	if firstErr != nil {
		return benchResult{}, firstErr
	}
	elapsed := time.Since(start)

	cursor, err := st.Cursor()
	if err != nil {
		return benchResult{}, err
	}

	records := written.Load()
	payloadBytes := records * uint64(opts.size)
	secs := elapsed.Seconds()
	result := benchResult{
		Records:          records,
		PayloadBytes:     payloadBytes,
		Syncs:            syncs.Load(),
		BackgroundSyncs:  uint64(background.Syncs),
		SyncedBytes:      synced.Load() + background.Flushed,
		DurationMs:       float64(elapsed.Microseconds()) / 1000,
		CapacityExceeded: records < uint64(opts.count),
		Cursor:           cursor,
	}
	if secs > 0 {
		result.RecordsPerSec = float64(records) / secs
		result.MiBPerSec = float64(payloadBytes) / secs / (1 << 20)
	}
	return result, nil
}

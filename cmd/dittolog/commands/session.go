package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/marmos91/dittolog/internal/logger"
	"github.com/marmos91/dittolog/internal/telemetry"
	"github.com/marmos91/dittolog/pkg/config"
	"github.com/marmos91/dittolog/pkg/metrics"
	"github.com/marmos91/dittolog/pkg/store"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
)

// session is the per-invocation runtime of a store command: configuration,
// logger, tracing and profiling, plus a context carrying the run id.
type session struct {
	cfg     *config.Config
	ctx     context.Context
	span    trace.Span
	closers []func(context.Context) error
}

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// newSession loads the configuration and starts the ambient services for
// command name. A missing default config file falls back to defaults.
func newSession(cmd *cobra.Command, name string) (*session, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, err
	}
	if err := InitLogger(cfg); err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s := &session{cfg: cfg, ctx: ctx}

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "dittolog",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	s.closers = append(s.closers, telemetryShutdown)

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "dittolog",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		s.close(nil)
		return nil, fmt.Errorf("failed to initialize profiling: %w", err)
	}
	s.closers = append(s.closers, func(context.Context) error { return profilingShutdown() })

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	storePath := cfg.Store.Path()
	ctx, s.span = telemetry.StartCommandSpan(ctx, name, telemetry.StorePath(storePath))

	lc := logger.NewLogContext(uuid.NewString(), name).
		WithStore(storePath).
		WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
	s.ctx = logger.WithContext(ctx, lc)

	logger.DebugCtx(s.ctx, "Command started")
	return s, nil
}

// close ends the command span and stops the ambient services in reverse
// start order. err, when set, is recorded on the span.
func (s *session) close(err error) {
	if s.span != nil {
		if err != nil {
			telemetry.RecordError(s.ctx, err)
		}
		s.span.End()
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	for i := len(s.closers) - 1; i >= 0; i-- {
		if cerr := s.closers[i](ctx); cerr != nil {
			logger.Warn("Shutdown error", logger.KeyError, cerr)
		}
	}

	logger.DebugCtx(s.ctx, "Command finished",
		logger.KeyDurationMs, logger.FromContext(s.ctx).DurationMs())
}

// createStore creates the configured store, or validates and reopens it
// when the file already holds one.
func (s *session) createStore() (*store.MmapStore, error) {
	return s.openStore("create", true)
}

// openExistingStore opens the configured store. The file must exist.
func (s *session) openExistingStore() (*store.MmapStore, error) {
	return s.openStore("open", false)
}

func (s *session) openStore(op string, create bool) (*store.MmapStore, error) {
	sc := s.cfg.Store
	flags := sc.StoreFlags()

	ctx, span := telemetry.StartStoreSpan(s.ctx, op, sc.Path(),
		telemetry.Capacity(sc.Capacity.Uint64()),
		telemetry.Flags(flags.String()))
	defer span.End()

	opts := []store.Option{store.WithMetrics(metrics.NewStoreMetrics())}

	var (
		st  *store.MmapStore
		err error
	)
	if create {
		st, err = store.Create(sc.Capacity.Uint64(), sc.Directory, sc.Filename, flags, opts...)
	} else {
		st, err = store.Open(sc.Directory, sc.Filename, flags, opts...)
	}
	if err != nil {
		telemetry.RecordError(ctx, err)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w\n\nCreate the store first:\n  dittolog create", err)
		}
		return nil, err
	}

	if cursor, cerr := st.Cursor(); cerr == nil {
		telemetry.SetAttributes(ctx, telemetry.Cursor(cursor))
	}
	return st, nil
}

// closeStore closes st and folds a close failure into err.
func closeStore(st store.Store, err *error) {
	if cerr := st.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("failed to close store: %w", cerr)
	}
}

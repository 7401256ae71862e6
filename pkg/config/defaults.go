package config

import (
	"strings"
	"time"

	"github.com/marmos91/dittolog/internal/bytesize"
)

const (
	DefaultStoreDirectory = "./data"
	DefaultStoreFilename  = "dittolog.store"
	DefaultStoreCapacity  = 64 * bytesize.MiB
	DefaultMetricsPort    = 9090
)

// ApplyDefaults fills zero-valued fields with defaults. Explicit values are
// kept.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyStoreDefaults(&cfg.Store)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// Port only defaults when metrics are on, so a disabled section stays empty.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = DefaultMetricsPort
	}
}

func applyStoreDefaults(cfg *StoreConfig) {
	if cfg.Directory == "" {
		cfg.Directory = DefaultStoreDirectory
	}
	if cfg.Filename == "" {
		cfg.Filename = DefaultStoreFilename
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = DefaultStoreCapacity
	}
}

// GetDefaultConfig returns a Config with all defaults applied. Used by
// `dittolog init` and tests.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Telemetry: TelemetryConfig{Insecure: true},
		Store:     StoreConfig{SyncOnClose: true},
	}
	ApplyDefaults(cfg)
	return cfg
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marmos91/dittolog/internal/bytesize"
	"github.com/marmos91/dittolog/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("AppliesDefaultsToPartialFile", func(t *testing.T) {
		path := writeConfig(t, `
logging:
  level: debug
store:
  directory: /var/lib/dittolog
  capacity: 128Mi
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "DEBUG", cfg.Logging.Level)
		assert.Equal(t, "text", cfg.Logging.Format)
		assert.Equal(t, "stderr", cfg.Logging.Output)
		assert.Equal(t, "/var/lib/dittolog", cfg.Store.Directory)
		assert.Equal(t, DefaultStoreFilename, cfg.Store.Filename)
		assert.Equal(t, 128*bytesize.MiB, cfg.Store.Capacity)
		assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
		assert.Equal(t, 1.0, cfg.Telemetry.SampleRate)
	})

	t.Run("ParsesAllSections", func(t *testing.T) {
		path := writeConfig(t, `
logging:
  level: WARN
  format: json
  output: stdout
telemetry:
  enabled: true
  endpoint: collector:4317
  sample_rate: 0.25
  profiling:
    enabled: true
    endpoint: http://pyroscope:4040
    profile_types: [cpu, goroutines]
metrics:
  enabled: true
store:
  directory: /data
  filename: events.log
  capacity: 1Gi
  exclusive: true
  sync_on_close: true
  full_sync: true
backup:
  bucket: logs
  region: eu-west-1
  key_prefix: nightly/
shutdown_timeout: 5s
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "json", cfg.Logging.Format)
		assert.True(t, cfg.Telemetry.Enabled)
		assert.Equal(t, 0.25, cfg.Telemetry.SampleRate)
		assert.Equal(t, []string{"cpu", "goroutines"}, cfg.Telemetry.Profiling.ProfileTypes)
		assert.Equal(t, DefaultMetricsPort, cfg.Metrics.Port)
		assert.Equal(t, bytesize.GiB, cfg.Store.Capacity)
		assert.Equal(t, filepath.Join("/data", "events.log"), cfg.Store.Path())
		assert.Equal(t, store.FlagExclusive|store.FlagSyncOnClose|store.FlagFullSync, cfg.Store.StoreFlags())
		assert.Equal(t, "logs", cfg.Backup.Bucket)
		assert.Equal(t, "nightly/", cfg.Backup.KeyPrefix)
		assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("PlainNumberCapacity", func(t *testing.T) {
		path := writeConfig(t, "store:\n  capacity: 4096\n")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, bytesize.ByteSize(4096), cfg.Store.Capacity)
	})

	t.Run("MissingFileUsesDefaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultStoreCapacity, cfg.Store.Capacity)
		assert.True(t, cfg.Store.SyncOnClose)
	})

	t.Run("EnvironmentOverridesFile", func(t *testing.T) {
		path := writeConfig(t, "store:\n  capacity: 1Mi\n")
		t.Setenv("DITTOLOG_STORE_CAPACITY", "2Mi")
		t.Setenv("DITTOLOG_LOGGING_LEVEL", "error")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 2*bytesize.MiB, cfg.Store.Capacity)
		assert.Equal(t, "ERROR", cfg.Logging.Level)
	})

	t.Run("EnvironmentWithoutFile", func(t *testing.T) {
		t.Setenv("DITTOLOG_STORE_FILENAME", "env.log")

		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "env.log", cfg.Store.Filename)
	})

	t.Run("RejectsInvalidValues", func(t *testing.T) {
		cases := map[string]string{
			"BadLevel":       "logging:\n  level: LOUD\n",
			"BadFormat":      "logging:\n  format: xml\n",
			"TinyCapacity":   "store:\n  capacity: 8\n",
			"BadCapacity":    "store:\n  capacity: lots\n",
			"NestedFilename": "store:\n  filename: a/b.log\n",
			"BadSampleRate":  "telemetry:\n  sample_rate: 2\n",
			"BadPort":        "metrics:\n  enabled: true\n  port: 70000\n",
			"BadProfileType": "telemetry:\n  profiling:\n    profile_types: [gpu]\n",
			"BucketNoRegion": "backup:\n  bucket: logs\n",
		}
		for name, content := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := Load(writeConfig(t, content))
				assert.Error(t, err)
			})
		}
	})

	t.Run("MalformedYAML", func(t *testing.T) {
		_, err := Load(writeConfig(t, "store: [unclosed"))
		assert.Error(t, err)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("MissingExplicitFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope.yaml")
		_, err := MustLoad(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dittolog init --config "+path)
	})

	t.Run("MissingDefaultFile", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		_, err := MustLoad("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dittolog init")
	})

	t.Run("DefaultLocation", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", xdg)
		require.NoError(t, SaveConfig(GetDefaultConfig(), GetDefaultConfigPath()))

		assert.True(t, DefaultConfigExists())
		assert.Equal(t, filepath.Join(xdg, "dittolog"), GetConfigDir())

		cfg, err := MustLoad("")
		require.NoError(t, err)
		assert.Equal(t, DefaultStoreFilename, cfg.Store.Filename)
	})
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Store.Capacity = 3 * bytesize.MiB
	cfg.Store.FullSync = true
	cfg.Backup.Bucket = "logs"
	cfg.Backup.Region = "us-east-1"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "capacity: 3Mi")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	require.NoError(t, Validate(cfg))
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, DefaultStoreCapacity, cfg.Store.Capacity)
	assert.Equal(t, store.FlagSyncOnClose, cfg.Store.StoreFlags())
	assert.False(t, cfg.Metrics.Enabled)
	assert.Zero(t, cfg.Metrics.Port)
	assert.Len(t, cfg.Telemetry.Profiling.ProfileTypes, 6)
}

func TestValidate(t *testing.T) {
	t.Run("ReportsFieldPath", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Store.Capacity = 4

		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Store.Capacity")
		assert.Contains(t, err.Error(), "gte=16")
	})

	t.Run("MetricsPortRequiredWhenEnabled", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Metrics.Enabled = true

		assert.Error(t, Validate(cfg))
	})

	t.Run("BackupNeedsBucket", func(t *testing.T) {
		cfg := GetDefaultConfig()
		assert.Error(t, ValidateBackup(cfg))

		cfg.Backup.Bucket = "logs"
		assert.NoError(t, ValidateBackup(cfg))
	})

	t.Run("EndpointWithoutRegion", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Backup.Bucket = "logs"
		cfg.Backup.Endpoint = "http://localhost:9000"

		assert.NoError(t, Validate(cfg))
	})
}

func TestStoreFlags(t *testing.T) {
	var c StoreConfig
	assert.Equal(t, store.FlagNone, c.StoreFlags())

	c.Exclusive = true
	assert.Equal(t, store.FlagExclusive, c.StoreFlags())
}

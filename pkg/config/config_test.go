package config

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/quasar/pkg/errors"
	"github.com/ajitpratap0/quasar/pkg/testutil"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Encoding)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9090", cfg.Metrics.Listen)
	assert.Equal(t, math.MaxUint32, cfg.Load.Limit)
	assert.Equal(t, ',', cfg.Source.Delimiter())

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad encoding", func(c *Config) { c.Logging.Encoding = "xml" }},
		{"metrics without listen", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Listen = ""
		}},
		{"zero limit", func(c *Config) { c.Load.Limit = 0 }},
		{"negative limit", func(c *Config) { c.Load.Limit = -1 }},
		{"negative offset", func(c *Config) { c.Load.Offset = -5 }},
		{"bad format", func(c *Config) { c.Source.Format = "parquet" }},
		{"bad compression", func(c *Config) { c.Source.Compression = "brotli" }},
		{"multi-rune delimiter", func(c *Config) { c.Source.CSVDelimiter = "||" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}

	t.Run("accepts every format and compression", func(t *testing.T) {
		for _, f := range []string{"", "csv", "json", "avro", "arrow"} {
			cfg := New()
			cfg.Source.Format = f
			require.NoError(t, cfg.Validate(), "format %q", f)
		}
		for _, comp := range []string{"", "none", "gzip", "snappy", "s2", "zstd", "lz4", "deflate"} {
			cfg := New()
			cfg.Source.Compression = comp
			require.NoError(t, cfg.Validate(), "compression %q", comp)
		}
	})
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := testutil.WriteFile(t, "quasar.yaml", []byte(`
logging:
  level: debug
load:
  index: id
  update: true
`))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	// Keys from the file
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "id", cfg.Load.Index)
	assert.True(t, cfg.Load.Update)

	// Keys the file never mentions keep their defaults
	assert.Equal(t, "json", cfg.Logging.Encoding)
	assert.Equal(t, math.MaxUint32, cfg.Load.Limit)
	assert.Equal(t, ":9090", cfg.Metrics.Listen)
}

func TestLoadSubstitutesEnvVars(t *testing.T) {
	t.Setenv("QUASAR_TEST_LEVEL", "warn")
	t.Setenv("QUASAR_TEST_ADDR", ":2112")

	path := testutil.WriteFile(t, "quasar.yaml", []byte(`
logging:
  level: ${QUASAR_TEST_LEVEL}
metrics:
  enabled: true
  listen: "${QUASAR_TEST_ADDR}"
`))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, ":2112", cfg.Metrics.Listen)
}

func TestLoadUnsetEnvVarFailsValidation(t *testing.T) {
	// An unset variable substitutes to the empty string, which the level
	// check then rejects.
	path := testutil.WriteFile(t, "quasar.yaml",
		[]byte("logging:\n  level: ${QUASAR_TEST_LEVEL_UNSET_7163}\n"))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestLoadFileErrors(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := LoadFile("")
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := testutil.WriteFile(t, "bad.yaml", []byte("logging: [unclosed"))
		_, err := LoadFile(path)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		path := testutil.WriteFile(t, "invalid.yaml", []byte("load:\n  limit: 0\n"))
		_, err := LoadFile(path)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := New()
	cfg.Logging.Level = "error"
	cfg.Logging.Encoding = "console"
	cfg.Load.Index = "row_id"
	cfg.Load.Offset = 100
	cfg.Source.Format = "csv"
	cfg.Source.CSVDelimiter = ";"

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, Save(path, cfg))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "error", loaded.Logging.Level)
	assert.Equal(t, "console", loaded.Logging.Encoding)
	assert.Equal(t, "row_id", loaded.Load.Index)
	assert.Equal(t, 100, loaded.Load.Offset)
	assert.Equal(t, "csv", loaded.Source.Format)
	assert.Equal(t, ';', loaded.Source.Delimiter())
}

func TestLoggerConfigMapping(t *testing.T) {
	cfg := New()
	cfg.Logging.Level = "debug"
	cfg.Logging.Encoding = "console"
	cfg.Logging.Development = true
	cfg.Logging.OutputPaths = []string{"stderr"}

	lc := cfg.LoggerConfig()
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "console", lc.Encoding)
	assert.True(t, lc.Development)
	assert.Equal(t, []string{"stderr"}, lc.OutputPaths)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("QUASAR_TEST_A", "alpha")
	t.Setenv("QUASAR_TEST_B", "beta")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single", "x: ${QUASAR_TEST_A}", "x: alpha"},
		{"multiple", "${QUASAR_TEST_A}-${QUASAR_TEST_B}", "alpha-beta"},
		{"unset is empty", "x: ${QUASAR_TEST_NOPE_7163}", "x: "},
		{"no references", "plain text", "plain text"},
		{"unclosed left alone", "x: ${QUASAR_TEST_A", "x: ${QUASAR_TEST_A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, substituteEnvVars(tt.in))
		})
	}
}

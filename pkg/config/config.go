package config

import (
	"math"

	"github.com/ajitpratap0/quasar/pkg/errors"
	"github.com/ajitpratap0/quasar/pkg/logger"
)

// Config is the engine configuration. It covers the knobs the loader and the
// CLI expose, organized into sections:
//   - Logging: level, encoding and output of the zap logger
//   - Metrics: the optional Prometheus listener
//   - Load: defaults for index, offset, limit and update mode
//   - Source: input format and compression overrides
type Config struct {
	// Logging configures the process-wide logger
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Metrics configures the Prometheus exposition endpoint
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Load holds the default fill parameters
	Load LoadConfig `yaml:"load" json:"load"`

	// Source holds input format and compression overrides
	Source SourceConfig `yaml:"source" json:"source"`
}

// LoggingConfig controls the zap logger behind pkg/logger.
type LoggingConfig struct {
	// Level sets logging verbosity (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`
	// Encoding selects the log format (json or console)
	Encoding string `yaml:"encoding" json:"encoding"`
	// Development enables caller annotations and DPanic behavior
	Development bool `yaml:"development" json:"development"`
	// OutputPaths lists log sinks; stdout when empty
	OutputPaths []string `yaml:"output_paths" json:"output_paths"`
}

// MetricsConfig controls the optional metrics listener.
type MetricsConfig struct {
	// Enabled starts an HTTP listener serving /metrics
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Listen is the address the metrics endpoint binds to
	Listen string `yaml:"listen" json:"listen"`
}

// LoadConfig holds the default fill parameters. CLI flags override these
// per invocation.
type LoadConfig struct {
	// Index names the column cloned into the primary and order keys;
	// empty means row positions generate the keys
	Index string `yaml:"index" json:"index"`
	// Offset shifts generated row keys
	Offset int `yaml:"offset" json:"offset"`
	// Limit wraps generated row keys; must be positive
	Limit int `yaml:"limit" json:"limit"`
	// Update fills in update mode, keeping prior cell storage on
	// missing values instead of zeroing it
	Update bool `yaml:"update" json:"update"`
}

// SourceConfig holds input overrides. Empty fields mean the CLI detects
// format and compression from the file extension.
type SourceConfig struct {
	// Format forces the input format (csv, json, avro, arrow)
	Format string `yaml:"format" json:"format"`
	// Compression forces the input compression
	// (none, gzip, snappy, s2, zstd, lz4, deflate)
	Compression string `yaml:"compression" json:"compression"`
	// CSVDelimiter is the CSV field separator, comma when empty
	CSVDelimiter string `yaml:"csv_delimiter" json:"csv_delimiter"`
	// CSVNoHeader treats the first CSV row as data
	CSVNoHeader bool `yaml:"csv_no_header" json:"csv_no_header"`
}

// New creates a Config with defaults that work without a config file:
// info-level JSON logging, no metrics listener, and a generated-key limit
// large enough that keys never wrap in practice.
func New() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9090",
		},
		Load: LoadConfig{
			Index:  "",
			Offset: 0,
			Limit:  math.MaxUint32,
			Update: false,
		},
		Source: SourceConfig{
			Format:       "",
			Compression:  "",
			CSVDelimiter: ",",
			CSVNoHeader:  false,
		},
	}
}

var (
	logLevels    = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	encodings    = map[string]bool{"json": true, "console": true}
	formats      = map[string]bool{"": true, "csv": true, "json": true, "avro": true, "arrow": true}
	compressions = map[string]bool{
		"": true, "none": true, "gzip": true, "snappy": true,
		"s2": true, "zstd": true, "lz4": true, "deflate": true,
	}
)

// Validate checks the configuration for correctness. Call it after loading
// to catch errors before any table work starts.
func (c *Config) Validate() error {
	if !logLevels[c.Logging.Level] {
		return errors.New(errors.ErrorTypeConfig, "unknown log level").
			WithDetail("level", c.Logging.Level)
	}
	if !encodings[c.Logging.Encoding] {
		return errors.New(errors.ErrorTypeConfig, "unknown log encoding").
			WithDetail("encoding", c.Logging.Encoding)
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return errors.New(errors.ErrorTypeConfig, "metrics enabled without a listen address")
	}
	if c.Load.Limit <= 0 {
		return errors.New(errors.ErrorTypeConfig, "limit must be positive").
			WithDetail("limit", c.Load.Limit)
	}
	if c.Load.Offset < 0 {
		return errors.New(errors.ErrorTypeConfig, "offset cannot be negative").
			WithDetail("offset", c.Load.Offset)
	}
	if !formats[c.Source.Format] {
		return errors.New(errors.ErrorTypeConfig, "unknown source format").
			WithDetail("format", c.Source.Format)
	}
	if !compressions[c.Source.Compression] {
		return errors.New(errors.ErrorTypeConfig, "unknown compression").
			WithDetail("compression", c.Source.Compression)
	}
	if len([]rune(c.Source.CSVDelimiter)) > 1 {
		return errors.New(errors.ErrorTypeConfig, "csv_delimiter must be a single character").
			WithDetail("csv_delimiter", c.Source.CSVDelimiter)
	}
	return nil
}

// LoggerConfig maps the logging section onto the logger package's config.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:       c.Logging.Level,
		Development: c.Logging.Development,
		Encoding:    c.Logging.Encoding,
		OutputPaths: c.Logging.OutputPaths,
	}
}

// Delimiter returns the CSV field separator as a rune, comma when unset.
func (s *SourceConfig) Delimiter() rune {
	if s.CSVDelimiter == "" {
		return ','
	}
	return []rune(s.CSVDelimiter)[0]
}

package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/quasar/pkg/compression"
	"github.com/ajitpratap0/quasar/pkg/config"
	"github.com/ajitpratap0/quasar/pkg/dtype"
	"github.com/ajitpratap0/quasar/pkg/errors"
	"github.com/ajitpratap0/quasar/pkg/ingest"
	jsonpool "github.com/ajitpratap0/quasar/pkg/json"
	"github.com/ajitpratap0/quasar/pkg/logger"
	"github.com/ajitpratap0/quasar/pkg/metrics"
	"github.com/ajitpratap0/quasar/pkg/schema"
	"github.com/ajitpratap0/quasar/pkg/source"
	"github.com/ajitpratap0/quasar/pkg/table"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "quasar",
		Short: "Quasar - columnar table ingestion engine",
		Long: `Quasar loads CSV, JSON, Avro and Arrow data into strongly typed in-memory
columns. It infers or accepts a schema, fills a table in one pass with
type promotion where the data demands it, and keys every row for
downstream reconciliation.`,
	}

	// Version command
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Quasar v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	// Load command
	var (
		input, schemaPath, configPath        string
		format, comp, csvDelimiter, logLevel string
		index, metricsListen                 string
		offset, limit                        int
		update, csvNoHeader, metricsOn       bool
	)

	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Load a data file into a typed table",
		Long: `Load reads a data file (optionally compressed), fills a typed in-memory
table from it, and prints a JSON summary of the result.

Format and compression are detected from the file name; --format and
--compression override detection. Without --schema the schema is inferred
from the source.

Example:
  quasar load -i trades.csv.zst --index trade_id
  quasar load -i rows.json --schema schema.yaml --offset 100 --update`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			overrideString(cmd, "log-level", &cfg.Logging.Level, logLevel)
			overrideString(cmd, "format", &cfg.Source.Format, format)
			overrideString(cmd, "compression", &cfg.Source.Compression, comp)
			overrideString(cmd, "csv-delimiter", &cfg.Source.CSVDelimiter, csvDelimiter)
			overrideString(cmd, "index", &cfg.Load.Index, index)
			overrideString(cmd, "metrics-listen", &cfg.Metrics.Listen, metricsListen)
			if cmd.Flags().Changed("csv-no-header") {
				cfg.Source.CSVNoHeader = csvNoHeader
			}
			if cmd.Flags().Changed("metrics") {
				cfg.Metrics.Enabled = metricsOn
			}
			if cmd.Flags().Changed("offset") {
				cfg.Load.Offset = offset
			}
			if cmd.Flags().Changed("limit") {
				cfg.Load.Limit = limit
			}
			if cmd.Flags().Changed("update") {
				cfg.Load.Update = update
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runLoad(cfg, input, schemaPath)
		},
	}

	loadCmd.Flags().StringVarP(&input, "input", "i", "", "Path to the data file (required)")
	_ = loadCmd.MarkFlagRequired("input")
	loadCmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "YAML schema file; inferred from the source when omitted")
	loadCmd.Flags().StringVar(&index, "index", "", "Column cloned into the row keys; row positions when omitted")
	loadCmd.Flags().IntVar(&offset, "offset", 0, "Shift applied to generated row keys")
	loadCmd.Flags().IntVar(&limit, "limit", 0, "Wrap generated row keys at this count (defaults to 4294967295)")
	loadCmd.Flags().BoolVarP(&update, "update", "u", false, "Fill in update mode: missing cells keep prior storage instead of being zeroed")
	loadCmd.Flags().StringVarP(&format, "format", "f", "", "Input format: csv, json, avro or arrow (detected from the file name when omitted)")
	loadCmd.Flags().StringVarP(&comp, "compression", "c", "", "Input compression: gzip, snappy, s2, zstd, lz4, deflate or none (detected when omitted)")
	loadCmd.Flags().StringVar(&csvDelimiter, "csv-delimiter", ",", "CSV field separator")
	loadCmd.Flags().BoolVar(&csvNoHeader, "csv-no-header", false, "Treat the first CSV row as data")
	loadCmd.Flags().StringVar(&configPath, "config", "", "Path to a quasar.yaml config file")
	loadCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	loadCmd.Flags().BoolVar(&metricsOn, "metrics", false, "Serve Prometheus metrics while loading")
	loadCmd.Flags().StringVar(&metricsListen, "metrics-listen", ":9090", "Metrics listen address")
	root.AddCommand(loadCmd)

	// Infer command
	var (
		inferInput, inferFormat, inferComp, inferDelimiter, inferConfig string
		inferNoHeader                                                   bool
	)

	inferCmd := &cobra.Command{
		Use:   "infer",
		Short: "Infer a schema from a data file and print it as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(inferConfig)
			if err != nil {
				return err
			}
			overrideString(cmd, "format", &cfg.Source.Format, inferFormat)
			overrideString(cmd, "compression", &cfg.Source.Compression, inferComp)
			overrideString(cmd, "csv-delimiter", &cfg.Source.CSVDelimiter, inferDelimiter)
			if cmd.Flags().Changed("csv-no-header") {
				cfg.Source.CSVNoHeader = inferNoHeader
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runInfer(cfg, inferInput)
		},
	}

	inferCmd.Flags().StringVarP(&inferInput, "input", "i", "", "Path to the data file (required)")
	_ = inferCmd.MarkFlagRequired("input")
	inferCmd.Flags().StringVarP(&inferFormat, "format", "f", "", "Input format: csv, json, avro or arrow (detected from the file name when omitted)")
	inferCmd.Flags().StringVarP(&inferComp, "compression", "c", "", "Input compression (detected when omitted)")
	inferCmd.Flags().StringVar(&inferDelimiter, "csv-delimiter", ",", "CSV field separator")
	inferCmd.Flags().BoolVar(&inferNoHeader, "csv-no-header", false, "Treat the first CSV row as data")
	inferCmd.Flags().StringVar(&inferConfig, "config", "", "Path to a quasar.yaml config file")
	root.AddCommand(inferCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// overrideString writes the flag value into dst when the flag was set
// explicitly, preserving config-file values otherwise.
func overrideString(cmd *cobra.Command, name string, dst *string, value string) {
	if cmd.Flags().Changed(name) {
		*dst = value
	}
}

// inputInfo describes the opened input for logging and the load summary.
type inputInfo struct {
	path        string
	format      string
	compression compression.Algorithm
	bytes       int64
}

// columnSummary is one filled column in the load summary.
type columnSummary struct {
	Name         string `json:"name"`
	DType        string `json:"dtype"`
	Valid        int    `json:"valid"`
	Absent       int    `json:"absent"`
	PromotedFrom string `json:"promoted_from,omitempty"`
}

// loadSummary is the JSON document `quasar load` prints on success.
type loadSummary struct {
	Input         string          `json:"input"`
	Format        string          `json:"format"`
	Compression   string          `json:"compression,omitempty"`
	Rows          int             `json:"rows"`
	Columns       []columnSummary `json:"columns"`
	KeyKind       string          `json:"key_kind"`
	KeyDType      string          `json:"key_dtype"`
	Elapsed       string          `json:"elapsed"`
	RowsPerSecond float64         `json:"rows_per_second"`
	InputBytes    int64           `json:"input_bytes"`
	TableBytes    int64           `json:"table_bytes"`
}

// runLoad fills a table from the input file and prints the summary.
func runLoad(cfg *config.Config, input, schemaPath string) error {
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	tableName := filepath.Base(input)
	log := logger.WithLoad(tableName, input).
		With(zap.String("component", "quasar-cli"))

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				log.Warn("metrics listener stopped", zap.Error(err))
			}
		}()
		log.Info("serving metrics", zap.String("listen", cfg.Metrics.Listen))
	}

	acc, cleanup, info, err := openAccessor(input, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	loader := ingest.NewLoader(acc, ingest.WithLogger(log))
	if err := loader.Init(); err != nil {
		return err
	}
	rows, err := loader.RowCount()
	if err != nil {
		return err
	}

	var sch *schema.Schema
	if schemaPath != "" {
		sch, err = schema.LoadFile(schemaPath)
	} else {
		sch, err = loader.Schema()
	}
	if err != nil {
		return err
	}

	tbl := table.New(rows)
	tracker := metrics.NewThroughputTracker(info.format, tableName)

	start := time.Now()
	if err := loader.FillTable(tbl, sch, cfg.Load.Index, cfg.Load.Offset, cfg.Load.Limit, cfg.Load.Update); err != nil {
		return err
	}
	elapsed := time.Since(start)

	tracker.Increment(int64(rows))
	throughput := tracker.GetAndReset()
	metrics.TableMemory.WithLabelValues(tableName).Set(float64(tbl.MemoryUsage()))

	log.Info("load complete",
		zap.Int("rows", rows),
		zap.Int("columns", sch.Len()),
		zap.Duration("elapsed", elapsed))

	return printSummary(buildSummary(tbl, sch, cfg, info, rows, elapsed, throughput))
}

// runInfer prints the schema inferred from the input as YAML.
func runInfer(cfg *config.Config, input string) error {
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	acc, cleanup, _, err := openAccessor(input, cfg, logger.Get())
	if err != nil {
		return err
	}
	defer cleanup()

	loader := ingest.NewLoader(acc)
	if err := loader.Init(); err != nil {
		return err
	}
	sch, err := loader.Schema()
	if err != nil {
		return err
	}

	data, err := sch.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

// openAccessor opens the input file, layers transparent decompression over
// it, and builds the accessor matching its format. The returned cleanup
// releases the file and any retained Arrow record.
func openAccessor(path string, cfg *config.Config, log *zap.Logger) (source.Accessor, func(), inputInfo, error) {
	info := inputInfo{path: path}

	f, err := os.Open(path) //nolint:gosec // G304: path comes from the CLI user
	if err != nil {
		return nil, nil, info, errors.Wrap(err, errors.ErrorTypeFile, "failed to open input").
			WithDetail("path", path)
	}
	closeFile := func() { _ = f.Close() }

	if st, err := f.Stat(); err == nil {
		info.bytes = st.Size()
	}

	if cfg.Source.Compression != "" {
		info.compression, err = compression.Parse(cfg.Source.Compression)
		if err != nil {
			closeFile()
			return nil, nil, info, err
		}
	} else {
		info.compression, _ = compression.ByExtension(path)
	}

	rc, err := compression.NewReader(f, info.compression)
	if err != nil {
		closeFile()
		return nil, nil, info, err
	}

	info.format = cfg.Source.Format
	if info.format == "" {
		info.format = formatByExtension(path)
	}

	log.Debug("input opened",
		zap.String("format", info.format),
		zap.String("compression", string(info.compression)),
		zap.Int64("bytes", info.bytes))

	cleanup := func() {
		_ = rc.Close()
		closeFile()
	}

	switch info.format {
	case "csv":
		comma := cfg.Source.Delimiter()
		// .tsv means tab-separated unless a delimiter was configured.
		if comma == ',' && strings.EqualFold(filepath.Ext(compression.TrimExtension(path)), ".tsv") {
			comma = '\t'
		}
		acc, err := source.NewCSVAccessor(rc, source.CSVOptions{
			Comma:    comma,
			NoHeader: cfg.Source.CSVNoHeader,
		})
		if err != nil {
			cleanup()
			return nil, nil, info, err
		}
		return acc, cleanup, info, nil

	case "json":
		acc, err := source.NewJSONAccessor(rc)
		if err != nil {
			cleanup()
			return nil, nil, info, err
		}
		return acc, cleanup, info, nil

	case "avro":
		acc, err := source.NewAvroAccessor(rc)
		if err != nil {
			cleanup()
			return nil, nil, info, err
		}
		return acc, cleanup, info, nil

	case "arrow":
		acc, err := openArrow(rc)
		if err != nil {
			cleanup()
			return nil, nil, info, err
		}
		return acc, func() { acc.Close(); cleanup() }, info, nil

	default:
		cleanup()
		return nil, nil, info, errors.New(errors.ErrorTypeConfig, "cannot determine input format; pass --format").
			WithDetail("path", path)
	}
}

// openArrow reads an Arrow IPC file into an accessor. Tables are filled
// from a single record batch.
func openArrow(r io.Reader) (*source.ArrowAccessor, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read arrow input")
	}

	rdr, err := ipc.NewFileReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to open arrow file")
	}
	defer rdr.Close()

	if n := rdr.NumRecords(); n != 1 {
		return nil, errors.New(errors.ErrorTypeData, "arrow file must hold exactly one record batch").
			WithDetail("batches", n)
	}

	rec, err := rdr.Record(0)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read arrow record")
	}

	// The accessor retains the record, so closing the reader is safe.
	return source.NewArrowAccessor(rec), nil
}

// formatByExtension detects the input format from the file name after
// stripping any compression suffix.
func formatByExtension(path string) string {
	switch strings.ToLower(filepath.Ext(compression.TrimExtension(path))) {
	case ".csv", ".tsv":
		return "csv"
	case ".json":
		return "json"
	case ".avro":
		return "avro"
	case ".arrow", ".feather":
		return "arrow"
	default:
		return ""
	}
}

// buildSummary assembles the printed summary from the filled table. A
// column whose final dtype differs from its declared type was promoted
// during the fill.
func buildSummary(tbl *table.Table, sch *schema.Schema, cfg *config.Config, info inputInfo, rows int, elapsed time.Duration, throughput float64) *loadSummary {
	sum := &loadSummary{
		Input:         info.path,
		Format:        info.format,
		Rows:          rows,
		Elapsed:       elapsed.String(),
		RowsPerSecond: throughput,
		InputBytes:    info.bytes,
		TableBytes:    tbl.MemoryUsage(),
	}
	if info.compression != compression.None {
		sum.Compression = string(info.compression)
	}

	for _, decl := range sch.Columns() {
		if decl.Name == ingest.SentinelIndex {
			continue
		}
		col, ok := tbl.GetColumn(decl.Name)
		if !ok {
			continue
		}
		cs := columnSummary{
			Name:   decl.Name,
			DType:  col.DType().String(),
			Valid:  col.CountValid(),
			Absent: col.Size() - col.CountValid(),
		}
		declared := decl.Type
		if declared == dtype.Object {
			declared = dtype.Str
		}
		if col.DType() != declared {
			cs.PromotedFrom = declared.String()
		}
		sum.Columns = append(sum.Columns, cs)
	}

	switch {
	case hasSentinel(sch):
		sum.KeyKind = "sentinel"
	case cfg.Load.Index != "":
		sum.KeyKind = "explicit"
	default:
		sum.KeyKind = "generated"
	}
	if pkey, ok := tbl.GetColumn(ingest.PrimaryKeyColumn); ok {
		sum.KeyDType = pkey.DType().String()
	}

	return sum
}

func hasSentinel(sch *schema.Schema) bool {
	_, ok := sch.Type(ingest.SentinelIndex)
	return ok
}

// printSummary writes the summary to stdout as indented JSON.
func printSummary(sum *loadSummary) error {
	enc := jsonpool.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}

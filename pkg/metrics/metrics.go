// Package metrics provides performance tracking and observability for Quasar
// using Prometheus metrics. It covers the two fill paths, column promotions,
// missing-value accounting and index key synthesis.
//
// # Overview
//
// The metrics package provides:
//   - Prometheus-compatible metrics collection
//   - Pre-defined metrics for fills, promotions and key synthesis
//   - Throughput and latency tracking utilities
//   - Thread-safe metric recording
//   - Automatic metric registration
//
// # Basic Usage
//
//	// Record a bulk-filled column
//	metrics.ColumnsFilled.WithLabelValues("bulk", "int64").Inc()
//
//	// Track fill latency
//	timer := metrics.NewTimer("fill_table")
//	loader.FillTable(tbl, sch, "", 0, limit, false)
//	metrics.FillLatency.WithLabelValues("fill_table").
//	    Observe(float64(timer.Stop().Nanoseconds()))
//
//	// Track throughput
//	tracker := metrics.NewThroughputTracker("csv", "trades")
//	tracker.Increment(int64(rows))
//	throughput := tracker.GetAndReset()
//
// # Metric Types
//
// Counter: Monotonically increasing values (e.g., total cells filled)
// Gauge: Values that can go up or down (e.g., table memory)
// Histogram: Distribution of values (e.g., latency percentiles)
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ColumnsFilled counts destination columns filled, split by the path
	// that completed them and the destination type.
	// Labels: path (bulk/iterative), dtype
	//
	// Example:
	//	metrics.ColumnsFilled.WithLabelValues("iterative", "string").Inc()
	ColumnsFilled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quasar_columns_filled_total",
			Help: "Total number of destination columns filled",
		},
		[]string{"path", "dtype"},
	)

	// CellsFilled counts individual cells written to destination columns.
	// Labels: path (bulk/iterative)
	CellsFilled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quasar_cells_filled_total",
			Help: "Total number of cells written",
		},
		[]string{"path"},
	)

	// CellsAbsent counts cells recorded as missing, split by how the
	// validity bit was handled: "unset" leaves the old value for update
	// reconciliation, "clear" zeroes the storage.
	// Labels: mode (unset/clear)
	CellsAbsent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quasar_cells_absent_total",
			Help: "Total number of cells recorded as missing",
		},
		[]string{"mode"},
	)

	// ColumnPromotions counts in-flight column type rewrites.
	// Labels: from, to (dtype names)
	//
	// Example:
	//	metrics.ColumnPromotions.WithLabelValues("int32", "float64").Inc()
	ColumnPromotions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quasar_column_promotions_total",
			Help: "Total number of column type promotions",
		},
		[]string{"from", "to"},
	)

	// IndexKeys counts synthesized key columns by how they were derived.
	// Labels: kind (sentinel/explicit/generated)
	IndexKeys = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quasar_index_keys_total",
			Help: "Total number of index key columns synthesized",
		},
		[]string{"kind"},
	)

	// FillLatency tracks the distribution of fill latencies in nanoseconds.
	// The buckets are optimized for in-memory columnar writes.
	// Labels: operation (fill_table/fill_column)
	//
	// Example:
	//	start := time.Now()
	//	loader.FillTable(tbl, sch, "", 0, limit, false)
	//	metrics.FillLatency.WithLabelValues("fill_table").
	//	    Observe(float64(time.Since(start).Nanoseconds()))
	FillLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "quasar_fill_latency_nanoseconds",
			Help: "Fill latency in nanoseconds",
			Buckets: []float64{
				1000,   // 1μs - single narrow column, bulk path
				10000,  // 10μs - small bulk fills
				100000, // 100μs - iterative fills over small tables
				1e6,    // 1ms - standard columns
				1e7,    // 10ms - wide tables, per-cell marshaling
				1e8,    // 100ms - large iterative fills
				1e9,    // 1s - full-table loads
				1e10,   // 10s - oversized loads
			},
		},
		[]string{"operation"},
	)

	// TableMemory tracks the storage footprint of filled tables.
	TableMemory = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quasar_table_memory_bytes",
			Help: "Memory held by table storage in bytes",
		},
		[]string{"table"},
	)

	// Throughput tracks rows per second per source format and table.
	Throughput = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quasar_throughput_rows_per_second",
			Help: "Current throughput in rows per second",
		},
		[]string{"source", "table"},
	)
)

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
// The name parameter is for identification in logs or metrics.
//
// Example:
//
//	timer := metrics.NewTimer("fill_table")
//	loader.FillTable(tbl, sch, "", 0, limit, false)
//	duration := timer.Stop()
//	logger.Info("table filled", zap.Duration("duration", duration))
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Stop stops the timer and returns the elapsed duration since creation.
// The timer can be stopped multiple times, each returning the total
// elapsed time since creation.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ThroughputTracker tracks throughput (rows per second) over time windows.
// It automatically calculates and reports throughput metrics when queried.
// Thread-safe for concurrent use.
type ThroughputTracker struct {
	mu        sync.Mutex
	count     int64     // Rows processed since last reset
	lastReset time.Time // Time of last reset
	source    string    // Source format name
	table     string    // Destination table name
}

// NewThroughputTracker creates a new throughput tracker for a load.
// The source and table parameters identify the load endpoints and are
// used as metric labels.
//
// Example:
//
//	tracker := metrics.NewThroughputTracker("arrow", "trades")
//	tracker.Increment(int64(loader.RowCount()))
//	throughput := tracker.GetAndReset()
//	logger.Info("throughput", zap.Float64("rows_per_sec", throughput))
func NewThroughputTracker(source, table string) *ThroughputTracker {
	return &ThroughputTracker{
		lastReset: time.Now(),
		source:    source,
		table:     table,
	}
}

// Increment adds n to the row count. Safe for concurrent use.
func (t *ThroughputTracker) Increment(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count += n
}

// GetAndReset calculates the current throughput (rows/second), updates the
// Prometheus metric, resets the counter, and returns the calculated
// throughput. Safe for concurrent use.
func (t *ThroughputTracker) GetAndReset() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.lastReset).Seconds()
	if elapsed == 0 {
		return 0
	}

	throughput := float64(t.count) / elapsed

	t.count = 0
	t.lastReset = time.Now()

	Throughput.WithLabelValues(t.source, t.table).Set(throughput)

	return throughput
}

// LatencyTracker provides percentile tracking
type LatencyTracker struct {
	mu      sync.Mutex
	values  []time.Duration
	maxSize int
}

// NewLatencyTracker creates a new latency tracker
func NewLatencyTracker(maxSize int) *LatencyTracker {
	return &LatencyTracker{
		values:  make([]time.Duration, 0, maxSize),
		maxSize: maxSize,
	}
}

// Record records a latency value
func (l *LatencyTracker) Record(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.values) >= l.maxSize {
		// Remove oldest
		l.values = l.values[1:]
	}
	l.values = append(l.values, d)
}

// GetPercentile returns the percentile value (0-100)
func (l *LatencyTracker) GetPercentile(p float64) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.values) == 0 {
		return 0
	}

	// Simple implementation - in production use a better algorithm
	index := int(float64(len(l.values)) * p / 100)
	if index >= len(l.values) {
		index = len(l.values) - 1
	}

	return l.values[index]
}

// Package quasar provides a strongly typed, column-oriented in-memory table
// engine that ingests CSV, JSON, Avro and Arrow data in a single pass.
//
// Quasar turns loosely typed row sources into dense typed columns:
//   - One fill pass per source, bulk-copied when the source buffer already
//     matches the column type
//   - Ten numeric element kinds mapped 1:1, plus bool, time and string
//   - In-flight type promotion when the data outgrows the declared type
//   - Every row keyed for downstream reconciliation
//
// # Architecture
//
// Quasar is built around three core pieces:
//
// 1. Accessors (pkg/source): uniform access to a columnar view of any
// supported input. An accessor serves typed buffers with sparse null
// lists; CSV, JSON, Avro and Arrow inputs all land in the same shape.
//
// 2. The fill engine (pkg/ingest): copies accessor buffers into table
// columns. Kind-exact, null-free columns take the bulk path (one copy);
// everything else takes the iterative path, which coerces cell by cell
// and reacts to values the declared type cannot hold.
//
// 3. Typed columns (pkg/table): fixed-width storage with a valid map per
// column. Promotion rebuilds a column at a wider type mid-fill without
// touching its neighbors.
//
// # Quick Start
//
// Load a CSV file into a typed table:
//
//	import (
//	    "math"
//	    "os"
//
//	    "github.com/ajitpratap0/quasar/pkg/ingest"
//	    "github.com/ajitpratap0/quasar/pkg/source"
//	    "github.com/ajitpratap0/quasar/pkg/table"
//	)
//
//	f, _ := os.Open("trades.csv")
//	defer f.Close()
//
//	acc, _ := source.NewCSVAccessor(f, source.CSVOptions{})
//	loader := ingest.NewLoader(acc)
//	_ = loader.Init()
//
//	sch, _ := loader.Schema()      // inferred from the source
//	rows, _ := loader.RowCount()
//
//	tbl := table.New(rows)
//	_ = loader.FillTable(tbl, sch, "", 0, math.MaxUint32, false)
//
// Or from the command line:
//
//	quasar load -i trades.csv.zst --index trade_id
//
// # Key Packages
//
//	pkg/ingest       - the fill engine: accessor buffers into typed columns
//	pkg/table        - typed columns, valid maps, promotion and cloning
//	pkg/schema       - column declarations, YAML round trip, kind inference
//	pkg/source       - accessors: typed slices, CSV, JSON, Avro, Arrow
//	pkg/dtype        - element kinds and the promotion lattice
//	pkg/compression  - transparent input decompression and detection
//	pkg/config       - configuration with ${VAR} substitution
//	pkg/errors       - structured error handling
//	pkg/logger       - structured logging
//	pkg/metrics      - Prometheus collectors for fills and memory
//	pkg/pool         - object and buffer pooling
//
// # Type Promotion
//
// A declared column type is a starting point, not a contract. When the
// iterative path meets a value the current type cannot hold, the column is
// promoted and the fill continues:
//
//   - int32 columns take 64-bit values by rebuilding as float64; rows
//     already written are converted in place
//   - int64 and float64 columns hit by a missing-value sentinel rebuild
//     as string and refill from row zero
//
// A column promotes at most once per fill.
//
// # Row Keys
//
// Every fill ends by keying the table. A source column named __INDEX__, or
// one named by the index argument, is cloned into qsr_pkey and qsr_okey;
// with neither, keys are generated from row positions as
// (row+offset) % limit.
//
// # Configuration
//
// The CLI reads an optional quasar.yaml with logging, metrics, load and
// source sections. Environment variables are supported with ${VAR_NAME}
// syntax, and explicit flags win over file values.
//
// # Development
//
//	git clone https://github.com/ajitpratap0/quasar.git
//	cd quasar
//	go build ./...
//	go test ./...
//
// Profile the fill path under a synthetic workload:
//
//	go run ./cmd/profile -types cpu,memory -duration 30s -rows 500000
package quasar

// Package config provides configuration management for the Quasar fill engine.
//
// A single Config structure carries every knob the engine and the CLI expose,
// organized into sections:
//
//   - Logging: level, encoding, output paths of the zap logger
//   - Metrics: the optional Prometheus exposition endpoint
//   - Load: default index, offset, limit and update mode for fills
//   - Source: input format and compression overrides
//
// # Loading
//
// Configurations load from YAML with environment variable substitution:
//
//	cfg, err := config.LoadFile("quasar.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// LoadFile layers the file over New() defaults and validates the result, so
// a config file only needs the keys it changes. An empty path yields plain
// defaults, which lets the CLI treat the --config flag as optional.
//
// # Environment Variable Substitution
//
// ${VAR_NAME} references anywhere in the file are replaced with the variable's
// value before parsing:
//
//	# quasar.yaml
//	logging:
//	  level: ${QUASAR_LOG_LEVEL}
//	metrics:
//	  enabled: true
//	  listen: ${QUASAR_METRICS_ADDR}
//
// # Structure
//
//	logging:
//	  level: info          # debug, info, warn, error
//	  encoding: json       # json or console
//	  development: false
//	metrics:
//	  enabled: false
//	  listen: ":9090"
//	load:
//	  index: ""            # key column; empty generates row keys
//	  offset: 0
//	  limit: 4294967295
//	  update: false
//	source:
//	  format: ""           # csv, json, avro, arrow; empty detects by extension
//	  compression: ""      # gzip, snappy, s2, zstd, lz4, deflate, none
//	  csv_delimiter: ","
//	  csv_no_header: false
//
// Validate catches unknown levels, encodings, formats and compressions, and
// rejects non-positive limits before any table work starts.
package config

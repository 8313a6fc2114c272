// Package ingest implements the fill engine. A Loader binds an accessor to
// a destination table and moves every schema column across, choosing per
// column between a bulk copy over kind-exact buffers and an iterative
// per-cell walk that can rewrite a column to a wider type mid-fill. After
// the data columns it synthesizes the two key columns every table carries.
package ingest

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/quasar/pkg/dtype"
	"github.com/ajitpratap0/quasar/pkg/errors"
	"github.com/ajitpratap0/quasar/pkg/logger"
	"github.com/ajitpratap0/quasar/pkg/metrics"
	"github.com/ajitpratap0/quasar/pkg/schema"
	"github.com/ajitpratap0/quasar/pkg/source"
	"github.com/ajitpratap0/quasar/pkg/table"
)

const (
	// SentinelIndex is the reserved schema column name whose source data
	// becomes the table's primary key instead of a regular column.
	SentinelIndex = "__INDEX__"

	// PrimaryKeyColumn and OrderKeyColumn are the key columns synthesized
	// on every fill. They are recreated each time a table is filled.
	PrimaryKeyColumn = "qsr_pkey"
	OrderKeyColumn   = "qsr_okey"
)

// Loader drives fills from one accessor. It is single-use per source: Init
// caches the column names and kinds once, and every fill resolves columns
// against that snapshot. Not safe for concurrent use.
type Loader struct {
	acc  source.Accessor
	log  *zap.Logger
	init bool

	names []string
	kinds []dtype.DType
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger routes the loader's logging through the given logger instead
// of the package-level one.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// NewLoader wraps an accessor. Call Init before anything else.
func NewLoader(acc source.Accessor, opts ...Option) *Loader {
	l := &Loader{
		acc: acc,
		log: logger.Get(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Init snapshots the source's column names and element kinds. Kind
// detection errors from the accessor, such as a column with mixed element
// kinds, surface here rather than mid-fill.
func (l *Loader) Init() error {
	names := l.acc.ColumnNames()
	kinds, err := l.acc.ColumnKinds()
	if err != nil {
		return err
	}
	if len(names) != len(kinds) {
		return errors.New(errors.ErrorTypeInternal, "accessor names and kinds differ in length").
			WithDetail("names", len(names)).
			WithDetail("kinds", len(kinds))
	}

	l.names = names
	l.kinds = kinds
	l.init = true

	l.log.Debug("loader initialized",
		zap.Int("columns", len(names)),
		zap.Int("rows", l.acc.RowCount()),
	)
	return nil
}

// Names returns the source column names in accessor order.
func (l *Loader) Names() ([]string, error) {
	if !l.init {
		return nil, errors.NotInitialized("names")
	}
	return append([]string(nil), l.names...), nil
}

// Types returns the detected element kind of each source column, aligned
// with Names.
func (l *Loader) Types() ([]dtype.DType, error) {
	if !l.init {
		return nil, errors.NotInitialized("types")
	}
	return append([]dtype.DType(nil), l.kinds...), nil
}

// RowCount returns the number of rows the source will fill.
func (l *Loader) RowCount() (int, error) {
	if !l.init {
		return 0, errors.NotInitialized("row_count")
	}
	return l.acc.RowCount(), nil
}

// Schema derives a destination schema from the cached names and kinds.
func (l *Loader) Schema() (*schema.Schema, error) {
	if !l.init {
		return nil, errors.NotInitialized("schema")
	}
	return schema.Infer(l.names, l.kinds)
}

// FillTable fills every schema column into tbl in schema order, then
// synthesizes the qsr_pkey and qsr_okey key columns. The key data comes
// from one of three places, in precedence order: a schema column named
// __INDEX__ fills the primary key directly and is cloned into the order
// key; otherwise an explicit index names an already-filled column to clone
// into both; otherwise both are generated as (row+offset) mod limit.
//
// isUpdate selects how missing cells are recorded: updates leave prior
// storage in place under a cleared validity bit, initial loads zero it.
func (l *Loader) FillTable(tbl *table.Table, sch *schema.Schema, index string, offset, limit int, isUpdate bool) error {
	if !l.init {
		return errors.NotInitialized("fill_table")
	}

	timer := metrics.NewTimer("fill_table")
	defer func() {
		metrics.FillLatency.WithLabelValues("fill_table").Observe(float64(timer.Stop().Nanoseconds()))
	}()

	implicitIndex := false
	for _, decl := range sch.Columns() {
		name, dt := decl.Name, decl.Type
		if dt == dtype.Object {
			// Columns are never stored as opaque objects; their cells
			// reach storage through per-cell marshaling.
			dt = dtype.Str
		}

		if name == SentinelIndex {
			implicitIndex = true
			pkey := tbl.AddColumn(PrimaryKeyColumn, dt, true)
			if err := l.fillColumn(tbl, pkey, name, PrimaryKeyColumn, dt, isUpdate); err != nil {
				return err
			}
			if err := tbl.CloneColumn(PrimaryKeyColumn, OrderKeyColumn); err != nil {
				return err
			}
			metrics.IndexKeys.WithLabelValues("sentinel").Inc()
			continue
		}

		col := tbl.AddColumn(name, dt, false)
		if col.DType() != dt {
			// The schema drives the fill; a leftover column of another
			// type is replaced rather than written through.
			col = tbl.AddColumn(name, dt, true)
		}
		if err := l.fillColumn(tbl, col, name, name, dt, isUpdate); err != nil {
			return err
		}
	}

	if implicitIndex {
		l.log.Debug("filled table keyed by index sentinel", zap.Int("rows", tbl.Size()))
		return nil
	}

	if index != "" {
		if err := tbl.CloneColumn(index, PrimaryKeyColumn); err != nil {
			return err
		}
		if err := tbl.CloneColumn(index, OrderKeyColumn); err != nil {
			return err
		}
		metrics.IndexKeys.WithLabelValues("explicit").Inc()
		l.log.Debug("filled table keyed by column",
			zap.String("index", index),
			zap.Int("rows", tbl.Size()),
		)
		return nil
	}

	if limit <= 0 {
		return errors.InvalidLimit(limit)
	}

	pkey := tbl.AddColumn(PrimaryKeyColumn, dtype.Int32, true)
	okey := tbl.AddColumn(OrderKeyColumn, dtype.Int32, true)
	for row := 0; row < tbl.Size(); row++ {
		key := int32((row + offset) % limit)
		if err := pkey.SetNth(row, key); err != nil {
			return err
		}
		if err := okey.SetNth(row, key); err != nil {
			return err
		}
	}
	metrics.IndexKeys.WithLabelValues("generated").Inc()

	l.log.Debug("filled table with generated keys",
		zap.Int("rows", tbl.Size()),
		zap.Int("offset", offset),
		zap.Int("limit", limit),
	)
	return nil
}

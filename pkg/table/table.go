package table

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/quasar/pkg/dtype"
	"github.com/ajitpratap0/quasar/pkg/errors"
	"github.com/ajitpratap0/quasar/pkg/logger"
	stringpool "github.com/ajitpratap0/quasar/pkg/strings"
)

// Table is a fixed-row-count collection of named columns. All columns share
// the table's length. Tables are not safe for concurrent use; a fill owns
// its table for the duration of the run.
type Table struct {
	size    int
	names   []string
	columns map[string]*Column
}

// New creates a table whose columns will all have the given number of rows.
func New(size int) *Table {
	return &Table{
		size:    size,
		columns: make(map[string]*Column),
	}
}

// Size returns the row count shared by every column.
func (t *Table) Size() int { return t.size }

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.columns) }

// ColumnNames returns the column names in insertion order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)
	return names
}

// AddColumn returns the column with the given name, creating it when absent.
// When replace is set an existing column is discarded and a fresh, all
// invalid column of the requested type takes its place.
func (t *Table) AddColumn(name string, dt dtype.DType, replace bool) *Column {
	if existing, ok := t.columns[name]; ok {
		if !replace {
			return existing
		}
		t.columns[name] = NewColumn(dt, t.size)
		return t.columns[name]
	}

	col := NewColumn(dt, t.size)
	t.columns[name] = col
	t.names = append(t.names, name)
	return col
}

// GetColumn retrieves a column by name.
func (t *Table) GetColumn(name string) (*Column, bool) {
	col, ok := t.columns[name]
	return col, ok
}

// CloneColumn deep-copies column src under the name dst, replacing any
// existing dst. Index synthesis uses this to derive the ordering key from
// the primary key without sharing storage.
func (t *Table) CloneColumn(src, dst string) error {
	col, ok := t.columns[src]
	if !ok {
		return errors.UnknownColumn(src)
	}

	if _, exists := t.columns[dst]; !exists {
		t.names = append(t.names, dst)
	}
	t.columns[dst] = col.clone()
	return nil
}

// PromoteColumn rewrites the named column to a wider type. The only legal
// targets are the column's widening successor: int32 to float64, int64 to
// string, float64 to string. Promoting a column to its current type is a
// no-op.
//
// When copyExisting is set, rows below fromRow are converted into the new
// column along with their validity bits; otherwise the new column starts
// fully invalid and the caller refills it from row zero.
func (t *Table) PromoteColumn(name string, dt dtype.DType, fromRow int, copyExisting bool) (*Column, error) {
	col, ok := t.columns[name]
	if !ok {
		return nil, errors.UnknownColumn(name)
	}

	if col.dt == dt {
		return col, nil
	}

	if widened, ok := col.dt.Widened(); !ok || widened != dt {
		return nil, errors.New(errors.ErrorTypeValidation, "column promotion not allowed").
			WithDetail("column", name).
			WithDetail("from", col.dt.String()).
			WithDetail("to", dt.String())
	}

	logger.Warn("promoting column",
		zap.String("column", name),
		zap.String("from", col.dt.String()),
		zap.String("to", dt.String()),
		zap.Int("row", fromRow),
	)

	next := NewColumn(dt, t.size)

	if copyExisting {
		if fromRow > t.size {
			fromRow = t.size
		}
		for i := 0; i < fromRow; i++ {
			if !col.Valid(i) {
				continue
			}
			switch {
			case col.dt == dtype.Int32 && dt == dtype.Float64:
				next.f64[i] = float64(col.i32[i])
			case col.dt == dtype.Int64 && dt == dtype.Str:
				next.ss[i] = stringpool.ValueToString(col.i64[i])
			case col.dt == dtype.Float64 && dt == dtype.Str:
				next.ss[i] = stringpool.ValueToString(col.f64[i])
			}
			next.setValid(i)
		}
	}

	t.columns[name] = next
	return next, nil
}

// Row materializes row i as a name-to-value map. Invalid cells are omitted.
func (t *Table) Row(i int) (map[string]interface{}, error) {
	if i < 0 || i >= t.size {
		return nil, errors.New(errors.ErrorTypeValidation, "row index out of range").
			WithDetail("row", i).
			WithDetail("size", t.size)
	}

	row := make(map[string]interface{}, len(t.names))
	for _, name := range t.names {
		if v, ok := t.columns[name].GetNth(i); ok {
			row[name] = v
		}
	}
	return row, nil
}

// MemoryUsage returns total memory usage in bytes.
func (t *Table) MemoryUsage() int64 {
	var total int64

	total += 64 // Base struct overhead
	total += int64(len(t.columns) * 32) // Map overhead

	for name, col := range t.columns {
		total += int64(len(name))
		total += col.MemoryUsage()
	}

	return total
}

// Package source defines the accessor contract the ingestion engine fills
// tables from, and accessors over the common carriers: native Go slices,
// CSV, JSON, Avro object container files and Arrow records.
//
// An accessor presents column-major data. Fixed-width columns are exposed
// as typed buffers for the bulk copy path; everything else reaches storage
// through per-cell marshaling.
package source

import (
	"github.com/ajitpratap0/quasar/pkg/buffer"
	"github.com/ajitpratap0/quasar/pkg/dtype"
)

// ColumnData is one source column as handed to the engine: the typed
// element buffer plus the row offsets the source knows to be null. The
// engine never mutates either.
type ColumnData struct {
	Buffer *buffer.Buffer
	Nulls  []int
}

// Accessor is the capability set the engine consumes. Implementations are
// single-use per fill: all methods are read-only and must stay stable for
// the duration of one fill call.
//
// Column indexes follow ColumnNames order. MarshalCell converts the cell at
// (col, row) to the representation of the requested destination type:
// string for Str, bool for Bool, dtype.DateValue for Date and epoch
// milliseconds (int64) for Time. The second return is false when the cell
// is absent or cannot be represented, which the fill paths record as a
// missing value rather than an error.
type Accessor interface {
	RowCount() int
	ColumnNames() []string
	ColumnKinds() ([]dtype.DType, error)
	ColumnBuffer(name string, dt dtype.DType) (ColumnData, error)
	MarshalCell(col, row int, dt dtype.DType) (interface{}, bool)
}

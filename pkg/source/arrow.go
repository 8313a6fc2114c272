package source

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/ajitpratap0/quasar/pkg/buffer"
	"github.com/ajitpratap0/quasar/pkg/dtype"
	"github.com/ajitpratap0/quasar/pkg/errors"
	stringpool "github.com/ajitpratap0/quasar/pkg/strings"
)

type arrowCol struct {
	data    ColumnData
	arr     arrow.Array
	kind    dtype.DType
	kindErr error
}

// ArrowAccessor serves fills from an Arrow record batch. Numeric columns
// without nulls are wrapped zero-copy; columns whose element type has an
// in-band missing-value sentinel get their null slots rewritten to it so
// per-cell reads see them as absent. Strings are copied out so the table
// never aliases Arrow-owned memory.
//
// The accessor retains the record until Close.
type ArrowAccessor struct {
	rec   arrow.Record
	names []string
	cols  []arrowCol
}

// NewArrowAccessor builds an accessor over one record batch.
func NewArrowAccessor(rec arrow.Record) *ArrowAccessor {
	rec.Retain()

	a := &ArrowAccessor{
		rec:   rec,
		names: make([]string, rec.NumCols()),
		cols:  make([]arrowCol, rec.NumCols()),
	}

	for i := 0; i < int(rec.NumCols()); i++ {
		a.names[i] = rec.Schema().Field(i).Name
		a.cols[i] = buildArrowCol(a.names[i], rec.Column(i))
	}

	return a
}

// Close releases the accessor's reference on the record.
func (a *ArrowAccessor) Close() {
	if a.rec != nil {
		a.rec.Release()
		a.rec = nil
	}
}

func buildArrowCol(name string, arr arrow.Array) arrowCol {
	c := arrowCol{arr: arr}

	n := arr.Len()
	if arr.NullN() > 0 {
		c.data.Nulls = make([]int, 0, arr.NullN())
		for i := 0; i < n; i++ {
			if arr.IsNull(i) {
				c.data.Nulls = append(c.data.Nulls, i)
			}
		}
	}

	switch col := arr.(type) {
	case *array.Int8:
		c.data.Buffer = buffer.FromInt8s(col.Int8Values())
	case *array.Int16:
		c.data.Buffer = buffer.FromInt16s(col.Int16Values())
	case *array.Int32:
		c.data.Buffer = buffer.FromInt32s(col.Int32Values())
	case *array.Int64:
		cells := col.Int64Values()
		if arr.NullN() > 0 {
			cells = append([]int64(nil), cells...)
			for _, row := range c.data.Nulls {
				cells[row] = dtype.NaT
			}
		}
		c.data.Buffer = buffer.FromInt64s(cells)
	case *array.Uint8:
		c.data.Buffer = buffer.FromUint8s(col.Uint8Values())
	case *array.Uint16:
		c.data.Buffer = buffer.FromUint16s(col.Uint16Values())
	case *array.Uint32:
		c.data.Buffer = buffer.FromUint32s(col.Uint32Values())
	case *array.Uint64:
		c.data.Buffer = buffer.FromUint64s(col.Uint64Values())
	case *array.Float32:
		cells := col.Float32Values()
		if arr.NullN() > 0 {
			cells = append([]float32(nil), cells...)
			for _, row := range c.data.Nulls {
				cells[row] = float32(math.NaN())
			}
		}
		c.data.Buffer = buffer.FromFloat32s(cells)
	case *array.Float64:
		cells := col.Float64Values()
		if arr.NullN() > 0 {
			cells = append([]float64(nil), cells...)
			for _, row := range c.data.Nulls {
				cells[row] = math.NaN()
			}
		}
		c.data.Buffer = buffer.FromFloat64s(cells)
	case *array.Boolean:
		cells := make([]bool, n)
		for i := 0; i < n; i++ {
			if arr.IsValid(i) {
				cells[i] = col.Value(i)
			}
		}
		c.data.Buffer = buffer.FromBools(cells)
	case *array.String:
		cells := make([]string, n)
		for i := 0; i < n; i++ {
			if arr.IsValid(i) {
				cells[i] = stringpool.Clone(col.Value(i))
			}
		}
		c.data.Buffer = buffer.FromStrings(cells)
	case *array.LargeString:
		cells := make([]string, n)
		for i := 0; i < n; i++ {
			if arr.IsValid(i) {
				cells[i] = stringpool.Clone(col.Value(i))
			}
		}
		c.data.Buffer = buffer.FromStrings(cells)
	case *array.Timestamp:
		unit := col.DataType().(*arrow.TimestampType).Unit
		cells := make([]int64, n)
		for i := 0; i < n; i++ {
			if arr.IsValid(i) {
				cells[i] = epochMillis(col.Value(i), unit)
			} else {
				cells[i] = dtype.NaT
			}
		}
		c.data.Buffer = buffer.FromEpochs(cells)
	case *array.Date32:
		cells := make([]dtype.DateValue, n)
		for i := 0; i < n; i++ {
			if arr.IsValid(i) {
				cells[i] = dtype.DateFromTime(col.Value(i).ToTime())
			}
		}
		c.data.Buffer = buffer.FromDates(cells)
	case *array.Date64:
		cells := make([]dtype.DateValue, n)
		for i := 0; i < n; i++ {
			if arr.IsValid(i) {
				cells[i] = dtype.DateFromTime(col.Value(i).ToTime())
			}
		}
		c.data.Buffer = buffer.FromDates(cells)
	default:
		c.data.Buffer = &buffer.Buffer{}
		c.kindErr = errors.New(errors.ErrorTypeData, "unsupported Arrow column type").
			WithDetail("column", name).
			WithDetail("type", arr.DataType().String())
	}

	c.kind = c.data.Buffer.Kind()
	return c
}

func epochMillis(ts arrow.Timestamp, unit arrow.TimeUnit) int64 {
	switch unit {
	case arrow.Second:
		return int64(ts) * 1000
	case arrow.Millisecond:
		return int64(ts)
	case arrow.Microsecond:
		return int64(ts) / 1e3
	default: // arrow.Nanosecond
		return int64(ts) / 1e6
	}
}

// RowCount returns the record's row count.
func (a *ArrowAccessor) RowCount() int { return int(a.rec.NumRows()) }

// ColumnNames returns the record's field names.
func (a *ArrowAccessor) ColumnNames() []string {
	names := make([]string, len(a.names))
	copy(names, a.names)
	return names
}

// ColumnKinds returns each column's element type. A column of an Arrow
// type with no table representation poisons the whole accessor.
func (a *ArrowAccessor) ColumnKinds() ([]dtype.DType, error) {
	kinds := make([]dtype.DType, len(a.cols))
	for i, c := range a.cols {
		if c.kindErr != nil {
			return nil, c.kindErr
		}
		kinds[i] = c.kind
	}
	return kinds, nil
}

// ColumnBuffer returns the buffer and null list for the named column.
func (a *ArrowAccessor) ColumnBuffer(name string, _ dtype.DType) (ColumnData, error) {
	for i, n := range a.names {
		if n == name {
			if a.cols[i].kindErr != nil {
				return ColumnData{}, a.cols[i].kindErr
			}
			return a.cols[i].data, nil
		}
	}
	return ColumnData{}, errors.UnknownColumn(name)
}

// MarshalCell converts cell (col, row) to the destination representation.
func (a *ArrowAccessor) MarshalCell(col, row int, dt dtype.DType) (interface{}, bool) {
	if col < 0 || col >= len(a.cols) || row < 0 || row >= a.RowCount() {
		return nil, false
	}
	c := &a.cols[col]

	if c.kindErr != nil || c.arr.IsNull(row) {
		return nil, false
	}

	return marshalValue(rawArrowValue(c.arr, row), dt)
}

// rawArrowValue lifts one cell to its natural Go value. Temporal cells
// come back as time.Time so string destinations render them readably.
func rawArrowValue(arr arrow.Array, row int) interface{} {
	switch col := arr.(type) {
	case *array.Int8:
		return col.Value(row)
	case *array.Int16:
		return col.Value(row)
	case *array.Int32:
		return col.Value(row)
	case *array.Int64:
		return col.Value(row)
	case *array.Uint8:
		return col.Value(row)
	case *array.Uint16:
		return col.Value(row)
	case *array.Uint32:
		return col.Value(row)
	case *array.Uint64:
		return col.Value(row)
	case *array.Float32:
		return col.Value(row)
	case *array.Float64:
		return col.Value(row)
	case *array.Boolean:
		return col.Value(row)
	case *array.String:
		return col.Value(row)
	case *array.LargeString:
		return col.Value(row)
	case *array.Timestamp:
		unit := col.DataType().(*arrow.TimestampType).Unit
		return col.Value(row).ToTime(unit).UTC()
	case *array.Date32:
		return dtype.DateFromTime(col.Value(row).ToTime())
	case *array.Date64:
		return dtype.DateFromTime(col.Value(row).ToTime())
	default:
		return nil
	}
}

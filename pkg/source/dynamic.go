package source

import (
	"encoding/json" // For the json.Number type only
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/ajitpratap0/quasar/pkg/buffer"
	"github.com/ajitpratap0/quasar/pkg/dtype"
	"github.com/ajitpratap0/quasar/pkg/errors"
	"github.com/ajitpratap0/quasar/pkg/schema"
	stringpool "github.com/ajitpratap0/quasar/pkg/strings"
)

type dynamicCol struct {
	data   ColumnData
	nullAt map[int]struct{}
	values []interface{}
	kind   dtype.DType
}

// DynamicAccessor serves fills from row-oriented dynamic data, the shape
// JSON and Avro decode to. Each column's element type is inferred from its
// cells, then the cells are packed into a typed buffer so fixed-width
// columns still take the bulk copy path. Cells that are missing or do not
// coerce to the column's type become nulls.
//
// Column order is the sorted key order of first appearance, so two loads
// of the same data produce processing in the same column order.
type DynamicAccessor struct {
	names []string
	cols  []dynamicCol
	rows  int
}

// NewDynamicAccessor builds an accessor over row maps.
func NewDynamicAccessor(rows []map[string]interface{}) *DynamicAccessor {
	a := &DynamicAccessor{rows: len(rows)}

	seen := make(map[string]struct{})
	for _, row := range rows {
		fresh := make([]string, 0, len(row))
		for name := range row {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				fresh = append(fresh, name)
			}
		}
		sort.Strings(fresh)
		a.names = append(a.names, fresh...)
	}

	columns := make([][]interface{}, len(a.names))
	for i, name := range a.names {
		values := make([]interface{}, len(rows))
		for r, row := range rows {
			values[r] = row[name] // missing keys stay nil
		}
		columns[i] = values
	}

	a.buildColumns(columns)
	return a
}

// buildColumns infers each column's kind and packs its cells.
func (a *DynamicAccessor) buildColumns(columns [][]interface{}) {
	inference := schema.NewCellInference()

	a.cols = make([]dynamicCol, len(columns))
	for i, values := range columns {
		kind := inference.InferValues(values)
		a.cols[i] = buildDynamicCol(values, kind)
	}
}

// buildDynamicCol packs raw cells into a typed buffer of the inferred kind.
// Absent and uncoercible cells get the kind's missing-value sentinel and a
// null list entry.
func buildDynamicCol(values []interface{}, kind dtype.DType) dynamicCol {
	c := dynamicCol{values: values, kind: kind}

	markNull := func(row int) {
		c.data.Nulls = append(c.data.Nulls, row)
	}

	switch kind {
	case dtype.Int64:
		cells := make([]int64, len(values))
		for row, v := range values {
			if n, ok := coerceInt64(v); ok {
				cells[row] = n
			} else {
				cells[row] = dtype.NaT
				markNull(row)
			}
		}
		c.data.Buffer = buffer.FromInt64s(cells)

	case dtype.Float64:
		cells := make([]float64, len(values))
		for row, v := range values {
			if f, ok := coerceFloat64(v); ok {
				cells[row] = f
			} else {
				cells[row] = math.NaN()
				markNull(row)
			}
		}
		c.data.Buffer = buffer.FromFloat64s(cells)

	case dtype.Bool:
		cells := make([]bool, len(values))
		for row, v := range values {
			if b, ok := coerceBool(v); ok {
				cells[row] = b
			} else {
				markNull(row)
			}
		}
		c.data.Buffer = buffer.FromBools(cells)

	case dtype.Time:
		cells := make([]int64, len(values))
		for row, v := range values {
			if ms, ok := coerceEpochMillis(v); ok {
				cells[row] = ms
			} else {
				cells[row] = dtype.NaT
				markNull(row)
			}
		}
		c.data.Buffer = buffer.FromEpochs(cells)

	case dtype.Date:
		cells := make([]dtype.DateValue, len(values))
		for row, v := range values {
			if d, ok := coerceDate(v); ok {
				cells[row] = d
			} else {
				markNull(row)
			}
		}
		c.data.Buffer = buffer.FromDates(cells)

	default: // Str
		cells := make([]string, len(values))
		for row, v := range values {
			if v == nil {
				markNull(row)
				continue
			}
			cells[row] = stringpool.ValueToString(v)
		}
		c.data.Buffer = buffer.FromStrings(cells)
	}

	if len(c.data.Nulls) > 0 {
		c.nullAt = make(map[int]struct{}, len(c.data.Nulls))
		for _, row := range c.data.Nulls {
			c.nullAt[row] = struct{}{}
		}
	}

	return c
}

// RowCount returns the number of rows.
func (a *DynamicAccessor) RowCount() int { return a.rows }

// ColumnNames returns the column names.
func (a *DynamicAccessor) ColumnNames() []string {
	names := make([]string, len(a.names))
	copy(names, a.names)
	return names
}

// ColumnKinds returns each column's inferred element type.
func (a *DynamicAccessor) ColumnKinds() ([]dtype.DType, error) {
	kinds := make([]dtype.DType, len(a.cols))
	for i, c := range a.cols {
		kinds[i] = c.kind
	}
	return kinds, nil
}

// ColumnBuffer returns the typed buffer and null list for the named column.
func (a *DynamicAccessor) ColumnBuffer(name string, _ dtype.DType) (ColumnData, error) {
	for i, n := range a.names {
		if n == name {
			return a.cols[i].data, nil
		}
	}
	return ColumnData{}, errors.UnknownColumn(name)
}

// MarshalCell converts cell (col, row) to the destination representation.
// It marshals from the raw cell, not the coerced buffer, so a string dest
// can still render cells of a numeric column verbatim.
func (a *DynamicAccessor) MarshalCell(col, row int, dt dtype.DType) (interface{}, bool) {
	if col < 0 || col >= len(a.cols) || row < 0 || row >= a.rows {
		return nil, false
	}
	c := &a.cols[col]

	if _, null := c.nullAt[row]; null {
		return nil, false
	}
	if c.values[row] == nil {
		return nil, false
	}

	return marshalValue(c.values[row], dt)
}

func coerceInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
	case float32:
		return integralInt64(float64(n))
	case float64:
		return integralInt64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return integralInt64(f)
		}
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

func integralInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func coerceFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func coerceBool(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		return schema.ParseBoolString(b)
	}
	return false, false
}

// coerceEpochMillis accepts the cell shapes a datetime vote can come from:
// native times, timestamp strings, and, in columns merged from date and
// datetime votes, plain date strings.
func coerceEpochMillis(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UnixMilli(), true
	case string:
		if ms, ok := schema.ParseTimeString(t); ok {
			return ms, true
		}
		if d, ok := schema.ParseDateString(t); ok {
			return d.Time().UnixMilli(), true
		}
	}
	return 0, false
}

func coerceDate(v interface{}) (dtype.DateValue, bool) {
	switch d := v.(type) {
	case dtype.DateValue:
		return d, true
	case time.Time:
		return dtype.DateFromTime(d), true
	case string:
		return schema.ParseDateString(d)
	}
	return 0, false
}

package source

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/quasar/pkg/dtype"
	"github.com/ajitpratap0/quasar/pkg/errors"
)

func buildTradeRecord(t *testing.T) arrow.Record {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "volume", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "price", Type: arrow.PrimitiveTypes.Float64},
		{Name: "symbol", Type: arrow.BinaryTypes.String},
		{Name: "listed", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "executed_at", Type: arrow.FixedWidthTypes.Timestamp_ms},
		{Name: "day", Type: arrow.FixedWidthTypes.Date32},
	}, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	base := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	b.Field(0).(*array.Int64Builder).AppendValues([]int64{100, 0, 300}, []bool{true, false, true})
	b.Field(1).(*array.Float64Builder).AppendValues([]float64{189.5, 402.25, 141.0}, nil)
	b.Field(2).(*array.StringBuilder).AppendValues([]string{"AAPL", "MSFT", "GOOG"}, nil)
	b.Field(3).(*array.BooleanBuilder).AppendValues([]bool{true, false, true}, nil)
	b.Field(4).(*array.TimestampBuilder).AppendValues([]arrow.Timestamp{
		arrow.Timestamp(base.UnixMilli()),
		arrow.Timestamp(base.Add(time.Minute).UnixMilli()),
		arrow.Timestamp(base.Add(2 * time.Minute).UnixMilli()),
	}, nil)
	b.Field(5).(*array.Date32Builder).AppendValues([]arrow.Date32{19875, 19876, 19877}, nil)

	return b.NewRecord()
}

func TestArrowAccessor(t *testing.T) {
	rec := buildTradeRecord(t)
	defer rec.Release()

	acc := NewArrowAccessor(rec)
	defer acc.Close()

	assert.Equal(t, 3, acc.RowCount())
	assert.Equal(t,
		[]string{"volume", "price", "symbol", "listed", "executed_at", "day"},
		acc.ColumnNames())

	kinds, err := acc.ColumnKinds()
	require.NoError(t, err)
	assert.Equal(t, []dtype.DType{
		dtype.Int64, dtype.Float64, dtype.Str, dtype.Bool, dtype.Time, dtype.Date,
	}, kinds)

	t.Run("null slots become sentinels", func(t *testing.T) {
		data, err := acc.ColumnBuffer("volume", dtype.Int64)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, data.Nulls)

		cells, ok := data.Buffer.Int64s()
		require.True(t, ok)
		assert.Equal(t, []int64{100, dtype.NaT, 300}, cells)
	})

	t.Run("timestamps convert to epoch millis", func(t *testing.T) {
		data, err := acc.ColumnBuffer("executed_at", dtype.Time)
		require.NoError(t, err)

		cells, ok := data.Buffer.Epochs()
		require.True(t, ok)
		base := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC).UnixMilli()
		assert.Equal(t, []int64{base, base + 60_000, base + 120_000}, cells)
	})

	t.Run("dates convert from epoch days", func(t *testing.T) {
		data, err := acc.ColumnBuffer("day", dtype.Date)
		require.NoError(t, err)

		cells, ok := data.Buffer.Dates()
		require.True(t, ok)
		assert.Equal(t, []dtype.DateValue{
			dtype.NewDate(2024, 6, 1),
			dtype.NewDate(2024, 6, 2),
			dtype.NewDate(2024, 6, 3),
		}, cells)
	})

	t.Run("marshal renders timestamps readably", func(t *testing.T) {
		v, ok := acc.MarshalCell(4, 0, dtype.Str)
		require.True(t, ok)
		assert.Equal(t, "2024-06-01 09:30:00", v)
	})

	t.Run("marshal skips nulls", func(t *testing.T) {
		_, ok := acc.MarshalCell(0, 1, dtype.Str)
		assert.False(t, ok)

		v, ok := acc.MarshalCell(0, 0, dtype.Str)
		require.True(t, ok)
		assert.Equal(t, "100", v)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := acc.ColumnBuffer("missing", dtype.Int64)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeUnknownColumn))
	})
}

func TestArrowAccessorUnsupportedColumn(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "tags", Type: arrow.ListOf(arrow.BinaryTypes.String)},
	}, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	lb := b.Field(0).(*array.ListBuilder)
	lb.Append(true)
	lb.ValueBuilder().(*array.StringBuilder).Append("equity")

	rec := b.NewRecord()
	defer rec.Release()

	acc := NewArrowAccessor(rec)
	defer acc.Close()

	_, err := acc.ColumnKinds()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))

	_, err = acc.ColumnBuffer("tags", dtype.Str)
	require.Error(t, err)
}

package ingest

import (
	"math"

	"go.uber.org/zap"

	"github.com/ajitpratap0/quasar/pkg/buffer"
	"github.com/ajitpratap0/quasar/pkg/dtype"
	"github.com/ajitpratap0/quasar/pkg/errors"
	"github.com/ajitpratap0/quasar/pkg/metrics"
	"github.com/ajitpratap0/quasar/pkg/source"
	stringpool "github.com/ajitpratap0/quasar/pkg/strings"
	"github.com/ajitpratap0/quasar/pkg/table"
)

// fillColumn moves one source column into one destination column. srcName
// resolves the column against the accessor by name, so schema order and
// source order are free to differ; destName is the table column the data
// lands in. The two names differ only for the index sentinel, whose data
// fills the synthesized primary key.
//
// The fast path is a kind-exact contiguous copy followed by a validity
// sweep over the source's null positions. Anything the copy cannot take,
// including every non-numeric destination, falls through to the iterative
// path, which reads cell by cell and may rewrite the column to a wider
// type along the way.
func (l *Loader) fillColumn(tbl *table.Table, col *table.Column, srcName, destName string, dt dtype.DType, isUpdate bool) error {
	nidx := -1
	for i, n := range l.names {
		if n == srcName {
			nidx = i
			break
		}
	}
	if nidx < 0 {
		return errors.UnknownColumn(srcName)
	}

	data, err := l.acc.ColumnBuffer(srcName, dt)
	if err != nil {
		return err
	}
	srcKind := l.kinds[nidx]

	timer := metrics.NewTimer("fill_column")
	defer func() {
		metrics.FillLatency.WithLabelValues("fill_column").Observe(float64(timer.Stop().Nanoseconds()))
	}()

	// A 64-bit integer source never bulk-fills an int32 or float64
	// destination: the copy would truncate or reinterpret, and only the
	// iterative path can promote when values genuinely do not fit.
	if srcKind == dtype.Int64 && (dt == dtype.Int32 || dt == dtype.Float64) {
		l.log.Debug("wide integer source, filling iteratively",
			zap.String("column", srcName),
			zap.String("dest_type", dt.String()),
		)
		if err := l.fillIterative(tbl, col, destName, data, dt, nidx, isUpdate); err != nil {
			return err
		}
		l.recordFill(tbl, destName, "iterative", isUpdate)
		return nil
	}

	if copyBulk(col, data.Buffer) {
		col.ValidAll()
		for _, row := range data.Nulls {
			if row < 0 || row >= col.Size() {
				continue
			}
			markAbsent(col, row, isUpdate)
		}
		l.recordFill(tbl, destName, "bulk", isUpdate)
		return nil
	}

	if err := l.fillIterative(tbl, col, destName, data, dt, nidx, isUpdate); err != nil {
		return err
	}
	l.recordFill(tbl, destName, "iterative", isUpdate)
	return nil
}

// recordFill flushes per-column metrics after a fill completes. The column
// is re-fetched by name because a promotion may have replaced it.
func (l *Loader) recordFill(tbl *table.Table, destName, path string, isUpdate bool) {
	col, ok := tbl.GetColumn(destName)
	if !ok {
		return
	}

	valid := col.CountValid()
	metrics.ColumnsFilled.WithLabelValues(path, col.DType().String()).Inc()
	metrics.CellsFilled.WithLabelValues(path).Add(float64(valid))

	if absent := col.Size() - valid; absent > 0 {
		mode := "clear"
		if isUpdate {
			mode = "unset"
		}
		metrics.CellsAbsent.WithLabelValues(mode).Add(float64(absent))
	}
}

// copyBulk copies the source buffer into the destination storage when both
// sides are the same fixed-width numeric kind and the source covers every
// destination row. Any other pairing reports failure so the caller falls
// back to the iterative path; no combination reinterprets or narrows bits.
func copyBulk(col *table.Column, buf *buffer.Buffer) bool {
	if !buf.Kind().IsNumeric() || buf.Kind() != col.DType() || buf.Len() < col.Size() {
		return false
	}

	n := col.Size()
	switch col.DType() {
	case dtype.Int8:
		src, _ := buf.Int8s()
		dst, _ := col.Int8s()
		copy(dst, src[:n])
	case dtype.Int16:
		src, _ := buf.Int16s()
		dst, _ := col.Int16s()
		copy(dst, src[:n])
	case dtype.Int32:
		src, _ := buf.Int32s()
		dst, _ := col.Int32s()
		copy(dst, src[:n])
	case dtype.Int64:
		src, _ := buf.Int64s()
		dst, _ := col.Int64s()
		copy(dst, src[:n])
	case dtype.Uint8:
		src, _ := buf.Uint8s()
		dst, _ := col.Uint8s()
		copy(dst, src[:n])
	case dtype.Uint16:
		src, _ := buf.Uint16s()
		dst, _ := col.Uint16s()
		copy(dst, src[:n])
	case dtype.Uint32:
		src, _ := buf.Uint32s()
		dst, _ := col.Uint32s()
		copy(dst, src[:n])
	case dtype.Uint64:
		src, _ := buf.Uint64s()
		dst, _ := col.Uint64s()
		copy(dst, src[:n])
	case dtype.Float32:
		src, _ := buf.Float32s()
		dst, _ := col.Float32s()
		copy(dst, src[:n])
	case dtype.Float64:
		src, _ := buf.Float64s()
		dst, _ := col.Float64s()
		copy(dst, src[:n])
	default:
		return false
	}
	return true
}

// fillIterative dispatches a per-cell fill on the destination type. Date,
// datetime, bool and string destinations each have a dedicated walk; the
// ten numeric kinds share one that can promote the column mid-fill.
func (l *Loader) fillIterative(tbl *table.Table, col *table.Column, destName string, data source.ColumnData, dt dtype.DType, nidx int, isUpdate bool) error {
	switch dt {
	case dtype.Time:
		return l.fillDatetime(col, data, nidx, isUpdate)
	case dtype.Date:
		return l.fillDate(col, data, nidx, isUpdate)
	case dtype.Bool:
		return l.fillBool(col, data, nidx, isUpdate)
	case dtype.Str:
		return l.fillString(col, data, nidx, isUpdate)
	default:
		if !dt.IsNumeric() {
			return errors.UnsupportedBuffer(destName, data.Buffer.Kind().String(), dt.String())
		}
		return l.fillNumeric(tbl, col, destName, data, dt, nidx, isUpdate)
	}
}

// fillNumeric walks a numeric destination cell by cell. Missing sentinels
// on a 64-bit destination promote the column to string, because the source
// is signaling values the numeric kinds cannot hold; the promotion is
// terminal and hands the rest of the fill to the string walk, which starts
// over at row zero so the whole column is uniformly encoded. An int32
// destination that meets an out-of-range value is rewritten to float64
// with its prior rows rehydrated, and the walk continues in place as
// floats. At most one rewrite happens per fill.
func (l *Loader) fillNumeric(tbl *table.Table, col *table.Column, destName string, data source.ColumnData, dt dtype.DType, nidx int, isUpdate bool) error {
	buf := data.Buffer
	promoted := false

	n := col.Size()
	if bl := buf.Len(); bl < n {
		n = bl
	}

	for row := 0; row < n; row++ {
		if buf.AbsentAt(row) {
			if !promoted && (dt == dtype.Int64 || dt == dtype.Float64) {
				next, err := tbl.PromoteColumn(destName, dtype.Str, row, false)
				if err != nil {
					return err
				}
				metrics.ColumnPromotions.WithLabelValues(dt.String(), dtype.Str.String()).Inc()
				return l.fillString(next, data, nidx, isUpdate)
			}
			markAbsent(col, row, isUpdate)
			continue
		}

		switch dt {
		case dtype.Int32:
			v, ok := buf.NumericAt(row)
			if !ok {
				markAbsent(col, row, isUpdate)
				continue
			}
			if v > math.MaxInt32 || v < math.MinInt32 {
				next, err := tbl.PromoteColumn(destName, dtype.Float64, row, true)
				if err != nil {
					return err
				}
				metrics.ColumnPromotions.WithLabelValues(dtype.Int32.String(), dtype.Float64.String()).Inc()
				col = next
				dt = dtype.Float64
				promoted = true
				if err := col.SetNth(row, v); err != nil {
					return err
				}
				continue
			}
			if err := col.SetNth(row, int32(v)); err != nil {
				return err
			}

		case dtype.Int64:
			v, ok := integerAt(buf, row)
			if !ok {
				markAbsent(col, row, isUpdate)
				continue
			}
			if err := col.SetNth(row, v); err != nil {
				return err
			}

		case dtype.Float64:
			v, ok := buf.NumericAt(row)
			if !ok {
				markAbsent(col, row, isUpdate)
				continue
			}
			if err := col.SetNth(row, v); err != nil {
				return err
			}

		default:
			if !storeNarrow(col, row, buf, dt) {
				markAbsent(col, row, isUpdate)
			}
		}
	}
	return nil
}

// integerAt reads element row as int64. The 64-bit integer kinds are read
// at native width so large values survive without a float64 round trip;
// every other numeric kind goes through the widened view with truncation
// toward zero.
func integerAt(buf *buffer.Buffer, row int) (int64, bool) {
	switch buf.Kind() {
	case dtype.Int64:
		vs, _ := buf.Int64s()
		return vs[row], true
	case dtype.Uint64:
		vs, _ := buf.Uint64s()
		if vs[row] > math.MaxInt64 {
			return 0, false
		}
		return int64(vs[row]), true
	case dtype.Time:
		vs, _ := buf.Epochs()
		return vs[row], true
	default:
		v, ok := buf.NumericAt(row)
		if !ok || math.IsNaN(v) {
			return 0, false
		}
		v = math.Trunc(v)
		if v >= math.MaxInt64 || v < math.MinInt64 {
			return 0, false
		}
		return int64(v), true
	}
}

// storeNarrow writes the widened value into a narrow numeric cell after a
// range check. A value the cell cannot represent reports false and the row
// is recorded missing rather than wrapped.
func storeNarrow(col *table.Column, row int, buf *buffer.Buffer, dt dtype.DType) bool {
	if dt == dtype.Uint64 {
		if vs, ok := buf.Int64s(); ok {
			if vs[row] < 0 {
				return false
			}
			return col.SetNth(row, uint64(vs[row])) == nil
		}
	}

	v, ok := buf.NumericAt(row)
	if !ok || math.IsNaN(v) {
		return false
	}
	t := math.Trunc(v)

	var err error
	switch dt {
	case dtype.Int8:
		if t < math.MinInt8 || t > math.MaxInt8 {
			return false
		}
		err = col.SetNth(row, int8(t))
	case dtype.Int16:
		if t < math.MinInt16 || t > math.MaxInt16 {
			return false
		}
		err = col.SetNth(row, int16(t))
	case dtype.Uint8:
		if t < 0 || t > math.MaxUint8 {
			return false
		}
		err = col.SetNth(row, uint8(t))
	case dtype.Uint16:
		if t < 0 || t > math.MaxUint16 {
			return false
		}
		err = col.SetNth(row, uint16(t))
	case dtype.Uint32:
		if t < 0 || t > math.MaxUint32 {
			return false
		}
		err = col.SetNth(row, uint32(t))
	case dtype.Uint64:
		if t < 0 || t >= math.MaxUint64 {
			return false
		}
		err = col.SetNth(row, uint64(t))
	case dtype.Float32:
		err = col.SetNth(row, float32(v))
	default:
		return false
	}
	return err == nil
}

// fillDatetime fills an epoch-millisecond destination. Datetime buffers
// already carry milliseconds and are written through; raw 64-bit integer
// buffers carry epoch seconds and are scaled, checking the missing
// sentinel first so it is never multiplied. Everything else marshals per
// cell.
func (l *Loader) fillDatetime(col *table.Column, data source.ColumnData, nidx int, isUpdate bool) error {
	buf := data.Buffer

	if epochs, ok := buf.Epochs(); ok {
		nulls := nullSet(data.Nulls)
		for row := 0; row < col.Size() && row < len(epochs); row++ {
			if _, miss := nulls[row]; miss || epochs[row] == dtype.NaT {
				markAbsent(col, row, isUpdate)
				continue
			}
			if err := col.SetNth(row, epochs[row]); err != nil {
				return err
			}
		}
		return nil
	}

	if vs, ok := buf.Int64s(); ok {
		nulls := nullSet(data.Nulls)
		for row := 0; row < col.Size() && row < len(vs); row++ {
			if _, miss := nulls[row]; miss || vs[row] == dtype.NaT {
				markAbsent(col, row, isUpdate)
				continue
			}
			if err := col.SetNth(row, vs[row]*1000); err != nil {
				return err
			}
		}
		return nil
	}

	for row := 0; row < col.Size(); row++ {
		v, ok := l.acc.MarshalCell(nidx, row, dtype.Time)
		if !ok {
			markAbsent(col, row, isUpdate)
			continue
		}
		ms, ok := v.(int64)
		if !ok {
			markAbsent(col, row, isUpdate)
			continue
		}
		if err := col.SetNth(row, ms); err != nil {
			return err
		}
	}
	return nil
}

// fillDate fills a calendar date destination, reading date buffers
// directly and marshaling everything else per cell.
func (l *Loader) fillDate(col *table.Column, data source.ColumnData, nidx int, isUpdate bool) error {
	if dates, ok := data.Buffer.Dates(); ok {
		nulls := nullSet(data.Nulls)
		for row := 0; row < col.Size() && row < len(dates); row++ {
			if _, miss := nulls[row]; miss {
				markAbsent(col, row, isUpdate)
				continue
			}
			if err := col.SetNth(row, dates[row]); err != nil {
				return err
			}
		}
		return nil
	}

	for row := 0; row < col.Size(); row++ {
		v, ok := l.acc.MarshalCell(nidx, row, dtype.Date)
		if !ok {
			markAbsent(col, row, isUpdate)
			continue
		}
		d, ok := v.(dtype.DateValue)
		if !ok {
			markAbsent(col, row, isUpdate)
			continue
		}
		if err := col.SetNth(row, d); err != nil {
			return err
		}
	}
	return nil
}

// fillBool fills a logical destination.
func (l *Loader) fillBool(col *table.Column, data source.ColumnData, nidx int, isUpdate bool) error {
	if bs, ok := data.Buffer.Bools(); ok {
		nulls := nullSet(data.Nulls)
		for row := 0; row < col.Size() && row < len(bs); row++ {
			if _, miss := nulls[row]; miss {
				markAbsent(col, row, isUpdate)
				continue
			}
			if err := col.SetNth(row, bs[row]); err != nil {
				return err
			}
		}
		return nil
	}

	for row := 0; row < col.Size(); row++ {
		v, ok := l.acc.MarshalCell(nidx, row, dtype.Bool)
		if !ok {
			markAbsent(col, row, isUpdate)
			continue
		}
		b, ok := v.(bool)
		if !ok {
			markAbsent(col, row, isUpdate)
			continue
		}
		if err := col.SetNth(row, b); err != nil {
			return err
		}
	}
	return nil
}

// fillString fills a text destination. String buffers are written through;
// other kinds marshal per cell, which is also how a promoted column picks
// up the numeric cells it left behind. Every value is normalized to valid
// UTF-8 and interned, so repeated values share one backing allocation.
func (l *Loader) fillString(col *table.Column, data source.ColumnData, nidx int, isUpdate bool) error {
	intern := stringpool.NewIntern()
	if ss, ok := data.Buffer.Strings(); ok {
		nulls := nullSet(data.Nulls)
		for row := 0; row < col.Size() && row < len(ss); row++ {
			if _, miss := nulls[row]; miss {
				markAbsent(col, row, isUpdate)
				continue
			}
			if err := col.SetNth(row, intern.Get(stringpool.SanitizeUTF8(ss[row]))); err != nil {
				return err
			}
		}
		return nil
	}

	for row := 0; row < col.Size(); row++ {
		v, ok := l.acc.MarshalCell(nidx, row, dtype.Str)
		if !ok {
			markAbsent(col, row, isUpdate)
			continue
		}
		s, ok := v.(string)
		if !ok {
			markAbsent(col, row, isUpdate)
			continue
		}
		if err := col.SetNth(row, intern.Get(stringpool.SanitizeUTF8(s))); err != nil {
			return err
		}
	}
	return nil
}

// markAbsent records a missing cell. Updates keep the prior storage so
// reconciliation can tell "absent from this batch" apart from an
// explicit null; initial loads zero it.
func markAbsent(col *table.Column, row int, isUpdate bool) {
	if isUpdate {
		col.Unset(row)
	} else {
		col.Clear(row)
	}
}

func nullSet(rows []int) map[int]struct{} {
	if len(rows) == 0 {
		return nil
	}
	s := make(map[int]struct{}, len(rows))
	for _, r := range rows {
		s[r] = struct{}{}
	}
	return s
}

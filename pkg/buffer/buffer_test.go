package buffer

import (
	"math"
	"testing"

	"github.com/ajitpratap0/quasar/pkg/dtype"
)

func TestKindExactAccess(t *testing.T) {
	b := FromInt32s([]int32{1, 2, 3})
	if b.Kind() != dtype.Int32 {
		t.Fatalf("Kind() = %v", b.Kind())
	}
	if b.Len() != 3 {
		t.Fatalf("Len() = %d", b.Len())
	}
	if s, ok := b.Int32s(); !ok || len(s) != 3 {
		t.Error("Int32s() should expose the backing slice")
	}
	if _, ok := b.Int64s(); ok {
		t.Error("Int64s() on an int32 buffer must refuse")
	}
	if _, ok := b.Float64s(); ok {
		t.Error("Float64s() on an int32 buffer must refuse")
	}
}

func TestEpochsAreNotInt64s(t *testing.T) {
	b := FromEpochs([]int64{0, dtype.NaT})
	if b.Kind() != dtype.Time {
		t.Fatalf("Kind() = %v", b.Kind())
	}
	if _, ok := b.Int64s(); ok {
		t.Error("Int64s() on a datetime buffer must refuse")
	}
	if s, ok := b.Epochs(); !ok || len(s) != 2 {
		t.Error("Epochs() should expose the backing slice")
	}
}

func TestNumericAtWidening(t *testing.T) {
	cases := []struct {
		b    *Buffer
		want float64
	}{
		{FromInt8s([]int8{-7}), -7},
		{FromInt16s([]int16{-300}), -300},
		{FromInt32s([]int32{1 << 20}), 1 << 20},
		{FromInt64s([]int64{1 << 40}), 1 << 40},
		{FromUint8s([]uint8{255}), 255},
		{FromUint16s([]uint16{65535}), 65535},
		{FromUint32s([]uint32{1 << 31}), 1 << 31},
		{FromUint64s([]uint64{1 << 40}), 1 << 40},
		{FromFloat32s([]float32{1.5}), 1.5},
		{FromFloat64s([]float64{-2.25}), -2.25},
	}
	for _, c := range cases {
		got, ok := c.b.NumericAt(0)
		if !ok || got != c.want {
			t.Errorf("%v NumericAt(0) = %v, %v; want %v", c.b.Kind(), got, ok, c.want)
		}
	}
	if _, ok := FromStrings([]string{"x"}).NumericAt(0); ok {
		t.Error("NumericAt on a string buffer must refuse")
	}
	if _, ok := FromBools([]bool{true}).NumericAt(0); ok {
		t.Error("NumericAt on a bool buffer must refuse")
	}
}

func TestAbsentAt(t *testing.T) {
	f := FromFloat64s([]float64{1, math.NaN()})
	if f.AbsentAt(0) || !f.AbsentAt(1) {
		t.Error("float64 NaN detection wrong")
	}
	f32 := FromFloat32s([]float32{float32(math.NaN()), 0})
	if !f32.AbsentAt(0) || f32.AbsentAt(1) {
		t.Error("float32 NaN detection wrong")
	}
	i := FromInt64s([]int64{5, dtype.NaT})
	if i.AbsentAt(0) || !i.AbsentAt(1) {
		t.Error("int64 NaT detection wrong")
	}
	ts := FromEpochs([]int64{dtype.NaT})
	if !ts.AbsentAt(0) {
		t.Error("datetime NaT detection wrong")
	}
	// Narrow integer kinds have no sentinel.
	n := FromInt32s([]int32{math.MinInt32})
	if n.AbsentAt(0) {
		t.Error("int32 has no missing sentinel")
	}
	o := FromObjects([]any{nil, "x"})
	if !o.AbsentAt(0) || o.AbsentAt(1) {
		t.Error("object nil detection wrong")
	}
}

func TestZeroValue(t *testing.T) {
	var b Buffer
	if b.Kind() != dtype.None || b.Len() != 0 {
		t.Errorf("zero Buffer: kind %v len %d", b.Kind(), b.Len())
	}
}

package dtype

import (
	"testing"
	"time"
)

func TestParseRoundTrip(t *testing.T) {
	all := []DType{
		Int8, Int16, Int32, Int64,
		Uint8, Uint16, Uint32, Uint64,
		Float32, Float64, Bool, Str, Date, Time, Object,
	}
	for _, dt := range all {
		got, err := Parse(dt.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", dt.String(), err)
		}
		if got != dt {
			t.Errorf("Parse(%q) = %v, want %v", dt.String(), got, dt)
		}
	}
}

func TestParseUnknown(t *testing.T) {
	if _, err := Parse("decimal"); err == nil {
		t.Error("Parse(decimal): expected error")
	}
	if _, err := Parse("none"); err == nil {
		t.Error("Parse(none): expected error, none is not a column type")
	}
}

func TestWidth(t *testing.T) {
	cases := map[DType]int{
		Int8: 1, Uint8: 1,
		Int16: 2, Uint16: 2,
		Int32: 4, Uint32: 4, Float32: 4,
		Int64: 8, Uint64: 8, Float64: 8,
		Bool: 0, Str: 0, Date: 0, Time: 0, Object: 0, None: 0,
	}
	for dt, want := range cases {
		if got := dt.Width(); got != want {
			t.Errorf("%v.Width() = %d, want %d", dt, got, want)
		}
	}
}

func TestWidened(t *testing.T) {
	if w, ok := Int32.Widened(); !ok || w != Float64 {
		t.Errorf("Int32.Widened() = %v, %v", w, ok)
	}
	if w, ok := Int64.Widened(); !ok || w != Str {
		t.Errorf("Int64.Widened() = %v, %v", w, ok)
	}
	if w, ok := Float64.Widened(); !ok || w != Str {
		t.Errorf("Float64.Widened() = %v, %v", w, ok)
	}
	for _, dt := range []DType{Int8, Uint64, Float32, Bool, Str, Date, Time} {
		if _, ok := dt.Widened(); ok {
			t.Errorf("%v.Widened(): unexpected widening", dt)
		}
	}
}

func TestDatePacking(t *testing.T) {
	d := NewDate(2024, 2, 29)
	if d.Year() != 2024 || d.Month() != 2 || d.Day() != 29 {
		t.Fatalf("round trip: got %d-%d-%d", d.Year(), d.Month(), d.Day())
	}
	if d.String() != "2024-02-29" {
		t.Errorf("String() = %q", d.String())
	}

	// Packed dates compare like calendar dates.
	if !(NewDate(2023, 12, 31) < NewDate(2024, 1, 1)) {
		t.Error("packed ordering broken across year boundary")
	}
	if !(NewDate(2024, 1, 31) < NewDate(2024, 2, 1)) {
		t.Error("packed ordering broken across month boundary")
	}
}

func TestDateFromTime(t *testing.T) {
	ts := time.Date(1999, time.July, 4, 23, 59, 0, 0, time.UTC)
	d := DateFromTime(ts)
	if d != NewDate(1999, 7, 4) {
		t.Errorf("DateFromTime = %v", d)
	}
	back := d.Time()
	if !back.Equal(time.Date(1999, time.July, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Time() = %v", back)
	}
}

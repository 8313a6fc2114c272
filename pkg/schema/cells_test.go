package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ajitpratap0/quasar/pkg/dtype"
)

func TestInferStrings(t *testing.T) {
	e := NewCellInference()

	cases := []struct {
		name  string
		cells []string
		want  dtype.DType
	}{
		{"integers", []string{"1", "-20", "300"}, dtype.Int64},
		{"floats", []string{"1.5", "-0.25", "3e2"}, dtype.Float64},
		{"ints widen to float", []string{"1", "2.5", "3"}, dtype.Float64},
		{"booleans", []string{"true", "FALSE", "yes"}, dtype.Bool},
		{"dates", []string{"2024-01-02", "2024-02-03"}, dtype.Date},
		{"timestamps", []string{"2024-01-02T10:00:00Z", "2024-01-02 11:30:00"}, dtype.Time},
		{"dates widen to datetime", []string{"2024-01-02", "2024-01-02T10:00:00Z"}, dtype.Time},
		{"plain text", []string{"alpha", "beta"}, dtype.Str},
		{"mixed falls back to string", []string{"1", "beta", "2", "3"}, dtype.Str},
		{"empty cells are nulls", []string{"", "", "7"}, dtype.Int64},
		{"all empty", []string{"", ""}, dtype.Str},
		{"no cells", nil, dtype.Str},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, e.InferStrings(c.cells))
		})
	}
}

func TestInferValues(t *testing.T) {
	e := NewCellInference()

	cases := []struct {
		name   string
		values []interface{}
		want   dtype.DType
	}{
		{"json integral numbers", []interface{}{1.0, 2.0, 3.0}, dtype.Int64},
		{"json fractional numbers", []interface{}{1.0, 2.5}, dtype.Float64},
		{"bools", []interface{}{true, false}, dtype.Bool},
		{"times", []interface{}{time.Now(), time.Now()}, dtype.Time},
		{"timestamp strings", []interface{}{"2024-01-02T10:00:00Z"}, dtype.Time},
		{"nils are nulls", []interface{}{nil, nil, "x"}, dtype.Str},
		{"mixed", []interface{}{1.0, "x", true, "y"}, dtype.Str},
		{"nested containers", []interface{}{map[string]interface{}{"k": 1}}, dtype.Str},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, e.InferValues(c.values))
		})
	}
}

func TestDetectString(t *testing.T) {
	e := NewCellInference()

	assert.Equal(t, dtype.Bool, e.DetectString("no"))
	assert.Equal(t, dtype.Int64, e.DetectString("42"))
	assert.Equal(t, dtype.Float64, e.DetectString("4.2"))
	assert.Equal(t, dtype.Time, e.DetectString("2023-12-31T23:59:59Z"))
	assert.Equal(t, dtype.Date, e.DetectString("2023-12-31"))
	assert.Equal(t, dtype.Str, e.DetectString("2023-13-45"), "implausible dates stay strings")
	assert.Equal(t, dtype.Str, e.DetectString("hello"))

	// Digit strings are integers, never unix timestamps.
	assert.Equal(t, dtype.Int64, e.DetectString("1700000000"))
}

func TestParseHelpers(t *testing.T) {
	t.Run("bool tokens", func(t *testing.T) {
		v, ok := ParseBoolString("TRUE")
		assert.True(t, ok)
		assert.True(t, v)

		v, ok = ParseBoolString("no")
		assert.True(t, ok)
		assert.False(t, v)

		_, ok = ParseBoolString("maybe")
		assert.False(t, ok)
	})

	t.Run("timestamps to epoch ms", func(t *testing.T) {
		ms, ok := ParseTimeString("1970-01-01T00:00:01Z")
		assert.True(t, ok)
		assert.Equal(t, int64(1000), ms)

		ms, ok = ParseTimeString("1970-01-01 00:00:02")
		assert.True(t, ok)
		assert.Equal(t, int64(2000), ms)

		_, ok = ParseTimeString("not a time")
		assert.False(t, ok)
	})

	t.Run("dates to packed form", func(t *testing.T) {
		d, ok := ParseDateString("2024-02-29")
		assert.True(t, ok)
		assert.Equal(t, dtype.NewDate(2024, 2, 29), d)

		d, ok = ParseDateString("2024/03/01")
		assert.True(t, ok)
		assert.Equal(t, dtype.NewDate(2024, 3, 1), d)

		d, ok = ParseDateString("07/04/1999")
		assert.True(t, ok)
		assert.Equal(t, dtype.NewDate(1999, 7, 4), d)

		_, ok = ParseDateString("99-99-99")
		assert.False(t, ok)
	})
}

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/quasar/pkg/dtype"
	"github.com/ajitpratap0/quasar/pkg/errors"
)

func TestParseYAML(t *testing.T) {
	doc := []byte(`
columns:
  - name: id
    type: int32
  - name: price
    type: float64
  - name: ts
    type: datetime
index: id
`)

	s, err := Parse(doc)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, "id", s.Index)

	cols := s.Columns()
	assert.Equal(t, Column{Name: "id", Type: dtype.Int32}, cols[0])
	assert.Equal(t, Column{Name: "price", Type: dtype.Float64}, cols[1])
	assert.Equal(t, Column{Name: "ts", Type: dtype.Time}, cols[2])

	dt, ok := s.Type("price")
	require.True(t, ok)
	assert.Equal(t, dtype.Float64, dt)

	_, ok = s.Type("missing")
	assert.False(t, ok)
}

func TestParseYAMLErrors(t *testing.T) {
	t.Run("unknown type", func(t *testing.T) {
		_, err := Parse([]byte("columns:\n  - name: x\n    type: decimal\n"))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := Parse([]byte("columns:\n  - type: int32\n"))
		require.Error(t, err)
	})

	t.Run("no columns", func(t *testing.T) {
		_, err := Parse([]byte("index: id\n"))
		require.Error(t, err)
	})

	t.Run("not yaml", func(t *testing.T) {
		_, err := Parse([]byte("{{{{"))
		require.Error(t, err)
	})
}

func TestMarshalRoundTrip(t *testing.T) {
	s := New(
		Column{Name: "a", Type: dtype.Int64},
		Column{Name: "b", Type: dtype.Str},
	)
	s.Index = "a"

	data, err := s.Marshal()
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, s.Columns(), back.Columns())
	assert.Equal(t, "a", back.Index)
}

func TestSchemaFile(t *testing.T) {
	path := t.TempDir() + "/schema.yaml"

	s := New(Column{Name: "x", Type: dtype.Bool})
	require.NoError(t, s.SaveFile(path))

	back, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, s.Columns(), back.Columns())

	_, err = LoadFile(path + ".nope")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestAppendAndString(t *testing.T) {
	s := New()
	s.Append("n", dtype.Int32)
	s.Append("s", dtype.Str)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "n:int32, s:string", s.String())
}

func TestInfer(t *testing.T) {
	t.Run("numeric kinds map to themselves", func(t *testing.T) {
		names := []string{"a", "b", "c", "d"}
		kinds := []dtype.DType{dtype.Int8, dtype.Uint64, dtype.Float32, dtype.Int64}

		s, err := Infer(names, kinds)
		require.NoError(t, err)
		cols := s.Columns()
		for i := range names {
			assert.Equal(t, kinds[i], cols[i].Type)
			assert.Equal(t, names[i], cols[i].Name)
		}
	})

	t.Run("non numeric kinds", func(t *testing.T) {
		s, err := Infer(
			[]string{"flag", "label", "ts", "day", "blob"},
			[]dtype.DType{dtype.Bool, dtype.Str, dtype.Time, dtype.Date, dtype.Object},
		)
		require.NoError(t, err)

		cols := s.Columns()
		assert.Equal(t, dtype.Bool, cols[0].Type)
		assert.Equal(t, dtype.Str, cols[1].Type)
		assert.Equal(t, dtype.Time, cols[2].Type)
		assert.Equal(t, dtype.Date, cols[3].Type)
		assert.Equal(t, dtype.Str, cols[4].Type, "object buffers land as string columns")
	})

	t.Run("unrecognized kind fails", func(t *testing.T) {
		_, err := Infer([]string{"x"}, []dtype.DType{dtype.None})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeMixedKinds))
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := Infer([]string{"x", "y"}, []dtype.DType{dtype.Int32})
		require.Error(t, err)
	})
}

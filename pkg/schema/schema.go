// Package schema defines the ordered column-name-to-type mapping that drives
// a fill, plus the inference that derives one from source buffers or raw
// cells when the caller supplies none. Column order is fill order.
package schema

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/quasar/pkg/dtype"
	"github.com/ajitpratap0/quasar/pkg/errors"
	stringpool "github.com/ajitpratap0/quasar/pkg/strings"
)

// Column is one schema entry.
type Column struct {
	Name string
	Type dtype.DType
}

// Schema is an ordered list of column declarations. Index optionally names
// the column whose values key each row; an empty Index means generated
// row-number keys.
type Schema struct {
	cols  []Column
	Index string
}

// New creates a schema from columns in fill order.
func New(cols ...Column) *Schema {
	s := &Schema{cols: make([]Column, len(cols))}
	copy(s.cols, cols)
	return s
}

// Append adds a column at the end of the fill order.
func (s *Schema) Append(name string, dt dtype.DType) {
	s.cols = append(s.cols, Column{Name: name, Type: dt})
}

// Columns returns the declarations in fill order.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.cols))
	copy(out, s.cols)
	return out
}

// Len returns the number of declared columns.
func (s *Schema) Len() int { return len(s.cols) }

// Type returns the declared type of the first column with the given name.
func (s *Schema) Type(name string) (dtype.DType, bool) {
	for _, c := range s.cols {
		if c.Name == name {
			return c.Type, true
		}
	}
	return dtype.None, false
}

// String renders the schema as "name:type" pairs for logs.
func (s *Schema) String() string {
	return stringpool.BuildString(func(b *stringpool.Builder) {
		for i, c := range s.cols {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.Name)
			b.WriteByte(':')
			b.WriteString(c.Type.String())
		}
	})
}

// fileSchema is the YAML wire form.
type fileSchema struct {
	Columns []fileColumn `yaml:"columns"`
	Index   string       `yaml:"index,omitempty"`
}

type fileColumn struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Parse decodes a YAML schema document.
func Parse(data []byte) (*Schema, error) {
	var f fileSchema
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse schema YAML")
	}

	if len(f.Columns) == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "schema declares no columns")
	}

	s := &Schema{Index: f.Index, cols: make([]Column, 0, len(f.Columns))}
	for _, fc := range f.Columns {
		if fc.Name == "" {
			return nil, errors.New(errors.ErrorTypeConfig, "schema column missing name")
		}
		dt, err := dtype.Parse(fc.Type)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid schema column type").
				WithDetail("column", fc.Name)
		}
		s.cols = append(s.cols, Column{Name: fc.Name, Type: dt})
	}
	return s, nil
}

// Marshal encodes the schema as YAML.
func (s *Schema) Marshal() ([]byte, error) {
	f := fileSchema{Index: s.Index, Columns: make([]fileColumn, len(s.cols))}
	for i, c := range s.cols {
		f.Columns[i] = fileColumn{Name: c.Name, Type: c.Type.String()}
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to marshal schema")
	}
	return data, nil
}

// LoadFile reads and parses a YAML schema file.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read schema file").
			WithDetail("path", path)
	}
	return Parse(data)
}

// SaveFile writes the schema as YAML.
func (s *Schema) SaveFile(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write schema file").
			WithDetail("path", path)
	}
	return nil
}

// Infer derives a schema from source column names and their buffer kinds.
// Each of the ten numeric widths maps to itself, as do bool, string, date
// and datetime; opaque object buffers map to string since their cells reach
// storage through per-cell marshaling.
func Infer(names []string, kinds []dtype.DType) (*Schema, error) {
	if len(names) != len(kinds) {
		return nil, errors.New(errors.ErrorTypeInternal, "column names and kinds differ in length").
			WithDetail("names", len(names)).
			WithDetail("kinds", len(kinds))
	}

	s := &Schema{cols: make([]Column, 0, len(names))}
	for i, name := range names {
		k := kinds[i]
		switch {
		case k.IsNumeric(), k == dtype.Bool, k == dtype.Str, k == dtype.Date, k == dtype.Time:
			s.cols = append(s.cols, Column{Name: name, Type: k})
		case k == dtype.Object:
			s.cols = append(s.cols, Column{Name: name, Type: dtype.Str})
		default:
			return nil, errors.MixedKinds(name)
		}
	}
	return s, nil
}

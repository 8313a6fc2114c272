package source

import (
	"encoding/csv"
	"io"

	"github.com/ajitpratap0/quasar/pkg/errors"
	stringpool "github.com/ajitpratap0/quasar/pkg/strings"
)

// CSVOptions configures CSV parsing. The zero value reads comma-separated
// text with a header row.
type CSVOptions struct {
	Comma    rune // field delimiter, ',' when zero
	NoHeader bool // first row is data; columns are named column_0, column_1, ...
}

// NewCSVAccessor parses CSV text and serves it through a DynamicAccessor.
// Column element types are inferred from the cells. Empty cells are nulls.
func NewCSVAccessor(r io.Reader, opts CSVOptions) (*DynamicAccessor, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to parse csv")
	}
	if len(records) == 0 {
		return NewDynamicAccessor(nil), nil
	}

	var names []string
	if opts.NoHeader {
		names = make([]string, len(records[0]))
		for i := range names {
			names[i] = stringpool.Sprintf("column_%d", i)
		}
	} else {
		names = append([]string(nil), records[0]...)
		records = records[1:]
	}

	columns := make([][]interface{}, len(names))
	for i := range columns {
		values := make([]interface{}, len(records))
		for r, record := range records {
			if record[i] != "" {
				values[r] = record[i]
			}
		}
		columns[i] = values
	}

	a := &DynamicAccessor{names: names, rows: len(records)}
	a.buildColumns(columns)
	return a, nil
}

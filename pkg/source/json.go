package source

import (
	"bytes"
	"io"

	"github.com/ajitpratap0/quasar/pkg/errors"
	jsonpool "github.com/ajitpratap0/quasar/pkg/json"
)

// NewJSONAccessor decodes row-oriented JSON, an array of objects with one
// object per row, and serves it through a DynamicAccessor. Numbers decode
// as json.Number so 64-bit integers keep their precision.
func NewJSONAccessor(r io.Reader) (*DynamicAccessor, error) {
	dec := jsonpool.NewDecoder(r)

	var rows []map[string]interface{}
	if err := dec.Decode(&rows); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "rows must be a JSON array of objects")
	}

	return NewDynamicAccessor(rows), nil
}

// NewJSONBytesAccessor is NewJSONAccessor over an in-memory document.
func NewJSONBytesAccessor(data []byte) (*DynamicAccessor, error) {
	return NewJSONAccessor(bytes.NewReader(data))
}

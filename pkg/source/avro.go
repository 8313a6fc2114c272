package source

import (
	"io"
	"strings"

	"github.com/linkedin/goavro/v2"

	"github.com/ajitpratap0/quasar/pkg/errors"
)

// NewAvroAccessor reads an Avro object container file and serves its
// records through a DynamicAccessor. Nullable union values are unwrapped
// to their inner value, and logical temporal types arrive from the codec
// as time.Time, so they land in datetime columns.
func NewAvroAccessor(r io.Reader) (*DynamicAccessor, error) {
	ocf, err := goavro.NewOCFReader(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "not an Avro object container file")
	}

	var rows []map[string]interface{}
	for ocf.Scan() {
		datum, err := ocf.Read()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to decode Avro record")
		}

		rec, ok := datum.(map[string]interface{})
		if !ok {
			return nil, errors.New(errors.ErrorTypeData, "Avro root type must be a record")
		}

		row := make(map[string]interface{}, len(rec))
		for name, value := range rec {
			row[name] = normalizeAvroValue(value)
		}
		rows = append(rows, row)
	}
	if err := ocf.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read Avro container")
	}

	return NewDynamicAccessor(rows), nil
}

var avroUnionKeys = map[string]bool{
	"boolean": true,
	"int":     true,
	"long":    true,
	"float":   true,
	"double":  true,
	"bytes":   true,
	"string":  true,
}

// normalizeAvroValue unwraps goavro's union encoding, which wraps non-null
// union values in a single-entry map keyed by the member type name. Keys
// with a dot are logical types ("long.timestamp-millis") or namespaced
// named types; both also unwrap.
func normalizeAvroValue(value interface{}) interface{} {
	if m, ok := value.(map[string]interface{}); ok && len(m) == 1 {
		for key, inner := range m {
			if avroUnionKeys[key] || strings.Contains(key, ".") {
				return inner
			}
		}
	}
	return value
}

package schema

import (
	"encoding/json" // For the json.Number type only
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ajitpratap0/quasar/pkg/dtype"
)

// CellInference detects a column's element type from raw cell values. Text
// sources deliver every cell as a string; dynamic sources deliver untyped
// values. Either way the column's type is the dominant vote across a sample
// of its cells, falling back to string when no type clearly wins.
type CellInference struct {
	datePatterns      []*regexp.Regexp
	timestampPatterns []*regexp.Regexp

	sampleSize          int
	confidenceThreshold float64
}

// NewCellInference creates an inferencer with default sampling.
func NewCellInference() *CellInference {
	e := &CellInference{
		sampleSize:          1000,
		confidenceThreshold: 0.95,
	}

	e.datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), // YYYY-MM-DD
		regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`), // YYYY/MM/DD
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`), // MM/DD/YYYY
	}

	e.timestampPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`), // ISO 8601
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`), // SQL timestamp
	}

	return e
}

// InferStrings infers the element type of a column of text cells. Empty
// cells are nulls and cast no vote.
func (e *CellInference) InferStrings(cells []string) dtype.DType {
	counts := make(map[dtype.DType]int)
	total := 0

	for i, cell := range cells {
		if i >= e.sampleSize {
			break
		}
		if cell == "" {
			continue
		}
		counts[e.DetectString(cell)]++
		total++
	}

	return e.resolve(counts, total)
}

// InferValues infers the element type of a column of dynamic values. Nil
// values are nulls and cast no vote.
func (e *CellInference) InferValues(values []interface{}) dtype.DType {
	counts := make(map[dtype.DType]int)
	total := 0

	for i, value := range values {
		if i >= e.sampleSize {
			break
		}
		if value == nil {
			continue
		}
		counts[e.detectValue(value)]++
		total++
	}

	return e.resolve(counts, total)
}

// resolve picks the dominant vote, merging compatible numeric and temporal
// votes before giving up and declaring the column a string.
func (e *CellInference) resolve(counts map[dtype.DType]int, total int) dtype.DType {
	if total == 0 {
		return dtype.Str
	}

	dominant := dtype.Str
	maxCount := 0
	for dt, count := range counts {
		if count > maxCount {
			maxCount = count
			dominant = dt
		}
	}

	if float64(maxCount)/float64(total) >= e.confidenceThreshold {
		return dominant
	}

	// Integers live happily in a float column.
	if counts[dtype.Int64]+counts[dtype.Float64] == total {
		return dtype.Float64
	}

	// Dates live happily in a datetime column.
	if counts[dtype.Date]+counts[dtype.Time] == total {
		return dtype.Time
	}

	return dtype.Str
}

// DetectString classifies a single text cell.
func (e *CellInference) DetectString(s string) dtype.DType {
	if isBooleanToken(s) {
		return dtype.Bool
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return dtype.Int64
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return dtype.Float64
	}

	for _, pattern := range e.timestampPatterns {
		if pattern.MatchString(s) {
			if _, ok := ParseTimeString(s); ok {
				return dtype.Time
			}
		}
	}

	for _, pattern := range e.datePatterns {
		if pattern.MatchString(s) {
			if _, ok := ParseDateString(s); ok {
				return dtype.Date
			}
		}
	}

	return dtype.Str
}

// detectValue classifies a single dynamic value.
func (e *CellInference) detectValue(value interface{}) dtype.DType {
	switch v := value.(type) {
	case bool:
		return dtype.Bool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return dtype.Int64
	case float32:
		return floatKind(float64(v))
	case float64:
		return floatKind(v)
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return dtype.Int64
		}
		return dtype.Float64
	case string:
		return e.DetectString(v)
	case time.Time:
		return dtype.Time
	default:
		return dtype.Str
	}
}

// floatKind votes int64 for integral values so dynamic rows that carry whole
// numbers as float64 can still produce integer columns.
func floatKind(f float64) dtype.DType {
	if f == float64(int64(f)) && f >= -(1<<62) && f < 1<<62 {
		return dtype.Int64
	}
	return dtype.Float64
}

func isBooleanToken(s string) bool {
	lower := strings.ToLower(s)
	return lower == "true" || lower == "false" || lower == "yes" || lower == "no"
}

// ParseBoolString parses boolean cell tokens.
func ParseBoolString(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	default:
		return false, false
	}
}

var timeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimeString parses a timestamp cell to epoch milliseconds UTC.
func ParseTimeString(s string) (int64, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// ParseDateString parses a calendar date cell.
func ParseDateString(s string) (dtype.DateValue, bool) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return dtype.DateFromTime(t), true
		}
	}
	return 0, false
}

package dbexport

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"
)

// numericText matches plain decimal numbers. Zero-padded codes and
// non-finite words like NaN stay text.
var numericText = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// ScanRowValues scans the current row into a slice of normalized values.
func ScanRowValues(rows Rows, cols []string) ([]any, error) {
	columns := make([]interface{}, len(cols))
	columnPointers := make([]interface{}, len(cols))
	for i := range columns {
		columnPointers[i] = &columns[i]
	}
	if err := rows.Scan(columnPointers...); err != nil {
		return nil, fmt.Errorf("error scanning row: %w", err)
	}
	vals := make([]any, len(cols))
	for i := range cols {
		vals[i] = normalizeValue(columns[i])
	}
	return vals, nil
}

// normalizeValue narrows a driver value to one of the cell types the
// renderers understand.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, int64, float64, bool:
		return t
	case time.Time:
		return t
	case *time.Time:
		if t == nil {
			return nil
		}
		return *t
	case []uint8:
		// numeric and decimal columns arrive as text from most drivers
		s := string(t)
		if numericText.MatchString(s) {
			if intVal, err := strconv.ParseInt(s, 10, 64); err == nil {
				return intVal
			}
			if floatVal, err := strconv.ParseFloat(s, 64); err == nil {
				return floatVal
			}
		}
		if !utf8.Valid(t) {
			return fmt.Sprintf("%X", t)
		}
		return s
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint:
		if uint64(t) > 1<<63-1 {
			return float64(t)
		}
		return int64(t)
	case uint64:
		if t > 1<<63-1 {
			return float64(t)
		}
		return int64(t)
	case float32:
		f, _ := strconv.ParseFloat(strconv.FormatFloat(float64(t), 'g', -1, 32), 64)
		return f
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

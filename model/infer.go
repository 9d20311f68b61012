package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/studiodesk/gridbrowser/grid"
)

// RowNumberField is added as the key field when a dataset has no field
// matching the requested key. It holds the 1-based record position.
const RowNumberField = "#"

var timeLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	time.DateOnly,
}

// number is satisfied by json.Number from any JSON decoder
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// classify returns the narrowest type that can hold v. Strings are
// inspected for timestamps; with parseText they are also tried as
// numbers and booleans, which is how untyped text sources are read.
func classify(v any, parseText bool) DataType {
	switch val := v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInt
	case float32, float64:
		return TypeFloat
	case time.Time:
		return TypeTime
	case number:
		if _, err := val.Int64(); err == nil {
			return TypeInt
		}
		return TypeFloat
	case string:
		if parseText {
			if _, err := strconv.ParseInt(val, 10, 64); err == nil {
				return TypeInt
			}
			if f, err := strconv.ParseFloat(val, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
				return TypeFloat
			}
			if strings.EqualFold(val, "true") || strings.EqualFold(val, "false") {
				return TypeBool
			}
		}
		if _, ok := parseTime(val); ok {
			return TypeTime
		}
		return TypeString
	default:
		return TypeString
	}
}

// unify returns the type of a column holding values of both a and b
func unify(a, b DataType) DataType {
	switch {
	case a == TypeNull:
		return b
	case b == TypeNull, a == b:
		return a
	case (a == TypeInt && b == TypeFloat) || (a == TypeFloat && b == TypeInt):
		return TypeFloat
	default:
		return TypeString
	}
}

func inferType(values []any, parseText bool) DataType {
	t := TypeNull
	for _, v := range values {
		t = unify(t, classify(v, parseText))
		if t == TypeString {
			break
		}
	}
	return t
}

// convertValue normalizes v into the Go type of t
//
//nolint:gocognit // one branch per source type and target type
func convertValue(v any, t DataType) (any, error) {
	if v == nil || t == TypeNull {
		return nil, nil
	}

	switch t {
	case TypeInt:
		switch val := v.(type) {
		case int:
			return int64(val), nil
		case int8:
			return int64(val), nil
		case int16:
			return int64(val), nil
		case int32:
			return int64(val), nil
		case int64:
			return val, nil
		case uint:
			return int64(val), nil
		case uint8:
			return int64(val), nil
		case uint16:
			return int64(val), nil
		case uint32:
			return int64(val), nil
		case uint64:
			if val <= math.MaxInt64 {
				return int64(val), nil
			}
		case float64:
			if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
				return int64(val), nil
			}
		case number:
			if i, err := val.Int64(); err == nil {
				return i, nil
			}
		case string:
			if i, err := strconv.ParseInt(val, 10, 64); err == nil {
				return i, nil
			}
		}
	case TypeFloat:
		switch val := v.(type) {
		case float64:
			return val, nil
		case float32:
			return float64(val), nil
		case number:
			if f, err := val.Float64(); err == nil {
				return f, nil
			}
		case string:
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return f, nil
			}
		default:
			if i, err := convertValue(v, TypeInt); err == nil {
				return float64(i.(int64)), nil
			}
		}
	case TypeBool:
		switch val := v.(type) {
		case bool:
			return val, nil
		case string:
			if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
				return b, nil
			}
		}
	case TypeTime:
		switch val := v.(type) {
		case time.Time:
			return val, nil
		case string:
			if tm, ok := parseTime(val); ok {
				return tm, nil
			}
		}
	case TypeString:
		return stringValue(v), nil
	}

	return nil, fmt.Errorf("cannot convert %v (%T) to %s", v, v, t)
}

// stringValue renders any value as text; nested documents become compact JSON
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return grid.FormatValue(val)
	}
}

// buildDataset infers field types over rows, normalizes every value and
// resolves the key field. rows are aligned with names.
func buildDataset(name string, names []string, rows [][]any, parseText bool, keyField string) (*Dataset, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, name)
	}

	fields := make([]Field, len(names))
	column := make([]any, len(rows))
	for c, n := range names {
		for r, row := range rows {
			column[r] = row[c]
		}
		fields[c] = Field{Name: n, Type: inferType(column, parseText)}
	}

	records := make([]Record, len(rows))
	for r, row := range rows {
		rec := make(Record, len(fields)+1)
		for c, f := range fields {
			v, err := convertValue(row[c], f.Type)
			if err != nil {
				return nil, fmt.Errorf("dataset %s record %d field %q: %w", name, r, f.Name, err)
			}
			rec[f.Name] = v
		}
		records[r] = rec
	}

	d := &Dataset{Name: name, KeyField: keyField, Fields: fields, Records: records}
	if _, err := d.Field(keyField); err != nil {
		d.KeyField = RowNumberField
		d.Fields = append([]Field{{Name: RowNumberField, Type: TypeInt}}, fields...)
		for r, rec := range records {
			rec[RowNumberField] = int64(r + 1)
		}
	}

	if err := checkKeys(d); err != nil {
		return nil, err
	}
	return d, nil
}

func checkKeys(d *Dataset) error {
	key := d.Info().KeyFunc()
	seen := make(map[string]int, len(d.Records))
	for i, rec := range d.Records {
		k := key(rec)
		if j, dup := seen[k]; dup {
			return fmt.Errorf("%w: dataset %s field %q value %q (records %d and %d)", ErrDuplicateKey, d.Name, d.KeyField, k, j, i)
		}
		seen[k] = i
	}
	return nil
}

package model

import (
	"fmt"

	"github.com/studiodesk/gridbrowser/grid"
)

// DataType is the inferred type of a field. Record values of a field are
// always of the matching Go type, or nil.
type DataType int

const (
	// TypeNull is a field where every value is missing.
	TypeNull DataType = iota
	// TypeString holds string values.
	TypeString
	// TypeInt holds int64 values.
	TypeInt
	// TypeFloat holds float64 values.
	TypeFloat
	// TypeBool holds bool values.
	TypeBool
	// TypeTime holds time.Time values.
	TypeTime
)

var dataTypeNames = map[DataType]string{
	TypeNull:   "null",
	TypeString: "string",
	TypeInt:    "int",
	TypeFloat:  "float",
	TypeBool:   "bool",
	TypeTime:   "time",
}

// String returns the string representation of a DataType
func (t DataType) String() string {
	if name, ok := dataTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler
func (t DataType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *DataType) UnmarshalText(text []byte) error {
	for dt, name := range dataTypeNames {
		if name == string(text) {
			*t = dt
			return nil
		}
	}
	return fmt.Errorf("unknown data type %q", string(text))
}

// Field describes one column of a dataset
type Field struct {
	Name string   `json:"name"`
	Type DataType `json:"type"`
}

// Record is one row of a dataset, keyed by field name
type Record map[string]any

// Dataset is a named collection of records sharing the same fields
type Dataset struct {
	Name     string
	KeyField string
	Fields   []Field
	Records  []Record
	Source   Source
}

// Source describes where a dataset was loaded from
type Source struct {
	URI    string `json:"uri"`
	Format string `json:"format"`
	Size   int64  `json:"size"`
}

// Lookup returns the record whose key is key
func (d *Dataset) Lookup(key string) (Record, error) {
	keyOf := d.Info().KeyFunc()
	for _, r := range d.Records {
		if keyOf(r) == key {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s[%s=%s]", ErrRecordNotFound, d.Name, d.KeyField, key)
}

// DatasetInfo is the summary of a dataset returned by the service
type DatasetInfo struct {
	Name       string  `json:"name"`
	KeyField   string  `json:"keyField"`
	Fields     []Field `json:"fields"`
	NumRecords int     `json:"numRecords"`
	Source     Source  `json:"source"`
}

// Info returns the dataset summary
func (d *Dataset) Info() DatasetInfo {
	return DatasetInfo{
		Name:       d.Name,
		KeyField:   d.KeyField,
		Fields:     d.Fields,
		NumRecords: len(d.Records),
		Source:     d.Source,
	}
}

// Field returns the field called name
func (d *Dataset) Field(name string) (Field, error) {
	return DatasetInfo{Name: d.Name, Fields: d.Fields}.Field(name)
}

// Field returns the field called name
func (i DatasetInfo) Field(name string) (Field, error) {
	for _, f := range i.Fields {
		if f.Name == name {
			return f, nil
		}
	}
	return Field{}, fmt.Errorf("%w: %q in dataset %q", ErrUnknownField, name, i.Name)
}

// KeyFunc returns the row identity used by the grid. Keys are the
// formatted value of the key field, so "1" and 1 are the same record.
func (i DatasetInfo) KeyFunc() func(Record) string {
	field := i.KeyField
	return func(r Record) string {
		return grid.FormatValue(r[field])
	}
}

// Columns builds grid columns for every field. All columns are sortable
// and filterable.
func (i DatasetInfo) Columns() []grid.Column[Record] {
	cols := make([]grid.Column[Record], len(i.Fields))
	for n, f := range i.Fields {
		name := f.Name
		cols[n] = grid.Column[Record]{
			Field:      name,
			Title:      name,
			Width:      defaultWidth(f.Type),
			Sortable:   true,
			Filterable: true,
			Value:      func(r Record) any { return r[name] },
		}
	}
	return cols
}

func defaultWidth(t DataType) int {
	switch t {
	case TypeBool:
		return 6
	case TypeInt, TypeFloat:
		return 10
	case TypeTime:
		return 20
	default:
		return 0
	}
}

// DecodeRecords converts records decoded from JSON back into their typed
// form: numbers into int64 or float64 and timestamps into time.Time.
func (i DatasetInfo) DecodeRecords(raw []map[string]any) ([]Record, error) {
	records := make([]Record, len(raw))
	for n, r := range raw {
		rec := make(Record, len(i.Fields))
		for _, f := range i.Fields {
			v, err := convertValue(r[f.Name], f.Type)
			if err != nil {
				return nil, fmt.Errorf("record %d field %q: %w", n, f.Name, err)
			}
			rec[f.Name] = v
		}
		records[n] = rec
	}
	return records, nil
}

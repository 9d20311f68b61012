package model

import (
	"fmt"

	"github.com/hangxie/parquet-go/v2/parquet"
)

// flatColumns returns the leaf columns of a flat schema in file order.
// Groups, repeated fields and an empty schema are rejected.
func flatColumns(schema []*parquet.SchemaElement) ([]*parquet.SchemaElement, error) {
	if len(schema) < 2 {
		return nil, ErrEmptyDataset
	}

	// schema[0] is the root
	leaves := make([]*parquet.SchemaElement, 0, len(schema)-1)
	for _, elem := range schema[1:] {
		if !elem.IsSetType() || (elem.NumChildren != nil && *elem.NumChildren > 0) {
			return nil, fmt.Errorf("%w: group %q", ErrNestedColumn, elem.Name)
		}
		if elem.RepetitionType != nil && *elem.RepetitionType == parquet.FieldRepetitionType_REPEATED {
			return nil, fmt.Errorf("%w: repeated %q", ErrNestedColumn, elem.Name)
		}
		leaves = append(leaves, elem)
	}
	return leaves, nil
}

func isDate(elem *parquet.SchemaElement) bool {
	if elem.LogicalType != nil && elem.LogicalType.IsSetDATE() {
		return true
	}
	return elem.ConvertedType != nil && *elem.ConvertedType == parquet.ConvertedType_DATE
}

func isDecimal(elem *parquet.SchemaElement) bool {
	if elem.LogicalType != nil && elem.LogicalType.IsSetDECIMAL() {
		return true
	}
	return elem.ConvertedType != nil && *elem.ConvertedType == parquet.ConvertedType_DECIMAL
}

// isText reports whether a byte array column is annotated as text
func isText(elem *parquet.SchemaElement) bool {
	if elem.LogicalType != nil && (elem.LogicalType.IsSetSTRING() || elem.LogicalType.IsSetJSON() || elem.LogicalType.IsSetENUM()) {
		return true
	}
	if elem.ConvertedType == nil {
		return false
	}
	switch *elem.ConvertedType {
	case parquet.ConvertedType_UTF8, parquet.ConvertedType_JSON, parquet.ConvertedType_ENUM:
		return true
	}
	return false
}

// timeUnit is the timestamp resolution of a column
type timeUnit int

const (
	unitNone timeUnit = iota
	unitMillis
	unitMicros
	unitNanos
)

func timestampUnit(elem *parquet.SchemaElement) timeUnit {
	if elem.LogicalType != nil && elem.LogicalType.IsSetTIMESTAMP() {
		unit := elem.LogicalType.TIMESTAMP.Unit
		switch {
		case unit == nil:
			return unitNone
		case unit.IsSetMILLIS():
			return unitMillis
		case unit.IsSetMICROS():
			return unitMicros
		case unit.IsSetNANOS():
			return unitNanos
		}
	}
	if elem.ConvertedType != nil {
		switch *elem.ConvertedType {
		case parquet.ConvertedType_TIMESTAMP_MILLIS:
			return unitMillis
		case parquet.ConvertedType_TIMESTAMP_MICROS:
			return unitMicros
		}
	}
	return unitNone
}

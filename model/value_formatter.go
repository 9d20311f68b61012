package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/hangxie/parquet-go/v2/types"
)

const secondsPerDay = 24 * 60 * 60

// parquetValue converts a value returned by the column reader into the
// normalized record form: dates and timestamps become time.Time, decimals
// become float64 and binary data that is not text is shown as hex.
func parquetValue(val any, elem *parquet.SchemaElement) any {
	if val == nil {
		return nil
	}
	ptype := elem.GetType()

	// INT96 values come through as 12-byte strings
	if ptype == parquet.Type_INT96 {
		if s, ok := val.(string); ok {
			return types.INT96ToTime(s).UTC()
		}
	}

	switch {
	case isDate(elem):
		if days, ok := val.(int32); ok {
			return time.Unix(int64(days)*secondsPerDay, 0).UTC()
		}
	case timestampUnit(elem) != unitNone:
		if n, ok := val.(int64); ok {
			return timestampValue(n, timestampUnit(elem))
		}
	case isDecimal(elem):
		return decimalValue(val, ptype, elem)
	}

	switch v := val.(type) {
	case int32:
		return int64(v)
	case float32:
		return float64(v)
	case []byte:
		return binaryValue(string(v), elem)
	case string:
		return binaryValue(v, elem)
	}
	return val
}

func timestampValue(n int64, unit timeUnit) time.Time {
	switch unit {
	case unitMillis:
		return time.UnixMilli(n).UTC()
	case unitMicros:
		return time.UnixMicro(n).UTC()
	default:
		return time.Unix(0, n).UTC()
	}
}

func decimalValue(val any, ptype parquet.Type, elem *parquet.SchemaElement) any {
	precision := int32(10) // default
	scale := int32(0)      // default
	if elem.Precision != nil {
		precision = *elem.Precision
	}
	if elem.Scale != nil {
		scale = *elem.Scale
	}

	switch d := types.ConvertDecimalValue(val, &ptype, int(precision), int(scale)).(type) {
	case float64:
		return d
	case float32:
		return float64(d)
	case string:
		if f, err := strconv.ParseFloat(d, 64); err == nil {
			return f
		}
		return d
	default:
		return fmt.Sprint(d)
	}
}

// binaryValue keeps text as-is and renders other byte arrays as hex
func binaryValue(s string, elem *parquet.SchemaElement) string {
	if s == "" || isText(elem) || IsValidUTF8(s) {
		return s
	}
	if len(s) <= 32 {
		return fmt.Sprintf("0x%X", s)
	}
	return fmt.Sprintf("<binary:%d bytes>", len(s))
}

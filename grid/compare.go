package grid

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatValue converts a cell value to its display and filter text.
// nil becomes the empty string; dates without a time of day print as
// 2006-01-02.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Compare orders two cell values by their natural ordering: numbers
// numerically, strings lexically, booleans false before true, times
// chronologically. nil sorts before everything else. Values of unrelated
// types are compared by their formatted text.
func Compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if ai, af, aInt, ok := asNumber(a); ok {
		if bi, bf, bInt, ok := asNumber(b); ok {
			if aInt && bInt {
				return cmp.Compare(ai, bi)
			}
			return cmp.Compare(af, bf)
		}
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	}

	return strings.Compare(FormatValue(a), FormatValue(b))
}

// asNumber reports whether v is a Go numeric value. Integers that fit in
// int64 are returned exactly in i with isInt set; f always holds the
// float64 approximation.
func asNumber(v any) (i int64, f float64, isInt bool, ok bool) {
	switch n := v.(type) {
	case int:
		return int64(n), float64(n), true, true
	case int8:
		return int64(n), float64(n), true, true
	case int16:
		return int64(n), float64(n), true, true
	case int32:
		return int64(n), float64(n), true, true
	case int64:
		return n, float64(n), true, true
	case uint:
		return uintNumber(uint64(n))
	case uint8:
		return int64(n), float64(n), true, true
	case uint16:
		return int64(n), float64(n), true, true
	case uint32:
		return int64(n), float64(n), true, true
	case uint64:
		return uintNumber(n)
	case float32:
		return 0, float64(n), false, true
	case float64:
		return 0, n, false, true
	}
	return 0, 0, false, false
}

func uintNumber(n uint64) (int64, float64, bool, bool) {
	if n > 1<<63-1 {
		return 0, float64(n), false, true
	}
	return int64(n), float64(n), true, true
}

// matcher tests lower-cased cell text against a lower-cased substring
// query. Lowering is not case folding: "ß" and "ss" stay distinct.
// A matcher is not safe for concurrent use.
type matcher struct {
	caser cases.Caser
}

func newMatcher() *matcher {
	return &matcher{caser: cases.Lower(language.Und)}
}

func (m *matcher) lower(s string) string {
	return m.caser.String(s)
}

func (m *matcher) contains(v any, lowerQuery string) bool {
	return strings.Contains(m.lower(FormatValue(v)), lowerQuery)
}

package grid

import "slices"

// Transform applies filters and then sort to rows and returns the result
// as a new slice; rows itself is never modified.
//
// Each non-empty filter keeps only rows whose formatted cell value
// contains the query, ignoring case; filters combine with AND. When sort
// is non-nil the result is ordered by the sort column using a stable sort,
// so rows with equal values keep their filtered relative order in both
// directions. Filters or a sort naming a field with no column (or a
// column without a Value func) impose nothing.
func Transform[T any](columns []Column[T], rows []T, filters Filters, sort *Sort) []T {
	byField := make(map[string]Column[T], len(columns))
	for _, c := range columns {
		byField[c.Field] = c
	}

	type predicate struct {
		value func(T) any
		query string
	}

	m := newMatcher()
	var predicates []predicate
	for field, q := range filters {
		if q == "" {
			continue
		}
		col, ok := byField[field]
		if !ok || col.Value == nil {
			continue
		}
		predicates = append(predicates, predicate{value: col.Value, query: m.lower(q)})
	}

	out := make([]T, 0, len(rows))
rowLoop:
	for _, row := range rows {
		for _, p := range predicates {
			if !m.contains(p.value(row), p.query) {
				continue rowLoop
			}
		}
		out = append(out, row)
	}

	if sort == nil {
		return out
	}
	col, ok := byField[sort.Field]
	if !ok || col.Value == nil {
		return out
	}

	// extract sort keys once so the comparator does not call Value O(n log n) times
	type keyed struct {
		row T
		key any
	}
	decorated := make([]keyed, len(out))
	for i, row := range out {
		decorated[i] = keyed{row: row, key: col.Value(row)}
	}
	desc := sort.Direction == Descending
	slices.SortStableFunc(decorated, func(a, b keyed) int {
		c := Compare(a.key, b.key)
		if desc {
			return -c
		}
		return c
	})
	for i := range decorated {
		out[i] = decorated[i].row
	}
	return out
}

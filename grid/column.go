// Package grid implements a virtualized, sortable, filterable and selectable
// data grid engine. It decides which logical rows exist, in what order, and
// which contiguous slice of them is materialized for display. Rendering is
// left to the caller.
package grid

import "fmt"

// Column describes one column of the grid. Columns are fixed for the
// lifetime of a Grid; reconfiguring columns means building a new Grid.
type Column[T any] struct {
	// Field identifies the column in filter and sort state.
	Field string

	// Title is the header label.
	Title string

	// Width is an optional display width hint, 0 means unspecified.
	Width int

	// Sortable enables header-click sorting.
	Sortable bool

	// Filterable enables a per-column substring filter.
	Filterable bool

	// Value extracts the cell value from a row. It must not mutate the row.
	Value func(row T) any

	// Render optionally formats the cell for display. index is the
	// position of the row in the transformed rows.
	Render func(value any, row T, index int) string
}

// Cell returns the display text of this column for row.
func (c Column[T]) Cell(row T, index int) string {
	var v any
	if c.Value != nil {
		v = c.Value(row)
	}
	if c.Render != nil {
		return c.Render(v, row, index)
	}
	return FormatValue(v)
}

// SortDirection specifies the direction of sorting.
type SortDirection int

const (
	// Ascending orders by natural ordering.
	Ascending SortDirection = iota
	// Descending reverses the comparator, not the output.
	Descending
)

// String returns the string representation of a SortDirection.
func (d SortDirection) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return fmt.Sprintf("unknown(%d)", int(d))
	}
}

// Flip returns the opposite direction.
func (d SortDirection) Flip() SortDirection {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// ParseSortDirection converts "asc"/"desc" into a SortDirection.
// Anything else is reported as not ok.
func ParseSortDirection(s string) (SortDirection, bool) {
	switch s {
	case "asc", "":
		return Ascending, true
	case "desc":
		return Descending, true
	}
	return Ascending, false
}

// Sort is the single active sort key. A nil *Sort means input order.
type Sort struct {
	Field     string
	Direction SortDirection
}

// Filters maps a column field to a substring query. Missing or empty
// entries impose no constraint.
type Filters map[string]string

// Active returns the number of non-empty filter entries.
func (f Filters) Active() int {
	n := 0
	for _, q := range f {
		if q != "" {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of f.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

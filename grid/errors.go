package grid

import "errors"

var (
	// ErrInvalidItemHeight is returned when the configured row height is not positive
	ErrInvalidItemHeight = errors.New("item height must be positive")

	// ErrInvalidContainerHeight is returned when the configured viewport height is not positive
	ErrInvalidContainerHeight = errors.New("container height must be positive")

	// ErrDuplicateColumn is returned when two columns share a field
	ErrDuplicateColumn = errors.New("duplicate column field")

	// ErrUnknownColumn is returned when a field does not name a configured column
	ErrUnknownColumn = errors.New("unknown column")

	// ErrColumnNotSortable is returned when sorting is requested on a non-sortable column
	ErrColumnNotSortable = errors.New("column is not sortable")

	// ErrColumnNotFilterable is returned when a filter is set on a non-filterable column
	ErrColumnNotFilterable = errors.New("column is not filterable")

	// ErrInvalidRowIndex is returned when a row index is outside the transformed rows
	ErrInvalidRowIndex = errors.New("invalid row index")

	// ErrDuplicateKey is returned when two rows yield the same key
	ErrDuplicateKey = errors.New("duplicate row key")

	// ErrNilKeyFunc is returned when no key extraction function is supplied
	ErrNilKeyFunc = errors.New("key function is nil")
)

package grid

import (
	"context"
	"fmt"
	"log/slog"
)

// Default configuration values.
const (
	DefaultItemHeight      = 48
	DefaultContainerHeight = 400
	DefaultEmptyMessage    = "No data available"
)

// State is the display state of the row area.
type State int

const (
	// StateReady means there are rows to render.
	StateReady State = iota
	// StateLoading means the caller is still fetching rows; the empty
	// message is suppressed.
	StateLoading
	// StateEmpty means the transformed rows are empty.
	StateEmpty
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateLoading:
		return "loading"
	case StateEmpty:
		return "empty"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// VisibleRow is one materialized row.
type VisibleRow[T any, K comparable] struct {
	// Index is the position in the transformed rows.
	Index    int
	Row      T
	Key      K
	Selected bool
}

type settings struct {
	itemHeight      int
	containerHeight int
	emptyMessage    string
	logger          *slog.Logger
}

// Option configures a Grid.
type Option func(*settings)

// WithItemHeight sets the fixed row height.
func WithItemHeight(h int) Option {
	return func(s *settings) { s.itemHeight = h }
}

// WithContainerHeight sets the viewport height.
func WithContainerHeight(h int) Option {
	return func(s *settings) { s.containerHeight = h }
}

// WithEmptyMessage sets the text shown when no rows match.
func WithEmptyMessage(msg string) Option {
	return func(s *settings) { s.emptyMessage = msg }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// Grid is the interaction controller. It owns filter, sort, selection and
// scroll state, and keeps the transformed rows and the window current.
//
// Every event method runs to completion synchronously: when it returns,
// Rows, Window and Visible reflect the event. Scrolling only recomputes the
// window; filter, sort and row changes recompute the transformed rows.
// A Grid is not safe for concurrent use.
type Grid[T any, K comparable] struct {
	columns []Column[T]
	byField map[string]int
	key     func(T) K
	cfg     settings

	onRowClick        func(row T, index int)
	onRowDoubleClick  func(row T, index int)
	onSelectionChange func(sel Selection[K])

	rows      []T
	filters   Filters
	sort      *Sort
	scrollTop int
	loading   bool
	selection Selection[K]

	view     []T
	viewKeys []K
	window   Window
}

// New creates a Grid over columns. key extracts the stable identity of a
// row and must return the same value for a row regardless of its position.
func New[T any, K comparable](columns []Column[T], key func(T) K, opts ...Option) (*Grid[T, K], error) {
	if key == nil {
		return nil, ErrNilKeyFunc
	}

	cfg := settings{
		itemHeight:      DefaultItemHeight,
		containerHeight: DefaultContainerHeight,
		emptyMessage:    DefaultEmptyMessage,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.itemHeight <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidItemHeight, cfg.itemHeight)
	}
	if cfg.containerHeight <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidContainerHeight, cfg.containerHeight)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	byField := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := byField[c.Field]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Field)
		}
		byField[c.Field] = i
	}

	g := &Grid[T, K]{
		columns: append([]Column[T](nil), columns...),
		byField: byField,
		key:     key,
		cfg:     cfg,
		filters: Filters{},
	}
	g.retransform()
	return g, nil
}

// SetOnRowClick sets the callback fired after a row click has toggled the
// row's selection.
func (g *Grid[T, K]) SetOnRowClick(fn func(row T, index int)) *Grid[T, K] {
	g.onRowClick = fn
	return g
}

// SetOnRowDoubleClick sets the callback fired on a row double click.
func (g *Grid[T, K]) SetOnRowDoubleClick(fn func(row T, index int)) *Grid[T, K] {
	g.onRowDoubleClick = fn
	return g
}

// SetOnSelectionChange sets the callback fired whenever an explicit
// selection operation changes the selection.
func (g *Grid[T, K]) SetOnSelectionChange(fn func(sel Selection[K])) *Grid[T, K] {
	g.onSelectionChange = fn
	return g
}

// SetRows replaces the source rows. Rows must have unique keys; on a
// collision the previous rows are kept and ErrDuplicateKey is returned.
// Filter, sort and selection state are untouched.
func (g *Grid[T, K]) SetRows(rows []T) error {
	seen := make(map[K]int, len(rows))
	for i, row := range rows {
		k := g.key(row)
		if j, dup := seen[k]; dup {
			return fmt.Errorf("%w: %v (rows %d and %d)", ErrDuplicateKey, k, j, i)
		}
		seen[k] = i
	}
	g.rows = rows
	g.retransform()
	return nil
}

// SetLoading marks the rows as still being fetched.
func (g *Grid[T, K]) SetLoading(loading bool) {
	g.loading = loading
}

// Scroll handles a scroll event. Only the window is recomputed.
func (g *Grid[T, K]) Scroll(scrollTop int) {
	g.scrollTop = scrollTop
	g.rewindow()
}

// ScrollBy scrolls relative to the current offset.
func (g *Grid[T, K]) ScrollBy(delta int) {
	g.Scroll(g.scrollTop + delta)
}

// ScrollToIndex scrolls the minimum distance that brings the row at index
// fully into the viewport.
func (g *Grid[T, K]) ScrollToIndex(index int) error {
	if index < 0 || index >= len(g.view) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidRowIndex, index, len(g.view))
	}
	top := index * g.cfg.itemHeight
	bottom := top + g.cfg.itemHeight
	switch {
	case top < g.scrollTop:
		g.Scroll(top)
	case bottom > g.scrollTop+g.cfg.containerHeight:
		g.Scroll(bottom - g.cfg.containerHeight)
	}
	return nil
}

// SetContainerHeight handles a viewport resize.
func (g *Grid[T, K]) SetContainerHeight(h int) error {
	if h <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidContainerHeight, h)
	}
	g.cfg.containerHeight = h
	g.rewindow()
	return nil
}

// ClickHeader handles a header click: a sortable column that is already
// the sort field flips direction, any other sortable column becomes the
// sort field ascending. A click on a non-sortable column is a no-op and
// returns nil: a rendered header cell is always clickable, so the click is
// not a caller error. SetSort, which names the column explicitly, reports
// ErrColumnNotSortable instead. Only an unknown field is an error.
func (g *Grid[T, K]) ClickHeader(field string) error {
	col, err := g.column(field)
	if err != nil {
		return err
	}
	if !col.Sortable {
		return nil
	}
	if g.sort != nil && g.sort.Field == field {
		g.sort = &Sort{Field: field, Direction: g.sort.Direction.Flip()}
	} else {
		g.sort = &Sort{Field: field, Direction: Ascending}
	}
	g.retransform()
	return nil
}

// SetSort sets the active sort explicitly.
func (g *Grid[T, K]) SetSort(field string, dir SortDirection) error {
	col, err := g.column(field)
	if err != nil {
		return err
	}
	if !col.Sortable {
		return fmt.Errorf("%w: %q", ErrColumnNotSortable, field)
	}
	g.sort = &Sort{Field: field, Direction: dir}
	g.retransform()
	return nil
}

// ClearSort restores input order.
func (g *Grid[T, K]) ClearSort() {
	if g.sort == nil {
		return
	}
	g.sort = nil
	g.retransform()
}

// SetFilter handles a filter input change on one column. An empty query
// removes the constraint.
func (g *Grid[T, K]) SetFilter(field, query string) error {
	col, err := g.column(field)
	if err != nil {
		return err
	}
	if !col.Filterable {
		return fmt.Errorf("%w: %q", ErrColumnNotFilterable, field)
	}
	if g.filters[field] == query {
		return nil
	}
	if query == "" {
		delete(g.filters, field)
	} else {
		g.filters[field] = query
	}
	g.retransform()
	return nil
}

// ResetFilters removes every filter.
func (g *Grid[T, K]) ResetFilters() {
	if len(g.filters) == 0 {
		return
	}
	g.filters = Filters{}
	g.retransform()
}

// ClickRow handles a click on the transformed row at index: the row's
// selection is toggled, then the row click callback fires.
func (g *Grid[T, K]) ClickRow(index int) error {
	row, err := g.Row(index)
	if err != nil {
		return err
	}
	g.changeSelection(g.selection.Toggle(g.viewKeys[index]))
	if g.onRowClick != nil {
		g.onRowClick(row, index)
	}
	return nil
}

// DoubleClickRow handles a double click on the transformed row at index.
// The selection does not change.
func (g *Grid[T, K]) DoubleClickRow(index int) error {
	row, err := g.Row(index)
	if err != nil {
		return err
	}
	if g.onRowDoubleClick != nil {
		g.onRowDoubleClick(row, index)
	}
	return nil
}

// ToggleAll handles the header checkbox: when every filtered row is
// selected the selection is cleared, otherwise it becomes exactly the
// filtered rows.
func (g *Grid[T, K]) ToggleAll() {
	if g.AllSelected() {
		g.ClearSelection()
		return
	}
	g.SelectAll()
}

// SelectAll selects exactly the currently filtered rows.
func (g *Grid[T, K]) SelectAll() {
	g.changeSelection(g.selection.SelectAll(g.viewKeys))
}

// ClearSelection deselects everything, including rows hidden by filters.
func (g *Grid[T, K]) ClearSelection() {
	g.changeSelection(g.selection.Clear())
}

// SetSelection replaces the selection without firing the selection
// callback, for callers that own the selection themselves.
func (g *Grid[T, K]) SetSelection(sel Selection[K]) {
	g.selection = sel
}

// Columns returns the configured columns.
func (g *Grid[T, K]) Columns() []Column[T] {
	return g.columns
}

// Column returns the column for field.
func (g *Grid[T, K]) Column(field string) (Column[T], error) {
	return g.column(field)
}

// Rows returns the transformed rows. The slice must not be modified.
func (g *Grid[T, K]) Rows() []T {
	return g.view
}

// Len returns the number of transformed rows.
func (g *Grid[T, K]) Len() int {
	return len(g.view)
}

// SourceLen returns the number of source rows.
func (g *Grid[T, K]) SourceLen() int {
	return len(g.rows)
}

// Row returns the transformed row at index.
func (g *Grid[T, K]) Row(index int) (T, error) {
	if index < 0 || index >= len(g.view) {
		var zero T
		return zero, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidRowIndex, index, len(g.view))
	}
	return g.view[index], nil
}

// Keys returns the keys of the transformed rows, in order.
func (g *Grid[T, K]) Keys() []K {
	return g.viewKeys
}

// Window returns the current window.
func (g *Grid[T, K]) Window() Window {
	return g.window
}

// Visible returns the materialized rows with their selection state.
func (g *Grid[T, K]) Visible() []VisibleRow[T, K] {
	w := g.window
	if w.Empty() {
		return nil
	}
	out := make([]VisibleRow[T, K], 0, w.Count)
	for i := w.StartIndex; i <= w.EndIndex; i++ {
		k := g.viewKeys[i]
		out = append(out, VisibleRow[T, K]{
			Index:    i,
			Row:      g.view[i],
			Key:      k,
			Selected: g.selection.Has(k),
		})
	}
	return out
}

// Selection returns the current selection.
func (g *Grid[T, K]) Selection() Selection[K] {
	return g.selection
}

// IsSelected reports whether key is selected.
func (g *Grid[T, K]) IsSelected(key K) bool {
	return g.selection.Has(key)
}

// AllSelected is the header checkbox state: true when there is at least
// one filtered row and all of them are selected.
func (g *Grid[T, K]) AllSelected() bool {
	return g.selection.ContainsAll(g.viewKeys)
}

// Sort returns the active sort, if any.
func (g *Grid[T, K]) Sort() (Sort, bool) {
	if g.sort == nil {
		return Sort{}, false
	}
	return *g.sort, true
}

// SortIndicator returns the header arrow for field.
func (g *Grid[T, K]) SortIndicator(field string) string {
	if g.sort == nil || g.sort.Field != field {
		return ""
	}
	if g.sort.Direction == Descending {
		return "↓"
	}
	return "↑"
}

// Filters returns a copy of the filter state.
func (g *Grid[T, K]) Filters() Filters {
	return g.filters.Clone()
}

// Filter returns the query for field.
func (g *Grid[T, K]) Filter(field string) string {
	return g.filters[field]
}

// State returns what the row area should show.
func (g *Grid[T, K]) State() State {
	switch {
	case g.loading:
		return StateLoading
	case len(g.view) == 0:
		return StateEmpty
	default:
		return StateReady
	}
}

// EmptyMessage returns the configured empty-state text.
func (g *Grid[T, K]) EmptyMessage() string {
	return g.cfg.emptyMessage
}

// Summary returns the footer text, e.g. "12 items (3 selected)".
func (g *Grid[T, K]) Summary() string {
	s := fmt.Sprintf("%d items", len(g.view))
	if n := g.selection.Len(); n > 0 {
		s += fmt.Sprintf(" (%d selected)", n)
	}
	return s
}

// ScrollTop returns the clamped scroll offset.
func (g *Grid[T, K]) ScrollTop() int {
	return g.scrollTop
}

// MaxScrollTop returns the largest valid scroll offset.
func (g *Grid[T, K]) MaxScrollTop() int {
	return MaxScrollTop(len(g.view), g.cfg.itemHeight, g.cfg.containerHeight)
}

// ItemHeight returns the row height.
func (g *Grid[T, K]) ItemHeight() int {
	return g.cfg.itemHeight
}

// ContainerHeight returns the viewport height.
func (g *Grid[T, K]) ContainerHeight() int {
	return g.cfg.containerHeight
}

func (g *Grid[T, K]) column(field string) (Column[T], error) {
	i, ok := g.byField[field]
	if !ok {
		return Column[T]{}, fmt.Errorf("%w: %q", ErrUnknownColumn, field)
	}
	return g.columns[i], nil
}

func (g *Grid[T, K]) changeSelection(sel Selection[K]) {
	g.selection = sel
	if g.onSelectionChange != nil {
		g.onSelectionChange(sel)
	}
}

func (g *Grid[T, K]) retransform() {
	g.view = Transform(g.columns, g.rows, g.filters, g.sort)
	g.viewKeys = make([]K, len(g.view))
	for i, row := range g.view {
		g.viewKeys[i] = g.key(row)
	}
	if g.cfg.logger.Enabled(context.Background(), slog.LevelDebug) {
		order := "none"
		if g.sort != nil {
			order = g.sort.Field + " " + g.sort.Direction.String()
		}
		g.cfg.logger.Debug("rows transformed",
			"source", len(g.rows),
			"rows", len(g.view),
			"filters", g.filters.Active(),
			"sort", order)
	}
	g.rewindow()
}

// rewindow clamps the scroll offset to the current row count, so a
// shrinking row set never leaves the window pointing past the end.
func (g *Grid[T, K]) rewindow() {
	n, ih, ch := len(g.view), g.cfg.itemHeight, g.cfg.containerHeight
	g.scrollTop = ClampScrollTop(n, ih, ch, g.scrollTop)
	// heights were validated when they were set
	g.window, _ = ComputeWindow(n, ih, ch, g.scrollTop)
}

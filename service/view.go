package service

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/studiodesk/gridbrowser/grid"
	"github.com/studiodesk/gridbrowser/model"
)

// filterPrefix marks filter query parameters: filter.<field>=<query>
const filterPrefix = "filter."

// ViewOption holds the grid geometry used when a request does not set it
type ViewOption struct {
	ItemHeight      int
	ContainerHeight int
	EmptyMessage    string
}

// DefaultViewOption returns the grid defaults
func DefaultViewOption() ViewOption {
	return ViewOption{
		ItemHeight:      grid.DefaultItemHeight,
		ContainerHeight: grid.DefaultContainerHeight,
		EmptyMessage:    grid.DefaultEmptyMessage,
	}
}

// ViewRequest is the complete grid state of one stateless view call
type ViewRequest struct {
	Sort            *grid.Sort
	Filters         grid.Filters
	Selected        []string
	ScrollTop       int
	ItemHeight      int
	ContainerHeight int
}

// ParseViewRequest reads a view request from query parameters. Missing
// heights fall back to defaults.
func ParseViewRequest(q url.Values, defaults ViewOption) (ViewRequest, error) {
	req := ViewRequest{
		Filters:         grid.Filters{},
		ItemHeight:      defaults.ItemHeight,
		ContainerHeight: defaults.ContainerHeight,
	}

	ints := []struct {
		name   string
		target *int
	}{
		{"scrollTop", &req.ScrollTop},
		{"itemHeight", &req.ItemHeight},
		{"height", &req.ContainerHeight},
	}
	for _, p := range ints {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return ViewRequest{}, fmt.Errorf("%w: %s=%q", ErrInvalidParameter, p.name, raw)
		}
		*p.target = v
	}

	if field := q.Get("sort"); field != "" {
		dir, ok := grid.ParseSortDirection(q.Get("dir"))
		if !ok {
			return ViewRequest{}, fmt.Errorf("%w: dir=%q", ErrInvalidParameter, q.Get("dir"))
		}
		req.Sort = &grid.Sort{Field: field, Direction: dir}
	}

	for key, values := range q {
		if field, ok := strings.CutPrefix(key, filterPrefix); ok && len(values) > 0 && values[0] != "" {
			req.Filters[field] = values[0]
		}
	}

	req.Selected = q["sel"]
	return req, nil
}

// Query encodes the request as query parameters, the inverse of
// ParseViewRequest.
func (r ViewRequest) Query() url.Values {
	q := url.Values{}
	if r.Sort != nil {
		q.Set("sort", r.Sort.Field)
		q.Set("dir", r.Sort.Direction.String())
	}
	for field, query := range r.Filters {
		if query != "" {
			q.Set(filterPrefix+field, query)
		}
	}
	for _, key := range r.Selected {
		q.Add("sel", key)
	}
	if r.ScrollTop != 0 {
		q.Set("scrollTop", strconv.Itoa(r.ScrollTop))
	}
	if r.ItemHeight != 0 {
		q.Set("itemHeight", strconv.Itoa(r.ItemHeight))
	}
	if r.ContainerHeight != 0 {
		q.Set("height", strconv.Itoa(r.ContainerHeight))
	}
	return q
}

// clone returns a deep copy so links can be derived from one request
func (r ViewRequest) clone() ViewRequest {
	out := r
	if r.Sort != nil {
		s := *r.Sort
		out.Sort = &s
	}
	out.Filters = r.Filters.Clone()
	out.Selected = append([]string(nil), r.Selected...)
	return out
}

// ViewRow is one materialized row of a view
type ViewRow struct {
	Index    int          `json:"index"`
	Key      string       `json:"key"`
	Selected bool         `json:"selected"`
	Record   model.Record `json:"record"`
}

// ViewSort is the active sort of a view
type ViewSort struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// ViewResponse is the result of running the grid over a dataset
type ViewResponse struct {
	Dataset       string       `json:"dataset"`
	Total         int          `json:"total"`
	SourceTotal   int          `json:"sourceTotal"`
	Window        grid.Window  `json:"window"`
	TrailingSpace int          `json:"trailingSpace"`
	Rows          []ViewRow    `json:"rows"`
	Summary       string       `json:"summary"`
	AllSelected   bool         `json:"allSelected"`
	Selected      []string     `json:"selected"`
	Sort          *ViewSort    `json:"sort,omitempty"`
	Filters       grid.Filters `json:"filters,omitempty"`
	EmptyMessage  string       `json:"emptyMessage,omitempty"`
}

// newGrid builds a grid over d with the state in req applied
func (s *DatasetService) newGrid(d *model.Dataset, req ViewRequest) (*grid.Grid[model.Record, string], error) {
	info := d.Info()
	g, err := grid.New(info.Columns(), info.KeyFunc(),
		grid.WithItemHeight(req.ItemHeight),
		grid.WithContainerHeight(req.ContainerHeight),
		grid.WithEmptyMessage(s.viewOpt.EmptyMessage),
		grid.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}
	if err := g.SetRows(d.Records); err != nil {
		return nil, err
	}

	fields := make([]string, 0, len(req.Filters))
	for field := range req.Filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if err := g.SetFilter(field, req.Filters[field]); err != nil {
			return nil, err
		}
	}
	if req.Sort != nil {
		if err := g.SetSort(req.Sort.Field, req.Sort.Direction); err != nil {
			return nil, err
		}
	}
	g.SetSelection(grid.NewSelection(req.Selected...))
	g.Scroll(req.ScrollTop)
	return g, nil
}

// View runs the grid over the named dataset
func (s *DatasetService) View(name string, req ViewRequest) (ViewResponse, error) {
	d, err := s.catalog.Get(name)
	if err != nil {
		return ViewResponse{}, err
	}
	g, err := s.newGrid(d, req)
	if err != nil {
		return ViewResponse{}, err
	}
	return newViewResponse(name, g), nil
}

func newViewResponse(name string, g *grid.Grid[model.Record, string]) ViewResponse {
	w := g.Window()
	resp := ViewResponse{
		Dataset:       name,
		Total:         g.Len(),
		SourceTotal:   g.SourceLen(),
		Window:        w,
		TrailingSpace: w.TrailingSpace(g.ItemHeight()),
		Rows:          []ViewRow{},
		Summary:       g.Summary(),
		AllSelected:   g.AllSelected(),
		Selected:      g.Selection().Keys(),
		Filters:       g.Filters(),
	}
	sort.Strings(resp.Selected)

	for _, v := range g.Visible() {
		resp.Rows = append(resp.Rows, ViewRow{Index: v.Index, Key: v.Key, Selected: v.Selected, Record: v.Row})
	}
	if st, ok := g.Sort(); ok {
		resp.Sort = &ViewSort{Field: st.Field, Direction: st.Direction.String()}
	}
	if g.State() == grid.StateEmpty {
		resp.EmptyMessage = g.EmptyMessage()
	}
	return resp
}

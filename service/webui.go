package service

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/studiodesk/gridbrowser/grid"
	"github.com/studiodesk/gridbrowser/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates *template.Template

func init() {
	var err error
	templates, err = template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		panic(fmt.Sprintf("Failed to parse templates: %v", err))
	}
}

// SetupWebUIRoutes configures all web UI routes
func (s *DatasetService) SetupWebUIRoutes(r *mux.Router) {
	r.HandleFunc("/", s.handleIndexPage).Methods("GET")
	r.HandleFunc("/ui/datasets/{name}", s.handleGridPage).Methods("GET")
	r.HandleFunc("/ui/datasets/{name}/records/{key}", s.handleRecordPage).Methods("GET")

	// Catch-all for static files and other resources (favicon, service worker, etc.)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
}

// handleIndexPage lists the datasets
func (s *DatasetService) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	type datasetRow struct {
		model.DatasetInfo
		Size string
	}
	infos := s.catalog.List()
	rows := make([]datasetRow, len(infos))
	for i, info := range infos {
		rows[i] = datasetRow{DatasetInfo: info, Size: model.FormatBytes(info.Source.Size)}
	}
	render(w, "index", rows)
}

type headerCell struct {
	Field     string
	Title     string
	Indicator string
	SortURL   string
	Filter    string
}

type rowCell struct {
	Index     int
	Key       string
	Selected  bool
	Cells     []string
	ToggleURL string
	OpenURL   string
}

type gridPage struct {
	Name            string
	Headers         []headerCell
	Rows            []rowCell
	Leading         int
	Trailing        int
	ItemHeight      int
	ContainerHeight int
	Summary         string
	EmptyMessage    string
	AllSelected     bool
	ToggleAllURL    string
	ClearURL        string
	PrevURL         string
	NextURL         string
	Hidden          url.Values
}

// handleGridPage renders the materialized window of a dataset. Every link
// carries the full grid state, so the page needs no server-side session.
func (s *DatasetService) handleGridPage(w http.ResponseWriter, r *http.Request) {
	name, err := pathVar(r, "name")
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	req, err := ParseViewRequest(r.URL.Query(), s.viewOpt)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	d, err := s.catalog.Get(name)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	g, err := s.newGrid(d, req)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	// links start from the clamped offset
	req.ScrollTop = g.ScrollTop()

	render(w, "grid", buildGridPage(name, g, req))
}

func buildGridPage(name string, g *grid.Grid[model.Record, string], req ViewRequest) gridPage {
	base := "/ui/datasets/" + url.PathEscape(name)
	link := func(next ViewRequest) string {
		return base + "?" + next.Query().Encode()
	}

	win := g.Window()
	page := gridPage{
		Name:            name,
		Leading:         win.OffsetTop,
		Trailing:        win.TrailingSpace(g.ItemHeight()),
		ItemHeight:      g.ItemHeight(),
		ContainerHeight: g.ContainerHeight(),
		Summary:         g.Summary(),
		AllSelected:     g.AllSelected(),
	}
	if g.State() == grid.StateEmpty {
		page.EmptyMessage = g.EmptyMessage()
	}

	for _, col := range g.Columns() {
		next := req.clone()
		if cur, ok := g.Sort(); ok && cur.Field == col.Field {
			next.Sort = &grid.Sort{Field: col.Field, Direction: cur.Direction.Flip()}
		} else {
			next.Sort = &grid.Sort{Field: col.Field, Direction: grid.Ascending}
		}
		h := headerCell{
			Field:     col.Field,
			Title:     col.Title,
			Indicator: g.SortIndicator(col.Field),
			Filter:    g.Filter(col.Field),
		}
		if col.Sortable {
			h.SortURL = link(next)
		}
		page.Headers = append(page.Headers, h)
	}

	cols := g.Columns()
	for _, v := range g.Visible() {
		next := req.clone()
		next.Selected = g.Selection().Toggle(v.Key).Keys()
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = col.Cell(v.Row, v.Index)
		}
		page.Rows = append(page.Rows, rowCell{
			Index:     v.Index,
			Key:       v.Key,
			Selected:  v.Selected,
			Cells:     cells,
			ToggleURL: link(next),
			OpenURL:   base + "/records/" + url.PathEscape(v.Key),
		})
	}

	all := req.clone()
	if g.AllSelected() {
		all.Selected = nil
	} else {
		all.Selected = append([]string(nil), g.Keys()...)
	}
	page.ToggleAllURL = link(all)

	cleared := req.clone()
	cleared.Filters = grid.Filters{}
	page.ClearURL = link(cleared)

	if req.ScrollTop > 0 {
		prev := req.clone()
		prev.ScrollTop = max(0, req.ScrollTop-g.ContainerHeight())
		page.PrevURL = link(prev)
	}
	if req.ScrollTop < g.MaxScrollTop() {
		next := req.clone()
		next.ScrollTop = min(g.MaxScrollTop(), req.ScrollTop+g.ContainerHeight())
		page.NextURL = link(next)
	}

	// the filter form resubmits everything except the filters themselves
	hidden := req.clone()
	hidden.Filters = nil
	hidden.ScrollTop = 0
	page.Hidden = hidden.Query()
	return page
}

// handleRecordPage shows one record as JSON or YAML
func (s *DatasetService) handleRecordPage(w http.ResponseWriter, r *http.Request) {
	name, err := pathVar(r, "name")
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	key, err := pathVar(r, "key")
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	d, err := s.catalog.Get(name)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	rec, err := d.Lookup(key)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	format := model.RecordJSON
	if r.URL.Query().Get("format") == "yaml" {
		format = model.RecordYAML
	}
	text, err := model.FormatRecord(d.Fields, rec, format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	render(w, "record", struct {
		Name   string
		Key    string
		Format string
		Text   string
	}{d.Name, key, format.String(), text})
}

func render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CreateWebUIRouter creates a router configured for the web UI and the API
func CreateWebUIRouter(s *DatasetService) *mux.Router {
	r := mux.NewRouter().UseEncodedPath()
	s.SetupRoutes(r)
	s.SetupWebUIRoutes(r)
	r.Use(CORSMiddleware)
	r.Use(LoggingMiddleware(s.logger))
	return r
}

// openBrowser tries to open the URL in the default browser
func openBrowser(target string) error {
	if testing.Testing() {
		// do not launch browser under unit test
		return nil
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	case "darwin":
		cmd = exec.Command("open", target)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}

// StartWebUIServer starts the web UI server
func StartWebUIServer(service *DatasetService, addr string) error {
	r := CreateWebUIRouter(service)

	target := fmt.Sprintf("http://localhost%s", addr)
	service.logger.Info("starting web UI", "addr", addr, "url", target)

	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := openBrowser(target); err != nil {
			fmt.Printf("Note: Could not automatically open browser: %v\n", err)
			fmt.Printf("Please open your browser and navigate to: %s\n", target)
		}
	}()

	return http.ListenAndServe(addr, r)
}

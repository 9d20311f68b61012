package service

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/studiodesk/gridbrowser/model"
)

// DatasetService serves the datasets of a catalog over HTTP
type DatasetService struct {
	catalog *model.Catalog
	viewOpt ViewOption
	logger  *slog.Logger
}

// NewDatasetService creates a new service instance. A nil logger discards output.
func NewDatasetService(catalog *model.Catalog, viewOpt ViewOption, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DatasetService{
		catalog: catalog,
		viewOpt: viewOpt,
		logger:  logger,
	}
}

// LoadDatasetService loads every dataset in uris and wraps them in a service
func LoadDatasetService(uris []string, loadOpt model.LoadOption, viewOpt ViewOption, logger *slog.Logger) (*DatasetService, error) {
	catalog, err := model.LoadCatalog(uris, loadOpt)
	if err != nil {
		return nil, fmt.Errorf("failed to load datasets: %w", err)
	}
	return NewDatasetService(catalog, viewOpt, logger), nil
}

// Catalog returns the served datasets
func (s *DatasetService) Catalog() *model.Catalog {
	return s.catalog
}

// CreateRouter creates a new router with all routes configured
// If quiet is true, disables logging middleware (useful for embedded servers)
func CreateRouter(s *DatasetService, quiet bool) *mux.Router {
	r := mux.NewRouter().UseEncodedPath()
	s.SetupRoutes(r)
	r.Use(CORSMiddleware)
	if !quiet {
		r.Use(LoggingMiddleware(s.logger))
	}
	return r
}

// SetupRoutes configures all HTTP routes
func (s *DatasetService) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/datasets", s.handleDatasets).Methods("GET")
	r.HandleFunc("/datasets/{name}", s.handleDataset).Methods("GET")
	r.HandleFunc("/datasets/{name}/rows", s.handleRows).Methods("GET")
	r.HandleFunc("/datasets/{name}/records/{key}", s.handleRecord).Methods("GET")
	r.HandleFunc("/datasets/{name}/view", s.handleView).Methods("GET")
}

// handleDatasets returns the summaries of all datasets
func (s *DatasetService) handleDatasets(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.catalog.List())
}

// handleDataset returns the summary of one dataset
func (s *DatasetService) handleDataset(w http.ResponseWriter, r *http.Request) {
	name, err := pathVar(r, "name")
	if err != nil {
		writeErr(w, err)
		return
	}
	d, err := s.catalog.Get(name)
	if err != nil {
		writeErr(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, d.Info())
}

// handleRows returns every record of a dataset in source order
func (s *DatasetService) handleRows(w http.ResponseWriter, r *http.Request) {
	name, err := pathVar(r, "name")
	if err != nil {
		writeErr(w, err)
		return
	}
	d, err := s.catalog.Get(name)
	if err != nil {
		writeErr(w, err)
		return
	}
	records := d.Records
	if records == nil {
		records = []model.Record{}
	}
	WriteJSON(w, http.StatusOK, records)
}

// handleRecord returns the record with the given key
func (s *DatasetService) handleRecord(w http.ResponseWriter, r *http.Request) {
	name, err := pathVar(r, "name")
	if err != nil {
		writeErr(w, err)
		return
	}
	key, err := pathVar(r, "key")
	if err != nil {
		writeErr(w, err)
		return
	}
	d, err := s.catalog.Get(name)
	if err != nil {
		writeErr(w, err)
		return
	}
	rec, err := d.Lookup(key)
	if err != nil {
		writeErr(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

// handleView runs the grid over a dataset with the state in the query
func (s *DatasetService) handleView(w http.ResponseWriter, r *http.Request) {
	name, err := pathVar(r, "name")
	if err != nil {
		writeErr(w, err)
		return
	}
	req, err := ParseViewRequest(r.URL.Query(), s.viewOpt)
	if err != nil {
		writeErr(w, err)
		return
	}
	resp, err := s.View(name, req)
	if err != nil {
		writeErr(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// StartServer starts the HTTP server with request logging
func StartServer(service *DatasetService, addr string) error {
	r := CreateRouter(service, false)

	service.logger.Info("starting dataset API server",
		"addr", addr,
		"datasets", service.catalog.Len())
	fmt.Printf("Available endpoints:\n")
	fmt.Printf("  GET /datasets                          - All datasets\n")
	fmt.Printf("  GET /datasets/{name}                   - Dataset info\n")
	fmt.Printf("  GET /datasets/{name}/rows              - All records\n")
	fmt.Printf("  GET /datasets/{name}/records/{key}     - One record\n")
	fmt.Printf("  GET /datasets/{name}/view?sort=&dir=&filter.<field>=&scrollTop=&itemHeight=&height=&sel=\n")
	fmt.Printf("                                         - Sorted, filtered, windowed rows\n")
	fmt.Println()

	return http.ListenAndServe(addr, r)
}

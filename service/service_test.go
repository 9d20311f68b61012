package service

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/studiodesk/gridbrowser/grid"
	"github.com/studiodesk/gridbrowser/model"
)

func createTestService(t *testing.T) *DatasetService {
	t.Helper()
	students := &model.Dataset{
		Name:     "students",
		KeyField: "id",
		Fields:   []model.Field{{Name: "id", Type: model.TypeInt}, {Name: "name", Type: model.TypeString}},
		Records: []model.Record{
			{"id": int64(1), "name": "Ana"},
			{"id": int64(2), "name": "Beto"},
			{"id": int64(3), "name": "Ana"},
		},
		Source: model.Source{URI: "students.json", Format: model.FormatJSON, Size: 2048},
	}
	empty := &model.Dataset{
		Name:     "empty",
		KeyField: "id",
		Fields:   []model.Field{{Name: "id", Type: model.TypeInt}},
	}
	catalog, err := model.NewCatalog(students, empty)
	require.NoError(t, err)
	return NewDatasetService(catalog, DefaultViewOption(), nil)
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func Test_CreateRouter(t *testing.T) {
	service := createTestService(t)

	t.Run("With logging middleware", func(t *testing.T) {
		router := CreateRouter(service, false)
		require.NotNil(t, router, "CreateRouter() should return non-nil router")
	})

	t.Run("Without logging middleware (quiet mode)", func(t *testing.T) {
		router := CreateRouter(service, true)
		require.NotNil(t, router, "CreateRouter() should return non-nil router")
	})
}

func Test_HandleDatasets(t *testing.T) {
	router := CreateRouter(createTestService(t), true)

	rec := doGet(t, router, "/datasets")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var infos []model.DatasetInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
	require.Len(t, infos, 2)
	require.Equal(t, "empty", infos[0].Name)
	require.Equal(t, "students", infos[1].Name)
	require.Equal(t, 3, infos[1].NumRecords)
	require.Equal(t, model.TypeInt, infos[1].Fields[0].Type)
}

func Test_HandleDataset(t *testing.T) {
	router := CreateRouter(createTestService(t), true)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{"Known dataset", "/datasets/students", http.StatusOK},
		{"Unknown dataset", "/datasets/missing", http.StatusNotFound},
		{"Rows", "/datasets/students/rows", http.StatusOK},
		{"Rows of unknown dataset", "/datasets/missing/rows", http.StatusNotFound},
		{"Record", "/datasets/students/records/2", http.StatusOK},
		{"Unknown record", "/datasets/students/records/9", http.StatusNotFound},
		{"Wrong method", "/datasets", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodGet
			if tt.expectedStatus == http.StatusMethodNotAllowed {
				method = http.MethodPost
			}
			req := httptest.NewRequest(method, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, tt.expectedStatus, rec.Code, "status for %s", tt.path)
		})
	}

	t.Run("Rows keep source order", func(t *testing.T) {
		rec := doGet(t, router, "/datasets/students/rows")
		var rows []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		require.Len(t, rows, 3)
		require.Equal(t, "Beto", rows[1]["name"])
	})

	t.Run("Empty dataset returns an empty array", func(t *testing.T) {
		rec := doGet(t, router, "/datasets/empty/rows")
		require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	})
}

func Test_HandleView(t *testing.T) {
	router := CreateRouter(createTestService(t), true)

	t.Run("Filter, sort and window", func(t *testing.T) {
		rec := doGet(t, router, "/datasets/students/view?filter.name=ana&sort=name&dir=desc&itemHeight=10&height=20&sel=3")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp ViewResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "students", resp.Dataset)
		require.Equal(t, 2, resp.Total)
		require.Equal(t, 3, resp.SourceTotal)
		require.Equal(t, 0, resp.Window.StartIndex)
		require.Equal(t, 1, resp.Window.EndIndex)
		require.Equal(t, 20, resp.Window.TotalHeight)
		require.Len(t, resp.Rows, 2)
		require.Equal(t, "1", resp.Rows[0].Key)
		require.Equal(t, "3", resp.Rows[1].Key)
		require.False(t, resp.Rows[0].Selected)
		require.True(t, resp.Rows[1].Selected)
		require.Equal(t, "2 items (1 selected)", resp.Summary)
		require.Equal(t, &ViewSort{Field: "name", Direction: "desc"}, resp.Sort)
		require.Equal(t, grid.Filters{"name": "ana"}, resp.Filters)
		require.Empty(t, resp.EmptyMessage)
	})

	t.Run("Empty result carries the empty message", func(t *testing.T) {
		rec := doGet(t, router, "/datasets/students/view?filter.name=zzz")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ViewResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, 0, resp.Total)
		require.Empty(t, resp.Rows)
		require.Equal(t, grid.DefaultEmptyMessage, resp.EmptyMessage)
	})

	tests := []struct {
		name           string
		query          string
		expectedStatus int
	}{
		{"Bad scroll offset", "scrollTop=abc", http.StatusBadRequest},
		{"Bad direction", "sort=name&dir=up", http.StatusBadRequest},
		{"Zero item height", "itemHeight=0", http.StatusBadRequest},
		{"Negative container height", "height=-1", http.StatusBadRequest},
		{"Unknown filter field", "filter.missing=x", http.StatusNotFound},
		{"Unknown sort field", "sort=missing", http.StatusNotFound},
		{"Scroll past end is clamped", "scrollTop=100000", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(t, router, "/datasets/students/view?"+tt.query)
			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedStatus != http.StatusOK {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				require.NotEmpty(t, body["error"])
			}
		})
	}

	t.Run("Unknown dataset", func(t *testing.T) {
		rec := doGet(t, router, "/datasets/missing/view")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_ParseViewRequest(t *testing.T) {
	defaults := ViewOption{ItemHeight: 10, ContainerHeight: 100}

	t.Run("Defaults", func(t *testing.T) {
		req, err := ParseViewRequest(url.Values{}, defaults)
		require.NoError(t, err)
		require.Nil(t, req.Sort)
		require.Empty(t, req.Filters)
		require.Equal(t, 10, req.ItemHeight)
		require.Equal(t, 100, req.ContainerHeight)
		require.Equal(t, 0, req.ScrollTop)
	})

	t.Run("All parameters", func(t *testing.T) {
		q := url.Values{
			"sort":        {"name"},
			"dir":         {"desc"},
			"filter.name": {"an"},
			"filter.id":   {""},
			"scrollTop":   {"30"},
			"itemHeight":  {"12"},
			"height":      {"200"},
			"sel":         {"1", "3"},
		}
		req, err := ParseViewRequest(q, defaults)
		require.NoError(t, err)
		require.Equal(t, &grid.Sort{Field: "name", Direction: grid.Descending}, req.Sort)
		require.Equal(t, grid.Filters{"name": "an"}, req.Filters, "empty filters are dropped")
		require.Equal(t, 30, req.ScrollTop)
		require.Equal(t, 12, req.ItemHeight)
		require.Equal(t, 200, req.ContainerHeight)
		require.Equal(t, []string{"1", "3"}, req.Selected)

		back, err := ParseViewRequest(req.Query(), defaults)
		require.NoError(t, err)
		require.Equal(t, req, back, "Query should round trip")
	})

	t.Run("Sort without direction is ascending", func(t *testing.T) {
		req, err := ParseViewRequest(url.Values{"sort": {"id"}}, defaults)
		require.NoError(t, err)
		require.Equal(t, grid.Ascending, req.Sort.Direction)
	})

	t.Run("Invalid numbers", func(t *testing.T) {
		for _, name := range []string{"scrollTop", "itemHeight", "height"} {
			_, err := ParseViewRequest(url.Values{name: {"1.5"}}, defaults)
			require.ErrorIs(t, err, ErrInvalidParameter, name)
		}
	})
}

func Test_statusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"Invalid parameter", ErrInvalidParameter, http.StatusBadRequest},
		{"Invalid height", grid.ErrInvalidItemHeight, http.StatusBadRequest},
		{"Missing dataset", model.ErrDatasetNotFound, http.StatusNotFound},
		{"Unknown column", grid.ErrUnknownColumn, http.StatusNotFound},
		{"Other", model.ErrDuplicateKey, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, statusFor(tt.err))
		})
	}
}

func Test_Middleware(t *testing.T) {
	t.Run("CORS preflight", func(t *testing.T) {
		router := CreateRouter(createTestService(t), true)
		req := httptest.NewRequest(http.MethodOptions, "/datasets", nil)
		rec := httptest.NewRecorder()
		CORSMiddleware(router).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Request logging", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		catalog, err := model.NewCatalog()
		require.NoError(t, err)
		router := CreateRouter(NewDatasetService(catalog, DefaultViewOption(), logger), false)

		rec := doGet(t, router, "/datasets/missing?x=1")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Contains(t, buf.String(), "path=/datasets/missing")
		require.Contains(t, buf.String(), "status=404")
		require.Contains(t, buf.String(), `query="x=1"`)
	})
}

func createPathService(t *testing.T) *DatasetService {
	t.Helper()
	files := &model.Dataset{
		Name:     "file list",
		KeyField: "path",
		Fields:   []model.Field{{Name: "path", Type: model.TypeString}, {Name: "size", Type: model.TypeInt}},
		Records: []model.Record{
			{"path": "docs/read me.md", "size": int64(10)},
			{"path": "100%", "size": int64(20)},
		},
	}
	catalog, err := model.NewCatalog(files)
	require.NoError(t, err)
	return NewDatasetService(catalog, DefaultViewOption(), nil)
}

func Test_EscapedPathVariables(t *testing.T) {
	svc := createPathService(t)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		contains       string
	}{
		{"Dataset with a space", "/datasets/file%20list", http.StatusOK, `"name": "file list"`},
		{"Key with a slash", "/datasets/file%20list/records/" + url.PathEscape("docs/read me.md"), http.StatusOK, `"size": 10`},
		{"Key with a percent sign", "/datasets/file%20list/records/" + url.PathEscape("100%"), http.StatusOK, `"size": 20`},
		{"Unescaped slash does not match", "/datasets/file%20list/records/docs/read%20me.md", http.StatusNotFound, ""},
		{"View", "/datasets/file%20list/view?sort=size&dir=desc", http.StatusOK, `"total": 2`},
		{"Web UI record", "/ui/datasets/file%20list/records/" + url.PathEscape("docs/read me.md"), http.StatusOK, "read me.md"},
	}

	router := CreateWebUIRouter(svc)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(t, router, tt.path)
			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.contains != "" {
				require.Contains(t, rec.Body.String(), tt.contains)
			}
		})
	}

	t.Run("API router", func(t *testing.T) {
		rec := doGet(t, CreateRouter(svc, true), "/datasets/file%20list/records/"+url.PathEscape("docs/read me.md"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Grid page links reach the record", func(t *testing.T) {
		rec := doGet(t, router, "/ui/datasets/file%20list")
		require.Equal(t, http.StatusOK, rec.Code)
		link := "/ui/datasets/file%20list/records/docs%2Fread%20me.md"
		require.Contains(t, rec.Body.String(), link)
		require.Equal(t, http.StatusOK, doGet(t, router, link).Code)
	})
}

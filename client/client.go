package client

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/studiodesk/gridbrowser/model"
	"github.com/studiodesk/gridbrowser/service"
)

// GridClient is an HTTP client for the dataset API
type GridClient struct {
	baseURL string
	client  *http.Client
}

// NewGridClient creates a new HTTP client
func NewGridClient(baseURL string) *GridClient {
	return &GridClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// ListDatasets retrieves the summaries of all datasets
func (c *GridClient) ListDatasets() ([]model.DatasetInfo, error) {
	var infos []model.DatasetInfo
	err := c.get("/datasets", &infos)
	return infos, err
}

// GetDataset retrieves the summary of one dataset
func (c *GridClient) GetDataset(name string) (model.DatasetInfo, error) {
	var info model.DatasetInfo
	err := c.get("/datasets/"+url.PathEscape(name), &info)
	return info, err
}

// GetRows retrieves every record of a dataset, typed by its fields
func (c *GridClient) GetRows(info model.DatasetInfo) ([]model.Record, error) {
	var raw []map[string]any
	if err := c.get("/datasets/"+url.PathEscape(info.Name)+"/rows", &raw); err != nil {
		return nil, err
	}
	return info.DecodeRecords(raw)
}

// GetRecord retrieves the record with the given key
func (c *GridClient) GetRecord(info model.DatasetInfo, key string) (model.Record, error) {
	var raw map[string]any
	path := fmt.Sprintf("/datasets/%s/records/%s", url.PathEscape(info.Name), url.PathEscape(key))
	if err := c.get(path, &raw); err != nil {
		return nil, err
	}
	records, err := info.DecodeRecords([]map[string]any{raw})
	if err != nil {
		return nil, err
	}
	return records[0], nil
}

// View runs the grid on the server with the state in req
func (c *GridClient) View(info model.DatasetInfo, req service.ViewRequest) (service.ViewResponse, error) {
	var resp service.ViewResponse
	path := "/datasets/" + url.PathEscape(info.Name) + "/view?" + req.Query().Encode()
	if err := c.get(path, &resp); err != nil {
		return service.ViewResponse{}, err
	}

	raw := make([]map[string]any, len(resp.Rows))
	for i, row := range resp.Rows {
		raw[i] = row.Record
	}
	records, err := info.DecodeRecords(raw)
	if err != nil {
		return service.ViewResponse{}, err
	}
	for i := range resp.Rows {
		resp.Rows[i].Record = records[i]
	}
	return resp, nil
}

// Helper method to make GET requests and decode JSON
func (c *GridClient) get(path string, result any) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	// numbers stay json.Number so int64 keys survive the round trip
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

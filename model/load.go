package model

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	pio "github.com/hangxie/parquet-tools/io"
	"gopkg.in/yaml.v3"
)

// Supported dataset formats
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatCSV     = "csv"
	FormatParquet = "parquet"
	FormatSQLite  = "sqlite"
)

// LoadOption controls how dataset files are read
type LoadOption struct {
	// KeyField is the field holding each record's identity
	KeyField string
	pio.ReadOption
}

// DetectFormat returns the dataset format for uri based on its extension
func DetectFormat(uri string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(uri)); ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	case ".parquet":
		return FormatParquet, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// DatasetName derives a dataset name from a file name
func DatasetName(uri string) string {
	base := filepath.Base(uri)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadDatasets reads every dataset stored in uri. JSON and YAML documents
// and SQLite databases may hold several datasets; the other formats hold
// exactly one.
func LoadDatasets(uri string, opt LoadOption) ([]*Dataset, error) {
	format, err := DetectFormat(uri)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatParquet:
		d, err := LoadParquet(uri, opt)
		if err != nil {
			return nil, err
		}
		return []*Dataset{d}, nil
	case FormatSQLite:
		return LoadSQLite(uri, opt)
	}

	data, err := os.ReadFile(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", uri, err)
	}

	name := DatasetName(uri)
	var datasets []*Dataset
	switch format {
	case FormatJSON:
		datasets, err = LoadJSON(name, data, opt.KeyField)
	case FormatYAML:
		datasets, err = LoadYAML(name, data, opt.KeyField)
	case FormatCSV:
		var d *Dataset
		d, err = LoadCSV(name, bytes.NewReader(data), opt.KeyField)
		datasets = []*Dataset{d}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", uri, err)
	}

	for _, d := range datasets {
		d.Source = Source{URI: uri, Format: format, Size: int64(len(data))}
	}
	return datasets, nil
}

// LoadJSON decodes a JSON array of objects, or an object of named arrays
func LoadJSON(name string, data []byte, keyField string) ([]*Dataset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return fromDocument(name, doc, keyField)
}

// LoadYAML decodes a YAML sequence of mappings, or a mapping of named sequences
func LoadYAML(name string, data []byte, keyField string) ([]*Dataset, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return fromDocument(name, doc, keyField)
}

func fromDocument(name string, doc any, keyField string) ([]*Dataset, error) {
	switch val := doc.(type) {
	case []any:
		d, err := fromObjects(name, val, keyField)
		if err != nil {
			return nil, err
		}
		return []*Dataset{d}, nil
	case map[string]any:
		names := make([]string, 0, len(val))
		for k := range val {
			names = append(names, k)
		}
		sort.Strings(names)

		datasets := make([]*Dataset, 0, len(names))
		for _, n := range names {
			items, ok := val[n].([]any)
			if !ok {
				return nil, fmt.Errorf("%w: %q is not a list of records", ErrUnsupportedFormat, n)
			}
			d, err := fromObjects(n, items, keyField)
			if err != nil {
				return nil, err
			}
			datasets = append(datasets, d)
		}
		if len(datasets) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, name)
		}
		return datasets, nil
	default:
		return nil, fmt.Errorf("%w: top level must be a list or a map of lists", ErrUnsupportedFormat)
	}
}

// fromObjects builds a dataset from decoded objects. The key field comes
// first, the remaining fields follow in name order.
func fromObjects(name string, items []any, keyField string) (*Dataset, error) {
	objects := make([]map[string]any, len(items))
	seen := map[string]bool{}
	var names []string
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s item %d is not an object", ErrUnsupportedFormat, name, i)
		}
		objects[i] = obj
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if (names[i] == keyField) != (names[j] == keyField) {
			return names[i] == keyField
		}
		return names[i] < names[j]
	})

	rows := make([][]any, len(objects))
	for r, obj := range objects {
		row := make([]any, len(names))
		for c, n := range names {
			row[c] = obj[n]
		}
		rows[r] = row
	}
	return buildDataset(name, names, rows, false, keyField)
}

// LoadCSV reads a CSV stream with a header row. Empty cells are missing
// values; the other cells are typed by inference.
func LoadCSV(name string, r io.Reader, keyField string) (*Dataset, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, name)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid CSV header: %w", err)
	}

	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows [][]any
	for {
		line, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid CSV: %w", err)
		}
		row := make([]any, len(line))
		for i, cell := range line {
			if cell != "" {
				row[i] = cell
			}
		}
		rows = append(rows, row)
	}
	return buildDataset(name, names, rows, true, keyField)
}

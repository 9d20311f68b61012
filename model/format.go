package model

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/studiodesk/gridbrowser/grid"
)

// RecordFormat selects the text form of a single record
type RecordFormat int

const (
	// RecordJSON renders a record as indented JSON
	RecordJSON RecordFormat = iota
	// RecordYAML renders a record as a YAML mapping
	RecordYAML
)

// String returns the string representation of a RecordFormat
func (f RecordFormat) String() string {
	if f == RecordYAML {
		return "YAML"
	}
	return "JSON"
}

// Toggle switches between JSON and YAML
func (f RecordFormat) Toggle() RecordFormat {
	if f == RecordYAML {
		return RecordJSON
	}
	return RecordYAML
}

// FormatBytes formats bytes as human readable size
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatRecord renders r with its fields in dataset order
func FormatRecord(fields []Field, r Record, format RecordFormat) (string, error) {
	if format == RecordYAML {
		return formatYAML(fields, r)
	}
	return formatJSON(fields, r)
}

func formatJSON(fields []Field, r Record) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return "", err
		}
		v, err := json.Marshal(r[f.Name])
		if err != nil {
			return "", fmt.Errorf("field %q: %w", f.Name, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return "", err
	}
	return out.String(), nil
}

func formatYAML(fields []Field, r Record) (string, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range fields {
		var value yaml.Node
		if err := value.Encode(r[f.Name]); err != nil {
			return "", fmt.Errorf("field %q: %w", f.Name, err)
		}
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: f.Name}, &value)
	}

	var out bytes.Buffer
	enc := yaml.NewEncoder(&out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return out.String(), nil
}

// FormatTSV renders records as tab separated text with a header row, the
// form spreadsheets accept from the clipboard.
func FormatTSV(fields []Field, records []Record) (string, error) {
	var out strings.Builder
	w := csv.NewWriter(&out)
	w.Comma = '\t'

	row := make([]string, len(fields))
	for i, f := range fields {
		row[i] = f.Name
	}
	if err := w.Write(row); err != nil {
		return "", err
	}
	for _, r := range records {
		for i, f := range fields {
			row[i] = grid.FormatValue(r[f.Name])
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return out.String(), w.Error()
}

// IsValidUTF8 checks if a string contains valid and mostly printable UTF-8
func IsValidUTF8(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}

	printable := 0
	total := 0
	for _, r := range s {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}

	// Require at least 80% printable characters
	return total > 0 && (printable*100/total >= 80)
}

package model

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testdataPath(name string) string {
	return filepath.Join("testdata", name)
}

func fieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func Test_DetectFormat(t *testing.T) {
	tests := []struct {
		uri      string
		expected string
		wantErr  bool
	}{
		{"a.json", FormatJSON, false},
		{"dir/B.YAML", FormatYAML, false},
		{"c.yml", FormatYAML, false},
		{"d.csv", FormatCSV, false},
		{"s3://bucket/e.parquet", FormatParquet, false},
		{"g.db", FormatSQLite, false},
		{"h.SQLITE3", FormatSQLite, false},
		{"f.txt", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			format, err := DetectFormat(tt.uri)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, format)
		})
	}
}

func Test_LoadDatasets_JSON(t *testing.T) {
	datasets, err := LoadDatasets(testdataPath("studio.json"), LoadOption{KeyField: "id"})
	require.NoError(t, err)
	require.Len(t, datasets, 2)

	students := datasets[0]
	require.Equal(t, "students", students.Name)
	require.Equal(t, []string{"id", "active", "balance", "email", "joined", "level", "name"}, fieldNames(students.Fields))
	require.Len(t, students.Records, 4)
	require.Equal(t, FormatJSON, students.Source.Format)

	types := map[string]DataType{}
	for _, f := range students.Fields {
		types[f.Name] = f.Type
	}
	require.Equal(t, TypeInt, types["id"])
	require.Equal(t, TypeBool, types["active"])
	require.Equal(t, TypeFloat, types["balance"])
	require.Equal(t, TypeTime, types["joined"])
	require.Equal(t, TypeString, types["email"])

	first := students.Records[0]
	require.Equal(t, int64(1), first["id"])
	require.Equal(t, 120.5, first["balance"])
	require.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), first["joined"])
	require.Nil(t, students.Records[3]["email"], "missing values should be nil")

	teachers := datasets[1]
	require.Equal(t, "teachers", teachers.Name)
	require.Equal(t, `["ballet","jazz"]`, teachers.Records[0]["styles"])
}

func Test_LoadDatasets_CSV(t *testing.T) {
	datasets, err := LoadDatasets(testdataPath("payments.csv"), LoadOption{KeyField: "id"})
	require.NoError(t, err)
	require.Len(t, datasets, 1)

	d := datasets[0]
	require.Equal(t, "payments", d.Name)
	require.Equal(t, []string{"id", "student", "amount", "paid", "due"}, fieldNames(d.Fields), "CSV keeps file order")
	require.Equal(t, TypeFloat, d.Fields[2].Type)
	require.Equal(t, TypeBool, d.Fields[3].Type)
	require.Equal(t, TypeTime, d.Fields[4].Type)
	require.Equal(t, 80.0, d.Records[1]["amount"])
	require.Nil(t, d.Records[3]["amount"])
	require.Equal(t, "p-100", d.Info().KeyFunc()(d.Records[0]))
}

func Test_LoadDatasets_YAML(t *testing.T) {
	datasets, err := LoadDatasets(testdataPath("events.yaml"), LoadOption{KeyField: "id"})
	require.NoError(t, err)
	require.Len(t, datasets, 1)

	d := datasets[0]
	require.Equal(t, "events", d.Name)
	require.Equal(t, []string{"id", "seats", "starts", "title"}, fieldNames(d.Fields))
	require.Equal(t, time.Date(2024, 4, 12, 19, 0, 0, 0, time.UTC), d.Records[0]["starts"].(time.Time).UTC())
	require.Nil(t, d.Records[2]["seats"])
}

func Test_LoadDatasets_Errors(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected error
	}{
		{"duplicate keys", testdataPath("duplicates.csv"), ErrDuplicateKey},
		{"unsupported", testdataPath("notes.txt"), ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDatasets(tt.uri, LoadOption{KeyField: "id"})
			require.ErrorIs(t, err, tt.expected)
		})
	}

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadDatasets(testdataPath("missing.csv"), LoadOption{})
		require.Error(t, err)
	})

	t.Run("Ragged CSV", func(t *testing.T) {
		_, err := LoadDatasets(testdataPath("broken.csv"), LoadOption{})
		require.Error(t, err)
	})

	t.Run("Missing parquet file", func(t *testing.T) {
		_, err := LoadDatasets(testdataPath("missing.parquet"), LoadOption{})
		require.Error(t, err)
	})
}

func Test_LoadJSON_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		datasets []string
		expected error
	}{
		{"array", `[{"id":1},{"id":2}]`, []string{"doc"}, nil},
		{"object of arrays", `{"b":[{"id":1}],"a":[{"id":1}]}`, []string{"a", "b"}, nil},
		{"scalar", `42`, nil, ErrUnsupportedFormat},
		{"array of scalars", `[1,2]`, nil, ErrUnsupportedFormat},
		{"object with scalar", `{"a":1}`, nil, ErrUnsupportedFormat},
		{"empty array", `[]`, nil, ErrEmptyDataset},
		{"empty object", `{}`, nil, ErrEmptyDataset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			datasets, err := LoadJSON("doc", []byte(tt.data), "id")
			if tt.expected != nil {
				require.ErrorIs(t, err, tt.expected)
				return
			}
			require.NoError(t, err)
			names := make([]string, len(datasets))
			for i, d := range datasets {
				names[i] = d.Name
			}
			require.Equal(t, tt.datasets, names)
		})
	}

	t.Run("Invalid JSON", func(t *testing.T) {
		_, err := LoadJSON("doc", []byte(`[{`), "id")
		require.Error(t, err)
	})
}

func Test_LoadCSV(t *testing.T) {
	t.Run("Row numbers when there is no key column", func(t *testing.T) {
		datasets, err := LoadDatasets(testdataPath("activities.csv"), LoadOption{KeyField: "id"})
		require.NoError(t, err)
		d := datasets[0]
		require.Equal(t, RowNumberField, d.KeyField)
		require.Equal(t, []string{RowNumberField, "name", "room"}, fieldNames(d.Fields))
	})

	t.Run("Empty input", func(t *testing.T) {
		_, err := LoadCSV("empty", strings.NewReader(""), "id")
		require.ErrorIs(t, err, ErrEmptyDataset)
	})

	t.Run("Header only", func(t *testing.T) {
		d, err := LoadCSV("header", strings.NewReader("id,name\n"), "id")
		require.NoError(t, err)
		require.Empty(t, d.Records)
		require.Equal(t, TypeNull, d.Fields[0].Type)
	})

	t.Run("Byte order mark", func(t *testing.T) {
		d, err := LoadCSV("bom", strings.NewReader("\ufeffid,name\n1,Ana\n"), "id")
		require.NoError(t, err)
		require.Equal(t, "id", d.KeyField)
	})
}

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_FormatBytes(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{"Zero bytes", 0, "0 B"},
		{"Less than 1KB", 512, "512 B"},
		{"Exactly 1KB", 1024, "1.0 KB"},
		{"1.5KB", 1536, "1.5 KB"},
		{"Exactly 1MB", 1024 * 1024, "1.0 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, FormatBytes(tt.bytes), "FormatBytes(%d) should match", tt.bytes)
		})
	}
}

func Test_FormatRecord(t *testing.T) {
	fields := []Field{{Name: "id", Type: TypeInt}, {Name: "name", Type: TypeString}, {Name: "joined", Type: TypeTime}, {Name: "email", Type: TypeString}}
	rec := Record{
		"id":     int64(1),
		"name":   "Ana",
		"joined": time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		"email":  nil,
	}

	t.Run("JSON keeps field order", func(t *testing.T) {
		text, err := FormatRecord(fields, rec, RecordJSON)
		require.NoError(t, err)
		require.Equal(t, "{\n  \"id\": 1,\n  \"name\": \"Ana\",\n  \"joined\": \"2024-01-15T00:00:00Z\",\n  \"email\": null\n}", text)
	})

	t.Run("YAML keeps field order", func(t *testing.T) {
		text, err := FormatRecord(fields, rec, RecordYAML)
		require.NoError(t, err)
		require.Equal(t, "id: 1\nname: Ana\njoined: 2024-01-15T00:00:00Z\nemail: null\n", text)
	})
}

func Test_RecordFormat(t *testing.T) {
	require.Equal(t, "JSON", RecordJSON.String())
	require.Equal(t, "YAML", RecordYAML.String())
	require.Equal(t, RecordYAML, RecordJSON.Toggle())
	require.Equal(t, RecordJSON, RecordYAML.Toggle())
}

func Test_FormatTSV(t *testing.T) {
	fields := []Field{{Name: "id"}, {Name: "name"}, {Name: "score"}}
	records := []Record{
		{"id": int64(1), "name": "Ana", "score": 9.5},
		{"id": int64(2), "name": "Beto", "score": nil},
	}

	text, err := FormatTSV(fields, records)
	require.NoError(t, err)
	require.Equal(t, "id\tname\tscore\n1\tAna\t9.5\n2\tBeto\t\n", text)
}

func Test_IsValidUTF8(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"Plain text", "hello", true},
		{"Unicode", "olá", true},
		{"Empty", "", false},
		{"Invalid bytes", string([]byte{0xff, 0xfe}), false},
		{"Control characters", string([]byte{0x00, 0x01, 0x02}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, IsValidUTF8(tt.input))
		})
	}
}

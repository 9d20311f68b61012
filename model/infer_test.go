package model

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func Test_classify(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		parseText bool
		expected  DataType
	}{
		{"nil", nil, false, TypeNull},
		{"bool", true, false, TypeBool},
		{"int", 3, false, TypeInt},
		{"float", 1.5, false, TypeFloat},
		{"json integer", json.Number("12"), false, TypeInt},
		{"json float", json.Number("1.25"), false, TypeFloat},
		{"time value", time.Now(), false, TypeTime},
		{"date text", "2024-01-15", false, TypeTime},
		{"timestamp text", "2024-01-15T10:00:00Z", false, TypeTime},
		{"number text stays text", "42", false, TypeString},
		{"number text parsed", "42", true, TypeInt},
		{"float text parsed", "4.5", true, TypeFloat},
		{"bool text parsed", "TRUE", true, TypeBool},
		{"nan is text", "NaN", true, TypeString},
		{"plain text", "Ana", true, TypeString},
		{"nested", map[string]any{"a": 1}, false, TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, classify(tt.value, tt.parseText), "classify(%v) should match", tt.value)
		})
	}
}

func Test_inferType(t *testing.T) {
	tests := []struct {
		name     string
		values   []any
		expected DataType
	}{
		{"empty", nil, TypeNull},
		{"all nil", []any{nil, nil}, TypeNull},
		{"ints with nil", []any{1, nil, 2}, TypeInt},
		{"ints and floats", []any{1, 2.5}, TypeFloat},
		{"mixed falls back to string", []any{1, "x"}, TypeString},
		{"bool and int", []any{true, 1}, TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, inferType(tt.values, false))
		})
	}
}

func Test_convertValue(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		value    any
		typ      DataType
		expected any
		wantErr  bool
	}{
		{"nil", nil, TypeInt, nil, false},
		{"int to int64", 7, TypeInt, int64(7), false},
		{"json number to int64", json.Number("7"), TypeInt, int64(7), false},
		{"integral float to int64", 7.0, TypeInt, int64(7), false},
		{"fraction to int fails", 7.5, TypeInt, nil, true},
		{"int to float", 2, TypeFloat, 2.0, false},
		{"text to float", "2.5", TypeFloat, 2.5, false},
		{"text to bool", "False", TypeBool, false, false},
		{"text to time", "2024-01-15", TypeTime, day, false},
		{"bad time", "soon", TypeTime, nil, true},
		{"number to string", 42, TypeString, "42", false},
		{"list to string", []any{"a", "b"}, TypeString, `["a","b"]`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := convertValue(tt.value, tt.typ)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, result)
		})
	}
}

func Test_buildDataset(t *testing.T) {
	t.Run("Uses the key field", func(t *testing.T) {
		d, err := buildDataset("people", []string{"id", "name"}, [][]any{{"2", "Ana"}, {"1", "Beto"}}, true, "id")
		require.NoError(t, err)
		require.Equal(t, "id", d.KeyField)
		require.Equal(t, []Field{{Name: "id", Type: TypeInt}, {Name: "name", Type: TypeString}}, d.Fields)
		require.Equal(t, int64(2), d.Records[0]["id"])
	})

	t.Run("Adds a row number when the key field is missing", func(t *testing.T) {
		d, err := buildDataset("rooms", []string{"room"}, [][]any{{"A"}, {"A"}}, true, "id")
		require.NoError(t, err)
		require.Equal(t, RowNumberField, d.KeyField)
		require.Equal(t, RowNumberField, d.Fields[0].Name)
		require.Equal(t, int64(1), d.Records[0][RowNumberField])
		require.Equal(t, int64(2), d.Records[1][RowNumberField])
	})

	t.Run("Rejects duplicate keys", func(t *testing.T) {
		_, err := buildDataset("people", []string{"id"}, [][]any{{"1"}, {"1"}}, true, "id")
		require.ErrorIs(t, err, ErrDuplicateKey)
	})

	t.Run("Rejects no fields", func(t *testing.T) {
		_, err := buildDataset("none", nil, nil, true, "id")
		require.ErrorIs(t, err, ErrEmptyDataset)
	})
}

package model

import (
	"testing"
	"time"

	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func Test_parquetValue(t *testing.T) {
	int32Type := ptr(parquet.Type_INT32)
	int64Type := ptr(parquet.Type_INT64)
	byteArray := ptr(parquet.Type_BYTE_ARRAY)

	tests := []struct {
		name     string
		value    any
		elem     *parquet.SchemaElement
		expected any
	}{
		{
			name:     "nil",
			value:    nil,
			elem:     &parquet.SchemaElement{Type: int32Type},
			expected: nil,
		},
		{
			name:     "int32 widened",
			value:    int32(7),
			elem:     &parquet.SchemaElement{Type: int32Type},
			expected: int64(7),
		},
		{
			name:     "float32 widened",
			value:    float32(1.5),
			elem:     &parquet.SchemaElement{Type: ptr(parquet.Type_FLOAT)},
			expected: 1.5,
		},
		{
			name:     "logical date",
			value:    int32(19737),
			elem:     &parquet.SchemaElement{Type: int32Type, LogicalType: &parquet.LogicalType{DATE: &parquet.DateType{}}},
			expected: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "converted date",
			value:    int32(0),
			elem:     &parquet.SchemaElement{Type: int32Type, ConvertedType: ptr(parquet.ConvertedType_DATE)},
			expected: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "timestamp millis",
			value:    int64(1705312800000),
			elem:     &parquet.SchemaElement{Type: int64Type, ConvertedType: ptr(parquet.ConvertedType_TIMESTAMP_MILLIS)},
			expected: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "timestamp micros",
			value: int64(1705312800000000),
			elem: &parquet.SchemaElement{Type: int64Type, LogicalType: &parquet.LogicalType{
				TIMESTAMP: &parquet.TimestampType{Unit: &parquet.TimeUnit{MICROS: &parquet.MicroSeconds{}}},
			}},
			expected: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "timestamp nanos",
			value: int64(1705312800000000000),
			elem: &parquet.SchemaElement{Type: int64Type, LogicalType: &parquet.LogicalType{
				TIMESTAMP: &parquet.TimestampType{Unit: &parquet.TimeUnit{NANOS: &parquet.NanoSeconds{}}},
			}},
			expected: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "utf8 string",
			value:    "Ana",
			elem:     &parquet.SchemaElement{Type: byteArray, ConvertedType: ptr(parquet.ConvertedType_UTF8)},
			expected: "Ana",
		},
		{
			name:     "binary as hex",
			value:    string([]byte{0x00, 0x01, 0xFF}),
			elem:     &parquet.SchemaElement{Type: byteArray},
			expected: "0x0001FF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, parquetValue(tt.value, tt.elem), "parquetValue(%v) should match", tt.value)
		})
	}
}

func Test_flatColumns(t *testing.T) {
	root := &parquet.SchemaElement{Name: "Parquet_go_root", NumChildren: ptr(int32(2))}
	id := &parquet.SchemaElement{Name: "id", Type: ptr(parquet.Type_INT64)}
	name := &parquet.SchemaElement{Name: "name", Type: ptr(parquet.Type_BYTE_ARRAY)}

	t.Run("Flat schema", func(t *testing.T) {
		leaves, err := flatColumns([]*parquet.SchemaElement{root, id, name})
		require.NoError(t, err)
		require.Equal(t, []*parquet.SchemaElement{id, name}, leaves)
	})

	t.Run("Group", func(t *testing.T) {
		group := &parquet.SchemaElement{Name: "address", NumChildren: ptr(int32(1))}
		_, err := flatColumns([]*parquet.SchemaElement{root, group, name})
		require.ErrorIs(t, err, ErrNestedColumn)
	})

	t.Run("Repeated", func(t *testing.T) {
		tags := &parquet.SchemaElement{
			Name:           "tags",
			Type:           ptr(parquet.Type_BYTE_ARRAY),
			RepetitionType: ptr(parquet.FieldRepetitionType_REPEATED),
		}
		_, err := flatColumns([]*parquet.SchemaElement{root, tags})
		require.ErrorIs(t, err, ErrNestedColumn)
	})

	t.Run("Root only", func(t *testing.T) {
		_, err := flatColumns([]*parquet.SchemaElement{root})
		require.ErrorIs(t, err, ErrEmptyDataset)
	})
}

func Test_totalCompressedSize(t *testing.T) {
	meta := &parquet.FileMetaData{
		RowGroups: []*parquet.RowGroup{
			{TotalCompressedSize: ptr(int64(100))},
			{Columns: []*parquet.ColumnChunk{
				{MetaData: &parquet.ColumnMetaData{TotalCompressedSize: 20}},
				{MetaData: &parquet.ColumnMetaData{TotalCompressedSize: 30}},
			}},
		},
	}
	require.Equal(t, int64(150), totalCompressedSize(meta))
	require.Equal(t, int64(0), totalCompressedSize(nil))
}
